// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"fmt"

	rt "github.com/33cn/rps/dapp/rps/types"
)

var (
	matchPrefix   = "mavl-" + rt.RpsX + "-match-"
	adminKey      = []byte("mavl-" + rt.RpsX + "-admin")
	blacklistKey  = []byte("mavl-" + rt.RpsX + "-blacklist")
	versionKey    = []byte("mavl-" + rt.RpsX + "-version")
	heightKey     = []byte("mavl-" + rt.RpsX + "-height")
	txReceiptHead = "mavl-" + rt.RpsX + "-tx-"
)

// 地址中不包含'-', host前缀不会匹配到其他host
func calcMatchKey(host, opponent string) []byte {
	return []byte(fmt.Sprintf("%s%s-%s", matchPrefix, host, opponent))
}

func calcMatchHostPrefix(host string) []byte {
	return []byte(fmt.Sprintf("%s%s-", matchPrefix, host))
}

// CalcTxKey 交易执行详情的key
func CalcTxKey(hash string) []byte {
	return []byte(txReceiptHead + hash)
}

// HeightKey 已执行交易数的key
func HeightKey() []byte {
	return heightKey
}
