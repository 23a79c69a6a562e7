// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import "github.com/33cn/rps/types"

var receiptTyName = map[int32]string{
	types.ExecErr:  "ExecErr",
	types.ExecPack: "ExecPack",
	types.ExecOk:   "ExecOk",
}

// ReceiptTyName 回执类型名称
func ReceiptTyName(ty int32) string {
	if name, ok := receiptTyName[ty]; ok {
		return name
	}
	return "Unknown"
}
