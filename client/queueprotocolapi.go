// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package client

import (
	"encoding/json"

	"github.com/33cn/rps/types"
)

// QueueProtocolAPI rpc 访问节点的接口
type QueueProtocolAPI interface {
	// 验证并执行交易, 成功时 Reply.Msg 为交易哈希
	SendTx(param *types.Transaction) (*types.Reply, error)
	// 根据action名称和json参数创建未签名的交易
	CreateTransaction(execer, actionName string, payload json.RawMessage) (*types.Transaction, error)
	// 已执行交易的详情
	QueryTx(hash []byte) (*types.TxDetail, error)
	// 执行器查询, param 为json编码的参数
	Query(driver, funcName string, param []byte) (interface{}, error)
	GetLastHeight() int64
	Close()
}
