// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package types jsonrpc 的请求和应答
package types

import "encoding/json"

// RawParm 十六进制编码的已签名交易
type RawParm struct {
	Data string `json:"data"`
}

// QueryParm 交易哈希
type QueryParm struct {
	Hash string `json:"hash"`
}

// CreateTxIn 创建交易, payload 为action的json参数
type CreateTxIn struct {
	Execer     string          `json:"execer"`
	ActionName string          `json:"actionName"`
	Payload    json.RawMessage `json:"payload"`
}

// Query4Jrpc 执行器查询
type Query4Jrpc struct {
	Execer   string          `json:"execer"`
	FuncName string          `json:"funcName"`
	Payload  json.RawMessage `json:"payload"`
}

// ReqNil 无参数
type ReqNil struct{}

// Signature 签名, 十六进制
type Signature struct {
	Ty        int32  `json:"ty"`
	Pubkey    string `json:"pubkey"`
	Signature string `json:"signature"`
}

// Transaction 交易, payload 为解码后的action
type Transaction struct {
	Execer     string      `json:"execer"`
	Payload    interface{} `json:"payload"`
	RawPayload string      `json:"rawPayload"`
	Signature  *Signature  `json:"signature"`
	Expire     int64       `json:"expire"`
	Nonce      int64       `json:"nonce"`
	From       string      `json:"from,omitempty"`
	Hash       string      `json:"hash"`
}

// ReceiptLogResult 解码后的回执日志
type ReceiptLogResult struct {
	Ty     int32       `json:"ty"`
	TyName string      `json:"tyName"`
	Log    interface{} `json:"log"`
	RawLog string      `json:"rawLog"`
}

// ReceiptDataResult 解码后的回执
type ReceiptDataResult struct {
	Ty     int32               `json:"ty"`
	TyName string              `json:"tyName"`
	Logs   []*ReceiptLogResult `json:"logs"`
}

// TransactionDetail 交易详情
type TransactionDetail struct {
	Tx         *Transaction       `json:"tx"`
	Receipt    *ReceiptDataResult `json:"receipt"`
	Height     int64              `json:"height"`
	Blocktime  int64              `json:"blocktime"`
	Fromaddr   string             `json:"fromAddr"`
	ActionName string             `json:"actionName"`
}
