// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

// 交易执行结果
const (
	ExecErr  = 0
	ExecPack = 1
	ExecOk   = 2
)

// KeyValue 状态数据库中的一条记录
type KeyValue struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
}

// ReceiptLog 执行器输出的日志, Log 为编码后的日志结构
type ReceiptLog struct {
	Ty  int32  `json:"ty"`
	Log []byte `json:"log"`
}

// Receipt 执行器的执行结果, KV 在交易成功后一起写入
type Receipt struct {
	Ty   int32         `json:"ty"`
	KV   []*KeyValue   `json:"kv"`
	Logs []*ReceiptLog `json:"logs"`
}

// ReceiptData 保存的回执, 不包含KV
type ReceiptData struct {
	Ty   int32         `json:"ty"`
	Logs []*ReceiptLog `json:"logs"`
}

// TxDetail 交易执行详情
type TxDetail struct {
	Tx      *Transaction `json:"tx"`
	Receipt *ReceiptData `json:"receipt"`
	Height  int64        `json:"height"`
	Hash    []byte       `json:"hash"`
	From    string       `json:"fromAddr"`
	// 执行时间, unix 秒
	Blocktime int64 `json:"blocktime"`
}

// AppendReceipt 合并两个回执
func AppendReceipt(r1 *Receipt, r2 *Receipt) *Receipt {
	if r1 == nil {
		return r2
	}
	if r2 == nil {
		return r1
	}
	r1.KV = append(r1.KV, r2.KV...)
	r1.Logs = append(r1.Logs, r2.Logs...)
	return r1
}

// Reply 通用应答, Msg 为交易哈希或者错误信息
type Reply struct {
	IsOk bool   `json:"isOk"`
	Msg  []byte `json:"msg"`
}
