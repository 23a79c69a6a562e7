// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"math/rand"
	"time"

	"github.com/33cn/rps/common"
	"github.com/33cn/rps/common/address"
	"github.com/33cn/rps/common/crypto/secp256k1"
)

// SECP256K1 签名类型
const SECP256K1 = 1

// Signature 交易签名
type Signature struct {
	Ty        int32  `json:"ty"`
	Pubkey    []byte `json:"pubkey"`
	Signature []byte `json:"signature"`
}

// Transaction 交易, Payload 为执行器的action编码
type Transaction struct {
	Execer  string `json:"execer"`
	Payload []byte `json:"payload"`
	// 过期时间, unix 秒, 0 表示不过期
	Expire    int64      `json:"expire"`
	Nonce     int64      `json:"nonce"`
	Signature *Signature `json:"signature,omitempty"`
}

// NewTransaction 创建未签名的交易, nonce 随机
func NewTransaction(execer string, payload []byte) *Transaction {
	return &Transaction{
		Execer:  execer,
		Payload: payload,
		Nonce:   rand.New(rand.NewSource(time.Now().UnixNano())).Int63(),
	}
}

func clone(tx *Transaction) *Transaction {
	copytx := *tx
	return &copytx
}

// Hash 交易哈希, 不包含签名
func (tx *Transaction) Hash() []byte {
	copytx := clone(tx)
	copytx.Signature = nil
	return common.Sha256(Encode(copytx))
}

// Sign 对不含签名的交易编码签名
func (tx *Transaction) Sign(ty int32, priv secp256k1.PrivKeySecp256k1) {
	tx.Signature = nil
	data := Encode(tx)
	tx.Signature = &Signature{
		Ty:        ty,
		Pubkey:    priv.PubKey().Bytes(),
		Signature: priv.Sign(data),
	}
}

// CheckSign 检查签名
func (tx *Transaction) CheckSign() bool {
	if tx.Signature == nil || tx.Signature.Ty != SECP256K1 {
		return false
	}
	pub, err := secp256k1.PubKeyFromBytes(tx.Signature.Pubkey)
	if err != nil {
		return false
	}
	copytx := clone(tx)
	copytx.Signature = nil
	return pub.VerifyBytes(Encode(copytx), tx.Signature.Signature)
}

// Check 交易的基本检查
func (tx *Transaction) Check(blocktime int64) error {
	if tx.Signature == nil {
		return ErrNoSignature
	}
	if !tx.CheckSign() {
		return ErrSign
	}
	if tx.IsExpire(blocktime) {
		return ErrTxExpire
	}
	return nil
}

// IsExpire 是否过期
func (tx *Transaction) IsExpire(blocktime int64) bool {
	return tx.Expire > 0 && blocktime > tx.Expire
}

// SetExpire 设置过期时间
func (tx *Transaction) SetExpire(expire time.Duration) {
	if expire <= 0 {
		tx.Expire = 0
		return
	}
	tx.Expire = time.Now().Add(expire).Unix()
}

// From 签名者地址
func (tx *Transaction) From() string {
	if tx.Signature == nil {
		return ""
	}
	return address.PubKeyToAddr(tx.Signature.Pubkey)
}

// Size 编码后的大小
func (tx *Transaction) Size() int {
	return len(Encode(tx))
}
