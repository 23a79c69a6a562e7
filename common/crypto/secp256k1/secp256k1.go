// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package secp256k1 交易签名使用的secp256k1密钥
package secp256k1

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/33cn/rps/common"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// Name 签名类型名称
const Name = "secp256k1"

const (
	privKeyBytesLen = 32
	pubKeyBytesLen  = 33
)

var (
	// ErrPrivKeyLen 私钥长度错误
	ErrPrivKeyLen = errors.New("invalid priv key byte")
	// ErrPubKeyLen 公钥长度错误
	ErrPubKeyLen = errors.New("invalid pub key byte")
)

// PrivKeySecp256k1 私钥
type PrivKeySecp256k1 [privKeyBytesLen]byte

// GenKey 生成一个新的私钥
func GenKey() (PrivKeySecp256k1, error) {
	var key PrivKeySecp256k1
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return key, err
	}
	copy(key[:], priv.Serialize())
	return key, nil
}

// PrivKeyFromBytes 从字节恢复私钥
func PrivKeyFromBytes(b []byte) (PrivKeySecp256k1, error) {
	var key PrivKeySecp256k1
	if len(b) != privKeyBytesLen {
		return key, ErrPrivKeyLen
	}
	priv, _ := btcec.PrivKeyFromBytes(b)
	copy(key[:], priv.Serialize())
	return key, nil
}

// Bytes 私钥字节
func (privKey PrivKeySecp256k1) Bytes() []byte {
	s := make([]byte, privKeyBytesLen)
	copy(s, privKey[:])
	return s
}

// Sign 对msg的sha256做DER格式签名
func (privKey PrivKeySecp256k1) Sign(msg []byte) []byte {
	priv, _ := btcec.PrivKeyFromBytes(privKey[:])
	sig := ecdsa.Sign(priv, common.Sha256(msg))
	return sig.Serialize()
}

// PubKey 压缩格式公钥
func (privKey PrivKeySecp256k1) PubKey() PubKeySecp256k1 {
	_, pub := btcec.PrivKeyFromBytes(privKey[:])
	var pubSecp256k1 PubKeySecp256k1
	copy(pubSecp256k1[:], pub.SerializeCompressed())
	return pubSecp256k1
}

// Equals 比较私钥
func (privKey PrivKeySecp256k1) Equals(other PrivKeySecp256k1) bool {
	return bytes.Equal(privKey[:], other[:])
}

func (privKey PrivKeySecp256k1) String() string {
	return "PrivKeySecp256k1{*****}"
}

// PubKeySecp256k1 Compressed pubkey (just the x-cord),
// prefixed with 0x02 or 0x03, depending on the y-cord.
type PubKeySecp256k1 [pubKeyBytesLen]byte

// PubKeyFromBytes 从字节恢复公钥
func PubKeyFromBytes(b []byte) (PubKeySecp256k1, error) {
	var pub PubKeySecp256k1
	if len(b) != pubKeyBytesLen {
		return pub, ErrPubKeyLen
	}
	copy(pub[:], b)
	return pub, nil
}

// Bytes 公钥字节
func (pubKey PubKeySecp256k1) Bytes() []byte {
	s := make([]byte, pubKeyBytesLen)
	copy(s, pubKey[:])
	return s
}

// VerifyBytes 验证DER格式签名
func (pubKey PubKeySecp256k1) VerifyBytes(msg []byte, sig []byte) bool {
	pub, err := btcec.ParsePubKey(pubKey[:])
	if err != nil {
		return false
	}
	sig2, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return sig2.Verify(common.Sha256(msg), pub)
}

func (pubKey PubKeySecp256k1) String() string {
	return fmt.Sprintf("PubKeySecp256k1{%X}", pubKey[:])
}
