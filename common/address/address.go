// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package address 地址的生成与校验
package address

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/33cn/rps/common"
	"github.com/decred/base58"
	lru "github.com/hashicorp/golang-lru"
	pkgerr "github.com/pkg/errors"
)

// NormalVer 普通地址的版本号
const NormalVer byte = 0

const (
	base58AddrLen = 25
	ethAddrLen    = 20
)

var (
	// ErrInvalidAddress 地址格式错误
	ErrInvalidAddress = errors.New("ErrInvalidAddress")
	// ErrCheckChecksum 地址校验和错误
	ErrCheckChecksum = errors.New("Address Checksum error")
	// ErrAddressTooShort 地址长度不够
	ErrAddressTooShort = errors.New("Address too short")

	addressCache      *lru.Cache
	checkAddressCache *lru.Cache
)

func init() {
	var err error
	addressCache, err = lru.New(10240)
	if err != nil {
		panic(err)
	}
	checkAddressCache, err = lru.New(10240)
	if err != nil {
		panic(err)
	}
}

//Address 地址
type Address struct {
	Version  byte
	Hash160  [20]byte
	Checksum []byte
	Pubkey   []byte
	Enc58str string
}

//PubKeyToAddress 公钥转为地址
func PubKeyToAddress(in []byte) *Address {
	a := new(Address)
	a.Pubkey = make([]byte, len(in))
	copy(a.Pubkey[:], in[:])
	a.Version = NormalVer
	a.Hash160 = common.Rimp160AfterSha256(in)
	return a
}

// PubKeyToAddr 公钥转为地址字符串, 结果做一次cache
func PubKeyToAddr(in []byte) string {
	key := string(in)
	if value, ok := addressCache.Get(key); ok {
		return value.(string)
	}
	addr := PubKeyToAddress(in).String()
	addressCache.Add(key, addr)
	return addr
}

func (a *Address) String() string {
	if a.Enc58str == "" {
		var ad [base58AddrLen]byte
		ad[0] = a.Version
		copy(ad[1:21], a.Hash160[:])
		if a.Checksum == nil {
			sh := common.Sha2Sum(ad[0:21])
			a.Checksum = make([]byte, 4)
			copy(a.Checksum, sh[:4])
		}
		copy(ad[21:25], a.Checksum[:])
		a.Enc58str = base58.Encode(ad[:])
	}
	return a.Enc58str
}

//CheckAddress 检查base58地址
func CheckAddress(addr string) (e error) {
	if value, ok := checkAddressCache.Get(addr); ok {
		if value == nil {
			return nil
		}
		return value.(error)
	}
	_, e = decodeAddress(addr)
	checkAddressCache.Add(addr, e)
	return
}

//NewAddrFromString new 地址
func NewAddrFromString(hs string) (*Address, error) {
	dec, err := decodeAddress(hs)
	if err != nil {
		return nil, err
	}
	a := new(Address)
	a.Version = dec[0]
	copy(a.Hash160[:], dec[1:21])
	a.Checksum = make([]byte, 4)
	copy(a.Checksum, dec[21:25])
	a.Enc58str = hs
	return a, nil
}

func decodeAddress(addr string) ([]byte, error) {
	dec := base58.Decode(addr)
	if len(dec) == 0 {
		return nil, pkgerr.Wrapf(ErrInvalidAddress, "cannot decode b58 string '%s'", addr)
	}
	if len(dec) < base58AddrLen {
		return nil, pkgerr.Wrapf(ErrAddressTooShort, "%s", hex.EncodeToString(dec))
	}
	if len(dec) > base58AddrLen {
		return nil, pkgerr.Wrapf(ErrInvalidAddress, "address too long '%s'", addr)
	}
	sh := common.Sha2Sum(dec[0:21])
	if !bytes.Equal(sh[:4], dec[21:25]) {
		return nil, ErrCheckChecksum
	}
	return dec, nil
}

// IsEthAddress 是否是0x开头的20字节hex地址
func IsEthAddress(addr string) bool {
	if len(addr) != 2+2*ethAddrLen || !common.HasHexPrefix(addr) {
		return false
	}
	_, err := hex.DecodeString(addr[2:])
	return err == nil
}

// FormatEthAddress eth地址统一为小写格式
func FormatEthAddress(addr string) string {
	return "0x" + strings.ToLower(addr[2:])
}

// Validate 校验地址并返回规范格式, base58地址原样返回, eth地址转为小写
func Validate(addr string) (string, error) {
	if common.HasHexPrefix(addr) {
		if !IsEthAddress(addr) {
			return "", pkgerr.Wrapf(ErrInvalidAddress, "bad eth address '%s'", addr)
		}
		return FormatEthAddress(addr), nil
	}
	if err := CheckAddress(addr); err != nil {
		return "", pkgerr.Wrapf(ErrInvalidAddress, "%s: %v", addr, err)
	}
	return addr, nil
}
