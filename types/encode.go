// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"encoding/json"

	pkgerr "github.com/pkg/errors"
)

// Encode 编码, 结构体字段顺序固定, 同一值的编码结果唯一
func Encode(data interface{}) []byte {
	b, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	return b
}

// Decode 解码, 失败时返回ErrDecode
func Decode(data []byte, msg interface{}) error {
	if err := json.Unmarshal(data, msg); err != nil {
		return pkgerr.Wrapf(ErrDecode, "%v", err)
	}
	return nil
}
