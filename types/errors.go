// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package types 节点公共的配置, 交易, 回执以及错误定义
package types

import "errors"

var (
	// ErrInvalidParam 参数错误
	ErrInvalidParam = errors.New("ErrInvalidParam")
	// ErrNotFound 数据不存在
	ErrNotFound = errors.New("ErrNotFound")
	// ErrActionNotSupport 不支持的交易类型
	ErrActionNotSupport = errors.New("ErrActionNotSupport")
	// ErrQueryNotSupport 不支持的查询
	ErrQueryNotSupport = errors.New("ErrQueryNotSupport")
	// ErrExecNameNotAllow 交易的执行器不存在
	ErrExecNameNotAllow = errors.New("ErrExecNameNotAllow")
	// ErrSign 签名错误
	ErrSign = errors.New("ErrSign")
	// ErrNoSignature 交易没有签名
	ErrNoSignature = errors.New("ErrNoSignature")
	// ErrDecode 解码错误
	ErrDecode = errors.New("ErrDecode")
	// ErrTxDup 重复交易
	ErrTxDup = errors.New("ErrTxDup")
	// ErrTxExpire 交易过期
	ErrTxExpire = errors.New("ErrTxExpire")
	// ErrEmpty 空数据
	ErrEmpty = errors.New("ErrEmpty")
)
