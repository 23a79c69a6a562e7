// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

//rps action ty
const (
	RpsActionStart = iota + 1
	RpsActionMove
	RpsActionUpdateAdmin
	RpsActionBlock
	RpsActionUnblock
)

//rps log ty
const (
	TyLogRpsStart = iota + 801
	TyLogRpsMove
	TyLogRpsAdmin
	TyLogRpsBlock
	TyLogRpsUnblock
)

// action 名称, 用于 CreateRawTransaction
const (
	ActionStartMatch   = "StartMatch"
	ActionOpponentMove = "OpponentMove"
	ActionUpdateAdmin  = "UpdateAdmin"
	ActionBlockHost    = "BlockHost"
	ActionUnblockHost  = "UnblockHost"
)

// 查询函数名称
const (
	FuncNameGetMatch           = "GetMatch"
	FuncNameGetMatchByHost     = "GetMatchByHost"
	FuncNameGetMatchByOpponent = "GetMatchByOpponent"
	FuncNameGetAdmin           = "GetAdmin"
	FuncNameGetBlacklist       = "GetBlacklist"
)

const (
	// RpsX 执行器名称
	RpsX = "rps"
	// Version 执行器版本, 初始化时写入状态数据库
	Version = "0.1.0"
)

var (
	// ExecerRps 执行器名称
	ExecerRps = []byte(RpsX)

	actionName = map[string]int32{
		ActionStartMatch:   RpsActionStart,
		ActionOpponentMove: RpsActionMove,
		ActionUpdateAdmin:  RpsActionUpdateAdmin,
		ActionBlockHost:    RpsActionBlock,
		ActionUnblockHost:  RpsActionUnblock,
	}

	logName = map[int32]string{
		TyLogRpsStart:   "LogRpsStart",
		TyLogRpsMove:    "LogRpsMove",
		TyLogRpsAdmin:   "LogRpsAdmin",
		TyLogRpsBlock:   "LogRpsBlock",
		TyLogRpsUnblock: "LogRpsUnblock",
	}
)

// GetTypeMap action 名称到类型
func GetTypeMap() map[string]int32 {
	return actionName
}

// GetLogName 日志类型名称
func GetLogName(ty int32) string {
	if name, ok := logName[ty]; ok {
		return name
	}
	return "LogReserved"
}
