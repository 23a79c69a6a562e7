// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package types rps 执行器的数据结构
package types

import (
	"encoding/json"

	"github.com/33cn/rps/common/log"
	"github.com/33cn/rps/types"
)

var tlog = log.New("module", RpsX)

// Move 出拳, 零值表示未出
type Move int32

//出拳的三种选择
const (
	MoveNone Move = iota
	Rock
	Paper
	Scissors
)

var moveNames = map[Move]string{
	Rock:     "Rock",
	Paper:    "Paper",
	Scissors: "Scissors",
}

// ParseMove 解析出拳, 只接受 Rock, Paper, Scissors
func ParseMove(s string) (Move, error) {
	for m, name := range moveNames {
		if name == s {
			return m, nil
		}
	}
	return MoveNone, ErrInvalidMove
}

// Valid 是否是三种之一
func (m Move) Valid() bool {
	_, ok := moveNames[m]
	return ok
}

func (m Move) String() string {
	return moveNames[m]
}

// MarshalText 编码为名称
func (m Move) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText 空字符串为未出
func (m *Move) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*m = MoveNone
		return nil
	}
	move, err := ParseMove(string(text))
	if err != nil {
		return err
	}
	*m = move
	return nil
}

// Outcome 结果, 零值表示未决
type Outcome int32

//三种结果
const (
	OutcomeNone Outcome = iota
	HostWins
	OpponentWins
	Tie
)

var outcomeNames = map[Outcome]string{
	HostWins:     "HostWins",
	OpponentWins: "OpponentWins",
	Tie:          "Tie",
}

func (o Outcome) String() string {
	return outcomeNames[o]
}

// MarshalText 编码为名称
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText 空字符串为未决
func (o *Outcome) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*o = OutcomeNone
		return nil
	}
	for v, name := range outcomeNames {
		if name == string(text) {
			*o = v
			return nil
		}
	}
	return types.ErrDecode
}

// 对局状态
const (
	StatusHostCommitted = "HostCommitted"
	StatusResolved      = "Resolved"
)

// Match 一局比赛, 由(host, opponent)唯一确定
type Match struct {
	Host          string  `json:"host"`
	Opponent      string  `json:"opponent"`
	HostMove      Move    `json:"hostMove"`
	OpponentMove  Move    `json:"opponentMove,omitempty"`
	Outcome       Outcome `json:"outcome,omitempty"`
	CreateTxHash  string  `json:"createTxHash,omitempty"`
	ResolveTxHash string  `json:"resolveTxHash,omitempty"`
	CreateHeight  int64   `json:"createHeight"`
	ResolveHeight int64   `json:"resolveHeight,omitempty"`
}

// Status HostCommitted 或 Resolved
func (m *Match) Status() string {
	if m.Outcome == OutcomeNone {
		return StatusHostCommitted
	}
	return StatusResolved
}

// Clone 复制
func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// RpsAction 交易的payload
type RpsAction struct {
	Ty      int32         `json:"ty"`
	Start   *StartMatch   `json:"start,omitempty"`
	Move    *OpponentMove `json:"move,omitempty"`
	Admin   *UpdateAdmin  `json:"admin,omitempty"`
	Block   *BlockHost    `json:"block,omitempty"`
	Unblock *BlockHost    `json:"unblock,omitempty"`
}

// StartMatch 发起者出拳并指定对手
type StartMatch struct {
	Opponent string `json:"opponent"`
	HostMove string `json:"hostMove"`
}

// OpponentMove 对手出拳, 结算比赛
type OpponentMove struct {
	Host         string `json:"host"`
	Opponent     string `json:"opponent"`
	OpponentMove string `json:"opponentMove"`
}

// UpdateAdmin 转移管理员
type UpdateAdmin struct {
	Admin string `json:"admin"`
}

// BlockHost 黑名单的增加或删除
type BlockHost struct {
	Addr string `json:"addr"`
}

// ReceiptMatch 比赛相关的日志
type ReceiptMatch struct {
	Method   string `json:"method"`
	Sender   string `json:"sender"`
	Host     string `json:"host"`
	Opponent string `json:"opponent"`
	Prev     *Match `json:"prev,omitempty"`
	Current  *Match `json:"current"`
}

// ReceiptAdmin 管理员变更日志
type ReceiptAdmin struct {
	Prev    string `json:"prev"`
	Current string `json:"current"`
}

// ReceiptBlacklist 黑名单变更日志
type ReceiptBlacklist struct {
	Op   string   `json:"op"`
	Addr string   `json:"addr"`
	List []string `json:"list"`
}

// ReqMatch 查询单局
type ReqMatch struct {
	Host     string `json:"host"`
	Opponent string `json:"opponent"`
}

// ReqAddr 按地址查询
type ReqAddr struct {
	Addr string `json:"addr"`
}

// ReqNil 无参数
type ReqNil struct{}

// ReplyMatches 多局比赛
type ReplyMatches struct {
	Matches []*Match `json:"matches"`
}

// ReplyAdmin 当前管理员
type ReplyAdmin struct {
	Admin string `json:"admin"`
}

// ReplyBlacklist 黑名单
type ReplyBlacklist struct {
	Addrs []string `json:"addrs"`
}

// ActionName action 的名称
func (action *RpsAction) ActionName() string {
	for name, ty := range actionName {
		if ty == action.Ty {
			return name
		}
	}
	return "unknown"
}

// CreateTx 根据action名称和json参数创建未签名的交易
func CreateTx(action string, message json.RawMessage) (*types.Transaction, error) {
	tlog.Debug("rps.CreateTx", "action", action)
	ty, ok := actionName[action]
	if !ok {
		return nil, types.ErrActionNotSupport
	}
	act := &RpsAction{Ty: ty}
	var param interface{}
	switch ty {
	case RpsActionStart:
		act.Start = &StartMatch{}
		param = act.Start
	case RpsActionMove:
		act.Move = &OpponentMove{}
		param = act.Move
	case RpsActionUpdateAdmin:
		act.Admin = &UpdateAdmin{}
		param = act.Admin
	case RpsActionBlock:
		act.Block = &BlockHost{}
		param = act.Block
	case RpsActionUnblock:
		act.Unblock = &BlockHost{}
		param = act.Unblock
	}
	if err := json.Unmarshal(message, param); err != nil {
		tlog.Error("CreateTx", "Error", err)
		return nil, types.ErrInvalidParam
	}
	return types.NewTransaction(RpsX, types.Encode(act)), nil
}

// DecodeAction 解析交易的payload
func DecodeAction(tx *types.Transaction) (*RpsAction, error) {
	var action RpsAction
	if err := types.Decode(tx.Payload, &action); err != nil {
		return nil, err
	}
	return &action, nil
}

// DecodeLog 按日志类型解码回执日志
func DecodeLog(ty int32, data []byte) (interface{}, error) {
	var v interface{}
	switch ty {
	case TyLogRpsStart, TyLogRpsMove:
		v = &ReceiptMatch{}
	case TyLogRpsAdmin:
		v = &ReceiptAdmin{}
	case TyLogRpsBlock, TyLogRpsUnblock:
		v = &ReceiptBlacklist{}
	default:
		return nil, types.ErrActionNotSupport
	}
	if err := types.Decode(data, v); err != nil {
		return nil, err
	}
	return v, nil
}
