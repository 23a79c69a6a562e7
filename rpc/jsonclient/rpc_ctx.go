// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jsonclient

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	rt "github.com/33cn/rps/dapp/rps/types"
	rpctypes "github.com/33cn/rps/rpc/types"
)

// MatchResult 命令行输出的比赛, 带状态和胜者
type MatchResult struct {
	Host          string `json:"host"`
	Opponent      string `json:"opponent"`
	HostMove      string `json:"hostMove"`
	OpponentMove  string `json:"opponentMove,omitempty"`
	Status        string `json:"status"`
	Outcome       string `json:"outcome,omitempty"`
	Winner        string `json:"winner,omitempty"`
	CreateHeight  int64  `json:"createHeight"`
	ResolveHeight int64  `json:"resolveHeight,omitempty"`
}

// MatchesResult 比赛列表
type MatchesResult struct {
	Count   int            `json:"count"`
	Matches []*MatchResult `json:"matches"`
}

// TxResult 交易执行结果摘要
type TxResult struct {
	Height     int64                        `json:"height"`
	From       string                       `json:"from"`
	ActionName string                       `json:"actionName"`
	Status     string                       `json:"status"`
	Logs       []*rpctypes.ReceiptLogResult `json:"logs,omitempty"`
}

// NewMatchResult 平局或未决时 winner 为空
func NewMatchResult(m *rt.Match) *MatchResult {
	res := &MatchResult{
		Host:          m.Host,
		Opponent:      m.Opponent,
		HostMove:      m.HostMove.String(),
		OpponentMove:  m.OpponentMove.String(),
		Status:        m.Status(),
		Outcome:       m.Outcome.String(),
		CreateHeight:  m.CreateHeight,
		ResolveHeight: m.ResolveHeight,
	}
	switch m.Outcome {
	case rt.HostWins:
		res.Winner = m.Host
	case rt.OpponentWins:
		res.Winner = m.Opponent
	}
	return res
}

// FormatResult 把rps的查询结果转换成输出格式, 其他类型原样返回
func FormatResult(res interface{}) (interface{}, error) {
	switch v := res.(type) {
	case *rt.Match:
		return NewMatchResult(v), nil
	case *rt.ReplyMatches:
		out := &MatchesResult{Count: len(v.Matches), Matches: make([]*MatchResult, 0, len(v.Matches))}
		for _, m := range v.Matches {
			out.Matches = append(out.Matches, NewMatchResult(m))
		}
		return out, nil
	case *rpctypes.TransactionDetail:
		out := &TxResult{Height: v.Height, From: v.Fromaddr, ActionName: v.ActionName}
		if v.Receipt != nil {
			out.Status = v.Receipt.TyName
			for _, l := range v.Receipt.Logs {
				out.Logs = append(out.Logs, &rpctypes.ReceiptLogResult{Ty: l.Ty, TyName: l.TyName, Log: l.Log})
			}
		}
		return out, nil
	}
	return res, nil
}

// RPCCtx 命令行调用一次rpc并输出结果
type RPCCtx struct {
	Addr   string
	Method string
	Params interface{}
	Res    interface{}
	cb     Callback
	out    io.Writer
}

// Callback 对返回结果做格式转换
type Callback func(res interface{}) (interface{}, error)

// NewRPCCtx 默认用 FormatResult 转换结果, 输出到 stdout
func NewRPCCtx(laddr, method string, params, res interface{}) *RPCCtx {
	return &RPCCtx{
		Addr:   laddr,
		Method: method,
		Params: params,
		Res:    res,
		cb:     FormatResult,
		out:    os.Stdout,
	}
}

// SetResultCb 替换结果转换, nil 表示原样输出
func (c *RPCCtx) SetResultCb(cb Callback) {
	c.cb = cb
}

// SetOutput 输出位置
func (c *RPCCtx) SetOutput(w io.Writer) {
	c.out = w
}

// RunResult 调用并返回转换后的结果
func (c *RPCCtx) RunResult() (interface{}, error) {
	rpc, err := NewJSONClient(c.Addr)
	if err != nil {
		return nil, err
	}
	if err := rpc.Call(c.Method, c.Params, c.Res); err != nil {
		return nil, err
	}
	if c.cb == nil {
		return c.Res, nil
	}
	return c.cb(c.Res)
}

// Run 结果以json格式输出, 错误输出到stderr
func (c *RPCCtx) Run() {
	result, err := c.RunResult()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	data, err := json.MarshalIndent(result, "", "    ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Fprintln(c.out, string(data))
}
