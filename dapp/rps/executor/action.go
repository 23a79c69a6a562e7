// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"github.com/33cn/rps/common"
	"github.com/33cn/rps/common/address"
	rt "github.com/33cn/rps/dapp/rps/types"
	"github.com/33cn/rps/types"
	"github.com/pkg/errors"
)

type action struct {
	matches   *MatchStore
	admin     RoleHolder
	blacklist MemberSet
	txhash    string
	fromaddr  string
	height    int64
	blocktime int64
	index     int
}

func newAction(r *Rps, tx *types.Transaction, index int) *action {
	return &action{
		matches:   r.matches,
		admin:     r.admin,
		blacklist: r.blacklist,
		txhash:    common.ToHex(tx.Hash()),
		fromaddr:  tx.From(),
		height:    r.height,
		blocktime: r.blocktime,
		index:     index,
	}
}

func (a *action) validate(addr string) (string, error) {
	canonical, err := address.Validate(addr)
	if err != nil {
		return "", errors.Wrapf(rt.ErrInvalidIdentity, "%s", addr)
	}
	return canonical, nil
}

func (a *action) matchReceipt(ty int32, method string, prev, current *rt.Match, kv *types.KeyValue) *types.Receipt {
	r := &rt.ReceiptMatch{
		Method:   method,
		Sender:   a.fromaddr,
		Host:     current.Host,
		Opponent: current.Opponent,
		Prev:     prev,
		Current:  current,
	}
	log := &types.ReceiptLog{Ty: ty, Log: types.Encode(r)}
	return &types.Receipt{Ty: types.ExecOk, KV: []*types.KeyValue{kv}, Logs: []*types.ReceiptLog{log}}
}

// 发起比赛: Absent -> HostCommitted
func (a *action) startMatch(start *rt.StartMatch) (*types.Receipt, error) {
	opponent, err := a.validate(start.Opponent)
	if err != nil {
		return nil, err
	}
	hostMove, err := rt.ParseMove(start.HostMove)
	if err != nil {
		return nil, err
	}
	blocked, err := a.blacklist.Has(a.fromaddr)
	if err != nil {
		return nil, err
	}
	if blocked {
		rlog.Error("startMatch", "host", a.fromaddr, "err", rt.ErrCallerBlocked)
		return nil, rt.ErrCallerBlocked
	}

	var created *rt.Match
	kv, err := a.matches.UpsertIf(a.fromaddr, opponent, func(existing *rt.Match) (*rt.Match, error) {
		if existing != nil {
			return nil, rt.ErrDuplicateMatch
		}
		created = &rt.Match{
			Host:         a.fromaddr,
			Opponent:     opponent,
			HostMove:     hostMove,
			CreateTxHash: a.txhash,
			CreateHeight: a.height,
		}
		return created, nil
	})
	if err != nil {
		rlog.Error("startMatch", "host", a.fromaddr, "opponent", opponent, "err", err)
		return nil, err
	}
	rlog.Debug("startMatch", "host", a.fromaddr, "opponent", opponent)
	return a.matchReceipt(rt.TyLogRpsStart, "start_match", nil, created, kv), nil
}

// 对手出拳: HostCommitted -> Resolved, 不检查调用者是否为对手
func (a *action) submitOpponentMove(move *rt.OpponentMove) (*types.Receipt, error) {
	opponentMove, err := rt.ParseMove(move.OpponentMove)
	if err != nil {
		return nil, err
	}
	host, err := a.validate(move.Host)
	if err != nil {
		return nil, err
	}
	opponent, err := a.validate(move.Opponent)
	if err != nil {
		return nil, err
	}
	existing, err := a.matches.Get(host, opponent)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		rlog.Error("submitOpponentMove", "host", host, "opponent", opponent, "err", rt.ErrNoSuchMatch)
		return nil, rt.ErrNoSuchMatch
	}
	outcome := Resolve(existing.HostMove, opponentMove)

	var resolved *rt.Match
	kv, err := a.matches.UpsertIf(host, opponent, func(current *rt.Match) (*rt.Match, error) {
		if current == nil {
			return nil, rt.ErrNoSuchMatch
		}
		current.OpponentMove = opponentMove
		current.Outcome = outcome
		current.ResolveTxHash = a.txhash
		current.ResolveHeight = a.height
		resolved = current
		return current, nil
	})
	if err != nil {
		rlog.Error("submitOpponentMove", "host", host, "opponent", opponent, "err", err)
		return nil, err
	}
	rlog.Debug("submitOpponentMove", "host", host, "opponent", opponent, "outcome", outcome)
	return a.matchReceipt(rt.TyLogRpsMove, "opponent_move", existing, resolved, kv), nil
}
