// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

/*
石头剪刀布

玩法:
1. 发起者指定对手并出拳 (StartMatch), 每个有序的(发起者, 对手)只能有一局
2. 任何人提交对手的出拳 (OpponentMove), 比赛结算
3. 管理员可以把地址加入黑名单, 黑名单中的地址不能发起比赛
4. 管理员可以转移给新的地址

status: Absent -> HostCommitted -> Resolved
比赛记录不会删除
*/

import (
	"time"

	"github.com/33cn/rps/common/address"
	"github.com/33cn/rps/common/log"
	rt "github.com/33cn/rps/dapp/rps/types"
	"github.com/33cn/rps/types"
	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"
)

var rlog = log.New("module", "execs.rps")

var (
	startCounter   = metrics.GetOrRegisterCounter("rps.match.start", nil)
	resolveCounter = metrics.GetOrRegisterCounter("rps.match.resolve", nil)
	failCounter    = metrics.GetOrRegisterCounter("rps.tx.fail", nil)
	execTimer      = metrics.GetOrRegisterTimer("rps.tx.exec", nil)
)

// Config [exec.sub.rps]
type Config struct {
	Admin     string   `json:"admin"`
	Blacklist []string `json:"blacklist"`
}

// Rps 执行器
type Rps struct {
	db        StateKV
	matches   *MatchStore
	admin     RoleHolder
	blacklist MemberSet
	height    int64
	blocktime int64
}

// NewRps 创建执行器, db 为交易执行时的状态数据库或者查询用的数据库
func NewRps(db StateKV) *Rps {
	return &Rps{
		db:        db,
		matches:   NewMatchStore(db),
		admin:     NewRoleHolder(db),
		blacklist: NewMemberSet(db),
	}
}

// GetDriverName 执行器名称
func (r *Rps) GetDriverName() string {
	return rt.RpsX
}

// SetEnv 当前执行的高度和时间
func (r *Rps) SetEnv(height, blocktime int64) {
	r.height = height
	r.blocktime = blocktime
}

// GetHeight 当前高度
func (r *Rps) GetHeight() int64 {
	return r.height
}

// Matches 比赛存储
func (r *Rps) Matches() *MatchStore {
	return r.matches
}

// Init 第一次启动时写入管理员, 黑名单和版本. 已经初始化过时返回 nil, nil
func (r *Rps) Init(cfg *Config, genesis string) (*types.Receipt, error) {
	if _, err := r.db.Get(versionKey); err == nil {
		return nil, nil
	} else if !isNotFound(err) {
		return nil, err
	}
	if cfg == nil {
		cfg = &Config{}
	}
	adminAddr := cfg.Admin
	if adminAddr == "" {
		adminAddr = genesis
	}
	adminAddr, err := address.Validate(adminAddr)
	if err != nil {
		return nil, errors.Wrapf(rt.ErrInvalidIdentity, "admin %s", cfg.Admin)
	}
	receipt := &types.Receipt{Ty: types.ExecOk}
	kv, err := r.admin.Set(adminAddr)
	if err != nil {
		return nil, err
	}
	receipt.KV = append(receipt.KV, kv)
	receipt.Logs = append(receipt.Logs, &types.ReceiptLog{Ty: rt.TyLogRpsAdmin, Log: types.Encode(&rt.ReceiptAdmin{Current: adminAddr})})
	for _, raw := range cfg.Blacklist {
		addr, err := address.Validate(raw)
		if err != nil {
			return nil, errors.Wrapf(rt.ErrInvalidIdentity, "blacklist %s", raw)
		}
		kv, list, err := r.blacklist.Add(addr)
		if err == rt.ErrAlreadyBlocked {
			continue
		}
		if err != nil {
			return nil, err
		}
		receipt.KV = append(receipt.KV, kv)
		receipt.Logs = append(receipt.Logs, &types.ReceiptLog{Ty: rt.TyLogRpsBlock, Log: types.Encode(&rt.ReceiptBlacklist{Op: opAdd, Addr: addr, List: list})})
	}
	version := []byte(rt.Version)
	if err := r.db.Set(versionKey, version); err != nil {
		return nil, err
	}
	receipt.KV = append(receipt.KV, &types.KeyValue{Key: versionKey, Value: version})
	rlog.Info("Init", "admin", adminAddr, "blacklist", cfg.Blacklist, "version", rt.Version)
	return receipt, nil
}

// Exec 执行交易, 失败时不返回KV
func (r *Rps) Exec(tx *types.Transaction, index int) (receipt *types.Receipt, err error) {
	defer func(begin time.Time) {
		execTimer.UpdateSince(begin)
		if err != nil {
			failCounter.Inc(1)
		}
	}(time.Now())

	if tx.Execer != rt.RpsX {
		return nil, types.ErrExecNameNotAllow
	}
	if tx.Signature == nil {
		return nil, types.ErrNoSignature
	}
	rpsAction, err := rt.DecodeAction(tx)
	if err != nil {
		return nil, err
	}
	rlog.Debug("exec rps tx", "action", rpsAction.ActionName(), "from", tx.From())
	actiondb := newAction(r, tx, index)
	switch {
	case rpsAction.Ty == rt.RpsActionStart && rpsAction.Start != nil:
		receipt, err = actiondb.startMatch(rpsAction.Start)
		if err == nil {
			startCounter.Inc(1)
		}
		return receipt, err
	case rpsAction.Ty == rt.RpsActionMove && rpsAction.Move != nil:
		receipt, err = actiondb.submitOpponentMove(rpsAction.Move)
		if err == nil {
			resolveCounter.Inc(1)
		}
		return receipt, err
	case rpsAction.Ty == rt.RpsActionUpdateAdmin && rpsAction.Admin != nil:
		return actiondb.updateAdmin(rpsAction.Admin)
	case rpsAction.Ty == rt.RpsActionBlock && rpsAction.Block != nil:
		return actiondb.modifyBlacklist(rpsAction.Block, opAdd)
	case rpsAction.Ty == rt.RpsActionUnblock && rpsAction.Unblock != nil:
		return actiondb.modifyBlacklist(rpsAction.Unblock, opDelete)
	}
	return nil, types.ErrActionNotSupport
}
