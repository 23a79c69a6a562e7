// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/33cn/rps/common/address"
	"github.com/33cn/rps/common/crypto/secp256k1"
	dbm "github.com/33cn/rps/common/db"
	rt "github.com/33cn/rps/dapp/rps/types"
	sdb "github.com/33cn/rps/executor"
	"github.com/33cn/rps/types"
	pkgerr "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAccount struct {
	priv secp256k1.PrivKeySecp256k1
	addr string
}

func newAccount(t *testing.T) *testAccount {
	priv, err := secp256k1.GenKey()
	require.NoError(t, err)
	return &testAccount{priv: priv, addr: address.PubKeyToAddr(priv.PubKey().Bytes())}
}

type testEnv struct {
	t      *testing.T
	db     dbm.DB
	state  *sdb.StateDB
	exec   *Rps
	query  *Rps
	height int64
	admin  *testAccount
}

func newTestEnv(t *testing.T, blacklist ...string) *testEnv {
	db, err := dbm.NewDB("rps", dbm.MemDBBackendStr, "", 0)
	require.NoError(t, err)
	env := &testEnv{t: t, db: db, state: sdb.NewStateDB(db), admin: newAccount(t)}
	env.exec = NewRps(env.state)
	env.query = NewRps(db)
	receipt, err := env.exec.Init(&Config{Admin: env.admin.addr, Blacklist: blacklist}, "")
	require.NoError(t, err)
	require.NotNil(t, receipt)
	require.NoError(t, env.state.Flush(false))
	return env
}

func (e *testEnv) send(from *testAccount, action *rt.RpsAction) (*types.Receipt, error) {
	tx := types.NewTransaction(rt.RpsX, types.Encode(action))
	tx.Sign(types.SECP256K1, from.priv)
	e.height++
	e.exec.SetEnv(e.height, time.Now().Unix())
	e.state.Begin()
	receipt, err := e.exec.Exec(tx, 0)
	if err != nil {
		e.state.Rollback()
		return nil, err
	}
	e.state.Commit()
	require.NoError(e.t, e.state.Flush(false))
	return receipt, nil
}

func (e *testEnv) start(host *testAccount, opponent string, move string) (*types.Receipt, error) {
	return e.send(host, &rt.RpsAction{Ty: rt.RpsActionStart, Start: &rt.StartMatch{Opponent: opponent, HostMove: move}})
}

func (e *testEnv) move(from *testAccount, host, opponent, move string) (*types.Receipt, error) {
	return e.send(from, &rt.RpsAction{Ty: rt.RpsActionMove, Move: &rt.OpponentMove{Host: host, Opponent: opponent, OpponentMove: move}})
}

func (e *testEnv) block(from *testAccount, addr string) (*types.Receipt, error) {
	return e.send(from, &rt.RpsAction{Ty: rt.RpsActionBlock, Block: &rt.BlockHost{Addr: addr}})
}

func (e *testEnv) unblock(from *testAccount, addr string) (*types.Receipt, error) {
	return e.send(from, &rt.RpsAction{Ty: rt.RpsActionUnblock, Unblock: &rt.BlockHost{Addr: addr}})
}

func (e *testEnv) getMatch(host, opponent string) (*rt.Match, error) {
	return e.query.Query_GetMatch(&rt.ReqMatch{Host: host, Opponent: opponent})
}

func TestResolve(t *testing.T) {
	assert.Equal(t, rt.HostWins, Resolve(rt.Rock, rt.Scissors))
	assert.Equal(t, rt.OpponentWins, Resolve(rt.Scissors, rt.Rock))
	assert.Equal(t, rt.Tie, Resolve(rt.Paper, rt.Paper))

	expect := map[[2]rt.Move]rt.Outcome{
		{rt.Rock, rt.Rock}:         rt.Tie,
		{rt.Rock, rt.Paper}:        rt.OpponentWins,
		{rt.Rock, rt.Scissors}:     rt.HostWins,
		{rt.Paper, rt.Rock}:        rt.HostWins,
		{rt.Paper, rt.Paper}:       rt.Tie,
		{rt.Paper, rt.Scissors}:    rt.OpponentWins,
		{rt.Scissors, rt.Rock}:     rt.OpponentWins,
		{rt.Scissors, rt.Paper}:    rt.HostWins,
		{rt.Scissors, rt.Scissors}: rt.Tie,
	}
	moves := []rt.Move{rt.Rock, rt.Paper, rt.Scissors}
	for _, h := range moves {
		for _, o := range moves {
			assert.Equal(t, expect[[2]rt.Move{h, o}], Resolve(h, o), "%s vs %s", h, o)
		}
	}
	assert.Equal(t, rt.OutcomeNone, Resolve(rt.MoveNone, rt.Rock))
	assert.Equal(t, rt.OutcomeNone, Resolve(rt.Rock, rt.Move(9)))
}

func TestStartThenGet(t *testing.T) {
	env := newTestEnv(t)
	host, opponent := newAccount(t), newAccount(t)
	for _, move := range []string{"Rock", "Paper", "Scissors"} {
		opp := newAccount(t)
		receipt, err := env.start(host, opp.addr, move)
		require.NoError(t, err)
		assert.Equal(t, int32(types.ExecOk), receipt.Ty)
		require.Len(t, receipt.KV, 1)
		assert.Equal(t, calcMatchKey(host.addr, opp.addr), receipt.KV[0].Key)

		match, err := env.getMatch(host.addr, opp.addr)
		require.NoError(t, err)
		expect, _ := rt.ParseMove(move)
		assert.Equal(t, expect, match.HostMove)
		assert.Equal(t, rt.MoveNone, match.OpponentMove)
		assert.Equal(t, rt.OutcomeNone, match.Outcome)
		assert.Equal(t, rt.StatusHostCommitted, match.Status())
	}

	_, err := env.getMatch(host.addr, opponent.addr)
	assert.Equal(t, rt.ErrMatchNotFound, err)
}

func TestStartReceiptLog(t *testing.T) {
	env := newTestEnv(t)
	host, opponent := newAccount(t), newAccount(t)
	receipt, err := env.start(host, opponent.addr, "Rock")
	require.NoError(t, err)
	require.Len(t, receipt.Logs, 1)
	assert.Equal(t, int32(rt.TyLogRpsStart), receipt.Logs[0].Ty)
	var log rt.ReceiptMatch
	require.NoError(t, types.Decode(receipt.Logs[0].Log, &log))
	assert.Equal(t, "start_match", log.Method)
	assert.Equal(t, host.addr, log.Sender)
	assert.Equal(t, opponent.addr, log.Opponent)
	assert.Nil(t, log.Prev)
	assert.Equal(t, rt.Rock, log.Current.HostMove)
	assert.Equal(t, env.height, log.Current.CreateHeight)
	assert.NotEmpty(t, log.Current.CreateTxHash)
}

func TestDuplicateMatch(t *testing.T) {
	env := newTestEnv(t)
	host, opponent := newAccount(t), newAccount(t)
	_, err := env.start(host, opponent.addr, "Rock")
	require.NoError(t, err)
	_, err = env.start(host, opponent.addr, "Paper")
	assert.Equal(t, rt.ErrDuplicateMatch, err)

	match, err := env.getMatch(host.addr, opponent.addr)
	require.NoError(t, err)
	assert.Equal(t, rt.Rock, match.HostMove)

	// 反向是另外一局
	_, err = env.start(opponent, host.addr, "Scissors")
	require.NoError(t, err)

	// 结算之后也不能再发起
	_, err = env.move(opponent, host.addr, opponent.addr, "Paper")
	require.NoError(t, err)
	_, err = env.start(host, opponent.addr, "Rock")
	assert.Equal(t, rt.ErrDuplicateMatch, err)
}

func TestMoveWithoutStart(t *testing.T) {
	env := newTestEnv(t)
	host, opponent := newAccount(t), newAccount(t)
	_, err := env.move(opponent, host.addr, opponent.addr, "Rock")
	assert.Equal(t, rt.ErrNoSuchMatch, err)

	all, err := env.query.Matches().ListAll(nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBlockedCaller(t *testing.T) {
	host, opponent := newAccount(t), newAccount(t)
	env := newTestEnv(t, host.addr)
	_, err := env.start(host, opponent.addr, "Rock")
	assert.Equal(t, rt.ErrCallerBlocked, err)
	_, err = env.getMatch(host.addr, opponent.addr)
	assert.Equal(t, rt.ErrMatchNotFound, err)

	// 只检查发起者
	_, err = env.start(opponent, host.addr, "Rock")
	require.NoError(t, err)
	_, err = env.move(host, opponent.addr, host.addr, "Paper")
	require.NoError(t, err)

	_, err = env.unblock(env.admin, host.addr)
	require.NoError(t, err)
	_, err = env.start(host, opponent.addr, "Rock")
	require.NoError(t, err)
}

func TestListByHost(t *testing.T) {
	env := newTestEnv(t)
	x, a, b, y := newAccount(t), newAccount(t), newAccount(t), newAccount(t)
	_, err := env.start(x, a.addr, "Rock")
	require.NoError(t, err)
	_, err = env.start(x, b.addr, "Paper")
	require.NoError(t, err)
	_, err = env.start(y, x.addr, "Scissors")
	require.NoError(t, err)

	reply, err := env.query.Query_GetMatchByHost(&rt.ReqAddr{Addr: x.addr})
	require.NoError(t, err)
	require.Len(t, reply.Matches, 2)
	opponents := map[string]bool{}
	for _, m := range reply.Matches {
		assert.Equal(t, x.addr, m.Host)
		opponents[m.Opponent] = true
	}
	assert.True(t, opponents[a.addr])
	assert.True(t, opponents[b.addr])

	reply, err = env.query.Query_GetMatchByHost(&rt.ReqAddr{Addr: a.addr})
	require.NoError(t, err)
	assert.Empty(t, reply.Matches)

	reply, err = env.query.Query_GetMatchByOpponent(&rt.ReqAddr{Addr: x.addr})
	require.NoError(t, err)
	require.Len(t, reply.Matches, 1)
	assert.Equal(t, y.addr, reply.Matches[0].Host)

	_, err = env.query.Query_GetMatchByOpponent(&rt.ReqAddr{Addr: "bad"})
	assert.Equal(t, rt.ErrInvalidIdentity, pkgerr.Cause(err))
}

func TestEndToEnd(t *testing.T) {
	cases := []struct {
		host, opponent string
		outcome        rt.Outcome
	}{
		{"Rock", "Scissors", rt.HostWins},
		{"Scissors", "Rock", rt.OpponentWins},
		{"Paper", "Paper", rt.Tie},
	}
	env := newTestEnv(t)
	for _, c := range cases {
		h, o := newAccount(t), newAccount(t)
		_, err := env.start(h, o.addr, c.host)
		require.NoError(t, err)
		receipt, err := env.move(o, h.addr, o.addr, c.opponent)
		require.NoError(t, err)

		var log rt.ReceiptMatch
		require.NoError(t, types.Decode(receipt.Logs[0].Log, &log))
		assert.Equal(t, "opponent_move", log.Method)
		assert.Equal(t, rt.OutcomeNone, log.Prev.Outcome)
		assert.Equal(t, c.outcome, log.Current.Outcome)

		match, err := env.getMatch(h.addr, o.addr)
		require.NoError(t, err)
		assert.Equal(t, c.outcome, match.Outcome)
		assert.Equal(t, rt.StatusResolved, match.Status())
		assert.Equal(t, env.height, match.ResolveHeight)
	}
}

func TestInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	host, opponent := newAccount(t), newAccount(t)

	_, err := env.start(host, "not an address", "Rock")
	assert.Equal(t, rt.ErrInvalidIdentity, pkgerr.Cause(err))
	_, err = env.start(host, opponent.addr, "Lizard")
	assert.Equal(t, rt.ErrInvalidMove, err)
	_, err = env.start(host, opponent.addr, "")
	assert.Equal(t, rt.ErrInvalidMove, err)
	_, err = env.start(host, opponent.addr, "rock")
	assert.Equal(t, rt.ErrInvalidMove, err)

	_, err = env.start(host, opponent.addr, "Rock")
	require.NoError(t, err)
	_, err = env.move(opponent, host.addr, opponent.addr, "Spock")
	assert.Equal(t, rt.ErrInvalidMove, err)
	_, err = env.move(opponent, host.addr, opponent.addr, "PAPER")
	assert.Equal(t, rt.ErrInvalidMove, err)
	_, err = env.move(opponent, "0x1234", opponent.addr, "Rock")
	assert.Equal(t, rt.ErrInvalidIdentity, pkgerr.Cause(err))
	_, err = env.move(opponent, host.addr, "", "Rock")
	assert.Equal(t, rt.ErrInvalidIdentity, pkgerr.Cause(err))

	match, err := env.getMatch(host.addr, opponent.addr)
	require.NoError(t, err)
	assert.Equal(t, rt.OutcomeNone, match.Outcome)
}

func TestEthAddressOpponent(t *testing.T) {
	env := newTestEnv(t)
	host := newAccount(t)
	eth := "0x" + strings.Repeat("AB", 20)
	_, err := env.start(host, eth, "Paper")
	require.NoError(t, err)

	match, err := env.getMatch(host.addr, strings.ToLower(eth))
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(eth), match.Opponent)

	_, err = env.move(host, host.addr, eth, "Rock")
	require.NoError(t, err)
	match, err = env.getMatch(host.addr, eth)
	require.NoError(t, err)
	assert.Equal(t, rt.HostWins, match.Outcome)
}

func TestResubmitAndAnyCaller(t *testing.T) {
	env := newTestEnv(t)
	host, opponent, other := newAccount(t), newAccount(t), newAccount(t)
	_, err := env.start(host, opponent.addr, "Rock")
	require.NoError(t, err)

	// 任何地址都可以提交对手的出拳
	_, err = env.move(other, host.addr, opponent.addr, "Scissors")
	require.NoError(t, err)
	match, err := env.getMatch(host.addr, opponent.addr)
	require.NoError(t, err)
	assert.Equal(t, rt.HostWins, match.Outcome)

	// 已结算的比赛再次提交会覆盖结果
	_, err = env.move(opponent, host.addr, opponent.addr, "Paper")
	require.NoError(t, err)
	match, err = env.getMatch(host.addr, opponent.addr)
	require.NoError(t, err)
	assert.Equal(t, rt.Paper, match.OpponentMove)
	assert.Equal(t, rt.OpponentWins, match.Outcome)
}

func TestSelfMatch(t *testing.T) {
	env := newTestEnv(t)
	host := newAccount(t)
	_, err := env.start(host, host.addr, "Rock")
	require.NoError(t, err)
	_, err = env.move(host, host.addr, host.addr, "Rock")
	require.NoError(t, err)
	match, err := env.getMatch(host.addr, host.addr)
	require.NoError(t, err)
	assert.Equal(t, rt.Tie, match.Outcome)
}

func TestModeration(t *testing.T) {
	env := newTestEnv(t)
	other, target := newAccount(t), newAccount(t)

	_, err := env.block(other, target.addr)
	assert.Equal(t, rt.ErrUnauthorized, err)
	_, err = env.block(env.admin, "bad address")
	assert.Equal(t, rt.ErrInvalidIdentity, pkgerr.Cause(err))

	receipt, err := env.block(env.admin, target.addr)
	require.NoError(t, err)
	var log rt.ReceiptBlacklist
	require.NoError(t, types.Decode(receipt.Logs[0].Log, &log))
	assert.Equal(t, opAdd, log.Op)
	assert.Equal(t, []string{target.addr}, log.List)

	_, err = env.block(env.admin, target.addr)
	assert.Equal(t, rt.ErrAlreadyBlocked, err)

	list, err := env.query.Query_GetBlacklist(&rt.ReqNil{})
	require.NoError(t, err)
	assert.Equal(t, []string{target.addr}, list.Addrs)

	_, err = env.unblock(other, target.addr)
	assert.Equal(t, rt.ErrUnauthorized, err)
	_, err = env.unblock(env.admin, target.addr)
	require.NoError(t, err)
	_, err = env.unblock(env.admin, target.addr)
	assert.Equal(t, rt.ErrNotBlocked, err)
	list, err = env.query.Query_GetBlacklist(&rt.ReqNil{})
	require.NoError(t, err)
	assert.Empty(t, list.Addrs)
}

func TestUpdateAdmin(t *testing.T) {
	env := newTestEnv(t)
	next, target := newAccount(t), newAccount(t)

	update := func(from *testAccount, admin string) error {
		_, err := env.send(from, &rt.RpsAction{Ty: rt.RpsActionUpdateAdmin, Admin: &rt.UpdateAdmin{Admin: admin}})
		return err
	}
	assert.Equal(t, rt.ErrUnauthorized, update(next, next.addr))
	assert.Equal(t, rt.ErrInvalidIdentity, pkgerr.Cause(update(env.admin, "xx")))
	require.NoError(t, update(env.admin, next.addr))

	admin, err := env.query.Query_GetAdmin(&rt.ReqNil{})
	require.NoError(t, err)
	assert.Equal(t, next.addr, admin.Admin)

	// 旧管理员失去权限
	_, err = env.block(env.admin, target.addr)
	assert.Equal(t, rt.ErrUnauthorized, err)
	_, err = env.block(next, target.addr)
	require.NoError(t, err)
}

func TestInitOnce(t *testing.T) {
	blocked := newAccount(t)
	env := newTestEnv(t, blocked.addr, blocked.addr)
	list, err := env.query.Query_GetBlacklist(&rt.ReqNil{})
	require.NoError(t, err)
	assert.Equal(t, []string{blocked.addr}, list.Addrs)

	receipt, err := env.exec.Init(&Config{Admin: newAccount(t).addr}, "")
	require.NoError(t, err)
	assert.Nil(t, receipt)
	admin, err := env.query.Query_GetAdmin(&rt.ReqNil{})
	require.NoError(t, err)
	assert.Equal(t, env.admin.addr, admin.Admin)

	version, err := env.db.Get(versionKey)
	require.NoError(t, err)
	assert.Equal(t, rt.Version, string(version))
}

func TestInitGenesisAdmin(t *testing.T) {
	db, err := dbm.NewDB("rps", dbm.MemDBBackendStr, "", 0)
	require.NoError(t, err)
	r := NewRps(db)
	genesis := newAccount(t)
	_, err = r.Init(nil, genesis.addr)
	require.NoError(t, err)
	admin, err := r.Query_GetAdmin(&rt.ReqNil{})
	require.NoError(t, err)
	assert.Equal(t, genesis.addr, admin.Admin)

	db2, err := dbm.NewDB("rps", dbm.MemDBBackendStr, "", 0)
	require.NoError(t, err)
	_, err = NewRps(db2).Init(&Config{Admin: "bad"}, genesis.addr)
	assert.Equal(t, rt.ErrInvalidIdentity, pkgerr.Cause(err))
}

func TestExecReject(t *testing.T) {
	env := newTestEnv(t)
	host := newAccount(t)

	tx := types.NewTransaction("coins", types.Encode(&rt.RpsAction{Ty: rt.RpsActionStart}))
	tx.Sign(types.SECP256K1, host.priv)
	_, err := env.exec.Exec(tx, 0)
	assert.Equal(t, types.ErrExecNameNotAllow, err)

	tx = types.NewTransaction(rt.RpsX, types.Encode(&rt.RpsAction{Ty: rt.RpsActionStart}))
	_, err = env.exec.Exec(tx, 0)
	assert.Equal(t, types.ErrNoSignature, err)

	_, err = env.send(host, &rt.RpsAction{Ty: rt.RpsActionStart})
	assert.Equal(t, types.ErrActionNotSupport, err)
	_, err = env.send(host, &rt.RpsAction{Ty: 100})
	assert.Equal(t, types.ErrActionNotSupport, err)

	tx = types.NewTransaction(rt.RpsX, []byte("{bad"))
	tx.Sign(types.SECP256K1, host.priv)
	_, err = env.exec.Exec(tx, 0)
	assert.Equal(t, types.ErrDecode, pkgerr.Cause(err))
}

func TestUpsertIf(t *testing.T) {
	db, err := dbm.NewDB("rps", dbm.MemDBBackendStr, "", 0)
	require.NoError(t, err)
	store := NewMatchStore(db)

	_, err = store.UpsertIf("h", "o", func(m *rt.Match) (*rt.Match, error) {
		assert.Nil(t, m)
		return nil, rt.ErrNoSuchMatch
	})
	assert.Equal(t, rt.ErrNoSuchMatch, err)
	match, err := store.Get("h", "o")
	require.NoError(t, err)
	assert.Nil(t, match)

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.UpsertIf("h", "o", func(m *rt.Match) (*rt.Match, error) {
				if m != nil {
					return nil, rt.ErrDuplicateMatch
				}
				return &rt.Match{Host: "h", Opponent: "o", HostMove: rt.Rock}, nil
			})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, created)

	// fn 修改参数不影响已保存的记录
	_, err = store.UpsertIf("h", "o", func(m *rt.Match) (*rt.Match, error) {
		m.HostMove = rt.Paper
		return nil, rt.ErrDuplicateMatch
	})
	assert.Equal(t, rt.ErrDuplicateMatch, err)
	match, err = store.Get("h", "o")
	require.NoError(t, err)
	assert.Equal(t, rt.Rock, match.HostMove)
}

func TestQueryDispatch(t *testing.T) {
	env := newTestEnv(t)
	host, opponent := newAccount(t), newAccount(t)
	_, err := env.start(host, opponent.addr, "Rock")
	require.NoError(t, err)

	params, _ := json.Marshal(&rt.ReqMatch{Host: host.addr, Opponent: opponent.addr})
	reply, err := env.query.Query(rt.FuncNameGetMatch, params)
	require.NoError(t, err)
	assert.Equal(t, host.addr, reply.(*rt.Match).Host)

	params, _ = json.Marshal(&rt.ReqAddr{Addr: host.addr})
	reply, err = env.query.Query(rt.FuncNameGetMatchByHost, params)
	require.NoError(t, err)
	assert.Len(t, reply.(*rt.ReplyMatches).Matches, 1)

	params, _ = json.Marshal(&rt.ReqAddr{Addr: opponent.addr})
	reply, err = env.query.Query(rt.FuncNameGetMatchByOpponent, params)
	require.NoError(t, err)
	assert.Len(t, reply.(*rt.ReplyMatches).Matches, 1)

	reply, err = env.query.Query(rt.FuncNameGetAdmin, nil)
	require.NoError(t, err)
	assert.Equal(t, env.admin.addr, reply.(*rt.ReplyAdmin).Admin)

	reply, err = env.query.Query(rt.FuncNameGetBlacklist, nil)
	require.NoError(t, err)
	assert.Empty(t, reply.(*rt.ReplyBlacklist).Addrs)

	_, err = env.query.Query(rt.FuncNameGetMatch, nil)
	assert.Equal(t, types.ErrInvalidParam, pkgerr.Cause(err))
	_, err = env.query.Query("NoSuchFunc", nil)
	assert.Equal(t, types.ErrQueryNotSupport, pkgerr.Cause(err))
}
