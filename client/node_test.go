// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package client

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/33cn/rps/common/address"
	"github.com/33cn/rps/common/crypto/secp256k1"
	dbm "github.com/33cn/rps/common/db"
	rt "github.com/33cn/rps/dapp/rps/types"
	"github.com/33cn/rps/types"
	pkgerr "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genKey(t *testing.T) (secp256k1.PrivKeySecp256k1, string) {
	priv, err := secp256k1.GenKey()
	require.NoError(t, err)
	return priv, address.PubKeyToAddr(priv.PubKey().Bytes())
}

func newTestNode(t *testing.T, db dbm.DB, admin string) *Node {
	cfg, sub, err := types.InitCfgString(fmt.Sprintf("[exec.sub.rps]\nadmin = %q\n", admin))
	require.NoError(t, err)
	node, err := NewWithDB(cfg, sub, db)
	require.NoError(t, err)
	return node
}

func startTx(t *testing.T, priv secp256k1.PrivKeySecp256k1, opponent, move string) *types.Transaction {
	payload, _ := json.Marshal(&rt.StartMatch{Opponent: opponent, HostMove: move})
	tx, err := rt.CreateTx(rt.ActionStartMatch, payload)
	require.NoError(t, err)
	tx.Sign(types.SECP256K1, priv)
	return tx
}

func TestSendTx(t *testing.T) {
	db, err := dbm.NewDB("node", dbm.MemDBBackendStr, "", 0)
	require.NoError(t, err)
	_, adminAddr := genKey(t)
	node := newTestNode(t, db, adminAddr)
	hostPriv, host := genKey(t)
	_, opponent := genKey(t)

	tx := startTx(t, hostPriv, opponent, "Rock")
	reply, err := node.SendTx(tx)
	require.NoError(t, err)
	assert.True(t, reply.IsOk)
	assert.Equal(t, tx.Hash(), reply.Msg)
	assert.Equal(t, int64(1), node.GetLastHeight())

	detail, err := node.QueryTx(tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.Height)
	assert.Equal(t, host, detail.From)
	require.Len(t, detail.Receipt.Logs, 1)
	assert.Equal(t, int32(rt.TyLogRpsStart), detail.Receipt.Logs[0].Ty)

	params, _ := json.Marshal(&rt.ReqMatch{Host: host, Opponent: opponent})
	res, err := node.Query(rt.RpsX, rt.FuncNameGetMatch, params)
	require.NoError(t, err)
	assert.Equal(t, rt.Rock, res.(*rt.Match).HostMove)

	_, err = node.SendTx(tx)
	assert.Equal(t, types.ErrTxDup, err)

	res, err = node.Query(rt.RpsX, rt.FuncNameGetAdmin, nil)
	require.NoError(t, err)
	assert.Equal(t, adminAddr, res.(*rt.ReplyAdmin).Admin)

	_, err = node.Query("coins", rt.FuncNameGetAdmin, nil)
	assert.Equal(t, types.ErrExecNameNotAllow, pkgerr.Cause(err))
}

func TestSendTxFailed(t *testing.T) {
	db, err := dbm.NewDB("node", dbm.MemDBBackendStr, "", 0)
	require.NoError(t, err)
	_, adminAddr := genKey(t)
	node := newTestNode(t, db, adminAddr)
	hostPriv, host := genKey(t)
	_, opponent := genKey(t)

	payload, _ := json.Marshal(&rt.OpponentMove{Host: host, Opponent: opponent, OpponentMove: "Paper"})
	tx, err := rt.CreateTx(rt.ActionOpponentMove, payload)
	require.NoError(t, err)

	_, err = node.SendTx(tx)
	assert.Equal(t, types.ErrNoSignature, err)

	tx.Sign(types.SECP256K1, hostPriv)
	_, err = node.SendTx(tx)
	assert.Equal(t, rt.ErrNoSuchMatch, err)
	assert.Equal(t, int64(0), node.GetLastHeight())
	_, err = node.QueryTx(tx.Hash())
	assert.Equal(t, types.ErrNotFound, err)

	// 修改交易内容后签名失效
	tx = startTx(t, hostPriv, opponent, "Rock")
	tx.Nonce++
	_, err = node.SendTx(tx)
	assert.Equal(t, types.ErrSign, err)

	tx = startTx(t, hostPriv, opponent, "Rock")
	tx.Expire = time.Now().Add(-time.Hour).Unix()
	tx.Sign(types.SECP256K1, hostPriv)
	_, err = node.SendTx(tx)
	assert.Equal(t, types.ErrTxExpire, err)

	_, err = node.SendTx(nil)
	assert.Equal(t, types.ErrInvalidParam, err)
	_, err = node.QueryTx(nil)
	assert.Equal(t, types.ErrInvalidParam, err)

	all, err := node.query.Matches().ListAll(nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNodeRestart(t *testing.T) {
	db, err := dbm.NewDB("node", dbm.GoLevelDBBackendStr, t.TempDir(), 16)
	require.NoError(t, err)
	_, adminAddr := genKey(t)
	node := newTestNode(t, db, adminAddr)
	hostPriv, host := genKey(t)
	_, opponent := genKey(t)

	tx := startTx(t, hostPriv, opponent, "Scissors")
	_, err = node.SendTx(tx)
	require.NoError(t, err)

	// 已经初始化过, 新的管理员配置不生效
	_, other := genKey(t)
	restarted := newTestNode(t, db, other)
	assert.Equal(t, int64(1), restarted.GetLastHeight())
	detail, err := restarted.QueryTx(tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, host, detail.From)
	res, err := restarted.Query(rt.RpsX, rt.FuncNameGetAdmin, nil)
	require.NoError(t, err)
	assert.Equal(t, adminAddr, res.(*rt.ReplyAdmin).Admin)

	_, err = restarted.SendTx(tx)
	assert.Equal(t, types.ErrTxDup, err)
	restarted.Close()
}

func TestSendTxConcurrent(t *testing.T) {
	db, err := dbm.NewDB("node", dbm.MemDBBackendStr, "", 0)
	require.NoError(t, err)
	_, adminAddr := genKey(t)
	node := newTestNode(t, db, adminAddr)
	_, opponent := genKey(t)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		priv, _ := genKey(t)
		tx := startTx(t, priv, opponent, "Paper")
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = node.SendTx(tx)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(n), node.GetLastHeight())

	params, _ := json.Marshal(&rt.ReqAddr{Addr: opponent})
	res, err := node.Query(rt.RpsX, rt.FuncNameGetMatchByOpponent, params)
	require.NoError(t, err)
	assert.Len(t, res.(*rt.ReplyMatches).Matches, n)
}

func TestNewWithDBBadSubConfig(t *testing.T) {
	cfg, sub, err := types.InitCfgString("[exec.sub.rps]\nadmin = 5\n")
	require.NoError(t, err)
	db, err := dbm.NewDB("node", dbm.MemDBBackendStr, "", 0)
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		_, err = NewWithDB(cfg, sub, db)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exec.sub.rps")
}

func TestCreateTransaction(t *testing.T) {
	db, err := dbm.NewDB("node", dbm.MemDBBackendStr, "", 0)
	require.NoError(t, err)
	node := newTestNode(t, db, "")

	tx, err := node.CreateTransaction("", rt.ActionBlockHost, json.RawMessage(`{"addr":"1FCX9XJTZXvZteagTrefJEBPZMt8BFmdoi"}`))
	require.NoError(t, err)
	assert.Nil(t, tx.Signature)
	_, err = node.CreateTransaction("coins", rt.ActionBlockHost, nil)
	assert.Equal(t, types.ErrExecNameNotAllow, err)

	// 未配置管理员时使用genesis
	res, err := node.Query(rt.RpsX, rt.FuncNameGetAdmin, nil)
	require.NoError(t, err)
	cfg, _ := types.ReadConfig()
	assert.Equal(t, cfg.Genesis, res.(*rt.ReplyAdmin).Admin)
}
