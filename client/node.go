// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package client 单节点的交易执行和查询

交易按收到的顺序串行执行:
验签 -> 重复检查 -> 在状态缓存上执行 -> 成功时写入回执和高度 -> 批量写入数据库
查询直接读取已写入数据库的数据.
*/
package client

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/33cn/rps/common"
	dbm "github.com/33cn/rps/common/db"
	"github.com/33cn/rps/common/log"
	rpsexec "github.com/33cn/rps/dapp/rps/executor"
	rt "github.com/33cn/rps/dapp/rps/types"
	"github.com/33cn/rps/executor"
	"github.com/33cn/rps/types"
	lru "github.com/hashicorp/golang-lru"
	pkgerr "github.com/pkg/errors"
)

var clog = log.New("module", "client")

const txCacheSize = 10240

// Node 实现 QueueProtocolAPI
type Node struct {
	mu      sync.Mutex
	db      dbm.DB
	state   *executor.StateDB
	exec    *rpsexec.Rps
	query   *rpsexec.Rps
	height  int64
	txCache *lru.Cache
	// 测试中固定执行时间
	now func() time.Time
}

// New 按配置打开状态数据库
func New(cfg *types.Config, sub *types.ConfigSubModule) (*Node, error) {
	db, err := dbm.NewDB(cfg.Store.Name, cfg.Store.Driver, cfg.Store.DbPath, int(cfg.Store.DbCache))
	if err != nil {
		return nil, err
	}
	node, err := NewWithDB(cfg, sub, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return node, nil
}

// NewWithDB 使用已经打开的数据库, 第一次启动时写入执行器的初始状态
func NewWithDB(cfg *types.Config, sub *types.ConfigSubModule, db dbm.DB) (*Node, error) {
	var execCfg rpsexec.Config
	if sub != nil {
		if err := types.DecodeSub(sub.Exec, rt.RpsX, &execCfg); err != nil {
			clog.Error("decode rps config", "err", err)
			return nil, err
		}
	}
	cache, err := lru.New(txCacheSize)
	if err != nil {
		return nil, err
	}
	state := executor.NewStateDB(db)
	n := &Node{
		db:      db,
		state:   state,
		exec:    rpsexec.NewRps(state),
		query:   rpsexec.NewRps(db),
		txCache: cache,
		now:     time.Now,
	}
	if n.height, err = n.loadHeight(); err != nil {
		return nil, err
	}
	receipt, err := n.exec.Init(&execCfg, cfg.Genesis)
	if err != nil {
		clog.Error("init rps", "err", err)
		return nil, err
	}
	if receipt != nil {
		if err := state.Flush(true); err != nil {
			return nil, err
		}
	}
	clog.Info("node started", "height", n.height, "driver", n.exec.GetDriverName())
	return n, nil
}

func (n *Node) loadHeight() (int64, error) {
	value, err := n.db.Get(rpsexec.HeightKey())
	if err == dbm.ErrNotFoundInDb {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	height, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return 0, pkgerr.Wrapf(types.ErrDecode, "height %s", string(value))
	}
	return height, nil
}

// SendTx 执行一笔交易, 失败的交易不写入任何数据
func (n *Node) SendTx(param *types.Transaction) (*types.Reply, error) {
	if param == nil {
		clog.Error("SendTx", "Error", types.ErrInvalidParam)
		return nil, types.ErrInvalidParam
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	blocktime := n.now().Unix()
	if err := param.Check(blocktime); err != nil {
		clog.Error("SendTx", "check", err)
		return nil, err
	}
	hash := param.Hash()
	if _, err := n.queryTx(hash); err == nil {
		return nil, types.ErrTxDup
	} else if err != types.ErrNotFound {
		return nil, err
	}

	height := n.height + 1
	n.exec.SetEnv(height, blocktime)
	n.state.Begin()
	receipt, err := n.exec.Exec(param, 0)
	if err != nil {
		n.state.Rollback()
		clog.Error("SendTx", "hash", common.ToHex(hash), "err", err)
		return nil, err
	}
	n.state.Commit()

	detail := &types.TxDetail{
		Tx:        param,
		Receipt:   &types.ReceiptData{Ty: receipt.Ty, Logs: receipt.Logs},
		Height:    height,
		Hash:      hash,
		From:      param.From(),
		Blocktime: blocktime,
	}
	if err := n.state.Set(rpsexec.CalcTxKey(common.ToHex(hash)), types.Encode(detail)); err != nil {
		n.state.Reset()
		return nil, err
	}
	if err := n.state.Set(rpsexec.HeightKey(), []byte(strconv.FormatInt(height, 10))); err != nil {
		n.state.Reset()
		return nil, err
	}
	if err := n.state.Flush(true); err != nil {
		n.state.Reset()
		return nil, err
	}
	n.height = height
	n.txCache.Add(string(hash), detail)
	clog.Debug("SendTx", "hash", common.ToHex(hash), "height", height, "kv", len(receipt.KV))
	return &types.Reply{IsOk: true, Msg: hash}, nil
}

// CreateTransaction 创建未签名交易
func (n *Node) CreateTransaction(execer, actionName string, payload json.RawMessage) (*types.Transaction, error) {
	if execer != "" && execer != rt.RpsX {
		return nil, types.ErrExecNameNotAllow
	}
	return rt.CreateTx(actionName, payload)
}

// QueryTx 先查缓存, 再查数据库
func (n *Node) QueryTx(hash []byte) (*types.TxDetail, error) {
	if len(hash) == 0 {
		return nil, types.ErrInvalidParam
	}
	return n.queryTx(hash)
}

func (n *Node) queryTx(hash []byte) (*types.TxDetail, error) {
	if v, ok := n.txCache.Get(string(hash)); ok {
		return v.(*types.TxDetail), nil
	}
	data, err := n.db.Get(rpsexec.CalcTxKey(common.ToHex(hash)))
	if err == dbm.ErrNotFoundInDb {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var detail types.TxDetail
	if err := types.Decode(data, &detail); err != nil {
		return nil, err
	}
	n.txCache.Add(string(hash), &detail)
	return &detail, nil
}

// Query 执行器查询, 不需要持有锁
func (n *Node) Query(driver, funcName string, param []byte) (interface{}, error) {
	if driver != rt.RpsX {
		return nil, pkgerr.Wrapf(types.ErrExecNameNotAllow, "driver %s", driver)
	}
	return n.query.Query(funcName, param)
}

// GetLastHeight 已执行的交易数
func (n *Node) GetLastHeight() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.height
}

// Close 关闭数据库
func (n *Node) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.db.Close()
	clog.Info("node closed", "height", n.height)
}
