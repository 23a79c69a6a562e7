// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package executor 执行器使用的状态数据库缓存
package executor

import (
	"sort"

	dbm "github.com/33cn/rps/common/db"
	"github.com/33cn/rps/common/log"
	"github.com/33cn/rps/types"
)

var elog = log.New("module", "execs.statedb")

// StateDB 状态数据库的内存事务
// Begin 之后的Set只写入txcache, Commit 合并到cache, Rollback 丢弃,
// Flush 把cache批量写入底层数据库. 迭代只看到已经Flush的数据.
type StateDB struct {
	db      dbm.DB
	cache   map[string][]byte
	txcache map[string][]byte
	keys    []string
	intx    bool
}

// NewStateDB new state db
func NewStateDB(db dbm.DB) *StateDB {
	return &StateDB{
		db:    db,
		cache: make(map[string][]byte),
	}
}

// Begin 开启内存事务处理
func (s *StateDB) Begin() {
	s.intx = true
	s.keys = nil
	s.txcache = nil
}

// Rollback reset tx
func (s *StateDB) Rollback() {
	s.resetTx()
}

// Commit 事务中的修改合并到cache
func (s *StateDB) Commit() {
	for k, v := range s.txcache {
		s.cache[k] = v
	}
	s.resetTx()
}

func (s *StateDB) resetTx() {
	s.intx = false
	s.txcache = nil
	s.keys = nil
}

// Get get value from state db
func (s *StateDB) Get(key []byte) ([]byte, error) {
	skey := string(key)
	if s.intx && s.txcache != nil {
		if value, ok := s.txcache[skey]; ok {
			return value, nil
		}
	}
	if value, ok := s.cache[skey]; ok {
		return value, nil
	}
	value, err := s.db.Get(key)
	if err == dbm.ErrNotFoundInDb {
		return nil, types.ErrNotFound
	}
	if err != nil {
		elog.Error("Get", "key", skey, "error", err)
		return nil, err
	}
	return value, nil
}

// Set set key value to state db
func (s *StateDB) Set(key []byte, value []byte) error {
	skey := string(key)
	value = append([]byte(nil), value...)
	if s.intx {
		if s.txcache == nil {
			s.txcache = make(map[string][]byte)
		}
		s.keys = append(s.keys, skey)
		s.txcache[skey] = value
		return nil
	}
	s.cache[skey] = value
	return nil
}

// GetSetKeys 当前事务中写入的key
func (s *StateDB) GetSetKeys() []string {
	return s.keys
}

// Iterator 已经写入数据库的数据
func (s *StateDB) Iterator(prefix []byte, reverse bool) dbm.Iterator {
	return s.db.Iterator(prefix, reverse)
}

// KVs cache中未写入的数据, 按key排序
func (s *StateDB) KVs() []*types.KeyValue {
	keys := make([]string, 0, len(s.cache))
	for k := range s.cache {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kvs := make([]*types.KeyValue, 0, len(keys))
	for _, k := range keys {
		kvs = append(kvs, &types.KeyValue{Key: []byte(k), Value: s.cache[k]})
	}
	return kvs
}

// Flush 批量写入数据库并清空cache, 写入失败时cache保留
func (s *StateDB) Flush(sync bool) error {
	if len(s.cache) == 0 {
		return nil
	}
	batch := s.db.NewBatch(sync)
	for k, v := range s.cache {
		batch.Set([]byte(k), v)
	}
	if err := batch.Write(); err != nil {
		elog.Error("Flush", "error", err)
		return err
	}
	s.cache = make(map[string][]byte)
	return nil
}

// Reset 丢弃所有未写入的数据
func (s *StateDB) Reset() {
	s.resetTx()
	s.cache = make(map[string][]byte)
}
