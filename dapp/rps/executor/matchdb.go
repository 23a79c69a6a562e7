// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"sync"

	dbm "github.com/33cn/rps/common/db"
	rt "github.com/33cn/rps/dapp/rps/types"
	"github.com/33cn/rps/types"
	"github.com/pkg/errors"
)

// StateKV 执行器使用的状态数据库, 迭代只需要看到已提交的数据
type StateKV interface {
	dbm.KV
	dbm.IteratorDB
}

func isNotFound(err error) bool {
	return err == types.ErrNotFound || err == dbm.ErrNotFoundInDb
}

// MatchStore (host, opponent) -> Match
type MatchStore struct {
	mu sync.Mutex
	db StateKV
}

// NewMatchStore new
func NewMatchStore(db StateKV) *MatchStore {
	return &MatchStore{db: db}
}

// Get 不存在时返回 nil, nil
func (s *MatchStore) Get(host, opponent string) (*rt.Match, error) {
	return s.get(calcMatchKey(host, opponent))
}

func (s *MatchStore) get(key []byte) (*rt.Match, error) {
	data, err := s.db.Get(key)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get match %s", string(key))
	}
	var match rt.Match
	if err := types.Decode(data, &match); err != nil {
		return nil, errors.Wrapf(err, "decode match %s", string(key))
	}
	return &match, nil
}

// UpsertIf 读取当前记录(可能为nil)交给fn, fn成功时写入返回的记录.
// fn 返回错误时不写入, 错误原样返回. 读取到写入之间持有锁.
func (s *MatchStore) UpsertIf(host, opponent string, fn func(*rt.Match) (*rt.Match, error)) (*types.KeyValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := calcMatchKey(host, opponent)
	current, err := s.get(key)
	if err != nil {
		return nil, err
	}
	next, err := fn(current.Clone())
	if err != nil {
		return nil, err
	}
	value := types.Encode(next)
	if err := s.db.Set(key, value); err != nil {
		return nil, errors.Wrapf(err, "set match %s", string(key))
	}
	return &types.KeyValue{Key: key, Value: value}, nil
}

// ListByHost host 发起的全部比赛, 按对手地址升序
func (s *MatchStore) ListByHost(host string) ([]*rt.Match, error) {
	return s.scan(calcMatchHostPrefix(host), nil)
}

// ListAll 遍历全部比赛, filter 为nil时全部返回
func (s *MatchStore) ListAll(filter func(*rt.Match) bool) ([]*rt.Match, error) {
	return s.scan([]byte(matchPrefix), filter)
}

func (s *MatchStore) scan(prefix []byte, filter func(*rt.Match) bool) ([]*rt.Match, error) {
	values, err := dbm.NewListHelper(s.db).PrefixScan(prefix)
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", string(prefix))
	}
	matches := make([]*rt.Match, 0, len(values))
	for _, value := range values {
		var match rt.Match
		if err := types.Decode(value, &match); err != nil {
			return nil, err
		}
		if filter == nil || filter(&match) {
			matches = append(matches, &match)
		}
	}
	return matches, nil
}
