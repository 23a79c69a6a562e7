// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db 状态数据库的存储接口以及goleveldb, memdb, badger三种实现
package db

import (
	"bytes"
	"errors"

	pkgerr "github.com/pkg/errors"
)

// ErrNotFoundInDb key不存在
var ErrNotFoundInDb = errors.New("ErrNotFoundInDb")

// ErrUnknownBackend 未注册的数据库类型
var ErrUnknownBackend = errors.New("ErrUnknownBackend")

//KV 执行器使用的最小读写接口
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key []byte, value []byte) error
}

//IteratorDB 可迭代的接口
type IteratorDB interface {
	// prefix 为空表示全部数据, reverse 为true时从大到小迭代
	Iterator(prefix []byte, reverse bool) Iterator
}

//DB 数据库接口
type DB interface {
	KV
	IteratorDB
	SetSync([]byte, []byte) error
	Delete([]byte) error
	DeleteSync([]byte) error
	Close()
	NewBatch(sync bool) Batch
	Stats() map[string]string
}

//Batch 批量写入, Write 之前的修改都不可见
type Batch interface {
	Set(key, value []byte)
	Delete(key []byte)
	Write() error
	ValueSize() int
	Reset()
}

//Iterator 前缀迭代器
type Iterator interface {
	Rewind() bool
	Next() bool
	Valid() bool
	Seek(key []byte) bool
	Key() []byte
	Value() []byte
	ValueCopy() []byte
	Error() error
	Close()
}

//数据库类型
const (
	LevelDBBackendStr    = "leveldb" // legacy, defaults to goleveldb.
	GoLevelDBBackendStr  = "goleveldb"
	MemDBBackendStr      = "memdb"
	GoBadgerDBBackendStr = "gobadgerdb"
)

type dbCreator func(name string, dir string, cache int) (DB, error)

var backends = map[string]dbCreator{}

func registerDBCreator(backend string, creator dbCreator, force bool) {
	_, ok := backends[backend]
	if !force && ok {
		return
	}
	backends[backend] = creator
}

//NewDB 根据类型创建数据库
func NewDB(name string, backend string, dir string, cache int) (DB, error) {
	creator, ok := backends[backend]
	if !ok {
		return nil, pkgerr.Wrapf(ErrUnknownBackend, "backend %s", backend)
	}
	db, err := creator(name, dir, cache)
	if err != nil {
		return nil, pkgerr.Wrapf(err, "open %s db %s in %s", backend, name, dir)
	}
	return db, nil
}

func cloneByte(v []byte) []byte {
	if v == nil {
		return nil
	}
	value := make([]byte, len(v))
	copy(value, v)
	return value
}

// prefix 之后的第一个key, 全为0xff时返回nil
func bytesPrefixEnd(prefix []byte) []byte {
	limit := cloneByte(prefix)
	for i := len(limit) - 1; i >= 0; i-- {
		c := limit[i]
		if c < 0xff {
			limit[i] = c + 1
			return limit[:i+1]
		}
	}
	return nil
}

func hasPrefix(key, prefix []byte) bool {
	return bytes.HasPrefix(key, prefix)
}
