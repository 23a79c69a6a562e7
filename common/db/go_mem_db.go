// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"strconv"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/comparer"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/memdb"
)

// memdb 无需区分同步与异步操作

func init() {
	dbCreator := func(name string, dir string, cache int) (DB, error) {
		return NewGoMemDB(name, dir, cache)
	}
	registerDBCreator(MemDBBackendStr, dbCreator, false)
}

//GoMemDB 内存数据库, 按key有序, 主要用于测试
type GoMemDB struct {
	db *memdb.DB
}

//NewGoMemDB new
func NewGoMemDB(name string, dir string, cache int) (*GoMemDB, error) {
	// memdb 不需要创建文件
	return &GoMemDB{db: memdb.New(comparer.DefaultComparer, cache*1024)}, nil
}

//Get get
func (db *GoMemDB) Get(key []byte) ([]byte, error) {
	v, err := db.db.Get(key)
	if err != nil {
		if err == errors.ErrNotFound {
			return nil, ErrNotFoundInDb
		}
		return nil, err
	}
	return cloneByte(v), nil
}

//Set set
func (db *GoMemDB) Set(key []byte, value []byte) error {
	return db.db.Put(key, value)
}

//SetSync 同Set
func (db *GoMemDB) SetSync(key []byte, value []byte) error {
	return db.Set(key, value)
}

//Delete 删除, key不存在时不报错
func (db *GoMemDB) Delete(key []byte) error {
	err := db.db.Delete(key)
	if err == errors.ErrNotFound {
		return nil
	}
	return err
}

//DeleteSync 同Delete
func (db *GoMemDB) DeleteSync(key []byte) error {
	return db.Delete(key)
}

//Close 清空数据
func (db *GoMemDB) Close() {
	db.db.Reset()
}

//Stats ...
func (db *GoMemDB) Stats() map[string]string {
	return map[string]string{
		"memdb.len":  strconv.Itoa(db.db.Len()),
		"memdb.size": strconv.Itoa(db.db.Size()),
	}
}

//Iterator 迭代器
func (db *GoMemDB) Iterator(prefix []byte, reverse bool) Iterator {
	return newLevelIterator(db.db.NewIterator(prefixRange(prefix)), reverse)
}

//NewBatch new
func (db *GoMemDB) NewBatch(sync bool) Batch {
	return &memBatch{db: db, batch: new(leveldb.Batch)}
}

type memBatch struct {
	db    *GoMemDB
	batch *leveldb.Batch
	size  int
}

func (b *memBatch) Set(key, value []byte) {
	b.batch.Put(key, value)
	b.size += len(value)
}

func (b *memBatch) Delete(key []byte) {
	b.batch.Delete(key)
	b.size++
}

func (b *memBatch) Write() error {
	replay := &memReplay{db: b.db}
	if err := b.batch.Replay(replay); err != nil {
		return err
	}
	return replay.err
}

func (b *memBatch) ValueSize() int {
	return b.size
}

func (b *memBatch) Reset() {
	b.batch.Reset()
	b.size = 0
}

type memReplay struct {
	db  *GoMemDB
	err error
}

func (r *memReplay) Put(key, value []byte) {
	if r.err == nil {
		r.err = r.db.Set(key, value)
	}
}

func (r *memReplay) Delete(key []byte) {
	if r.err == nil {
		r.err = r.db.Delete(key)
	}
}
