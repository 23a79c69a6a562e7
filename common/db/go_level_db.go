// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"bytes"
	"path"

	"github.com/33cn/rps/common/log"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var llog = log.New("module", "db.goleveldb")

func init() {
	dbCreator := func(name string, dir string, cache int) (DB, error) {
		return NewGoLevelDB(name, dir, cache)
	}
	registerDBCreator(LevelDBBackendStr, dbCreator, false)
	registerDBCreator(GoLevelDBBackendStr, dbCreator, false)
}

//GoLevelDB db
type GoLevelDB struct {
	db *leveldb.DB
}

//NewGoLevelDB new
func NewGoLevelDB(name string, dir string, cache int) (*GoLevelDB, error) {
	dbPath := path.Join(dir, name+".db")
	if cache == 0 {
		cache = 64
	}
	handles := cache
	if handles < 16 {
		handles = 16
	}
	if cache < 4 {
		cache = 4
	}
	// Open the db and recover any potential corruptions
	db, err := leveldb.OpenFile(dbPath, &opt.Options{
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		llog.Warn("db corrupted, try recover", "path", dbPath)
		db, err = leveldb.RecoverFile(dbPath, nil)
	}
	if err != nil {
		return nil, err
	}
	return &GoLevelDB{db: db}, nil
}

//Get get
func (db *GoLevelDB) Get(key []byte) ([]byte, error) {
	res, err := db.db.Get(key, nil)
	if err != nil {
		if err == errors.ErrNotFound {
			return nil, ErrNotFoundInDb
		}
		llog.Error("Get", "error", err)
		return nil, err
	}
	return res, nil
}

//Set set
func (db *GoLevelDB) Set(key []byte, value []byte) error {
	return db.put(key, value, nil)
}

//SetSync 同步写
func (db *GoLevelDB) SetSync(key []byte, value []byte) error {
	return db.put(key, value, &opt.WriteOptions{Sync: true})
}

func (db *GoLevelDB) put(key []byte, value []byte, wo *opt.WriteOptions) error {
	err := db.db.Put(key, value, wo)
	if err != nil {
		llog.Error("Set", "error", err)
	}
	return err
}

//Delete 删除
func (db *GoLevelDB) Delete(key []byte) error {
	return db.db.Delete(key, nil)
}

//DeleteSync 同步删除
func (db *GoLevelDB) DeleteSync(key []byte) error {
	return db.db.Delete(key, &opt.WriteOptions{Sync: true})
}

//DB db
func (db *GoLevelDB) DB() *leveldb.DB {
	return db.db
}

//Close 关闭
func (db *GoLevelDB) Close() {
	err := db.db.Close()
	if err != nil {
		llog.Error("Close", "error", err)
	}
}

//Stats ...
func (db *GoLevelDB) Stats() map[string]string {
	keys := []string{
		"leveldb.stats",
		"leveldb.sstables",
		"leveldb.blockpool",
		"leveldb.cachedblock",
		"leveldb.openedtables",
		"leveldb.alivesnaps",
		"leveldb.aliveiters",
	}
	stats := make(map[string]string)
	for _, key := range keys {
		str, err := db.db.GetProperty(key)
		if err == nil {
			stats[key] = str
		}
	}
	return stats
}

//Iterator 迭代器
func (db *GoLevelDB) Iterator(prefix []byte, reverse bool) Iterator {
	return newLevelIterator(db.db.NewIterator(prefixRange(prefix), nil), reverse)
}

//NewBatch new
func (db *GoLevelDB) NewBatch(sync bool) Batch {
	return &goLevelDBBatch{db: db, batch: new(leveldb.Batch), wop: &opt.WriteOptions{Sync: sync}}
}

func prefixRange(prefix []byte) *util.Range {
	if len(prefix) == 0 {
		return nil
	}
	return util.BytesPrefix(prefix)
}

// goleveldb 与 memdb 共用的迭代器
type levelIterator struct {
	iterator.Iterator
	reverse bool
}

func newLevelIterator(it iterator.Iterator, reverse bool) *levelIterator {
	return &levelIterator{Iterator: it, reverse: reverse}
}

func (it *levelIterator) Rewind() bool {
	if it.reverse {
		return it.Last()
	}
	return it.First()
}

func (it *levelIterator) Next() bool {
	if it.reverse {
		return it.Iterator.Prev()
	}
	return it.Iterator.Next()
}

// 逆序时定位到不大于key的最后一个元素
func (it *levelIterator) Seek(key []byte) bool {
	if !it.reverse {
		return it.Iterator.Seek(key)
	}
	if !it.Iterator.Seek(key) {
		return it.Last()
	}
	if bytes.Equal(it.Key(), key) {
		return true
	}
	return it.Iterator.Prev()
}

func (it *levelIterator) ValueCopy() []byte {
	return cloneByte(it.Value())
}

func (it *levelIterator) Close() {
	it.Release()
}

type goLevelDBBatch struct {
	db    *GoLevelDB
	batch *leveldb.Batch
	wop   *opt.WriteOptions
	size  int
}

func (mBatch *goLevelDBBatch) Set(key, value []byte) {
	mBatch.batch.Put(key, value)
	mBatch.size += len(value)
}

func (mBatch *goLevelDBBatch) Delete(key []byte) {
	mBatch.batch.Delete(key)
	mBatch.size++
}

func (mBatch *goLevelDBBatch) Write() error {
	err := mBatch.db.db.Write(mBatch.batch, mBatch.wop)
	if err != nil {
		llog.Error("Write", "error", err)
	}
	return err
}

func (mBatch *goLevelDBBatch) ValueSize() int {
	return mBatch.size
}

func (mBatch *goLevelDBBatch) Reset() {
	mBatch.batch.Reset()
	mBatch.size = 0
}
