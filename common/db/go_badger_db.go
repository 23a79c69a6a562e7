// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"bytes"
	"fmt"
	"os"
	"path"

	"github.com/33cn/rps/common/log"
	"github.com/dgraph-io/badger"
	log15 "github.com/inconshreveable/log15"
)

var blog = log.New("module", "db.gobadgerdb")

func init() {
	dbCreator := func(name string, dir string, cache int) (DB, error) {
		return NewGoBadgerDB(name, dir, cache)
	}
	registerDBCreator(GoBadgerDBBackendStr, dbCreator, false)
}

//GoBadgerDB db
type GoBadgerDB struct {
	db *badger.DB
}

// badger 内部日志转到模块日志
type badgerLogger struct {
	log15.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warn(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.Debug(fmt.Sprintf(format, args...))
}

//NewGoBadgerDB new
func NewGoBadgerDB(name string, dir string, cache int) (*GoBadgerDB, error) {
	// badger 只创建最后一级目录
	if err := os.MkdirAll(dir, 0755); err != nil {
		blog.Error("NewGoBadgerDB", "dir", dir, "error", err)
		return nil, err
	}
	opts := badger.DefaultOptions(path.Join(dir, name+".db"))
	opts.Logger = badgerLogger{blog}
	db, err := badger.Open(opts)
	if err != nil {
		blog.Error("NewGoBadgerDB", "error", err)
		return nil, err
	}
	return &GoBadgerDB{db: db}, nil
}

//Get get
func (db *GoBadgerDB) Get(key []byte) ([]byte, error) {
	var val []byte
	err := db.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFoundInDb
	}
	if err != nil {
		blog.Error("Get", "error", err)
		return nil, err
	}
	return val, nil
}

//Set set
func (db *GoBadgerDB) Set(key []byte, value []byte) error {
	err := db.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		blog.Error("Set", "error", err)
	}
	return err
}

//SetSync badger 的事务提交即为同步写
func (db *GoBadgerDB) SetSync(key []byte, value []byte) error {
	return db.Set(key, value)
}

//Delete 删除
func (db *GoBadgerDB) Delete(key []byte) error {
	return db.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

//DeleteSync 同步删除
func (db *GoBadgerDB) DeleteSync(key []byte) error {
	return db.Delete(key)
}

//DB db
func (db *GoBadgerDB) DB() *badger.DB {
	return db.db
}

//Close 关闭
func (db *GoBadgerDB) Close() {
	err := db.db.Close()
	if err != nil {
		blog.Error("Close", "error", err)
	}
}

//Stats ...
func (db *GoBadgerDB) Stats() map[string]string {
	lsm, vlog := db.db.Size()
	return map[string]string{
		"badger.lsm":  fmt.Sprint(lsm),
		"badger.vlog": fmt.Sprint(vlog),
	}
}

//Iterator 迭代器, Close 时释放只读事务
func (db *GoBadgerDB) Iterator(prefix []byte, reverse bool) Iterator {
	txn := db.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.Reverse = reverse
	return &badgerIt{txn: txn, it: txn.NewIterator(opts), prefix: cloneByte(prefix), reverse: reverse}
}

type badgerIt struct {
	txn     *badger.Txn
	it      *badger.Iterator
	prefix  []byte
	reverse bool
	err     error
}

func (it *badgerIt) Rewind() bool {
	if it.reverse && len(it.prefix) > 0 {
		end := bytesPrefixEnd(it.prefix)
		if end != nil {
			return it.seekReverse(end)
		}
		it.it.Rewind()
		return it.Valid()
	}
	if len(it.prefix) > 0 {
		it.it.Seek(it.prefix)
	} else {
		it.it.Rewind()
	}
	return it.Valid()
}

// 逆序定位到不大于key的最后一个元素, 跳过等于key但不在前缀范围内的元素
func (it *badgerIt) seekReverse(key []byte) bool {
	it.it.Seek(key)
	if it.it.Valid() && !hasPrefix(it.it.Item().Key(), it.prefix) && bytes.Compare(it.it.Item().Key(), it.prefix) > 0 {
		it.it.Next()
	}
	return it.Valid()
}

func (it *badgerIt) Seek(key []byte) bool {
	if it.reverse {
		return it.seekReverse(key)
	}
	it.it.Seek(key)
	return it.Valid()
}

func (it *badgerIt) Next() bool {
	it.it.Next()
	return it.Valid()
}

func (it *badgerIt) Valid() bool {
	return it.it.ValidForPrefix(it.prefix)
}

func (it *badgerIt) Key() []byte {
	return it.it.Item().Key()
}

func (it *badgerIt) Value() []byte {
	value, err := it.it.Item().ValueCopy(nil)
	if err != nil {
		it.err = err
	}
	return value
}

func (it *badgerIt) ValueCopy() []byte {
	return it.Value()
}

func (it *badgerIt) Error() error {
	return it.err
}

func (it *badgerIt) Close() {
	it.it.Close()
	it.txn.Discard()
}

//NewBatch 使用一个读写事务做批量写入
func (db *GoBadgerDB) NewBatch(sync bool) Batch {
	return &badgerBatch{db: db, txn: db.db.NewTransaction(true)}
}

type badgerBatch struct {
	db   *GoBadgerDB
	txn  *badger.Txn
	size int
	err  error
}

func (b *badgerBatch) Set(key, value []byte) {
	if b.err == nil {
		b.err = b.txn.Set(cloneByte(key), cloneByte(value))
	}
	b.size += len(value)
}

func (b *badgerBatch) Delete(key []byte) {
	if b.err == nil {
		b.err = b.txn.Delete(cloneByte(key))
	}
	b.size++
}

func (b *badgerBatch) Write() error {
	if b.err != nil {
		b.txn.Discard()
		return b.err
	}
	err := b.txn.Commit()
	if err != nil {
		blog.Error("Write", "error", err)
	}
	return err
}

func (b *badgerBatch) ValueSize() int {
	return b.size
}

func (b *badgerBatch) Reset() {
	b.txn.Discard()
	b.txn = b.db.db.NewTransaction(true)
	b.size = 0
	b.err = nil
}
