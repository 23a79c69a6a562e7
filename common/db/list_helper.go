// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"github.com/33cn/rps/common/log"
)

//ListHelper 前缀列表查询
type ListHelper struct {
	db IteratorDB
}

var listlog = log.New("module", "db.ListHelper")

//NewListHelper new
func NewListHelper(db IteratorDB) *ListHelper {
	return &ListHelper{db}
}

//列表方向
const (
	ListDESC = int32(0)
	ListASC  = int32(1)
)

//PrefixScan 按key升序返回前缀下的全部value
func (db *ListHelper) PrefixScan(prefix []byte) ([][]byte, error) {
	return db.scan(prefix, nil, 0, ListASC)
}

//List 从key之后(不含key)开始取count个, key为空时从头或从尾开始, count<=0表示不限
func (db *ListHelper) List(prefix, key []byte, count, direction int32) ([][]byte, error) {
	return db.scan(prefix, key, count, direction)
}

func (db *ListHelper) scan(prefix, key []byte, count, direction int32) (values [][]byte, err error) {
	it := db.db.Iterator(prefix, direction == ListDESC)
	defer it.Close()

	var ok bool
	if len(key) == 0 {
		ok = it.Rewind()
	} else {
		ok = it.Seek(key)
		if ok && string(it.Key()) == string(key) {
			ok = it.Next()
		}
	}
	var i int32
	for ; ok; ok = it.Next() {
		value := it.ValueCopy()
		if it.Error() != nil {
			listlog.Error("scan it.Value()", "error", it.Error())
			return nil, it.Error()
		}
		values = append(values, value)
		i++
		if count > 0 && i == count {
			break
		}
	}
	return values, it.Error()
}
