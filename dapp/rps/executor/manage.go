// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

/*
管理员与黑名单
 1. 只有管理员可以修改黑名单, 转移管理员
 2. 黑名单中的地址不能发起比赛
*/

import (
	dbm "github.com/33cn/rps/common/db"
	rt "github.com/33cn/rps/dapp/rps/types"
	"github.com/33cn/rps/types"
	"github.com/pkg/errors"
)

// RoleHolder 唯一的管理员
type RoleHolder interface {
	Get() (string, error)
	Set(addr string) (*types.KeyValue, error)
	Authorize(caller string) error
}

// MemberSet 有序的地址集合
type MemberSet interface {
	Has(addr string) (bool, error)
	Add(addr string) (*types.KeyValue, []string, error)
	Remove(addr string) (*types.KeyValue, []string, error)
	List() ([]string, error)
}

type adminDB struct {
	db dbm.KV
}

// NewRoleHolder 管理员保存在状态数据库中
func NewRoleHolder(db dbm.KV) RoleHolder {
	return &adminDB{db: db}
}

// 没有设置时返回空字符串
func (a *adminDB) Get() (string, error) {
	data, err := a.db.Get(adminKey)
	if isNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "get admin")
	}
	var admin rt.ReplyAdmin
	if err := types.Decode(data, &admin); err != nil {
		return "", err
	}
	return admin.Admin, nil
}

func (a *adminDB) Set(addr string) (*types.KeyValue, error) {
	value := types.Encode(&rt.ReplyAdmin{Admin: addr})
	if err := a.db.Set(adminKey, value); err != nil {
		return nil, err
	}
	return &types.KeyValue{Key: adminKey, Value: value}, nil
}

func (a *adminDB) Authorize(caller string) error {
	admin, err := a.Get()
	if err != nil {
		return err
	}
	if admin == "" || admin != caller {
		return rt.ErrUnauthorized
	}
	return nil
}

type blacklistDB struct {
	db dbm.KV
}

// NewMemberSet 黑名单保存在状态数据库中
func NewMemberSet(db dbm.KV) MemberSet {
	return &blacklistDB{db: db}
}

func (b *blacklistDB) List() ([]string, error) {
	data, err := b.db.Get(blacklistKey)
	if isNotFound(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get blacklist")
	}
	var list rt.ReplyBlacklist
	if err := types.Decode(data, &list); err != nil {
		return nil, err
	}
	if list.Addrs == nil {
		list.Addrs = []string{}
	}
	return list.Addrs, nil
}

func (b *blacklistDB) Has(addr string) (bool, error) {
	list, err := b.List()
	if err != nil {
		return false, err
	}
	return indexOf(list, addr) >= 0, nil
}

func (b *blacklistDB) Add(addr string) (*types.KeyValue, []string, error) {
	list, err := b.List()
	if err != nil {
		return nil, nil, err
	}
	if indexOf(list, addr) >= 0 {
		return nil, nil, rt.ErrAlreadyBlocked
	}
	return b.save(append(list, addr))
}

func (b *blacklistDB) Remove(addr string) (*types.KeyValue, []string, error) {
	list, err := b.List()
	if err != nil {
		return nil, nil, err
	}
	i := indexOf(list, addr)
	if i < 0 {
		return nil, nil, rt.ErrNotBlocked
	}
	next := make([]string, 0, len(list)-1)
	next = append(next, list[:i]...)
	next = append(next, list[i+1:]...)
	return b.save(next)
}

func (b *blacklistDB) save(list []string) (*types.KeyValue, []string, error) {
	value := types.Encode(&rt.ReplyBlacklist{Addrs: list})
	if err := b.db.Set(blacklistKey, value); err != nil {
		return nil, nil, err
	}
	return &types.KeyValue{Key: blacklistKey, Value: value}, list, nil
}

func indexOf(list []string, addr string) int {
	for i, v := range list {
		if v == addr {
			return i
		}
	}
	return -1
}

func (a *action) updateAdmin(update *rt.UpdateAdmin) (*types.Receipt, error) {
	newAdmin, err := a.validate(update.Admin)
	if err != nil {
		return nil, err
	}
	prev, err := a.admin.Get()
	if err != nil {
		return nil, err
	}
	if err := a.admin.Authorize(a.fromaddr); err != nil {
		rlog.Error("updateAdmin", "from", a.fromaddr, "admin", prev, "err", err)
		return nil, err
	}
	kv, err := a.admin.Set(newAdmin)
	if err != nil {
		return nil, err
	}
	rlog.Info("updateAdmin", "from", prev, "to", newAdmin)
	receiptLog := &types.ReceiptLog{Ty: rt.TyLogRpsAdmin, Log: types.Encode(&rt.ReceiptAdmin{Prev: prev, Current: newAdmin})}
	return &types.Receipt{Ty: types.ExecOk, KV: []*types.KeyValue{kv}, Logs: []*types.ReceiptLog{receiptLog}}, nil
}

func (a *action) modifyBlacklist(block *rt.BlockHost, op string) (*types.Receipt, error) {
	addr, err := a.validate(block.Addr)
	if err != nil {
		return nil, err
	}
	if err := a.admin.Authorize(a.fromaddr); err != nil {
		rlog.Error("modifyBlacklist", "from", a.fromaddr, "op", op, "err", err)
		return nil, err
	}
	var (
		kv   *types.KeyValue
		list []string
		ty   int32
	)
	if op == opAdd {
		kv, list, err = a.blacklist.Add(addr)
		ty = rt.TyLogRpsBlock
	} else {
		kv, list, err = a.blacklist.Remove(addr)
		ty = rt.TyLogRpsUnblock
	}
	if err != nil {
		return nil, err
	}
	rlog.Info("modifyBlacklist", "op", op, "addr", addr, "list", list)
	receiptLog := &types.ReceiptLog{Ty: ty, Log: types.Encode(&rt.ReceiptBlacklist{Op: op, Addr: addr, List: list})}
	return &types.Receipt{Ty: types.ExecOk, KV: []*types.KeyValue{kv}, Logs: []*types.ReceiptLog{receiptLog}}, nil
}

//黑名单操作
const (
	opAdd    = "add"
	opDelete = "delete"
)
