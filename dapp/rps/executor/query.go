// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"github.com/33cn/rps/common/address"
	rt "github.com/33cn/rps/dapp/rps/types"
	"github.com/33cn/rps/types"
	"github.com/pkg/errors"
)

func validateQueryAddr(addr string) (string, error) {
	canonical, err := address.Validate(addr)
	if err != nil {
		return "", errors.Wrapf(rt.ErrInvalidIdentity, "%s", addr)
	}
	return canonical, nil
}

// Query_GetMatch 查询一局比赛
func (r *Rps) Query_GetMatch(in *rt.ReqMatch) (*rt.Match, error) {
	host, err := validateQueryAddr(in.Host)
	if err != nil {
		return nil, err
	}
	opponent, err := validateQueryAddr(in.Opponent)
	if err != nil {
		return nil, err
	}
	match, err := r.matches.Get(host, opponent)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, rt.ErrMatchNotFound
	}
	return match, nil
}

// Query_GetMatchByHost 地址发起的全部比赛
func (r *Rps) Query_GetMatchByHost(in *rt.ReqAddr) (*rt.ReplyMatches, error) {
	host, err := validateQueryAddr(in.Addr)
	if err != nil {
		return nil, err
	}
	matches, err := r.matches.ListByHost(host)
	if err != nil {
		return nil, err
	}
	return &rt.ReplyMatches{Matches: matches}, nil
}

// Query_GetMatchByOpponent 地址作为对手的全部比赛, 需要遍历全部比赛
func (r *Rps) Query_GetMatchByOpponent(in *rt.ReqAddr) (*rt.ReplyMatches, error) {
	opponent, err := validateQueryAddr(in.Addr)
	if err != nil {
		return nil, err
	}
	matches, err := r.matches.ListAll(func(m *rt.Match) bool {
		return m.Opponent == opponent
	})
	if err != nil {
		return nil, err
	}
	return &rt.ReplyMatches{Matches: matches}, nil
}

// Query_GetAdmin 当前管理员
func (r *Rps) Query_GetAdmin(in *rt.ReqNil) (*rt.ReplyAdmin, error) {
	admin, err := r.admin.Get()
	if err != nil {
		return nil, err
	}
	return &rt.ReplyAdmin{Admin: admin}, nil
}

// Query_GetBlacklist 黑名单
func (r *Rps) Query_GetBlacklist(in *rt.ReqNil) (*rt.ReplyBlacklist, error) {
	list, err := r.blacklist.List()
	if err != nil {
		return nil, err
	}
	return &rt.ReplyBlacklist{Addrs: list}, nil
}

// Query 按名称查询, params 为json编码的参数
func (r *Rps) Query(funcName string, params []byte) (interface{}, error) {
	rlog.Debug("Query", "funcName", funcName)
	switch funcName {
	case rt.FuncNameGetMatch:
		var req rt.ReqMatch
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return r.Query_GetMatch(&req)
	case rt.FuncNameGetMatchByHost:
		var req rt.ReqAddr
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return r.Query_GetMatchByHost(&req)
	case rt.FuncNameGetMatchByOpponent:
		var req rt.ReqAddr
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return r.Query_GetMatchByOpponent(&req)
	case rt.FuncNameGetAdmin:
		return r.Query_GetAdmin(&rt.ReqNil{})
	case rt.FuncNameGetBlacklist:
		return r.Query_GetBlacklist(&rt.ReqNil{})
	}
	return nil, errors.Wrapf(types.ErrQueryNotSupport, "funcName %s", funcName)
}

func decodeParams(params []byte, req interface{}) error {
	if len(params) == 0 {
		return errors.Wrap(types.ErrInvalidParam, "empty params")
	}
	return types.Decode(params, req)
}
