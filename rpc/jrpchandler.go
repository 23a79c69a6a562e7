// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rpc

import (
	"github.com/33cn/rps/client"
	"github.com/33cn/rps/common"
	rt "github.com/33cn/rps/dapp/rps/types"
	"github.com/33cn/rps/metrics"
	rpctypes "github.com/33cn/rps/rpc/types"
	"github.com/33cn/rps/types"
	pkgerr "github.com/pkg/errors"
)

// Rps jsonrpc 服务, 注册名称 "Rps"
type Rps struct {
	cli client.QueueProtocolAPI
}

// CreateRawTransaction 创建未签名交易, 返回十六进制编码
func (c *Rps) CreateRawTransaction(in *rpctypes.CreateTxIn, result *interface{}) error {
	if in == nil {
		return types.ErrInvalidParam
	}
	tx, err := c.cli.CreateTransaction(in.Execer, in.ActionName, in.Payload)
	if err != nil {
		return err
	}
	*result = common.ToHex(types.Encode(tx))
	return nil
}

// SendTransaction 执行已签名交易, 返回交易哈希
func (c *Rps) SendTransaction(in rpctypes.RawParm, result *interface{}) error {
	data, err := common.FromHex(in.Data)
	if err != nil {
		return pkgerr.Wrap(types.ErrInvalidParam, err.Error())
	}
	var tx types.Transaction
	if err := types.Decode(data, &tx); err != nil {
		return err
	}
	log.Debug("SendTransaction", "execer", tx.Execer, "from", tx.From())
	reply, err := c.cli.SendTx(&tx)
	if err != nil {
		return err
	}
	*result = common.ToHex(reply.Msg)
	return nil
}

// QueryTransaction 交易执行详情
func (c *Rps) QueryTransaction(in rpctypes.QueryParm, result *interface{}) error {
	hash, err := common.FromHex(in.Hash)
	if err != nil {
		return pkgerr.Wrap(types.ErrInvalidParam, err.Error())
	}
	detail, err := c.cli.QueryTx(hash)
	if err != nil {
		return err
	}
	*result = fmtTxDetail(detail)
	return nil
}

// Query 执行器查询
func (c *Rps) Query(in rpctypes.Query4Jrpc, result *interface{}) error {
	if in.Execer == "" {
		in.Execer = rt.RpsX
	}
	reply, err := c.cli.Query(in.Execer, in.FuncName, in.Payload)
	if err != nil {
		log.Error("Query", "funcName", in.FuncName, "err", err)
		return err
	}
	*result = reply
	return nil
}

// GetLastHeight 已执行交易数
func (c *Rps) GetLastHeight(in rpctypes.ReqNil, result *interface{}) error {
	*result = c.cli.GetLastHeight()
	return nil
}

// GetMetrics 统计数据
func (c *Rps) GetMetrics(in rpctypes.ReqNil, result *interface{}) error {
	*result = metrics.Snapshot()
	return nil
}

func fmtTxDetail(detail *types.TxDetail) *rpctypes.TransactionDetail {
	tx := detail.Tx
	out := &rpctypes.TransactionDetail{
		Height:    detail.Height,
		Blocktime: detail.Blocktime,
		Fromaddr:  detail.From,
	}
	rtx := &rpctypes.Transaction{
		Execer:     tx.Execer,
		RawPayload: common.ToHex(tx.Payload),
		Expire:     tx.Expire,
		Nonce:      tx.Nonce,
		From:       detail.From,
		Hash:       common.ToHex(detail.Hash),
	}
	if tx.Signature != nil {
		rtx.Signature = &rpctypes.Signature{
			Ty:        tx.Signature.Ty,
			Pubkey:    common.ToHex(tx.Signature.Pubkey),
			Signature: common.ToHex(tx.Signature.Signature),
		}
	}
	if action, err := rt.DecodeAction(tx); err == nil {
		rtx.Payload = action
		out.ActionName = action.ActionName()
	}
	out.Tx = rtx
	if detail.Receipt != nil {
		receipt := &rpctypes.ReceiptDataResult{
			Ty:     detail.Receipt.Ty,
			TyName: rpctypes.ReceiptTyName(detail.Receipt.Ty),
		}
		for _, l := range detail.Receipt.Logs {
			lr := &rpctypes.ReceiptLogResult{Ty: l.Ty, TyName: rt.GetLogName(l.Ty), RawLog: common.ToHex(l.Log)}
			if v, err := rt.DecodeLog(l.Ty, l.Log); err == nil {
				lr.Log = v
			}
			receipt.Logs = append(receipt.Logs, lr)
		}
		out.Receipt = receipt
	}
	return out
}
