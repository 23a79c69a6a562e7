// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package commands rps 命令行
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/33cn/rps/common"
	"github.com/33cn/rps/common/crypto/secp256k1"
	rt "github.com/33cn/rps/dapp/rps/types"
	"github.com/33cn/rps/rpc/jsonclient"
	rpctypes "github.com/33cn/rps/rpc/types"
	"github.com/33cn/rps/types"
	"github.com/spf13/cobra"
)

// RpsCmd rps 命令
func RpsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rps",
		Short: "Rock paper scissors match",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.AddCommand(
		StartMatchCmd(),
		OpponentMoveCmd(),
		UpdateAdminCmd(),
		BlockHostCmd(),
		UnblockHostCmd(),
		QueryMatchCmd(),
		QueryByHostCmd(),
		QueryByOpponentCmd(),
		QueryAdminCmd(),
		QueryBlacklistCmd(),
	)
	return cmd
}

func addKeyFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("key", "k", "", "private key of sender (hex)")
	cmd.MarkFlagRequired("key")
}

// StartMatchCmd 发起比赛
func StartMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a match against an opponent with the host move",
		Run:   startMatch,
	}
	addKeyFlag(cmd)
	cmd.Flags().StringP("opponent", "o", "", "opponent address")
	cmd.MarkFlagRequired("opponent")
	cmd.Flags().StringP("move", "m", "", "host move: Rock | Paper | Scissors")
	cmd.MarkFlagRequired("move")
	return cmd
}

func startMatch(cmd *cobra.Command, args []string) {
	opponent, _ := cmd.Flags().GetString("opponent")
	move, _ := cmd.Flags().GetString("move")
	runAction(cmd, rt.ActionStartMatch, &rt.StartMatch{Opponent: opponent, HostMove: move})
}

// OpponentMoveCmd 提交对手出拳
func OpponentMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Submit the opponent move and resolve the match",
		Run:   opponentMove,
	}
	addKeyFlag(cmd)
	cmd.Flags().StringP("host", "s", "", "host address")
	cmd.MarkFlagRequired("host")
	cmd.Flags().StringP("opponent", "o", "", "opponent address")
	cmd.MarkFlagRequired("opponent")
	cmd.Flags().StringP("move", "m", "", "opponent move: Rock | Paper | Scissors")
	cmd.MarkFlagRequired("move")
	return cmd
}

func opponentMove(cmd *cobra.Command, args []string) {
	host, _ := cmd.Flags().GetString("host")
	opponent, _ := cmd.Flags().GetString("opponent")
	move, _ := cmd.Flags().GetString("move")
	runAction(cmd, rt.ActionOpponentMove, &rt.OpponentMove{Host: host, Opponent: opponent, OpponentMove: move})
}

// UpdateAdminCmd 转移管理员
func UpdateAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Transfer the admin role (admin only)",
		Run:   updateAdmin,
	}
	addKeyFlag(cmd)
	cmd.Flags().StringP("addr", "a", "", "new admin address")
	cmd.MarkFlagRequired("addr")
	return cmd
}

func updateAdmin(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")
	runAction(cmd, rt.ActionUpdateAdmin, &rt.UpdateAdmin{Admin: addr})
}

// BlockHostCmd 加入黑名单
func BlockHostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "block",
		Short: "Block an address from starting matches (admin only)",
		Run:   blockHost,
	}
	addKeyFlag(cmd)
	cmd.Flags().StringP("addr", "a", "", "address to block")
	cmd.MarkFlagRequired("addr")
	return cmd
}

func blockHost(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")
	runAction(cmd, rt.ActionBlockHost, &rt.BlockHost{Addr: addr})
}

// UnblockHostCmd 移出黑名单
func UnblockHostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unblock",
		Short: "Remove an address from the blacklist (admin only)",
		Run:   unblockHost,
	}
	addKeyFlag(cmd)
	cmd.Flags().StringP("addr", "a", "", "address to unblock")
	cmd.MarkFlagRequired("addr")
	return cmd
}

func unblockHost(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")
	runAction(cmd, rt.ActionUnblockHost, &rt.BlockHost{Addr: addr})
}

func runAction(cmd *cobra.Command, actionName string, param interface{}) {
	rpcLaddr, _ := cmd.Flags().GetString("rpc_laddr")
	key, _ := cmd.Flags().GetString("key")
	hash, err := SendAction(rpcLaddr, key, actionName, param)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(hash)
}

// SendAction 通过rpc创建交易, 本地签名后发送, 返回交易哈希
func SendAction(rpcLaddr, key, actionName string, param interface{}) (string, error) {
	priv, err := parseKey(key)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(param)
	if err != nil {
		return "", err
	}
	rpc, err := jsonclient.NewJSONClient(rpcLaddr)
	if err != nil {
		return "", err
	}
	var raw string
	in := &rpctypes.CreateTxIn{Execer: rt.RpsX, ActionName: actionName, Payload: payload}
	if err := rpc.Call("CreateRawTransaction", in, &raw); err != nil {
		return "", err
	}
	data, err := common.FromHex(raw)
	if err != nil {
		return "", err
	}
	var tx types.Transaction
	if err := types.Decode(data, &tx); err != nil {
		return "", err
	}
	tx.Sign(types.SECP256K1, priv)
	var hash string
	if err := rpc.Call("SendTransaction", rpctypes.RawParm{Data: common.ToHex(types.Encode(&tx))}, &hash); err != nil {
		return "", err
	}
	return hash, nil
}

func parseKey(key string) (secp256k1.PrivKeySecp256k1, error) {
	b, err := common.FromHex(key)
	if err != nil {
		return secp256k1.PrivKeySecp256k1{}, err
	}
	return secp256k1.PrivKeyFromBytes(b)
}

// QueryMatchCmd 查询一局比赛
func QueryMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Show the match of a host and an opponent",
		Run:   queryMatch,
	}
	cmd.Flags().StringP("host", "s", "", "host address")
	cmd.MarkFlagRequired("host")
	cmd.Flags().StringP("opponent", "o", "", "opponent address")
	cmd.MarkFlagRequired("opponent")
	return cmd
}

func queryMatch(cmd *cobra.Command, args []string) {
	host, _ := cmd.Flags().GetString("host")
	opponent, _ := cmd.Flags().GetString("opponent")
	var res rt.Match
	runQuery(cmd, rt.FuncNameGetMatch, &rt.ReqMatch{Host: host, Opponent: opponent}, &res)
}

// QueryByHostCmd 地址发起的比赛
func QueryByHostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "List matches started by an address",
		Run:   queryByHost,
	}
	cmd.Flags().StringP("addr", "a", "", "host address")
	cmd.MarkFlagRequired("addr")
	return cmd
}

func queryByHost(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")
	var res rt.ReplyMatches
	runQuery(cmd, rt.FuncNameGetMatchByHost, &rt.ReqAddr{Addr: addr}, &res)
}

// QueryByOpponentCmd 地址作为对手的比赛
func QueryByOpponentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "opponent",
		Short: "List matches where the address is the opponent",
		Run:   queryByOpponent,
	}
	cmd.Flags().StringP("addr", "a", "", "opponent address")
	cmd.MarkFlagRequired("addr")
	return cmd
}

func queryByOpponent(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")
	var res rt.ReplyMatches
	runQuery(cmd, rt.FuncNameGetMatchByOpponent, &rt.ReqAddr{Addr: addr}, &res)
}

// QueryAdminCmd 当前管理员
func QueryAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get_admin",
		Short: "Show the current admin",
		Run: func(cmd *cobra.Command, args []string) {
			var res rt.ReplyAdmin
			runQuery(cmd, rt.FuncNameGetAdmin, &rt.ReqNil{}, &res)
		},
	}
}

// QueryBlacklistCmd 黑名单
func QueryBlacklistCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blacklist",
		Short: "Show the blacklist",
		Run: func(cmd *cobra.Command, args []string) {
			var res rt.ReplyBlacklist
			runQuery(cmd, rt.FuncNameGetBlacklist, &rt.ReqNil{}, &res)
		},
	}
}

func runQuery(cmd *cobra.Command, funcName string, req, res interface{}) {
	rpcLaddr, _ := cmd.Flags().GetString("rpc_laddr")
	params := rpctypes.Query4Jrpc{
		Execer:   rt.RpsX,
		FuncName: funcName,
		Payload:  types.Encode(req),
	}
	ctx := jsonclient.NewRPCCtx(rpcLaddr, "Rps.Query", params, res)
	ctx.Run()
}
