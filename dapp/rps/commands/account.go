// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/33cn/rps/common"
	"github.com/33cn/rps/common/address"
	"github.com/33cn/rps/common/crypto/secp256k1"
	"github.com/33cn/rps/rpc/jsonclient"
	rpctypes "github.com/33cn/rps/rpc/types"
	"github.com/spf13/cobra"
)

// AccountResult 私钥和地址
type AccountResult struct {
	Privkey string `json:"privkey,omitempty"`
	Pubkey  string `json:"pubkey"`
	Addr    string `json:"addr"`
}

// AccountCmd 账户
func AccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account management",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.AddCommand(
		NewAccountCmd(),
		PubToAddrCmd(),
	)
	return cmd
}

// NewAccountCmd 生成新的私钥
func NewAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Generate a secp256k1 key and show its address",
		Run: func(cmd *cobra.Command, args []string) {
			acc, err := NewAccount()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return
			}
			printJSON(acc)
		},
	}
}

// NewAccount 生成新账户
func NewAccount() (*AccountResult, error) {
	priv, err := secp256k1.GenKey()
	if err != nil {
		return nil, err
	}
	pub := priv.PubKey().Bytes()
	return &AccountResult{
		Privkey: common.ToHex(priv.Bytes()),
		Pubkey:  common.ToHex(pub),
		Addr:    address.PubKeyToAddr(pub),
	}, nil
}

// PubToAddrCmd 私钥对应的地址
func PubToAddrCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addr",
		Short: "Show the address of a private key",
		Run: func(cmd *cobra.Command, args []string) {
			key, _ := cmd.Flags().GetString("key")
			priv, err := parseKey(key)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return
			}
			pub := priv.PubKey().Bytes()
			printJSON(&AccountResult{Pubkey: common.ToHex(pub), Addr: address.PubKeyToAddr(pub)})
		},
	}
	addKeyFlag(cmd)
	return cmd
}

// TxCmd 交易
func TxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Transaction management",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.AddCommand(QueryTxCmd(), HeightCmd())
	return cmd
}

// QueryTxCmd 交易详情
func QueryTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query transaction detail by hash",
		Run: func(cmd *cobra.Command, args []string) {
			rpcLaddr, _ := cmd.Flags().GetString("rpc_laddr")
			hash, _ := cmd.Flags().GetString("hash")
			var res rpctypes.TransactionDetail
			ctx := jsonclient.NewRPCCtx(rpcLaddr, "Rps.QueryTransaction", rpctypes.QueryParm{Hash: hash}, &res)
			ctx.Run()
		},
	}
	cmd.Flags().StringP("hash", "s", "", "transaction hash")
	cmd.MarkFlagRequired("hash")
	return cmd
}

// HeightCmd 已执行交易数
func HeightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "height",
		Short: "Show the number of executed transactions",
		Run: func(cmd *cobra.Command, args []string) {
			rpcLaddr, _ := cmd.Flags().GetString("rpc_laddr")
			var res int64
			ctx := jsonclient.NewRPCCtx(rpcLaddr, "Rps.GetLastHeight", rpctypes.ReqNil{}, &res)
			ctx.Run()
		},
	}
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(string(data))
}
