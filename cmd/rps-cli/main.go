// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// rps-cli 命令行客户端
package main

import (
	"fmt"
	"os"

	"github.com/33cn/rps/common/log"
	"github.com/33cn/rps/dapp/rps/commands"
	rt "github.com/33cn/rps/dapp/rps/types"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "rps-cli",
	Short:   "rps client tools",
	Version: rt.Version,
}

func init() {
	rootCmd.PersistentFlags().String("rpc_laddr", "http://localhost:8801", "http url")
	rootCmd.AddCommand(
		commands.AccountCmd(),
		commands.RpsCmd(),
		commands.TxCmd(),
	)
}

func main() {
	log.SetLogLevel("error")
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
