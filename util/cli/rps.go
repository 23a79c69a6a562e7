// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cli RunRps 加载配置, 启动节点, rpc 和统计, 收到退出信号后关闭
package cli

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/33cn/rps/client"
	"github.com/33cn/rps/common/limits"
	clog "github.com/33cn/rps/common/log"
	rt "github.com/33cn/rps/dapp/rps/types"
	"github.com/33cn/rps/metrics"
	"github.com/33cn/rps/rpc"
	"github.com/33cn/rps/types"
	"github.com/33cn/rps/util"
)

var log = clog.New("module", "cli")

var (
	configPath = flag.String("f", "", "configfile")
	datadir    = flag.String("datadir", "", "data dir of rps, include logs and datas")
	versionCmd = flag.Bool("v", false, "version")
)

// RunRps : run rps node
func RunRps(name string) {
	flag.Parse()
	if *versionCmd {
		fmt.Println(rt.Version)
		return
	}
	if *configPath == "" {
		if name == "" {
			*configPath = "rps.toml"
		} else {
			*configPath = name + ".toml"
		}
	}
	if err := limits.SetLimits(); err != nil {
		panic(err)
	}
	cfg, sub, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *datadir != "" {
		if _, err := util.ResetDatadir(cfg, *datadir); err != nil {
			panic(err)
		}
	}
	clog.SetFileLog(cfg.Log)
	log.Info(cfg.Title + " rps:" + rt.Version)

	node, rpcapi, err := Start(cfg, sub)
	if err != nil {
		log.Crit("start node", "err", err)
		os.Exit(1)
	}
	defer func() {
		log.Info("begin close rpc module")
		rpcapi.Close()
		log.Info("begin close node")
		node.Close()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	log.Info("receive signal", "signal", sig)
}

// 配置文件不存在时使用默认配置
func loadConfig(path string) (*types.Config, *types.ConfigSubModule, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Info("config file not found, use default config", "path", path)
		return types.InitCfgString("")
	}
	return types.InitCfg(path)
}

// Start 启动节点和rpc
func Start(cfg *types.Config, sub *types.ConfigSubModule) (*client.Node, *rpc.RPC, error) {
	log.Info("loading node", "driver", cfg.Store.Driver, "dbPath", cfg.Store.DbPath)
	node, err := client.New(cfg, sub)
	if err != nil {
		return nil, nil, err
	}
	log.Info("loading rpc module")
	rpcapi, err := rpc.New(cfg.RPC, node)
	if err != nil {
		node.Close()
		return nil, nil, err
	}
	if _, err := rpcapi.Listen(); err != nil {
		node.Close()
		return nil, nil, err
	}
	metrics.StartMetrics(cfg.Metrics)
	return node, rpcapi, nil
}
