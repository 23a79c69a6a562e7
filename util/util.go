// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package util 节点启动使用的工具函数
package util

import (
	"os"
	"os/user"
	"path/filepath"

	"github.com/33cn/rps/common/log"
	"github.com/33cn/rps/types"
)

var ulog = log.New("module", "util")

// ResetDatadir 日志和数据库目录设置到datadir下, 支持 "~/" 和 "$TEMP/" 前缀
func ResetDatadir(cfg *types.Config, datadir string) (string, error) {
	// Check in case of paths like "/something/~/something/"
	if len(datadir) >= 2 && datadir[:2] == "~/" {
		usr, err := user.Current()
		if err != nil {
			return "", err
		}
		datadir = filepath.Join(usr.HomeDir, datadir[2:])
	}
	if len(datadir) >= 6 && datadir[:6] == "$TEMP/" {
		dir, err := os.MkdirTemp("", "rpsdatadir-")
		if err != nil {
			return "", err
		}
		datadir = filepath.Join(dir, datadir[6:])
	}
	ulog.Info("current user data dir is ", "dir", datadir)
	if cfg.Log != nil {
		cfg.Log.LogFile = filepath.Join(datadir, cfg.Log.LogFile)
	}
	if cfg.Store != nil {
		cfg.Store.DbPath = filepath.Join(datadir, cfg.Store.DbPath)
	}
	return datadir, nil
}
