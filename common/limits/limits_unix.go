// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !windows && !plan9
// +build !windows,!plan9

// Package limits 设置进程可以打开的文件数, leveldb 和 badger 需要较多的文件句柄
package limits

import (
	"syscall"

	pkgerr "github.com/pkg/errors"
)

const (
	fileLimitWant = 2048
	fileLimitMin  = 1024
)

// SetLimits 当前限制小于 fileLimitWant 时尝试提高
func SetLimits() error {
	rLimit, err := GetLimits()
	if err != nil {
		return err
	}
	if rLimit.Cur >= fileLimitWant {
		return nil
	}
	if rLimit.Max < fileLimitMin {
		return pkgerr.Errorf("need at least %d file descriptors, max %d", fileLimitMin, rLimit.Max)
	}
	rLimit.Cur = fileLimitWant
	if rLimit.Max < fileLimitWant {
		rLimit.Cur = rLimit.Max
	}
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err == nil {
		return nil
	}
	rLimit.Cur = fileLimitMin
	return pkgerr.Wrap(syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit), "setrlimit")
}

// GetLimits 当前的打开文件数限制
func GetLimits() (syscall.Rlimit, error) {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return syscall.Rlimit{}, pkgerr.Wrap(err, "getrlimit")
	}
	return rLimit, nil
}
