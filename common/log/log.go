// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package log 日志相关接口以及函数
package log

import (
	"os"
	"sync"

	"github.com/33cn/rps/types"
	log15 "github.com/inconshreveable/log15"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultLogFile = "logs/rps.log"

var (
	mu sync.Mutex
	// 保留文件输出, 重新设置级别时关闭旧的文件
	rotateLogger *lumberjack.Logger
)

//SetLogLevel 只输出到控制台, 设置输出级别
func SetLogLevel(logLevel string) {
	mu.Lock()
	defer mu.Unlock()
	closeFile()
	log15.Root().SetHandler(consoleHandler(logLevel))
}

//SetFileLog 根据配置设置文件日志和控制台日志
func SetFileLog(cfg *types.Log) {
	if cfg == nil {
		cfg = &types.Log{LogFile: defaultLogFile}
	}
	if cfg.LogFile == "" {
		SetLogLevel(cfg.LogConsoleLevel)
		return
	}
	fillDefaultValue(cfg)
	mu.Lock()
	defer mu.Unlock()
	closeFile()
	log15.Root().SetHandler(log15.MultiHandler(consoleHandler(cfg.LogConsoleLevel), fileHandler(cfg)))
}

// Discard 关闭所有日志输出, 测试中使用
func Discard() {
	mu.Lock()
	defer mu.Unlock()
	closeFile()
	log15.Root().SetHandler(log15.DiscardHandler())
}

// 保证默认情况下为error级别，防止打印太多日志
func fillDefaultValue(cfg *types.Log) {
	if cfg.Loglevel == "" {
		cfg.Loglevel = log15.LvlError.String()
	}
	if cfg.LogConsoleLevel == "" {
		cfg.LogConsoleLevel = log15.LvlError.String()
	}
}

func isWindows() bool {
	return os.PathSeparator == '\\' && os.PathListSeparator == ';'
}

func closeFile() {
	if rotateLogger != nil {
		rotateLogger.Close()
		rotateLogger = nil
	}
}

func consoleHandler(logLevel string) log15.Handler {
	format := log15.TerminalFormat()
	if isWindows() {
		format = log15.LogfmtFormat()
	}
	return log15.LvlFilterHandler(getLevel(logLevel), log15.StreamHandler(os.Stdout, format))
}

func fileHandler(cfg *types.Log) log15.Handler {
	rotateLogger = &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    int(cfg.MaxFileSize),
		MaxBackups: int(cfg.MaxBackups),
		MaxAge:     int(cfg.MaxAge),
		LocalTime:  cfg.LocalTime,
		Compress:   cfg.Compress,
	}
	fileh := log15.LvlFilterHandler(
		getLevel(cfg.Loglevel),
		log15.StreamHandler(rotateLogger, log15.LogfmtFormat()),
	)
	// 打印调用源文件、方法和代码行
	if cfg.CallerFile {
		fileh = log15.CallerFileHandler(fileh)
	}
	if cfg.CallerFunction {
		fileh = log15.CallerFuncHandler(fileh)
	}
	return fileh
}

func getLevel(lvlString string) log15.Lvl {
	lvl, err := log15.LvlFromString(lvlString)
	if err != nil {
		// 日志级别配置不正确时默认为error级别
		return log15.LvlError
	}
	return lvl
}

//New 创建模块日志, 例: log.New("module", "execs.rps")
func New(ctx ...interface{}) log15.Logger {
	return log15.Root().New(ctx...)
}
