// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	tml "github.com/BurntSushi/toml"
	pkgerr "github.com/pkg/errors"
)

// Config 节点配置
type Config struct {
	Title   string   `toml:"Title"`
	Log     *Log     `toml:"log"`
	Store   *Store   `toml:"store"`
	RPC     *RPC     `toml:"rpc"`
	Metrics *Metrics `toml:"metrics"`
	// 未配置执行器管理员时使用的地址
	Genesis string `toml:"genesis"`
}

// Log 日志配置
type Log struct {
	// 日志级别，支持debug(dbug)/info/warn/error(eror)/crit
	Loglevel        string `toml:"loglevel"`
	LogConsoleLevel string `toml:"logConsoleLevel"`
	// 日志文件名，可带目录
	LogFile string `toml:"logFile"`
	// 单个日志文件的最大值（单位：兆）
	MaxFileSize uint32 `toml:"maxFileSize"`
	MaxBackups  uint32 `toml:"maxBackups"`
	// 最多保存的历史日志消息（单位：天）
	MaxAge         uint32 `toml:"maxAge"`
	LocalTime      bool   `toml:"localTime"`
	Compress       bool   `toml:"compress"`
	CallerFile     bool   `toml:"callerFile"`
	CallerFunction bool   `toml:"callerFunction"`
}

// Store 状态数据库配置
type Store struct {
	Name    string `toml:"name"`
	Driver  string `toml:"driver"`
	DbPath  string `toml:"dbPath"`
	DbCache int32  `toml:"dbCache"`
}

// RPC jsonrpc 服务配置
type RPC struct {
	JrpcBindAddr       string   `toml:"jrpcBindAddr"`
	Whitelist          []string `toml:"whitelist"`
	JrpcFuncWhitelist  []string `toml:"jrpcFuncWhitelist"`
	JrpcFuncBlacklist  []string `toml:"jrpcFuncBlacklist"`
	JrpcUserName       string   `toml:"jrpcUserName"`
	JrpcUserPasswd     string   `toml:"jrpcUserPasswd"`
	CorsAllowedOrigins []string `toml:"corsAllowedOrigins"`
}

// Metrics 统计配置
type Metrics struct {
	EnableMetrics bool `toml:"enableMetrics"`
	// 输出间隔, 单位秒
	Duration int64 `toml:"duration"`
}

// ConfigSubModule 各执行器的子配置, json 编码
type ConfigSubModule struct {
	Exec map[string][]byte
}

type subModule struct {
	Exec map[string]interface{}
}

// InitCfg 读取配置文件, 未配置的项使用默认值
func InitCfg(path string) (*Config, *ConfigSubModule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, pkgerr.Wrapf(err, "read config %s", path)
	}
	return InitCfgString(string(data))
}

// InitCfgString 从字符串初始化配置, 未配置的项使用默认值
func InitCfgString(cfgstring string) (*Config, *ConfigSubModule, error) {
	merged, err := mergeCfgString(cfgstring, defaultCfgString)
	if err != nil {
		return nil, nil, err
	}
	var cfg Config
	if _, err := tml.Decode(merged, &cfg); err != nil {
		return nil, nil, pkgerr.Wrap(err, "decode config")
	}
	sub, err := initSubModuleString(merged)
	if err != nil {
		return nil, nil, err
	}
	return &cfg, sub, nil
}

// ReadConfig 默认配置, 测试中使用
func ReadConfig() (*Config, *ConfigSubModule) {
	cfg, sub, err := InitCfgString("")
	if err != nil {
		panic(err)
	}
	return cfg, sub
}

// DefaultConfig 默认配置文件内容
func DefaultConfig() string {
	return defaultCfgString
}

func mergeCfgString(cfgstring, cfgdefault string) (string, error) {
	def := make(map[string]interface{})
	if _, err := tml.Decode(cfgdefault, &def); err != nil {
		return "", pkgerr.Wrap(err, "decode default config")
	}
	conf := make(map[string]interface{})
	if _, err := tml.Decode(cfgstring, &conf); err != nil {
		return "", pkgerr.Wrap(err, "decode config")
	}
	if errstr := MergeConfig(conf, def); errstr != "" {
		return "", pkgerr.Wrap(ErrInvalidParam, errstr)
	}
	buf := new(bytes.Buffer)
	if err := tml.NewEncoder(buf).Encode(conf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// MergeConfig 把def中conf没有的项合并到conf, 类型不一致时返回错误描述
func MergeConfig(conf map[string]interface{}, def map[string]interface{}) string {
	return mergeConfig("", conf, def)
}

func mergeConfig(prefix string, conf map[string]interface{}, def map[string]interface{}) string {
	errstr := ""
	for key, defvalue := range def {
		value, ok := conf[key]
		if !ok {
			conf[key] = defvalue
			continue
		}
		defmap, defIsMap := defvalue.(map[string]interface{})
		valmap, valIsMap := value.(map[string]interface{})
		if defIsMap != valIsMap {
			errstr += fmt.Sprintf("config key %s%s type not match\n", prefix, key)
			continue
		}
		if defIsMap {
			errstr += mergeConfig(prefix+key+".", valmap, defmap)
		}
	}
	return errstr
}

func initSubModuleString(cfgstring string) (*ConfigSubModule, error) {
	var cfg subModule
	if _, err := tml.Decode(cfgstring, &cfg); err != nil {
		return nil, pkgerr.Wrap(err, "decode sub config")
	}
	return &ConfigSubModule{Exec: parseItem(cfg.Exec)}, nil
}

func parseItem(data map[string]interface{}) map[string][]byte {
	subconfig := make(map[string][]byte)
	subcfg, ok := data["sub"].(map[string]interface{})
	if !ok {
		return subconfig
	}
	for k := range subcfg {
		subconfig[k], _ = json.Marshal(subcfg[k])
	}
	return subconfig
}

// DecodeSub 把执行器子配置解码到cfg, 没有配置时cfg不变
func DecodeSub(sub map[string][]byte, name string, cfg interface{}) error {
	data, ok := sub[name]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return pkgerr.Wrapf(err, "decode exec.sub.%s", name)
	}
	return nil
}

// MustDecodeSub 同 DecodeSub, 出错时 panic
func MustDecodeSub(sub map[string][]byte, name string, cfg interface{}) {
	if err := DecodeSub(sub, name, cfg); err != nil {
		panic(err)
	}
}
