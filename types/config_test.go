// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpsSub struct {
	Admin     string   `json:"admin"`
	Blacklist []string `json:"blacklist"`
}

func TestReadConfig(t *testing.T) {
	cfg, sub := ReadConfig()
	assert.Equal(t, "local", cfg.Title)
	assert.Equal(t, "leveldb", cfg.Store.Driver)
	assert.Equal(t, "localhost:8801", cfg.RPC.JrpcBindAddr)
	assert.Equal(t, []string{"127.0.0.1"}, cfg.RPC.Whitelist)
	assert.Equal(t, int64(60), cfg.Metrics.Duration)
	assert.Equal(t, "14KEKbYtKKQm4wMthSK9J4La4nAiidGozt", cfg.Genesis)

	var rps rpsSub
	MustDecodeSub(sub.Exec, "rps", &rps)
	assert.Equal(t, "", rps.Admin)
	assert.Empty(t, rps.Blacklist)
}

func TestInitCfgStringOverride(t *testing.T) {
	cfg, sub, err := InitCfgString(`
Title="test"
[store]
driver="memdb"
[exec.sub.rps]
admin="1FCX9XJTZXvZteagTrefJEBPZMt8BFmdoi"
blacklist=["14KEKbYtKKQm4wMthSK9J4La4nAiidGozt"]
`)
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Title)
	assert.Equal(t, "memdb", cfg.Store.Driver)
	// 未覆盖的项保留默认值
	assert.Equal(t, "datadir/state", cfg.Store.DbPath)
	assert.Equal(t, "info", cfg.Log.LogConsoleLevel)

	var rps rpsSub
	MustDecodeSub(sub.Exec, "rps", &rps)
	assert.Equal(t, "1FCX9XJTZXvZteagTrefJEBPZMt8BFmdoi", rps.Admin)
	assert.Equal(t, []string{"14KEKbYtKKQm4wMthSK9J4La4nAiidGozt"}, rps.Blacklist)
}

func TestInitCfgTypeMismatch(t *testing.T) {
	_, _, err := InitCfgString(`store="memdb"`)
	assert.Error(t, err)
	_, _, err = InitCfgString(`[[[`)
	assert.Error(t, err)
}

func TestInitCfgFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "rps.toml")
	require.NoError(t, os.WriteFile(file, []byte(DefaultConfig()), 0600))
	cfg, _, err := InitCfg(file)
	require.NoError(t, err)
	assert.Equal(t, "rps", cfg.Store.Name)

	_, _, err = InitCfg(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestMustDecodeSubMissing(t *testing.T) {
	rps := rpsSub{Admin: "keep"}
	MustDecodeSub(map[string][]byte{}, "rps", &rps)
	assert.Equal(t, "keep", rps.Admin)
}

func TestDecodeSubMalformed(t *testing.T) {
	_, sub, err := InitCfgString("[exec.sub.rps]\nadmin = 5\n")
	require.NoError(t, err)
	var rps rpsSub
	err = DecodeSub(sub.Exec, "rps", &rps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exec.sub.rps")
	assert.Panics(t, func() { MustDecodeSub(sub.Exec, "rps", &rps) })
}
