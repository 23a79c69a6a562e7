// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

var defaultCfgString = `
Title="local"
genesis="14KEKbYtKKQm4wMthSK9J4La4nAiidGozt"

[log]
# 日志级别，支持debug(dbug)/info/warn/error(eror)/crit
loglevel = "debug"
logConsoleLevel = "info"
# 日志文件名，可带目录，所有生成的日志文件都放到此目录下
logFile = "logs/rps.log"
# 单个日志文件的最大值（单位：兆）
maxFileSize = 300
# 最多保存的历史日志文件个数
maxBackups = 100
# 最多保存的历史日志消息（单位：天）
maxAge = 28
# 日志文件名是否使用本地事件（否则使用UTC时间）
localTime = true
# 历史日志文件是否压缩（压缩格式为gz）
compress = true
# 是否打印调用源文件和行号
callerFile = false
# 是否打印调用方法
callerFunction = false

[store]
name="rps"
# 支持 leveldb, goleveldb, memdb, gobadgerdb
driver="leveldb"
dbPath="datadir/state"
dbCache=128

[rpc]
jrpcBindAddr="localhost:8801"
whitelist=["127.0.0.1"]
jrpcFuncWhitelist=["*"]
jrpcFuncBlacklist=[]
jrpcUserName=""
jrpcUserPasswd=""
corsAllowedOrigins=[]

[metrics]
enableMetrics=false
duration=60

[exec.sub.rps]
# 管理员地址, 为空时使用genesis
admin=""
# 初始黑名单
blacklist=[]
`
