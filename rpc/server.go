// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rpc jsonrpc 服务
package rpc

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/rpc"
	"net/rpc/jsonrpc"
	"strings"
	"time"

	"github.com/33cn/rps/client"
	clog "github.com/33cn/rps/common/log"
	"github.com/33cn/rps/types"
	"github.com/rs/cors"
)

var log = clog.New("module", "rpc_server")

// ServiceName jsonrpc 方法的前缀
const ServiceName = "Rps"

// 单个请求体的最大字节数
const maxRequestBodySize = 1 << 20

// HTTPConn adapt HTTP connection to ReadWriteCloser
type HTTPConn struct {
	in  io.Reader
	out io.Writer
}

func (c *HTTPConn) Read(p []byte) (n int, err error)  { return c.in.Read(p) }
func (c *HTTPConn) Write(d []byte) (n int, err error) { return c.out.Write(d) }

// Close nothing to close
func (c *HTTPConn) Close() error { return nil }

// 访问控制: ip 白名单, 函数白名单和黑名单, basic auth
type filter struct {
	cfg               *types.RPC
	remoteIPWhitelist map[string]bool
	jrpcFuncWhitelist map[string]bool
	jrpcFuncBlacklist map[string]bool
}

func newFilter(cfg *types.RPC) *filter {
	f := &filter{
		cfg:               cfg,
		remoteIPWhitelist: make(map[string]bool),
		jrpcFuncWhitelist: make(map[string]bool),
		jrpcFuncBlacklist: make(map[string]bool),
	}
	switch {
	case len(cfg.Whitelist) == 0:
		f.remoteIPWhitelist["127.0.0.1"] = true
	case len(cfg.Whitelist) == 1 && cfg.Whitelist[0] == "*":
		f.remoteIPWhitelist["0.0.0.0"] = true
	default:
		for _, addr := range cfg.Whitelist {
			f.remoteIPWhitelist[addr] = true
		}
	}
	if len(cfg.JrpcFuncWhitelist) == 0 {
		f.jrpcFuncWhitelist["*"] = true
	}
	for _, funcName := range cfg.JrpcFuncWhitelist {
		f.jrpcFuncWhitelist[funcName] = true
	}
	for _, funcName := range cfg.JrpcFuncBlacklist {
		f.jrpcFuncBlacklist[funcName] = true
	}
	return f
}

func (f *filter) checkBasicAuth(r *http.Request) bool {
	if f.cfg.JrpcUserName == "" && f.cfg.JrpcUserPasswd == "" {
		return true
	}
	s := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(s) != 2 {
		return false
	}
	b, err := base64.StdEncoding.DecodeString(s[1])
	if err != nil {
		return false
	}
	pair := strings.SplitN(string(b), ":", 2)
	if len(pair) != 2 {
		return false
	}
	return pair[0] == f.cfg.JrpcUserName && pair[1] == f.cfg.JrpcUserPasswd
}

func (f *filter) checkIPWhitelist(addr string) bool {
	//回环网络直接允许
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	if ip.IsLoopback() {
		return true
	}
	if ipv4 := ip.To4(); ipv4 != nil {
		addr = ipv4.String()
	}
	if f.remoteIPWhitelist["0.0.0.0"] {
		return true
	}
	return f.remoteIPWhitelist[addr]
}

// funcName 不含服务前缀
func (f *filter) checkJrpcFunc(funcName string) bool {
	if f.jrpcFuncBlacklist[funcName] {
		return false
	}
	return f.jrpcFuncWhitelist["*"] || f.jrpcFuncWhitelist[funcName]
}

// JSONRPCServer a json rpcserver object
type JSONRPCServer struct {
	jrpc   *Rps
	s      *rpc.Server
	l      net.Listener
	filter *filter
}

// NewJSONRPCServer new json rpcserver object
func NewJSONRPCServer(cfg *types.RPC, api client.QueueProtocolAPI) (*JSONRPCServer, error) {
	j := &JSONRPCServer{jrpc: &Rps{cli: api}, filter: newFilter(cfg)}
	server := rpc.NewServer()
	if err := server.RegisterName(ServiceName, j.jrpc); err != nil {
		return nil, err
	}
	j.s = server
	return j, nil
}

type serverRequest struct {
	Method string           `json:"method"`
	ID     *json.RawMessage `json:"id"`
}

type serverResponse struct {
	ID     *json.RawMessage `json:"id"`
	Result interface{}      `json:"result"`
	Error  interface{}      `json:"error"`
}

func writeError(w http.ResponseWriter, id *json.RawMessage, errstr string) {
	w.Header().Set("Content-type", "application/json")
	w.WriteHeader(200)
	resp, err := json.Marshal(&serverResponse{ID: id, Error: errstr})
	if err != nil {
		log.Error("writeError", "err", err)
		return
	}
	if _, err := w.Write(resp); err != nil {
		log.Error("writeError", "err", err)
	}
}

// Handler 处理 "/" 上的 jsonrpc 请求, 外层为cors
func (j *JSONRPCServer) Handler() http.Handler {
	handle := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil || !j.filter.checkIPWhitelist(ip) {
			writeError(w, nil, fmt.Sprintf("The %s Address is not authorized!", ip))
			return
		}
		if !j.filter.checkBasicAuth(r) {
			writeError(w, nil, "Unauthorized Request")
			return
		}
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
		if err != nil {
			writeError(w, nil, "Can't get request body!")
			return
		}
		var req serverRequest
		if err := json.Unmarshal(data, &req); err != nil {
			writeError(w, nil, "json parse error")
			return
		}
		funcName := strings.TrimPrefix(req.Method, ServiceName+".")
		if !j.filter.checkJrpcFunc(funcName) {
			log.Error("jrpc func not allowed", "method", req.Method, "ip", ip)
			writeError(w, req.ID, fmt.Sprintf("The %s method is not authorized!", funcName))
			return
		}
		log.Debug("jrpc request", "method", req.Method, "ip", ip)
		serverCodec := jsonrpc.NewServerCodec(&HTTPConn{in: bytes.NewReader(data), out: w})
		w.Header().Set("Content-type", "application/json")
		w.WriteHeader(200)
		if err := j.s.ServeRequest(serverCodec); err != nil {
			log.Error("Error while serving JSON request", "err", err)
		}
	})
	origins := j.filter.cfg.CorsAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	co := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return co.Handler(handle)
}

// Listen 监听地址, 返回端口
func (j *JSONRPCServer) Listen(addr string) (int, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return 0, err
	}
	j.l = listener
	server := &http.Server{Handler: j.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Info("jrpc serve stopped", "err", err)
		}
	}()
	return listener.Addr().(*net.TCPAddr).Port, nil
}

// Close json rpcserver close
func (j *JSONRPCServer) Close() {
	if j.l != nil {
		if err := j.l.Close(); err != nil {
			log.Error("JSONRPCServer close", "err", err)
		}
	}
}

// RPC 节点的rpc模块
type RPC struct {
	cfg  *types.RPC
	api  client.QueueProtocolAPI
	japi *JSONRPCServer
	port int
}

// New produce a rpc by cfg
func New(cfg *types.RPC, api client.QueueProtocolAPI) (*RPC, error) {
	japi, err := NewJSONRPCServer(cfg, api)
	if err != nil {
		return nil, err
	}
	return &RPC{cfg: cfg, api: api, japi: japi}, nil
}

// Listen 监听失败时重试
func (r *RPC) Listen() (port int, err error) {
	for i := 0; i < 10; i++ {
		port, err = r.japi.Listen(r.cfg.JrpcBindAddr)
		if err != nil {
			log.Error("Jrpc Listen", "err", err)
			time.Sleep(time.Second)
			continue
		}
		break
	}
	if err != nil {
		return 0, err
	}
	r.port = port
	log.Info("rpc Listen port", "jrpc", port, "addr", r.cfg.JrpcBindAddr)
	return port, nil
}

// Port jrpc 监听的端口
func (r *RPC) Port() int {
	return r.port
}

// Close rpc close
func (r *RPC) Close() {
	if r.japi != nil {
		r.japi.Close()
	}
}
