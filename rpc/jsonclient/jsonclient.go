// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jsonclient jsonrpc 客户端
package jsonclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/33cn/rps/types"
	"github.com/google/uuid"
	pkgerr "github.com/pkg/errors"
)

// JSONClient a object of jsonclient
type JSONClient struct {
	url      string
	prefix   string
	username string
	passwd   string
	client   *http.Client
}

func addPrefix(prefix, name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return prefix + "." + name
}

// NewJSONClient 默认前缀 Rps
func NewJSONClient(url string) (*JSONClient, error) {
	return New("Rps", url)
}

// New produce a jsonclient by perfix and url
func New(prefix, url string) (*JSONClient, error) {
	return &JSONClient{
		url:    url,
		prefix: prefix,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// SetBasicAuth 服务端配置了用户名密码时使用
func (client *JSONClient) SetBasicAuth(username, passwd string) {
	client.username = username
	client.passwd = passwd
}

type clientRequest struct {
	Method string         `json:"method"`
	Params [1]interface{} `json:"params"`
	ID     string         `json:"id"`
}

type clientResponse struct {
	ID     string           `json:"id"`
	Result *json.RawMessage `json:"result"`
	Error  interface{}      `json:"error"`
}

// Call jsonclinet call method
func (client *JSONClient) Call(method string, params, resp interface{}) error {
	req := &clientRequest{Method: addPrefix(client.prefix, method), ID: uuid.New().String()}
	req.Params[0] = params
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequest(http.MethodPost, client.url, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if client.username != "" || client.passwd != "" {
		httpReq.SetBasicAuth(client.username, client.passwd)
	}
	postresp, err := client.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer postresp.Body.Close()
	b, err := io.ReadAll(postresp.Body)
	if err != nil {
		return err
	}
	cresp := &clientResponse{}
	if err := json.Unmarshal(b, cresp); err != nil {
		return pkgerr.Wrapf(err, "response %s", string(b))
	}
	if cresp.Error != nil {
		x, ok := cresp.Error.(string)
		if !ok {
			return fmt.Errorf("invalid error %v", cresp.Error)
		}
		if x == "" {
			x = "unspecified error"
		}
		return pkgerr.New(x)
	}
	if cresp.ID != "" && cresp.ID != req.ID {
		return fmt.Errorf("response id %s not match request %s", cresp.ID, req.ID)
	}
	if cresp.Result == nil {
		return types.ErrEmpty
	}
	return json.Unmarshal(*cresp.Result, resp)
}
