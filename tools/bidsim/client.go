package main

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	tmjson "github.com/tendermint/tendermint/libs/json"
	jsonrpc "github.com/tendermint/tendermint/rpc/jsonrpc/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	sendTimeout = 10 * time.Second
	readTimeout = 30 * time.Second
)

// wsClient 一个websocket连接上的同步JSON-RPC调用
type wsClient struct {
	mtx  sync.Mutex
	conn *websocket.Conn
	id   int
	name string
}

func connect(host string) (*websocket.Conn, *http.Response, error) {
	u := url.URL{Scheme: "ws", Host: host, Path: "/websocket"}
	return websocket.DefaultDialer.Dial(u.String(), nil)
}

func newWSClient(host, name string) (*wsClient, error) {
	c, _, err := connect(host)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", host)
	}
	c.SetPingHandler(func(message string) error {
		err := c.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(sendTimeout))
		if err == websocket.ErrCloseSent {
			return nil
		} else if e, ok := err.(net.Error); ok && e.Temporary() {
			return nil
		}
		return err
	})
	return &wsClient{conn: c, name: name}, nil
}

// call 发送请求并等待对应的响应，result为nil时忽略返回值
func (c *wsClient) call(method string, params map[string]string, result interface{}) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if params == nil {
		params = map[string]string{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return errors.Wrap(err, "failed to encode params")
	}

	c.id++
	id := jsonrpc.JSONRPCStringID(fmt.Sprintf("%s-%d", c.name, c.id))

	c.conn.SetWriteDeadline(time.Now().Add(sendTimeout))
	err = c.conn.WriteJSON(jsonrpc.RPCRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  paramsJSON,
	})
	if err != nil {
		return errors.Wrapf(err, "send %s", method)
	}

	for {
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		var resp jsonrpc.RPCResponse
		if err := c.conn.ReadJSON(&resp); err != nil {
			return errors.Wrapf(err, "read %s response", method)
		}
		if resp.ID != id {
			// 不是这次请求的响应
			continue
		}
		if resp.Error != nil {
			return resp.Error
		}
		if result == nil {
			return nil
		}
		return tmjson.Unmarshal(resp.Result, result)
	}
}

func (c *wsClient) close() {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(sendTimeout))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.conn.Close()
}
