package daemon

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/rexlang/rex/pkg/daemon/daemondefs"
	"github.com/rexlang/rex/pkg/daemon/internal/api"
	"github.com/rexlang/rex/pkg/eval"
	"github.com/rexlang/rex/pkg/store/storedefs"
)

// NewClient creates a new client to the daemon serving on sockPath. It does
// not connect until the first call, and reconnects on the first call after
// ResetConn.
func NewClient(sockPath string) daemondefs.Client {
	return &client{sockPath: sockPath}
}

type client struct {
	sockPath string

	mu   sync.Mutex
	conn *jsonrpc2.Conn
}

// The daemon never sends requests of its own, so incoming requests need no
// handling.
type noopHandler struct{}

func (noopHandler) Handle(context.Context, *jsonrpc2.Conn, *jsonrpc2.Request) {}

func (c *client) connection() (*jsonrpc2.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		netConn, err := net.Dial("unix", c.sockPath)
		if err != nil {
			return nil, err
		}
		c.conn = jsonrpc2.NewConn(context.Background(),
			jsonrpc2.NewBufferedStream(netConn, jsonrpc2.VarintObjectCodec{}),
			noopHandler{})
	}
	return c.conn, nil
}

func (c *client) call(method string, params, result any) error {
	conn, err := c.connection()
	if err != nil {
		return err
	}
	err = conn.Call(context.Background(), method, params, result)
	if rpcErr, ok := err.(*jsonrpc2.Error); ok {
		// The interesting part is the service's message, not the jsonrpc2
		// framing around it.
		return errors.New(rpcErr.Message)
	}
	return err
}

func (c *client) SockPath() string { return c.sockPath }

func (c *client) ResetConn() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	conn := c.conn
	c.conn = nil
	return conn.Close()
}

func (c *client) Close() error { return c.ResetConn() }

func (c *client) Version() (int, error) {
	var resp api.VersionResponse
	err := c.call(api.MethodVersion, struct{}{}, &resp)
	return resp.Version, err
}

// Dispatch completes one call to a target hosted by the daemon.
func (c *client) Dispatch(target string, call eval.Call) (eval.Result, error) {
	req := api.DispatchRequest{
		Target:  target,
		Command: call.Command,
		Method:  call.Method,
		Args:    call.Args,
		Auth:    call.Auth,
	}
	var resp api.DispatchResponse
	if err := c.call(api.MethodDispatch, req, &resp); err != nil {
		return eval.Result{}, err
	}
	return eval.Result{
		Success: resp.Success, Output: resp.Output,
		Status: resp.Status, Err: resp.Err}, nil
}

func (c *client) NextRunSeq() (int, error) {
	var resp api.NextRunSeqResponse
	err := c.call(api.MethodNextRunSeq, struct{}{}, &resp)
	return resp.Seq, err
}

func (c *client) AddRun(script string, at time.Time) (int, error) {
	var resp api.AddRunResponse
	err := c.call(api.MethodAddRun,
		api.AddRunRequest{Script: script, At: at.Unix()}, &resp)
	return resp.Seq, err
}

func (c *client) Run(seq int) (storedefs.Run, error) {
	var resp api.RunResponse
	err := c.call(api.MethodRun, api.RunRequest{Seq: seq}, &resp)
	if err != nil {
		return storedefs.Run{}, err
	}
	return unmarshalRun(resp.Run), nil
}

func (c *client) RunsWithSeq(from, upto int) ([]storedefs.Run, error) {
	var resp api.RunsWithSeqResponse
	err := c.call(api.MethodRunsWithSeq,
		api.RunsWithSeqRequest{From: from, Upto: upto}, &resp)
	if err != nil {
		return nil, err
	}
	runs := make([]storedefs.Run, len(resp.Runs))
	for i, run := range resp.Runs {
		runs[i] = unmarshalRun(run)
	}
	return runs, nil
}

func unmarshalRun(r api.Run) storedefs.Run {
	return storedefs.Run{Seq: r.Seq, Script: r.Script, At: time.Unix(r.At, 0)}
}

func (c *client) SharedVar(name string) (string, error) {
	var resp api.SharedVarResponse
	err := c.call(api.MethodSharedVar, api.SharedVarRequest{Name: name}, &resp)
	return resp.Value, err
}

func (c *client) SetSharedVar(name, value string) error {
	var resp struct{}
	return c.call(api.MethodSetSharedVar,
		api.SetSharedVarRequest{Name: name, Value: value}, &resp)
}

func (c *client) DelSharedVar(name string) error {
	var resp struct{}
	return c.call(api.MethodDelSharedVar, api.DelSharedVarRequest{Name: name}, &resp)
}

func (c *client) SharedVarNames() ([]string, error) {
	var resp api.SharedVarNamesResponse
	err := c.call(api.MethodSharedVarNames, struct{}{}, &resp)
	return resp.Names, err
}
