package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/rexlang/rex/pkg/daemon/internal/api"
	"github.com/rexlang/rex/pkg/eval"
	"github.com/rexlang/rex/pkg/store/storedefs"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

// service implements the daemon RPC service. It exposes the storage API
// backed by a store, and completes dispatches to the targets it hosts.
type service struct {
	apiVersion int
	st         storedefs.Store
	storeErr   error
	targets    map[string]eval.Target
}

func handler(s *service) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		api.MethodVersion:  s.version,
		api.MethodDispatch: s.dispatch,

		api.MethodNextRunSeq:  s.nextRunSeq,
		api.MethodAddRun:      s.addRun,
		api.MethodRun:         s.run,
		api.MethodRunsWithSeq: s.runsWithSeq,

		api.MethodSharedVar:      s.sharedVar,
		api.MethodSetSharedVar:   s.setSharedVar,
		api.MethodDelSharedVar:   s.delSharedVar,
		api.MethodSharedVarNames: s.sharedVarNames,
	})
}

type method func(context.Context, json.RawMessage) (any, error)

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var rawParams json.RawMessage
		if req.Params != nil {
			rawParams = *req.Params
		}
		return fn(ctx, rawParams)
	})
}

func unmarshalParams(raw json.RawMessage, v any) error {
	if raw == nil || json.Unmarshal(raw, v) != nil {
		return errInvalidParams
	}
	return nil
}

// store returns the backing store, or the error kept from opening it.
func (s *service) store() (storedefs.Store, error) {
	if s.st == nil {
		return nil, fmt.Errorf("daemon storage not available: %v", s.storeErr)
	}
	return s.st, nil
}

func (s *service) version(_ context.Context, _ json.RawMessage) (any, error) {
	return api.VersionResponse{Version: s.apiVersion}, nil
}

func (s *service) dispatch(ctx context.Context, raw json.RawMessage) (any, error) {
	var req api.DispatchRequest
	if err := unmarshalParams(raw, &req); err != nil {
		return nil, err
	}
	t, ok := s.targets[strings.ToUpper(req.Target)]
	if !ok {
		return nil, fmt.Errorf("daemon hosts no target named %s", req.Target)
	}
	caps := t.Capabilities()
	if req.Method == "" && !caps.CommandString {
		return nil, fmt.Errorf("target %s does not accept commands", t.Name())
	}
	if req.Method != "" && !caps.MethodCall {
		return nil, fmt.Errorf("target %s does not accept method calls", t.Name())
	}
	reply, err := t.Handle(ctx, eval.Call{
		Command: req.Command, Method: req.Method, Args: req.Args, Auth: req.Auth})
	if err != nil {
		return nil, err
	}
	if reply.Done == nil {
		return nil, fmt.Errorf("target %s suspended inside the daemon", t.Name())
	}
	r := *reply.Done
	return api.DispatchResponse{
		Success: r.Success, Output: r.Output, Status: r.Status, Err: r.Err}, nil
}

func (s *service) nextRunSeq(_ context.Context, _ json.RawMessage) (any, error) {
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	seq, err := st.NextRunSeq()
	if err != nil {
		return nil, err
	}
	return api.NextRunSeqResponse{Seq: seq}, nil
}

func (s *service) addRun(_ context.Context, raw json.RawMessage) (any, error) {
	var req api.AddRunRequest
	if err := unmarshalParams(raw, &req); err != nil {
		return nil, err
	}
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	seq, err := st.AddRun(req.Script, time.Unix(req.At, 0))
	if err != nil {
		return nil, err
	}
	return api.AddRunResponse{Seq: seq}, nil
}

func (s *service) run(_ context.Context, raw json.RawMessage) (any, error) {
	var req api.RunRequest
	if err := unmarshalParams(raw, &req); err != nil {
		return nil, err
	}
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	run, err := st.Run(req.Seq)
	if err != nil {
		return nil, err
	}
	return api.RunResponse{Run: marshalRun(run)}, nil
}

func (s *service) runsWithSeq(_ context.Context, raw json.RawMessage) (any, error) {
	var req api.RunsWithSeqRequest
	if err := unmarshalParams(raw, &req); err != nil {
		return nil, err
	}
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	runs, err := st.RunsWithSeq(req.From, req.Upto)
	if err != nil {
		return nil, err
	}
	resp := api.RunsWithSeqResponse{Runs: make([]api.Run, len(runs))}
	for i, run := range runs {
		resp.Runs[i] = marshalRun(run)
	}
	return resp, nil
}

func marshalRun(run storedefs.Run) api.Run {
	return api.Run{Seq: run.Seq, Script: run.Script, At: run.At.Unix()}
}

func (s *service) sharedVar(_ context.Context, raw json.RawMessage) (any, error) {
	var req api.SharedVarRequest
	if err := unmarshalParams(raw, &req); err != nil {
		return nil, err
	}
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	value, err := st.SharedVar(req.Name)
	if err != nil {
		return nil, err
	}
	return api.SharedVarResponse{Value: value}, nil
}

func (s *service) setSharedVar(_ context.Context, raw json.RawMessage) (any, error) {
	var req api.SetSharedVarRequest
	if err := unmarshalParams(raw, &req); err != nil {
		return nil, err
	}
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	return struct{}{}, st.SetSharedVar(req.Name, req.Value)
}

func (s *service) delSharedVar(_ context.Context, raw json.RawMessage) (any, error) {
	var req api.DelSharedVarRequest
	if err := unmarshalParams(raw, &req); err != nil {
		return nil, err
	}
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	return struct{}{}, st.DelSharedVar(req.Name)
}

func (s *service) sharedVarNames(_ context.Context, _ json.RawMessage) (any, error) {
	st, err := s.store()
	if err != nil {
		return nil, err
	}
	names, err := st.SharedVarNames()
	if err != nil {
		return nil, err
	}
	return api.SharedVarNamesResponse{Names: names}, nil
}
