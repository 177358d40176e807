// Package api defines the API between the daemon service and its client.
package api

// Version is the API version. It should be bumped any time the API changes.
const Version = 1

// Names of the RPC methods the service exposes.
const (
	MethodVersion  = "version"
	MethodDispatch = "dispatch"

	MethodNextRunSeq  = "nextRunSeq"
	MethodAddRun      = "addRun"
	MethodRun         = "run"
	MethodRunsWithSeq = "runsWithSeq"

	MethodSharedVar      = "sharedVar"
	MethodSetSharedVar   = "setSharedVar"
	MethodDelSharedVar   = "delSharedVar"
	MethodSharedVarNames = "sharedVarNames"
)

type VersionResponse struct {
	Version int `json:"version"`
}

// DispatchRequest carries one dispatch to a target hosted by the daemon.
// Command and Method are mutually exclusive, as in a local dispatch.
type DispatchRequest struct {
	Target  string   `json:"target"`
	Command string   `json:"command,omitempty"`
	Method  string   `json:"method,omitempty"`
	Args    []string `json:"args,omitempty"`
	Auth    string   `json:"auth,omitempty"`
}

type DispatchResponse struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Status  int    `json:"status"`
	Err     string `json:"err,omitempty"`
}

type NextRunSeqResponse struct {
	Seq int `json:"seq"`
}

type AddRunRequest struct {
	Script string `json:"script"`
	// Unix timestamp in seconds, matching the store's resolution.
	At int64 `json:"at"`
}

type AddRunResponse struct {
	Seq int `json:"seq"`
}

type RunRequest struct {
	Seq int `json:"seq"`
}

type RunResponse struct {
	Run Run `json:"run"`
}

// Run mirrors the store's run log entry, with the timestamp as Unix seconds.
type Run struct {
	Seq    int    `json:"seq"`
	Script string `json:"script"`
	At     int64  `json:"at"`
}

type RunsWithSeqRequest struct {
	From int `json:"from"`
	Upto int `json:"upto"`
}

type RunsWithSeqResponse struct {
	Runs []Run `json:"runs"`
}

type SharedVarRequest struct {
	Name string `json:"name"`
}

type SharedVarResponse struct {
	Value string `json:"value"`
}

type SetSharedVarRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type DelSharedVarRequest struct {
	Name string `json:"name"`
}

type SharedVarNamesResponse struct {
	Names []string `json:"names"`
}
