package ipc

import (
	"encoding/json"
	"fmt"
)

// Commands understood by the daemon.
const (
	CmdStatus        = "status"
	CmdHistoryList   = "history.list"
	CmdHistorySearch = "history.search"
	CmdHistoryPin    = "history.pin"
	CmdHistoryDelete = "history.delete"
	CmdHistoryClear  = "history.clear"
	CmdHistoryCopy   = "history.copy"
	CmdHistoryStats  = "history.stats"
	CmdExport        = "history.export"
	CmdImport        = "history.import"
	CmdFlush         = "flush"
	CmdConfigReload  = "config.reload"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Request represents a command sent from the CLI to the daemon.
type Request struct {
	Command string          `json:"command"`        // e.g. "history.list"
	Args    json.RawMessage `json:"args,omitempty"` // Command-specific arguments
}

// Response represents a reply from the daemon to the CLI.
type Response struct {
	Status  string          `json:"status"`            // "ok" or "error"
	Message string          `json:"message,omitempty"` // Human-readable message or error
	Data    json.RawMessage `json:"data,omitempty"`    // Command-specific data
}

// NewRequest builds a request, encoding args when non-nil.
func NewRequest(command string, args any) (*Request, error) {
	req := &Request{Command: command}
	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("failed to encode args: %w", err)
		}
		req.Args = raw
	}
	return req, nil
}

// DecodeArgs unmarshals the request arguments into v. Missing args leave v untouched.
func (r *Request) DecodeArgs(v any) error {
	if len(r.Args) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Args, v); err != nil {
		return fmt.Errorf("invalid args for %s: %w", r.Command, err)
	}
	return nil
}

// OK builds a success response carrying data.
func OK(message string, data any) *Response {
	resp := &Response{Status: StatusOK, Message: message}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Error(fmt.Errorf("failed to encode response: %w", err))
		}
		resp.Data = raw
	}
	return resp
}

// Error builds an error response.
func Error(err error) *Response {
	return &Response{Status: StatusError, Message: err.Error()}
}

// Err returns the response as an error when its status is not ok.
func (r *Response) Err() error {
	if r.Status == StatusOK {
		return nil
	}
	if r.Message == "" {
		return fmt.Errorf("daemon returned status %q", r.Status)
	}
	return fmt.Errorf("daemon: %s", r.Message)
}

// DecodeData unmarshals the response payload into v.
func (r *Response) DecodeData(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// Argument payloads.

// IDArgs addresses a single entry.
type IDArgs struct {
	ID string `json:"id"`
}

// ListArgs selects entries for history.list and history.search.
type ListArgs struct {
	Pinned   bool   `json:"pinned,omitempty"`
	Category string `json:"category,omitempty"`
	Query    string `json:"query,omitempty"`
	Fuzzy    bool   `json:"fuzzy,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// ImportArgs carries an exported snapshot.
type ImportArgs struct {
	Data []byte `json:"data"`
}

// PinResult reports the pin state after a toggle.
type PinResult struct {
	ID     string `json:"id"`
	Pinned bool   `json:"pinned"`
}

// ImportResult reports how many entries were merged.
type ImportResult struct {
	Imported int `json:"imported"`
}
