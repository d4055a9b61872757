// Package relay orchestrates tool calls for a browser automation session:
// it validates the call, dispatches it under the timeout policy, and routes
// snapshot output through the compaction pipeline before it reaches the
// caller. The HTTP/WebSocket surface in front of this package treats the
// returned text as an opaque payload.
package relay

import (
	"context"
	"fmt"
	"strings"

	"github.com/pagesmith/pagesmith/pkg/dispatch"
	"github.com/pagesmith/pagesmith/pkg/snapshot"
)

// SnapshotToolName is the tool whose string output flows through the
// compaction pipeline. All other tools pass through untouched.
const SnapshotToolName = "take_snapshot"

// Logger is the logging surface the executor needs; *logging.Logger
// satisfies it.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}

// Executor routes tool calls for executor sessions.
type Executor struct {
	dispatcher *dispatch.Dispatcher
	sessions   *Manager
	log        Logger
}

// NewExecutor wires a dispatcher and session manager together. A nil logger
// discards diagnostics.
func NewExecutor(dispatcher *dispatch.Dispatcher, sessions *Manager, log Logger) *Executor {
	if log == nil {
		log = nopLogger{}
	}
	return &Executor{dispatcher: dispatcher, sessions: sessions, log: log}
}

// Sessions exposes the session registry.
func (e *Executor) Sessions() *Manager {
	return e.sessions
}

// ToolNames enumerates the tools available through the dispatcher.
func (e *Executor) ToolNames() []string {
	return e.dispatcher.Names()
}

// CallTool invokes one tool on behalf of a session. Wrapper options riding
// on the argument map are stripped and applied to snapshot post-processing;
// the tool itself never sees them. Calls within one session are serialized:
// the snapshot memory is single-writer and the orchestrator is not
// reentrant for a given session.
func (e *Executor) CallTool(ctx context.Context, sessionName, toolName string, args map[string]any) (string, error) {
	if strings.TrimSpace(toolName) == "" {
		return "", fmt.Errorf("missing tool name")
	}

	session, err := e.sessions.Get(sessionName)
	if err != nil {
		return "", err
	}

	session.inflight.Lock()
	defer session.inflight.Unlock()
	session.touch()

	if args == nil {
		args = make(map[string]any)
	}
	opts := snapshot.ParseArgs(args)

	out, err := e.dispatcher.Call(ctx, toolName, args)
	if err != nil {
		return "", err
	}

	if toolName == SnapshotToolName {
		processed := session.Pipeline.Process(out, opts)
		e.log.Debugf("%s: snapshot %d -> %d chars (~%d tokens), level=%d delta=%s",
			sessionName, len(out), len(processed), snapshot.EstimateTokens(processed), opts.Level, opts.Delta)
		return processed, nil
	}

	return out, nil
}

// CallResult is the structured shape handed to the relay surface: a success
// flag plus either output or error text, never a panic or a raw Go error.
type CallResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Call wraps CallTool for the relay boundary, folding failures into a
// structured result.
func (e *Executor) Call(ctx context.Context, sessionName, toolName string, args map[string]any) CallResult {
	out, err := e.CallTool(ctx, sessionName, toolName, args)
	if err != nil {
		e.log.Warnf("%s: tool %q failed: %v", sessionName, toolName, err)
		return CallResult{Success: false, Error: err.Error()}
	}
	return CallResult{Success: true, Output: out}
}
