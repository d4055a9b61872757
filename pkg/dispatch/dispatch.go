// Package dispatch invokes remote tools under hard wall-clock bounds.
//
// Browser backends occasionally hang: a click on a detached element, a
// navigation that never settles. Cancellation over such backends is advisory
// only, so a plain context deadline is not enough — the operation may ignore
// it and keep the caller blocked. The Dispatcher races every bounded
// operation against a deadline timer and unconditionally returns to the
// caller when the deadline wins, leaving a detached sink to observe and
// discard whatever the abandoned operation eventually produces.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownTool marks invocations of names the source does not provide.
// It is a caller error, surfaced as a named failure rather than swallowed.
var ErrUnknownTool = errors.New("unknown tool")

// Source is a name-addressed registry of callable remote operations. How the
// operations are transported or hosted is the source's business.
type Source interface {
	// Invoke runs the named tool. Implementations should honor ctx
	// cancellation on a best-effort basis; the Dispatcher does not rely
	// on them doing so.
	Invoke(ctx context.Context, name string, args map[string]any) (string, error)

	// Names enumerates the available tool names.
	Names() []string
}

// Logger is the logging surface the dispatcher needs. *logging.Logger
// satisfies it.
type Logger interface {
	Debugf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})  {}

// Dispatcher wraps a Source with per-tool hard deadlines.
type Dispatcher struct {
	source Source
	policy *TimeoutPolicy
	log    Logger
}

// New creates a dispatcher. A nil policy leaves every tool unbounded; a nil
// logger discards diagnostics.
func New(source Source, policy *TimeoutPolicy, log Logger) *Dispatcher {
	if log == nil {
		log = nopLogger{}
	}
	return &Dispatcher{source: source, policy: policy, log: log}
}

// Names enumerates the underlying source's tools.
func (d *Dispatcher) Names() []string {
	return d.source.Names()
}

type invokeResult struct {
	out string
	err error
}

// Call invokes a tool. Unbounded tools pass straight through. Bounded tools
// run in their own goroutine racing a deadline timer; whichever finishes
// first wins and the loser is abandoned. On timeout the caller immediately
// receives a diagnostic message — never an indefinite block — while
// cancellation is signaled to the still-running operation without any
// guarantee it listens.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	timeout, bounded := d.policy.Lookup(name)
	if !bounded {
		return d.source.Invoke(ctx, name, args)
	}

	start := time.Now()
	d.log.Debugf("%s: bounded call, timeout=%s", name, timeout)

	opCtx, cancel := context.WithCancel(ctx)
	results := make(chan invokeResult, 1)
	go func() {
		out, err := d.source.Invoke(opCtx, name, args)
		results <- invokeResult{out: out, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-results:
		cancel()
		d.log.Debugf("%s: done in %s", name, time.Since(start).Round(time.Millisecond))
		return res.out, res.err

	case <-ctx.Done():
		cancel()
		go d.sink(name, results)
		return "", ctx.Err()

	case <-timer.C:
		d.log.Warnf("%s: hard timeout after %s", name, time.Since(start).Round(time.Millisecond))
		cancel()
		go d.sink(name, results)
		return timeoutMessage(name, timeout), nil
	}
}

// sink observes the eventual outcome of an abandoned operation so a late
// completion or failure has somewhere harmless to land. The result channel
// is buffered, so the operation goroutine never blocks either way.
func (d *Dispatcher) sink(name string, results <-chan invokeResult) {
	res := <-results
	if res.err != nil {
		d.log.Warnf("%s: abandoned call finished with error: %v", name, res.err)
		return
	}
	d.log.Debugf("%s: abandoned call finished late, %d bytes discarded", name, len(res.out))
}

func timeoutMessage(name string, timeout time.Duration) string {
	return fmt.Sprintf(
		"Tool '%s' timed out after %s. The page may be loading, the target may be unclickable or unfillable, or the browser is blocked. Take a fresh snapshot and retry with a different target.",
		name, timeout,
	)
}
