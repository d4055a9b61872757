package relay

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagesmith/pagesmith/pkg/dispatch"
	"github.com/pagesmith/pagesmith/pkg/snapshot"
)

// scriptedSource returns canned output per tool and records the arguments it
// was handed.
type scriptedSource struct {
	outputs  map[string]string
	lastArgs map[string]any
}

func (s *scriptedSource) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	out, ok := s.outputs[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", dispatch.ErrUnknownTool, name)
	}
	s.lastArgs = args
	return out, nil
}

func (s *scriptedSource) Names() []string {
	names := make([]string, 0, len(s.outputs))
	for name := range s.outputs {
		names = append(names, name)
	}
	return names
}

func snapshotDump() string {
	lines := make([]string, 0, 40)
	lines = append(lines, `heading "Checkout"`)
	for i := 0; i < 30; i++ {
		lines = append(lines, fmt.Sprintf(`text "detail %d"`, i))
	}
	lines = append(lines, `button "Pay now" [ref=s1e9]`)
	return strings.Join(lines, "\n")
}

func newTestExecutor(t *testing.T, src dispatch.Source) *Executor {
	t.Helper()
	policy, err := dispatch.NewTimeoutPolicy(dispatch.DefaultTimeoutRules())
	require.NoError(t, err)
	return NewExecutor(
		dispatch.New(src, policy, nil),
		NewManager(snapshot.DefaultConfig()),
		nil,
	)
}

func TestCallToolRoutesSnapshotThroughPipeline(t *testing.T) {
	src := &scriptedSource{outputs: map[string]string{SnapshotToolName: snapshotDump()}}
	e := newTestExecutor(t, src)
	_, err := e.Sessions().Start("main")
	require.NoError(t, err)

	out, err := e.CallTool(context.Background(), "main", SnapshotToolName,
		map[string]any{"_snapshot_level": 0})
	require.NoError(t, err)

	assert.Contains(t, out, `button "Pay now" [ref=s1e9]`)
	assert.Contains(t, out, `heading "Checkout"`)
	assert.NotContains(t, out, `text "detail 15"`)
}

func TestCallToolPassesOtherToolsThrough(t *testing.T) {
	src := &scriptedSource{outputs: map[string]string{"click": "clicked"}}
	e := newTestExecutor(t, src)
	_, err := e.Sessions().Start("main")
	require.NoError(t, err)

	out, err := e.CallTool(context.Background(), "main", "click", map[string]any{"selector": "#pay"})
	require.NoError(t, err)

	assert.Equal(t, "clicked", out)
}

func TestCallToolStripsWrapperArgs(t *testing.T) {
	src := &scriptedSource{outputs: map[string]string{"click": "clicked"}}
	e := newTestExecutor(t, src)
	_, err := e.Sessions().Start("main")
	require.NoError(t, err)

	_, err = e.CallTool(context.Background(), "main", "click", map[string]any{
		"selector": "#pay",
		"_compact": true,
		"_delta":   false,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"selector": "#pay"}, src.lastArgs)
}

func TestCallToolSecondIdenticalSnapshotIsDelta(t *testing.T) {
	src := &scriptedSource{outputs: map[string]string{SnapshotToolName: snapshotDump()}}
	e := newTestExecutor(t, src)
	_, err := e.Sessions().Start("main")
	require.NoError(t, err)

	first, err := e.CallTool(context.Background(), "main", SnapshotToolName, nil)
	require.NoError(t, err)
	second, err := e.CallTool(context.Background(), "main", SnapshotToolName, nil)
	require.NoError(t, err)

	assert.NotEqual(t, snapshot.DeltaUnchangedSentinel, first)
	assert.Equal(t, snapshot.DeltaUnchangedSentinel, second)
}

// Snapshot memory is per session: a second session sees full text even after
// the first session has history.
func TestSessionsAreIsolated(t *testing.T) {
	src := &scriptedSource{outputs: map[string]string{SnapshotToolName: snapshotDump()}}
	e := newTestExecutor(t, src)
	_, err := e.Sessions().Start("a")
	require.NoError(t, err)
	_, err = e.Sessions().Start("b")
	require.NoError(t, err)

	_, err = e.CallTool(context.Background(), "a", SnapshotToolName, nil)
	require.NoError(t, err)
	_, err = e.CallTool(context.Background(), "a", SnapshotToolName, nil)
	require.NoError(t, err)

	out, err := e.CallTool(context.Background(), "b", SnapshotToolName, nil)
	require.NoError(t, err)
	assert.NotEqual(t, snapshot.DeltaUnchangedSentinel, out)
}

func TestCallToolErrors(t *testing.T) {
	src := &scriptedSource{outputs: map[string]string{"click": "clicked"}}
	e := newTestExecutor(t, src)
	_, err := e.Sessions().Start("main")
	require.NoError(t, err)

	t.Run("missing tool name", func(t *testing.T) {
		_, err := e.CallTool(context.Background(), "main", "  ", nil)
		assert.Error(t, err)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := e.CallTool(context.Background(), "ghost", "click", nil)
		assert.ErrorContains(t, err, `session "ghost" not found`)
	})

	t.Run("unknown tool is a named failure", func(t *testing.T) {
		_, err := e.CallTool(context.Background(), "main", "teleport", nil)
		assert.ErrorIs(t, err, dispatch.ErrUnknownTool)
		assert.ErrorContains(t, err, "teleport")
	})
}

func TestCallFoldsErrorsIntoResult(t *testing.T) {
	src := &scriptedSource{outputs: map[string]string{"click": "clicked"}}
	e := newTestExecutor(t, src)
	_, err := e.Sessions().Start("main")
	require.NoError(t, err)

	ok := e.Call(context.Background(), "main", "click", nil)
	assert.True(t, ok.Success)
	assert.Equal(t, "clicked", ok.Output)

	bad := e.Call(context.Background(), "main", "teleport", nil)
	assert.False(t, bad.Success)
	assert.Contains(t, bad.Error, "teleport")
}

func TestClearHistoryResetsDelta(t *testing.T) {
	src := &scriptedSource{outputs: map[string]string{SnapshotToolName: snapshotDump()}}
	e := newTestExecutor(t, src)
	sess, err := e.Sessions().Start("main")
	require.NoError(t, err)

	_, err = e.CallTool(context.Background(), "main", SnapshotToolName, nil)
	require.NoError(t, err)

	oldID := sess.ID
	sess.ClearHistory()
	assert.NotEqual(t, oldID, sess.ID)

	out, err := e.CallTool(context.Background(), "main", SnapshotToolName, nil)
	require.NoError(t, err)
	assert.NotEqual(t, snapshot.DeltaUnchangedSentinel, out)
}

func TestManagerLimitsAndCleanup(t *testing.T) {
	m := NewManager(snapshot.DefaultConfig())
	m.SetMaxSessions(1)

	_, err := m.Start("one")
	require.NoError(t, err)
	_, err = m.Start("two")
	assert.ErrorContains(t, err, "maximum number of sessions")

	_, err = m.Start("one")
	assert.ErrorContains(t, err, "already exists")

	m.SetIdleTimeout(time.Nanosecond)
	time.Sleep(time.Millisecond)
	assert.Equal(t, 1, m.CleanupIdle())
	assert.False(t, m.HasSessions())
}
