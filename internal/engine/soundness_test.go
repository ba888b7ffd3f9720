package engine

import (
	"os"
	"path/filepath"
	"testing"

	"pie/internal/stamp"
	"pie/internal/store"
	"pie/internal/taskapi"
	"pie/internal/tracker"

	"github.com/stretchr/testify/require"
)

// recordingTask lets a test script an arbitrary Execute body inline,
// keyed by name so the store can intern it like any other task.
type recordingTask struct {
	name string
	run  func(ctx taskapi.Context) (any, error)
}

func (t recordingTask) Key() any { return t.name }
func (t recordingTask) Execute(ctx taskapi.Context) (any, error) {
	return t.run(ctx)
}

func newSession() *SessionState {
	return NewSessionState(store.New(), tracker.NoOp{})
}

func TestCycleRejection_PanicsAtClosingEdge(t *testing.T) {
	var a, b recordingTask
	a = recordingTask{name: "a", run: func(ctx taskapi.Context) (any, error) {
		return ctx.RequireTask(b)
	}}
	b = recordingTask{name: "b", run: func(ctx taskapi.Context) (any, error) {
		return ctx.RequireTask(a)
	}}

	sess := newSession()
	td := NewTopDown(sess)

	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected a panic on the closing cycle edge")
			_, ok := r.(*store.CycleError)
			require.True(t, ok, "expected *store.CycleError, got %T: %v", r, r)
		}()
		_, _ = td.RequireTask(a)
	}()
}

func TestHiddenDependencyRejection_RequireWithoutTransitiveRequire(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	provider := recordingTask{name: "provider", run: func(ctx taskapi.Context) (any, error) {
		require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
		return nil, ctx.ProvideFile(path)
	}}
	reader := recordingTask{name: "reader", run: func(ctx taskapi.Context) (any, error) {
		_, err := ctx.RequireFile(path)
		return nil, err
	}}

	sess := newSession()
	td := NewTopDown(sess)
	_, err := td.RequireTask(provider)
	require.NoError(t, err)

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic: reader never transitively requires provider")
		_, ok := r.(*HiddenDependencyError)
		require.True(t, ok, "expected *HiddenDependencyError, got %T: %v", r, r)
	}()
	_, _ = td.RequireTask(reader)
}

func TestHiddenDependencyAccepted_WhenTransitivelyRequired(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	provider := recordingTask{name: "provider", run: func(ctx taskapi.Context) (any, error) {
		require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
		return nil, ctx.ProvideFile(path)
	}}
	reader := recordingTask{name: "reader", run: func(ctx taskapi.Context) (any, error) {
		if _, err := ctx.RequireTask(provider); err != nil {
			return nil, err
		}
		_, err := ctx.RequireFile(path)
		return nil, err
	}}

	sess := newSession()
	td := NewTopDown(sess)
	_, err := td.RequireTask(reader)
	require.NoError(t, err)
}

func TestOverlapRejection_TwoTasksProvideSameFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	providerA := recordingTask{name: "providerA", run: func(ctx taskapi.Context) (any, error) {
		require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))
		return nil, ctx.ProvideFile(path)
	}}
	providerB := recordingTask{name: "providerB", run: func(ctx taskapi.Context) (any, error) {
		require.NoError(t, os.WriteFile(path, []byte("b"), 0o644))
		return nil, ctx.ProvideFile(path)
	}}

	sess := newSession()
	td := NewTopDown(sess)
	_, err := td.RequireTask(providerA)
	require.NoError(t, err)

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic: providerB cannot also provide the same file")
		_, ok := r.(*OverlapError)
		require.True(t, ok, "expected *OverlapError, got %T: %v", r, r)
	}()
	_, _ = td.RequireTask(providerB)
}

func TestEarlyCutoff_InconsequentialStamperSkipsReExecution(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	reads := 0
	source := recordingTask{name: "source", run: func(ctx taskapi.Context) (any, error) {
		f, err := ctx.RequireFileWithStamper(path, stamp.Hash())
		require.NoError(t, err)
		defer f.Close()
		reads++
		return reads, nil
	}}

	derivedRuns := 0
	derived := recordingTask{name: "derived", run: func(ctx taskapi.Context) (any, error) {
		derivedRuns++
		_, err := ctx.RequireTaskWithStamper(source, stamp.Inconsequential())
		return "const", err
	}}

	s := store.New()
	sess1 := NewSessionState(s, tracker.NoOp{})
	td1 := NewTopDown(sess1)
	_, err := td1.RequireTask(derived)
	require.NoError(t, err)
	require.Equal(t, 1, derivedRuns)
	require.Equal(t, 1, reads)

	// Change the file's content (not just mtime) so source's own
	// Hash-stamped require-file edge is genuinely inconsistent, forcing
	// source to re-execute and produce a different output value. A new
	// session over the SAME store simulates a later build reusing the
	// prior build's cached graph.
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))

	sess2 := NewSessionState(s, tracker.NoOp{})
	td2 := NewTopDown(sess2)
	_, err = td2.RequireTask(derived)
	require.NoError(t, err)
	require.Equal(t, 2, reads, "source must re-execute: its own file dependency changed")
	require.Equal(t, 1, derivedRuns, "derived must not re-execute: its dependency on source is Inconsequential")
}
