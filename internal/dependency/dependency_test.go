package dependency

import (
	"os"
	"path/filepath"
	"testing"

	"pie/internal/stamp"
	"pie/internal/taskapi"

	"github.com/stretchr/testify/require"
)

// fakeTask is a minimal taskapi.Task used only to exercise RequireTask
// dependencies in isolation, without pulling in the engine.
type fakeTask string

func (f fakeTask) Key() any                            { return f }
func (f fakeTask) Execute(taskapi.Context) (any, error) { return string(f), nil }

func TestNewRequireFile_OpensExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	dep, f, err := NewRequireFile(path, stamp.Modified())
	require.NoError(t, err)
	require.NotNil(t, f)
	defer f.Close()
	require.Equal(t, RequireFile, dep.Kind)
}

func TestNewRequireFile_MissingPathYieldsNilFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.txt")

	dep, f, err := NewRequireFile(path, stamp.Modified())
	require.NoError(t, err)
	require.Nil(t, f)
	require.False(t, dep.FileStamp.Present && dep.FileStamp.Kind == stamp.KindExists)
}

func TestIsInconsistent_FileDependency(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	dep, f, err := NewRequireFile(path, stamp.Hash())
	require.NoError(t, err)
	f.Close()

	inc, err := dep.IsInconsistent(nil, nil)
	require.NoError(t, err)
	require.Nil(t, inc, "unchanged file must be consistent")

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	inc, err = dep.IsInconsistent(nil, nil)
	require.NoError(t, err)
	require.NotNil(t, inc, "changed content must be inconsistent")
}

func TestIsInconsistent_TaskDependency(t *testing.T) {
	dep := NewRequireTask(fakeTask("a"), stamp.Equals(), "v1")

	same := func(task taskapi.Task) (any, error) { return "v1", nil }
	inc, err := dep.IsInconsistent(same, nil)
	require.NoError(t, err)
	require.Nil(t, inc)

	changed := func(task taskapi.Task) (any, error) { return "v2", nil }
	inc, err = dep.IsInconsistent(changed, nil)
	require.NoError(t, err)
	require.NotNil(t, inc)
	require.Equal(t, "v2", inc.OutputValue)
}

func TestIsInconsistent_InconsequentialNeverInconsistent(t *testing.T) {
	dep := NewRequireTask(fakeTask("a"), stamp.Inconsequential(), "v1")

	changed := func(task taskapi.Task) (any, error) { return "anything else", nil }
	inc, err := dep.IsInconsistent(changed, nil)
	require.NoError(t, err)
	require.Nil(t, inc)
}

func TestIsInconsistent_MissingCheckerIsError(t *testing.T) {
	dep := NewRequireTask(fakeTask("a"), stamp.Equals(), "v1")
	_, err := dep.IsInconsistent(nil, nil)
	require.Error(t, err)
}
