package persist_test

import (
	"os"
	"path/filepath"
	"testing"

	"pie"
	"pie/internal/persist"
	"pie/internal/stamp"
	"pie/internal/tasks"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadGraph_RoundTripsChainedTasks(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(inPath, []byte("ABC"), 0o644))

	read := tasks.ReadFileTask(inPath, stamp.Modified())
	lower := tasks.ToLowerTask(read)

	p := pie.New()
	sess := p.NewSession()
	out, err := sess.Require(lower)
	require.NoError(t, err)
	require.Equal(t, tasks.Ok("abc"), out)
	sess.Close()

	graphPath := filepath.Join(dir, "graph.yaml")
	require.NoError(t, persist.SaveGraph(graphPath, p.Store()))

	loaded, err := persist.LoadGraph(graphPath)
	require.NoError(t, err)

	p2 := pie.NewFromStore(loaded)
	sess2 := p2.NewSession()
	out2, err := sess2.Require(lower)
	require.NoError(t, err)
	require.Equal(t, tasks.Ok("abc"), out2, "loaded graph must still satisfy the original task via cached output, no re-read required")
	sess2.Close()
}

func TestSaveGraph_RejectsNonDemoTask(t *testing.T) {
	dir := t.TempDir()
	graphPath := filepath.Join(dir, "graph.yaml")

	p := pie.New()
	sess := p.NewSession()
	_, err := sess.Require(opaqueTask{})
	require.NoError(t, err)
	sess.Close()

	err = persist.SaveGraph(graphPath, p.Store())
	require.Error(t, err, "a store holding a non-DemoTask value cannot be encoded by this codec")
}

type opaqueTask struct{}

func (opaqueTask) Key() any                         { return "opaque" }
func (opaqueTask) Execute(pie.Context) (any, error) { return "value", nil }
