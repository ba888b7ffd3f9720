package engine

import (
	"fmt"

	"pie/internal/dependency"
	"pie/internal/stamp"
	"pie/internal/store"
	"pie/internal/taskapi"
)

// TopDownContext implements recursive demand-driven consistency checking
// (§4.5): requiring a task walks its recorded edges in the order they
// were created, recursively making task-require edges consistent first,
// and only re-executes the task when an edge turns out stale.
type TopDownContext struct {
	*shared
}

// NewTopDown returns a TopDownContext borrowing session for one
// Session.Require call.
func NewTopDown(session *SessionState) *TopDownContext {
	return &TopDownContext{shared: &shared{session: session}}
}

func (td *TopDownContext) RequireTask(task taskapi.Task) (taskapi.Output, error) {
	return td.RequireTaskWithStamper(task, stamp.Equals())
}

func (td *TopDownContext) RequireTaskWithStamper(task taskapi.Task, stamper stamp.OutputStamper) (taskapi.Output, error) {
	return td.requireTask(task, stamper, td.makeConsistent)
}

func (td *TopDownContext) RequireFile(path string) (taskapi.ReadCloser, error) {
	return td.RequireFileWithStamper(path, stamp.Modified())
}

func (td *TopDownContext) RequireFileWithStamper(path string, stamper stamp.FileStamper) (taskapi.ReadCloser, error) {
	return td.recordFileRequire(path, stamper)
}

func (td *TopDownContext) ProvideFile(path string) error {
	return td.ProvideFileWithStamper(path, stamp.Modified())
}

func (td *TopDownContext) ProvideFileWithStamper(path string, stamper stamp.FileStamper) error {
	return td.recordFileProvide(path, stamper)
}

// makeConsistent is the consistency check of §4.5: already-consistent
// tasks return their cached output immediately; a task with no cached
// output at all is executed unconditionally; otherwise each recorded
// edge is re-examined in insertion order and the first inconsistency
// triggers a full re-execution.
func (td *TopDownContext) makeConsistent(id store.NodeID) (any, error) {
	if td.session.IsConsistent(id) {
		return td.session.Store.GetTaskOutput(id), nil
	}
	if !td.session.Store.TaskHasOutput(id) {
		return td.execute(id, td)
	}

	task := td.session.Store.GetTask(id)
	for _, dep := range td.session.Store.GetDependenciesOf(id) {
		inconsistent, err := td.checkEdge(task, dep)
		if err != nil {
			td.session.AddError(err)
			inconsistent = true
		}
		if inconsistent {
			return td.execute(id, td)
		}
	}

	td.session.MarkConsistent(id)
	return td.session.Store.GetTaskOutput(id), nil
}

func (td *TopDownContext) checkEdge(owner taskapi.Task, dep dependency.Dependency) (bool, error) {
	switch dep.Kind {
	case dependency.RequireFile:
		td.session.Tracker.CheckRequireFileStart(owner, dep.Path)
		inc, err := dep.IsInconsistent(nil, outputEqual)
		td.session.Tracker.CheckRequireFileEnd(owner, dep.Path, inc != nil)
		return inc != nil, err

	case dependency.ProvideFile:
		td.session.Tracker.CheckProvideFileStart(owner, dep.Path)
		inc, err := dep.IsInconsistent(nil, outputEqual)
		td.session.Tracker.CheckProvideFileEnd(owner, dep.Path, inc != nil)
		return inc != nil, err

	case dependency.RequireTask:
		td.session.Tracker.CheckRequireTaskStart(owner, dep.Task)
		inc, err := dep.IsInconsistent(td.checkTaskConsistency, outputEqual)
		td.session.Tracker.CheckRequireTaskEnd(owner, dep.Task, inc != nil)
		return inc != nil, err

	default:
		return true, fmt.Errorf("engine: unknown dependency kind %v", dep.Kind)
	}
}

// checkTaskConsistency adapts makeConsistent to the
// dependency.TaskConsistencyChecker shape IsInconsistent expects.
func (td *TopDownContext) checkTaskConsistency(task taskapi.Task) (any, error) {
	id := td.session.Store.GetOrCreateTaskNode(task)
	return td.makeConsistent(id)
}

var _ taskapi.Context = (*TopDownContext)(nil)
