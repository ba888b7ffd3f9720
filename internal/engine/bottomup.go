package engine

import (
	"pie/internal/dependency"
	"pie/internal/stamp"
	"pie/internal/store"
	"pie/internal/taskapi"
)

// BottomUpContext implements change propagation from a set of changed
// files outward (§4.6): seed the scheduled queue from the changed paths,
// drain it in dependency order, and after each execution propagate to
// both the files the task provides and the tasks that require it.
type BottomUpContext struct {
	*shared
	queue *queue
}

// NewBottomUp returns a BottomUpContext borrowing session for one
// Session.UpdateAffectedBy call.
func NewBottomUp(session *SessionState) *BottomUpContext {
	bu := &BottomUpContext{shared: &shared{session: session}}
	bu.queue = newQueue(session.Store)
	return bu
}

// UpdateAffectedBy is the entry point of §4.6: seed from changedPaths,
// then drain the queue until empty.
func (bu *BottomUpContext) UpdateAffectedBy(changedPaths []string) error {
	bu.session.Tracker.UpdateAffectedByStart(changedPaths)
	defer bu.session.Tracker.UpdateAffectedByEnd()

	for _, p := range changedPaths {
		fileID, ok := bu.session.Store.LookupFileNode(p)
		if !ok {
			continue
		}
		bu.restampFileAndSchedule(fileID)
	}

	for bu.queue.Len() > 0 {
		id, _ := bu.queue.Pop()
		if bu.session.IsConsistent(id) {
			// Already resolved by a nested require_scheduled_now call
			// while another scheduled task was executing.
			continue
		}
		if err := bu.runScheduled(id); err != nil {
			return err
		}
	}
	return nil
}

// runScheduled executes a popped (or pulled-forward) task and propagates
// the resulting change to its providees and requirers.
func (bu *BottomUpContext) runScheduled(id store.NodeID) error {
	output, err := bu.execute(id, bu)
	if err != nil {
		return err
	}
	bu.propagate(id, output)
	return nil
}

// propagate implements §4.6 point 4: re-stamp every file id provides
// (scheduling its requirers if stale) and re-stamp every task-require
// edge pointing at id from some other task (scheduling that task if id's
// new output makes the edge inconsistent).
func (bu *BottomUpContext) propagate(id store.NodeID, output any) {
	task := bu.session.Store.GetTask(id)
	bu.session.Tracker.ScheduleAffectedByTaskStart(task)
	defer bu.session.Tracker.ScheduleAffectedByTaskEnd(task)

	for _, fileID := range bu.session.Store.GetProvidedFiles(id) {
		bu.restampFileAndSchedule(fileID)
	}

	for _, reqID := range bu.session.Store.GetTasksRequiring(id) {
		if bu.session.Store.TaskIsExecuting(reqID) {
			continue
		}
		reqTask := bu.session.Store.GetTask(reqID)
		for _, dep := range bu.session.Store.GetDependenciesOf(reqID) {
			if dep.Kind != dependency.RequireTask {
				continue
			}
			if bu.session.Store.GetOrCreateTaskNode(dep.Task) != id {
				continue
			}
			bu.session.Tracker.CheckRequireTaskStart(reqTask, dep.Task)
			fresh := dep.OutputStamper.Stamp(output)
			inconsistent := !fresh.Equal(dep.OutputStamp, outputEqual)
			bu.session.Tracker.CheckRequireTaskEnd(reqTask, dep.Task, inconsistent)
			if inconsistent {
				bu.schedule(reqID, "dependency output changed")
			}
		}
	}
}

// restampFileAndSchedule re-stamps every require/provide edge any task
// holds against fileID and schedules the owning task when an edge is now
// inconsistent. It backs both the seed step (§4.6 point 1) and the
// provided-files half of propagate (point 4), which re-stamp the same
// way.
func (bu *BottomUpContext) restampFileAndSchedule(fileID store.NodeID) {
	path := bu.session.Store.GetFilePath(fileID)
	bu.session.Tracker.ScheduleAffectedByFileStart(path)
	defer bu.session.Tracker.ScheduleAffectedByFileEnd(path)

	for _, reqID := range bu.session.Store.GetTasksRequiringOrProvidingFile(fileID, true) {
		if bu.session.Store.TaskIsExecuting(reqID) {
			continue
		}
		task := bu.session.Store.GetTask(reqID)
		for _, dep := range bu.session.Store.GetDependenciesOf(reqID) {
			if dep.Kind != dependency.RequireFile && dep.Kind != dependency.ProvideFile {
				continue
			}
			if dep.Path != path {
				continue
			}
			if bu.checkFileDependency(task, dep) {
				bu.schedule(reqID, "file changed: "+path)
			}
		}
	}
}

func (bu *BottomUpContext) checkFileDependency(task taskapi.Task, dep dependency.Dependency) bool {
	start, end := bu.session.Tracker.CheckRequireFileStart, bu.session.Tracker.CheckRequireFileEnd
	if dep.Kind == dependency.ProvideFile {
		start, end = bu.session.Tracker.CheckProvideFileStart, bu.session.Tracker.CheckProvideFileEnd
	}
	start(task, dep.Path)
	inc, err := dep.IsInconsistent(nil, outputEqual)
	end(task, dep.Path, inc != nil)
	if err != nil {
		bu.session.AddError(err)
		return true
	}
	return inc != nil
}

func (bu *BottomUpContext) schedule(id store.NodeID, reason string) {
	if !bu.queue.Add(id) {
		return
	}
	bu.session.Tracker.ScheduleTask(bu.session.Store.GetTask(id), reason)
}

// makeConsistent is the bottom-up half of §4.4 point 4's "make D
// consistent": a task already handled this session returns its cached
// output; a task currently scheduled is pulled out of the queue and run
// immediately (require_scheduled_now, §4.6 point 5) so its output is
// fresh before the caller observes it; a task with an existing output
// and nothing scheduling it is already up to date; anything else (a task
// this session has never seen before) is executed unconditionally.
func (bu *BottomUpContext) makeConsistent(id store.NodeID) (any, error) {
	if bu.session.IsConsistent(id) {
		return bu.session.Store.GetTaskOutput(id), nil
	}
	if bu.queue.Contains(id) {
		bu.queue.Remove(id)
		if err := bu.runScheduled(id); err != nil {
			return nil, err
		}
		return bu.session.Store.GetTaskOutput(id), nil
	}
	if bu.session.Store.TaskHasOutput(id) {
		bu.session.MarkConsistent(id)
		return bu.session.Store.GetTaskOutput(id), nil
	}
	return bu.execute(id, bu)
}

func (bu *BottomUpContext) RequireTask(task taskapi.Task) (taskapi.Output, error) {
	return bu.RequireTaskWithStamper(task, stamp.Equals())
}

func (bu *BottomUpContext) RequireTaskWithStamper(task taskapi.Task, stamper stamp.OutputStamper) (taskapi.Output, error) {
	return bu.requireTask(task, stamper, bu.makeConsistent)
}

func (bu *BottomUpContext) RequireFile(path string) (taskapi.ReadCloser, error) {
	return bu.RequireFileWithStamper(path, stamp.Modified())
}

func (bu *BottomUpContext) RequireFileWithStamper(path string, stamper stamp.FileStamper) (taskapi.ReadCloser, error) {
	return bu.recordFileRequire(path, stamper)
}

func (bu *BottomUpContext) ProvideFile(path string) error {
	return bu.ProvideFileWithStamper(path, stamp.Modified())
}

func (bu *BottomUpContext) ProvideFileWithStamper(path string, stamper stamp.FileStamper) error {
	return bu.recordFileProvide(path, stamper)
}

var _ taskapi.Context = (*BottomUpContext)(nil)
