package tracker

import (
	"fmt"

	"pie/internal/taskapi"
	"pie/internal/trace"
)

// Trace records a deterministic, replay-independent account of a
// session's consistency decisions: which dependency checks came back
// inconsistent, which tasks were scheduled and why, and which tasks ran
// to completion or failed. Unlike Writing, its output does not depend on
// callback ordering or goroutine interleaving — Recorder's events are
// canonicalized before being read back, so two runs over an unchanged
// graph produce the same trace.
//
// Trace is a pure observer: nothing in the engine reads it back, and a
// caller that never calls ExecutionTrace leaves no trace on disk or
// memory beyond the Recorder itself.
type Trace struct {
	rec *trace.Recorder
}

// NewTrace returns a Trace tracker backed by a fresh Recorder.
func NewTrace() *Trace {
	return &Trace{rec: trace.NewRecorder()}
}

// ExecutionTrace builds the canonical ExecutionTrace for everything
// recorded so far, under the given graph hash.
func (t *Trace) ExecutionTrace(graphHash string) trace.ExecutionTrace {
	return t.rec.Trace(graphHash)
}

func taskID(task taskapi.Task) string {
	return fmt.Sprintf("%v", task.Key())
}

func (t *Trace) RequireTaskStart(task taskapi.Task) {}

func (t *Trace) RequireTaskEnd(task taskapi.Task, output taskapi.Output, err error) {}

func (t *Trace) ExecuteTaskStart(task taskapi.Task) {}

func (t *Trace) ExecuteTaskEnd(task taskapi.Task, output taskapi.Output, err error) {
	kind := trace.EventTaskExecuted
	if err != nil {
		kind = trace.EventTaskFailed
	}
	trace.SafeRecord(t.rec, trace.TraceEvent{
		Kind:   kind,
		TaskID: taskID(task),
	})
}

func (t *Trace) CheckRequireFileStart(task taskapi.Task, path string) {}

func (t *Trace) CheckRequireFileEnd(task taskapi.Task, path string, inconsistent bool) {
	if !inconsistent {
		return
	}
	trace.SafeRecord(t.rec, trace.TraceEvent{
		Kind:   trace.EventDependencyInconsistent,
		TaskID: taskID(task),
		Reason: "require-file:" + path,
	})
}

func (t *Trace) CheckProvideFileStart(task taskapi.Task, path string) {}

func (t *Trace) CheckProvideFileEnd(task taskapi.Task, path string, inconsistent bool) {
	if !inconsistent {
		return
	}
	trace.SafeRecord(t.rec, trace.TraceEvent{
		Kind:   trace.EventDependencyInconsistent,
		TaskID: taskID(task),
		Reason: "provide-file:" + path,
	})
}

func (t *Trace) CheckRequireTaskStart(task taskapi.Task, dependee taskapi.Task) {}

func (t *Trace) CheckRequireTaskEnd(task taskapi.Task, dependee taskapi.Task, inconsistent bool) {
	if !inconsistent {
		return
	}
	trace.SafeRecord(t.rec, trace.TraceEvent{
		Kind:        trace.EventDependencyInconsistent,
		TaskID:      taskID(task),
		Reason:      "require-task:" + taskID(dependee),
		CauseTaskID: taskID(dependee),
	})
}

func (t *Trace) UpdateAffectedByStart(paths []string) {}

func (t *Trace) UpdateAffectedByEnd() {}

func (t *Trace) ScheduleTask(task taskapi.Task, reason string) {
	trace.SafeRecord(t.rec, trace.TraceEvent{
		Kind:   trace.EventTaskScheduled,
		TaskID: taskID(task),
		Reason: reason,
	})
}

func (t *Trace) ScheduleAffectedByFileStart(path string) {}

func (t *Trace) ScheduleAffectedByFileEnd(path string) {}

func (t *Trace) ScheduleAffectedByTaskStart(task taskapi.Task) {}

func (t *Trace) ScheduleAffectedByTaskEnd(task taskapi.Task) {}

var _ Tracker = (*Trace)(nil)
