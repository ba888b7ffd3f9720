package tracker

import (
	"bytes"
	"encoding/json"
	"fmt"

	"pie/internal/taskapi"
)

// EventKind is the stable discriminator for a recorded Event. Event logs
// are compared in tests, so these names are part of the log's contract —
// renaming one changes what a test asserting on recorded events sees.
type EventKind string

const (
	EventRequireTaskStart          EventKind = "RequireTaskStart"
	EventRequireTaskEnd            EventKind = "RequireTaskEnd"
	EventExecuteTaskStart          EventKind = "ExecuteTaskStart"
	EventExecuteTaskEnd            EventKind = "ExecuteTaskEnd"
	EventCheckRequireFileStart     EventKind = "CheckRequireFileStart"
	EventCheckRequireFileEnd       EventKind = "CheckRequireFileEnd"
	EventCheckProvideFileStart     EventKind = "CheckProvideFileStart"
	EventCheckProvideFileEnd       EventKind = "CheckProvideFileEnd"
	EventCheckRequireTaskStart     EventKind = "CheckRequireTaskStart"
	EventCheckRequireTaskEnd       EventKind = "CheckRequireTaskEnd"
	EventUpdateAffectedByStart     EventKind = "UpdateAffectedByStart"
	EventUpdateAffectedByEnd       EventKind = "UpdateAffectedByEnd"
	EventScheduleTask              EventKind = "ScheduleTask"
	EventScheduleAffectedByFileStart EventKind = "ScheduleAffectedByFileStart"
	EventScheduleAffectedByFileEnd   EventKind = "ScheduleAffectedByFileEnd"
	EventScheduleAffectedByTaskStart EventKind = "ScheduleAffectedByTaskStart"
	EventScheduleAffectedByTaskEnd   EventKind = "ScheduleAffectedByTaskEnd"
)

// Event is one recorded callback. Unlike the canonical trace this package
// was modeled on, Events is never sorted: a test asserting "B executed
// before C" needs the log in the order callbacks actually happened in.
type Event struct {
	Kind        EventKind
	TaskKey     string
	DependeeKey string
	Path        string
	Inconsistent bool
	Reason      string
	HasError    bool
}

// MarshalJSON fixes the field order so two logs that agree semantically
// also agree byte-for-byte.
func (e Event) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	fmt.Fprintf(&buf, `"kind":%q`, e.Kind)
	if e.TaskKey != "" {
		fmt.Fprintf(&buf, `,"task":%q`, e.TaskKey)
	}
	if e.DependeeKey != "" {
		fmt.Fprintf(&buf, `,"dependee":%q`, e.DependeeKey)
	}
	if e.Path != "" {
		fmt.Fprintf(&buf, `,"path":%q`, e.Path)
	}
	if e.Inconsistent {
		buf.WriteString(`,"inconsistent":true`)
	}
	if e.Reason != "" {
		fmt.Fprintf(&buf, `,"reason":%q`, e.Reason)
	}
	if e.HasError {
		buf.WriteString(`,"error":true`)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EventRecorder is a Tracker implementation that appends every callback
// to an in-memory log, for assertions in tests that care about exact
// execution order (early cutoff, minimality, scheduling order).
type EventRecorder struct {
	Events []Event
}

// NewEventRecorder returns an empty EventRecorder.
func NewEventRecorder() *EventRecorder { return &EventRecorder{} }

func keyOf(task taskapi.Task) string { return fmt.Sprintf("%v", task.Key()) }

func (t *EventRecorder) record(e Event) { t.Events = append(t.Events, e) }

func (t *EventRecorder) RequireTaskStart(task taskapi.Task) {
	t.record(Event{Kind: EventRequireTaskStart, TaskKey: keyOf(task)})
}

func (t *EventRecorder) RequireTaskEnd(task taskapi.Task, output taskapi.Output, err error) {
	t.record(Event{Kind: EventRequireTaskEnd, TaskKey: keyOf(task), HasError: err != nil})
}

func (t *EventRecorder) ExecuteTaskStart(task taskapi.Task) {
	t.record(Event{Kind: EventExecuteTaskStart, TaskKey: keyOf(task)})
}

func (t *EventRecorder) ExecuteTaskEnd(task taskapi.Task, output taskapi.Output, err error) {
	t.record(Event{Kind: EventExecuteTaskEnd, TaskKey: keyOf(task), HasError: err != nil})
}

func (t *EventRecorder) CheckRequireFileStart(task taskapi.Task, path string) {
	t.record(Event{Kind: EventCheckRequireFileStart, TaskKey: keyOf(task), Path: path})
}

func (t *EventRecorder) CheckRequireFileEnd(task taskapi.Task, path string, inconsistent bool) {
	t.record(Event{Kind: EventCheckRequireFileEnd, TaskKey: keyOf(task), Path: path, Inconsistent: inconsistent})
}

func (t *EventRecorder) CheckProvideFileStart(task taskapi.Task, path string) {
	t.record(Event{Kind: EventCheckProvideFileStart, TaskKey: keyOf(task), Path: path})
}

func (t *EventRecorder) CheckProvideFileEnd(task taskapi.Task, path string, inconsistent bool) {
	t.record(Event{Kind: EventCheckProvideFileEnd, TaskKey: keyOf(task), Path: path, Inconsistent: inconsistent})
}

func (t *EventRecorder) CheckRequireTaskStart(task taskapi.Task, dependee taskapi.Task) {
	t.record(Event{Kind: EventCheckRequireTaskStart, TaskKey: keyOf(task), DependeeKey: keyOf(dependee)})
}

func (t *EventRecorder) CheckRequireTaskEnd(task taskapi.Task, dependee taskapi.Task, inconsistent bool) {
	t.record(Event{Kind: EventCheckRequireTaskEnd, TaskKey: keyOf(task), DependeeKey: keyOf(dependee), Inconsistent: inconsistent})
}

func (t *EventRecorder) UpdateAffectedByStart(paths []string) {
	t.record(Event{Kind: EventUpdateAffectedByStart, Path: fmt.Sprintf("%v", paths)})
}

func (t *EventRecorder) UpdateAffectedByEnd() {
	t.record(Event{Kind: EventUpdateAffectedByEnd})
}

func (t *EventRecorder) ScheduleTask(task taskapi.Task, reason string) {
	t.record(Event{Kind: EventScheduleTask, TaskKey: keyOf(task), Reason: reason})
}

func (t *EventRecorder) ScheduleAffectedByFileStart(path string) {
	t.record(Event{Kind: EventScheduleAffectedByFileStart, Path: path})
}

func (t *EventRecorder) ScheduleAffectedByFileEnd(path string) {
	t.record(Event{Kind: EventScheduleAffectedByFileEnd, Path: path})
}

func (t *EventRecorder) ScheduleAffectedByTaskStart(task taskapi.Task) {
	t.record(Event{Kind: EventScheduleAffectedByTaskStart, TaskKey: keyOf(task)})
}

func (t *EventRecorder) ScheduleAffectedByTaskEnd(task taskapi.Task) {
	t.record(Event{Kind: EventScheduleAffectedByTaskEnd, TaskKey: keyOf(task)})
}

// MarshalJSON renders the full log as a JSON array, each element using
// Event's fixed-order marshaler.
func (t *EventRecorder) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Events)
}

var _ Tracker = (*EventRecorder)(nil)
