package tracker

import (
	"fmt"
	"io"
	"strings"

	"pie/internal/taskapi"
)

// Writing produces an indented, human-readable build log to an
// io.Writer, one line per Start/End callback with nesting depth tracked
// so a task's own require calls show up visibly inside it.
type Writing struct {
	w     io.Writer
	depth int
}

// NewWriting returns a Writing tracker writing to w.
func NewWriting(w io.Writer) *Writing {
	return &Writing{w: w}
}

func (t *Writing) line(format string, args ...any) {
	fmt.Fprintf(t.w, "%s%s\n", strings.Repeat("  ", t.depth), fmt.Sprintf(format, args...))
}

func (t *Writing) enter(format string, args ...any) {
	t.line(format, args...)
	t.depth++
}

func (t *Writing) exit(format string, args ...any) {
	if t.depth > 0 {
		t.depth--
	}
	t.line(format, args...)
}

func (t *Writing) RequireTaskStart(task taskapi.Task) {
	t.enter("require %v", task.Key())
}

func (t *Writing) RequireTaskEnd(task taskapi.Task, output taskapi.Output, err error) {
	if err != nil {
		t.exit("-> %v failed: %v", task.Key(), err)
		return
	}
	t.exit("-> %v = %v", task.Key(), output)
}

func (t *Writing) ExecuteTaskStart(task taskapi.Task) {
	t.enter("execute %v", task.Key())
}

func (t *Writing) ExecuteTaskEnd(task taskapi.Task, output taskapi.Output, err error) {
	if err != nil {
		t.exit("executed %v, error: %v", task.Key(), err)
		return
	}
	t.exit("executed %v, output: %v", task.Key(), output)
}

func (t *Writing) CheckRequireFileStart(task taskapi.Task, path string) {
	t.enter("check require file %s (for %v)", path, task.Key())
}

func (t *Writing) CheckRequireFileEnd(task taskapi.Task, path string, inconsistent bool) {
	t.exit("require file %s: inconsistent=%v", path, inconsistent)
}

func (t *Writing) CheckProvideFileStart(task taskapi.Task, path string) {
	t.enter("check provide file %s (for %v)", path, task.Key())
}

func (t *Writing) CheckProvideFileEnd(task taskapi.Task, path string, inconsistent bool) {
	t.exit("provide file %s: inconsistent=%v", path, inconsistent)
}

func (t *Writing) CheckRequireTaskStart(task taskapi.Task, dependee taskapi.Task) {
	t.enter("check require task %v (for %v)", dependee.Key(), task.Key())
}

func (t *Writing) CheckRequireTaskEnd(task taskapi.Task, dependee taskapi.Task, inconsistent bool) {
	t.exit("require task %v: inconsistent=%v", dependee.Key(), inconsistent)
}

func (t *Writing) UpdateAffectedByStart(paths []string) {
	t.enter("update affected by %v", paths)
}

func (t *Writing) UpdateAffectedByEnd() {
	t.exit("update affected by done")
}

func (t *Writing) ScheduleTask(task taskapi.Task, reason string) {
	t.line("schedule %v (%s)", task.Key(), reason)
}

func (t *Writing) ScheduleAffectedByFileStart(path string) {
	t.enter("schedule affected by file %s", path)
}

func (t *Writing) ScheduleAffectedByFileEnd(path string) {
	t.exit("schedule affected by file %s done", path)
}

func (t *Writing) ScheduleAffectedByTaskStart(task taskapi.Task) {
	t.enter("schedule affected by task %v", task.Key())
}

func (t *Writing) ScheduleAffectedByTaskEnd(task taskapi.Task) {
	t.exit("schedule affected by task %v done", task.Key())
}

var _ Tracker = (*Writing)(nil)
