package tracker

import "pie/internal/taskapi"

// Composite tees every callback to two trackers, letting a build use,
// say, a Writing tracker for human output and an EventRecorder for test
// assertions at the same time.
type Composite struct {
	A, B Tracker
}

// NewComposite returns a Tracker that forwards every callback to both a
// and b, in that order.
func NewComposite(a, b Tracker) Composite { return Composite{A: a, B: b} }

func (c Composite) RequireTaskStart(task taskapi.Task) {
	c.A.RequireTaskStart(task)
	c.B.RequireTaskStart(task)
}

func (c Composite) RequireTaskEnd(task taskapi.Task, output taskapi.Output, err error) {
	c.A.RequireTaskEnd(task, output, err)
	c.B.RequireTaskEnd(task, output, err)
}

func (c Composite) ExecuteTaskStart(task taskapi.Task) {
	c.A.ExecuteTaskStart(task)
	c.B.ExecuteTaskStart(task)
}

func (c Composite) ExecuteTaskEnd(task taskapi.Task, output taskapi.Output, err error) {
	c.A.ExecuteTaskEnd(task, output, err)
	c.B.ExecuteTaskEnd(task, output, err)
}

func (c Composite) CheckRequireFileStart(task taskapi.Task, path string) {
	c.A.CheckRequireFileStart(task, path)
	c.B.CheckRequireFileStart(task, path)
}

func (c Composite) CheckRequireFileEnd(task taskapi.Task, path string, inconsistent bool) {
	c.A.CheckRequireFileEnd(task, path, inconsistent)
	c.B.CheckRequireFileEnd(task, path, inconsistent)
}

func (c Composite) CheckProvideFileStart(task taskapi.Task, path string) {
	c.A.CheckProvideFileStart(task, path)
	c.B.CheckProvideFileStart(task, path)
}

func (c Composite) CheckProvideFileEnd(task taskapi.Task, path string, inconsistent bool) {
	c.A.CheckProvideFileEnd(task, path, inconsistent)
	c.B.CheckProvideFileEnd(task, path, inconsistent)
}

func (c Composite) CheckRequireTaskStart(task taskapi.Task, dependee taskapi.Task) {
	c.A.CheckRequireTaskStart(task, dependee)
	c.B.CheckRequireTaskStart(task, dependee)
}

func (c Composite) CheckRequireTaskEnd(task taskapi.Task, dependee taskapi.Task, inconsistent bool) {
	c.A.CheckRequireTaskEnd(task, dependee, inconsistent)
	c.B.CheckRequireTaskEnd(task, dependee, inconsistent)
}

func (c Composite) UpdateAffectedByStart(paths []string) {
	c.A.UpdateAffectedByStart(paths)
	c.B.UpdateAffectedByStart(paths)
}

func (c Composite) UpdateAffectedByEnd() {
	c.A.UpdateAffectedByEnd()
	c.B.UpdateAffectedByEnd()
}

func (c Composite) ScheduleTask(task taskapi.Task, reason string) {
	c.A.ScheduleTask(task, reason)
	c.B.ScheduleTask(task, reason)
}

func (c Composite) ScheduleAffectedByFileStart(path string) {
	c.A.ScheduleAffectedByFileStart(path)
	c.B.ScheduleAffectedByFileStart(path)
}

func (c Composite) ScheduleAffectedByFileEnd(path string) {
	c.A.ScheduleAffectedByFileEnd(path)
	c.B.ScheduleAffectedByFileEnd(path)
}

func (c Composite) ScheduleAffectedByTaskStart(task taskapi.Task) {
	c.A.ScheduleAffectedByTaskStart(task)
	c.B.ScheduleAffectedByTaskStart(task)
}

func (c Composite) ScheduleAffectedByTaskEnd(task taskapi.Task) {
	c.A.ScheduleAffectedByTaskEnd(task)
	c.B.ScheduleAffectedByTaskEnd(task)
}

var _ Tracker = Composite{}
