package tracker

import "pie/internal/taskapi"

// NoOp discards every callback. It is the default tracker for a Pie
// built without an explicit one, keeping the hot path free of any
// observation overhead.
type NoOp struct{}

func (NoOp) RequireTaskStart(taskapi.Task)                          {}
func (NoOp) RequireTaskEnd(taskapi.Task, taskapi.Output, error)      {}
func (NoOp) ExecuteTaskStart(taskapi.Task)                          {}
func (NoOp) ExecuteTaskEnd(taskapi.Task, taskapi.Output, error)      {}
func (NoOp) CheckRequireFileStart(taskapi.Task, string)              {}
func (NoOp) CheckRequireFileEnd(taskapi.Task, string, bool)          {}
func (NoOp) CheckProvideFileStart(taskapi.Task, string)              {}
func (NoOp) CheckProvideFileEnd(taskapi.Task, string, bool)          {}
func (NoOp) CheckRequireTaskStart(taskapi.Task, taskapi.Task)        {}
func (NoOp) CheckRequireTaskEnd(taskapi.Task, taskapi.Task, bool)    {}
func (NoOp) UpdateAffectedByStart([]string)                         {}
func (NoOp) UpdateAffectedByEnd()                                    {}
func (NoOp) ScheduleTask(taskapi.Task, string)                       {}
func (NoOp) ScheduleAffectedByFileStart(string)                      {}
func (NoOp) ScheduleAffectedByFileEnd(string)                        {}
func (NoOp) ScheduleAffectedByTaskStart(taskapi.Task)                {}
func (NoOp) ScheduleAffectedByTaskEnd(taskapi.Task)                  {}

var _ Tracker = NoOp{}
