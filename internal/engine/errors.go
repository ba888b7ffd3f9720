package engine

import "fmt"

// HiddenDependencyError reports a task reading or providing a file
// without the transitive task-require edge the graph needs to guarantee
// it observes the right ordering. It is always raised as a panic:
// category 1 of the error model, a programming error in the task graph
// itself, not a runtime condition a caller can recover from.
type HiddenDependencyError struct {
	Consumer any
	Provider any
	Path     string
}

func (e *HiddenDependencyError) Error() string {
	return fmt.Sprintf("hidden dependency: task %v touches file %q provided by task %v without transitively requiring it", e.Consumer, e.Path, e.Provider)
}

// OverlapError reports two tasks both claiming to provide the same file.
type OverlapError struct {
	Path        string
	Provider    any
	NewProvider any
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("overlapping provision: %q is already provided by task %v, task %v cannot also provide it", e.Path, e.Provider, e.NewProvider)
}
