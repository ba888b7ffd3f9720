package store

import (
	"fmt"
	"strings"
)

// CycleError reports that reserving a task-require edge would close a
// cycle in the task graph. Path lists the task keys on the cycle, from
// the requiring task around to itself.
type CycleError struct {
	Path []any
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, k := range e.Path {
		parts[i] = fmt.Sprintf("%v", k)
	}
	return fmt.Sprintf("store: cyclic task dependency: %s", strings.Join(parts, " -> "))
}

// OverlappingProviderError reports that a file already has a different
// provider task, violating the at-most-one-provider invariant.
type OverlappingProviderError struct {
	Path        string
	Provider    any
	NewProvider any
}

func (e *OverlappingProviderError) Error() string {
	return fmt.Sprintf("store: %q is already provided by %v, cannot also be provided by %v", e.Path, e.Provider, e.NewProvider)
}
