// Package taskapi defines the user-facing contract every PIE task and
// context implements. It exists as a leaf package (importing nothing from
// pie's own packages) so that both the root pie package and
// internal/engine can depend on it without creating an import cycle:
// engine needs Task/Context to implement the strategies, and the root
// package needs them to hand a public API to callers.
package taskapi

import "pie/internal/stamp"

// Output is the value a task produces. It is an alias for any because the
// store must hold heterogeneous task outputs side by side; a concrete
// program narrows it back to a specific type via a type switch inside its
// single task-enum type (see the design note in SPEC_FULL.md).
type Output = any

// Task is the user-supplied computation surface. A real program is
// expected to define exactly one concrete type implementing Task — a
// "task enum": a struct carrying a kind discriminator plus the union of
// fields every variant needs, with Execute dispatching on the
// discriminator. The store interns tasks by the value Key returns, using
// it as a map key, so that value must be comparable with ==; a task whose
// Key returns the receiver must have no slices, maps, or funcs among its
// fields.
type Task interface {
	// Key returns the task's identity. Two tasks that should be treated
	// as the same node must return keys equal under ==. Most
	// implementations simply return the receiver itself.
	Key() any

	// Execute runs the task, observing and declaring dependencies
	// through ctx. It must be pure with respect to ctx: all reads from
	// the outside world that should participate in incremental
	// invalidation must go through RequireFile/RequireTask.
	Execute(ctx Context) (Output, error)
}

// OutputEqualer is an optional interface a Task's Output can implement
// when it is not safely comparable with ==. If absent, stamp comparison
// falls back to ==.
type OutputEqualer interface {
	EqualOutput(other any) bool
}

// Context is the object a task sees while executing. Both the top-down
// and bottom-up strategies implement it; a task cannot tell, nor should
// it care, which strategy is driving its execution.
type Context interface {
	// RequireTask executes dep (if needed) and returns its up-to-date
	// output, recording a dependency edge from the calling task to dep
	// stamped with the default Equals output stamper.
	RequireTask(dep Task) (Output, error)

	// RequireTaskWithStamper is RequireTask with an explicit output
	// stamper, e.g. Inconsequential for early cutoff.
	RequireTaskWithStamper(dep Task, stamper stamp.OutputStamper) (Output, error)

	// RequireFile declares a read-dependency on path using the default
	// Modified file stamper, returning the opened file (nil if the path
	// is missing or a directory).
	RequireFile(path string) (ReadCloser, error)

	// RequireFileWithStamper is RequireFile with an explicit stamper.
	RequireFileWithStamper(path string, stamper stamp.FileStamper) (ReadCloser, error)

	// ProvideFile declares that the calling task owns path for this
	// session, using the default Modified stamper. The caller must have
	// already written the file before calling ProvideFile.
	ProvideFile(path string) error

	// ProvideFileWithStamper is ProvideFile with an explicit stamper.
	ProvideFileWithStamper(path string, stamper stamp.FileStamper) error
}

// ReadCloser is the minimal file handle RequireFile returns; it mirrors
// *os.File's Read/Close surface without forcing callers to import os
// through this leaf package.
type ReadCloser interface {
	Read(p []byte) (int, error)
	Close() error
}
