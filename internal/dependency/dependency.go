package dependency

import (
	"fmt"

	"pie/internal/stamp"
	"pie/internal/taskapi"
)

// Kind discriminates the three dependency-edge variants.
type Kind int

const (
	RequireFile Kind = iota
	ProvideFile
	RequireTask
)

func (k Kind) String() string {
	switch k {
	case RequireFile:
		return "RequireFile"
	case ProvideFile:
		return "ProvideFile"
	case RequireTask:
		return "RequireTask"
	default:
		return "Unknown"
	}
}

// Dependency is a directed edge from the task that recorded it to either a
// file or another task, tagged with the stamper used and the stamp
// captured when the edge was recorded.
type Dependency struct {
	Kind Kind

	// Path is set for RequireFile and ProvideFile.
	Path        string
	FileStamper stamp.FileStamper
	FileStamp   stamp.FileStamp

	// Task is set for RequireTask.
	Task          taskapi.Task
	OutputStamper stamp.OutputStamper
	OutputStamp   stamp.OutputStamp
}

// NewRequireFile stamps path and attempts to open it, returning the
// dependency plus the opened file (nil if path is missing or a
// directory). Opening here, rather than only stamping, is what lets
// RequireFile hand the caller a live file handle in the same call that
// records the dependency.
func NewRequireFile(path string, stamper stamp.FileStamper) (Dependency, taskapi.ReadCloser, error) {
	s, err := stamper.Stamp(path)
	if err != nil {
		return Dependency{}, nil, fmt.Errorf("stamping required file %q: %w", path, err)
	}
	f, err := stamp.OpenIfFile(path)
	if err != nil {
		return Dependency{}, nil, fmt.Errorf("opening required file %q: %w", path, err)
	}
	dep := Dependency{Kind: RequireFile, Path: path, FileStamper: stamper, FileStamp: s}
	if f == nil {
		return dep, nil, nil
	}
	return dep, f, nil
}

// NewProvideFile stamps path without opening it — the caller has already
// written the file and is only declaring ownership of it.
func NewProvideFile(path string, stamper stamp.FileStamper) (Dependency, error) {
	s, err := stamper.Stamp(path)
	if err != nil {
		return Dependency{}, fmt.Errorf("stamping provided file %q: %w", path, err)
	}
	return Dependency{Kind: ProvideFile, Path: path, FileStamper: stamper, FileStamp: s}, nil
}

// NewRequireTask stamps a task's current output.
func NewRequireTask(task taskapi.Task, stamper stamp.OutputStamper, output any) Dependency {
	return Dependency{
		Kind:          RequireTask,
		Task:          task,
		OutputStamper: stamper,
		OutputStamp:   stamper.Stamp(output),
	}
}

// TaskConsistencyChecker makes a task consistent (executing it if
// necessary) and returns its now-current output. Both strategy contexts
// supply one of these to IsInconsistent so that the dependency package
// itself never has to know how consistency checking works for a given
// strategy.
type TaskConsistencyChecker func(task taskapi.Task) (any, error)

// InconsistentDependency is returned by IsInconsistent when a dependency
// no longer holds, carrying the freshly observed stamp so callers can log
// or act on what changed.
type InconsistentDependency struct {
	FileStamp   stamp.FileStamp
	OutputValue any
}

// IsInconsistent re-examines the dependency against current reality. For
// file dependencies it re-stamps the path; for task dependencies it makes
// the dependee consistent through checkTask and re-stamps its output.
// Returns (nil, nil) when the dependency still holds, (*InconsistentDependency, nil)
// when it does not, and a non-nil error when stamping fails, when
// checkTask returns an error, or when a RequireTask edge is checked
// without a checkTask. The strategy contexts treat an error as non-fatal
// and as if the dependency were inconsistent (the owning task is
// re-executed).
func (d Dependency) IsInconsistent(checkTask TaskConsistencyChecker, outputEqual stamp.OutputEqualFunc) (*InconsistentDependency, error) {
	switch d.Kind {
	case RequireFile, ProvideFile:
		fresh, err := d.FileStamper.Stamp(d.Path)
		if err != nil {
			return nil, fmt.Errorf("stamping %q: %w", d.Path, err)
		}
		// ModTime is compared with time.Time.Equal rather than ==: a stamp
		// restored from a persisted graph carries a different
		// *time.Location than a freshly taken one for the same instant.
		old := d.FileStamp
		if fresh.Kind == old.Kind && fresh.Present == old.Present &&
			fresh.Hash == old.Hash && fresh.ModTime.Equal(old.ModTime) {
			return nil, nil
		}
		return &InconsistentDependency{FileStamp: fresh}, nil

	case RequireTask:
		if checkTask == nil {
			return nil, fmt.Errorf("dependency: no task-consistency checker supplied for RequireTask edge")
		}
		output, err := checkTask(d.Task)
		if err != nil {
			return nil, err
		}
		fresh := d.OutputStamper.Stamp(output)
		if fresh.Equal(d.OutputStamp, outputEqual) {
			return nil, nil
		}
		return &InconsistentDependency{OutputValue: output}, nil

	default:
		return nil, fmt.Errorf("dependency: unknown kind %v", d.Kind)
	}
}
