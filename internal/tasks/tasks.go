package tasks

import (
	"fmt"
	"io"
	"os"
	"strings"

	"pie/internal/stamp"
	"pie/internal/taskapi"
)

// Result is the Output every task in this package produces: either a
// string Value, or an Err message describing why the task failed. This
// is the sum-type-shaped Output the Task contract (§6) calls for —
// task-produced failures are an ordinary value the engine stamps and
// caches like any other output (§7 category 3), never a panic.
type Result struct {
	Value string
	Err   string
}

// Ok wraps a successful value.
func Ok(value string) Result { return Result{Value: value} }

// Failed wraps err as a Result, or Ok("") if err is nil.
func Failed(err error) Result {
	if err == nil {
		return Result{}
	}
	return Result{Err: err.Error()}
}

// Error returns the underlying error, or nil if the result succeeded.
func (r Result) Error() error {
	if r.Err == "" {
		return nil
	}
	return fmt.Errorf("%s", r.Err)
}

// kind discriminates the variants of DemoTask, the single task-enum type
// this package defines per the "dynamic dispatch over task types"
// design note (SPEC_FULL.md §9): one concrete Go type whose Execute
// switches on a discriminator, rather than many small types erased
// behind the Task interface.
type kind int

const (
	kindReadFile kind = iota
	kindToLower
	kindWriteFile
)

// DemoTask is the example task-enum used by the end-to-end scenarios of
// spec.md §8. Every field must stay comparable with == (slices, maps,
// and funcs are forbidden) because DemoTask values are used as store map
// keys via Key().
type DemoTask struct {
	kind    kind
	Path    string
	Stamper stamp.FileStamper
	Input   taskapi.Task
}

// ReadFileTask reads the full contents of path, recording a require-file
// dependency stamped with stamper (default stamp.Modified()). Scenario 1
// of spec.md §8.
func ReadFileTask(path string, stamper stamp.FileStamper) DemoTask {
	return DemoTask{kind: kindReadFile, Path: path, Stamper: stamper}
}

// ToLowerTask lower-cases the string produced by input. Scenario 2 of
// spec.md §8.
func ToLowerTask(input taskapi.Task) DemoTask {
	return DemoTask{kind: kindToLower, Input: input}
}

// WriteFileTask writes the string produced by input to path and declares
// provision of path, stamped with stamper (default stamp.Modified()).
// Scenario 3 of spec.md §8.
func WriteFileTask(input taskapi.Task, path string, stamper stamp.FileStamper) DemoTask {
	return DemoTask{kind: kindWriteFile, Input: input, Path: path, Stamper: stamper}
}

// Key returns the receiver itself: DemoTask is comparable, so its own
// value is its identity.
func (t DemoTask) Key() any { return t }

// KindName returns a stable string identifier for t's operation. Paired
// with FromKindName, this is what lets internal/persist encode and decode
// a graph of DemoTask values to and from a YAML document without knowing
// about the unexported kind field.
func (t DemoTask) KindName() string {
	switch t.kind {
	case kindReadFile:
		return "read_file"
	case kindToLower:
		return "to_lower"
	case kindWriteFile:
		return "write_file"
	default:
		return "unknown"
	}
}

// HasInput reports whether t carries an upstream task (to_lower and
// write_file do; read_file does not), so a persistence encoder knows
// whether to recurse into t.Input.
func (t DemoTask) HasInput() bool { return t.kind == kindToLower || t.kind == kindWriteFile }

// FromKindName reconstructs a DemoTask of the named kind from its parts.
// input is ignored by "read_file" and path/stamper are ignored by
// "to_lower". Returns an error for any name KindName never produces.
func FromKindName(name, path string, stamper stamp.FileStamper, input taskapi.Task) (DemoTask, error) {
	switch name {
	case "read_file":
		return ReadFileTask(path, stamper), nil
	case "to_lower":
		return ToLowerTask(input), nil
	case "write_file":
		return WriteFileTask(input, path, stamper), nil
	default:
		return DemoTask{}, fmt.Errorf("tasks: unknown kind name %q", name)
	}
}

// Execute dispatches on t.kind. Every branch reports failure inside the
// returned Result rather than as Execute's error return, since task
// failure is a normal output value (§7 category 3), and that includes
// errors from RequireFileWithStamper and ProvideFileWithStamper. Execute's
// own error return carries only an error returned by RequireTask on the
// input task, or an unknown kind.
func (t DemoTask) Execute(ctx taskapi.Context) (taskapi.Output, error) {
	switch t.kind {
	case kindReadFile:
		return t.executeReadFile(ctx)
	case kindToLower:
		return t.executeToLower(ctx)
	case kindWriteFile:
		return t.executeWriteFile(ctx)
	default:
		return Result{}, fmt.Errorf("tasks: unknown DemoTask kind %d", t.kind)
	}
}

func (t DemoTask) executeReadFile(ctx taskapi.Context) (taskapi.Output, error) {
	stamper := t.Stamper
	f, err := ctx.RequireFileWithStamper(t.Path, stamper)
	if err != nil {
		return Ok("").withErr(err), nil
	}
	if f == nil {
		return Failed(fmt.Errorf("read %s: not found", t.Path)), nil
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Failed(fmt.Errorf("read %s: %w", t.Path, err)), nil
	}
	return Ok(string(data)), nil
}

func (t DemoTask) executeToLower(ctx taskapi.Context) (taskapi.Output, error) {
	out, err := ctx.RequireTask(t.Input)
	if err != nil {
		return Result{}, err
	}
	in := out.(Result)
	if in.Err != "" {
		return in, nil
	}
	return Ok(strings.ToLower(in.Value)), nil
}

func (t DemoTask) executeWriteFile(ctx taskapi.Context) (taskapi.Output, error) {
	out, err := ctx.RequireTask(t.Input)
	if err != nil {
		return Result{}, err
	}
	in := out.(Result)
	if in.Err != "" {
		return in, nil
	}

	if err := os.WriteFile(t.Path, []byte(in.Value), 0o644); err != nil {
		return Failed(fmt.Errorf("write %s: %w", t.Path, err)), nil
	}
	if err := ctx.ProvideFileWithStamper(t.Path, t.Stamper); err != nil {
		return Failed(fmt.Errorf("provide %s: %w", t.Path, err)), nil
	}
	return Ok(in.Value), nil
}

// withErr folds a RequireFileWithStamper error into the Result, used when
// the dependency could not even be recorded (a genuine I/O failure, not
// merely "file missing").
func (r Result) withErr(err error) Result {
	r.Err = err.Error()
	return r
}

var _ taskapi.Task = DemoTask{}
