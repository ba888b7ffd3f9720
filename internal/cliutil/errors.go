// Package cliutil holds the small pieces cmd/pie's commands share:
// exit-code conventions and the error type main.go unwraps to pick one.
package cliutil

import "fmt"

const (
	ExitSuccess           = 0
	ExitBuildFailure      = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

// InvocationError carries the exit code and message main.go uses for a
// failed command. Commands return it for invalid invocations (missing
// flag, file not found, bad path), for graph files that cannot be loaded,
// and for build failures. main.go unwraps it via errors.As to choose the
// process exit code.
type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func NewInvocationError(exitCode int, format string, args ...any) *InvocationError {
	return &InvocationError{ExitCode: exitCode, Message: fmt.Sprintf(format, args...)}
}
