package engine

import (
	"pie/internal/store"
	"pie/internal/taskapi"
	"pie/internal/tracker"
)

// SessionState is the data a single PIE build pass owns: the store and
// tracker it borrows exclusively from the Pie value, the set of task
// nodes already made consistent this pass, and the accumulated non-fatal
// dependency-check errors. The root pie package's Session type wraps
// this directly rather than duplicating its fields, since §4.7 of the
// design gives Session and its Contexts the same transient state to
// track.
type SessionState struct {
	Store   *store.Store
	Tracker tracker.Tracker

	consistent map[store.NodeID]bool
	errors     []error
}

// NewSessionState returns a SessionState borrowing s and t for one build
// pass.
func NewSessionState(s *store.Store, t tracker.Tracker) *SessionState {
	return &SessionState{Store: s, Tracker: t, consistent: make(map[store.NodeID]bool)}
}

// MarkConsistent records that id need not be reconsidered again this
// session.
func (ss *SessionState) MarkConsistent(id store.NodeID) { ss.consistent[id] = true }

// IsConsistent reports whether id has already been made consistent this
// session.
func (ss *SessionState) IsConsistent(id store.NodeID) bool { return ss.consistent[id] }

// AddError appends a non-fatal dependency-check I/O error to the
// session's error log.
func (ss *SessionState) AddError(err error) { ss.errors = append(ss.errors, err) }

// Errors returns the non-fatal dependency-check errors accumulated this
// session.
func (ss *SessionState) Errors() []error { return ss.errors }

// outputEqual compares two task outputs for stamp purposes: it defers to
// taskapi.OutputEqualer when the output implements it, falling back to
// == otherwise. The == fallback panics at runtime, same as Go's built-in
// equality, if the concrete type is not comparable.
func outputEqual(a, b any) bool {
	if eq, ok := a.(taskapi.OutputEqualer); ok {
		return eq.EqualOutput(b)
	}
	return a == b
}
