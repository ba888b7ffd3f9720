// Package pie implements the Programmatic Incremental Execution engine:
// a dependency graph of dynamically-declared tasks and files, built and
// kept consistent by two interchangeable strategies (top-down
// demand-driven, bottom-up change-driven) described in SPEC_FULL.md.
//
// A program builds a Pie once, then drives any number of sessions
// against it. Exactly one session may be open at a time — Pie serializes
// access with a mutex held for the session's lifetime, since PIE never
// runs two tasks concurrently (§5).
package pie

import (
	"fmt"
	"sync"

	"pie/internal/engine"
	"pie/internal/store"
	"pie/internal/taskapi"
	"pie/internal/tracker"

	"github.com/google/uuid"
)

// Task and Context are re-exported from internal/taskapi so that callers
// outside this module can implement tasks without importing an internal
// package directly.
type (
	Task          = taskapi.Task
	Output        = taskapi.Output
	Context       = taskapi.Context
	ReadCloser    = taskapi.ReadCloser
	OutputEqualer = taskapi.OutputEqualer
)

// Pie is a process-level handle owning the dependency graph store and the
// tracker used to observe it (§2 component 6, §4.7). It is safe to reuse
// across many sessions, but only one session may be active at a time.
type Pie struct {
	mu      sync.Mutex
	store   *store.Store
	tracker tracker.Tracker
}

// Option configures a Pie at construction time.
type Option func(*Pie)

// WithTracker overrides the default no-op tracker.
func WithTracker(t tracker.Tracker) Option {
	return func(p *Pie) { p.tracker = t }
}

// New returns a Pie with a fresh, empty store.
func New(opts ...Option) *Pie {
	p := &Pie{store: store.New(), tracker: tracker.NoOp{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewFromStore returns a Pie wrapping an already-populated store, as
// produced by internal/persist when restoring a prior session's graph.
func NewFromStore(s *store.Store, opts ...Option) *Pie {
	p := &Pie{store: s, tracker: tracker.NoOp{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Store exposes the underlying graph store, primarily so internal/persist
// can serialize it between sessions. Callers must not mutate it outside a
// Session.
func (p *Pie) Store() *store.Store { return p.store }

// NewSession opens an exclusive build pass over p, constructing the
// SessionState both Require and UpdateAffectedBy share (§4.7). The
// returned Session must be closed with Close when the build pass ends,
// releasing the exclusive borrow for the next caller.
func (p *Pie) NewSession() *Session {
	p.mu.Lock()
	return &Session{
		pie:   p,
		id:    uuid.New(),
		state: engine.NewSessionState(p.store, p.tracker),
	}
}

// Session is a single build pass during which each task is made
// consistent at most once (§3 invariant 6, §4.7). It borrows the owning
// Pie's store and tracker exclusively until Close is called.
type Session struct {
	pie    *Pie
	id     uuid.UUID
	state  *engine.SessionState
	closed bool
}

// ID returns the session's identifier, used for log correlation and as
// the SQLite cache key internal/persist keys outputs by.
func (s *Session) ID() uuid.UUID { return s.id }

// Require makes task consistent via the top-down demand-driven strategy
// (§4.5): already-consistent tasks return their cached output, a task
// never executed runs unconditionally, and any other task is re-executed
// only if one of its recorded dependency edges is found stale.
func (s *Session) Require(task Task) (Output, error) {
	s.mustOpen()
	ctx := engine.NewTopDown(s.state)
	return ctx.RequireTask(task)
}

// UpdateAffectedBy propagates the given changed file paths outward
// through the graph via the bottom-up strategy (§4.6): every task whose
// dependency closure touches one of the paths, and whose stamps are
// thereby found inconsistent, is re-executed exactly once.
func (s *Session) UpdateAffectedBy(changedPaths []string) error {
	s.mustOpen()
	ctx := engine.NewBottomUp(s.state)
	return ctx.UpdateAffectedBy(changedPaths)
}

// Errors returns the non-fatal dependency-check I/O errors accumulated
// this session (§4.7, §7 category 2).
func (s *Session) Errors() []error { return s.state.Errors() }

// Close releases the exclusive borrow of the owning Pie's store and
// tracker. A Session must not be used after Close.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.pie.mu.Unlock()
}

func (s *Session) mustOpen() {
	if s.closed {
		panic(fmt.Sprintf("pie: session %s used after Close", s.id))
	}
}
