package store

import "pie/internal/taskapi"

// NodeID identifies a task or file node. IDs are never reused within a
// Store's lifetime and are assigned in creation order, which doubles as
// the deterministic tie-break TopologicallyCompare falls back to when two
// nodes are otherwise incomparable.
type NodeID int

type nodeKind uint8

const (
	kindTask nodeKind = iota
	kindFile
)

// taskState tracks where a task node sits in its execution lifecycle:
// a Fresh -> Executing -> HasOutput progression, generalized here to a
// task that can be reset back to Fresh by ResetTask and executed again.
type taskState uint8

const (
	stateFresh taskState = iota
	stateExecuting
	stateHasOutput
)

// node is the single record backing both task and file nodes; which
// fields are meaningful depends on kind. Keeping one slice rather than
// two parallel ones means NodeID is a single flat namespace, which
// simplifies edge storage (every edge's destination is just a NodeID).
type node struct {
	kind nodeKind
	seq  int

	// task fields
	task      taskapi.Task
	state     taskState
	hasOutput bool
	output    any

	// file fields
	path string
}
