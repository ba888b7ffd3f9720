package store

import (
	"path/filepath"

	"pie/internal/dependency"
	"pie/internal/taskapi"
)

// edge is a single outgoing dependency edge recorded against a task node.
// While a task-require edge is reserved but not yet filled in (the
// dependee hasn't finished executing) pending is true and dep is the
// zero value; ContainsTransitiveTaskDependency still walks pending edges,
// since the cycle they could create exists the moment they're reserved.
type edge struct {
	kind    dependency.Kind
	dst     NodeID
	dep     dependency.Dependency
	pending bool
}

// Store holds the full dependency graph for a session: every task and
// file node discovered so far, and the edges recorded between them.
type Store struct {
	nodes []*node

	taskIndex map[any]NodeID
	fileIndex map[string]NodeID

	outgoing map[NodeID][]*edge
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		taskIndex: make(map[any]NodeID),
		fileIndex: make(map[string]NodeID),
		outgoing:  make(map[NodeID][]*edge),
	}
}

// GetOrCreateTaskNode interns task by its Key, creating a Fresh node the
// first time a given key is seen.
func (s *Store) GetOrCreateTaskNode(task taskapi.Task) NodeID {
	key := task.Key()
	if id, ok := s.taskIndex[key]; ok {
		return id
	}
	id := NodeID(len(s.nodes))
	s.nodes = append(s.nodes, &node{kind: kindTask, seq: int(id), task: task, state: stateFresh})
	s.taskIndex[key] = id
	return id
}

// GetOrCreateFileNode interns path, canonicalized to an absolute, cleaned
// form so that "./foo" and "foo" (and, from different working
// directories, different relative spellings of the same file) collapse
// to a single node.
func (s *Store) GetOrCreateFileNode(path string) NodeID {
	norm := normalizePath(path)
	if id, ok := s.fileIndex[norm]; ok {
		return id
	}
	id := NodeID(len(s.nodes))
	s.nodes = append(s.nodes, &node{kind: kindFile, seq: int(id), path: norm})
	s.fileIndex[norm] = id
	return id
}

// LookupFileNode returns the node interned for path, if any file or
// provide/require dependency has ever touched it. It does not create a
// node, unlike GetOrCreateFileNode: callers like BottomUpContext's seed
// step must not manufacture a node for a path nothing in the graph has
// ever referenced.
func (s *Store) LookupFileNode(path string) (NodeID, bool) {
	id, ok := s.fileIndex[normalizePath(path)]
	return id, ok
}

func normalizePath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return filepath.Clean(abs)
	}
	return filepath.Clean(path)
}

// GetTask returns the task value stored at id. Panics if id is not a task
// node: a lookup on the wrong kind of node is a contract violation by the
// caller, not a runtime condition to recover from.
func (s *Store) GetTask(id NodeID) taskapi.Task {
	n := s.node(id)
	if n.kind != kindTask {
		panic("store: GetTask called on a file node")
	}
	return n.task
}

// GetFilePath returns the normalized path stored at id. Panics if id is
// not a file node.
func (s *Store) GetFilePath(id NodeID) string {
	n := s.node(id)
	if n.kind != kindFile {
		panic("store: GetFilePath called on a task node")
	}
	return n.path
}

func (s *Store) node(id NodeID) *node {
	if int(id) < 0 || int(id) >= len(s.nodes) {
		panic("store: invalid node id")
	}
	return s.nodes[id]
}

// TaskHasOutput reports whether id has produced an output since its last
// reset.
func (s *Store) TaskHasOutput(id NodeID) bool {
	return s.node(id).hasOutput
}

// GetTaskOutput returns the output last set by SetTaskOutput. Panics if
// the task has no output.
func (s *Store) GetTaskOutput(id NodeID) any {
	n := s.node(id)
	if !n.hasOutput {
		panic("store: GetTaskOutput called on a task with no output")
	}
	return n.output
}

// SetTaskOutput records output as id's current output and marks it
// HasOutput.
func (s *Store) SetTaskOutput(id NodeID, output any) {
	n := s.node(id)
	n.output = output
	n.hasOutput = true
	n.state = stateHasOutput
}

// SetTaskExecuting marks id as currently executing. BottomUpContext reads
// this through TaskIsExecuting to skip tasks that are mid-execution when
// it schedules affected tasks.
func (s *Store) SetTaskExecuting(id NodeID) {
	s.node(id).state = stateExecuting
}

// TaskIsExecuting reports whether id is mid-execution.
func (s *Store) TaskIsExecuting(id NodeID) bool {
	return s.node(id).state == stateExecuting
}

// AddFileRequireDependency records that task src reads file dst via dep.
func (s *Store) AddFileRequireDependency(src, dst NodeID, dep dependency.Dependency) {
	s.outgoing[src] = append(s.outgoing[src], &edge{kind: dependency.RequireFile, dst: dst, dep: dep})
}

// AddFileProvideDependency records that task src owns file dst via dep.
// The at-most-one-provider invariant is enforced by the caller (engine's
// shared context, which can report the conflict alongside the requiring
// task's stack); Store only records the edge and exposes
// GetTaskProvidingFile so a caller can check first.
func (s *Store) AddFileProvideDependency(src, dst NodeID, dep dependency.Dependency) {
	s.outgoing[src] = append(s.outgoing[src], &edge{kind: dependency.ProvideFile, dst: dst, dep: dep})
}

// ReserveTaskRequireDependency records that task src is about to require
// task dst, before dst's output is known. This is what lets cycle
// detection happen before the dependee ever runs: a task graph reserved
// in a cycle is rejected immediately instead of only once it unwinds.
// Returns a *CycleError if dst already (transitively, including other
// pending reservations) requires src.
func (s *Store) ReserveTaskRequireDependency(src, dst NodeID) error {
	if src == dst {
		return &CycleError{Path: []any{s.nodeKey(src)}}
	}
	if path, ok := s.transitivePath(dst, src); ok {
		full := append([]any{s.nodeKey(src), s.nodeKey(dst)}, path...)
		return &CycleError{Path: full}
	}
	s.outgoing[src] = append(s.outgoing[src], &edge{kind: dependency.RequireTask, dst: dst, pending: true})
	return nil
}

// UpdateReservedTaskRequireDependency fills in the stamp captured for a
// previously reserved src -> dst task-require edge. Panics if no matching
// reservation exists: that is a caller bug, not a runtime condition to
// recover from.
func (s *Store) UpdateReservedTaskRequireDependency(src, dst NodeID, dep dependency.Dependency) {
	for _, e := range s.outgoing[src] {
		if e.kind == dependency.RequireTask && e.dst == dst && e.pending {
			e.dep = dep
			e.pending = false
			return
		}
	}
	panic("store: no reservation to update for this task-require edge")
}

// ResetTask drops id's output and every outgoing edge it recorded,
// returning it to Fresh. Incoming edges (other tasks requiring id, or
// requiring/providing files id itself requires) are left untouched:
// those requirers still exist and must be re-checked for consistency by
// the caller, which is exactly the propagation BottomUpContext performs.
func (s *Store) ResetTask(id NodeID) {
	n := s.node(id)
	n.hasOutput = false
	n.output = nil
	n.state = stateFresh
	delete(s.outgoing, id)
}

// GetDependenciesOf returns the finalized (non-pending) dependency edges
// recorded by src, in the order they were recorded.
func (s *Store) GetDependenciesOf(src NodeID) []dependency.Dependency {
	var out []dependency.Dependency
	for _, e := range s.outgoing[src] {
		if e.pending {
			continue
		}
		out = append(out, e.dep)
	}
	return out
}

// GetTasksRequiring returns every task that directly requires task dst,
// in creation order.
func (s *Store) GetTasksRequiring(dst NodeID) []NodeID {
	return s.scanRequirers(dst, dependency.RequireTask)
}

// GetTasksRequiringFile returns every task that directly requires file
// dst, in creation order.
func (s *Store) GetTasksRequiringFile(dst NodeID) []NodeID {
	return s.scanRequirers(dst, dependency.RequireFile)
}

// GetTaskProvidingFile returns the task that provides file dst, if any.
func (s *Store) GetTaskProvidingFile(dst NodeID) (NodeID, bool) {
	providers := s.scanRequirers(dst, dependency.ProvideFile)
	if len(providers) == 0 {
		return 0, false
	}
	return providers[0], true
}

// GetProvidedFiles returns the files task src provides.
func (s *Store) GetProvidedFiles(src NodeID) []NodeID {
	var out []NodeID
	for _, e := range s.outgoing[src] {
		if !e.pending && e.kind == dependency.ProvideFile {
			out = append(out, e.dst)
		}
	}
	return out
}

// GetTasksRequiringOrProvidingFile returns every task with an edge
// (require, and provide when includeProviders is set) to file dst.
func (s *Store) GetTasksRequiringOrProvidingFile(dst NodeID, includeProviders bool) []NodeID {
	out := s.scanRequirers(dst, dependency.RequireFile)
	if includeProviders {
		out = append(out, s.scanRequirers(dst, dependency.ProvideFile)...)
	}
	return out
}

func (s *Store) scanRequirers(dst NodeID, kind dependency.Kind) []NodeID {
	var out []NodeID
	for id := range s.nodes {
		src := NodeID(id)
		for _, e := range s.outgoing[src] {
			if !e.pending && e.kind == kind && e.dst == dst {
				out = append(out, src)
				break
			}
		}
	}
	return out
}

// ContainsTransitiveTaskDependency reports whether src transitively
// requires dst via task-require edges (finalized or still pending).
// Pending edges count because the cycle they would close is real the
// moment they are reserved, not only once they are filled in.
func (s *Store) ContainsTransitiveTaskDependency(src, dst NodeID) bool {
	_, ok := s.transitivePath(src, dst)
	return ok
}

// transitivePath runs a depth-first search over task-require edges from
// src looking for dst, returning the chain of task keys from src to dst
// (exclusive of src itself) when found.
func (s *Store) transitivePath(src, dst NodeID) ([]any, bool) {
	visited := make(map[NodeID]bool)
	var dfs func(cur NodeID) ([]any, bool)
	dfs = func(cur NodeID) ([]any, bool) {
		for _, e := range s.outgoing[cur] {
			if e.kind != dependency.RequireTask {
				continue
			}
			if visited[e.dst] {
				continue
			}
			visited[e.dst] = true
			if e.dst == dst {
				return []any{s.nodeKey(e.dst)}, true
			}
			if path, ok := dfs(e.dst); ok {
				return append([]any{s.nodeKey(e.dst)}, path...), true
			}
		}
		return nil, false
	}
	return dfs(src)
}

// TopologicallyCompare orders a and b consistently with the task-require
// partial order: if a transitively requires b, b must run first and
// compares less than a. Nodes with no dependency relation at all (in
// either direction) fall back to creation order. The two rules together
// are not transitive over three or more nodes (a requires c while
// creation order runs a, b, c gives c < a, a < b, b < c), so picking a
// minimum over a set by pairwise comparison alone can select a node
// whose prerequisite is in that set.
func (s *Store) TopologicallyCompare(a, b NodeID) int {
	if a == b {
		return 0
	}
	if s.ContainsTransitiveTaskDependency(a, b) {
		return 1
	}
	if s.ContainsTransitiveTaskDependency(b, a) {
		return -1
	}
	switch {
	case s.node(a).seq < s.node(b).seq:
		return -1
	case s.node(a).seq > s.node(b).seq:
		return 1
	default:
		return 0
	}
}

func (s *Store) nodeKey(id NodeID) any {
	n := s.node(id)
	if n.kind == kindTask {
		return n.task.Key()
	}
	return n.path
}
