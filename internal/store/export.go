package store

import (
	"sort"

	"pie/internal/dependency"
	"pie/internal/taskapi"
)

// Export is a snapshot of every node and edge currently in a Store,
// independent of any particular Task implementation: task values are
// carried as opaque taskapi.Task interface values. It is the structural
// half of the optional persistence side capability described in
// SPEC_FULL.md §4.3 — interning maps are deliberately excluded, since
// NewFromExport rebuilds them by replaying GetOrCreate* in the same
// order the original nodes were created.
type Export struct {
	Tasks []TaskExport
	Files []FileExport
}

// TaskExport is one task node: its value, cached output (if any), and
// every finalized outgoing edge it recorded.
type TaskExport struct {
	ID        NodeID
	Task      taskapi.Task
	HasOutput bool
	Output    any
	Edges     []EdgeExport
}

// FileExport is one file node's normalized path.
type FileExport struct {
	ID   NodeID
	Path string
}

// EdgeExport is one outgoing edge, identified by its destination node and
// the recorded Dependency value (which itself carries Kind, stamper, and
// stamp).
type EdgeExport struct {
	Dst NodeID
	Dep dependency.Dependency
}

// Export walks every node in s and returns a self-contained snapshot.
// Pending (unresolved reservation) edges are never present mid-session
// at rest between builds, so only finalized edges are included — the
// same filter GetDependenciesOf applies.
func (s *Store) Export() Export {
	var exp Export
	for i, n := range s.nodes {
		id := NodeID(i)
		switch n.kind {
		case kindTask:
			te := TaskExport{ID: id, Task: n.task, HasOutput: n.hasOutput, Output: n.output}
			for _, e := range s.outgoing[id] {
				if e.pending {
					continue
				}
				te.Edges = append(te.Edges, EdgeExport{Dst: e.dst, Dep: e.dep})
			}
			exp.Tasks = append(exp.Tasks, te)
		case kindFile:
			exp.Files = append(exp.Files, FileExport{ID: id, Path: n.path})
		}
	}
	return exp
}

// NewFromExport rebuilds a Store from a snapshot produced by Export.
// Nodes are recreated in ascending original-ID order so that
// GetOrCreateTaskNode/GetOrCreateFileNode assign the very same NodeIDs,
// which lets the edge and output data reference those IDs directly
// without a remapping pass.
func NewFromExport(exp Export) *Store {
	s := New()

	type seed struct {
		id     NodeID
		isTask bool
	}
	seeds := make([]seed, 0, len(exp.Tasks)+len(exp.Files))
	taskByID := make(map[NodeID]TaskExport, len(exp.Tasks))
	for _, t := range exp.Tasks {
		seeds = append(seeds, seed{id: t.ID, isTask: true})
		taskByID[t.ID] = t
	}
	fileByID := make(map[NodeID]FileExport, len(exp.Files))
	for _, f := range exp.Files {
		seeds = append(seeds, seed{id: f.ID, isTask: false})
		fileByID[f.ID] = f
	}
	sort.Slice(seeds, func(i, j int) bool { return seeds[i].id < seeds[j].id })

	for _, sd := range seeds {
		if sd.isTask {
			s.GetOrCreateTaskNode(taskByID[sd.id].Task)
		} else {
			s.GetOrCreateFileNode(fileByID[sd.id].Path)
		}
	}

	for _, t := range exp.Tasks {
		if t.HasOutput {
			s.SetTaskOutput(t.ID, t.Output)
		}
		for _, e := range t.Edges {
			switch e.Dep.Kind {
			case dependency.RequireFile:
				s.AddFileRequireDependency(t.ID, e.Dst, e.Dep)
			case dependency.ProvideFile:
				s.AddFileProvideDependency(t.ID, e.Dst, e.Dep)
			case dependency.RequireTask:
				// The source export was already acyclic, so reserving
				// these edges in original order can never fail; a
				// failure here means the snapshot was corrupt.
				if err := s.ReserveTaskRequireDependency(t.ID, e.Dst); err != nil {
					panic("store: corrupt export, reserving a previously-valid edge formed a cycle: " + err.Error())
				}
				s.UpdateReservedTaskRequireDependency(t.ID, e.Dst, e.Dep)
			}
		}
	}
	return s
}
