package persist

import (
	"fmt"
	"os"
	"time"

	"pie/internal/dependency"
	"pie/internal/stamp"
	"pie/internal/store"
	"pie/internal/taskapi"
	"pie/internal/tasks"

	"gopkg.in/yaml.v3"
)

// graphDocument is the on-disk shape of a DemoTask-based store snapshot.
type graphDocument struct {
	Version int       `yaml:"version"`
	Tasks   []taskDoc `yaml:"tasks"`
	Files   []fileDoc `yaml:"files"`
}

type taskDoc struct {
	ID        int          `yaml:"id"`
	Kind      string       `yaml:"kind"`
	Path      string       `yaml:"path,omitempty"`
	Stamper   string       `yaml:"stamper,omitempty"`
	InputID   *int         `yaml:"input_id,omitempty"`
	HasOutput bool         `yaml:"has_output"`
	Output    tasks.Result `yaml:"output,omitempty"`
	Edges     []edgeDoc    `yaml:"edges,omitempty"`
}

type fileDoc struct {
	ID   int    `yaml:"id"`
	Path string `yaml:"path"`
}

// edgeDoc carries every field of a dependency.Dependency that matters for
// the edge's Kind, flattened so the YAML stays readable instead of
// nesting a generic "any" value.
type edgeDoc struct {
	Kind  string `yaml:"kind"`
	DstID int    `yaml:"dst_id"`

	Path             string    `yaml:"path,omitempty"`
	FileStamper      string    `yaml:"file_stamper,omitempty"`
	FileStampKind    string    `yaml:"file_stamp_kind,omitempty"`
	FileStampPresent bool      `yaml:"file_stamp_present,omitempty"`
	FileStampModTime time.Time `yaml:"file_stamp_mod_time,omitempty"`
	FileStampHash    string    `yaml:"file_stamp_hash,omitempty"`

	OutputStamper    string       `yaml:"output_stamper,omitempty"`
	OutputStampKind  string       `yaml:"output_stamp_kind,omitempty"`
	OutputStampValue tasks.Result `yaml:"output_stamp_value,omitempty"`
}

// SaveGraph encodes s's current graph as YAML and writes it atomically to
// path. Every task node in s must hold a tasks.DemoTask value (and every
// cached output a tasks.Result), or SaveGraph fails rather than silently
// dropping state it cannot represent.
func SaveGraph(path string, s *store.Store) error {
	doc, err := encodeGraph(s)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("persist: marshal graph: %w", err)
	}
	if err := writeFileAtomicDurable(path, data, 0o644); err != nil {
		return fmt.Errorf("persist: write graph %s: %w", path, err)
	}
	return nil
}

// LoadGraph reads the YAML document written by SaveGraph and rebuilds an
// equivalent *store.Store.
func LoadGraph(path string) (*store.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persist: read graph %s: %w", path, err)
	}
	var doc graphDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("persist: parse graph %s: %w", path, err)
	}
	return decodeGraph(doc)
}

func encodeGraph(s *store.Store) (graphDocument, error) {
	exp := s.Export()

	taskIDs := make(map[tasks.DemoTask]int, len(exp.Tasks))
	for _, t := range exp.Tasks {
		dt, ok := t.Task.(tasks.DemoTask)
		if !ok {
			return graphDocument{}, fmt.Errorf("persist: task %d is not a tasks.DemoTask, only DemoTask graphs can be saved", t.ID)
		}
		taskIDs[dt] = int(t.ID)
	}

	doc := graphDocument{Version: 1}
	for _, f := range exp.Files {
		doc.Files = append(doc.Files, fileDoc{ID: int(f.ID), Path: f.Path})
	}

	for _, t := range exp.Tasks {
		dt := t.Task.(tasks.DemoTask)
		td := taskDoc{
			ID:        int(t.ID),
			Kind:      dt.KindName(),
			Path:      dt.Path,
			Stamper:   string(dt.Stamper.Kind()),
			HasOutput: t.HasOutput,
		}
		if t.HasOutput {
			res, ok := t.Output.(tasks.Result)
			if !ok {
				return graphDocument{}, fmt.Errorf("persist: task %d output is not a tasks.Result", t.ID)
			}
			td.Output = res
		}
		if dt.HasInput() {
			input, ok := dt.Input.(tasks.DemoTask)
			if !ok {
				return graphDocument{}, fmt.Errorf("persist: task %d input is not a tasks.DemoTask", t.ID)
			}
			id, ok := taskIDs[input]
			if !ok {
				return graphDocument{}, fmt.Errorf("persist: task %d references an input task never interned in the store", t.ID)
			}
			td.InputID = &id
		}

		for _, e := range t.Edges {
			ed := edgeDoc{DstID: int(e.Dst)}
			switch e.Dep.Kind {
			case dependency.RequireFile, dependency.ProvideFile:
				if e.Dep.Kind == dependency.RequireFile {
					ed.Kind = "RequireFile"
				} else {
					ed.Kind = "ProvideFile"
				}
				ed.Path = e.Dep.Path
				ed.FileStamper = string(e.Dep.FileStamper.Kind())
				ed.FileStampKind = string(e.Dep.FileStamp.Kind)
				ed.FileStampPresent = e.Dep.FileStamp.Present
				ed.FileStampModTime = e.Dep.FileStamp.ModTime
				ed.FileStampHash = e.Dep.FileStamp.Hash
			case dependency.RequireTask:
				ed.Kind = "RequireTask"
				ed.OutputStamper = string(e.Dep.OutputStamper.Kind())
				ed.OutputStampKind = string(e.Dep.OutputStamp.Kind)
				if v, ok := e.Dep.OutputStamp.Value.(tasks.Result); ok {
					ed.OutputStampValue = v
				}
			default:
				return graphDocument{}, fmt.Errorf("persist: task %d has an edge of unknown kind %v", t.ID, e.Dep.Kind)
			}
			td.Edges = append(td.Edges, ed)
		}
		doc.Tasks = append(doc.Tasks, td)
	}
	return doc, nil
}

func decodeGraph(doc graphDocument) (*store.Store, error) {
	byID := make(map[int]taskDoc, len(doc.Tasks))
	for _, td := range doc.Tasks {
		byID[td.ID] = td
	}

	built := make(map[int]tasks.DemoTask, len(doc.Tasks))
	var build func(id int) (tasks.DemoTask, error)
	build = func(id int) (tasks.DemoTask, error) {
		if dt, ok := built[id]; ok {
			return dt, nil
		}
		td, ok := byID[id]
		if !ok {
			return tasks.DemoTask{}, fmt.Errorf("persist: dangling task id %d", id)
		}
		var input taskapi.Task
		if td.InputID != nil {
			in, err := build(*td.InputID)
			if err != nil {
				return tasks.DemoTask{}, err
			}
			input = in
		}
		stamper, err := stamp.FileStamperByKind(stamp.FileStamperKind(td.Stamper))
		if err != nil {
			return tasks.DemoTask{}, err
		}
		dt2, err := tasks.FromKindName(td.Kind, td.Path, stamper, input)
		if err != nil {
			return tasks.DemoTask{}, err
		}
		built[id] = dt2
		return dt2, nil
	}

	var exp store.Export
	for _, f := range doc.Files {
		exp.Files = append(exp.Files, store.FileExport{ID: store.NodeID(f.ID), Path: f.Path})
	}

	for _, td := range doc.Tasks {
		dt, err := build(td.ID)
		if err != nil {
			return nil, err
		}
		te := store.TaskExport{ID: store.NodeID(td.ID), Task: dt, HasOutput: td.HasOutput}
		if td.HasOutput {
			te.Output = td.Output
		}
		for _, ed := range td.Edges {
			dep := dependency.Dependency{Path: ed.Path}
			switch ed.Kind {
			case "RequireFile":
				dep.Kind = dependency.RequireFile
			case "ProvideFile":
				dep.Kind = dependency.ProvideFile
			case "RequireTask":
				dep.Kind = dependency.RequireTask
			default:
				return nil, fmt.Errorf("persist: task %d has an edge of unknown kind %q", td.ID, ed.Kind)
			}
			if dep.Kind == dependency.RequireFile || dep.Kind == dependency.ProvideFile {
				fileStamper, err := stamp.FileStamperByKind(stamp.FileStamperKind(ed.FileStamper))
				if err != nil {
					return nil, err
				}
				dep.FileStamper = fileStamper
				dep.FileStamp = stamp.FileStamp{
					Kind:    stamp.FileStamperKind(ed.FileStampKind),
					Present: ed.FileStampPresent,
					ModTime: ed.FileStampModTime,
					Hash:    ed.FileStampHash,
				}
			} else {
				outputStamper, err := stamp.OutputStamperByKind(stamp.OutputStamperKind(ed.OutputStamper))
				if err != nil {
					return nil, err
				}
				dep.OutputStamper = outputStamper
				dep.OutputStamp = stamp.OutputStamp{Kind: stamp.OutputStamperKind(ed.OutputStampKind), Value: ed.OutputStampValue}
				dependee, err := build(ed.DstID)
				if err != nil {
					return nil, err
				}
				dep.Task = dependee
			}
			te.Edges = append(te.Edges, store.EdgeExport{Dst: store.NodeID(ed.DstID), Dep: dep})
		}
		exp.Tasks = append(exp.Tasks, te)
	}

	return store.NewFromExport(exp), nil
}
