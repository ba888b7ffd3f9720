// Package persist is the optional durability side capability described in
// SPEC_FULL.md §4.3: it is never on the path a Require or UpdateAffectedBy
// call takes, and nothing in internal/engine imports it. It offers two
// independent pieces.
//
// SaveGraph/LoadGraph serialize a *store.Store to and from a YAML
// document, atomically (temp file, fsync, rename, directory fsync).
// Because a task value is an opaque taskapi.Task interface, the document
// format is necessarily tied to a concrete task type; this package only
// knows how to encode and decode graphs built from
// internal/tasks.DemoTask, the task type the rest of this module ships
// and exercises. A caller with its own Task implementation needs its own
// codec in the same shape.
//
// OutputCache is a SQLite-backed record of task outputs keyed by session
// (a google/uuid value) and task key: an embedded schema, database/sql,
// and the mattn/go-sqlite3 driver.
package persist
