// Package dependency defines the tagged dependency-edge variants PIE
// records while a task executes: a require on a file, a provide of a
// file, and a require on another task. Each variant carries the stamper
// used and the stamp captured at the moment the edge was recorded, which
// is what lets IsInconsistent later decide, without re-executing the
// task that recorded the edge, whether the edge still holds (a task
// edge's dependee is itself made consistent first, which may execute it).
package dependency
