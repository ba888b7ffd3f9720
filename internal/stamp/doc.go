// Package stamp computes comparable fingerprints for files and task outputs.
//
// A FileStamper fingerprints a path at a chosen granularity (existence,
// modification time, content hash), and an OutputStamper fingerprints a
// task's output (full equality, or "don't care"). Carrying the stamper
// alongside the stamp lets two dependencies on the same file coexist at
// different precisions, which is what gives the engine early cutoff: a
// task that only checks a file's existence is not invalidated by an
// unrelated content change to that file.
package stamp
