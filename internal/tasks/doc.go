// Package tasks provides a small set of example Task implementations:
// reading a file, transforming a string, and writing a file under a
// declared provision. They are demonstration and test fixtures, not
// part of the engine itself — concrete tasks that exercise the Task
// contract rather than collaborators the engine depends on.
package tasks
