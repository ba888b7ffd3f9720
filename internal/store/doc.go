// Package store implements the dependency graph PIE builds up while a
// session runs: task nodes, file nodes, and the dependency edges recorded
// between them. Rather than validating a graph once as a batch after a
// static definition is fully parsed, this graph grows one edge at a time
// while tasks execute, so cycle detection and topological comparison are
// incremental operations rather than a single upfront pass.
//
// Store is not safe for concurrent use; callers serialize access through
// a session's exclusive ownership of a single execution stack.
package store
