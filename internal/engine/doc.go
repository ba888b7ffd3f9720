// Package engine implements the two execution strategies PIE offers over
// a store.Store: TopDownContext (recursive demand-driven consistency
// checking) and BottomUpContext (change propagation from a set of
// changed files, draining a dependency-ordered queue). Both embed shared,
// which holds the execution stack and the dependency-recording logic
// (hidden-dependency, overlap, and cycle checks) common to both
// strategies, so that only the "how do I decide a task needs
// re-executing" half differs between the two files.
package engine
