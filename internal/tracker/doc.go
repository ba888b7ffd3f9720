// Package tracker provides the Tracker contract and five ready-made
// implementations: NoOp (discard), Writing (indented human-readable
// log), EventRecorder (replayable log for test assertions), Composite
// (tee to two trackers), and Trace (a canonical, hashable record of
// consistency decisions). None of them influence execution;
// the engine calls Tracker methods purely as observation hooks.
package tracker
