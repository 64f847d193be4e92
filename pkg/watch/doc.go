// Package watch re-runs the merge whenever a fragment changes.
//
// A Watcher observes the fragments directory and all of its subdirectories.
// Qualifying events are handed to a single worker, so merges never overlap:
// events that arrive while a merge is running collapse into one trailing run.
package watch
