// Package watch turns filesystem notifications into batches of changed
// paths suitable for Session.UpdateAffectedBy. It wraps fsnotify and
// applies a recursive-add-plus-debounce technique: rather than firing
// once per individual write (which would mean one bottom-up pass per
// byte flushed by an editor), rapid writes to the same or different
// paths within the debounce window collapse into a single batch.
package watch
