// Package scheduler picks the native backend for this host and runs the
// high-level operations on it: install a set of schedules after a conflict
// preflight, remove one, list, clear.
//
// Everything is synchronous. Installing continues past per-schedule failures
// and never rolls back what already succeeded.
package scheduler
