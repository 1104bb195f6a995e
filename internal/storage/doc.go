// Package storage records an audit trail of scheduler operations.
//
// Drivers:
//   - "file": JSON Lines appended to <prefix>.audit.jsonl
//   - "sqlite": a SQLite database file (modernc.org/sqlite, no cgo)
package storage
