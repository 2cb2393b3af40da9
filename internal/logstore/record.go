// Package logstore persists one child run's captured output as a sequence
// of timestamped JSON-lines records, and serves filtered reads back from
// disk. A run's log must survive past the process that produced it, and
// restarts must not lose or mix lines between runs.
package logstore

import "time"

// Record is one captured output line, serialized as:
//
//	{"timestamp":"2026-02-16T03:00:01.123Z","line":"Server starting"}
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Line      string    `json:"line"`
}
