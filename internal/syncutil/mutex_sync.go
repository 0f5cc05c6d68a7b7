//go:build !deadlock

// Package syncutil provides the store lock, optionally backed by a deadlock detector.
// Build with -tags=deadlock to enable detection.
package syncutil

import "sync"

// DeadlockEnabled reports whether the deadlock detector is compiled in.
const DeadlockEnabled = false

// Mutex is a mutual exclusion lock.
type Mutex struct {
	sync.Mutex
}
