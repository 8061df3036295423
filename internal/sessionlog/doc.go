// Package sessionlog records the installation's session history: every
// activation and how it ended (operator stop or hard cutoff), with duration
// and preset. Records live in SQLite; the recorder decouples the control
// loop from database latency by persisting on its own goroutine.
package sessionlog
