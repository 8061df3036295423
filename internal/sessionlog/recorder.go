package sessionlog

import (
	"context"
	"sync"
	"time"

	"github.com/lanternworks/kinesis-core/internal/control"
	"github.com/lanternworks/kinesis-core/internal/infrastructure/logging"
)

// writeTimeout bounds each persistence attempt. Session events are rare
// (two per session), so a generous timeout costs nothing.
const writeTimeout = 5 * time.Second

// Telemetry is the optional time-series sink for session events. Satisfied
// by the InfluxDB client; nil disables telemetry.
type Telemetry interface {
	WriteSessionEvent(siteID, event string, durationS float64)
}

// Recorder persists session lifecycle events from the control engine. The
// engine calls it synchronously inside a tick, so all database work happens
// on a separate goroutine; a failed write is logged and dropped rather than
// stalling the loop.
type Recorder struct {
	repo      Repository
	log       *logging.Logger
	telemetry Telemetry
	siteID    string

	mu        sync.Mutex
	currentID string
	startDone chan struct{}
	wg        sync.WaitGroup
}

// NewRecorder creates a recorder writing to repo. telemetry may be nil.
func NewRecorder(repo Repository, telemetry Telemetry, siteID string, log *logging.Logger) *Recorder {
	if log == nil {
		log = logging.Default()
	}
	return &Recorder{
		repo:      repo,
		log:       log,
		telemetry: telemetry,
		siteID:    siteID,
	}
}

// SessionStarted records a new session row. The session ID is generated here,
// before the write goroutine is spawned, so a SessionEnded arriving on the
// very next tick still closes the right row even if the INSERT is in flight.
func (r *Recorder) SessionStarted(start time.Time, presetName string) {
	session := &Session{
		ID:        newSessionID(),
		StartedAt: start,
		Preset:    presetName,
	}

	done := make(chan struct{})

	r.mu.Lock()
	r.currentID = session.ID
	r.startDone = done
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer close(done)

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if err := r.repo.Create(ctx, session); err != nil {
			r.log.Error("failed to record session start", "error", err, "session_id", session.ID)
			return
		}

		if r.telemetry != nil {
			r.telemetry.WriteSessionEvent(r.siteID, "activated", 0)
		}
	}()
}

// SessionEnded closes the current session row with its reason and duration.
// A session can end on the tick after it started, so the end write waits for
// the start INSERT to land before updating the row.
func (r *Recorder) SessionEnded(end time.Time, reason control.StopReason, duration time.Duration, presetName string) {
	r.mu.Lock()
	id := r.currentID
	started := r.startDone
	r.currentID = ""
	r.startDone = nil
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()

		if r.telemetry != nil {
			r.telemetry.WriteSessionEvent(r.siteID, string(reason), duration.Seconds())
		}

		if id == "" {
			// No matching start recorded; nothing to close.
			return
		}

		if started != nil {
			select {
			case <-started:
			case <-time.After(writeTimeout):
				r.log.Error("session start write still pending at end", "session_id", id)
				return
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if err := r.repo.End(ctx, id, end, string(reason), duration.Seconds(), presetName); err != nil {
			r.log.Error("failed to record session end", "error", err, "session_id", id)
		}
	}()
}

// Flush waits for in-flight writes. Called on shutdown.
func (r *Recorder) Flush() {
	r.wg.Wait()
}
