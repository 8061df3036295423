package control

import (
	"context"
	"time"

	"github.com/lanternworks/kinesis-core/internal/infrastructure/logging"
)

// Loop drives the engine at a fixed cadence on a single goroutine. All state
// evaluation happens inside Engine.Tick; the loop only schedules.
type Loop struct {
	engine *Engine
	period time.Duration
	clock  Clock
	log    *logging.Logger
}

// NewLoop creates a loop ticking the engine every period.
func NewLoop(engine *Engine, period time.Duration, log *logging.Logger) *Loop {
	if log == nil {
		log = logging.Default()
	}
	return &Loop{
		engine: engine,
		period: period,
		clock:  engine.clock,
		log:    log,
	}
}

// Run ticks the engine until ctx is cancelled. It runs one immediate tick so
// the sink sees the quiescent state before the first period elapses, then
// follows the ticker. Returns nil on cancellation.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Info("control loop starting", "period", l.period.String())

	ticker := time.NewTicker(l.period)
	defer ticker.Stop()

	l.engine.Tick(l.clock.Now())

	for {
		select {
		case <-ctx.Done():
			l.log.Info("control loop stopping")
			return nil
		case <-ticker.C:
			l.engine.Tick(l.clock.Now())
		}
	}
}
