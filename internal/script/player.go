package script

import (
	"time"

	"github.com/lanternworks/kinesis-core/internal/preset"
)

// Player resolves which control values a running script commands at a given
// instant. It is a pure function of the script and the start time: the
// control loop calls At once per tick and the player never mutates itself,
// so rewinding a fake clock in tests replays identically.
type Player struct {
	script Script
	start  time.Time
}

// NewPlayer starts playback of a validated script at start.
func NewPlayer(s Script, start time.Time) *Player {
	return &Player{script: s, start: start}
}

// At returns the control values the script commands at now, and whether the
// script has finished. A looping script never finishes. A finished
// non-looping script keeps returning its final step's values so the
// installation holds state rather than snapping to zero.
func (p *Player) At(now time.Time) (preset.ControlValues, bool) {
	elapsed := now.Sub(p.start)
	if elapsed < 0 {
		elapsed = 0
	}

	total := p.script.TotalDuration()
	if p.script.Loop && total > 0 {
		elapsed = elapsed % total
	}

	var offset time.Duration
	for _, step := range p.script.Steps {
		offset += step.Duration()
		if elapsed < offset {
			return step.Values, false
		}
	}

	last := p.script.Steps[len(p.script.Steps)-1]
	return last.Values, true
}

// Name returns the script's name, if any.
func (p *Player) Name() string {
	return p.script.Name
}
