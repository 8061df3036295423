package control

import (
	"fmt"
	"sync"
	"time"

	"github.com/lanternworks/kinesis-core/internal/infrastructure/logging"
	"github.com/lanternworks/kinesis-core/internal/preset"
	"github.com/lanternworks/kinesis-core/internal/script"
)

// StopReason categorises why a session ended.
type StopReason string

const (
	// ReasonStopped covers the physical stop input and external stop
	// requests.
	ReasonStopped StopReason = "stopped"

	// ReasonCutoff is the hard session duration limit.
	ReasonCutoff StopReason = "cutoff"
)

// SessionRecorder receives session lifecycle events from the engine. The
// engine calls it synchronously inside a tick, so implementations must not
// block; persistence layers should hand off to their own goroutine or use
// non-blocking writes.
type SessionRecorder interface {
	SessionStarted(start time.Time, presetName string)
	SessionEnded(end time.Time, reason StopReason, duration time.Duration, presetName string)
}

// nopRecorder is the default when no recorder is wired.
type nopRecorder struct{}

func (nopRecorder) SessionStarted(time.Time, string)                         {}
func (nopRecorder) SessionEnded(time.Time, StopReason, time.Duration, string) {}

// EngineConfig carries the safety constants the engine enforces. Values come
// from validated configuration; the strobe ceiling is re-clamped against the
// hardware maximum inside the strobe controller regardless.
type EngineConfig struct {
	StrobeMaxHz float64
	SessionMax  time.Duration
	FadeOut     time.Duration
	ConsentHold time.Duration
}

// Engine owns the machine state and runs the per-tick evaluation order:
// emergency stop, activity gate, session cutoff, fade, clamp, emit. All
// mutations happen inside Tick or through mutex-guarded setters sampled by
// the next tick; no two components touch the state concurrently.
type Engine struct {
	mu sync.Mutex

	clock    Clock
	log      *logging.Logger
	library  *preset.Library
	sink     OutputSink
	recorder SessionRecorder

	state   MachineState
	strobe  *StrobeController
	session SessionTimer
	gate    *ConsentGate
	estop   EmergencyStop

	// Level-sensitive inputs, sampled once per tick.
	consentLevel bool
	stopLevel    bool

	player *script.Player
}

// NewEngine creates an engine with idle defaults. The sink may be nil
// (output is discarded) and the clock may be nil (wall clock); the library
// is required because the activation default must always resolve.
func NewEngine(cfg EngineConfig, library *preset.Library, sink OutputSink, clock Clock, log *logging.Logger) (*Engine, error) {
	if library == nil {
		return nil, ErrNilLibrary
	}
	if sink == nil {
		sink = NopSink()
	}
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = logging.Default()
	}

	return &Engine{
		clock:    clock,
		log:      log,
		library:  library,
		sink:     sink,
		recorder: nopRecorder{},
		state:    MachineState{PresetName: preset.SentinelIdle},
		strobe:   NewStrobeController(cfg.StrobeMaxHz),
		session:  NewSessionTimer(cfg.SessionMax, cfg.FadeOut),
		gate:     NewConsentGate(cfg.ConsentHold),
	}, nil
}

// SetRecorder wires a session lifecycle recorder. Call before the loop
// starts.
func (e *Engine) SetRecorder(r SessionRecorder) {
	if r == nil {
		r = nopRecorder{}
	}
	e.mu.Lock()
	e.recorder = r
	e.mu.Unlock()
}

// SetSink replaces the output sink. Call before the loop starts; the
// engine holds its lock while emitting, so a swap mid-run is safe but any
// in-flight tick finishes on the old sink.
func (e *Engine) SetSink(sink OutputSink) {
	if sink == nil {
		sink = NopSink()
	}
	e.mu.Lock()
	e.sink = sink
	e.mu.Unlock()
}

// SetConsentSignal sets the level of the physical consent input. Safe to
// call from any goroutine; sampled once per tick.
func (e *Engine) SetConsentSignal(active bool) {
	e.mu.Lock()
	e.consentLevel = active
	e.mu.Unlock()
}

// SetStopSignal sets the level of the physical stop input. Safe to call from
// any goroutine; sampled once per tick.
func (e *Engine) SetStopSignal(active bool) {
	e.mu.Lock()
	e.stopLevel = active
	e.mu.Unlock()
}

// RequestStop latches an external stop. Total: it cannot fail, and it takes
// effect on the next tick ahead of every other computation.
func (e *Engine) RequestStop() {
	e.mu.Lock()
	e.estop.Request()
	e.mu.Unlock()
	e.log.Info("stop requested")
}

// MarkStrobeTimer records a pulse boundary from the hardware timer source.
// Safe to call from any goroutine.
func (e *Engine) MarkStrobeTimer() {
	e.strobe.Mark()
}

// ApplyPreset resolves name and overwrites the preset-controlled fields of
// the machine state. On an unknown name the state is left untouched and the
// previous configuration keeps running.
//
// Returns:
//   - preset.ErrUnknownPreset if the name does not resolve.
func (e *Engine) ApplyPreset(name string) error {
	values, err := e.library.Resolve(name)
	if err != nil {
		return fmt.Errorf("applying preset: %w", err)
	}

	e.mu.Lock()
	e.applyValues(values, name)
	e.player = nil
	e.mu.Unlock()

	e.log.Info("preset applied", "preset", name)
	return nil
}

// LoadScript validates s and starts playback from the current instant. The
// loop advances playback each tick; every scripted frequency passes the
// safety clamp at emit time like any other source.
func (e *Engine) LoadScript(s script.Script) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("loading script: %w", err)
	}

	e.mu.Lock()
	e.player = script.NewPlayer(s, e.clock.Now())
	e.state.PresetName = preset.SentinelCustom
	e.mu.Unlock()

	e.log.Info("script loaded", "script", s.Name, "steps", len(s.Steps), "loop", s.Loop)
	return nil
}

// ClearScript stops script playback, keeping whatever values the script last
// applied.
func (e *Engine) ClearScript() {
	e.mu.Lock()
	e.player = nil
	e.mu.Unlock()
}

// Status returns a read-only snapshot for external reporting.
func (e *Engine) Status() StatusSnapshot {
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	snap := StatusSnapshot{
		Active:         e.state.Active,
		Consented:      e.state.Consented,
		PresetName:     e.state.PresetName,
		DiskSpeed:      e.state.DiskSpeed,
		StrobeHz:       e.state.StrobeHz,
		StrobeMaxHz:    e.strobe.MaxHz(),
		FadeMultiplier: 1,
		HoldProgress:   e.gate.HoldProgress(now),
	}
	if e.player != nil {
		snap.ScriptName = e.player.Name()
	}
	if e.state.Active {
		elapsed := now.Sub(e.state.SessionStart)
		snap.SessionElapsedS = elapsed.Seconds()
		if remaining := e.session.Max() - elapsed; remaining > 0 {
			snap.SessionRemainingS = remaining.Seconds()
		}
		snap.FadeMultiplier = e.session.Fade(elapsed)
	}
	return snap
}

// Tick runs one control cycle at now. Evaluation order is fixed: emergency
// stop first, then the activity gate, then the session cutoff, then fade and
// clamp, then emit. The sink is called exactly once per tick, outside the
// state lock.
func (e *Engine) Tick(now time.Time) {
	e.mu.Lock()
	sink := e.sink

	if e.estop.Evaluate(e.stopLevel) {
		e.deactivate(now, ReasonStopped)
		e.gate.Reset()
		e.mu.Unlock()
		sink.Apply(Output{})
		return
	}

	if !e.state.Active {
		if e.gate.Update(now, e.consentLevel) {
			e.activate(now)
		}
	}

	if !e.state.Active {
		e.mu.Unlock()
		sink.Apply(Output{})
		return
	}

	elapsed := now.Sub(e.state.SessionStart)
	if e.session.Expired(elapsed) {
		e.deactivate(now, ReasonCutoff)
		e.gate.Reset()
		e.mu.Unlock()
		sink.Apply(Output{})
		return
	}

	if e.player != nil {
		values, _ := e.player.At(now)
		e.applyValues(values, preset.SentinelCustom)
	}

	fade := e.session.Fade(elapsed)
	appliedHz := e.strobe.SetFrequency(e.state.StrobeHz)
	pulse := e.strobe.Tick(now)

	out := Output{
		DiskSpeed: [3]float64{
			e.state.DiskSpeed[0],
			-e.state.DiskSpeed[1],
			e.state.DiskSpeed[2],
		},
		StrobeHz:        appliedHz,
		StrobePulse:     pulse,
		StrobeIntensity: clamp01(e.state.StrobeIntensity) * fade,
		Spotlight: [3]float64{
			clamp01(e.state.Spotlight[0]) * fade,
			clamp01(e.state.Spotlight[1]) * fade,
			clamp01(e.state.Spotlight[2]) * fade,
		},
		LEDBrightness: clamp01(e.state.LEDBrightness) * fade,
	}

	e.mu.Unlock()
	sink.Apply(out)
}

// activate completes a consent cycle: marks the state active, stamps the
// session start, and applies the activation default preset. Called with the
// mutex held.
func (e *Engine) activate(now time.Time) {
	values, err := e.library.Resolve(preset.DefaultPreset)
	if err != nil {
		// The library guarantees the default as a builtin; refusing to
		// activate is the safe response if that ever breaks.
		e.log.Error("activation default preset missing", "preset", preset.DefaultPreset, "error", err)
		e.gate.Reset()
		return
	}

	e.state.Active = true
	e.state.Consented = true
	e.state.SessionStart = now
	e.state.LEDBrightness = 1
	e.player = nil
	e.applyValues(values, preset.DefaultPreset)

	e.recorder.SessionStarted(now, preset.DefaultPreset)
	e.log.Info("session activated", "preset", preset.DefaultPreset)
}

// deactivate ends the session if one is active. Stored control values are
// kept (outputs are zero while inactive regardless); the session start is
// cleared and playback stops. Called with the mutex held.
func (e *Engine) deactivate(now time.Time, reason StopReason) {
	if !e.state.Active {
		e.state.Consented = false
		return
	}

	duration := now.Sub(e.state.SessionStart)
	presetName := e.state.PresetName

	e.state.Active = false
	e.state.Consented = false
	e.state.SessionStart = time.Time{}
	e.state.PresetName = preset.SentinelIdle
	e.player = nil
	e.strobe.Reset()

	e.recorder.SessionEnded(now, reason, duration, presetName)
	e.log.Info("session ended", "reason", string(reason), "duration_s", duration.Seconds(), "preset", presetName)
}

// applyValues overwrites the preset-controlled fields. Called with the mutex
// held.
func (e *Engine) applyValues(v preset.ControlValues, name string) {
	e.state.DiskSpeed = v.DiskSpeed
	e.state.StrobeHz = v.StrobeHz
	e.state.StrobeIntensity = v.StrobeIntensity
	e.state.Spotlight = v.Spotlight
	e.state.PresetName = name
}

func clamp01(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
