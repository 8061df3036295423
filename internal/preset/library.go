package preset

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
)

// namePattern constrains preset names to lowercase slugs so they are safe to
// embed in MQTT topics and URLs without escaping.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// Library holds the resolvable set of presets: the compiled-in builtins plus
// any custom presets merged in from the repository. Builtins always win on a
// name clash so the activation default can never be shadowed by stored data.
//
// Library is safe for concurrent use.
type Library struct {
	mu      sync.RWMutex
	presets map[string]Preset
}

// NewLibrary returns a library seeded with the builtin presets.
func NewLibrary() *Library {
	lib := &Library{presets: make(map[string]Preset)}
	for _, p := range builtins() {
		lib.presets[p.Name] = p
	}
	return lib
}

// Resolve returns the control values for name.
//
// Returns:
//   - ErrUnknownPreset if no preset with that name exists.
func (l *Library) Resolve(name string) (ControlValues, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.presets[name]
	if !ok {
		return ControlValues{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p.Values, nil
}

// Get returns the full preset record for name.
func (l *Library) Get(name string) (Preset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return p, nil
}

// List returns all presets sorted by name.
func (l *Library) List() []Preset {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Preset, 0, len(l.presets))
	for _, p := range l.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Merge adds a custom preset to the resolvable set. A preset whose name
// collides with a builtin is rejected rather than silently replaced. The
// status sentinels ("idle", "custom") are reserved: storing a resolvable
// preset under either would make the reported preset name ambiguous.
//
// Returns:
//   - ErrInvalidName if the name fails validation or is reserved.
//   - ErrBuiltinPreset if the name belongs to a builtin.
func (l *Library) Merge(p Preset) error {
	if !namePattern.MatchString(p.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, p.Name)
	}
	if p.Name == SentinelIdle || p.Name == SentinelCustom {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, p.Name)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.presets[p.Name]; ok && existing.Builtin {
		return fmt.Errorf("%w: %q", ErrBuiltinPreset, p.Name)
	}
	p.Builtin = false
	l.presets[p.Name] = p
	return nil
}

// Remove drops a custom preset from the resolvable set.
//
// Returns:
//   - ErrBuiltinPreset if the name belongs to a builtin.
//   - ErrUnknownPreset if no preset with that name exists.
func (l *Library) Remove(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.presets[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	if p.Builtin {
		return fmt.Errorf("%w: %q", ErrBuiltinPreset, name)
	}
	delete(l.presets, name)
	return nil
}
