package preset

// ControlValues is a complete bundle of control values for the installation's
// actuators. Presets, scripts, and the activation default all produce one of
// these; the control engine copies it into the machine state.
//
// StrobeHz is the requested frequency. It is stored unclamped: the safety
// strobe controller clamps independently at emit time, so a preset asking for
// more than the ceiling simply runs at the ceiling.
type ControlValues struct {
	// DiskSpeed holds signed rotational rates, one per disk.
	// Direction is encoded in the sign.
	DiskSpeed [3]float64 `json:"disk_speed"`

	// StrobeHz is the requested strobe pulse rate.
	StrobeHz float64 `json:"strobe_hz"`

	// StrobeIntensity is the normalised strobe output level in [0,1].
	StrobeIntensity float64 `json:"strobe_intensity"`

	// Spotlight holds normalised RGB channel values in [0,1].
	Spotlight [3]float64 `json:"spotlight"`
}

// Preset is a named, pre-authored bundle of control values.
type Preset struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Values      ControlValues `json:"values"`

	// Builtin marks presets compiled into the binary. Builtin presets
	// cannot be overwritten or deleted through the repository.
	Builtin bool `json:"builtin"`
}

// Well-known preset names.
const (
	// DefaultPreset is applied when consent activates the installation.
	// It must always resolve; the library guarantees it as a builtin.
	DefaultPreset = "first_light"

	// SentinelIdle is the preset name reported while nothing has been applied.
	SentinelIdle = "idle"

	// SentinelCustom is the preset name reported while a script is driving
	// the control values.
	SentinelCustom = "custom"
)

// builtins returns the presets compiled into the binary.
func builtins() []Preset {
	return []Preset{
		{
			Name:        DefaultPreset,
			Description: "Gentle entry state applied on activation",
			Builtin:     true,
			Values: ControlValues{
				DiskSpeed:       [3]float64{4, 4, 2},
				StrobeHz:        1.0,
				StrobeIntensity: 0.3,
				Spotlight:       [3]float64{0.8, 0.6, 0.4},
			},
		},
		{
			Name:        "gamma_flash",
			Description: "Fast counter-rotation with near-ceiling strobe",
			Builtin:     true,
			Values: ControlValues{
				DiskSpeed:       [3]float64{12, 12.7, 3},
				StrobeHz:        3.0,
				StrobeIntensity: 0.9,
				Spotlight:       [3]float64{1, 1, 1},
			},
		},
		{
			Name:        "deep_drift",
			Description: "Slow drift, no strobe, warm wash",
			Builtin:     true,
			Values: ControlValues{
				DiskSpeed:       [3]float64{1.5, -1.5, 0.5},
				StrobeHz:        0,
				StrobeIntensity: 0,
				Spotlight:       [3]float64{0.9, 0.4, 0.1},
			},
		},
		{
			Name:        "counterpoint",
			Description: "Opposed disks with moderate strobe",
			Builtin:     true,
			Values: ControlValues{
				DiskSpeed:       [3]float64{8, -8, 6},
				StrobeHz:        2.0,
				StrobeIntensity: 0.6,
				Spotlight:       [3]float64{0.2, 0.4, 1},
			},
		},
	}
}
