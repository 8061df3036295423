package preset

import (
	"errors"
	"testing"
)

func TestResolveBuiltins(t *testing.T) {
	lib := NewLibrary()

	tests := []struct {
		name      string
		preset    string
		wantDisks [3]float64
		wantHz    float64
	}{
		{"activation default", DefaultPreset, [3]float64{4, 4, 2}, 1.0},
		{"gamma flash", "gamma_flash", [3]float64{12, 12.7, 3}, 3.0},
		{"deep drift", "deep_drift", [3]float64{1.5, -1.5, 0.5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := lib.Resolve(tt.preset)
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.preset, err)
			}
			if values.DiskSpeed != tt.wantDisks {
				t.Errorf("disk speeds = %v, want %v", values.DiskSpeed, tt.wantDisks)
			}
			if values.StrobeHz != tt.wantHz {
				t.Errorf("strobe hz = %v, want %v", values.StrobeHz, tt.wantHz)
			}
		})
	}
}

func TestResolveUnknown(t *testing.T) {
	lib := NewLibrary()

	_, err := lib.Resolve("nonexistent")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("Resolve unknown = %v, want ErrUnknownPreset", err)
	}
}

func TestMergeCustom(t *testing.T) {
	lib := NewLibrary()

	custom := Preset{
		Name: "evening_wash",
		Values: ControlValues{
			DiskSpeed: [3]float64{2, 2, 2},
			Spotlight: [3]float64{0.5, 0.3, 0.1},
		},
	}
	if err := lib.Merge(custom); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	values, err := lib.Resolve("evening_wash")
	if err != nil {
		t.Fatalf("Resolve after merge: %v", err)
	}
	if values.DiskSpeed != custom.Values.DiskSpeed {
		t.Errorf("disk speeds = %v, want %v", values.DiskSpeed, custom.Values.DiskSpeed)
	}
}

func TestMergeCannotShadowBuiltin(t *testing.T) {
	lib := NewLibrary()

	shadow := Preset{
		Name:   DefaultPreset,
		Values: ControlValues{StrobeHz: 100},
	}
	err := lib.Merge(shadow)
	if !errors.Is(err, ErrBuiltinPreset) {
		t.Fatalf("Merge over builtin = %v, want ErrBuiltinPreset", err)
	}

	// Builtin values must be unchanged.
	values, err := lib.Resolve(DefaultPreset)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if values.StrobeHz != 1.0 {
		t.Errorf("builtin strobe hz = %v, want 1.0", values.StrobeHz)
	}
}

func TestMergeInvalidName(t *testing.T) {
	lib := NewLibrary()

	tests := []struct {
		name       string
		presetName string
	}{
		{"empty", ""},
		{"uppercase", "Evening"},
		{"spaces", "evening wash"},
		{"leading digit", "1wash"},
		{"slash", "a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := lib.Merge(Preset{Name: tt.presetName})
			if !errors.Is(err, ErrInvalidName) {
				t.Errorf("Merge(%q) = %v, want ErrInvalidName", tt.presetName, err)
			}
		})
	}
}

func TestMergeReservedSentinels(t *testing.T) {
	lib := NewLibrary()

	for _, name := range []string{SentinelIdle, SentinelCustom} {
		err := lib.Merge(Preset{Name: name, Values: ControlValues{StrobeHz: 2}})
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("Merge(%q) = %v, want ErrInvalidName", name, err)
		}
		// The sentinel must stay unresolvable.
		if _, err := lib.Resolve(name); !errors.Is(err, ErrUnknownPreset) {
			t.Errorf("Resolve(%q) = %v, want ErrUnknownPreset", name, err)
		}
	}
}

func TestRemove(t *testing.T) {
	lib := NewLibrary()

	if err := lib.Merge(Preset{Name: "temp_preset"}); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if err := lib.Remove("temp_preset"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := lib.Resolve("temp_preset"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("Resolve after remove = %v, want ErrUnknownPreset", err)
	}

	if err := lib.Remove(DefaultPreset); !errors.Is(err, ErrBuiltinPreset) {
		t.Errorf("Remove builtin = %v, want ErrBuiltinPreset", err)
	}
	if err := lib.Remove("never_existed"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("Remove unknown = %v, want ErrUnknownPreset", err)
	}
}

func TestListSorted(t *testing.T) {
	lib := NewLibrary()

	presets := lib.List()
	if len(presets) < 4 {
		t.Fatalf("List returned %d presets, want at least 4 builtins", len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1].Name >= presets[i].Name {
			t.Errorf("List not sorted: %q before %q", presets[i-1].Name, presets[i].Name)
		}
	}
}
