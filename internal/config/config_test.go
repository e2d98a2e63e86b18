package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Function.Formula != "x" {
		t.Errorf("expected formula x, got %s", cfg.Function.Formula)
	}
	if cfg.Linear.Values() != [4]float64{10, -8, 10, 10} {
		t.Errorf("unexpected coefficients %v", cfg.Linear.Values())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestSliders(t *testing.T) {
	s := DefaultConfig().Sliders()
	if len(s) != 4 || s[1].Name != "a12" || s[1].Value != -8 || s[1].Bound.Min != -20 {
		t.Errorf("sliders %+v", s)
	}
	if a := DefaultConfig().AlphaSlider(); a.Bound.Step != 0.1 || a.Value != 1 {
		t.Errorf("alpha slider %+v", a)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad formula", func(c *Config) { c.Function.Formula = "x +" }},
		{"empty domain", func(c *Config) { c.Function.End = c.Function.Start }},
		{"zero ylim", func(c *Config) { c.Function.YLim = 0 }},
		{"missing bound", func(c *Config) { delete(c.Linear.Bounds, "a21") }},
		{"zero step", func(c *Config) { c.Function.AlphaBounds.Step = 0 }},
		{"zero timeout", func(c *Config) { c.Solver.Timeout = 0 }},
		{"negative quiver scale", func(c *Config) { c.Linear.QuiverScale = -1 }},
		{"zero display scale", func(c *Config) { c.Display.Scale = 0 }},
		{"negative precision", func(c *Config) { c.Display.Precision = -1 }},
		{"zero root digits", func(c *Config) { c.Display.RootDigits = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("got %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phaselab.yaml")
	cfg := DefaultConfig()
	cfg.Function.Formula = "alpha - x^2"
	cfg.Solver.Timeout = 500 * time.Millisecond

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Function.Formula != "alpha - x^2" || got.Solver.Timeout != 500*time.Millisecond {
		t.Errorf("round trip lost fields: %+v", got)
	}
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "function:\n  formula: x^2 - alpha\nsolver:\n  timeout: 3s\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Function.Formula != "x^2 - alpha" || cfg.Solver.Timeout != 3*time.Second {
		t.Errorf("got %+v", cfg.Function)
	}
	if cfg.Function.Samples != DefaultSamples || cfg.Linear.A11 != DefaultA11 {
		t.Errorf("defaults lost")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("linear", "saddle")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Linear.A22 != -1 {
		t.Errorf("expected a22 -1, got %f", cfg.Linear.A22)
	}

	cfg.Linear.Bounds["a11"] = cfg.Linear.Bounds["a12"]
	cfg.Linear.A22 = 5
	if GetPreset("linear", "saddle").Linear.A22 != -1 {
		t.Error("preset mutated through returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	cfg := GetPreset("linear", "nonexistent")
	if cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}

	cfg = GetPreset("nonexistent", "saddle")
	if cfg != nil {
		t.Error("expected nil for nonexistent kind")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("function")
	if len(presets) == 0 {
		t.Error("expected presets for function")
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}

	presets = ListPresets("nonexistent")
	if presets != nil {
		t.Error("expected nil for nonexistent kind")
	}
}

func TestPresetsValid(t *testing.T) {
	for kind, group := range Presets {
		for name, cfg := range group {
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", kind, name, err)
			}
		}
	}
}
