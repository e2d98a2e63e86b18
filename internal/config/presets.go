package config

import "sort"

// Presets holds named starting points, grouped by view.
var Presets = map[string]map[string]*Config{
	"linear": {
		"spiral_source": linear(10, -8, 10, 10),
		"spiral_sink":   linear(-1, -4, 4, -1),
		"saddle":        linear(1, 0, 0, -1),
		"center":        linear(0, -1, 1, 0),
		"stable_node":   linear(-2, 1, 0, -3),
		"unstable_node": linear(3, 1, 1, 2),
		"degenerate":    linear(1, 1, 0, 1),
	},
	"function": {
		"linear":        function("x", 1, -20, 20, 20),
		"saddle_node":   function("alpha + x^2", -1, -5, 5, 10),
		"transcritical": function("alpha*x - x^2", 1, -5, 5, 10),
		"pitchfork":     function("alpha*x - x^3", 1, -3, 3, 10),
		"complex_pair":  function("x^2 + alpha", 1, -5, 5, 10),
		"cubic":         function("x^3 - 2*x + alpha", 1, -3, 3, 10),
		"logistic":      function("alpha*x*(1 - x/10)", 1, -5, 15, 10),
		"sine":          function("sin(x) - alpha/10", 1, -10, 10, 2),
	},
}

func linear(a11, a12, a21, a22 float64) *Config {
	cfg := DefaultConfig()
	cfg.Linear.A11, cfg.Linear.A12 = a11, a12
	cfg.Linear.A21, cfg.Linear.A22 = a21, a22
	return cfg
}

func function(formula string, alpha, start, end, ylim float64) *Config {
	cfg := DefaultConfig()
	cfg.Function.Formula = formula
	cfg.Function.Alpha = alpha
	cfg.Function.Start, cfg.Function.End = start, end
	cfg.Function.YLim = ylim
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(kind, preset string) *Config {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	cfg, ok := kindPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(kind string) []string {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(kindPresets))
	for name := range kindPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
