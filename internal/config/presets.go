package config

import "sort"

func fptr(v float64) *float64 { return &v }

func preset(knots ...KnotConfig) *Config {
	cfg := DefaultConfig()
	cfg.Knots = knots
	return cfg
}

var Presets = map[string]func() *Config{
	"default": DefaultConfig,
	"empty": func() *Config {
		return preset()
	},
	"binary": func() *Config {
		return preset(
			KnotConfig{ID: "p1", Category: "Proton", X: 0.35, Y: 0.5},
			KnotConfig{ID: "p2", Category: "Proton", X: 0.65, Y: 0.5},
		)
	},
	"atom": func() *Config {
		return preset(
			KnotConfig{ID: "nuc-p", Category: "Proton", X: 0.48, Y: 0.5},
			KnotConfig{ID: "nuc-n", Category: "Neutron", X: 0.52, Y: 0.5},
			KnotConfig{ID: "orb-e", Category: "Electron", X: 0.5, Y: 0.2},
		)
	},
	"cluster": func() *Config {
		cfg := preset(
			KnotConfig{ID: "c1", Category: "Proton", X: 0.2, Y: 0.3},
			KnotConfig{ID: "c2", Category: "Neutron", X: 0.25, Y: 0.35},
			KnotConfig{ID: "c3", Category: "Proton", X: 0.8, Y: 0.7, Mass: fptr(3)},
			KnotConfig{ID: "c4", Category: "Electron", X: 0.5, Y: 0.8, Chirality: "Right-Handed"},
			KnotConfig{ID: "c5", Category: "Neutron", X: 0.6, Y: 0.2, Torsion: fptr(0.5)},
		)
		cfg.Size = 70
		return cfg
	},
	"heavy": func() *Config {
		cfg := preset(KnotConfig{ID: "h1", Category: "Proton", X: 0.5, Y: 0.5, Mass: fptr(4)})
		cfg.Branch = "R-QNT-V"
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	mk, ok := Presets[name]
	if !ok {
		return nil
	}
	return mk()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
