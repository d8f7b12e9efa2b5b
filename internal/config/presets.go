package config

var Presets = map[string]map[string]*Config{
	"spin-boson": {
		"dephasing": {
			Model: "spin-boson", Dynamics: "lindblad", Method: "rk4",
			Dt: 0.01, Duration: 10.0, Delta: 1.0, Eps: 0.0, Hbar: 1.0,
			Gamma: 1.0, Every: 1,
		},
		"relaxation": {
			Model: "spin-boson", Dynamics: "redfield", Method: "rk4",
			Dt: 0.01, Duration: 10.0, Delta: 1.0, Eps: 0.5, Hbar: 1.0,
			Lambda: 0.25, Cutoff: 2.0, KT: 1.0, Every: 1,
		},
		"tcl2": {
			Model: "spin-boson", Dynamics: "redfield", Method: "rk4",
			Dt: 0.01, Duration: 10.0, Delta: 1.0, Eps: 0.0, Hbar: 1.0,
			Lambda: 0.25, Cutoff: 2.0, KT: 1.0,
			TimeDependent: true, MarkovTime: 5.0, Every: 1,
		},
	},
	"tls": {
		"rabi": {
			Model: "tls", Dynamics: "lindblad", Method: "rk4",
			Dt: 0.01, Duration: 6.3, Delta: 1.0, Eps: 0.0, Hbar: 1.0,
			Every: 1,
		},
	},
}

func GetPreset(model, name string) *Config {
	group, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := group[name]
	if !ok {
		return nil
	}
	out := *cfg
	return &out
}

func ListPresets(model string) []string {
	group, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	return names
}
