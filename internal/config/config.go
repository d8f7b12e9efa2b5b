package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultDelta    = 1.0
	DefaultGamma    = 1.0
	DefaultLambda   = 0.25
	DefaultCutoff   = 2.0
	DefaultKT       = 1.0
)

// Config describes one simulation run for the CLI layer.
type Config struct {
	Model    string  `yaml:"model"`    // "spin-boson"
	Dynamics string  `yaml:"dynamics"` // "lindblad" or "redfield"
	Method   string  `yaml:"method"`   // step method ("rk4", "rk2", "euler")
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`

	// system parameters
	Delta float64 `yaml:"delta"` // tunneling splitting
	Eps   float64 `yaml:"eps"`   // bias
	Hbar  float64 `yaml:"hbar"`

	// lindblad channel
	Gamma float64 `yaml:"gamma"` // dephasing rate

	// redfield bath (Drude-Lorentz)
	Lambda float64 `yaml:"lambda"` // reorganization energy
	Cutoff float64 `yaml:"cutoff"` // Drude decay rate
	KT     float64 `yaml:"kt"`     // thermal energy

	TimeDependent bool    `yaml:"time_dependent"`
	Secular       bool    `yaml:"secular"`
	MarkovTime    float64 `yaml:"markov_time"`

	Every  int    `yaml:"every"`
	ESFile string `yaml:"es_file"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:    "spin-boson",
		Dynamics: "lindblad",
		Method:   "rk4",
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Delta:    DefaultDelta,
		Hbar:     1.0,
		Gamma:    DefaultGamma,
		Lambda:   DefaultLambda,
		Cutoff:   DefaultCutoff,
		KT:       DefaultKT,
		Every:    1,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// TimeGrid returns the uniform grid [0, Duration) with step Dt.
func (c *Config) TimeGrid() []float64 {
	n := int(c.Duration / c.Dt)
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * c.Dt
	}
	return times
}
