package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSampleRate  = 1.0
	DefaultDuration    = 200.0
	DefaultDt          = 0.05
	DefaultNoiseSigma  = 5.0
	DefaultWavelet     = "morlet"
	DefaultFilterOrder = 4
)

type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Sim      SimConfig      `yaml:"sim"`
}

// AnalysisConfig carries the engine's configuration surface: the
// sampling rate plus the optional per-lens overrides.
type AnalysisConfig struct {
	SampleRate   float64 `yaml:"sample_rate"`
	Wavelet      string  `yaml:"wavelet"`
	FilterCutoff float64 `yaml:"filter_cutoff"`
	FilterOrder  int     `yaml:"filter_order"`
	Advanced     bool    `yaml:"advanced"`
}

// SimConfig parameterizes the simulated cellular process used by the
// generate and live commands.
type SimConfig struct {
	Baseline      float64 `yaml:"baseline"`
	ForcingAmp    float64 `yaml:"forcing_amp"`
	ForcingPeriod float64 `yaml:"forcing_period"`
	Relaxation    float64 `yaml:"relaxation"`
	Recovery      float64 `yaml:"recovery"`

	Duration   float64 `yaml:"duration"`
	Dt         float64 `yaml:"dt"`
	NoiseSigma float64 `yaml:"noise_sigma"`
	Jitter     float64 `yaml:"jitter"`

	StressAt        float64 `yaml:"stress_at"`
	StressMagnitude float64 `yaml:"stress_magnitude"`

	Seed int64 `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			SampleRate:  DefaultSampleRate,
			Wavelet:     DefaultWavelet,
			FilterOrder: DefaultFilterOrder,
		},
		Sim: SimConfig{
			Baseline:      100,
			ForcingAmp:    20,
			ForcingPeriod: 24,
			Relaxation:    0.4,
			Recovery:      0.05,
			Duration:      DefaultDuration,
			Dt:            DefaultDt,
			NoiseSigma:    DefaultNoiseSigma,
		},
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
