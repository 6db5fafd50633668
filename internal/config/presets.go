package config

// Presets are ready-made telemetry scenarios for the generate and live
// commands.
var Presets = map[string]*Config{
	"circadian": {
		Analysis: AnalysisConfig{SampleRate: 1, Wavelet: DefaultWavelet, FilterOrder: DefaultFilterOrder},
		Sim: SimConfig{
			Baseline: 100, ForcingAmp: 20, ForcingPeriod: 24,
			Relaxation: 0.4, Recovery: 0.05,
			Duration: 200, Dt: 0.05, NoiseSigma: 5,
		},
	},
	"stressed": {
		Analysis: AnalysisConfig{SampleRate: 1, Wavelet: DefaultWavelet, FilterOrder: DefaultFilterOrder},
		Sim: SimConfig{
			Baseline: 100, ForcingAmp: 20, ForcingPeriod: 24,
			Relaxation: 0.4, Recovery: 0.05,
			Duration: 200, Dt: 0.05, NoiseSigma: 5,
			StressAt: 120, StressMagnitude: 60,
		},
	},
	"irregular": {
		Analysis: AnalysisConfig{SampleRate: 1, Wavelet: DefaultWavelet, FilterOrder: DefaultFilterOrder},
		Sim: SimConfig{
			Baseline: 100, ForcingAmp: 20, ForcingPeriod: 24,
			Relaxation: 0.4, Recovery: 0.05,
			Duration: 200, Dt: 0.05, NoiseSigma: 3, Jitter: 0.3,
		},
	},
	"quiet": {
		Analysis: AnalysisConfig{SampleRate: 1, Wavelet: DefaultWavelet, FilterOrder: DefaultFilterOrder},
		Sim: SimConfig{
			Baseline: 100, ForcingAmp: 20, ForcingPeriod: 24,
			Relaxation: 0.4, Recovery: 0.05,
			Duration: 200, Dt: 0.05,
		},
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
