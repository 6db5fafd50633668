package analysis

import "math"

// Analyzer is the façade over the four lenses. It is a plain value
// holding configuration only; every lens is a pure function of its
// input, so one Analyzer may serve any number of goroutines.
type Analyzer struct {
	SampleRate float64

	// Wavelet selects the mother wavelet for the wavelet lens.
	// Empty means morlet.
	Wavelet string

	// FilterCutoff overrides the lowpass cutoff; zero selects
	// Nyquist/4. FilterOrder must stay a positive even number.
	FilterCutoff float64
	FilterOrder  int

	lombScargle bool
}

// Bundle is the combined output of AnalyzeAll.
type Bundle struct {
	Spectral      SpectralResult      `json:"spectral"`
	TimeFrequency TimeFrequencyResult `json:"time_frequency"`
	Stability     StabilityResult     `json:"stability"`
	Filter        FilterResult        `json:"filter"`
}

// NewAnalyzer builds an analyzer for the given sampling rate (samples
// per time unit).
func NewAnalyzer(sampleRate float64) (*Analyzer, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, ErrSampleRate
	}
	return &Analyzer{
		SampleRate:  sampleRate,
		FilterOrder: DefaultFilterOrder,
		lombScargle: true,
	}, nil
}

// Nyquist returns half the configured sampling rate.
func (a *Analyzer) Nyquist() float64 {
	return a.SampleRate / 2
}

// LombScargleAvailable reports whether the irregular-sampling estimator
// can be used. The capability is fixed at construction so callers probe
// once instead of handling fallback per call.
func (a *Analyzer) LombScargleAvailable() bool {
	return a.lombScargle
}

// Validator returns a pre-flight validator sharing this analyzer's rate.
func (a *Analyzer) Validator() *Validator {
	return NewValidator(a.SampleRate)
}

// precheck enforces the minimal per-lens preconditions. The full Report
// from the Validator is the caller's responsibility; these gates only
// stop inputs no transform can survive.
func (a *Analyzer) precheck(values, times []float64) error {
	if len(values) < MinSamples {
		return inputErr("sufficient_length", ErrTooShort)
	}
	for _, x := range values {
		if math.IsNaN(x) {
			return inputErr("no_nans", ErrNonFinite)
		}
		if math.IsInf(x, 0) {
			return inputErr("no_infs", ErrNonFinite)
		}
	}
	constant := true
	for _, x := range values[1:] {
		if math.Abs(x-values[0]) > constantEps {
			constant = false
			break
		}
	}
	if constant {
		return inputErr("not_constant", ErrConstantSignal)
	}
	if times != nil {
		if len(times) != len(values) {
			return inputErr("timestamps_aligned", ErrNoTimestamps)
		}
		for i := 1; i < len(times); i++ {
			if times[i] <= times[i-1] {
				return inputErr("timestamps_increasing", ErrTimestampOrder)
			}
		}
	}
	return nil
}

// FourierLens decomposes the series into its power spectrum and extracts
// the dominant period. Evenly spaced input (times nil or uniform) takes
// the FFT path; explicit irregular timestamps take Lomb-Scargle with a
// significance score.
func (a *Analyzer) FourierLens(values, times []float64) (SpectralResult, error) {
	if err := a.precheck(values, times); err != nil {
		return SpectralResult{}, err
	}

	if times != nil && !isUniform(times) && a.lombScargle {
		freqs, power := lombScargle(times, values)
		res := newSpectralResult(freqs, power, "lombscargle")
		if !res.Degenerate {
			best := dominantBin(freqs, power)
			res.Significance = 1 - falseAlarmProbability(power[best], len(values))
		}
		return res, nil
	}

	freqs, power := fftPeriodogram(values, a.SampleRate)
	return newSpectralResult(freqs, power, "fft"), nil
}

// WaveletLens localizes transient events in a scale-time decomposition.
func (a *Analyzer) WaveletLens(values []float64) (TimeFrequencyResult, error) {
	if err := a.precheck(values, nil); err != nil {
		return TimeFrequencyResult{}, err
	}
	return waveletTransform(values, a.Wavelet)
}

// LaplaceLens identifies an approximate second-order continuous-time
// system and classifies its stability.
func (a *Analyzer) LaplaceLens(values []float64) (StabilityResult, error) {
	if err := a.precheck(values, nil); err != nil {
		return StabilityResult{}, err
	}
	return estimateStability(values, a.SampleRate), nil
}

// ZTransformLens designs and applies the denoising lowpass filter.
func (a *Analyzer) ZTransformLens(values []float64) (FilterResult, error) {
	if err := a.precheck(values, nil); err != nil {
		return FilterResult{}, err
	}
	return applyFilter(values, a.SampleRate, a.FilterCutoff, a.FilterOrder)
}

// AnalyzeAll runs all four lenses and returns the combined bundle. The
// lenses share no state; order is irrelevant.
func (a *Analyzer) AnalyzeAll(values, times []float64) (*Bundle, error) {
	spectral, err := a.FourierLens(values, times)
	if err != nil {
		return nil, err
	}
	tf, err := a.WaveletLens(values)
	if err != nil {
		return nil, err
	}
	stability, err := a.LaplaceLens(values)
	if err != nil {
		return nil, err
	}
	filter, err := a.ZTransformLens(values)
	if err != nil {
		return nil, err
	}
	return &Bundle{
		Spectral:      spectral,
		TimeFrequency: tf,
		Stability:     stability,
		Filter:        filter,
	}, nil
}
