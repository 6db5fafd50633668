package analysis

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

const (
	// minTrialFreq bounds the slow end of the scanned range: periods
	// beyond 100 time units are indistinguishable from drift on the
	// series lengths this engine sees.
	minTrialFreq = 1.0 / 100.0

	// powerTieTol is the relative tolerance under which two bins count
	// as tied; the lower frequency wins because biological rhythms
	// bias toward longer periods.
	powerTieTol = 1e-9
)

// SpectralResult is the frequency-domain view of a series.
type SpectralResult struct {
	Frequencies []float64 `json:"frequencies"`
	Power       []float64 `json:"power"`

	// DominantFrequency excludes the zero-frequency bin. DominantPeriod
	// is its reciprocal and is +Inf when no periodicity was found.
	DominantFrequency float64 `json:"dominant_frequency"`
	DominantPeriod    float64 `json:"dominant_period"`

	// Significance is 1-FAP under Lomb-Scargle; NaN for the uniform
	// FFT path, which has no false-alarm model.
	Significance float64 `json:"significance"`

	// Method is "fft" or "lombscargle".
	Method string `json:"method"`

	// Degenerate flags the no-periodicity case (zero dominant
	// frequency or fewer than 2 usable bins). Not an error.
	Degenerate bool `json:"degenerate"`
}

// fftPeriodogram computes one-sided power over the trial range
// [minTrialFreq, Nyquist] from an evenly sampled, mean-removed series.
func fftPeriodogram(values []float64, sampleRate float64) ([]float64, []float64) {
	n := len(values)
	centered := make([]float64, n)
	mean := stat.Mean(values, nil)
	for i, x := range values {
		centered[i] = x - mean
	}

	spectrum := fft.FFTReal(centered)
	nyquist := sampleRate / 2

	freqs := make([]float64, 0, n/2)
	power := make([]float64, 0, n/2)
	for k := 1; k <= n/2; k++ {
		f := float64(k) * sampleRate / float64(n)
		if f < minTrialFreq || f > nyquist {
			continue
		}
		re := real(spectrum[k])
		im := imag(spectrum[k])
		freqs = append(freqs, f)
		power = append(power, (re*re+im*im)/float64(n))
	}
	return freqs, power
}

// dominantBin locates the maximum-power bin with the low-frequency
// tie-break. Returns -1 when no bin qualifies.
func dominantBin(freqs, power []float64) int {
	best := -1
	for i := range power {
		if best < 0 || power[i] > power[best]*(1+powerTieTol) {
			best = i
		}
	}
	return best
}

func newSpectralResult(freqs, power []float64, method string) SpectralResult {
	res := SpectralResult{
		Frequencies:  freqs,
		Power:        power,
		Method:       method,
		Significance: math.NaN(),
	}
	if len(freqs) < 2 {
		res.DominantPeriod = math.Inf(1)
		res.Degenerate = true
		return res
	}
	best := dominantBin(freqs, power)
	if best < 0 || freqs[best] <= 0 {
		res.DominantPeriod = math.Inf(1)
		res.Degenerate = true
		return res
	}
	res.DominantFrequency = freqs[best]
	res.DominantPeriod = 1 / freqs[best]
	return res
}
