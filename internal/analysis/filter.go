package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultFilterOrder is the Butterworth order used when the caller does
// not override it.
const DefaultFilterOrder = 4

// FilterResult is the denoising view of a series.
type FilterResult struct {
	Filtered []float64 `json:"filtered"`

	CutoffFrequency float64 `json:"cutoff_frequency"`
	Order           int     `json:"order"`

	// NoiseReductionPercent compares median-residual variance before
	// and after filtering, clamped to [0,100].
	NoiseReductionPercent float64 `json:"noise_reduction_percent"`

	// Degenerate flags an input whose noise estimate was already zero;
	// reduction is reported as 0 rather than dividing by nothing.
	Degenerate bool `json:"degenerate"`
}

// biquad is one second-order section in direct form II transposed.
// Cascading low-order stages keeps high-order Butterworth designs
// numerically stable.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

func (s *biquad) apply(in []float64) []float64 {
	out := make([]float64, len(in))
	var z1, z2 float64
	for i, x := range in {
		y := s.b0*x + z1
		z1 = s.b1*x - s.a1*y + z2
		z2 = s.b2*x - s.a2*y
		out[i] = y
	}
	return out
}

// butterworthSOS designs a lowpass Butterworth filter of the given even
// order as cascaded biquads via the bilinear transform.
func butterworthSOS(order int, cutoff, sampleRate float64) []biquad {
	// Pre-warped analog cutoff mapped through s = K(1-z)/(1+z).
	k := 1 / math.Tan(math.Pi*cutoff/sampleRate)
	k2 := k * k

	sections := make([]biquad, 0, order/2)
	for i := 0; i < order/2; i++ {
		// Pole-pair damping of the analog prototype.
		q := 2 * math.Sin(math.Pi*float64(2*i+1)/float64(2*order))
		norm := k2 + q*k + 1
		sections = append(sections, biquad{
			b0: 1 / norm,
			b1: 2 / norm,
			b2: 1 / norm,
			a1: 2 * (1 - k2) / norm,
			a2: (k2 - q*k + 1) / norm,
		})
	}
	return sections
}

// applyFilter designs and runs the lowpass cascade. cutoff <= 0 selects
// the default of a quarter of the Nyquist frequency.
func applyFilter(values []float64, sampleRate, cutoff float64, order int) (FilterResult, error) {
	nyquist := sampleRate / 2
	if cutoff <= 0 {
		cutoff = nyquist / 4
	}
	if cutoff >= nyquist {
		return FilterResult{}, ErrCutoff
	}
	if order <= 0 || order%2 != 0 {
		return FilterResult{}, ErrFilterOrder
	}

	filtered := make([]float64, len(values))
	copy(filtered, values)
	for _, s := range butterworthSOS(order, cutoff, sampleRate) {
		filtered = s.apply(filtered)
	}

	res := FilterResult{
		Filtered:        filtered,
		CutoffFrequency: cutoff,
		Order:           order,
	}
	res.NoiseReductionPercent, res.Degenerate = noiseReduction(values, filtered)
	return res, nil
}

// noiseReduction measures how much median-residual variance the filter
// removed, as a percentage clamped to [0,100].
func noiseReduction(before, after []float64) (float64, bool) {
	beforeVar := residualVariance(before)
	if beforeVar < 1e-30 {
		// Already noiseless; nothing to reduce.
		return 0, true
	}
	afterVar := residualVariance(after)
	pct := (1 - afterVar/beforeVar) * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct, false
}

func residualVariance(values []float64) float64 {
	smooth := medianSmooth(values, 5)
	resid := make([]float64, len(values))
	for i := range values {
		resid[i] = values[i] - smooth[i]
	}
	return stat.Variance(resid, nil)
}
