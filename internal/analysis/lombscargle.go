package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// lombScargle evaluates the normalized Lomb-Scargle periodogram on an
// irregularly sampled series. This is the mandated path for biological
// data whenever explicit, non-uniform timestamps are available: the FFT
// assumes even spacing and silently distorts everything else.
//
// The grid runs from max(minTrialFreq, 1/span) up to the pseudo-Nyquist
// implied by the median spacing, oversampled 4x relative to 1/span.
func lombScargle(times, values []float64) ([]float64, []float64) {
	n := len(values)
	span := times[n-1] - times[0]
	if span <= 0 {
		return nil, nil
	}

	nyquist := 0.5 / medianSpacing(times)
	fmin := minTrialFreq
	if 1/span > fmin {
		fmin = 1 / span
	}
	df := 1 / (4 * span)
	bins := int((nyquist - fmin) / df)
	if bins < 1 {
		return nil, nil
	}

	mean := stat.Mean(values, nil)
	variance := stat.Variance(values, nil)
	if variance <= 0 {
		return nil, nil
	}
	centered := make([]float64, n)
	for i, x := range values {
		centered[i] = x - mean
	}

	freqs := make([]float64, bins)
	power := make([]float64, bins)
	for b := 0; b < bins; b++ {
		f := fmin + float64(b)*df
		omega := 2 * math.Pi * f

		var s2, c2 float64
		for _, t := range times {
			s2 += math.Sin(2 * omega * t)
			c2 += math.Cos(2 * omega * t)
		}
		tau := math.Atan2(s2, c2) / (2 * omega)

		var ys, yc, ss, cc float64
		for i, t := range times {
			arg := omega * (t - tau)
			s, c := math.Sincos(arg)
			ys += centered[i] * s
			yc += centered[i] * c
			ss += s * s
			cc += c * c
		}

		p := 0.0
		if cc > 0 {
			p += yc * yc / cc
		}
		if ss > 0 {
			p += ys * ys / ss
		}
		freqs[b] = f
		power[b] = p / (2 * variance)
	}
	return freqs, power
}

// falseAlarmProbability applies the classic independent-frequencies
// estimate FAP = 1 - (1 - exp(-P))^M with M approximated by the sample
// count.
func falseAlarmProbability(peakPower float64, samples int) float64 {
	m := float64(samples)
	single := -math.Expm1(-peakPower) // 1 - exp(-P), stable for small P
	if single <= 0 {
		return 1
	}
	fap := 1 - math.Pow(single, m)
	if fap < 0 {
		return 0
	}
	if fap > 1 {
		return 1
	}
	return fap
}
