package analysis

import (
	"math"
	"math/rand"
)

// sine builds base + amp*sin(2*pi*t/period) sampled at 1 sample per
// time unit, with optional Gaussian noise.
func sine(n int, period, amp, base, noiseSigma float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = base + amp*math.Sin(2*math.Pi*float64(i)/period)
		if noiseSigma > 0 {
			out[i] += rng.NormFloat64() * noiseSigma
		}
	}
	return out
}

func whiteNoise(n int, sigma float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64() * sigma
	}
	return out
}

func mustAnalyzer(rate float64) *Analyzer {
	a, err := NewAnalyzer(rate)
	if err != nil {
		panic(err)
	}
	return a
}
