package biosim

import (
	"math"
	"math/rand"
)

// Series is a sampled telemetry record handed to the analysis engine.
type Series struct {
	Times  []float64
	Values []float64
}

// Options controls series generation.
type Options struct {
	// Duration and SampleRate define the sampling grid (time units and
	// samples per time unit).
	Duration   float64
	SampleRate float64

	// Dt is the integration step, much finer than the sampling grid.
	Dt float64

	// NoiseSigma adds Gaussian measurement noise to each sample.
	NoiseSigma float64

	// Jitter perturbs each timestamp uniformly within +-Jitter,
	// producing the irregular sampling the Lomb-Scargle path expects.
	Jitter float64

	// StressAt injects an acute stress response: a short sharp ATP
	// drawdown centered at this time. Zero disables it.
	StressAt        float64
	StressMagnitude float64

	Seed int64
}

func DefaultOptions() Options {
	return Options{
		Duration:   200,
		SampleRate: 1,
		Dt:         0.05,
		NoiseSigma: 5,
	}
}

// Generate integrates the model and samples it on the requested grid.
// The returned series is what a telemetry collector would hand to the
// analyzer.
func Generate(sys System, opts Options) Series {
	if opts.Dt <= 0 {
		opts.Dt = 0.05
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = 1
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	integ := NewRK4()

	x := initialState(sys)
	t := 0.0
	sampleEvery := 1 / opts.SampleRate
	nextSample := 0.0

	var series Series
	for t <= opts.Duration {
		if t+1e-9 >= nextSample {
			ts := nextSample
			if opts.Jitter > 0 {
				ts += (rng.Float64()*2 - 1) * opts.Jitter
				if n := len(series.Times); n > 0 && ts <= series.Times[n-1] {
					ts = series.Times[n-1] + 1e-3
				}
			}
			v := x[0]
			if opts.StressMagnitude != 0 && opts.StressAt > 0 {
				v += stressPulse(t, opts.StressAt, opts.StressMagnitude)
			}
			if opts.NoiseSigma > 0 {
				v += rng.NormFloat64() * opts.NoiseSigma
			}
			series.Times = append(series.Times, ts)
			series.Values = append(series.Values, v)
			nextSample += sampleEvery
		}
		x = integ.Step(sys, x, t, opts.Dt)
		t += opts.Dt
	}
	return series
}

func initialState(sys System) State {
	x := make(State, sys.StateDim())
	if m, ok := sys.(*ATPOscillator); ok {
		x[0] = m.Baseline
	}
	return x
}

// stressPulse is a narrow Gaussian drawdown around the stress time.
func stressPulse(t, at, magnitude float64) float64 {
	d := t - at
	return -magnitude * math.Exp(-d*d/2)
}
