package biosim

import (
	"math"
	"testing"
)

func TestATPOscillatorTracksBaseline(t *testing.T) {
	sys := NewATPOscillator()
	opts := DefaultOptions()
	opts.NoiseSigma = 0
	opts.Duration = 480

	series := Generate(sys, opts)

	if len(series.Values) < 400 {
		t.Fatalf("expected ~480 samples, got %d", len(series.Values))
	}

	var sum float64
	for _, v := range series.Values {
		sum += v
	}
	mean := sum / float64(len(series.Values))
	if math.Abs(mean-sys.Baseline) > 0.2*sys.Baseline {
		t.Errorf("mean %f drifted from baseline %f", mean, sys.Baseline)
	}
}

func TestGenerateGridAndNoise(t *testing.T) {
	opts := DefaultOptions()
	opts.Duration = 100
	opts.Seed = 4

	series := Generate(NewATPOscillator(), opts)

	if len(series.Times) != len(series.Values) {
		t.Fatalf("axis mismatch: %d vs %d", len(series.Times), len(series.Values))
	}
	for i := 1; i < len(series.Times); i++ {
		if series.Times[i] <= series.Times[i-1] {
			t.Fatalf("timestamps not increasing at %d", i)
		}
	}
	for i, v := range series.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite sample at %d", i)
		}
	}
}

func TestGenerateJitterIsIrregular(t *testing.T) {
	opts := DefaultOptions()
	opts.NoiseSigma = 0
	opts.Duration = 100
	opts.Jitter = 0.3
	opts.Seed = 8

	series := Generate(NewATPOscillator(), opts)

	uniform := true
	dt := series.Times[1] - series.Times[0]
	for i := 2; i < len(series.Times); i++ {
		if math.Abs((series.Times[i]-series.Times[i-1])-dt) > 1e-9 {
			uniform = false
			break
		}
	}
	if uniform {
		t.Error("jittered timestamps came out uniform")
	}
}

func TestStressPulseInjectsTransient(t *testing.T) {
	opts := DefaultOptions()
	opts.NoiseSigma = 0
	opts.Duration = 200
	opts.StressAt = 100
	opts.StressMagnitude = 50

	series := Generate(NewATPOscillator(), opts)

	min := series.Values[0]
	minIdx := 0
	for i, v := range series.Values {
		if v < min {
			min = v
			minIdx = i
		}
	}
	if minIdx < 95 || minIdx > 105 {
		t.Errorf("stress drawdown expected near sample 100, got %d", minIdx)
	}
}

func TestRK4HarmonicAccuracy(t *testing.T) {
	// Undriven, undamped oscillator: x'' = -x, known closed form.
	sys := &ATPOscillator{Baseline: 0, Recovery: 1, Relaxation: 0}
	integ := NewRK4()

	x := State{1, 0}
	dt := 0.01
	for t := 0.0; t < 2*math.Pi; t += dt {
		x = integ.Step(sys, x, t, dt)
	}
	// After one full period we should be back near the start.
	if math.Abs(x[0]-1) > 1e-3 {
		t.Errorf("RK4 drifted: x=%f after one period", x[0])
	}
}
