package analysis

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCleanSignal(t *testing.T) {
	v := NewValidator(1.0)
	r := v.Validate(sine(100, 24, 30, 50, 0, 0), nil)

	assert.True(t, r.SufficientLength)
	assert.True(t, r.NotConstant)
	assert.True(t, r.NoNaNs)
	assert.True(t, r.NoInfs)
	assert.True(t, r.SufficientSNR)
	assert.True(t, r.AllPassed)
	assert.False(t, r.NeedsDetrending)
}

func TestValidateConstantSignal(t *testing.T) {
	v := NewValidator(1.0)
	values := make([]float64, 60)
	for i := range values {
		values[i] = 42.0
	}
	r := v.Validate(values, nil)

	assert.False(t, r.NotConstant)
	assert.False(t, r.AllPassed)
	// Length is still fine; checks do not short-circuit.
	assert.True(t, r.SufficientLength)
}

func TestValidateNaN(t *testing.T) {
	v := NewValidator(1.0)
	values := sine(80, 24, 30, 50, 0, 0)
	values[13] = math.NaN()
	r := v.Validate(values, nil)

	assert.False(t, r.NoNaNs)
	assert.True(t, r.NoInfs)
	assert.False(t, r.AllPassed)
}

func TestValidateInf(t *testing.T) {
	v := NewValidator(1.0)
	values := sine(80, 24, 30, 50, 0, 0)
	values[7] = math.Inf(-1)
	r := v.Validate(values, nil)

	assert.False(t, r.NoInfs)
	assert.False(t, r.AllPassed)
}

func TestValidateTooShort(t *testing.T) {
	v := NewValidator(1.0)
	r := v.Validate(sine(20, 6, 1, 0, 0, 0), nil)

	assert.False(t, r.SufficientLength)
	assert.False(t, r.AllPassed)
}

func TestValidateLowSNR(t *testing.T) {
	v := NewValidator(1.0)
	r := v.Validate(whiteNoise(200, 1, 7), nil)

	assert.False(t, r.SufficientSNR)
	assert.False(t, r.AllPassed)
}

func TestValidateNyquist(t *testing.T) {
	v := NewValidator(1.0)

	times := make([]float64, 100)
	for i := range times {
		times[i] = float64(i)
	}
	r := v.Validate(sine(100, 24, 30, 50, 0, 0), times)
	assert.True(t, r.NyquistSatisfied)

	// Spacing of 4 time units cannot support a rate-1 configuration.
	for i := range times {
		times[i] = float64(i) * 4
	}
	r = v.Validate(sine(100, 24, 30, 50, 0, 0), times)
	assert.False(t, r.NyquistSatisfied)
	assert.False(t, r.AllPassed)
}

func TestValidateTrendAdvisory(t *testing.T) {
	v := NewValidator(1.0)
	values := sine(120, 24, 5, 0, 0, 0)
	for i := range values {
		values[i] += 0.5 * float64(i)
	}
	r := v.Validate(values, nil)

	assert.True(t, r.NeedsDetrending)
	// Advisory only: the trend does not gate analysis.
	assert.True(t, r.AllPassed)
}

func TestDetrendRemovesRamp(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = 3.0 + 0.25*float64(i)
	}
	flat := Detrend(values)
	for _, x := range flat {
		require.InDelta(t, 0, x, 1e-9)
	}
}

func TestStationarityAdvanced(t *testing.T) {
	v := NewValidator(1.0)
	v.Advanced = true

	r := v.Validate(sine(240, 8, 30, 50, 0, 0), nil)
	assert.True(t, r.Stationary, "a bounded oscillation is stationary")

	// A drifting random walk carries a unit root.
	rng := rand.New(rand.NewSource(3))
	walk := make([]float64, 240)
	for i := 1; i < len(walk); i++ {
		walk[i] = walk[i-1] + 0.5 + rng.NormFloat64()
	}
	r = v.Validate(walk, nil)
	assert.False(t, r.Stationary)
	assert.False(t, r.AllPassed)
}

func TestReportChecksAndFailed(t *testing.T) {
	v := NewValidator(1.0)
	values := make([]float64, 60)
	r := v.Validate(values, nil)

	checks := r.Checks()
	assert.Len(t, checks, 8)
	assert.False(t, checks["not_constant"])
	assert.Contains(t, r.Failed(), "not_constant")
}
