package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaplaceLensDecayIsStable(t *testing.T) {
	a := mustAnalyzer(1.0)

	// Pure exponential relaxation, no oscillation.
	values := make([]float64, 200)
	for i := range values {
		values[i] = 100 * math.Exp(-float64(i)/10)
	}

	res, err := a.LaplaceLens(values)
	require.NoError(t, err)

	assert.Equal(t, Stable, res.Stability)
	assert.GreaterOrEqual(t, res.DampingRatio, 1.0)
	for _, re := range res.PoleReal {
		assert.Less(t, re, 0.0)
	}
	for _, im := range res.PoleImag {
		assert.Zero(t, im)
	}
}

func TestLaplaceLensSinusoidIsOscillatory(t *testing.T) {
	a := mustAnalyzer(1.0)
	values := sine(200, 24, 30, 0, 0, 0)

	res, err := a.LaplaceLens(values)
	require.NoError(t, err)

	assert.Equal(t, Oscillatory, res.Stability)
	assert.Less(t, res.DampingRatio, 1.0)
	assert.Less(t, res.PoleReal[0], 0.0)
	assert.NotZero(t, res.PoleImag[0])

	// Natural frequency should sit near 2*pi/24.
	assert.InDelta(t, 2*math.Pi/24, res.NaturalFrequency, 0.08)
}

func TestLaplaceLensGrowingEnvelopeIsUnstable(t *testing.T) {
	a := mustAnalyzer(1.0)

	values := make([]float64, 200)
	for i := range values {
		values[i] = math.Exp(float64(i)/60) * math.Sin(2*math.Pi*float64(i)/24)
	}

	res, err := a.LaplaceLens(values)
	require.NoError(t, err)

	assert.Equal(t, Unstable, res.Stability)
	assert.Greater(t, res.PoleReal[0], 0.0)
}

func TestDampingClampOnFlatSpectrum(t *testing.T) {
	a := mustAnalyzer(1.0)
	values := whiteNoise(300, 1, 21)

	res, err := a.LaplaceLens(values)
	require.NoError(t, err)

	// A flat spectrum has no resonance; the damping estimate clamps to
	// the conservative default instead of dividing by the floor.
	assert.True(t, res.Degenerate)
	assert.Equal(t, defaultDamping, res.DampingRatio)
}

func TestLaplaceLensIdempotent(t *testing.T) {
	a := mustAnalyzer(1.0)
	values := sine(200, 24, 20, 100, 5, 77)

	r1, err := a.LaplaceLens(values)
	require.NoError(t, err)
	r2, err := a.LaplaceLens(values)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
