package analysis

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFourierLensCircadianPeriod(t *testing.T) {
	a := mustAnalyzer(1.0) // hourly sampling

	// 72 hours of a clean 24-hour rhythm.
	values := sine(72, 24, 30, 50, 0, 0)
	res, err := a.FourierLens(values, nil)
	require.NoError(t, err)

	assert.Equal(t, "fft", res.Method)
	assert.False(t, res.Degenerate)
	assert.InDelta(t, 24.0, res.DominantPeriod, 1.0)
	assert.True(t, math.IsNaN(res.Significance), "fft path has no false-alarm model")
}

func TestFourierLensNoiseRobustness(t *testing.T) {
	a := mustAnalyzer(1.0)

	// Noise at 15% of the 30-unit amplitude.
	values := sine(72, 24, 30, 50, 4.5, 11)
	res, err := a.FourierLens(values, nil)
	require.NoError(t, err)

	assert.InDelta(t, 24.0, res.DominantPeriod, 2.0)
}

func TestFourierLensLombScargle(t *testing.T) {
	a := mustAnalyzer(1.0)
	require.True(t, a.LombScargleAvailable())

	// Irregular hourly-ish sampling with jitter.
	rng := rand.New(rand.NewSource(5))
	n := 120
	times := make([]float64, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		times[i] = float64(i) + rng.Float64()*0.6 - 0.3
		if i > 0 && times[i] <= times[i-1] {
			times[i] = times[i-1] + 0.05
		}
		values[i] = 50 + 30*math.Sin(2*math.Pi*times[i]/24)
	}

	res, err := a.FourierLens(values, times)
	require.NoError(t, err)

	assert.Equal(t, "lombscargle", res.Method)
	assert.InDelta(t, 24.0, res.DominantPeriod, 1.5)
	assert.Greater(t, res.Significance, 0.9,
		"a clean rhythm should be nowhere near the false-alarm floor")
}

func TestFourierLensUniformTimestampsUseFFT(t *testing.T) {
	a := mustAnalyzer(1.0)

	values := sine(72, 24, 30, 50, 0, 0)
	times := make([]float64, len(values))
	for i := range times {
		times[i] = float64(i)
	}
	res, err := a.FourierLens(values, times)
	require.NoError(t, err)
	assert.Equal(t, "fft", res.Method)
}

func TestFourierLensLowFrequencyTieBreak(t *testing.T) {
	freqs := []float64{0.02, 0.04, 0.08}
	power := []float64{5.0, 5.0, 3.0}

	// Equal power resolves toward the longer period.
	assert.Equal(t, 0, dominantBin(freqs, power))
}

func TestFourierLensIdempotent(t *testing.T) {
	a := mustAnalyzer(1.0)
	values := sine(100, 24, 20, 100, 5, 42)
	before := make([]float64, len(values))
	copy(before, values)

	r1, err := a.FourierLens(values, nil)
	require.NoError(t, err)
	r2, err := a.FourierLens(values, nil)
	require.NoError(t, err)

	assert.True(t, reflect.DeepEqual(r1, r2))
	assert.Equal(t, before, values, "lens must not mutate its input")
}

func TestFourierLensInputErrors(t *testing.T) {
	a := mustAnalyzer(1.0)

	_, err := a.FourierLens(sine(10, 5, 1, 0, 0, 0), nil)
	assert.ErrorIs(t, err, ErrTooShort)

	constant := make([]float64, 60)
	_, err = a.FourierLens(constant, nil)
	assert.ErrorIs(t, err, ErrConstantSignal)

	bad := sine(60, 24, 30, 50, 0, 0)
	bad[5] = math.NaN()
	_, err = a.FourierLens(bad, nil)
	assert.ErrorIs(t, err, ErrNonFinite)

	var ie *InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "no_nans", ie.Check)

	// Unsorted timestamps.
	values := sine(60, 24, 30, 50, 0, 0)
	times := make([]float64, 60)
	for i := range times {
		times[i] = float64(60 - i)
	}
	_, err = a.FourierLens(values, times)
	assert.ErrorIs(t, err, ErrTimestampOrder)
}
