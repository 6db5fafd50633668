package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsensusCircadianAgreement(t *testing.T) {
	a := mustAnalyzer(1.0)

	// Ten days of hourly samples: every estimator's grid contains the
	// 24-hour line exactly.
	values := sine(240, 24, 30, 50, 0, 0)
	res, err := a.Consensus(values, nil)
	require.NoError(t, err)

	require.Len(t, res.Estimates, 3)
	finite := 0
	for _, e := range res.Estimates {
		if e.Finite {
			finite++
			assert.InDelta(t, 24.0, e.Period, 2.4, "estimator %s", e.Name)
		}
	}
	assert.GreaterOrEqual(t, finite, 2)
	assert.InDelta(t, 24.0, res.ConsensusPeriod, 1.0)
	assert.Greater(t, res.AgreementScore, 0.8)
	assert.True(t, res.Reliable)
}

func TestConsensusWhiteNoiseUnreliable(t *testing.T) {
	a := mustAnalyzer(1.0)

	res, err := a.Consensus(whiteNoise(240, 1, 17), nil)
	require.NoError(t, err)
	assert.False(t, res.Reliable,
		"white noise has no period for the estimators to agree on")
}

func TestConsensusWeights(t *testing.T) {
	a := mustAnalyzer(1.0)
	res, err := a.Consensus(sine(240, 24, 30, 50, 0, 0), nil)
	require.NoError(t, err)

	byName := map[string]PeriodEstimate{}
	for _, e := range res.Estimates {
		byName[e.Name] = e
	}
	assert.Equal(t, 1.5, byName["fft"].Weight, "spectral estimator is domain standard")
	assert.Equal(t, 1.0, byName["autocorrelation"].Weight)
	assert.Equal(t, 1.0, byName["welch"].Weight)
}

func TestConsensusExcludesNonFinite(t *testing.T) {
	// A slow drifting series gives the autocorrelation estimator
	// nothing to lock onto; the vote must not poison the mean.
	a := mustAnalyzer(1.0)
	values := make([]float64, 200)
	for i := range values {
		values[i] = float64(i) * 0.3
	}
	res, err := a.Consensus(values, nil)
	require.NoError(t, err)

	for _, e := range res.Estimates {
		if !e.Finite {
			continue
		}
		assert.False(t, math.IsInf(e.Period, 0))
		assert.False(t, math.IsNaN(e.Period))
	}
	assert.False(t, math.IsNaN(res.ConsensusPeriod))
}

func TestConsensusInputErrors(t *testing.T) {
	a := mustAnalyzer(1.0)
	_, err := a.Consensus(make([]float64, 60), nil)
	assert.ErrorIs(t, err, ErrConstantSignal)
}

func TestAutocorrPeriodCleanSine(t *testing.T) {
	p := autocorrPeriod(sine(240, 24, 30, 0, 0, 0), 1.0)
	assert.InDelta(t, 24.0, p, 1.0)
}

func TestAutocorrPeriodNoise(t *testing.T) {
	p := autocorrPeriod(whiteNoise(240, 1, 31), 1.0)
	assert.True(t, math.IsNaN(p), "no convincing peak in white noise")
}

func TestWelchPeriodCleanSine(t *testing.T) {
	p := welchPeriod(sine(240, 24, 30, 50, 0, 0), 1.0)
	assert.InDelta(t, 24.0, p, 2.4)
}
