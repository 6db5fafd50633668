package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// reliableThreshold is the agreement score above which a consensus
	// period is trusted.
	reliableThreshold = 0.8

	// acfPeakMin rejects autocorrelation peaks that could plausibly be
	// sampling noise.
	acfPeakMin = 0.3

	// welchPeakRatio is the distinct-peak guard for the periodogram
	// estimator: the peak must clear this multiple of the median bin.
	welchPeakRatio = 5.0
)

// PeriodEstimate is one algorithm's vote.
type PeriodEstimate struct {
	Name   string  `json:"name"`
	Period float64 `json:"period"`
	Weight float64 `json:"weight"`
	Finite bool    `json:"finite"`
}

// ConsensusResult is the weighted agreement of independent period
// estimators. A single estimator fooled by a harmonic or a sampling
// artifact cannot carry the vote on its own.
type ConsensusResult struct {
	ConsensusPeriod float64          `json:"consensus_period"`
	AgreementScore  float64          `json:"agreement_score"`
	Estimates       []PeriodEstimate `json:"estimates"`
	Reliable        bool             `json:"reliable"`
}

/// Consensus runs three independent period estimators and combines them:
// the spectral lens (domain standard, weight 1.5), autocorrelation peak
// detection (1.0), and a Welch-periodogram peak (1.0). Non-finite votes
// are dropped along with their weight; fewer than two finite votes can
// never be reliable.
func (a *Analyzer) Consensus(values, times []float64) (ConsensusResult, error) {
	if err := a.precheck(values, times); err != nil {
		return ConsensusResult{}, err
	}

	spectral, err := a.FourierLens(values, times)
	if err != nil {
		return ConsensusResult{}, err
	}

	estimates := []PeriodEstimate{
		{Name: spectral.Method, Period: spectral.DominantPeriod, Weight: 1.5},
		{Name: "autocorrelation", Period: autocorrPeriod(values, a.SampleRate), Weight: 1.0},
		{Name: "welch", Period: welchPeriod(values, a.SampleRate), Weight: 1.0},
	}

	var periods []float64
	var weightedSum, totalWeight float64
	for i := range estimates {
		e := &estimates[i]
		e.Finite = !math.IsNaN(e.Period) && !math.IsInf(e.Period, 0) && e.Period > 0
		if !e.Finite {
			continue
		}
		periods = append(periods, e.Period)
		weightedSum += e.Weight * e.Period
		totalWeight += e.Weight
	}

	res := ConsensusResult{Estimates: estimates}
	if len(periods) == 0 {
		res.ConsensusPeriod = math.Inf(1)
		return res, nil
	}

	res.ConsensusPeriod = weightedSum / totalWeight

	mean := stat.Mean(periods, nil)
	sigma := 0.0
	if len(periods) > 1 {
		sigma = stat.StdDev(periods, nil)
	}
	score := 1 - sigma/mean
	if score < 0 {
		score = 0
	}
	res.AgreementScore = score
	res.Reliable = score > reliableThreshold && len(periods) >= 2
	return res, nil
}

// autocorrPeriod finds the lag of the first convincing autocorrelation
// peak. Returns NaN when no peak clears acfPeakMin.
func autocorrPeriod(values []float64, sampleRate float64) float64 {
	n := len(values)
	mean := stat.Mean(values, nil)
	centered := make([]float64, n)
	for i, x := range values {
		centered[i] = x - mean
	}

	var norm float64
	for _, x := range centered {
		norm += x * x
	}
	if norm <= 0 {
		return math.NaN()
	}

	maxLag := n / 2
	acf := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		var sum float64
		for i := 0; i+lag < n; i++ {
			sum += centered[i] * centered[i+lag]
		}
		acf[lag] = sum / norm
	}

	for lag := 2; lag < maxLag; lag++ {
		if acf[lag] > acfPeakMin && acf[lag] > acf[lag-1] && acf[lag] >= acf[lag+1] {
			return float64(lag) / sampleRate
		}
	}
	return math.NaN()
}

// welchPeriod reads the period off the averaged-periodogram peak,
// requiring a peak distinct enough to rule out broadband noise.
func welchPeriod(values []float64, sampleRate float64) float64 {
	segLen := len(values) / 2
	if segLen > 128 {
		segLen = 128
	}
	freqs, psd := welchPSD(values, sampleRate, segLen)
	if len(psd) < 3 {
		return math.NaN()
	}

	peak := 1
	for k := 2; k < len(psd); k++ {
		if psd[k] > psd[peak] {
			peak = k
		}
	}
	if psd[peak] < welchPeakRatio*noiseFloor(psd) || freqs[peak] <= 0 {
		return math.NaN()
	}
	return 1 / freqs[peak]
}
