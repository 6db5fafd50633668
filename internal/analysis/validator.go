package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	// MinSamples is the shortest series any lens will accept.
	MinSamples = 50

	constantEps = 1e-10
	minSNR      = 3.0
	trendLimit  = 0.1

	// adfCritical is the ~5% critical value for the Dickey-Fuller t
	// statistic with an intercept term.
	adfCritical = -2.86
)

// Report holds the outcome of every pre-flight check. All checks run and
// are reported independently; nothing short-circuits.
type Report struct {
	SufficientLength bool `json:"sufficient_length"`
	NotConstant      bool `json:"not_constant"`
	NoNaNs           bool `json:"no_nans"`
	NoInfs           bool `json:"no_infs"`
	NyquistSatisfied bool `json:"nyquist_satisfied"`
	SufficientSNR    bool `json:"sufficient_snr"`
	Stationary       bool `json:"stationary"`

	// NeedsDetrending is advisory: a strong linear trend will smear
	// spectral estimates but does not gate analysis.
	NeedsDetrending bool `json:"needs_detrending"`

	StdDev        float64 `json:"std_dev"`
	SNR           float64 `json:"snr"`
	TrendFraction float64 `json:"trend_fraction"`
	MedianSpacing float64 `json:"median_spacing"`
	ADFStat       float64 `json:"adf_stat"`

	AllPassed bool `json:"all_passed"`
}

// Checks returns the per-check verdicts keyed by check name.
func (r *Report) Checks() map[string]bool {
	return map[string]bool{
		"sufficient_length": r.SufficientLength,
		"not_constant":      r.NotConstant,
		"no_nans":           r.NoNaNs,
		"no_infs":           r.NoInfs,
		"nyquist_satisfied": r.NyquistSatisfied,
		"sufficient_snr":    r.SufficientSNR,
		"stationary":        r.Stationary,
		"needs_detrending":  r.NeedsDetrending,
	}
}

// Failed lists the names of the hard checks that did not pass.
func (r *Report) Failed() []string {
	var out []string
	if !r.SufficientLength {
		out = append(out, "sufficient_length")
	}
	if !r.NotConstant {
		out = append(out, "not_constant")
	}
	if !r.NoNaNs {
		out = append(out, "no_nans")
	}
	if !r.NoInfs {
		out = append(out, "no_infs")
	}
	if !r.NyquistSatisfied {
		out = append(out, "nyquist_satisfied")
	}
	if !r.SufficientSNR {
		out = append(out, "sufficient_snr")
	}
	if !r.Stationary {
		out = append(out, "stationary")
	}
	return out
}

// Validator runs stateless pre-flight checks over a raw series before any
// lens is allowed near it.
type Validator struct {
	SampleRate float64

	// Advanced enables the Dickey-Fuller stationarity test. Off by
	// default: short biological series fail it too eagerly.
	Advanced bool
}

func NewValidator(sampleRate float64) *Validator {
	return &Validator{SampleRate: sampleRate}
}

// Validate runs every check against values. times may be nil for uniform
// sampling; when given it must align with values one to one.
func (v *Validator) Validate(values, times []float64) Report {
	r := Report{
		NyquistSatisfied: true,
		Stationary:       true,
	}

	r.SufficientLength = len(values) >= MinSamples

	r.NoNaNs, r.NoInfs = true, true
	for _, x := range values {
		if math.IsNaN(x) {
			r.NoNaNs = false
		}
		if math.IsInf(x, 0) {
			r.NoInfs = false
		}
	}

	finite := r.NoNaNs && r.NoInfs
	if finite && len(values) > 1 {
		r.StdDev = stat.StdDev(values, nil)
	}
	r.NotConstant = r.StdDev > constantEps

	if len(times) == len(values) && len(times) > 1 {
		r.MedianSpacing = medianSpacing(times)
		// Median spacing must support the configured rate: an implied
		// Nyquist below half the configured rate aliases everything.
		if r.MedianSpacing > 0 && v.SampleRate > 0 {
			r.NyquistSatisfied = 0.5/r.MedianSpacing >= 0.5*v.SampleRate
		}
	}

	if finite && r.NotConstant {
		r.SNR = estimateSNR(values)
		r.SufficientSNR = r.SNR >= minSNR

		r.TrendFraction = trendFraction(values)
		r.NeedsDetrending = r.TrendFraction > trendLimit

		if v.Advanced {
			r.ADFStat = dickeyFuller(values)
			r.Stationary = r.ADFStat < adfCritical
		}
	}

	r.AllPassed = r.SufficientLength && r.NotConstant && r.NoNaNs &&
		r.NoInfs && r.NyquistSatisfied && r.SufficientSNR && r.Stationary
	return r
}

// Detrend returns a copy of values with the least-squares linear trend
// removed. This is the advisory auto-correction for the override path.
func Detrend(values []float64) []float64 {
	n := len(values)
	out := make([]float64, n)
	if n < 2 {
		copy(out, values)
		return out
	}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(xs, values, nil, false)
	for i, y := range values {
		out[i] = y - (alpha + beta*float64(i))
	}
	return out
}

// estimateSNR treats the median-smoothed series as signal and whatever the
// smoother rejects as noise.
func estimateSNR(values []float64) float64 {
	smooth := medianSmooth(values, 5)
	resid := make([]float64, len(values))
	for i := range values {
		resid[i] = values[i] - smooth[i]
	}
	signalVar := stat.Variance(smooth, nil)
	noiseVar := stat.Variance(resid, nil)
	if noiseVar < 1e-30 {
		return math.Inf(1)
	}
	return signalVar / noiseVar
}

func trendFraction(values []float64) float64 {
	n := len(values)
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	_, beta := stat.LinearRegression(xs, values, nil, false)

	lo, hi := values[0], values[0]
	for _, y := range values {
		if y < lo {
			lo = y
		}
		if y > hi {
			hi = y
		}
	}
	span := hi - lo
	if span <= 0 {
		return 0
	}
	return math.Abs(beta*float64(n-1)) / span
}

// dickeyFuller computes the t statistic of the unit-root regression
// dy[t] = alpha + rho*y[t-1]. Strongly negative rho rejects a unit root.
func dickeyFuller(values []float64) float64 {
	n := len(values) - 1
	if n < 3 {
		return 0
	}
	lag := make([]float64, n)
	diff := make([]float64, n)
	for i := 0; i < n; i++ {
		lag[i] = values[i]
		diff[i] = values[i+1] - values[i]
	}
	alpha, rho := stat.LinearRegression(lag, diff, nil, false)

	var sse, sxx float64
	lagMean := stat.Mean(lag, nil)
	for i := 0; i < n; i++ {
		res := diff[i] - (alpha + rho*lag[i])
		sse += res * res
		d := lag[i] - lagMean
		sxx += d * d
	}
	if sxx <= 0 || n <= 2 {
		return 0
	}
	se := math.Sqrt(sse / float64(n-2) / sxx)
	if se == 0 {
		return 0
	}
	return rho / se
}

func medianSpacing(times []float64) float64 {
	gaps := make([]float64, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		gaps = append(gaps, times[i]-times[i-1])
	}
	sort.Float64s(gaps)
	return gaps[len(gaps)/2]
}

// medianSmooth applies a centered running median of the given odd width,
// clamping the window at the edges.
func medianSmooth(values []float64, width int) []float64 {
	n := len(values)
	out := make([]float64, n)
	half := width / 2
	buf := make([]float64, 0, width)
	for i := 0; i < n; i++ {
		lo, hi := i-half, i+half
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		buf = buf[:0]
		buf = append(buf, values[lo:hi+1]...)
		sort.Float64s(buf)
		out[i] = buf[len(buf)/2]
	}
	return out
}

func isUniform(times []float64) bool {
	if len(times) < 3 {
		return true
	}
	dt := times[1] - times[0]
	for i := 2; i < len(times); i++ {
		if math.Abs((times[i]-times[i-1])-dt) > 1e-9*math.Max(1, math.Abs(dt)) {
			return false
		}
	}
	return true
}
