package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// StabilityClass labels the dominant-pole geometry of the identified
// second-order system.
type StabilityClass string

const (
	Stable           StabilityClass = "stable"
	Oscillatory      StabilityClass = "oscillatory"
	Unstable         StabilityClass = "unstable"
	MarginallyStable StabilityClass = "marginally_stable"
)

// defaultDamping is the clamp applied when the spectral peak yields a
// non-positive quality factor.
const defaultDamping = 0.5

// StabilityResult is a second-order approximation of the underlying
// dynamics. It is explicitly not full transfer-function identification:
// a multi-pole system is collapsed onto its dominant resonance.
type StabilityResult struct {
	Poles [2]complex128 `json:"-"`

	// PoleReal/PoleImag mirror Poles for serialization.
	PoleReal [2]float64 `json:"pole_real"`
	PoleImag [2]float64 `json:"pole_imag"`

	Stability StabilityClass `json:"stability"`

	// NaturalFrequency is in radians per time unit.
	NaturalFrequency float64 `json:"natural_frequency"`
	DampingRatio     float64 `json:"damping_ratio"`

	// Degenerate flags the clamped-damping path (flat spectrum, no
	// usable peak).
	Degenerate bool `json:"degenerate"`
}

// estimateStability identifies an approximate second-order system from
// the Welch PSD: the peak gives the natural frequency, the half-power
// sharpness of that peak gives the quality factor and hence damping, and
// an amplitude-envelope trend decides the sign of the real part.
func estimateStability(values []float64, sampleRate float64) StabilityResult {
	// Quarter-length segments trade frequency resolution for enough
	// averaging to flatten broadband noise.
	segLen := len(values) / 4
	if segLen < 32 {
		segLen = 32
	}
	if segLen > 256 {
		segLen = 256
	}
	if segLen > len(values) {
		segLen = len(values)
	}
	freqs, psd := welchPSD(values, sampleRate, segLen)

	res := StabilityResult{}
	if len(psd) < 3 {
		res.Degenerate = true
		res.DampingRatio = defaultDamping
		res.Stability = Stable
		return res
	}

	// Peak excluding DC.
	peak := 1
	for k := 2; k < len(psd); k++ {
		if psd[k] > psd[peak] {
			peak = k
		}
	}
	fPeak := freqs[peak]
	omegaN := 2 * math.Pi * fPeak
	res.NaturalFrequency = omegaN

	zeta, degenerate := dampingFromPeak(freqs, psd, peak)
	if peak == 1 && zeta < 1 && !degenerate {
		// Maximum density at the lowest resolvable frequency is a
		// relaxation spectrum, not a resonance: the system is
		// overdamped regardless of the apparent peak width.
		zeta = 2 - zeta
	}
	res.DampingRatio = zeta
	res.Degenerate = degenerate

	growing := envelopeGrowing(values)

	switch {
	case growing:
		// Envelope gain flips the dominant pole into the right half
		// plane; the PSD alone cannot see the sign.
		wd := omegaN * math.Sqrt(math.Abs(1-zeta*zeta))
		re := zeta * omegaN
		res.Poles = [2]complex128{complex(re, wd), complex(re, -wd)}
		res.Stability = Unstable
	case zeta >= 1:
		// Overdamped: two real negative poles.
		root := math.Sqrt(zeta*zeta - 1)
		res.Poles = [2]complex128{
			complex(-omegaN*(zeta-root), 0),
			complex(-omegaN*(zeta+root), 0),
		}
		res.Stability = Stable
	case zeta < marginalDamping:
		wd := omegaN * math.Sqrt(1-zeta*zeta)
		res.Poles = [2]complex128{complex(0, wd), complex(0, -wd)}
		res.Stability = MarginallyStable
	default:
		wd := omegaN * math.Sqrt(1-zeta*zeta)
		re := -zeta * omegaN
		res.Poles = [2]complex128{complex(re, wd), complex(re, -wd)}
		res.Stability = Oscillatory
	}

	for i, p := range res.Poles {
		res.PoleReal[i] = real(p)
		res.PoleImag[i] = imag(p)
	}
	return res
}

// marginalDamping is the damping ratio below which the dominant pole is
// treated as sitting on the imaginary axis.
const marginalDamping = 1e-9

// dampingFromPeak estimates zeta from the half-power bandwidth of the
// spectral peak: Q = f_peak/bandwidth, zeta = 1/(2Q). A peak that never
// clears the noise floor yields a non-positive Q and is clamped to the
// conservative default.
func dampingFromPeak(freqs, psd []float64, peak int) (float64, bool) {
	floor := noiseFloor(psd)
	if psd[peak] <= 3*floor || psd[peak] <= 0 {
		// No distinct resonance above the floor.
		return defaultDamping, true
	}

	half := psd[peak] / 2

	// Walk outward to the half-power points.
	left := peak
	for left > 1 && psd[left-1] > half {
		left--
	}
	right := peak
	for right < len(psd)-1 && psd[right+1] > half {
		right++
	}

	fLow := freqs[left]
	fHigh := freqs[right]
	binWidth := freqs[1] - freqs[0]
	bandwidth := (fHigh - fLow) + binWidth // at least one bin wide

	q := freqs[peak] / bandwidth
	if q <= 0 {
		return defaultDamping, true
	}
	return 1 / (2 * q), false
}

// noiseFloor takes the median of the non-DC density bins.
func noiseFloor(psd []float64) float64 {
	tail := make([]float64, len(psd)-1)
	copy(tail, psd[1:])
	return median(tail)
}

// envelopeGrowing reports whether the oscillation envelope clearly grows
// over the record, comparing centered RMS of the last third against the
// first third.
func envelopeGrowing(values []float64) bool {
	n := len(values)
	third := n / 3
	if third < 8 {
		return false
	}
	head := centeredRMS(values[:third])
	tail := centeredRMS(values[n-third:])
	if head <= 0 {
		return false
	}
	return tail/head > 1.5
}

func centeredRMS(values []float64) float64 {
	mean := stat.Mean(values, nil)
	var sum float64
	for _, x := range values {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	buf := make([]float64, len(values))
	copy(buf, values)
	sort.Float64s(buf)
	return buf[len(buf)/2]
}
