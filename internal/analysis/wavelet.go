package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	maxScales = 128

	// eventGap is the largest index gap between above-threshold samples
	// that still counts as one transient.
	eventGap = 5

	// morletOmega0 is the standard Morlet center frequency.
	morletOmega0 = 6.0
)

// TransientEvent is a contiguous cluster of elevated wavelet power
// collapsed to its centroid index and peak intensity.
type TransientEvent struct {
	TimeIndex int     `json:"time_index"`
	Intensity float64 `json:"intensity"`
}

// TimeFrequencyResult is the scale-time view of a series. Magnitude is
// indexed [scale][time].
type TimeFrequencyResult struct {
	Scales    []float64        `json:"scales"`
	Magnitude [][]float64      `json:"magnitude"`
	Events    []TransientEvent `json:"events"`
	Wavelet   string           `json:"wavelet"`
}

// motherWavelet evaluates the analyzing wavelet at t.
type motherWavelet func(t float64) complex128

// morlet evaluates the complex Morlet mother wavelet at t.
func morlet(t float64) complex128 {
	envelope := math.Exp(-t * t / 2)
	s, c := math.Sincos(morletOmega0 * t)
	return complex(c*envelope, s*envelope)
}

// ricker evaluates the real Mexican-hat wavelet at t.
func ricker(t float64) complex128 {
	t2 := t * t
	return complex((1-t2)*math.Exp(-t2/2), 0)
}

func lookupWavelet(name string) (motherWavelet, error) {
	switch name {
	case "", "morlet":
		return morlet, nil
	case "ricker", "mexican_hat":
		return ricker, nil
	default:
		return nil, ErrWavelet
	}
}

// cwt computes a continuous wavelet transform by direct convolution.
// Support is truncated at |t| <= 4 scale units, where the Gaussian
// envelope has decayed below 3e-4.
func cwt(values []float64, scales []float64, mother motherWavelet) [][]complex128 {
	n := len(values)
	coeffs := make([][]complex128, len(scales))
	for si, s := range scales {
		row := make([]complex128, n)
		support := int(4*s) + 1
		norm := 1 / math.Sqrt(s)
		for b := 0; b < n; b++ {
			lo, hi := b-support, b+support
			if lo < 0 {
				lo = 0
			}
			if hi > n-1 {
				hi = n - 1
			}
			var acc complex128
			for t := lo; t <= hi; t++ {
				w := mother(float64(t-b) / s)
				// conjugate of the analyzing wavelet
				acc += complex(values[t], 0) * complex(real(w), -imag(w))
			}
			row[b] = acc * complex(norm, 0)
		}
		coeffs[si] = row
	}
	return coeffs
}

// waveletScales builds the default dyadic-ish scale axis 1..min(128, n/4).
func waveletScales(n int) []float64 {
	top := n / 4
	if top > maxScales {
		top = maxScales
	}
	if top < 1 {
		top = 1
	}
	scales := make([]float64, top)
	for i := range scales {
		scales[i] = float64(i + 1)
	}
	return scales
}

// detectTransients collapses the per-index power trace into discrete
// events: threshold at mean + 2 sigma, merge gaps <= eventGap, report the
// centroid index and peak power of each cluster.
func detectTransients(power []float64) []TransientEvent {
	mean := stat.Mean(power, nil)
	sigma := stat.StdDev(power, nil)
	threshold := mean + 2*sigma

	var events []TransientEvent
	var idxSum, count int
	var peak float64
	last := -eventGap - 1

	flush := func() {
		if count == 0 {
			return
		}
		events = append(events, TransientEvent{
			TimeIndex: idxSum / count,
			Intensity: peak,
		})
		idxSum, count, peak = 0, 0, 0
	}

	for i, p := range power {
		if p <= threshold {
			continue
		}
		if i-last > eventGap {
			flush()
		}
		idxSum += i
		count++
		if p > peak {
			peak = p
		}
		last = i
	}
	flush()
	return events
}

// waveletTransform runs the full wavelet lens: CWT, magnitude map, and
// transient detection over the scale-summed power trace. Fourier methods
// average away *when* a component appears; this lens exists to localize
// it.
func waveletTransform(values []float64, name string) (TimeFrequencyResult, error) {
	mother, err := lookupWavelet(name)
	if err != nil {
		return TimeFrequencyResult{}, err
	}
	if name == "" {
		name = "morlet"
	}

	n := len(values)
	centered := make([]float64, n)
	mean := stat.Mean(values, nil)
	for i, x := range values {
		centered[i] = x - mean
	}

	scales := waveletScales(n)
	coeffs := cwt(centered, scales, mother)

	magnitude := make([][]float64, len(scales))
	power := make([]float64, n)
	for si := range coeffs {
		row := make([]float64, n)
		for b, c := range coeffs[si] {
			m := math.Hypot(real(c), imag(c))
			row[b] = m
			power[b] += m * m
		}
		magnitude[si] = row
	}

	return TimeFrequencyResult{
		Scales:    scales,
		Magnitude: magnitude,
		Events:    detectTransients(power),
		Wavelet:   name,
	}, nil
}
