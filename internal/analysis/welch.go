package analysis

import (
	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/stat"
)

// welchPSD estimates the power spectral density with Welch's method:
// Hann-windowed segments at 50% overlap, periodograms averaged. Returns
// one-sided frequency and density axes, DC bin included.
func welchPSD(values []float64, sampleRate float64, segLen int) ([]float64, []float64) {
	n := len(values)
	if segLen <= 0 || segLen > n {
		segLen = n
	}
	step := segLen / 2
	if step < 1 {
		step = 1
	}

	mean := stat.Mean(values, nil)

	// window.Hann scales in place, so feed it a slice of ones to get
	// the raw coefficients.
	win := make([]float64, segLen)
	for i := range win {
		win[i] = 1
	}
	win = window.Hann(win)
	var winPower float64
	for _, w := range win {
		winPower += w * w
	}

	half := segLen/2 + 1
	psd := make([]float64, half)
	segments := 0

	buf := make([]float64, segLen)
	for start := 0; start+segLen <= n; start += step {
		for i := 0; i < segLen; i++ {
			buf[i] = (values[start+i] - mean) * win[i]
		}
		spectrum := fft.FFTReal(buf)
		for k := 0; k < half; k++ {
			re := real(spectrum[k])
			im := imag(spectrum[k])
			p := (re*re + im*im) / (sampleRate * winPower)
			if k > 0 && k < segLen/2 {
				p *= 2 // fold negative frequencies
			}
			psd[k] += p
		}
		segments++
	}
	if segments == 0 {
		return nil, nil
	}

	freqs := make([]float64, half)
	for k := 0; k < half; k++ {
		freqs[k] = float64(k) * sampleRate / float64(segLen)
		psd[k] /= float64(segments)
	}
	return freqs, psd
}
