package analysis

import (
	"errors"
	"fmt"
)

// Input errors: the caller supplied a series no lens can work with.
var (
	// ErrTooShort indicates fewer samples than the minimum analysis window.
	ErrTooShort = errors.New("analysis: signal too short (need at least 50 samples)")

	// ErrConstantSignal indicates a series with no variance.
	ErrConstantSignal = errors.New("analysis: signal is constant")

	// ErrNonFinite indicates NaN or Inf samples in the series.
	ErrNonFinite = errors.New("analysis: signal contains NaN or Inf")

	// ErrNoTimestamps indicates irregular-sampling analysis was requested
	// without an explicit time axis.
	ErrNoTimestamps = errors.New("analysis: irregular sampling requires timestamps")

	// ErrTimestampOrder indicates a time axis that is not strictly increasing.
	ErrTimestampOrder = errors.New("analysis: timestamps must be strictly increasing")
)

// Configuration errors: rejected eagerly, before any transform runs.
var (
	// ErrSampleRate indicates a non-positive sampling rate.
	ErrSampleRate = errors.New("analysis: sample rate must be positive")

	// ErrCutoff indicates a filter cutoff at or above the Nyquist frequency.
	ErrCutoff = errors.New("analysis: cutoff must lie below the Nyquist frequency")

	// ErrFilterOrder indicates a non-positive or odd filter order.
	ErrFilterOrder = errors.New("analysis: filter order must be a positive even number")

	// ErrWavelet indicates an unknown mother wavelet name.
	ErrWavelet = errors.New("analysis: unknown mother wavelet")
)

// InputError wraps a sentinel input error with the name of the failed
// pre-flight check so callers can report which gate rejected the series.
type InputError struct {
	Check   string
	Wrapped error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s (check: %s)", e.Wrapped.Error(), e.Check)
}

func (e *InputError) Unwrap() error {
	return e.Wrapped
}

func inputErr(check string, sentinel error) error {
	return &InputError{Check: check, Wrapped: sentinel}
}
