package biosim

import "math"

// State is the model state vector.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// System is a continuous-time model of a cellular process.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Default parameters describe a cell with a circadian-driven energy
// budget: ATP relaxes toward its baseline while a daily forcing term
// pushes it around.
const (
	DefaultBaseline      = 100.0
	DefaultForcingAmp    = 20.0
	DefaultForcingPeriod = 24.0
	DefaultRelaxation    = 0.4
	DefaultRecovery      = 0.05
)

// ATPOscillator models ATP concentration as a damped second-order
// process under periodic metabolic forcing. State is [concentration,
// rate of change].
type ATPOscillator struct {
	Baseline      float64
	ForcingAmp    float64
	ForcingPeriod float64

	// Relaxation damps excursions; Recovery pulls concentration back
	// toward baseline.
	Relaxation float64
	Recovery   float64
}

func NewATPOscillator() *ATPOscillator {
	return &ATPOscillator{
		Baseline:      DefaultBaseline,
		ForcingAmp:    DefaultForcingAmp,
		ForcingPeriod: DefaultForcingPeriod,
		Relaxation:    DefaultRelaxation,
		Recovery:      DefaultRecovery,
	}
}

func (m *ATPOscillator) StateDim() int { return 2 }

func (m *ATPOscillator) Derive(x State, t float64) State {
	c, v := x[0], x[1]
	forcing := 0.0
	if m.ForcingPeriod > 0 {
		omega := 2 * math.Pi / m.ForcingPeriod
		// Drive scaled so the steady-state response amplitude equals
		// ForcingAmp at the forcing frequency.
		gain := math.Hypot(m.Recovery-omega*omega, m.Relaxation*omega)
		forcing = m.ForcingAmp * gain * math.Cos(omega*t)
	}
	return State{
		v,
		-m.Relaxation*v - m.Recovery*(c-m.Baseline) + forcing,
	}
}
