package monitor

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/biolens/internal/analysis"
	"github.com/san-kum/biolens/internal/biosim"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// window is how many recent samples the rolling lenses see.
const window = 240

type tickMsg time.Time

// Model is the live telemetry monitor: it advances the simulated cell,
// keeps a rolling sample window, and re-runs the spectral and stability
// lenses as data arrives.
type Model struct {
	sys      *biosim.ATPOscillator
	integ    *biosim.RK4
	analyzer *analysis.Analyzer
	rng      *rand.Rand

	state       biosim.State
	t           float64
	dt          float64
	sampleEvery float64
	noiseSigma  float64

	values []float64

	spectral  analysis.SpectralResult
	stability analysis.StabilityResult
	report    analysis.Report
	analyzed  bool

	paused bool
	width  int
}

func New(sys *biosim.ATPOscillator, a *analysis.Analyzer, noiseSigma float64, seed int64) Model {
	state := make(biosim.State, sys.StateDim())
	state[0] = sys.Baseline
	return Model{
		sys:         sys,
		integ:       biosim.NewRK4(),
		analyzer:    a,
		rng:         rand.New(rand.NewSource(seed)),
		state:       state,
		dt:          0.05,
		sampleEvery: 1 / a.SampleRate,
		noiseSigma:  noiseSigma,
		width:       80,
	}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "s":
			// Acute stress: knock ATP down hard and watch the
			// wavelet-visible transient ripple through.
			m.state[0] -= 0.5 * m.sys.Baseline
		case "r":
			m.state = make(biosim.State, m.sys.StateDim())
			m.state[0] = m.sys.Baseline
			m.t = 0
			m.values = nil
			m.analyzed = false
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		if !m.paused {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

// step advances one sampling interval and refreshes the rolling lenses.
func (m *Model) step() {
	target := m.t + m.sampleEvery
	for m.t < target {
		m.state = m.integ.Step(m.sys, m.state, m.t, m.dt)
		m.t += m.dt
	}

	v := m.state[0]
	if m.noiseSigma > 0 {
		v += m.rng.NormFloat64() * m.noiseSigma
	}
	m.values = append(m.values, v)
	if len(m.values) > window {
		m.values = m.values[len(m.values)-window:]
	}

	if len(m.values) < analysis.MinSamples {
		return
	}

	m.report = m.analyzer.Validator().Validate(m.values, nil)

	spectral, err := m.analyzer.FourierLens(m.values, nil)
	if err != nil {
		return
	}
	stability, err := m.analyzer.LaplaceLens(m.values)
	if err != nil {
		return
	}
	m.spectral = spectral
	m.stability = stability
	m.analyzed = true
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(cyan.Render("biolens live monitor"))
	b.WriteString(dim.Render(fmt.Sprintf("  t=%.0f  samples=%d", m.t, len(m.values))))
	if m.paused {
		b.WriteString(yellow.Render("  [paused]"))
	}
	b.WriteString("\n\n")

	if len(m.values) > 1 {
		plotWidth := m.width - 12
		if plotWidth < 20 {
			plotWidth = 20
		}
		b.WriteString(asciigraph.Plot(m.values,
			asciigraph.Height(12),
			asciigraph.Width(plotWidth),
			asciigraph.Caption("ATP concentration"),
		))
		b.WriteString("\n\n")
	}

	if m.analyzed {
		period := "none detected"
		if !m.spectral.Degenerate {
			period = fmt.Sprintf("%.1f h", m.spectral.DominantPeriod)
		}
		b.WriteString(fmt.Sprintf("dominant period: %s\n", cyan.Render(period)))
		b.WriteString(fmt.Sprintf("stability:       %s  (zeta=%.3f)\n",
			styleClass(m.stability.Stability), m.stability.DampingRatio))

		if m.report.AllPassed {
			b.WriteString(fmt.Sprintf("validation:      %s\n", green.Render("all checks passed")))
		} else {
			b.WriteString(fmt.Sprintf("validation:      %s\n",
				red.Render("failed: "+strings.Join(m.report.Failed(), ", "))))
		}
		if m.report.NeedsDetrending {
			b.WriteString(yellow.Render("                 advisory: detrending recommended") + "\n")
		}
	} else {
		b.WriteString(dim.Render(fmt.Sprintf("collecting... %d/%d samples before analysis\n",
			len(m.values), analysis.MinSamples)))
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("space pause  s stress  r reset  q quit"))
	b.WriteString("\n")
	return b.String()
}

func styleClass(c analysis.StabilityClass) string {
	switch c {
	case analysis.Stable, analysis.Oscillatory:
		return green.Render(string(c))
	case analysis.MarginallyStable:
		return yellow.Render(string(c))
	default:
		return red.Render(string(c))
	}
}

// Run starts the monitor in the alternate screen.
func Run(sys *biosim.ATPOscillator, a *analysis.Analyzer, noiseSigma float64, seed int64) error {
	p := tea.NewProgram(New(sys, a, noiseSigma, seed), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
