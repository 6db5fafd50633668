package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/biolens/internal/analysis"
	"github.com/san-kum/biolens/internal/biosim"
	"github.com/san-kum/biolens/internal/config"
	"github.com/san-kum/biolens/internal/monitor"
	"github.com/san-kum/biolens/internal/storage"
	"github.com/san-kum/biolens/internal/sweep"
)

var (
	dataDir    string
	configFile string
	preset     string
	csvFile    string

	sampleRate  float64
	duration    float64
	noiseSigma  float64
	jitter      float64
	stressAt    float64
	stressMag   float64
	seed        int64
	waveletName string
	cutoff      float64
	filterOrder int
	advanced    bool

	sweepNoise  []float64
	sweepJitter []float64
	sweepRuns   int

	logger *zap.Logger
)

func main() {
	var err error
	logger, err = zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	rootCmd := &cobra.Command{
		Use:   "biolens",
		Short: "multi-lens analysis of cellular telemetry",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".biolens", "data directory")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "simulate a telemetry series, analyze it, and store the run",
		RunE:  runGenerate,
	}
	generateCmd.Flags().StringVar(&preset, "preset", "", "scenario preset")
	generateCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	generateCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	generateCmd.Flags().Float64Var(&sampleRate, "rate", config.DefaultSampleRate, "sample rate")
	generateCmd.Flags().Float64Var(&noiseSigma, "noise", config.DefaultNoiseSigma, "measurement noise sigma")
	generateCmd.Flags().Float64Var(&jitter, "jitter", 0, "timestamp jitter (irregular sampling)")
	generateCmd.Flags().Float64Var(&stressAt, "stress-at", 0, "inject acute stress at this time")
	generateCmd.Flags().Float64Var(&stressMag, "stress-mag", 50, "stress drawdown magnitude")
	generateCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	validateCmd := &cobra.Command{
		Use:   "validate [run_id]",
		Short: "run pre-flight quality checks on a series",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runValidate,
	}
	validateCmd.Flags().StringVar(&csvFile, "csv", "", "read series from a time,value CSV file")
	validateCmd.Flags().Float64Var(&sampleRate, "rate", config.DefaultSampleRate, "sample rate")
	validateCmd.Flags().BoolVar(&advanced, "advanced", false, "include the stationarity check")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "run all four lenses on a series",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().StringVar(&csvFile, "csv", "", "read series from a time,value CSV file")
	analyzeCmd.Flags().Float64Var(&sampleRate, "rate", config.DefaultSampleRate, "sample rate")
	analyzeCmd.Flags().StringVar(&waveletName, "wavelet", config.DefaultWavelet, "mother wavelet (morlet, ricker)")
	analyzeCmd.Flags().Float64Var(&cutoff, "cutoff", 0, "filter cutoff (0 selects nyquist/4)")
	analyzeCmd.Flags().IntVar(&filterOrder, "order", config.DefaultFilterOrder, "filter order (positive even)")

	consensusCmd := &cobra.Command{
		Use:   "consensus [run_id]",
		Short: "cross-validate the dominant period with independent estimators",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConsensus,
	}
	consensusCmd.Flags().StringVar(&csvFile, "csv", "", "read series from a time,value CSV file")
	consensusCmd.Flags().Float64Var(&sampleRate, "rate", config.DefaultSampleRate, "sample rate")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored series and its power spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlot,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  runList,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "live monitor with rolling analysis",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&preset, "preset", "", "scenario preset")
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().Float64Var(&noiseSigma, "noise", config.DefaultNoiseSigma, "measurement noise sigma")
	liveCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "replay a scenario across noise and jitter levels in parallel",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&preset, "preset", "", "scenario preset")
	sweepCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	sweepCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	sweepCmd.Flags().Float64SliceVar(&sweepNoise, "noise", []float64{0, 2, 5, 10}, "noise sigmas to sweep")
	sweepCmd.Flags().Float64SliceVar(&sweepJitter, "jitter", []float64{0}, "timestamp jitters to sweep")
	sweepCmd.Flags().IntVar(&sweepRuns, "runs", 3, "seeds per grid cell")
	sweepCmd.Flags().Int64Var(&seed, "seed", 1, "first seed")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scenario presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets()
			sort.Strings(names)
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(generateCmd, validateCmd, analyzeCmd, consensusCmd, plotCmd, listCmd, liveCmd, sweepCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadScenario resolves preset, then config file, then CLI flags, each
// layer overriding the previous one.
func loadScenario(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("time") {
		cfg.Sim.Duration = duration
	}
	if cmd.Flags().Changed("rate") {
		cfg.Analysis.SampleRate = sampleRate
	}
	if cmd.Flags().Changed("noise") {
		cfg.Sim.NoiseSigma = noiseSigma
	}
	if cmd.Flags().Changed("jitter") {
		cfg.Sim.Jitter = jitter
	}
	if cmd.Flags().Changed("stress-at") {
		cfg.Sim.StressAt = stressAt
	}
	if cmd.Flags().Changed("stress-mag") {
		cfg.Sim.StressMagnitude = stressMag
	}
	if cmd.Flags().Changed("seed") || cfg.Sim.Seed == 0 {
		cfg.Sim.Seed = seed
	}
	return cfg, nil
}

func newSystem(cfg *config.Config) *biosim.ATPOscillator {
	sys := biosim.NewATPOscillator()
	if cfg.Sim.Baseline != 0 {
		sys.Baseline = cfg.Sim.Baseline
	}
	if cfg.Sim.ForcingAmp != 0 {
		sys.ForcingAmp = cfg.Sim.ForcingAmp
	}
	if cfg.Sim.ForcingPeriod != 0 {
		sys.ForcingPeriod = cfg.Sim.ForcingPeriod
	}
	if cfg.Sim.Relaxation != 0 {
		sys.Relaxation = cfg.Sim.Relaxation
	}
	if cfg.Sim.Recovery != 0 {
		sys.Recovery = cfg.Sim.Recovery
	}
	return sys
}

func newAnalyzer(rate float64) (*analysis.Analyzer, error) {
	a, err := analysis.NewAnalyzer(rate)
	if err != nil {
		return nil, err
	}
	if waveletName != "" {
		a.Wavelet = waveletName
	}
	if cutoff > 0 {
		a.FilterCutoff = cutoff
	}
	if filterOrder > 0 {
		a.FilterOrder = filterOrder
	}
	return a, nil
}

// loadInput reads the series either from a CSV file or from a stored
// run. It returns the sample rate recorded with the run when one exists.
func loadInput(args []string, rate float64) (times, values []float64, actualRate float64, source string, err error) {
	if csvFile != "" {
		times, values, err = storage.ReadSeriesCSV(csvFile)
		return times, values, rate, "csv", err
	}
	if len(args) == 0 {
		return nil, nil, 0, "", fmt.Errorf("provide a run id or --csv file")
	}

	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return nil, nil, 0, "", err
	}
	times, values, err = st.LoadSeries(args[0])
	if err != nil {
		return nil, nil, 0, "", err
	}
	return times, values, meta.SampleRate, meta.Source, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}

	sys := newSystem(cfg)
	opts := biosim.Options{
		Duration:        cfg.Sim.Duration,
		SampleRate:      cfg.Analysis.SampleRate,
		Dt:              cfg.Sim.Dt,
		NoiseSigma:      cfg.Sim.NoiseSigma,
		Jitter:          cfg.Sim.Jitter,
		StressAt:        cfg.Sim.StressAt,
		StressMagnitude: cfg.Sim.StressMagnitude,
		Seed:            cfg.Sim.Seed,
	}

	fmt.Println("simulating telemetry...")
	series := biosim.Generate(sys, opts)

	a, err := newAnalyzer(cfg.Analysis.SampleRate)
	if err != nil {
		return err
	}
	a.Wavelet = cfg.Analysis.Wavelet
	if cfg.Analysis.FilterCutoff > 0 {
		a.FilterCutoff = cfg.Analysis.FilterCutoff
	}
	if cfg.Analysis.FilterOrder > 0 {
		a.FilterOrder = cfg.Analysis.FilterOrder
	}

	bundle, err := a.AnalyzeAll(series.Values, series.Times)
	if err != nil {
		logger.Error("analysis failed", zap.Error(err))
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save("sim", cfg.Analysis.SampleRate, cfg.Sim.Seed, series.Times, series.Values, bundle)
	if err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n\n", len(series.Values))

	graph := asciigraph.Plot(series.Values,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("ATP concentration"),
	)
	fmt.Println(graph)
	fmt.Println()

	printBundle(bundle)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	times, values, rate, _, err := loadInput(args, sampleRate)
	if err != nil {
		return err
	}

	v := analysis.NewValidator(rate)
	v.Advanced = advanced
	report := v.Validate(values, times)

	checks := report.Checks()
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range names {
		status := "PASS"
		if !checks[name] {
			status = "FAIL"
		}
		if name == "needs_detrending" {
			status = "ok"
			if checks[name] {
				status = "ADVISORY"
			}
		}
		fmt.Fprintf(w, "%s\t%s\n", name, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !report.AllPassed {
		logger.Warn("validation failed", zap.Strings("checks", report.Failed()))
		return fmt.Errorf("series failed validation")
	}
	fmt.Println("\nall checks passed")
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	times, values, rate, source, err := loadInput(args, sampleRate)
	if err != nil {
		return err
	}

	a, err := newAnalyzer(rate)
	if err != nil {
		return err
	}

	bundle, err := a.AnalyzeAll(values, times)
	if err != nil {
		logger.Error("analysis failed", zap.Error(err))
		return err
	}

	// CSV input gets persisted as a run so later commands can refer to it.
	if csvFile != "" {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(source, rate, 0, times, values, bundle)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n\n", runID)
	}

	printBundle(bundle)
	return nil
}

func runConsensus(cmd *cobra.Command, args []string) error {
	times, values, rate, _, err := loadInput(args, sampleRate)
	if err != nil {
		return err
	}

	a, err := analysis.NewAnalyzer(rate)
	if err != nil {
		return err
	}
	res, err := a.Consensus(values, times)
	if err != nil {
		logger.Error("consensus failed", zap.Error(err))
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ESTIMATOR\tPERIOD\tWEIGHT")
	for _, e := range res.Estimates {
		period := "-"
		if e.Finite {
			period = fmt.Sprintf("%.3f", e.Period)
		}
		fmt.Fprintf(w, "%s\t%s\t%.1f\n", e.Name, period, e.Weight)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nconsensus period: %.3f\n", res.ConsensusPeriod)
	fmt.Printf("agreement score:  %.3f\n", res.AgreementScore)
	if res.Reliable {
		fmt.Println("verdict: reliable")
	} else {
		fmt.Println("verdict: unreliable (estimators disagree or too few resolved a period)")
	}
	return nil
}

func runPlot(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	times, values, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("source: %s, samples: %d\n\n", meta.Source, len(values))

	graph := asciigraph.Plot(values,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("signal"),
	)
	fmt.Println(graph)
	fmt.Println()

	a, err := analysis.NewAnalyzer(meta.SampleRate)
	if err != nil {
		return err
	}
	spectral, err := a.FourierLens(values, times)
	if err != nil {
		logger.Error("spectral lens failed", zap.Error(err))
		return err
	}

	graph = asciigraph.Plot(spectral.Power,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s)", spectral.Method)),
	)
	fmt.Println(graph)
	fmt.Println()

	printSpectral(spectral)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tSAMPLES\tRATE\tPERIOD\tSTABILITY")
	for _, run := range runs {
		period := "-"
		if run.DominantPeriod > 0 && !math.IsInf(run.DominantPeriod, 0) {
			period = fmt.Sprintf("%.2f", run.DominantPeriod)
		}
		stability := run.Stability
		if stability == "" {
			stability = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%s\t%s\n",
			run.ID,
			run.Source,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Samples,
			run.SampleRate,
			period,
			stability,
		)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	sys := newSystem(cfg)

	base := biosim.Options{
		Duration:   cfg.Sim.Duration,
		SampleRate: cfg.Analysis.SampleRate,
		Dt:         cfg.Sim.Dt,
	}
	e := sweep.NewEnsemble(sys, base, sweepNoise, sweepJitter, sweepRuns, seed)

	fmt.Printf("sweeping %d noise x %d jitter x %d runs...\n\n",
		len(sweepNoise), len(sweepJitter), sweepRuns)

	points, err := e.Run(cmd.Context())
	if err != nil {
		logger.Error("sweep failed", zap.Error(err))
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NOISE\tJITTER\tSEED\tPERIOD\tERROR\tAGREEMENT\tRELIABLE\tSTABILITY")
	for _, p := range points {
		period, errStr := "-", "-"
		if !math.IsNaN(p.RecoveredPeriod) {
			period = fmt.Sprintf("%.2f", p.RecoveredPeriod)
		}
		if !math.IsNaN(p.AbsError) {
			errStr = fmt.Sprintf("%.2f", p.AbsError)
		}
		fmt.Fprintf(w, "%.1f\t%.2f\t%d\t%s\t%s\t%.3f\t%v\t%s\n",
			p.NoiseSigma, p.Jitter, p.Seed, period, errStr, p.Agreement, p.Reliable, p.Stability)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	sys := newSystem(cfg)
	a, err := analysis.NewAnalyzer(cfg.Analysis.SampleRate)
	if err != nil {
		return err
	}
	return monitor.Run(sys, a, cfg.Sim.NoiseSigma, cfg.Sim.Seed)
}

func printBundle(b *analysis.Bundle) {
	printSpectral(b.Spectral)

	fmt.Println("\ntime-frequency (wavelet):")
	fmt.Printf("  wavelet: %s, scales: %d\n", b.TimeFrequency.Wavelet, len(b.TimeFrequency.Scales))
	if len(b.TimeFrequency.Events) == 0 {
		fmt.Println("  no transient events")
	} else {
		for _, ev := range b.TimeFrequency.Events {
			fmt.Printf("  transient at sample %d (intensity %.2f)\n", ev.TimeIndex, ev.Intensity)
		}
	}

	fmt.Println("\nstability (laplace):")
	if b.Stability.Degenerate {
		logger.Warn("stability estimate degenerate, no resonant peak above the noise floor")
	}
	fmt.Printf("  class: %s\n", b.Stability.Stability)
	fmt.Printf("  natural frequency: %.4f, damping ratio: %.4f\n",
		b.Stability.NaturalFrequency, b.Stability.DampingRatio)
	fmt.Printf("  poles: %.4f%+.4fi, %.4f%+.4fi\n",
		b.Stability.PoleReal[0], b.Stability.PoleImag[0],
		b.Stability.PoleReal[1], b.Stability.PoleImag[1])

	fmt.Println("\nfilter (z-transform):")
	if b.Filter.Degenerate {
		logger.Warn("noise reduction undefined, input variance is zero")
	}
	fmt.Printf("  cutoff: %.4f, order: %d\n", b.Filter.CutoffFrequency, b.Filter.Order)
	fmt.Printf("  noise reduction: %.1f%%\n", b.Filter.NoiseReductionPercent)
}

func printSpectral(s analysis.SpectralResult) {
	fmt.Printf("spectral (%s):\n", s.Method)
	if s.Degenerate {
		logger.Warn("no dominant frequency resolved", zap.String("method", s.Method))
		fmt.Println("  no dominant period")
		return
	}
	fmt.Printf("  dominant frequency: %.5f\n", s.DominantFrequency)
	fmt.Printf("  dominant period: %.3f\n", s.DominantPeriod)
	if !math.IsNaN(s.Significance) {
		fmt.Printf("  significance: %.3f\n", s.Significance)
	}
}
