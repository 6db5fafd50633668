package storage

import (
	"math"
	"testing"

	"github.com/san-kum/biolens/internal/analysis"
)

func sampleSeries(n int) ([]float64, []float64) {
	times := make([]float64, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		times[i] = float64(i)
		values[i] = 100 + 20*math.Sin(2*math.Pi*float64(i)/24)
	}
	return times, values
}

func TestSaveAndLoadRun(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	times, values := sampleSeries(100)

	a, err := analysis.NewAnalyzer(1.0)
	if err != nil {
		t.Fatal(err)
	}
	bundle, err := a.AnalyzeAll(values, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	runID, err := st.Save("sim", 1.0, 7, times, values, bundle)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meta.Samples != 100 {
		t.Errorf("expected 100 samples, got %d", meta.Samples)
	}
	if meta.Stability == "" {
		t.Error("expected stability class in metadata")
	}

	gotTimes, gotValues, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series: %v", err)
	}
	if len(gotTimes) != 100 || len(gotValues) != 100 {
		t.Fatalf("round trip lost samples: %d/%d", len(gotTimes), len(gotValues))
	}
	for i := range gotValues {
		if math.Abs(gotValues[i]-values[i]) > 1e-5 {
			t.Fatalf("value %d drifted: %f vs %f", i, gotValues[i], values[i])
		}
	}
}

func TestListEmpty(t *testing.T) {
	st := New(t.TempDir() + "/missing")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestListFindsRuns(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	times, values := sampleSeries(60)
	if _, err := st.Save("csv", 1.0, 0, times, values, nil); err != nil {
		t.Fatalf("save: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Source != "csv" {
		t.Errorf("expected source csv, got %s", runs[0].Source)
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope_123"); err == nil {
		t.Error("expected error for missing run")
	}
}
