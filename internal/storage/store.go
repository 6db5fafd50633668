package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/biolens/internal/analysis"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
	SampleRate float64   `json:"sample_rate"`
	Samples    int       `json:"samples"`
	Seed       int64     `json:"seed"`

	DominantPeriod float64 `json:"dominant_period,omitempty"`
	Stability      string  `json:"stability,omitempty"`
}

// Save writes one analysis run: metadata, the raw series, and the full
// lens bundle.
func (s *Store) Save(source string, sampleRate float64, seed int64, times, values []float64, bundle *analysis.Bundle) (string, error) {
	runID := fmt.Sprintf("%s_%d", source, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Source:     source,
		Timestamp:  time.Now(),
		SampleRate: sampleRate,
		Samples:    len(values),
		Seed:       seed,
	}
	if bundle != nil {
		meta.DominantPeriod = bundle.Spectral.DominantPeriod
		meta.Stability = string(bundle.Stability.Stability)
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if bundle != nil {
		if err := writeJSON(filepath.Join(runDir, "results.json"), bundle); err != nil {
			return "", err
		}
	}

	csvFile, err := os.Create(filepath.Join(runDir, "series.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"time", "value"}); err != nil {
		return "", err
	}
	for i, v := range values {
		t := float64(i)
		if i < len(times) {
			t = times[i]
		}
		row := []string{
			strconv.FormatFloat(t, 'f', 6, 64),
			strconv.FormatFloat(v, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSeries reads the stored time/value pairs back for re-analysis.
func (s *Store) LoadSeries(runID string) ([]float64, []float64, error) {
	return ReadSeriesCSV(filepath.Join(s.baseDir, runID, "series.csv"))
}

// ReadSeriesCSV parses a two-column time,value file with a header row.
func ReadSeriesCSV(path string) ([]float64, []float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	times := make([]float64, 0, len(records))
	values := make([]float64, 0, len(records))
	for i, record := range records {
		if len(record) < 2 {
			continue
		}
		t, err1 := strconv.ParseFloat(record[0], 64)
		v, err2 := strconv.ParseFloat(record[1], 64)
		if err1 != nil || err2 != nil {
			if i == 0 {
				continue // header
			}
			return nil, nil, fmt.Errorf("storage: bad row %d in %s", i, path)
		}
		times = append(times, t)
		values = append(values, v)
	}
	return times, values, nil
}
