// Package store persists simulation runs: a metadata record plus the
// sampled observable series, one JSON directory per run.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/qudyn/qudyn/internal/results"
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
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Dynamics  string    `json:"dynamics"`
	Method    string    `json:"method"`
	Timestamp time.Time `json:"timestamp"`
	Dt        float64   `json:"dt"`
	Duration  float64   `json:"duration"`
	Samples   int       `json:"samples"`
}

type SeriesData struct {
	Times        []float64   `json:"times"`
	Expectations [][]float64 `json:"expectations"`
}

// Save writes one run and returns its ID.
func (s *Store) Save(meta RunMetadata, res *results.Results) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Model, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Samples = res.Samples()
	if err := writeJSON(filepath.Join(runDir, "meta.json"), meta); err != nil {
		return "", err
	}

	data := SeriesData{Times: res.Times, Expectations: res.Expectations}
	if err := writeJSON(filepath.Join(runDir, "series.json"), data); err != nil {
		return "", err
	}
	return runID, nil
}

// List returns metadata for all stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		var meta RunMetadata
		if err := readJSON(filepath.Join(s.baseDir, e.Name(), "meta.json"), &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

// LoadSeries reads the sampled series of one run.
func (s *Store) LoadSeries(runID string) (*SeriesData, error) {
	var data SeriesData
	if err := readJSON(filepath.Join(s.baseDir, runID, "series.json"), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
