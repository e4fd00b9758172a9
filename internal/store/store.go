// Package store persists bench runs: a metadata.json with the run summary
// and a frames.csv with one row per animate call.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
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

// Frame is one animate call as measured by a host.
type Frame struct {
	Timestamp float64 `json:"timestamp"`
	Delta     float64 `json:"delta"`
	WallMs    float64 `json:"wallMs"`
	Energy    float64 `json:"energy"`
	Lines     int     `json:"lines"`
}

var frameHeader = []string{"frame", "timestamp", "delta", "wall_ms", "energy", "lines"}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Geometry   string             `json:"geometry"`
	Preset     string             `json:"preset"`
	Mode       string             `json:"mode"`
	Particles  int                `json:"particles"`
	Integrator string             `json:"integrator"`
	FPS        float64            `json:"fps"`
	Frames     int                `json:"frames"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Run is a complete bench run.
type Run struct {
	RunMetadata
	Samples []Frame `json:"samples"`
}

// Save writes a run under a new directory and returns its ID.
func (s *Store) Save(run *Run) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", run.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := run.RunMetadata
	meta.ID = runID
	meta.Timestamp = now
	meta.Frames = len(run.Samples)

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, run.Samples); err != nil {
		return "", err
	}
	return runID, nil
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
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
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

func (s *Store) LoadFrames(runID string) ([]Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Frame{}, nil
	}

	frames := make([]Frame, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(frameHeader) {
			continue
		}
		var f Frame
		var perr error
		parse := func(s string) float64 {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil && perr == nil {
				perr = err
			}
			return v
		}
		f.Timestamp = parse(rec[1])
		f.Delta = parse(rec[2])
		f.WallMs = parse(rec[3])
		f.Energy = parse(rec[4])
		f.Lines = int(parse(rec[5]))
		if perr != nil {
			continue
		}
		frames = append(frames, f)
	}
	return frames, nil
}
