package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/resonance/internal/config"
	"github.com/san-kum/resonance/internal/dynamo"
)

const (
	metadataFile   = "metadata.json"
	fieldsFile     = "fields.csv"
	trajectoryFile = "trajectory.csv"
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
	ID        string             `json:"id"`
	Label     string             `json:"label"`
	Timestamp time.Time          `json:"timestamp"`
	Steps     int                `json:"steps"` // rows written
	Points    int                `json:"points"`
	Dt        float64            `json:"dt"`
	Dx        float64            `json:"dx"`
	Params    dynamo.Params      `json:"params"`
	Config    *config.Config     `json:"config,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

// FieldRecord is one grid cell of one written time row.
type FieldRecord struct {
	Step      int     `csv:"step"`
	Time      float64 `csv:"time"`
	X         float64 `csv:"x"`
	Energy    float64 `csv:"energy"`
	Density   float64 `csv:"density"`
	FreqShift float64 `csv:"freq_shift"`
}

type TrajectoryRecord struct {
	Step     int     `csv:"step"`
	Time     float64 `csv:"time"`
	Position float64 `csv:"position"`
}

// Save writes the rows of st written so far (indices below st.Next(), at
// least row 0) and returns the new run id.
func (s *Store) Save(label string, st *dynamo.State, params dynamo.Params, cfg *config.Config, metrics map[string]float64) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", label, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	rows := max(st.Next(), 1)
	meta := RunMetadata{
		ID:        runID,
		Label:     label,
		Timestamp: now,
		Steps:     rows,
		Points:    st.Grid.Len(),
		Dt:        st.Time.Dt,
		Dx:        st.Grid.Dx,
		Params:    params,
		Config:    cfg,
		Metrics:   metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	if err := writeCSV(filepath.Join(runDir, fieldsFile), FieldRecords(st, rows)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, trajectoryFile), TrajectoryRecords(st, rows)); err != nil {
		return "", err
	}
	return runID, nil
}

// FieldRecords flattens rows [0, rows) of the field histories.
func FieldRecords(st *dynamo.State, rows int) []*FieldRecord {
	records := make([]*FieldRecord, 0, rows*st.Grid.Len())
	for t := 0; t < rows; t++ {
		u, rho, fs := st.Energy.Row(t), st.Density.Row(t), st.FreqShift.Row(t)
		for i, x := range st.Grid.X {
			records = append(records, &FieldRecord{
				Step:      t,
				Time:      st.Time.At(t),
				X:         x,
				Energy:    u[i],
				Density:   rho[i],
				FreqShift: fs[i],
			})
		}
	}
	return records
}

func TrajectoryRecords(st *dynamo.State, rows int) []*TrajectoryRecord {
	records := make([]*TrajectoryRecord, rows)
	for t := range records {
		records[t] = &TrajectoryRecord{Step: t, Time: st.Time.At(t), Position: st.Position[t]}
	}
	return records
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

func writeCSV(path string, records any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return gocsv.MarshalFile(records, f)
}

// List returns the metadata of every run, oldest first. Directories without
// readable metadata are skipped.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadFields(runID string) ([]*FieldRecord, error) {
	var records []*FieldRecord
	if err := readCSV(filepath.Join(s.baseDir, runID, fieldsFile), &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) LoadTrajectory(runID string) ([]*TrajectoryRecord, error) {
	var records []*TrajectoryRecord
	if err := readCSV(filepath.Join(s.baseDir, runID, trajectoryFile), &records); err != nil {
		return nil, err
	}
	return records, nil
}

func readCSV(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.UnmarshalFile(f, out)
}

// Rows regroups field records into per-step slices of length points.
func Rows(records []*FieldRecord, points int, value func(*FieldRecord) float64) [][]float64 {
	if points <= 0 {
		return nil
	}
	rows := make([][]float64, 0, len(records)/points)
	for i := 0; i+points <= len(records); i += points {
		row := make([]float64, points)
		for j := range row {
			row[j] = value(records[i+j])
		}
		rows = append(rows, row)
	}
	return rows
}
