package storage

import (
	"encoding/json"
	"io"

	"github.com/gocarina/gocsv"
)

type ExportData struct {
	Meta       *RunMetadata        `json:"meta"`
	Times      []float64           `json:"times"`
	Energy     [][]float64         `json:"energy"`
	Density    [][]float64         `json:"density"`
	FreqShift  [][]float64         `json:"freq_shift"`
	Trajectory []*TrajectoryRecord `json:"trajectory"`
}

// ExportJSON writes a run as one JSON document with [step][cell] matrices.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	fields, err := s.LoadFields(runID)
	if err != nil {
		return err
	}
	traj, err := s.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Meta:       meta,
		Times:      make([]float64, len(traj)),
		Energy:     Rows(fields, meta.Points, func(r *FieldRecord) float64 { return r.Energy }),
		Density:    Rows(fields, meta.Points, func(r *FieldRecord) float64 { return r.Density }),
		FreqShift:  Rows(fields, meta.Points, func(r *FieldRecord) float64 { return r.FreqShift }),
		Trajectory: traj,
	}
	for i, r := range traj {
		data.Times[i] = r.Time
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV streams the field records of a run as CSV.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	fields, err := s.LoadFields(runID)
	if err != nil {
		return err
	}
	return gocsv.Marshal(fields, w)
}
