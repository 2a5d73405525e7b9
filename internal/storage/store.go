// Package storage persists a run's metadata, event trace, and final
// particle snapshot to disk in the teacher's layout: one directory per
// run under a base directory, a JSON metadata file plus CSV data
// files, so any spreadsheet or the plotting side of a CLI can consume
// them without linking against this module.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/edmd/internal/event"
	"github.com/san-kum/edmd/internal/particle"
	"github.com/san-kum/edmd/internal/sim"
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

// Dir returns the on-disk directory for a run id, letting a caller
// (the CLI's plotting commands) write additional derived artifacts
// next to the files Save produces.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// WriteSeries persists a named (time, value) series as a two-column
// CSV under the run's directory, for ad hoc derived data (an energy
// trace, say) that doesn't belong in the fixed metadata/events/snapshot
// trio Save writes.
func (s *Store) WriteSeries(runID, name string, times, values []float64) error {
	f, err := os.Create(filepath.Join(s.Dir(runID), name+".csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"time", "value"}); err != nil {
		return err
	}
	for i := range times {
		row := []string{
			strconv.FormatFloat(times[i], 'f', 9, 64),
			strconv.FormatFloat(values[i], 'f', 9, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// LoadSeries reads back a series written by WriteSeries.
func (s *Store) LoadSeries(runID, name string) (times, values []float64, err error) {
	f, err := os.Open(filepath.Join(s.Dir(runID), name+".csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, nil
	}
	for _, row := range records[1:] {
		if len(row) < 2 {
			continue
		}
		t, errT := strconv.ParseFloat(row[0], 64)
		v, errV := strconv.ParseFloat(row[1], 64)
		if errT != nil || errV != nil {
			continue
		}
		times = append(times, t)
		values = append(values, v)
	}
	return times, values, nil
}

// RunMetadata records the configuration and outcome of one run.
type RunMetadata struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        uint64             `json:"seed"`
	Ensemble    string             `json:"ensemble"`
	NumParticle int                `json:"num_particles"`
	EndTime     float64            `json:"end_time"`
	Steps       int                `json:"steps"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Recorder subscribes to a Simulation's event stream via OnEvent and
// buffers every fired event as an EventRecord, so a caller can drive
// a run to completion and persist the whole trace in one Save call
// rather than writing a row per callback.
type Recorder struct {
	records []EventRecord
}

// EventRecord is one CSV row of the event trace: the fired event's
// time, kind, and participant ids (B is -1 for single-owner events).
type EventRecord struct {
	Time  float64
	Owner int
	Kind  event.Kind
	A, B  int
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Hook returns a sim.Hook that appends every fired event to the
// recorder's buffer; pass it to Simulation.OnEvent before Run.
func (r *Recorder) Hook() sim.Hook {
	return func(now float64, owner int, ev event.Event) {
		r.records = append(r.records, EventRecord{
			Time: now, Owner: owner, Kind: ev.Kind, A: ev.A, B: ev.B,
		})
	}
}

func (r *Recorder) Records() []EventRecord { return r.records }

// Save writes a completed run's metadata, event trace, and final
// particle snapshot under a fresh timestamped directory in the store's
// base directory, returning the run's id.
func (s *Store) Save(seed uint64, ensemble string, endTime float64, steps int, particles []*particle.Particle, events []EventRecord, metrics map[string]float64) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID: runID, Timestamp: time.Now(), Seed: seed, Ensemble: ensemble,
		NumParticle: len(particles), EndTime: endTime, Steps: steps, Metrics: metrics,
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeEventsCSV(filepath.Join(runDir, "events.csv"), events); err != nil {
		return "", err
	}
	if err := writeSnapshotCSV(filepath.Join(runDir, "snapshot.csv"), particles); err != nil {
		return "", err
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

func writeEventsCSV(path string, events []EventRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "owner", "kind", "a", "b"}); err != nil {
		return err
	}
	for _, r := range events {
		row := []string{
			strconv.FormatFloat(r.Time, 'f', 9, 64),
			strconv.Itoa(r.Owner),
			r.Kind.String(),
			strconv.Itoa(r.A),
			strconv.Itoa(r.B),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeSnapshotCSV(path string, particles []*particle.Particle) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"id", "species", "mass", "diameter", "x", "y", "z", "vx", "vy", "vz"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, p := range particles {
		row := []string{
			strconv.Itoa(p.ID),
			strconv.Itoa(int(p.Species)),
			strconv.FormatFloat(p.Mass, 'f', 6, 64),
			strconv.FormatFloat(p.Diameter, 'f', 6, 64),
			strconv.FormatFloat(p.Pos.X, 'f', 9, 64),
			strconv.FormatFloat(p.Pos.Y, 'f', 9, 64),
			strconv.FormatFloat(p.Pos.Z, 'f', 9, 64),
			strconv.FormatFloat(p.Vel.X, 'f', 9, 64),
			strconv.FormatFloat(p.Vel.Y, 'f', 9, 64),
			strconv.FormatFloat(p.Vel.Z, 'f', 9, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
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
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadEvents reads back a run's full event trace.
func (s *Store) LoadEvents(runID string) ([]EventRecord, error) {
	path := filepath.Join(s.baseDir, runID, "events.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}

	out := make([]EventRecord, 0, len(records)-1)
	for _, row := range records[1:] {
		if len(row) < 5 {
			continue
		}
		t, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			continue
		}
		owner, _ := strconv.Atoi(row[1])
		a, _ := strconv.Atoi(row[3])
		b, _ := strconv.Atoi(row[4])
		out = append(out, EventRecord{Time: t, Owner: owner, Kind: parseKind(row[2]), A: a, B: b})
	}
	return out, nil
}

func parseKind(s string) event.Kind {
	for k := event.PairInteraction; k <= event.Recalculate; k++ {
		if k.String() == s {
			return k
		}
	}
	return event.PairInteraction
}
