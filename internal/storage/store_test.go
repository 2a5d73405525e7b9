package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/edmd/internal/event"
	"github.com/san-kum/edmd/internal/particle"
	"github.com/san-kum/edmd/internal/vecmath"
)

func makeParticles() []*particle.Particle {
	a := particle.New(0, 0)
	a.Mass, a.Diameter = 1.0, 1.0
	a.Pos = vecmath.Vec3{X: 1, Y: 2, Z: 3}
	a.Vel = vecmath.Vec3{X: 0.1, Y: 0.2, Z: 0.3}
	b := particle.New(1, 0)
	b.Mass, b.Diameter = 1.0, 1.0
	b.Pos = vecmath.Vec3{X: 4, Y: 5, Z: 6}
	return []*particle.Particle{a, b}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	events := []EventRecord{
		{Time: 0.5, Owner: 0, Kind: event.PairInteraction, A: 0, B: 1},
		{Time: 1.5, Owner: 0, Kind: event.CellCross, A: 0, B: event.NoParticle},
	}
	metrics := map[string]float64{"energy": 1.5}

	runID, err := s.Save(42, "NVE", 10.0, 2, makeParticles(), events, metrics)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	meta, err := s.Load(runID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.NumParticle != 2 || meta.Seed != 42 || meta.Ensemble != "NVE" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Metrics["energy"] != 1.5 {
		t.Errorf("expected energy metric 1.5, got %v", meta.Metrics)
	}

	loadedEvents, err := s.LoadEvents(runID)
	if err != nil {
		t.Fatalf("LoadEvents: %v", err)
	}
	if len(loadedEvents) != 2 {
		t.Fatalf("expected 2 events, got %d", len(loadedEvents))
	}
	if loadedEvents[0].Kind != event.PairInteraction || loadedEvents[1].Kind != event.CellCross {
		t.Errorf("event kinds not preserved: %+v", loadedEvents)
	}

	if _, err := os.Stat(filepath.Join(dir, runID, "snapshot.csv")); err != nil {
		t.Errorf("expected snapshot.csv to exist: %v", err)
	}
}

func TestListSkipsNonRunDirectories(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	s.Init()

	if _, err := s.Save(1, "NVE", 1.0, 0, makeParticles(), nil, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}

	runs, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
}

func TestListOnMissingBaseDirReturnsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "does-not-exist"))
	runs, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestWriteAndLoadSeriesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	s.Init()

	runID, err := s.Save(1, "NVE", 1.0, 0, makeParticles(), nil, nil)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	times := []float64{0, 0.5, 1.0}
	values := []float64{1.0, 1.2, 0.9}
	if err := s.WriteSeries(runID, "energy", times, values); err != nil {
		t.Fatalf("WriteSeries: %v", err)
	}

	gotTimes, gotValues, err := s.LoadSeries(runID, "energy")
	if err != nil {
		t.Fatalf("LoadSeries: %v", err)
	}
	if len(gotTimes) != 3 || len(gotValues) != 3 {
		t.Fatalf("expected 3 points, got %d/%d", len(gotTimes), len(gotValues))
	}
	if gotValues[1] != 1.2 {
		t.Errorf("expected second value 1.2, got %v", gotValues[1])
	}
}

func TestRecorderCapturesHookedEvents(t *testing.T) {
	r := NewRecorder()
	hook := r.Hook()

	hook(1.0, 0, event.Event{Kind: event.PairInteraction, A: 0, B: 1})
	hook(2.0, 2, event.Event{Kind: event.Thermostat, A: event.NoParticle, B: event.NoParticle})

	if len(r.Records()) != 2 {
		t.Fatalf("expected 2 records, got %d", len(r.Records()))
	}
	if r.Records()[1].Kind != event.Thermostat {
		t.Errorf("expected second record to be Thermostat, got %v", r.Records()[1].Kind)
	}
}
