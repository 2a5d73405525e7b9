package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Particles) == 0 {
		t.Fatal("expected at least one particle species")
	}
	if cfg.EndTime <= 0 {
		t.Error("end time should be positive")
	}
	if cfg.BC.Kind != "Periodic" {
		t.Errorf("expected periodic boundary, got %s", cfg.BC.Kind)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("hard_sphere", "dilute_gas")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Interactions[0].Type != "HardSphere" {
		t.Errorf("expected HardSphere interaction, got %s", cfg.Interactions[0].Type)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("hard_sphere", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "dilute_gas"); cfg != nil {
		t.Error("expected nil for nonexistent family")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("stepped_well")
	if len(presets) == 0 {
		t.Error("expected presets for stepped_well")
	}
	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent family")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	path := filepath.Join(t.TempDir(), "cfg.yaml")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Particles[0].Count != cfg.Particles[0].Count {
		t.Errorf("round trip lost particle count: got %d want %d",
			loaded.Particles[0].Count, cfg.Particles[0].Count)
	}
	if loaded.Ensemble != cfg.Ensemble {
		t.Errorf("round trip lost ensemble: got %s want %s", loaded.Ensemble, cfg.Ensemble)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error loading a nonexistent file")
	}
}

func TestBuildDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	s, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := len(s.Particles()); got != cfg.Particles[0].Count {
		t.Errorf("expected %d particles, got %d", cfg.Particles[0].Count, got)
	}
}

func TestBuildRejectsNoParticleSpecies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Particles = nil
	if _, err := Build(cfg); err == nil {
		t.Error("expected an error building a config with no particle species")
	}
}

func TestBuildRejectsUnknownInteractionType(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Interactions[0].Type = "Nonsense"
	if _, err := Build(cfg); err == nil {
		t.Error("expected an error building a config with an unknown interaction type")
	}
}

func TestBuildRejectsUnknownBoundaryKind(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BC.Kind = "Nonsense"
	if _, err := Build(cfg); err == nil {
		t.Error("expected an error building a config with an unknown boundary kind")
	}
}

func TestBuildUsesCalendarScheduler(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scheduler = SchedulerConfig{Sorter: "Calendar", CalendarBucketWidth: 0.05}
	if _, err := Build(cfg); err != nil {
		t.Fatalf("Build: %v", err)
	}
}

func TestBuildWithoutThermostat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Systems.Thermostat = nil
	if _, err := Build(cfg); err != nil {
		t.Fatalf("Build: %v", err)
	}
}

func TestMain_PresetsLoadUnderDefaultConfigDir(t *testing.T) {
	// Presets are in-memory literals, not files, but Save/Load must still
	// round-trip every preset cleanly since a CLI may persist one to disk
	// before editing it.
	dir := t.TempDir()
	for family, names := range Presets {
		for name := range names {
			cfg := GetPreset(family, name)
			path := filepath.Join(dir, family+"_"+name+".yaml")
			if err := Save(path, cfg); err != nil {
				t.Fatalf("Save(%s/%s): %v", family, name, err)
			}
			if _, err := os.Stat(path); err != nil {
				t.Fatalf("expected %s to exist: %v", path, err)
			}
			if _, err := Build(cfg); err != nil {
				t.Errorf("Build(%s/%s): %v", family, name, err)
			}
		}
	}
}
