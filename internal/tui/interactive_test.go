package tui

import "testing"

func TestNewInteractiveAppPopulatesScenariosFromPresets(t *testing.T) {
	m := NewInteractiveApp()
	if len(m.scenarios) == 0 {
		t.Fatal("expected at least one scenario from config.Presets")
	}
	if m.state != stateMenu {
		t.Errorf("expected initial state to be stateMenu, got %v", m.state)
	}
}

func TestStartBuildsAndInitsSimulation(t *testing.T) {
	m := NewInteractiveApp()
	m.selected = m.scenarios[0]

	if err := m.start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if m.sim == nil {
		t.Fatal("expected sim to be set after start")
	}
	if !m.running {
		t.Error("expected running to be true after start")
	}
}

func TestStepAdvancesSimTimeAndHistory(t *testing.T) {
	m := NewInteractiveApp()
	m.selected = m.scenarios[0]
	if err := m.start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	m.step()
	if len(m.history) == 0 {
		t.Error("expected kinetic energy history to grow after a step")
	}
	if m.simTime <= 0 {
		t.Errorf("expected simulation time to advance after a step, got %v", m.simTime)
	}
}

func TestSparklineHandlesEmptyAndFlatData(t *testing.T) {
	m := model{}
	if got := m.sparkline(nil, 10); got != "" {
		t.Errorf("expected empty sparkline for nil data, got %q", got)
	}
	if got := m.sparkline([]float64{1, 1, 1}, 10); len(got) == 0 {
		t.Error("expected non-empty sparkline for flat data")
	}
}
