package capture

import "testing"

func TestSetAndShellSymmetric(t *testing.T) {
	m := NewMap()
	m.Set(3, 1, 2)

	shell, ok := m.Shell(1, 3)
	if !ok || shell != 2 {
		t.Fatalf("got shell=%d ok=%v, want 2 true (order-independent lookup)", shell, ok)
	}
}

func TestClearRemovesRecord(t *testing.T) {
	m := NewMap()
	m.Set(0, 1, 0)
	m.Clear(1, 0)

	if _, ok := m.Shell(0, 1); ok {
		t.Error("expected no capture record after Clear")
	}
}

func TestAgreementWithinTolerance(t *testing.T) {
	m := NewMap()
	m.Set(0, 1, 0)

	if !m.Agreement(0, 1, 1.49, 1.0, 1.5, 0.01) {
		t.Error("distance within tolerance of shell bounds should agree")
	}
	if m.Agreement(0, 1, 5.0, 1.0, 1.5, 0.01) {
		t.Error("distance far outside shell bounds should not agree")
	}
}

func TestAgreementUncapturedAlwaysTrue(t *testing.T) {
	m := NewMap()
	if !m.Agreement(0, 1, 100, 1.0, 1.5, 0.01) {
		t.Error("an uncaptured pair should trivially agree")
	}
}

func TestResyncClearsOnEscape(t *testing.T) {
	m := NewMap()
	m.Set(0, 1, 3)
	m.Resync(0, 1, -1)

	if _, ok := m.Shell(0, 1); ok {
		t.Error("Resync with -1 should clear the capture")
	}
}

func TestClearAllInvolving(t *testing.T) {
	m := NewMap()
	m.Set(0, 1, 0)
	m.Set(0, 2, 1)
	m.Set(1, 2, 2)

	m.ClearAllInvolving(0)

	if _, ok := m.Shell(0, 1); ok {
		t.Error("expected (0,1) cleared")
	}
	if _, ok := m.Shell(0, 2); ok {
		t.Error("expected (0,2) cleared")
	}
	if _, ok := m.Shell(1, 2); !ok {
		t.Error("expected (1,2) to remain, it does not involve particle 0")
	}
}
