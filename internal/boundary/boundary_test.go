package boundary

import "testing"

func TestSprintGate_Disabled(t *testing.T) {
	g := NewSprintGate(false)
	got := g.Check()
	if got.HTTPCode != 404 {
		t.Errorf("HTTPCode = %d, want 404", got.HTTPCode)
	}
}

func TestSprintGate_EnabledStillUnimplemented(t *testing.T) {
	g := NewSprintGate(true)
	got := g.Check()
	if got.HTTPCode != 501 {
		t.Errorf("HTTPCode = %d, want 501", got.HTTPCode)
	}
}
