//go:build windows

package main

import "testing"

func TestSharedState_RoundTrip(t *testing.T) {
	s, err := openSharedState()
	if err != nil {
		t.Fatalf("openSharedState: %v", err)
	}
	t.Cleanup(s.close)

	s.setModifierHeld(false)
	s.setHookHandle(0)

	if s.modifierHeld() {
		t.Fatalf("expected modifier not held after reset")
	}
	s.setModifierHeld(true)
	if !s.modifierHeld() {
		t.Fatalf("expected modifier held")
	}

	s.setHookHandle(0xBEEF)
	if got := s.hookHandle(); got != 0xBEEF {
		t.Fatalf("hookHandle = %#x, want 0xBEEF", got)
	}
}

// A second mapping of the section must observe values written through the
// first; this is what keeps concurrent listener instances consistent.
func TestSharedState_VisibleAcrossMappings(t *testing.T) {
	a, err := openSharedState()
	if err != nil {
		t.Fatalf("open first mapping: %v", err)
	}
	t.Cleanup(a.close)

	b, err := openSharedState()
	if err != nil {
		t.Fatalf("open second mapping: %v", err)
	}
	t.Cleanup(b.close)

	a.setModifierHeld(true)
	if !b.modifierHeld() {
		t.Fatalf("modifier write not visible through second mapping")
	}
	a.setModifierHeld(false)
	if b.modifierHeld() {
		t.Fatalf("modifier clear not visible through second mapping")
	}
}

func TestSharedState_SwapHookHandleIsIdempotent(t *testing.T) {
	s, err := openSharedState()
	if err != nil {
		t.Fatalf("openSharedState: %v", err)
	}
	t.Cleanup(s.close)

	s.setHookHandle(42)
	if got := s.swapHookHandle(0); got != 42 {
		t.Fatalf("first swap = %d, want 42", got)
	}
	// Second removal finds nothing to do and must not disturb the state.
	if got := s.swapHookHandle(0); got != 0 {
		t.Fatalf("second swap = %d, want 0", got)
	}
	if s.modifierHeld() {
		t.Fatalf("modifier flag corrupted by swap")
	}
}

func TestSharedState_CloseIsIdempotent(t *testing.T) {
	s, err := openSharedState()
	if err != nil {
		t.Fatalf("openSharedState: %v", err)
	}
	s.close()
	s.close()
}
