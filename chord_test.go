package main

import "testing"

// memState is an in-process stand-in for the shared listener state.
type memState struct {
	held bool
}

func (m *memState) modifierHeld() bool        { return m.held }
func (m *memState) setModifierHeld(held bool) { m.held = held }

type keyEvent struct {
	vk    uint32
	keyUp bool
}

func down(vk uint32) keyEvent { return keyEvent{vk: vk} }
func up(vk uint32) keyEvent   { return keyEvent{vk: vk, keyUp: true} }

// feed runs a sequence of transitions through a fresh dispatcher and returns
// the launch count, the per-event swallow decisions, and the final state.
func feed(events []keyEvent) (launches int, swallowed []bool, state *memState) {
	state = &memState{}
	d := &dispatcher{
		state:  state,
		launch: func() { launches++ },
	}
	for _, e := range events {
		swallowed = append(swallowed, d.onKeyEvent(e.vk, e.keyUp))
	}
	return launches, swallowed, state
}

func TestDispatcher_ChordSequences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		events       []keyEvent
		wantLaunches int
	}{
		{
			name:         "ctrl down then q down fires",
			events:       []keyEvent{down(vkControl), down('Q')},
			wantLaunches: 1,
		},
		{
			name:         "q alone does not fire",
			events:       []keyEvent{down('Q'), up('Q')},
			wantLaunches: 0,
		},
		{
			name:         "q key-up never fires even with ctrl held",
			events:       []keyEvent{down(vkControl), up('Q')},
			wantLaunches: 0,
		},
		{
			name:         "releasing ctrl disarms",
			events:       []keyEvent{down(vkControl), up(vkControl), down('Q')},
			wantLaunches: 0,
		},
		{
			name: "re-pressing ctrl re-arms",
			events: []keyEvent{
				down(vkControl), down('Q'),
				up(vkControl), down('Q'),
				down(vkControl), down('Q'),
			},
			wantLaunches: 2,
		},
		{
			name:         "key repeat fires per down-event",
			events:       []keyEvent{down(vkControl), down('Q'), down('Q'), down('Q')},
			wantLaunches: 3,
		},
		{
			name:         "left and right control both count",
			events:       []keyEvent{down(vkLControl), down('Q'), up(vkLControl), down(vkRControl), down('Q')},
			wantLaunches: 2,
		},
		{
			name:         "other letters never fire",
			events:       []keyEvent{down(vkControl), down('W'), down('A'), up('W')},
			wantLaunches: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			launches, _, _ := feed(tt.events)
			if launches != tt.wantLaunches {
				t.Fatalf("expected %d launches, got %d", tt.wantLaunches, launches)
			}
		})
	}
}

func TestDispatcher_SwallowsOnlyChordCompletion(t *testing.T) {
	t.Parallel()

	events := []keyEvent{
		down(vkControl), // forwarded
		down('Q'),       // swallowed, chord fires
		up('Q'),         // forwarded
		up(vkControl),   // forwarded
		down('Q'),       // forwarded, ctrl released
	}
	want := []bool{false, true, false, false, false}

	_, swallowed, _ := feed(events)
	for i, w := range want {
		if swallowed[i] != w {
			t.Fatalf("event %d: expected swallowed=%v, got %v", i, w, swallowed[i])
		}
	}
}

// The modifier flag must always equal the most recent modifier transition,
// no matter what else is interleaved.
func TestDispatcher_ModifierTracksLastTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		events   []keyEvent
		wantHeld bool
	}{
		{"never pressed", []keyEvent{down('A'), up('A')}, false},
		{"down", []keyEvent{down(vkControl)}, true},
		{"down then up", []keyEvent{down(vkControl), up(vkControl)}, false},
		{"up down up down", []keyEvent{up(vkControl), down(vkControl), up(vkControl), down(vkControl)}, true},
		{"interleaved letters do not touch it", []keyEvent{down(vkControl), down('Z'), up('Z'), down('Q')}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, state := feed(tt.events)
			if state.held != tt.wantHeld {
				t.Fatalf("expected modifierHeld=%v, got %v", tt.wantHeld, state.held)
			}
		})
	}
}

// A failed launch must not disturb chord detection for later events.
func TestDispatcher_KeepsWorkingAfterFailedLaunch(t *testing.T) {
	t.Parallel()

	state := &memState{}
	calls := 0
	d := &dispatcher{
		state: state,
		// Like launchCompanion, the launch hook deals with failure itself
		// and returns normally.
		launch: func() { calls++ },
	}

	if d.onKeyEvent(vkControl, false) {
		t.Fatalf("modifier down must be forwarded")
	}
	if !d.onKeyEvent('Q', false) {
		t.Fatalf("first chord must be swallowed")
	}
	if !d.onKeyEvent('Q', false) {
		t.Fatalf("chord after failed launch must still be swallowed")
	}
	if calls != 2 {
		t.Fatalf("expected 2 launch attempts, got %d", calls)
	}
	if !state.held {
		t.Fatalf("modifier state corrupted")
	}
}

func TestIsModifierKey(t *testing.T) {
	t.Parallel()

	for _, vk := range []uint32{vkControl, vkLControl, vkRControl} {
		if !isModifierKey(vk) {
			t.Fatalf("0x%X should be a modifier", vk)
		}
	}
	for _, vk := range []uint32{'Q', 'A', 0x10 /* shift */, 0x12 /* alt */} {
		if isModifierKey(vk) {
			t.Fatalf("0x%X should not be a modifier", vk)
		}
	}
}
