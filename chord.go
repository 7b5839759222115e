package main

// Windows virtual-key codes relevant to the chord. The low-level keyboard
// hook reports left/right control separately, older hook types report the
// generic VK_CONTROL, so all three count as the modifier.
const (
	vkControl  = 0x11
	vkLControl = 0xA2
	vkRControl = 0xA3

	vkTriggerKey = 'Q'
)

// isModifierKey reports whether vk is one of the control-key codes.
func isModifierKey(vk uint32) bool {
	return vk == vkControl || vk == vkLControl || vk == vkRControl
}

// modifierState is the listener state shared with concurrent listener
// instances. On Windows it is backed by a named file-mapping section so that
// a second instance (or a restarted one) observes the same flag.
type modifierState interface {
	modifierHeld() bool
	setModifierHeld(held bool)
}

// dispatcher turns the raw key-transition stream into companion launches.
// It is driven synchronously from the hook callback, one event after the
// other; launch must handle its own failures and never panic, because
// nothing may escape the hook chain.
type dispatcher struct {
	state  modifierState
	launch func()
}

// onKeyEvent processes a single key transition and reports whether the event
// should be swallowed (kept from the focused application and the rest of the
// hook chain).
//
// Only the chord-completing key-down is swallowed: the trigger key pressed
// while the modifier is held. Modifier transitions and everything else pass
// through unchanged. A key-up of the trigger key never fires, and releasing
// the modifier disarms the chord until the next modifier key-down. Repeated
// key-down events from OS key-repeat each count as a fresh press.
func (d *dispatcher) onKeyEvent(vk uint32, keyUp bool) bool {
	if isModifierKey(vk) {
		d.state.setModifierHeld(!keyUp)
		return false
	}
	if vk == vkTriggerKey && !keyUp && d.state.modifierHeld() {
		d.launch()
		return true
	}
	return false
}
