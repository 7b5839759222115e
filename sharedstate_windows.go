//go:build windows

package main

import (
	"fmt"
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Every listener instance in the session maps the same named section, so the
// modifier flag and the hook handle have exactly one copy no matter how many
// instances observe key transitions. A per-process flag would lose the chord
// whenever down and up transitions land in different instances.
const sharedSectionName = `Local\dn-hotkey-state`

// Section layout, fixed: hook handle at offset 0, modifier flag at offset 8.
const (
	sharedHookHandleOff = 0
	sharedModifierOff   = 8
	sharedSectionSize   = 16
)

// sharedState is the cross-instance listener state, backed by a pagefile
// section. All field access goes through atomics: two instances may handle
// overlapping transitions on their own hook threads.
type sharedState struct {
	mapping windows.Handle
	view    uintptr
}

// openSharedState creates or opens the named section and maps it into this
// process. Opening an existing section is the normal case for a second
// instance; the section is zero-initialized by the kernel on first creation.
func openSharedState() (*sharedState, error) {
	namePtr, err := syscall.UTF16PtrFromString(sharedSectionName)
	if err != nil {
		return nil, fmt.Errorf("section name utf16: %w", err)
	}

	mapping, err := windows.CreateFileMapping(
		windows.InvalidHandle, // pagefile-backed
		nil,
		windows.PAGE_READWRITE,
		0,
		sharedSectionSize,
		namePtr,
	)
	// x/sys reports ERROR_ALREADY_EXISTS alongside a valid handle; for us
	// that is the normal second-instance case, not a failure.
	if err != nil && err != windows.ERROR_ALREADY_EXISTS {
		return nil, fmt.Errorf("CreateFileMapping %s: %w", sharedSectionName, err)
	}

	view, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, 0, 0)
	if err != nil {
		windows.CloseHandle(mapping) //nolint:errcheck
		return nil, fmt.Errorf("MapViewOfFile %s: %w", sharedSectionName, err)
	}

	return &sharedState{mapping: mapping, view: view}, nil
}

// close unmaps the section view. The section itself lives on while any other
// instance still has it mapped. Safe to call more than once.
func (s *sharedState) close() {
	if s.view != 0 {
		windows.UnmapViewOfFile(s.view) //nolint:errcheck
		s.view = 0
	}
	if s.mapping != 0 {
		windows.CloseHandle(s.mapping) //nolint:errcheck
		s.mapping = 0
	}
}

func (s *sharedState) modifierHeld() bool {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(s.view+sharedModifierOff))) != 0
}

func (s *sharedState) setModifierHeld(held bool) {
	var v uint32
	if held {
		v = 1
	}
	atomic.StoreUint32((*uint32)(unsafe.Pointer(s.view+sharedModifierOff)), v)
}

func (s *sharedState) hookHandle() uintptr {
	return uintptr(atomic.LoadUint64((*uint64)(unsafe.Pointer(s.view + sharedHookHandleOff))))
}

func (s *sharedState) setHookHandle(h uintptr) {
	atomic.StoreUint64((*uint64)(unsafe.Pointer(s.view+sharedHookHandleOff)), uint64(h))
}

// swapHookHandle stores h and returns the previous handle in one atomic step,
// which is what makes hook removal idempotent: only the caller that swaps a
// non-zero handle out actually unhooks.
func (s *sharedState) swapHookHandle(h uintptr) uintptr {
	return uintptr(atomic.SwapUint64((*uint64)(unsafe.Pointer(s.view+sharedHookHandleOff)), uint64(h)))
}
