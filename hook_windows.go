//go:build windows

package main

import (
	"fmt"
	"syscall"
	"unsafe"
)

var (
	user32   = syscall.NewLazyDLL("user32.dll")
	kernel32 = syscall.NewLazyDLL("kernel32.dll")

	setWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	unhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	callNextHookEx      = user32.NewProc("CallNextHookEx")

	getMessageW      = user32.NewProc("GetMessageW")
	translateMessage = user32.NewProc("TranslateMessage")
	dispatchMessageW = user32.NewProc("DispatchMessageW")
	postMessageW     = user32.NewProc("PostMessageW")
	postQuitMessage  = user32.NewProc("PostQuitMessage")

	defWindowProcW   = user32.NewProc("DefWindowProcW")
	registerClassExW = user32.NewProc("RegisterClassExW")
	createWindowExW  = user32.NewProc("CreateWindowExW")
	destroyWindow    = user32.NewProc("DestroyWindow")

	getModuleHandleW = kernel32.NewProc("GetModuleHandleW")
)

const (
	WH_KEYBOARD_LL = 13

	WM_KEYDOWN    = 0x0100
	WM_KEYUP      = 0x0101
	WM_SYSKEYDOWN = 0x0104
	WM_SYSKEYUP   = 0x0105
)

const HWND_MESSAGE uintptr = ^uintptr(2) // 0xFFFFFFFFFFFFFFFD

const WM_APP = 0x8000
const WM_APP_RELOAD = WM_APP + 1
const WM_APP_QUIT = WM_APP + 2

type MSG struct {
	HWnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

type WNDCLASSEX struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   syscall.Handle
	Icon       syscall.Handle
	Cursor     syscall.Handle
	Background syscall.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     syscall.Handle
}

// KBDLLHOOKSTRUCT is the event record delivered with every WH_KEYBOARD_LL
// callback. Layout must match winuser.h.
type KBDLLHOOKSTRUCT struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

// Reached from the hook callback, which gets no closure context. Written once
// before the hook is installed, read only on the hook thread afterwards.
var hookDisp *dispatcher

// keyHookProc is the system-wide keyboard hook callback. It runs on the
// thread that installed the hook, one event at a time. Returning 1 swallows
// the event; anything else must be forwarded down the hook chain.
func keyHookProc(nCode int, wParam, lParam uintptr) uintptr {
	// Negative codes are a pass-through contract of the hook mechanism:
	// forward without looking at the event.
	if int32(nCode) < 0 {
		r, _, _ := callNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
		return r
	}

	k := (*KBDLLHOOKSTRUCT)(unsafe.Pointer(lParam))
	keyUp := wParam == WM_KEYUP || wParam == WM_SYSKEYUP

	if hookDisp.onKeyEvent(k.VkCode, keyUp) {
		debugf("Swallowed chord key-down (vk=0x%X)", k.VkCode)
		return 1
	}

	r, _, _ := callNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return r
}

// installKeyHook installs the low-level keyboard hook and publishes its
// handle in the shared state. Must be called from the thread that will run
// the message loop.
func installKeyHook(state *sharedState, d *dispatcher) error {
	hookDisp = d

	proc := syscall.NewCallback(keyHookProc)
	h, _, err := setWindowsHookExW.Call(WH_KEYBOARD_LL, proc, 0, 0)
	if h == 0 {
		return fmt.Errorf("SetWindowsHookEx: %w", err)
	}
	state.setHookHandle(h)
	logger.Println("Keyboard hook installed")
	return nil
}

// removeKeyHook removes the hook if one is installed. Idempotent: a second
// call finds a zero handle and only logs. In-flight callbacks may still be
// delivered briefly after removal; the OS does not drain synchronously.
func removeKeyHook(state *sharedState) {
	h := state.swapHookHandle(0)
	if h == 0 {
		logger.Println("No keyboard hook installed, nothing to remove")
		return
	}
	r, _, err := unhookWindowsHookEx.Call(h)
	if r == 0 {
		logger.Printf("UnhookWindowsHookEx: %v", err)
		return
	}
	logger.Println("Keyboard hook removed")
}

// wndProc handles window messages for the hidden message-only window.
func wndProc(hwnd syscall.Handle, msg uint32, wparam, lparam uintptr) uintptr {
	switch msg {
	case WM_APP_RELOAD:
		if err := reloadSettings(); err != nil {
			logger.Printf("Failed to reload settings %s: %v", settingsPath, err)
		}
	case WM_APP_QUIT:
		postQuitMessage.Call(0) //nolint:errcheck
		return 0
	default:
		r, _, _ := defWindowProcW.Call(uintptr(hwnd), uintptr(msg), wparam, lparam)
		return r
	}
	return 0
}

// createHiddenWindow creates a message-only window registered with className.
// The window owns reload/quit signalling for the hook thread.
//
// Parameters:
//   - className: Window class name to register and instantiate.
//
// Returns:
//   - uintptr: Handle to the created window.
//   - error: Non-nil if the class cannot be registered or the window cannot be created.
func createHiddenWindow(className string) (uintptr, error) {
	classNamePtr, err := syscall.UTF16PtrFromString(className)
	if err != nil {
		return 0, err
	}

	instance, _, err := getModuleHandleW.Call(0)
	if instance == 0 {
		return 0, err
	}

	wc := WNDCLASSEX{
		Size:      uint32(unsafe.Sizeof(WNDCLASSEX{})),
		WndProc:   syscall.NewCallback(wndProc),
		Instance:  syscall.Handle(instance),
		ClassName: classNamePtr,
	}
	atom, _, err := registerClassExW.Call(uintptr(unsafe.Pointer(&wc)))
	if atom == 0 {
		return 0, err
	}

	hwnd, _, lastErr := createWindowExW.Call(
		0, uintptr(atom), 0, 0, 0, 0, 0, 0,
		HWND_MESSAGE,
		0, instance, 0,
	)
	if hwnd == 0 {
		return 0, lastErr
	}
	return hwnd, nil
}

// messageLoop pumps messages until WM_QUIT. The low-level hook needs a
// message loop on its installing thread to get callbacks at all.
func messageLoop() {
	var msg MSG
	for {
		r, _, _ := getMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		if int32(r) == 0 {
			break
		}
		if int32(r) == -1 {
			logger.Printf("GetMessage error: %v", syscall.GetLastError())
			continue
		}
		translateMessage.Call(uintptr(unsafe.Pointer(&msg))) //nolint:errcheck
		dispatchMessageW.Call(uintptr(unsafe.Pointer(&msg))) //nolint:errcheck
	}
}
