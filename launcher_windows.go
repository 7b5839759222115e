//go:build windows

package main

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// launchCompanion starts the companion executable next to the listener
// binary, fire-and-forget. Failure is reported to the user in a message box
// with the attempted command line and swallowed here: nothing may propagate
// out of the hook callback, a crashed hook destabilizes the whole chain.
func launchCompanion(baseDir string) {
	cmdLine := buildCommandLine(baseDir, companionName, "")
	logger.Printf("Chord detected, launching: %s", cmdLine)

	if err := startDetached(cmdLine); err != nil {
		logger.Printf("Launch failed: %v", err)
		ipcSendf("launch failed: %s: %v", cmdLine, err)
		notifyLaunchFailure(cmdLine, err)
		return
	}
	ipcSendf("launched %s", cmdLine)
}

// startDetached creates a new process from cmdLine, detached from this one:
// no console window, no inherited console, above-normal priority, and no
// waiting. The returned process and thread handles are closed immediately;
// the listener never tracks or signals its children.
func startDetached(cmdLine string) error {
	cmdPtr, err := syscall.UTF16PtrFromString(cmdLine)
	if err != nil {
		return fmt.Errorf("command line utf16: %w", err)
	}

	// Hand the child current USER/SYSTEM variables from the registry rather
	// than this daemon's snapshot, which may be hours stale. Best effort:
	// fall back to plain inheritance if the registry is unreadable.
	var envPtr *uint16
	if env, err := freshEnvironment(); err == nil {
		if block, err := encodeEnvBlock(env); err == nil {
			envPtr = &block[0]
		}
	} else {
		logger.Printf("Registry environment unavailable, child inherits ours: %v", err)
	}

	var si windows.StartupInfo
	si.Cb = uint32(unsafe.Sizeof(si))

	var pi windows.ProcessInformation
	flags := uint32(windows.CREATE_NO_WINDOW |
		windows.DETACHED_PROCESS |
		windows.ABOVE_NORMAL_PRIORITY_CLASS |
		windows.CREATE_UNICODE_ENVIRONMENT)

	if err := windows.CreateProcess(
		nil,
		cmdPtr,
		nil,
		nil,
		false,
		flags,
		envPtr,
		nil,
		&si,
		&pi,
	); err != nil {
		return fmt.Errorf("CreateProcess: %w", err)
	}

	windows.CloseHandle(pi.Thread)  //nolint:errcheck
	windows.CloseHandle(pi.Process) //nolint:errcheck
	return nil
}

// notifyLaunchFailure shows a synchronous message box naming the command
// line that could not be started.
func notifyLaunchFailure(cmdLine string, launchErr error) {
	text, err := syscall.UTF16PtrFromString(
		fmt.Sprintf("Failed to start:\n\n%s\n\n%v", cmdLine, launchErr))
	if err != nil {
		return
	}
	caption, err := syscall.UTF16PtrFromString("dn-hotkey")
	if err != nil {
		return
	}
	windows.MessageBox(0, text, caption, windows.MB_OK|windows.MB_ICONERROR|windows.MB_SETFOREGROUND) //nolint:errcheck
}
