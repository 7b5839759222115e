//go:build windows

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// launchAgentInActiveSession starts another instance of this binary inside
// the active interactive user session, where it can install the keyboard
// hook on the user's desktop. pipePath, when non-empty, is handed to the
// agent through its environment so it can report back to the service.
func launchAgentInActiveSession(settings, logPath, pipePath string) (*windows.ProcessInformation, error) {
	sessionID := windows.WTSGetActiveConsoleSessionId()
	if sessionID == 0xFFFFFFFF {
		return nil, errors.New("no active console session")
	}

	exePath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("executable: %w", err)
	}
	exePath, err = filepath.Abs(exePath)
	if err != nil {
		return nil, fmt.Errorf("abs executable: %w", err)
	}

	// CreateProcessAsUser wants a primary token; WTSQueryUserToken yields an
	// impersonation token, so duplicate it.
	var token windows.Token
	if err := windows.WTSQueryUserToken(sessionID, &token); err != nil {
		return nil, fmt.Errorf("WTSQueryUserToken(session=%d): %w", sessionID, err)
	}
	defer token.Close() //nolint:errcheck

	var primary windows.Token
	if err := windows.DuplicateTokenEx(
		token,
		windows.MAXIMUM_ALLOWED,
		nil,
		windows.SecurityIdentification,
		windows.TokenPrimary,
		&primary,
	); err != nil {
		return nil, fmt.Errorf("DuplicateTokenEx: %w", err)
	}
	defer primary.Close() //nolint:errcheck

	// The agent runs with the user's own environment, plus the pipe path.
	env, err := primary.Environ(false)
	if err != nil {
		return nil, fmt.Errorf("token environ: %w", err)
	}
	if pipePath != "" {
		env = append(env, ipcPipeEnvVar+"="+pipePath)
	}
	sort.Strings(env)
	envBlock, err := encodeEnvBlock(env)
	if err != nil {
		return nil, fmt.Errorf("encode env: %w", err)
	}

	cmdLine := syscall.EscapeArg(exePath) + " " + syscall.EscapeArg("--file") + " " + syscall.EscapeArg(settings)
	if logPath != "" {
		cmdLine += " " + syscall.EscapeArg("--log") + " " + syscall.EscapeArg(logPath)
	}
	cmdPtr, err := syscall.UTF16PtrFromString(cmdLine)
	if err != nil {
		return nil, fmt.Errorf("command line utf16: %w", err)
	}
	appPtr, err := syscall.UTF16PtrFromString(exePath)
	if err != nil {
		return nil, fmt.Errorf("app utf16: %w", err)
	}

	// The hook only works attached to the interactive desktop.
	desktopPtr, err := syscall.UTF16PtrFromString("winsta0\\default")
	if err != nil {
		return nil, fmt.Errorf("desktop utf16: %w", err)
	}

	var si windows.StartupInfo
	si.Cb = uint32(unsafe.Sizeof(si))
	si.Desktop = desktopPtr

	var pi windows.ProcessInformation
	flags := uint32(windows.CREATE_UNICODE_ENVIRONMENT | windows.CREATE_NO_WINDOW)
	if err := windows.CreateProcessAsUser(
		primary,
		appPtr,
		cmdPtr,
		nil,
		nil,
		false,
		flags,
		&envBlock[0],
		nil,
		&si,
		&pi,
	); err != nil {
		return nil, fmt.Errorf("CreateProcessAsUser: %w", err)
	}
	return &pi, nil
}
