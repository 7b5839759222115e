//go:build windows

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/debug"
	"golang.org/x/sys/windows/svc/mgr"
)

const (
	SERVICE_NAME        = "dn-hotkey"
	SERVICE_DISPLAYNAME = "DN Hotkey Listener"
	SERVICE_DESCRIPTION = "System-wide Ctrl+Q listener that launches dn-text-normalize"
)

// A service cannot install a keyboard hook itself: it has no access to the
// interactive desktop (error 1459). It therefore starts an agent instance of
// this binary inside the active console session and reads its events back
// over a named pipe.
type listenerService struct {
	settings string
	logPath  string
}

// Execute is called by the Windows service manager.
func (m *listenerService) Execute(args []string, r <-chan svc.ChangeRequest, s chan<- svc.Status) (bool, uint32) {
	const cmdsAccepted = svc.AcceptStop | svc.AcceptShutdown

	s <- svc.Status{State: svc.StartPending}

	pipePath, stopPipe, err := startIPCServer()
	if err != nil {
		logger.Printf("Agent IPC unavailable: %v", err)
		pipePath = ""
	}

	pi, err := launchAgentInActiveSession(m.settings, m.logPath, pipePath)
	if err != nil {
		logger.Printf("Failed to start session agent: %v", err)
	} else {
		logger.Printf("Session agent started, pid %d", pi.ProcessId)
		windows.CloseHandle(pi.Thread)  //nolint:errcheck
		windows.CloseHandle(pi.Process) //nolint:errcheck
	}

	s <- svc.Status{State: svc.Running, Accepts: cmdsAccepted}

loop:
	for c := range r {
		switch c.Cmd {
		case svc.Interrogate:
			s <- c.CurrentStatus
		case svc.Stop, svc.Shutdown:
			logger.Println("Service received stop signal")
			break loop
		default:
		}
	}

	s <- svc.Status{State: svc.StopPending}
	if stopPipe != nil {
		stopPipe()
	}
	// TODO: signal the agent to exit on service stop (needs a control pipe,
	// the log pipe is one-way).
	time.Sleep(500 * time.Millisecond)
	s <- svc.Status{State: svc.Stopped}
	logger.Println("Service stopped")
	return false, 0
}

// installService installs the current executable as a Windows service and
// bakes the settings/log paths into its command line.
func installService(settings, logPath string) error {
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("cannot get executable path: %w", err)
	}
	exePath, err = filepath.Abs(exePath)
	if err != nil {
		return fmt.Errorf("cannot get absolute path: %w", err)
	}

	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("cannot connect to service manager: %w", err)
	}
	defer m.Disconnect() //nolint:errcheck

	if s, err := m.OpenService(SERVICE_NAME); err == nil {
		s.Close() //nolint:errcheck
		return fmt.Errorf("service %s already exists", SERVICE_NAME)
	}

	config := mgr.Config{
		DisplayName: SERVICE_DISPLAYNAME,
		Description: SERVICE_DESCRIPTION,
		StartType:   mgr.StartAutomatic,
	}

	args := []string{"--file", settings}
	if logPath != "" {
		args = append(args, "--log", logPath)
	}
	args = append(args, "service")

	s, err := m.CreateService(SERVICE_NAME, exePath, config, args...)
	if err != nil {
		return fmt.Errorf("cannot create service: %w", err)
	}
	defer s.Close() //nolint:errcheck
	return nil
}

// removeService removes the Windows service.
func removeService() error {
	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("cannot connect to service manager: %w", err)
	}
	defer m.Disconnect() //nolint:errcheck

	s, err := m.OpenService(SERVICE_NAME)
	if err != nil {
		return fmt.Errorf("service %s is not installed: %w", SERVICE_NAME, err)
	}
	defer s.Close() //nolint:errcheck

	if err := s.Delete(); err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	return nil
}

// runService starts the Windows service handler.
func runService(settings, logPath string) {
	fallbackLogPath = logPath
	f, err := setupLogging(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	activeLogFile, activeLogPath = f, logPath

	elog := debug.New(SERVICE_NAME)
	elog.Info(1, "Starting service")

	ms := &listenerService{
		settings: settings,
		logPath:  logPath,
	}

	if err := svc.Run(SERVICE_NAME, ms); err != nil {
		elog.Error(1, fmt.Sprintf("svc.Run failed: %v", err))
		logger.Printf("svc.Run failed: %v", err)
		return
	}
	elog.Info(1, "Service stopped")
	logger.Println("Service stopped normally")
}
