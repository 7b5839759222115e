package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
)

// https://goreleaser.com/cookbooks/using-main.version/
var (
	name    string
	version string
	date    string
	commit  string
)

// flags
type Config struct {
	help    bool
	version bool
	path    string
	logPath string
}

// default settings file path (optional, ambient tuning only)
const DEFAULT_SETTINGS_PATH = "%USERPROFILE%\\.config\\dn-hotkey.toml"

// takes precedence over DEFAULT_SETTINGS_PATH above
const SETTINGS_HOME_VAR = "DN_HOTKEY_CONFIG_HOME"

// Effective settings file path, resolved once in main.
var settingsPath string

func initFlags() *Config {
	cfg := &Config{}
	flag.StringVar(&cfg.path, "f", DEFAULT_SETTINGS_PATH, "")
	flag.StringVar(&cfg.path, "file", DEFAULT_SETTINGS_PATH, "specify settings file path")
	flag.StringVar(&cfg.logPath, "l", "", "")
	flag.StringVar(&cfg.logPath, "log", "", "log to file instead of stdout")
	flag.BoolVar(&cfg.help, "?", false, "")
	flag.BoolVar(&cfg.help, "help", false, "displays this help message")
	flag.BoolVar(&cfg.version, "v", false, "")
	flag.BoolVar(&cfg.version, "version", false, "print version and exit")
	return cfg
}

// main starts the chord listener, or dispatches to the service verbs.
func main() {
	log.SetFlags(0)
	cfg := initFlags()
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: "+name+` [OPTIONS] [install|remove|service|version]

Starts a system-wide chord listener. While CTRL is held, pressing Q launches
dn-text-normalize.exe from the directory containing this binary. The
chord-completing key press is not delivered to the focused application.

Run without arguments for console mode. 'install' registers a Windows service
that places a listener on the active user's desktop; 'remove' deletes it.

OPTIONS:

  -f, --file path
        specify settings file path (default '%USERPROFILE%\.config\dn-hotkey.toml')
  -l, --log path
        log to file instead of stdout
  -?, --help
        display this help message
  -v, --version
        print version and exit`)
	}
	flag.Parse()

	if flag.Arg(0) == "version" || cfg.version {
		fmt.Printf("%s %s, built on %s (commit: %s)\n", name, version, date, commit)
		return
	}

	if cfg.help {
		flag.Usage()
		return
	}

	settingsPath = os.Getenv(SETTINGS_HOME_VAR)
	if settingsPath == "" {
		settingsPath = expandVariable(cfg.path)
	}

	switch flag.Arg(0) {
	case "":
		runListener(cfg)
	case "install":
		if err := installService(settingsPath, cfg.logPath); err != nil {
			log.Fatalf("Failed to install service: %v", err)
		}
		fmt.Println("Service installed.")
	case "remove":
		if err := removeService(); err != nil {
			log.Fatalf("Failed to remove service: %v", err)
		}
		fmt.Println("Service removed.")
	case "service":
		runService(settingsPath, cfg.logPath)
	default:
		flag.Usage()
		os.Exit(1)
	}
}

// runListener is console/agent mode: install the keyboard hook and block in
// the message loop until interrupted.
func runListener(cfg *Config) {
	// The hook and its message loop must live on one thread.
	runtime.LockOSThread()

	fallbackLogPath = cfg.logPath
	f, err := setupLogging(cfg.logPath)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	activeLogFile, activeLogPath = f, cfg.logPath

	logger.Println("Starting chord listener...")

	// When spawned by the service, forward log-worthy events over its pipe.
	ipcInitFromEnv()
	defer ipcClose()

	if err := reloadSettings(); err != nil {
		logger.Printf("Settings not applied from %s: %v", settingsPath, err)
	}

	state, err := openSharedState()
	if err != nil {
		log.Fatalf("Failed to open shared listener state: %v", err)
	}
	defer state.close()

	baseDir := resolveBaseDirectory()
	logger.Printf("Companion directory: %s", baseDir)

	hwnd, err := createHiddenWindow("DnHotkeyWindow")
	if err != nil {
		log.Fatalf("Failed to create hidden window: %v", err)
	}
	defer destroyWindow.Call(uintptr(hwnd)) //nolint:errcheck

	d := &dispatcher{
		state:  state,
		launch: func() { launchCompanion(baseDir) },
	}
	if err := installKeyHook(state, d); err != nil {
		log.Fatalf("Failed to install keyboard hook: %v", err)
	}
	defer removeKeyHook(state)

	// Handle graceful shutdown on Ctrl+C
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		logger.Println("Exiting...")
		postMessageW.Call(hwnd, WM_APP_QUIT, 0, 0) //nolint:errcheck
	}()

	watcher, err := startSettingsWatcher(hwnd, settingsPath)
	if err != nil {
		logger.Printf("Settings watcher disabled: %v", err)
	}
	if watcher != nil {
		defer watcher.Close() //nolint:errcheck
	}

	// Listen for key presses
	messageLoop()
}

// resolveBaseDirectory derives the directory holding this binary, which is
// where the companion executable is expected. When the binary path yields no
// directory the process working directory stands in, with a warning.
func resolveBaseDirectory() string {
	exePath, err := os.Executable()
	if err != nil {
		logger.Printf("Cannot determine own path, using working directory: %v", err)
		return workingDirectory()
	}
	dir, err := resolveDirectory(exePath)
	if err != nil || dir == rootSentinel {
		logger.Printf("No containing directory for %q, using working directory", exePath)
		return workingDirectory()
	}
	return dir
}

func workingDirectory() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
