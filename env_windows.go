//go:build windows

package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/sys/windows/registry"
)

// freshEnvironment builds the environment for a child process by overlaying
// the current environment with USER and SYSTEM variables re-read from the
// registry. "Path" is merged, system part first, which is the Windows
// convention. A long-lived listener would otherwise hand children whatever
// PATH was current when the listener started.
func freshEnvironment() ([]string, error) {
	envMap := make(map[string]string)

	// COMPUTERNAME, SYSTEMDRIVE, USERPROFILE and friends come from the
	// current environment.
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "=") {
			continue
		}
		parts := strings.SplitN(env, "=", 2)
		if len(parts) == 2 {
			envMap[parts[0]] = parts[1]
		}
	}

	sysReg, err := registry.OpenKey(registry.LOCAL_MACHINE, `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`, registry.READ)
	if err != nil {
		return nil, fmt.Errorf("open system environment key: %w", err)
	}
	defer sysReg.Close() //nolint:errcheck
	sysNames, _ := sysReg.ReadValueNames(0)
	for _, name := range sysNames {
		val, _, _ := sysReg.GetStringValue(name)
		envMap[name] = val
	}

	userReg, err := registry.OpenKey(registry.CURRENT_USER, `Environment`, registry.READ)
	if err == nil {
		defer userReg.Close() //nolint:errcheck
		userNames, _ := userReg.ReadValueNames(0)
		for _, name := range userNames {
			val, _, _ := userReg.GetStringValue(name)
			if name == "Path" || name == "PsModulePath" {
				envMap[name] = envMap[name] + ";" + val
			} else {
				envMap[name] = val
			}
		}
	}

	env := make([]string, 0, len(envMap))
	for k, v := range envMap {
		env = append(env, fmt.Sprintf("%s=%s", k, expandVariable(v)))
	}
	return env, nil
}

// expandVariable expands %VAR% references in s against the current
// environment. Unknown variables are left as-is.
func expandVariable(s string) string {
	expanded, err := registry.ExpandString(s)
	if err != nil {
		return s
	}
	return expanded
}

// encodeEnvBlock encodes env into the CreateProcess environment block format:
// UTF-16 strings each NUL-terminated, block terminated by one more NUL.
func encodeEnvBlock(env []string) ([]uint16, error) {
	block := make([]uint16, 0, 1024)
	for _, e := range env {
		if e == "" {
			continue
		}
		if strings.IndexByte(e, 0) != -1 {
			return nil, fmt.Errorf("env contains NUL")
		}
		u, err := syscall.UTF16FromString(e)
		if err != nil {
			return nil, err
		}
		block = append(block, u...)
	}
	block = append(block, 0)
	return block, nil
}
