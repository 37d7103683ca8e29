//go:build windows

package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/windows/registry"
)

const (
	runKeyPath  = `Software\Microsoft\Windows\CurrentVersion\Run`
	runValueKey = autorunName
)

func install(exePath, address string, logger *slog.Logger) error {
	previousExe, err := currentAutorunExe()
	if err != nil {
		return err
	}

	args := autorunArgs(address)
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	value := fmt.Sprintf("%q %s", exePath, strings.Join(quoted, " "))
	key, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.ALL_ACCESS)
	if err != nil {
		return err
	}
	defer key.Close()

	if err := key.SetStringValue(runValueKey, value); err != nil {
		return err
	}

	if previousExe != "" {
		if err := killProcessesByExe(previousExe, logger); err != nil {
			return fmt.Errorf("failed to stop previous autorun instance: %w", err)
		}
	}

	if err := exec.Command(exePath, args...).Start(); err != nil {
		return fmt.Errorf("failed to start bridge: %w", err)
	}

	logger.Info("Installed Windows autorun entry", "exe", exePath, "address", address)
	return nil
}

func uninstall(logger *slog.Logger) error {
	exe, err := currentAutorunExe()
	if err != nil {
		return err
	}

	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		if !errors.Is(err, registry.ErrNotExist) {
			return err
		}
	} else {
		defer key.Close()

		if err := key.DeleteValue(runValueKey); err != nil {
			if !errors.Is(err, registry.ErrNotExist) {
				return err
			}
		}
	}

	if exe != "" {
		if err := killProcessesByExe(exe, logger); err != nil {
			return fmt.Errorf("failed to stop autorun instance: %w", err)
		}
	}

	logger.Info("Removed Windows autorun entry")
	return nil
}

// currentAutorunExe returns the executable of the installed entry, or ""
// when none is installed.
func currentAutorunExe() (string, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer key.Close()

	val, _, err := key.GetStringValue(runValueKey)
	if errors.Is(err, registry.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return autorunExe(val), nil
}

// autorunExe extracts the executable from a Run value, quoted or not.
func autorunExe(val string) string {
	val = strings.TrimSpace(val)
	if rest, ok := strings.CutPrefix(val, `"`); ok {
		exe, _, _ := strings.Cut(rest, `"`)
		val = exe
	} else if fields := strings.Fields(val); len(fields) > 0 {
		val = fields[0]
	}
	if val == "" {
		return ""
	}
	return filepath.Clean(val)
}

// killProcessesByExe terminates every other process running target.
func killProcessesByExe(target string, logger *slog.Logger) error {
	script := fmt.Sprintf(
		"$ErrorActionPreference='SilentlyContinue';$t='%s';Get-CimInstance Win32_Process | Where-Object { $_.ExecutablePath -eq $t } | Select-Object -ExpandProperty ProcessId",
		strings.ReplaceAll(target, "'", "''"),
	)
	output, err := exec.Command("powershell", "-NoProfile", "-Command", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("process query failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	self := os.Getpid()
	for _, line := range strings.Fields(string(output)) {
		pid, err := strconv.Atoi(line)
		if err != nil || pid == self {
			continue
		}
		out, err := exec.Command("taskkill", "/PID", strconv.Itoa(pid), "/T", "/F").CombinedOutput()
		if err != nil {
			return fmt.Errorf("taskkill pid %d failed: %w: %s", pid, err, strings.TrimSpace(string(out)))
		}
		logger.Info("Terminated autorun instance", "pid", pid)
	}
	return nil
}
