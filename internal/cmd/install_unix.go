//go:build !windows

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const unitName = autorunName + ".service"

func unitPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "systemd", "user", unitName), nil
}

// unitFile renders a systemd user unit starting the bridge.
func unitFile(exePath, address string) string {
	cmd := []string{strconv.Quote(exePath)}
	for _, a := range autorunArgs(address) {
		cmd = append(cmd, strconv.Quote(a))
	}
	return fmt.Sprintf(`[Unit]
Description=Moga controller to virtual gamepad bridge
After=bluetooth.target

[Service]
ExecStart=%s
Restart=on-failure
RestartSec=3

[Install]
WantedBy=default.target
`, strings.Join(cmd, " "))
}

func systemctl(args ...string) error {
	out, err := exec.Command("systemctl", append([]string{"--user"}, args...)...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func install(exePath, address string, logger *slog.Logger) error {
	path, err := unitPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(unitFile(exePath, address)), 0o644); err != nil {
		return err
	}
	if err := systemctl("daemon-reload"); err != nil {
		return err
	}
	if err := systemctl("enable", "--now", unitName); err != nil {
		return err
	}
	// A unit that was already running keeps the old address until restarted.
	if err := systemctl("restart", unitName); err != nil {
		return err
	}
	logger.Info("Installed systemd user unit", "unit", path, "exe", exePath, "address", address)
	return nil
}

func uninstall(logger *slog.Logger) error {
	path, err := unitPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		logger.Info("No systemd user unit installed", "unit", path)
		return nil
	}
	if err := systemctl("disable", "--now", unitName); err != nil {
		logger.Warn("Disabling unit failed", "error", err)
	}
	if err := os.Remove(path); err != nil {
		return err
	}
	if err := systemctl("daemon-reload"); err != nil {
		return err
	}
	logger.Info("Removed systemd user unit", "unit", path)
	return nil
}
