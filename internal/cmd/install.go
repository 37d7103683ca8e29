package cmd

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const autorunName = "mogaserial"

// Install starts the bridge for address at login and right away.
type Install struct {
	Address string `arg:"" help:"Controller address the bridge connects to"`
}

// Uninstall removes the login entry and stops the installed bridge.
type Uninstall struct{}

func (c *Install) Run(logger *slog.Logger) error {
	exe, err := currentExecutable()
	if err != nil {
		return err
	}
	if strings.Contains(exe, "go-build") {
		return errors.New("cannot install from 'go run'")
	}
	return install(exe, c.Address, logger)
}

func (c *Uninstall) Run(logger *slog.Logger) error {
	exe, err := currentExecutable()
	if err != nil {
		return err
	}
	if strings.Contains(exe, "go-build") {
		return errors.New("cannot uninstall from 'go run'")
	}
	return uninstall(logger)
}

// autorunArgs are the arguments the installed entry starts the bridge with.
// The exit delay only helps a visible console.
func autorunArgs(address string) []string {
	return []string{"run", "--exit-delay=0s", address}
}

func currentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Abs(exe)
}
