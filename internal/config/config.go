// Package config defines the CLI structure and configuration for mogaserial.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/Alia5/mogaserial/internal/cmd"
	"github.com/Alia5/mogaserial/internal/log"
)

// CLI is the root command structure for Kong CLI parsing.
type CLI struct {
	Log log.Config `embed:"" prefix:"log."`

	ConfigFile string           `name:"config" help:"Configuration file (JSON, YAML or TOML)" type:"path" env:"MOGASERIAL_CONFIG"`
	Version    kong.VersionFlag `help:"Print version and exit"`

	Run       cmd.Run       `cmd:"" default:"withargs" help:"Bridge a Moga controller to a virtual gamepad (default)"`
	Ports     cmd.Ports     `cmd:"" help:"List serial ports, including paired Bluetooth serial ports"`
	Dump      cmd.Config    `cmd:"" name:"config" help:"Print the effective configuration"`
	Install   cmd.Install   `cmd:"" help:"Start the bridge at login"`
	Uninstall cmd.Uninstall `cmd:"" help:"Remove the login entry"`
}
