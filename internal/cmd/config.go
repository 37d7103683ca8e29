package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/Alia5/mogaserial/internal/log"
)

// Config prints the effective configuration in a format that can be saved
// as a configuration file.
type Config struct {
	Format   string `help:"Output format: toml, yaml, json" default:"toml" enum:"toml,yaml,json" short:"f"`
	Settings `embed:""`
}

type effective struct {
	Log      log.Config `yaml:"log"`
	Settings `yaml:",inline"`
}

func (c *Config) Run(logger *slog.Logger, logCfg *log.Config) error {
	logger.Debug("Printing effective configuration", "format", c.Format)
	return writeConfig(os.Stdout, c.Format, effective{Log: *logCfg, Settings: c.Settings})
}

// writeConfig renders v through YAML, which spells durations the way the
// configuration loaders read them, and re-encodes it as format.
func writeConfig(w io.Writer, format string, v any) error {
	y, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	if format == "yaml" {
		_, err = w.Write(y)
		return err
	}

	var m map[string]any
	if err := yaml.Unmarshal(y, &m); err != nil {
		return err
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case "toml":
		tree, err := toml.TreeFromMap(m)
		if err != nil {
			return err
		}
		_, err = tree.WriteTo(w)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
