package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
	"golang.org/x/term"

	"github.com/Alia5/mogaserial/internal/bridge"
	"github.com/Alia5/mogaserial/internal/config"
	"github.com/Alia5/mogaserial/internal/configpaths"
	"github.com/Alia5/mogaserial/internal/log"
	"github.com/Alia5/mogaserial/internal/vpad"

	_ "github.com/Alia5/mogaserial/internal/vpad/backends" // Register all virtual controller backends
)

func main() {
	os.Exit(run())
}

func run() int {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	build := readBuildInfo()
	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("mogaserial"),
		kong.Description(build.description()),
		kong.UsageOnError(),
		kong.ConfigureHelp(helpOptions()),
		kong.Vars{
			"version":  build.String(),
			"backends": strings.Join(vpad.Names(), ", "),
		},
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, rawLogger, closeFiles, err := log.Setup(cli.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to setup logger:", err)
		return 2
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	ctx.Bind(logger)
	ctx.Bind(&cli.Log)
	ctx.BindTo(rawLogger, (*log.RawLogger)(nil))

	if err := ctx.Run(); err != nil {
		// run logs its own fatal error before the exit delay.
		if !strings.HasPrefix(ctx.Command(), "run") {
			logger.Error("Command failed", "command", ctx.Command(), "error", err)
		}
		return bridge.ExitCode(err)
	}
	return 0
}

func findUserConfig(args []string) string {
	for i, a := range args {
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("MOGASERIAL_CONFIG")
}

// helpOptions picks compact help for narrow or non-interactive output.
// MOGASERIAL_HELP_STYLE ("full" or "compact") overrides the detection.
func helpOptions() kong.HelpOptions {
	opts := kong.HelpOptions{}
	switch strings.ToLower(os.Getenv("MOGASERIAL_HELP_STYLE")) {
	case "full":
		return opts
	case "compact":
		opts.Compact = true
		return opts
	}

	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) || os.Getenv("TERM") == "dumb" {
		opts.Compact = true
		return opts
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width < 100 {
		opts.Compact = true
	}
	if err == nil && width > 0 {
		opts.WrapUpperBound = width
	}
	return opts
}
