// Package configpaths locates mogaserial configuration files.
package configpaths

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	appDir   = "mogaserial"
	baseName = "config"
)

// DefaultConfigDir returns the per-user configuration directory.
func DefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir), nil
}

// ConfigCandidatePaths returns the configuration files to try, grouped by
// format, in priority order. An explicit user path is tried first and
// only within the format its extension names; an unknown extension is
// tried with every loader.
func ConfigCandidatePaths(user string) (jsonPaths, yamlPaths, tomlPaths []string) {
	if user != "" {
		switch strings.ToLower(filepath.Ext(user)) {
		case ".json":
			jsonPaths = append(jsonPaths, user)
		case ".yaml", ".yml":
			yamlPaths = append(yamlPaths, user)
		case ".toml":
			tomlPaths = append(tomlPaths, user)
		default:
			jsonPaths = append(jsonPaths, user)
			yamlPaths = append(yamlPaths, user)
			tomlPaths = append(tomlPaths, user)
		}
	}

	var dirs []string
	if d, err := DefaultConfigDir(); err == nil {
		dirs = append(dirs, d)
	}
	if d := SystemConfigDir(); d != "" {
		dirs = append(dirs, d)
	}
	for _, d := range dirs {
		base := filepath.Join(d, baseName)
		jsonPaths = append(jsonPaths, base+".json")
		yamlPaths = append(yamlPaths, base+".yaml", base+".yml")
		tomlPaths = append(tomlPaths, base+".toml")
	}
	return jsonPaths, yamlPaths, tomlPaths
}
