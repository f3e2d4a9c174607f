package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveLogDir returns the absolute directory session logs are written to.
// Preference order:
//  1. logging.dir with a leading ~ expanded
//  2. .userint/logs under the current working directory
func ResolveLogDir(cfg *Config) string {
	if cfg != nil {
		dir := expandHomeDir(cfg.Logging.Dir)
		if dir != "" {
			if abs, err := filepath.Abs(dir); err == nil {
				return abs
			}
			return dir
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		return filepath.Join(cwd, configDirName, "logs")
	}
	return filepath.Join(configDirName, "logs")
}

// ResolveScenePath returns scene.path with a leading ~ expanded, or "" when unset.
func ResolveScenePath(cfg *Config) string {
	if cfg == nil {
		return ""
	}
	return expandHomeDir(cfg.Scene.Path)
}

func expandHomeDir(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
