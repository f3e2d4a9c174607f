package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/odvcencio/userint/pkg/errors"
)

// loadAndMerge loads a YAML file and merges it into the config. A missing file returns the
// os error unchanged so callers can test it with os.IsNotExist.
func loadAndMerge(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeConfigParse, "parsing YAML")
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeConfigParse, "parsing YAML")
	}

	mergeConfigs(cfg, &override, raw)
	return nil
}

// mergeConfigs merges override into base. Booleans are only taken when the key is present in
// raw, so a file that omits them keeps the defaults.
func mergeConfigs(base, override *Config, raw map[string]any) {
	if override == nil {
		return
	}

	if strings.TrimSpace(override.Logging.Dir) != "" {
		base.Logging.Dir = override.Logging.Dir
	}
	if override.Logging.Level != "" {
		base.Logging.Level = strings.ToLower(override.Logging.Level)
	}
	if boolFieldSet(raw, "logging", "transcript") {
		base.Logging.Transcript = override.Logging.Transcript
	}

	if boolFieldSet(raw, "metrics", "enabled") {
		base.Metrics.Enabled = override.Metrics.Enabled
	}
	if override.Metrics.Addr != "" {
		base.Metrics.Addr = override.Metrics.Addr
	}
	if boolFieldSet(raw, "metrics", "events") {
		base.Metrics.Events = override.Metrics.Events
	}

	if boolFieldSet(raw, "tracing", "enabled") {
		base.Tracing.Enabled = override.Tracing.Enabled
	}
	if override.Tracing.Output != "" {
		base.Tracing.Output = override.Tracing.Output
	}
	if override.Tracing.ServiceName != "" {
		base.Tracing.ServiceName = override.Tracing.ServiceName
	}

	if override.Scene.Path != "" {
		base.Scene.Path = override.Scene.Path
	}
	if boolFieldSet(raw, "scene", "watch") {
		base.Scene.Watch = override.Scene.Watch
	}

	if override.Host.TickInterval != 0 {
		base.Host.TickInterval = override.Host.TickInterval
	}
	if boolFieldSet(raw, "host", "mouse") {
		base.Host.Mouse = override.Host.Mouse
	}
	if boolFieldSet(raw, "host", "show_status") {
		base.Host.ShowStatus = override.Host.ShowStatus
	}
}

func boolFieldSet(raw map[string]any, path ...string) bool {
	if len(path) == 0 || raw == nil {
		return false
	}
	current := any(raw)
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return false
		}
		val, ok := m[key]
		if !ok {
			return false
		}
		current = val
	}
	return true
}
