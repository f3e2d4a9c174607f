package config

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/odvcencio/userint/pkg/errors"
	"github.com/odvcencio/userint/pkg/logging"
)

const (
	configDirName  = ".userint"
	configFileName = "config.yaml"
	envFileName    = "config.env"
)

const (
	defaultLogDir       = "~/.userint/logs"
	defaultLogLevel     = "info"
	defaultMetricsAddr  = "127.0.0.1:9464"
	defaultServiceName  = "userint"
	defaultTickInterval = 50 * time.Millisecond
)

// Config represents the complete userint configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
	Scene   SceneConfig   `yaml:"scene"`
	Host    HostConfig    `yaml:"host"`
}

// LoggingConfig controls the JSONL session journal.
type LoggingConfig struct {
	Dir        string `yaml:"dir"`
	Level      string `yaml:"level"`
	Transcript bool   `yaml:"transcript"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	// Events also serves the live interaction stream at /events.
	Events bool `yaml:"events"`
}

// TracingConfig controls span export. Output is "stderr", "stdout", or a file path.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Output      string `yaml:"output"`
	ServiceName string `yaml:"service_name"`
}

// SceneConfig selects the scene file the host loads.
type SceneConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// HostConfig tunes the terminal host loop.
type HostConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	Mouse        bool          `yaml:"mouse"`
	ShowStatus   bool          `yaml:"show_status"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Dir:        defaultLogDir,
			Level:      defaultLogLevel,
			Transcript: false,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    defaultMetricsAddr,
			Events:  true,
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Output:      "stderr",
			ServiceName: defaultServiceName,
		},
		Scene: SceneConfig{
			Watch: true,
		},
		Host: HostConfig{
			TickInterval: defaultTickInterval,
			Mouse:        true,
			ShowStatus:   true,
		},
	}
}

// Load loads configuration from default locations with proper precedence
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configEnv := loadConfigEnvVars()

	// Load user config (~/.userint/config.yaml)
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	if home != "" {
		userConfigPath := filepath.Join(home, configDirName, configFileName)
		if err := loadAndMerge(cfg, userConfigPath); err != nil && !os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigLoad, "loading user config").
				WithContext("path", userConfigPath)
		}
	}

	// Load project config (./.userint/config.yaml)
	projectConfigPath := filepath.Join(".", configDirName, configFileName)
	if err := loadAndMerge(cfg, projectConfigPath); err != nil && !os.IsNotExist(err) {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigLoad, "loading project config").
			WithContext("path", projectConfigPath)
	}

	applyEnvOverrides(cfg, configEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	configEnv := loadConfigEnvVars()

	if err := loadAndMerge(cfg, path); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigLoad, "loading config").
			WithContext("path", path)
	}

	applyEnvOverrides(cfg, configEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides. Values from ~/.userint/config.env
// apply first; the process environment wins.
func applyEnvOverrides(cfg *Config, configEnv map[string]string) {
	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return configEnv[key]
	}

	if v := lookup("USERINT_LOG_DIR"); v != "" {
		cfg.Logging.Dir = v
	}
	if v := lookup("USERINT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := lookup("USERINT_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
		cfg.Metrics.Enabled = true
	}
	if v := lookup("USERINT_SCENE"); v != "" {
		cfg.Scene.Path = v
	}
	if val, ok := parseBool(lookup("USERINT_TRACING")); ok {
		cfg.Tracing.Enabled = val
	}
	if val, ok := parseBool(lookup("USERINT_TRANSCRIPT")); ok {
		cfg.Logging.Transcript = val
	}
	if v := lookup("USERINT_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Host.TickInterval = d
		}
	}
}

func parseBool(val string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

func isLoopbackBindAddress(addr string) bool {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return false
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
		return apperrors.Newf(apperrors.ErrCodeConfigInvalid,
			"invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		return apperrors.New(apperrors.ErrCodeConfigInvalid, "logging.dir must be set")
	}

	if c.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(c.Metrics.Addr); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeConfigInvalid, "invalid metrics.addr").
				WithContext("addr", c.Metrics.Addr)
		}
	}

	if c.Tracing.Enabled && strings.TrimSpace(c.Tracing.Output) == "" {
		return apperrors.New(apperrors.ErrCodeConfigInvalid, "tracing.output must be set when tracing is enabled")
	}

	if c.Host.TickInterval <= 0 {
		return apperrors.Newf(apperrors.ErrCodeConfigInvalid,
			"host.tick_interval must be positive, got %s", c.Host.TickInterval)
	}
	return nil
}

// ValidationWarnings returns non-fatal configuration concerns.
func (c *Config) ValidationWarnings() []string {
	var warnings []string
	if c.Metrics.Enabled && !isLoopbackBindAddress(c.Metrics.Addr) {
		warnings = append(warnings, "metrics.addr "+c.Metrics.Addr+" is not a loopback address; /metrics and /events are unauthenticated")
	}
	if c.Scene.Watch && c.Scene.Path == "" {
		warnings = append(warnings, "scene.watch has no effect without scene.path")
	}
	if c.Tracing.Enabled {
		switch strings.ToLower(strings.TrimSpace(c.Tracing.Output)) {
		case "stderr", "stdout":
			warnings = append(warnings, "tracing.output "+c.Tracing.Output+" shares the terminal with the host display; use a file path")
		}
	}
	if c.Host.TickInterval < 10*time.Millisecond {
		warnings = append(warnings, "host.tick_interval below 10ms redraws faster than most terminals can display")
	}
	return warnings
}

func loadConfigEnvVars() map[string]string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return nil
	}

	data, err := os.ReadFile(filepath.Join(home, configDirName, envFileName))
	if err != nil {
		return nil
	}

	vars := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		vars[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	return vars
}
