// Package config loads layered keyledger settings: defaults, then a YAML
// file, then KEYLEDGER_* environment variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/neomorfeo/keyledger/internal/i18n"
)

// Backend drivers.
const (
	DriverHTTP   = "http"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

var (
	drivers   = []string{DriverHTTP, DriverFile, DriverSQLite, DriverBolt}
	exporters = []string{"none", "stdout", "otlp"}
	levels    = []string{"debug", "info", "warn", "error"}
)

// Config is the effective keyledger configuration.
type Config struct {
	Backend   BackendConfig   `mapstructure:"backend" yaml:"backend"`
	Append    AppendConfig    `mapstructure:"append" yaml:"append"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Jobs      JobsConfig      `mapstructure:"jobs" yaml:"jobs"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Language  string          `mapstructure:"language" yaml:"language"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// BackendConfig selects the backend driver and its location.
// DSN is the database path for both the sqlite and bolt drivers.
type BackendConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	URL    string `mapstructure:"url" yaml:"url"`
	Path   string `mapstructure:"path" yaml:"path"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

// AppendConfig bounds retries of conditional appends.
type AppendConfig struct {
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Port     int    `mapstructure:"port" yaml:"port"`
	Resource string `mapstructure:"resource" yaml:"resource"`
}

// JobsConfig configures the River event queue.
type JobsConfig struct {
	// DSN of the River job database. Empty logs events inline.
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// TelemetryConfig selects the OpenTelemetry exporter.
type TelemetryConfig struct {
	Exporter    string `mapstructure:"exporter" yaml:"exporter"`
	Environment string `mapstructure:"environment" yaml:"environment"`
}

// LogConfig sets the slog level.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Defaults returns the built-in value of every key.
func Defaults() map[string]any {
	return map[string]any{
		"backend.driver":        DriverHTTP,
		"backend.url":           "http://localhost:8080/backend.txt",
		"backend.path":          "backend.txt",
		"backend.dsn":           "keyledger.db",
		"append.max_attempts":   3,
		"server.port":           8080,
		"server.resource":       "backend.txt",
		"jobs.dsn":              "",
		"telemetry.exporter":    "none",
		"telemetry.environment": "development",
		"language":              "en",
		"log.level":             "info",
	}
}

// FlagKeys maps command-line flag names to configuration keys.
var FlagKeys = map[string]string{
	"driver":       "backend.driver",
	"url":          "backend.url",
	"path":         "backend.path",
	"dsn":          "backend.dsn",
	"max-attempts": "append.max_attempts",
	"port":         "server.port",
	"resource":     "server.resource",
	"jobs-dsn":     "jobs.dsn",
	"telemetry":    "telemetry.exporter",
	"lang":         "language",
	"log-level":    "log.level",
}

// Path returns the per-user configuration file path.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, "keyledger", "keyledger.yaml"), nil
}

// Load resolves the configuration for cmd. configFile, when non-empty,
// replaces the search of the current and user config directories and must
// exist.
func Load(cmd *cobra.Command, configFile string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName("keyledger")
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		if p, err := Path(); err == nil {
			v.AddConfigPath(filepath.Dir(p))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return c, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("keyledger")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for name, key := range FlagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, fmt.Errorf("binding flag %q: %w", name, err)
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("parsing config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate checks enumerated and numeric settings.
func (c Config) Validate() error {
	var errs []error
	if !slices.Contains(drivers, c.Backend.Driver) {
		errs = append(errs, fmt.Errorf("backend.driver %q is not one of %s", c.Backend.Driver, strings.Join(drivers, ", ")))
	}
	if c.Append.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("append.max_attempts must be at least 1, got %d", c.Append.MaxAttempts))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	if !slices.Contains(exporters, c.Telemetry.Exporter) {
		errs = append(errs, fmt.Errorf("telemetry.exporter %q is not one of %s", c.Telemetry.Exporter, strings.Join(exporters, ", ")))
	}
	if langs := i18n.Languages(); !slices.Contains(langs, c.Language) {
		errs = append(errs, fmt.Errorf("language %q is not one of %s", c.Language, strings.Join(langs, ", ")))
	}
	if !slices.Contains(levels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q is not one of %s", c.Log.Level, strings.Join(levels, ", ")))
	}
	return errors.Join(errs...)
}

// Write stores c as YAML at path, creating parent directories.
func Write(c Config, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
