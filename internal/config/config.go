// Package config loads and saves the wifiplan application configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/piwi3910/wifiplan/internal/logging"
	"github.com/piwi3910/wifiplan/internal/model"
)

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.wifiplan/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".wifiplan")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create config directory %s", dir)
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write config %s", path)
	}
	return nil
}

// LoadAppConfig reads an AppConfig from the given path. Fields missing from
// the file keep their defaults. If the file does not exist, it returns
// DefaultAppConfig with no error.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return model.AppConfig{}, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if err := Validate(config); err != nil {
		return model.AppConfig{}, errors.Wrapf(err, "invalid config %s", path)
	}
	return config, nil
}

// Validate checks the values a config file can get wrong.
func Validate(config model.AppConfig) error {
	if config.DefaultWidth < 0 || config.DefaultHeight < 0 {
		return errors.Errorf("plan size %gx%g must not be negative", config.DefaultWidth, config.DefaultHeight)
	}
	if config.HitTolerance < 0 {
		return errors.Errorf("hit tolerance %g must not be negative", config.HitTolerance)
	}
	if config.MaxHistory < 0 {
		return errors.Errorf("max history %d must not be negative", config.MaxHistory)
	}
	switch config.DefaultAlgorithm {
	case "", model.AlgorithmGrid, model.AlgorithmGenetic:
	default:
		return errors.Errorf("unknown algorithm %q", config.DefaultAlgorithm)
	}
	switch config.LogFormat {
	case "", "console", "json":
	default:
		return errors.Errorf("unknown log format %q", config.LogFormat)
	}
	return nil
}

// LoggingConfig maps the logging fields of an AppConfig onto a
// logging.Config. debug forces the debug level.
func LoggingConfig(config model.AppConfig, debug bool) logging.Config {
	level := config.LogLevel
	if debug {
		level = "debug"
	}
	return logging.Config{
		Level:       level,
		Format:      config.LogFormat,
		Development: debug,
	}
}
