// Package config loads run settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"composite-filter/internal/core"
)

// Config holds the settings shared by every command
type Config struct {
	Threshold       float64 `yaml:"threshold"`
	PixelType       string  `yaml:"pixel_type"`
	OutputPixelType string  `yaml:"output_pixel_type"`
	LogLevel        string  `yaml:"log_level"`
	LogFormat       string  `yaml:"log_format"`
	Workers         int     `yaml:"workers"`
	Database        string  `yaml:"database"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Threshold: 1,
		PixelType: core.PixelFloat32.String(),
		LogLevel:  "info",
		LogFormat: "json",
		Workers:   runtime.NumCPU(),
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate checks that every field holds a usable value
func (c Config) Validate() error {
	var errs []error

	if _, err := core.ParsePixelType(c.PixelType); err != nil {
		errs = append(errs, fmt.Errorf("pixel_type: %w", err))
	}
	if c.OutputPixelType != "" {
		if _, err := core.ParsePixelType(c.OutputPixelType); err != nil {
			errs = append(errs, fmt.Errorf("output_pixel_type: %w", err))
		}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if !slices.Contains([]string{"json", "text"}, c.LogFormat) {
		errs = append(errs, fmt.Errorf("log_format must be json or text, got %q", c.LogFormat))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}

	return errors.Join(errs...)
}

// PixelTypes resolves the input and output pixel types. The output type
// falls back to the input type.
func (c Config) PixelTypes() (core.PixelType, core.PixelType, error) {
	in, err := core.ParsePixelType(c.PixelType)
	if err != nil {
		return core.PixelUnknown, core.PixelUnknown, err
	}
	if c.OutputPixelType == "" {
		return in, in, nil
	}
	out, err := core.ParsePixelType(c.OutputPixelType)
	if err != nil {
		return core.PixelUnknown, core.PixelUnknown, err
	}
	return in, out, nil
}
