// Package config loads the ambient settings of clfreport from YAML: logging,
// reproducibility seed, cross-validation folds, parallelism and console output.
// Hyperparameter grids are fixed by the report package and are not configurable.
package config

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/clfreport/pkg/errors"
	"github.com/YuminosukeSato/clfreport/pkg/log"
)

// Config is the root configuration document.
type Config struct {
	Log         LogConfig    `yaml:"log"`
	RandomState int64        `yaml:"random_state"`
	CVFolds     int          `yaml:"cv_folds"`
	NJobs       int          `yaml:"n_jobs"`
	Output      OutputConfig `yaml:"output"`
}

// LogConfig controls the zerolog provider.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // json|console
}

// OutputConfig controls printed summaries.
type OutputConfig struct {
	Color bool `yaml:"color"`
}

// Default returns the settings the report helpers use when no file is given.
func Default() *Config {
	return &Config{
		Log:         LogConfig{Level: "info", Format: "json"},
		RandomState: 42,
		CVFolds:     5,
		NJobs:       -1,
		Output:      OutputConfig{Color: true},
	}
}

// Load reads a YAML file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes YAML bytes on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse yaml")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "console", "":
	default:
		return errors.NewValidationError("log.format", "must be json or console", c.Log.Format)
	}
	if c.CVFolds < 2 {
		return errors.NewValidationError("cv_folds", "must be at least 2", c.CVFolds)
	}
	if c.NJobs == 0 || c.NJobs < -1 {
		return errors.NewValidationError("n_jobs", "must be -1 or a positive worker count", c.NJobs)
	}
	if c.RandomState < 0 {
		return errors.NewValidationError("random_state", "must be non-negative", c.RandomState)
	}
	return nil
}

// Apply installs a global logger provider writing to w according to c.Log.
func (c *Config) Apply(w io.Writer) error {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	if c.Log.Format == "console" {
		log.SetProvider(log.NewConsoleProvider(w, level))
		return nil
	}
	log.SetProvider(log.NewZerologProvider(w, level))
	return nil
}
