package latexcalc

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/leo5358/latex-calc/symbolic"
)

// Mode selects the evaluation path.
type Mode string

const (
	ModeExact   Mode = "exact"
	ModeNumeric Mode = "numeric"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeExact, ModeNumeric:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
}

const DefaultConfigFile = ".latexcalc.yaml"

// Config is the on-disk configuration. Zero fields in a file keep their
// defaults.
type Config struct {
	Mode           Mode   `yaml:"mode"`
	DecimalPlaces  int    `yaml:"decimal_places"`
	PlaceholderTag string `yaml:"placeholder_tag"`
	MaxSeriesTerms int    `yaml:"max_series_terms"`
	LogLevel       string `yaml:"log_level,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Mode:           ModeExact,
		DecimalPlaces:  4,
		PlaceholderTag: "MATRIX",
		MaxSeriesTerms: symbolic.DefaultForceConfig().MaxSeriesTerms,
	}
}

// LoadConfig decodes the YAML file at path over DefaultConfig. An empty file
// yields the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return config, config.Validate()
}

func (c Config) Validate() error {
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if c.DecimalPlaces < 0 || c.DecimalPlaces > 50 {
		return fmt.Errorf("%w: decimal_places %d out of range", ErrInvalidConfig, c.DecimalPlaces)
	}
	if c.PlaceholderTag == "" {
		return fmt.Errorf("%w: empty placeholder_tag", ErrInvalidConfig)
	}
	for _, r := range c.PlaceholderTag {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return fmt.Errorf("%w: placeholder_tag %q must be ASCII letters", ErrInvalidConfig, c.PlaceholderTag)
		}
	}
	if c.MaxSeriesTerms <= 0 {
		return fmt.Errorf("%w: max_series_terms must be positive", ErrInvalidConfig)
	}
	if c.LogLevel != "" {
		if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

func (c Config) forceConfig() symbolic.ForceConfig {
	return symbolic.ForceConfig{
		MaxSeriesTerms:  c.MaxSeriesTerms,
		NumericFallback: c.Mode == ModeNumeric,
	}
}
