// Package config handles quinevm.toml run configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sarchlab/quinevm/core"
)

// FileName is the name FindAndLoad looks for.
const FileName = "quinevm.toml"

// ErrInvalid is returned when a configuration value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// Config represents a quinevm.toml configuration.
type Config struct {
	Machine Machine `toml:"machine"`
	Search  Search  `toml:"search"`
	Log     Log     `toml:"log"`

	// Path is the file the configuration was read from (set at load time).
	Path string `toml:"-"`
}

// Machine configures program execution.
type Machine struct {
	// StepLimit caps instructions per run. Zero means unbounded.
	StepLimit uint64 `toml:"step-limit"`
	// FreqGHz is the clock of the cycle-mode core.
	FreqGHz float64 `toml:"freq-ghz"`
}

// Search configures the seed search.
type Search struct {
	Workers      int    `toml:"workers"`
	AttemptLimit uint64 `toml:"attempt-limit"`
	Lint         bool   `toml:"lint"`
}

// Log configures the process logger.
type Log struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Machine: Machine{
			StepLimit: 1 << 20,
			FreqGHz:   1,
		},
		Search: Search{
			Workers: 1,
			Lint:    true,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load parses a configuration file. Keys missing from the file keep their
// default values; unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()

	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return Config{}, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return Config{}, fmt.Errorf("%w: unknown keys in %s: %s",
			ErrInvalid, path, strings.Join(keys, ", "))
	}

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	c.Path, err = filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	return c, nil
}

// FindAndLoad walks up from startDir to find a quinevm.toml file, then loads
// it. Returns the defaults if no file is found.
func FindAndLoad(startDir string) (Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return Config{}, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return Default(), nil
		}
		dir = parent
	}
}

// Validate checks that every value is usable.
func (c Config) Validate() error {
	if c.Search.Workers < 1 {
		return fmt.Errorf("%w: search.workers must be at least 1, got %d",
			ErrInvalid, c.Search.Workers)
	}

	if c.Machine.FreqGHz <= 0 {
		return fmt.Errorf("%w: machine.freq-ghz must be positive, got %g",
			ErrInvalid, c.Machine.FreqGHz)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

// ParseLevel turns a level name into a slog level. Besides the slog names it
// accepts "trace" for per-instruction logging.
func ParseLevel(name string) (slog.Level, error) {
	if strings.EqualFold(name, "trace") {
		return core.LevelTrace, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, name)
	}

	return level, nil
}
