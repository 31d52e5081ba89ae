// Package config loads application configuration from a YAML file,
// RECALL_* environment variables and command-line flags, in that order
// of increasing precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/recall/internal/scheduler"
)

// Scheduler mirrors scheduler.Settings in configuration form.
type Scheduler struct {
	LearningSteps      []int   `koanf:"learning_steps"`
	RelearningSteps    []int   `koanf:"relearning_steps"`
	GraduatingInterval int     `koanf:"graduating_interval"`
	EasyInterval       int     `koanf:"easy_interval"`
	StartingEase       float64 `koanf:"starting_ease"`
	MinEase            float64 `koanf:"min_ease"`
	HardIntervalFactor float64 `koanf:"hard_interval_factor"`
	EasyBonus          float64 `koanf:"easy_bonus"`
	UseFuzz            bool    `koanf:"use_fuzz"`
	IntervalModifier   float64 `koanf:"interval_modifier"`
}

// Config is the application configuration.
type Config struct {
	DBPath    string    `koanf:"db_path"`
	Deck      string    `koanf:"deck"`
	Scheduler Scheduler `koanf:"scheduler"`
}

// Default returns the stock configuration.
func Default() Config {
	s := scheduler.DefaultSettings()
	return Config{
		DBPath: "recall.db",
		Scheduler: Scheduler{
			LearningSteps:      s.LearningSteps,
			RelearningSteps:    s.RelearningSteps,
			GraduatingInterval: s.GraduatingInterval,
			EasyInterval:       s.EasyInterval,
			StartingEase:       s.StartingEase,
			MinEase:            s.MinEase,
			HardIntervalFactor: s.HardIntervalFactor,
			EasyBonus:          s.EasyBonus,
			UseFuzz:            s.UseFuzz,
			IntervalModifier:   s.IntervalModifier,
		},
	}
}

// Load builds the configuration. path may be empty or point to a YAML
// file; a missing file at the default path is not an error. flags may be
// nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		_, statErr := os.Stat(path)
		switch {
		case statErr == nil:
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
			}
		case !os.IsNotExist(statErr):
			return Config{}, fmt.Errorf("checking config file %s: %w", path, statErr)
		}
	}

	// Double underscore separates nesting levels, single underscores are
	// part of the key: RECALL_SCHEDULER__EASY_BONUS=1.5 -> scheduler.easy_bonus
	err := k.Load(env.Provider("RECALL_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "RECALL_")), "__", ".")
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("loading flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Settings converts the scheduler section into engine settings.
func (c Config) Settings() scheduler.Settings {
	return scheduler.Settings{
		LearningSteps:      c.Scheduler.LearningSteps,
		RelearningSteps:    c.Scheduler.RelearningSteps,
		GraduatingInterval: c.Scheduler.GraduatingInterval,
		EasyInterval:       c.Scheduler.EasyInterval,
		StartingEase:       c.Scheduler.StartingEase,
		MinEase:            c.Scheduler.MinEase,
		HardIntervalFactor: c.Scheduler.HardIntervalFactor,
		EasyBonus:          c.Scheduler.EasyBonus,
		UseFuzz:            c.Scheduler.UseFuzz,
		IntervalModifier:   c.Scheduler.IntervalModifier,
	}
}
