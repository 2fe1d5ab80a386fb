// Package config provides Viper-based configuration loading for the arena binary.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is a file path or "stderr"; battle output owns stdout.
	Output string `mapstructure:"output"`
}

// CombatConfig holds the tunables of the turn orchestrator and enemy policy.
type CombatConfig struct {
	// DefendChance is the probability an enemy defends instead of acting.
	DefendChance float64 `mapstructure:"defend_chance"`
	// AbilityChance is the probability an enemy that did not defend casts an ability.
	AbilityChance float64 `mapstructure:"ability_chance"`
	// PreferArea narrows enemy ability choice to area abilities when several targets live.
	PreferArea bool `mapstructure:"prefer_area"`
	// Seed seeds the battle randomness; 0 draws a fresh seed, which is logged for replay.
	Seed int64 `mapstructure:"seed"`
	// MaxRounds ends a battle in a stalemate after this many rounds; 0 disables the cutoff.
	MaxRounds int `mapstructure:"max_rounds"`
}

// ContentConfig locates the YAML catalogs and Lua scripts.
type ContentConfig struct {
	Dir              string `mapstructure:"dir"`
	Scripts          string `mapstructure:"scripts"`
	InstructionLimit int    `mapstructure:"instruction_limit"`
}

// ConsoleConfig controls the line-based console frontend.
type ConsoleConfig struct {
	Color bool `mapstructure:"color"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Combat  CombatConfig  `mapstructure:"combat"`
	Content ContentConfig `mapstructure:"content"`
	Console ConsoleConfig `mapstructure:"console"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.DefendChance < 0 || c.DefendChance > 1 {
		errs = append(errs, fmt.Sprintf("combat.defend_chance must be within [0, 1], got %v", c.DefendChance))
	}
	if c.AbilityChance < 0 || c.AbilityChance > 1 {
		errs = append(errs, fmt.Sprintf("combat.ability_chance must be within [0, 1], got %v", c.AbilityChance))
	}
	if c.MaxRounds < 0 {
		errs = append(errs, fmt.Sprintf("combat.max_rounds must be >= 0, got %d", c.MaxRounds))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	if c.Dir == "" {
		return errors.New("content.dir must not be empty")
	}
	if c.InstructionLimit < 0 {
		return fmt.Errorf("content.instruction_limit must be >= 0, got %d", c.InstructionLimit)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("DUNGEON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// Default returns the configuration produced by the defaults alone.
//
// Postcondition: The result passes Validate.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic("config: defaults are invalid: " + err.Error())
	}
	return cfg
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("combat.defend_chance", 0.20)
	v.SetDefault("combat.ability_chance", 0.70)
	v.SetDefault("combat.prefer_area", true)
	v.SetDefault("combat.seed", 0)
	v.SetDefault("combat.max_rounds", 0)

	v.SetDefault("content.dir", "content")
	v.SetDefault("content.scripts", "content/scripts")
	v.SetDefault("content.instruction_limit", 100000)

	v.SetDefault("console.color", true)
}
