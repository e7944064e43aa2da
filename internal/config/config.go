// Package config loads the server configuration from YAML with sane
// defaults for every key.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Game       GameConfig       `mapstructure:"game"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GameConfig sets board data location and opening balances.
type GameConfig struct {
	DataDir       string `mapstructure:"data_dir"`
	StartingSpace string `mapstructure:"starting_space"`
	StartingMoney int    `mapstructure:"starting_money"`
	StartingTime  int    `mapstructure:"starting_time"`
	CardLimit     int    `mapstructure:"card_limit"`
}

// SimulationConfig drives the simulated-player loop.
type SimulationConfig struct {
	Players  int   `mapstructure:"players"`
	MaxTurns int   `mapstructure:"max_turns"`
	Seed     int64 `mapstructure:"seed"`
}

// Load reads the configuration file at path. A missing file yields the
// defaults; a malformed one is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("game.data_dir", "data")
	v.SetDefault("game.starting_space", "OWNER-SCOPE-INITIATION")
	v.SetDefault("game.starting_money", 0)
	v.SetDefault("game.starting_time", 0)
	v.SetDefault("game.card_limit", 6)
	v.SetDefault("simulation.players", 2)
	v.SetDefault("simulation.max_turns", 200)
	v.SetDefault("simulation.seed", 0)

	if err := v.ReadInConfig(); err != nil {
		// A missing file falls back to defaults; anything else is fatal.
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
