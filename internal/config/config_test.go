package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "data", cfg.Game.DataDir)
	assert.Equal(t, "OWNER-SCOPE-INITIATION", cfg.Game.StartingSpace)
	assert.Equal(t, 6, cfg.Game.CardLimit)
	assert.Equal(t, 2, cfg.Simulation.Players)
	assert.Equal(t, 200, cfg.Simulation.MaxTurns)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
logging:
  level: debug
  format: json
game:
  data_dir: /srv/game-data
  starting_money: 500000
simulation:
  players: 4
  seed: 42
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/srv/game-data", cfg.Game.DataDir)
	assert.Equal(t, 500000, cfg.Game.StartingMoney)
	assert.Equal(t, 4, cfg.Simulation.Players)
	assert.Equal(t, int64(42), cfg.Simulation.Seed)

	// Untouched keys keep their defaults.
	assert.Equal(t, 6, cfg.Game.CardLimit)
	assert.Equal(t, 200, cfg.Simulation.MaxTurns)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging: [not: valid"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
