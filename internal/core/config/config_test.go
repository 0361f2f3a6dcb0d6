package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/skyrun/internal/core/fault"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 400.0, c.Streaming.CleanupBehind())
}

func TestDecodeOverridesDefaults(t *testing.T) {
	src := `
seed: abc
spawning:
  max_active_enemies: 4
  cooldown: 1500ms
  prewarm:
    drone: 3
pickups:
  min_distance: 120
streaming:
  cleanup_behind_distance: 250
`
	c, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "abc", c.Seed)
	assert.Equal(t, 4, c.Spawning.MaxActiveEnemies)
	assert.Equal(t, 1500*time.Millisecond, c.Spawning.Cooldown)
	assert.Equal(t, 3, c.Spawning.Prewarm["drone"])
	assert.Equal(t, 120.0, c.Pickups.MinDistance)
	assert.Equal(t, 800.0, c.Pickups.MaxDistance, "untouched fields keep defaults")
	assert.Equal(t, 250.0, c.Streaming.CleanupBehind())
}

func TestDecodeEmptyKeepsDefaults(t *testing.T) {
	c, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("spawning:\n  max_enemies: 3\n"))
	assert.True(t, errors.Is(err, fault.ErrConfiguration))
}

func TestValidateCrossField(t *testing.T) {
	c := Default()
	c.Pickups.MaxDistance = c.Pickups.MinDistance - 1
	err := c.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrConfiguration))
	assert.Contains(t, err.Error(), "MaxDistance")

	c = Default()
	c.Spawning.AltitudeMax = c.Spawning.AltitudeMin - 5
	assert.Error(t, c.Validate())

	c = Default()
	c.Spawning.SpawnChancePerChunk = 1.5
	assert.Error(t, c.Validate())

	c = Default()
	c.Seed = ""
	assert.Error(t, c.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, fault.ErrConfiguration))
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SKYRUN_SEED", "env-seed")
	t.Setenv("SKYRUN_MAX_ACTIVE_ENEMIES", "7")
	t.Setenv("SKYRUN_TIER_DISTANCE", "250.5")

	c := Default()
	require.NoError(t, c.ApplyEnv(filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "env-seed", c.Seed)
	assert.Equal(t, 7, c.Spawning.MaxActiveEnemies)
	assert.Equal(t, 250.5, c.Difficulty.TierDistance)
}

func TestApplyEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SKYRUN_MAX_TIER=9\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SKYRUN_MAX_TIER") })

	c := Default()
	require.NoError(t, c.ApplyEnv(path))
	assert.Equal(t, 9, c.Difficulty.MaxTier)
}

func TestApplyEnvRejectsGarbage(t *testing.T) {
	t.Setenv("SKYRUN_MAX_ACTIVE_ENEMIES", "many")
	err := Default().ApplyEnv()
	assert.True(t, errors.Is(err, fault.ErrConfiguration))
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", "configs", "skyrun.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2*time.Second, cfg.Spawning.Cooldown)
	assert.Equal(t, 500*time.Millisecond, cfg.Housekeeping.Interval)
	assert.Equal(t, map[string]int{"drone": 6, "gunship": 2}, cfg.Spawning.Prewarm)
	assert.Equal(t, "console", cfg.Logging.Encoding)
}
