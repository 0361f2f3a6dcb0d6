package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/skyrun/internal/core/config"
	"github.com/zeusync/skyrun/internal/core/events"
)

func TestSimulateSeed(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "error"
	opts := options{frames: 600, step: 16 * time.Millisecond, speed: 120}

	a, err := simulate(context.Background(), *cfg, "alpha", opts)
	require.NoError(t, err)
	assert.Equal(t, "alpha", a.Seed)
	assert.Equal(t, int64(600), a.Frames)
	assert.Zero(t, a.Problems)
	assert.Positive(t, a.Events[events.TypeChunkSpawned])
	assert.LessOrEqual(t, a.MaxActive, cfg.Spawning.MaxActiveEnemies)

	b, err := simulate(context.Background(), *cfg, "alpha", opts)
	require.NoError(t, err)
	assert.Equal(t, a.Spawned, b.Spawned)
	assert.Equal(t, a.Events, b.Events)
}

func TestSimulateMissingCatalog(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "error"
	_, err := simulate(context.Background(), *cfg, "x", options{catalogPath: "does-not-exist.yaml", frames: 1, step: time.Millisecond})
	assert.Error(t, err)
}

func TestRunPrintsSummariesInSeedOrder(t *testing.T) {
	var out bytes.Buffer
	opts := options{seeds: "alpha, beta", frames: 600, step: 16 * time.Millisecond, speed: 120, parallel: 2}
	require.NoError(t, run(context.Background(), opts, &out))

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0]["seed"])
	assert.Equal(t, "beta", got[1]["seed"])
	assert.Equal(t, "9.6s", got[0]["sim_time"])
}

func TestRunStreamsOneDocumentPerSession(t *testing.T) {
	var out bytes.Buffer
	opts := options{seeds: "a,b,c", frames: 100, step: 16 * time.Millisecond, speed: 120, parallel: 2, stream: true}
	require.NoError(t, run(context.Background(), opts, &out))

	dec := yaml.NewDecoder(&out)
	seen := map[string]bool{}
	for {
		var sum summary
		err := dec.Decode(&sum)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, "1.6s", sum.SimTime)
		seen[sum.Seed] = true
	}
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, seen)
}
