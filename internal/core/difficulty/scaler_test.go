package difficulty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/skyrun/internal/core/config"
	"github.com/zeusync/skyrun/internal/core/events"
	"github.com/zeusync/skyrun/internal/core/events/bus"
	"github.com/zeusync/skyrun/internal/core/models"
	"github.com/zeusync/skyrun/internal/core/observability/log"
)

func newScaler(t *testing.T, cfg config.DifficultyConfig) (*Scaler, *[]events.DifficultyChanged) {
	t.Helper()
	b := bus.New()
	var got []events.DifficultyChanged
	_, err := bus.On(b, func(e events.DifficultyChanged) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)
	return New(cfg, b, log.NewNop()), &got
}

func baseConfig() config.DifficultyConfig {
	return config.DifficultyConfig{
		TierDistance:       500,
		MaxTier:            5,
		HealthMultiplier:   1.5,
		DamageMultiplier:   1.2,
		FireRateMultiplier: 1.25,
		MovementEpsilon:    0.001,
	}
}

func TestTierBoundaryFiresOnce(t *testing.T) {
	cfg := baseConfig()
	cfg.TierDistance = 1500
	s, got := newScaler(t, cfg)

	for i := 0; i < 1499; i++ {
		s.RecordMovement(1)
	}
	assert.Equal(t, 1, s.CurrentTier())
	assert.Empty(t, *got)

	s.RecordMovement(1)
	assert.Equal(t, 2, s.CurrentTier())
	require.Len(t, *got, 1)
	assert.Equal(t, events.DifficultyChanged{Tier: 2, Previous: 1, Distance: 1500}, (*got)[0])

	s.RecordMovement(10)
	assert.Len(t, *got, 1, "no retroactive or repeated events")
	assert.Equal(t, 1500.0, s.State().LastChangeDistance)
}

func TestTierFormulaAndClamp(t *testing.T) {
	s, got := newScaler(t, baseConfig())

	s.RecordMovement(499.5)
	assert.Equal(t, 1, s.CurrentTier())
	s.RecordMovement(0.5)
	assert.Equal(t, 2, s.CurrentTier())

	s.RecordMovement(10_000)
	assert.Equal(t, 5, s.CurrentTier(), "clamped to max tier")
	require.Len(t, *got, 4)
	for i, e := range *got {
		assert.Equal(t, i+2, e.Tier, "every crossed tier is announced in order")
	}
}

func TestIgnoresNegativeAndJitter(t *testing.T) {
	s, _ := newScaler(t, baseConfig())
	s.RecordMovement(100)
	s.RecordMovement(-50)
	s.RecordMovement(0.0005)
	assert.Equal(t, 100.0, s.State().Distance)
}

func TestTierMonotonic(t *testing.T) {
	s, _ := newScaler(t, baseConfig())
	last := s.CurrentTier()
	deltas := []float64{120, 0, 400, -300, 90, 700, -1000, 1, 2000}
	for _, d := range deltas {
		s.RecordMovement(d)
		assert.GreaterOrEqual(t, s.CurrentTier(), last)
		last = s.CurrentTier()
	}
}

func TestScale(t *testing.T) {
	s, _ := newScaler(t, baseConfig())
	desc := &models.EntityDescriptor{
		Name:           "gunship",
		Health:         100,
		DetectionRange: 300,
		Weapons: []models.Weapon{
			{Name: "cannon", Enabled: true, Damage: 10, FireInterval: 2, Range: 250},
		},
	}

	scaled := s.Scale(desc, 3)
	assert.Same(t, desc, scaled.Base)
	assert.Equal(t, 3, scaled.Tier)
	assert.InDelta(t, 200, scaled.Health, 1e-9)
	assert.InDelta(t, 14, scaled.Weapons[0].Damage, 1e-9)
	assert.InDelta(t, 2/1.5, scaled.Weapons[0].FireInterval, 1e-9)
	assert.Equal(t, 250.0, scaled.Weapons[0].Range)
	assert.Equal(t, 300.0, scaled.DetectionRange)

	assert.Equal(t, 10.0, desc.Weapons[0].Damage, "template untouched")
	assert.Equal(t, 100.0, desc.Health)

	tier1 := s.Scale(desc, 1)
	assert.Equal(t, desc.Health, tier1.Health)
	assert.Equal(t, 1.0, Growth(1.7, 1))
}
