package difficulty

import (
	"math"

	"github.com/zeusync/skyrun/internal/core/config"
	"github.com/zeusync/skyrun/internal/core/events"
	"github.com/zeusync/skyrun/internal/core/events/bus"
	"github.com/zeusync/skyrun/internal/core/models"
	"github.com/zeusync/skyrun/internal/core/observability/log"
)

// Tiers is the read side the spawn scheduler depends on.
type Tiers interface {
	CurrentTier() int
	Scale(desc *models.EntityDescriptor, tier int) *models.ScaledDescriptor
}

var _ Tiers = (*Scaler)(nil)

// Scaler turns travelled distance into a difficulty tier. The tier never
// decreases during a session.
type Scaler struct {
	cfg    config.DifficultyConfig
	bus    bus.EventBus
	logger log.Log
	state  models.TierState
}

func New(cfg config.DifficultyConfig, b bus.EventBus, logger log.Log) *Scaler {
	if cfg.MaxTier < 1 {
		cfg.MaxTier = 1
	}
	return &Scaler{
		cfg:    cfg,
		bus:    b,
		logger: logger.With(log.Component("difficulty")),
		state:  models.TierState{Tier: 1},
	}
}

// RecordMovement adds a travel delta. Negative deltas and deltas below the
// jitter epsilon are ignored.
func (s *Scaler) RecordMovement(delta float64) {
	if delta <= s.cfg.MovementEpsilon || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return
	}
	s.state.Distance += delta

	target := s.tierFor(s.state.Distance)
	// A large delta can cross several tiers; each one is announced in order.
	for s.state.Tier < target {
		previous := s.state.Tier
		s.state.Tier++
		s.state.LastChangeDistance = s.state.Distance

		s.logger.Info("difficulty tier changed",
			log.Int("tier", s.state.Tier),
			log.Int("previous", previous),
			log.Float64("distance", s.state.Distance),
		)
		ev := events.DifficultyChanged{Tier: s.state.Tier, Previous: previous, Distance: s.state.Distance}
		if err := s.bus.Publish(ev); err != nil {
			s.logger.Warn("difficulty change handlers failed", log.Error(err))
		}
	}
}

func (s *Scaler) CurrentTier() int {
	return s.state.Tier
}

func (s *Scaler) State() models.TierState {
	return s.state
}

func (s *Scaler) tierFor(distance float64) int {
	tier := int(math.Floor(distance/s.cfg.TierDistance)) + 1
	return min(max(tier, 1), s.cfg.MaxTier)
}

// Growth is the multiplier a tier applies for a per-tier factor mult.
func Growth(mult float64, tier int) float64 {
	if tier < 1 {
		tier = 1
	}
	return 1 + (mult-1)*float64(tier-1)
}

// Scale builds a tier-adjusted copy of desc. Health and damage grow, fire
// intervals shrink, ranges and movement stay as authored.
func (s *Scaler) Scale(desc *models.EntityDescriptor, tier int) *models.ScaledDescriptor {
	scaled := &models.ScaledDescriptor{
		EntityDescriptor: *desc,
		Base:             desc,
		Tier:             tier,
	}
	health := Growth(s.cfg.HealthMultiplier, tier)
	damage := Growth(s.cfg.DamageMultiplier, tier)
	rate := Growth(s.cfg.FireRateMultiplier, tier)

	scaled.Health = desc.Health * health
	scaled.Weapons = make([]models.Weapon, len(desc.Weapons))
	for i, w := range desc.Weapons {
		w.Damage *= damage
		if rate > 0 {
			w.FireInterval /= rate
		}
		scaled.Weapons[i] = w
	}
	return scaled
}
