// Package session assembles the world core for one run: it builds the event
// bus, the entity pool and the four subsystems once, wires them explicitly and
// drives them from a tick loop.
package session

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/skyrun/internal/core/catalog"
	"github.com/zeusync/skyrun/internal/core/config"
	"github.com/zeusync/skyrun/internal/core/difficulty"
	"github.com/zeusync/skyrun/internal/core/events/bus"
	"github.com/zeusync/skyrun/internal/core/fault"
	"github.com/zeusync/skyrun/internal/core/models"
	"github.com/zeusync/skyrun/internal/core/observability/log"
	"github.com/zeusync/skyrun/internal/core/pickups"
	"github.com/zeusync/skyrun/internal/core/pool"
	"github.com/zeusync/skyrun/internal/core/spawning"
	"github.com/zeusync/skyrun/internal/core/streaming"
	"github.com/zeusync/skyrun/internal/core/system"
	"github.com/zeusync/skyrun/pkg/random"
	"github.com/zeusync/skyrun/pkg/sequence"
)

// Content is everything a session needs from the game content side.
type Content struct {
	Catalog *catalog.Catalog
	Factory models.Factory
	// Terrain resolves variant content references; nil skips the check.
	Terrain catalog.Resolver
	// Authored and Pickups are optional.
	Authored models.AuthoredPickups
	Pickups  models.PickupFactory
}

type Session struct {
	id     string
	cfg    *config.Config
	logger log.Log

	bus     bus.EventBus
	counter *eventCounter
	clock   *system.Clock
	runner  *system.Runner
	travel  *travel
	pool    *pool.Pool[models.Poolable]

	scaler    *difficulty.Scaler
	streamer  *streaming.Streamer
	scheduler *spawning.Scheduler
	placer    *pickups.Placer

	report   catalog.Report
	problems []error
	stopped  bool
}

// New validates cfg and builds a session. Content problems do not fail New:
// each one is logged once and disables the subsystem it affects, see Problems.
func New(cfg *config.Config, observer models.Observer, content Content, logger log.Log) (*Session, error) {
	if cfg == nil {
		return nil, fault.Configuration("session.New", nil, "nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	base := logger.With(log.String("session", id))
	s := &Session{
		id:      id,
		cfg:     cfg,
		logger:  base.With(log.Component("session")),
		bus:     bus.New(),
		counter: newEventCounter(),
		clock:   &system.Clock{},
	}
	s.bus.AddObserver(s.counter)
	s.runner = system.NewRunner(s.clock)
	s.scaler = difficulty.New(cfg.Difficulty, s.bus, base)

	cat := content.Catalog
	if cat == nil {
		cat = &catalog.Catalog{}
	}
	var prototypes catalog.Resolver
	if content.Factory != nil {
		prototypes = content.Factory
	}
	report, err := cat.Validate(prototypes, content.Terrain)
	if err != nil {
		s.problem("catalog rejected entries", err)
	}
	for _, w := range report.Warnings {
		s.logger.Warn("catalog warning", log.String("detail", w))
	}
	s.report = report
	if cfg.Spawning.TierGating && len(report.Valid) > 0 &&
		!sequence.From(report.Valid).Any(func(d *models.EntityDescriptor) bool { return d.Tier <= 1 }) {
		s.logger.Warn("no descriptor is eligible at tier 1, spawning waits for the first tier change")
	}

	s.pool = s.buildPool(content.Factory)

	// The core only sees the per-tick sample, never the live observer.
	var sampled models.Observer
	if !models.IsNilObserver(observer) {
		s.travel = &travel{source: observer, scaler: s.scaler}
		sampled = s.travel
	}

	s.streamer = streaming.New(cfg.Streaming, report.Variants, sampled,
		random.Derive(cfg.Seed, streaming.Name), s.bus, base)
	s.scheduler = spawning.New(cfg.Spawning, spawning.Deps{
		Descriptors: report.Valid,
		Tiers:       s.scaler,
		Pool:        s.pool,
		Factory:     content.Factory,
		Observer:    sampled,
		Clock:       s.clock,
		Rand:        random.Derive(cfg.Seed, spawning.Name),
		Bus:         s.bus,
		Logger:      base,
	})
	s.placer = pickups.New(cfg.Pickups, pickups.Deps{
		Authored: content.Authored,
		Factory:  content.Pickups,
		Rand:     random.Derive(cfg.Seed, pickups.Name),
		Bus:      s.bus,
		Logger:   base,
	})
	for _, err := range []error{s.streamer.Err(), s.scheduler.Err(), s.placer.Err()} {
		if err != nil {
			s.problems = append(s.problems, err)
		}
	}

	if s.travel != nil {
		if err := s.runner.Register(s.travel, system.PriorityHigh, system.EveryFrame()); err != nil {
			return nil, err
		}
	}
	if err := s.runner.Register(s.streamer, system.PriorityNormal, system.EveryFrame()); err != nil {
		return nil, err
	}
	if err := s.runner.Register(s.scheduler, system.PriorityLow, system.FixedInterval(cfg.Housekeeping.Interval)); err != nil {
		return nil, err
	}

	s.logger.Info("session started",
		log.String("seed", cfg.Seed),
		log.Int("descriptors", len(report.Valid)),
		log.Int("variants", len(report.Variants)),
		log.Int("problems", len(s.problems)),
	)
	return s, nil
}

func (s *Session) buildPool(factory models.Factory) *pool.Pool[models.Poolable] {
	opts := []pool.Option[models.Poolable]{
		pool.WithAcquireHook(func(p models.Poolable) { p.SetActive(true) }),
		pool.WithReleaseHook(func(p models.Poolable) { p.SetActive(false) }),
	}
	if factory != nil {
		opts = append(opts, pool.WithFactory(factory.New))
	}
	p := pool.New(opts...)

	for _, proto := range slices.Sorted(maps.Keys(s.cfg.Spawning.Prewarm)) {
		n := s.cfg.Spawning.Prewarm[proto]
		if err := p.Prewarm(proto, n); err != nil {
			s.problem("prewarm failed", err)
			continue
		}
		s.logger.Debug("pool prewarmed", log.String("prototype", proto), log.Int("count", n))
	}
	return p
}

func (s *Session) problem(msg string, err error) {
	s.problems = append(s.problems, err)
	s.logger.Error(msg, log.Error(err))
}

func (s *Session) ID() string { return s.id }

// Problems returns the configuration errors found while building the session.
func (s *Session) Problems() []error {
	return slices.Clone(s.problems)
}

// Tick advances simulated time by dt and runs every due system.
func (s *Session) Tick(dt time.Duration) error {
	if s.stopped {
		return fmt.Errorf("session %s: %w", s.id, fault.ErrDisabled)
	}
	return s.runner.Tick(dt)
}

// Run ticks frames times with a fixed step, calling step before each tick.
// System errors are logged and do not stop the loop.
func (s *Session) Run(ctx context.Context, frames int, dt time.Duration, step func(frame int)) error {
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if step != nil {
			step(i)
		}
		if err := s.Tick(dt); err != nil {
			if errors.Is(err, fault.ErrDisabled) {
				return err
			}
			s.logger.Warn("tick failed", log.Int64("frame", s.clock.FrameCount()), log.Error(err))
		}
	}
	return nil
}

// Stop detaches every subsystem from the bus. The session cannot be ticked afterwards.
func (s *Session) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	s.scheduler.Close()
	s.placer.Close()
	s.logger.Info("session stopped",
		log.Int64("frames", s.clock.FrameCount()),
		log.Duration("sim_time", s.clock.Now()),
	)
}

func (s *Session) Bus() bus.EventBus { return s.bus }
func (s *Session) Clock() *system.Clock { return s.clock }
func (s *Session) Scaler() *difficulty.Scaler { return s.scaler }
func (s *Session) Streamer() *streaming.Streamer { return s.streamer }
func (s *Session) Scheduler() *spawning.Scheduler { return s.scheduler }
func (s *Session) Placer() *pickups.Placer { return s.placer }
func (s *Session) Pool() *pool.Pool[models.Poolable] { return s.pool }
