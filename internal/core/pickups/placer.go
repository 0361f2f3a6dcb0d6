package pickups

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/skyrun/internal/core/config"
	"github.com/zeusync/skyrun/internal/core/events"
	"github.com/zeusync/skyrun/internal/core/events/bus"
	"github.com/zeusync/skyrun/internal/core/fault"
	"github.com/zeusync/skyrun/internal/core/models"
	"github.com/zeusync/skyrun/internal/core/observability/log"
	"github.com/zeusync/skyrun/pkg/random"
	"github.com/zeusync/skyrun/pkg/sequence"
)

const Name = "pickups"

type Deps struct {
	// Authored is optional; without it no hand-placed pickups are scanned.
	Authored models.AuthoredPickups
	// Factory is optional; without it accepted placements are records only.
	Factory models.PickupFactory
	Rand    random.Source
	Bus     bus.EventBus
	Logger  log.Log
}

type Stats struct {
	Authored   uint64
	Placed     uint64
	Forced     uint64
	SkipChance uint64
	Failed     uint64
	Dropped    uint64
	Pruned     uint64
	Tracked    int
}

// Placer decides per chunk whether a pickup goes in and keeps placed pickups
// apart by a minimum distance. It owns the placement records.
type Placer struct {
	cfg    config.PickupsConfig
	deps   Deps
	logger log.Log
	subs   bus.Group

	records []models.PickupRecord
	// lastZ is the longitudinal position of the newest accepted record.
	lastZ   float64
	started bool

	stats Stats
	err   error
}

func New(cfg config.PickupsConfig, deps Deps) *Placer {
	p := &Placer{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger.With(log.Component(Name)),
	}
	switch {
	case deps.Rand == nil || deps.Bus == nil:
		p.err = fault.Configuration("pickups.New", nil, "missing collaborator")
	case cfg.MaxAttempts < 1:
		p.err = fault.Configuration("pickups.New", nil, "max attempts %d must be positive", cfg.MaxAttempts)
	case cfg.MaxDistance < cfg.MinDistance:
		p.err = fault.Configuration("pickups.New", nil, "max distance %v below min distance %v", cfg.MaxDistance, cfg.MinDistance)
	}
	if p.err != nil {
		p.logger.Error("pickup placement disabled", log.Error(p.err))
		return p
	}

	err := p.subs.Add(bus.On(deps.Bus, func(e events.ChunkSpawned) error {
		p.OnChunkSpawned(e.Chunk)
		return nil
	}))
	if err == nil {
		err = p.subs.Add(bus.On(deps.Bus, func(e events.ChunkDestroyed) error {
			p.OnChunkDestroyed(e)
			return nil
		}))
	}
	if err != nil {
		p.subs.CancelAll()
		p.err = fault.Configuration("pickups.New", err, "subscribe to chunk events")
		p.logger.Error("pickup placement disabled", log.Error(p.err))
	}
	return p
}

func (p *Placer) Name() string { return Name }

func (p *Placer) Err() error { return p.err }

func (p *Placer) Close() { p.subs.CancelAll() }

func (p *Placer) Stats() Stats {
	st := p.stats
	st.Tracked = len(p.records)
	return st
}

// AllPlacements returns the tracked records in acceptance order.
func (p *Placer) AllPlacements() []models.PickupRecord {
	out := make([]models.PickupRecord, len(p.records))
	copy(out, p.records)
	return out
}

// OnChunkSpawned registers authored pickups inside the chunk, then places at
// most one new pickup.
func (p *Placer) OnChunkSpawned(chunk *models.Chunk) {
	if p.err != nil || chunk == nil {
		return
	}
	if !p.started {
		p.started = true
		p.lastZ = chunk.Z()
	}

	if p.deps.Authored != nil {
		for _, pos := range p.deps.Authored.Scan(chunk.Z(), chunk.Z()+chunk.Length) {
			p.record(models.PickupRecord{Position: pos, Source: models.SourceAuthoredScan, ChunkID: chunk.ID})
			p.stats.Authored++
		}
	}

	forced := chunk.Z()-p.lastZ > p.cfg.MaxDistance
	if !forced && p.deps.Rand.Float64() >= p.cfg.SpawnChance {
		p.stats.SkipChance++
		return
	}

	for attempt := 0; attempt < p.cfg.MaxAttempts; attempt++ {
		if _, err := p.Place(p.candidate(chunk), chunk.ID); err == nil {
			if forced {
				p.stats.Forced++
			}
			return
		}
	}

	p.stats.Failed++
	p.logger.Info("pickup placement skipped",
		log.Uint64("chunk", uint64(chunk.ID)),
		log.Bool("forced", forced),
		log.Error(fault.PlacementFailed("pickups.OnChunkSpawned", p.cfg.MaxAttempts)),
	)
}

// Consider reports whether position keeps the minimum distance to every
// tracked record.
func (p *Placer) Consider(position mgl64.Vec3) error {
	minDist := p.cfg.MinDistance
	for _, r := range p.records {
		if d := r.Position.Sub(position).Len(); d < minDist {
			return fmt.Errorf("pickups.Consider %v: %.2f from %v: %w", position, d, r.Position, fault.ErrTooClose)
		}
	}
	return nil
}

// Place accepts position when it passes Consider, creates the world object
// and records it.
func (p *Placer) Place(position mgl64.Vec3, chunk models.ChunkID) (models.PickupRecord, error) {
	if p.err != nil {
		return models.PickupRecord{}, fmt.Errorf("pickups.Place: %w", fault.ErrDisabled)
	}
	if err := p.Consider(position); err != nil {
		return models.PickupRecord{}, err
	}
	rec := models.PickupRecord{Position: position, Source: models.SourcePlaced, ChunkID: chunk}
	if p.deps.Factory != nil {
		obj, err := p.deps.Factory.Place(position)
		if err != nil {
			return models.PickupRecord{}, fmt.Errorf("pickups.Place %v: %w", position, err)
		}
		rec.Object = obj
	}
	p.record(rec)
	p.stats.Placed++
	p.logger.Debug("pickup placed", log.Uint64("chunk", uint64(chunk)), log.Float64("z", position.Z()))
	return rec, nil
}

// OnChunkDestroyed drops records inside the retired span, removing their
// objects, and prunes records whose object is already gone.
func (p *Placer) OnChunkDestroyed(e events.ChunkDestroyed) {
	if p.err != nil {
		return
	}
	dropped, kept := sequence.From(p.records).Partition(func(r models.PickupRecord) bool {
		return e.Contains(r.Position.Z())
	})
	for _, r := range dropped {
		if r.Object != nil && !r.Object.Destroyed() {
			r.Object.Remove()
		}
		p.stats.Dropped++
	}

	live := kept[:0]
	for _, r := range kept {
		if r.Object != nil && r.Object.Destroyed() {
			p.stats.Pruned++
			continue
		}
		live = append(live, r)
	}
	p.records = live
}

func (p *Placer) record(r models.PickupRecord) {
	p.records = append(p.records, r)
	if !p.started {
		p.started = true
		p.lastZ = r.Position.Z()
		return
	}
	p.lastZ = max(p.lastZ, r.Position.Z())
}

func (p *Placer) candidate(chunk *models.Chunk) mgl64.Vec3 {
	r := p.deps.Rand
	return mgl64.Vec3{
		r.Range(-p.cfg.LateralHalfWidth, p.cfg.LateralHalfWidth),
		r.Range(p.cfg.AltitudeMin, p.cfg.AltitudeMax),
		r.Range(chunk.Z(), chunk.Z()+chunk.Length),
	}
}
