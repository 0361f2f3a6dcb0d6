package spawning

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/skyrun/internal/core/config"
	"github.com/zeusync/skyrun/internal/core/difficulty"
	"github.com/zeusync/skyrun/internal/core/events"
	"github.com/zeusync/skyrun/internal/core/events/bus"
	"github.com/zeusync/skyrun/internal/core/fault"
	"github.com/zeusync/skyrun/internal/core/models"
	"github.com/zeusync/skyrun/internal/core/observability/log"
	"github.com/zeusync/skyrun/internal/core/pool"
	"github.com/zeusync/skyrun/internal/core/system"
	"github.com/zeusync/skyrun/pkg/random"
	"github.com/zeusync/skyrun/pkg/sequence"
)

const Name = "spawning"

// Deps are the collaborators a Scheduler is built from.
type Deps struct {
	// Descriptors in declaration order; weighted selection walks them in this order.
	Descriptors []*models.EntityDescriptor
	Tiers       difficulty.Tiers
	Pool        *pool.Pool[models.Poolable]
	Factory     models.Factory
	Observer    models.Observer
	Clock       system.TimeSource
	Rand        random.Source
	Bus         bus.EventBus
	Logger      log.Log
}

// Stats counts scheduler outcomes over a session.
type Stats struct {
	Batches        uint64
	Spawned        uint64
	Failed         uint64
	Despawned      uint64
	PoolHits       uint64
	PoolMisses     uint64
	SkipCooldown   uint64
	SkipCap        uint64
	SkipChance     uint64
	UnitsUnfilled  uint64
	MaxActiveSeen  int
	ActiveNow      int
	ActivePerType  map[string]int
	LastBatchAtSim time.Duration
}

// Scheduler reacts to chunk spawns by spawning hostiles under the global and
// per-type caps, and sweeps hostiles that fell behind the observer. It owns the
// active handle set exclusively.
type Scheduler struct {
	cfg     config.SpawningConfig
	deps    Deps
	logger  log.Log
	byName  map[string]*models.EntityDescriptor
	subs    bus.Group
	active  []*models.EntityHandle
	perType map[string]int
	nextID  models.HandleID

	batched   bool
	lastBatch time.Duration

	stats Stats
	err   error
}

// New builds a scheduler and subscribes it to chunk spawns. Missing
// collaborators or an empty descriptor list leave it disabled; the error is
// logged once and available from Err.
func New(cfg config.SpawningConfig, deps Deps) *Scheduler {
	s := &Scheduler{
		cfg:     cfg,
		deps:    deps,
		logger:  deps.Logger.With(log.Component(Name)),
		byName:  make(map[string]*models.EntityDescriptor, len(deps.Descriptors)),
		perType: make(map[string]int, len(deps.Descriptors)),
	}
	for _, d := range deps.Descriptors {
		s.byName[d.Name] = d
	}

	switch {
	case len(deps.Descriptors) == 0:
		s.err = fault.Configuration("spawning.New", fault.ErrEmptyCatalog, "no spawnable descriptors")
	case models.IsNilObserver(deps.Observer):
		s.err = fault.Configuration("spawning.New", fault.ErrMissingObserver, "cannot sweep without an observer")
	case deps.Pool == nil || deps.Factory == nil || deps.Tiers == nil || deps.Clock == nil || deps.Rand == nil || deps.Bus == nil:
		s.err = fault.Configuration("spawning.New", nil, "missing collaborator")
	case cfg.MaxActiveEnemies < 1 || cfg.MaxPerChunk < 1:
		s.err = fault.Configuration("spawning.New", nil, "caps must be positive")
	}
	if s.err != nil {
		s.logger.Error("enemy spawning disabled", log.Error(s.err))
		return s
	}

	if err := s.subs.Add(bus.On(deps.Bus, func(e events.ChunkSpawned) error {
		s.OnChunkSpawned(e.Chunk)
		return nil
	})); err != nil {
		s.err = fault.Configuration("spawning.New", err, "subscribe to chunk events")
		s.logger.Error("enemy spawning disabled", log.Error(s.err))
	}
	return s
}

func (s *Scheduler) Name() string { return Name }

// Err returns the configuration error that disabled the scheduler, if any.
func (s *Scheduler) Err() error { return s.err }

// Update runs the housekeeping sweep. The session throttles it.
func (s *Scheduler) Update(time.Duration) error {
	s.OnTick()
	return nil
}

// Close drops the bus subscriptions. Active handles are left as they are.
func (s *Scheduler) Close() {
	s.subs.CancelAll()
}

// ActiveCount returns the number of live hostiles.
func (s *Scheduler) ActiveCount() int {
	return len(s.active)
}

// Handles returns a snapshot of live handles in spawn order.
func (s *Scheduler) Handles() []*models.EntityHandle {
	out := make([]*models.EntityHandle, len(s.active))
	copy(out, s.active)
	return out
}

// Handle looks up a live handle.
func (s *Scheduler) Handle(id models.HandleID) (*models.EntityHandle, bool) {
	for _, h := range s.active {
		if h.ID == id {
			return h, true
		}
	}
	return nil, false
}

func (s *Scheduler) Stats() Stats {
	st := s.stats
	st.ActiveNow = len(s.active)
	st.ActivePerType = make(map[string]int, len(s.perType))
	for k, v := range s.perType {
		if v > 0 {
			st.ActivePerType[k] = v
		}
	}
	return st
}

// OnChunkSpawned decides whether the chunk gets a spawn batch and spawns it.
// Gates apply in order: cooldown since the last batch, global cap, spawn chance.
func (s *Scheduler) OnChunkSpawned(chunk *models.Chunk) {
	if s.err != nil || chunk == nil {
		return
	}

	now := s.deps.Clock.Now()
	if s.batched && now-s.lastBatch < s.cfg.Cooldown {
		s.stats.SkipCooldown++
		return
	}
	available := s.cfg.MaxActiveEnemies - len(s.active)
	if available <= 0 {
		s.stats.SkipCap++
		return
	}
	if s.deps.Rand.Float64() >= s.cfg.SpawnChancePerChunk {
		s.stats.SkipChance++
		return
	}

	s.batched = true
	s.lastBatch = now
	s.stats.Batches++
	s.stats.LastBatchAtSim = now

	tier := s.deps.Tiers.CurrentTier()
	perChunk := s.cfg.MaxPerChunk
	if tier >= 2 {
		perChunk++
	}
	batch := min(perChunk, available)
	count := 1 + s.deps.Rand.IntN(batch)

	spawned := 0
	for i := 0; i < count; i++ {
		if len(s.active) >= s.cfg.MaxActiveEnemies {
			break
		}
		desc, ok := s.SelectType(tier)
		if !ok {
			// Every eligible type is at its own cap; the batch stays partially filled.
			s.stats.UnitsUnfilled++
			continue
		}
		if _, err := s.spawn(desc, s.placement(chunk), tier); err != nil {
			s.stats.Failed++
			s.logger.Warn("spawn failed",
				log.String("descriptor", desc.Name),
				log.Uint64("chunk", uint64(chunk.ID)),
				log.String("kind", fault.KindOf(err).String()),
				log.Error(err),
			)
			continue
		}
		spawned++
	}

	s.logger.Debug("spawn batch",
		log.Uint64("chunk", uint64(chunk.ID)),
		log.Int("tier", tier),
		log.Int("requested", count),
		log.Int("spawned", spawned),
		log.Int("active", len(s.active)),
	)
}

// SelectType picks a descriptor by weight among those allowed at tier and
// below their own cap. It reports false when none is eligible.
func (s *Scheduler) SelectType(tier int) (*models.EntityDescriptor, bool) {
	eligible := sequence.From(s.deps.Descriptors).Filter(func(d *models.EntityDescriptor) bool {
		if s.cfg.TierGating && d.Tier > tier {
			return false
		}
		return s.perType[d.Name] < d.MaxSimultaneous
	}).Collect()
	if len(eligible) == 0 {
		return nil, false
	}

	total := sequence.SumFloat(sequence.From(eligible), func(d *models.EntityDescriptor) float64 { return d.SpawnWeight })
	r := s.deps.Rand.Float64() * total
	cumulative := 0.0
	for _, d := range eligible {
		cumulative += d.SpawnWeight
		if cumulative > r {
			return d, true
		}
	}
	// Rounding can leave r at the very top of the range.
	return eligible[0], true
}

// ForceSpawn spawns a named descriptor at position, bypassing the batch gates
// and per-type caps. The global cap still applies.
func (s *Scheduler) ForceSpawn(name string, position mgl64.Vec3) (*models.EntityHandle, error) {
	if s.err != nil {
		return nil, fmt.Errorf("spawning.ForceSpawn: %w", errors.Join(fault.ErrDisabled, s.err))
	}
	desc, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("spawning.ForceSpawn %q: %w", name, fault.ErrUnknownDescriptor)
	}
	if len(s.active) >= s.cfg.MaxActiveEnemies {
		return nil, fmt.Errorf("spawning.ForceSpawn %q: %w", name, fault.ErrCapReached)
	}
	h, err := s.spawn(desc, position, s.deps.Tiers.CurrentTier())
	if err != nil {
		s.stats.Failed++
		return nil, err
	}
	return h, nil
}

// NotifyDestroyed reports a hostile that died in combat. The handle leaves the
// active set and its instance goes back to the pool. Handles that are never
// reported are only reclaimed by the distance sweep.
func (s *Scheduler) NotifyDestroyed(id models.HandleID) error {
	for i, h := range s.active {
		if h.ID != id {
			continue
		}
		s.active = append(s.active[:i], s.active[i+1:]...)
		s.retire(h, events.ReasonKilled)
		return nil
	}
	return fmt.Errorf("spawning.NotifyDestroyed %d: %w", id, fault.ErrUnknownHandle)
}

// OnTick removes hostiles further than the cleanup distance behind the
// observer and hostiles whose instance vanished.
func (s *Scheduler) OnTick() {
	if s.err != nil {
		return
	}
	limit := s.deps.Observer.Position().Z() - s.cfg.CleanupDistance

	type removal struct {
		handle *models.EntityHandle
		reason events.DestroyReason
	}
	var removed []removal
	kept := s.active[:0]
	for _, h := range s.active {
		switch {
		case h.Instance == nil || h.Instance.Destroyed():
			removed = append(removed, removal{h, events.ReasonInstanceLost})
		case h.Instance.Position().Z() < limit:
			removed = append(removed, removal{h, events.ReasonLeftBehind})
		default:
			kept = append(kept, h)
		}
	}
	clear(s.active[len(kept):])
	s.active = kept

	for _, r := range removed {
		s.retire(r.handle, r.reason)
	}
}

func (s *Scheduler) spawn(desc *models.EntityDescriptor, position mgl64.Vec3, tier int) (*models.EntityHandle, error) {
	obj, slot, ok := s.deps.Pool.Acquire(desc.Prototype)
	if ok {
		s.stats.PoolHits++
	} else {
		s.stats.PoolMisses++
		s.logger.Warn("constructing fresh instance", log.Error(fault.PoolExhausted("spawning.spawn", desc.Prototype)))
		fresh, err := s.deps.Factory.New(desc.Prototype)
		if err != nil {
			return nil, fault.Configuration("spawning.spawn", err, "construct %q", desc.Prototype)
		}
		obj = fresh
		slot = s.deps.Pool.Enroll(desc.Prototype, obj)
	}

	inst, ok := obj.(models.Spawnable)
	if !ok {
		_, _ = s.deps.Pool.Discard(slot)
		err := fault.MissingCapability("spawning.spawn", desc.Prototype)
		s.logger.Error("discarding instance", log.String("descriptor", desc.Name), log.Error(err))
		return nil, err
	}

	var scaled *models.ScaledDescriptor
	effective := desc
	if tier > 1 {
		scaled = s.deps.Tiers.Scale(desc, tier)
		effective = scaled.Descriptor()
	}
	if err := inst.Initialize(effective, position); err != nil {
		_, _ = s.deps.Pool.Discard(slot)
		return nil, fmt.Errorf("spawning.spawn %q: initialize: %w", desc.Name, err)
	}
	inst.SetActive(true)

	s.nextID++
	h := &models.EntityHandle{
		ID:         s.nextID,
		Descriptor: desc,
		Scaled:     scaled,
		Slot:       slot,
		Instance:   inst,
		Active:     true,
	}
	s.active = append(s.active, h)
	s.perType[desc.Name]++
	s.stats.Spawned++
	s.stats.MaxActiveSeen = max(s.stats.MaxActiveSeen, len(s.active))

	if err := s.deps.Bus.Publish(events.EnemySpawned{Handle: h}); err != nil {
		s.logger.Warn("enemy spawned handlers failed", log.Error(err))
	}
	return h, nil
}

// retire publishes EnemyDestroyed and only then hands the slot back to the
// pool, so handlers never see the instance reused. Instances that vanished are
// dropped from the pool instead of being parked.
func (s *Scheduler) retire(h *models.EntityHandle, reason events.DestroyReason) {
	h.Active = false
	s.perType[h.Descriptor.Name]--
	s.stats.Despawned++

	if err := s.deps.Bus.Publish(events.EnemyDestroyed{Handle: h, Reason: reason}); err != nil {
		s.logger.Warn("enemy destroyed handlers failed", log.Error(err))
	}

	var err error
	if reason == events.ReasonInstanceLost {
		_, err = s.deps.Pool.Discard(h.Slot)
	} else {
		err = s.deps.Pool.Release(h.Slot)
	}
	if err != nil {
		s.logger.Warn("pool slot bookkeeping failed", log.Uint64("handle", uint64(h.ID)), log.Error(err))
	}
	s.logger.Debug("enemy despawned", log.Uint64("handle", uint64(h.ID)), log.String("reason", reason.String()))
}

// placement draws a position in the lateral and altitude bands, anywhere along
// the chunk. Obstructions are not checked.
func (s *Scheduler) placement(chunk *models.Chunk) mgl64.Vec3 {
	r := s.deps.Rand
	return mgl64.Vec3{
		r.Range(-s.cfg.LateralHalfWidth, s.cfg.LateralHalfWidth),
		r.Range(s.cfg.AltitudeMin, s.cfg.AltitudeMax),
		r.Range(chunk.Z(), chunk.Z()+chunk.Length),
	}
}
