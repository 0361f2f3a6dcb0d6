package streaming

import (
	"errors"
	"time"

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

const Name = "streaming"

// Streamer keeps a window of chunks ahead of the observer and retires the
// ones that fall behind. It owns every chunk it creates.
type Streamer struct {
	cfg      config.StreamingConfig
	variants []models.Variant
	observer models.Observer
	rng      random.Source
	bus      bus.EventBus
	logger   log.Log

	active     []*models.Chunk
	nextID     models.ChunkID
	nextSpawnZ float64
	started    bool
	// regular holds indices of variants eligible after the first chunk.
	regular []int
	start   int

	err error
}

// New builds a streamer. A configuration problem (no variants, no observer,
// non-positive chunk length) is logged once and leaves the streamer disabled:
// it then spawns nothing and Err reports the cause.
func New(cfg config.StreamingConfig, variants []models.Variant, observer models.Observer, rng random.Source, b bus.EventBus, logger log.Log) *Streamer {
	s := &Streamer{
		cfg:      cfg,
		variants: variants,
		observer: observer,
		rng:      rng,
		bus:      b,
		logger:   logger.With(log.Component(Name)),
		start:    -1,
	}

	switch {
	case len(variants) == 0:
		s.err = fault.Configuration("streaming.New", fault.ErrEmptyCatalog, "cannot stream chunks")
	case models.IsNilObserver(observer):
		s.err = fault.Configuration("streaming.New", fault.ErrMissingObserver, "cannot stream chunks")
	case cfg.ChunkLength <= 0 || cfg.VisibleCount < 1:
		s.err = fault.Configuration("streaming.New", nil, "chunk length %v and visible count %d must be positive", cfg.ChunkLength, cfg.VisibleCount)
	}
	if s.err != nil {
		s.logger.Error("chunk streaming disabled", log.Error(s.err))
		return s
	}

	onlyStart := sequence.From(variants).All(func(v models.Variant) bool { return v.Start })
	for i, v := range variants {
		if v.Start && s.start < 0 {
			s.start = i
		}
		// Only start variants: reuse them rather than stall the stream.
		if !v.Start || onlyStart {
			s.regular = append(s.regular, i)
		}
	}
	return s
}

func (s *Streamer) Name() string { return Name }

// Err returns the configuration error that disabled the streamer, if any.
func (s *Streamer) Err() error { return s.err }

// Update polls the observer, streams chunks in and out and publishes the
// lifecycle events.
func (s *Streamer) Update(time.Duration) error {
	if s.err != nil {
		return nil
	}
	z := s.observer.Position().Z()

	var errs error
	for _, c := range s.Advance(z) {
		if err := s.bus.Publish(events.ChunkSpawned{Chunk: c}); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	for _, c := range s.Retire(z) {
		ev := events.ChunkDestroyed{ChunkID: c.ID, AnchorZ: c.Z(), Length: c.Length}
		if err := s.bus.Publish(ev); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if errs != nil {
		s.logger.Warn("chunk event handlers failed", log.Error(errs))
	}
	return nil
}

// Advance creates every chunk needed to cover visibleCount chunk lengths
// ahead of observerZ and returns them in creation order.
func (s *Streamer) Advance(observerZ float64) []*models.Chunk {
	if s.err != nil {
		return nil
	}
	if !s.started {
		s.started = true
		s.nextSpawnZ = observerZ - s.cfg.ChunkLength
	}

	horizon := observerZ + float64(s.cfg.VisibleCount)*s.cfg.ChunkLength
	var spawned []*models.Chunk
	for s.nextSpawnZ < horizon {
		variant := s.pickVariant()
		s.nextID++
		c := &models.Chunk{
			ID:          s.nextID,
			Anchor:      mgl64.Vec3{0, 0, s.nextSpawnZ},
			Length:      s.cfg.ChunkLength,
			Variant:     variant,
			VariantName: s.variants[variant].Name,
			State:       models.ChunkActive,
		}
		s.active = append(s.active, c)
		spawned = append(spawned, c)
		s.nextSpawnZ += s.cfg.ChunkLength

		s.logger.Debug("chunk spawned",
			log.Uint64("chunk", uint64(c.ID)),
			log.Float64("z", c.Z()),
			log.String("variant", c.VariantName),
		)
	}
	return spawned
}

// Retire removes every chunk whose anchor is further than the cleanup
// distance behind observerZ.
func (s *Streamer) Retire(observerZ float64) []*models.Chunk {
	if s.err != nil {
		return nil
	}
	limit := observerZ - s.cfg.CleanupBehind()

	var retired []*models.Chunk
	kept := s.active[:0]
	for _, c := range s.active {
		if c.Z() < limit {
			c.State = models.ChunkRetired
			retired = append(retired, c)
			continue
		}
		kept = append(kept, c)
	}
	clear(s.active[len(kept):])
	s.active = kept

	for _, c := range retired {
		s.logger.Debug("chunk retired", log.Uint64("chunk", uint64(c.ID)), log.Float64("z", c.Z()))
	}
	return retired
}

// Active returns the live chunks ordered by anchor.
func (s *Streamer) Active() []*models.Chunk {
	out := make([]*models.Chunk, len(s.active))
	copy(out, s.active)
	return out
}

// NextSpawnZ returns the anchor of the next chunk to be created.
func (s *Streamer) NextSpawnZ() float64 {
	return s.nextSpawnZ
}

func (s *Streamer) pickVariant() int {
	if s.nextID == 0 && s.start >= 0 {
		return s.start
	}
	return s.regular[s.rng.IntN(len(s.regular))]
}
