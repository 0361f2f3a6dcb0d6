package session

import (
	"maps"
	"sync"
	"time"

	"github.com/zeusync/skyrun/internal/core/events/bus"
	"github.com/zeusync/skyrun/internal/core/pickups"
	"github.com/zeusync/skyrun/internal/core/spawning"
)

// Stats is a point-in-time summary of a session.
type Stats struct {
	ID            string
	Seed          string
	Frames        int64
	SimTime       time.Duration
	ObserverZ     float64
	Tier          int
	Distance      float64
	ActiveChunks  int
	ActiveEnemies int
	Pickups       int
	PoolSize      int
	Problems      int
	// Events counts published events per type.
	Events    map[string]uint64
	Bus       bus.EventBusMetrics
	Spawning  spawning.Stats
	Placement pickups.Stats
}

func (s *Session) Stats() Stats {
	tier := s.scaler.State()
	st := Stats{
		ID:            s.id,
		Seed:          s.cfg.Seed,
		Frames:        s.clock.FrameCount(),
		SimTime:       s.clock.Now(),
		Tier:          tier.Tier,
		Distance:      tier.Distance,
		ActiveChunks:  len(s.streamer.Active()),
		ActiveEnemies: s.scheduler.ActiveCount(),
		Pickups:       len(s.placer.AllPlacements()),
		PoolSize:      s.pool.Size(),
		Problems:      len(s.problems),
		Events:        s.counter.snapshot(),
		Bus:           s.bus.GetMetrics(),
		Spawning:      s.scheduler.Stats(),
		Placement:     s.placer.Stats(),
	}
	if s.travel != nil {
		st.ObserverZ = s.travel.Position().Z()
	}
	return st
}

// eventCounter tallies published events per type.
type eventCounter struct {
	mu     sync.Mutex
	counts map[string]uint64
}

var _ bus.EventBusObserver = (*eventCounter)(nil)

func newEventCounter() *eventCounter {
	return &eventCounter{counts: make(map[string]uint64)}
}

func (c *eventCounter) OnPublish(eventType string, _ bus.Event) {
	c.mu.Lock()
	c.counts[eventType]++
	c.mu.Unlock()
}

func (c *eventCounter) OnDelivered(string, int, error) {}

func (c *eventCounter) snapshot() map[string]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.counts)
}
