package pool

import (
	"fmt"

	"github.com/zeusync/skyrun/internal/core/fault"
	"github.com/zeusync/skyrun/pkg/generic"
	"github.com/zeusync/skyrun/pkg/sequence"
)

// SlotID is a stable, generation-checked index into the pool's slab.
type SlotID = generic.Ref

type slot[T any] struct {
	prototype string
	instance  T
	inUse     bool
}

// Pool is a reusable-object pool keyed by prototype id. Every instance lives in
// one slab slot; free slots are queued FIFO per prototype. An instance is either
// queued as free or handed out, never both.
//
// Pool is not safe for concurrent use; it belongs to the tick thread.
type Pool[T any] struct {
	slots     *generic.Slab[slot[T]]
	free      map[string]*sequence.Queue[SlotID]
	factory   func(prototype string) (T, error)
	onAcquire func(T)
	onRelease func(T)
}

type Option[T any] func(*Pool[T])

// WithFactory sets the constructor used by Prewarm.
func WithFactory[T any](f func(prototype string) (T, error)) Option[T] {
	return func(p *Pool[T]) { p.factory = f }
}

// WithAcquireHook runs on every instance handed out by Acquire.
func WithAcquireHook[T any](f func(T)) Option[T] {
	return func(p *Pool[T]) { p.onAcquire = f }
}

// WithReleaseHook runs on every instance returned by Release or Prewarm, typically to deactivate it.
func WithReleaseHook[T any](f func(T)) Option[T] {
	return func(p *Pool[T]) { p.onRelease = f }
}

func New[T any](opts ...Option[T]) *Pool[T] {
	p := &Pool[T]{
		slots: generic.NewSlab[slot[T]](64),
		free:  make(map[string]*sequence.Queue[SlotID]),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prewarm constructs count parked instances of prototype.
func (p *Pool[T]) Prewarm(prototype string, count int) error {
	if p.factory == nil {
		return fault.Configuration("pool.Prewarm", nil, "no factory for prototype %q", prototype)
	}
	for i := 0; i < count; i++ {
		inst, err := p.factory(prototype)
		if err != nil {
			return fault.Configuration("pool.Prewarm", err, "construct %q", prototype)
		}
		if p.onRelease != nil {
			p.onRelease(inst)
		}
		id := p.slots.Insert(slot[T]{prototype: prototype, instance: inst})
		p.queue(prototype).Enqueue(id)
	}
	return nil
}

// Acquire hands out the oldest parked instance of prototype. It reports false
// when none is parked; callers construct a fresh instance and may Enroll it.
func (p *Pool[T]) Acquire(prototype string) (T, SlotID, bool) {
	var zero T
	q, ok := p.free[prototype]
	if !ok {
		return zero, SlotID{}, false
	}
	for {
		id, ok := q.Dequeue()
		if !ok {
			return zero, SlotID{}, false
		}
		s, ok := p.slots.Ptr(id)
		if !ok {
			continue
		}
		s.inUse = true
		if p.onAcquire != nil {
			p.onAcquire(s.instance)
		}
		return s.instance, id, true
	}
}

// Enroll registers a freshly constructed, in-use instance so a later Release parks it.
func (p *Pool[T]) Enroll(prototype string, instance T) SlotID {
	return p.slots.Insert(slot[T]{prototype: prototype, instance: instance, inUse: true})
}

// Release parks an in-use instance at the back of its prototype's free queue.
func (p *Pool[T]) Release(id SlotID) error {
	s, ok := p.slots.Ptr(id)
	if !ok {
		return fmt.Errorf("pool.Release %d/%d: %w", id.Index, id.Generation, fault.ErrStaleSlot)
	}
	if !s.inUse {
		return fmt.Errorf("pool.Release %d/%d: %w", id.Index, id.Generation, fault.ErrDoubleRelease)
	}
	s.inUse = false
	if p.onRelease != nil {
		p.onRelease(s.instance)
	}
	p.queue(s.prototype).Enqueue(id)
	return nil
}

// Discard drops the slot for good. Used for instances that were destroyed
// externally or failed validation and must never be handed out again.
func (p *Pool[T]) Discard(id SlotID) (T, error) {
	var zero T
	s, ok := p.slots.Remove(id)
	if !ok {
		return zero, fmt.Errorf("pool.Discard %d/%d: %w", id.Index, id.Generation, fault.ErrStaleSlot)
	}
	if !s.inUse {
		if q, ok := p.free[s.prototype]; ok {
			q.RemoveFunc(func(other SlotID) bool { return other == id })
		}
	}
	return s.instance, nil
}

// Instance returns the instance behind a live slot.
func (p *Pool[T]) Instance(id SlotID) (T, bool) {
	s, ok := p.slots.Get(id)
	return s.instance, ok
}

// InUse reports whether the slot is currently handed out.
func (p *Pool[T]) InUse(id SlotID) bool {
	s, ok := p.slots.Get(id)
	return ok && s.inUse
}

// Free returns the number of parked instances of prototype.
func (p *Pool[T]) Free(prototype string) int {
	if q, ok := p.free[prototype]; ok {
		return q.Len()
	}
	return 0
}

// Size returns the number of instances the pool knows about, parked or not.
func (p *Pool[T]) Size() int {
	return p.slots.Len()
}

func (p *Pool[T]) queue(prototype string) *sequence.Queue[SlotID] {
	q, ok := p.free[prototype]
	if !ok {
		q = sequence.NewQueue[SlotID](8)
		p.free[prototype] = q
	}
	return q
}
