package generic

// Slab is an arena of values addressed by stable indices. Removed slots are
// recycled; each reuse bumps the slot generation so stale references can be
// detected.
type Slab[T any] struct {
	values []T
	gens   []uint32
	live   []bool
	free   []uint32
}

// Ref addresses a slab slot at a specific generation.
type Ref struct {
	Index      uint32
	Generation uint32
}

func NewSlab[T any](capacity int) *Slab[T] {
	return &Slab[T]{
		values: make([]T, 0, capacity),
		gens:   make([]uint32, 0, capacity),
		live:   make([]bool, 0, capacity),
	}
}

// Insert stores value and returns its reference.
func (s *Slab[T]) Insert(value T) Ref {
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		s.values[idx] = value
		s.live[idx] = true
		return Ref{Index: idx, Generation: s.gens[idx]}
	}
	s.values = append(s.values, value)
	s.gens = append(s.gens, 0)
	s.live = append(s.live, true)
	return Ref{Index: uint32(len(s.values) - 1), Generation: 0}
}

// Get returns the value for ref if it is still live.
func (s *Slab[T]) Get(ref Ref) (T, bool) {
	var zero T
	if !s.Valid(ref) {
		return zero, false
	}
	return s.values[ref.Index], true
}

// Ptr returns a pointer into the slab for in-place mutation. The pointer is
// invalidated by the next Insert.
func (s *Slab[T]) Ptr(ref Ref) (*T, bool) {
	if !s.Valid(ref) {
		return nil, false
	}
	return &s.values[ref.Index], true
}

// Remove frees the slot. It reports false for stale or unknown references.
func (s *Slab[T]) Remove(ref Ref) (T, bool) {
	var zero T
	if !s.Valid(ref) {
		return zero, false
	}
	v := s.values[ref.Index]
	s.values[ref.Index] = zero
	s.live[ref.Index] = false
	s.gens[ref.Index]++
	s.free = append(s.free, ref.Index)
	return v, true
}

func (s *Slab[T]) Valid(ref Ref) bool {
	return int(ref.Index) < len(s.values) && s.live[ref.Index] && s.gens[ref.Index] == ref.Generation
}

// Len returns the number of live slots.
func (s *Slab[T]) Len() int {
	return len(s.values) - len(s.free)
}
