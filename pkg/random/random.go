package random

import (
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// Source is the draw interface every subsystem depends on. All draws are
// synchronous and reproducible for a given seed.
type Source interface {
	Float64() float64
	IntN(n int) int
	// Range returns a uniform value in [lo, hi). It returns lo when hi <= lo.
	Range(lo, hi float64) float64
}

type pcgSource struct {
	r *rand.Rand
}

// New returns a PCG-backed source for a numeric seed.
func New(seed uint64) Source {
	return &pcgSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Derive returns an independent stream for a named subsystem. Streams derived
// from the same seed and name always produce the same sequence, no matter in
// which order other subsystems draw.
func Derive(seed, name string) Source {
	return New(Hash(seed + "/" + name))
}

// Hash turns a textual seed into a numeric one.
func Hash(seed string) uint64 {
	return xxhash.Sum64String(seed)
}

func (s *pcgSource) Float64() float64 {
	return s.r.Float64()
}

func (s *pcgSource) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return s.r.IntN(n)
}

func (s *pcgSource) Range(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + s.r.Float64()*(hi-lo)
}

// Fixed replays a scripted sequence of Float64 values and then repeats the last.
// IntN and Range are derived from the same values. Meant for tests that need
// exact draws.
type Fixed struct {
	Values []float64
	pos    int
}

func (f *Fixed) Float64() float64 {
	if len(f.Values) == 0 {
		return 0
	}
	v := f.Values[f.pos]
	if f.pos < len(f.Values)-1 {
		f.pos++
	}
	return v
}

func (f *Fixed) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	v := int(f.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

func (f *Fixed) Range(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + f.Float64()*(hi-lo)
}
