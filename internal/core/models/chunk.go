package models

import (
	"reflect"

	"github.com/go-gl/mathgl/mgl64"
)

type ChunkID uint64

type ChunkState uint8

const (
	ChunkActive ChunkState = iota
	ChunkRetired
)

func (s ChunkState) String() string {
	if s == ChunkRetired {
		return "retired"
	}
	return "active"
}

// Chunk is one fixed-length world segment. Anchor is the segment's near edge;
// the segment spans [Anchor.Z, Anchor.Z+Length) along the travel axis.
type Chunk struct {
	ID          ChunkID
	Anchor      mgl64.Vec3
	Length      float64
	Variant     int
	VariantName string
	State       ChunkState
}

func (c *Chunk) Z() float64 {
	return c.Anchor.Z()
}

// Contains reports whether z lies inside the chunk's longitudinal span.
func (c *Chunk) Contains(z float64) bool {
	return z >= c.Anchor.Z() && z < c.Anchor.Z()+c.Length
}

// Variant is a terrain content template for chunks.
type Variant struct {
	Name    string `yaml:"name" validate:"required"`
	Content string `yaml:"content" validate:"required"`
	// Start marks the variant used for the very first chunk only.
	Start bool `yaml:"start,omitempty"`
}

// Observer provides the position the world streams around. Z is the travel axis.
type Observer interface {
	Position() mgl64.Vec3
}

// IsNilObserver reports whether o is absent, including a nil pointer stored
// in the interface.
func IsNilObserver(o Observer) bool {
	if o == nil {
		return true
	}
	v := reflect.ValueOf(o)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}
