package models

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/skyrun/internal/core/pool"
)

type HandleID uint64

// Poolable is anything the entity pool can hold.
type Poolable interface {
	// SetActive toggles the instance between live and parked.
	SetActive(active bool)
}

// Spawnable is the capability a spawned hostile must offer. Instances that
// only satisfy Poolable are rejected at spawn time.
type Spawnable interface {
	Poolable
	Initialize(desc *EntityDescriptor, position mgl64.Vec3) error
	Position() mgl64.Vec3
	// Destroyed reports that the instance was killed or removed externally.
	Destroyed() bool
}

// Factory constructs fresh instances for a prototype id.
type Factory interface {
	New(prototype string) (Poolable, error)
	Has(prototype string) bool
}

// EntityHandle identifies one live spawned instance.
type EntityHandle struct {
	ID         HandleID
	Descriptor *EntityDescriptor
	// Scaled is nil when the instance runs with the unscaled descriptor.
	Scaled   *ScaledDescriptor
	Slot     pool.SlotID
	Instance Spawnable
	Active   bool
}

// Position reports the instance's current position.
func (h *EntityHandle) Position() mgl64.Vec3 {
	return h.Instance.Position()
}

// Effective returns the descriptor the instance was initialized with.
func (h *EntityHandle) Effective() *EntityDescriptor {
	if h.Scaled != nil {
		return h.Scaled.Descriptor()
	}
	return h.Descriptor
}
