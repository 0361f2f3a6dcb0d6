package models

import "github.com/go-gl/mathgl/mgl64"

type PickupSource uint8

const (
	// SourceAuthoredScan marks hand-placed content found by scanning. Accepted as-is.
	SourceAuthoredScan PickupSource = iota
	// SourcePlaced marks pickups placed by the placer under the spacing rule.
	SourcePlaced
)

func (s PickupSource) String() string {
	if s == SourceAuthoredScan {
		return "authored"
	}
	return "placed"
}

// PickupObject is the world object backing a placed pickup.
type PickupObject interface {
	Destroyed() bool
	Remove()
}

// PickupFactory creates the world object for an accepted placement.
type PickupFactory interface {
	Place(position mgl64.Vec3) (PickupObject, error)
}

// AuthoredPickups exposes pre-authored pickup positions for a longitudinal range.
type AuthoredPickups interface {
	// Scan returns positions with minZ <= z < maxZ.
	Scan(minZ, maxZ float64) []mgl64.Vec3
}

type PickupRecord struct {
	Position mgl64.Vec3
	Source   PickupSource
	ChunkID  ChunkID
	// Object is nil for authored records and records accepted without a factory.
	Object PickupObject
}

// TierState is the difficulty progress of a session.
type TierState struct {
	Tier               int
	Distance           float64
	LastChangeDistance float64
}
