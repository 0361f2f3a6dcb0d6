// Package events declares the lifecycle events exchanged between the world
// streaming subsystems.
package events

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/skyrun/internal/core/models"
)

const (
	TypeChunkSpawned      = "world.chunk.spawned"
	TypeChunkDestroyed    = "world.chunk.destroyed"
	TypeEnemySpawned      = "enemy.spawned"
	TypeEnemyDestroyed    = "enemy.destroyed"
	TypeDifficultyChanged = "difficulty.changed"
)

type ChunkSpawned struct {
	Chunk *models.Chunk
}

func (ChunkSpawned) Type() string { return TypeChunkSpawned }

// Position is the chunk anchor.
func (e ChunkSpawned) Position() mgl64.Vec3 { return e.Chunk.Anchor }

// VariantIndex is the content variant chosen for the chunk.
func (e ChunkSpawned) VariantIndex() int { return e.Chunk.Variant }

// ChunkDestroyed carries the retired chunk's span so listeners can drop
// anything they tracked inside it.
type ChunkDestroyed struct {
	ChunkID models.ChunkID
	AnchorZ float64
	Length  float64
}

func (ChunkDestroyed) Type() string { return TypeChunkDestroyed }

// Contains reports whether z lay inside the destroyed chunk.
func (e ChunkDestroyed) Contains(z float64) bool {
	return z >= e.AnchorZ && z < e.AnchorZ+e.Length
}

type EnemySpawned struct {
	Handle *models.EntityHandle
}

func (EnemySpawned) Type() string { return TypeEnemySpawned }

type DestroyReason uint8

const (
	ReasonLeftBehind DestroyReason = iota
	ReasonKilled
	ReasonInstanceLost
)

func (r DestroyReason) String() string {
	switch r {
	case ReasonKilled:
		return "killed"
	case ReasonInstanceLost:
		return "instance_lost"
	default:
		return "left_behind"
	}
}

// EnemyDestroyed is published before the instance goes back to the pool, so
// Handle.Instance stays valid for every handler.
type EnemyDestroyed struct {
	Handle *models.EntityHandle
	Reason DestroyReason
}

func (EnemyDestroyed) Type() string { return TypeEnemyDestroyed }

type DifficultyChanged struct {
	Tier     int
	Previous int
	Distance float64
}

func (DifficultyChanged) Type() string { return TypeDifficultyChanged }
