package session

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/skyrun/internal/core/difficulty"
	"github.com/zeusync/skyrun/internal/core/models"
)

// travel samples the observer once per tick and feeds the forward movement
// into the difficulty scaler. Subsystems read the sample, not the observer.
type travel struct {
	source  models.Observer
	scaler  *difficulty.Scaler
	pos     mgl64.Vec3
	sampled bool
}

var _ models.Observer = (*travel)(nil)

func (t *travel) Name() string { return "travel" }

func (t *travel) Update(time.Duration) error {
	pos := t.source.Position()
	if t.sampled {
		t.scaler.RecordMovement(pos.Z() - t.pos.Z())
	}
	t.pos = pos
	t.sampled = true
	return nil
}

func (t *travel) Position() mgl64.Vec3 {
	if !t.sampled {
		return t.source.Position()
	}
	return t.pos
}
