package system

import "time"

// Clock is simulated session time, advanced only by the tick driver.
type Clock struct {
	now    time.Duration
	frames int64
}

// Advance moves the clock forward by dt. Negative steps are ignored.
func (c *Clock) Advance(dt time.Duration) {
	if dt > 0 {
		c.now += dt
	}
	c.frames++
}

func (c *Clock) Now() time.Duration {
	return c.now
}

func (c *Clock) FrameCount() int64 {
	return c.frames
}

// TimeSource is the read side handed to systems that measure cooldowns.
type TimeSource interface {
	Now() time.Duration
}
