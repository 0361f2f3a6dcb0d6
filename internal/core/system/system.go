package system

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// System is one unit of per-tick work driven by the Runner.
type System interface {
	Name() string
	Update(dt time.Duration) error
}

// Priority defines execution order; higher runs first.
type Priority uint16

const (
	PriorityLow    Priority = 500
	PriorityNormal Priority = 600
	PriorityHigh   Priority = 1000
)

type entry struct {
	system   System
	priority Priority
	schedule Schedule
	status   ScheduleStatus
	order    int
	ran      bool
}

// Runner executes registered systems in priority order (registration order
// breaks ties), honouring each system's schedule against the shared clock.
type Runner struct {
	clock   *Clock
	entries []*entry
}

func NewRunner(clock *Clock) *Runner {
	return &Runner{clock: clock}
}

func (r *Runner) Register(s System, priority Priority, schedule Schedule) error {
	for _, e := range r.entries {
		if e.system.Name() == s.Name() {
			return fmt.Errorf("system %q already registered", s.Name())
		}
	}
	if schedule == nil {
		schedule = EveryFrame()
	}
	r.entries = append(r.entries, &entry{system: s, priority: priority, schedule: schedule, order: len(r.entries)})
	slices.SortStableFunc(r.entries, func(a, b *entry) int {
		if a.priority != b.priority {
			return int(b.priority) - int(a.priority)
		}
		return a.order - b.order
	})
	return nil
}

// Tick advances the clock by dt and runs every due system. A failing system
// does not stop the others; errors are joined.
func (r *Runner) Tick(dt time.Duration) error {
	r.clock.Advance(dt)
	now := r.clock.Now()

	var errs error
	for _, e := range r.entries {
		if e.ran && !e.schedule.ShouldExecute(e.status.LastExecution, now) {
			continue
		}
		// Elapsed time since this system last ran, so throttled systems see the full step.
		step := dt
		if e.ran {
			step = now - e.status.LastExecution
		}
		e.ran = true
		e.status.LastExecution = now
		e.status.ExecutionCount++
		if err := e.system.Update(step); err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s: %w", e.system.Name(), err))
		}
	}
	return errs
}

// Order returns system names in execution order.
func (r *Runner) Order() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.system.Name()
	}
	return names
}

// Status returns the schedule status of a system.
func (r *Runner) Status(name string) (ScheduleStatus, bool) {
	for _, e := range r.entries {
		if e.system.Name() == name {
			return e.status, true
		}
	}
	return ScheduleStatus{}, false
}
