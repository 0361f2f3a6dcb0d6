package system

import "time"

// ScheduleType defines different scheduling patterns
type ScheduleType uint8

const (
	ScheduleEveryFrame ScheduleType = iota
	ScheduleFixedInterval
)

// Schedule defines when and how often a system should run
type Schedule interface {
	Type() ScheduleType
	ShouldExecute(lastExecution, currentTime time.Duration) bool
}

// ScheduleStatus provides information about scheduled execution
type ScheduleStatus struct {
	LastExecution  time.Duration
	ExecutionCount uint64
}

type everyFrame struct{}

func (everyFrame) Type() ScheduleType { return ScheduleEveryFrame }
func (everyFrame) ShouldExecute(_, _ time.Duration) bool { return true }

// EveryFrame runs a system on every tick.
func EveryFrame() Schedule { return everyFrame{} }

type fixedInterval struct {
	interval time.Duration
}

func (f fixedInterval) Type() ScheduleType { return ScheduleFixedInterval }

func (f fixedInterval) ShouldExecute(last, now time.Duration) bool {
	return now-last >= f.interval
}

// FixedInterval throttles a system to run at most once per interval of
// simulated time. Throttling only saves work; systems must stay correct at any rate.
func FixedInterval(interval time.Duration) Schedule {
	if interval <= 0 {
		return everyFrame{}
	}
	return fixedInterval{interval: interval}
}
