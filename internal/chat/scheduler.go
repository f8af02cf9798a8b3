package chat

import "time"

// Timer is a cancellable scheduled callback
type Timer interface {
	// Stop prevents the callback from firing; false means it already fired or was stopped
	Stop() bool
}

// Scheduler arms callbacks after a delay
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemScheduler struct{}

// SystemScheduler schedules on the runtime timer wheel
func SystemScheduler() Scheduler {
	return systemScheduler{}
}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
