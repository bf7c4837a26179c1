package contact

import "time"

// ResetDelay is how long a result stays on the control before it returns
// to idle. Both outcomes use the same delay.
const ResetDelay = 2000 * time.Millisecond

// Task is a pending scheduled callback.
type Task interface {
	// Stop cancels the callback. It reports false if the callback already
	// ran or was stopped.
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

// TimerScheduler schedules with time.AfterFunc.
type TimerScheduler struct{}

// AfterFunc implements Scheduler.
func (TimerScheduler) AfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}
