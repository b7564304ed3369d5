package carousel

import "time"

// Timer is a pending callback.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// RealClock returns a Clock backed by time.AfterFunc.
func RealClock() (clock Clock) {
	clock = realClock{}
	return clock
}

func (realClock) AfterFunc(d time.Duration, f func()) (timer Timer) {
	timer = time.AfterFunc(d, f)
	return timer
}
