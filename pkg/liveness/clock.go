package liveness

import "time"

// Clock abstracts the wall clock so backoff windows can be tested with a
// fake time source.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns the system clock.
func RealClock() Clock { return realClock{} }
