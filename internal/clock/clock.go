// Package clock supplies the current time to the engine, either from the
// wall clock or from a debug override that can start at any instant and run
// faster than real time.
package clock

import "time"

// Clock returns the current instant
type Clock interface {
	Now() time.Time
}

// Wall is the system clock
type Wall struct{}

func (Wall) Now() time.Time {
	return time.Now()
}

// Func adapts a function to Clock
type Func func() time.Time

func (f Func) Now() time.Time {
	return f()
}
