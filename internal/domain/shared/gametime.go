package shared

import (
	"fmt"
	"time"
)

// Duration is a span of simulated time in milliseconds
type Duration int64

// Time is a point in simulated time, in milliseconds since the game started
type Time int64

// Seconds converts seconds into a Duration
func Seconds(s int64) Duration {
	return Duration(s * 1000)
}

// Std converts to a time.Duration for display and metrics
func (d Duration) Std() time.Duration {
	return time.Duration(d) * time.Millisecond
}

// FromStd converts a time.Duration (e.g. from configuration) into a Duration
func FromStd(d time.Duration) Duration {
	return Duration(d / time.Millisecond)
}

func (d Duration) String() string {
	return d.Std().String()
}

// Add returns t advanced by d
func (t Time) Add(d Duration) Time {
	return t + Time(d)
}

// Sub returns the elapsed duration between u and t
func (t Time) Sub(u Time) Duration {
	return Duration(t - u)
}

func (t Time) String() string {
	return fmt.Sprintf("t+%s", Duration(t).String())
}
