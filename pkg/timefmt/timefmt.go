// Package timefmt formats instants and durations the way the dashboard
// displays them.
package timefmt

import (
	"fmt"
	"math"
	"time"
)

const (
	ClockLayout  = "15:04:05"
	WidgetLayout = "15:04"
	DateLayout   = "Monday, Jan 2"
)

// Clock formats t as a 24-hour clock with seconds.
func Clock(t time.Time) string {
	return t.Format(ClockLayout)
}

// Widget formats t as a 24-hour clock without seconds.
func Widget(t time.Time) string {
	return t.Format(WidgetLayout)
}

func Date(t time.Time) string {
	return t.Format(DateLayout)
}

// Countdown renders a number of seconds as "in 2h 5m", "in 2h", "in 5m",
// "in <1m", or "now" for anything non-positive or non-finite.
func Countdown(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return "now"
	}
	if seconds < 60 {
		return "in <1m"
	}

	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60

	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("in %dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("in %dh", h)
	default:
		return fmt.Sprintf("in %dm", m)
	}
}

// CountdownDuration is Countdown for a time.Duration.
func CountdownDuration(d time.Duration) string {
	return Countdown(d.Seconds())
}
