// Package sky classifies the time of day into sky phases, computes the
// crossfade between adjacent sky gradients and projects the sun and moon onto
// the rendered orbit arc.
package sky

import (
	"fmt"
	"time"

	"github.com/chrissnell/waqt/pkg/solar"
)

// Cycle is the qualitative phase of the sky.
type Cycle string

const (
	Dawn  Cycle = "dawn"
	Day   Cycle = "day"
	Dusk  Cycle = "dusk"
	Night Cycle = "night"
)

// Cycles lists every phase in the order it occurs through a day.
var Cycles = []Cycle{Dawn, Day, Dusk, Night}

// ParseCycle converts a cycle name into a Cycle.
func ParseCycle(s string) (Cycle, error) {
	for _, c := range Cycles {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown sky cycle: %q", s)
}

// DetermineCycle classifies t against the day's solar events.
//
//	dawn    <= t < sunrise  -> dawn
//	sunrise <= t < sunset   -> day
//	sunset  <= t < dusk     -> dusk
//	otherwise               -> night
func DetermineCycle(t time.Time, sd solar.SolarData) Cycle {
	switch {
	case !t.Before(sd.Dawn) && t.Before(sd.Sunrise):
		return Dawn
	case !t.Before(sd.Sunrise) && t.Before(sd.Sunset):
		return Day
	case !t.Before(sd.Sunset) && t.Before(sd.Dusk):
		return Dusk
	default:
		return Night
	}
}

// DetermineCyclePolar is the cycle on a day the sun never crosses the
// horizon: day for a polar day, night otherwise.
func DetermineCyclePolar(p solar.Polar) Cycle {
	if p == solar.PolarDay {
		return Day
	}
	return Night
}

// DetermineCycleFallback is used before any location is known: 06:00-18:00
// on t's wall clock is day, the rest is night.
func DetermineCycleFallback(t time.Time) Cycle {
	if h := t.Hour(); h >= 6 && h < 18 {
		return Day
	}
	return Night
}
