// Package solar computes the daily solar events (dawn, sunrise, solar noon,
// sunset, dusk) for an observer and a handful of helpers that answer
// questions about them ("what comes next", "when is night").
package solar

import (
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
)

// maxEventSkew bounds how far an event may drift from the reference noon
// before it is treated as missing. suncalc yields garbage instants instead of
// an error when the sun never crosses the requested altitude.
const maxEventSkew = 36 * time.Hour

// SolarData holds one day's solar events expressed in the observer's zone.
type SolarData struct {
	Sunrise   time.Time     `json:"sunrise"`
	Sunset    time.Time     `json:"sunset"`
	Dawn      time.Time     `json:"dawn"`
	Dusk      time.Time     `json:"dusk"`
	SolarNoon time.Time     `json:"solarNoon"`
	DayLength time.Duration `json:"dayLength"`
}

// Countdown names the next solar event and how many whole seconds remain until it.
type Countdown struct {
	Label   string `json:"label"`
	Seconds int64  `json:"seconds"`
}

// TimeWindow is a half-open interval [Start, End).
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ReferenceNoon returns 12:00 UTC on the civil date that t has in loc. Solar
// events are evaluated at this instant so that the local day boundary never
// shifts the result onto the neighbouring day.
func ReferenceNoon(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, time.UTC)
}

// Calculate returns the solar events for the civil date of date in loc.
//
// When the sun rises and sets but never gets 6° below the horizon (summer
// nights at high latitudes) the twilight windows collapse: Dawn equals Sunrise
// and Dusk equals Sunset.
//
// ok is false when the sun does not rise or set at all that day (polar day or
// polar night). The returned value is then the zero SolarData; PolarState
// tells the two apart.
func Calculate(date time.Time, lat, lon float64, loc *time.Location) (SolarData, bool) {
	if loc == nil {
		loc = time.UTC
	}
	noon := ReferenceNoon(date, loc)
	times := suncalc.GetTimes(noon, lat, lon)

	event := func(name suncalc.DayTimeName) (time.Time, bool) {
		dt, found := times[name]
		if !found || !plausible(dt.Value, noon) {
			return time.Time{}, false
		}
		return dt.Value.In(loc), true
	}

	var sd SolarData
	var ok bool
	if sd.Sunrise, ok = event(suncalc.Sunrise); !ok {
		return SolarData{}, false
	}
	if sd.Sunset, ok = event(suncalc.Sunset); !ok {
		return SolarData{}, false
	}
	if sd.SolarNoon, ok = event(suncalc.SolarNoon); !ok {
		return SolarData{}, false
	}
	if sd.Dawn, ok = event(suncalc.Dawn); !ok {
		sd.Dawn = sd.Sunrise
	}
	if sd.Dusk, ok = event(suncalc.Dusk); !ok {
		sd.Dusk = sd.Sunset
	}
	sd.DayLength = sd.Sunset.Sub(sd.Sunrise)

	if sd.Dawn.After(sd.Sunrise) || !sd.Sunrise.Before(sd.Sunset) || sd.Sunset.After(sd.Dusk) {
		return SolarData{}, false
	}

	return sd, true
}

// Polar names the regime of a day on which the sun never crosses the horizon.
type Polar int

const (
	NotPolar Polar = iota
	PolarDay
	PolarNight
)

func (p Polar) String() string {
	switch p {
	case PolarDay:
		return "day"
	case PolarNight:
		return "night"
	default:
		return ""
	}
}

// sunriseAltitude is the altitude of the sun's centre at sunrise and sunset.
const sunriseAltitude = -0.833 * math.Pi / 180

// PolarState reports whether the civil date of date in loc is a polar day
// or a polar night, judged by the sun's altitude at solar noon. Days on which
// Calculate succeeds are NotPolar.
func PolarState(date time.Time, lat, lon float64, loc *time.Location) Polar {
	if _, ok := Calculate(date, lat, lon, loc); ok {
		return NotPolar
	}
	if loc == nil {
		loc = time.UTC
	}
	noon := ReferenceNoon(date, loc)
	transit := noon
	if dt, found := suncalc.GetTimes(noon, lat, lon)[suncalc.SolarNoon]; found && plausible(dt.Value, noon) {
		transit = dt.Value
	}
	if suncalc.GetPosition(transit, lat, lon).Altitude > sunriseAltitude {
		return PolarDay
	}
	return PolarNight
}

func plausible(t, ref time.Time) bool {
	if t.IsZero() {
		return false
	}
	d := t.Sub(ref)
	if d < 0 {
		d = -d
	}
	return d <= maxEventSkew
}

// Fallback is the fixed 06:00/18:00 UTC day used when the real computation
// fails. The engine marks data built from it as stale.
func Fallback(now time.Time) SolarData {
	u := now.UTC()
	at := func(h, m int) time.Time {
		return time.Date(u.Year(), u.Month(), u.Day(), h, m, 0, 0, time.UTC)
	}
	return SolarData{
		Dawn:      at(5, 30),
		Sunrise:   at(6, 0),
		SolarNoon: at(12, 0),
		Sunset:    at(18, 0),
		Dusk:      at(18, 30),
		DayLength: 12 * time.Hour,
	}
}

// NextEvent returns the first of dawn, sunrise, noon, sunset and dusk that is
// strictly after now. After dusk it counts down to tomorrow's dawn.
func NextEvent(now time.Time, sd SolarData) Countdown {
	events := []struct {
		label string
		at    time.Time
	}{
		{"dawn", sd.Dawn},
		{"sunrise", sd.Sunrise},
		{"noon", sd.SolarNoon},
		{"sunset", sd.Sunset},
		{"dusk", sd.Dusk},
	}

	for _, e := range events {
		if e.at.After(now) {
			return Countdown{Label: e.label, Seconds: wholeSeconds(e.at.Sub(now))}
		}
	}

	tomorrowDawn := sd.Dawn.Add(24 * time.Hour)
	return Countdown{Label: "dawn", Seconds: wholeSeconds(tomorrowDawn.Sub(now))}
}

// DayWindow is the sunrise to sunset interval.
func DayWindow(sd SolarData) TimeWindow {
	return TimeWindow{Start: sd.Sunrise, End: sd.Sunset}
}

// NightWindow returns the night that contains or follows at. Before dawn it is
// the night that began at yesterday's dusk, otherwise the one starting at dusk
// and ending at tomorrow's dawn.
func NightWindow(at time.Time, sd SolarData) TimeWindow {
	const day = 24 * time.Hour
	if at.Before(sd.Dawn) {
		return TimeWindow{Start: sd.Dusk.Add(-day), End: sd.Dawn}
	}
	return TimeWindow{Start: sd.Dusk, End: sd.Dawn.Add(day)}
}

func wholeSeconds(d time.Duration) int64 {
	return int64(d / time.Second)
}
