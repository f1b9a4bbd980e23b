package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/chrissnell/waqt/pkg/solar"
)

// Speeds are the accepted debug clock multipliers
var Speeds = []int{1, 10, 60, 360}

// Default debug location: Tashkent
const (
	DefaultOverrideLat      = 41.2995
	DefaultOverrideLon      = 69.2401
	DefaultOverrideTimezone = "Asia/Tashkent"
	defaultOverrideTime     = "12:00:00"
)

type TimeOverride struct {
	Active bool   `json:"active"`
	Date   string `json:"date"` // YYYY-MM-DD
	Time   string `json:"time"` // HH:MM:SS or HH:MM
	Speed  int    `json:"speed"`
}

type LocationOverride struct {
	Active   bool    `json:"active"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone"`
}

// DebugState is the persisted debug panel state
type DebugState struct {
	Enabled          bool             `json:"enabled"`
	TimeOverride     TimeOverride     `json:"timeOverride"`
	LocationOverride LocationOverride `json:"locationOverride"`
}

// DefaultDebugState is disabled, with the time fields prefilled from now
func DefaultDebugState(now time.Time) DebugState {
	return DebugState{
		TimeOverride: TimeOverride{
			Date:  now.Format("2006-01-02"),
			Time:  now.Format("15:04:05"),
			Speed: 1,
		},
		LocationOverride: LocationOverride{
			Lat:      DefaultOverrideLat,
			Lon:      DefaultOverrideLon,
			Timezone: DefaultOverrideTimezone,
		},
	}
}

func ValidSpeed(speed int) bool {
	for _, s := range Speeds {
		if s == speed {
			return true
		}
	}
	return false
}

// Normalize replaces out-of-range values the way stored state is sanitised:
// unknown speeds become 1 and a missing override location becomes Tashkent.
func (s DebugState) Normalize() DebugState {
	if !ValidSpeed(s.TimeOverride.Speed) {
		s.TimeOverride.Speed = 1
	}
	if s.LocationOverride.Lat == 0 {
		s.LocationOverride.Lat = DefaultOverrideLat
	}
	if s.LocationOverride.Lon == 0 {
		s.LocationOverride.Lon = DefaultOverrideLon
	}
	if s.LocationOverride.Timezone == "" {
		s.LocationOverride.Timezone = DefaultOverrideTimezone
	}
	return s
}

// TimeActive reports whether the time override is in effect
func (s DebugState) TimeActive() bool {
	return s.Enabled && s.TimeOverride.Active
}

// LocationActive reports whether the location override is in effect
func (s DebugState) LocationActive() bool {
	return s.Enabled && s.LocationOverride.Active
}

// ParseBase turns the override date and time into an instant in loc. An
// empty date means today in loc and an empty time means noon.
func (o TimeOverride) ParseBase(now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	date := o.Date
	if date == "" {
		date = now.In(loc).Format("2006-01-02")
	}
	clock := o.Time
	if clock == "" {
		clock = defaultOverrideTime
	}

	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, date+"T"+clock, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid debug time %q %q", date, clock)
}

// Debug is a Clock that follows source until a time override is applied,
// then runs from the override's base instant at the override's speed.
type Debug struct {
	mu       sync.RWMutex
	source   Clock
	state    DebugState
	base     time.Time
	baseReal time.Time
}

func NewDebug(source Clock) *Debug {
	if source == nil {
		source = Wall{}
	}
	return &Debug{source: source, state: DefaultDebugState(source.Now()).Normalize()}
}

// Apply installs a new debug state. The override base is re-anchored to the
// current real time whenever the time override is active, so changing the
// speed or the start instant restarts the synthetic clock from the base.
func (d *Debug) Apply(state DebugState, loc *time.Location) error {
	state = state.Normalize()
	realNow := d.source.Now()

	var base time.Time
	if state.TimeActive() {
		var err error
		if base, err = state.TimeOverride.ParseBase(realNow, loc); err != nil {
			return err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = state
	d.base = base
	d.baseReal = realNow
	return nil
}

func (d *Debug) State() DebugState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Now returns the synthetic time when the override is active and the real
// time otherwise.
func (d *Debug) Now() time.Time {
	realNow := d.source.Now()

	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.state.TimeActive() {
		return realNow
	}
	elapsed := realNow.Sub(d.baseReal)
	return d.base.Add(elapsed * time.Duration(d.state.TimeOverride.Speed))
}

// PresetKeys are the solar events the debug clock can jump to
var PresetKeys = []string{"dawn", "sunrise", "solarNoon", "sunset", "dusk", "nadir"}

// PresetTime returns the instant of a named solar event from sd. "nadir" is
// twelve hours after solar noon.
func PresetTime(key string, sd solar.SolarData) (time.Time, bool) {
	switch key {
	case "dawn":
		return sd.Dawn, true
	case "sunrise":
		return sd.Sunrise, true
	case "solarNoon":
		return sd.SolarNoon, true
	case "sunset":
		return sd.Sunset, true
	case "dusk":
		return sd.Dusk, true
	case "nadir":
		return sd.SolarNoon.Add(12 * time.Hour), true
	}
	return time.Time{}, false
}
