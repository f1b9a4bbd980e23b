// Package engine assembles every per-tick value the dashboard shows into a
// Snapshot. Values that only change with the day, the place or the prayer
// settings are cached; everything else is recomputed on every call.
package engine

import (
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/waqt/internal/location"
	"github.com/chrissnell/waqt/internal/store"
	"github.com/chrissnell/waqt/pkg/lunar"
	"github.com/chrissnell/waqt/pkg/prayer"
	"github.com/chrissnell/waqt/pkg/season"
	"github.com/chrissnell/waqt/pkg/sky"
	"github.com/chrissnell/waqt/pkg/solar"
	"github.com/chrissnell/waqt/pkg/timefmt"
	"github.com/chrissnell/waqt/pkg/yearmap"
)

// DefaultArc is the orbit path in viewport percentages
var DefaultArc = sky.Arc{RadiusX: 42, RadiusY: 36, CenterX: 50, HorizonY: 62}

// Locator supplies the effective location. *location.Manager satisfies it.
type Locator interface {
	Location() (location.Location, bool)
}

// Snapshot is everything the dashboard needs for one instant
type Snapshot struct {
	Now         time.Time          `json:"now"`
	Timezone    string             `json:"timezone"`
	Location    *location.Location `json:"location,omitempty"`
	HasLocation bool               `json:"hasLocation"`
	Stale       bool               `json:"stale"`
	Settings    prayer.Settings    `json:"settings"`

	Clock string `json:"clock"`
	Date  string `json:"date"`

	Cycle       sky.Cycle           `json:"cycle"`
	Gradient    sky.GradientState   `json:"gradient"`
	GradientCSS string              `json:"gradientCss"`
	Orbit       sky.OrbitProgress   `json:"orbit"`
	Sun         sky.OrbiterPosition `json:"sun"`
	SunColors   sky.SunColors       `json:"sunColors"`
	SunGlow     float64             `json:"sunGlow"`
	Moon        sky.OrbiterPosition `json:"moon"`
	MoonOpacity float64             `json:"moonOpacity"`
	MoonGlow    float64             `json:"moonGlow"`

	Solar          *solar.SolarData `json:"solar"`
	Polar          string           `json:"polar,omitempty"`
	SolarCountdown *solar.Countdown `json:"solarCountdown,omitempty"`

	Prayer        *prayer.PrayerData `json:"prayer"`
	PrayerWindow  prayer.Window      `json:"prayerWindow"`
	NextPrayer    prayer.NextPrayer  `json:"nextPrayer"`
	NextPrayerIn  string             `json:"nextPrayerIn"`
	PrayerWidgets map[string]string  `json:"prayerWidgets,omitempty"`

	MoonPhase     *lunar.MoonPhase `json:"moonPhase"`
	MoonPhaseName string           `json:"moonPhaseName,omitempty"`
	MoonShadow    string           `json:"moonShadow,omitempty"`
	MoonLimb      *lunar.LimbStyle `json:"moonLimb,omitempty"`

	Season        season.Meta           `json:"season"`
	Year          yearmap.Meta          `json:"year"`
	MonthProgress yearmap.MonthProgress `json:"monthProgress"`
}

// daily holds the values that only change with the day, place or settings
type daily struct {
	key      string
	zone     *time.Location
	stale    bool
	solar    *solar.SolarData
	polar    solar.Polar
	prayer   *prayer.PrayerData
	riseSets map[string]lunar.RiseSet
}

// Engine computes snapshots. It is safe for concurrent use.
type Engine struct {
	store   store.Store
	locator Locator
	logger  *zap.SugaredLogger
	arc     sky.Arc

	// RiseSet computes moon events. It defaults to lunar.SuncalcRiseSet.
	RiseSet lunar.RiseSetFunc

	mu       sync.Mutex
	settings prayer.Settings
	cache    daily
}

// New returns an engine reading its location from locator. Persisted prayer
// settings win over defaults; unset default fields fall back to
// prayer.DefaultSettings.
func New(st store.Store, locator Locator, defaults prayer.Settings, logger *zap.SugaredLogger) *Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	settings := prayer.DefaultSettings().Merge(defaults)
	if st != nil {
		var stored prayer.Settings
		if store.LoadJSON(st, store.KeySettings, &stored, logger) {
			settings = stored.Normalize()
		}
	}

	return &Engine{
		store:    st,
		locator:  locator,
		logger:   logger,
		arc:      DefaultArc,
		RiseSet:  lunar.SuncalcRiseSet,
		settings: settings,
	}
}

// Settings returns the active prayer settings
func (e *Engine) Settings() prayer.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// SetSettings normalizes, persists and activates new prayer settings
func (e *Engine) SetSettings(s prayer.Settings) (prayer.Settings, error) {
	s = s.Normalize()

	if e.store != nil {
		if err := e.store.Write(store.KeySettings, s); err != nil {
			return prayer.Settings{}, err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = s
	e.cache = daily{}
	return s, nil
}

// Snapshot computes the state at now
func (e *Engine) Snapshot(now time.Time) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	var (
		loc location.Location
		ok  bool
	)
	if e.locator != nil {
		loc, ok = e.locator.Location()
	}

	if !ok {
		return e.withoutLocation(now)
	}

	d := e.dailyFor(now, loc)
	local := now.In(d.zone)

	snap := Snapshot{
		Now:         local,
		Timezone:    d.zone.String(),
		Location:    &loc,
		HasLocation: true,
		Stale:       d.stale,
		Settings:    e.settings,
		Solar:       d.solar,
		Polar:       d.polar.String(),
		Prayer:      d.prayer,
	}

	moonProgress := lunar.ComputeMoonPosition(local, loc.Lat, loc.Lon, e.cachedRiseSet(&d))

	if d.solar != nil {
		sd := *d.solar
		snap.Cycle = sky.DetermineCycle(local, sd)
		snap.Gradient = sky.ComputeGradientState(local, &sd, snap.Cycle)
		snap.Orbit = sky.ComputeOrbitProgress(local, sd, moonProgress)
		cd := solar.NextEvent(local, sd)
		snap.SolarCountdown = &cd
	} else {
		snap.Cycle = sky.DetermineCyclePolar(d.polar)
		snap.Gradient = sky.ComputeGradientState(local, nil, snap.Cycle)
		snap.Orbit = sky.ComputeOrbitPolar(moonProgress)
	}

	phase := lunar.Phase(now, loc.Lat, loc.Lon)
	limb := lunar.Limb(phase, loc.Lat)
	snap.MoonPhase = &phase
	snap.MoonPhaseName = phase.Name()
	snap.MoonShadow = lunar.ShadowPath(phase.Phase)
	snap.MoonLimb = &limb

	if d.prayer != nil {
		snap.PrayerWindow = prayer.CurrentWindow(local, *d.prayer)
		snap.NextPrayer = prayer.NextAfter(local, *d.prayer)
		snap.PrayerWidgets = make(map[string]string, len(prayer.Names))
		for _, ev := range d.prayer.Events() {
			snap.PrayerWidgets[ev.Name] = timefmt.Widget(ev.Time)
		}
	} else {
		snap.PrayerWindow, snap.NextPrayer = prayer.Placeholder(local)
	}
	snap.NextPrayerIn = timefmt.Countdown(float64(snap.NextPrayer.SecondsUntil))

	e.fillCommon(&snap, local, loc.Lat)
	return snap
}

func (e *Engine) withoutLocation(now time.Time) Snapshot {
	local := now

	snap := Snapshot{
		Now:      local,
		Timezone: local.Location().String(),
		Settings: e.settings,
		Cycle:    sky.DetermineCycleFallback(local),
		Orbit:    sky.ComputeOrbitFallback(local),
	}
	snap.Gradient = sky.ComputeGradientState(local, nil, snap.Cycle)
	snap.PrayerWindow, snap.NextPrayer = prayer.Placeholder(local)
	snap.NextPrayerIn = timefmt.Countdown(float64(snap.NextPrayer.SecondsUntil))

	e.fillCommon(&snap, local, 0)
	return snap
}

// fillCommon sets the values that do not depend on solar or prayer data
func (e *Engine) fillCommon(snap *Snapshot, local time.Time, lat float64) {
	snap.Clock = timefmt.Clock(local)
	snap.Date = timefmt.Date(local)
	snap.GradientCSS = sky.GradientCSS(snap.Cycle)

	snap.Sun = e.arc.Project(snap.Orbit.Sun)
	snap.SunColors = sky.SunColorsAt(snap.Sun.Altitude)
	snap.SunGlow = sky.SunGlowOpacity(snap.Cycle, snap.Sun.Altitude)

	snap.Moon = e.arc.Project(snap.Orbit.Moon)
	snap.MoonOpacity = sky.MoonOpacity(snap.Cycle)
	if snap.MoonPhase != nil {
		snap.MoonGlow = sky.MoonGlowOpacity(snap.Cycle, snap.MoonPhase.Fraction)
	}

	snap.Season = season.ComputeMeta(local, lat)
	snap.MonthProgress = yearmap.CurrentMonthProgress(local)

	doy := yearmap.DayOfYear(local)
	total := yearmap.TotalDaysInYear(local.Year())
	snap.Year = yearmap.Meta{
		Year:      local.Year(),
		DayOfYear: doy,
		TotalDays: total,
		Progress:  float64(doy) / float64(total),
		DaysLeft:  total - doy,
	}
}

// dailyFor returns the cached daily values, recomputing them when the place,
// zone or local date changed. e.mu must be held.
func (e *Engine) dailyFor(now time.Time, loc location.Location) daily {
	zone, zoneErr := loc.Zone()
	if zoneErr != nil {
		zone = time.UTC
	}
	local := now.In(zone)
	key := cacheKey(loc, local)

	if e.cache.key == key {
		return e.cache
	}

	d := daily{key: key, zone: zone, riseSets: make(map[string]lunar.RiseSet, 3)}

	switch {
	case zoneErr != nil:
		e.logger.Warnw("unknown time zone, using fallback solar data", "timezone", loc.Timezone, "error", zoneErr)
		fb := solar.Fallback(now)
		d.solar = &fb
		d.stale = true
	default:
		if sd, ok := solar.Calculate(local, loc.Lat, loc.Lon, zone); ok {
			d.solar = &sd
		} else {
			d.polar = solar.PolarState(local, loc.Lat, loc.Lon, zone)
			e.logger.Debugw("no sunrise or sunset today", "polar", d.polar.String(), "lat", loc.Lat, "lon", loc.Lon, "date", local.Format("2006-01-02"))
		}
	}

	if zoneErr == nil {
		p, err := prayer.Calculate(local, loc.Lat, loc.Lon, e.settings, zone)
		if err != nil {
			e.logger.Debugw("prayer times unavailable", "error", err)
		} else {
			d.prayer = &p
		}
	}

	e.cache = d
	return d
}

// cachedRiseSet memoizes moon events per calendar day for the cached place
func (e *Engine) cachedRiseSet(d *daily) lunar.RiseSetFunc {
	compute := e.RiseSet
	if compute == nil {
		compute = lunar.SuncalcRiseSet
	}
	return func(date time.Time, lat, lon float64) lunar.RiseSet {
		k := date.Format("2006-01-02")
		if rs, ok := d.riseSets[k]; ok {
			return rs
		}
		rs := compute(date, lat, lon)
		d.riseSets[k] = rs
		return rs
	}
}

func cacheKey(loc location.Location, local time.Time) string {
	return local.Format("2006-01-02") + "|" + loc.Timezone + "|" +
		formatCoord(loc.Lat) + "," + formatCoord(loc.Lon)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
