// Package prayer computes the five daily Islamic prayer times plus sunrise
// for an observer, and tracks which prayer window a given instant falls in.
package prayer

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
	"github.com/soniakeys/meeus/v3/julian"
	msolar "github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"

	"github.com/chrissnell/waqt/pkg/solar"
)

// ErrNoSunrise is returned when the sun does not cross the horizon on the
// requested day (polar day or polar night).
var ErrNoSunrise = errors.New("sun does not rise or set on this day")

// horizonAltitude is the apparent altitude of the sun's upper limb at
// sunrise and sunset, in degrees, including standard refraction.
const horizonAltitude = -0.833

// PrayerData holds one day's prayer times in the observer's zone.
type PrayerData struct {
	Fajr    time.Time `json:"fajr"`
	Sunrise time.Time `json:"sunrise"`
	Dhuhr   time.Time `json:"dhuhr"`
	Asr     time.Time `json:"asr"`
	Maghrib time.Time `json:"maghrib"`
	Isha    time.Time `json:"isha"`
}

type solarDay struct {
	transit     time.Time
	declination float64 // radians
}

func newSolarDay(noon time.Time, lat, lon float64) solarDay {
	times := suncalc.GetTimes(noon, lat, lon)
	transit := times[suncalc.SolarNoon].Value
	_, dec := msolar.ApparentEquatorial(julian.TimeToJD(transit))
	return solarDay{transit: transit, declination: dec.Rad()}
}

// hourAngle returns the time between transit and the instant the sun sits at
// altitude degrees. ok is false when the sun never reaches that altitude.
func (d solarDay) hourAngle(altitude, lat float64) (time.Duration, bool) {
	phi := unit.AngleFromDeg(lat).Rad()
	h := unit.AngleFromDeg(altitude).Rad()

	cosH := (math.Sin(h) - math.Sin(phi)*math.Sin(d.declination)) /
		(math.Cos(phi) * math.Cos(d.declination))
	if math.IsNaN(cosH) || cosH < -1 || cosH > 1 {
		return 0, false
	}

	hours := math.Acos(cosH) * 12 / math.Pi
	return time.Duration(hours * float64(time.Hour)), true
}

func (d solarDay) before(altitude, lat float64) (time.Time, bool) {
	ha, ok := d.hourAngle(altitude, lat)
	return d.transit.Add(-ha), ok
}

func (d solarDay) after(altitude, lat float64) (time.Time, bool) {
	ha, ok := d.hourAngle(altitude, lat)
	return d.transit.Add(ha), ok
}

// Calculate computes the prayer times for the civil date of date in loc.
//
// Fajr and Isha fall back to the middle-of-the-night rule when the twilight
// angle is never reached, or when the angle-based time lands beyond the
// midpoint between sunset and the next sunrise.
func Calculate(date time.Time, lat, lon float64, settings Settings, loc *time.Location) (PrayerData, error) {
	if loc == nil {
		loc = time.UTC
	}
	settings = settings.Normalize()
	method := LookupMethod(settings.Method)
	madhab := ParseMadhab(settings.Madhab)

	noon := solar.ReferenceNoon(date, loc)
	today := newSolarDay(noon, lat, lon)

	sunrise, okRise := today.before(horizonAltitude, lat)
	sunset, okSet := today.after(horizonAltitude, lat)
	if !okRise || !okSet {
		return PrayerData{}, fmt.Errorf("prayer times for %s at %.4f,%.4f: %w",
			noon.Format("2006-01-02"), lat, lon, ErrNoSunrise)
	}

	tomorrow := newSolarDay(noon.AddDate(0, 0, 1), lat, lon)
	nextSunrise, ok := tomorrow.before(horizonAltitude, lat)
	if !ok {
		nextSunrise = sunrise.Add(24 * time.Hour)
	}
	night := nextSunrise.Sub(sunset)

	fajr, ok := today.before(-method.FajrAngle, lat)
	if safe := sunrise.Add(-night / 2); !ok || safe.After(fajr) {
		fajr = safe
	}

	var isha time.Time
	if method.IshaInterval > 0 {
		isha = sunset.Add(time.Duration(method.IshaInterval) * time.Minute)
	} else {
		isha, ok = today.after(-method.IshaAngle, lat)
		if safe := sunset.Add(night / 2); !ok || safe.Before(isha) {
			isha = safe
		}
	}

	maghrib := sunset
	if method.MaghribAngle > 0 {
		if t, ok := today.after(-method.MaghribAngle, lat); ok && t.After(sunset) && t.Before(isha) {
			maghrib = t
		}
	}

	asrAltitude := math.Atan(1/(madhab.ShadowFactor()+
		math.Tan(math.Abs(unit.AngleFromDeg(lat).Rad()-today.declination)))) * 180 / math.Pi
	asr, ok := today.after(asrAltitude, lat)
	if !ok {
		return PrayerData{}, fmt.Errorf("asr for %s at %.4f,%.4f: %w",
			noon.Format("2006-01-02"), lat, lon, ErrNoSunrise)
	}

	adj := method.Adjustments
	finish := func(t time.Time, minutes int) time.Time {
		return t.Add(time.Duration(minutes) * time.Minute).Round(time.Minute).In(loc)
	}

	return PrayerData{
		Fajr:    finish(fajr, adj.Fajr),
		Sunrise: finish(sunrise, adj.Sunrise),
		Dhuhr:   finish(today.transit, adj.Dhuhr),
		Asr:     finish(asr, adj.Asr),
		Maghrib: finish(maghrib, adj.Maghrib),
		Isha:    finish(isha, adj.Isha),
	}, nil
}
