// Package lunar provides moon phase, illumination and orientation values for
// an observer, the moon's progress along its rise/set arc, and the shadow
// silhouette used to draw the phase.
package lunar

import (
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
)

// SynodicMonth is the average length of the lunar cycle in days
const SynodicMonth = 29.530588853

// MoonPhase describes the moon as seen from one place at one instant.
type MoonPhase struct {
	Fraction float64 `json:"fraction"` // illuminated fraction [0,1]
	Phase    float64 `json:"phase"`    // [0,1): 0=new, 0.25=first quarter, 0.5=full, 0.75=last quarter
	Angle    float64 `json:"angle"`    // bright limb position angle, radians from celestial north toward east
	// ParallacticAngle is the angle between celestial north and the observer's
	// zenith at the moon, in radians. Nil when no observer is known.
	ParallacticAngle *float64 `json:"parallacticAngle,omitempty"`
}

// Waxing reports whether the lit part is growing.
func (m MoonPhase) Waxing() bool {
	return m.Phase <= 0.5
}

// AgeDays is the approximate number of days since the last new moon.
func (m MoonPhase) AgeDays() float64 {
	return m.Phase * SynodicMonth
}

// Name is the 8-phase name for the moon.
func (m MoonPhase) Name() string {
	return phaseName(m.Fraction, m.Phase < 0.5)
}

// Phase computes the moon phase at t for an observer at lat/lon.
func Phase(t time.Time, lat, lon float64) MoonPhase {
	illum := suncalc.GetMoonIllumination(t)
	pos := suncalc.GetMoonPosition(t, lat, lon)
	pa := pos.ParallacticAngle

	return MoonPhase{
		Fraction:         clamp(illum.Fraction, 0, 1),
		Phase:            normalizePhase(illum.Phase),
		Angle:            illum.Angle,
		ParallacticAngle: &pa,
	}
}

// GeocentricPhase computes the phase without an observer, leaving
// ParallacticAngle unset.
func GeocentricPhase(t time.Time) MoonPhase {
	illum := suncalc.GetMoonIllumination(t)
	return MoonPhase{
		Fraction: clamp(illum.Fraction, 0, 1),
		Phase:    normalizePhase(illum.Phase),
		Angle:    illum.Angle,
	}
}

// phaseName returns the 8-phase name based on illumination percentage and direction
func phaseName(illumination float64, isWaxing bool) string {
	switch {
	case illumination < 0.01:
		return "New Moon"
	case illumination > 0.99:
		return "Full Moon"
	case illumination >= 0.49 && illumination <= 0.51:
		if isWaxing {
			return "First Quarter"
		}
		return "Third Quarter"
	case illumination < 0.50:
		if isWaxing {
			return "Waxing Crescent"
		}
		return "Waning Crescent"
	default:
		if isWaxing {
			return "Waxing Gibbous"
		}
		return "Waning Gibbous"
	}
}

// normalizePhase wraps a phase fraction into [0,1)
func normalizePhase(p float64) float64 {
	p = math.Mod(p, 1)
	if p < 0 {
		p++
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
