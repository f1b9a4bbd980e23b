package sky

import (
	"math"
	"time"

	"github.com/chrissnell/waqt/pkg/solar"
)

// OrbitProgress is the normalized position of the sun and moon along their
// arcs. Sun is in [0,1] (sunrise to sunset). Moon is in [0,1] while risen and
// (1,2] while below the horizon.
type OrbitProgress struct {
	Sun  float64 `json:"sun"`
	Moon float64 `json:"moon"`
}

// Arc is a half ellipse sitting on the horizon line.
type Arc struct {
	RadiusX  float64 `json:"radiusX"`
	RadiusY  float64 `json:"radiusY"`
	CenterX  float64 `json:"centerX"`
	HorizonY float64 `json:"horizonY"`
}

// OrbiterPosition is where a celestial body is drawn and how large.
type OrbiterPosition struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale"`
	Altitude float64 `json:"altitude"`
}

// Project maps progress onto the arc. Progress 0 sits on the left horizon,
// 0.5 at the apex and 1 on the right horizon; values in (1,2] continue below
// the horizon. Bodies near the horizon are drawn up to 25% larger.
func (a Arc) Project(progress float64) OrbiterPosition {
	angle := math.Pi * (1 - progress)
	altitude := Altitude(progress)
	return OrbiterPosition{
		X:        a.CenterX + a.RadiusX*math.Cos(angle),
		Y:        a.HorizonY - a.RadiusY*math.Sin(angle),
		Scale:    1 + 0.25*(1-altitude),
		Altitude: altitude,
	}
}

// Altitude is sin(progress*pi): 0 on the horizon, 1 at the apex.
func Altitude(progress float64) float64 {
	return math.Sin(progress * math.Pi)
}

// ComputeOrbitProgress places the sun between sunrise and sunset. During dawn
// it is pinned to 0 and during dusk to 1. In deep night (after dusk, before
// dawn) it rests at 0. moonProgress is passed through unchanged.
func ComputeOrbitProgress(t time.Time, sd solar.SolarData, moonProgress float64) OrbitProgress {
	var sun float64

	switch {
	case !t.Before(sd.Sunrise) && !t.After(sd.Sunset):
		if span := sd.Sunset.Sub(sd.Sunrise); span > 0 {
			sun = float64(t.Sub(sd.Sunrise)) / float64(span)
		}
	case t.Before(sd.Sunrise) && !t.Before(sd.Dawn):
		sun = 0
	case t.After(sd.Sunset) && !t.After(sd.Dusk):
		sun = 1
	}

	return OrbitProgress{Sun: clamp01(sun), Moon: moonProgress}
}

// ComputeOrbitPolar pins the sun to the horizon on days it never rises or
// sets. The moon keeps its real progress.
func ComputeOrbitPolar(moonProgress float64) OrbitProgress {
	return OrbitProgress{Sun: 0, Moon: moonProgress}
}

// ComputeOrbitFallback approximates orbit progress from the wall clock alone:
// the sun runs 06:00->18:00 and the moon 18:00->06:00.
func ComputeOrbitFallback(t time.Time) OrbitProgress {
	hour := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600

	if hour >= 6 && hour < 18 {
		return OrbitProgress{Sun: clamp01((hour - 6) / 12), Moon: 0}
	}

	var night float64
	if hour >= 18 {
		night = (hour - 18) / 12
	} else {
		night = (hour + 6) / 12
	}
	return OrbitProgress{Sun: 0, Moon: clamp01(night)}
}

// SunColors is the palette used to paint the sun at a given altitude.
type SunColors struct {
	Core        string  `json:"core"`
	Corona      string  `json:"corona"`
	Glow        string  `json:"glow"`
	GlowOpacity float64 `json:"glowOpacity"`
}

// SunColorsAt warms the sun as it approaches the horizon.
func SunColorsAt(altitude float64) SunColors {
	switch {
	case altitude > 0.7:
		return SunColors{"#ffffff", "#fff8e0", "rgba(255, 248, 224, 0.5)", 0.8}
	case altitude > 0.3:
		return SunColors{"#ffffff", "#ffd700", "rgba(255, 215, 0, 0.5)", 0.85}
	case altitude > 0.1:
		return SunColors{"#fffaf0", "#ff6b00", "rgba(255, 107, 0, 0.6)", 0.9}
	default:
		return SunColors{"#ffe4c4", "#ff4500", "rgba(255, 69, 0, 0.7)", 1}
	}
}

// MoonOpacity fades the moon out as the sky brightens.
func MoonOpacity(c Cycle) float64 {
	switch c {
	case Night:
		return 1
	case Dusk:
		return 0.6
	case Dawn:
		return 0.4
	default:
		return 0
	}
}

// MoonGlowOpacity scales the moon's halo by its illuminated fraction.
func MoonGlowOpacity(c Cycle, fraction float64) float64 {
	return MoonOpacity(c) * 0.6 * fraction
}

// SunGlowOpacity is full during twilight, absent at night and grows with
// altitude during the day.
func SunGlowOpacity(c Cycle, altitude float64) float64 {
	switch c {
	case Night:
		return 0
	case Dawn, Dusk:
		return 1
	default:
		return 0.6 + altitude*0.4
	}
}
