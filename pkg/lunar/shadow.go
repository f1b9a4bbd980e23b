package lunar

import (
	"fmt"
	"math"
	"strconv"
)

// discRadius is the radius of the moon disc in the 100x100 viewBox the
// shadow path is drawn in.
const discRadius = 50

// ShadowPath returns an SVG path, in a 0..100 viewBox, covering the dark part
// of the moon for phase in [0,1).
//
// The path starts with a semicircle on the unlit half (left while waxing,
// right while waning) and closes with the terminator, an elliptical arc whose
// horizontal radius is |50*cos(2*pi*phase)|. At phase 0 the two arcs cover
// the whole disc; at 0.5 they cancel out.
func ShadowPath(phase float64) string {
	phase = normalizePhase(phase)
	waxing := phase <= 0.5

	mainArc := "M 50 0 A 50 50 0 0 1 50 100"
	if waxing {
		mainArc = "M 50 0 A 50 50 0 0 0 50 100"
	}

	dx := discRadius * math.Cos(phase*2*math.Pi)
	if math.Abs(dx) < 0.01 {
		dx = 0
	}
	rx := math.Abs(dx)

	sweep := 0
	if waxing && phase >= 0.25 {
		sweep = 1
	}
	if !waxing && phase >= 0.75 {
		sweep = 1
	}

	return fmt.Sprintf("%s A %s 50 0 0 %d 50 0", mainArc, strconv.FormatFloat(rx, 'f', -1, 64), sweep)
}

// LimbStyle is how the lit moon image is oriented on screen.
type LimbStyle struct {
	Rotation float64 `json:"rotation"` // degrees, clockwise
	ScaleX   float64 `json:"scaleX"`   // -1 mirrors the disc for southern observers
}

// Limb computes the on-screen rotation of the moon image. The image is drawn
// lit on the right (90 degrees); southern observers see it mirrored, which
// puts the base limb at 180 degrees. The target is the bright-limb angle
// measured from the observer's zenith.
func Limb(m MoonPhase, lat float64) LimbStyle {
	south := lat < 0

	style := LimbStyle{ScaleX: 1}
	base := 90.0
	if south {
		style.ScaleX = -1
		base = 180
	}

	var pa float64
	if m.ParallacticAngle != nil {
		pa = *m.ParallacticAngle
	}
	target := (m.Angle - pa) * 180 / math.Pi
	style.Rotation = target - base

	return style
}
