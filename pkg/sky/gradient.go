package sky

import (
	"strings"
	"time"

	"github.com/chrissnell/waqt/pkg/solar"
)

// GradientState describes a crossfade from one sky gradient to the next.
// Outside the twilight windows From == To and Mix is 0.
type GradientState struct {
	From Cycle   `json:"from"`
	To   Cycle   `json:"to"`
	Mix  float64 `json:"mix"`
}

// GradientStop is one colour stop of a vertical sky gradient.
type GradientStop struct {
	Color    string `json:"color"`
	Position string `json:"position"`
}

var gradientStops = map[Cycle][]GradientStop{
	Dawn: {
		{"#0C1020", "0%"},
		{"#1A1E32", "20%"},
		{"#333C5A", "40%"},
		{"#6E5A7D", "60%"},
		{"#C47E84", "80%"},
		{"#FFB088", "100%"},
	},
	Day: {
		{"#1A5FB4", "0%"},
		{"#3F85CD", "25%"},
		{"#6DAEE6", "50%"},
		{"#AAD7F5", "75%"},
		{"#E8F4F8", "100%"},
	},
	Dusk: {
		{"#15192F", "0%"},
		{"#282C47", "20%"},
		{"#4B4366", "40%"},
		{"#8E5E74", "60%"},
		{"#CC7A5C", "80%"},
		{"#FFB366", "100%"},
	},
	Night: {
		{"#050510", "0%"},
		{"#0D0F1E", "25%"},
		{"#14162C", "50%"},
		{"#1C1E38", "75%"},
		{"#252545", "100%"},
	},
}

// GradientStops returns a copy of the colour stops for cycle. Unknown cycles
// get the night palette.
func GradientStops(c Cycle) []GradientStop {
	stops, ok := gradientStops[c]
	if !ok {
		stops = gradientStops[Night]
	}
	out := make([]GradientStop, len(stops))
	copy(out, stops)
	return out
}

// GradientCSS renders the palette for cycle as a CSS linear-gradient.
func GradientCSS(c Cycle) string {
	stops := GradientStops(c)
	parts := make([]string, len(stops))
	for i, s := range stops {
		parts[i] = s.Color + " " + s.Position
	}
	return "linear-gradient(to bottom, " + strings.Join(parts, ", ") + ")"
}

// ComputeGradientState returns the crossfade for t. The dawn window
// [dawn, sunrise] is split in two halves, night->dawn then dawn->day, each
// ramping Mix from 0 to 1. The dusk window [sunset, dusk] does the same for
// day->dusk->night. A nil sd, or a t outside both windows, yields the pure
// state of cycle.
func ComputeGradientState(t time.Time, sd *solar.SolarData, cycle Cycle) GradientState {
	pure := GradientState{From: cycle, To: cycle, Mix: 0}
	if sd == nil {
		return pure
	}

	if sd.Sunrise.After(sd.Dawn) && !t.Before(sd.Dawn) && !t.After(sd.Sunrise) {
		progress := clamp01(fraction(t, sd.Dawn, sd.Sunrise))
		return splitTransition(progress, Night, Dawn, Day)
	}

	if sd.Dusk.After(sd.Sunset) && !t.Before(sd.Sunset) && !t.After(sd.Dusk) {
		progress := clamp01(fraction(t, sd.Sunset, sd.Dusk))
		return splitTransition(progress, Day, Dusk, Night)
	}

	return pure
}

func splitTransition(progress float64, from, middle, to Cycle) GradientState {
	if progress < 0.5 {
		return GradientState{From: from, To: middle, Mix: clamp01(progress * 2)}
	}
	return GradientState{From: middle, To: to, Mix: clamp01((progress - 0.5) * 2)}
}

func fraction(t, start, end time.Time) float64 {
	return float64(t.Sub(start)) / float64(end.Sub(start))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
