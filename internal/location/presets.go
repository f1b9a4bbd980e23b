package location

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Preset is a named location
type Preset struct {
	Label    string  `json:"label"`
	Admin1   string  `json:"admin1,omitempty"`
	Country  string  `json:"country"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone"`
}

// Presets are the debug locations. They cover both hemispheres, a polar site
// and a range of zones.
var Presets = []Preset{
	{"Tashkent", "Toshkent Shahri", "Uzbekistan", 41.2995, 69.2401, "Asia/Tashkent"},
	{"New York", "New York", "United States", 40.7128, -74.0060, "America/New_York"},
	{"London", "England", "United Kingdom", 51.5074, -0.1278, "Europe/London"},
	{"Tokyo", "Tokyo", "Japan", 35.6762, 139.6503, "Asia/Tokyo"},
	{"Tromsø", "Troms", "Norway", 69.6492, 18.9553, "Europe/Oslo"},
	{"Reykjavik", "Capital Region", "Iceland", 64.1466, -21.9426, "Atlantic/Reykjavik"},
}

// FindPreset looks a preset up by label
func FindPreset(label string) (Preset, bool) {
	for _, p := range Presets {
		if p.Label == label {
			return p, true
		}
	}
	return Preset{}, false
}

// PresetFinder searches a fixed list of places without any network access.
// It serves as both CityFinder and ReverseGeocoder.
type PresetFinder struct {
	Places []Preset
	// MaxDistanceKm bounds reverse lookups. Zero means 50 km.
	MaxDistanceKm float64
}

func (f *PresetFinder) places() []Preset {
	if f.Places == nil {
		return Presets
	}
	return f.Places
}

// FindCities returns places whose label starts with, or else contains, the
// query, ignoring case
func (f *PresetFinder) FindCities(ctx context.Context, query string, limit int) ([]CitySuggestion, error) {
	q := strings.ToLower(strings.TrimSpace(query))

	var prefix, contains []CitySuggestion
	for i, p := range f.places() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		label := strings.ToLower(p.Label)
		s := CitySuggestion{
			ID:       int64(i + 1),
			Name:     p.Label,
			Admin1:   p.Admin1,
			Country:  p.Country,
			Lat:      p.Lat,
			Lon:      p.Lon,
			Timezone: p.Timezone,
		}
		switch {
		case strings.HasPrefix(label, q):
			prefix = append(prefix, s)
		case strings.Contains(label, q):
			contains = append(contains, s)
		}
	}

	out := append(prefix, contains...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CityName returns the nearest place within MaxDistanceKm
func (f *PresetFinder) CityName(ctx context.Context, lat, lon float64) (string, error) {
	maxKm := f.MaxDistanceKm
	if maxKm <= 0 {
		maxKm = 50
	}

	best, bestKm := "", math.Inf(1)
	for _, p := range f.places() {
		if d := haversineKm(lat, lon, p.Lat, p.Lon); d < bestKm {
			best, bestKm = p.Label, d
		}
	}
	if bestKm > maxKm {
		return "", fmt.Errorf("no known place within %.0f km of %.4f,%.4f", maxKm, lat, lon)
	}
	return best, nil
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
