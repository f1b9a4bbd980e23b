package solar

import (
	"testing"
	"time"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("time zone %s unavailable: %v", name, err)
	}
	return loc
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name       string
		zone       string
		date       [3]int
		latitude   float64
		longitude  float64
		expectOK   bool
		sunriseMin string // local HH:MM lower bound
		sunriseMax string
		sunsetMin  string
		sunsetMax  string
	}{
		{
			name:       "Tashkent winter",
			zone:       "Asia/Tashkent",
			date:       [3]int{2026, 1, 21},
			latitude:   41.3,
			longitude:  69.3,
			expectOK:   true,
			sunriseMin: "07:30",
			sunriseMax: "08:30",
			sunsetMin:  "17:00",
			sunsetMax:  "18:15",
		},
		{
			name:       "London summer",
			zone:       "Europe/London",
			date:       [3]int{2025, 6, 21},
			latitude:   51.5074,
			longitude:  -0.1278,
			expectOK:   true,
			sunriseMin: "04:15",
			sunriseMax: "05:15",
			sunsetMin:  "20:45",
			sunsetMax:  "21:45",
		},
		{
			name:      "Tromso polar night",
			zone:      "Europe/Oslo",
			date:      [3]int{2025, 12, 21},
			latitude:  69.6492,
			longitude: 18.9553,
			expectOK:  false,
		},
		{
			name:      "Tromso midnight sun",
			zone:      "Europe/Oslo",
			date:      [3]int{2025, 6, 21},
			latitude:  69.6492,
			longitude: 18.9553,
			expectOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := mustLoad(t, tt.zone)
			date := time.Date(tt.date[0], time.Month(tt.date[1]), tt.date[2], 9, 0, 0, 0, loc)

			sd, ok := Calculate(date, tt.latitude, tt.longitude, loc)
			if ok != tt.expectOK {
				t.Fatalf("ok = %v, expected %v (data %+v)", ok, tt.expectOK, sd)
			}
			if !ok {
				return
			}

			if sd.Sunrise.Location().String() != loc.String() {
				t.Errorf("sunrise zone = %s, expected %s", sd.Sunrise.Location(), loc)
			}

			checkClock(t, "sunrise", sd.Sunrise, tt.sunriseMin, tt.sunriseMax)
			checkClock(t, "sunset", sd.Sunset, tt.sunsetMin, tt.sunsetMax)

			if !(sd.Dawn.Before(sd.Sunrise) && sd.Sunrise.Before(sd.SolarNoon) &&
				sd.SolarNoon.Before(sd.Sunset) && sd.Sunset.Before(sd.Dusk)) {
				t.Errorf("events out of order: %+v", sd)
			}

			if sd.DayLength != sd.Sunset.Sub(sd.Sunrise) {
				t.Errorf("DayLength = %v, expected %v", sd.DayLength, sd.Sunset.Sub(sd.Sunrise))
			}
		})
	}
}

func checkClock(t *testing.T, label string, got time.Time, lo, hi string) {
	t.Helper()
	clock := got.Format("15:04")
	if clock < lo || clock > hi {
		t.Errorf("%s = %s, expected between %s and %s", label, clock, lo, hi)
	}
}

func TestCalculateUsesLocalDate(t *testing.T) {
	loc := mustLoad(t, "Asia/Tokyo")

	// 23:30 local on the 10th is still the 10th in Tokyo even though it is the 10th 14:30 UTC.
	late := time.Date(2025, 3, 10, 23, 30, 0, 0, loc)
	sd, ok := Calculate(late, 35.6762, 139.6503, loc)
	if !ok {
		t.Fatal("expected solar data for Tokyo")
	}
	if sd.Sunrise.Day() != 10 {
		t.Errorf("sunrise day = %d, expected 10", sd.Sunrise.Day())
	}
}

func TestFallback(t *testing.T) {
	now := time.Date(2025, 5, 5, 14, 0, 0, 0, time.UTC)
	sd := Fallback(now)

	if sd.Sunrise.Hour() != 6 || sd.Sunset.Hour() != 18 {
		t.Errorf("sunrise/sunset = %v/%v, expected 06:00/18:00", sd.Sunrise, sd.Sunset)
	}
	if sd.Dawn.Minute() != 30 || sd.Dusk.Minute() != 30 {
		t.Errorf("dawn/dusk = %v/%v, expected :30", sd.Dawn, sd.Dusk)
	}
	if sd.DayLength != 12*time.Hour {
		t.Errorf("DayLength = %v, expected 12h", sd.DayLength)
	}
}

func fixture() SolarData {
	at := func(h, m int) time.Time { return time.Date(2026, 1, 26, h, m, 0, 0, time.UTC) }
	return SolarData{
		Dawn:      at(6, 0),
		Sunrise:   at(6, 30),
		SolarNoon: at(12, 0),
		Sunset:    at(18, 0),
		Dusk:      at(18, 30),
		DayLength: 11*time.Hour + 30*time.Minute,
	}
}

func TestNextEvent(t *testing.T) {
	sd := fixture()
	at := func(h, m int) time.Time { return time.Date(2026, 1, 26, h, m, 0, 0, time.UTC) }

	tests := []struct {
		now      time.Time
		label    string
		expected int64
	}{
		{at(5, 0), "dawn", 3600},
		{at(6, 15), "sunrise", 900},
		{at(11, 0), "noon", 3600},
		{at(17, 59), "sunset", 60},
		{at(18, 10), "dusk", 1200},
		{at(20, 0), "dawn", 10 * 3600},
	}

	for _, tt := range tests {
		got := NextEvent(tt.now, sd)
		if got.Label != tt.label || got.Seconds != tt.expected {
			t.Errorf("NextEvent(%s) = %+v, expected {%s %d}", tt.now.Format("15:04"), got, tt.label, tt.expected)
		}
	}
}

func TestNightWindow(t *testing.T) {
	sd := fixture()

	before := NightWindow(time.Date(2026, 1, 26, 3, 0, 0, 0, time.UTC), sd)
	if before.Start.Day() != 25 || !before.End.Equal(sd.Dawn) {
		t.Errorf("pre-dawn night = %+v, expected yesterday dusk to dawn", before)
	}
	if !before.Contains(time.Date(2026, 1, 26, 3, 0, 0, 0, time.UTC)) {
		t.Error("pre-dawn night does not contain 03:00")
	}

	after := NightWindow(time.Date(2026, 1, 26, 21, 0, 0, 0, time.UTC), sd)
	if !after.Start.Equal(sd.Dusk) || after.End.Day() != 27 {
		t.Errorf("evening night = %+v, expected dusk to tomorrow dawn", after)
	}

	day := DayWindow(sd)
	if !day.Start.Equal(sd.Sunrise) || !day.End.Equal(sd.Sunset) {
		t.Errorf("DayWindow = %+v", day)
	}
}

func TestCalculateWithoutTwilight(t *testing.T) {
	loc := mustLoad(t, "Atlantic/Reykjavik")
	date := time.Date(2026, 6, 21, 12, 0, 0, 0, loc)

	sd, ok := Calculate(date, 64.1466, -21.9426, loc)
	if !ok {
		t.Fatal("expected sunrise and sunset in Reykjavik at midsummer")
	}
	if !sd.Dawn.Equal(sd.Sunrise) {
		t.Errorf("dawn = %v, expected it to collapse onto sunrise %v", sd.Dawn, sd.Sunrise)
	}
	if !sd.Dusk.Equal(sd.Sunset) {
		t.Errorf("dusk = %v, expected it to collapse onto sunset %v", sd.Dusk, sd.Sunset)
	}
	if sd.DayLength < 20*time.Hour {
		t.Errorf("DayLength = %v, expected more than 20h", sd.DayLength)
	}
	// The sun is still up late in the evening; it sets just after midnight.
	late := time.Date(2026, 6, 21, 23, 0, 0, 0, loc)
	if !sd.Sunset.After(late) {
		t.Errorf("sunset = %v, expected after %v", sd.Sunset, late)
	}
}

func TestPolarState(t *testing.T) {
	tests := []struct {
		name     string
		zone     string
		date     [3]int
		lat, lon float64
		expected Polar
	}{
		{"Tromso midnight sun", "Europe/Oslo", [3]int{2025, 6, 21}, 69.6492, 18.9553, PolarDay},
		{"Tromso polar night", "Europe/Oslo", [3]int{2025, 12, 21}, 69.6492, 18.9553, PolarNight},
		{"Longyearbyen polar night", "Arctic/Longyearbyen", [3]int{2026, 12, 21}, 78.2232, 15.6267, PolarNight},
		{"Reykjavik white night", "Atlantic/Reykjavik", [3]int{2026, 6, 21}, 64.1466, -21.9426, NotPolar},
		{"Tashkent", "Asia/Tashkent", [3]int{2026, 1, 21}, 41.3, 69.3, NotPolar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := mustLoad(t, tt.zone)
			date := time.Date(tt.date[0], time.Month(tt.date[1]), tt.date[2], 12, 0, 0, 0, loc)
			if got := PolarState(date, tt.lat, tt.lon, loc); got != tt.expected {
				t.Errorf("PolarState = %q, expected %q", got, tt.expected)
			}
		})
	}
}
