package lunar

import (
	"testing"
	"time"
)

// fixedRiseSet rises at 02:00 UTC and sets at 10:00 UTC every day.
func fixedRiseSet(date time.Time, lat, lon float64) RiseSet {
	u := date.UTC()
	base := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return RiseSet{Rise: base.Add(2 * time.Hour), Set: base.Add(10 * time.Hour)}
}

func TestComputeMoonPosition(t *testing.T) {
	day := func(h, m int) time.Time { return time.Date(2025, 1, 1, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name     string
		now      time.Time
		expected float64
	}{
		{"just risen", day(3, 0), 0.125},
		{"halfway up", day(6, 0), 0.5},
		{"after set", day(12, 0), 1.125},
		{"midnight below horizon", day(0, 0), 1.875},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeMoonPosition(tt.now, 40, -74, fixedRiseSet)
			if diff := got - tt.expected; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("ComputeMoonPosition = %f, expected %f", got, tt.expected)
			}
		})
	}
}

func TestComputeMoonPositionMissingEvents(t *testing.T) {
	none := func(time.Time, float64, float64) RiseSet { return RiseSet{} }

	got := ComputeMoonPosition(time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC), 0, 0, none)
	if got != 0 {
		t.Errorf("ComputeMoonPosition with no events = %f, expected 0", got)
	}

	onlyRise := func(date time.Time, lat, lon float64) RiseSet {
		return RiseSet{Rise: fixedRiseSet(date, lat, lon).Rise}
	}
	// Rise to rise still brackets now; it counts as the below-horizon leg.
	got = ComputeMoonPosition(time.Date(2025, 1, 1, 14, 0, 0, 0, time.UTC), 0, 0, onlyRise)
	if got < 1 || got > 2 {
		t.Errorf("ComputeMoonPosition with only rises = %f, expected in [1,2]", got)
	}
}

func TestComputeMoonPositionRealEphemeris(t *testing.T) {
	start := time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 72; h += 3 {
		now := start.Add(time.Duration(h) * time.Hour)
		got := ComputeMoonPosition(now, 41.3, 69.3, nil)
		if got < 0 || got > 2 {
			t.Fatalf("ComputeMoonPosition(%s) = %f, expected in [0,2]", now, got)
		}
	}
}
