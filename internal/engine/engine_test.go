package engine

import (
	"testing"
	"time"

	"github.com/chrissnell/waqt/internal/location"
	"github.com/chrissnell/waqt/internal/store"
	"github.com/chrissnell/waqt/pkg/lunar"
	"github.com/chrissnell/waqt/pkg/prayer"
	"github.com/chrissnell/waqt/pkg/season"
	"github.com/chrissnell/waqt/pkg/sky"
)

type fixedLocator struct {
	loc location.Location
	ok  bool
}

func (f *fixedLocator) Location() (location.Location, bool) {
	return f.loc, f.ok
}

func tashkentLocator() *fixedLocator {
	return &fixedLocator{
		loc: location.Location{Lat: 41.2995, Lon: 69.2401, Timezone: "Asia/Tashkent", City: "Tashkent", Source: location.SourceManual},
		ok:  true,
	}
}

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	z, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("time zone %s unavailable: %v", name, err)
	}
	return z
}

func TestSnapshotTashkent(t *testing.T) {
	tz := mustZone(t, "Asia/Tashkent")
	e := New(store.NewMemoryStore(), tashkentLocator(), prayer.Settings{}, nil)

	tests := []struct {
		name      string
		at        time.Time
		cycle     sky.Cycle
		checkSun  func(float64) bool
		checkMoon func(float64) bool
	}{
		{
			name:      "noon",
			at:        time.Date(2026, 1, 21, 12, 0, 0, 0, tz),
			cycle:     sky.Day,
			checkSun:  func(v float64) bool { return v > 0 && v < 1 },
			checkMoon: func(v float64) bool { return v >= 0 && v <= 2 },
		},
		{
			name:      "deep night",
			at:        time.Date(2026, 1, 21, 2, 0, 0, 0, tz),
			cycle:     sky.Night,
			checkSun:  func(v float64) bool { return v == 0 },
			checkMoon: func(v float64) bool { return v >= 0 && v <= 2 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := e.Snapshot(tt.at.UTC())

			if !snap.HasLocation || snap.Stale {
				t.Fatalf("got hasLocation=%v stale=%v, expected true/false", snap.HasLocation, snap.Stale)
			}
			if snap.Timezone != "Asia/Tashkent" {
				t.Errorf("got timezone %s, expected Asia/Tashkent", snap.Timezone)
			}
			if snap.Cycle != tt.cycle {
				t.Errorf("got cycle %s, expected %s", snap.Cycle, tt.cycle)
			}
			if !tt.checkSun(snap.Orbit.Sun) {
				t.Errorf("sun progress %f out of range", snap.Orbit.Sun)
			}
			if !tt.checkMoon(snap.Orbit.Moon) {
				t.Errorf("moon progress %f out of range", snap.Orbit.Moon)
			}
			if snap.Solar == nil || snap.Prayer == nil || snap.MoonPhase == nil {
				t.Fatal("expected solar, prayer and moon data")
			}
			if snap.Clock != tt.at.Format("15:04:05") {
				t.Errorf("got clock %s, expected %s", snap.Clock, tt.at.Format("15:04:05"))
			}
			if snap.NextPrayer.Name == "" || snap.NextPrayer.SecondsUntil <= 0 {
				t.Errorf("got next prayer %+v, expected a future prayer", snap.NextPrayer)
			}
			if len(snap.PrayerWidgets) != len(prayer.Names) {
				t.Errorf("got %d prayer widgets, expected %d", len(snap.PrayerWidgets), len(prayer.Names))
			}
			if snap.Season.CurrentSeason != season.Winter {
				t.Errorf("got season %s, expected winter", snap.Season.CurrentSeason)
			}
			if snap.Year.DayOfYear != 21 {
				t.Errorf("got day of year %d, expected 21", snap.Year.DayOfYear)
			}
		})
	}
}

func TestSnapshotWithoutLocation(t *testing.T) {
	e := New(store.NewMemoryStore(), &fixedLocator{}, prayer.Settings{}, nil)

	noon := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := e.Snapshot(noon)

	if snap.HasLocation || snap.Location != nil {
		t.Errorf("got location %+v, expected none", snap.Location)
	}
	if snap.Solar != nil || snap.Prayer != nil || snap.MoonPhase != nil {
		t.Error("expected no solar, prayer or moon data without a location")
	}
	if snap.Cycle != sky.Day {
		t.Errorf("got cycle %s, expected day", snap.Cycle)
	}
	if snap.Orbit.Sun != 0.5 {
		t.Errorf("got sun progress %f, expected 0.5", snap.Orbit.Sun)
	}
	if snap.PrayerWindow.Name != "dhuhr" || snap.PrayerWindow.NextPrayerName != "asr" {
		t.Errorf("got window %+v, expected placeholder dhuhr -> asr", snap.PrayerWindow)
	}
	if snap.NextPrayerIn != "now" {
		t.Errorf("got countdown %q, expected now", snap.NextPrayerIn)
	}
}

func TestSnapshotPolar(t *testing.T) {
	tests := []struct {
		name     string
		zone     string
		lat, lon float64
		at       [4]int // year, month, day, hour
		cycle    sky.Cycle
		polar    string
	}{
		{"Tromso polar night", "Europe/Oslo", 69.6492, 18.9553, [4]int{2025, 12, 21, 13}, sky.Night, "night"},
		{"Longyearbyen polar night", "Arctic/Longyearbyen", 78.2232, 15.6267, [4]int{2026, 12, 21, 12}, sky.Night, "night"},
		{"Tromso midnight sun", "Europe/Oslo", 69.6492, 18.9553, [4]int{2025, 6, 21, 1}, sky.Day, "day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tz := mustZone(t, tt.zone)
			l := &fixedLocator{loc: location.Location{Lat: tt.lat, Lon: tt.lon, Timezone: tt.zone}, ok: true}
			e := New(store.NewMemoryStore(), l, prayer.Settings{}, nil)

			at := time.Date(tt.at[0], time.Month(tt.at[1]), tt.at[2], tt.at[3], 0, 0, 0, tz)
			snap := e.Snapshot(at)

			if snap.Solar != nil {
				t.Errorf("got solar %+v, expected none", snap.Solar)
			}
			if snap.Stale {
				t.Error("expected a fresh snapshot for a valid location")
			}
			if snap.Polar != tt.polar {
				t.Errorf("got polar %q, expected %q", snap.Polar, tt.polar)
			}
			if snap.Cycle != tt.cycle {
				t.Errorf("got cycle %s, expected %s", snap.Cycle, tt.cycle)
			}
			if snap.Orbit.Sun != 0 {
				t.Errorf("got sun progress %f, expected it pinned to 0", snap.Orbit.Sun)
			}
			moon := lunar.ComputeMoonPosition(at, tt.lat, tt.lon, lunar.SuncalcRiseSet)
			if snap.Orbit.Moon != moon {
				t.Errorf("got moon progress %f, expected %f", snap.Orbit.Moon, moon)
			}
			if snap.MoonPhase == nil {
				t.Error("expected moon phase with a location")
			}
		})
	}
}

func TestSnapshotWhiteNight(t *testing.T) {
	tz := mustZone(t, "Atlantic/Reykjavik")
	l := &fixedLocator{loc: location.Location{Lat: 64.1466, Lon: -21.9426, Timezone: "Atlantic/Reykjavik", City: "Reykjavik"}, ok: true}
	e := New(store.NewMemoryStore(), l, prayer.Settings{}, nil)

	snap := e.Snapshot(time.Date(2026, 6, 21, 23, 0, 0, 0, tz))
	if snap.Solar == nil {
		t.Fatal("expected solar data when only twilight is missing")
	}
	if snap.Polar != "" {
		t.Errorf("got polar %q, expected none", snap.Polar)
	}
	if snap.Cycle != sky.Day {
		t.Errorf("got cycle %s, expected day before the post-midnight sunset", snap.Cycle)
	}
	if snap.Orbit.Sun <= 0.9 || snap.Orbit.Sun >= 1 {
		t.Errorf("got sun progress %f, expected close to sunset", snap.Orbit.Sun)
	}
	if snap.Prayer == nil {
		t.Error("expected prayer data")
	}
}

func TestSnapshotUnknownZoneIsStale(t *testing.T) {
	l := &fixedLocator{loc: location.Location{Lat: 10, Lon: 10, Timezone: "Mars/Olympus"}, ok: true}
	e := New(store.NewMemoryStore(), l, prayer.Settings{}, nil)

	snap := e.Snapshot(time.Date(2026, 5, 5, 14, 0, 0, 0, time.UTC))
	if !snap.Stale {
		t.Error("expected stale snapshot for an unknown zone")
	}
	if snap.Solar == nil || snap.Solar.Sunrise.Hour() != 6 {
		t.Errorf("got solar %+v, expected the 06:00 fallback", snap.Solar)
	}
}

func TestDailyValuesAreCached(t *testing.T) {
	tz := mustZone(t, "Asia/Tashkent")

	calls := 0
	e := New(store.NewMemoryStore(), tashkentLocator(), prayer.Settings{}, nil)
	e.RiseSet = func(date time.Time, lat, lon float64) lunar.RiseSet {
		calls++
		return lunar.SuncalcRiseSet(date, lat, lon)
	}

	at := time.Date(2026, 1, 21, 9, 0, 0, 0, tz)
	first := e.Snapshot(at)
	afterFirst := calls
	second := e.Snapshot(at.Add(time.Minute))

	if calls != afterFirst {
		t.Errorf("got %d moon event lookups after a second tick, expected %d", calls, afterFirst)
	}
	if first.Solar != second.Solar {
		t.Error("expected the same cached solar data within a day")
	}

	next := e.Snapshot(at.Add(24 * time.Hour))
	if next.Solar == first.Solar {
		t.Error("expected solar data to be recomputed on a new day")
	}
}

func TestSetSettingsPersists(t *testing.T) {
	st := store.NewMemoryStore()
	e := New(st, tashkentLocator(), prayer.Settings{}, nil)

	got, err := e.SetSettings(prayer.Settings{Method: "Karachi", Madhab: "Hanafi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Method != "Karachi" || got.Madhab != "Hanafi" {
		t.Errorf("got %+v, expected Karachi/Hanafi", got)
	}

	reloaded := New(st, tashkentLocator(), prayer.Settings{}, nil)
	if s := reloaded.Settings(); s != got {
		t.Errorf("got reloaded settings %+v, expected %+v", s, got)
	}
}

func TestMalformedSettingsUseDefaults(t *testing.T) {
	st := store.NewMemoryStore()
	st.WriteRaw(store.KeySettings, []byte("{not json"))

	e := New(st, nil, prayer.Settings{}, nil)
	if s := e.Settings(); s != prayer.DefaultSettings() {
		t.Errorf("got %+v, expected defaults", s)
	}
}

func TestConfiguredDefaults(t *testing.T) {
	st := store.NewMemoryStore()

	e := New(st, nil, prayer.Settings{Method: "Egyptian"}, nil)
	if s := e.Settings(); s.Method != "Egyptian" || s.Madhab != "Shafi" {
		t.Errorf("got %+v, expected Egyptian/Shafi", s)
	}

	if _, err := e.SetSettings(prayer.Settings{Method: "Dubai"}); err != nil {
		t.Fatal(err)
	}
	if s := New(st, nil, prayer.Settings{Method: "Egyptian"}, nil).Settings(); s.Method != "Dubai" {
		t.Errorf("got %+v, expected stored Dubai to win over configured defaults", s)
	}
}
