package prayer

import "time"

// Names lists the daily events in the order they occur.
var Names = []string{"fajr", "sunrise", "dhuhr", "asr", "maghrib", "isha"}

// Event is a named prayer instant.
type Event struct {
	Name string    `json:"name"`
	Time time.Time `json:"time"`
}

// Events returns the day's prayers in chronological order.
func (p PrayerData) Events() []Event {
	return []Event{
		{"fajr", p.Fajr},
		{"sunrise", p.Sunrise},
		{"dhuhr", p.Dhuhr},
		{"asr", p.Asr},
		{"maghrib", p.Maghrib},
		{"isha", p.Isha},
	}
}

// Window is the prayer period that contains an instant.
type Window struct {
	Name           string    `json:"name"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	NextPrayerName string    `json:"nextPrayerName"`
}

// NextPrayer is the upcoming prayer and the whole seconds remaining until it.
type NextPrayer struct {
	Name         string    `json:"name"`
	Time         time.Time `json:"time"`
	SecondsUntil int64     `json:"secondsUntil"`
}

// CurrentWindow finds the prayer window [start, end) containing now.
//
// Before fajr the window is the previous night's isha, which started at
// isha - 24h. After isha it runs to tomorrow's fajr.
func CurrentWindow(now time.Time, p PrayerData) Window {
	const day = 24 * time.Hour
	events := p.Events()

	current := -1
	for i, e := range events {
		if !e.Time.After(now) {
			current = i
		}
	}

	last := len(events) - 1
	switch current {
	case -1:
		return Window{
			Name:           "isha",
			StartTime:      events[last].Time.Add(-day),
			EndTime:        events[0].Time,
			NextPrayerName: "fajr",
		}
	case last:
		return Window{
			Name:           events[last].Name,
			StartTime:      events[last].Time,
			EndTime:        events[0].Time.Add(day),
			NextPrayerName: "fajr",
		}
	}

	next := events[current+1]
	return Window{
		Name:           events[current].Name,
		StartTime:      events[current].Time,
		EndTime:        next.Time,
		NextPrayerName: next.Name,
	}
}

// NextAfter returns the first prayer strictly after now, or tomorrow's fajr
// once isha has passed.
func NextAfter(now time.Time, p PrayerData) NextPrayer {
	for _, e := range p.Events() {
		if e.Time.After(now) {
			return NextPrayer{Name: e.Name, Time: e.Time, SecondsUntil: int64(e.Time.Sub(now) / time.Second)}
		}
	}

	tomorrowFajr := p.Fajr.Add(24 * time.Hour)
	return NextPrayer{
		Name:         "fajr",
		Time:         tomorrowFajr,
		SecondsUntil: int64(tomorrowFajr.Sub(now) / time.Second),
	}
}

// Placeholder returns the window and countdown reported when there is no
// prayer data to work from.
func Placeholder(now time.Time) (Window, NextPrayer) {
	return Window{Name: "dhuhr", StartTime: now, EndTime: now, NextPrayerName: "asr"},
		NextPrayer{Name: "dhuhr", Time: now}
}
