package lunar

import (
	"sort"
	"time"

	"github.com/sixdouglas/suncalc"
)

// RiseSet holds the moonrise and moonset of one calendar day. Either may be
// the zero time when the event does not happen that day.
type RiseSet struct {
	Rise time.Time
	Set  time.Time
}

// RiseSetFunc returns the moon events for the calendar day containing date.
type RiseSetFunc func(date time.Time, lat, lon float64) RiseSet

// SuncalcRiseSet is the default RiseSetFunc. The day is taken in date's own
// location.
func SuncalcRiseSet(date time.Time, lat, lon float64) RiseSet {
	mt := suncalc.GetMoonTimes(date, lat, lon, false)
	return RiseSet{Rise: mt.Rise, Set: mt.Set}
}

type moonEvent struct {
	rise bool
	at   time.Time
}

// ComputeMoonPosition returns the moon's orbit progress at now.
//
// Moon events are gathered for yesterday, today and tomorrow because rise and
// set drift by close to an hour a day and the bracketing pair can sit on
// either side of midnight. Between a rise and the next set the result is the
// elapsed fraction in [0,1]. Between a set and the next rise it is 1 plus the
// elapsed fraction, in [1,2]. When no bracketing pair exists the result is 0.
func ComputeMoonPosition(now time.Time, lat, lon float64, riseSet RiseSetFunc) float64 {
	if riseSet == nil {
		riseSet = SuncalcRiseSet
	}

	var events []moonEvent
	for _, offset := range []int{-1, 0, 1} {
		rs := riseSet(now.AddDate(0, 0, offset), lat, lon)
		if !rs.Rise.IsZero() {
			events = append(events, moonEvent{rise: true, at: rs.Rise})
		}
		if !rs.Set.IsZero() {
			events = append(events, moonEvent{rise: false, at: rs.Set})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].at.Before(events[j].at)
	})

	var prev, next *moonEvent
	for i := range events {
		if events[i].at.After(now) {
			next = &events[i]
			if i > 0 {
				prev = &events[i-1]
			}
			break
		}
	}

	if prev == nil || next == nil {
		return 0
	}

	span := next.at.Sub(prev.at)
	if span <= 0 {
		return 0
	}
	progress := clamp(float64(now.Sub(prev.at))/float64(span), 0, 1)

	if prev.rise && !next.rise {
		return progress
	}
	return 1 + progress
}
