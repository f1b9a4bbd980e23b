// Package season classifies dates into meteorological seasons and counts
// down to the next season boundary. Seasons flip for southern latitudes.
package season

import (
	"sort"
	"time"
)

// Season is a meteorological season.
type Season string

const (
	Winter Season = "winter"
	Spring Season = "spring"
	Summer Season = "summer"
	Fall   Season = "fall"
)

// Label is the capitalised display name of the season.
func (s Season) Label() string {
	switch s {
	case Winter:
		return "Winter"
	case Spring:
		return "Spring"
	case Summer:
		return "Summer"
	default:
		return "Fall"
	}
}

// Meta describes the current season and the boundary that ends it.
type Meta struct {
	CurrentSeason       Season    `json:"currentSeason"`
	NextSeasonLabel     string    `json:"nextSeasonLabel"`
	NextSeasonStart     time.Time `json:"nextSeasonStart"`
	DaysUntilNextSeason int       `json:"daysUntilNextSeason"`
}

type boundary struct {
	month  time.Month
	season Season
}

var (
	northern = []boundary{
		{time.March, Spring},
		{time.June, Summer},
		{time.September, Fall},
		{time.December, Winter},
	}
	southern = []boundary{
		{time.March, Fall},
		{time.June, Winter},
		{time.September, Spring},
		{time.December, Summer},
	}
)

func boundariesFor(lat float64) []boundary {
	if lat < 0 {
		return southern
	}
	return northern
}

// Determine returns the season of date's month in date's own zone.
func Determine(date time.Time, lat float64) Season {
	month := date.Month()
	b := boundariesFor(lat)

	switch {
	case month >= time.March && month <= time.May:
		return b[0].season
	case month >= time.June && month <= time.August:
		return b[1].season
	case month >= time.September && month <= time.November:
		return b[2].season
	default:
		return b[3].season
	}
}

// ComputeMeta finds the first season boundary strictly after date, looking
// at this year's and next year's boundaries. Boundaries fall on the first
// day of the month at local midnight in date's zone.
func ComputeMeta(date time.Time, lat float64) Meta {
	type start struct {
		at     time.Time
		season Season
	}

	loc := date.Location()
	var starts []start
	for _, year := range []int{date.Year(), date.Year() + 1} {
		for _, b := range boundariesFor(lat) {
			starts = append(starts, start{
				at:     time.Date(year, b.month, 1, 0, 0, 0, 0, loc),
				season: b.season,
			})
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].at.Before(starts[j].at) })

	next := starts[0]
	for _, s := range starts {
		if s.at.After(date) {
			next = s
			break
		}
	}

	days := int(next.at.Sub(date) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}

	return Meta{
		CurrentSeason:       Determine(date, lat),
		NextSeasonLabel:     next.season.Label(),
		NextSeasonStart:     next.at,
		DaysUntilNextSeason: days,
	}
}
