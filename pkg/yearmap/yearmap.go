// Package yearmap builds the day-per-cell calendar grid for a year along with
// the year and month progress values shown next to it.
package yearmap

import "time"

// Level is the fill intensity of a cell. Only 0 (future), 1 (past) and
// 4 (today) are produced.
type Level int

const (
	LevelFuture Level = 0
	LevelPast   Level = 1
	LevelToday  Level = 4
)

// Cell is one day of the grid.
type Cell struct {
	Date         string `json:"date"`
	WeekIndex    int    `json:"weekIndex"`
	WeekdayIndex int    `json:"weekdayIndex"` // Monday-first: 0..6
	Level        Level  `json:"level"`
	IsToday      bool   `json:"isToday"`
	IsFuture     bool   `json:"isFuture"`
}

type Meta struct {
	Year      int     `json:"year"`
	DayOfYear int     `json:"dayOfYear"`
	TotalDays int     `json:"totalDays"`
	Progress  float64 `json:"progress"`
	DaysLeft  int     `json:"daysLeft"`
}

// MonthMarker labels the grid column a quarter starts in.
type MonthMarker struct {
	Label     string `json:"label"`
	WeekIndex int    `json:"weekIndex"`
}

type Model struct {
	Cells        []Cell        `json:"cells"`
	Meta         Meta          `json:"meta"`
	TotalWeeks   int           `json:"totalWeeks"`
	MonthMarkers []MonthMarker `json:"monthMarkers"`
}

type MonthProgress struct {
	MonthLabel       string  `json:"monthLabel"`
	DayOfMonth       int     `json:"dayOfMonth"`
	TotalDaysInMonth int     `json:"totalDaysInMonth"`
	Progress         float64 `json:"progress"`
}

const dateKeyLayout = "2006-01-02"

func IsLeapYear(year int) bool {
	return year%400 == 0 || (year%4 == 0 && year%100 != 0)
}

func TotalDaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// DayOfYear is 1 on January 1st.
func DayOfYear(t time.Time) int {
	return t.YearDay()
}

func WeekdayIndexMondayFirst(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayLevel compares civil dates, so the time of day on either side does not
// matter.
func DayLevel(target, today time.Time) Level {
	t := startOfDay(target.In(today.Location()))
	c := startOfDay(today)

	switch {
	case t.After(c):
		return LevelFuture
	case t.Equal(c):
		return LevelToday
	default:
		return LevelPast
	}
}

// Build returns the grid for the year containing now, in now's zone.
func Build(now time.Time) Model {
	loc := now.Location()
	year := now.Year()
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	totalDays := TotalDaysInYear(year)
	firstWeekday := WeekdayIndexMondayFirst(jan1)
	todayKey := now.Format(dateKeyLayout)
	todayStart := startOfDay(now)

	cells := make([]Cell, 0, totalDays)
	totalWeeks := 0
	for i := 0; i < totalDays; i++ {
		day := time.Date(year, time.January, i+1, 0, 0, 0, 0, loc)
		weekIndex := (firstWeekday + i) / 7
		key := day.Format(dateKeyLayout)

		cells = append(cells, Cell{
			Date:         key,
			WeekIndex:    weekIndex,
			WeekdayIndex: WeekdayIndexMondayFirst(day),
			Level:        DayLevel(day, now),
			IsToday:      key == todayKey,
			IsFuture:     day.After(todayStart),
		})
		if weekIndex+1 > totalWeeks {
			totalWeeks = weekIndex + 1
		}
	}

	markers := make([]MonthMarker, 0, 4)
	for _, month := range []time.Month{time.January, time.April, time.July, time.October} {
		start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		markers = append(markers, MonthMarker{
			Label:     start.Format("Jan"),
			WeekIndex: (firstWeekday + DayOfYear(start) - 1) / 7,
		})
	}

	dayOfYear := DayOfYear(now)
	return Model{
		Cells: cells,
		Meta: Meta{
			Year:      year,
			DayOfYear: dayOfYear,
			TotalDays: totalDays,
			Progress:  float64(dayOfYear) / float64(totalDays),
			DaysLeft:  totalDays - dayOfYear,
		},
		TotalWeeks:   totalWeeks,
		MonthMarkers: markers,
	}
}

// CurrentMonthProgress reports how far now is through its month.
func CurrentMonthProgress(now time.Time) MonthProgress {
	// Day 0 of the next month is the last day of this one.
	total := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()

	return MonthProgress{
		MonthLabel:       now.Format("Jan"),
		DayOfMonth:       now.Day(),
		TotalDaysInMonth: total,
		Progress:         float64(now.Day()) / float64(total),
	}
}
