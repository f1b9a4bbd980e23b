package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chrissnell/waqt/pkg/season"
	"github.com/chrissnell/waqt/pkg/yearmap"
)

var levelGlyphs = map[yearmap.Level]string{
	yearmap.LevelFuture: "·",
	yearmap.LevelPast:   "▒",
	yearmap.LevelToday:  "█",
}

func main() {
	var (
		dateStr string
		zone    string
		lat     float64
	)
	flag.StringVar(&dateStr, "date", "", "Date to render the year for (YYYY-MM-DD, default today)")
	flag.StringVar(&zone, "tz", "Local", "IANA time zone")
	flag.Float64Var(&lat, "lat", 0, "Latitude used to pick the hemisphere for the season line")
	flag.Parse()

	loc, err := time.LoadLocation(zone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading time zone: %v\n", err)
		os.Exit(1)
	}

	now := time.Now().In(loc)
	if dateStr != "" {
		now, err = time.ParseInLocation("2006-01-02", dateStr, loc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			os.Exit(1)
		}
	}

	model := yearmap.Build(now)
	render(model)

	m := model.Meta
	fmt.Printf("\n%d: day %d of %d (%.1f%%), %d days left\n", m.Year, m.DayOfYear, m.TotalDays, m.Progress*100, m.DaysLeft)

	mp := yearmap.CurrentMonthProgress(now)
	fmt.Printf("%s: day %d of %d (%.1f%%)\n", mp.MonthLabel, mp.DayOfMonth, mp.TotalDaysInMonth, mp.Progress*100)

	sm := season.ComputeMeta(now, lat)
	fmt.Printf("%s, %d days until %s\n", sm.CurrentSeason.Label(), sm.DaysUntilNextSeason, sm.NextSeasonLabel)
}

// render draws the grid with weeks as columns and Monday on the first row
func render(model yearmap.Model) {
	grid := make([][]string, 7)
	for i := range grid {
		grid[i] = make([]string, model.TotalWeeks)
		for j := range grid[i] {
			grid[i][j] = " "
		}
	}
	for _, c := range model.Cells {
		grid[c.WeekdayIndex][c.WeekIndex] = levelGlyphs[c.Level]
	}

	header := []rune(strings.Repeat(" ", model.TotalWeeks))
	for _, mk := range model.MonthMarkers {
		for i, r := range mk.Label {
			if mk.WeekIndex+i < len(header) {
				header[mk.WeekIndex+i] = r
			}
		}
	}

	fmt.Printf("    %s\n", string(header))
	days := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	for i, row := range grid {
		fmt.Printf("%s %s\n", days[i], strings.Join(row, ""))
	}
}
