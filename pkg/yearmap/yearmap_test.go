package yearmap

import (
	"testing"
	"time"
)

func TestIsLeapYear(t *testing.T) {
	tests := []struct {
		year     int
		expected bool
	}{
		{2024, true},
		{2025, false},
		{1900, false},
		{2000, true},
		{2100, false},
	}

	for _, tt := range tests {
		if got := IsLeapYear(tt.year); got != tt.expected {
			t.Errorf("IsLeapYear(%d) = %v, expected %v", tt.year, got, tt.expected)
		}
	}
}

func TestBuildCellCount(t *testing.T) {
	tests := []struct {
		now   time.Time
		cells int
	}{
		{time.Date(2024, 7, 4, 9, 0, 0, 0, time.UTC), 366},
		{time.Date(2025, 2, 14, 23, 59, 0, 0, time.UTC), 365},
	}

	for _, tt := range tests {
		m := Build(tt.now)
		if len(m.Cells) != tt.cells {
			t.Errorf("Build(%d) has %d cells, expected %d", tt.now.Year(), len(m.Cells), tt.cells)
		}

		today := 0
		for _, c := range m.Cells {
			if c.IsToday {
				today++
				if c.Level != LevelToday {
					t.Errorf("today cell %s has level %d", c.Date, c.Level)
				}
			}
		}
		if today != 1 {
			t.Errorf("Build(%s) has %d today cells, expected 1", tt.now.Format("2006-01-02"), today)
		}
	}
}

func TestBuild2025(t *testing.T) {
	// 2025-01-01 is a Wednesday.
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	m := Build(now)

	first := m.Cells[0]
	if first.Date != "2025-01-01" || first.WeekdayIndex != 2 || first.WeekIndex != 0 || first.Level != LevelPast {
		t.Errorf("first cell = %+v", first)
	}

	// Monday 2025-01-06 opens the second column.
	if c := m.Cells[5]; c.Date != "2025-01-06" || c.WeekIndex != 1 || c.WeekdayIndex != 0 {
		t.Errorf("cell 5 = %+v", c)
	}

	last := m.Cells[len(m.Cells)-1]
	if last.Date != "2025-12-31" || !last.IsFuture || last.Level != LevelFuture {
		t.Errorf("last cell = %+v", last)
	}
	if m.TotalWeeks != last.WeekIndex+1 || m.TotalWeeks != 53 {
		t.Errorf("TotalWeeks = %d, last week index %d", m.TotalWeeks, last.WeekIndex)
	}

	expectedMeta := Meta{Year: 2025, DayOfYear: 60, TotalDays: 365, Progress: 60.0 / 365.0, DaysLeft: 305}
	if m.Meta != expectedMeta {
		t.Errorf("Meta = %+v, expected %+v", m.Meta, expectedMeta)
	}

	expectedMarkers := []MonthMarker{{"Jan", 0}, {"Apr", 13}, {"Jul", 26}, {"Oct", 39}}
	if len(m.MonthMarkers) != len(expectedMarkers) {
		t.Fatalf("MonthMarkers = %+v", m.MonthMarkers)
	}
	for i, mk := range expectedMarkers {
		if m.MonthMarkers[i] != mk {
			t.Errorf("MonthMarkers[%d] = %+v, expected %+v", i, m.MonthMarkers[i], mk)
		}
	}
}

func TestDayLevel(t *testing.T) {
	today := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		target   time.Time
		expected Level
	}{
		{time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC), LevelToday},
		{time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), LevelFuture},
		{time.Date(2025, 6, 9, 23, 59, 0, 0, time.UTC), LevelPast},
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), LevelPast},
	}

	for _, tt := range tests {
		if got := DayLevel(tt.target, today); got != tt.expected {
			t.Errorf("DayLevel(%s) = %d, expected %d", tt.target, got, tt.expected)
		}
	}
}

func TestCurrentMonthProgress(t *testing.T) {
	tests := []struct {
		now      time.Time
		expected MonthProgress
	}{
		{time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC), MonthProgress{"Feb", 15, 29, 15.0 / 29.0}},
		{time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC), MonthProgress{"Feb", 28, 28, 1}},
		{time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), MonthProgress{"Dec", 1, 31, 1.0 / 31.0}},
	}

	for _, tt := range tests {
		if got := CurrentMonthProgress(tt.now); got != tt.expected {
			t.Errorf("CurrentMonthProgress(%s) = %+v, expected %+v", tt.now.Format("2006-01-02"), got, tt.expected)
		}
	}
}

func TestWeekdayIndexMondayFirst(t *testing.T) {
	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		if got := WeekdayIndexMondayFirst(monday.AddDate(0, 0, i)); got != i {
			t.Errorf("WeekdayIndexMondayFirst(+%d) = %d, expected %d", i, got, i)
		}
	}
}
