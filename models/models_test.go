package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bmorecarrie13/shift-scheduling/models"
)

func TestTimeGridDayBoundaries(t *testing.T) {
	// 10 hours starting at 20:00 span two calendar days, split at midnight.
	start := time.Date(2025, 3, 3, 20, 0, 0, 0, time.UTC)
	grid := models.NewTimeGrid(start, 10)

	assert.Equal(t, 10, grid.Len())
	assert.Equal(t, 2, grid.Days())
	assert.Equal(t, 0, grid.DayIndex(3)) // 23:00
	assert.Equal(t, 1, grid.DayIndex(4)) // 00:00
	assert.Equal(t, 23, grid.HourOfDay(3))
	assert.Equal(t, 0, grid.HourOfDay(4))

	lo, hi, ok := grid.DaySlots(0)
	assert.True(t, ok)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 3, hi)

	lo, hi, ok = grid.DaySlots(1)
	assert.True(t, ok)
	assert.Equal(t, 4, lo)
	assert.Equal(t, 9, hi)

	_, _, ok = grid.DaySlots(2)
	assert.False(t, ok)
}

func TestTimeGridIndex(t *testing.T) {
	start := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	grid := models.NewTimeGrid(start, 4)

	i, ok := grid.Index(start.Add(2 * time.Hour))
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = grid.Index(start.Add(-time.Hour))
	assert.False(t, ok, "before the horizon")
	_, ok = grid.Index(start.Add(4 * time.Hour))
	assert.False(t, ok, "past the horizon")
	_, ok = grid.Index(start.Add(90 * time.Minute))
	assert.False(t, ok, "off the hourly lattice")
}

func TestTimeGridTruncatesStart(t *testing.T) {
	ragged := time.Date(2025, 3, 3, 8, 45, 12, 0, time.UTC)
	grid := models.NewTimeGrid(ragged, 1)
	assert.Equal(t, time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC), grid.At(0))
}

func TestTimeGridWeekOfDay(t *testing.T) {
	grid := models.NewTimeGrid(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), 24*9)
	assert.Equal(t, 9, grid.Days())
	assert.Equal(t, 0, grid.WeekOfDay(6))
	assert.Equal(t, 1, grid.WeekOfDay(7))
}

func TestShiftHours(t *testing.T) {
	s := models.Shift{
		StaffID: "S001",
		Start:   time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC),
		End:     time.Date(2025, 3, 3, 17, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 9, s.Hours())
}
