package schedule

import (
	"time"
)

// GridSize is the fixed number of cells in a month view: 6 full weeks. The
// grid never shrinks for short months, so the layout is stable across
// navigation at the cost of up to two weeks of adjacent-month padding.
const GridSize = 42

// BuildGrid returns the 42 consecutive dates shown for (year, month),
// starting on the Sunday on or before the 1st. Out-of-range months
// normalize into the adjacent year the way time.Date rolls over (month 0 is
// December of the previous year, month 13 is January of the next).
func BuildGrid(year int, month time.Month) []Cell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	start := first.AddDate(0, 0, -int(first.Weekday()))

	cells := make([]Cell, 0, GridSize)
	for i := 0; i < GridSize; i++ {
		d := start.AddDate(0, 0, i)
		cells = append(cells, Cell{
			Date:    d,
			InMonth: d.Month() == first.Month() && d.Year() == first.Year(),
		})
	}
	return cells
}

// AddMonths shifts a (year, month) pair by delta calendar months, handling
// year rollover. The returned pair is always normalized.
func AddMonths(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return t.Year(), t.Month()
}
