package planner

import "time"

// AvailableHours sums free working time over every mapped date from today through deadline inclusive.
// A deadline before today yields zero.
func AvailableHours(busy BusyMap, window Window, today, deadline time.Time) float64 {
	total := 0.0
	seen := 0
	for date := CivilDate(today); !date.After(CivilDate(deadline)) && seen < len(busy); date = date.AddDate(0, 0, 1) {
		plan, ok := busy.Lookup(date)
		if !ok {
			continue
		}
		seen++
		total += FreeHours(plan.Busy, window)
	}
	return total
}
