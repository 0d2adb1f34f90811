package planner

import (
	"math"
	"sort"
	"time"

	"github.com/noah-isme/studysync-api/internal/models"
)

type feasibility struct {
	available  float64
	infeasible bool
}

// allocator owns the busy map for a single generation call.
type allocator struct {
	busy       BusyMap
	window     Window
	today      time.Time
	horizonCap int

	entries  []models.ScheduleEntry
	outcomes []models.ItemOutcome
	warnings *warningCollector
}

func newAllocator(busy BusyMap, window Window, today time.Time, horizonCap, items int) *allocator {
	return &allocator{
		busy:       busy,
		window:     window,
		today:      today,
		horizonCap: horizonCap,
		entries:    make([]models.ScheduleEntry, 0),
		outcomes:   make([]models.ItemOutcome, 0, items),
		warnings:   newWarningCollector(items),
	}
}

// sortByDeadline returns a copy ordered by ascending deadline date, keeping input order on ties.
func sortByDeadline(homework []models.Homework) []models.Homework {
	ordered := append([]models.Homework(nil), homework...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return CivilDate(ordered[i].Deadline).Before(CivilDate(ordered[j].Deadline))
	})
	return ordered
}

// run allocates every item in deadline order.
func (a *allocator) run(homework []models.Homework) {
	for _, hw := range sortByDeadline(homework) {
		a.allocate(hw)
	}
}

// allocate walks forward one day at a time from today, making a single first-fit attempt per date.
// A day that already took a block is not revisited, even when a smaller gap remains. Only the
// final state of the item is recorded in its outcome.
func (a *allocator) allocate(hw models.Homework) {
	outcome := models.ItemOutcome{HomeworkID: hw.ID, Homework: hw.Name, Needed: hw.Hours}
	deadline := CivilDate(hw.Deadline)

	outcome.Available = AvailableHours(a.busy, a.window, a.today, deadline)
	check := feasibility{available: outcome.Available, infeasible: outcome.Available < hw.Hours-epsilon}

	remaining := hw.Hours
	date := a.today
	for i := 0; remaining > epsilon && !date.After(deadline) && i < a.horizonCap; i++ {
		slice := math.Min(remaining, hw.BlockSize)
		plan := a.busy.Plan(date)
		if start, ok := FindSlot(plan.Busy, a.window, slice); ok {
			a.entries = append(a.entries, models.ScheduleEntry{
				HomeworkID: hw.ID,
				Homework:   hw.Name,
				Day:        models.WeekdayOf(date),
				StartTime:  start,
				Duration:   slice,
				Date:       date,
			})
			plan.Insert(BusyInterval{Start: start, End: start + slice, Type: IntervalStudy, Label: hw.Name})
			remaining -= slice
		}
		date = date.AddDate(0, 0, 1)
	}
	if remaining <= epsilon {
		remaining = 0
	}
	outcome.Remaining = remaining
	outcome.Scheduled = hw.Hours - remaining

	switch {
	case remaining == 0:
		outcome.State = models.ItemSatisfied
	case check.infeasible && outcome.Scheduled <= epsilon:
		outcome.State = models.ItemUnsatisfied
	default:
		outcome.State = models.ItemPartiallyScheduled
	}

	a.warnings.record(hw, check, outcome.Scheduled, remaining)
	a.outcomes = append(a.outcomes, outcome)
}
