package planner

import "github.com/noah-isme/studysync-api/internal/models"

// warningCollector keeps at most one warning per homework item, in processing order.
type warningCollector struct {
	warnings []models.ScheduleWarning
}

func newWarningCollector(capacity int) *warningCollector {
	return &warningCollector{warnings: make([]models.ScheduleWarning, 0, capacity)}
}

// record picks the single warning for an item. The infeasibility pre-check takes precedence over a
// partial shortfall; a fully scheduled item records nothing.
func (c *warningCollector) record(hw models.Homework, check feasibility, scheduled, remaining float64) {
	if remaining <= epsilon {
		return
	}
	if check.infeasible {
		available := check.available
		c.warnings = append(c.warnings, models.ScheduleWarning{
			Kind:       models.WarningInfeasible,
			HomeworkID: hw.ID,
			Homework:   hw.Name,
			Needed:     hw.Hours,
			Available:  &available,
		})
		return
	}
	c.warnings = append(c.warnings, models.ScheduleWarning{
		Kind:       models.WarningPartial,
		HomeworkID: hw.ID,
		Homework:   hw.Name,
		Needed:     hw.Hours,
		Scheduled:  &scheduled,
		Remaining:  &remaining,
	})
}

func (c *warningCollector) list() []models.ScheduleWarning {
	return c.warnings
}
