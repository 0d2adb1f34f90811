package planner

import (
	"fmt"
	"time"

	"github.com/noah-isme/studysync-api/internal/models"
	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// DefaultBufferMinutes is the gap kept free after each commitment when preferences omit it.
const DefaultBufferMinutes = 30

// Settings is the resolved per-call working configuration.
type Settings struct {
	Window        Window
	BufferMinutes int
	Breaks        []models.Break
}

// BusyMap holds one DayPlan per calendar date, keyed by "2006-01-02". It is built per call.
type BusyMap map[string]*DayPlan

// Plan returns the plan for date, creating an empty one when absent.
func (m BusyMap) Plan(date time.Time) *DayPlan {
	key := date.Format(dateLayout)
	plan, ok := m[key]
	if !ok {
		plan = &DayPlan{}
		m[key] = plan
	}
	return plan
}

// Lookup returns the plan for date without creating it.
func (m BusyMap) Lookup(date time.Time) (*DayPlan, bool) {
	plan, ok := m[date.Format(dateLayout)]
	return plan, ok
}

type commitmentRule struct {
	day     models.Weekday
	start   float64
	end     float64
	label   string
	endDate *time.Time
}

type breakRule struct {
	start float64
	end   float64
	label string
}

// CivilDate truncates t to midnight UTC of its calendar date in t's own location.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ResolveSettings applies defaults to optional preferences and validates the window.
func ResolveSettings(prefs *models.Preferences, defaults Settings) (Settings, error) {
	settings := defaults
	if prefs == nil {
		return settings, validateWindow(settings.Window)
	}

	if prefs.StartTime != "" {
		start, err := ParseClock(prefs.StartTime)
		if err != nil {
			return Settings{}, err
		}
		settings.Window.Start = start
	}
	if prefs.EndTime != "" {
		end, err := ParseClock(prefs.EndTime)
		if err != nil {
			return Settings{}, err
		}
		settings.Window.End = end
	}
	if err := validateWindow(settings.Window); err != nil {
		return Settings{}, err
	}

	if prefs.BufferMinutes != nil {
		if *prefs.BufferMinutes < 0 {
			return Settings{}, appErrors.Clone(appErrors.ErrValidation, "buffer minutes cannot be negative")
		}
		settings.BufferMinutes = *prefs.BufferMinutes
	}
	if prefs.Breaks != nil {
		settings.Breaks = append([]models.Break(nil), prefs.Breaks...)
	}
	return settings, nil
}

func validateWindow(w Window) error {
	if w.End <= w.Start {
		return appErrors.Clone(appErrors.ErrInvalidInterval,
			fmt.Sprintf("working window %s-%s ends before it starts", FormatClock(w.Start), FormatClock(w.End)))
	}
	return nil
}

func compileCommitments(commitments []models.Commitment) ([]commitmentRule, error) {
	rules := make([]commitmentRule, 0, len(commitments))
	for _, c := range commitments {
		day, ok := models.ParseWeekday(string(c.Day))
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrInvalidWeekday, fmt.Sprintf("commitment %q has unknown day %q", c.Description, c.Day))
		}
		start, err := ParseClock(c.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := ParseClock(c.EndTime)
		if err != nil {
			return nil, err
		}
		if end <= start {
			return nil, appErrors.Clone(appErrors.ErrInvalidInterval,
				fmt.Sprintf("commitment %q on %s ends at %s before it starts at %s", c.Description, day, c.EndTime, c.StartTime))
		}
		rule := commitmentRule{day: day, start: start, end: end, label: c.Description}
		if c.EndDate != nil {
			until := CivilDate(*c.EndDate)
			rule.endDate = &until
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func compileBreaks(breaks []models.Break) ([]breakRule, error) {
	rules := make([]breakRule, 0, len(breaks))
	for _, b := range breaks {
		start, err := ParseClock(b.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := ParseClock(b.EndTime)
		if err != nil {
			return nil, err
		}
		if end <= start {
			return nil, appErrors.Clone(appErrors.ErrInvalidInterval,
				fmt.Sprintf("break %q ends at %s before it starts at %s", b.Name, b.EndTime, b.StartTime))
		}
		rules = append(rules, breakRule{start: start, end: end, label: b.Name})
	}
	return rules, nil
}

// ExpandCommitments builds the busy map for every date in [from, to]. Commitments apply on matching
// weekdays up to their end date, each followed by a buffer when it fits before the window closes.
// Breaks apply on every date. Everything is clipped to the window; empty remainders are dropped.
func ExpandCommitments(commitments []models.Commitment, settings Settings, from, to time.Time) (BusyMap, error) {
	rules, err := compileCommitments(commitments)
	if err != nil {
		return nil, err
	}
	breaks, err := compileBreaks(settings.Breaks)
	if err != nil {
		return nil, err
	}

	window := settings.Window
	buffer := float64(settings.BufferMinutes) / 60
	busy := BusyMap{}

	for date := CivilDate(from); !date.After(CivilDate(to)); date = date.AddDate(0, 0, 1) {
		plan := busy.Plan(date)
		weekday := models.WeekdayOf(date)

		for _, rule := range rules {
			if rule.day != weekday {
				continue
			}
			if rule.endDate != nil && rule.endDate.Before(date) {
				continue
			}
			if s, e, ok := window.Clip(rule.start, rule.end); ok {
				plan.Insert(BusyInterval{Start: s, End: e, Type: IntervalCommitment, Label: rule.label})
			}
			if buffer > 0 && rule.end+buffer <= window.End+epsilon {
				if s, e, ok := window.Clip(rule.end, rule.end+buffer); ok {
					plan.Insert(BusyInterval{Start: s, End: e, Type: IntervalBuffer, Label: rule.label})
				}
			}
		}

		for _, rule := range breaks {
			if s, e, ok := window.Clip(rule.start, rule.end); ok {
				plan.Insert(BusyInterval{Start: s, End: e, Type: IntervalBreak, Label: rule.label})
			}
		}
	}

	return busy, nil
}
