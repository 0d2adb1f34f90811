package planner

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
)

// epsilon absorbs float drift when hours are decremented by fractional slices.
const epsilon = 1e-9

// IntervalType tags why a busy interval is unavailable.
type IntervalType string

const (
	IntervalCommitment IntervalType = "commitment"
	IntervalBuffer     IntervalType = "buffer"
	IntervalBreak      IntervalType = "break"
	IntervalStudy      IntervalType = "study"
)

// Window is a day's working range [Start, End) in decimal hours.
type Window struct {
	Start float64
	End   float64
}

// DefaultWindow is used when preferences do not specify one.
var DefaultWindow = Window{Start: 8, End: 22}

// Length returns the window size in hours.
func (w Window) Length() float64 {
	return w.End - w.Start
}

// Clip intersects [start, end) with the window. ok is false when nothing remains.
func (w Window) Clip(start, end float64) (float64, float64, bool) {
	s := math.Max(start, w.Start)
	e := math.Min(end, w.End)
	return s, e, e-s > epsilon
}

// BusyInterval is a half-open range of a single date that cannot take new study blocks.
type BusyInterval struct {
	Start float64
	End   float64
	Type  IntervalType
	Label string
}

// Overlaps reports whether two half-open intervals share any time.
func (b BusyInterval) Overlaps(other BusyInterval) bool {
	return b.Start < other.End-epsilon && other.Start < b.End-epsilon
}

// DayPlan is the ordered busy list for one calendar date.
type DayPlan struct {
	Busy []BusyInterval
}

// Insert adds an interval and keeps the list sorted by start, preserving insertion order on ties.
func (p *DayPlan) Insert(iv BusyInterval) {
	p.Busy = append(p.Busy, iv)
	sort.SliceStable(p.Busy, func(i, j int) bool {
		return p.Busy[i].Start < p.Busy[j].Start
	})
}

// FindSlot returns the first start position inside window where d hours fit without touching busy.
// Candidates are the window start followed by each interval end, in order. The cursor never moves
// backwards, so overlapping intervals cannot expose a gap that lies inside another interval.
func FindSlot(busy []BusyInterval, window Window, d float64) (float64, bool) {
	cursor := window.Start
	for _, iv := range busy {
		if iv.Start-cursor >= d-epsilon && cursor+d <= window.End+epsilon {
			return cursor, true
		}
		if iv.End > cursor {
			cursor = iv.End
		}
	}
	if window.End-cursor >= d-epsilon {
		return cursor, true
	}
	return 0, false
}

// FreeHours sums every gap of the window not covered by busy.
func FreeHours(busy []BusyInterval, window Window) float64 {
	cursor := window.Start
	free := 0.0
	for _, iv := range busy {
		if cursor >= window.End {
			break
		}
		if iv.Start > cursor {
			free += math.Min(iv.Start, window.End) - cursor
		}
		if iv.End > cursor {
			cursor = iv.End
		}
	}
	if window.End > cursor {
		free += window.End - cursor
	}
	return free
}

// ParseClock converts "HH:MM" into decimal hours. "24:00" is accepted as end of day.
func ParseClock(raw string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid time %q, expected HH:MM", raw))
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid hour in %q", raw))
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid minutes in %q", raw))
	}
	if hours < 0 || minutes < 0 || minutes > 59 || hours > 24 || (hours == 24 && minutes != 0) {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("time %q out of range", raw))
	}
	return float64(hours) + float64(minutes)/60, nil
}

// FormatClock renders decimal hours as "HH:MM", rounding to the nearest minute.
func FormatClock(hours float64) string {
	total := int(math.Round(hours * 60))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
