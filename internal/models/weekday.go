package models

import (
	"strings"
	"time"
)

// Weekday names a day of the week the way commitments and schedule entries carry it ("Monday").
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists the week starting on Monday.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayByTime = map[time.Weekday]Weekday{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// ParseWeekday accepts full or three-letter names in any case.
func ParseWeekday(raw string) (Weekday, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", false
	}
	for _, day := range Weekdays {
		name := strings.ToLower(string(day))
		if key == name || key == name[:3] {
			return day, true
		}
	}
	return "", false
}

// WeekdayOf returns the weekday name of t.
func WeekdayOf(t time.Time) Weekday {
	return weekdayByTime[t.Weekday()]
}

// Valid reports whether w is one of the seven canonical names.
func (w Weekday) Valid() bool {
	for _, day := range Weekdays {
		if w == day {
			return true
		}
	}
	return false
}

// TimeWeekday converts w to the standard library weekday. Invalid names map to Monday.
func (w Weekday) TimeWeekday() time.Weekday {
	for tw, day := range weekdayByTime {
		if day == w {
			return tw
		}
	}
	return time.Monday
}
