package export

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

const (
	// ProductID identifies the generator in the calendar header.
	ProductID = "-//StudySync//Homework Scheduler//EN"
	// DefaultUIDDomain is appended to every event UID.
	DefaultUIDDomain = "studysync.app"
	// DefaultCalendarName is used when a calendar has no name.
	DefaultCalendarName = "StudySync Schedule"
)

// uidNamespace scopes name-based event UIDs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://studysync.app/ics/event"))

// CalendarEvent is one VEVENT. Key is the logical identity of the event; equal keys yield equal UIDs
// across runs. A preset UID is used verbatim. A non-empty RRule makes the event recurring.
type CalendarEvent struct {
	Key         string
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	RRule       string
}

// Calendar groups events under a named VCALENDAR. Stamp sets DTSTAMP and CREATED; zero means now.
type Calendar struct {
	Name        string
	Description string
	Stamp       time.Time
	Events      []CalendarEvent
}

// ICSExporter encodes calendars as iCalendar text.
type ICSExporter struct {
	uidDomain string
	now       func() time.Time
}

// NewICSExporter builds an encoder appending uidDomain to every UID.
func NewICSExporter(uidDomain string) *ICSExporter {
	if strings.TrimSpace(uidDomain) == "" {
		uidDomain = DefaultUIDDomain
	}
	return &ICSExporter{uidDomain: uidDomain, now: time.Now}
}

// ContentType is the MIME type of rendered output.
func (e *ICSExporter) ContentType() string {
	return "text/calendar; charset=utf-8"
}

// UID derives the stable identifier for an event key.
func (e *ICSExporter) UID(key string) string {
	return fmt.Sprintf("%s@%s", uuid.NewSHA1(uidNamespace, []byte(key)), e.uidDomain)
}

// UIDs returns the identifiers Render would assign, in event order. Repeated keys within one
// calendar get a "-N" suffix so no two events collide.
func (e *ICSExporter) UIDs(events []CalendarEvent) []string {
	seen := make(map[string]int, len(events))
	uids := make([]string, len(events))
	for i, event := range events {
		if event.UID != "" {
			uids[i] = event.UID
			continue
		}
		base := e.UID(event.Key)
		seen[base]++
		if n := seen[base]; n > 1 {
			local, domain, _ := strings.Cut(base, "@")
			base = fmt.Sprintf("%s-%d@%s", local, n, domain)
		}
		uids[i] = base
	}
	return uids
}

// Render serializes the calendar.
func (e *ICSExporter) Render(calendar Calendar) ([]byte, error) {
	stamp := calendar.Stamp
	if stamp.IsZero() {
		stamp = e.now()
	}
	name := calendar.Name
	if name == "" {
		name = DefaultCalendarName
	}

	cal := ics.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName(name)
	if calendar.Description != "" {
		cal.SetXWRCalDesc(calendar.Description)
	}

	uids := e.UIDs(calendar.Events)
	for i, ev := range calendar.Events {
		if !ev.End.After(ev.Start) {
			return nil, fmt.Errorf("event %q ends at or before its start", ev.Summary)
		}
		event := cal.AddEvent(uids[i])
		event.SetCreatedTime(stamp)
		event.SetDtStampTime(stamp)
		event.SetSummary(ev.Summary)
		if ev.Description != "" {
			event.SetDescription(ev.Description)
		}
		event.SetStartAt(ev.Start)
		event.SetEndAt(ev.End)
		event.SetStatus(ics.ObjectStatusConfirmed)
		event.SetSequence(0)
		if ev.RRule != "" {
			event.AddRrule(ev.RRule)
		}
	}

	return []byte(cal.Serialize()), nil
}

var byDayCodes = map[time.Weekday]string{
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
	time.Sunday:    "SU",
}

// WeeklyRule builds a weekly RRULE on day, bounded by the last second of until when given.
func WeeklyRule(day time.Weekday, until *time.Time) string {
	rule := "FREQ=WEEKLY;BYDAY=" + byDayCodes[day]
	if until != nil {
		y, m, d := until.Date()
		last := time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
		rule += ";UNTIL=" + last.Format("20060102T150405Z")
	}
	return rule
}
