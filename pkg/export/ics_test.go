package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stamp = time.Date(2023, 12, 31, 18, 0, 0, 0, time.UTC)

func TestICSRenderStudySession(t *testing.T) {
	exporter := NewICSExporter("")
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	out, err := exporter.Render(Calendar{
		Name:        "StudySync Schedule",
		Description: "Your personalized homework schedule",
		Stamp:       stamp,
		Events: []CalendarEvent{{
			Key:         "study|hw-1|2024-01-01|09:00|90",
			Summary:     "Essay",
			Description: "Study session for Essay",
			Start:       start,
			End:         start.Add(90 * time.Minute),
		}},
	})
	require.NoError(t, err)
	text := string(out)

	assert.True(t, strings.HasPrefix(text, "BEGIN:VCALENDAR"))
	assert.Contains(t, text, "VERSION:2.0")
	assert.Contains(t, text, "PRODID:"+ProductID)
	assert.Contains(t, text, "CALSCALE:GREGORIAN")
	assert.Contains(t, text, "METHOD:PUBLISH")
	assert.Contains(t, text, "X-WR-CALNAME:StudySync Schedule")
	assert.Contains(t, text, "DTSTART:20240101T090000Z")
	assert.Contains(t, text, "DTEND:20240101T103000Z")
	assert.Contains(t, text, "DTSTAMP:20231231T180000Z")
	assert.Contains(t, text, "CREATED:20231231T180000Z")
	assert.Contains(t, text, "SUMMARY:Essay")
	assert.Contains(t, text, "STATUS:CONFIRMED")
	assert.Contains(t, text, "SEQUENCE:0")
	assert.Contains(t, text, "UID:"+exporter.UID("study|hw-1|2024-01-01|09:00|90"))
	assert.NotContains(t, text, "RRULE")
	assert.Equal(t, 1, strings.Count(text, "BEGIN:VEVENT"))
}

func TestICSUIDsStableAndUnique(t *testing.T) {
	exporter := NewICSExporter("studysync.app")

	assert.Equal(t, exporter.UID("a"), NewICSExporter("studysync.app").UID("a"))
	assert.NotEqual(t, exporter.UID("a"), exporter.UID("b"))
	assert.True(t, strings.HasSuffix(exporter.UID("a"), "@studysync.app"))

	uids := exporter.UIDs([]CalendarEvent{{Key: "a"}, {Key: "b"}, {Key: "a"}, {Key: "a"}})
	require.Len(t, uids, 4)
	seen := map[string]bool{}
	for _, uid := range uids {
		assert.False(t, seen[uid], uid)
		seen[uid] = true
	}
	assert.Equal(t, exporter.UID("a"), uids[0])
	assert.Contains(t, uids[2], "-2@studysync.app")
	assert.Contains(t, uids[3], "-3@studysync.app")
}

func TestICSRenderRecurringCommitment(t *testing.T) {
	until := time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, 1, 5, 14, 0, 0, 0, time.UTC)

	out, err := NewICSExporter("").Render(Calendar{
		Stamp: stamp,
		Events: []CalendarEvent{{
			Key:     "commitment|c-1",
			Summary: "Chemistry lab",
			Start:   start,
			End:     start.Add(2 * time.Hour),
			RRule:   WeeklyRule(time.Friday, &until),
		}},
	})
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "X-WR-CALNAME:"+DefaultCalendarName)
	assert.Contains(t, text, "RRULE:FREQ=WEEKLY;BYDAY=FR;UNTIL=20240329T235959Z")
	assert.Contains(t, text, "DTSTART:20240105T140000Z")
}

func TestICSRenderRejectsEmptyEvent(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	_, err := NewICSExporter("").Render(Calendar{Events: []CalendarEvent{{Summary: "Broken", Start: start, End: start}}})
	assert.Error(t, err)
}

func TestWeeklyRuleWithoutUntil(t *testing.T) {
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=SU", WeeklyRule(time.Sunday, nil))
}

func TestICSPresetUIDKeptVerbatim(t *testing.T) {
	exporter := NewICSExporter("")
	events := []CalendarEvent{
		{Key: "same", UID: "fixed@studysync.app"},
		{Key: "same"},
		{Key: "same"},
	}

	uids := exporter.UIDs(events)

	assert.Equal(t, "fixed@studysync.app", uids[0])
	assert.Equal(t, exporter.UID("same"), uids[1])
	assert.NotEqual(t, uids[1], uids[2])
}
