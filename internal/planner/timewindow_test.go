package planner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
)

func TestFindSlotFirstFit(t *testing.T) {
	busy := []BusyInterval{
		{Start: 9, End: 10, Type: IntervalCommitment},
		{Start: 10.5, End: 12, Type: IntervalCommitment},
	}

	start, ok := FindSlot(busy, DefaultWindow, 1)
	require.True(t, ok)
	assert.Equal(t, 8.0, start)

	start, ok = FindSlot(busy, DefaultWindow, 1.5)
	require.True(t, ok)
	assert.Equal(t, 12.0, start)

	start, ok = FindSlot(busy, DefaultWindow, 0.5)
	require.True(t, ok)
	assert.Equal(t, 8.0, start, "earliest gap wins even when a tighter one exists")
}

func TestFindSlotExactFitAtWindowEnd(t *testing.T) {
	busy := []BusyInterval{{Start: 8, End: 20, Type: IntervalCommitment}}

	start, ok := FindSlot(busy, DefaultWindow, 2)
	require.True(t, ok)
	assert.Equal(t, 20.0, start)

	_, ok = FindSlot(busy, DefaultWindow, 2.25)
	assert.False(t, ok)
}

func TestFindSlotOverlappingIntervals(t *testing.T) {
	busy := []BusyInterval{
		{Start: 9, End: 15, Type: IntervalCommitment},
		{Start: 10, End: 11, Type: IntervalBreak},
	}

	start, ok := FindSlot(busy, DefaultWindow, 2)
	require.True(t, ok)
	assert.Equal(t, 15.0, start)
}

func TestFindSlotFullDay(t *testing.T) {
	busy := []BusyInterval{{Start: 8, End: 22, Type: IntervalCommitment}}
	_, ok := FindSlot(busy, DefaultWindow, 0.25)
	assert.False(t, ok)
}

func TestFreeHours(t *testing.T) {
	busy := []BusyInterval{
		{Start: 9, End: 10},
		{Start: 9.5, End: 11},
		{Start: 21, End: 22},
	}
	assert.InDelta(t, 11.0, FreeHours(busy, DefaultWindow), 1e-9)
	assert.InDelta(t, 14.0, FreeHours(nil, DefaultWindow), 1e-9)
	assert.InDelta(t, 0.0, FreeHours([]BusyInterval{{Start: 8, End: 22}}, DefaultWindow), 1e-9)
}

func TestDayPlanInsertKeepsOrder(t *testing.T) {
	plan := &DayPlan{}
	plan.Insert(BusyInterval{Start: 12, End: 13, Label: "lunch"})
	plan.Insert(BusyInterval{Start: 9, End: 10, Label: "class"})
	plan.Insert(BusyInterval{Start: 12, End: 12.5, Label: "call"})

	require.Len(t, plan.Busy, 3)
	assert.Equal(t, "class", plan.Busy[0].Label)
	assert.Equal(t, "lunch", plan.Busy[1].Label)
	assert.Equal(t, "call", plan.Busy[2].Label)
}

func TestWindowClip(t *testing.T) {
	s, e, ok := DefaultWindow.Clip(7, 9)
	require.True(t, ok)
	assert.Equal(t, 8.0, s)
	assert.Equal(t, 9.0, e)

	_, _, ok = DefaultWindow.Clip(5, 8)
	assert.False(t, ok)
}

func TestParseClock(t *testing.T) {
	cases := map[string]float64{
		"08:00": 8,
		"14:30": 14.5,
		"9:15":  9.25,
		"24:00": 24,
		"00:45": 0.75,
	}
	for raw, want := range cases {
		got, err := ParseClock(raw)
		require.NoError(t, err, raw)
		assert.InDelta(t, want, got, 1e-9, raw)
	}

	for _, raw := range []string{"", "8", "25:00", "10:60", "aa:00", "10:5", "24:30"} {
		_, err := ParseClock(raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, appErrors.ErrValidation), raw)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "08:00", FormatClock(8))
	assert.Equal(t, "14:30", FormatClock(14.5))
	assert.Equal(t, "10:20", FormatClock(10+1.0/3))
	assert.Equal(t, "11:00", FormatClock(10.9999))
}
