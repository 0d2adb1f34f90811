package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studysync-api/internal/dto"
	"github.com/noah-isme/studysync-api/pkg/config"
	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
)

var testPlannerConfig = config.PlannerConfig{
	DefaultStartTime:     "08:00",
	DefaultEndTime:       "22:00",
	DefaultBufferMinutes: 30,
	HorizonCapDays:       365,
}

func TestPreferenceServiceDefaults(t *testing.T) {
	svc := NewPreferenceService(&preferenceRepoStub{}, testPlannerConfig, nil, nil)

	pref, err := svc.Get(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, "08:00", pref.StartTime)
	assert.Equal(t, "22:00", pref.EndTime)
	require.NotNil(t, pref.BufferMinutes)
	assert.Equal(t, 30, *pref.BufferMinutes)
	assert.NotNil(t, pref.Breaks)
}

func TestPreferenceServiceUpdate(t *testing.T) {
	repo := &preferenceRepoStub{}
	svc := NewPreferenceService(repo, testPlannerConfig, nil, nil)
	zero := 0

	pref, err := svc.Update(context.Background(), "student-1", dto.UpdatePreferencesRequest{
		StartTime:     "09:00",
		EndTime:       "18:00",
		BufferMinutes: &zero,
		Breaks:        []dto.BreakRequest{{Name: " Lunch ", StartTime: "12:00", EndTime: "13:00"}},
	})
	require.NoError(t, err)
	assert.Same(t, pref, repo.pref)
	assert.Equal(t, "Lunch", pref.Breaks[0].Name)
	assert.Equal(t, 0, *pref.BufferMinutes)

	stored, err := svc.Get(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, "09:00", stored.StartTime)
}

func TestPreferenceServiceRejectsInvertedRanges(t *testing.T) {
	svc := NewPreferenceService(&preferenceRepoStub{}, testPlannerConfig, nil, nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, "student-1", dto.UpdatePreferencesRequest{StartTime: "18:00", EndTime: "09:00"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInterval))

	_, err = svc.Update(ctx, "student-1", dto.UpdatePreferencesRequest{
		StartTime: "08:00",
		EndTime:   "22:00",
		Breaks:    []dto.BreakRequest{{Name: "Lunch", StartTime: "13:00", EndTime: "12:00"}},
	})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInterval))

	negative := -5
	_, err = svc.Update(ctx, "student-1", dto.UpdatePreferencesRequest{StartTime: "08:00", EndTime: "22:00", BufferMinutes: &negative})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestPlannerOptionsValidatesDefaults(t *testing.T) {
	opts, err := PlannerOptions(testPlannerConfig)
	require.NoError(t, err)
	assert.Len(t, opts, 2)

	_, err = PlannerOptions(config.PlannerConfig{DefaultStartTime: "22:00", DefaultEndTime: "08:00"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInterval))

	_, err = PlannerOptions(config.PlannerConfig{DefaultStartTime: "8", DefaultEndTime: "22:00"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
