package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studysync-api/internal/dto"
	"github.com/noah-isme/studysync-api/internal/models"
	"github.com/noah-isme/studysync-api/internal/planner"
	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
)

type scheduleFixture struct {
	svc         *ScheduleService
	homework    *homeworkRepoStub
	commitments *commitmentRepoStub
	prefs       *preferenceRepoStub
	store       *scheduleRepoStub
	cache       *cacheRepoStub
	metrics     *MetricsService
}

func newScheduleFixture(cacheEnabled bool) *scheduleFixture {
	f := &scheduleFixture{
		homework:    &homeworkRepoStub{},
		commitments: &commitmentRepoStub{},
		prefs:       &preferenceRepoStub{},
		store:       &scheduleRepoStub{},
		cache:       newCacheRepoStub(),
		metrics:     NewMetricsService(),
	}
	cacheSvc := NewCacheService(f.cache, f.metrics, time.Minute, nil, cacheEnabled)
	f.svc = NewScheduleService(f.homework, f.commitments, f.prefs, f.store, cacheSvc, f.metrics, nil, nil,
		planner.WithClock(func() time.Time { return testMonday.Add(7 * time.Hour) }))
	return f
}

func TestScheduleServiceGeneratePersistsRun(t *testing.T) {
	f := newScheduleFixture(true)
	f.homework.items = []models.Homework{{ID: "hw-1", StudentID: "student-1", Name: "Essay", Hours: 4, BlockSize: 2, Deadline: testMonday.AddDate(0, 0, 2)}}

	resp, err := f.svc.Generate(context.Background(), "student-1")
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", resp.Today)
	assert.Equal(t, "run-1", resp.RunID)
	require.NotNil(t, resp.GeneratedAt)
	require.Len(t, resp.Schedule, 2)
	assert.Equal(t, "08:00", resp.Schedule[0].Start)
	assert.Equal(t, "10:00", resp.Schedule[0].End)
	assert.Equal(t, "2024-01-02", resp.Schedule[1].Date)
	assert.Empty(t, resp.Warnings)
	assert.NotNil(t, resp.Warnings)

	require.NotNil(t, f.store.run)
	assert.Equal(t, "student-1", f.store.run.StudentID)
	assert.Len(t, f.store.entries, 2)
	assert.Equal(t, "student-1", f.store.entries[0].StudentID)
	assert.Contains(t, f.cache.values, scheduleCacheKey("student-1"))
	assert.Equal(t, 1, testutil.CollectAndCount(f.metrics.generationDuration))
}

func TestScheduleServiceGenerateUsesStoredPreferences(t *testing.T) {
	f := newScheduleFixture(false)
	f.homework.items = []models.Homework{{ID: "hw-1", StudentID: "student-1", Name: "Essay", Hours: 1, BlockSize: 1, Deadline: testMonday}}
	f.prefs.pref = &models.Preferences{StudentID: "student-1", StartTime: "09:30", EndTime: "17:00"}

	resp, err := f.svc.Generate(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, resp.Schedule, 1)
	assert.Equal(t, 9.5, resp.Schedule[0].StartTime)
}

func TestScheduleServiceGenerateFailsOnInvalidCommitment(t *testing.T) {
	f := newScheduleFixture(true)
	f.commitments.items = []models.Commitment{{ID: "c-1", StudentID: "student-1", Day: models.Monday, StartTime: "12:00", EndTime: "11:00"}}

	_, err := f.svc.Generate(context.Background(), "student-1")
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInterval))
	assert.Nil(t, f.store.run)
}

func TestScheduleServiceGenerateStoreFailure(t *testing.T) {
	f := newScheduleFixture(true)
	f.store.replaceErr = errors.New("db down")

	_, err := f.svc.Generate(context.Background(), "student-1")
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	assert.Empty(t, f.cache.values)
}

func TestScheduleServiceCurrent(t *testing.T) {
	f := newScheduleFixture(true)
	f.homework.items = []models.Homework{{ID: "hw-1", StudentID: "student-1", Name: "Essay", Hours: 2, BlockSize: 2, Deadline: testMonday}}

	_, err := f.svc.Current(context.Background(), "student-1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = f.svc.Generate(context.Background(), "student-1")
	require.NoError(t, err)

	cached, err := f.svc.Current(context.Background(), "student-1")
	require.NoError(t, err)
	assert.True(t, cached.Cached)
	assert.Len(t, cached.Schedule, 1)

	delete(f.cache.values, scheduleCacheKey("student-1"))
	fresh, err := f.svc.Current(context.Background(), "student-1")
	require.NoError(t, err)
	assert.False(t, fresh.Cached)
	assert.Equal(t, "run-1", fresh.RunID)
	assert.Len(t, fresh.Schedule, 1)
	assert.Contains(t, f.cache.values, scheduleCacheKey("student-1"))
}

func TestScheduleServicePreviewPartialShortfall(t *testing.T) {
	f := newScheduleFixture(true)
	today := "2024-01-01"

	resp, err := f.svc.Preview(context.Background(), dto.PreviewScheduleRequest{
		Today:    &today,
		Homework: []dto.PreviewHomework{{Name: "Project", Hours: 10, BlockSize: 5, Deadline: "2024-01-01"}},
	})
	require.NoError(t, err)

	require.Len(t, resp.Schedule, 1)
	assert.Equal(t, "homework-1", resp.Schedule[0].HomeworkID)
	assert.Equal(t, 5.0, resp.Schedule[0].Duration)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, models.WarningPartial, resp.Warnings[0].Kind)
	assert.Equal(t, 5.0, *resp.Warnings[0].Scheduled)
	assert.Equal(t, 5.0, *resp.Warnings[0].Remaining)
	assert.Nil(t, f.store.run)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.scheduleWarnings.WithLabelValues("partial")))
}

func TestScheduleServicePreviewInfeasible(t *testing.T) {
	f := newScheduleFixture(true)
	today := "2024-01-01"
	commitments := make([]dto.PreviewCommitment, 0, len(models.Weekdays))
	for _, day := range models.Weekdays {
		commitments = append(commitments, dto.PreviewCommitment{Day: string(day), StartTime: "08:00", EndTime: "22:00", Description: "Shift"})
	}

	resp, err := f.svc.Preview(context.Background(), dto.PreviewScheduleRequest{
		Today:       &today,
		Homework:    []dto.PreviewHomework{{ID: "hw-9", Name: "Lab", Hours: 3, BlockSize: 1, Deadline: "2024-01-04"}},
		Commitments: commitments,
	})
	require.NoError(t, err)

	assert.Empty(t, resp.Schedule)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, models.WarningInfeasible, resp.Warnings[0].Kind)
	require.NotNil(t, resp.Warnings[0].Available)
	assert.Equal(t, 0.0, *resp.Warnings[0].Available)
	require.Len(t, resp.Outcomes, 1)
	assert.Equal(t, models.ItemUnsatisfied, resp.Outcomes[0].State)
}

func TestScheduleServicePreviewRejectsBadInput(t *testing.T) {
	f := newScheduleFixture(true)
	ctx := context.Background()

	_, err := f.svc.Preview(ctx, dto.PreviewScheduleRequest{
		Commitments: []dto.PreviewCommitment{{Day: "Someday", StartTime: "08:00", EndTime: "09:00"}},
	})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidWeekday))

	_, err = f.svc.Preview(ctx, dto.PreviewScheduleRequest{
		Homework: []dto.PreviewHomework{{Name: "Essay", Hours: 0, BlockSize: 1, Deadline: "2024-01-01"}},
	})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = f.svc.Preview(ctx, dto.PreviewScheduleRequest{
		Preferences: &dto.UpdatePreferencesRequest{StartTime: "20:00", EndTime: "08:00"},
	})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInterval))
}
