package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studysync-api/internal/dto"
	"github.com/noah-isme/studysync-api/internal/models"
	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
)

func newHomeworkFixture() (*HomeworkService, *homeworkRepoStub, *scheduleRepoStub, *cacheRepoStub) {
	repo := &homeworkRepoStub{}
	schedules := &scheduleRepoStub{}
	cacheRepo := newCacheRepoStub()
	cacheSvc := NewCacheService(cacheRepo, nil, 0, nil, true)
	return NewHomeworkService(repo, schedules, cacheSvc, nil, nil), repo, schedules, cacheRepo
}

func TestHomeworkServiceCreate(t *testing.T) {
	svc, repo, _, _ := newHomeworkFixture()

	hw, err := svc.Create(context.Background(), "student-1", dto.CreateHomeworkRequest{
		Name: "  Essay ", Hours: 4, Deadline: "2024-01-03", BlockSize: 2, Color: "#ff8800",
	})
	require.NoError(t, err)
	assert.Equal(t, "Essay", hw.Name)
	assert.Equal(t, testMonday.AddDate(0, 0, 2), hw.Deadline)
	assert.Equal(t, "student-1", hw.StudentID)
	require.Len(t, repo.items, 1)
}

func TestHomeworkServiceCreateRejectsInvalidPayload(t *testing.T) {
	svc, _, _, _ := newHomeworkFixture()

	cases := []dto.CreateHomeworkRequest{
		{Name: "Essay", Hours: 0, Deadline: "2024-01-03", BlockSize: 2},
		{Name: "Essay", Hours: 2, Deadline: "03/01/2024", BlockSize: 2},
		{Name: "   ", Hours: 2, Deadline: "2024-01-03", BlockSize: 2},
		{Name: "Essay", Hours: 2, Deadline: "2024-01-03", BlockSize: -1},
	}
	for _, req := range cases {
		_, err := svc.Create(context.Background(), "student-1", req)
		assert.True(t, errors.Is(err, appErrors.ErrValidation), "%+v", req)
	}
}

func TestHomeworkServiceRenamePropagatesToSchedule(t *testing.T) {
	svc, repo, schedules, cacheRepo := newHomeworkFixture()
	repo.items = []models.Homework{{ID: "hw-1", StudentID: "student-1", Name: "Essay", Hours: 2, BlockSize: 1, Deadline: testMonday}}
	schedules.entries = []models.ScheduleEntry{{StudentID: "student-1", HomeworkID: "hw-1", Homework: "Essay"}}
	cacheRepo.values[scheduleCacheKey("student-1")] = []byte(`{}`)

	name := "History essay"
	deadline := "2024-01-05"
	hw, err := svc.Update(context.Background(), "student-1", "hw-1", dto.UpdateHomeworkRequest{Name: &name, Deadline: &deadline})
	require.NoError(t, err)

	assert.Equal(t, "History essay", hw.Name)
	assert.Equal(t, testMonday.AddDate(0, 0, 4), hw.Deadline)
	assert.Equal(t, "History essay", schedules.entries[0].Homework)
	assert.Contains(t, cacheRepo.deleted, scheduleCacheKey("student-1"))
}

func TestHomeworkServiceUpdateWithoutRenameLeavesSchedule(t *testing.T) {
	svc, repo, schedules, _ := newHomeworkFixture()
	repo.items = []models.Homework{{ID: "hw-1", StudentID: "student-1", Name: "Essay", Hours: 2, BlockSize: 1, Deadline: testMonday}}

	hours := 6.0
	_, err := svc.Update(context.Background(), "student-1", "hw-1", dto.UpdateHomeworkRequest{Hours: &hours})
	require.NoError(t, err)
	assert.Empty(t, schedules.renamed)
	assert.Equal(t, 6.0, repo.items[0].Hours)
}

func TestHomeworkServiceUpdateMissing(t *testing.T) {
	svc, _, _, _ := newHomeworkFixture()

	_, err := svc.Update(context.Background(), "student-1", "missing", dto.UpdateHomeworkRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestHomeworkServiceDeleteRemovesBlocks(t *testing.T) {
	svc, repo, schedules, _ := newHomeworkFixture()
	repo.items = []models.Homework{{ID: "hw-1", StudentID: "student-1", Name: "Essay"}}
	schedules.entries = []models.ScheduleEntry{
		{StudentID: "student-1", HomeworkID: "hw-1"},
		{StudentID: "student-1", HomeworkID: "hw-2"},
	}

	require.NoError(t, svc.Delete(context.Background(), "student-1", "hw-1"))
	assert.Equal(t, []string{"hw-1"}, schedules.deleted)
	require.Len(t, schedules.entries, 1)
	assert.Equal(t, "hw-2", schedules.entries[0].HomeworkID)

	err := svc.Delete(context.Background(), "student-1", "hw-1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestHomeworkServiceListNormalisesQuery(t *testing.T) {
	svc, repo, _, _ := newHomeworkFixture()

	items, pagination, err := svc.List(context.Background(), "student-1", dto.HomeworkListQuery{DueFrom: "2024-01-01", PageSize: 500})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	require.NotNil(t, repo.lastFilter.DueFrom)
	assert.Equal(t, testMonday, *repo.lastFilter.DueFrom)
	assert.Nil(t, repo.lastFilter.DueTo)

	_, _, err = svc.List(context.Background(), "student-1", dto.HomeworkListQuery{DueTo: "tomorrow"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
