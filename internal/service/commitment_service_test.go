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

func TestCommitmentServiceCreatesOnePerDay(t *testing.T) {
	repo := &commitmentRepoStub{}
	svc := NewCommitmentService(repo, nil, nil)
	endDate := "2024-06-30"

	items, err := svc.Create(context.Background(), "student-1", dto.CreateCommitmentRequest{
		Days:        []string{"mon", "Wednesday", "MON"},
		StartTime:   "09:00",
		EndTime:     "12:30",
		Description: " Lectures ",
		EndDate:     &endDate,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.Monday, items[0].Day)
	assert.Equal(t, models.Wednesday, items[1].Day)
	assert.Equal(t, "Lectures", items[0].Description)
	require.NotNil(t, items[0].EndDate)
	assert.Equal(t, 2024, items[0].EndDate.Year())
	assert.Len(t, repo.items, 2)
}

func TestCommitmentServiceRejectsBadInput(t *testing.T) {
	svc := NewCommitmentService(&commitmentRepoStub{}, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "student-1", dto.CreateCommitmentRequest{Days: []string{"Funday"}, StartTime: "09:00", EndTime: "10:00"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidWeekday))

	_, err = svc.Create(ctx, "student-1", dto.CreateCommitmentRequest{Days: []string{"Monday"}, StartTime: "10:00", EndTime: "09:00"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidInterval))

	_, err = svc.Create(ctx, "student-1", dto.CreateCommitmentRequest{Days: []string{"Monday"}, StartTime: "9am", EndTime: "10:00"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(ctx, "student-1", dto.CreateCommitmentRequest{StartTime: "09:00", EndTime: "10:00"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestCommitmentServiceDelete(t *testing.T) {
	repo := &commitmentRepoStub{items: []models.Commitment{{ID: "c-1", StudentID: "student-1"}}}
	svc := NewCommitmentService(repo, nil, nil)

	err := svc.Delete(context.Background(), "student-2", "c-1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	require.NoError(t, svc.Delete(context.Background(), "student-1", "c-1"))
	assert.Empty(t, repo.items)
}
