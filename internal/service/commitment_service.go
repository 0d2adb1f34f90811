package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studysync-api/internal/dto"
	"github.com/noah-isme/studysync-api/internal/models"
	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
)

type commitmentStore interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Commitment, error)
	CreateBatch(ctx context.Context, items []models.Commitment) error
	Delete(ctx context.Context, studentID, id string) error
}

// CommitmentService manages weekly recurring commitments.
type CommitmentService struct {
	repo      commitmentStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCommitmentService constructs the service.
func NewCommitmentService(repo commitmentStore, validate *validator.Validate, logger *zap.Logger) *CommitmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommitmentService{repo: repo, validator: validate, logger: logger}
}

// List returns the student's commitments in creation order.
func (s *CommitmentService) List(ctx context.Context, studentID string) ([]models.Commitment, error) {
	items, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list commitments")
	}
	return items, nil
}

// Create stores one commitment per selected weekday. Repeated days collapse into one record.
func (s *CommitmentService) Create(ctx context.Context, studentID string, req dto.CreateCommitmentRequest) ([]models.Commitment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid commitment payload")
	}
	description := strings.TrimSpace(req.Description)
	if err := validateClockRange(req.StartTime, req.EndTime, fmt.Sprintf("commitment %q", description)); err != nil {
		return nil, err
	}
	endDate, err := parseOptionalDate(req.EndDate, "end_date")
	if err != nil {
		return nil, err
	}

	seen := make(map[models.Weekday]struct{}, len(req.Days))
	items := make([]models.Commitment, 0, len(req.Days))
	for _, raw := range req.Days {
		day, ok := models.ParseWeekday(raw)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrInvalidWeekday, fmt.Sprintf("unknown day %q", raw))
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		items = append(items, models.Commitment{
			StudentID:   studentID,
			Day:         day,
			StartTime:   strings.TrimSpace(req.StartTime),
			EndTime:     strings.TrimSpace(req.EndTime),
			Description: description,
			EndDate:     endDate,
		})
	}

	if err := s.repo.CreateBatch(ctx, items); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create commitments")
	}
	s.logger.Debug("commitments created", zap.String("student_id", studentID), zap.Int("count", len(items)))
	return items, nil
}

// Delete removes one commitment.
func (s *CommitmentService) Delete(ctx context.Context, studentID, id string) error {
	if err := s.repo.Delete(ctx, studentID, id); err != nil {
		return mapNotFound(err, "commitment not found", "failed to delete commitment")
	}
	return nil
}
