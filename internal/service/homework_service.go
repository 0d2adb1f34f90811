package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studysync-api/internal/dto"
	"github.com/noah-isme/studysync-api/internal/models"
	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
)

type homeworkStore interface {
	List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, int, error)
	FindByID(ctx context.Context, studentID, id string) (*models.Homework, error)
	Create(ctx context.Context, hw *models.Homework) error
	Update(ctx context.Context, hw *models.Homework) error
	Delete(ctx context.Context, studentID, id string) error
}

// scheduleEntryWriter keeps stored schedule entries in step with homework edits.
type scheduleEntryWriter interface {
	DeleteByHomework(ctx context.Context, studentID, homeworkID string) error
	RenameHomework(ctx context.Context, studentID, homeworkID, name string) error
}

// HomeworkService manages a student's homework list.
type HomeworkService struct {
	repo      homeworkStore
	schedules scheduleEntryWriter
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHomeworkService constructs the service.
func NewHomeworkService(repo homeworkStore, schedules scheduleEntryWriter, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *HomeworkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HomeworkService{repo: repo, schedules: schedules, cache: cache, validator: validate, logger: logger}
}

// List returns a filtered page of homework.
func (s *HomeworkService) List(ctx context.Context, studentID string, query dto.HomeworkListQuery) ([]models.Homework, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid homework query")
	}
	filter := models.HomeworkFilter{
		StudentID: studentID,
		Search:    strings.TrimSpace(query.Search),
		Page:      query.Page,
		PageSize:  query.PageSize,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	var err error
	if query.DueFrom != "" {
		if filter.DueFrom, err = parseOptionalDate(&query.DueFrom, "due_from"); err != nil {
			return nil, nil, err
		}
	}
	if query.DueTo != "" {
		if filter.DueTo, err = parseOptionalDate(&query.DueTo, "due_to"); err != nil {
			return nil, nil, err
		}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list homework")
	}
	if items == nil {
		items = []models.Homework{}
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Create stores a new homework item.
func (s *HomeworkService) Create(ctx context.Context, studentID string, req dto.CreateHomeworkRequest) (*models.Homework, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid homework payload")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "homework name is required")
	}
	deadline, err := parseDate(req.Deadline, "deadline")
	if err != nil {
		return nil, err
	}

	hw := &models.Homework{
		StudentID: studentID,
		Name:      name,
		Hours:     req.Hours,
		Deadline:  deadline,
		BlockSize: req.BlockSize,
		Color:     req.Color,
	}
	if err := s.repo.Create(ctx, hw); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create homework")
	}
	s.logger.Debug("homework created", zap.String("student_id", studentID), zap.String("homework_id", hw.ID))
	return hw, nil
}

// Update applies a partial edit. A rename is propagated to the stored schedule.
func (s *HomeworkService) Update(ctx context.Context, studentID, id string, req dto.UpdateHomeworkRequest) (*models.Homework, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid homework payload")
	}
	hw, err := s.repo.FindByID(ctx, studentID, id)
	if err != nil {
		return nil, mapNotFound(err, "homework not found", "failed to load homework")
	}

	renamed := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "homework name is required")
		}
		renamed = name != hw.Name
		hw.Name = name
	}
	if req.Hours != nil {
		hw.Hours = *req.Hours
	}
	if req.BlockSize != nil {
		hw.BlockSize = *req.BlockSize
	}
	if req.Color != nil {
		hw.Color = *req.Color
	}
	if req.Deadline != nil {
		if hw.Deadline, err = parseDate(*req.Deadline, "deadline"); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, hw); err != nil {
		return nil, mapNotFound(err, "homework not found", "failed to update homework")
	}
	if renamed {
		if err := s.schedules.RenameHomework(ctx, studentID, hw.ID, hw.Name); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rename scheduled blocks")
		}
		_ = s.cache.Invalidate(ctx, scheduleCacheKey(studentID))
	}
	return hw, nil
}

// Delete removes a homework item and its scheduled blocks.
func (s *HomeworkService) Delete(ctx context.Context, studentID, id string) error {
	if err := s.repo.Delete(ctx, studentID, id); err != nil {
		return mapNotFound(err, "homework not found", "failed to delete homework")
	}
	if err := s.schedules.DeleteByHomework(ctx, studentID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove scheduled blocks")
	}
	_ = s.cache.Invalidate(ctx, scheduleCacheKey(studentID))
	return nil
}

// mapNotFound translates sql.ErrNoRows into a 404 and everything else into a 500.
func mapNotFound(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internal)
}
