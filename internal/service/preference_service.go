package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studysync-api/internal/dto"
	"github.com/noah-isme/studysync-api/internal/models"
	"github.com/noah-isme/studysync-api/internal/planner"
	"github.com/noah-isme/studysync-api/pkg/config"
	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
)

type preferenceStore interface {
	GetByStudent(ctx context.Context, studentID string) (*models.Preferences, error)
	Upsert(ctx context.Context, pref *models.Preferences) error
}

// PreferenceService manages the working window, buffer and breaks of a student.
type PreferenceService struct {
	repo      preferenceStore
	defaults  config.PlannerConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPreferenceService constructs the service. Defaults fill in for students without stored preferences.
func NewPreferenceService(repo preferenceStore, defaults config.PlannerConfig, validate *validator.Validate, logger *zap.Logger) *PreferenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceService{repo: repo, defaults: defaults, validator: validate, logger: logger}
}

// Get returns stored preferences or the configured defaults.
func (s *PreferenceService) Get(ctx context.Context, studentID string) (*models.Preferences, error) {
	pref, err := s.repo.GetByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			buffer := s.defaults.DefaultBufferMinutes
			return &models.Preferences{
				StudentID:     studentID,
				StartTime:     s.defaults.DefaultStartTime,
				EndTime:       s.defaults.DefaultEndTime,
				BufferMinutes: &buffer,
				Breaks:        models.BreakList{},
			}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
	}
	return pref, nil
}

// Update validates and stores preferences.
func (s *PreferenceService) Update(ctx context.Context, studentID string, req dto.UpdatePreferencesRequest) (*models.Preferences, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preferences payload")
	}
	pref, err := PreferencesFromRequest(studentID, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, pref); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save preferences")
	}
	return pref, nil
}

// PreferencesFromRequest converts and validates a preferences payload.
func PreferencesFromRequest(studentID string, req dto.UpdatePreferencesRequest) (*models.Preferences, error) {
	if err := validateClockRange(req.StartTime, req.EndTime, "working window"); err != nil {
		return nil, err
	}
	if req.BufferMinutes != nil && *req.BufferMinutes < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "buffer minutes cannot be negative")
	}
	breaks := make(models.BreakList, 0, len(req.Breaks))
	for _, b := range req.Breaks {
		name := strings.TrimSpace(b.Name)
		if err := validateClockRange(b.StartTime, b.EndTime, fmt.Sprintf("break %q", name)); err != nil {
			return nil, err
		}
		breaks = append(breaks, models.Break{Name: name, StartTime: strings.TrimSpace(b.StartTime), EndTime: strings.TrimSpace(b.EndTime)})
	}
	return &models.Preferences{
		StudentID:     studentID,
		StartTime:     strings.TrimSpace(req.StartTime),
		EndTime:       strings.TrimSpace(req.EndTime),
		BufferMinutes: req.BufferMinutes,
		Breaks:        breaks,
	}, nil
}

// PlannerOptions turns configured defaults into planner options.
func PlannerOptions(cfg config.PlannerConfig) ([]planner.Option, error) {
	opts := []planner.Option{planner.WithHorizonCap(cfg.HorizonCapDays)}
	window := planner.DefaultWindow
	if cfg.DefaultStartTime != "" || cfg.DefaultEndTime != "" {
		start, err := planner.ParseClock(cfg.DefaultStartTime)
		if err != nil {
			return nil, err
		}
		end, err := planner.ParseClock(cfg.DefaultEndTime)
		if err != nil {
			return nil, err
		}
		if end <= start {
			return nil, appErrors.Clone(appErrors.ErrInvalidInterval, "default working window ends before it starts")
		}
		window = planner.Window{Start: start, End: end}
	}
	return append(opts, planner.WithDefaults(window, cfg.DefaultBufferMinutes)), nil
}
