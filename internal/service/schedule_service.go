package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studysync-api/internal/dto"
	"github.com/noah-isme/studysync-api/internal/models"
	"github.com/noah-isme/studysync-api/internal/planner"
	"github.com/noah-isme/studysync-api/pkg/cache"
	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
)

const (
	modePersisted = "persisted"
	modePreview   = "preview"
)

type homeworkLister interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Homework, error)
}

type commitmentLister interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Commitment, error)
}

type preferenceReader interface {
	GetByStudent(ctx context.Context, studentID string) (*models.Preferences, error)
}

type scheduleStore interface {
	ReplaceForStudent(ctx context.Context, run *models.ScheduleRun, entries []models.ScheduleEntry) error
	LatestRun(ctx context.Context, studentID string) (*models.ScheduleRun, error)
	ListEntries(ctx context.Context, studentID string) ([]models.ScheduleEntry, error)
}

// ScheduleService runs the planner over a student's stored records and keeps the latest result.
type ScheduleService struct {
	homework    homeworkLister
	commitments commitmentLister
	prefs       preferenceReader
	store       scheduleStore
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	options     []planner.Option
}

// NewScheduleService constructs the service. Planner options apply to every generation.
func NewScheduleService(
	homework homeworkLister,
	commitments commitmentLister,
	prefs preferenceReader,
	store scheduleStore,
	cacheSvc *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	opts ...planner.Option,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		homework:    homework,
		commitments: commitments,
		prefs:       prefs,
		store:       store,
		cache:       cacheSvc,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		options:     opts,
	}
}

func scheduleCacheKey(studentID string) string {
	return cache.Key("schedule", studentID)
}

func (s *ScheduleService) newPlanner(today *time.Time) *planner.Planner {
	opts := append([]planner.Option(nil), s.options...)
	if today != nil {
		fixed := *today
		opts = append(opts, planner.WithClock(func() time.Time { return fixed }))
	}
	return planner.New(opts...)
}

// Generate plans the student's stored homework and replaces the previous schedule.
func (s *ScheduleService) Generate(ctx context.Context, studentID string) (*dto.ScheduleResponse, error) {
	homework, err := s.homework.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load homework")
	}
	commitments, err := s.commitments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load commitments")
	}
	prefs, err := s.prefs.GetByStudent(ctx, studentID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
		}
	}

	start := time.Now()
	result, err := s.newPlanner(nil).Generate(homework, commitments, prefs)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveGeneration(modePersisted, time.Since(start), len(result.Schedule), result.Warnings)

	run := &models.ScheduleRun{
		StudentID: studentID,
		Today:     result.Today,
		Warnings:  models.WarningList(result.Warnings),
		Outcomes:  models.OutcomeList(result.Outcomes),
	}
	entries := result.Schedule
	if err := s.store.ReplaceForStudent(ctx, run, entries); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save schedule")
	}

	resp := newScheduleResponse(result.Today, entries, result.Warnings, result.Outcomes)
	resp.RunID = run.ID
	generatedAt := run.GeneratedAt
	resp.GeneratedAt = &generatedAt
	_ = s.cache.Set(ctx, scheduleCacheKey(studentID), resp, 0)

	s.logger.Info("schedule generated",
		zap.String("student_id", studentID),
		zap.Int("homework", len(homework)),
		zap.Int("entries", len(entries)),
		zap.Int("warnings", len(result.Warnings)),
	)
	return resp, nil
}

// Current returns the last generated schedule, from cache when possible.
func (s *ScheduleService) Current(ctx context.Context, studentID string) (*dto.ScheduleResponse, error) {
	var cached dto.ScheduleResponse
	if hit, _ := s.cache.Get(ctx, scheduleCacheKey(studentID), &cached); hit {
		cached.Cached = true
		return &cached, nil
	}

	run, err := s.store.LatestRun(ctx, studentID)
	if err != nil {
		return nil, mapNotFound(err, "no schedule generated yet", "failed to load schedule")
	}
	entries, err := s.store.ListEntries(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entries")
	}

	resp := newScheduleResponse(run.Today, entries, run.Warnings, run.Outcomes)
	resp.RunID = run.ID
	generatedAt := run.GeneratedAt
	resp.GeneratedAt = &generatedAt
	_ = s.cache.Set(ctx, scheduleCacheKey(studentID), resp, 0)
	return resp, nil
}

// Preview plans the supplied records without reading or writing stored data.
func (s *ScheduleService) Preview(ctx context.Context, req dto.PreviewScheduleRequest) (*dto.ScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preview payload")
	}
	inputs, err := PreviewInputs(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.newPlanner(inputs.Today).Generate(inputs.Homework, inputs.Commitments, inputs.Preferences)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveGeneration(modePreview, time.Since(start), len(result.Schedule), result.Warnings)
	return newScheduleResponse(result.Today, result.Schedule, result.Warnings, result.Outcomes), nil
}

// PlanInputs are planner inputs decoded from an inline document.
type PlanInputs struct {
	Today       *time.Time
	Homework    []models.Homework
	Commitments []models.Commitment
	Preferences *models.Preferences
}

// PreviewInputs converts an inline planning document into planner inputs. Items without ids are
// numbered in document order.
func PreviewInputs(req dto.PreviewScheduleRequest) (*PlanInputs, error) {
	today, err := parseOptionalDate(req.Today, "today")
	if err != nil {
		return nil, err
	}
	inputs := &PlanInputs{
		Today:       today,
		Homework:    make([]models.Homework, 0, len(req.Homework)),
		Commitments: make([]models.Commitment, 0, len(req.Commitments)),
	}

	for i, item := range req.Homework {
		deadline, err := parseDate(item.Deadline, fmt.Sprintf("homework[%d].deadline", i))
		if err != nil {
			return nil, err
		}
		id := strings.TrimSpace(item.ID)
		if id == "" {
			id = fmt.Sprintf("homework-%d", i+1)
		}
		inputs.Homework = append(inputs.Homework, models.Homework{
			ID:        id,
			Name:      strings.TrimSpace(item.Name),
			Hours:     item.Hours,
			Deadline:  deadline,
			BlockSize: item.BlockSize,
		})
	}

	for i, item := range req.Commitments {
		day, ok := models.ParseWeekday(item.Day)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrInvalidWeekday, fmt.Sprintf("commitments[%d] has unknown day %q", i, item.Day))
		}
		endDate, err := parseOptionalDate(item.EndDate, fmt.Sprintf("commitments[%d].end_date", i))
		if err != nil {
			return nil, err
		}
		id := strings.TrimSpace(item.ID)
		if id == "" {
			id = fmt.Sprintf("commitment-%d", i+1)
		}
		inputs.Commitments = append(inputs.Commitments, models.Commitment{
			ID:          id,
			Day:         day,
			StartTime:   item.StartTime,
			EndTime:     item.EndTime,
			Description: item.Description,
			EndDate:     endDate,
		})
	}

	if req.Preferences != nil {
		prefs, err := PreferencesFromRequest("", *req.Preferences)
		if err != nil {
			return nil, err
		}
		inputs.Preferences = prefs
	}
	return inputs, nil
}

func newScheduleResponse(today time.Time, entries []models.ScheduleEntry, warnings []models.ScheduleWarning, outcomes []models.ItemOutcome) *dto.ScheduleResponse {
	if warnings == nil {
		warnings = []models.ScheduleWarning{}
	}
	return &dto.ScheduleResponse{
		Today:    today.Format(dateLayout),
		Schedule: EntryViews(entries),
		Warnings: warnings,
		Outcomes: outcomes,
	}
}

// EntryViews decorates entries with display clocks.
func EntryViews(entries []models.ScheduleEntry) []dto.ScheduleEntryView {
	views := make([]dto.ScheduleEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, dto.ScheduleEntryView{
			HomeworkID: e.HomeworkID,
			Homework:   e.Homework,
			Day:        e.Day,
			Date:       e.Date.Format(dateLayout),
			StartTime:  e.StartTime,
			Duration:   e.Duration,
			Start:      planner.FormatClock(e.StartTime),
			End:        planner.FormatClock(e.StartTime + e.Duration),
		})
	}
	return views
}

// entryBounds converts an entry into wall-clock instants on its date, to the second.
func entryBounds(e models.ScheduleEntry) (time.Time, time.Time) {
	date := planner.CivilDate(e.Date)
	start := date.Add(hoursToDuration(e.StartTime))
	end := date.Add(hoursToDuration(e.StartTime + e.Duration))
	return start, end
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(math.Round(h*3600)) * time.Second
}
