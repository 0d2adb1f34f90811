package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studysync-api/internal/dto"
	"github.com/noah-isme/studysync-api/internal/models"
	"github.com/noah-isme/studysync-api/internal/repository"
	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
	"github.com/noah-isme/studysync-api/pkg/jobs"
	"github.com/noah-isme/studysync-api/pkg/storage"
)

// ExportJobType tags export jobs on the shared queue.
const ExportJobType = "schedule_export"

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type downloadSigner interface {
	Sign(exportID, relPath string) (string, time.Time, error)
	Verify(token string) (storage.DownloadClaims, error)
	TTL() time.Duration
}

type exportRenderer interface {
	Render(ctx context.Context, studentID string, params models.ExportJobParams) (*RenderedExport, error)
	MarkDelivered(ctx context.Context, studentID string, rendered *RenderedExport) error
}

// ExportJobConfig governs download links and cleanup.
type ExportJobConfig struct {
	APIPrefix       string
	CleanupInterval time.Duration
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// ExportJobService manages the lifecycle of asynchronous schedule exports.
type ExportJobService struct {
	repo      exportJobStore
	queue     jobDispatcher
	files     fileStorage
	signer    downloadSigner
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportJobConfig
}

// NewExportJobService constructs the service.
func NewExportJobService(repo exportJobStore, queue jobDispatcher, files fileStorage, signer downloadSigner, validate *validator.Validate, logger *zap.Logger, cfg ExportJobConfig) *ExportJobService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportJobService{repo: repo, queue: queue, files: files, signer: signer, validator: validate, logger: logger, cfg: cfg}
}

// Submit persists a job and hands it to the worker queue.
func (s *ExportJobService) Submit(ctx context.Context, studentID string, req dto.CreateExportRequest) (*dto.ExportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}
	job := &models.ExportJob{
		StudentID: studentID,
		Params:    models.ExportJobParams{Format: req.Format, IncludeCommitments: req.IncludeCommitments, OnlyNew: req.OnlyNew},
		Status:    models.ExportStatusQueued,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: ExportJobType}); err != nil {
		status := models.ExportStatusFailed
		msg := "failed to enqueue job"
		now := time.Now().UTC()
		_ = s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
			Status:       &status,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	return jobResponse(job), nil
}

// Get returns job status to its owner.
func (s *ExportJobService) Get(ctx context.Context, studentID, id string) (*dto.ExportJobResponse, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if job.StudentID != studentID {
		return nil, appErrors.ErrForbidden
	}
	return jobResponse(job), nil
}

// ResolveDownload validates a token and opens the stored export file.
func (s *ExportJobService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.repo.GetByID(ctx, claims.ExportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	file, err := s.files.Open(claims.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ExportDownload{
		File:        file,
		Filename:    filepath.Base(claims.Path),
		ContentType: contentTypeFor(job.Params.Format),
		ExpiresAt:   claims.ExpiresAt,
	}, nil
}

// RecoverPendingJobs replays queued jobs after a restart.
func (s *ExportJobService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Sugar().Warnw("failed to recover queued export jobs", "error", err)
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: ExportJobType}); err != nil {
			s.logger.Sugar().Warnw("failed to requeue pending export", "job_id", job.ID, "error", err)
		}
	}
}

// StartCleanup boots a goroutine that purges expired export files periodically.
func (s *ExportJobService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ExportJobService) cleanupExpired(ctx context.Context) {
	ttl := s.signer.TTL()
	finished, err := s.repo.ListFinishedBefore(ctx, time.Now().Add(-ttl), 100)
	if err != nil {
		s.logger.Sugar().Warnw("export cleanup list failed", "error", err)
		return
	}
	for _, job := range finished {
		if job.ResultURL == nil {
			continue
		}
		claims, err := s.signer.Verify(extractToken(*job.ResultURL))
		if err != nil && !errors.Is(err, storage.ErrTokenExpired) {
			continue
		}
		if err := s.files.Delete(claims.Path); err != nil {
			s.logger.Sugar().Warnw("export cleanup delete failed", "job_id", job.ID, "error", err)
		}
	}
	if _, err := s.files.CleanupOlderThan(ttl); err != nil {
		s.logger.Sugar().Warnw("export filesystem cleanup failed", "error", err)
	}
}

func jobResponse(job *models.ExportJob) *dto.ExportJobResponse {
	resp := &dto.ExportJobResponse{
		ID:         job.ID,
		Status:     job.Status,
		Format:     job.Params.Format,
		EventCount: job.EventCount,
		CreatedAt:  job.CreatedAt,
		FinishedAt: job.FinishedAt,
	}
	if job.Status == models.ExportStatusFinished && job.ResultURL != nil {
		resp.DownloadURL = job.ResultURL
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp
}

func contentTypeFor(format models.ExportFormat) string {
	switch format {
	case models.ExportFormatICS:
		return "text/calendar; charset=utf-8"
	case models.ExportFormatCSV:
		return "text/csv"
	case models.ExportFormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

func extractToken(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

// ExportWorker bridges queue jobs to the calendar renderer.
type ExportWorker struct {
	repo     exportJobStore
	renderer exportRenderer
	files    fileStorage
	signer   downloadSigner
	prefix   string
	logger   *zap.Logger
}

// NewExportWorker constructs a worker. Download links are built as <apiPrefix>/export/<token>.
func NewExportWorker(repo exportJobStore, renderer exportRenderer, files fileStorage, signer downloadSigner, apiPrefix string, logger *zap.Logger) *ExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportWorker{
		repo:     repo,
		renderer: renderer,
		files:    files,
		signer:   signer,
		prefix:   strings.TrimRight(apiPrefix, "/"),
		logger:   logger,
	}
}

// Handle processes a queue job. Returned errors are retried by the queue.
func (w *ExportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	processing := models.ExportStatusProcessing
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &processing}); err != nil {
		return err
	}

	rendered, err := w.renderer.Render(ctx, record.StudentID, record.Params)
	if err == nil {
		err = w.store(ctx, record, rendered)
	}
	if err != nil {
		queued := models.ExportStatusQueued
		msg := err.Error()
		if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &queued, ErrorMessage: &msg}); updateErr != nil {
			w.logger.Sugar().Warnw("failed to mark export queued", "job_id", job.ID, "error", updateErr)
		}
		return err
	}
	return nil
}

func (w *ExportWorker) store(ctx context.Context, record *models.ExportJob, rendered *RenderedExport) error {
	name := fmt.Sprintf("%s/%s.%s", record.StudentID, record.ID, rendered.Format)
	relPath, err := w.files.Save(name, rendered.Data)
	if err != nil {
		return fmt.Errorf("save export: %w", err)
	}
	token, _, err := w.signer.Sign(record.ID, relPath)
	if err != nil {
		return fmt.Errorf("sign export: %w", err)
	}
	if err := w.renderer.MarkDelivered(ctx, record.StudentID, rendered); err != nil {
		return err
	}

	finished := models.ExportStatusFinished
	url := fmt.Sprintf("%s/export/%s", w.prefix, token)
	count := rendered.EventCount
	now := time.Now().UTC()
	noError := ""
	if err := w.repo.Update(ctx, record.ID, repository.UpdateExportJobParams{
		Status:       &finished,
		EventCount:   &count,
		ResultURL:    &url,
		ErrorMessage: &noError,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark export finished", "job_id", record.ID, "error", err)
		return err
	}
	return nil
}

// MarkFailed records a job the queue gave up on.
func (w *ExportWorker) MarkFailed(ctx context.Context, job jobs.Job, cause error) {
	failed := models.ExportStatusFailed
	msg := cause.Error()
	now := time.Now().UTC()
	if err := w.repo.Update(context.WithoutCancel(ctx), job.ID, repository.UpdateExportJobParams{
		Status:       &failed,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark export failed", "job_id", job.ID, "error", err)
	}
}
