package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/studysync-api/internal/models"
)

const exportColumns = "id, student_id, params, status, event_count, result_url, created_at, finished_at, error_message"

// ExportRepository persists async export job metadata.
type ExportRepository struct {
	db *sqlx.DB
}

// NewExportRepository constructs the repository.
func NewExportRepository(db *sqlx.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Create inserts a new export job row with generated defaults.
func (r *ExportRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO export_jobs (id, student_id, params, status, event_count, result_url, created_at, finished_at, error_message)
VALUES (:id, :student_id, :params, :status, :event_count, :result_url, :created_at, :finished_at, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

// GetByID returns a job row; sql.ErrNoRows when missing.
func (r *ExportRepository) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	query := fmt.Sprintf("SELECT %s FROM export_jobs WHERE id = $1", exportColumns)
	var job models.ExportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateExportJobParams defines the mutable fields.
type UpdateExportJobParams struct {
	Status       *models.ExportStatus
	EventCount   *int
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Update persists the provided changes for a job row.
func (r *ExportRepository) Update(ctx context.Context, id string, params UpdateExportJobParams) error {
	set := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Status != nil {
		add("status", *params.Status)
	}
	if params.EventCount != nil {
		add("event_count", *params.EventCount)
	}
	if params.ResultURL != nil {
		add("result_url", *params.ResultURL)
	}
	if params.ErrorMessage != nil {
		add("error_message", *params.ErrorMessage)
	}
	if params.FinishedAt != nil {
		add("finished_at", *params.FinishedAt)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE export_jobs SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update export job: %w", err)
	}
	return nil
}

// ListQueued returns jobs still waiting for a worker, oldest first.
func (r *ExportRepository) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf("SELECT %s FROM export_jobs WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT $1", exportColumns)
	var jobs []models.ExportJob
	if err := r.db.SelectContext(ctx, &jobs, query, limit); err != nil {
		return nil, fmt.Errorf("list queued export jobs: %w", err)
	}
	return jobs, nil
}

// ListFinishedBefore retrieves completed jobs finished before cutoff, oldest first.
func (r *ExportRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM export_jobs
WHERE status = 'FINISHED' AND finished_at IS NOT NULL AND finished_at < $1 ORDER BY finished_at ASC LIMIT $2`, exportColumns)
	var jobs []models.ExportJob
	if err := r.db.SelectContext(ctx, &jobs, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list finished export jobs: %w", err)
	}
	return jobs, nil
}

// ExportLedgerRepository records which calendar UIDs were already delivered to a student.
type ExportLedgerRepository struct {
	db *sqlx.DB
}

// NewExportLedgerRepository constructs the ledger repository.
func NewExportLedgerRepository(db *sqlx.DB) *ExportLedgerRepository {
	return &ExportLedgerRepository{db: db}
}

// Exported returns the subset of uids already recorded for the student.
func (r *ExportLedgerRepository) Exported(ctx context.Context, studentID string, uids []string) (map[string]bool, error) {
	seen := make(map[string]bool)
	if len(uids) == 0 {
		return seen, nil
	}
	var rows []string
	const query = `SELECT uid FROM exported_events WHERE student_id = $1 AND uid = ANY($2)`
	if err := r.db.SelectContext(ctx, &rows, query, studentID, pq.Array(uids)); err != nil {
		return nil, fmt.Errorf("load exported events: %w", err)
	}
	for _, uid := range rows {
		seen[uid] = true
	}
	return seen, nil
}

// Record stores uids as exported at the given time, ignoring ones already present.
func (r *ExportLedgerRepository) Record(ctx context.Context, studentID string, uids []string, at time.Time) error {
	if len(uids) == 0 {
		return nil
	}
	const query = `INSERT INTO exported_events (student_id, uid, exported_at)
SELECT $1, u, $3 FROM unnest($2::text[]) AS u
ON CONFLICT (student_id, uid) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, studentID, pq.Array(uids), at); err != nil {
		return fmt.Errorf("record exported events: %w", err)
	}
	return nil
}

// Reset forgets every UID exported to the student so the next onlyNew export sends everything.
func (r *ExportLedgerRepository) Reset(ctx context.Context, studentID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM exported_events WHERE student_id = $1", studentID); err != nil {
		return fmt.Errorf("reset exported events: %w", err)
	}
	return nil
}
