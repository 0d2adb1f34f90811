package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studysync-api/internal/models"
	"github.com/noah-isme/studysync-api/pkg/database"
)

// ScheduleRepository persists the latest generated schedule per student.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ReplaceForStudent discards the student's previous run and entries and stores the new ones.
func (r *ScheduleRepository) ReplaceForStudent(ctx context.Context, run *models.ScheduleRun, entries []models.ScheduleEntry) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.GeneratedAt.IsZero() {
		run.GeneratedAt = time.Now().UTC()
	}
	run.EntryCount = len(entries)
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		entries[i].RunID = run.ID
		entries[i].StudentID = run.StudentID
	}

	const insertRun = `INSERT INTO schedule_runs (id, student_id, today, warnings, outcomes, entry_count, generated_at)
		VALUES (:id, :student_id, :today, :warnings, :outcomes, :entry_count, :generated_at)`
	const insertEntries = `INSERT INTO schedule_entries (id, run_id, student_id, homework_id, homework, day, start_time, duration, date)
		VALUES (:id, :run_id, :student_id, :homework_id, :homework, :day, :start_time, :duration, :date)`

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM schedule_entries WHERE student_id = $1", run.StudentID); err != nil {
			return fmt.Errorf("clear schedule entries: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM schedule_runs WHERE student_id = $1", run.StudentID); err != nil {
			return fmt.Errorf("clear schedule runs: %w", err)
		}
		if _, err := tx.NamedExecContext(ctx, insertRun, run); err != nil {
			return fmt.Errorf("insert schedule run: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
		if _, err := tx.NamedExecContext(ctx, insertEntries, entries); err != nil {
			return fmt.Errorf("insert schedule entries: %w", err)
		}
		return nil
	})
}

// LatestRun returns the student's current run header; sql.ErrNoRows when none exists.
func (r *ScheduleRepository) LatestRun(ctx context.Context, studentID string) (*models.ScheduleRun, error) {
	const query = `SELECT id, student_id, today, warnings, outcomes, entry_count, generated_at
		FROM schedule_runs WHERE student_id = $1 ORDER BY generated_at DESC LIMIT 1`
	var run models.ScheduleRun
	if err := r.db.GetContext(ctx, &run, query, studentID); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListEntries returns the student's scheduled blocks in emission order.
func (r *ScheduleRepository) ListEntries(ctx context.Context, studentID string) ([]models.ScheduleEntry, error) {
	const query = `SELECT id, run_id, student_id, homework_id, homework, day, start_time, duration, date
		FROM schedule_entries WHERE student_id = $1 ORDER BY date ASC, start_time ASC`
	entries := make([]models.ScheduleEntry, 0)
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("list schedule entries: %w", err)
	}
	return entries, nil
}

// DeleteByHomework drops the blocks of a removed homework item.
func (r *ScheduleRepository) DeleteByHomework(ctx context.Context, studentID, homeworkID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM schedule_entries WHERE student_id = $1 AND homework_id = $2", studentID, homeworkID); err != nil {
		return fmt.Errorf("delete homework schedule entries: %w", err)
	}
	return nil
}

// RenameHomework keeps the denormalised homework name on entries in sync after an edit.
func (r *ScheduleRepository) RenameHomework(ctx context.Context, studentID, homeworkID, name string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE schedule_entries SET homework = $1 WHERE student_id = $2 AND homework_id = $3", name, studentID, homeworkID); err != nil {
		return fmt.Errorf("rename homework schedule entries: %w", err)
	}
	return nil
}
