package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studysync-api/internal/models"
)

// PreferenceRepository persists per-student working-window preferences.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs the repository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetByStudent returns stored preferences; sql.ErrNoRows when none exist.
func (r *PreferenceRepository) GetByStudent(ctx context.Context, studentID string) (*models.Preferences, error) {
	const query = `SELECT student_id, start_time, end_time, buffer_minutes, breaks, updated_at FROM preferences WHERE student_id = $1`
	var pref models.Preferences
	if err := r.db.GetContext(ctx, &pref, query, studentID); err != nil {
		return nil, err
	}
	return &pref, nil
}

// Upsert creates or replaces a student's preferences.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *models.Preferences) error {
	pref.UpdatedAt = time.Now().UTC()
	if pref.Breaks == nil {
		pref.Breaks = models.BreakList{}
	}
	const query = `INSERT INTO preferences (student_id, start_time, end_time, buffer_minutes, breaks, updated_at)
		VALUES (:student_id, :start_time, :end_time, :buffer_minutes, :breaks, :updated_at)
		ON CONFLICT (student_id) DO UPDATE
		SET start_time = EXCLUDED.start_time,
		    end_time = EXCLUDED.end_time,
		    buffer_minutes = EXCLUDED.buffer_minutes,
		    breaks = EXCLUDED.breaks,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, pref); err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}
