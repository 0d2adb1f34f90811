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

const commitmentColumns = "id, student_id, day, start_time, end_time, description, end_date, created_at"

// CommitmentRepository persists weekly commitments.
type CommitmentRepository struct {
	db *sqlx.DB
}

// NewCommitmentRepository constructs a CommitmentRepository.
func NewCommitmentRepository(db *sqlx.DB) *CommitmentRepository {
	return &CommitmentRepository{db: db}
}

// ListByStudent returns a student's commitments in creation order.
func (r *CommitmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Commitment, error) {
	query := fmt.Sprintf("SELECT %s FROM commitments WHERE student_id = $1 ORDER BY created_at ASC, id ASC", commitmentColumns)
	items := make([]models.Commitment, 0)
	if err := r.db.SelectContext(ctx, &items, query, studentID); err != nil {
		return nil, fmt.Errorf("list commitments: %w", err)
	}
	return items, nil
}

// CreateBatch inserts several commitments atomically, e.g. one per selected weekday.
func (r *CommitmentRepository) CreateBatch(ctx context.Context, items []models.Commitment) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = now
		}
	}
	const query = `INSERT INTO commitments (id, student_id, day, start_time, end_time, description, end_date, created_at)
		VALUES (:id, :student_id, :day, :start_time, :end_time, :description, :end_date, :created_at)`
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for i := range items {
			if _, err := tx.NamedExecContext(ctx, query, &items[i]); err != nil {
				return fmt.Errorf("create commitment: %w", err)
			}
		}
		return nil
	})
}

// Delete removes a commitment owned by the student.
func (r *CommitmentRepository) Delete(ctx context.Context, studentID, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM commitments WHERE id = $1 AND student_id = $2", id, studentID)
	if err != nil {
		return fmt.Errorf("delete commitment: %w", err)
	}
	return requireAffected(res)
}
