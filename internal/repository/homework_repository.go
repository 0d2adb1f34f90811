package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/studysync-api/internal/models"
)

const homeworkColumns = "id, student_id, name, hours, deadline, block_size, color, created_at, updated_at"

// HomeworkRepository persists homework items per student.
type HomeworkRepository struct {
	db *sqlx.DB
}

// NewHomeworkRepository constructs a HomeworkRepository.
func NewHomeworkRepository(db *sqlx.DB) *HomeworkRepository {
	return &HomeworkRepository{db: db}
}

// List returns a page of a student's homework matching the filter, plus the total count.
func (r *HomeworkRepository) List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, int, error) {
	args := []interface{}{filter.StudentID}
	conditions := []string{"student_id = $1"}

	if filter.DueFrom != nil {
		conditions = append(conditions, fmt.Sprintf("deadline >= $%d", len(args)+1))
		args = append(args, *filter.DueFrom)
	}
	if filter.DueTo != nil {
		conditions = append(conditions, fmt.Sprintf("deadline <= $%d", len(args)+1))
		args = append(args, *filter.DueTo)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"deadline":   "deadline",
		"name":       "name",
		"hours":      "hours",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "deadline"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM homework %s ORDER BY %s %s, created_at ASC LIMIT %d OFFSET %d",
		homeworkColumns, where, column, order, size, offset)
	var items []models.Homework
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list homework: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM homework "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count homework: %w", err)
	}
	return items, total, nil
}

// ListByStudent returns every homework item of a student in creation order, the order the planner
// uses to break deadline ties.
func (r *HomeworkRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Homework, error) {
	query := fmt.Sprintf("SELECT %s FROM homework WHERE student_id = $1 ORDER BY created_at ASC, id ASC", homeworkColumns)
	items := make([]models.Homework, 0)
	if err := r.db.SelectContext(ctx, &items, query, studentID); err != nil {
		return nil, fmt.Errorf("list student homework: %w", err)
	}
	return items, nil
}

// FindByID fetches one homework item owned by the student.
func (r *HomeworkRepository) FindByID(ctx context.Context, studentID, id string) (*models.Homework, error) {
	query := fmt.Sprintf("SELECT %s FROM homework WHERE id = $1 AND student_id = $2", homeworkColumns)
	var hw models.Homework
	if err := r.db.GetContext(ctx, &hw, query, id, studentID); err != nil {
		return nil, err
	}
	return &hw, nil
}

// Create inserts a homework item.
func (r *HomeworkRepository) Create(ctx context.Context, hw *models.Homework) error {
	if hw.ID == "" {
		hw.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if hw.CreatedAt.IsZero() {
		hw.CreatedAt = now
	}
	hw.UpdatedAt = now
	const query = `INSERT INTO homework (id, student_id, name, hours, deadline, block_size, color, created_at, updated_at)
		VALUES (:id, :student_id, :name, :hours, :deadline, :block_size, :color, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, hw); err != nil {
		return fmt.Errorf("create homework: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of a homework item.
func (r *HomeworkRepository) Update(ctx context.Context, hw *models.Homework) error {
	hw.UpdatedAt = time.Now().UTC()
	const query = `UPDATE homework SET name = :name, hours = :hours, deadline = :deadline, block_size = :block_size,
		color = :color, updated_at = :updated_at WHERE id = :id AND student_id = :student_id`
	res, err := r.db.NamedExecContext(ctx, query, hw)
	if err != nil {
		return fmt.Errorf("update homework: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a homework item.
func (r *HomeworkRepository) Delete(ctx context.Context, studentID, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM homework WHERE id = $1 AND student_id = $2", id, studentID)
	if err != nil {
		return fmt.Errorf("delete homework: %w", err)
	}
	return requireAffected(res)
}

// requireAffected maps a zero-row write to sql.ErrNoRows.
func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
