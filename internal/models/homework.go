package models

import "time"

// Homework is a piece of work that needs Hours of study before its Deadline (inclusive, day granularity).
type Homework struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Name      string    `db:"name" json:"name"`
	Hours     float64   `db:"hours" json:"hours"`
	Deadline  time.Time `db:"deadline" json:"deadline"`
	BlockSize float64   `db:"block_size" json:"block_size"`
	Color     string    `db:"color" json:"color"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HomeworkFilter describes query params for listing homework.
type HomeworkFilter struct {
	StudentID string
	DueFrom   *time.Time
	DueTo     *time.Time
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
