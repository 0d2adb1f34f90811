package models

import "time"

// Commitment is a weekly recurring busy block, e.g. a class or a job shift.
// Times are "HH:MM"; EndDate, when set, is the last date the recurrence applies.
type Commitment struct {
	ID          string     `db:"id" json:"id"`
	StudentID   string     `db:"student_id" json:"student_id"`
	Day         Weekday    `db:"day" json:"day"`
	StartTime   string     `db:"start_time" json:"start_time"`
	EndTime     string     `db:"end_time" json:"end_time"`
	Description string     `db:"description" json:"description"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
