package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ScheduleEntry is one placed study block. StartTime and Duration are decimal hours (14.5 = 14:30).
type ScheduleEntry struct {
	ID         string    `db:"id" json:"id,omitempty"`
	RunID      string    `db:"run_id" json:"run_id,omitempty"`
	StudentID  string    `db:"student_id" json:"-"`
	HomeworkID string    `db:"homework_id" json:"homework_id"`
	Homework   string    `db:"homework" json:"homework"`
	Day        Weekday   `db:"day" json:"day"`
	StartTime  float64   `db:"start_time" json:"start_time"`
	Duration   float64   `db:"duration" json:"duration"`
	Date       time.Time `db:"date" json:"date"`
}

// WarningKind distinguishes total infeasibility from a partial shortfall.
type WarningKind string

const (
	WarningInfeasible WarningKind = "infeasible"
	WarningPartial    WarningKind = "partial"
)

// ScheduleWarning reports a homework item that could not be fully scheduled.
// Infeasible warnings carry Available; partial warnings carry Scheduled and Remaining.
type ScheduleWarning struct {
	Kind       WarningKind `json:"kind"`
	HomeworkID string      `json:"homework_id"`
	Homework   string      `json:"homework"`
	Needed     float64     `json:"needed"`
	Available  *float64    `json:"available,omitempty"`
	Scheduled  *float64    `json:"scheduled,omitempty"`
	Remaining  *float64    `json:"remaining,omitempty"`
}

// ItemState is the allocation state of one homework item. Items move from pending to scheduling
// while the allocator works on them; outcomes only ever carry one of the three final states.
type ItemState string

const (
	ItemPending            ItemState = "pending"
	ItemScheduling         ItemState = "scheduling"
	ItemSatisfied          ItemState = "satisfied"
	ItemPartiallyScheduled ItemState = "partially_scheduled"
	ItemUnsatisfied        ItemState = "unsatisfied"
)

// ItemOutcome summarises how a homework item fared in one run.
type ItemOutcome struct {
	HomeworkID string    `json:"homework_id"`
	Homework   string    `json:"homework"`
	State      ItemState `json:"state"`
	Needed     float64   `json:"needed"`
	Scheduled  float64   `json:"scheduled"`
	Remaining  float64   `json:"remaining"`
	Available  float64   `json:"available"`
}

// WarningList is persisted as JSONB on a schedule run.
type WarningList []ScheduleWarning

// Value marshals warnings to JSON.
func (w WarningList) Value() (driver.Value, error) {
	if w == nil {
		w = WarningList{}
	}
	return marshalJSONColumn(w)
}

// Scan unmarshals warnings from JSON.
func (w *WarningList) Scan(value interface{}) error {
	*w = WarningList{}
	return scanJSONColumn(value, w)
}

// OutcomeList is persisted as JSONB on a schedule run.
type OutcomeList []ItemOutcome

// Value marshals outcomes to JSON.
func (o OutcomeList) Value() (driver.Value, error) {
	if o == nil {
		o = OutcomeList{}
	}
	return marshalJSONColumn(o)
}

// Scan unmarshals outcomes from JSON.
func (o *OutcomeList) Scan(value interface{}) error {
	*o = OutcomeList{}
	return scanJSONColumn(value, o)
}

// ScheduleRun is the header row of a persisted generation. A new run replaces the previous one.
type ScheduleRun struct {
	ID          string      `db:"id" json:"id"`
	StudentID   string      `db:"student_id" json:"student_id"`
	Today       time.Time   `db:"today" json:"today"`
	Warnings    WarningList `db:"warnings" json:"warnings"`
	Outcomes    OutcomeList `db:"outcomes" json:"outcomes"`
	EntryCount  int         `db:"entry_count" json:"entry_count"`
	GeneratedAt time.Time   `db:"generated_at" json:"generated_at"`
}

func marshalJSONColumn(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal json column: %w", err)
	}
	return data, nil
}

func scanJSONColumn(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported json column type %T", value)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}
