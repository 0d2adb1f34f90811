package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ExportFormat enumerates supported schedule export formats.
type ExportFormat string

const (
	ExportFormatICS ExportFormat = "ics"
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportStatus captures background export lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob persisted background export metadata.
type ExportJob struct {
	ID           string          `db:"id" json:"id"`
	StudentID    string          `db:"student_id" json:"student_id"`
	Params       ExportJobParams `db:"params" json:"params"`
	Status       ExportStatus    `db:"status" json:"status"`
	EventCount   int             `db:"event_count" json:"event_count"`
	ResultURL    *string         `db:"result_url" json:"result_url,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time      `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
}

// ExportJobParams stores request options persisted as JSONB.
type ExportJobParams struct {
	Format             ExportFormat `json:"format"`
	IncludeCommitments bool         `json:"includeCommitments"`
	OnlyNew            bool         `json:"onlyNew"`
}

// Value marshals params to JSON for persistence.
func (p ExportJobParams) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal export job params: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the params struct.
func (p *ExportJobParams) Scan(value interface{}) error {
	*p = ExportJobParams{}
	return scanJSONColumn(value, p)
}

// ExportedEvent is a ledger row recording that a calendar UID was delivered to a student.
type ExportedEvent struct {
	StudentID  string    `db:"student_id" json:"student_id"`
	UID        string    `db:"uid" json:"uid"`
	ExportedAt time.Time `db:"exported_at" json:"exported_at"`
}
