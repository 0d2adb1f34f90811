package dto

import (
	"time"

	"github.com/noah-isme/studysync-api/internal/models"
)

// CalendarExportQuery binds GET /schedule/export.ics query parameters.
type CalendarExportQuery struct {
	IncludeCommitments bool `form:"include_commitments"`
	OnlyNew            bool `form:"only_new"`
}

// CreateExportRequest captures POST /exports payload.
type CreateExportRequest struct {
	Format             models.ExportFormat `json:"format" validate:"required,oneof=ics csv pdf"`
	IncludeCommitments bool                `json:"include_commitments"`
	OnlyNew            bool                `json:"only_new"`
}

// ExportJobResponse exposes async export status.
type ExportJobResponse struct {
	ID          string              `json:"id"`
	Status      models.ExportStatus `json:"status"`
	Format      models.ExportFormat `json:"format"`
	EventCount  int                 `json:"event_count"`
	DownloadURL *string             `json:"download_url,omitempty"`
	Error       *string             `json:"error,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	FinishedAt  *time.Time          `json:"finished_at,omitempty"`
}
