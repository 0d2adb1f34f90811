package dto

import (
	"time"

	"github.com/noah-isme/studysync-api/internal/models"
)

// ScheduleEntryView is a schedule entry with clock strings for display.
type ScheduleEntryView struct {
	HomeworkID string         `json:"homework_id"`
	Homework   string         `json:"homework"`
	Day        models.Weekday `json:"day"`
	Date       string         `json:"date"`
	StartTime  float64        `json:"start_time"`
	Duration   float64        `json:"duration"`
	Start      string         `json:"start"`
	End        string         `json:"end"`
}

// ScheduleResponse is returned by generate, current, and preview endpoints.
type ScheduleResponse struct {
	RunID       string                   `json:"run_id,omitempty"`
	Today       string                   `json:"today"`
	GeneratedAt *time.Time               `json:"generated_at,omitempty"`
	Schedule    []ScheduleEntryView      `json:"schedule"`
	Warnings    []models.ScheduleWarning `json:"warnings"`
	Outcomes    []models.ItemOutcome     `json:"outcomes,omitempty"`
	Cached      bool                     `json:"cached,omitempty"`
}

// PreviewHomework is an unsaved homework item in a preview or CLI document.
type PreviewHomework struct {
	ID        string  `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name" validate:"required"`
	Hours     float64 `json:"hours" yaml:"hours" validate:"gt=0"`
	Deadline  string  `json:"deadline" yaml:"deadline" validate:"required,datetime=2006-01-02"`
	BlockSize float64 `json:"block_size" yaml:"block_size" validate:"gt=0"`
}

// PreviewCommitment is an unsaved weekly commitment in a preview or CLI document.
type PreviewCommitment struct {
	ID          string  `json:"id" yaml:"id"`
	Day         string  `json:"day" yaml:"day" validate:"required"`
	StartTime   string  `json:"start_time" yaml:"start_time" validate:"required"`
	EndTime     string  `json:"end_time" yaml:"end_time" validate:"required"`
	Description string  `json:"description" yaml:"description"`
	EndDate     *string `json:"end_date,omitempty" yaml:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// PreviewScheduleRequest carries everything needed to plan without touching stored data.
// Today pins the start date; it defaults to the server's current date.
type PreviewScheduleRequest struct {
	Today       *string                   `json:"today,omitempty" yaml:"today,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Homework    []PreviewHomework         `json:"homework" yaml:"homework" validate:"max=500,dive"`
	Commitments []PreviewCommitment       `json:"commitments" yaml:"commitments" validate:"max=500,dive"`
	Preferences *UpdatePreferencesRequest `json:"preferences,omitempty" yaml:"preferences,omitempty"`
}
