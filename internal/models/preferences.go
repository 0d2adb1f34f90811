package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Break is a daily recurring pause, e.g. lunch, applied on every date.
type Break struct {
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// BreakList is persisted as a JSONB array.
type BreakList []Break

// Value marshals the list to JSON for persistence.
func (b BreakList) Value() (driver.Value, error) {
	if b == nil {
		b = BreakList{}
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("marshal break list: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSON array into the list.
func (b *BreakList) Scan(value interface{}) error {
	if value == nil {
		*b = BreakList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported break list type %T", value)
	}
	if len(data) == 0 {
		*b = BreakList{}
		return nil
	}
	return json.Unmarshal(data, b)
}

// Preferences configure a student's working window. A nil BufferMinutes means the default (30);
// an explicit zero disables post-commitment buffers.
type Preferences struct {
	StudentID     string    `db:"student_id" json:"student_id"`
	StartTime     string    `db:"start_time" json:"start_time"`
	EndTime       string    `db:"end_time" json:"end_time"`
	BufferMinutes *int      `db:"buffer_minutes" json:"buffer_minutes,omitempty"`
	Breaks        BreakList `db:"breaks" json:"breaks"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
