package dto

// BreakRequest is a daily break in a preferences payload.
type BreakRequest struct {
	Name      string `json:"name" yaml:"name" validate:"required,max=100"`
	StartTime string `json:"start_time" yaml:"start_time" validate:"required"`
	EndTime   string `json:"end_time" yaml:"end_time" validate:"required"`
}

// UpdatePreferencesRequest captures PUT /preferences payload. A null buffer restores the default.
type UpdatePreferencesRequest struct {
	StartTime     string         `json:"start_time" yaml:"start_time" validate:"required"`
	EndTime       string         `json:"end_time" yaml:"end_time" validate:"required"`
	BufferMinutes *int           `json:"buffer_minutes" yaml:"buffer_minutes" validate:"omitempty,gte=0,lte=240"`
	Breaks        []BreakRequest `json:"breaks" yaml:"breaks" validate:"max=20,dive"`
}
