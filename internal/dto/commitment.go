package dto

// CreateCommitmentRequest creates one weekly commitment per listed day.
type CreateCommitmentRequest struct {
	Days        []string `json:"days" validate:"required,min=1,max=7,dive,required"`
	StartTime   string   `json:"start_time" validate:"required"`
	EndTime     string   `json:"end_time" validate:"required"`
	Description string   `json:"description" validate:"max=200"`
	EndDate     *string  `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
