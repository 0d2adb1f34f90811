package dto

// CreateHomeworkRequest captures POST /homework payload. Deadline is a calendar date (YYYY-MM-DD).
type CreateHomeworkRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Hours     float64 `json:"hours" validate:"gt=0,lte=1000"`
	Deadline  string  `json:"deadline" validate:"required,datetime=2006-01-02"`
	BlockSize float64 `json:"block_size" validate:"gt=0,lte=24"`
	Color     string  `json:"color" validate:"omitempty,hexcolor"`
}

// UpdateHomeworkRequest captures PUT /homework/:id payload; omitted fields keep their value.
type UpdateHomeworkRequest struct {
	Name      *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Hours     *float64 `json:"hours" validate:"omitempty,gt=0,lte=1000"`
	Deadline  *string  `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	BlockSize *float64 `json:"block_size" validate:"omitempty,gt=0,lte=24"`
	Color     *string  `json:"color" validate:"omitempty,hexcolor"`
}

// HomeworkListQuery binds GET /homework query parameters.
type HomeworkListQuery struct {
	DueFrom   string `form:"due_from" validate:"omitempty,datetime=2006-01-02"`
	DueTo     string `form:"due_to" validate:"omitempty,datetime=2006-01-02"`
	Search    string `form:"search"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}
