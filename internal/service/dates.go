package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/studysync-api/internal/planner"
	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// parseDate reads a YYYY-MM-DD calendar date as UTC midnight.
func parseDate(raw, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			fmt.Sprintf("%s must be a YYYY-MM-DD date", field))
	}
	return planner.CivilDate(t), nil
}

func parseOptionalDate(raw *string, field string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := parseDate(*raw, field)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// validateClockRange checks that both clocks parse and end is after start.
func validateClockRange(start, end, label string) error {
	s, err := planner.ParseClock(start)
	if err != nil {
		return err
	}
	e, err := planner.ParseClock(end)
	if err != nil {
		return err
	}
	if e <= s {
		return appErrors.Clone(appErrors.ErrInvalidInterval, fmt.Sprintf("%s must end after it starts", label))
	}
	return nil
}
