// Package planner allocates study blocks for homework into the free time of the coming days.
//
// Generation is a pure, synchronous pass: each call expands commitments and breaks into a fresh
// per-date busy map, then places blocks greedily by ascending deadline using first-fit gaps.
package planner

import (
	"fmt"
	"math"
	"time"

	"github.com/noah-isme/studysync-api/internal/models"
	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
)

// DefaultHorizonCap bounds the per-item day walk.
const DefaultHorizonCap = 365

// Result is the outcome of one generation call.
type Result struct {
	Today    time.Time                `json:"today"`
	Schedule []models.ScheduleEntry   `json:"schedule"`
	Warnings []models.ScheduleWarning `json:"warnings"`
	Outcomes []models.ItemOutcome     `json:"outcomes"`
}

// Option configures a Planner.
type Option func(*Planner)

// Planner generates schedules. It holds configuration only and is safe for concurrent use.
type Planner struct {
	now        func() time.Time
	horizonCap int
	defaults   Settings
}

// WithClock pins the source of "today".
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		if now != nil {
			p.now = now
		}
	}
}

// WithHorizonCap overrides the maximum number of days walked per item.
func WithHorizonCap(days int) Option {
	return func(p *Planner) {
		if days > 0 {
			p.horizonCap = days
		}
	}
}

// WithDefaults sets the window and buffer used when preferences leave them empty.
func WithDefaults(window Window, bufferMinutes int) Option {
	return func(p *Planner) {
		if window.End > window.Start {
			p.defaults.Window = window
		}
		if bufferMinutes >= 0 {
			p.defaults.BufferMinutes = bufferMinutes
		}
	}
}

// New constructs a Planner.
func New(opts ...Option) *Planner {
	p := &Planner{
		now:        time.Now,
		horizonCap: DefaultHorizonCap,
		defaults: Settings{
			Window:        DefaultWindow,
			BufferMinutes: DefaultBufferMinutes,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Today returns the civil date the planner treats as today.
func (p *Planner) Today() time.Time {
	return CivilDate(p.now())
}

// Generate places study blocks for homework around commitments and preferences. Inputs are not
// modified. Invalid intervals, weekdays, or homework sizes fail the whole call; scheduling shortfalls
// are reported as warnings.
func (p *Planner) Generate(homework []models.Homework, commitments []models.Commitment, prefs *models.Preferences) (*Result, error) {
	if err := validateHomework(homework); err != nil {
		return nil, err
	}
	settings, err := ResolveSettings(prefs, p.defaults)
	if err != nil {
		return nil, err
	}

	today := p.Today()
	busy, err := ExpandCommitments(commitments, settings, today, p.horizonEnd(today, homework))
	if err != nil {
		return nil, err
	}

	alloc := newAllocator(busy, settings.Window, today, p.horizonCap, len(homework))
	alloc.run(homework)

	return &Result{
		Today:    today,
		Schedule: alloc.entries,
		Warnings: alloc.warnings.list(),
		Outcomes: alloc.outcomes,
	}, nil
}

// horizonEnd is the latest deadline, never before today and never past the reachable cap.
func (p *Planner) horizonEnd(today time.Time, homework []models.Homework) time.Time {
	end := today
	for _, hw := range homework {
		if d := CivilDate(hw.Deadline); d.After(end) {
			end = d
		}
	}
	if last := today.AddDate(0, 0, p.horizonCap-1); end.After(last) {
		end = last
	}
	return end
}

func validateHomework(homework []models.Homework) error {
	for _, hw := range homework {
		if !(hw.Hours > 0) || math.IsInf(hw.Hours, 0) {
			return appErrors.Clone(appErrors.ErrInvalidHomework, fmt.Sprintf("homework %q needs positive hours", hw.Name))
		}
		if !(hw.BlockSize > 0) || math.IsInf(hw.BlockSize, 0) {
			return appErrors.Clone(appErrors.ErrInvalidHomework, fmt.Sprintf("homework %q needs a positive block size", hw.Name))
		}
	}
	return nil
}

// Generate runs a default planner with today pinned.
func Generate(today time.Time, homework []models.Homework, commitments []models.Commitment, prefs *models.Preferences) (*Result, error) {
	return New(WithClock(func() time.Time { return today })).Generate(homework, commitments, prefs)
}
