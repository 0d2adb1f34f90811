package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/studysync-api/internal/models"
	"github.com/noah-isme/studysync-api/internal/planner"
	"github.com/noah-isme/studysync-api/pkg/config"
	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
	"github.com/noah-isme/studysync-api/pkg/export"
)

const calendarDescription = "Your personalized homework schedule"

var tableHeaders = []string{"Date", "Day", "Start", "End", "Activity", "Hours"}

type scheduleEntryReader interface {
	ListEntries(ctx context.Context, studentID string) ([]models.ScheduleEntry, error)
}

type exportLedger interface {
	Exported(ctx context.Context, studentID string, uids []string) (map[string]bool, error)
	Record(ctx context.Context, studentID string, uids []string, at time.Time) error
	Reset(ctx context.Context, studentID string) error
}

// RenderedExport is an encoded schedule ready for download or storage.
type RenderedExport struct {
	Format      models.ExportFormat
	ContentType string
	Filename    string
	Data        []byte
	EventCount  int
	UIDs        []string
}

// CalendarService renders the stored schedule as ICS, CSV or PDF.
type CalendarService struct {
	entries     scheduleEntryReader
	commitments commitmentLister
	ledger      exportLedger
	ics         *export.ICSExporter
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	metrics     *MetricsService
	name        string
	logger      *zap.Logger
	now         func() time.Time
}

// NewCalendarService constructs the service.
func NewCalendarService(entries scheduleEntryReader, commitments commitmentLister, ledger exportLedger, metrics *MetricsService, cfg config.ExportsConfig, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	name := cfg.CalendarName
	if name == "" {
		name = export.DefaultCalendarName
	}
	return &CalendarService{
		entries:     entries,
		commitments: commitments,
		ledger:      ledger,
		ics:         export.NewICSExporter(cfg.UIDDomain),
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		metrics:     metrics,
		name:        name,
		logger:      logger,
		now:         time.Now,
	}
}

// Render encodes the student's current schedule. With OnlyNew, events whose UID was already delivered
// in an earlier calendar export are left out. Nothing is recorded until MarkDelivered.
func (s *CalendarService) Render(ctx context.Context, studentID string, params models.ExportJobParams) (*RenderedExport, error) {
	switch params.Format {
	case models.ExportFormatICS, models.ExportFormatCSV, models.ExportFormatPDF:
	default:
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", params.Format))
	}

	entries, err := s.entries.ListEntries(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	var commitments []models.Commitment
	if params.IncludeCommitments {
		if commitments, err = s.commitments.ListByStudent(ctx, studentID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load commitments")
		}
	}

	// Commitments start from the same civil date the planner derives from its clock.
	now := s.now()
	items := buildExportItems(entries, commitments, planner.CivilDate(now))
	now = now.UTC()
	events := make([]export.CalendarEvent, len(items))
	for i := range items {
		events[i] = items[i].event
	}
	for i, uid := range s.ics.UIDs(events) {
		items[i].event.UID = uid
	}

	if params.OnlyNew && len(items) > 0 {
		if items, err = s.dropDelivered(ctx, studentID, items); err != nil {
			return nil, err
		}
	}

	out := &RenderedExport{
		Format:     params.Format,
		Filename:   "studysync-schedule." + string(params.Format),
		EventCount: len(items),
		UIDs:       make([]string, 0, len(items)),
	}
	for _, item := range items {
		out.UIDs = append(out.UIDs, item.event.UID)
	}

	switch params.Format {
	case models.ExportFormatICS:
		cal := export.Calendar{Name: s.name, Description: calendarDescription, Stamp: now}
		for _, item := range items {
			cal.Events = append(cal.Events, item.event)
		}
		out.ContentType = s.ics.ContentType()
		out.Data, err = s.ics.Render(cal)
	case models.ExportFormatCSV:
		out.ContentType = s.csv.ContentType()
		out.Data, err = s.csv.Render(s.table(items, now))
	case models.ExportFormatPDF:
		out.ContentType = s.pdf.ContentType()
		out.Data, err = s.pdf.Render(s.table(items, now))
	}
	if err != nil {
		s.metrics.RecordExport(params.Format, models.ExportStatusFailed)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.metrics.RecordExport(params.Format, models.ExportStatusFinished)
	s.logger.Debug("schedule exported",
		zap.String("student_id", studentID),
		zap.String("format", string(params.Format)),
		zap.Int("events", out.EventCount),
	)
	return out, nil
}

// MarkDelivered records the UIDs of a calendar export once it has reached the student. Table formats
// are not imported into calendars and leave the ledger untouched.
func (s *CalendarService) MarkDelivered(ctx context.Context, studentID string, rendered *RenderedExport) error {
	if rendered == nil || rendered.Format != models.ExportFormatICS || len(rendered.UIDs) == 0 {
		return nil
	}
	if err := s.ledger.Record(ctx, studentID, rendered.UIDs, s.now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record exported events")
	}
	return nil
}

// ResetLedger forgets every delivered UID so the next OnlyNew export is complete again.
func (s *CalendarService) ResetLedger(ctx context.Context, studentID string) error {
	if err := s.ledger.Reset(ctx, studentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset export ledger")
	}
	return nil
}

func (s *CalendarService) dropDelivered(ctx context.Context, studentID string, items []exportItem) ([]exportItem, error) {
	uids := make([]string, len(items))
	for i, item := range items {
		uids[i] = item.event.UID
	}
	delivered, err := s.ledger.Exported(ctx, studentID, uids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export ledger")
	}
	kept := items[:0]
	for _, item := range items {
		if !delivered[item.event.UID] {
			kept = append(kept, item)
		}
	}
	return kept, nil
}

func (s *CalendarService) table(items []exportItem, now time.Time) export.Table {
	t := export.Table{
		Title:    s.name,
		Subtitle: "Generated " + now.Format("2006-01-02 15:04") + " UTC",
		Headers:  tableHeaders,
		Rows:     make([][]string, 0, len(items)),
	}
	for _, item := range items {
		t.Rows = append(t.Rows, item.row)
	}
	return t
}

// exportItem pairs a calendar event with its table row so filtering keeps both in step.
type exportItem struct {
	event export.CalendarEvent
	row   []string
}

// BuildCalendar turns schedule entries and weekly commitments into calendar events. Commitments
// recur weekly from their first occurrence on or after from.
func BuildCalendar(name string, entries []models.ScheduleEntry, commitments []models.Commitment, from time.Time) export.Calendar {
	cal := export.Calendar{Name: name, Description: calendarDescription}
	for _, item := range buildExportItems(entries, commitments, from) {
		cal.Events = append(cal.Events, item.event)
	}
	return cal
}

func buildExportItems(entries []models.ScheduleEntry, commitments []models.Commitment, from time.Time) []exportItem {
	items := make([]exportItem, 0, len(entries)+len(commitments))
	for _, e := range entries {
		start, end := entryBounds(e)
		if !end.After(start) {
			// sub-second remainder of a block; nothing a calendar can show
			continue
		}
		date := start.Format(dateLayout)
		items = append(items, exportItem{
			event: export.CalendarEvent{
				Key:         fmt.Sprintf("study|%s|%s|%s|%d", e.HomeworkID, date, start.Format("15:04"), int(end.Sub(start).Minutes())),
				Summary:     e.Homework,
				Description: "Study session for " + e.Homework,
				Start:       start,
				End:         end,
			},
			row: []string{date, string(e.Day), start.Format("15:04"), end.Format("15:04"), e.Homework, fmt.Sprintf("%.2f", e.Duration)},
		})
	}

	from = planner.CivilDate(from)
	for _, c := range commitments {
		item, ok := commitmentItem(c, from)
		if ok {
			items = append(items, item)
		}
	}
	return items
}

func commitmentItem(c models.Commitment, from time.Time) (exportItem, bool) {
	day, ok := models.ParseWeekday(string(c.Day))
	if !ok {
		return exportItem{}, false
	}
	startHours, err := planner.ParseClock(c.StartTime)
	if err != nil {
		return exportItem{}, false
	}
	endHours, err := planner.ParseClock(c.EndTime)
	if err != nil || endHours <= startHours {
		return exportItem{}, false
	}

	offset := (int(day.TimeWeekday()) - int(from.Weekday()) + 7) % 7
	first := from.AddDate(0, 0, offset)
	if c.EndDate != nil && planner.CivilDate(*c.EndDate).Before(first) {
		return exportItem{}, false
	}

	start, end := entryBounds(models.ScheduleEntry{Date: first, StartTime: startHours, Duration: endHours - startHours})
	summary := strings.TrimSpace(c.Description)
	if summary == "" {
		summary = "Commitment"
	}
	key := c.ID
	if key == "" {
		key = fmt.Sprintf("%s|%s|%s|%s", day, c.StartTime, c.EndTime, summary)
	}
	return exportItem{
		event: export.CalendarEvent{
			Key:         "commitment|" + key,
			Summary:     summary,
			Description: fmt.Sprintf("Weekly commitment every %s", day),
			Start:       start,
			End:         end,
			RRule:       export.WeeklyRule(day.TimeWeekday(), c.EndDate),
		},
		row: []string{"weekly", string(day), planner.FormatClock(startHours), planner.FormatClock(endHours), summary, fmt.Sprintf("%.2f", endHours-startHours)},
	}, true
}
