package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/studysync-api/internal/dto"
	"github.com/noah-isme/studysync-api/internal/middleware"
	"github.com/noah-isme/studysync-api/internal/models"
	"github.com/noah-isme/studysync-api/internal/service"
	"github.com/noah-isme/studysync-api/pkg/response"
)

type scheduleService interface {
	Generate(ctx context.Context, studentID string) (*dto.ScheduleResponse, error)
	Current(ctx context.Context, studentID string) (*dto.ScheduleResponse, error)
	Preview(ctx context.Context, req dto.PreviewScheduleRequest) (*dto.ScheduleResponse, error)
}

type calendarRenderer interface {
	Render(ctx context.Context, studentID string, params models.ExportJobParams) (*service.RenderedExport, error)
	MarkDelivered(ctx context.Context, studentID string, rendered *service.RenderedExport) error
}

// ScheduleHandler exposes schedule generation and the synchronous calendar download.
type ScheduleHandler struct {
	schedules scheduleService
	calendar  calendarRenderer
	logger    *zap.Logger
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(schedules scheduleService, calendar calendarRenderer, logger *zap.Logger) *ScheduleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleHandler{schedules: schedules, calendar: calendar, logger: logger}
}

// Generate godoc
// @Summary Generate a study schedule
// @Description Plans all homework against commitments and preferences and replaces the stored schedule.
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /schedule/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	studentID := requireStudent(c)
	if studentID == "" {
		return
	}
	result, err := h.schedules.Generate(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Current godoc
// @Summary Latest generated schedule
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) Current(c *gin.Context) {
	studentID := requireStudent(c)
	if studentID == "" {
		return
	}
	result, err := h.schedules.Current(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, result.Cached)
	response.JSON(c, http.StatusOK, result, nil, map[string]interface{}{"cached": result.Cached})
}

// Preview godoc
// @Summary Plan a schedule without persisting anything
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.PreviewScheduleRequest true "Planner inputs"
// @Success 200 {object} response.Envelope
// @Router /schedule/preview [post]
func (h *ScheduleHandler) Preview(c *gin.Context) {
	var req dto.PreviewScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid preview payload"))
		return
	}
	result, err := h.schedules.Preview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ExportICS godoc
// @Summary Download the schedule as an iCalendar file
// @Tags Schedule
// @Produce text/calendar
// @Param include_commitments query bool false "Add weekly commitments as recurring events"
// @Param only_new query bool false "Skip events already delivered"
// @Success 200 {file} file
// @Router /schedule/export.ics [get]
func (h *ScheduleHandler) ExportICS(c *gin.Context) {
	studentID := requireStudent(c)
	if studentID == "" {
		return
	}
	var query dto.CalendarExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid query parameters"))
		return
	}
	rendered, err := h.calendar.Render(c.Request.Context(), studentID, models.ExportJobParams{
		Format:             models.ExportFormatICS,
		IncludeCommitments: query.IncludeCommitments,
		OnlyNew:            query.OnlyNew,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.calendar.MarkDelivered(c.Request.Context(), studentID, rendered); err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Debug("calendar exported", zap.String("student_id", studentID), zap.Int("events", rendered.EventCount))
	c.Header("X-Exported-Events", strconv.Itoa(rendered.EventCount))
	response.Attachment(c, rendered.Filename, rendered.ContentType, rendered.Data)
}
