package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studysync-api/internal/dto"
	"github.com/noah-isme/studysync-api/internal/service"
	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
	"github.com/noah-isme/studysync-api/pkg/response"
)

type exportJobService interface {
	Submit(ctx context.Context, studentID string, req dto.CreateExportRequest) (*dto.ExportJobResponse, error)
	Get(ctx context.Context, studentID, id string) (*dto.ExportJobResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

type ledgerResetter interface {
	ResetLedger(ctx context.Context, studentID string) error
}

// ExportHandler exposes asynchronous export jobs and signed downloads.
type ExportHandler struct {
	jobs   exportJobService
	ledger ledgerResetter
}

// NewExportHandler constructs the handler.
func NewExportHandler(jobs exportJobService, ledger ledgerResetter) *ExportHandler {
	return &ExportHandler{jobs: jobs, ledger: ledger}
}

// Create godoc
// @Summary Queue a schedule export
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body dto.CreateExportRequest true "Export options"
// @Success 202 {object} response.Envelope
// @Router /exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	studentID := requireStudent(c)
	if studentID == "" {
		return
	}
	var req dto.CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid export payload"))
		return
	}
	job, err := h.jobs.Submit(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// Get godoc
// @Summary Export job status
// @Tags Exports
// @Produce json
// @Param id path string true "Export ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) Get(c *gin.Context) {
	studentID := requireStudent(c)
	if studentID == "" {
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), studentID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished export via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Router /export/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	download, err := h.jobs.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	size := int64(-1)
	if info, err := download.File.Stat(); err == nil {
		size = info.Size()
	}
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, size, download.ContentType, download.File, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", download.Filename),
	})
}

// ResetLedger godoc
// @Summary Forget previously delivered calendar events
// @Description The next only_new export includes every event again.
// @Tags Exports
// @Success 204
// @Router /exports/ledger [delete]
func (h *ExportHandler) ResetLedger(c *gin.Context) {
	studentID := requireStudent(c)
	if studentID == "" {
		return
	}
	if err := h.ledger.ResetLedger(c.Request.Context(), studentID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
