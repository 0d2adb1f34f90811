package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studysync-api/internal/dto"
	"github.com/noah-isme/studysync-api/internal/models"
	"github.com/noah-isme/studysync-api/pkg/response"
)

type commitmentService interface {
	List(ctx context.Context, studentID string) ([]models.Commitment, error)
	Create(ctx context.Context, studentID string, req dto.CreateCommitmentRequest) ([]models.Commitment, error)
	Delete(ctx context.Context, studentID, id string) error
}

// CommitmentHandler exposes weekly commitment endpoints.
type CommitmentHandler struct {
	service commitmentService
}

// NewCommitmentHandler constructs the handler.
func NewCommitmentHandler(service commitmentService) *CommitmentHandler {
	return &CommitmentHandler{service: service}
}

// List godoc
// @Summary List weekly commitments
// @Tags Commitments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /commitments [get]
func (h *CommitmentHandler) List(c *gin.Context) {
	studentID := requireStudent(c)
	if studentID == "" {
		return
	}
	items, err := h.service.List(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Create a commitment on one or more weekdays
// @Description One record is stored per selected day.
// @Tags Commitments
// @Accept json
// @Produce json
// @Param payload body dto.CreateCommitmentRequest true "Commitment payload"
// @Success 201 {object} response.Envelope
// @Router /commitments [post]
func (h *CommitmentHandler) Create(c *gin.Context) {
	studentID := requireStudent(c)
	if studentID == "" {
		return
	}
	var req dto.CreateCommitmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid commitment payload"))
		return
	}
	items, err := h.service.Create(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, items)
}

// Delete godoc
// @Summary Delete a commitment
// @Tags Commitments
// @Param id path string true "Commitment ID"
// @Success 204
// @Router /commitments/{id} [delete]
func (h *CommitmentHandler) Delete(c *gin.Context) {
	studentID := requireStudent(c)
	if studentID == "" {
		return
	}
	if err := h.service.Delete(c.Request.Context(), studentID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
