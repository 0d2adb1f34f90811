package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studysync-api/internal/dto"
	"github.com/noah-isme/studysync-api/internal/models"
	"github.com/noah-isme/studysync-api/pkg/response"
)

type homeworkService interface {
	List(ctx context.Context, studentID string, query dto.HomeworkListQuery) ([]models.Homework, *models.Pagination, error)
	Create(ctx context.Context, studentID string, req dto.CreateHomeworkRequest) (*models.Homework, error)
	Update(ctx context.Context, studentID, id string, req dto.UpdateHomeworkRequest) (*models.Homework, error)
	Delete(ctx context.Context, studentID, id string) error
}

// HomeworkHandler exposes homework CRUD endpoints.
type HomeworkHandler struct {
	service homeworkService
}

// NewHomeworkHandler constructs the handler.
func NewHomeworkHandler(service homeworkService) *HomeworkHandler {
	return &HomeworkHandler{service: service}
}

// List godoc
// @Summary List homework
// @Tags Homework
// @Produce json
// @Param due_from query string false "Deadline lower bound (YYYY-MM-DD)"
// @Param due_to query string false "Deadline upper bound (YYYY-MM-DD)"
// @Param search query string false "Name filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /homework [get]
func (h *HomeworkHandler) List(c *gin.Context) {
	studentID := requireStudent(c)
	if studentID == "" {
		return
	}
	var query dto.HomeworkListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, bindError(err, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), studentID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Create godoc
// @Summary Create homework
// @Tags Homework
// @Accept json
// @Produce json
// @Param payload body dto.CreateHomeworkRequest true "Homework payload"
// @Success 201 {object} response.Envelope
// @Router /homework [post]
func (h *HomeworkHandler) Create(c *gin.Context) {
	studentID := requireStudent(c)
	if studentID == "" {
		return
	}
	var req dto.CreateHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid homework payload"))
		return
	}
	hw, err := h.service.Create(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, hw)
}

// Update godoc
// @Summary Update homework
// @Tags Homework
// @Accept json
// @Produce json
// @Param id path string true "Homework ID"
// @Param payload body dto.UpdateHomeworkRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /homework/{id} [put]
func (h *HomeworkHandler) Update(c *gin.Context) {
	studentID := requireStudent(c)
	if studentID == "" {
		return
	}
	var req dto.UpdateHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid homework payload"))
		return
	}
	hw, err := h.service.Update(c.Request.Context(), studentID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hw, nil)
}

// Delete godoc
// @Summary Delete homework and its scheduled blocks
// @Tags Homework
// @Param id path string true "Homework ID"
// @Success 204
// @Router /homework/{id} [delete]
func (h *HomeworkHandler) Delete(c *gin.Context) {
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
