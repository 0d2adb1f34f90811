package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studysync-api/internal/dto"
	"github.com/noah-isme/studysync-api/internal/models"
	"github.com/noah-isme/studysync-api/pkg/response"
)

type preferenceService interface {
	Get(ctx context.Context, studentID string) (*models.Preferences, error)
	Update(ctx context.Context, studentID string, req dto.UpdatePreferencesRequest) (*models.Preferences, error)
}

// PreferenceHandler exposes the student's working window settings.
type PreferenceHandler struct {
	service preferenceService
}

// NewPreferenceHandler constructs the handler.
func NewPreferenceHandler(service preferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: service}
}

// Get godoc
// @Summary Get scheduling preferences
// @Description Returns configured defaults when the student never saved any.
// @Tags Preferences
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /preferences [get]
func (h *PreferenceHandler) Get(c *gin.Context) {
	studentID := requireStudent(c)
	if studentID == "" {
		return
	}
	pref, err := h.service.Get(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref, nil)
}

// Update godoc
// @Summary Replace scheduling preferences
// @Tags Preferences
// @Accept json
// @Produce json
// @Param payload body dto.UpdatePreferencesRequest true "Preference payload"
// @Success 200 {object} response.Envelope
// @Router /preferences [put]
func (h *PreferenceHandler) Update(c *gin.Context) {
	studentID := requireStudent(c)
	if studentID == "" {
		return
	}
	var req dto.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid preference payload"))
		return
	}
	pref, err := h.service.Update(c.Request.Context(), studentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pref, nil)
}
