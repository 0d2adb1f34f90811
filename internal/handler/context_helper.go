package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studysync-api/internal/middleware"
	"github.com/noah-isme/studysync-api/internal/models"
	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
	"github.com/noah-isme/studysync-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// requireStudent writes a 401 and returns "" when the request carries no student identity.
func requireStudent(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil || claims.StudentID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return ""
	}
	return claims.StudentID
}

func bindError(err error, msg string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msg)
}
