package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/studysync-api/internal/models"
	"github.com/noah-isme/studysync-api/pkg/config"
	appErrors "github.com/noah-isme/studysync-api/pkg/errors"
)

// TokenService issues and validates student bearer tokens. Accounts live upstream; the API only
// needs a verified student id.
type TokenService struct {
	secret string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService from JWT settings.
func NewTokenService(cfg config.JWTConfig) *TokenService {
	ttl := cfg.Expiration
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: cfg.Secret, issuer: cfg.Issuer, ttl: ttl, now: time.Now}
}

// Issue signs an HS256 token for the student.
func (s *TokenService) Issue(studentID, name string) (*models.TokenResponse, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)
	claims := &models.JWTClaims{
		StudentID: studentID,
		Name:      name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   studentID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return &models.TokenResponse{AccessToken: signed, ExpiresIn: int64(s.ttl.Seconds())}, nil
}

// ValidateToken parses an HS256 token and returns its claims.
func (s *TokenService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.StudentID == "" {
		claims.StudentID = claims.Subject
	}
	if claims.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token carries no student")
	}
	return claims, nil
}
