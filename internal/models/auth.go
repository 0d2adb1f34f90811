package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the bearer token payload. Subject carries the student id.
type JWTClaims struct {
	StudentID string `json:"sid"`
	Name      string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenResponse is returned when a token is issued for a student.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
