package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims represents the JWT claims for dashboard session tokens
type TokenClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
