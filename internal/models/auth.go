package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated principal returned by a successful login.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// SessionClaims are the JWT claims carried by an admin session token.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
