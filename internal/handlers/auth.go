package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roadrulez/roadrulez/internal/auth"
	"github.com/roadrulez/roadrulez/internal/models"
	pkghttp "github.com/roadrulez/roadrulez/pkg/http"
)

// AuthServiceInterface defines the interface for login business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password, ipAddress string) (*models.Identity, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service AuthServiceInterface
	tokens  *auth.TokenManager
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{
		service: service,
		tokens:  tokens,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	SessionToken string           `json:"session_token"`
	User         *models.Identity `json:"user"`
}

// Login handles the admin credential login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	// Missing fields get the same generic response as wrong credentials;
	// only the rate-limited case is allowed to be specific.
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteUnauthorized(w, models.ErrInvalidCredentials.Error())
		return
	}

	ipAddress := pkghttp.ExtractClientIP(r)

	identity, err := h.service.Login(r.Context(), req.Email, req.Password, ipAddress)
	if err != nil {
		if rle, ok := models.AsRateLimited(err); ok {
			pkghttp.WriteTooManyRequests(w, rle.Error(), rle.RetryAfterSeconds)
			return
		}
		if errors.Is(err, models.ErrInvalidCredentials) {
			pkghttp.WriteUnauthorized(w, models.ErrInvalidCredentials.Error())
			return
		}
		pkghttp.WriteInternalError(w, "Something went wrong")
		return
	}

	sessionToken, err := h.tokens.GenerateSessionToken(identity)
	if err != nil {
		pkghttp.WriteInternalError(w, "Something went wrong")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{
		SessionToken: sessionToken,
		User:         identity,
	})
}

// Me returns the identity bound to the current session
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, &models.Identity{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	})
}
