package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/roadrulez/roadrulez/internal/background"
	"github.com/roadrulez/roadrulez/internal/models"
	pkgauth "github.com/roadrulez/roadrulez/pkg/auth"
	pkglogger "github.com/roadrulez/roadrulez/pkg/logger"
)

// UserStore defines the user lookups the auth service needs
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthService orchestrates a login attempt: rate-limit check, credential
// verification, outcome recording, audit emission. Outcome recording and
// audit writes are fire-and-forget; the login decision never depends on them.
type AuthService struct {
	users     UserStore
	rateLimit *RateLimitService
	audit     *AuditService
	tasks     *background.Runner
	logger    *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, rateLimit *RateLimitService, audit *AuditService, tasks *background.Runner, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		rateLimit: rateLimit,
		audit:     audit,
		tasks:     tasks,
		logger:    logger,
	}
}

// Login runs the full login sequence for one attempt.
//
// Error contract:
//   - missing input, unknown account, wrong password: ErrInvalidCredentials,
//     identical in every case so callers cannot enumerate accounts
//   - active lockout: *RateLimitedError with retry-after seconds; this one is
//     deliberately specific
//   - user store unavailable: ErrInternalServer
func (s *AuthService) Login(ctx context.Context, email, password, ipAddress string) (*models.Identity, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		s.logger.Warn("login attempt with missing credentials")
		return nil, models.ErrInvalidCredentials
	}

	email = strings.ToLower(strings.TrimSpace(email))

	decision := s.rateLimit.CheckLoginAllowed(ctx, ipAddress, email)
	if !decision.Allowed {
		s.logger.Warn("login blocked by rate limiter",
			slog.String("ip", ipAddress),
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Int("retry_after_seconds", decision.RetryAfterSeconds),
		)
		lockedEmail := email
		s.tasks.Go("audit_lockout", func(ctx context.Context) error {
			s.audit.Record(ctx, nil, models.AuditEntityAuth, lockedEmail, models.AuditActionLockout,
				"login blocked, rate limit exceeded")
			return nil
		})
		return nil, &models.RateLimitedError{RetryAfterSeconds: decision.RetryAfterSeconds}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// The comparison runs against a placeholder digest when the account is
	// unknown, so both outcomes share one latency profile.
	var storedHash *string
	if user != nil {
		storedHash = user.PasswordHash
	}

	if !pkgauth.VerifyPassword(storedHash, password) {
		s.logger.Info("login failed: invalid credentials")
		failedEmail, failedIP := email, ipAddress
		s.tasks.Go("record_login_failure", func(ctx context.Context) error {
			return s.rateLimit.RecordFailure(ctx, failedIP, failedEmail)
		})
		s.tasks.Go("audit_login_failure", func(ctx context.Context) error {
			s.audit.Record(ctx, nil, models.AuditEntityAuth, failedEmail, models.AuditActionLoginFailure,
				"failed login attempt")
			return nil
		})
		return nil, models.ErrInvalidCredentials
	}

	var actorID *uuid.UUID
	if parsed, err := uuid.Parse(user.ID); err == nil {
		actorID = &parsed
	}

	userID, successIP, successEmail := user.ID, ipAddress, email
	s.tasks.Go("record_login_success", func(ctx context.Context) error {
		return s.rateLimit.RecordSuccess(ctx, successIP, successEmail)
	})
	s.tasks.Go("audit_login_success", func(ctx context.Context) error {
		s.audit.Record(ctx, actorID, models.AuditEntityAuth, userID, models.AuditActionLoginSuccess,
			"successful login")
		return nil
	})

	s.logger.Info("user logged in", slog.String("user_id", user.ID))

	return &models.Identity{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}, nil
}
