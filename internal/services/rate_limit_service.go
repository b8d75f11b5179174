package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/roadrulez/roadrulez/internal/background"
	"github.com/roadrulez/roadrulez/internal/models"
	pkglogger "github.com/roadrulez/roadrulez/pkg/logger"
)

// LoginAttemptStore defines the persistence operations the rate limiter needs
type LoginAttemptStore interface {
	Find(ctx context.Context, identifier string) (*models.LoginAttempt, error)
	RecordFailure(ctx context.Context, identifier, ip, email string, maxAttempts int, lockout time.Duration) (*models.LoginAttempt, error)
	ResetSuccess(ctx context.Context, identifier string) error
	DeleteStale(ctx context.Context, retention time.Duration) (int64, error)
}

// RateLimitConfig holds configuration for login rate limiting behavior
type RateLimitConfig struct {
	MaxAttempts      int           // failures before lockout
	LockoutDuration  time.Duration // lock length once the threshold is reached
	AttemptRetention time.Duration // stale rows older than this are pruned
}

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed           bool
	RetryAfterSeconds int // > 0 whenever Allowed is false
}

// RateLimitService decides whether a login attempt may proceed, based on the
// failure history of the (IP, email) pair. State lives entirely in the
// attempt store; the service itself performs no writes during a check.
type RateLimitService struct {
	store  LoginAttemptStore
	config RateLimitConfig
	logger *slog.Logger
	tasks  *background.Runner
}

// NewRateLimitService creates a new RateLimitService
func NewRateLimitService(store LoginAttemptStore, config RateLimitConfig, logger *slog.Logger, tasks *background.Runner) *RateLimitService {
	return &RateLimitService{
		store:  store,
		config: config,
		logger: logger,
		tasks:  tasks,
	}
}

// LoginIdentifier derives the opaque lookup key for an (IP, email) pair.
// Email is case-normalized first so "Admin@X.com" and "admin@x.com" share a
// counter; the IP is used verbatim. The raw pair never appears in the index.
func LoginIdentifier(ip, email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := sha256.Sum256([]byte(ip + "|" + normalized))
	return hex.EncodeToString(sum[:])
}

// CheckLoginAllowed reports whether a login attempt for this (IP, email) pair
// is currently permitted. Stale rows are pruned opportunistically on every
// check; the pruning runs in the background and can never fail the check.
//
// Degradation policy: if the attempt store cannot be read, the check fails
// open. A store outage must not lock legitimate editors out of the admin
// panel; credentials are still verified against the user store either way.
func (s *RateLimitService) CheckLoginAllowed(ctx context.Context, ip, email string) Decision {
	s.tasks.Go("login_attempt_cleanup", func(ctx context.Context) error {
		deleted, err := s.store.DeleteStale(ctx, s.config.AttemptRetention)
		if err != nil {
			return err
		}
		if deleted > 0 {
			s.logger.Info("pruned stale login attempts", slog.Int64("deleted", deleted))
		}
		return nil
	})

	identifier := LoginIdentifier(ip, email)

	record, err := s.store.Find(ctx, identifier)
	if err != nil {
		s.logger.Error("failed to read login attempt state, failing open",
			slog.Any("error", err),
			slog.String("ip", ip),
			slog.String("email", pkglogger.SanitizedEmail(email)),
		)
		return Decision{Allowed: true}
	}

	now := time.Now()
	if record == nil || !record.Locked(now) {
		return Decision{Allowed: true}
	}

	remaining := int(math.Ceil(record.LockedUntil.Sub(now).Seconds()))
	if remaining < 1 {
		remaining = 1
	}

	return Decision{Allowed: false, RetryAfterSeconds: remaining}
}

// RecordFailure counts one failed attempt for the pair. The store applies the
// lockout atomically when the new count reaches the threshold.
func (s *RateLimitService) RecordFailure(ctx context.Context, ip, email string) error {
	identifier := LoginIdentifier(ip, email)
	normalized := strings.ToLower(strings.TrimSpace(email))

	attempt, err := s.store.RecordFailure(ctx, identifier, ip, normalized, s.config.MaxAttempts, s.config.LockoutDuration)
	if err != nil {
		return err
	}

	if attempt.LockedUntil != nil {
		s.logger.Warn("login identifier locked out",
			slog.String("ip", ip),
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Int("fail_count", attempt.FailCount),
			slog.Time("locked_until", *attempt.LockedUntil),
		)
	}

	return nil
}

// RecordSuccess resets the pair's counter after a successful login.
func (s *RateLimitService) RecordSuccess(ctx context.Context, ip, email string) error {
	return s.store.ResetSuccess(ctx, LoginIdentifier(ip, email))
}
