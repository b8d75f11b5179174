package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roadrulez/roadrulez/internal/models"
	"github.com/roadrulez/roadrulez/pkg/auth"
)

const (
	TestAdminEmail    = "admin@roadrulez.com"
	TestAdminPassword = "CorrectHorse9!"
	TestClientIP      = "203.0.113.9"
)

// SeedUser inserts a test user with a hashed password
func SeedUser(ctx context.Context, pool *pgxpool.Pool, email, password, role string) (*models.User, error) {
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, email, password_hash, name, role, created_at, updated_at
	`

	var user models.User
	err = pool.QueryRow(ctx, query, uuid.New().String(), email, hashedPassword, "Test User", role).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &user, nil
}

// SeedLoginAttempt inserts an attempt record directly, bypassing the
// failure-recording path
func SeedLoginAttempt(ctx context.Context, pool *pgxpool.Pool, identifier, ip, email string, failCount int, lockedUntil *time.Time, lastAttempt time.Time) error {
	query := `
		INSERT INTO login_attempts (identifier, ip_address, email, fail_count, locked_until, last_attempt)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := pool.Exec(ctx, query, identifier, ip, email, failCount, lockedUntil, lastAttempt)
	if err != nil {
		return fmt.Errorf("failed to insert login attempt: %w", err)
	}

	return nil
}

// CountAuditLogs returns the number of audit rows matching an action
func CountAuditLogs(ctx context.Context, pool *pgxpool.Pool, action string) (int, error) {
	var count int
	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs WHERE action = $1`, action).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit logs: %w", err)
	}
	return count, nil
}
