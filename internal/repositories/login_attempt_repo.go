package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roadrulez/roadrulez/internal/database"
	"github.com/roadrulez/roadrulez/internal/models"
)

// LoginAttemptRepository handles the per-identifier failure counters backing
// the login rate limiter.
type LoginAttemptRepository struct {
	pool *pgxpool.Pool
}

// NewLoginAttemptRepository creates a new LoginAttemptRepository
func NewLoginAttemptRepository(db *database.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{pool: db.Pool}
}

func scanLoginAttemptRow(row pgx.Row) (*models.LoginAttempt, error) {
	var attempt models.LoginAttempt
	err := row.Scan(
		&attempt.ID,
		&attempt.Identifier,
		&attempt.IPAddress,
		&attempt.Email,
		&attempt.FailCount,
		&attempt.LockedUntil,
		&attempt.LastAttempt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &attempt, nil
}

// Find returns the attempt record for an identifier, or nil when no record
// exists. Absence of a record is not an error.
func (r *LoginAttemptRepository) Find(ctx context.Context, identifier string) (*models.LoginAttempt, error) {
	query := `
		SELECT id, identifier, ip_address, email, fail_count, locked_until, last_attempt
		FROM login_attempts
		WHERE identifier = $1
	`

	attempt, err := scanLoginAttemptRow(r.pool.QueryRow(ctx, query, identifier))
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return attempt, nil
}

// RecordFailure increments the fail counter for an identifier, creating the
// record on first failure. When the new count reaches maxAttempts the record
// is locked until now+lockout; below the threshold locked_until stays null.
//
// The increment and the threshold decision happen in a single upsert so
// concurrent failures against one identifier never lose updates. A parallel
// burst of attempts counts every failure, and whichever write crosses the
// threshold sets the lock.
func (r *LoginAttemptRepository) RecordFailure(ctx context.Context, identifier, ip, email string, maxAttempts int, lockout time.Duration) (*models.LoginAttempt, error) {
	now := time.Now()
	lockedUntil := now.Add(lockout)

	query := `
		INSERT INTO login_attempts (identifier, ip_address, email, fail_count, locked_until, last_attempt)
		VALUES ($1, $2, $3, 1, CASE WHEN 1 >= $4 THEN $5::timestamptz ELSE NULL END, $6)
		ON CONFLICT (identifier) DO UPDATE SET
			fail_count   = login_attempts.fail_count + 1,
			locked_until = CASE WHEN login_attempts.fail_count + 1 >= $4 THEN $5::timestamptz ELSE NULL END,
			last_attempt = $6
		RETURNING id, identifier, ip_address, email, fail_count, locked_until, last_attempt
	`

	attempt, err := scanLoginAttemptRow(r.pool.QueryRow(ctx, query,
		identifier, ip, email, maxAttempts, lockedUntil, now,
	))
	if err != nil {
		return nil, err
	}

	return attempt, nil
}

// ResetSuccess clears the counter and any lock for an identifier after a
// successful login. A no-op when no record exists.
func (r *LoginAttemptRepository) ResetSuccess(ctx context.Context, identifier string) error {
	query := `
		UPDATE login_attempts
		SET fail_count = 0, locked_until = NULL, last_attempt = $2
		WHERE identifier = $1
	`

	_, err := r.pool.Exec(ctx, query, identifier, time.Now())
	return err
}

// DeleteStale prunes attempt records not touched within the retention window
// and returns the number of rows removed.
func (r *LoginAttemptRepository) DeleteStale(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)

	query := `DELETE FROM login_attempts WHERE last_attempt < $1`
	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
