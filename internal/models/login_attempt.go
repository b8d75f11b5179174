package models

import "time"

// LoginAttempt is the per-(IP, email) failure counter backing the login rate
// limiter. The row is keyed by Identifier, a SHA-256 of "ip|email", so the
// unique index never contains a raw address or email. Raw values are kept as
// plain columns for operator visibility only.
type LoginAttempt struct {
	ID          string     `db:"id"`
	Identifier  string     `db:"identifier"`
	IPAddress   string     `db:"ip_address"`
	Email       string     `db:"email"`
	FailCount   int        `db:"fail_count"`
	LockedUntil *time.Time `db:"locked_until"`
	LastAttempt time.Time  `db:"last_attempt"`
}

// Locked reports whether the record carries an active lock at the given time.
// A LockedUntil in the past means the lock has expired, not that the record
// is in some half-locked state.
func (a *LoginAttempt) Locked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}
