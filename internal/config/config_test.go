package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "test-session-secret-0123456789abcdef")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "roadrulez", cfg.Database.Name)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)

	assert.Equal(t, 4*time.Hour, cfg.Auth.SessionExpiry)

	assert.Equal(t, 10, cfg.Security.MaxLoginAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Security.LockoutDuration)
	assert.Equal(t, 30*24*time.Hour, cfg.Security.AttemptRetention)
	assert.Equal(t, ".audit-logs", cfg.Security.AuditFallbackDir)
	assert.Equal(t, 5, cfg.Security.LoginRequestsPerMin)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOGIN_MAX_ATTEMPTS", "3")
	t.Setenv("LOGIN_LOCKOUT_DURATION", "30m")
	t.Setenv("LOGIN_ATTEMPT_RETENTION", "168h")
	t.Setenv("SESSION_EXPIRY", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Security.MaxLoginAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Security.LockoutDuration)
	assert.Equal(t, 7*24*time.Hour, cfg.Security.AttemptRetention)
	assert.Equal(t, time.Hour, cfg.Auth.SessionExpiry)
}

func TestLoad_SessionSecretRequired(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("DB_PASSWORD", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoad_DBPasswordRequired(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-session-secret-0123456789abcdef")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestLoad_MaxAttemptsMustBePositive(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOGIN_MAX_ATTEMPTS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOGIN_MAX_ATTEMPTS")
}

func TestValidateSessionSecret(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		env     string
		wantErr bool
	}{
		{"dev minimum ok", "sixteen-chars-ok", "development", false},
		{"dev too short", "short", "development", true},
		{"prod needs 32", "sixteen-chars-ok", "production", true},
		{"prod 32 ok", strings.Repeat("a1b2c3d4", 4), "production", false},
		{"weak value rejected", "changeme", "development", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSessionSecret(tt.secret, tt.env)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "s3cret",
		Name:     "roadrulez",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "port=5433")
	assert.Contains(t, dsn, "dbname=roadrulez")
	assert.Contains(t, dsn, "sslmode=require")
}
