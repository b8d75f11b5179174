package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/roadrulez/roadrulez/internal/models"
	pkglogger "github.com/roadrulez/roadrulez/pkg/logger"
)

// AuditLogStore defines the persistence operations the audit service needs
type AuditLogStore interface {
	Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
}

// AuditService appends entries to the audit trail with a dual-write pattern:
// every entry is emitted through slog immediately and persisted to the
// database. When the database write fails the entry is appended to a local
// NDJSON fallback file instead; audit persistence problems never propagate to
// the caller.
type AuditService struct {
	store    AuditLogStore
	fallback *pkglogger.FallbackAuditWriter
	logger   *slog.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(store AuditLogStore, fallback *pkglogger.FallbackAuditWriter, logger *slog.Logger) *AuditService {
	return &AuditService{
		store:    store,
		fallback: fallback,
		logger:   logger,
	}
}

// Record appends one audit entry. Always returns nil-like behavior to the
// caller: failures are logged and routed to the fallback file only.
func (s *AuditService) Record(ctx context.Context, actorID *uuid.UUID, entityType, entityID, action, note string) {
	var notePtr *string
	if note != "" {
		notePtr = &note
	}

	entry := &models.AuditLog{
		ActorID:    actorID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Note:       notePtr,
	}

	// Dual-write: immediate slog output
	attrs := []slog.Attr{
		slog.String("entity_type", entityType),
		slog.String("entity_id", entityID),
		slog.String("action", action),
	}
	if actorID != nil {
		attrs = append(attrs, slog.String("actor_id", actorID.String()))
	}
	if note != "" {
		attrs = append(attrs, slog.String("note", note))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "audit event", attrs...)

	if _, err := s.store.Create(ctx, entry); err != nil {
		s.logger.Error("failed to persist audit log, writing fallback",
			slog.String("action", action),
			slog.Any("error", err),
		)

		record := map[string]interface{}{
			"entity_type": entityType,
			"entity_id":   entityID,
			"action":      action,
		}
		if actorID != nil {
			record["actor_id"] = actorID.String()
		}
		if note != "" {
			record["note"] = note
		}
		s.fallback.Write(record)
	}
}
