package logger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FallbackAuditWriter appends audit entries to a local NDJSON file when the
// primary audit store is unreachable. One file per day, append-only. If the
// fallback itself fails, the entry is logged through slog and dropped; the
// failure never propagates to the caller.
type FallbackAuditWriter struct {
	dir    string
	logger *slog.Logger

	mu sync.Mutex
}

// NewFallbackAuditWriter creates a writer rooted at dir. The directory is
// created lazily on first write.
func NewFallbackAuditWriter(dir string, logger *slog.Logger) *FallbackAuditWriter {
	return &FallbackAuditWriter{
		dir:    dir,
		logger: logger,
	}
}

// Write appends one entry. Entries are arbitrary JSON-marshalable records;
// a timestamp field is stamped here so the fallback file is self-contained.
func (w *FallbackAuditWriter) Write(entry map[string]interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)

	line, err := json.Marshal(entry)
	if err != nil {
		w.logger.Error("fallback audit entry not marshalable", slog.Any("error", err))
		return
	}

	if err := w.append(line); err != nil {
		// Last resort: the entry survives only in the operational log stream.
		w.logger.Error("failed to write fallback audit log",
			slog.Any("error", err),
			slog.String("entry", string(line)),
		)
	}
}

func (w *FallbackAuditWriter) append(line []byte) error {
	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return fmt.Errorf("create fallback audit dir: %w", err)
	}

	name := fmt.Sprintf("fallback-%s.ndjson", time.Now().UTC().Format("2006-01-02"))
	path := filepath.Join(w.dir, name)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open fallback audit file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append fallback audit entry: %w", err)
	}

	return nil
}
