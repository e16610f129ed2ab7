package db

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const maxRunLogErrorLength = 4000

// RunLogEntry is the detached projection of one pipeline execution.
type RunLogEntry struct {
	RunLogID      int64     `json:"run_log_id"`
	RunAt         time.Time `json:"run_at"`
	SignalsStored int       `json:"signals_stored"`
	ErrorMessage  *string   `json:"error_message,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
}

// truncateRunLogError bounds the stored error text, cutting on a rune
// boundary so a multi-byte character is never split. Blank text maps to
// nil.
func truncateRunLogError(errorText string) *string {
	trimmed := strings.TrimSpace(errorText)
	if trimmed == "" {
		return nil
	}
	if len(trimmed) > maxRunLogErrorLength {
		cut := maxRunLogErrorLength
		for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
			cut--
		}
		trimmed = trimmed[:cut]
	}
	return &trimmed
}

// AppendRunLog writes one execution record. Error text is truncated to
// keep the ledger row bounded.
func (p *Pool) AppendRunLog(ctx context.Context, runAt time.Time, signalsStored int, errorText string, duration time.Duration) error {
	errorMessage := truncateRunLogError(errorText)

	const q = `
INSERT INTO run_log (run_at, signals_stored, error_message, duration_ms)
VALUES (?, ?, ?, ?)
`
	if _, err := p.Exec(ctx, q, runAt.UTC(), signalsStored, errorMessage, duration.Milliseconds()); err != nil {
		return fmt.Errorf("append run log: %w", err)
	}
	return nil
}

// ListRunLogs returns the most recent executions, newest first.
func (p *Pool) ListRunLogs(ctx context.Context, limit int) ([]RunLogEntry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0")
	}

	const q = `
SELECT run_log_id, run_at, signals_stored, error_message, duration_ms
FROM run_log
ORDER BY run_at DESC, run_log_id DESC
LIMIT ?
`

	rows, err := p.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query run log: %w", err)
	}
	defer rows.Close()

	entries := make([]RunLogEntry, 0, limit)
	for rows.Next() {
		var entry RunLogEntry
		if err := rows.Scan(
			&entry.RunLogID,
			&entry.RunAt,
			&entry.SignalsStored,
			&entry.ErrorMessage,
			&entry.DurationMS,
		); err != nil {
			return nil, fmt.Errorf("scan run log row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run log rows: %w", err)
	}

	return entries, nil
}
