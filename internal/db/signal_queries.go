package db

import (
	"context"
	"fmt"
	"time"
)

// StoredSignal is the projection handed to reporting and API callers.
// Plain data, detached from any gorm session.
type StoredSignal struct {
	SignalID       int64      `json:"signal_id"`
	CompetitorName string     `json:"competitor_name"`
	SignalType     string     `json:"signal_type"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	URL            string     `json:"url,omitempty"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	DiscoveredAt   time.Time  `json:"discovered_at"`
	SourceType     string     `json:"source_type"`
	SourceURL      string     `json:"source_url,omitempty"`
}

// NewSignal is one insert candidate for CommitSignals.
type NewSignal struct {
	CompetitorID int64
	Fingerprint  string
	SignalType   string
	Title        string
	Description  string
	URL          string
	PublishedAt  *time.Time
	DiscoveredAt time.Time
	SourceType   string
	SourceURL    string
}

// ExistingFingerprints returns which of the given fingerprints are
// already stored.
func (p *Pool) ExistingFingerprints(ctx context.Context, fingerprints []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(fingerprints))
	if len(fingerprints) == 0 {
		return existing, nil
	}

	const q = `SELECT fingerprint FROM signals WHERE fingerprint IN ?`

	rows, err := p.Query(ctx, q, fingerprints)
	if err != nil {
		return nil, fmt.Errorf("query existing fingerprints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fingerprint string
		if err := rows.Scan(&fingerprint); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		existing[fingerprint] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fingerprints: %w", err)
	}

	return existing, nil
}

// CommitSignals inserts the batch inside one transaction. A signal
// whose fingerprint already exists (a concurrent run raced past the
// pre-check) is skipped and counted as a conflict; any other failure
// aborts the transaction.
func (p *Pool) CommitSignals(ctx context.Context, signals []NewSignal) (stored int, conflicts int, err error) {
	if len(signals) == 0 {
		return 0, 0, nil
	}

	tx, err := p.BeginTx(ctx, TxOptions{})
	if err != nil {
		return 0, 0, fmt.Errorf("begin commit tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	const insert = `
INSERT INTO signals (
	competitor_id,
	fingerprint,
	signal_type,
	title,
	description,
	url,
	published_at,
	discovered_at,
	source_type,
	source_url,
	created_at
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (fingerprint) DO NOTHING
`

	for _, sig := range signals {
		tag, execErr := tx.Exec(
			ctx,
			insert,
			sig.CompetitorID,
			sig.Fingerprint,
			sig.SignalType,
			sig.Title,
			sig.Description,
			sig.URL,
			sig.PublishedAt,
			sig.DiscoveredAt,
			sig.SourceType,
			sig.SourceURL,
			sig.DiscoveredAt,
		)
		if execErr != nil {
			return 0, 0, fmt.Errorf("insert signal %q: %w", sig.Fingerprint, execErr)
		}
		if tag.RowsAffected() == 0 {
			conflicts++
			continue
		}
		stored++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit signals: %w", err)
	}
	return stored, conflicts, nil
}

// RecentSignals returns stored signals discovered at or after the
// cutoff, newest first, joined with their competitor name.
func (p *Pool) RecentSignals(ctx context.Context, since time.Time) ([]StoredSignal, error) {
	const q = `
SELECT
	s.signal_id,
	c.name,
	s.signal_type,
	s.title,
	s.description,
	s.url,
	s.published_at,
	s.discovered_at,
	s.source_type,
	s.source_url
FROM signals s
JOIN competitors c ON c.competitor_id = s.competitor_id
WHERE s.discovered_at >= ?
ORDER BY s.discovered_at DESC, s.signal_id DESC
`

	rows, err := p.Query(ctx, q, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("query recent signals: %w", err)
	}
	defer rows.Close()

	items := make([]StoredSignal, 0, 64)
	for rows.Next() {
		var row StoredSignal
		if err := rows.Scan(
			&row.SignalID,
			&row.CompetitorName,
			&row.SignalType,
			&row.Title,
			&row.Description,
			&row.URL,
			&row.PublishedAt,
			&row.DiscoveredAt,
			&row.SourceType,
			&row.SourceURL,
		); err != nil {
			return nil, fmt.Errorf("scan signal row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signal rows: %w", err)
	}

	return items, nil
}

// SignalByID returns one stored signal, or ErrNoRows.
func (p *Pool) SignalByID(ctx context.Context, signalID int64) (StoredSignal, error) {
	const q = `
SELECT
	s.signal_id,
	c.name,
	s.signal_type,
	s.title,
	s.description,
	s.url,
	s.published_at,
	s.discovered_at,
	s.source_type,
	s.source_url
FROM signals s
JOIN competitors c ON c.competitor_id = s.competitor_id
WHERE s.signal_id = ?
`

	var row StoredSignal
	err := p.QueryRow(ctx, q, signalID).Scan(
		&row.SignalID,
		&row.CompetitorName,
		&row.SignalType,
		&row.Title,
		&row.Description,
		&row.URL,
		&row.PublishedAt,
		&row.DiscoveredAt,
		&row.SourceType,
		&row.SourceURL,
	)
	if err != nil {
		return StoredSignal{}, err
	}
	return row, nil
}
