package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	competitorschema "horse.fit/lookout/schema"
)

// CompetitorRef is the lookup row used to route signals to their
// competitor during a pipeline run.
type CompetitorRef struct {
	CompetitorID int64  `json:"competitor_id"`
	Name         string `json:"name"`
	Domain       string `json:"domain,omitempty"`
}

// SourceRef describes one configured collector endpoint.
type SourceRef struct {
	SignalSourceID int64      `json:"signal_source_id"`
	CompetitorName string     `json:"competitor_name"`
	SourceType     string     `json:"source_type"`
	URL            string     `json:"url"`
	LastCheckedAt  *time.Time `json:"last_checked_at,omitempty"`
}

// CompetitorRefs returns all competitors keyed by name.
func (p *Pool) CompetitorRefs(ctx context.Context) (map[string]CompetitorRef, error) {
	const q = `SELECT competitor_id, name, COALESCE(domain, '') FROM competitors ORDER BY name`

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query competitors: %w", err)
	}
	defer rows.Close()

	refs := make(map[string]CompetitorRef, 8)
	for rows.Next() {
		var ref CompetitorRef
		if err := rows.Scan(&ref.CompetitorID, &ref.Name, &ref.Domain); err != nil {
			return nil, fmt.Errorf("scan competitor row: %w", err)
		}
		refs[ref.Name] = ref
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate competitor rows: %w", err)
	}

	return refs, nil
}

// ListSources returns configured signal sources, optionally filtered by
// source type.
func (p *Pool) ListSources(ctx context.Context, sourceType string) ([]SourceRef, error) {
	const q = `
SELECT
	ss.signal_source_id,
	c.name,
	ss.source_type,
	ss.url,
	ss.last_checked_at
FROM signal_sources ss
JOIN competitors c ON c.competitor_id = ss.competitor_id
WHERE (? = '' OR ss.source_type = ?)
ORDER BY c.name, ss.url
`

	filter := strings.TrimSpace(strings.ToLower(sourceType))
	rows, err := p.Query(ctx, q, filter, filter)
	if err != nil {
		return nil, fmt.Errorf("query signal sources: %w", err)
	}
	defer rows.Close()

	sources := make([]SourceRef, 0, 16)
	for rows.Next() {
		var src SourceRef
		if err := rows.Scan(
			&src.SignalSourceID,
			&src.CompetitorName,
			&src.SourceType,
			&src.URL,
			&src.LastCheckedAt,
		); err != nil {
			return nil, fmt.Errorf("scan source row: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source rows: %w", err)
	}

	return sources, nil
}

// MarkSourceChecked records a successful collection pass for a source.
func (p *Pool) MarkSourceChecked(ctx context.Context, signalSourceID int64, checkedAt time.Time) error {
	const q = `UPDATE signal_sources SET last_checked_at = ? WHERE signal_source_id = ?`
	if _, err := p.Exec(ctx, q, checkedAt.UTC(), signalSourceID); err != nil {
		return fmt.Errorf("mark source checked: %w", err)
	}
	return nil
}

// SeedCompetitors upserts the configured competitor set and their RSS
// and page sources. Existing competitors keep their IDs; sources are
// inserted only when the (competitor, type, url) triple is new.
func (p *Pool) SeedCompetitors(ctx context.Context, competitors []competitorschema.Competitor, now time.Time) error {
	if len(competitors) == 0 {
		return nil
	}

	tx, err := p.BeginTx(ctx, TxOptions{})
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	const upsertCompetitor = `
INSERT INTO competitors (name, domain, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (name) DO UPDATE SET domain = EXCLUDED.domain, updated_at = EXCLUDED.updated_at
RETURNING competitor_id
`

	const insertSource = `
INSERT INTO signal_sources (competitor_id, source_type, url, created_at)
SELECT ?, ?, ?, ?
WHERE NOT EXISTS (
	SELECT 1 FROM signal_sources
	WHERE competitor_id = ? AND source_type = ? AND url = ?
)
`

	ts := now.UTC()
	for _, competitor := range competitors {
		var domain *string
		if trimmed := strings.TrimSpace(competitor.Domain); trimmed != "" {
			domain = &trimmed
		}

		var competitorID int64
		if err := tx.QueryRow(ctx, upsertCompetitor, competitor.Name, domain, ts, ts).Scan(&competitorID); err != nil {
			return fmt.Errorf("upsert competitor %q: %w", competitor.Name, err)
		}

		for _, feedURL := range competitor.RSSFeeds {
			if _, err := tx.Exec(ctx, insertSource, competitorID, "rss", feedURL, ts, competitorID, "rss", feedURL); err != nil {
				return fmt.Errorf("insert rss source %q: %w", feedURL, err)
			}
		}
		for _, pageURL := range competitor.PageURLs {
			if _, err := tx.Exec(ctx, insertSource, competitorID, "web", pageURL, ts, competitorID, "web", pageURL); err != nil {
				return fmt.Errorf("insert web source %q: %w", pageURL, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
