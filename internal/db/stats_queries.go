package db

import (
	"context"
	"fmt"
	"time"
)

// TypeCount is one signal_type bucket in the stats projection.
type TypeCount struct {
	SignalType string `json:"signal_type"`
	Count      int64  `json:"count"`
}

// CompetitorCount is one competitor bucket in the stats projection.
type CompetitorCount struct {
	CompetitorName string `json:"competitor_name"`
	Count          int64  `json:"count"`
}

// PipelineStats summarizes stored signals inside a discovery window.
type PipelineStats struct {
	WindowStart  time.Time         `json:"window_start"`
	WindowEnd    time.Time         `json:"window_end"`
	Total        int64             `json:"total"`
	ByType       []TypeCount       `json:"by_type"`
	ByCompetitor []CompetitorCount `json:"by_competitor"`
}

// QueryPipelineStats aggregates stored signals by type and competitor
// over a discovery window.
func (p *Pool) QueryPipelineStats(ctx context.Context, from, to time.Time) (PipelineStats, error) {
	stats := PipelineStats{
		WindowStart: from.UTC(),
		WindowEnd:   to.UTC(),
	}

	const byTypeQ = `
SELECT s.signal_type, COUNT(*)::BIGINT
FROM signals s
WHERE s.discovered_at >= ? AND s.discovered_at < ?
GROUP BY s.signal_type
ORDER BY 2 DESC, 1
`

	rows, err := p.Query(ctx, byTypeQ, stats.WindowStart, stats.WindowEnd)
	if err != nil {
		return PipelineStats{}, fmt.Errorf("query stats by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bucket TypeCount
		if err := rows.Scan(&bucket.SignalType, &bucket.Count); err != nil {
			return PipelineStats{}, fmt.Errorf("scan type bucket: %w", err)
		}
		stats.ByType = append(stats.ByType, bucket)
		stats.Total += bucket.Count
	}
	if err := rows.Err(); err != nil {
		return PipelineStats{}, fmt.Errorf("iterate type buckets: %w", err)
	}

	const byCompetitorQ = `
SELECT c.name, COUNT(*)::BIGINT
FROM signals s
JOIN competitors c ON c.competitor_id = s.competitor_id
WHERE s.discovered_at >= ? AND s.discovered_at < ?
GROUP BY c.name
ORDER BY 2 DESC, 1
`

	competitorRows, err := p.Query(ctx, byCompetitorQ, stats.WindowStart, stats.WindowEnd)
	if err != nil {
		return PipelineStats{}, fmt.Errorf("query stats by competitor: %w", err)
	}
	defer competitorRows.Close()

	for competitorRows.Next() {
		var bucket CompetitorCount
		if err := competitorRows.Scan(&bucket.CompetitorName, &bucket.Count); err != nil {
			return PipelineStats{}, fmt.Errorf("scan competitor bucket: %w", err)
		}
		stats.ByCompetitor = append(stats.ByCompetitor, bucket)
	}
	if err := competitorRows.Err(); err != nil {
		return PipelineStats{}, fmt.Errorf("iterate competitor buckets: %w", err)
	}

	return stats, nil
}
