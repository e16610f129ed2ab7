package normalize

import (
	"strings"
	"time"

	"horse.fit/lookout/internal/signal"
)

// Signal converts one raw collector record into the canonical form.
// All string fields are trimmed and absent strings become empty strings.
// A record with neither title nor url is unusable (it can neither be
// fingerprinted nor displayed), so the second return is false and the
// caller drops it.
func Signal(raw signal.Raw, sourceURL string, sourceType signal.SourceType) (signal.Signal, bool) {
	title := strings.TrimSpace(raw.Title)
	url := strings.TrimSpace(raw.URL)
	if title == "" && url == "" {
		return signal.Signal{}, false
	}

	resolvedSourceURL := strings.TrimSpace(raw.SourceURL)
	if resolvedSourceURL == "" {
		resolvedSourceURL = strings.TrimSpace(sourceURL)
	}

	resolvedSourceType := raw.SourceType
	if resolvedSourceType == "" {
		resolvedSourceType = sourceType
	}

	return signal.Signal{
		Title:          title,
		Description:    strings.TrimSpace(raw.Description),
		URL:            url,
		PublishedAt:    normalizePublishedAt(raw.PublishedAt),
		SourceType:     resolvedSourceType,
		SourceURL:      resolvedSourceURL,
		CompetitorName: strings.TrimSpace(raw.CompetitorName),
	}, true
}

// Batch normalizes a collected batch, dropping unusable records and
// preserving collection order.
func Batch(raws []signal.Raw) []signal.Signal {
	normalized := make([]signal.Signal, 0, len(raws))
	for _, raw := range raws {
		sig, ok := Signal(raw, raw.SourceURL, raw.SourceType)
		if !ok {
			continue
		}
		normalized = append(normalized, sig)
	}
	return normalized
}

func normalizePublishedAt(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
