package collect

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"horse.fit/lookout/internal/signal"
)

const maxDescriptionChars = 500

// RSSCollector reads one competitor blog or news feed.
type RSSCollector struct {
	competitorName string
	feedURL        string
	lookbackDays   int
	client         *http.Client
	parser         *gofeed.Parser
}

func NewRSSCollector(competitorName, feedURL string, lookbackDays int, client *http.Client) *RSSCollector {
	return &RSSCollector{
		competitorName: competitorName,
		feedURL:        feedURL,
		lookbackDays:   lookbackDays,
		client:         client,
		parser:         gofeed.NewParser(),
	}
}

func (c *RSSCollector) Describe() Source {
	return Source{
		CompetitorName: c.competitorName,
		Type:           signal.SourceRSS,
		URL:            c.feedURL,
	}
}

// Collect fetches and parses the feed, keeping entries published inside
// the lookback window. Entries without a parsable date are dropped.
func (c *RSSCollector) Collect(ctx context.Context) ([]signal.Raw, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	cutoff := lookbackCutoff(c.lookbackDays)
	signals := make([]signal.Raw, 0, len(feed.Items))
	for _, item := range feed.Items {
		publishedAt := item.PublishedParsed
		if publishedAt == nil {
			publishedAt = item.UpdatedParsed
		}
		if publishedAt == nil || publishedAt.Before(cutoff) {
			continue
		}

		signals = append(signals, signal.Raw{
			Title:          item.Title,
			Description:    stripHTML(item.Description),
			URL:            item.Link,
			PublishedAt:    publishedAt,
			SourceType:     signal.SourceRSS,
			SourceURL:      c.feedURL,
			CompetitorName: c.competitorName,
		})
	}

	return signals, nil
}

// stripHTML reduces markup to plain text and clips it to the
// description limit.
func stripHTML(markup string) string {
	trimmed := strings.TrimSpace(markup)
	if trimmed == "" {
		return ""
	}

	text := trimmed
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) > maxDescriptionChars {
		return string(runes[:maxDescriptionChars]) + "..."
	}
	return text
}
