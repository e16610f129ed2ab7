package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"horse.fit/lookout/internal/signal"
)

const (
	defaultHNSearchURL = "https://hn.algolia.com/api/v1/search"
	hnHitsPerPage      = 20
)

// HackerNewsCollector searches the Algolia HN index for stories
// mentioning a competitor's keywords.
type HackerNewsCollector struct {
	competitorName string
	keywords       []string
	lookbackDays   int
	client         *http.Client

	// SearchURL overrides the Algolia endpoint, for tests.
	SearchURL string
}

func NewHackerNewsCollector(competitorName string, keywords []string, lookbackDays int, client *http.Client) *HackerNewsCollector {
	return &HackerNewsCollector{
		competitorName: competitorName,
		keywords:       keywords,
		lookbackDays:   lookbackDays,
		client:         client,
		SearchURL:      defaultHNSearchURL,
	}
}

func (c *HackerNewsCollector) Describe() Source {
	return Source{
		CompetitorName: c.competitorName,
		Type:           signal.SourceAggregator,
		URL:            c.SearchURL,
	}
}

type hnSearchResponse struct {
	Hits []hnHit `json:"hits"`
}

type hnHit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	StoryText   string `json:"story_text"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
	CreatedAtI  int64  `json:"created_at_i"`
}

// Collect searches each keyword separately and merges the hits,
// deduplicating by story URL. A keyword whose search fails is skipped;
// the collector only errors when every keyword fails.
func (c *HackerNewsCollector) Collect(ctx context.Context) ([]signal.Raw, error) {
	if len(c.keywords) == 0 {
		return nil, nil
	}

	cutoff := lookbackCutoff(c.lookbackDays).Unix()
	seenURLs := make(map[string]struct{}, hnHitsPerPage)
	signals := make([]signal.Raw, 0, hnHitsPerPage)

	var lastErr error
	failed := 0
	for _, keyword := range c.keywords {
		hits, err := c.searchKeyword(ctx, keyword, cutoff)
		if err != nil {
			lastErr = fmt.Errorf("search %q: %w", keyword, err)
			failed++
			continue
		}

		for _, hit := range hits {
			discussionURL := "https://news.ycombinator.com/item?id=" + hit.ObjectID
			storyURL := hit.URL
			if storyURL == "" {
				storyURL = discussionURL
			}
			if _, seen := seenURLs[storyURL]; seen {
				continue
			}
			seenURLs[storyURL] = struct{}{}

			description := hit.StoryText
			if description == "" {
				description = fmt.Sprintf("HackerNews discussion with %d points and %d comments", hit.Points, hit.NumComments)
			}

			var publishedAt *time.Time
			if hit.CreatedAtI > 0 {
				created := time.Unix(hit.CreatedAtI, 0).UTC()
				publishedAt = &created
			}

			signals = append(signals, signal.Raw{
				Title:          hit.Title,
				Description:    description,
				URL:            storyURL,
				PublishedAt:    publishedAt,
				SourceType:     signal.SourceAggregator,
				SourceURL:      discussionURL,
				CompetitorName: c.competitorName,
			})
		}
	}

	if failed == len(c.keywords) {
		return nil, lastErr
	}
	return signals, nil
}

func (c *HackerNewsCollector) searchKeyword(ctx context.Context, keyword string, cutoffUnix int64) ([]hnHit, error) {
	query := url.Values{
		"query":          {keyword},
		"tags":           {"story"},
		"numericFilters": {"created_at_i>" + strconv.FormatInt(cutoffUnix, 10)},
		"hitsPerPage":    {strconv.Itoa(hnHitsPerPage)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SearchURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch search results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var parsed hnSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	return parsed.Hits, nil
}
