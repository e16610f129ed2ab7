package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"horse.fit/lookout/internal/globaltime"
	"horse.fit/lookout/internal/signal"
)

const (
	defaultNewsAPIURL     = "https://newsapi.org/v2/everything"
	newsAPIPageSize       = 100
	newsAPIDateLayout     = "2006-01-02"
	newsAPIStatusOK       = "ok"
	newsAPIKeyPlaceholder = "your_newsapi_key_here"
)

// NewsAPICollector searches the NewsAPI article index for a
// competitor's keywords. Without a usable API key it collects nothing.
type NewsAPICollector struct {
	apiKey         string
	competitorName string
	keywords       []string
	lookbackDays   int
	client         *http.Client

	// EverythingURL overrides the NewsAPI endpoint, for tests.
	EverythingURL string
}

func NewNewsAPICollector(apiKey, competitorName string, keywords []string, lookbackDays int, client *http.Client) *NewsAPICollector {
	return &NewsAPICollector{
		apiKey:         apiKey,
		competitorName: competitorName,
		keywords:       keywords,
		lookbackDays:   lookbackDays,
		client:         client,
		EverythingURL:  defaultNewsAPIURL,
	}
}

func (c *NewsAPICollector) Describe() Source {
	return Source{
		CompetitorName: c.competitorName,
		Type:           signal.SourceNewsAPI,
		URL:            c.EverythingURL,
	}
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

func (c *NewsAPICollector) Collect(ctx context.Context) ([]signal.Raw, error) {
	if strings.TrimSpace(c.apiKey) == "" || c.apiKey == newsAPIKeyPlaceholder {
		return nil, nil
	}
	if len(c.keywords) == 0 {
		return nil, nil
	}

	now := globaltime.UTC()
	query := url.Values{
		"q":        {strings.Join(c.keywords, " OR ")},
		"from":     {now.AddDate(0, 0, -c.lookbackDays).Format(newsAPIDateLayout)},
		"to":       {now.Format(newsAPIDateLayout)},
		"language": {"en"},
		"sortBy":   {"publishedAt"},
		"pageSize": {fmt.Sprintf("%d", newsAPIPageSize)},
		"apiKey":   {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.EverythingURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build news request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news search returned status %d", resp.StatusCode)
	}

	var parsed newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode news response: %w", err)
	}
	if parsed.Status != newsAPIStatusOK {
		return nil, fmt.Errorf("news search rejected: %s", parsed.Message)
	}

	signals := make([]signal.Raw, 0, len(parsed.Articles))
	for _, article := range parsed.Articles {
		description := article.Description
		if description == "" {
			description = article.Content
		}

		var publishedAt *time.Time
		if article.PublishedAt != "" {
			if parsedAt, parseErr := time.Parse(time.RFC3339, article.PublishedAt); parseErr == nil {
				utc := parsedAt.UTC()
				publishedAt = &utc
			}
		}

		signals = append(signals, signal.Raw{
			Title:          article.Title,
			Description:    description,
			URL:            article.URL,
			PublishedAt:    publishedAt,
			SourceType:     signal.SourceNewsAPI,
			SourceURL:      article.URL,
			CompetitorName: c.competitorName,
		})
	}

	return signals, nil
}
