package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"horse.fit/lookout/internal/signal"
)

const maxScrapedArticles = 20

// WebScraper extracts signals from pages without a feed. It targets the
// common blog and news listing patterns: article containers with a
// heading, a link, and optionally an excerpt and a publication time.
type WebScraper struct {
	competitorName string
	pageURL        string
	lookbackDays   int
	client         *http.Client
}

func NewWebScraper(competitorName, pageURL string, lookbackDays int, client *http.Client) *WebScraper {
	return &WebScraper{
		competitorName: competitorName,
		pageURL:        pageURL,
		lookbackDays:   lookbackDays,
		client:         client,
	}
}

func (s *WebScraper) Describe() Source {
	return Source{
		CompetitorName: s.competitorName,
		Type:           signal.SourceWeb,
		URL:            s.pageURL,
	}
}

func (s *WebScraper) Collect(ctx context.Context) ([]signal.Raw, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build page request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	base, err := url.Parse(s.pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	cutoff := lookbackCutoff(s.lookbackDays)
	signals := make([]signal.Raw, 0, maxScrapedArticles)

	doc.Find("article, div[class*=post], div[class*=article], div[class*=blog], div[class*=news], div[class*=item]").
		EachWithBreak(func(_ int, container *goquery.Selection) bool {
			raw, ok := s.parseArticle(container, base)
			if !ok {
				return true
			}
			if raw.PublishedAt != nil && raw.PublishedAt.Before(cutoff) {
				return true
			}
			signals = append(signals, raw)
			return len(signals) < maxScrapedArticles
		})

	return signals, nil
}

func (s *WebScraper) parseArticle(container *goquery.Selection, base *url.URL) (signal.Raw, bool) {
	heading := container.Find("h1, h2, h3").First()
	if heading.Length() == 0 {
		return signal.Raw{}, false
	}
	title := strings.TrimSpace(heading.Text())
	if title == "" {
		return signal.Raw{}, false
	}

	link := heading.Find("a").First()
	if link.Length() == 0 {
		link = container.Find("a").First()
	}
	href, _ := link.Attr("href")
	articleURL := resolveLink(base, href)

	description := ""
	excerpt := container.Find("p[class*=summary], p[class*=excerpt], p[class*=description], div[class*=excerpt], div[class*=summary]").First()
	if excerpt.Length() == 0 {
		excerpt = container.Find("p").First()
	}
	if excerpt.Length() > 0 {
		description = stripHTML(strings.TrimSpace(excerpt.Text()))
	}

	// A missing date is reported as nil; normalization keeps undated
	// scrape hits because listing pages rarely carry timestamps.
	publishedAt := parseArticleTime(container)

	return signal.Raw{
		Title:          title,
		Description:    description,
		URL:            articleURL,
		PublishedAt:    publishedAt,
		SourceType:     signal.SourceWeb,
		SourceURL:      s.pageURL,
		CompetitorName: s.competitorName,
	}, true
}

func parseArticleTime(container *goquery.Selection) *time.Time {
	node := container.Find("time").First()
	if node.Length() == 0 {
		node = container.Find("span[class*=date]").First()
	}
	if node.Length() == 0 {
		return nil
	}

	candidate, _ := node.Attr("datetime")
	if candidate == "" {
		candidate = strings.TrimSpace(node.Text())
	}
	if candidate == "" {
		return nil
	}

	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
		"January 2, 2006",
		"Jan 2, 2006",
		"02 Jan 2006",
	} {
		if parsed, err := time.Parse(layout, candidate); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
