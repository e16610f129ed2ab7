// Package collect gathers raw competitor signals from external sources.
// Each collector covers one source for one competitor; the runner fans
// over all configured sources and keeps per-source failures from
// aborting the sweep.
package collect

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/lookout/internal/globaltime"
	"horse.fit/lookout/internal/signal"
	competitorschema "horse.fit/lookout/schema"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultUserAgent   = "lookout-collector/1.0 (+https://horse.fit/lookout)"
)

// Source identifies one collection endpoint.
type Source struct {
	CompetitorName string
	Type           signal.SourceType
	URL            string
}

// Collector fetches raw signals from a single source.
type Collector interface {
	Describe() Source
	Collect(ctx context.Context) ([]signal.Raw, error)
}

// Result is the per-source outcome of one sweep. A failed source
// carries its error; its signals slice is empty.
type Result struct {
	Source   Source
	Signals  []signal.Raw
	Attempts int
	Err      error
}

// Options configures collector construction for one sweep.
type Options struct {
	LookbackDays int
	NewsAPIKey   string
	HTTPClient   *http.Client
}

// Runner executes collectors sequentially with retry. Sources fail
// independently; the sweep always returns every signal the healthy
// sources produced.
type Runner struct {
	retry  Policy
	logger zerolog.Logger
}

func NewRunner(retry Policy, logger zerolog.Logger) *Runner {
	return &Runner{retry: retry, logger: logger}
}

// Run sweeps all collectors and returns the combined raw signals plus
// a per-source result list. Every configured source appears in the
// result list exactly once; sources skipped after cancellation carry
// the context error.
func (r *Runner) Run(ctx context.Context, collectors []Collector) ([]signal.Raw, []Result) {
	combined := make([]signal.Raw, 0, 64)
	results := make([]Result, 0, len(collectors))

	for _, collector := range collectors {
		source := collector.Describe()

		if err := ctx.Err(); err != nil {
			results = append(results, Result{Source: source, Err: err})
			r.logger.Warn().
				Str("competitor", source.CompetitorName).
				Str("source_type", string(source.Type)).
				Str("source_url", source.URL).
				Msg("source skipped, sweep cancelled")
			continue
		}

		var signals []signal.Raw
		attempts, err := r.retry.Do(ctx, func(ctx context.Context) error {
			collected, collectErr := collector.Collect(ctx)
			if collectErr != nil {
				return collectErr
			}
			signals = collected
			return nil
		})

		result := Result{Source: source, Attempts: attempts, Err: err}
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("competitor", source.CompetitorName).
				Str("source_type", string(source.Type)).
				Str("source_url", source.URL).
				Int("attempts", attempts).
				Msg("source collection failed")
		} else {
			result.Signals = signals
			combined = append(combined, signals...)
			r.logger.Info().
				Str("competitor", source.CompetitorName).
				Str("source_type", string(source.Type)).
				Int("signals", len(signals)).
				Msg("source collected")
		}
		results = append(results, result)
	}

	return combined, results
}

// BuildCollectors assembles the collector set for the configured
// competitors. RSS feeds and page URLs each get one collector; every
// competitor additionally gets a HackerNews search and, when an API key
// is present, a NewsAPI search over its keywords.
func BuildCollectors(competitors []competitorschema.Competitor, opts Options) []Collector {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	lookback := opts.LookbackDays
	if lookback <= 0 {
		lookback = 1
	}

	collectors := make([]Collector, 0, len(competitors)*3)
	for _, competitor := range competitors {
		for _, feedURL := range competitor.RSSFeeds {
			collectors = append(collectors, NewRSSCollector(competitor.Name, feedURL, lookback, client))
		}
		for _, pageURL := range competitor.PageURLs {
			collectors = append(collectors, NewWebScraper(competitor.Name, pageURL, lookback, client))
		}
		collectors = append(collectors, NewHackerNewsCollector(competitor.Name, competitor.Keywords, lookback, client))
		if opts.NewsAPIKey != "" {
			collectors = append(collectors, NewNewsAPICollector(opts.NewsAPIKey, competitor.Name, competitor.Keywords, lookback, client))
		}
	}
	return collectors
}

// lookbackCutoff is the oldest publication time a collector accepts.
func lookbackCutoff(lookbackDays int) time.Time {
	return globaltime.UTC().AddDate(0, 0, -lookbackDays)
}
