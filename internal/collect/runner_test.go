package collect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/lookout/internal/signal"
	competitorschema "horse.fit/lookout/schema"
)

type stubCollector struct {
	source  Source
	signals []signal.Raw
	errs    []error
	calls   int
}

func (s *stubCollector) Describe() Source { return s.source }

func (s *stubCollector) Collect(context.Context) ([]signal.Raw, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return s.signals, nil
}

func TestRunnerCombinesHealthySources(t *testing.T) {
	t.Parallel()

	healthy := &stubCollector{
		source:  Source{CompetitorName: "Databricks", Type: signal.SourceRSS, URL: "https://a/feed"},
		signals: []signal.Raw{{Title: "one"}, {Title: "two"}},
	}
	broken := &stubCollector{
		source: Source{CompetitorName: "Snowflake", Type: signal.SourceWeb, URL: "https://b/blog"},
		errs:   []error{errors.New("403"), errors.New("403")},
	}

	runner := NewRunner(Policy{MaxAttempts: 2, Delay: time.Millisecond}, zerolog.Nop())
	combined, results := runner.Run(context.Background(), []Collector{healthy, broken})

	if len(combined) != 2 {
		t.Fatalf("combined signals = %d, want 2", len(combined))
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("healthy source err = %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Fatal("broken source err = nil, want failure")
	}
	if broken.calls != 2 {
		t.Fatalf("broken source calls = %d, want 2 (retried)", broken.calls)
	}
}

func TestRunnerRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	flaky := &stubCollector{
		source:  Source{CompetitorName: "Databricks", Type: signal.SourceRSS, URL: "https://a/feed"},
		signals: []signal.Raw{{Title: "late but fine"}},
		errs:    []error{errors.New("timeout"), nil},
	}

	runner := NewRunner(Policy{MaxAttempts: 3, Delay: time.Millisecond}, zerolog.Nop())
	combined, results := runner.Run(context.Background(), []Collector{flaky})

	if len(combined) != 1 {
		t.Fatalf("combined signals = %d, want 1", len(combined))
	}
	if results[0].Attempts != 2 {
		t.Fatalf("attempts = %d, want 2", results[0].Attempts)
	}
}

type cancellingCollector struct {
	source  Source
	signals []signal.Raw
	cancel  context.CancelFunc
}

func (c *cancellingCollector) Describe() Source { return c.source }

func (c *cancellingCollector) Collect(context.Context) ([]signal.Raw, error) {
	c.cancel()
	return c.signals, nil
}

func TestRunnerRecordsSourcesSkippedAfterCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := &cancellingCollector{
		source:  Source{CompetitorName: "Databricks", Type: signal.SourceRSS, URL: "https://a/feed"},
		signals: []signal.Raw{{Title: "one"}},
		cancel:  cancel,
	}
	skipped := &stubCollector{
		source:  Source{CompetitorName: "Snowflake", Type: signal.SourceWeb, URL: "https://b/blog"},
		signals: []signal.Raw{{Title: "never collected"}},
	}

	runner := NewRunner(Policy{MaxAttempts: 3, Delay: time.Millisecond}, zerolog.Nop())
	combined, results := runner.Run(ctx, []Collector{first, skipped})

	if len(combined) != 1 {
		t.Fatalf("combined signals = %d, want 1", len(combined))
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want one per configured source", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("first source err = %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, context.Canceled) {
		t.Fatalf("skipped source err = %v, want context.Canceled", results[1].Err)
	}
	if skipped.calls != 0 {
		t.Fatalf("skipped source calls = %d, want 0", skipped.calls)
	}
}

func TestBuildCollectorsCoversConfiguredSources(t *testing.T) {
	t.Parallel()

	competitors := []competitorschema.Competitor{
		{
			Name:     "Databricks",
			RSSFeeds: []string{"https://databricks.com/feed"},
			PageURLs: []string{"https://databricks.com/blog"},
			Keywords: []string{"databricks"},
		},
		{
			Name:     "Snowflake",
			Keywords: []string{"snowflake"},
		},
	}

	withoutKey := BuildCollectors(competitors, Options{LookbackDays: 1})
	// One RSS, one scraper, two HackerNews searches.
	if len(withoutKey) != 4 {
		t.Fatalf("collectors = %d, want 4", len(withoutKey))
	}

	withKey := BuildCollectors(competitors, Options{LookbackDays: 1, NewsAPIKey: "key"})
	if len(withKey) != 6 {
		t.Fatalf("collectors with news key = %d, want 6", len(withKey))
	}
}
