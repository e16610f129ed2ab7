package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"horse.fit/lookout/internal/collect"
	"horse.fit/lookout/internal/db"
	"horse.fit/lookout/internal/signal"
)

type fakeSourceTracker struct {
	sources []db.SourceRef
	listErr error
	markErr error
	marked  map[int64]time.Time
}

func (f *fakeSourceTracker) ListSources(context.Context, string) ([]db.SourceRef, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.sources, nil
}

func (f *fakeSourceTracker) MarkSourceChecked(_ context.Context, signalSourceID int64, checkedAt time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	if f.marked == nil {
		f.marked = make(map[int64]time.Time)
	}
	f.marked[signalSourceID] = checkedAt
	return nil
}

func TestMarkSourcesChecked_StampsSuccessfulSeededSources(t *testing.T) {
	t.Parallel()

	tracker := &fakeSourceTracker{
		sources: []db.SourceRef{
			{SignalSourceID: 1, CompetitorName: "Databricks", SourceType: "rss", URL: "https://a/feed"},
			{SignalSourceID: 2, CompetitorName: "Snowflake", SourceType: "web", URL: "https://b/blog"},
		},
	}

	checkedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	results := []collect.Result{
		{Source: collect.Source{CompetitorName: "Databricks", Type: signal.SourceRSS, URL: "https://a/feed"}},
		{
			Source: collect.Source{CompetitorName: "Snowflake", Type: signal.SourceWeb, URL: "https://b/blog"},
			Err:    errors.New("403"),
		},
		// Aggregator searches have no seeded source row.
		{Source: collect.Source{CompetitorName: "Databricks", Type: signal.SourceAggregator, URL: "https://hn.algolia.com/api/v1/search"}},
	}

	if err := markSourcesChecked(context.Background(), tracker, results, checkedAt); err != nil {
		t.Fatalf("markSourcesChecked: %v", err)
	}

	if len(tracker.marked) != 1 {
		t.Fatalf("marked sources = %d, want 1", len(tracker.marked))
	}
	got, ok := tracker.marked[1]
	if !ok {
		t.Fatal("successful rss source was not marked")
	}
	if !got.Equal(checkedAt) {
		t.Fatalf("checked at = %v, want %v", got, checkedAt)
	}
}

func TestMarkSourcesChecked_PropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	listBroken := &fakeSourceTracker{listErr: errors.New("list boom")}
	if err := markSourcesChecked(context.Background(), listBroken, nil, time.Now()); err == nil {
		t.Fatal("expected error when listing sources fails")
	}

	markBroken := &fakeSourceTracker{
		sources: []db.SourceRef{
			{SignalSourceID: 1, CompetitorName: "Databricks", SourceType: "rss", URL: "https://a/feed"},
		},
		markErr: errors.New("mark boom"),
	}
	results := []collect.Result{
		{Source: collect.Source{CompetitorName: "Databricks", Type: signal.SourceRSS, URL: "https://a/feed"}},
	}
	if err := markSourcesChecked(context.Background(), markBroken, results, time.Now()); err == nil {
		t.Fatal("expected error when marking a source fails")
	}
}
