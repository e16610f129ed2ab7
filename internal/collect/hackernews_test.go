package collect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"horse.fit/lookout/internal/signal"
)

func TestHackerNewsCollectorDeduplicatesByURL(t *testing.T) {
	t.Parallel()

	created := time.Now().UTC().Add(-3 * time.Hour).Unix()
	response := hnSearchResponse{Hits: []hnHit{
		{
			ObjectID:    "100",
			Title:       "Databricks ships new runtime",
			URL:         "https://databricks.com/runtime",
			Points:      120,
			NumComments: 45,
			CreatedAtI:  created,
		},
		{
			ObjectID:   "101",
			Title:      "Databricks ships new runtime (dupe)",
			URL:        "https://databricks.com/runtime",
			CreatedAtI: created,
		},
		{
			ObjectID:   "102",
			Title:      "Ask HN: thoughts on lakehouses?",
			StoryText:  "Curious what people run in production.",
			CreatedAtI: created,
		},
	}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("tags"); got != "story" {
			t.Errorf("tags = %q, want story", got)
		}
		_ = json.NewEncoder(w).Encode(response)
	}))
	defer srv.Close()

	collector := NewHackerNewsCollector("Databricks", []string{"databricks"}, 1, srv.Client())
	collector.SearchURL = srv.URL

	signals, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(signals) != 2 {
		t.Fatalf("signals = %d, want 2 (duplicate URL dropped)", len(signals))
	}

	first := signals[0]
	if first.Description != "HackerNews discussion with 120 points and 45 comments" {
		t.Fatalf("description = %q", first.Description)
	}
	if first.SourceType != signal.SourceAggregator {
		t.Fatalf("source type = %q", first.SourceType)
	}
	if first.SourceURL != "https://news.ycombinator.com/item?id=100" {
		t.Fatalf("source url = %q", first.SourceURL)
	}

	// Story without an outbound URL falls back to the discussion page.
	second := signals[1]
	if second.URL != "https://news.ycombinator.com/item?id=102" {
		t.Fatalf("fallback url = %q", second.URL)
	}
	if second.Description != "Curious what people run in production." {
		t.Fatalf("story text description = %q", second.Description)
	}
}

func TestHackerNewsCollectorToleratesPartialFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "throttled", http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(hnSearchResponse{Hits: []hnHit{{
			ObjectID:   "7",
			Title:      "Snowflake pricing changes",
			URL:        "https://example.com/pricing",
			CreatedAtI: time.Now().UTC().Unix(),
		}}})
	}))
	defer srv.Close()

	collector := NewHackerNewsCollector("Snowflake", []string{"snowflake", "snowpark"}, 1, srv.Client())
	collector.SearchURL = srv.URL

	signals, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v, want partial success", err)
	}
	if len(signals) != 1 {
		t.Fatalf("signals = %d, want 1", len(signals))
	}
}

func TestHackerNewsCollectorFailsWhenAllKeywordsFail(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	collector := NewHackerNewsCollector("Snowflake", []string{"snowflake"}, 1, srv.Client())
	collector.SearchURL = srv.URL

	if _, err := collector.Collect(context.Background()); err == nil {
		t.Fatal("Collect() error = nil, want total failure")
	}
}
