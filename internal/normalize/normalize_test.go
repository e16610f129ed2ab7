package normalize

import (
	"testing"
	"time"

	"horse.fit/lookout/internal/signal"
)

func TestSignal_TrimsAllStringFields(t *testing.T) {
	t.Parallel()

	sig, ok := Signal(signal.Raw{
		Title:          "  Acme launches Widgets  ",
		Description:    "\tBig news.\n",
		URL:            " https://acme.test/widgets ",
		CompetitorName: " Acme ",
	}, " https://acme.test/blog ", signal.SourceRSS)
	if !ok {
		t.Fatalf("expected record to be kept")
	}
	if sig.Title != "Acme launches Widgets" {
		t.Fatalf("title not trimmed: %q", sig.Title)
	}
	if sig.Description != "Big news." {
		t.Fatalf("description not trimmed: %q", sig.Description)
	}
	if sig.URL != "https://acme.test/widgets" {
		t.Fatalf("url not trimmed: %q", sig.URL)
	}
	if sig.CompetitorName != "Acme" {
		t.Fatalf("competitor not trimmed: %q", sig.CompetitorName)
	}
	if sig.SourceURL != "https://acme.test/blog" {
		t.Fatalf("source url not resolved: %q", sig.SourceURL)
	}
	if sig.SourceType != signal.SourceRSS {
		t.Fatalf("source type not resolved: %q", sig.SourceType)
	}
}

func TestSignal_DropsWhenTitleAndURLBothEmpty(t *testing.T) {
	t.Parallel()

	if _, ok := Signal(signal.Raw{Title: "   ", URL: "\t"}, "", signal.SourceWeb); ok {
		t.Fatalf("expected record with no title and no url to be dropped")
	}
	if _, ok := Signal(signal.Raw{Title: "has title"}, "", signal.SourceWeb); !ok {
		t.Fatalf("expected record with a title to be kept")
	}
	if _, ok := Signal(signal.Raw{URL: "https://acme.test"}, "", signal.SourceWeb); !ok {
		t.Fatalf("expected record with a url to be kept")
	}
}

func TestSignal_ConvertsPublishedAtToUTC(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+5", 5*3600)
	local := time.Date(2026, 3, 14, 10, 30, 0, 0, loc)
	sig, ok := Signal(signal.Raw{Title: "t", PublishedAt: &local}, "", signal.SourceRSS)
	if !ok {
		t.Fatalf("expected record to be kept")
	}
	if sig.PublishedAt == nil {
		t.Fatalf("expected published timestamp to survive")
	}
	if sig.PublishedAt.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", sig.PublishedAt.Location())
	}
	if !sig.PublishedAt.Equal(local) {
		t.Fatalf("instant changed: got %v want %v", sig.PublishedAt, local)
	}
}

func TestSignal_NilPublishedAtStaysNil(t *testing.T) {
	t.Parallel()

	sig, ok := Signal(signal.Raw{Title: "t"}, "", signal.SourceRSS)
	if !ok {
		t.Fatalf("expected record to be kept")
	}
	if sig.PublishedAt != nil {
		t.Fatalf("expected nil published timestamp, got %v", sig.PublishedAt)
	}
}

func TestBatch_DropsUnusableAndPreservesOrder(t *testing.T) {
	t.Parallel()

	got := Batch([]signal.Raw{
		{Title: "first", SourceType: signal.SourceRSS},
		{Title: "  ", URL: ""},
		{Title: "second", SourceType: signal.SourceWeb},
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(got))
	}
	if got[0].Title != "first" || got[1].Title != "second" {
		t.Fatalf("order not preserved: %q, %q", got[0].Title, got[1].Title)
	}
}
