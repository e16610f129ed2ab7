package relevance

import (
	"testing"

	"horse.fit/lookout/internal/signal"
)

func testFilter() *Filter {
	return New(map[string][]string{
		"Acme":    {"Acme", "AcmeDB"},
		"Initech": {"Initech", "TPS Suite"},
	})
}

func TestCheck_AcceptsKeywordInTitle(t *testing.T) {
	t.Parallel()

	got := testFilter().Check(signal.Signal{
		CompetitorName: "Acme",
		Title:          "AcmeDB adds vector search",
	})
	if got != Accepted {
		t.Fatalf("expected Accepted, got %v", got)
	}
}

func TestCheck_AcceptsKeywordInDescriptionCaseInsensitive(t *testing.T) {
	t.Parallel()

	got := testFilter().Check(signal.Signal{
		CompetitorName: "Initech",
		Title:          "Enterprise software roundup",
		Description:    "including the tps suite refresh",
	})
	if got != Accepted {
		t.Fatalf("expected Accepted, got %v", got)
	}
}

func TestCheck_RejectsWithoutKeyword(t *testing.T) {
	t.Parallel()

	got := testFilter().Check(signal.Signal{
		CompetitorName: "Acme",
		Title:          "Weekly database news",
		Description:    "nothing about the competitor here",
	})
	if got != Irrelevant {
		t.Fatalf("expected Irrelevant, got %v", got)
	}
}

func TestCheck_UnknownCompetitor(t *testing.T) {
	t.Parallel()

	got := testFilter().Check(signal.Signal{
		CompetitorName: "Globex",
		Title:          "Globex does something",
	})
	if got != UnknownCompetitor {
		t.Fatalf("expected UnknownCompetitor, got %v", got)
	}
}

func TestCheck_EmptyKeywordSetRejectsEverything(t *testing.T) {
	t.Parallel()

	f := New(map[string][]string{"Hollow": {}})
	got := f.Check(signal.Signal{CompetitorName: "Hollow", Title: "Hollow raises round"})
	if got != Irrelevant {
		t.Fatalf("expected Irrelevant for empty keyword set, got %v", got)
	}
}
