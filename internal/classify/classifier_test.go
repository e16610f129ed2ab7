package classify

import (
	"testing"

	"horse.fit/lookout/internal/signal"
)

func testKeywords() map[signal.Type][]string {
	return map[signal.Type][]string{
		signal.TypeAcquisition: {"acquire", "acquisition", "merger"},
		signal.TypePartnership: {"partnership", "integration", "teams up"},
		signal.TypeProduct:     {"launch", "release", "general availability"},
		signal.TypePricing:     {"pricing", "discount", "billing"},
		signal.TypeConference:  {"keynote", "summit", "conference"},
	}
}

func TestClassify_PriorityOrderWins(t *testing.T) {
	t.Parallel()

	c := New(testKeywords())

	// Matches both acquisition and product keywords.
	got := c.Classify("Acme announces acquisition", "new product launch included in the deal")
	if got != signal.TypeAcquisition {
		t.Fatalf("expected acquisition to win over product, got %q", got)
	}
}

func TestClassify_FallbackToGeneral(t *testing.T) {
	t.Parallel()

	c := New(testKeywords())
	if got := c.Classify("Quarterly results update", "financials only"); got != signal.TypeGeneral {
		t.Fatalf("expected general fallback, got %q", got)
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	t.Parallel()

	c := New(testKeywords())
	if got := c.Classify("ACME KEYNOTE AT RE:INVENT", ""); got != signal.TypeConference {
		t.Fatalf("expected conference, got %q", got)
	}
}

func TestClassify_Total(t *testing.T) {
	t.Parallel()

	c := New(map[signal.Type][]string{})
	cases := []struct{ title, description string }{
		{"", ""},
		{"anything", "at all"},
		{"unicode ünïcode", "混合テキスト"},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.title, tc.description); got != signal.TypeGeneral {
			t.Fatalf("empty table must classify %q as general, got %q", tc.title, got)
		}
	}
}

func TestBatch_PreservesOrderAndClassifiesEach(t *testing.T) {
	t.Parallel()

	c := New(testKeywords())
	signals := c.Batch([]signal.Signal{
		{Title: "Acme acquires Widgets"},
		{Title: "Acme teams up with Initech"},
		{Title: "Acme discount for startups"},
		{Title: "nothing notable"},
	})

	want := []signal.Type{
		signal.TypeAcquisition,
		signal.TypePartnership,
		signal.TypePricing,
		signal.TypeGeneral,
	}
	for i, expected := range want {
		if signals[i].Type != expected {
			t.Fatalf("signal %d: got %q want %q", i, signals[i].Type, expected)
		}
	}
}

func TestStats_CountsPerType(t *testing.T) {
	t.Parallel()

	stats := Stats([]signal.Signal{
		{Type: signal.TypeProduct},
		{Type: signal.TypeProduct},
		{Type: signal.TypePricing},
		{},
	})
	if stats[signal.TypeProduct] != 2 {
		t.Fatalf("expected 2 product signals, got %d", stats[signal.TypeProduct])
	}
	if stats[signal.TypeGeneral] != 1 {
		t.Fatalf("expected untyped signal counted as general, got %d", stats[signal.TypeGeneral])
	}
}
