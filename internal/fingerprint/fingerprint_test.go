package fingerprint

import (
	"testing"
	"time"

	"horse.fit/lookout/internal/signal"
)

func TestCompute_Deterministic(t *testing.T) {
	t.Parallel()

	published := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	first := Compute("Acme acquires Widgets Inc", "https://example.com/acme", &published)
	second := Compute("Acme acquires Widgets Inc", "https://example.com/acme", &published)
	if first != second {
		t.Fatalf("fingerprint not deterministic: %q vs %q", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}
}

func TestCompute_SensitiveToEachField(t *testing.T) {
	t.Parallel()

	published := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	later := published.Add(time.Second)
	base := Compute("title", "https://example.com/a", &published)

	if got := Compute("title!", "https://example.com/a", &published); got == base {
		t.Fatalf("changing title did not change fingerprint")
	}
	if got := Compute("title", "https://example.com/b", &published); got == base {
		t.Fatalf("changing url did not change fingerprint")
	}
	if got := Compute("title", "https://example.com/a", &later); got == base {
		t.Fatalf("changing date did not change fingerprint")
	}
	if got := Compute("title", "https://example.com/a", nil); got == base {
		t.Fatalf("nil date did not change fingerprint")
	}
}

func TestCompute_CanonicalizesDatePrecisionAndZone(t *testing.T) {
	t.Parallel()

	utc := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	subSecond := utc.Add(350 * time.Millisecond)
	offset := utc.In(time.FixedZone("CET", 3600))

	base := Compute("title", "https://example.com/a", &utc)
	if got := Compute("title", "https://example.com/a", &subSecond); got != base {
		t.Fatalf("sub-second precision changed the fingerprint")
	}
	if got := Compute("title", "https://example.com/a", &offset); got != base {
		t.Fatalf("zone representation changed the fingerprint")
	}
}

func TestCompute_SeparatorKeepsFieldsDistinct(t *testing.T) {
	t.Parallel()

	if Compute("a|b", "c", nil) == Compute("a", "b|c", nil) {
		t.Fatalf("field boundary ambiguity detected")
	}
}

func TestSign_FillsEverySignal(t *testing.T) {
	t.Parallel()

	signals := Sign([]signal.Signal{
		{Title: "one", URL: "https://example.com/1"},
		{Title: "two", URL: "https://example.com/2"},
	})
	if signals[0].Fingerprint == "" || signals[1].Fingerprint == "" {
		t.Fatalf("expected fingerprints to be filled")
	}
	if signals[0].Fingerprint == signals[1].Fingerprint {
		t.Fatalf("distinct signals share a fingerprint")
	}
}
