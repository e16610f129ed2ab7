package signal

import "testing"

func TestParseSourceType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want SourceType
		ok   bool
	}{
		{"rss", SourceRSS, true},
		{" RSS ", SourceRSS, true},
		{"web", SourceWeb, true},
		{"news-api", SourceNewsAPI, true},
		{"aggregator-api", SourceAggregator, true},
		{"", "", false},
		{"carrier-pigeon", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseSourceType(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseSourceType(%q) = (%q, %v), want (%q, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestText_LowercasesTitleAndDescription(t *testing.T) {
	t.Parallel()

	s := Signal{Title: "Acme ACQUIRES Widgets", Description: "Deal Closed"}
	if got := s.Text(); got != "acme acquires widgets deal closed" {
		t.Fatalf("unexpected text: %q", got)
	}
}
