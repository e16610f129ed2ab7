package httpapi

import "testing"

func TestParsePositiveInt(t *testing.T) {
	t.Parallel()

	got, err := parsePositiveInt("", 24, 1, 100)
	if err != nil || got != 24 {
		t.Fatalf("empty input = %d, %v; want default 24", got, err)
	}

	got, err = parsePositiveInt(" 48 ", 24, 1, 100)
	if err != nil || got != 48 {
		t.Fatalf("valid input = %d, %v; want 48", got, err)
	}

	if _, err := parsePositiveInt("abc", 24, 1, 100); err == nil {
		t.Fatal("non-integer input accepted")
	}
	if _, err := parsePositiveInt("0", 24, 1, 100); err == nil {
		t.Fatal("below-minimum input accepted")
	}
	if _, err := parsePositiveInt("101", 24, 1, 100); err == nil {
		t.Fatal("above-maximum input accepted")
	}
}

func TestParseSignalID(t *testing.T) {
	t.Parallel()

	got, err := parseSignalID("42")
	if err != nil || got != 42 {
		t.Fatalf("parseSignalID(42) = %d, %v", got, err)
	}

	for _, bad := range []string{"", "  ", "-1", "0", "x"} {
		if _, err := parseSignalID(bad); err == nil {
			t.Fatalf("parseSignalID(%q) accepted", bad)
		}
	}
}
