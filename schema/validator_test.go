package competitorschema

import (
	"encoding/json"
	"testing"
)

func TestValidateCompetitorSet_Valid(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{
		"competitors": [
			{
				"name": "Acme",
				"domain": "acme.example",
				"rss_feeds": ["https://acme.example/blog/feed"],
				"keywords": ["Acme", "AcmeDB"]
			}
		]
	}`)

	set, err := ValidateCompetitorSet(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Competitors) != 1 {
		t.Fatalf("expected 1 competitor, got %d", len(set.Competitors))
	}
	if set.Competitors[0].Name != "Acme" {
		t.Fatalf("unexpected name: %q", set.Competitors[0].Name)
	}
}

func TestValidateCompetitorSet_RejectsMissingKeywords(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{"competitors": [{"name": "Acme"}]}`)
	if _, err := ValidateCompetitorSet(payload); err == nil {
		t.Fatalf("expected schema error for missing keywords")
	}
}

func TestValidateCompetitorSet_RejectsDuplicateNames(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{
		"competitors": [
			{"name": "Acme", "keywords": ["Acme"]},
			{"name": " Acme ", "keywords": ["AcmeDB"]}
		]
	}`)
	if _, err := ValidateCompetitorSet(payload); err == nil {
		t.Fatalf("expected duplicate name error")
	}
}

func TestValidateCompetitorSet_RejectsTrailingContent(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{"competitors": [{"name": "Acme", "keywords": ["Acme"]}]} trailing`)
	if _, err := ValidateCompetitorSet(payload); err == nil {
		t.Fatalf("expected trailing content error")
	}
}

func TestValidateCompetitorSet_RejectsEmptyPayload(t *testing.T) {
	t.Parallel()

	if _, err := ValidateCompetitorSet(json.RawMessage("  ")); err == nil {
		t.Fatalf("expected empty payload error")
	}
}
