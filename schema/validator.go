package competitorschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed competitors.schema.json
var competitorsSchemaJSON string

// Competitor is one tracked entity from the configuration payload.
type Competitor struct {
	Name     string   `json:"name"`
	Domain   string   `json:"domain,omitempty"`
	RSSFeeds []string `json:"rss_feeds,omitempty"`
	PageURLs []string `json:"page_urls,omitempty"`
	Keywords []string `json:"keywords"`
}

// CompetitorSet is the root of the competitors configuration payload.
type CompetitorSet struct {
	Competitors []Competitor `json:"competitors"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateCompetitorSet checks a competitors configuration payload
// against the embedded schema and returns the decoded set.
func ValidateCompetitorSet(payload json.RawMessage) (*CompetitorSet, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode competitors JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize competitors JSON: %w", err)
	}

	var set CompetitorSet
	if err := json.Unmarshal(normalized, &set); err != nil {
		return nil, fmt.Errorf("unmarshal competitors: %w", err)
	}

	if err := validateSemantics(&set); err != nil {
		return nil, err
	}

	return &set, nil
}

func validateSemantics(set *CompetitorSet) error {
	seen := make(map[string]struct{}, len(set.Competitors))
	for i := range set.Competitors {
		name := strings.TrimSpace(set.Competitors[i].Name)
		if name == "" {
			return fmt.Errorf("competitor %d: name must not be blank", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("competitor %q appears more than once", name)
		}
		seen[name] = struct{}{}
		set.Competitors[i].Name = name
	}
	return nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("competitors.schema.json", strings.NewReader(competitorsSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("competitors.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}
