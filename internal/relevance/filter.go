package relevance

import (
	"strings"

	"horse.fit/lookout/internal/signal"
)

// Outcome says what the filter decided for a single signal.
type Outcome int

const (
	// Accepted means the signal mentions at least one competitor keyword.
	Accepted Outcome = iota
	// Irrelevant means the signal mentions none of its competitor's keywords.
	Irrelevant
	// UnknownCompetitor means the signal's competitor name is not configured.
	// Reported as a warning by the orchestrator; never fatal.
	UnknownCompetitor
)

// Filter accepts signals that mention at least one of their competitor's
// keywords. Keyword sets are reference data, read-only during a run.
type Filter struct {
	keywords map[string][]string
}

// New builds a filter from competitor name → keyword set. Names are
// matched exactly (they are the routing key assigned by collectors);
// keywords match case-insensitively as substrings.
func New(competitorKeywords map[string][]string) *Filter {
	keywords := make(map[string][]string, len(competitorKeywords))
	for name, list := range competitorKeywords {
		terms := make([]string, 0, len(list))
		for _, keyword := range list {
			keyword = strings.ToLower(strings.TrimSpace(keyword))
			if keyword == "" {
				continue
			}
			terms = append(terms, keyword)
		}
		keywords[strings.TrimSpace(name)] = terms
	}
	return &Filter{keywords: keywords}
}

// Check classifies one signal against its competitor's keyword set.
func (f *Filter) Check(sig signal.Signal) Outcome {
	terms, known := f.keywords[sig.CompetitorName]
	if !known {
		return UnknownCompetitor
	}

	text := sig.Text()
	for _, keyword := range terms {
		if strings.Contains(text, keyword) {
			return Accepted
		}
	}
	return Irrelevant
}
