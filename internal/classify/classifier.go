package classify

import (
	"strings"

	"horse.fit/lookout/internal/signal"
)

// Classifier assigns a signal type by ordered keyword matching. The
// keyword table is injected at construction; there is no ambient state.
type Classifier struct {
	keywords map[signal.Type][]string
}

// New builds a classifier from a keyword table keyed by signal type.
// Keywords are lowercased once up front. Types missing from the table
// simply never match.
func New(keywords map[signal.Type][]string) *Classifier {
	lowered := make(map[signal.Type][]string, len(keywords))
	for signalType, list := range keywords {
		terms := make([]string, 0, len(list))
		for _, keyword := range list {
			keyword = strings.ToLower(strings.TrimSpace(keyword))
			if keyword == "" {
				continue
			}
			terms = append(terms, keyword)
		}
		lowered[signalType] = terms
	}
	return &Classifier{keywords: lowered}
}

// Classify maps title and description to exactly one signal type. Types
// are checked in priority order and the first match wins; a text that
// matches no configured keyword is TypeGeneral. Total: never errors.
func (c *Classifier) Classify(title, description string) signal.Type {
	text := strings.ToLower(title + " " + description)
	for _, signalType := range signal.TypePriority {
		for _, keyword := range c.keywords[signalType] {
			if strings.Contains(text, keyword) {
				return signalType
			}
		}
	}
	return signal.TypeGeneral
}

// Batch classifies every signal independently, preserving order.
func (c *Classifier) Batch(signals []signal.Signal) []signal.Signal {
	for i := range signals {
		signals[i].Type = c.Classify(signals[i].Title, signals[i].Description)
	}
	return signals
}

// Stats counts signals per assigned type.
func Stats(signals []signal.Signal) map[signal.Type]int {
	stats := make(map[signal.Type]int)
	for _, sig := range signals {
		signalType := sig.Type
		if signalType == "" {
			signalType = signal.TypeGeneral
		}
		stats[signalType]++
	}
	return stats
}
