package signal

import (
	"strings"
	"time"
)

// SourceType identifies the kind of collector a signal came from.
type SourceType string

const (
	SourceRSS        SourceType = "rss"
	SourceWeb        SourceType = "web"
	SourceNewsAPI    SourceType = "news-api"
	SourceAggregator SourceType = "aggregator-api"
)

// ParseSourceType normalizes a raw source type string. Unknown values
// return false so callers can decide whether to reject or default.
func ParseSourceType(raw string) (SourceType, bool) {
	switch SourceType(strings.ToLower(strings.TrimSpace(raw))) {
	case SourceRSS:
		return SourceRSS, true
	case SourceWeb:
		return SourceWeb, true
	case SourceNewsAPI:
		return SourceNewsAPI, true
	case SourceAggregator:
		return SourceAggregator, true
	default:
		return "", false
	}
}

// Type is the category assigned by the classifier.
type Type string

const (
	TypeAcquisition Type = "acquisition"
	TypePartnership Type = "partnership"
	TypeProduct     Type = "product"
	TypePricing     Type = "pricing"
	TypeConference  Type = "conference"
	TypeGeneral     Type = "general"
)

// TypePriority is the classification precedence, highest first. TypeGeneral
// is the fallback and never carries keywords.
var TypePriority = []Type{
	TypeAcquisition,
	TypePartnership,
	TypeProduct,
	TypePricing,
	TypeConference,
}

// Raw is an unvalidated collector record. Fields may be blank or
// whitespace-padded; the normalizer owns cleanup and rejection.
type Raw struct {
	Title          string
	Description    string
	URL            string
	PublishedAt    *time.Time
	SourceType     SourceType
	SourceURL      string
	CompetitorName string
}

// Signal is the canonical in-flight record. The pipeline stages fill
// Fingerprint and Type after normalization.
type Signal struct {
	Title          string
	Description    string
	URL            string
	PublishedAt    *time.Time
	SourceType     SourceType
	SourceURL      string
	CompetitorName string
	Fingerprint    string
	Type           Type
}

// Text returns the lowercase concatenation of title and description used
// for keyword matching.
func (s Signal) Text() string {
	return strings.ToLower(s.Title + " " + s.Description)
}
