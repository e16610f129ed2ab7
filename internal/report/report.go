// Package report renders the daily competitor digest as HTML email
// content.
package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"horse.fit/lookout/internal/db"
)

//go:embed digest.html.tmpl
var digestTemplate string

// CompetitorSection is one competitor's block in the digest, signals
// newest first.
type CompetitorSection struct {
	Name    string
	Signals []db.StoredSignal
}

type digestData struct {
	DateRange    string
	TotalSignals int
	Stats        []typeStat
	Sections     []CompetitorSection
}

type typeStat struct {
	Type  string
	Count int
}

// Generator renders digests from stored signals.
type Generator struct {
	tmpl *template.Template
}

func NewGenerator() (*Generator, error) {
	tmpl, err := template.New("digest").Funcs(template.FuncMap{
		"formatTime": formatSignalTime,
	}).Parse(digestTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse digest template: %w", err)
	}
	return &Generator{tmpl: tmpl}, nil
}

// Generate renders the digest for signals discovered inside the given
// window ending at now.
func (g *Generator) Generate(signals []db.StoredSignal, windowHours int, now time.Time) (string, error) {
	data := digestData{
		DateRange:    dateRange(windowHours, now),
		TotalSignals: len(signals),
		Stats:        typeStats(signals),
		Sections:     groupByCompetitor(signals),
	}

	var out strings.Builder
	if err := g.tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return out.String(), nil
}

// Subject builds the digest email subject line.
func Subject(totalSignals int, now time.Time) string {
	return fmt.Sprintf("Competitor Intelligence Digest: %d signals · %s", totalSignals, now.Format("Jan 2, 2006"))
}

func groupByCompetitor(signals []db.StoredSignal) []CompetitorSection {
	byName := make(map[string][]db.StoredSignal)
	for _, sig := range signals {
		byName[sig.CompetitorName] = append(byName[sig.CompetitorName], sig)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	sections := make([]CompetitorSection, 0, len(names))
	for _, name := range names {
		group := byName[name]
		sort.SliceStable(group, func(i, j int) bool {
			return effectiveTime(group[i]).After(effectiveTime(group[j]))
		})
		sections = append(sections, CompetitorSection{Name: name, Signals: group})
	}
	return sections
}

func effectiveTime(sig db.StoredSignal) time.Time {
	if sig.PublishedAt != nil {
		return *sig.PublishedAt
	}
	return sig.DiscoveredAt
}

func typeStats(signals []db.StoredSignal) []typeStat {
	counts := make(map[string]int)
	for _, sig := range signals {
		counts[sig.SignalType]++
	}

	stats := make([]typeStat, 0, len(counts))
	for signalType, count := range counts {
		stats = append(stats, typeStat{Type: signalType, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Type < stats[j].Type
	})
	return stats
}

func dateRange(windowHours int, now time.Time) string {
	if windowHours == 24 {
		return fmt.Sprintf("Last 24 Hours · %s", now.Format("January 2, 2006"))
	}
	start := now.Add(-time.Duration(windowHours) * time.Hour)
	return fmt.Sprintf("%s - %s", start.Format("January 2"), now.Format("January 2, 2006"))
}

func formatSignalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("Jan 2, 2006 15:04 MST")
}
