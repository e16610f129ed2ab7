package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"horse.fit/lookout/internal/cli"
)

func runCompetitors(args []string) int {
	fs := flag.NewFlagSet("competitors", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	sourceType := fs.String("source-type", "", "Filter sources by type (rss, web)")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "competitors does not accept positional arguments")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		return 2
	}

	ctx, cancel, pool, err := connectReadPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	refs, err := pool.CompetitorRefs(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query competitors: %v\n", err)
		return 1
	}
	sources, err := pool.ListSources(ctx, *sourceType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query sources: %v\n", err)
		return 1
	}

	sourcesByCompetitor := make(map[string]int, len(refs))
	for _, src := range sources {
		sourcesByCompetitor[src.CompetitorName]++
	}

	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)

	if outputFormat == outputFormatJSON {
		items := make([]map[string]any, 0, len(names))
		for _, name := range names {
			ref := refs[name]
			items = append(items, map[string]any{
				"competitor_id": ref.CompetitorID,
				"name":          ref.Name,
				"domain":        ref.Domain,
				"sources":       sourcesByCompetitor[name],
			})
		}
		if err := printJSON(items); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		ref := refs[name]
		rows = append(rows, []string{
			fmt.Sprintf("%d", ref.CompetitorID),
			ref.Name,
			ref.Domain,
			fmt.Sprintf("%d", sourcesByCompetitor[name]),
		})
	}
	if err := writeTable([]string{"id", "name", "domain", "sources"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}
