package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/lookout/internal/cli"
	"horse.fit/lookout/internal/globaltime"
)

func runSignals(args []string) int {
	fs := flag.NewFlagSet("signals", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	hours := fs.Int("hours", 24, "Discovery window in hours")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "signals does not accept positional arguments")
		return 2
	}
	if *hours <= 0 {
		fmt.Fprintln(os.Stderr, "--hours must be positive")
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

	since := globaltime.UTC().Add(-time.Duration(*hours) * time.Hour)
	signals, err := pool.RecentSignals(ctx, since)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query signals: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(signals); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(signals))
	for _, sig := range signals {
		rows = append(rows, []string{
			fmt.Sprintf("%d", sig.SignalID),
			truncateForTable(sig.CompetitorName, 24),
			sig.SignalType,
			truncateForTable(sig.Title, 60),
			sig.SourceType,
			formatUTCTimestampPtr(sig.PublishedAt),
		})
	}
	if err := writeTable([]string{"id", "competitor", "type", "title", "source", "published_at"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}
