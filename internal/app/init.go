package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/lookout/internal/cli"
	"horse.fit/lookout/internal/db"
	"horse.fit/lookout/internal/globaltime"
)

// runInit seeds the competitors and signal_sources tables from the
// configured competitor set. Re-running is safe: competitors are
// upserted by name and sources are only inserted when new.
func runInit(args []string) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "init does not accept positional arguments")
		return 2
	}

	cfg, err := loadConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	competitors, err := cfg.Competitors()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load competitor set: %v\n", err)
		return 1
	}

	if err := pool.SeedCompetitors(ctx, competitors, globaltime.UTC()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to seed competitors: %v\n", err)
		return 1
	}

	sourceCount := 0
	for _, competitor := range competitors {
		sourceCount += len(competitor.RSSFeeds) + len(competitor.PageURLs)
	}
	fmt.Printf("Seeded %d competitors and %d sources\n", len(competitors), sourceCount)
	return 0
}
