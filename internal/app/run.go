package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/lookout/internal/classify"
	"horse.fit/lookout/internal/cli"
	"horse.fit/lookout/internal/collect"
	"horse.fit/lookout/internal/config"
	"horse.fit/lookout/internal/db"
	"horse.fit/lookout/internal/globaltime"
	"horse.fit/lookout/internal/logging"
	"horse.fit/lookout/internal/mail"
	"horse.fit/lookout/internal/pipeline"
	"horse.fit/lookout/internal/relevance"
	"horse.fit/lookout/internal/report"
)

// runPipeline is the end-to-end sweep: collect from every configured
// source, push the batch through the ingestion pipeline, then render
// and optionally email the digest.
func runPipeline(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Minute, "Overall run timeout")
	lookbackDays := fs.Int("lookback-days", 0, "Collection lookback in days (defaults to LOOKBACK_DAYS)")
	skipEmail := fs.Bool("no-email", false, "Skip digest email delivery")
	collectOnly := fs.Bool("collect-only", false, "Collect and store signals without sending the digest")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "run does not accept positional arguments")
		return 2
	}

	cfg, err := loadConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("run failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	competitors, err := cfg.Competitors()
	if err != nil {
		logger.Error().Err(err).Msg("failed to load competitor set")
		fmt.Fprintf(os.Stderr, "Failed to load competitor set: %v\n", err)
		return 1
	}
	if err := pool.SeedCompetitors(ctx, competitors, globaltime.UTC()); err != nil {
		logger.Error().Err(err).Msg("failed to seed competitors")
		fmt.Fprintf(os.Stderr, "Failed to seed competitors: %v\n", err)
		return 1
	}

	lookback := cfg.LookbackDays
	if *lookbackDays > 0 {
		lookback = *lookbackDays
	}

	collectors := collect.BuildCollectors(competitors, collect.Options{
		LookbackDays: lookback,
		NewsAPIKey:   cfg.NewsAPIKey,
	})
	runner := collect.NewRunner(collect.Policy{
		MaxAttempts: cfg.CollectMaxAttempts,
		Delay:       time.Duration(cfg.CollectRetryDelay) * time.Second,
	}, logger)

	logger.Info().
		Int("competitors", len(competitors)).
		Int("sources", len(collectors)).
		Int("lookback_days", lookback).
		Msg("collection sweep started")

	raws, sourceResults := runner.Run(ctx, collectors)
	failedSources := 0
	for _, result := range sourceResults {
		if result.Err != nil {
			failedSources++
		}
	}

	if err := markSourcesChecked(ctx, pool, sourceResults, globaltime.UTC()); err != nil {
		logger.Warn().Err(err).Msg("failed to record source check times")
	}

	svc := pipeline.NewService(
		pool,
		classify.New(config.SignalKeywords()),
		relevance.New(config.CompetitorKeywords(competitors)),
		logger,
	)

	result, err := svc.Run(ctx, raws)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline run failed: %v\n", err)
		return 1
	}

	fmt.Printf(
		"Run complete: %d collected, %d stored, %d duplicates, %d irrelevant, %d sources failed\n",
		result.Counters.Collected,
		result.Counters.Stored,
		result.Counters.BatchDuplicates+result.Counters.StoreDuplicates+result.Counters.Conflicts,
		result.Counters.Irrelevant,
		failedSources,
	)

	if *collectOnly {
		return 0
	}

	if code := sendDigest(ctx, pool, cfg, logger, *skipEmail); code != 0 {
		return code
	}
	return 0
}

// sourceTracker is the slice of the store the freshness update needs.
type sourceTracker interface {
	ListSources(ctx context.Context, sourceType string) ([]db.SourceRef, error)
	MarkSourceChecked(ctx context.Context, signalSourceID int64, checkedAt time.Time) error
}

// markSourcesChecked records checkedAt on every seeded source whose
// collector succeeded this sweep. HackerNews and NewsAPI searches have
// no seeded row and are skipped.
func markSourcesChecked(ctx context.Context, store sourceTracker, results []collect.Result, checkedAt time.Time) error {
	sources, err := store.ListSources(ctx, "")
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	byKey := make(map[string]int64, len(sources))
	for _, src := range sources {
		byKey[sourceKey(src.CompetitorName, src.SourceType, src.URL)] = src.SignalSourceID
	}

	for _, result := range results {
		if result.Err != nil {
			continue
		}
		id, ok := byKey[sourceKey(result.Source.CompetitorName, string(result.Source.Type), result.Source.URL)]
		if !ok {
			continue
		}
		if err := store.MarkSourceChecked(ctx, id, checkedAt); err != nil {
			return fmt.Errorf("mark source %d checked: %w", id, err)
		}
	}
	return nil
}

func sourceKey(competitor, sourceType, url string) string {
	return competitor + "|" + sourceType + "|" + url
}

// sendDigest renders the digest over the report window and delivers it
// unless delivery is skipped or unconfigured.
func sendDigest(ctx context.Context, pool *db.Pool, cfg *config.Config, logger zerolog.Logger, skipEmail bool) int {
	now := globaltime.UTC()
	since := now.Add(-time.Duration(cfg.ReportWindowHours) * time.Hour)

	signals, err := pool.RecentSignals(ctx, since)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load signals for digest")
		fmt.Fprintf(os.Stderr, "Failed to load signals for digest: %v\n", err)
		return 1
	}

	generator, err := report.NewGenerator()
	if err != nil {
		logger.Error().Err(err).Msg("failed to build digest generator")
		fmt.Fprintf(os.Stderr, "Failed to build digest generator: %v\n", err)
		return 1
	}
	html, err := generator.Generate(signals, cfg.ReportWindowHours, now)
	if err != nil {
		logger.Error().Err(err).Msg("failed to render digest")
		fmt.Fprintf(os.Stderr, "Failed to render digest: %v\n", err)
		return 1
	}

	if skipEmail {
		logger.Info().Int("signals", len(signals)).Msg("digest rendered, email delivery skipped")
		return 0
	}

	sender := mail.NewSender(mail.Config{
		APIKey:         cfg.SendGridAPIKey,
		SenderEmail:    cfg.SenderEmail,
		SenderName:     cfg.SenderName,
		RecipientEmail: cfg.RecipientEmail,
	}, logger)

	if err := sender.SendDigest(report.Subject(len(signals), now), html); err != nil {
		logger.Error().Err(err).Msg("digest delivery failed")
		fmt.Fprintf(os.Stderr, "Digest delivery failed: %v\n", err)
		return 1
	}
	return 0
}
