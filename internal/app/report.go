package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/lookout/internal/cli"
	"horse.fit/lookout/internal/globaltime"
	"horse.fit/lookout/internal/logging"
	"horse.fit/lookout/internal/mail"
	"horse.fit/lookout/internal/report"
)

// runReport renders the digest for a recent window. By default the
// HTML goes to stdout or a file; --send delivers it by email instead.
func runReport(args []string) int {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 60*time.Second, "Command timeout")
	hours := fs.Int("hours", 0, "Report window in hours (defaults to REPORT_WINDOW_HOURS)")
	output := fs.String("output", "", "Write HTML to this file instead of stdout")
	send := fs.Bool("send", false, "Email the digest to the configured recipient")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "report does not accept positional arguments")
		return 2
	}

	cfg, err := loadConfig(envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	windowHours := cfg.ReportWindowHours
	if *hours > 0 {
		windowHours = *hours
	}

	ctx, cancel, pool, err := connectReadPool(*timeout, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	now := globaltime.UTC()
	signals, err := pool.RecentSignals(ctx, now.Add(-time.Duration(windowHours)*time.Hour))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query signals: %v\n", err)
		return 1
	}

	generator, err := report.NewGenerator()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build digest generator: %v\n", err)
		return 1
	}
	html, err := generator.Generate(signals, windowHours, now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render digest: %v\n", err)
		return 1
	}

	if *send {
		logger, err := logging.New(cfg.Environment, cfg.LogLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
			return 1
		}
		sender := mail.NewSender(mail.Config{
			APIKey:         cfg.SendGridAPIKey,
			SenderEmail:    cfg.SenderEmail,
			SenderName:     cfg.SenderName,
			RecipientEmail: cfg.RecipientEmail,
		}, logger)
		if !sender.Enabled() {
			fmt.Fprintln(os.Stderr, "Email delivery is not configured (SENDGRID_API_KEY, RECIPIENT_EMAIL)")
			return 1
		}
		if err := sender.SendDigest(report.Subject(len(signals), now), html); err != nil {
			fmt.Fprintf(os.Stderr, "Digest delivery failed: %v\n", err)
			return 1
		}
		fmt.Printf("Digest with %d signals sent\n", len(signals))
		return 0
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(html), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write digest: %v\n", err)
			return 1
		}
		fmt.Printf("Digest with %d signals written to %s\n", len(signals), *output)
		return 0
	}

	fmt.Println(html)
	return 0
}
