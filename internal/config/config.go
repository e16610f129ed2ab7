package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"horse.fit/lookout/internal/signal"
	competitorschema "horse.fit/lookout/schema"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"LOOKOUT_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"LOOKOUT_DB_MAX_CONNS" default:"8"`

	// Collection window in days; reporting window in hours.
	LookbackDays      int `envconfig:"LOOKBACK_DAYS" default:"1"`
	ReportWindowHours int `envconfig:"REPORT_WINDOW_HOURS" default:"24"`

	CollectMaxAttempts int `envconfig:"COLLECT_MAX_ATTEMPTS" default:"3"`
	CollectRetryDelay  int `envconfig:"COLLECT_RETRY_DELAY_SECONDS" default:"2"`

	CompetitorsFile string `envconfig:"COMPETITORS_FILE" default:""`

	NewsAPIKey string `envconfig:"NEWSAPI_KEY" default:""`

	SendGridAPIKey string `envconfig:"SENDGRID_API_KEY" default:""`
	SenderEmail    string `envconfig:"SENDER_EMAIL" default:"noreply@lookout.local"`
	SenderName     string `envconfig:"SENDER_NAME" default:"Lookout CI Monitor"`
	RecipientEmail string `envconfig:"RECIPIENT_EMAIL" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("LOOKOUT_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("LOOKOUT_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("LOOKOUT_DB_MIN_CONNS (%d) cannot exceed LOOKOUT_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.LookbackDays < 1 {
		return fmt.Errorf("LOOKBACK_DAYS must be >= 1")
	}
	if c.ReportWindowHours < 1 {
		return fmt.Errorf("REPORT_WINDOW_HOURS must be >= 1")
	}
	if c.CollectMaxAttempts < 1 {
		return fmt.Errorf("COLLECT_MAX_ATTEMPTS must be >= 1")
	}
	if c.CollectRetryDelay < 0 {
		return fmt.Errorf("COLLECT_RETRY_DELAY_SECONDS must be >= 0")
	}
	return nil
}

// Competitors returns the tracked competitor set: the configured JSON
// file when COMPETITORS_FILE is set, otherwise the compiled-in defaults.
// File contents are validated against the competitors schema.
func (c *Config) Competitors() ([]competitorschema.Competitor, error) {
	path := strings.TrimSpace(c.CompetitorsFile)
	if path == "" {
		return defaultCompetitors(), nil
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read competitors file %q: %w", path, err)
	}

	set, err := competitorschema.ValidateCompetitorSet(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid competitors file %q: %w", path, err)
	}
	return set.Competitors, nil
}

// CompetitorKeywords projects the competitor set into the relevance
// filter's name → keyword map.
func CompetitorKeywords(competitors []competitorschema.Competitor) map[string][]string {
	keywords := make(map[string][]string, len(competitors))
	for _, competitor := range competitors {
		keywords[competitor.Name] = competitor.Keywords
	}
	return keywords
}

// SignalKeywords is the classification keyword table checked in
// priority order by the classifier. TypeGeneral is the fallback and
// deliberately has no entry.
func SignalKeywords() map[signal.Type][]string {
	return map[signal.Type][]string{
		signal.TypeAcquisition: {
			"acquire", "acquisition", "acquires", "acquired",
			"merger", "merge", "bought", "purchase", "buy",
			"announces acquisition",
		},
		signal.TypePartnership: {
			"partnership", "partner", "integration", "alliance",
			"collaborate", "collaboration", "joint", "team up",
			"work with", "teams up", "announces partnership",
		},
		signal.TypeProduct: {
			"launch", "release", "announce", "introducing",
			"available", "ga", "general availability", "beta",
			"preview", "feature", "deprecate", "sunset", "unveil",
			"announces", "new feature",
		},
		signal.TypePricing: {
			"pricing", "price", "tier", "plan", "cost",
			"free", "discount", "savings", "billing",
			"announces pricing", "price change",
		},
		signal.TypeConference: {
			"keynote", "conference", "summit", "event",
			"speaking", "present", "demo", "talk",
			"presents at", "speaking at",
		},
	}
}

func defaultCompetitors() []competitorschema.Competitor {
	return []competitorschema.Competitor{
		{
			Name:     "Databricks",
			Domain:   "databricks.com",
			RSSFeeds: []string{"https://www.databricks.com/blog/feed"},
			Keywords: []string{"Databricks", "Delta Lake", "lakehouse"},
		},
		{
			Name:     "Microsoft Fabric",
			Domain:   "microsoft.com",
			RSSFeeds: []string{"https://azure.microsoft.com/en-us/blog/feed/"},
			Keywords: []string{"Microsoft Fabric", "Azure Synapse", "OneLake"},
		},
		{
			Name:     "Google BigQuery",
			Domain:   "cloud.google.com",
			RSSFeeds: []string{"https://cloud.google.com/blog/feeds/posts.xml"},
			Keywords: []string{"BigQuery", "BigLake", "Vertex AI"},
		},
		{
			Name:     "Amazon Redshift",
			Domain:   "aws.amazon.com",
			RSSFeeds: []string{"https://aws.amazon.com/blogs/aws/feed/"},
			Keywords: []string{"Redshift", "Aurora", "Athena"},
		},
	}
}
