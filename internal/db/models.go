package db

import "time"

// Competitor maps the competitors reference table. Seeded at setup
// time, read-only during a pipeline run.
type Competitor struct {
	CompetitorID int64     `gorm:"column:competitor_id;primaryKey;autoIncrement"`
	Name         string    `gorm:"column:name;type:text;not null;unique"`
	Domain       *string   `gorm:"column:domain;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Competitor) TableName() string { return "competitors" }

// SignalSource maps one collector endpoint for a competitor.
type SignalSource struct {
	SignalSourceID int64      `gorm:"column:signal_source_id;primaryKey;autoIncrement"`
	CompetitorID   int64      `gorm:"column:competitor_id;type:bigint;not null;index"`
	SourceType     string     `gorm:"column:source_type;type:text;not null"`
	URL            string     `gorm:"column:url;type:text;not null"`
	LastCheckedAt  *time.Time `gorm:"column:last_checked_at;type:timestamptz"`
	CreatedAt      time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (SignalSource) TableName() string { return "signal_sources" }

// Signal maps the stored signal table. Rows are created once and never
// updated; the unique index on fingerprint is the dedup backstop for
// concurrent runs.
type Signal struct {
	SignalID     int64      `gorm:"column:signal_id;primaryKey;autoIncrement"`
	CompetitorID int64      `gorm:"column:competitor_id;type:bigint;not null;index"`
	Fingerprint  string     `gorm:"column:fingerprint;type:char(64);not null;unique"`
	SignalType   string     `gorm:"column:signal_type;type:text;not null"`
	Title        string     `gorm:"column:title;type:text;not null"`
	Description  string     `gorm:"column:description;type:text;not null;default:''"`
	URL          string     `gorm:"column:url;type:text;not null;default:''"`
	PublishedAt  *time.Time `gorm:"column:published_at;type:timestamptz"`
	DiscoveredAt time.Time  `gorm:"column:discovered_at;type:timestamptz;not null;default:now()"`
	SourceType   string     `gorm:"column:source_type;type:text;not null"`
	SourceURL    string     `gorm:"column:source_url;type:text;not null;default:''"`
	CreatedAt    time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (Signal) TableName() string { return "signals" }

// RunLog maps the append-only pipeline execution ledger.
type RunLog struct {
	RunLogID      int64     `gorm:"column:run_log_id;primaryKey;autoIncrement"`
	RunAt         time.Time `gorm:"column:run_at;type:timestamptz;not null;default:now()"`
	SignalsStored int       `gorm:"column:signals_stored;type:integer;not null;default:0"`
	ErrorMessage  *string   `gorm:"column:error_message;type:text"`
	DurationMS    int64     `gorm:"column:duration_ms;type:bigint;not null;default:0"`
}

func (RunLog) TableName() string { return "run_log" }

func autoMigrateModels() []any {
	return []any{
		&Competitor{},
		&SignalSource{},
		&Signal{},
		&RunLog{},
	}
}
