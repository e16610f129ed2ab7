package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/lookout/internal/classify"
	"horse.fit/lookout/internal/db"
	"horse.fit/lookout/internal/dedup"
	"horse.fit/lookout/internal/fingerprint"
	"horse.fit/lookout/internal/globaltime"
	"horse.fit/lookout/internal/normalize"
	"horse.fit/lookout/internal/relevance"
	"horse.fit/lookout/internal/signal"
)

// State is the orchestrator's position in a run. Transitions are
// strictly sequential; StateFailed is terminal and reachable from any
// stage.
type State string

const (
	StateCollecting         State = "collecting"
	StateNormalizing        State = "normalizing"
	StateDedupingBatch      State = "deduping_batch"
	StateClassifying        State = "classifying"
	StateFilteringRelevance State = "filtering_relevance"
	StateDedupingStore      State = "deduping_store"
	StateCommitting         State = "committing"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// Store is the persistence boundary of a run. The store owns signal
// identity: its unique fingerprint constraint is the correctness
// backstop, and all query results are detached value structs.
type Store interface {
	ExistingFingerprints(ctx context.Context, fingerprints []string) (map[string]struct{}, error)
	CompetitorRefs(ctx context.Context) (map[string]db.CompetitorRef, error)
	CommitSignals(ctx context.Context, signals []db.NewSignal) (stored int, conflicts int, err error)
	AppendRunLog(ctx context.Context, runAt time.Time, signalsStored int, errorText string, duration time.Duration) error
}

// Counters tracks what happened to the batch at each stage.
type Counters struct {
	Collected         int `json:"collected"`
	Normalized        int `json:"normalized"`
	BatchDuplicates   int `json:"batch_duplicates"`
	Irrelevant        int `json:"irrelevant"`
	UnknownCompetitor int `json:"unknown_competitor"`
	StoreDuplicates   int `json:"store_duplicates"`
	Conflicts         int `json:"conflicts"`
	Stored            int `json:"stored"`
}

// Result is the outcome of one run.
type Result struct {
	State    State               `json:"state"`
	Counters Counters            `json:"counters"`
	ByType   map[signal.Type]int `json:"by_type,omitempty"`
	Duration time.Duration       `json:"duration"`
}

// Service sequences the ingestion stages for one batch of raw signals.
// It exclusively owns the in-flight signal list; the run either reaches
// StateDone or StateFailed, and exactly one run-log record is written
// either way.
type Service struct {
	store      Store
	classifier *classify.Classifier
	filter     *relevance.Filter
	logger     zerolog.Logger
}

func NewService(store Store, classifier *classify.Classifier, filter *relevance.Filter, logger zerolog.Logger) *Service {
	return &Service{
		store:      store,
		classifier: classifier,
		filter:     filter,
		logger:     logger,
	}
}

// Run executes the full pipeline over one collected batch.
func (s *Service) Run(ctx context.Context, raws []signal.Raw) (Result, error) {
	if s == nil || s.store == nil {
		return Result{State: StateFailed}, fmt.Errorf("pipeline service is not initialized")
	}

	start := globaltime.UTC()
	result := Result{State: StateCollecting}
	result.Counters.Collected = len(raws)

	result.State = StateNormalizing
	signals := normalize.Batch(raws)
	result.Counters.Normalized = len(signals)
	if dropped := len(raws) - len(signals); dropped > 0 {
		s.logger.Debug().Int("dropped", dropped).Msg("dropped malformed raw signals")
	}

	result.State = StateDedupingBatch
	signals = fingerprint.Sign(signals)
	unique := dedup.WithinBatch(signals)
	result.Counters.BatchDuplicates = len(signals) - len(unique)
	signals = unique

	result.State = StateClassifying
	signals = s.classifier.Batch(signals)

	result.State = StateFilteringRelevance
	refs, err := s.store.CompetitorRefs(ctx)
	if err != nil {
		return s.fail(ctx, result, start, fmt.Errorf("load competitors: %w", err))
	}
	signals = s.filterRelevant(signals, refs, &result.Counters)

	result.State = StateDedupingStore
	fresh, err := dedup.AgainstStore(ctx, s.store, signals)
	if err != nil {
		return s.fail(ctx, result, start, fmt.Errorf("check store fingerprints: %w", err))
	}
	result.Counters.StoreDuplicates = len(signals) - len(fresh)
	signals = fresh

	result.State = StateCommitting
	discoveredAt := globaltime.UTC()
	stored, conflicts, err := s.store.CommitSignals(ctx, buildNewSignals(signals, refs, discoveredAt))
	if err != nil {
		return s.fail(ctx, result, start, fmt.Errorf("commit signals: %w", err))
	}
	result.Counters.Stored = stored
	result.Counters.Conflicts = conflicts
	if conflicts > 0 {
		s.logger.Warn().Int("conflicts", conflicts).Msg("skipped signals inserted by a concurrent run")
	}

	result.State = StateDone
	result.ByType = classify.Stats(signals)
	result.Duration = globaltime.UTC().Sub(start)

	if err := s.store.AppendRunLog(ctx, start, stored, "", result.Duration); err != nil {
		result.State = StateFailed
		return result, fmt.Errorf("append run log: %w", err)
	}

	s.logger.Info().
		Int("collected", result.Counters.Collected).
		Int("stored", stored).
		Int("batch_duplicates", result.Counters.BatchDuplicates).
		Int("store_duplicates", result.Counters.StoreDuplicates).
		Int("irrelevant", result.Counters.Irrelevant).
		Dur("duration", result.Duration).
		Msg("pipeline run completed")

	return result, nil
}

// fail transitions to the terminal failed state. The run log entry is
// still written, recording zero stored signals and the error text.
func (s *Service) fail(ctx context.Context, result Result, start time.Time, cause error) (Result, error) {
	result.State = StateFailed
	result.Duration = globaltime.UTC().Sub(start)

	if logErr := s.store.AppendRunLog(ctx, start, 0, cause.Error(), result.Duration); logErr != nil {
		s.logger.Error().Err(logErr).Msg("failed to record run log for failed run")
	}

	s.logger.Error().Err(cause).Str("state", string(result.State)).Msg("pipeline run failed")
	return result, cause
}

func (s *Service) filterRelevant(signals []signal.Signal, refs map[string]db.CompetitorRef, counters *Counters) []signal.Signal {
	accepted := make([]signal.Signal, 0, len(signals))
	for _, sig := range signals {
		if _, known := refs[sig.CompetitorName]; !known {
			counters.UnknownCompetitor++
			s.logger.Warn().
				Str("competitor", sig.CompetitorName).
				Str("title", sig.Title).
				Msg("signal references unknown competitor")
			continue
		}

		switch s.filter.Check(sig) {
		case relevance.Accepted:
			accepted = append(accepted, sig)
		case relevance.UnknownCompetitor:
			counters.UnknownCompetitor++
			s.logger.Warn().
				Str("competitor", sig.CompetitorName).
				Str("title", sig.Title).
				Msg("no keyword set configured for competitor")
		case relevance.Irrelevant:
			counters.Irrelevant++
		}
	}
	return accepted
}

func buildNewSignals(signals []signal.Signal, refs map[string]db.CompetitorRef, discoveredAt time.Time) []db.NewSignal {
	rows := make([]db.NewSignal, 0, len(signals))
	for _, sig := range signals {
		ref, known := refs[sig.CompetitorName]
		if !known {
			continue
		}
		rows = append(rows, db.NewSignal{
			CompetitorID: ref.CompetitorID,
			Fingerprint:  sig.Fingerprint,
			SignalType:   string(sig.Type),
			Title:        sig.Title,
			Description:  sig.Description,
			URL:          sig.URL,
			PublishedAt:  sig.PublishedAt,
			DiscoveredAt: discoveredAt,
			SourceType:   string(sig.SourceType),
			SourceURL:    sig.SourceURL,
		})
	}
	return rows
}
