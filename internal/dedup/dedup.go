package dedup

import (
	"context"

	"horse.fit/lookout/internal/signal"
)

// FingerprintIndex answers which of the given fingerprints are already
// persisted. Implemented by the database pool; tests substitute a fake.
type FingerprintIndex interface {
	ExistingFingerprints(ctx context.Context, fingerprints []string) (map[string]struct{}, error)
}

// WithinBatch keeps the first occurrence of every fingerprint,
// preserving the original relative order. Signals without a fingerprint
// are dropped since they cannot be deduplicated.
func WithinBatch(signals []signal.Signal) []signal.Signal {
	seen := make(map[string]struct{}, len(signals))
	unique := make([]signal.Signal, 0, len(signals))
	for _, sig := range signals {
		if sig.Fingerprint == "" {
			continue
		}
		if _, dup := seen[sig.Fingerprint]; dup {
			continue
		}
		seen[sig.Fingerprint] = struct{}{}
		unique = append(unique, sig)
	}
	return unique
}

// AgainstStore filters out signals whose fingerprint is already
// persisted. This is a pre-commit optimization: the store's unique
// constraint on fingerprint remains the correctness backstop for
// concurrent runs.
func AgainstStore(ctx context.Context, index FingerprintIndex, signals []signal.Signal) ([]signal.Signal, error) {
	if len(signals) == 0 {
		return signals, nil
	}

	fingerprints := make([]string, 0, len(signals))
	for _, sig := range signals {
		fingerprints = append(fingerprints, sig.Fingerprint)
	}

	existing, err := index.ExistingFingerprints(ctx, fingerprints)
	if err != nil {
		return nil, err
	}

	fresh := make([]signal.Signal, 0, len(signals))
	for _, sig := range signals {
		if _, known := existing[sig.Fingerprint]; known {
			continue
		}
		fresh = append(fresh, sig)
	}
	return fresh, nil
}
