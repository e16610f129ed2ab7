package dedup

import (
	"context"
	"fmt"
	"testing"

	"horse.fit/lookout/internal/signal"
)

func TestWithinBatch_KeepsFirstOccurrenceInOrder(t *testing.T) {
	t.Parallel()

	signals := []signal.Signal{
		{Title: "a", Fingerprint: "fp-1"},
		{Title: "b", Fingerprint: "fp-2"},
		{Title: "a again", Fingerprint: "fp-1"},
		{Title: "c", Fingerprint: "fp-3"},
	}

	unique := WithinBatch(signals)
	if len(unique) != 3 {
		t.Fatalf("expected 3 unique signals, got %d", len(unique))
	}
	if unique[0].Title != "a" || unique[1].Title != "b" || unique[2].Title != "c" {
		t.Fatalf("order not preserved: %+v", unique)
	}
}

func TestWithinBatch_Idempotent(t *testing.T) {
	t.Parallel()

	signals := []signal.Signal{
		{Fingerprint: "fp-1"},
		{Fingerprint: "fp-1"},
		{Fingerprint: "fp-2"},
	}

	once := WithinBatch(signals)
	twice := WithinBatch(once)
	if len(once) != len(twice) {
		t.Fatalf("dedup not idempotent: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Fingerprint != twice[i].Fingerprint {
			t.Fatalf("dedup not idempotent at index %d", i)
		}
	}
}

func TestWithinBatch_DropsMissingFingerprint(t *testing.T) {
	t.Parallel()

	unique := WithinBatch([]signal.Signal{{Title: "no fingerprint"}})
	if len(unique) != 0 {
		t.Fatalf("expected unfingerprinted signal to be dropped, got %d", len(unique))
	}
}

type fakeIndex struct {
	known map[string]struct{}
	err   error
}

func (f *fakeIndex) ExistingFingerprints(_ context.Context, fingerprints []string) (map[string]struct{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	found := map[string]struct{}{}
	for _, fp := range fingerprints {
		if _, ok := f.known[fp]; ok {
			found[fp] = struct{}{}
		}
	}
	return found, nil
}

func TestAgainstStore_FiltersKnownFingerprints(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{known: map[string]struct{}{"fp-2": {}}}
	fresh, err := AgainstStore(context.Background(), index, []signal.Signal{
		{Title: "new", Fingerprint: "fp-1"},
		{Title: "stored", Fingerprint: "fp-2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fresh) != 1 || fresh[0].Fingerprint != "fp-1" {
		t.Fatalf("unexpected filter result: %+v", fresh)
	}
}

func TestAgainstStore_PropagatesError(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{err: fmt.Errorf("store down")}
	if _, err := AgainstStore(context.Background(), index, []signal.Signal{{Fingerprint: "fp-1"}}); err == nil {
		t.Fatalf("expected store error to propagate")
	}
}

func TestAgainstStore_EmptyBatchSkipsQuery(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{err: fmt.Errorf("must not be called")}
	fresh, err := AgainstStore(context.Background(), index, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fresh) != 0 {
		t.Fatalf("expected empty result, got %d", len(fresh))
	}
}
