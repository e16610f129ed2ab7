package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"horse.fit/lookout/internal/signal"
)

// separator is not expected to appear between the hashed fields in
// normal text; it keeps ("a|b", "c") and ("a", "b|c") distinct.
const separator = "|"

// Compute returns the hex sha256 digest over title, url, and the
// canonical string form of publishedAt. The timestamp is converted to
// UTC and truncated to whole seconds before serialization, so the same
// instant carried with different precision or zone offsets always
// yields the same fingerprint. A nil timestamp serializes to the empty
// string.
func Compute(title, url string, publishedAt *time.Time) string {
	content := title + separator + url + separator + canonicalDate(publishedAt)
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Sign fills the Fingerprint field of every signal in place, preserving
// order.
func Sign(signals []signal.Signal) []signal.Signal {
	for i := range signals {
		signals[i].Fingerprint = Compute(signals[i].Title, signals[i].URL, signals[i].PublishedAt)
	}
	return signals
}

func canonicalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}
