package anonymize

import (
	"crypto/sha256"
	"encoding/hex"
)

// Anonymizer maps raw user identifiers to stable one-way pseudonyms so
// that no real identifier leaves the pipeline.
type Anonymizer struct {
	salt string
}

// New returns an Anonymizer using salt. The same salt yields the same
// pseudonyms across runs, which keeps reports diffable.
func New(salt string) *Anonymizer {
	return &Anonymizer{salt: salt}
}

// ID returns the pseudonym for a raw user id. Empty input stays empty.
func (a *Anonymizer) ID(raw string) string {
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(a.salt + raw))
	return "u_" + hex.EncodeToString(sum[:])[:12]
}
