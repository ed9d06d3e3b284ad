package pagedetect

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// markupFingerprintLen is how much leading markup the last-resort identity
// key considers before hashing.
const markupFingerprintLen = 100

// IdentitySet is a set of strings uniquely naming each visible product on a
// page. Two scans are compared by set difference, not by element count:
// virtual-scroll implementations recycle DOM nodes, so the on-screen element
// count can stay constant while content changes, and vice versa.
type IdentitySet map[string]struct{}

// NewIdentitySet builds a set from raw identity strings, normalizing each
// and dropping empties.
func NewIdentitySet(identities []string) IdentitySet {
	s := make(IdentitySet, len(identities))
	for _, id := range identities {
		if key := NormalizeIdentity(id); key != "" {
			s[key] = struct{}{}
		}
	}
	return s
}

// Len returns the number of identities in the set.
func (s IdentitySet) Len() int { return len(s) }

// Contains reports whether the normalized identity is in the set.
func (s IdentitySet) Contains(identity string) bool {
	_, ok := s[NormalizeIdentity(identity)]
	return ok
}

// Diff returns the number of identities in other that are not in s.
func (s IdentitySet) Diff(other IdentitySet) int {
	n := 0
	for id := range other {
		if _, ok := s[id]; !ok {
			n++
		}
	}
	return n
}

// Merge adds every identity in other to s and returns how many were new.
func (s IdentitySet) Merge(other IdentitySet) int {
	n := 0
	for id := range other {
		if _, ok := s[id]; !ok {
			s[id] = struct{}{}
			n++
		}
	}
	return n
}

// NormalizeIdentity canonicalizes a raw identity string produced by the
// in-page extraction script. Hrefs, data identifiers, and titles pass
// through trimmed; raw markup fingerprints (prefixed "html:" by the script)
// are truncated and hashed so decorative attribute churn in recycled nodes
// does not manufacture new identities.
func NormalizeIdentity(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	markup, ok := strings.CutPrefix(raw, "html:")
	if !ok {
		return raw
	}
	if len(markup) > markupFingerprintLen {
		markup = markup[:markupFingerprintLen]
	}
	return fmt.Sprintf("html:%016x", xxhash.Sum64String(markup))
}
