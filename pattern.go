package pagedetect

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// PatternType distinguishes page-number parameters from item-offset
// parameters.
type PatternType string

// Pattern type constants.
const (
	PatternOffset PatternType = "offset"
	PatternPage   PatternType = "page"
)

// OffsetPattern describes a URL parameter whose value increases by a fixed
// amount per page. Increment is always positive.
type OffsetPattern struct {
	Key       string      `json:"key"`
	Start     int         `json:"start"`
	Increment int         `json:"increment"`
	Type      PatternType `json:"type"`
}

// Validate returns an error if the pattern contains invalid fields.
func (p *OffsetPattern) Validate() error {
	if p.Key == "" {
		return Errorf(EINVALID, "offset pattern key required")
	}
	if p.Increment <= 0 {
		return Errorf(EINVALID, "offset pattern increment must be positive, got %d", p.Increment)
	}
	return nil
}

// URLForPage returns the URL for the zero-based page index n, substituting
// the pattern's parameter into base.
func (p *OffsetPattern) URLForPage(base string, n int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", Errorf(EINVALID, "invalid base URL %q: %v", base, err)
	}
	q := u.Query()
	q.Set(p.Key, strconv.Itoa(p.Start+n*p.Increment))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// InferOffset compares two URLs, typically the page before and after a
// pagination click, and infers the parameter that advanced. Query parameters
// are compared pairwise in their order of appearance in before; the first
// parameter whose numeric value increased wins. If no query parameter
// changed, /page/<n> path segments are compared. Returns nil when no pattern
// can be inferred.
func InferOffset(before, after string) *OffsetPattern {
	bu, err := url.Parse(before)
	if err != nil {
		return nil
	}
	au, err := url.Parse(after)
	if err != nil {
		return nil
	}

	aq := au.Query()
	for _, key := range queryKeysInOrder(bu.RawQuery) {
		bv, err1 := strconv.Atoi(bu.Query().Get(key))
		av, err2 := strconv.Atoi(aq.Get(key))
		if err1 != nil || err2 != nil || av <= bv {
			continue
		}
		return &OffsetPattern{
			Key:       key,
			Start:     bv,
			Increment: av - bv,
			Type:      classifyDelta(bv, av),
		}
	}

	// Parameters present only in the after URL (e.g. page 1 carries no
	// query at all) still indicate a pattern.
	for _, key := range queryKeysInOrder(au.RawQuery) {
		if bu.Query().Has(key) {
			continue
		}
		av, err := strconv.Atoi(aq.Get(key))
		if err != nil || av <= 0 {
			continue
		}
		start := 0
		if av == 2 {
			// A ?page=2 appearing from nowhere implies the first page
			// was page 1.
			start = 1
		}
		return &OffsetPattern{
			Key:       key,
			Start:     start,
			Increment: av - start,
			Type:      classifyDelta(start, av),
		}
	}

	return inferPathPage(bu, au)
}

// DetectURLPattern returns a {page}-substitution template describing how
// after differs from before, for UI display. It is purely descriptive and
// not used by automated probing. Returns an empty string when no pattern is
// found.
func DetectURLPattern(before, after string) string {
	p := InferOffset(before, after)
	if p == nil {
		return ""
	}
	au, err := url.Parse(after)
	if err != nil {
		return ""
	}

	if au.Query().Has(p.Key) {
		q := au.Query()
		q.Set(p.Key, "{page}")
		au.RawQuery = q.Encode()
		// url.Values escapes the braces; undo for readability.
		return strings.ReplaceAll(au.String(), "%7Bpage%7D", "{page}")
	}

	// Path-based pattern.
	segments := strings.Split(au.Path, "/")
	for i := 1; i < len(segments); i++ {
		if segments[i-1] == "page" {
			if _, err := strconv.Atoi(segments[i]); err == nil {
				segments[i] = "{page}"
				au.Path = strings.Join(segments, "/")
				return au.String()
			}
		}
	}
	return ""
}

// inferPathPage compares /page/<n> path segments between the two URLs.
func inferPathPage(before, after *url.URL) *OffsetPattern {
	bn, bok := pathPageNumber(before.Path)
	an, aok := pathPageNumber(after.Path)
	if !aok {
		return nil
	}
	if !bok {
		bn = 1 // no /page/ segment means the first page
	}
	if an <= bn {
		return nil
	}
	return &OffsetPattern{
		Key:       "page",
		Start:     bn,
		Increment: an - bn,
		Type:      classifyDelta(bn, an),
	}
}

// pathPageNumber extracts <n> from a /page/<n> path segment pair.
func pathPageNumber(path string) (int, bool) {
	segments := strings.Split(path, "/")
	for i := 1; i < len(segments); i++ {
		if segments[i-1] != "page" {
			continue
		}
		if n, err := strconv.Atoi(segments[i]); err == nil {
			return n, true
		}
	}
	return 0, false
}

// classifyDelta labels a parameter increase as a page number or item offset.
// A delta of exactly one (including 0 to 1) is a page counter; anything
// larger is an item offset.
func classifyDelta(from, to int) PatternType {
	if to-from == 1 {
		return PatternPage
	}
	return PatternOffset
}

// queryKeysInOrder returns the unique query keys of a raw query string in
// their order of appearance. url.Values is a map and loses ordering, which
// matters here because "first changed parameter wins" must be deterministic.
func queryKeysInOrder(rawQuery string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key := pair
		if i := strings.IndexByte(pair, '='); i >= 0 {
			key = pair[:i]
		}
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// String implements fmt.Stringer for log output.
func (p *OffsetPattern) String() string {
	return fmt.Sprintf("%s=%d+%dn (%s)", p.Key, p.Start, p.Increment, p.Type)
}
