package detect

import (
	"context"
	"encoding/json"

	"github.com/fwojciec/pagedetect"
)

// Scanner finds pagination candidates in the live DOM. The heavy lifting
// happens in a single in-page pass; the Go side validates, deduplicates,
// and ranks what comes back.
type Scanner struct {
	config Config
}

// NewScanner returns a Scanner with the given configuration.
func NewScanner(config Config) *Scanner {
	return &Scanner{config: config}
}

// Scan evaluates the candidate scan in page context and returns candidates
// ranked by confidence, deduplicated by selector, and truncated to the
// configured maximum. Candidates that fail validation are dropped rather
// than failing the scan.
func (s *Scanner) Scan(ctx context.Context, page pagedetect.Page) ([]pagedetect.PaginationCandidate, error) {
	raw, err := page.Eval(ctx, scanCandidatesJS, s.config.HeaderBandPx)
	if err != nil {
		return nil, pagedetect.Errorf(pagedetect.EUNAVAILABLE, "candidate scan failed: %v", err)
	}

	var scanned []pagedetect.PaginationCandidate
	if err := json.Unmarshal(raw, &scanned); err != nil {
		return nil, pagedetect.Errorf(pagedetect.EINTERNAL, "decode candidate scan result: %v", err)
	}

	valid := scanned[:0]
	for _, c := range scanned {
		if c.Validate() == nil {
			valid = append(valid, c)
		}
	}
	return pagedetect.RankCandidates(valid, s.config.MaxCandidates), nil
}

// resolveItemSelector returns the caller's item selector, or auto-detects
// one from the fallback list when none was given. An empty return means no
// plausible product grid exists on the page.
func resolveItemSelector(ctx context.Context, page pagedetect.Page, opts pagedetect.DetectOptions) (string, error) {
	if opts.ItemSelector != "" {
		return opts.ItemSelector, nil
	}
	raw, err := page.Eval(ctx, autoDetectItemsJS)
	if err != nil {
		return "", pagedetect.Errorf(pagedetect.EUNAVAILABLE, "item selector auto-detect failed: %v", err)
	}
	var selector string
	if err := json.Unmarshal(raw, &selector); err != nil {
		return "", pagedetect.Errorf(pagedetect.EINTERNAL, "decode item selector: %v", err)
	}
	return selector, nil
}

// collectIdentities runs the identity extraction script and returns the
// normalized set.
func collectIdentities(ctx context.Context, page pagedetect.Page, itemSelector string) (pagedetect.IdentitySet, error) {
	if itemSelector == "" {
		return pagedetect.IdentitySet{}, nil
	}
	raw, err := page.Eval(ctx, collectIdentitiesJS, itemSelector)
	if err != nil {
		return nil, pagedetect.Errorf(pagedetect.EUNAVAILABLE, "identity collection failed: %v", err)
	}
	var identities []string
	if err := json.Unmarshal(raw, &identities); err != nil {
		return nil, pagedetect.Errorf(pagedetect.EINTERNAL, "decode identities: %v", err)
	}
	return pagedetect.NewIdentitySet(identities), nil
}

// countItems returns the raw element count for the selector.
func countItems(ctx context.Context, page pagedetect.Page, itemSelector string) (int, error) {
	if itemSelector == "" {
		return 0, nil
	}
	raw, err := page.Eval(ctx, countItemsJS, itemSelector)
	if err != nil {
		return 0, pagedetect.Errorf(pagedetect.EUNAVAILABLE, "item count failed: %v", err)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, pagedetect.Errorf(pagedetect.EINTERNAL, "decode item count: %v", err)
	}
	return n, nil
}

// scrollMetrics mirrors the in-page scroll info payload.
type scrollMetrics struct {
	Y        float64 `json:"y"`
	Viewport float64 `json:"viewport"`
	Height   float64 `json:"height"`
}

func readScrollMetrics(ctx context.Context, page pagedetect.Page) (scrollMetrics, error) {
	var m scrollMetrics
	raw, err := page.Eval(ctx, scrollInfoJS)
	if err != nil {
		return m, pagedetect.Errorf(pagedetect.EUNAVAILABLE, "scroll metrics failed: %v", err)
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, pagedetect.Errorf(pagedetect.EINTERNAL, "decode scroll metrics: %v", err)
	}
	return m, nil
}

func scrollTo(ctx context.Context, page pagedetect.Page, y float64) error {
	if _, err := page.Eval(ctx, scrollToJS, y); err != nil {
		return pagedetect.Errorf(pagedetect.EUNAVAILABLE, "scroll failed: %v", err)
	}
	return nil
}
