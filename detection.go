package pagedetect

import "context"

// Method is the replayable continuation mechanism detected for a page.
type Method string

// Detection method constants.
const (
	MethodPagination     Method = "pagination"
	MethodInfiniteScroll Method = "infinite_scroll"
	MethodHybrid         Method = "hybrid"
	MethodNone           Method = "none"
)

// Source records which layer produced a detection result.
type Source string

// Detection source constants. SourceAI means a vision-model suggestion
// survived live validation; SourceML means the suggestion was discarded and
// the heuristic pipeline ran instead; SourceHeuristic means no vision layer
// was consulted at all.
const (
	SourceHeuristic Source = "heuristic"
	SourceAI        Source = "ai"
	SourceML        Source = "ml"
)

// ScrollProbeResult reports the outcome of an infinite-scroll experiment.
// FinalCount is the size of the accumulated identity set, never the raw DOM
// element count.
type ScrollProbeResult struct {
	HasInfiniteScroll bool      `json:"hasInfiniteScroll"`
	InitialCount      int       `json:"initialCount"`
	FinalCount        int       `json:"finalCount"`
	ScrollPositions   []float64 `json:"scrollPositions"`
	ScrollIterations  int       `json:"scrollIterations"`
}

// Gain returns the number of product identities the probe surfaced.
func (r *ScrollProbeResult) Gain() int {
	if r == nil {
		return 0
	}
	return r.FinalCount - r.InitialCount
}

// ClickProbeResult reports the outcome of clicking a single pagination
// candidate.
type ClickProbeResult struct {
	Success          bool           `json:"success"`
	InitialCount     int            `json:"initialCount"`
	FinalCount       int            `json:"finalCount"`
	URLChanged       bool           `json:"urlChanged"`
	NewProductsFound int            `json:"newProductsFound"`
	OffsetPattern    *OffsetPattern `json:"offsetPattern,omitempty"`
	Error            string         `json:"error,omitempty"`
}

// PaginationInfo describes a validated click-based strategy.
type PaginationInfo struct {
	Selector       string         `json:"selector"`
	Type           CandidateType  `json:"type"`
	ProductsLoaded int            `json:"productsLoaded"`
	Offset         *OffsetPattern `json:"offset,omitempty"`

	// Verified is false when the URL changed on click but product
	// identity could not be confirmed; callers should assume the same
	// page size repeats.
	Verified bool `json:"verified"`
}

// ScrollInfo describes a validated infinite-scroll strategy.
type ScrollInfo struct {
	ProductsLoaded  int       `json:"productsLoaded"`
	ScrollPositions []float64 `json:"scrollPositions"`
}

// DetectionResult is the outcome of a detection run. It is constructed
// fresh per request, never mutated after return, and carries no ownership
// over the live page.
type DetectionResult struct {
	Method     Method                `json:"method"`
	Source     Source                `json:"source"`
	Pagination *PaginationInfo       `json:"pagination,omitempty"`
	Scroll     *ScrollInfo           `json:"scroll,omitempty"`
	Candidates []PaginationCandidate `json:"candidates"`
}

// DetectOptions carries per-run hints from the caller.
type DetectOptions struct {
	// ItemSelector is the user-confirmed product item selector. When
	// empty the engine falls back to its own auto-detect selector list.
	ItemSelector string
}

// Detector runs pagination detection against a live page. The absence of a
// detectable method is a valid outcome, reported as MethodNone, not an
// error; errors are reserved for the page itself becoming unusable.
//
// Implementations must leave the page at the URL and scroll position it
// started in, on both success and failure paths.
type Detector interface {
	Detect(ctx context.Context, page Page, opts DetectOptions) (*DetectionResult, error)
}
