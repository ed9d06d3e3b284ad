package pagedetect

import "context"

// VisionRequest is the payload sent to the vision service: a viewport
// screenshot plus a trimmed HTML excerpt of the page's bottom region, where
// pagination controls live.
type VisionRequest struct {
	Screenshot  []byte `json:"-"`
	URL         string `json:"url"`
	HTMLExcerpt string `json:"htmlExcerpt"`
}

// ButtonAttributes are structured hints the vision model extracted about a
// pagination control, used to synthesize a working selector when the
// model's own selector string is unusable.
type ButtonAttributes struct {
	Text      string            `json:"text,omitempty"`
	AriaLabel string            `json:"aria_label,omitempty"`
	Tag       string            `json:"tag,omitempty"`
	Rel       string            `json:"rel,omitempty"`
	Classes   []string          `json:"classes,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// VisionSuggestion is the vision model's hypothesis about a page's
// continuation mechanism. It is never trusted directly: selectors are
// repaired and re-validated through the same probes as heuristic
// candidates.
type VisionSuggestion struct {
	Method           Method            `json:"method"`
	Confidence       float64           `json:"confidence"`
	Selector         string            `json:"selector,omitempty"`
	ButtonAttributes *ButtonAttributes `json:"button_attributes,omitempty"`
	OffsetConfig     *OffsetPattern    `json:"offset_config,omitempty"`
	LatencyMs        int64             `json:"latencyMs"`
}

// Vision proposes a pagination method from a screenshot and HTML excerpt.
// It is best-effort and always optional: any error, malformed response, or
// low-confidence answer makes the caller fall back to the heuristic path.
type Vision interface {
	DetectPagination(ctx context.Context, req *VisionRequest) (*VisionSuggestion, error)
}
