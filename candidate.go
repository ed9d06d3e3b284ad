package pagedetect

import "sort"

// CandidateType classifies how a pagination candidate advances content.
type CandidateType string

// Candidate type constants.
const (
	CandidateNextButton CandidateType = "next_button"
	CandidateNumbered   CandidateType = "numbered"
	CandidateLoadMore   CandidateType = "load_more"
)

// BoundingBox is an element's position in page coordinates.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the box's center point.
func (b BoundingBox) Center() (x, y float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// PaginationCandidate is a DOM element hypothesized to advance content.
//
// Confidence is in [0,1]. Behavioral candidates (load-more buttons scored by
// position and structure) are capped below numbered-page confidence so an
// explicit page-2 link always wins ties.
type PaginationCandidate struct {
	Selector   string            `json:"selector"`
	Type       CandidateType     `json:"type"`
	Text       string            `json:"text"`
	Confidence float64           `json:"confidence"`
	Box        BoundingBox       `json:"boundingBox"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Validate returns an error if the candidate contains invalid fields.
func (c *PaginationCandidate) Validate() error {
	if c.Selector == "" {
		return Errorf(EINVALID, "candidate selector required")
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return Errorf(EINVALID, "candidate confidence must be in [0,1], got %v", c.Confidence)
	}
	switch c.Type {
	case CandidateNextButton, CandidateNumbered, CandidateLoadMore:
	default:
		return Errorf(EINVALID, "unknown candidate type %q", c.Type)
	}
	return nil
}

// RankCandidates deduplicates candidates by selector (keeping the higher
// confidence) and returns them confidence-descending, truncated to max.
// A max of zero or less means no truncation.
func RankCandidates(candidates []PaginationCandidate, max int) []PaginationCandidate {
	best := make(map[string]PaginationCandidate, len(candidates))
	for _, c := range candidates {
		if prev, ok := best[c.Selector]; !ok || c.Confidence > prev.Confidence {
			best[c.Selector] = c
		}
	}

	ranked := make([]PaginationCandidate, 0, len(best))
	for _, c := range best {
		ranked = append(ranked, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		// Deterministic order for equal confidence.
		return ranked[i].Selector < ranked[j].Selector
	})

	if max > 0 && len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}
