package detect

import (
	"context"
	"encoding/json"

	"github.com/fwojciec/pagedetect"
)

// Synthesizer turns structured attribute hints into working CSS selectors,
// validated against the live page. It exists because vision models describe
// buttons well but emit selectors badly.
type Synthesizer struct{}

// NewSynthesizer returns a Synthesizer.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize builds a selector from hints by trying each attribute strategy
// in priority order inside the page, then sanitizes and re-validates the
// result. Returns ENOTFOUND when no usable element matches the hints.
func (s *Synthesizer) Synthesize(ctx context.Context, page pagedetect.Page, hints *pagedetect.ButtonAttributes) (string, error) {
	if hints == nil {
		return "", pagedetect.Errorf(pagedetect.EINVALID, "selector hints required")
	}
	raw, err := page.Eval(ctx, synthesizeSelectorJS, hints)
	if err != nil {
		return "", pagedetect.Errorf(pagedetect.EUNAVAILABLE, "selector synthesis failed: %v", err)
	}

	var selector *string
	if err := json.Unmarshal(raw, &selector); err != nil {
		return "", pagedetect.Errorf(pagedetect.EINTERNAL, "decode synthesized selector: %v", err)
	}
	if selector == nil || *selector == "" {
		return "", pagedetect.Errorf(pagedetect.ENOTFOUND, "no element matches the given hints")
	}

	clean := pagedetect.SanitizeSelector(*selector)
	if clean == "" {
		return "", pagedetect.Errorf(pagedetect.ENOTFOUND, "synthesized selector %q is unusable", *selector)
	}
	ok, _, err := ValidateSelector(ctx, page, clean)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", pagedetect.Errorf(pagedetect.ENOTFOUND, "synthesized selector %q matches no usable element", clean)
	}
	return clean, nil
}

// ValidateSelector checks that the selector resolves to at least one
// visible, non-disabled element on the live page, returning the total match
// count alongside.
func ValidateSelector(ctx context.Context, page pagedetect.Page, selector string) (bool, int, error) {
	raw, err := page.Eval(ctx, validateSelectorJS, selector)
	if err != nil {
		return false, 0, pagedetect.Errorf(pagedetect.EUNAVAILABLE, "selector validation failed: %v", err)
	}
	var result struct {
		Valid   bool `json:"valid"`
		Matches int  `json:"matches"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return false, 0, pagedetect.Errorf(pagedetect.EINTERNAL, "decode selector validation: %v", err)
	}
	return result.Valid, result.Matches, nil
}
