// Package detect implements pagination detection against a live page: a
// candidate scan, a scroll probe, a click probe, and a method decision,
// optionally preceded by a vision-model pass whose suggestions are validated
// through the same probes before being trusted.
package detect

import (
	"context"
	"encoding/json"

	"github.com/fwojciec/pagedetect"
)

// HTMLProcessor prepares page HTML for the vision pass: a trimmed excerpt
// of the bottom region for the prompt, and repair of model-emitted
// selectors against the actual markup.
type HTMLProcessor interface {
	BottomExcerpt(html string) string
	RepairSelector(selector, html string) string
}

// Engine runs the detection pipeline on a single page per call. It holds no
// per-run state; a single Engine is safe for concurrent use across distinct
// pages.
type Engine struct {
	scanner     *Scanner
	scrollProbe *ScrollProbe
	clickProbe  *ClickProbe
	synthesizer *Synthesizer
	config      Config

	// Vision enables the AI-first pass when non-nil. Its failures are
	// never fatal; the heuristic pipeline is always the fallback.
	Vision pagedetect.Vision

	// HTML enables excerpting and selector repair for the vision pass.
	// When nil, a plain tail excerpt is sent and selectors are only
	// sanitized, not repaired.
	HTML HTMLProcessor
}

var _ pagedetect.Detector = (*Engine)(nil)

// NewEngine returns an Engine with the given configuration.
func NewEngine(config Config) *Engine {
	return &Engine{
		scanner:     NewScanner(config),
		scrollProbe: NewScrollProbe(config),
		clickProbe:  NewClickProbe(config),
		synthesizer: NewSynthesizer(),
		config:      config,
	}
}

// Detect implements pagedetect.Detector. When a vision service is
// configured it runs first; a suggestion that survives live validation is
// returned tagged SourceAI, a discarded one routes through the heuristic
// pipeline tagged SourceML, and with no vision service at all the result is
// tagged SourceHeuristic.
func (e *Engine) Detect(ctx context.Context, page pagedetect.Page, opts pagedetect.DetectOptions) (*pagedetect.DetectionResult, error) {
	itemSelector, err := resolveItemSelector(ctx, page, opts)
	if err != nil {
		return nil, err
	}

	if e.Vision != nil {
		if result, ok := e.visionPass(ctx, page, itemSelector); ok {
			return result, nil
		}
		result, err := e.heuristicPass(ctx, page, itemSelector)
		if err != nil {
			return nil, err
		}
		result.Source = pagedetect.SourceML
		return result, nil
	}

	return e.heuristicPass(ctx, page, itemSelector)
}

// heuristicPass runs scan, scroll probe, click probe, and the method
// decision, strictly in that order: the scroll probe fully completes,
// including its restore-to-top, before the click probe may start.
func (e *Engine) heuristicPass(ctx context.Context, page pagedetect.Page, itemSelector string) (*pagedetect.DetectionResult, error) {
	candidates, err := e.scanner.Scan(ctx, page)
	if err != nil {
		return nil, err
	}

	scroll, err := e.scrollProbe.Probe(ctx, page, itemSelector)
	if err != nil {
		return nil, err
	}

	click, clicked, err := e.testCandidates(ctx, page, candidates, itemSelector)
	if err != nil {
		return nil, err
	}

	method, pagination, scrollInfo := Decide(scroll, click, clicked, candidates)
	return &pagedetect.DetectionResult{
		Method:     method,
		Source:     pagedetect.SourceHeuristic,
		Pagination: pagination,
		Scroll:     scrollInfo,
		Candidates: candidates,
	}, nil
}

// testCandidates click-tests ranked candidates until one surfaces new
// products, keeping the best partial outcome (a URL change with unconfirmed
// identity) as a fallback. Per-candidate failures are negative signals, not
// errors.
func (e *Engine) testCandidates(ctx context.Context, page pagedetect.Page, candidates []pagedetect.PaginationCandidate, itemSelector string) (*pagedetect.ClickProbeResult, *pagedetect.PaginationCandidate, error) {
	var best *pagedetect.ClickProbeResult
	var bestCandidate *pagedetect.PaginationCandidate

	limit := e.config.MaxClickTests
	if limit > len(candidates) {
		limit = len(candidates)
	}
	for i := 0; i < limit; i++ {
		candidate := candidates[i]
		result, err := e.clickProbe.Test(ctx, page, candidate, itemSelector)
		if err != nil {
			return nil, nil, err
		}
		if result.Success && result.NewProductsFound > 0 {
			return result, &candidate, nil
		}
		if best == nil || (result.Success && !best.Success) {
			best = result
			bestCandidate = &candidate
		}
	}
	return best, bestCandidate, nil
}

// visionPass asks the vision service for a suggestion and validates it
// through the live probes. A false return means fall back to the heuristic
// pipeline; no partial state survives, since every probe rolls the page
// back itself.
func (e *Engine) visionPass(ctx context.Context, page pagedetect.Page, itemSelector string) (*pagedetect.DetectionResult, bool) {
	screenshot, err := page.Screenshot(ctx)
	if err != nil {
		return nil, false
	}
	pageURL, err := page.URL(ctx)
	if err != nil {
		return nil, false
	}
	html, err := e.pageHTML(ctx, page)
	if err != nil {
		return nil, false
	}

	suggestion, err := e.Vision.DetectPagination(ctx, &pagedetect.VisionRequest{
		Screenshot:  screenshot,
		URL:         pageURL,
		HTMLExcerpt: e.excerpt(html),
	})
	if err != nil || suggestion == nil {
		return nil, false
	}
	if suggestion.Confidence < e.config.MinVisionConfidence || suggestion.Method == pagedetect.MethodNone || suggestion.Method == "" {
		return nil, false
	}

	if suggestion.Method == pagedetect.MethodInfiniteScroll {
		// Still run the scroll probe: the strategy needs concrete
		// replay positions, and the suggestion needs proof.
		scroll, err := e.scrollProbe.Probe(ctx, page, itemSelector)
		if err != nil || scroll.Gain() == 0 {
			return nil, false
		}
		return &pagedetect.DetectionResult{
			Method: pagedetect.MethodInfiniteScroll,
			Source: pagedetect.SourceAI,
			Scroll: &pagedetect.ScrollInfo{
				ProductsLoaded:  scroll.Gain(),
				ScrollPositions: scroll.ScrollPositions,
			},
		}, true
	}

	selector, ok := e.resolveSuggestedSelector(ctx, page, suggestion, html)
	if !ok {
		return nil, false
	}

	candidateType := pagedetect.CandidateNextButton
	if suggestion.Method == pagedetect.MethodHybrid {
		candidateType = pagedetect.CandidateLoadMore
	}
	candidate := pagedetect.PaginationCandidate{
		Selector:   selector,
		Type:       candidateType,
		Confidence: suggestion.Confidence,
	}

	// Scroll before clicking, matching the heuristic pass: the click may
	// navigate, and the scroll probe wants the page as the model saw it.
	var scroll *pagedetect.ScrollProbeResult
	if suggestion.Method == pagedetect.MethodHybrid {
		if scroll, err = e.scrollProbe.Probe(ctx, page, itemSelector); err != nil {
			return nil, false
		}
	}

	click, err := e.clickProbe.Test(ctx, page, candidate, itemSelector)
	if err != nil || !click.Success {
		return nil, false
	}
	if click.OffsetPattern == nil && suggestion.OffsetConfig != nil && suggestion.OffsetConfig.Validate() == nil {
		click.OffsetPattern = suggestion.OffsetConfig
	}

	method, pagination, scrollInfo := Decide(scroll, click, &candidate, nil)
	if method == pagedetect.MethodNone {
		return nil, false
	}
	return &pagedetect.DetectionResult{
		Method:     method,
		Source:     pagedetect.SourceAI,
		Pagination: pagination,
		Scroll:     scrollInfo,
		Candidates: []pagedetect.PaginationCandidate{candidate},
	}, true
}

// resolveSuggestedSelector builds a working selector for a vision
// suggestion: structured attribute hints go through the synthesizer, a raw
// selector string gets repaired against the markup and sanitized. Either
// way it must validate against the live page.
func (e *Engine) resolveSuggestedSelector(ctx context.Context, page pagedetect.Page, suggestion *pagedetect.VisionSuggestion, html string) (string, bool) {
	if suggestion.ButtonAttributes != nil {
		selector, err := e.synthesizer.Synthesize(ctx, page, suggestion.ButtonAttributes)
		if err == nil {
			return selector, true
		}
	}
	if suggestion.Selector == "" {
		return "", false
	}

	selector := suggestion.Selector
	if e.HTML != nil {
		selector = e.HTML.RepairSelector(selector, html)
	}
	selector = pagedetect.SanitizeSelector(selector)
	if selector == "" {
		return "", false
	}
	ok, _, err := ValidateSelector(ctx, page, selector)
	if err != nil || !ok {
		return "", false
	}
	return selector, true
}

func (e *Engine) pageHTML(ctx context.Context, page pagedetect.Page) (string, error) {
	raw, err := page.Eval(ctx, pageHTMLJS)
	if err != nil {
		return "", err
	}
	var html string
	if err := json.Unmarshal(raw, &html); err != nil {
		return "", err
	}
	return html, nil
}

// excerptTailLen bounds the fallback excerpt when no HTML processor is
// configured.
const excerptTailLen = 4000

func (e *Engine) excerpt(html string) string {
	if e.HTML != nil {
		return e.HTML.BottomExcerpt(html)
	}
	if len(html) > excerptTailLen {
		return html[len(html)-excerptTailLen:]
	}
	return html
}
