// Package goquery provides HTML processing for the vision pass: bottom-region
// excerpting for prompts and repair of model-emitted selectors against the
// actual markup.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagedetect"
	"golang.org/x/net/html"
)

// defaultMaxExcerptLen bounds the excerpt sent to the vision model.
const defaultMaxExcerptLen = 8000

// Processor prepares page HTML for vision prompts and repairs selectors the
// model emits.
type Processor struct {
	// MaxExcerptLen bounds BottomExcerpt output, in bytes.
	MaxExcerptLen int
}

// NewProcessor creates a new Processor with default limits.
func NewProcessor() *Processor {
	return &Processor{MaxExcerptLen: defaultMaxExcerptLen}
}

// BottomExcerpt returns the trailing region of the page body, where
// pagination controls live, with non-content elements stripped. Falls back
// to a raw tail slice when the markup does not parse.
func (p *Processor) BottomExcerpt(rawHTML string) string {
	maxLen := p.MaxExcerptLen
	if maxLen <= 0 {
		maxLen = defaultMaxExcerptLen
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return tail(rawHTML, maxLen)
	}
	doc.Find("script, style, noscript, svg, iframe, template, link, meta").Remove()

	children := doc.Find("body").Children()
	if children.Length() == 0 {
		return tail(rawHTML, maxLen)
	}

	// Take body children from the end until the budget is spent, then
	// emit them in document order.
	var parts []string
	total := 0
	for i := children.Length() - 1; i >= 0; i-- {
		fragment, err := goquery.OuterHtml(children.Eq(i))
		if err != nil {
			continue
		}
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		if total+len(fragment) > maxLen && len(parts) > 0 {
			break
		}
		parts = append([]string{fragment}, parts...)
		total += len(fragment)
	}

	excerpt := strings.Join(parts, "\n")
	return tail(excerpt, maxLen)
}

// RepairSelector makes a model-emitted selector usable: garbage constructs
// rejected, over-long descendant chains shortened, and selectors resolving
// to a non-clickable leaf (svg, span, img, path) climbed to the nearest
// clickable ancestor. The result still goes through live validation; repair
// only improves the odds.
func (p *Processor) RepairSelector(selector, rawHTML string) string {
	clean := pagedetect.SanitizeSelector(selector)
	if clean == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return clean
	}

	sel := find(doc, clean)
	if sel == nil || sel.Length() == 0 {
		// Retry with just the trailing segment; models often prefix
		// selectors with wrapper elements that do not exist.
		segments := pagedetect.SplitSelectorSegments(clean)
		if len(segments) > 1 {
			last := segments[len(segments)-1]
			if retry := find(doc, last); retry != nil && retry.Length() > 0 {
				clean = last
				sel = retry
			}
		}
	}
	if sel == nil || sel.Length() == 0 {
		return clean
	}

	if !isClickableLeaf(sel) {
		if ancestor := climbToClickable(sel); ancestor != "" {
			return ancestor
		}
	}
	return clean
}

// find wraps Selection.Find with a recover, since goquery panics on
// selectors cascadia cannot parse.
func find(doc *goquery.Document, selector string) (sel *goquery.Selection) {
	defer func() {
		if recover() != nil {
			sel = nil
		}
	}()
	return doc.Find(selector)
}

// nonClickableTags are leaves a vision model tends to target (the icon
// inside the button, not the button).
var nonClickableTags = map[string]bool{
	"svg": true, "path": true, "use": true, "span": true,
	"img": true, "picture": true, "i": true,
}

func isClickableLeaf(sel *goquery.Selection) bool {
	node := sel.Get(0)
	if node == nil || node.Type != html.ElementNode {
		return true
	}
	return !nonClickableTags[node.Data]
}

// climbToClickable walks up from the matched leaf to the nearest clickable
// ancestor and builds a selector for it. Returns an empty string when no
// clickable ancestor exists.
func climbToClickable(sel *goquery.Selection) string {
	clickable := sel.Closest(`a, button, [role="button"], input[type="submit"]`)
	if clickable.Length() == 0 {
		return ""
	}
	node := clickable.Get(0)
	if node == nil {
		return ""
	}
	tag := node.Data

	if id, ok := clickable.Attr("id"); ok && id != "" {
		return "#" + id
	}
	if class, ok := clickable.Attr("class"); ok {
		var stable []string
		for _, c := range strings.Fields(class) {
			if !pagedetect.IsDynamicClass(c) {
				stable = append(stable, c)
			}
		}
		if len(stable) > 0 {
			return tag + "." + strings.Join(stable, ".")
		}
	}
	if aria, ok := clickable.Attr("aria-label"); ok && aria != "" {
		return tag + `[aria-label="` + strings.ReplaceAll(aria, `"`, `\"`) + `"]`
	}
	return tag
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
