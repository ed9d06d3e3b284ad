// Package gemini implements the vision service using Google Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/pagedetect"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// Ensure Vision implements pagedetect.Vision at compile time.
var _ pagedetect.Vision = (*Vision)(nil)

// Vision implements pagedetect.Vision using a Gemini vision model. The
// model sees a viewport screenshot plus the page's bottom-region HTML and
// proposes a pagination method; callers validate the proposal against the
// live page before trusting it.
type Vision struct {
	client *genai.Client
}

// NewVision creates a new Vision.
func NewVision(client *genai.Client) *Vision {
	return &Vision{client: client}
}

// DetectPagination asks the model how the page paginates. Malformed model
// output is an EINTERNAL error; callers treat any error as "fall back to
// heuristics".
func (v *Vision) DetectPagination(ctx context.Context, req *pagedetect.VisionRequest) (*pagedetect.VisionSuggestion, error) {
	if req == nil {
		return nil, pagedetect.Errorf(pagedetect.EINVALID, "vision request required")
	}
	if len(req.Screenshot) == 0 {
		return nil, pagedetect.Errorf(pagedetect.EINVALID, "screenshot required")
	}

	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: "image/png", Data: req.Screenshot}},
		{Text: BuildUserPrompt(req)},
	}

	begin := time.Now()
	result, err := v.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{Parts: parts}},
		BuildConfig(),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, pagedetect.Errorf(pagedetect.EINTERNAL, "gemini returned nil result")
	}

	suggestion, err := ParseSuggestion(result.Text())
	if err != nil {
		return nil, err
	}
	suggestion.LatencyMs = time.Since(begin).Milliseconds()
	return suggestion, nil
}

// BuildConfig returns the GenerateContentConfig for vision calls. The
// response is constrained to JSON so parsing does not depend on prose
// discipline.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.1)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You analyze e-commerce listing pages and determine how more items become visible. " +
					"Respond with JSON only, no prose, matching: " +
					`{"method":"pagination|infinite_scroll|hybrid|none","confidence":0.0,` +
					`"selector":"css selector of the control, if any",` +
					`"button_attributes":{"text":"","aria_label":"","tag":"","rel":"","classes":[],"data":{}},` +
					`"offset_config":{"key":"","start":0,"increment":0,"type":"offset|page"}}. ` +
					"Omit fields you cannot determine. Describe the button you see via button_attributes " +
					"rather than guessing a selector when unsure.",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
}

// BuildUserPrompt builds the text part accompanying the screenshot.
func BuildUserPrompt(req *pagedetect.VisionRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Page URL: %s\n\n", req.URL)
	sb.WriteString("The screenshot shows the page viewport. ")
	sb.WriteString("Below is the HTML of the page's bottom region, where pagination controls usually live:\n\n")
	sb.WriteString("<html_excerpt>\n")
	sb.WriteString(req.HTMLExcerpt)
	sb.WriteString("\n</html_excerpt>\n\n")
	sb.WriteString("How does this page load more items?")
	return sb.String()
}

// ParseSuggestion decodes the model's JSON response, tolerating markdown
// code fences some models wrap around JSON despite instructions.
func ParseSuggestion(text string) (*pagedetect.VisionSuggestion, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, pagedetect.Errorf(pagedetect.EINTERNAL, "gemini returned empty response")
	}

	var suggestion pagedetect.VisionSuggestion
	if err := json.Unmarshal([]byte(text), &suggestion); err != nil {
		return nil, pagedetect.Errorf(pagedetect.EINTERNAL, "parse gemini response: %v", err)
	}
	switch suggestion.Method {
	case pagedetect.MethodPagination, pagedetect.MethodInfiniteScroll, pagedetect.MethodHybrid, pagedetect.MethodNone:
	default:
		return nil, pagedetect.Errorf(pagedetect.EINTERNAL, "gemini returned unknown method %q", suggestion.Method)
	}
	if suggestion.OffsetConfig != nil && suggestion.OffsetConfig.Validate() != nil {
		suggestion.OffsetConfig = nil
	}
	return &suggestion, nil
}
