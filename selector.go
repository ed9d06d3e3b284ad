package pagedetect

import "strings"

// maxSelectorHops is the deepest descendant chain a sanitized selector may
// keep. Longer chains are brittle against markup churn and get shortened to
// their trailing segments.
const maxSelectorHops = 3

// SanitizeSelector rejects selectors containing known-garbage constructs
// (non-CSS pseudo-classes, embedded scripts, runaway length) and shortens
// over-specific descendant chains. Returns an empty string when the
// selector cannot be salvaged.
func SanitizeSelector(selector string) string {
	selector = strings.TrimSpace(selector)
	if selector == "" || len(selector) > 300 {
		return ""
	}
	lower := strings.ToLower(selector)
	for _, garbage := range []string{":contains(", ":has-text(", "javascript:", "{", ";", "\n"} {
		if strings.Contains(lower, garbage) {
			return ""
		}
	}

	segments := SplitSelectorSegments(selector)
	if len(segments) > maxSelectorHops {
		segments = segments[len(segments)-maxSelectorHops:]
	}
	return strings.Join(segments, " ")
}

// SplitSelectorSegments splits a selector on descendant and child
// combinators at the top level, ignoring whitespace inside attribute
// brackets, parentheses, and quoted strings.
func SplitSelectorSegments(selector string) []string {
	var segments []string
	var current strings.Builder
	depth := 0
	var quote byte

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			segments = append(segments, s)
		}
		current.Reset()
	}

	for i := 0; i < len(selector); i++ {
		c := selector[i]
		switch {
		case quote != 0:
			current.WriteByte(c)
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
			current.WriteByte(c)
		case c == '[' || c == '(':
			depth++
			current.WriteByte(c)
		case c == ']' || c == ')':
			depth--
			current.WriteByte(c)
		case depth == 0 && (c == ' ' || c == '\t' || c == '>'):
			flush()
		default:
			current.WriteByte(c)
		}
	}
	flush()
	return segments
}

// IsDynamicClass reports whether a CSS class token looks build-generated
// (CSS-in-JS hashes, numeric-prefixed tokens) and therefore unsafe to put
// in a replayable selector.
func IsDynamicClass(class string) bool {
	if class == "" {
		return true
	}
	for _, prefix := range []string{"css-", "sc-", "jsx-"} {
		if strings.HasPrefix(class, prefix) {
			return true
		}
	}
	return class[0] >= '0' && class[0] <= '9'
}
