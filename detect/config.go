package detect

import "time"

// Config holds the engine's tunables. The defaults are empirically tuned
// against real storefronts; treat them as a starting point, not derived
// values.
type Config struct {
	// ScrollStep is how far each scroll iteration advances, in pixels.
	ScrollStep int

	// ScrollSettle is how long to wait after each scroll step for lazy
	// loaders to react.
	ScrollSettle time.Duration

	// MaxScrollDistance caps the total distance the scroll probe will
	// travel, in pixels.
	MaxScrollDistance int

	// MaxNoChange is how many consecutive iterations may pass without
	// identity growth, element growth, or height growth before the
	// scroll probe gives up. The counter resets whenever the identity
	// set grows.
	MaxNoChange int

	// MaxDiscoveryScrolls bounds the initial stepped scrolling used to
	// find the first visible items.
	MaxDiscoveryScrolls int

	// BottomGrace is the re-check delay after the viewport reaches the
	// document bottom, before concluding no more content will load.
	BottomGrace time.Duration

	// ClickSettle is the additional wait after a click for AJAX content
	// to arrive.
	ClickSettle time.Duration

	// NavigationTimeout bounds the wait for a navigation triggered by a
	// probe click.
	NavigationTimeout time.Duration

	// MaxClickTests is how many ranked candidates the click probe will
	// try before giving up.
	MaxClickTests int

	// MaxCandidates caps the scanner's output after ranking.
	MaxCandidates int

	// HeaderBandPx excludes candidates above this page-Y as navigation
	// chrome rather than pagination.
	HeaderBandPx int

	// MinHeightGrowth is the document-height increase, in pixels, that
	// counts as material content change on its own.
	MinHeightGrowth float64

	// MinVisionConfidence is the threshold below which a vision-model
	// suggestion is discarded in favor of the heuristic pipeline.
	MinVisionConfidence float64
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		ScrollStep:          800,
		ScrollSettle:        700 * time.Millisecond,
		MaxScrollDistance:   100_000,
		MaxNoChange:         10,
		MaxDiscoveryScrolls: 10,
		BottomGrace:         1500 * time.Millisecond,
		ClickSettle:         3 * time.Second,
		NavigationTimeout:   5 * time.Second,
		MaxClickTests:       3,
		MaxCandidates:       10,
		HeaderBandPx:        150,
		MinHeightGrowth:     100,
		MinVisionConfidence: 0.5,
	}
}
