package detect_test

import (
	"testing"

	"github.com/fwojciec/pagedetect"
	"github.com/fwojciec/pagedetect/detect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide_HybridWhenBothProbesGain(t *testing.T) {
	t.Parallel()

	scroll := &pagedetect.ScrollProbeResult{
		HasInfiniteScroll: true,
		InitialCount:      20,
		FinalCount:        25,
		ScrollPositions:   []float64{800, 1600},
	}
	click := &pagedetect.ClickProbeResult{
		Success:          true,
		NewProductsFound: 5,
	}
	clicked := &pagedetect.PaginationCandidate{
		Selector:   "button.load-more",
		Type:       pagedetect.CandidateLoadMore,
		Confidence: 0.8,
	}

	method, pagination, scrollInfo := detect.Decide(scroll, click, clicked, nil)

	assert.Equal(t, pagedetect.MethodHybrid, method)
	require.NotNil(t, pagination)
	assert.Equal(t, "button.load-more", pagination.Selector)
	assert.True(t, pagination.Verified)
	require.NotNil(t, scrollInfo)
	assert.Equal(t, 5, scrollInfo.ProductsLoaded)
	assert.Equal(t, []float64{800, 1600}, scrollInfo.ScrollPositions)
}

func TestDecide_PaginationWhenOnlyClickGains(t *testing.T) {
	t.Parallel()

	// 24 products from the click, nothing from scrolling: pagination, not
	// hybrid, even though the candidate is a load-more button.
	scroll := &pagedetect.ScrollProbeResult{InitialCount: 24, FinalCount: 24}
	click := &pagedetect.ClickProbeResult{
		Success:          true,
		InitialCount:     24,
		FinalCount:       48,
		NewProductsFound: 24,
	}
	clicked := &pagedetect.PaginationCandidate{
		Selector:   "button.load-more",
		Type:       pagedetect.CandidateLoadMore,
		Confidence: 0.8,
	}

	method, pagination, scrollInfo := detect.Decide(scroll, click, clicked, nil)

	assert.Equal(t, pagedetect.MethodPagination, method)
	require.NotNil(t, pagination)
	assert.Equal(t, 24, pagination.ProductsLoaded)
	assert.True(t, pagination.Verified)
	assert.Nil(t, scrollInfo)
}

func TestDecide_HybridWhenScrollGainsAndLoadMoreExists(t *testing.T) {
	t.Parallel()

	// The load-more click test failed, but scrolling works and the
	// control exists: still hybrid.
	scroll := &pagedetect.ScrollProbeResult{
		HasInfiniteScroll: true,
		InitialCount:      10,
		FinalCount:        30,
	}
	click := &pagedetect.ClickProbeResult{Success: false, Error: "all click strategies failed"}
	candidates := []pagedetect.PaginationCandidate{
		{Selector: "a.next", Type: pagedetect.CandidateNextButton, Confidence: 0.7},
		{Selector: "button.more", Type: pagedetect.CandidateLoadMore, Confidence: 0.6},
	}

	method, pagination, scrollInfo := detect.Decide(scroll, click, nil, candidates)

	assert.Equal(t, pagedetect.MethodHybrid, method)
	require.NotNil(t, pagination)
	assert.Equal(t, "button.more", pagination.Selector)
	assert.False(t, pagination.Verified)
	require.NotNil(t, scrollInfo)
	assert.Equal(t, 20, scrollInfo.ProductsLoaded)
}

func TestDecide_InfiniteScrollWhenOnlyScrollGains(t *testing.T) {
	t.Parallel()

	scroll := &pagedetect.ScrollProbeResult{
		HasInfiniteScroll: true,
		InitialCount:      10,
		FinalCount:        40,
		ScrollPositions:   []float64{800},
	}

	method, pagination, scrollInfo := detect.Decide(scroll, nil, nil, nil)

	assert.Equal(t, pagedetect.MethodInfiniteScroll, method)
	assert.Nil(t, pagination)
	require.NotNil(t, scrollInfo)
	assert.Equal(t, 30, scrollInfo.ProductsLoaded)
}

func TestDecide_UnverifiedPaginationWhenOnlyURLChanged(t *testing.T) {
	t.Parallel()

	// Full page navigation replaced the identity baseline, so no new
	// identities could be confirmed, but the URL moved.
	click := &pagedetect.ClickProbeResult{
		Success:    true,
		URLChanged: true,
		OffsetPattern: &pagedetect.OffsetPattern{
			Key: "page", Start: 1, Increment: 1, Type: pagedetect.PatternPage,
		},
	}
	clicked := &pagedetect.PaginationCandidate{
		Selector: "a[rel=next]",
		Type:     pagedetect.CandidateNextButton,
	}

	method, pagination, scrollInfo := detect.Decide(nil, click, clicked, nil)

	assert.Equal(t, pagedetect.MethodPagination, method)
	require.NotNil(t, pagination)
	assert.False(t, pagination.Verified)
	require.NotNil(t, pagination.Offset)
	assert.Equal(t, "page", pagination.Offset.Key)
	assert.Nil(t, scrollInfo)
}

func TestDecide_NoneWhenNothingWorked(t *testing.T) {
	t.Parallel()

	scroll := &pagedetect.ScrollProbeResult{InitialCount: 12, FinalCount: 12}
	click := &pagedetect.ClickProbeResult{Success: false}

	method, pagination, scrollInfo := detect.Decide(scroll, click, nil, nil)

	assert.Equal(t, pagedetect.MethodNone, method)
	assert.Nil(t, pagination)
	assert.Nil(t, scrollInfo)
}

func TestDecide_TieGoesToHybridWithLoadMore(t *testing.T) {
	t.Parallel()

	// Scroll gain 5, click gain 5, load-more candidate: hybrid wins the
	// tie because both mechanisms demonstrably work.
	scroll := &pagedetect.ScrollProbeResult{
		HasInfiniteScroll: true,
		InitialCount:      20,
		FinalCount:        25,
	}
	click := &pagedetect.ClickProbeResult{Success: true, NewProductsFound: 5}
	clicked := &pagedetect.PaginationCandidate{
		Selector: "button.show-more",
		Type:     pagedetect.CandidateLoadMore,
	}

	method, _, _ := detect.Decide(scroll, click, clicked, nil)

	assert.Equal(t, pagedetect.MethodHybrid, method)
}
