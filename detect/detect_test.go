package detect_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/fwojciec/pagedetect"
	"github.com/fwojciec/pagedetect/detect"
	"github.com/fwojciec/pagedetect/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadMorePage models a storefront with 24 products and a load-more button
// that appends 24 more without changing the URL.
func loadMorePage() *fakePage {
	ids := make([]string, 24)
	for i := range ids {
		ids[i] = fmt.Sprintf("https://shop.example/p/%d", i)
	}
	page := &fakePage{
		url:      "https://shop.example/catalog",
		viewport: 800,
		height:   3000,
		html:     `<html><body><div class="grid"></div><button class="load-more">Load 24 more</button></body></html>`,
		candidates: []pagedetect.PaginationCandidate{{
			Selector:   "button.load-more",
			Type:       pagedetect.CandidateLoadMore,
			Text:       "Load 24 more",
			Confidence: 0.8,
			Box:        pagedetect.BoundingBox{X: 400, Y: 2800, Width: 120, Height: 40},
		}},
	}
	page.identities = func() []string { return ids }
	page.count = func() int { return len(ids) }
	page.onClick = func() {
		for i := 0; i < 24; i++ {
			ids = append(ids, fmt.Sprintf("https://shop.example/p/%d", len(ids)))
		}
		page.height += 2000
	}
	return page
}

func TestEngine_Detect_LoadMoreWithoutScrollIsPagination(t *testing.T) {
	t.Parallel()

	page := loadMorePage()
	engine := detect.NewEngine(fastConfig())

	result, err := engine.Detect(context.Background(), page, pagedetect.DetectOptions{})

	require.NoError(t, err)
	assert.Equal(t, pagedetect.MethodPagination, result.Method)
	assert.Equal(t, pagedetect.SourceHeuristic, result.Source)
	require.NotNil(t, result.Pagination)
	assert.Equal(t, "button.load-more", result.Pagination.Selector)
	assert.Equal(t, 24, result.Pagination.ProductsLoaded)
	assert.True(t, result.Pagination.Verified)
	assert.Nil(t, result.Scroll)
	assert.Len(t, result.Candidates, 1)

	// The probes must leave the page where it started.
	assert.Equal(t, "https://shop.example/catalog", page.url)
	assert.Equal(t, float64(0), page.scrollY)
}

func TestEngine_Detect_NothingDetectableIsNone(t *testing.T) {
	t.Parallel()

	page := &fakePage{
		url:        "https://shop.example/one-page",
		viewport:   800,
		height:     1200,
		identities: func() []string { return []string{"a", "b", "c"} },
		count:      func() int { return 3 },
	}

	engine := detect.NewEngine(fastConfig())
	result, err := engine.Detect(context.Background(), page, pagedetect.DetectOptions{})

	require.NoError(t, err)
	assert.Equal(t, pagedetect.MethodNone, result.Method)
	assert.Equal(t, pagedetect.SourceHeuristic, result.Source)
	assert.Nil(t, result.Pagination)
	assert.Nil(t, result.Scroll)
}

func TestEngine_Detect_VisionSuggestionSurvivesValidation(t *testing.T) {
	t.Parallel()

	page := loadMorePage()
	engine := detect.NewEngine(fastConfig())
	engine.Vision = &mock.Vision{
		DetectPaginationFn: func(_ context.Context, req *pagedetect.VisionRequest) (*pagedetect.VisionSuggestion, error) {
			return &pagedetect.VisionSuggestion{
				Method:     pagedetect.MethodPagination,
				Confidence: 0.9,
				Selector:   "button.load-more",
			}, nil
		},
	}

	result, err := engine.Detect(context.Background(), page, pagedetect.DetectOptions{})

	require.NoError(t, err)
	assert.Equal(t, pagedetect.MethodPagination, result.Method)
	assert.Equal(t, pagedetect.SourceAI, result.Source)
	require.NotNil(t, result.Pagination)
	assert.Equal(t, "button.load-more", result.Pagination.Selector)
	assert.Equal(t, 24, result.Pagination.ProductsLoaded)
}

func TestEngine_Detect_LowConfidenceSuggestionFallsBack(t *testing.T) {
	t.Parallel()

	page := loadMorePage()
	engine := detect.NewEngine(fastConfig())
	engine.Vision = &mock.Vision{
		DetectPaginationFn: func(context.Context, *pagedetect.VisionRequest) (*pagedetect.VisionSuggestion, error) {
			return &pagedetect.VisionSuggestion{
				Method:     pagedetect.MethodPagination,
				Confidence: 0.3,
				Selector:   "button.load-more",
			}, nil
		},
	}

	result, err := engine.Detect(context.Background(), page, pagedetect.DetectOptions{})

	require.NoError(t, err)
	assert.Equal(t, pagedetect.MethodPagination, result.Method)
	assert.Equal(t, pagedetect.SourceML, result.Source, "discarded suggestion routes through heuristics tagged ml")
}

func TestEngine_Detect_VisionErrorFallsBack(t *testing.T) {
	t.Parallel()

	page := loadMorePage()
	engine := detect.NewEngine(fastConfig())
	engine.Vision = &mock.Vision{
		DetectPaginationFn: func(context.Context, *pagedetect.VisionRequest) (*pagedetect.VisionSuggestion, error) {
			return nil, errors.New("model overloaded")
		},
	}

	result, err := engine.Detect(context.Background(), page, pagedetect.DetectOptions{})

	require.NoError(t, err, "vision failure is never fatal")
	assert.Equal(t, pagedetect.MethodPagination, result.Method)
	assert.Equal(t, pagedetect.SourceML, result.Source)
}

func TestEngine_Detect_VisionHybridScrollsBeforeClicking(t *testing.T) {
	t.Parallel()

	var ids []string
	for i := 0; i < 20; i++ {
		ids = append(ids, fmt.Sprintf("https://shop.example/p/%d", i))
	}
	var events []string
	page := &fakePage{
		url:      "https://shop.example/catalog",
		viewport: 800,
		height:   3000,
		html:     `<html><body><div class="grid"></div><button class="load-more">Show more</button></body></html>`,
	}
	page.identities = func() []string { return ids }
	page.count = func() int { return len(ids) }
	page.onScroll = func(y float64) {
		events = append(events, "scroll")
		if len(ids) < 30 && y+page.viewport >= page.height-400 {
			for i := 0; i < 10; i++ {
				ids = append(ids, fmt.Sprintf("https://shop.example/p/%d", len(ids)))
			}
			page.height += 1000
		}
	}
	page.onClick = func() {
		events = append(events, "click")
		for i := 0; i < 10; i++ {
			ids = append(ids, fmt.Sprintf("https://shop.example/p/%d", len(ids)))
		}
		page.height += 1000
	}

	engine := detect.NewEngine(fastConfig())
	engine.Vision = &mock.Vision{
		DetectPaginationFn: func(context.Context, *pagedetect.VisionRequest) (*pagedetect.VisionSuggestion, error) {
			return &pagedetect.VisionSuggestion{
				Method:     pagedetect.MethodHybrid,
				Confidence: 0.9,
				Selector:   "button.load-more",
			}, nil
		},
	}

	result, err := engine.Detect(context.Background(), page, pagedetect.DetectOptions{})

	require.NoError(t, err)
	assert.Equal(t, pagedetect.MethodHybrid, result.Method)
	assert.Equal(t, pagedetect.SourceAI, result.Source)

	// The scroll probe sees the page as the model saw it; the click,
	// which may navigate, comes after.
	firstClick := slices.Index(events, "click")
	require.Greater(t, firstClick, 0)
	assert.Contains(t, events[:firstClick], "scroll")
}

func TestEngine_Detect_VisionInfiniteScrollStillRunsScrollProbe(t *testing.T) {
	t.Parallel()

	var ids []string
	for i := 0; i < 20; i++ {
		ids = append(ids, fmt.Sprintf("https://shop.example/p/%d", i))
	}
	page := &fakePage{
		url:      "https://shop.example/feed",
		viewport: 800,
		height:   3000,
	}
	page.identities = func() []string { return ids }
	page.count = func() int { return len(ids) }
	page.onScroll = func(y float64) {
		if len(ids) < 40 && y+page.viewport >= page.height-400 {
			for i := 0; i < 10; i++ {
				ids = append(ids, fmt.Sprintf("https://shop.example/p/%d", len(ids)))
			}
			page.height += 1000
		}
	}

	engine := detect.NewEngine(fastConfig())
	engine.Vision = &mock.Vision{
		DetectPaginationFn: func(context.Context, *pagedetect.VisionRequest) (*pagedetect.VisionSuggestion, error) {
			return &pagedetect.VisionSuggestion{
				Method:     pagedetect.MethodInfiniteScroll,
				Confidence: 0.85,
			}, nil
		},
	}

	result, err := engine.Detect(context.Background(), page, pagedetect.DetectOptions{})

	require.NoError(t, err)
	assert.Equal(t, pagedetect.MethodInfiniteScroll, result.Method)
	assert.Equal(t, pagedetect.SourceAI, result.Source)
	require.NotNil(t, result.Scroll)
	assert.Equal(t, 20, result.Scroll.ProductsLoaded)
	assert.NotEmpty(t, result.Scroll.ScrollPositions)
}
