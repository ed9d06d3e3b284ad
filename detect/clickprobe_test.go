package detect_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/pagedetect"
	"github.com/fwojciec/pagedetect/detect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadMoreCandidate() pagedetect.PaginationCandidate {
	return pagedetect.PaginationCandidate{
		Selector:   "button.load-more",
		Type:       pagedetect.CandidateLoadMore,
		Text:       "Load 24 more",
		Confidence: 0.8,
	}
}

func TestClickProbe_AjaxLoadMore(t *testing.T) {
	t.Parallel()

	// 24 products, a load-more button that appends 24 more in place.
	ids := make([]string, 24)
	for i := range ids {
		ids[i] = fmt.Sprintf("https://shop.example/p/%d", i)
	}
	page := &fakePage{
		url:        "https://shop.example/catalog",
		viewport:   800,
		height:     3000,
		identities: func() []string { return ids },
		count:      func() int { return len(ids) },
	}
	page.onClick = func() {
		for i := 0; i < 24; i++ {
			ids = append(ids, fmt.Sprintf("https://shop.example/p/%d", len(ids)))
		}
		page.height += 2000
	}

	probe := detect.NewClickProbe(fastConfig())
	result, err := probe.Test(context.Background(), page, loadMoreCandidate(), ".product-card")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.URLChanged)
	assert.Equal(t, 24, result.InitialCount)
	assert.Equal(t, 48, result.FinalCount)
	assert.Equal(t, 24, result.NewProductsFound)
	assert.Nil(t, result.OffsetPattern)
	assert.Empty(t, page.navigations, "no rollback navigation needed when URL did not change")
}

func TestClickProbe_NavigatingClickRollsBack(t *testing.T) {
	t.Parallel()

	const startURL = "https://shop.example/catalog?page=1"
	page := &fakePage{
		url:        startURL,
		viewport:   800,
		height:     3000,
		identities: func() []string { return []string{"a", "b"} },
		count:      func() int { return 2 },
	}
	page.onClick = func() {
		page.url = "https://shop.example/catalog?page=2"
	}

	candidate := pagedetect.PaginationCandidate{
		Selector: "a[rel=next]",
		Type:     pagedetect.CandidateNextButton,
	}

	probe := detect.NewClickProbe(fastConfig())
	result, err := probe.Test(context.Background(), page, candidate, ".product-card")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.URLChanged)
	require.NotNil(t, result.OffsetPattern)
	assert.Equal(t, "page", result.OffsetPattern.Key)
	assert.Equal(t, 1, result.OffsetPattern.Start)
	assert.Equal(t, 1, result.OffsetPattern.Increment)
	assert.Equal(t, pagedetect.PatternPage, result.OffsetPattern.Type)

	// Rollback is unconditional: the page must be back on the starting
	// URL when the probe returns.
	assert.Equal(t, startURL, page.url)
	assert.Contains(t, page.navigations, startURL)
}

func TestClickProbe_EscalatesThroughStrategies(t *testing.T) {
	t.Parallel()

	// Native click blocked by an overlay; forced click works.
	ids := []string{"x", "y"}
	page := &fakePage{
		url:        "https://shop.example/catalog",
		viewport:   800,
		height:     3000,
		clickErr:   errors.New("element covered by cookie banner"),
		identities: func() []string { return ids },
		count:      func() int { return len(ids) },
	}
	page.onClick = func() { ids = append(ids, "z") }

	probe := detect.NewClickProbe(fastConfig())
	result, err := probe.Test(context.Background(), page, loadMoreCandidate(), ".product-card")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.NewProductsFound)
}

func TestClickProbe_AllStrategiesFailIsNegativeSignal(t *testing.T) {
	t.Parallel()

	page := &fakePage{
		url:           "https://shop.example/catalog",
		viewport:      800,
		height:        3000,
		clickErr:      errors.New("not found"),
		forceClickErr: errors.New("not found"),
		identities:    func() []string { return []string{"a"} },
		count:         func() int { return 1 },
	}

	probe := detect.NewClickProbe(fastConfig())
	result, err := probe.Test(context.Background(), page, loadMoreCandidate(), ".product-card")

	require.NoError(t, err, "exhausting click strategies is not a page failure")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "click strategies failed")
	assert.Equal(t, "https://shop.example/catalog", page.url)
}

func TestClickProbe_NoChangeIsNotSuccess(t *testing.T) {
	t.Parallel()

	// The click lands but nothing happens: same URL, same identities,
	// same height.
	page := &fakePage{
		url:        "https://shop.example/catalog",
		viewport:   800,
		height:     3000,
		identities: func() []string { return []string{"a", "b", "c"} },
		count:      func() int { return 3 },
	}

	probe := detect.NewClickProbe(fastConfig())
	result, err := probe.Test(context.Background(), page, loadMoreCandidate(), ".product-card")

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 3, result.FinalCount)
	assert.Equal(t, 0, result.NewProductsFound)
}

func TestClickProbe_RestoresScrollPosition(t *testing.T) {
	t.Parallel()

	page := &fakePage{
		url:        "https://shop.example/catalog",
		viewport:   800,
		height:     3000,
		scrollY:    1200,
		identities: func() []string { return []string{"a"} },
		count:      func() int { return 1 },
	}

	probe := detect.NewClickProbe(fastConfig())
	_, err := probe.Test(context.Background(), page, loadMoreCandidate(), ".product-card")

	require.NoError(t, err)
	assert.Equal(t, float64(1200), page.scrollY)
}
