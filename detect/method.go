package detect

import "github.com/fwojciec/pagedetect"

// Decide picks the detection method from both probes' outcomes. It is a
// pure function: no page access, no side effects.
//
// The rules are evaluated strictly in order:
//
//  1. hybrid — both probes surfaced new products, or scrolling surfaced new
//     products and a load-more candidate exists even if its click test did
//     not cleanly succeed. Sites frequently support both mechanisms, and
//     the hybrid strategy maximizes downstream coverage.
//  2. pagination — the click surfaced new products, at least as many as
//     scrolling did.
//  3. infinite_scroll — scrolling surfaced any new products.
//  4. pagination, unverified — the click changed the URL but product
//     identity could not be confirmed; callers should assume the same page
//     size repeats.
//  5. none.
//
// clicked is the candidate the click result belongs to, candidates the full
// scan output; scroll, click, and clicked may each be nil or empty when the
// corresponding probe did not run.
func Decide(scroll *pagedetect.ScrollProbeResult, click *pagedetect.ClickProbeResult, clicked *pagedetect.PaginationCandidate, candidates []pagedetect.PaginationCandidate) (pagedetect.Method, *pagedetect.PaginationInfo, *pagedetect.ScrollInfo) {
	scrollGain := scroll.Gain()
	clickGain := 0
	clickSuccess := false
	urlChanged := false
	if click != nil {
		clickGain = click.NewProductsFound
		clickSuccess = click.Success
		urlChanged = click.URLChanged
	}

	scrollInfo := func() *pagedetect.ScrollInfo {
		return &pagedetect.ScrollInfo{
			ProductsLoaded:  scrollGain,
			ScrollPositions: scroll.ScrollPositions,
		}
	}
	paginationInfo := func(verified bool) *pagedetect.PaginationInfo {
		info := &pagedetect.PaginationInfo{
			ProductsLoaded: clickGain,
			Verified:       verified,
		}
		if clicked != nil {
			info.Selector = clicked.Selector
			info.Type = clicked.Type
		}
		if click != nil {
			info.Offset = click.OffsetPattern
		}
		return info
	}

	var loadMore *pagedetect.PaginationCandidate
	if clicked != nil && clicked.Type == pagedetect.CandidateLoadMore {
		loadMore = clicked
	} else {
		for i := range candidates {
			if candidates[i].Type == pagedetect.CandidateLoadMore {
				loadMore = &candidates[i]
				break
			}
		}
	}
	if clicked == nil {
		// A hybrid verdict without a clean click still names the
		// load-more control for replay.
		clicked = loadMore
	}

	switch {
	case scrollGain > 0 && (clickGain > 0 || loadMore != nil):
		return pagedetect.MethodHybrid, paginationInfo(clickGain > 0), scrollInfo()
	case clickSuccess && clickGain > 0 && clickGain >= scrollGain:
		return pagedetect.MethodPagination, paginationInfo(true), nil
	case scrollGain > 0:
		return pagedetect.MethodInfiniteScroll, nil, scrollInfo()
	case clickSuccess && urlChanged:
		return pagedetect.MethodPagination, paginationInfo(false), nil
	default:
		return pagedetect.MethodNone, nil, nil
	}
}
