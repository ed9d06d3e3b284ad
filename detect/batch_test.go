package detect_test

import (
	"context"
	"sync"
	"testing"

	"github.com/fwojciec/pagedetect"
	"github.com/fwojciec/pagedetect/detect"
	"github.com/fwojciec/pagedetect/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchRunner_Run(t *testing.T) {
	t.Parallel()

	released := 0
	opener := &mock.PageOpener{
		OpenPageFn: func(_ context.Context, url string) (pagedetect.Page, func(), error) {
			page := &fakePage{url: url, viewport: 800, height: 1000}
			return page, func() { released++ }, nil
		},
	}

	detector := &mock.Detector{
		DetectFn: func(ctx context.Context, page pagedetect.Page, _ pagedetect.DetectOptions) (*pagedetect.DetectionResult, error) {
			url, _ := page.URL(ctx)
			switch url {
			case "https://a.example/list":
				return &pagedetect.DetectionResult{
					Method: pagedetect.MethodPagination,
					Source: pagedetect.SourceHeuristic,
					Pagination: &pagedetect.PaginationInfo{
						Selector: "a.next", Type: pagedetect.CandidateNextButton, Verified: true,
					},
				}, nil
			case "https://b.example/list":
				return &pagedetect.DetectionResult{
					Method: pagedetect.MethodNone,
					Source: pagedetect.SourceHeuristic,
				}, nil
			default:
				return nil, pagedetect.Errorf(pagedetect.EUNAVAILABLE, "page load failed")
			}
		},
	}

	var mu sync.Mutex
	saved := make(map[string]*pagedetect.Strategy)
	strategies := &mock.StrategyService{
		CreateStrategyFn: func(_ context.Context, s *pagedetect.Strategy) error {
			mu.Lock()
			defer mu.Unlock()
			saved[s.SiteURL] = s
			return nil
		},
	}

	var waited []string
	limiter := &mock.DomainLimiter{
		WaitFn: func(_ context.Context, domain string) error {
			mu.Lock()
			defer mu.Unlock()
			waited = append(waited, domain)
			return nil
		},
	}

	runner := &detect.BatchRunner{
		Pages:       opener,
		Detector:    detector,
		Strategies:  strategies,
		RateLimiter: limiter,
		Concurrency: 2,
	}

	urls := []string{
		"https://a.example/list",
		"https://b.example/list",
		"https://c.example/list",
	}
	result, err := runner.Run(context.Background(), urls, pagedetect.DetectOptions{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Detected)
	assert.Equal(t, 1, result.None)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 3, released, "every opened page must be released")
	assert.Len(t, waited, 3)

	// Both completed detections persist, including the none outcome; only
	// the failure does not.
	require.Contains(t, saved, "https://a.example/list")
	assert.Equal(t, pagedetect.MethodPagination, saved["https://a.example/list"].Method)
	assert.NotEmpty(t, saved["https://a.example/list"].ID)
	assert.Contains(t, saved, "https://b.example/list")
	assert.NotContains(t, saved, "https://c.example/list")
}

func TestBatchRunner_Run_InvalidURLCountsAsFailure(t *testing.T) {
	t.Parallel()

	runner := &detect.BatchRunner{
		Pages: &mock.PageOpener{
			OpenPageFn: func(context.Context, string) (pagedetect.Page, func(), error) {
				t.Error("must not open a page for an unparseable URL")
				return nil, nil, nil
			},
		},
		Detector:    &mock.Detector{},
		Concurrency: 1,
	}

	result, err := runner.Run(context.Background(), []string{"not a url"}, pagedetect.DetectOptions{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
}

func TestBatchRunner_Run_EmptyInput(t *testing.T) {
	t.Parallel()

	runner := &detect.BatchRunner{Concurrency: 2}
	result, err := runner.Run(context.Background(), nil, pagedetect.DetectOptions{}, nil)

	require.NoError(t, err)
	assert.Zero(t, result.Detected)
	assert.Zero(t, result.None)
	assert.Zero(t, result.Failed)
}

func TestBatchRunner_Run_ReportsProgress(t *testing.T) {
	t.Parallel()

	runner := &detect.BatchRunner{
		Pages: &mock.PageOpener{
			OpenPageFn: func(_ context.Context, url string) (pagedetect.Page, func(), error) {
				return &fakePage{url: url}, func() {}, nil
			},
		},
		Detector: &mock.Detector{
			DetectFn: func(context.Context, pagedetect.Page, pagedetect.DetectOptions) (*pagedetect.DetectionResult, error) {
				return &pagedetect.DetectionResult{Method: pagedetect.MethodInfiniteScroll}, nil
			},
		},
		Concurrency: 1,
	}

	var mu sync.Mutex
	var events []detect.ProgressEvent
	progress := func(event detect.ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, event)
	}

	_, err := runner.Run(context.Background(), []string{"https://a.example/", "https://b.example/"}, pagedetect.DetectOptions{}, progress)

	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, detect.ProgressStarted, events[0].Type)
	assert.Equal(t, detect.ProgressCompleted, events[1].Type)
	assert.Equal(t, detect.ProgressFinished, events[3].Type)
	assert.Equal(t, 2, events[3].Completed)
}
