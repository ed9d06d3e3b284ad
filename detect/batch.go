package detect

import (
	"context"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/fwojciec/pagedetect"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// BatchRunner detects pagination strategies for many sites concurrently,
// bounded by a worker limit and a per-domain rate limiter, and persists
// each outcome when a strategy service is configured.
type BatchRunner struct {
	Pages       pagedetect.PageOpener
	Detector    pagedetect.Detector
	Strategies  pagedetect.StrategyService // optional
	RateLimiter pagedetect.DomainLimiter   // optional
	Concurrency int
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Detected int
	None     int
	Failed   int
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressEvent reports progress during a batch run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Method    pagedetect.Method
	Error     error
}

// ProgressFunc is a callback for reporting batch progress.
type ProgressFunc func(event ProgressEvent)

// Run detects a strategy for every URL. Per-URL failures are counted, not
// fatal; the only errors returned are context cancellation and invalid
// input. The progress callback, if provided, receives events as detection
// proceeds and may be called from multiple goroutines.
func (r *BatchRunner) Run(ctx context.Context, urls []string, opts pagedetect.DetectOptions, progress ProgressFunc) (*BatchResult, error) {
	if len(urls) == 0 {
		return &BatchResult{}, nil
	}

	concurrency := r.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: len(urls)})
	}

	var detected, none, failed atomic.Int64
	var completed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, siteURL := range urls {
		g.Go(func() error {
			result, err := r.detectOne(ctx, siteURL, opts)
			done := int(completed.Add(1))

			switch {
			case err != nil:
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failed.Add(1)
				if progress != nil {
					progress(ProgressEvent{Type: ProgressFailed, Completed: done, Total: len(urls), URL: siteURL, Error: err})
				}
			case result.Method == pagedetect.MethodNone:
				none.Add(1)
				if progress != nil {
					progress(ProgressEvent{Type: ProgressCompleted, Completed: done, Total: len(urls), URL: siteURL, Method: result.Method})
				}
			default:
				detected.Add(1)
				if progress != nil {
					progress(ProgressEvent{Type: ProgressCompleted, Completed: done, Total: len(urls), URL: siteURL, Method: result.Method})
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: len(urls), Total: len(urls)})
	}
	return &BatchResult{
		Detected: int(detected.Load()),
		None:     int(none.Load()),
		Failed:   int(failed.Load()),
	}, nil
}

// detectOne runs detection for a single site and persists the outcome.
func (r *BatchRunner) detectOne(ctx context.Context, siteURL string, opts pagedetect.DetectOptions) (*pagedetect.DetectionResult, error) {
	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return nil, pagedetect.Errorf(pagedetect.EINVALID, "invalid site URL %q", siteURL)
	}

	if r.RateLimiter != nil {
		if err := r.RateLimiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}

	page, release, err := r.Pages.OpenPage(ctx, siteURL)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := r.Detector.Detect(ctx, page, opts)
	if err != nil {
		return nil, err
	}

	if r.Strategies != nil {
		strategy := NewStrategy(siteURL, result)
		if err := r.Strategies.CreateStrategy(ctx, strategy); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// NewStrategy builds a persistable strategy from a detection result.
func NewStrategy(siteURL string, result *pagedetect.DetectionResult) *pagedetect.Strategy {
	now := time.Now().UTC()
	return &pagedetect.Strategy{
		ID:         uuid.New().String(),
		SiteURL:    siteURL,
		Method:     result.Method,
		Source:     result.Source,
		Pagination: result.Pagination,
		Scroll:     result.Scroll,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
