package mock

import (
	"context"

	"github.com/fwojciec/pagedetect"
)

var _ pagedetect.Detector = (*Detector)(nil)

// Detector is a mock implementation of pagedetect.Detector.
type Detector struct {
	DetectFn func(ctx context.Context, page pagedetect.Page, opts pagedetect.DetectOptions) (*pagedetect.DetectionResult, error)
}

func (d *Detector) Detect(ctx context.Context, page pagedetect.Page, opts pagedetect.DetectOptions) (*pagedetect.DetectionResult, error) {
	return d.DetectFn(ctx, page, opts)
}

var _ pagedetect.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of pagedetect.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
