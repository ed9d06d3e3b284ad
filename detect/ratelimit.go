package detect

import (
	"context"
	"sync"

	"github.com/fwojciec/pagedetect"
	"golang.org/x/time/rate"
)

var _ pagedetect.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter rate-limits detection runs per domain with token buckets,
// so a batch can probe many sites concurrently without hammering any one of
// them. Each domain gets its own limiter with a burst of 1.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter returns a DomainLimiter allowing rps runs per second per
// domain.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the domain's limiter allows another run, or the context
// is cancelled.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
