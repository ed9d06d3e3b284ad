package pagedetect

import "context"

// DomainLimiter rate-limits operations per domain. Batch detection uses it
// to avoid hammering a storefront with probe navigations.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows an operation against the
	// domain, or the context is canceled.
	Wait(ctx context.Context, domain string) error
}
