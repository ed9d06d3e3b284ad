package pagedetect

import (
	"context"
	"time"
)

// Strategy is a persisted detection result for a site, so repeated runs
// against the same listing page can skip re-probing.
type Strategy struct {
	ID         string          `json:"id"`
	SiteURL    string          `json:"siteUrl"`
	Method     Method          `json:"method"`
	Source     Source          `json:"source"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
	Scroll     *ScrollInfo     `json:"scroll,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Validate returns an error if the strategy contains invalid fields.
func (s *Strategy) Validate() error {
	if s.SiteURL == "" {
		return Errorf(EINVALID, "strategy site URL required")
	}
	switch s.Method {
	case MethodPagination, MethodInfiniteScroll, MethodHybrid, MethodNone:
	default:
		return Errorf(EINVALID, "unknown detection method %q", s.Method)
	}
	return nil
}

// StrategyFilter represents a filter for FindStrategies.
type StrategyFilter struct {
	ID      *string `json:"id"`
	SiteURL *string `json:"siteUrl"`
	Method  *Method `json:"method"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// StrategyService manages persisted detection strategies.
type StrategyService interface {
	// CreateStrategy creates a new strategy, replacing any existing one
	// for the same site URL.
	CreateStrategy(ctx context.Context, strategy *Strategy) error

	// FindStrategyBySiteURL retrieves the strategy stored for a site.
	// Returns ENOTFOUND if none exists.
	FindStrategyBySiteURL(ctx context.Context, siteURL string) (*Strategy, error)

	// FindStrategies retrieves strategies matching the filter.
	FindStrategies(ctx context.Context, filter StrategyFilter) ([]*Strategy, error)

	// DeleteStrategy permanently removes a strategy.
	// Returns ENOTFOUND if it does not exist.
	DeleteStrategy(ctx context.Context, id string) error
}
