package mock

import (
	"context"

	"github.com/fwojciec/pagedetect"
)

var _ pagedetect.StrategyService = (*StrategyService)(nil)

// StrategyService is a mock implementation of pagedetect.StrategyService.
type StrategyService struct {
	CreateStrategyFn        func(ctx context.Context, strategy *pagedetect.Strategy) error
	FindStrategyBySiteURLFn func(ctx context.Context, siteURL string) (*pagedetect.Strategy, error)
	FindStrategiesFn        func(ctx context.Context, filter pagedetect.StrategyFilter) ([]*pagedetect.Strategy, error)
	DeleteStrategyFn        func(ctx context.Context, id string) error
}

func (s *StrategyService) CreateStrategy(ctx context.Context, strategy *pagedetect.Strategy) error {
	return s.CreateStrategyFn(ctx, strategy)
}

func (s *StrategyService) FindStrategyBySiteURL(ctx context.Context, siteURL string) (*pagedetect.Strategy, error) {
	return s.FindStrategyBySiteURLFn(ctx, siteURL)
}

func (s *StrategyService) FindStrategies(ctx context.Context, filter pagedetect.StrategyFilter) ([]*pagedetect.Strategy, error) {
	return s.FindStrategiesFn(ctx, filter)
}

func (s *StrategyService) DeleteStrategy(ctx context.Context, id string) error {
	return s.DeleteStrategyFn(ctx, id)
}
