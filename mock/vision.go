package mock

import (
	"context"

	"github.com/fwojciec/pagedetect"
)

var _ pagedetect.Vision = (*Vision)(nil)

// Vision is a mock implementation of pagedetect.Vision.
type Vision struct {
	DetectPaginationFn func(ctx context.Context, req *pagedetect.VisionRequest) (*pagedetect.VisionSuggestion, error)
}

func (v *Vision) DetectPagination(ctx context.Context, req *pagedetect.VisionRequest) (*pagedetect.VisionSuggestion, error) {
	return v.DetectPaginationFn(ctx, req)
}
