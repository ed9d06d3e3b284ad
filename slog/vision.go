package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagedetect"
)

// Ensure LoggingVision implements pagedetect.Vision.
var _ pagedetect.Vision = (*LoggingVision)(nil)

// LoggingVision wraps a Vision service with timing and outcome logging.
type LoggingVision struct {
	next   pagedetect.Vision
	logger *slog.Logger
}

// NewLoggingVision creates a new LoggingVision.
func NewLoggingVision(next pagedetect.Vision, logger *slog.Logger) *LoggingVision {
	return &LoggingVision{next: next, logger: logger}
}

// DetectPagination logs the suggestion and delegates to the wrapped service.
func (v *LoggingVision) DetectPagination(ctx context.Context, req *pagedetect.VisionRequest) (suggestion *pagedetect.VisionSuggestion, err error) {
	defer func(begin time.Time) {
		method := pagedetect.Method("")
		confidence := 0.0
		var latency int64
		if suggestion != nil {
			method = suggestion.Method
			confidence = suggestion.Confidence
			latency = suggestion.LatencyMs
		}
		v.logger.Info("vision detect",
			"url", req.URL,
			"method", method,
			"confidence", confidence,
			"model_latency_ms", latency,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return v.next.DetectPagination(ctx, req)
}
