// Package slog provides logging decorators for pagedetect services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagedetect"
)

// Ensure LoggingDetector implements pagedetect.Detector.
var _ pagedetect.Detector = (*LoggingDetector)(nil)

// LoggingDetector wraps a Detector with timing and outcome logging.
type LoggingDetector struct {
	next   pagedetect.Detector
	logger *slog.Logger
}

// NewLoggingDetector creates a new LoggingDetector.
func NewLoggingDetector(next pagedetect.Detector, logger *slog.Logger) *LoggingDetector {
	return &LoggingDetector{next: next, logger: logger}
}

// Detect logs the detection outcome and delegates to the wrapped detector.
func (d *LoggingDetector) Detect(ctx context.Context, page pagedetect.Page, opts pagedetect.DetectOptions) (result *pagedetect.DetectionResult, err error) {
	url, _ := page.URL(ctx)
	defer func(begin time.Time) {
		method := pagedetect.MethodNone
		source := pagedetect.Source("")
		candidates := 0
		if result != nil {
			method = result.Method
			source = result.Source
			candidates = len(result.Candidates)
		}
		d.logger.Info("detect",
			"url", url,
			"method", method,
			"source", source,
			"candidates", candidates,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Detect(ctx, page, opts)
}
