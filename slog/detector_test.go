package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/pagedetect"
	"github.com/fwojciec/pagedetect/mock"
	pdslog "github.com/fwojciec/pagedetect/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingDetector_Detect(t *testing.T) {
	t.Parallel()

	t.Run("logs method, source, and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Detector{
			DetectFn: func(_ context.Context, _ pagedetect.Page, _ pagedetect.DetectOptions) (*pagedetect.DetectionResult, error) {
				return &pagedetect.DetectionResult{
					Method: pagedetect.MethodInfiniteScroll,
					Source: pagedetect.SourceHeuristic,
					Candidates: []pagedetect.PaginationCandidate{
						{Selector: "button.load-more", Type: pagedetect.CandidateLoadMore},
					},
				}, nil
			},
		}
		page := &mock.Page{
			URLFn: func(_ context.Context) (string, error) {
				return "https://shop.example/catalog", nil
			},
		}

		detector := pdslog.NewLoggingDetector(inner, logger)
		result, err := detector.Detect(context.Background(), page, pagedetect.DetectOptions{})

		require.NoError(t, err)
		assert.Equal(t, pagedetect.MethodInfiniteScroll, result.Method)

		output := buf.String()
		assert.Contains(t, output, "detect")
		assert.Contains(t, output, "url=https://shop.example/catalog")
		assert.Contains(t, output, "method=infinite_scroll")
		assert.Contains(t, output, "source=heuristic")
		assert.Contains(t, output, "candidates=1")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs errors without dropping them", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Detector{
			DetectFn: func(_ context.Context, _ pagedetect.Page, _ pagedetect.DetectOptions) (*pagedetect.DetectionResult, error) {
				return nil, pagedetect.Errorf(pagedetect.EUNAVAILABLE, "page crashed")
			},
		}
		page := &mock.Page{
			URLFn: func(_ context.Context) (string, error) {
				return "https://shop.example/catalog", nil
			},
		}

		detector := pdslog.NewLoggingDetector(inner, logger)
		_, err := detector.Detect(context.Background(), page, pagedetect.DetectOptions{})

		require.Error(t, err)
		assert.Equal(t, pagedetect.EUNAVAILABLE, pagedetect.ErrorCode(err))
		assert.Contains(t, buf.String(), "page crashed")
	})
}

func TestLoggingVision_DetectPagination(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &mock.Vision{
		DetectPaginationFn: func(_ context.Context, _ *pagedetect.VisionRequest) (*pagedetect.VisionSuggestion, error) {
			return &pagedetect.VisionSuggestion{
				Method:     pagedetect.MethodPagination,
				Confidence: 0.85,
				LatencyMs:  412,
			}, nil
		},
	}

	vision := pdslog.NewLoggingVision(inner, logger)
	suggestion, err := vision.DetectPagination(context.Background(), &pagedetect.VisionRequest{
		URL: "https://shop.example/catalog",
	})

	require.NoError(t, err)
	assert.Equal(t, pagedetect.MethodPagination, suggestion.Method)

	output := buf.String()
	assert.Contains(t, output, "vision detect")
	assert.Contains(t, output, "method=pagination")
	assert.Contains(t, output, "confidence=0.85")
	assert.Contains(t, output, "model_latency_ms=412")
	assert.Contains(t, output, "duration=")
}
