package directory

import (
	"context"
	"errors"
	"time"

	"github.com/okian/vibefeed/internal/domain/model"
	"github.com/okian/vibefeed/pkg/logger"
	"github.com/okian/vibefeed/pkg/metrics"
)

// Instrumented records fetch outcomes and latency for a directory.
type Instrumented struct {
	inner    model.Directory
	provider string
	log      logger.Logger
}

// NewInstrumented wraps inner; provider labels the emitted metrics.
func NewInstrumented(inner model.Directory, provider string, log logger.Logger) *Instrumented {
	if log == nil {
		log = logger.Nop()
	}
	return &Instrumented{inner: inner, provider: provider, log: log}
}

// Ready delegates to the wrapped directory.
func (i *Instrumented) Ready() error {
	return Ready(i.inner)
}

// Nearby forwards the query and records how it went.
func (i *Instrumented) Nearby(ctx context.Context, q model.NearbyQuery) ([]model.Candidate, error) {
	start := time.Now()
	got, err := i.inner.Nearby(ctx, q)
	elapsed := time.Since(start)

	metrics.RecordDirectoryLatency(i.provider, float64(elapsed.Milliseconds()))
	outcome := fetchOutcome(got, err)
	metrics.RecordDirectoryFetch(i.provider, q.Category, outcome)

	if err != nil {
		i.log.Warn(ctx, "directory fetch failed",
			logger.String("provider", i.provider),
			logger.String("category", q.Category),
			logger.Duration("elapsed", elapsed),
			logger.Error(err))
		return nil, err
	}
	i.log.Debug(ctx, "directory fetch",
		logger.String("provider", i.provider),
		logger.String("category", q.Category),
		logger.Int("results", len(got)),
		logger.Duration("elapsed", elapsed))
	return got, nil
}

func fetchOutcome(got []model.Candidate, err error) string {
	switch {
	case err == nil && len(got) == 0:
		return "empty"
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
