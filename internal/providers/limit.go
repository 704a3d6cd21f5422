package providers

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

type rateLimited struct {
	Backend
	limiter *rate.Limiter
}

// WithRateLimit spaces FixCode and DiffSummary requests to at most perMinute
// per minute. A non-positive limit returns b unchanged.
func WithRateLimit(b Backend, perMinute int) Backend {
	if perMinute <= 0 {
		return b
	}
	return &rateLimited{
		Backend: b,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

func (r *rateLimited) FixCode(ctx context.Context, path, content, model string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", &BackendError{Backend: r.Name(), Op: "fix", Err: err}
	}
	return r.Backend.FixCode(ctx, path, content, model)
}

func (r *rateLimited) DiffSummary(ctx context.Context, original, fixed, path, model string) string {
	if err := r.limiter.Wait(ctx); err != nil {
		return SummaryUnavailable
	}
	return r.Backend.DiffSummary(ctx, original, fixed, path, model)
}
