package platforms

import (
	"context"
	"time"

	"catalogsync/internal/domain"
	"catalogsync/internal/ratelimit"
)

type ShortVideo struct {
	Limiter *ratelimit.Window
	Latency time.Duration
}

func (ShortVideo) Platform() domain.Platform { return domain.ShortVideo }

func (a ShortVideo) Sync(ctx context.Context, p domain.Product, _ Request) Outcome {
	if !a.Limiter.TryAcquire() {
		return Failure{
			Reason:     ReasonRateLimited,
			Retryable:  true,
			RetryAfter: a.Limiter.TimeUntilReset(),
		}
	}
	if !wait(ctx, a.Latency) {
		return canceled()
	}
	return Success{
		ExternalID: "shortvideo_" + p.ID,
		Message:    "Product listed in short-video shop",
	}
}
