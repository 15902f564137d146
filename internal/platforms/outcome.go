// Package platforms holds the mocked integrations a product is pushed to.
// Each adapter returns an Outcome value; adapters never fail with an error.
package platforms

import (
	"context"
	"time"

	"catalogsync/internal/domain"
)

// Outcome is either Success or Failure.
type Outcome interface {
	outcome()
}

type Success struct {
	ExternalID    string
	Message       string
	NewCredential string
}

type Failure struct {
	Reason     string
	Retryable  bool
	RetryAfter time.Duration
}

func (Success) outcome() {}
func (Failure) outcome() {}

const (
	ReasonInvalidPriceType = "invalid_price_type"
	ReasonRateLimited      = "rate_limited"
	ReasonAuthFailed       = "authentication_failed"
	ReasonRemoteRejected   = "remote_rejected"
	ReasonCanceled         = "canceled"
)

// Request carries the platform specific inputs of a sync call.
type Request struct {
	Token string
}

type Adapter interface {
	Platform() domain.Platform
	Sync(ctx context.Context, p domain.Product, req Request) Outcome
}

// Default simulated round-trip times. Commerce answers fastest.
const (
	CommerceLatency   = 1000 * time.Millisecond
	ShortVideoLatency = 1500 * time.Millisecond
	PhotoShareLatency = 1500 * time.Millisecond
)

// wait simulates the remote round trip. It reports false if ctx ended first.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func canceled() Failure {
	return Failure{Reason: ReasonCanceled, Retryable: true}
}
