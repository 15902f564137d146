package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"catalogsync/internal/clock"
	"catalogsync/internal/domain"
	"catalogsync/internal/metrics"
	"catalogsync/internal/platforms"
	"catalogsync/internal/repos"
)

var ErrInvalidPlatform = errors.New("unknown platform")

type SyncResult struct {
	Success       bool
	Platform      domain.Platform
	ExternalID    string
	Message       string
	Error         string
	Reason        string
	Retryable     bool
	RetryAfter    time.Duration
	NewCredential string
	Status        domain.PlatformSyncStatus
}

// SyncService is the only writer of a product's sync status.
type SyncService struct {
	Products repos.ProductStore
	Adapters platforms.Set
	Clock    clock.Clock
}

func NewSyncService(products repos.ProductStore, adapters platforms.Set, c clock.Clock) *SyncService {
	if c == nil {
		c = clock.Real{}
	}
	return &SyncService{Products: products, Adapters: adapters, Clock: c}
}

// Sync pushes one product to one platform and records the outcome on that
// platform's status entry only. Adapter failures come back as a result with
// Success == false; the error return is for lookup and storage problems.
func (s *SyncService) Sync(ctx context.Context, productID, platform string, req platforms.Request) (SyncResult, error) {
	product, err := s.Products.Get(productID)
	if err != nil {
		return SyncResult{}, err
	}
	plat, ok := domain.ParsePlatform(platform)
	if !ok {
		return SyncResult{}, fmt.Errorf("%w: %q", ErrInvalidPlatform, platform)
	}
	adapter, ok := s.Adapters[plat]
	if !ok {
		return SyncResult{}, fmt.Errorf("%w: %q has no adapter", ErrInvalidPlatform, plat)
	}

	// the adapter's simulated round trip runs outside the store's critical section
	started := time.Now()
	outcome := adapter.Sync(ctx, product, req)
	elapsed := time.Since(started)

	res := SyncResult{Platform: plat}
	var apply func(domain.PlatformSyncStatus) domain.PlatformSyncStatus
	switch o := outcome.(type) {
	case platforms.Success:
		now := s.Clock.Now()
		res.Success = true
		res.ExternalID = o.ExternalID
		res.Message = o.Message
		res.NewCredential = o.NewCredential
		apply = func(domain.PlatformSyncStatus) domain.PlatformSyncStatus {
			return domain.PlatformSyncStatus{State: domain.StateSuccess, LastSuccessAt: &now}
		}
	case platforms.Failure:
		res.Reason = o.Reason
		res.Retryable = o.Retryable
		res.RetryAfter = o.RetryAfter
		res.Error = failureText(o)
		apply = func(st domain.PlatformSyncStatus) domain.PlatformSyncStatus {
			st.State = domain.StateFailed
			st.Error = res.Error
			return st
		}
	default:
		return SyncResult{}, fmt.Errorf("adapter %s returned unexpected outcome %T", plat, outcome)
	}

	updated, err := s.Products.Mutate(productID, func(p *domain.Product) error {
		p.SyncStatus[plat] = apply(p.SyncStatus[plat])
		return nil
	})
	if err != nil {
		return SyncResult{}, fmt.Errorf("record %s status for %s: %w", plat, productID, err)
	}
	res.Status = updated.SyncStatus[plat]

	if res.Success {
		metrics.ObserveSync(string(plat), "success", "", elapsed)
		if res.NewCredential != "" {
			metrics.CredentialIssued()
		}
	} else {
		metrics.ObserveSync(string(plat), "failed", res.Reason, elapsed)
	}
	return res, nil
}

func failureText(f platforms.Failure) string {
	if f.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %ds)", f.Reason, RetryAfterSeconds(f.RetryAfter))
	}
	return f.Reason
}

// RetryAfterSeconds rounds d up to whole seconds, never below one.
func RetryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
