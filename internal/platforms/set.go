package platforms

import (
	"time"

	"catalogsync/internal/credential"
	"catalogsync/internal/domain"
	"catalogsync/internal/ratelimit"
)

type Set map[domain.Platform]Adapter

// NewSet wires the three adapters. latencyScale multiplies the default
// round-trip times; 0 disables the simulated delay.
func NewSet(limiter *ratelimit.Window, creds *credential.Store, latencyScale float64) Set {
	scale := func(d time.Duration) time.Duration {
		if latencyScale <= 0 {
			return 0
		}
		return time.Duration(float64(d) * latencyScale)
	}
	return Set{
		domain.Commerce:   Commerce{Latency: scale(CommerceLatency)},
		domain.ShortVideo: ShortVideo{Limiter: limiter, Latency: scale(ShortVideoLatency)},
		domain.PhotoShare: PhotoShare{Credentials: creds, Latency: scale(PhotoShareLatency)},
	}
}
