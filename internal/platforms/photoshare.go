package platforms

import (
	"context"
	"time"

	"catalogsync/internal/credential"
	"catalogsync/internal/domain"
)

// PhotoShare posts products to the photo-sharing platform. An expired token
// is swapped for a fresh one; only a missing or unknown token is rejected.
type PhotoShare struct {
	Credentials *credential.Store
	Latency     time.Duration
}

func (PhotoShare) Platform() domain.Platform { return domain.PhotoShare }

func (a PhotoShare) Sync(ctx context.Context, p domain.Product, req Request) Outcome {
	verdict, token := a.Credentials.Authorize(req.Token)
	if verdict == credential.Rejected {
		return Failure{Reason: ReasonAuthFailed}
	}
	if !wait(ctx, a.Latency) {
		return canceled()
	}
	out := Success{
		ExternalID: "photoshare_" + p.ID,
		Message:    "Product posted to photo feed",
	}
	if verdict == credential.Refreshed {
		out.NewCredential = token
		out.Message = "Product posted to photo feed (access token refreshed)"
	}
	return out
}
