package handlers_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"catalogsync/internal/domain"
)

func TestSyncCommerceSuccess(t *testing.T) {
	env := newTestApp(t, "")
	p := env.product(t, "Tote")

	var (
		code int
		res  domain.SyncResponse
	)
	logs := captureLogs(t, func() {
		code, res = env.sync(t, "commerce", p.ID, "")
	})
	if code != 200 || !res.Success {
		t.Fatalf("expected 200 success, got %d %+v", code, res)
	}
	if res.Data == nil || res.Data.ExternalID != "commerce_"+p.ID {
		t.Fatalf("unexpected data: %+v", res.Data)
	}
	if res.Data.Status.State != domain.StateSuccess || res.Data.Status.LastSuccessAt == nil {
		t.Fatalf("status not recorded: %+v", res.Data.Status)
	}

	e := findLog(logs, "sync.success")
	if e == nil {
		t.Fatalf("sync.success not logged; got %+v", logs)
	}
	if e.Level != "audit" || e.Fields["platform"] != "commerce" || e.Fields["product_id"] != p.ID {
		t.Fatalf("unexpected log entry: %+v", e)
	}
}

func TestSyncLookupStatusCodes(t *testing.T) {
	env := newTestApp(t, "")
	p := env.product(t, "Tote")

	resp, body := env.do(t, "POST", "/api/sync/commerce/does-not-exist", nil, nil)
	if resp.StatusCode != 404 || !strings.Contains(string(body), "product not found") {
		t.Fatalf("expected 404, got %d %s", resp.StatusCode, body)
	}

	resp, body = env.do(t, "POST", "/api/sync/myspace/"+p.ID, nil, nil)
	if resp.StatusCode != 400 || !strings.Contains(string(body), "unknown platform") {
		t.Fatalf("expected 400, got %d %s", resp.StatusCode, body)
	}

	resp, _ = env.do(t, "POST", "/api/sync/commerce/"+p.ID, "{not json", nil)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for bad body, got %d", resp.StatusCode)
	}

	resp, _ = env.do(t, "POST", "/api/sync/photoshare/"+p.ID, `{"token":"has spaces; drop"}`, nil)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for malformed token, got %d", resp.StatusCode)
	}

	stored, _ := env.store.Get(p.ID)
	for _, plat := range domain.Platforms {
		if stored.SyncStatus[plat].State != domain.StatePending {
			t.Fatalf("rejected requests must not touch status; %s is %+v", plat, stored.SyncStatus[plat])
		}
	}
}

func TestSyncRateLimitAndReset(t *testing.T) {
	env := newTestApp(t, "")
	p := env.product(t, "Tote")

	for i := 0; i < 3; i++ {
		if _, res := env.sync(t, "shortvideo", p.ID, ""); !res.Success {
			t.Fatalf("sync %d should pass: %+v", i, res)
		}
	}

	env.clk.Advance(15 * time.Second)
	resp, raw := env.do(t, "POST", "/api/sync/shortvideo/"+p.ID, nil, nil)
	var res domain.SyncResponse
	_ = json.Unmarshal(raw, &res)
	if resp.StatusCode != 200 || res.Success {
		t.Fatalf("expected handled failure, got %d %s", resp.StatusCode, raw)
	}
	if res.Reason != "rate_limited" || !res.Retryable || res.RetryAfter != 45 {
		t.Fatalf("unexpected failure body: %+v", res)
	}
	if got := resp.Header.Get("Retry-After"); got != "45" {
		t.Fatalf("Retry-After = %q", got)
	}
	if res.Data.Status.State != domain.StateFailed || !strings.HasPrefix(res.Data.Status.Error, "rate_limited") {
		t.Fatalf("status not failed: %+v", res.Data.Status)
	}

	resp, raw = env.do(t, "GET", "/api/ratelimit/shortvideo", nil, nil)
	var snap struct {
		Count          int `json:"count"`
		Limit          int `json:"limit"`
		ResetInSeconds int `json:"resetInSeconds"`
	}
	_ = json.Unmarshal(raw, &snap)
	if resp.StatusCode != 200 || snap.Count != 3 || snap.Limit != 3 || snap.ResetInSeconds != 45 {
		t.Fatalf("unexpected snapshot %d %s", resp.StatusCode, raw)
	}

	resp, _ = env.do(t, "POST", "/api/ratelimit/shortvideo/reset", nil, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("reset: %d", resp.StatusCode)
	}
	if _, res := env.sync(t, "tiktok", p.ID, ""); !res.Success {
		t.Fatalf("sync after reset should pass: %+v", res)
	}

	resp, _ = env.do(t, "POST", "/api/ratelimit/commerce/reset", nil, nil)
	if resp.StatusCode != 400 {
		t.Fatalf("commerce has no limiter, got %d", resp.StatusCode)
	}
}

func TestSyncPhotoShareCredentials(t *testing.T) {
	env := newTestApp(t, "")
	p := env.product(t, "Tote")

	_, res := env.sync(t, "photoshare", p.ID, "")
	if res.Success || res.Reason != "authentication_failed" || res.Retryable {
		t.Fatalf("missing token should fail: %+v", res)
	}
	_, res = env.sync(t, "photoshare", p.ID, "ps_not_ours")
	if res.Success || res.Reason != "authentication_failed" {
		t.Fatalf("unknown token should fail: %+v", res)
	}

	resp, raw := env.do(t, "POST", "/api/credential/issue", nil, nil)
	var tok domain.TokenResponse
	_ = json.Unmarshal(raw, &tok)
	if resp.StatusCode != 200 || tok.Token == "" || tok.ExpiresIn != 60 {
		t.Fatalf("issue: %d %s", resp.StatusCode, raw)
	}

	_, res = env.sync(t, "photoshare", p.ID, tok.Token)
	if !res.Success || res.Data.NewCredential != "" {
		t.Fatalf("fresh token should pass without refresh: %+v", res)
	}

	env.clk.Advance(2 * time.Minute)
	_, res = env.sync(t, "instagram", p.ID, tok.Token)
	if !res.Success || res.Data.NewCredential == "" || res.Data.NewCredential == tok.Token {
		t.Fatalf("expired token should be refreshed: %+v", res)
	}
	if !strings.Contains(res.Data.Message, "refreshed") {
		t.Fatalf("message should mention the refresh: %q", res.Data.Message)
	}
}

func TestSyncTextPriceReported(t *testing.T) {
	env := newTestApp(t, "")
	legacy := domain.Product{
		ID: "legacy-lamp", Name: "Lamp", Price: domain.TextPrice("19.99"),
		Description: "Desk lamp", SyncStatus: domain.NewSyncStatusMap(),
	}
	if err := env.store.Create(legacy); err != nil {
		t.Fatal(err)
	}

	code, res := env.sync(t, "commerce", legacy.ID, "")
	if code != 200 || res.Success || res.Reason != "invalid_price_type" {
		t.Fatalf("text price should be rejected by commerce: %d %+v", code, res)
	}
	if _, res = env.sync(t, "shortvideo", legacy.ID, ""); !res.Success {
		t.Fatalf("other platforms accept the record: %+v", res)
	}
}

func TestAdminKeyGuardsReset(t *testing.T) {
	env := newTestApp(t, "s3cret")

	resp, _ := env.do(t, "POST", "/api/ratelimit/shortvideo/reset", nil, nil)
	if resp.StatusCode != 401 {
		t.Fatalf("missing key: expected 401, got %d", resp.StatusCode)
	}
	resp, _ = env.do(t, "POST", "/api/ratelimit/shortvideo/reset", nil, map[string]string{"X-Admin-Key": "guess"})
	if resp.StatusCode != 401 {
		t.Fatalf("wrong key: expected 401, got %d", resp.StatusCode)
	}

	var code int
	logs := captureLogs(t, func() {
		resp, _ = env.do(t, "POST", "/api/ratelimit/shortvideo/reset", nil, map[string]string{"X-Admin-Key": "s3cret"})
		code = resp.StatusCode
	})
	if code != 200 {
		t.Fatalf("right key: expected 200, got %d", code)
	}
	if findLog(logs, "ratelimit.reset") == nil {
		t.Fatalf("reset not audited: %+v", logs)
	}
}
