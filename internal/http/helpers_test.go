package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/spf13/afero"
	"golang.org/x/crypto/bcrypt"

	"catalogsync/internal/clock"
	"catalogsync/internal/config"
	"catalogsync/internal/domain"
	"catalogsync/internal/http/handlers"
	"catalogsync/internal/repos"
	"catalogsync/internal/services"
)

type testEnv struct {
	app   *fiber.App
	deps  *handlers.Deps
	clk   *clock.Fake
	store repos.ProductStore
}

func newTestApp(t *testing.T, adminKey string) *testEnv {
	t.Helper()
	store, err := repos.NewFileStore(afero.NewMemMapFs(), "/data/products.json")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	cfg := config.Config{
		RateLimitMax:    3,
		RateLimitWindow: time.Minute,
		TokenTTL:        time.Minute,
		LatencyScale:    0,
	}
	clk := clock.NewFake(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	deps := handlers.NewDeps(store, cfg, clk)
	deps.AdminKey, err = handlers.HashAdminKey(adminKey, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash admin key: %v", err)
	}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine, ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())
	deps.Routes(app, app.Group("/api"))
	return &testEnv{app: app, deps: deps, clk: clk, store: store}
}

func (e *testEnv) product(t *testing.T, name string) domain.Product {
	t.Helper()
	p, err := e.deps.Catalog.Create(services.NewProduct{
		Name:        name,
		Price:       domain.NumericPrice(20),
		Description: name + " for testing",
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func (e *testEnv) sync(t *testing.T, platform, productID, token string) (int, domain.SyncResponse) {
	t.Helper()
	var body any
	if token != "" {
		body = domain.SyncRequest{Token: token}
	}
	resp, raw := e.do(t, "POST", "/api/sync/"+platform+"/"+productID, body, nil)
	var out domain.SyncResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode sync response %q: %v", raw, err)
	}
	return resp.StatusCode, out
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) *logEntry {
	for i := range entries {
		if entries[i].Action == action {
			return &entries[i]
		}
	}
	return nil
}
