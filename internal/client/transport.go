package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"catalogsync/internal/domain"
)

// Transport is the server contract the coordinator drives.
type Transport interface {
	Sync(productID string, platform domain.Platform, req domain.SyncRequest) (domain.SyncResponse, error)
	IssueCredential() (domain.TokenResponse, error)
}

// StatusError is a non-200 answer from the server (404, 400, 500).
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// HTTPTransport talks to a running catalogsync server.
type HTTPTransport struct {
	BaseURL string
	Timeout time.Duration
}

func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{BaseURL: strings.TrimRight(baseURL, "/"), Timeout: 10 * time.Second}
}

func (t *HTTPTransport) post(path string, body any, out any) error {
	a := fiber.Post(t.BaseURL + path)
	if body != nil {
		a.JSON(body)
	}
	if t.Timeout > 0 {
		a.Timeout(t.Timeout)
	}
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return fmt.Errorf("POST %s: %w", path, err)
	}
	code, raw, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("POST %s: %w", path, errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &e)
		return &StatusError{Code: code, Message: e.Error}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("POST %s: decode: %w", path, err)
	}
	return nil
}

func (t *HTTPTransport) Sync(productID string, platform domain.Platform, req domain.SyncRequest) (domain.SyncResponse, error) {
	var out domain.SyncResponse
	path := "/api/sync/" + url.PathEscape(string(platform)) + "/" + url.PathEscape(productID)
	err := t.post(path, req, &out)
	return out, err
}

func (t *HTTPTransport) IssueCredential() (domain.TokenResponse, error) {
	var out domain.TokenResponse
	err := t.post("/api/credential/issue", nil, &out)
	return out, err
}
