// Package client drives sync requests the way the storefront UI does: one
// request per (product, platform) pair, each with its own in-flight flag.
package client

import (
	"errors"
	"fmt"
	"sync"

	"catalogsync/internal/domain"
)

var ErrInFlight = errors.New("sync already in flight for this product and platform")

type Key struct {
	ProductID string
	Platform  domain.Platform
}

// Coordinator keeps local product state in step with server responses.
// Its maps are never written in place: every change builds a copy that
// carries over all sibling keys and then replaces the old map.
type Coordinator struct {
	transport Transport

	mu       sync.Mutex
	inFlight map[Key]bool
	errs     map[Key]string
	products map[string]domain.Product
	token    string
}

func New(t Transport) *Coordinator {
	return &Coordinator{
		transport: t,
		inFlight:  map[Key]bool{},
		errs:      map[Key]string{},
		products:  map[string]domain.Product{},
	}
}

// Load replaces local product state, e.g. after listing products.
func (c *Coordinator) Load(products []domain.Product) {
	next := make(map[string]domain.Product, len(products))
	for _, p := range products {
		p.SyncStatus = p.SyncStatus.Clone().Normalize()
		next[p.ID] = p
	}
	c.mu.Lock()
	c.products = next
	c.mu.Unlock()
}

func (c *Coordinator) Product(id string) (domain.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if ok {
		p.SyncStatus = p.SyncStatus.Clone()
	}
	return p, ok
}

func (c *Coordinator) SetToken(tok string) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
}

func (c *Coordinator) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Coordinator) InFlight(productID string, platform domain.Platform) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight[Key{productID, platform}]
}

// Flags returns the current in-flight map. Callers may keep it; it is never
// modified after being published.
func (c *Coordinator) Flags() map[Key]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// LastError is the error shown for a pair after its last request, if any.
func (c *Coordinator) LastError(productID string, platform domain.Platform) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs[Key{productID, platform}]
}

func mergeFlag(m map[Key]bool, k Key, on bool) map[Key]bool {
	next := make(map[Key]bool, len(m)+1)
	for kk, v := range m {
		next[kk] = v
	}
	if on {
		next[k] = true
	} else {
		delete(next, k)
	}
	return next
}

func mergeErr(m map[Key]string, k Key, msg string) map[Key]string {
	next := make(map[Key]string, len(m)+1)
	for kk, v := range m {
		next[kk] = v
	}
	if msg == "" {
		delete(next, k)
	} else {
		next[k] = msg
	}
	return next
}

func (c *Coordinator) begin(k Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight[k] {
		return false
	}
	c.inFlight = mergeFlag(c.inFlight, k, true)
	return true
}

func (c *Coordinator) finish(k Key) {
	c.mu.Lock()
	c.inFlight = mergeFlag(c.inFlight, k, false)
	c.mu.Unlock()
}

func (c *Coordinator) setErr(k Key, msg string) {
	c.mu.Lock()
	c.errs = mergeErr(c.errs, k, msg)
	c.mu.Unlock()
}

// Sync runs one sync for the pair. The pair's flag is cleared on every exit
// path, including transport errors and panics in the transport.
func (c *Coordinator) Sync(productID string, platform domain.Platform) (domain.SyncResponse, error) {
	k := Key{productID, platform}
	if !c.begin(k) {
		return domain.SyncResponse{}, ErrInFlight
	}
	defer c.finish(k)

	req := domain.SyncRequest{}
	if platform == domain.PhotoShare {
		tok, err := c.ensureToken()
		if err != nil {
			c.setErr(k, err.Error())
			return domain.SyncResponse{}, err
		}
		req.Token = tok
	}

	resp, err := c.transport.Sync(productID, platform, req)
	if err != nil {
		c.setErr(k, err.Error())
		return resp, err
	}
	c.reconcile(k, resp)
	return resp, nil
}

func (c *Coordinator) ensureToken() (string, error) {
	if tok := c.Token(); tok != "" {
		return tok, nil
	}
	issued, err := c.transport.IssueCredential()
	if err != nil {
		return "", fmt.Errorf("issue credential: %w", err)
	}
	c.SetToken(issued.Token)
	return issued.Token, nil
}

// reconcile takes the server's status for the pair as authoritative.
func (c *Coordinator) reconcile(k Key, resp domain.SyncResponse) {
	msg := ""
	if !resp.Success {
		msg = resp.Error
		if resp.RetryAfter > 0 {
			msg = fmt.Sprintf("%s, retry in %ds", resp.Reason, resp.RetryAfter)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = mergeErr(c.errs, k, msg)
	if resp.Data == nil {
		return
	}
	if resp.Data.NewCredential != "" {
		c.token = resp.Data.NewCredential
	}
	p, ok := c.products[k.ProductID]
	if !ok {
		return
	}
	status := p.SyncStatus.Clone().Normalize()
	status[k.Platform] = resp.Data.Status
	p.SyncStatus = status

	next := make(map[string]domain.Product, len(c.products))
	for id, v := range c.products {
		next[id] = v
	}
	next[k.ProductID] = p
	c.products = next
}
