package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type Platform string

const (
	Commerce   Platform = "commerce"
	ShortVideo Platform = "shortvideo"
	PhotoShare Platform = "photoshare"
)

// Platforms lists every platform a product is synced to, in display order.
var Platforms = []Platform{Commerce, ShortVideo, PhotoShare}

// upstream names used by the storefront UI
var platformAliases = map[string]Platform{
	"shopify":   Commerce,
	"tiktok":    ShortVideo,
	"instagram": PhotoShare,
}

// ParsePlatform accepts a platform id or its storefront alias.
func ParsePlatform(s string) (Platform, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range Platforms {
		if string(p) == s {
			return p, true
		}
	}
	p, ok := platformAliases[s]
	return p, ok
}

type SyncState string

const (
	StatePending SyncState = "pending"
	StateSuccess SyncState = "success"
	StateFailed  SyncState = "failed"
)

type PlatformSyncStatus struct {
	State         SyncState  `json:"state"`
	Error         string     `json:"error,omitempty"`
	LastSuccessAt *time.Time `json:"lastSuccessAt,omitempty"`
}

type SyncStatusMap map[Platform]PlatformSyncStatus

// NewSyncStatusMap returns a map with every platform pending.
func NewSyncStatusMap() SyncStatusMap {
	m := make(SyncStatusMap, len(Platforms))
	for _, p := range Platforms {
		m[p] = PlatformSyncStatus{State: StatePending}
	}
	return m
}

// Normalize fills in any platform missing from a persisted record.
func (m SyncStatusMap) Normalize() SyncStatusMap {
	if m == nil {
		return NewSyncStatusMap()
	}
	for _, p := range Platforms {
		if _, ok := m[p]; !ok {
			m[p] = PlatformSyncStatus{State: StatePending}
		}
	}
	return m
}

// Clone copies the map so callers can hand it out without sharing the record.
func (m SyncStatusMap) Clone() SyncStatusMap {
	out := make(SyncStatusMap, len(m))
	for k, v := range m {
		if v.LastSuccessAt != nil {
			t := *v.LastSuccessAt
			v.LastSuccessAt = &t
		}
		out[k] = v
	}
	return out
}

// Price is a persisted product price. Records written by older clients may
// carry the price as a quoted string; those keep their text and report
// IsNumeric() == false instead of being coerced.
type Price struct {
	Amount float64
	text   string
	quoted bool
}

func NumericPrice(v float64) Price { return Price{Amount: v} }

func TextPrice(s string) Price {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return Price{Amount: v, text: s, quoted: true}
}

func (p Price) IsNumeric() bool { return !p.quoted }

func (p Price) String() string {
	if p.quoted {
		return p.text
	}
	return strconv.FormatFloat(p.Amount, 'f', 2, 64)
}

func (p Price) MarshalJSON() ([]byte, error) {
	if p.quoted {
		return json.Marshal(p.text)
	}
	return json.Marshal(p.Amount)
}

func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = TextPrice(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = NumericPrice(v)
	return nil
}

type Product struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Price       Price         `json:"price"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	CreatedAt   time.Time     `json:"createdAt"`
	SyncStatus  SyncStatusMap `json:"syncStatus"`
}

// Document is the whole persisted catalog.
type Document struct {
	Products []Product `json:"products"`
}

// SyncRequest is the body of POST /api/sync/:platform/:productId.
type SyncRequest struct {
	Token string `json:"token,omitempty"`
}

type SyncData struct {
	Platform      Platform           `json:"platform"`
	ExternalID    string             `json:"externalId,omitempty"`
	Message       string             `json:"message,omitempty"`
	Status        PlatformSyncStatus `json:"status"`
	NewCredential string             `json:"newCredential,omitempty"`
}

// SyncResponse is returned for every handled sync, successful or not.
type SyncResponse struct {
	Success    bool      `json:"success"`
	Data       *SyncData `json:"data,omitempty"`
	Error      string    `json:"error,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Retryable  bool      `json:"retryable,omitempty"`
	RetryAfter int       `json:"retryAfter,omitempty"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}
