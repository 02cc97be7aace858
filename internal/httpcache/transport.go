// Package httpcache caches successful GET responses on disk for a fixed
// time-to-live, transparently to the http.Client using it.
package httpcache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultTTL is how long a response stays fresh unless configured otherwise.
const DefaultTTL = time.Hour

// HeaderFromCache is set on responses served from the store.
const HeaderFromCache = "X-From-Cache"

// Transport is an http.RoundTripper that answers GET and HEAD requests from
// the store when a fresh record exists, and stores 200 responses otherwise.
// A request carrying "Cache-Control: no-cache" skips the lookup but still
// refreshes the stored record; a non-200 answer removes it.
type Transport struct {
	Base   http.RoundTripper
	Store  *Store
	TTL    time.Duration
	Logger *slog.Logger
}

// NewTransport wraps base (http.DefaultTransport when nil).
func NewTransport(base http.RoundTripper, store *Store, ttl time.Duration, logger *slog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Transport{Base: base, Store: store, TTL: ttl, Logger: logger}
}

// Key identifies the cached response for req: method, URL and a digest of
// the Authorization header, so different tokens never share an entry.
func Key(req *http.Request) string {
	key := req.Method + " " + req.URL.String()
	if auth := req.Header.Get("Authorization"); auth != "" {
		sum := sha256.Sum256([]byte(auth))
		key += " " + hex.EncodeToString(sum[:8])
	}
	return key
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return t.Base.RoundTrip(req)
	}

	key := Key(req)
	if !strings.Contains(req.Header.Get("Cache-Control"), "no-cache") {
		rec, ok, err := t.Store.Get(key)
		if err != nil {
			t.Logger.Warn("response cache read failed", "key", key, "error", err)
		}
		if ok {
			t.Logger.Debug("response cache hit", "url", req.URL.String(), "expires_at", rec.ExpiresAt)
			return cachedResponse(req, rec), nil
		}
	}

	resp, err := t.Base.RoundTrip(req)
	if err != nil {
		return resp, err
	}
	if resp.StatusCode != http.StatusOK {
		// The server no longer answers 200 for this key; drop what we had.
		if err := t.Store.Delete(key); err != nil {
			t.Logger.Warn("response cache delete failed", "key", key, "error", err)
		}
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	now := time.Now()
	rec := Record{
		Key:       key,
		Status:    resp.StatusCode,
		Header:    resp.Header.Clone(),
		Body:      body,
		StoredAt:  now,
		ExpiresAt: now.Add(t.TTL),
	}
	if err := t.Store.Set(rec); err != nil {
		t.Logger.Warn("response cache write failed", "key", key, "error", err)
	}
	return resp, nil
}

func cachedResponse(req *http.Request, rec Record) *http.Response {
	header := rec.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set(HeaderFromCache, "1")
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", rec.Status, http.StatusText(rec.Status)),
		StatusCode:    rec.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(rec.Body)),
		ContentLength: int64(len(rec.Body)),
		Request:       req,
	}
}
