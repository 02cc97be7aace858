// Package budzilla talks to the Budzilla entry endpoint.
package budzilla

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/ljos/budzilla/internal/search"
)

// ErrUnauthorized is returned when the entry endpoint rejects the token
// (HTTP 404). The caller should drop its cached session.
var ErrUnauthorized = errors.New("budzilla: token rejected")

// StatusError is any other unexpected HTTP status.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("budzilla: unexpected status %d", e.Status)
}

type requestIDKey struct{}

// WithRequestID attaches id to ctx; it is sent as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id attached by WithRequestID, or a fresh one.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// Client fetches entries.
type Client struct {
	entryURL  string
	http      *http.Client
	userAgent string
}

// NewClient returns a client for entryURL. hc may be nil.
func NewClient(entryURL string, hc *http.Client, userAgent string) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{entryURL: entryURL, http: hc, userAgent: userAgent}
}

// FetchOptions tunes a single Entries call.
type FetchOptions struct {
	// NoCache asks the response cache to skip its lookup.
	NoCache bool
}

// Entries fetches and decodes all entries visible to token.
//
// A 404 yields ErrUnauthorized, other non-200 statuses a *StatusError, and
// a malformed entry a *search.EntryFormatError.
func (c *Client) Entries(ctx context.Context, token string, opts FetchOptions) ([]search.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.entryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build entries request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", RequestID(ctx))
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if opts.NoCache {
		req.Header.Set("Cache-Control", "no-cache")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching entries: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil, ErrUnauthorized
	default:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil, &StatusError{Status: resp.StatusCode}
	}

	entries, err := search.DecodeEntries(resp.Body)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
