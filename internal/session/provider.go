// Package session obtains the bearer token used against the Budzilla API and
// keeps it cached on disk between launcher invocations.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

const (
	msgInvalidCredentials = "Incorrect username or password"
	msgServiceError       = "Error during authorization"
)

// Options configures a Provider.
type Options struct {
	AuthURL  string
	Username string
	Password string
	Client   *http.Client
	Store    Store
	Logger   *slog.Logger
}

// Provider hands out bearer tokens, logging in only when the store holds no
// live session. It is meant for one caller at a time.
type Provider struct {
	authURL  string
	username string
	password string
	client   *http.Client
	store    Store
	logger   *slog.Logger
}

// NewProvider builds a Provider. A nil Client uses http.DefaultClient and a
// nil Logger discards output.
func NewProvider(opts Options) *Provider {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Provider{
		authURL:  opts.AuthURL,
		username: opts.Username,
		password: opts.Password,
		client:   client,
		store:    opts.Store,
		logger:   logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	JWT *string `json:"jwt"`
}

// Token returns a bearer token. A live cached session is returned without any
// network traffic. Otherwise one login request is made:
//
//   - 200: the jwt field is cached and returned
//   - 404: the cached session is cleared and an InvalidCredentials AuthError
//     is returned
//   - anything else: a ServiceError AuthError; the cache is left alone
func (p *Provider) Token(ctx context.Context) (string, error) {
	sess, ok, err := p.store.Load()
	if err != nil {
		p.logger.Warn("session cache unreadable, logging in", "error", err)
	}
	if ok {
		p.logger.Debug("session cache hit", "expires_at", sess.ExpiresAt)
		return sess.Token, nil
	}

	status, token, err := p.login(ctx)
	if err != nil {
		return "", &AuthError{Kind: ServiceError, Status: status, Message: msgServiceError, Err: err}
	}

	switch status {
	case http.StatusOK:
		if _, err := p.store.Save(token); err != nil {
			p.logger.Warn("cannot cache session", "error", err)
		}
		p.logger.Info("logged in", "username", p.username)
		return token, nil
	case http.StatusNotFound:
		if err := p.store.Clear(); err != nil {
			p.logger.Warn("cannot clear session cache", "error", err)
		}
		p.logger.Info("login rejected", "username", p.username, "status", status)
		return "", &AuthError{Kind: InvalidCredentials, Status: status, Message: msgInvalidCredentials}
	default:
		p.logger.Warn("login failed", "status", status)
		return "", &AuthError{Kind: ServiceError, Status: status, Message: msgServiceError}
	}
}

// Invalidate drops the cached session so the next Token call logs in again.
func (p *Provider) Invalidate() error {
	return p.store.Clear()
}

// login posts the credentials. err is non-nil only when no usable answer was
// received; the status of a 200 response with a bad body is still returned.
func (p *Provider) login(ctx context.Context) (int, string, error) {
	body, err := json.Marshal(loginRequest{Username: p.username, Password: p.password})
	if err != nil {
		return 0, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.authURL, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("cannot build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return resp.StatusCode, "", nil
	}

	var parsed loginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&parsed); err != nil {
		return resp.StatusCode, "", fmt.Errorf("cannot parse login response: %w", err)
	}
	if parsed.JWT == nil || *parsed.JWT == "" {
		return resp.StatusCode, "", fmt.Errorf("login response has no jwt")
	}
	return resp.StatusCode, *parsed.JWT, nil
}
