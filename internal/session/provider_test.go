package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authServer struct {
	*httptest.Server
	calls  atomic.Int32
	status atomic.Int32

	mu   sync.Mutex
	last loginRequest
}

func (s *authServer) lastRequest() loginRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func newAuthServer(t *testing.T, status int) *authServer {
	t.Helper()
	s := &authServer{}
	s.status.Store(int32(status))
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req loginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.mu.Lock()
		s.last = req
		s.mu.Unlock()

		code := int(s.status.Load())
		w.WriteHeader(code)
		if code == http.StatusOK {
			_, _ = w.Write([]byte(`{"jwt":"jwt-token","user":"ljos"}`))
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func newTestProvider(t *testing.T, srv *authServer) (*Provider, *FileStore) {
	t.Helper()
	store := testStore(t, 2*time.Hour)
	p := NewProvider(Options{
		AuthURL:  srv.URL,
		Username: "ljos",
		Password: "hunter2",
		Client:   srv.Client(),
		Store:    store,
	})
	return p, store
}

func TestProvider_LoginAndCache(t *testing.T) {
	srv := newAuthServer(t, http.StatusOK)
	p, store := newTestProvider(t, srv)

	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", tok)
	assert.Equal(t, loginRequest{Username: "ljos", Password: "hunter2"}, srv.lastRequest())

	sess, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "jwt-token", sess.Token)

	for i := 0; i < 3; i++ {
		tok, err = p.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "jwt-token", tok)
	}
	assert.EqualValues(t, 1, srv.calls.Load(), "cached token must not hit the network")
}

func TestProvider_CachedSessionMakesNoCalls(t *testing.T) {
	srv := newAuthServer(t, http.StatusInternalServerError)
	p, store := newTestProvider(t, srv)
	_, err := store.Save("cached-token")
	require.NoError(t, err)

	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached-token", tok)
	assert.EqualValues(t, 0, srv.calls.Load())
}

func TestProvider_InvalidCredentialsClearsCache(t *testing.T) {
	srv := newAuthServer(t, http.StatusNotFound)
	p, store := newTestProvider(t, srv)

	_, err := p.Token(context.Background())
	require.Error(t, err)
	assert.True(t, IsInvalidCredentials(err))

	var ae *AuthError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusNotFound, ae.Status)
	assert.Equal(t, "Incorrect username or password", ae.Message)

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = p.Token(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 2, srv.calls.Load(), "second call must log in again")
}

func TestProvider_ServiceErrorKeepsCacheUntouched(t *testing.T) {
	srv := newAuthServer(t, http.StatusServiceUnavailable)
	p, _ := newTestProvider(t, srv)

	_, err := p.Token(context.Background())
	var ae *AuthError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, ServiceError, ae.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, ae.Status)
	assert.Contains(t, ae.Error(), "503")
	assert.False(t, IsInvalidCredentials(err))
}

func TestProvider_RecoversAfterFailure(t *testing.T) {
	srv := newAuthServer(t, http.StatusNotFound)
	p, _ := newTestProvider(t, srv)

	_, err := p.Token(context.Background())
	require.Error(t, err)

	srv.status.Store(http.StatusOK)
	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", tok)
}

func TestProvider_MalformedBody(t *testing.T) {
	tests := map[string]string{
		"not json":   `<html>`,
		"missing":    `{"token":"x"}`,
		"non-string": `{"jwt": 42}`,
		"empty":      `{"jwt": ""}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			store := testStore(t, time.Hour)
			p := NewProvider(Options{AuthURL: srv.URL, Client: srv.Client(), Store: store})
			_, err := p.Token(context.Background())

			var ae *AuthError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, ServiceError, ae.Kind)
			assert.NotNil(t, ae.Err)

			_, ok, _ := store.Load()
			assert.False(t, ok)
		})
	}
}

func TestProvider_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewProvider(Options{AuthURL: url, Store: testStore(t, time.Hour)})
	_, err := p.Token(context.Background())

	var ae *AuthError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, ServiceError, ae.Kind)
	assert.Equal(t, 0, ae.Status)
}

func TestProvider_Invalidate(t *testing.T) {
	srv := newAuthServer(t, http.StatusOK)
	p, _ := newTestProvider(t, srv)

	_, err := p.Token(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Invalidate())
	_, err = p.Token(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, srv.calls.Load())
}
