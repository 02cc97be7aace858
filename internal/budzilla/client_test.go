package budzilla

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ljos/budzilla/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntries_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))
		assert.Equal(t, "budzilla/test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[{"title":"Buy milk","body":"2% milk","category":"shopping","parent":""}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), "budzilla/test")
	ctx := WithRequestID(context.Background(), "req-1")
	got, err := c.Entries(ctx, "tok", FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []search.Entry{{Title: "Buy milk", Body: "2% milk", Category: "shopping"}}, got)
}

func TestEntries_Statuses(t *testing.T) {
	tests := []struct {
		status int
		check  func(t *testing.T, err error)
	}{
		{http.StatusNotFound, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrUnauthorized)
		}},
		{http.StatusInternalServerError, func(t *testing.T, err error) {
			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, 500, se.Status)
			assert.Contains(t, se.Error(), "500")
		}},
		{http.StatusUnauthorized, func(t *testing.T, err error) {
			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, 401, se.Status)
		}},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(`{"message":"no"}`))
		}))
		_, err := NewClient(srv.URL, srv.Client(), "").Entries(context.Background(), "tok", FetchOptions{})
		tt.check(t, err)
		srv.Close()
	}
}

func TestEntries_FormatError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"title":"x","body":"y","category":3,"parent":""}]`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client(), "").Entries(context.Background(), "tok", FetchOptions{})
	var fe *search.EntryFormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "category", fe.Field)
}

func TestEntries_NoCacheHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, srv.Client(), "").Entries(context.Background(), "tok", FetchOptions{NoCache: true})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRequestID(t *testing.T) {
	assert.Equal(t, "abc", RequestID(WithRequestID(context.Background(), "abc")))

	a := RequestID(context.Background())
	b := RequestID(context.Background())
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
