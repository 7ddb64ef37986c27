package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		Logger:     zap.NewNop(),
		BaseURL:    srv.URL,
		Timeout:    2 * time.Second,
		MaxRetries: 2,
	})
}

func TestLookup_ResolvesAddress(t *testing.T) {
	var gotQuery atomic.Value
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"37.4220","lon":"-122.0841"}]`))
	}))

	loc, err := client.Lookup(context.Background(), "1600 Amphitheatre Parkway, Mountain View, 94043, USA")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.InDelta(t, 37.4220, loc.Latitude, 0.0001)
	assert.InDelta(t, -122.0841, loc.Longitude, 0.0001)
	assert.Equal(t, "1600 Amphitheatre Parkway, Mountain View, 94043, USA", gotQuery.Load())
}

func TestLookup_NoMatchReturnsNil(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))

	loc, err := client.Lookup(context.Background(), "nowhere at all")
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestLookup_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[{"lat":"51.5034","lon":"-0.1276"}]`))
	}))

	loc, err := client.Lookup(context.Background(), "10 Downing Street, London, SW1A 2AA, UK")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestLookup_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	loc, err := client.Lookup(context.Background(), "some address")
	assert.Error(t, err)
	assert.Nil(t, loc)
	// initial attempt plus MaxRetries
	assert.Equal(t, int32(3), calls.Load())
}

func TestLookup_BadPayloadIsPermanent(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`not json`))
	}))

	_, err := client.Lookup(context.Background(), "some address")
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
