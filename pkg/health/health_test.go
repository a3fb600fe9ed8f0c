package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probe(t *testing.T, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestLiveEndpoint(t *testing.T) {
	s := NewService()
	s.AddLiveness("always-ok", time.Second, func(context.Context) error { return nil })

	rec := probe(t, s.LiveEndpoint)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	s.AddLiveness("broken", time.Second, func(context.Context) error {
		return errors.New("disk on fire")
	})

	rec = probe(t, s.LiveEndpoint)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "disk on fire")
}

func TestReadyEndpoint(t *testing.T) {
	s := NewService()

	// Not ready until the manual flag is set, even with no checks.
	rec := probe(t, s.ReadyEndpoint)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.SetReady(true)
	rec = probe(t, s.ReadyEndpoint)
	require.Equal(t, http.StatusOK, rec.Code)

	failing := false
	s.AddReadiness("db", time.Second, func(context.Context) error {
		if failing {
			return errors.New("connection refused")
		}
		return nil
	})

	rec = probe(t, s.ReadyEndpoint)
	require.Equal(t, http.StatusOK, rec.Code)

	failing = true
	rec = probe(t, s.ReadyEndpoint)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")

	// Shutdown drain: flag off makes the probe fail again.
	failing = false
	s.SetReady(false)
	rec = probe(t, s.ReadyEndpoint)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGoroutineCount(t *testing.T) {
	require.NoError(t, GoroutineCount(1_000_000)(context.Background()))
	require.Error(t, GoroutineCount(0)(context.Background()))
}
