package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	entries int
	replays int
}

func (c *fakeCounter) CountEntries(ctx context.Context) (int, error) { return c.entries, nil }
func (c *fakeCounter) CountReplays(ctx context.Context) (int, error) { return c.replays, nil }

func TestPing(t *testing.T) {
	t.Parallel()

	s := NewServer(":0", nil)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthHead(t *testing.T) {
	t.Parallel()

	s := NewServer(":0", nil)
	req := httptest.NewRequest(http.MethodHead, "/health", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusWithCounts(t *testing.T) {
	t.Parallel()

	s := NewServer(":0", &fakeCounter{entries: 4, replays: 9})
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"replays":9`)
	assert.Contains(t, rec.Body.String(), `"results":4`)
}
