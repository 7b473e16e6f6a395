package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
)

// newTestBackend creates a backend pointed at a test server with the
// rate limiter effectively disabled.
func newTestBackend(t *testing.T, url, apiKey string) *Backend {
	t.Helper()

	backend, err := NewBackend(Config{
		BaseURL:           url,
		APIKey:            apiKey,
		RequestsPerSecond: 1000,
	})
	require.NoError(t, err)
	return backend
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestNewBackend_RequiresBaseURL(t *testing.T) {
	_, err := NewBackend(Config{})
	assert.ErrorContains(t, err, "base URL is required")
}

func TestNewBackend_Defaults(t *testing.T) {
	backend, err := NewBackend(Config{BaseURL: "http://localhost:8000"})
	require.NoError(t, err)

	assert.Equal(t, DefaultTimeout, backend.client.Timeout)
	assert.Equal(t, rate.Limit(DefaultRequestsPerSecond), backend.limiter.Limit())
}

func TestBackend_ReadProgress(t *testing.T) {
	lastRead := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	built := time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/books/book-1", r.URL.Path)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(bookResponse{ //nolint:errcheck
			ID:         "book-1",
			PositionID: "pos-42",
			ChunkIndex: intPtr(3),
			Fraction:   floatPtr(0.375),
			Chapter:    intPtr(2),
			LastReadAt: &lastRead,
			Locations: &locationsPayload{
				ContentHash: "aaaa",
				ChunkSize:   1600,
				Positions:   []string{"pos-0", "pos-42"},
				BuiltAt:     built,
			},
		})
	}))
	defer server.Close()

	backend := newTestBackend(t, server.URL, "secret-key")

	record, err := backend.ReadProgress(context.Background(), "book-1")
	require.NoError(t, err)

	assert.Equal(t, "book-1", record.BookID)
	assert.Equal(t, "pos-42", record.PositionID)
	require.NotNil(t, record.ChunkIndex)
	assert.Equal(t, 3, *record.ChunkIndex)
	require.NotNil(t, record.Fraction)
	assert.InDelta(t, 0.375, *record.Fraction, 1e-9)
	require.NotNil(t, record.Chapter)
	assert.Equal(t, 2, *record.Chapter)
	assert.True(t, record.LastReadAt.Equal(lastRead))
	require.NotNil(t, record.Locations)
	assert.Equal(t, "book-1", record.Locations.BookID)
	assert.Equal(t, "aaaa", record.Locations.ContentHash)
	assert.Equal(t, []string{"pos-0", "pos-42"}, record.Locations.Positions)
}

func TestBackend_ReadProgress_NeverRead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"book-1","positionId":"","chunkIndex":null,"fraction":null,"chapter":null,"lastReadAt":null,"locations":null}`)) //nolint:errcheck
	}))
	defer server.Close()

	backend := newTestBackend(t, server.URL, "")

	record, err := backend.ReadProgress(context.Background(), "book-1")
	require.NoError(t, err)

	assert.Empty(t, record.PositionID)
	assert.Nil(t, record.ChunkIndex)
	assert.Nil(t, record.Fraction)
	assert.True(t, record.LastReadAt.IsZero())
	assert.Nil(t, record.Locations)
	assert.False(t, record.HasPosition())
}

func TestBackend_ReadProgress_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	backend := newTestBackend(t, server.URL, "")

	_, err := backend.ReadProgress(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBackend_ReadProgress_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	backend := newTestBackend(t, server.URL, "")

	_, err := backend.ReadProgress(context.Background(), "book-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestBackend_WriteProgress(t *testing.T) {
	staged := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
	var received progressPatch

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/books/book-1/progress", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	backend := newTestBackend(t, server.URL, "")

	err := backend.WriteProgress(context.Background(), domain.ProgressUpdate{
		BookID:     "book-1",
		PositionID: "pos-77",
		ChunkIndex: intPtr(5),
		Fraction:   floatPtr(0.625),
		Chapter:    intPtr(3),
		StagedAt:   staged,
	})
	require.NoError(t, err)

	assert.Equal(t, "pos-77", received.PositionID)
	require.NotNil(t, received.ChunkIndex)
	assert.Equal(t, 5, *received.ChunkIndex)
	require.NotNil(t, received.Fraction)
	assert.InDelta(t, 0.625, *received.Fraction, 1e-9)
	assert.True(t, received.StagedAt.Equal(staged))
	assert.Nil(t, received.Locations, "ordinary writes carry no index")
}

func TestBackend_WriteProgress_CarriesLocations(t *testing.T) {
	var received progressPatch

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	backend := newTestBackend(t, server.URL, "")

	err := backend.WriteProgress(context.Background(), domain.ProgressUpdate{
		BookID:     "book-1",
		PositionID: "pos-10",
		StagedAt:   time.Now().UTC(),
		LocationsIfNew: &domain.LocationsIndex{
			BookID:      "book-1",
			ContentHash: "aaaa",
			ChunkSize:   1600,
			Positions:   []string{"pos-0", "pos-10"},
			BuiltAt:     time.Now().UTC(),
		},
	})
	require.NoError(t, err)

	require.NotNil(t, received.Locations)
	assert.Equal(t, "aaaa", received.Locations.ContentHash)
	assert.Equal(t, 1600, received.Locations.ChunkSize)
	assert.Equal(t, []string{"pos-0", "pos-10"}, received.Locations.Positions)
}

func TestBackend_WriteProgress_StaleConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "older than stored", http.StatusConflict)
	}))
	defer server.Close()

	backend := newTestBackend(t, server.URL, "")

	err := backend.WriteProgress(context.Background(), domain.ProgressUpdate{
		BookID:     "book-1",
		PositionID: "pos-1",
		StagedAt:   time.Now().UTC(),
	})
	assert.ErrorIs(t, err, domain.ErrStaleWrite)
}

func TestBackend_DeleteProgress(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "deleted", status: http.StatusNoContent},
		{name: "already gone", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "/api/books/book-1/progress", r.URL.Path)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			backend := newTestBackend(t, server.URL, "")
			assert.NoError(t, backend.DeleteProgress(context.Background(), "book-1"))
		})
	}
}

func TestBackend_NoAPIKeyNoAuthHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":"book-1"}`)) //nolint:errcheck
	}))
	defer server.Close()

	backend := newTestBackend(t, server.URL, "")

	_, err := backend.ReadProgress(context.Background(), "book-1")
	assert.NoError(t, err)
}

func TestBackend_TrimsTrailingSlash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/books/book-1", r.URL.Path)
		w.Write([]byte(`{"id":"book-1"}`)) //nolint:errcheck
	}))
	defer server.Close()

	backend := newTestBackend(t, server.URL+"/", "")

	_, err := backend.ReadProgress(context.Background(), "book-1")
	assert.NoError(t, err)
}

func TestBackend_CancelledContext(t *testing.T) {
	backend := newTestBackend(t, "http://localhost:1", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := backend.ReadProgress(ctx, "book-1")
	assert.Error(t, err)
}
