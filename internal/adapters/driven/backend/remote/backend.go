// Package remote provides an HTTP implementation of the progress
// backend against the VibeReader sync API. The reading core talks to
// it through the same port as the local SQLite backend; web mode is a
// configuration change, not a code path.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
)

// Ensure Backend implements the interface.
var _ driven.ProgressBackend = (*Backend)(nil)

// Default configuration values.
const (
	DefaultTimeout           = 10 * time.Second
	DefaultRequestsPerSecond = 5
)

// Config holds configuration for the remote progress backend.
type Config struct {
	// BaseURL is the sync API endpoint (required).
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// RequestsPerSecond caps the outbound request rate (default: 5).
	RequestsPerSecond float64

	// Timeout is the per-request timeout (default: 10s).
	Timeout time.Duration
}

// Backend persists reading progress via the sync API. Requests pass
// through a client-side token bucket; there is no retry logic, the
// progress writer's next event is the retry.
type Backend struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// NewBackend creates a new remote progress backend.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote: base URL is required")
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Backend{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

// locationsPayload is the wire format of a cached locations index.
type locationsPayload struct {
	ContentHash string    `json:"contentHash"`
	ChunkSize   int       `json:"chunkSize"`
	Positions   []string  `json:"positions"`
	BuiltAt     time.Time `json:"builtAt"`
}

// bookResponse is the sync API book representation. Only the progress
// fields are decoded; the server sends more.
type bookResponse struct {
	ID         string            `json:"id"`
	PositionID string            `json:"positionId"`
	ChunkIndex *int              `json:"chunkIndex"`
	Fraction   *float64          `json:"fraction"`
	Chapter    *int              `json:"chapter"`
	LastReadAt *time.Time        `json:"lastReadAt"`
	Locations  *locationsPayload `json:"locations"`
}

// progressPatch is the PATCH request body for a progress write.
type progressPatch struct {
	PositionID string            `json:"positionId"`
	ChunkIndex *int              `json:"chunkIndex"`
	Fraction   *float64          `json:"fraction"`
	Chapter    *int              `json:"chapter"`
	StagedAt   time.Time         `json:"stagedAt"`
	Locations  *locationsPayload `json:"locations,omitempty"`
}

// ReadProgress retrieves the progress record for a book.
func (b *Backend) ReadProgress(ctx context.Context, bookID string) (*domain.ProgressRecord, error) {
	status, body, err := b.do(ctx, http.MethodGet, "/api/books/"+bookID, nil)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, domain.ErrNotFound
	default:
		return nil, fmt.Errorf("sync api error (status %d): %s", status, body)
	}

	var resp bookResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	record := &domain.ProgressRecord{
		BookID:     bookID,
		PositionID: resp.PositionID,
		ChunkIndex: resp.ChunkIndex,
		Fraction:   resp.Fraction,
		Chapter:    resp.Chapter,
	}
	if resp.LastReadAt != nil {
		record.LastReadAt = *resp.LastReadAt
	}
	if resp.Locations != nil {
		record.Locations = &domain.LocationsIndex{
			BookID:      bookID,
			ContentHash: resp.Locations.ContentHash,
			ChunkSize:   resp.Locations.ChunkSize,
			Positions:   resp.Locations.Positions,
			BuiltAt:     resp.Locations.BuiltAt,
		}
	}

	return record, nil
}

// WriteProgress sends a progress update. The server compares StagedAt
// against its stored timestamp and answers 409 for a write that lost
// the race, surfaced here as domain.ErrStaleWrite.
func (b *Backend) WriteProgress(ctx context.Context, upd domain.ProgressUpdate) error {
	patch := progressPatch{
		PositionID: upd.PositionID,
		ChunkIndex: upd.ChunkIndex,
		Fraction:   upd.Fraction,
		Chapter:    upd.Chapter,
		StagedAt:   upd.StagedAt,
	}
	if upd.LocationsIfNew != nil {
		patch.Locations = &locationsPayload{
			ContentHash: upd.LocationsIfNew.ContentHash,
			ChunkSize:   upd.LocationsIfNew.ChunkSize,
			Positions:   upd.LocationsIfNew.Positions,
			BuiltAt:     upd.LocationsIfNew.BuiltAt,
		}
	}

	status, body, err := b.do(ctx, http.MethodPatch, "/api/books/"+upd.BookID+"/progress", patch)
	if err != nil {
		return err
	}

	switch status {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusConflict:
		return domain.ErrStaleWrite
	case http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return fmt.Errorf("sync api error (status %d): %s", status, body)
	}
}

// DeleteProgress removes the server-side record. A book the server
// never heard of is already deleted.
func (b *Backend) DeleteProgress(ctx context.Context, bookID string) error {
	status, body, err := b.do(ctx, http.MethodDelete, "/api/books/"+bookID+"/progress", nil)
	if err != nil {
		return err
	}

	switch status {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("sync api error (status %d): %s", status, body)
	}
}

// do performs one rate-limited request and returns the raw response.
func (b *Backend) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}

	var reqBody io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, body, nil
}
