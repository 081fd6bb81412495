// Package store is the persistence gateway: a thin client over the remote
// document store that mirrors one snapshot per user identity. Writes use
// merge semantics, so partial patches never clobber unspecified fields.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/BasimBashir/caloriewise-ai/internal/faults"
	"github.com/BasimBashir/caloriewise-ai/internal/types"
)

// Store talks to the document API. It never mutates the in-memory snapshot;
// it only reads copies to send and returns copies to apply.
type Store struct {
	baseURL string
	http    *http.Client
}

// New constructs a Store against baseURL using httpClient.
func New(baseURL string, httpClient *http.Client) *Store {
	return &Store{baseURL: baseURL, http: httpClient}
}

// Load fetches the stored snapshot for userID. Returns types.ErrNotFound when
// no document exists yet (first sign-in).
func (s *Store) Load(ctx context.Context, userID string) (*types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/users/%s/snapshot", s.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, faults.NewNetworkError("load snapshot", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, types.ErrNotFound
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, faults.NewHTTPError(resp.StatusCode, string(body), "load snapshot")
	}

	var snap types.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// SaveMerge shallow-merges patch into the stored document for userID. The
// patch is sanitized first because the store rejects non-JSON value markers.
// Fields absent from the patch are left untouched server-side.
func (s *Store) SaveMerge(ctx context.Context, userID string, patch map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return err
	}
	if len(patch) == 0 {
		return nil
	}

	body, err := json.Marshal(Sanitize(patch))
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}

	url := fmt.Sprintf("%s/api/users/%s/snapshot", s.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return faults.NewNetworkError("save snapshot", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return faults.NewHTTPError(resp.StatusCode, string(respBody), "save snapshot")
	}
	return nil
}
