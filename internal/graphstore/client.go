// Package graphstore talks to the Microsoft Graph style site drive that holds
// the panel's two JSON documents. Documents are read and replaced whole; there
// is no partial update.
package graphstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bibliotecaesparedes/esp-painel-server/internal/apperrors"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/ctxutil"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/metrics"
)

type Client struct {
	baseURL string
	siteID  string
	hc      *http.Client
}

func New(baseURL, siteID string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		siteID:  siteID,
		hc:      &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) contentURL(path string) string {
	return fmt.Sprintf("%s/sites/%s/drive/root:%s:/content", c.baseURL, c.siteID, path)
}

// Load fetches the document at path. A missing document is reported as
// (nil, false, nil), not as an error. The bearer credential must be present
// in ctx; there is no retry.
func (c *Client) Load(ctx context.Context, path string) ([]byte, bool, error) {
	token, ok := ctxutil.TokenFrom(ctx)
	if !ok {
		return nil, false, apperrors.ErrNoCredential
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.contentURL(path), nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.hc.Do(req)
	if err != nil {
		metrics.StoreRequests.WithLabelValues("load", "error").Inc()
		return nil, false, &apperrors.RemoteError{Op: "load", Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode/100 == 2:
		metrics.StoreRequests.WithLabelValues("load", "ok").Inc()
		return body, true, nil
	case resp.StatusCode == http.StatusNotFound:
		metrics.StoreRequests.WithLabelValues("load", "absent").Inc()
		return nil, false, nil
	default:
		metrics.StoreRequests.WithLabelValues("load", "error").Inc()
		return nil, false, &apperrors.RemoteError{Op: "load", Path: path, Status: resp.StatusCode}
	}
}

// LoadJSON unmarshals the document at path into v. Absence leaves v untouched.
func (c *Client) LoadJSON(ctx context.Context, path string, v any) (bool, error) {
	body, found, err := c.Load(ctx, path)
	if err != nil || !found {
		return false, err
	}
	// an unreadable document body counts as absent, not as a failure
	if err := json.Unmarshal(body, v); err != nil {
		return false, nil
	}
	return true, nil
}

// Save replaces the document at path with the pretty-printed JSON of v.
func (c *Client) Save(ctx context.Context, path string, v any) error {
	token, ok := ctxutil.TokenFrom(ctx)
	if !ok {
		return apperrors.ErrNoCredential
	}

	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentURL(path), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		metrics.StoreRequests.WithLabelValues("save", "error").Inc()
		return &apperrors.RemoteError{Op: "save", Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		metrics.StoreRequests.WithLabelValues("save", "error").Inc()
		return &apperrors.RemoteError{Op: "save", Path: path, Status: resp.StatusCode}
	}
	metrics.StoreRequests.WithLabelValues("save", "ok").Inc()
	return nil
}
