// Package backend calls the proxy's own routes the way the browser page did:
// plain unauthenticated GETs against a fixed local base URL.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"marsrover/pkg/models"
)

var ErrMissingField = errors.New("field missing from response")

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client without a timeout; callers bound requests with
// their context.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{},
	}
}

// APOD returns the "image" member of GET /apod.
func (c *Client) APOD(ctx context.Context) (models.APOD, error) {
	var apod models.APOD
	err := c.getField(ctx, "/apod", "image", &apod)
	return apod, err
}

// Manifest returns the "photo_manifest" member of GET /rovers/:rover.
func (c *Client) Manifest(ctx context.Context, rover string) (models.Manifest, error) {
	var m models.Manifest
	err := c.getField(ctx, "/rovers/"+url.PathEscape(rover), "photo_manifest", &m)
	return m, err
}

// LatestPhotos returns the "latest_photos" member of GET /rover_photos/:rover.
func (c *Client) LatestPhotos(ctx context.Context, rover string) ([]models.Photo, error) {
	var photos []models.Photo
	err := c.getField(ctx, "/rover_photos/"+url.PathEscape(rover), "latest_photos", &photos)
	return photos, err
}

// Raw returns the unmodified body of GET path.
func (c *Client) Raw(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("backend: build request: %w", err)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("backend: read %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend: %s status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (c *Client) getField(ctx context.Context, path, field string, dst any) error {
	body, err := c.Raw(ctx, path)
	if err != nil {
		return err
	}
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("backend: %s: invalid json", path)
	}
	res := gjson.GetBytes(body, field)
	if !res.Exists() {
		return fmt.Errorf("backend: %s: %q: %w", path, field, ErrMissingField)
	}
	if err := json.Unmarshal([]byte(res.Raw), dst); err != nil {
		return fmt.Errorf("backend: %s: decode %s: %w", path, field, err)
	}
	return nil
}
