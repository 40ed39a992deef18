// Package nasa calls the public NASA APIs with the server-side credential.
package nasa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxBodyBytes = 10 << 20

var ErrInvalidJSON = errors.New("upstream body is not JSON")

// Client holds the upstream endpoints and the API key appended to every call.
type Client struct {
	HTTP          *http.Client
	APIKey        string
	RoverEndpoint string // e.g. https://api.nasa.gov/mars-photos/api/v1
	APODEndpoint  string // e.g. https://api.nasa.gov/planetary/apod
}

func NewClient(apiKey, roverEndpoint, apodEndpoint string, timeout time.Duration) *Client {
	return &Client{
		HTTP:          &http.Client{Timeout: timeout},
		APIKey:        apiKey,
		RoverEndpoint: strings.TrimRight(roverEndpoint, "/"),
		APODEndpoint:  apodEndpoint,
	}
}

// Response is an upstream answer whose body parsed as JSON.
type Response struct {
	Status   int
	Body     json.RawMessage
	Endpoint string // request URL without the api_key
}

// APOD fetches today's astronomy picture of the day.
func (c *Client) APOD(ctx context.Context) (*Response, error) {
	return c.get(ctx, c.APODEndpoint)
}

// Manifest fetches the mission manifest of rover.
func (c *Client) Manifest(ctx context.Context, rover string) (*Response, error) {
	return c.get(ctx, c.RoverEndpoint+"/manifests/"+url.PathEscape(rover))
}

// LatestPhotos fetches the photos of rover's most recent sol.
func (c *Client) LatestPhotos(ctx context.Context, rover string) (*Response, error) {
	return c.get(ctx, c.RoverEndpoint+"/rovers/"+url.PathEscape(rover)+"/latest_photos")
}

func (c *Client) get(ctx context.Context, endpoint string) (*Response, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("nasa: parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("api_key", c.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("nasa: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		// *url.Error embeds the full URL, api_key included.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("nasa: request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("nasa: read body: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("nasa: %s status %d: %w", endpoint, resp.StatusCode, ErrInvalidJSON)
	}

	return &Response{
		Status:   resp.StatusCode,
		Body:     body,
		Endpoint: endpoint,
	}, nil
}
