package feedprobe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/vibefeed/internal/adapters/http/api"
	service "github.com/okian/vibefeed/internal/app"
)

// HTTPClient wraps http.Client with the service base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, requestID string) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if requestID != "" {
		req.Header.Set(api.HeaderRequestID, requestID)
	}
	return c.client.Do(req)
}

// Health checks GET /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	resp, err := c.get(ctx, "/healthz", nil, "")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// CitySlugs lists the slugs served by GET /api/cities.
func (c *HTTPClient) CitySlugs(ctx context.Context) ([]string, error) {
	resp, err := c.get(ctx, "/api/cities", nil, "")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cities returned status %d", resp.StatusCode)
	}

	var body struct {
		Cities []struct {
			Slug string `json:"slug"`
		} `json:"cities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode cities: %w", err)
	}
	out := make([]string, 0, len(body.Cities))
	for _, c := range body.Cities {
		out = append(out, c.Slug)
	}
	return out, nil
}

// Feed runs one probe. A non-200 answer returns the status with a nil feed.
func (c *HTTPClient) Feed(ctx context.Context, p Probe) (int, *service.Feed, error) {
	q := url.Values{}
	q.Set("city", p.City)
	q.Set("audience", p.Audience)
	q.Set("vibe", p.Vibe)
	q.Set("mobility", p.Mobility)
	q.Set("budget", p.Budget)
	if p.Weather != "" {
		q.Set("weather", p.Weather)
	}

	resp, err := c.get(ctx, "/api/feed", q, p.RequestID)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read feed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil, fmt.Errorf("feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var feed service.Feed
	if err := json.Unmarshal(body, &feed); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("decode feed: %w", err)
	}
	return resp.StatusCode, &feed, nil
}
