// Package google implements the places directory on the Google Places
// Nearby Search API.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/vibefeed/internal/adapters/directory"
	"github.com/okian/vibefeed/internal/domain/geo"
	"github.com/okian/vibefeed/internal/domain/model"
	"github.com/okian/vibefeed/pkg/logger"
)

const (
	// DefaultBaseURL is the Places API root without the endpoint path.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"

	defaultTimeout   = 5 * time.Second
	defaultRate      = 10
	maxErrorBodySize = 512

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// Client queries Nearby Search one category at a time.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	log        logger.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-call HTTP timeout. It applies to a client given
// through WithHTTPClient too, without modifying the caller's value.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit caps outgoing calls per second. Zero disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := int(math.Ceil(perSecond))
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets a logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a Client. An empty apiKey yields a client whose Ready and
// Nearby report directory.ErrMissingCredential.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(defaultRate), defaultRate),
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	hc := *c.httpClient
	switch {
	case c.timeout > 0:
		hc.Timeout = c.timeout
	case hc.Timeout == 0:
		hc.Timeout = defaultTimeout
	}
	c.httpClient = &hc
	return c
}

// Ready reports whether an API key is configured.
func (c *Client) Ready() error {
	if c.apiKey == "" {
		return directory.ErrMissingCredential
	}
	return nil
}

// Nearby returns places of one category within the radius around the origin.
func (c *Client) Nearby(ctx context.Context, q model.NearbyQuery) ([]model.Candidate, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit: %w", directory.ErrUpstream, err)
	}

	endpoint := c.baseURL + "/nearbysearch/json"
	params := url.Values{}
	params.Set("location", formatLatLng(q.Origin))
	params.Set("radius", strconv.Itoa(q.RadiusMeters))
	if q.Category != "" {
		params.Set("type", q.Category)
	}

	c.log.Debug(ctx, "calling nearby search",
		logger.String("url", endpoint+"?"+params.Encode()+"&key=***REDACTED***"))

	params.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", directory.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", directory.ErrUpstream, redact(err.Error(), c.apiKey))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("%w: status %d: %s", directory.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", directory.ErrUpstream, err)
	}
	if payload.Status != statusOK && payload.Status != statusZeroResults {
		return nil, fmt.Errorf("%w: api status %s: %s", directory.ErrUpstream, payload.Status, payload.ErrorMessage)
	}

	out := make([]model.Candidate, 0, len(payload.Results))
	for _, r := range payload.Results {
		if cand, ok := toCandidate(r, q.Category); ok {
			out = append(out, cand)
		}
	}

	c.log.Debug(ctx, "nearby search completed",
		logger.String("category", q.Category),
		logger.Int("results", len(out)),
		logger.String("status", payload.Status))
	return out, nil
}

// toCandidate normalizes a result. Records without place_id are rejected;
// missing coordinates become NaN so the merge step drops them.
func toCandidate(r placeResult, category string) (model.Candidate, bool) {
	id := strings.TrimSpace(r.PlaceID)
	if id == "" {
		return model.Candidate{}, false
	}

	loc := geo.Point{Lat: math.NaN(), Lng: math.NaN()}
	if r.Geometry != nil && r.Geometry.Location != nil {
		if r.Geometry.Location.Lat != nil {
			loc.Lat = *r.Geometry.Location.Lat
		}
		if r.Geometry.Location.Lng != nil {
			loc.Lng = *r.Geometry.Location.Lng
		}
	}

	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = model.DefaultPlaceName
	}

	tags := make([]string, 0, len(r.Types)+1)
	for _, t := range r.Types {
		tags = append(tags, strings.ToLower(strings.TrimSpace(t)))
	}
	if category != "" {
		tags = append(tags, category)
	}

	var open *bool
	if r.OpeningHours != nil {
		open = r.OpeningHours.OpenNow
	}

	return model.Candidate{
		ID:          id,
		Name:        name,
		Location:    loc,
		Tags:        model.UnionTags(nil, tags),
		Rating:      r.Rating,
		RatingCount: r.UserRatingsTotal,
		OpenNow:     open,
		PriceLevel:  r.PriceLevel,
		Vicinity:    r.Vicinity,
	}, true
}

func formatLatLng(p geo.Point) string {
	return strconv.FormatFloat(p.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lng, 'f', 6, 64)
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "***REDACTED***")
}
