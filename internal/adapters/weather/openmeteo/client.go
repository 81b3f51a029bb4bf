// Package openmeteo reads current conditions from the Open-Meteo forecast API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/vibefeed/internal/adapters/weather"
	"github.com/okian/vibefeed/internal/domain/geo"
	"github.com/okian/vibefeed/internal/domain/model"
	"github.com/okian/vibefeed/pkg/logger"
)

const (
	// DefaultBaseURL is the public forecast endpoint.
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

	defaultTimeout   = 3 * time.Second
	maxErrorBodySize = 512

	currentFields = "temperature_2m,precipitation,precipitation_probability,wind_speed_10m,cloud_cover"
)

// Client fetches live weather.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the forecast endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
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

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type forecastResponse struct {
	Current *struct {
		Temperature              *float64 `json:"temperature_2m"`
		Precipitation            *float64 `json:"precipitation"`
		PrecipitationProbability *float64 `json:"precipitation_probability"`
		WindSpeed                *float64 `json:"wind_speed_10m"`
		CloudCover               *float64 `json:"cloud_cover"`
	} `json:"current"`
}

// Current returns conditions at p for the current interval. Missing fields
// read as zero.
func (c *Client) Current(ctx context.Context, p geo.Point) (*model.LiveWeather, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(p.Lat, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(p.Lng, 'f', 4, 64))
	params.Set("current", currentFields)
	endpoint := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", weather.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", weather.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("%w: status %d: %s", weather.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", weather.ErrUpstream, err)
	}

	w := &model.LiveWeather{}
	if cur := payload.Current; cur != nil {
		w.TemperatureC = deref(cur.Temperature)
		w.PrecipitationMM = deref(cur.Precipitation)
		w.PrecipitationChance = deref(cur.PrecipitationProbability)
		w.WindKmh = deref(cur.WindSpeed)
		w.CloudCover = deref(cur.CloudCover)
	}

	c.log.Debug(ctx, "live weather",
		logger.Float64("temperature_c", w.TemperatureC),
		logger.Float64("precipitation_mm", w.PrecipitationMM),
		logger.Float64("wind_kmh", w.WindKmh))
	return w, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
