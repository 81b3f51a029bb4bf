// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New() returns a Config populated with defaults.
//   - Load(ctx) layers a YAML file and VIBEFEED_* environment variables on top.
//   - Validate() reports problems wrapped with ErrInvalidConfig.
package config

import (
	"time"
)

// Directory providers.
const (
	ProviderGoogle   = "google"
	ProviderOverpass = "overpass"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects json or text log output.
	LogFormat string `koanf:"log_format" validate:"oneof=json text"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// DirectoryProvider selects the places directory: google or overpass.
	DirectoryProvider string `koanf:"directory_provider" validate:"oneof=google overpass"`

	// PlacesAPIKey authenticates against the Google Places API. When the
	// google provider is selected and this is empty, feed requests fail
	// with a configuration error.
	PlacesAPIKey string `koanf:"places_api_key"`

	PlacesBaseURL string `koanf:"places_base_url" validate:"required,url"`
	OverpassURL   string `koanf:"overpass_url" validate:"required,url"`

	DirectoryTimeoutMS   int     `koanf:"directory_timeout_ms" validate:"gt=0"`
	DirectoryRatePerSec  float64 `koanf:"directory_rate_per_sec" validate:"gte=0"`
	DirectoryCacheSize   int     `koanf:"directory_cache_size" validate:"gte=0"`
	DirectoryCacheTTLSec int     `koanf:"directory_cache_ttl_sec" validate:"gte=0"`

	WeatherEnabled     bool   `koanf:"weather_enabled"`
	WeatherBaseURL     string `koanf:"weather_base_url" validate:"required,url"`
	WeatherTimeoutMS   int    `koanf:"weather_timeout_ms" validate:"gt=0"`
	WeatherCacheTTLSec int    `koanf:"weather_cache_ttl_sec" validate:"gte=0"`

	// Categories are fetched concurrently for every feed request.
	Categories []string `koanf:"categories" validate:"min=1,dive,required"`

	// MaxCandidates caps merged candidates before scoring.
	MaxCandidates int `koanf:"max_candidates" validate:"gt=0"`

	SectionLimit  int     `koanf:"section_limit" validate:"gt=0"`
	FeaturedLimit int     `koanf:"featured_limit" validate:"gte=0"`
	FeaturedBoost float64 `koanf:"featured_boost" validate:"gte=0,lte=100"`

	DefaultRadiusMeters int `koanf:"default_radius_meters" validate:"gt=0"`
	MaxRadiusMeters     int `koanf:"max_radius_meters" validate:"gtefield=DefaultRadiusMeters"`

	// CitiesFile optionally replaces the embedded city table.
	CitiesFile string `koanf:"cities_file"`

	// FeaturedIDs maps a city slug to extra featured place identifiers.
	FeaturedIDs map[string][]string `koanf:"featured_ids"`
}

// New returns a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "json",
		Addr:                 ":9080",
		DirectoryProvider:    ProviderGoogle,
		PlacesBaseURL:        "https://maps.googleapis.com/maps/api/place",
		OverpassURL:          "https://overpass-api.de/api/interpreter",
		DirectoryTimeoutMS:   5000,
		DirectoryRatePerSec:  10,
		DirectoryCacheSize:   512,
		DirectoryCacheTTLSec: 60,
		WeatherEnabled:       true,
		WeatherBaseURL:       "https://api.open-meteo.com/v1/forecast",
		WeatherTimeoutMS:     3000,
		WeatherCacheTTLSec:   300,
		Categories: []string{
			"tourist_attraction", "museum", "natural_feature", "park", "restaurant", "cafe", "bar",
		},
		MaxCandidates:       80,
		SectionLimit:        6,
		FeaturedLimit:       4,
		FeaturedBoost:       20,
		DefaultRadiusMeters: 3000,
		MaxRadiusMeters:     50000,
		FeaturedIDs:         map[string][]string{},
	}
}

// DirectoryTimeout returns the per-call directory timeout.
func (c *Config) DirectoryTimeout() time.Duration {
	return time.Duration(c.DirectoryTimeoutMS) * time.Millisecond
}

// DirectoryCacheTTL returns how long nearby results stay cached.
func (c *Config) DirectoryCacheTTL() time.Duration {
	return time.Duration(c.DirectoryCacheTTLSec) * time.Second
}

// WeatherTimeout returns the weather provider timeout.
func (c *Config) WeatherTimeout() time.Duration {
	return time.Duration(c.WeatherTimeoutMS) * time.Millisecond
}

// WeatherCacheTTL returns how long observations stay cached.
func (c *Config) WeatherCacheTTL() time.Duration {
	return time.Duration(c.WeatherCacheTTLSec) * time.Second
}
