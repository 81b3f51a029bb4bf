package main

import (
	"context"
	"net/http"

	_ "time/tzdata"

	"github.com/okian/vibefeed/internal/adapters/cities"
	"github.com/okian/vibefeed/internal/adapters/directory"
	"github.com/okian/vibefeed/internal/adapters/directory/google"
	"github.com/okian/vibefeed/internal/adapters/directory/overpass"
	"github.com/okian/vibefeed/internal/adapters/http/api"
	"github.com/okian/vibefeed/internal/adapters/http/site"
	"github.com/okian/vibefeed/internal/adapters/http/swagger"
	"github.com/okian/vibefeed/internal/adapters/weather"
	"github.com/okian/vibefeed/internal/adapters/weather/openmeteo"
	app "github.com/okian/vibefeed/internal/app"
	"github.com/okian/vibefeed/internal/config"
	"github.com/okian/vibefeed/internal/domain/model"
	"github.com/okian/vibefeed/internal/domain/ranking"
	"github.com/okian/vibefeed/internal/domain/scoring"
	"github.com/okian/vibefeed/pkg/logger"
)

// buildService assembles the feed service from configuration.
func buildService(cfg *config.Config, log logger.Logger) (*app.Service, error) {
	table, err := buildCities(cfg)
	if err != nil {
		return nil, err
	}

	builder := ranking.NewBuilder(scoring.New(scoring.WithFeaturedBoost(cfg.FeaturedBoost)))

	return app.New(
		app.WithLogger(log.Named("feed")),
		app.WithDirectory(buildDirectory(cfg, log)),
		app.WithWeather(buildWeather(cfg, log)),
		app.WithCities(table),
		app.WithBuilder(builder),
		app.WithCategories(cfg.Categories),
		app.WithMaxCandidates(cfg.MaxCandidates),
		app.WithSectionLimit(cfg.SectionLimit),
		app.WithFeaturedLimit(cfg.FeaturedLimit),
		app.WithMaxRadius(cfg.MaxRadiusMeters),
	), nil
}

func buildCities(cfg *config.Config) (*cities.Table, error) {
	opts := []cities.Option{
		cities.WithFallbackRadius(cfg.DefaultRadiusMeters),
		cities.WithFeaturedIDs(cfg.FeaturedIDs),
	}
	if cfg.CitiesFile != "" {
		return cities.Load(cfg.CitiesFile, opts...)
	}
	return cities.Embedded(opts...)
}

// buildDirectory picks the provider and layers instrumentation and caching
// on top; cache hits never reach the instrumented upstream.
func buildDirectory(cfg *config.Config, log logger.Logger) model.Directory {
	var inner model.Directory
	switch cfg.DirectoryProvider {
	case config.ProviderOverpass:
		inner = overpass.New(
			overpass.WithEndpoint(cfg.OverpassURL),
			overpass.WithTimeout(cfg.DirectoryTimeout()),
			overpass.WithLogger(log.Named("directory.overpass")),
		)
	default:
		inner = google.New(cfg.PlacesAPIKey,
			google.WithBaseURL(cfg.PlacesBaseURL),
			google.WithTimeout(cfg.DirectoryTimeout()),
			google.WithRateLimit(cfg.DirectoryRatePerSec),
			google.WithLogger(log.Named("directory.google")),
		)
	}

	var d model.Directory = directory.NewInstrumented(inner, cfg.DirectoryProvider, log.Named("directory"))
	if cfg.DirectoryCacheSize > 0 && cfg.DirectoryCacheTTL() > 0 {
		d = directory.NewCached(d,
			directory.WithCacheSize(cfg.DirectoryCacheSize),
			directory.WithCacheTTL(cfg.DirectoryCacheTTL()),
		)
	}
	return d
}

func buildWeather(cfg *config.Config, log logger.Logger) model.WeatherProvider {
	if !cfg.WeatherEnabled {
		return nil
	}
	client := openmeteo.New(
		openmeteo.WithBaseURL(cfg.WeatherBaseURL),
		openmeteo.WithTimeout(cfg.WeatherTimeout()),
		openmeteo.WithLogger(log.Named("weather.openmeteo")),
	)
	if cfg.WeatherCacheTTL() <= 0 {
		return client
	}
	return weather.NewCached(client,
		weather.WithCacheTTL(cfg.WeatherCacheTTL()),
		weather.WithLogger(log.Named("weather")),
	)
}

// buildMux registers every HTTP surface.
func buildMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	site.Register(ctx, mux)
	return mux
}
