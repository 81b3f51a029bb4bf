// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/vibefeed/internal/adapters/cities"
	service "github.com/okian/vibefeed/internal/app"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Feed builds the ranked feed for one request.
	Feed(ctx context.Context, req service.FeedRequest) (*service.Feed, error)
	// Cities exposes the city table, nil before the service starts.
	Cities() *cities.Table
}

// Server wires HTTP routes for the feed API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	feedHandler   *FeedHandler
	citiesHandler *CitiesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(deps),
		statsHandler:  NewStatsHandler(statsProvider),
		feedHandler:   NewFeedHandler(deps),
		citiesHandler: NewCitiesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/metrics", MetricsHandler())
	mux.HandleFunc("/api/feed", RequestIDMiddleware(MetricsMiddleware(s.feedHandler.HandleFeed, "feed")))
	mux.HandleFunc("/api/cities", MetricsMiddleware(s.citiesHandler.HandleCities, "cities"))
}
