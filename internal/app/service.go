// Package service assembles the place feed: it gathers candidates from the
// places directory, reads the weather and ranks every section.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/vibefeed/internal/adapters/cities"
	"github.com/okian/vibefeed/internal/domain/model"
	"github.com/okian/vibefeed/internal/domain/ranking"
	"github.com/okian/vibefeed/pkg/logger"
)

var defaultCategories = []string{
	"tourist_attraction", "museum", "natural_feature", "park", "restaurant", "cafe", "bar",
}

// Service implements the feed used by the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	directory model.Directory
	weather   model.WeatherProvider
	cities    *cities.Table
	builder   *ranking.Builder
	clock     clockwork.Clock

	// Configuration
	categories      []string
	maxCandidates   int
	sectionLimit    int
	featuredLimit   int
	maxRadiusMeters int

	// State
	started bool
	stats   feedStats

	logger logger.Logger
}

type feedStats struct {
	requests       atomic.Int64
	failures       atomic.Int64
	lastCandidates atomic.Int64
	lastDurationMS atomic.Int64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDirectory sets the places directory.
func WithDirectory(d model.Directory) Option {
	return func(s *Service) {
		if d != nil {
			s.directory = d
		}
	}
}

// WithWeather sets the live weather provider. Without one every request
// uses the categorical or neutral weather fit.
func WithWeather(w model.WeatherProvider) Option {
	return func(s *Service) {
		s.weather = w
	}
}

// WithCities sets the city table. The embedded table is used otherwise.
func WithCities(t *cities.Table) Option {
	return func(s *Service) {
		if t != nil {
			s.cities = t
		}
	}
}

// WithBuilder sets the section builder.
func WithBuilder(b *ranking.Builder) Option {
	return func(s *Service) {
		if b != nil {
			s.builder = b
		}
	}
}

// WithClock sets the clock that decides the current time.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithCategories sets the directory categories fetched per request.
func WithCategories(categories []string) Option {
	return func(s *Service) {
		if len(categories) > 0 {
			s.categories = append([]string(nil), categories...)
		}
	}
}

// WithMaxCandidates caps merged candidates before scoring.
func WithMaxCandidates(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxCandidates = n
		}
	}
}

// WithSectionLimit sets the number of places per ranked section.
func WithSectionLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sectionLimit = n
		}
	}
}

// WithFeaturedLimit sets the size of the featured section.
func WithFeaturedLimit(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.featuredLimit = n
		}
	}
}

// WithMaxRadius clamps radius overrides.
func WithMaxRadius(meters int) Option {
	return func(s *Service) {
		if meters > 0 {
			s.maxRadiusMeters = meters
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		clock:           clockwork.NewRealClock(),
		categories:      append([]string(nil), defaultCategories...),
		maxCandidates:   80,
		sectionLimit:    6,
		featuredLimit:   4,
		maxRadiusMeters: 50000,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start checks collaborators and marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.directory == nil {
		return errors.New("service: no places directory configured")
	}
	if s.cities == nil {
		table, err := cities.Embedded()
		if err != nil {
			return fmt.Errorf("service: load cities: %w", err)
		}
		s.cities = table
	}
	if s.builder == nil {
		s.builder = ranking.NewBuilder(nil)
	}

	s.started = true
	s.logger.Info(ctx, "feed service started",
		logger.Int("cities", s.cities.Len()),
		logger.Int("categories", len(s.categories)),
		logger.Int("maxCandidates", s.maxCandidates),
		logger.Int("sectionLimit", s.sectionLimit),
		logger.Bool("liveWeather", s.weather != nil),
	)

	return nil
}

// Stop marks the service stopped. In-flight requests finish normally.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "feed service stopped")
}

// Started reports whether Start has completed.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Cities returns the city table in use, nil before Start.
func (s *Service) Cities() *cities.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cities
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"categories":     len(s.categories),
		"maxCandidates":  s.maxCandidates,
		"sectionLimit":   s.sectionLimit,
		"featuredLimit":  s.featuredLimit,
		"liveWeather":    s.weather != nil,
		"feedRequests":   s.stats.requests.Load(),
		"feedFailures":   s.stats.failures.Load(),
		"lastCandidates": s.stats.lastCandidates.Load(),
		"lastDurationMs": s.stats.lastDurationMS.Load(),
	}
	if s.cities != nil {
		stats["cities"] = s.cities.Len()
	}
	return stats
}

func (s *Service) recordOutcome(start time.Time, candidates int, failed bool) {
	s.stats.requests.Add(1)
	if failed {
		s.stats.failures.Add(1)
		return
	}
	s.stats.lastCandidates.Store(int64(candidates))
	s.stats.lastDurationMS.Store(s.clock.Since(start).Milliseconds())
}
