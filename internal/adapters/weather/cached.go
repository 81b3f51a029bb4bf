package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/vibefeed/internal/adapters/cache"
	"github.com/okian/vibefeed/internal/domain/geo"
	"github.com/okian/vibefeed/internal/domain/model"
	"github.com/okian/vibefeed/pkg/logger"
	"github.com/okian/vibefeed/pkg/metrics"
)

const (
	defaultCacheSize = 256
	defaultCacheTTL  = 5 * time.Minute

	// Two decimals is roughly one kilometre, well inside a forecast cell.
	pointPrecision = 2
)

// CachedProvider memoizes observations per rounded coordinate and records
// fetch outcomes.
type CachedProvider struct {
	inner model.WeatherProvider
	lru   *cache.LRU[model.LiveWeather]
	log   logger.Logger
}

// CacheOption configures CachedProvider.
type CacheOption func(*cacheSettings)

type cacheSettings struct {
	size  int
	ttl   time.Duration
	clock clockwork.Clock
	log   logger.Logger
}

// WithCacheTTL sets how long an observation is reused.
func WithCacheTTL(d time.Duration) CacheOption {
	return func(s *cacheSettings) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithCacheSize bounds the number of cached coordinates.
func WithCacheSize(n int) CacheOption {
	return func(s *cacheSettings) {
		if n > 0 {
			s.size = n
		}
	}
}

// WithCacheClock sets the clock used for expiry.
func WithCacheClock(c clockwork.Clock) CacheOption {
	return func(s *cacheSettings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets a logger.
func WithLogger(l logger.Logger) CacheOption {
	return func(s *cacheSettings) {
		if l != nil {
			s.log = l
		}
	}
}

// NewCached wraps inner.
func NewCached(inner model.WeatherProvider, opts ...CacheOption) *CachedProvider {
	s := &cacheSettings{
		size:  defaultCacheSize,
		ttl:   defaultCacheTTL,
		clock: clockwork.NewRealClock(),
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return &CachedProvider{
		inner: inner,
		lru:   cache.New[model.LiveWeather](s.size, cache.WithTTL(s.ttl), cache.WithClock(s.clock)),
		log:   s.log,
	}
}

// Current returns the cached observation for p, fetching on miss.
func (c *CachedProvider) Current(ctx context.Context, p geo.Point) (*model.LiveWeather, error) {
	key := fmt.Sprintf("%.*f|%.*f",
		pointPrecision, geo.RoundTo(p.Lat, pointPrecision),
		pointPrecision, geo.RoundTo(p.Lng, pointPrecision))

	if hit, ok := c.lru.Get(key); ok {
		metrics.RecordCacheLookup("weather", true)
		metrics.RecordWeatherFetch("cached")
		w := hit
		return &w, nil
	}
	metrics.RecordCacheLookup("weather", false)

	w, err := c.inner.Current(ctx, p)
	if err != nil {
		metrics.RecordWeatherFetch("error")
		c.log.Warn(ctx, "live weather unavailable", logger.Error(err))
		return nil, err
	}
	if w == nil {
		metrics.RecordWeatherFetch("empty")
		return nil, nil
	}
	metrics.RecordWeatherFetch("ok")
	c.lru.Put(key, *w)
	out := *w
	return &out, nil
}
