package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/vibefeed/internal/adapters/cache"
	"github.com/okian/vibefeed/internal/domain/geo"
	"github.com/okian/vibefeed/internal/domain/model"
	"github.com/okian/vibefeed/pkg/metrics"
)

const (
	defaultCacheSize = 512
	defaultCacheTTL  = time.Minute

	// Origins closer than ~100 m share a cache entry.
	originPrecision = 3
)

// Cached memoizes non-empty Nearby answers of an inner directory.
type Cached struct {
	inner model.Directory
	lru   *cache.LRU[[]model.Candidate]
}

// CacheOption configures the Cached decorator.
type CacheOption func(*cacheSettings)

type cacheSettings struct {
	size  int
	ttl   time.Duration
	clock clockwork.Clock
}

// WithCacheSize bounds the number of cached queries.
func WithCacheSize(n int) CacheOption {
	return func(s *cacheSettings) {
		if n > 0 {
			s.size = n
		}
	}
}

// WithCacheTTL sets how long a cached answer is served.
func WithCacheTTL(d time.Duration) CacheOption {
	return func(s *cacheSettings) {
		if d > 0 {
			s.ttl = d
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

// NewCached wraps inner with an LRU cache.
func NewCached(inner model.Directory, opts ...CacheOption) *Cached {
	s := &cacheSettings{size: defaultCacheSize, ttl: defaultCacheTTL, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(s)
	}
	return &Cached{
		inner: inner,
		lru:   cache.New[[]model.Candidate](s.size, cache.WithTTL(s.ttl), cache.WithClock(s.clock)),
	}
}

// Ready delegates to the wrapped directory.
func (c *Cached) Ready() error {
	return Ready(c.inner)
}

// Nearby serves from cache when possible. Errors and empty answers are
// never stored.
func (c *Cached) Nearby(ctx context.Context, q model.NearbyQuery) ([]model.Candidate, error) {
	key := cacheKey(q)
	if hit, ok := c.lru.Get(key); ok {
		metrics.RecordCacheLookup("directory", true)
		return append([]model.Candidate(nil), hit...), nil
	}
	metrics.RecordCacheLookup("directory", false)

	got, err := c.inner.Nearby(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(got) > 0 {
		c.lru.Put(key, append([]model.Candidate(nil), got...))
	}
	return got, nil
}

func cacheKey(q model.NearbyQuery) string {
	return fmt.Sprintf("%s|%.*f|%.*f|%d",
		q.Category,
		originPrecision, geo.RoundTo(q.Origin.Lat, originPrecision),
		originPrecision, geo.RoundTo(q.Origin.Lng, originPrecision),
		q.RadiusMeters)
}
