// Package overpass implements the places directory on OpenStreetMap data
// served by an Overpass API endpoint.
package overpass

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/serjvanilla/go-overpass"

	"github.com/okian/vibefeed/internal/adapters/directory"
	"github.com/okian/vibefeed/internal/domain/geo"
	"github.com/okian/vibefeed/internal/domain/model"
	"github.com/okian/vibefeed/pkg/logger"
)

const (
	// DefaultEndpoint is the public Overpass interpreter.
	DefaultEndpoint = "https://overpass-api.de/api/interpreter"

	defaultTimeout     = 10 * time.Second
	defaultMaxParallel = 2
)

// Client answers nearby queries with OSM nodes and ways.
type Client struct {
	client  *overpass.Client
	timeout time.Duration
	log     logger.Logger
}

// Option configures the Client.
type Option func(*settings)

type settings struct {
	endpoint    string
	timeout     time.Duration
	maxParallel int
	log         logger.Logger
}

// WithEndpoint sets the interpreter URL.
func WithEndpoint(endpoint string) Option {
	return func(s *settings) {
		if endpoint != "" {
			s.endpoint = endpoint
		}
	}
}

// WithTimeout sets the HTTP timeout for one query.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxParallel bounds concurrent queries against the endpoint.
func WithMaxParallel(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxParallel = n
		}
	}
}

// WithLogger sets a logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates an Overpass-backed directory.
func New(opts ...Option) *Client {
	s := &settings{
		endpoint:    DefaultEndpoint,
		timeout:     defaultTimeout,
		maxParallel: defaultMaxParallel,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	client := overpass.NewWithSettings(s.endpoint, s.maxParallel, &http.Client{Timeout: s.timeout})
	return &Client{client: &client, timeout: s.timeout, log: s.log}
}

// Nearby returns OSM elements of the category within the radius. Unknown
// categories yield no results rather than an error.
func (c *Client) Nearby(ctx context.Context, q model.NearbyQuery) ([]model.Candidate, error) {
	filters, ok := categoryFilters[q.Category]
	if !ok {
		c.log.Debug(ctx, "category not mapped to osm tags", logger.String("category", q.Category))
		return []model.Candidate{}, nil
	}

	result, err := c.executeQuery(ctx, buildQuery(filters, q))
	if err != nil {
		return nil, err
	}
	return convert(result, filters, q.Category), nil
}

func (c *Client) executeQuery(ctx context.Context, query string) (*overpass.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type outcome struct {
		result overpass.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := c.client.Query(query)
		done <- outcome{result: r, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: overpass query: %w", directory.ErrUpstream, ctx.Err())
	case o := <-done:
		if o.err != nil {
			return nil, fmt.Errorf("%w: overpass query: %w", directory.ErrUpstream, o.err)
		}
		return &o.result, nil
	}
}

func buildQuery(filters []osmFilter, q model.NearbyQuery) string {
	around := fmt.Sprintf("(around:%d,%s,%s)", q.RadiusMeters,
		strconv.FormatFloat(q.Origin.Lat, 'f', 6, 64),
		strconv.FormatFloat(q.Origin.Lng, 'f', 6, 64))

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, f := range filters {
		fmt.Fprintf(&b, "  node%s%s;\n", f.selector(), around)
		fmt.Fprintf(&b, "  way%s%s;\n", f.selector(), around)
	}
	b.WriteString(");\nout body;\n>;\nout skel qt;\n")
	return b.String()
}

func convert(result *overpass.Result, filters []osmFilter, category string) []model.Candidate {
	out := make([]model.Candidate, 0, len(result.Nodes))

	for _, node := range result.Nodes {
		if !matchesAny(filters, node.Tags) {
			continue
		}
		out = append(out, candidate("node", node.ID, geo.Point{Lat: node.Lat, Lng: node.Lon}, node.Tags, category))
	}

	for _, way := range result.Ways {
		if !matchesAny(filters, way.Tags) || len(way.Nodes) == 0 {
			continue
		}
		var lat, lon float64
		n := 0
		for _, node := range way.Nodes {
			if node == nil {
				continue
			}
			lat += node.Lat
			lon += node.Lon
			n++
		}
		if n == 0 {
			continue
		}
		center := geo.Point{Lat: lat / float64(n), Lng: lon / float64(n)}
		out = append(out, candidate("way", way.ID, center, way.Tags, category))
	}

	// Result maps have no order.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func matchesAny(filters []osmFilter, tags map[string]string) bool {
	for _, f := range filters {
		if f.matches(tags) {
			return true
		}
	}
	return false
}

func candidate(kind string, id int64, loc geo.Point, tags map[string]string, category string) model.Candidate {
	name := strings.TrimSpace(tags["name:en"])
	if name == "" {
		name = strings.TrimSpace(tags["name"])
	}
	if name == "" {
		name = model.DefaultPlaceName
	}

	labels := []string{category}
	for _, key := range []string{"amenity", "tourism", "leisure", "natural", "historic"} {
		if v := tags[key]; v != "" {
			labels = append(labels, v)
		}
	}

	return model.Candidate{
		ID:       fmt.Sprintf("osm:%s/%d", kind, id),
		Name:     name,
		Location: loc,
		Tags:     model.UnionTags(nil, labels),
		Vicinity: vicinity(tags),
	}
}

func vicinity(tags map[string]string) string {
	street := tags["addr:street"]
	if street == "" {
		return tags["addr:city"]
	}
	if num := tags["addr:housenumber"]; num != "" {
		street += " " + num
	}
	if city := tags["addr:city"]; city != "" {
		street += ", " + city
	}
	return street
}
