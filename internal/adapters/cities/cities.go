// Package cities holds the immutable city reference table: coordinates,
// search radii, time zones and featured place identifiers per city slug.
package cities

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/okian/vibefeed/internal/domain/geo"
)

const (
	defaultSlug          = "athens"
	defaultTimezone      = "Europe/Athens"
	fallbackRadiusMeters = 3000
	unsetPriority        = 999
)

//go:embed cities.yaml
var embedded []byte

// City is one normalized entry of the table.
type City struct {
	ID                  string   `json:"id"`
	Slug                string   `json:"slug"`
	Name                string   `json:"name"`
	LocalName           string   `json:"localName,omitempty"`
	Region              string   `json:"region"`
	Group               string   `json:"group,omitempty"`
	Lat                 float64  `json:"lat"`
	Lng                 float64  `json:"lng"`
	Priority            int      `json:"priority"`
	Tags                []string `json:"tags,omitempty"`
	DefaultRadiusMeters int      `json:"defaultRadiusMeters,omitempty"`
	Timezone            string   `json:"timezone"`
	PreferredTypes      []string `json:"preferredTypes,omitempty"`
	FeaturedIDs         []string `json:"-"`

	loc *time.Location
}

// Location returns the city center.
func (c City) Location() geo.Point {
	return geo.Point{Lat: c.Lat, Lng: c.Lng}
}

// TimeLocation returns the city's time zone, UTC when unknown.
func (c City) TimeLocation() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

type rawFile struct {
	SchemaVersion       int       `yaml:"schemaVersion"`
	Country             string    `yaml:"country"`
	DefaultRadiusMeters int       `yaml:"defaultRadiusMeters"`
	Cities              []rawCity `yaml:"cities"`
}

type rawCity struct {
	ID                  string   `yaml:"id"`
	Slug                string   `yaml:"slug"`
	Name                string   `yaml:"name"`
	LocalName           string   `yaml:"localName"`
	Region              string   `yaml:"region"`
	Group               string   `yaml:"group"`
	Lat                 *float64 `yaml:"lat"`
	Lng                 *float64 `yaml:"lng"`
	Priority            *int     `yaml:"priority"`
	Tags                []string `yaml:"tags"`
	DefaultRadiusMeters int      `yaml:"defaultRadiusMeters"`
	Timezone            string   `yaml:"timezone"`
	PreferredTypes      []string `yaml:"preferredTypes"`
	FeaturedIDs         []string `yaml:"featuredIds"`
}

// Table is an immutable slug-indexed city list sorted by priority.
type Table struct {
	cities        []City
	bySlug        map[string]int
	defaultIdx    int
	defaultRadius int
}

// Option configures table construction.
type Option func(*buildOptions)

type buildOptions struct {
	fallbackRadius int
	featured       map[string][]string
}

// WithFallbackRadius sets the global radius used when the file has none.
func WithFallbackRadius(meters int) Option {
	return func(o *buildOptions) {
		if meters > 0 {
			o.fallbackRadius = meters
		}
	}
}

// WithFeaturedIDs appends featured identifiers per city slug.
func WithFeaturedIDs(ids map[string][]string) Option {
	return func(o *buildOptions) {
		for slug, list := range ids {
			key := normalizeID(slug)
			o.featured[key] = append(o.featured[key], list...)
		}
	}
}

// Embedded builds the table shipped with the binary.
func Embedded(opts ...Option) (*Table, error) {
	return Parse(embedded, opts...)
}

// Load builds a table from a YAML file.
func Load(path string, opts ...Option) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	return Parse(data, opts...)
}

// Parse builds a table from YAML. Entries without an id or with non-finite
// coordinates are skipped; at least one valid entry is required.
func Parse(data []byte, opts ...Option) (*Table, error) {
	o := &buildOptions{fallbackRadius: fallbackRadiusMeters, featured: map[string][]string{}}
	for _, opt := range opts {
		opt(o)
	}

	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}

	list := make([]City, 0, len(raw.Cities))
	seen := make(map[string]struct{}, len(raw.Cities))
	for _, rc := range raw.Cities {
		c, ok := normalizeCity(rc)
		if !ok {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		c.FeaturedIDs = uniqueIDs(c.FeaturedIDs, o.featured[c.ID])
		list = append(list, c)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: no usable cities", ErrInvalidTable)
	}

	sort.SliceStable(list, func(i, j int) bool { return list[i].Priority < list[j].Priority })

	t := &Table{
		cities:        list,
		bySlug:        make(map[string]int, len(list)),
		defaultRadius: o.fallbackRadius,
	}
	if raw.DefaultRadiusMeters > 0 {
		t.defaultRadius = raw.DefaultRadiusMeters
	}
	for i, c := range list {
		t.bySlug[c.Slug] = i
	}
	if i, ok := t.bySlug[defaultSlug]; ok {
		t.defaultIdx = i
	}
	return t, nil
}

func normalizeCity(rc rawCity) (City, bool) {
	id := normalizeID(rc.ID)
	if id == "" {
		id = normalizeID(rc.Slug)
	}
	if id == "" || rc.Lat == nil || rc.Lng == nil {
		return City{}, false
	}
	lat, lng := *rc.Lat, *rc.Lng
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return City{}, false
	}

	priority := unsetPriority
	if rc.Priority != nil {
		priority = *rc.Priority
	}
	tz := rc.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
		tz = "UTC"
	}

	return City{
		ID:                  id,
		Slug:                id,
		Name:                rc.Name,
		LocalName:           rc.LocalName,
		Region:              rc.Region,
		Group:               rc.Group,
		Lat:                 lat,
		Lng:                 lng,
		Priority:            priority,
		Tags:                rc.Tags,
		DefaultRadiusMeters: rc.DefaultRadiusMeters,
		Timezone:            tz,
		PreferredTypes:      rc.PreferredTypes,
		FeaturedIDs:         rc.FeaturedIDs,
		loc:                 loc,
	}, true
}

func normalizeID(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func uniqueIDs(lists ...[]string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, l := range lists {
		for _, id := range l {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// Lookup finds a city by slug, case-insensitively.
func (t *Table) Lookup(slug string) (City, bool) {
	i, ok := t.bySlug[normalizeID(slug)]
	if !ok {
		return City{}, false
	}
	return t.cities[i], true
}

// Resolve returns the city for slug, or the default when slug is empty or unknown.
func (t *Table) Resolve(slug string) City {
	if c, ok := t.Lookup(slug); ok {
		return c
	}
	return t.Default()
}

// Default returns athens when present, else the highest-priority city.
func (t *Table) Default() City {
	return t.cities[t.defaultIdx]
}

// All returns the cities ordered by priority.
func (t *Table) All() []City {
	out := make([]City, len(t.cities))
	copy(out, t.cities)
	return out
}

// Len returns the number of cities.
func (t *Table) Len() int {
	return len(t.cities)
}

// GlobalRadiusMeters is the radius used when a city has none configured.
func (t *Table) GlobalRadiusMeters() int {
	return t.defaultRadius
}

// RadiusMeters picks the positive override, then the city radius, then the global default.
func (t *Table) RadiusMeters(c City, override int) int {
	if override > 0 {
		return override
	}
	if c.DefaultRadiusMeters > 0 {
		return c.DefaultRadiusMeters
	}
	return t.defaultRadius
}

// FeaturedIDs returns the featured identifiers configured for slug.
func (t *Table) FeaturedIDs(slug string) []string {
	c, ok := t.Lookup(slug)
	if !ok {
		return nil
	}
	return append([]string(nil), c.FeaturedIDs...)
}
