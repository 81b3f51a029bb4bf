// Package ranking scores candidates per section and keeps the top N.
package ranking

import (
	"net/url"
	"sort"
	"time"

	"github.com/okian/vibefeed/internal/domain/geo"
	"github.com/okian/vibefeed/internal/domain/model"
	"github.com/okian/vibefeed/internal/domain/scoring"
)

const mapsSearchURL = "https://www.google.com/maps/search/"

// Context is the request-level input shared by every section.
type Context struct {
	Origin   geo.Point
	Now      time.Time
	Weather  model.WeatherContext
	Prefs    model.Preferences
	Featured scoring.FeaturedSet
}

// Builder ranks candidates with a Scorer.
type Builder struct {
	scorer *scoring.Scorer
}

// NewBuilder returns a Builder using scorer.
func NewBuilder(scorer *scoring.Scorer) *Builder {
	if scorer == nil {
		scorer = scoring.New()
	}
	return &Builder{scorer: scorer}
}

// BuildSection scores every candidate for section, sorts by score descending
// keeping candidate order for ties, and returns at most limit places.
func (b *Builder) BuildSection(section model.Section, candidates []model.Candidate, rc Context, limit int) []model.ScoredPlace {
	return b.rank(section, candidates, rc, limit)
}

// BuildFeatured ranks only candidates whose identity is featured, using the
// happening-now weights. No featured identifiers yields an empty list.
func (b *Builder) BuildFeatured(candidates []model.Candidate, rc Context, limit int) []model.ScoredPlace {
	if len(rc.Featured) == 0 {
		return []model.ScoredPlace{}
	}
	picked := make([]model.Candidate, 0, len(rc.Featured))
	for _, c := range candidates {
		if rc.Featured.Contains(c.ID) {
			picked = append(picked, c)
		}
	}
	return b.rank(model.SectionHappeningNow, picked, rc, limit)
}

func (b *Builder) rank(section model.Section, candidates []model.Candidate, rc Context, limit int) []model.ScoredPlace {
	scored := make([]model.ScoredPlace, 0, len(candidates))
	for _, c := range candidates {
		res := b.scorer.Score(scoring.Input{
			Origin:    rc.Origin,
			Now:       rc.Now,
			Weather:   rc.Weather,
			Candidate: c,
			Section:   section,
			Prefs:     rc.Prefs,
			Featured:  rc.Featured,
		})
		scored = append(scored, toScoredPlace(c, res))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if limit >= 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

func toScoredPlace(c model.Candidate, res scoring.Result) model.ScoredPlace {
	name := c.Name
	if name == "" {
		name = model.DefaultPlaceName
	}
	return model.ScoredPlace{
		PlaceID:       c.ID,
		Name:          name,
		Rating:        c.Rating,
		RatingCount:   c.RatingCount,
		Vicinity:      c.Vicinity,
		MapsURL:       MapsURL(name, c.ID),
		DistanceKm:    geo.RoundTo(res.DistanceKm, 1),
		Score:         res.Score,
		LiveVibeIndex: res.LiveVibeIndex,
		LiveVibeState: res.LiveVibeState,
		ReasonTokens:  res.ReasonTokens,
		IsFeatured:    res.IsFeatured,
	}
}

// MapsURL builds a Google Maps search link for a place.
func MapsURL(name, placeID string) string {
	q := url.Values{}
	q.Set("api", "1")
	q.Set("query", name)
	q.Set("query_place_id", placeID)
	return mapsSearchURL + "?" + q.Encode()
}
