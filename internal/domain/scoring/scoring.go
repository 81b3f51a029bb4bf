// Package scoring turns a candidate place and request context into a
// section-specific relevance score, a live vibe index and reason tokens.
package scoring

import (
	"math"
	"time"

	"github.com/okian/vibefeed/internal/domain/geo"
	"github.com/okian/vibefeed/internal/domain/model"
)

const (
	defaultFeaturedBoost = 20
	maxScoreValue        = 100

	neutralRating = 0.4
	openKnown     = 1.0
	openOther     = 0.3

	nearbyKm       = 1.5
	highRatedFloor = 4.5
	goodWeatherFit = 0.85
)

// FeaturedSet holds operator-curated place identifiers.
type FeaturedSet map[string]struct{}

// NewFeaturedSet builds a set from ids, skipping blanks.
func NewFeaturedSet(ids ...string) FeaturedSet {
	s := make(FeaturedSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

// Contains reports whether id is featured. A nil set contains nothing.
func (s FeaturedSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithFeaturedBoost sets the flat bonus for featured places.
func WithFeaturedBoost(boost float64) Option {
	return func(s *Scorer) {
		if boost >= 0 && boost <= maxScoreValue {
			s.featuredBoost = boost
		}
	}
}

// Input is everything needed to score one place for one section.
type Input struct {
	Origin    geo.Point
	Now       time.Time
	Weather   model.WeatherContext
	Candidate model.Candidate
	Section   model.Section
	Prefs     model.Preferences
	Featured  FeaturedSet
}

// Fits are the individual desirability terms, each in [0,1].
type Fits struct {
	Distance   float64
	Weather    float64
	Time       float64
	Rating     float64
	Open       float64
	Preference float64
	Budget     float64
}

// Result is the scored outcome for one place in one section.
type Result struct {
	Score         int
	DistanceKm    float64
	LiveVibeIndex int
	LiveVibeState string
	ReasonTokens  []string
	IsFeatured    bool
	Indoor        bool
	Fits          Fits
}

// Scorer is stateless after construction and safe for concurrent use.
type Scorer struct {
	featuredBoost float64
	weights       map[model.Section]Weights
}

// New creates a Scorer with the default section weights.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		featuredBoost: defaultFeaturedBoost,
		weights:       defaultWeights(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the profile used for section.
func (s *Scorer) Weights(section model.Section) Weights {
	if w, ok := s.weights[section]; ok {
		return w
	}
	return s.weights[model.SectionHappeningNow]
}

// Score computes the composite score, live vibe and reasons for in.
// Missing optional attributes fall back to neutral values.
func (s *Scorer) Score(in Input) Result {
	c := in.Candidate
	km := geo.Haversine(in.Origin, c.Location)
	if math.IsNaN(km) {
		km = math.Inf(1)
	}
	indoor := IsIndoor(c.Tags)

	fits := Fits{
		Distance:   DistanceFit(km, in.Prefs.Mobility),
		Weather:    weatherFor(indoor, in.Weather),
		Time:       TimeOfDayFit(in.Now, c.Tags),
		Rating:     RatingFit(c.Rating, c.RatingCount),
		Open:       OpenFit(c.OpenNow),
		Preference: PreferenceBoost(c.Tags, in.Prefs.Vibe, in.Prefs.Audience),
		Budget:     BudgetFit(c.PriceLevel, in.Prefs.Budget),
	}

	score := int(math.Round(s.Weights(in.Section).Combine(fits) * maxScoreValue))
	featured := in.Featured.Contains(c.ID)
	if featured {
		score += int(math.Round(s.featuredBoost))
	}
	score = clampScore(score)

	index, state := LiveVibe(fits, c.OpenNow, c.RatingCount)

	return Result{
		Score:         score,
		DistanceKm:    km,
		LiveVibeIndex: index,
		LiveVibeState: state,
		ReasonTokens:  Reasons(fits, c, km, indoor, featured, in.Prefs.Vibe),
		IsFeatured:    featured,
		Indoor:        indoor,
		Fits:          fits,
	}
}

// DistanceFit is clamp01(1 - km/10) scaled by the mobility multiplier and
// zeroed beyond the mobility range cap.
func DistanceFit(km float64, mobility model.Mobility) float64 {
	if km > mobilityCapKm(mobility) {
		return 0
	}
	return clamp01(clamp01(1-km/10) * mobilityMultiplier(mobility))
}

func mobilityCapKm(m model.Mobility) float64 {
	if m == model.MobilityWalk {
		return 7.5
	}
	return 25
}

func mobilityMultiplier(m model.Mobility) float64 {
	switch m {
	case model.MobilityCar:
		return 0.85
	case model.MobilityBoat:
		return 0.95
	default:
		return 1.1
	}
}

// RatingFit rewards quality and review volume; 0.4 when either is missing.
func RatingFit(rating *float64, count *int) float64 {
	if rating == nil || count == nil || *rating <= 0 || *count <= 0 {
		return neutralRating
	}
	return clamp01(*rating / 5 * math.Log10(float64(*count)+1))
}

// OpenFit is 1 for places known to be open and 0.3 otherwise.
func OpenFit(open *bool) float64 {
	if open != nil && *open {
		return openKnown
	}
	return openOther
}

func weatherFor(indoor bool, w model.WeatherContext) float64 {
	switch {
	case w.Live != nil:
		return WeatherFit(indoor, w.Live)
	case w.Label != "":
		return CategoricalWeatherFit(indoor, w.Label)
	default:
		return WeatherFit(indoor, nil)
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > maxScoreValue {
		return maxScoreValue
	}
	return v
}
