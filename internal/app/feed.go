package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/vibefeed/internal/adapters/cities"
	"github.com/okian/vibefeed/internal/adapters/directory"
	"github.com/okian/vibefeed/internal/domain/geo"
	"github.com/okian/vibefeed/internal/domain/model"
	"github.com/okian/vibefeed/internal/domain/ranking"
	"github.com/okian/vibefeed/internal/domain/scoring"
	"github.com/okian/vibefeed/pkg/logger"
	"github.com/okian/vibefeed/pkg/metrics"
)

// Location sources reported in the feed context.
const (
	SourceCity   = "city"
	SourceDevice = "device"
)

var weatherLabels = []string{model.WeatherSunny, model.WeatherCloudy, model.WeatherRain, model.WeatherStorm}

// FeedRequest is a parsed feed query.
type FeedRequest struct {
	CitySlug string
	// Device is the user's position; used when finite and in range.
	Device       *geo.Point
	RadiusMeters int
	Prefs        model.Preferences
	// WeatherLabel overrides live weather when set.
	WeatherLabel string
	RequestID    string
}

// Feed is the response payload.
type Feed struct {
	OK       bool         `json:"ok"`
	Context  FeedContext  `json:"context"`
	Sections FeedSections `json:"sections"`
}

// FeedContext echoes what the ranking was computed against.
type FeedContext struct {
	Location  FeedLocation      `json:"location"`
	City      FeedCity          `json:"city"`
	Time      string            `json:"time"`
	DayPart   string            `json:"dayPart"`
	Weather   FeedWeather       `json:"weather"`
	Radius    int               `json:"radius"`
	Prefs     model.Preferences `json:"prefs"`
	RequestID string            `json:"requestId,omitempty"`
}

// FeedLocation is the reference coordinate.
type FeedLocation struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Source string  `json:"source"`
}

// FeedCity identifies the resolved city.
type FeedCity struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

// FeedWeather is the weather used for scoring.
type FeedWeather struct {
	Label string             `json:"label,omitempty"`
	Live  *model.LiveWeather `json:"live,omitempty"`
}

// FeedSections holds the ranked lists.
type FeedSections struct {
	Featured   []model.ScoredPlace `json:"featured"`
	HotNow     []model.ScoredPlace `json:"hotNow"`
	LaterToday []model.ScoredPlace `json:"laterToday"`
	Evening    []model.ScoredPlace `json:"evening"`
	Rainy      []model.ScoredPlace `json:"rainy"`
}

// Feed builds the ranked feed for req. The only failure besides a stopped
// service is an unusable directory; upstream trouble degrades to fewer
// candidates or neutral weather.
func (s *Service) Feed(ctx context.Context, req FeedRequest) (*Feed, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	begin := time.Now()
	start := s.clock.Now()
	log := s.logger
	if req.RequestID != "" {
		ctx = logger.WithRequestID(ctx, req.RequestID)
	}

	if err := directory.Ready(s.directory); err != nil {
		s.recordOutcome(start, 0, true)
		metrics.RecordFeedRequest("config_error")
		log.Error(ctx, "places directory not usable", logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrMissingCredential, err)
	}

	city := s.cities.Resolve(req.CitySlug)
	origin, source := city.Location(), SourceCity
	if req.Device != nil && req.Device.IsFinite() && req.Device.IsValid() {
		origin, source = *req.Device, SourceDevice
	}

	override := req.RadiusMeters
	if override > s.maxRadiusMeters {
		override = s.maxRadiusMeters
	}
	radius := s.cities.RadiusMeters(city, override)

	categories := s.categories
	if len(city.PreferredTypes) > 0 {
		categories = city.PreferredTypes
	}

	var (
		wg         sync.WaitGroup
		weather    model.WeatherContext
		candidates []model.Candidate
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		weather = s.resolveWeather(ctx, origin, req.WeatherLabel)
	}()
	go func() {
		defer wg.Done()
		candidates = s.Aggregate(ctx, origin, radius, categories)
	}()
	wg.Wait()

	now := s.clock.Now().In(city.TimeLocation())
	dayPart := scoring.DayPart(now)
	rc := ranking.Context{
		Origin:   origin,
		Now:      now,
		Weather:  weather,
		Prefs:    req.Prefs,
		Featured: scoring.NewFeaturedSet(city.FeaturedIDs...),
	}

	sections := FeedSections{
		Featured:   s.builder.BuildFeatured(candidates, rc, s.featuredLimit),
		HotNow:     s.builder.BuildSection(model.SectionHappeningNow, candidates, rc, s.sectionLimit),
		LaterToday: s.builder.BuildSection(model.SectionLaterToday, candidates, rc, s.sectionLimit),
		Evening:    s.builder.BuildSection(model.SectionThisEvening, candidates, rc, s.sectionLimit),
		Rainy:      s.builder.BuildSection(model.SectionRainFriendly, candidates, rc, s.sectionLimit),
	}

	metrics.RecordFeedRequest("ok")
	metrics.RecordFeedCandidates(len(candidates))
	metrics.RecordFeedDuration(float64(time.Since(begin).Milliseconds()))
	metrics.RecordSectionSize("featured", len(sections.Featured))
	for _, sec := range model.Sections {
		metrics.RecordSectionSize(sec.PayloadKey(), sectionLen(sections, sec))
	}
	s.recordOutcome(start, len(candidates), false)

	log.Info(ctx, "feed built",
		logger.String("city", city.Slug),
		logger.String("source", source),
		logger.String("dayPart", dayPart),
		logger.Int("radius", radius),
		logger.Int("candidates", len(candidates)),
		logger.String("weather", weather.Label),
		logger.Duration("elapsed", time.Since(begin)))

	return &Feed{
		OK: true,
		Context: FeedContext{
			Location:  FeedLocation{Lat: origin.Lat, Lng: origin.Lng, Source: source},
			City:      cityRef(city),
			Time:      now.Format(time.RFC3339),
			DayPart:   dayPart,
			Weather:   FeedWeather{Label: weather.Label, Live: weather.Live},
			Radius:    radius,
			Prefs:     req.Prefs,
			RequestID: req.RequestID,
		},
		Sections: sections,
	}, nil
}

// resolveWeather prefers an explicit label; otherwise it asks the live
// provider and derives a label from the observation.
func (s *Service) resolveWeather(ctx context.Context, origin geo.Point, label string) model.WeatherContext {
	if label = strings.TrimSpace(label); label != "" {
		coerced := model.ParseEnum(label, weatherLabels, "")
		if coerced == "" {
			coerced = model.WeatherSunny
			if model.IsRainyLabel(label) {
				coerced = model.WeatherRain
			}
		}
		return model.WeatherContext{Label: coerced}
	}
	if s.weather == nil {
		return model.WeatherContext{}
	}
	live, err := s.weather.Current(ctx, origin)
	if err != nil || live == nil {
		if err != nil {
			s.logger.Warn(ctx, "live weather unavailable, using neutral fit", logger.Error(err))
		}
		return model.WeatherContext{}
	}
	return model.WeatherContext{Live: live, Label: model.DeriveLabel(live)}
}

func cityRef(c cities.City) FeedCity {
	return FeedCity{ID: c.ID, Slug: c.Slug, Name: c.Name, Region: c.Region}
}

func sectionLen(s FeedSections, sec model.Section) int {
	switch sec {
	case model.SectionHappeningNow:
		return len(s.HotNow)
	case model.SectionLaterToday:
		return len(s.LaterToday)
	case model.SectionThisEvening:
		return len(s.Evening)
	case model.SectionRainFriendly:
		return len(s.Rainy)
	default:
		return 0
	}
}
