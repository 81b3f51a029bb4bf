package scoring_test

import (
	"math"
	"testing"
	"time"

	"github.com/okian/vibefeed/internal/domain/geo"
	"github.com/okian/vibefeed/internal/domain/model"
	"github.com/okian/vibefeed/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var athens = geo.Point{Lat: 37.9838, Lng: 23.7275}

// kmNorth returns a point km kilometers north of p.
func kmNorth(p geo.Point, km float64) geo.Point {
	return geo.Point{Lat: p.Lat + km/(geo.EarthRadiusKm*math.Pi/180), Lng: p.Lng}
}

func pleasantWeather() *model.LiveWeather {
	return &model.LiveWeather{TemperatureC: 24, PrecipitationChance: 10, WindKmh: 10, CloudCover: 20}
}

func tavern(km float64, open bool) model.Candidate {
	return model.Candidate{
		ID:          "tavern-1",
		Name:        "Taverna",
		Location:    kmNorth(athens, km),
		Tags:        []string{"restaurant"},
		Rating:      model.Float64Ptr(4.6),
		RatingCount: model.IntPtr(1200),
		OpenNow:     model.BoolPtr(open),
		PriceLevel:  model.IntPtr(2),
	}
}

func lunchInput(c model.Candidate) scoring.Input {
	prefs := model.DefaultPreferences()
	prefs.Vibe = model.VibeFood
	return scoring.Input{
		Origin:    athens,
		Now:       time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC),
		Weather:   model.WeatherContext{Live: pleasantWeather()},
		Candidate: c,
		Section:   model.SectionHappeningNow,
		Prefs:     prefs,
	}
}

func TestScorer_NearbyOpenRestaurant(t *testing.T) {
	Convey("Given an open, highly rated restaurant 0.5 km from the center at lunch", t, func() {
		scorer := scoring.New()
		res := scorer.Score(lunchInput(tavern(0.5, true)))

		Convey("Then the fits match the documented formulas", func() {
			So(res.Fits.Distance, ShouldEqual, 1)
			So(res.Fits.Rating, ShouldEqual, 1)
			So(res.Fits.Open, ShouldEqual, 1)
			So(res.Fits.Weather, ShouldEqual, 1)
			So(res.Fits.Preference, ShouldAlmostEqual, 0.18, 1e-9)
			So(res.Fits.Budget, ShouldEqual, 1)
			So(res.Fits.Time, ShouldAlmostEqual, 0.95, 1e-9)
		})

		Convey("Then the score lands in the high 80s", func() {
			So(res.Score, ShouldEqual, 88)
			So(res.DistanceKm, ShouldAlmostEqual, 0.5, 0.01)
		})

		Convey("Then the reasons explain it", func() {
			So(res.ReasonTokens, ShouldResemble, []string{
				model.ReasonOpenNow, model.ReasonPerfectWeather, model.ReasonNearby, model.ReasonHighRated, "vibe:food",
			})
		})

		Convey("Then the live vibe is electric", func() {
			So(res.LiveVibeIndex, ShouldEqual, 99)
			So(res.LiveVibeState, ShouldEqual, model.VibeStateElectric)
		})
	})
}

func TestScorer_ClosedPlace(t *testing.T) {
	Convey("Given the same restaurant known to be closed", t, func() {
		res := scoring.New().Score(lunchInput(tavern(0.5, false)))

		Convey("Then the live vibe is forced to closed", func() {
			So(res.LiveVibeIndex, ShouldEqual, 0)
			So(res.LiveVibeState, ShouldEqual, model.VibeStateClosed)
		})

		Convey("Then the base score only loses the openness term", func() {
			So(res.Fits.Open, ShouldEqual, 0.3)
			So(res.Score, ShouldEqual, 71)
			So(res.ReasonTokens, ShouldNotContain, model.ReasonOpenNow)
		})
	})

	Convey("Given unknown opening hours", t, func() {
		c := tavern(0.5, true)
		c.OpenNow = nil
		res := scoring.New().Score(lunchInput(c))

		Convey("Then openness is penalized but the vibe is computed", func() {
			So(res.Fits.Open, ShouldEqual, 0.3)
			So(res.LiveVibeState, ShouldNotEqual, model.VibeStateClosed)
			So(res.LiveVibeIndex, ShouldBeGreaterThan, 0)
		})
	})
}

func TestScorer_MobilityCap(t *testing.T) {
	Convey("Given walking mobility", t, func() {
		scorer := scoring.New()
		far := scorer.Score(lunchInput(tavern(10, true)))
		mid := scorer.Score(lunchInput(tavern(5, true)))

		Convey("Then a place beyond 7.5 km loses its distance term", func() {
			So(far.Fits.Distance, ShouldEqual, 0)
			So(mid.Fits.Distance, ShouldAlmostEqual, 0.55, 0.01)
			So(far.Score, ShouldBeLessThan, mid.Score)
		})
	})

	Convey("Given car mobility", t, func() {
		in := lunchInput(tavern(10, true))
		in.Prefs.Mobility = model.MobilityCar
		res := scoring.New().Score(in)

		Convey("Then 10 km is within range but worth nothing beyond the linear falloff", func() {
			So(res.Fits.Distance, ShouldAlmostEqual, 0, 0.001)
		})
	})

	Convey("Given the distance fit directly", t, func() {
		So(scoring.DistanceFit(0, model.MobilityWalk), ShouldEqual, 1)
		So(scoring.DistanceFit(2, model.MobilityCar), ShouldAlmostEqual, 0.68, 1e-9)
		So(scoring.DistanceFit(2, model.MobilityBoat), ShouldAlmostEqual, 0.76, 1e-9)
		So(scoring.DistanceFit(8, model.MobilityWalk), ShouldEqual, 0)
		So(scoring.DistanceFit(30, model.MobilityBoat), ShouldEqual, 0)
		So(scoring.DistanceFit(math.Inf(1), model.MobilityCar), ShouldEqual, 0)
	})
}

func TestScorer_Featured(t *testing.T) {
	Convey("Given a featured set containing the place", t, func() {
		scorer := scoring.New()
		plain := lunchInput(tavern(3, false))
		featured := plain
		featured.Featured = scoring.NewFeaturedSet("tavern-1", "")

		a := scorer.Score(plain)
		b := scorer.Score(featured)

		Convey("Then the score gets the flat boost", func() {
			So(b.IsFeatured, ShouldBeTrue)
			So(a.IsFeatured, ShouldBeFalse)
			So(b.Score, ShouldEqual, a.Score+20)
			So(b.ReasonTokens[0], ShouldEqual, model.ReasonFeatured)
		})

		Convey("Then a high score is capped at 100", func() {
			top := lunchInput(tavern(0.5, true))
			top.Featured = scoring.NewFeaturedSet("tavern-1")
			So(scorer.Score(top).Score, ShouldEqual, 100)
		})
	})

	Convey("Given a custom boost", t, func() {
		in := lunchInput(tavern(3, false))
		base := scoring.New().Score(in).Score
		in.Featured = scoring.NewFeaturedSet("tavern-1")

		So(scoring.New(scoring.WithFeaturedBoost(5)).Score(in).Score, ShouldEqual, base+5)
		So(scoring.New(scoring.WithFeaturedBoost(-1)).Score(in).Score, ShouldEqual, base+20)
	})

	Convey("Given a nil featured set", t, func() {
		var s scoring.FeaturedSet
		So(s.Contains("tavern-1"), ShouldBeFalse)
	})
}

func TestScorer_SectionWeights(t *testing.T) {
	Convey("Given an outdoor park in the rain", t, func() {
		park := model.Candidate{ID: "park", Location: kmNorth(athens, 1), Tags: []string{"park"}}
		museum := model.Candidate{ID: "museum", Location: kmNorth(athens, 1), Tags: []string{"museum"}}
		in := scoring.Input{
			Origin:  athens,
			Now:     time.Date(2025, 11, 2, 16, 0, 0, 0, time.UTC),
			Weather: model.WeatherContext{Label: model.WeatherRain},
			Section: model.SectionRainFriendly,
			Prefs:   model.DefaultPreferences(),
		}

		in.Candidate = park
		p := scoring.New().Score(in)
		in.Candidate = museum
		m := scoring.New().Score(in)

		Convey("Then the indoor museum wins the rain-friendly section", func() {
			So(m.Indoor, ShouldBeTrue)
			So(p.Indoor, ShouldBeFalse)
			So(m.Fits.Weather, ShouldEqual, 1.0)
			So(p.Fits.Weather, ShouldEqual, 0.25)
			So(m.Score, ShouldBeGreaterThan, p.Score)
			So(m.ReasonTokens, ShouldContain, model.ReasonGoodWeather)
		})
	})

	Convey("Given the weight tables", t, func() {
		s := scoring.New()
		So(s.Weights(model.SectionRainFriendly).Weather, ShouldEqual, 4.0)
		So(s.Weights(model.SectionThisEvening).Time, ShouldEqual, 2.0)
		So(s.Weights(model.SectionLaterToday), ShouldResemble, s.Weights(model.SectionHappeningNow))
		So(s.Weights("unknown"), ShouldResemble, s.Weights(model.SectionHappeningNow))
		So(s.Weights(model.SectionHappeningNow).Sum(), ShouldAlmostEqual, 12.8, 1e-9)
	})
}

func TestScorer_Boundedness(t *testing.T) {
	Convey("Given sparse and extreme candidates", t, func() {
		scorer := scoring.New(scoring.WithFeaturedBoost(100))
		candidates := []model.Candidate{
			{ID: "bare"},
			{ID: "nan", Location: geo.Point{Lat: math.NaN(), Lng: 1}},
			{ID: "negative", Location: athens, Rating: model.Float64Ptr(-3), RatingCount: model.IntPtr(-10), PriceLevel: model.IntPtr(-1)},
			{ID: "huge", Location: athens, Rating: model.Float64Ptr(50), RatingCount: model.IntPtr(math.MaxInt32), PriceLevel: model.IntPtr(9), Tags: []string{"bar", "park", "museum", "restaurant"}},
		}
		weathers := []model.WeatherContext{{}, {Label: "storm"}, {Live: &model.LiveWeather{PrecipitationMM: 90, WindKmh: 200, TemperatureC: 60, CloudCover: 100}}}

		Convey("Then every score is an integer in [0,100]", func() {
			for _, c := range candidates {
				for _, w := range weathers {
					for _, section := range model.Sections {
						for h := 0; h < 24; h++ {
							res := scorer.Score(scoring.Input{
								Origin:    athens,
								Now:       time.Date(2025, 1, 1, h, 0, 0, 0, time.UTC),
								Weather:   w,
								Candidate: c,
								Section:   section,
								Prefs:     model.DefaultPreferences(),
								Featured:  scoring.NewFeaturedSet("huge"),
							})
							So(res.Score, ShouldBeBetweenOrEqual, 0, 100)
							So(res.LiveVibeIndex, ShouldBeBetweenOrEqual, 0, 100)
						}
					}
				}
			}
		})
	})
}

func TestRatingAndOpenFits(t *testing.T) {
	Convey("Given rating inputs", t, func() {
		So(scoring.RatingFit(nil, nil), ShouldEqual, 0.4)
		So(scoring.RatingFit(model.Float64Ptr(4.8), nil), ShouldEqual, 0.4)
		So(scoring.RatingFit(model.Float64Ptr(4.8), model.IntPtr(0)), ShouldEqual, 0.4)
		So(scoring.RatingFit(model.Float64Ptr(5), model.IntPtr(9)), ShouldAlmostEqual, 1.0, 1e-9)
		So(scoring.RatingFit(model.Float64Ptr(2.5), model.IntPtr(3)), ShouldAlmostEqual, 0.5*math.Log10(4), 1e-9)
	})

	Convey("Given openness inputs", t, func() {
		So(scoring.OpenFit(model.BoolPtr(true)), ShouldEqual, 1.0)
		So(scoring.OpenFit(model.BoolPtr(false)), ShouldEqual, 0.3)
		So(scoring.OpenFit(nil), ShouldEqual, 0.3)
	})
}
