package ranking_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/okian/vibefeed/internal/domain/geo"
	"github.com/okian/vibefeed/internal/domain/model"
	"github.com/okian/vibefeed/internal/domain/ranking"
	"github.com/okian/vibefeed/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var origin = geo.Point{Lat: 37.9838, Lng: 23.7275}

func candidate(id string, km float64, open bool, tags ...string) model.Candidate {
	return model.Candidate{
		ID:       id,
		Name:     "name-" + id,
		Location: geo.Point{Lat: origin.Lat + km/111.195, Lng: origin.Lng},
		Tags:     tags,
		OpenNow:  model.BoolPtr(open),
	}
}

func requestContext() ranking.Context {
	return ranking.Context{
		Origin:  origin,
		Now:     time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC),
		Weather: model.WeatherContext{},
		Prefs:   model.DefaultPreferences(),
	}
}

func TestBuildSection(t *testing.T) {
	Convey("Given candidates of varying quality", t, func() {
		b := ranking.NewBuilder(scoring.New())
		cands := []model.Candidate{
			candidate("far-closed", 6, false, "park"),
			candidate("near-open", 0.3, true, "museum"),
			candidate("mid-open", 2, true, "museum"),
		}

		Convey("When building a section", func() {
			out := b.BuildSection(model.SectionHappeningNow, cands, requestContext(), 2)

			Convey("Then results are sorted descending and truncated", func() {
				So(len(out), ShouldEqual, 2)
				So(out[0].PlaceID, ShouldEqual, "near-open")
				So(out[1].PlaceID, ShouldEqual, "mid-open")
				So(out[0].Score, ShouldBeGreaterThanOrEqualTo, out[1].Score)
			})

			Convey("Then presentation fields are filled", func() {
				So(out[0].Name, ShouldEqual, "name-near-open")
				So(out[0].DistanceKm, ShouldEqual, 0.3)
				So(out[0].MapsURL, ShouldEqual, "https://www.google.com/maps/search/?api=1&query=name-near-open&query_place_id=near-open")
				So(out[0].ReasonTokens, ShouldContain, "vibe:culture")
			})
		})

		Convey("When the limit exceeds the candidates", func() {
			So(len(b.BuildSection(model.SectionRainFriendly, cands, requestContext(), 10)), ShouldEqual, 3)
		})

		Convey("When there are no candidates", func() {
			So(b.BuildSection(model.SectionThisEvening, nil, requestContext(), 6), ShouldBeEmpty)
		})
	})

	Convey("Given identical candidates", t, func() {
		var cands []model.Candidate
		for i := 0; i < 8; i++ {
			cands = append(cands, candidate(fmt.Sprintf("twin-%d", i), 1, true, "cafe"))
		}

		Convey("Then ties keep the original order", func() {
			out := ranking.NewBuilder(nil).BuildSection(model.SectionLaterToday, cands, requestContext(), 6)
			So(len(out), ShouldEqual, 6)
			for i, p := range out {
				So(p.PlaceID, ShouldEqual, fmt.Sprintf("twin-%d", i))
			}
		})
	})

	Convey("Given a nameless candidate", t, func() {
		c := candidate("anon", 1, true)
		c.Name = ""
		out := ranking.NewBuilder(nil).BuildSection(model.SectionHappeningNow, []model.Candidate{c}, requestContext(), 1)
		So(out[0].Name, ShouldEqual, model.DefaultPlaceName)
	})
}

func TestBuildFeatured(t *testing.T) {
	Convey("Given a featured set", t, func() {
		b := ranking.NewBuilder(scoring.New())
		cands := []model.Candidate{
			candidate("a", 3, true, "museum"),
			candidate("b", 3, true, "museum"),
			candidate("c", 0.1, true, "museum"),
			candidate("d", 3, true, "museum"),
			candidate("e", 3, true, "museum"),
			candidate("f", 3, true, "museum"),
		}

		Convey("When several candidates are featured", func() {
			rc := requestContext()
			rc.Featured = scoring.NewFeaturedSet("b", "c", "d", "e", "f", "missing")
			out := b.BuildFeatured(cands, rc, 4)

			Convey("Then only featured places are returned, boosted and limited", func() {
				So(len(out), ShouldEqual, 4)
				So(out[0].PlaceID, ShouldEqual, "c")
				for _, p := range out {
					So(p.IsFeatured, ShouldBeTrue)
					So(p.PlaceID, ShouldNotEqual, "a")
					So(p.ReasonTokens[0], ShouldEqual, model.ReasonFeatured)
				}
			})
		})

		Convey("When nothing is configured", func() {
			out := b.BuildFeatured(cands, requestContext(), 4)

			Convey("Then the list is empty, not nil", func() {
				So(out, ShouldNotBeNil)
				So(out, ShouldBeEmpty)
			})
		})

		Convey("When featured ids are present but no candidate matches", func() {
			rc := requestContext()
			rc.Featured = scoring.NewFeaturedSet("nowhere")
			So(b.BuildFeatured(cands, rc, 4), ShouldBeEmpty)
		})
	})

	Convey("Given featured places in regular sections", t, func() {
		b := ranking.NewBuilder(scoring.New())
		rc := requestContext()
		plain := b.BuildSection(model.SectionHappeningNow, []model.Candidate{candidate("x", 4, false, "park")}, rc, 1)
		rc.Featured = scoring.NewFeaturedSet("x")
		boosted := b.BuildSection(model.SectionHappeningNow, []model.Candidate{candidate("x", 4, false, "park")}, rc, 1)

		Convey("Then the featured score is never lower", func() {
			So(boosted[0].Score, ShouldBeGreaterThanOrEqualTo, plain[0].Score)
		})
	})
}

func TestMapsURL(t *testing.T) {
	Convey("MapsURL escapes names", t, func() {
		So(ranking.MapsURL("Café & Bar", "id/1"), ShouldEqual,
			"https://www.google.com/maps/search/?api=1&query=Caf%C3%A9+%26+Bar&query_place_id=id%2F1")
	})
}
