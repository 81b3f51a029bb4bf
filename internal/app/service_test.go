package service_test

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/vibefeed/internal/adapters/cities"
	"github.com/okian/vibefeed/internal/adapters/directory"
	service "github.com/okian/vibefeed/internal/app"
	"github.com/okian/vibefeed/internal/domain/geo"
	"github.com/okian/vibefeed/internal/domain/model"
	"github.com/okian/vibefeed/pkg/logger"
)

var athens = geo.Point{Lat: 37.9838, Lng: 23.7275}

// fakeDirectory answers per category and records every query.
type fakeDirectory struct {
	mu       sync.Mutex
	byCat    map[string][]model.Candidate
	failing  map[string]bool
	queries  []model.NearbyQuery
	notReady error
}

func (f *fakeDirectory) Nearby(_ context.Context, q model.NearbyQuery) ([]model.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.failing[q.Category] {
		return nil, directory.ErrUpstream
	}
	return f.byCat[q.Category], nil
}

func (f *fakeDirectory) Ready() error { return f.notReady }

func (f *fakeDirectory) categories() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.queries))
	for _, q := range f.queries {
		out = append(out, q.Category)
	}
	sort.Strings(out)
	return out
}

func (f *fakeDirectory) lastQuery() model.NearbyQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

type fakeWeather struct {
	mu    sync.Mutex
	calls int
	obs   *model.LiveWeather
	err   error
}

func (f *fakeWeather) Current(_ context.Context, _ geo.Point) (*model.LiveWeather, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.obs, f.err
}

// barrierDirectory holds every call until all expected categories have
// arrived, so only concurrent fetches complete before the timeout.
type barrierDirectory struct {
	arrived sync.WaitGroup
	timeout time.Duration
}

func newBarrierDirectory(categories int, timeout time.Duration) *barrierDirectory {
	b := &barrierDirectory{timeout: timeout}
	b.arrived.Add(categories)
	return b
}

func (b *barrierDirectory) Nearby(_ context.Context, q model.NearbyQuery) ([]model.Candidate, error) {
	b.arrived.Done()
	released := make(chan struct{})
	go func() {
		b.arrived.Wait()
		close(released)
	}()
	select {
	case <-released:
		return []model.Candidate{place(q.Category, 37.98, 23.72, q.Category)}, nil
	case <-time.After(b.timeout):
		return nil, errors.New("waited alone for sibling categories")
	}
}

func place(id string, lat, lng float64, tags ...string) model.Candidate {
	return model.Candidate{ID: id, Name: id, Location: geo.Point{Lat: lat, Lng: lng}, Tags: tags}
}

func newService(dir *fakeDirectory, opts ...service.Option) *service.Service {
	table, err := cities.Embedded(cities.WithFeaturedIDs(map[string][]string{"athens": {"featured-1"}}))
	So(err, ShouldBeNil)

	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC))
	base := []service.Option{
		service.WithLogger(logger.Nop()),
		service.WithDirectory(dir),
		service.WithCities(table),
		service.WithClock(clock),
		service.WithCategories([]string{"museum", "cafe", "bar"}),
	}
	svc := service.New(append(base, opts...)...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service without a directory", t, func() {
		svc := service.New(service.WithLogger(logger.Nop()))

		Convey("Then start fails", func() {
			So(svc.Start(context.Background()), ShouldNotBeNil)
			So(svc.Started(), ShouldBeFalse)
		})

		Convey("And feed reports not started", func() {
			_, err := svc.Feed(context.Background(), service.FeedRequest{})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})

	Convey("Given a started service without a city table", t, func() {
		svc := service.New(service.WithLogger(logger.Nop()), service.WithDirectory(&fakeDirectory{}))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("Then the embedded table is used", func() {
			So(svc.Cities(), ShouldNotBeNil)
			So(svc.Cities().Default().Slug, ShouldEqual, "athens")
			So(svc.GetStats()["started"], ShouldEqual, true)
		})

		Convey("When stopped", func() {
			svc.Stop()
			So(svc.Started(), ShouldBeFalse)
		})
	})
}

func TestService_Aggregate(t *testing.T) {
	Convey("Given categories reporting overlapping places", t, func() {
		dir := &fakeDirectory{
			byCat: map[string][]model.Candidate{
				"museum": {place("a", 37.98, 23.72, "museum"), place("b", 37.99, 23.73, "museum")},
				"cafe":   {place("c", 37.97, 23.71, "cafe"), place("a", 37.98, 23.72, "cafe")},
				"bar":    {place("nan", math.NaN(), 23.7, "bar"), {Name: "no id"}},
			},
		}
		svc := newService(dir)

		Convey("When aggregating", func() {
			got := svc.Aggregate(context.Background(), athens, 3000, []string{"museum", "cafe", "bar"})

			Convey("Then identities merge in category order", func() {
				So(len(got), ShouldEqual, 3)
				So(got[0].ID, ShouldEqual, "a")
				So(got[0].Tags, ShouldResemble, []string{"cafe", "museum"})
				So(got[1].ID, ShouldEqual, "b")
				So(got[2].ID, ShouldEqual, "c")
			})
		})

		Convey("When one category fails", func() {
			dir.failing = map[string]bool{"museum": true}
			got := svc.Aggregate(context.Background(), athens, 3000, []string{"museum", "cafe"})

			Convey("Then the rest still contribute", func() {
				So(len(got), ShouldEqual, 2)
				So(got[0].ID, ShouldEqual, "c")
			})
		})
	})

	Convey("Given a directory that only answers once every category is in flight", t, func() {
		categories := []string{"museum", "cafe", "bar"}
		dir := newBarrierDirectory(len(categories), 2*time.Second)
		svc := service.New(
			service.WithLogger(logger.Nop()),
			service.WithDirectory(dir),
		)
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("Then every category contributes", func() {
			got := svc.Aggregate(context.Background(), athens, 3000, categories)
			So(len(got), ShouldEqual, len(categories))
			So(got[0].ID, ShouldEqual, "museum")
			So(got[2].ID, ShouldEqual, "bar")
		})
	})

	Convey("Given more candidates than the cap", t, func() {
		var many []model.Candidate
		for i := 0; i < 10; i++ {
			many = append(many, place(string(rune('a'+i)), 37.98, 23.72, "cafe"))
		}
		dir := &fakeDirectory{byCat: map[string][]model.Candidate{"cafe": many}}
		svc := newService(dir, service.WithMaxCandidates(4))

		Convey("Then the list is truncated in insertion order", func() {
			got := svc.Aggregate(context.Background(), athens, 3000, []string{"cafe"})
			So(len(got), ShouldEqual, 4)
			So(got[3].ID, ShouldEqual, "d")
		})
	})
}

func TestService_Feed(t *testing.T) {
	ctx := context.Background()

	Convey("Given a directory with places around Athens", t, func() {
		dir := &fakeDirectory{
			byCat: map[string][]model.Candidate{
				"museum": {place("museum-1", 37.9860, 23.7280, "museum"), place("featured-1", 37.9840, 23.7276, "museum")},
				"cafe":   {place("cafe-1", 37.9900, 23.7300, "cafe")},
				"bar":    {place("bar-1", 37.9700, 23.7200, "bar")},
			},
		}
		wx := &fakeWeather{obs: &model.LiveWeather{TemperatureC: 24, CloudCover: 20}}
		svc := newService(dir, service.WithWeather(wx), service.WithSectionLimit(3))

		Convey("When requesting the default city", func() {
			feed, err := svc.Feed(ctx, service.FeedRequest{Prefs: model.DefaultPreferences(), RequestID: "req-1"})
			So(err, ShouldBeNil)

			Convey("Then the context describes the request", func() {
				So(feed.OK, ShouldBeTrue)
				So(feed.Context.City.Slug, ShouldEqual, "athens")
				So(feed.Context.Location.Source, ShouldEqual, service.SourceCity)
				So(feed.Context.Location.Lat, ShouldEqual, athens.Lat)
				So(feed.Context.Radius, ShouldEqual, 3000)
				So(feed.Context.Time, ShouldEqual, "2025-06-14T12:00:00+03:00")
				So(feed.Context.DayPart, ShouldEqual, "lunch")
				So(feed.Context.Weather.Label, ShouldEqual, model.WeatherSunny)
				So(feed.Context.Weather.Live, ShouldNotBeNil)
				So(feed.Context.RequestID, ShouldEqual, "req-1")
				So(feed.Context.Prefs, ShouldResemble, model.DefaultPreferences())
			})

			Convey("Then every configured category was fetched", func() {
				So(dir.categories(), ShouldResemble, []string{"bar", "cafe", "museum"})
				So(wx.calls, ShouldEqual, 1)
			})

			Convey("Then sections are bounded and sorted", func() {
				for _, sec := range [][]model.ScoredPlace{feed.Sections.HotNow, feed.Sections.LaterToday, feed.Sections.Evening, feed.Sections.Rainy} {
					So(len(sec), ShouldEqual, 3)
					for i := 1; i < len(sec); i++ {
						So(sec[i-1].Score, ShouldBeGreaterThanOrEqualTo, sec[i].Score)
					}
					for _, p := range sec {
						So(p.Score, ShouldBeBetweenOrEqual, 0, 100)
					}
				}
			})

			Convey("Then the featured place leads the featured section", func() {
				So(len(feed.Sections.Featured), ShouldEqual, 1)
				So(feed.Sections.Featured[0].PlaceID, ShouldEqual, "featured-1")
				So(feed.Sections.Featured[0].IsFeatured, ShouldBeTrue)
				So(feed.Sections.Featured[0].ReasonTokens[0], ShouldEqual, model.ReasonFeatured)
			})

			Convey("Then stats count the request", func() {
				stats := svc.GetStats()
				So(stats["feedRequests"], ShouldEqual, int64(1))
				So(stats["lastCandidates"], ShouldEqual, int64(4))
			})
		})

		Convey("When device coordinates are supplied", func() {
			device := geo.Point{Lat: 37.99, Lng: 23.74}
			feed, err := svc.Feed(ctx, service.FeedRequest{Device: &device, Prefs: model.DefaultPreferences()})
			So(err, ShouldBeNil)

			Convey("Then the device position is the origin", func() {
				So(feed.Context.Location.Source, ShouldEqual, service.SourceDevice)
				So(dir.lastQuery().Origin, ShouldResemble, device)
			})
		})

		Convey("When device coordinates are out of range", func() {
			device := geo.Point{Lat: 123, Lng: 23.74}
			feed, err := svc.Feed(ctx, service.FeedRequest{Device: &device, Prefs: model.DefaultPreferences()})
			So(err, ShouldBeNil)

			Convey("Then the city center is used", func() {
				So(feed.Context.Location.Source, ShouldEqual, service.SourceCity)
			})
		})

		Convey("When a radius beyond the maximum is requested", func() {
			feed, err := svc.Feed(ctx, service.FeedRequest{RadiusMeters: 999999, Prefs: model.DefaultPreferences()})
			So(err, ShouldBeNil)

			Convey("Then it is clamped", func() {
				So(feed.Context.Radius, ShouldEqual, 50000)
				So(dir.lastQuery().RadiusMeters, ShouldEqual, 50000)
			})
		})

		Convey("When a weather label is supplied", func() {
			feed, err := svc.Feed(ctx, service.FeedRequest{WeatherLabel: "RAIN", Prefs: model.DefaultPreferences()})
			So(err, ShouldBeNil)

			Convey("Then no live fetch happens", func() {
				So(wx.calls, ShouldEqual, 0)
				So(feed.Context.Weather.Label, ShouldEqual, model.WeatherRain)
				So(feed.Context.Weather.Live, ShouldBeNil)
			})

			Convey("Then indoor places lead the rain-friendly section", func() {
				So(feed.Sections.Rainy[0].PlaceID, ShouldBeIn, "featured-1", "museum-1")
				So(feed.Sections.Rainy[1].PlaceID, ShouldBeIn, "featured-1", "museum-1")
			})
		})

		Convey("When a rainy synonym or unknown label is supplied", func() {
			showers, err := svc.Feed(ctx, service.FeedRequest{WeatherLabel: "showers", Prefs: model.DefaultPreferences()})
			So(err, ShouldBeNil)
			foggy, err := svc.Feed(ctx, service.FeedRequest{WeatherLabel: "foggy", Prefs: model.DefaultPreferences()})
			So(err, ShouldBeNil)

			Convey("Then they coerce to rain and sunny", func() {
				So(showers.Context.Weather.Label, ShouldEqual, model.WeatherRain)
				So(foggy.Context.Weather.Label, ShouldEqual, model.WeatherSunny)
			})
		})

		Convey("When live weather fails", func() {
			wx.err = errors.New("timeout")
			feed, err := svc.Feed(ctx, service.FeedRequest{Prefs: model.DefaultPreferences()})

			Convey("Then the feed still succeeds with neutral weather", func() {
				So(err, ShouldBeNil)
				So(feed.Context.Weather.Label, ShouldEqual, "")
				So(feed.Context.Weather.Live, ShouldBeNil)
			})
		})

		Convey("When a city with preferred types is requested", func() {
			_, err := svc.Feed(ctx, service.FeedRequest{CitySlug: "santorini", Prefs: model.DefaultPreferences()})
			So(err, ShouldBeNil)

			Convey("Then its categories replace the configured ones", func() {
				santorini, _ := svc.Cities().Lookup("santorini")
				want := append([]string(nil), santorini.PreferredTypes...)
				sort.Strings(want)
				So(dir.categories(), ShouldResemble, want)
				So(dir.lastQuery().RadiusMeters, ShouldEqual, 6000)
			})
		})

		Convey("When the city has no featured identities", func() {
			feed, err := svc.Feed(ctx, service.FeedRequest{CitySlug: "corfu", Prefs: model.DefaultPreferences()})
			So(err, ShouldBeNil)

			Convey("Then the featured section is empty", func() {
				So(feed.Sections.Featured, ShouldNotBeNil)
				So(len(feed.Sections.Featured), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a directory missing its credential", t, func() {
		dir := &fakeDirectory{notReady: directory.ErrMissingCredential}
		svc := newService(dir)

		Convey("When requesting a feed", func() {
			_, err := svc.Feed(ctx, service.FeedRequest{})

			Convey("Then a configuration error is returned and nothing is fetched", func() {
				So(errors.Is(err, service.ErrMissingCredential), ShouldBeTrue)
				So(errors.Is(err, directory.ErrMissingCredential), ShouldBeTrue)
				So(dir.categories(), ShouldBeEmpty)
				So(svc.GetStats()["feedFailures"], ShouldEqual, int64(1))
			})
		})
	})
}
