package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	service "github.com/okian/vibefeed/internal/app"
	"github.com/okian/vibefeed/internal/domain/geo"
	"github.com/okian/vibefeed/internal/domain/model"
	"github.com/okian/vibefeed/pkg/logger"
)

// FeedHandler serves GET /api/feed.
type FeedHandler struct {
	deps Dependencies
}

// NewFeedHandler creates a new feed handler.
func NewFeedHandler(deps Dependencies) *FeedHandler {
	return &FeedHandler{deps: deps}
}

// HandleFeed parses the query, builds the feed and writes it as JSON.
// Unknown preference values fall back to defaults; malformed numbers are
// ignored.
func (h *FeedHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	q, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	req := parseFeedRequest(q)
	req.RequestID = logger.RequestID(r.Context())

	feed, err := h.deps.Feed(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, feed)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func parseFeedRequest(q url.Values) service.FeedRequest {
	req := service.FeedRequest{
		CitySlug: strings.TrimSpace(q.Get("city")),
		Prefs: model.ParsePreferences(
			q.Get("audience"), q.Get("vibe"), q.Get("mobility"), q.Get("budget"),
		),
		WeatherLabel: strings.TrimSpace(q.Get("weather")),
	}

	lat, latOK := parseFloat(firstOf(q, "lat", "userLat"))
	lng, lngOK := parseFloat(firstOf(q, "lng", "userLng"))
	if latOK && lngOK {
		req.Device = &geo.Point{Lat: lat, Lng: lng}
	}

	if radius, ok := parseFloat(q.Get("radius")); ok && radius > 0 {
		req.RadiusMeters = int(math.Round(math.Min(radius, math.MaxInt32)))
	}
	return req
}

func firstOf(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

func parseFloat(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
