package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/vibefeed/internal/adapters/cities"
)

// CitiesHandler serves GET /api/cities.
type CitiesHandler struct {
	deps Dependencies
}

// NewCitiesHandler creates a new cities handler.
func NewCitiesHandler(deps Dependencies) *CitiesHandler {
	return &CitiesHandler{deps: deps}
}

type citiesResponse struct {
	OK          bool          `json:"ok"`
	DefaultCity string        `json:"defaultCity"`
	Cities      []cities.City `json:"cities"`
}

// HandleCities lists the city table, or one city when ?slug is given.
func (h *CitiesHandler) HandleCities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	table := h.deps.Cities()
	if table == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("city table not loaded"))
		return
	}

	resp := citiesResponse{OK: true, DefaultCity: table.Default().Slug}
	if slug := strings.TrimSpace(r.URL.Query().Get("slug")); slug != "" {
		c, ok := table.Lookup(slug)
		if !ok {
			writeError(w, http.StatusNotFound, errors.New("unknown city "+slug))
			return
		}
		resp.Cities = []cities.City{c}
	} else {
		resp.Cities = table.All()
	}
	writeJSON(w, http.StatusOK, resp)
}
