package model

import (
	"context"

	"github.com/okian/vibefeed/internal/domain/geo"
)

// NearbyQuery asks a directory for places of one category around a point.
type NearbyQuery struct {
	Origin       geo.Point
	RadiusMeters int
	Category     string
}

// Directory is a places directory that answers one category per call.
type Directory interface {
	Nearby(ctx context.Context, q NearbyQuery) ([]Candidate, error)
}

// WeatherProvider returns the current observation at a point.
type WeatherProvider interface {
	Current(ctx context.Context, at geo.Point) (*LiveWeather, error)
}
