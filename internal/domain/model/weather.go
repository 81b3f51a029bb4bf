package model

import "strings"

// LiveWeather is a current observation at a coordinate.
type LiveWeather struct {
	TemperatureC        float64 `json:"temperatureC"`
	PrecipitationMM     float64 `json:"precipitationMm"`
	PrecipitationChance float64 `json:"precipitationProbability"`
	WindKmh             float64 `json:"windKmh"`
	CloudCover          float64 `json:"cloudCover"`
}

// Weather labels used for categorical fits and response context.
const (
	WeatherSunny  = "sunny"
	WeatherCloudy = "cloudy"
	WeatherRain   = "rain"
	WeatherStorm  = "storm"
)

// WeatherContext is the weather input to scoring. Live wins over Label;
// when both are empty scoring falls back to a neutral fit.
type WeatherContext struct {
	Live  *LiveWeather
	Label string
}

// IsRainyLabel reports whether a categorical label means wet weather.
func IsRainyLabel(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case WeatherRain, "rainy", WeatherStorm, "showers", "drizzle":
		return true
	default:
		return false
	}
}

// DeriveLabel summarizes an observation as a coarse label.
func DeriveLabel(w *LiveWeather) string {
	if w == nil {
		return ""
	}
	switch {
	case w.PrecipitationMM > 2 && w.WindKmh > 40:
		return WeatherStorm
	case w.PrecipitationMM > 0.2 || w.PrecipitationChance > 70:
		return WeatherRain
	case w.CloudCover > 60:
		return WeatherCloudy
	default:
		return WeatherSunny
	}
}
