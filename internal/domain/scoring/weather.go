package scoring

import "github.com/okian/vibefeed/internal/domain/model"

const neutralWeather = 0.7

var indoorTags = map[string]struct{}{
	"museum":           {},
	"art_gallery":      {},
	"church":           {},
	"synagogue":        {},
	"mosque":           {},
	"hindu_temple":     {},
	"place_of_worship": {},
	"shopping_mall":    {},
	"aquarium":         {},
	"library":          {},
	"movie_theater":    {},
}

// IsIndoor reports whether any tag names an indoor venue type.
func IsIndoor(tags []string) bool {
	for _, t := range tags {
		if _, ok := indoorTags[t]; ok {
			return true
		}
	}
	return false
}

// WeatherFit subtracts additive penalties for the observation from 1.0.
// Without an observation it returns the neutral 0.7.
func WeatherFit(indoor bool, w *model.LiveWeather) float64 {
	if w == nil {
		return neutralWeather
	}

	score := 1.0
	if (w.PrecipitationMM > 2 || w.PrecipitationChance > 70) && !indoor {
		score -= 0.5
	}
	if w.WindKmh > 40 {
		if indoor {
			score -= 0.05
		} else {
			score -= 0.3
		}
	}
	if !indoor {
		if w.TemperatureC > 34 {
			score -= 0.25
		}
		if w.TemperatureC < 8 {
			score -= 0.2
		}
		if w.CloudCover > 85 {
			score -= 0.15
		}
	}
	return clamp01(score)
}

// CategoricalWeatherFit scores a coarse label when no observation exists.
func CategoricalWeatherFit(indoor bool, label string) float64 {
	rainy := model.IsRainyLabel(label)
	switch {
	case indoor && rainy:
		return 1.0
	case indoor:
		return 0.7
	case rainy:
		return 0.25
	default:
		return 1.0
	}
}
