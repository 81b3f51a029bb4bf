package scoring

import "github.com/okian/vibefeed/internal/domain/model"

// Reasons lists machine-readable tokens explaining a score, in a fixed order.
// The vibe token is always last.
func Reasons(f Fits, c model.Candidate, km float64, indoor, featured bool, vibe model.Vibe) []string {
	tokens := make([]string, 0, 6)
	if featured {
		tokens = append(tokens, model.ReasonFeatured)
	}
	if c.OpenNow != nil && *c.OpenNow {
		tokens = append(tokens, model.ReasonOpenNow)
	}
	if f.Weather > goodWeatherFit {
		if indoor {
			tokens = append(tokens, model.ReasonGoodWeather)
		} else {
			tokens = append(tokens, model.ReasonPerfectWeather)
		}
	}
	if km < nearbyKm {
		tokens = append(tokens, model.ReasonNearby)
	}
	if c.Rating != nil && *c.Rating >= highRatedFloor {
		tokens = append(tokens, model.ReasonHighRated)
	}
	return append(tokens, model.ReasonVibePrefix+string(vibe))
}
