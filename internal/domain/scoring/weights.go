package scoring

import "github.com/okian/vibefeed/internal/domain/model"

// Weights is a per-section weight vector over the fit terms.
type Weights struct {
	Distance   float64
	Open       float64
	Weather    float64
	Rating     float64
	Preference float64
	Budget     float64
	Time       float64
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Distance + w.Open + w.Weather + w.Rating + w.Preference + w.Budget + w.Time
}

// Combine returns the weighted mean of f in [0,1].
func (w Weights) Combine(f Fits) float64 {
	total := w.Sum()
	if total <= 0 {
		return 0
	}
	raw := f.Distance*w.Distance +
		f.Open*w.Open +
		f.Weather*w.Weather +
		f.Rating*w.Rating +
		f.Preference*w.Preference +
		f.Budget*w.Budget +
		f.Time*w.Time
	return clamp01(raw / total)
}

var (
	rainyWeights = Weights{Distance: 1.2, Open: 2.0, Weather: 4.0, Rating: 1.2, Preference: 1.5, Budget: 1.0, Time: 1.2}

	eveningWeights = Weights{Distance: 1.5, Open: 2.5, Weather: 1.2, Rating: 1.3, Preference: 1.6, Budget: 1.0, Time: 2.0}

	// happening-now and later-today
	defaultSectionWeights = Weights{Distance: 2.0, Open: 3.0, Weather: 2.0, Rating: 1.5, Preference: 1.8, Budget: 1.0, Time: 1.5}
)

func defaultWeights() map[model.Section]Weights {
	return map[model.Section]Weights{
		model.SectionHappeningNow: defaultSectionWeights,
		model.SectionLaterToday:   defaultSectionWeights,
		model.SectionThisEvening:  eveningWeights,
		model.SectionRainFriendly: rainyWeights,
	}
}
