package scoring

import (
	"math"

	"github.com/okian/vibefeed/internal/domain/model"
)

var vibeWeights = struct {
	time, weather, open, popularity, distance float64
}{time: 2.5, weather: 2.5, open: 2.0, popularity: 2.0, distance: 1.5}

// Popularity maps a review count onto [0,1] with log scaling.
func Popularity(count *int) float64 {
	n := 0
	if count != nil && *count > 0 {
		n = *count
	}
	return clamp01(math.Log10(float64(n)+1) / 3)
}

// LiveVibe computes the 0..100 live vibe index and its band.
// Places known to be closed are always (0, "closed").
func LiveVibe(f Fits, open *bool, count *int) (int, string) {
	if open != nil && !*open {
		return 0, model.VibeStateClosed
	}

	w := vibeWeights
	total := w.time + w.weather + w.open + w.popularity + w.distance
	raw := f.Time*w.time +
		f.Weather*w.weather +
		f.Open*w.open +
		Popularity(count)*w.popularity +
		f.Distance*w.distance
	index := clampScore(int(math.Round(clamp01(raw/total) * maxScoreValue)))
	return index, VibeBand(index)
}

// VibeBand classifies a live vibe index.
func VibeBand(index int) string {
	switch {
	case index >= 90:
		return model.VibeStateElectric
	case index >= 80:
		return model.VibeStateBuzzing
	case index >= 65:
		return model.VibeStateLively
	case index >= 50:
		return model.VibeStateCalm
	default:
		return model.VibeStateQuiet
	}
}
