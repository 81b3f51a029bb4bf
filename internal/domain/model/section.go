package model

// Section is a named time-of-day bucket with its own weight profile.
type Section string

const (
	SectionHappeningNow Section = "happening-now"
	SectionLaterToday   Section = "later-today"
	SectionThisEvening  Section = "this-evening"
	SectionRainFriendly Section = "rain-friendly"
)

// Sections lists the ranked sections in response order.
var Sections = []Section{SectionHappeningNow, SectionLaterToday, SectionThisEvening, SectionRainFriendly}

// PayloadKey is the key used for the section in the feed response.
func (s Section) PayloadKey() string {
	switch s {
	case SectionHappeningNow:
		return "hotNow"
	case SectionLaterToday:
		return "laterToday"
	case SectionThisEvening:
		return "evening"
	case SectionRainFriendly:
		return "rainy"
	default:
		return string(s)
	}
}

// Live vibe states.
const (
	VibeStateClosed   = "closed"
	VibeStateElectric = "electric"
	VibeStateBuzzing  = "buzzing"
	VibeStateLively   = "lively"
	VibeStateCalm     = "calm"
	VibeStateQuiet    = "quiet"
)

// Reason tokens explaining a score.
const (
	ReasonFeatured       = "featured"
	ReasonOpenNow        = "openNow"
	ReasonGoodWeather    = "goodWeather"
	ReasonPerfectWeather = "perfectWeather"
	ReasonNearby         = "nearby"
	ReasonHighRated      = "highRated"
	ReasonVibePrefix     = "vibe:"
)

// ScoredPlace is a ranked place as returned to the presentation layer.
type ScoredPlace struct {
	PlaceID       string   `json:"place_id"`
	Name          string   `json:"name"`
	Rating        *float64 `json:"rating,omitempty"`
	RatingCount   *int     `json:"user_ratings_total,omitempty"`
	Vicinity      string   `json:"vicinity,omitempty"`
	MapsURL       string   `json:"maps_url"`
	DistanceKm    float64  `json:"distance_km"`
	Score         int      `json:"score"`
	LiveVibeIndex int      `json:"liveVibeIndex"`
	LiveVibeState string   `json:"liveVibeState"`
	ReasonTokens  []string `json:"reasonTokens"`
	IsFeatured    bool     `json:"isFeatured"`
}
