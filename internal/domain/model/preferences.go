package model

import "strings"

// Audience is who the user is going out with.
type Audience string

// Vibe is the kind of outing the user wants.
type Vibe string

// Mobility is how the user gets around.
type Mobility string

// Budget is the user's spending tier.
type Budget string

const (
	AudienceGeneral Audience = "general"
	AudienceSolo    Audience = "solo"
	AudienceCouples Audience = "couples"
	AudienceFriends Audience = "friends"
	AudienceFamily  Audience = "family"

	VibeFood      Vibe = "food"
	VibeCulture   Vibe = "culture"
	VibeViews     Vibe = "views"
	VibeNightlife Vibe = "nightlife"
	VibeRelax     Vibe = "relax"

	MobilityWalk Mobility = "walk"
	MobilityCar  Mobility = "car"
	MobilityBoat Mobility = "boat"

	BudgetLow  Budget = "low"
	BudgetMid  Budget = "mid"
	BudgetHigh Budget = "high"
)

var (
	Audiences  = []Audience{AudienceGeneral, AudienceSolo, AudienceCouples, AudienceFriends, AudienceFamily}
	Vibes      = []Vibe{VibeFood, VibeCulture, VibeViews, VibeNightlife, VibeRelax}
	Mobilities = []Mobility{MobilityWalk, MobilityCar, MobilityBoat}
	Budgets    = []Budget{BudgetLow, BudgetMid, BudgetHigh}
)

// Preferences is the user's stated preference set.
type Preferences struct {
	Audience Audience `json:"audience"`
	Vibe     Vibe     `json:"vibe"`
	Mobility Mobility `json:"mobility"`
	Budget   Budget   `json:"budget"`
}

// DefaultPreferences returns general/culture/walk/mid.
func DefaultPreferences() Preferences {
	return Preferences{
		Audience: AudienceGeneral,
		Vibe:     VibeCulture,
		Mobility: MobilityWalk,
		Budget:   BudgetMid,
	}
}

// ParsePreferences coerces raw strings, replacing unknown values with defaults.
func ParsePreferences(audience, vibe, mobility, budget string) Preferences {
	d := DefaultPreferences()
	return Preferences{
		Audience: ParseEnum(audience, Audiences, d.Audience),
		Vibe:     ParseEnum(vibe, Vibes, d.Vibe),
		Mobility: ParseEnum(mobility, Mobilities, d.Mobility),
		Budget:   ParseEnum(budget, Budgets, d.Budget),
	}
}

// ParseEnum returns the allowed value matching raw (trimmed, case-insensitive),
// or fallback when nothing matches.
func ParseEnum[T ~string](raw string, allowed []T, fallback T) T {
	v := strings.ToLower(strings.TrimSpace(raw))
	for _, a := range allowed {
		if string(a) == v {
			return a
		}
	}
	return fallback
}
