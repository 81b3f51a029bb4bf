package scoring

import "github.com/okian/vibefeed/internal/domain/model"

const neutralBudget = 0.65

type tagBoost struct {
	tags  []string
	boost float64
}

var vibeBoosts = map[model.Vibe]tagBoost{
	model.VibeFood:      {tags: []string{"restaurant", "cafe", "bakery", "meal_takeaway"}, boost: 0.18},
	model.VibeCulture:   {tags: []string{"museum", "art_gallery", "church", "synagogue", "mosque", "hindu_temple", "place_of_worship"}, boost: 0.18},
	model.VibeViews:     {tags: []string{"tourist_attraction", "natural_feature", "park"}, boost: 0.12},
	model.VibeNightlife: {tags: []string{"bar", "night_club", "restaurant"}, boost: 0.12},
	model.VibeRelax:     {tags: []string{"park", "spa", "natural_feature"}, boost: 0.12},
}

var audienceBoosts = map[model.Audience]tagBoost{
	model.AudienceFamily:  {tags: []string{"park", "aquarium", "museum", "zoo", "amusement_park"}, boost: 0.12},
	model.AudienceCouples: {tags: []string{"restaurant", "tourist_attraction", "museum"}, boost: 0.06},
	model.AudienceFriends: {tags: []string{"bar", "restaurant", "night_club"}, boost: 0.06},
	model.AudienceSolo:    {tags: []string{"museum", "cafe", "art_gallery"}, boost: 0.05},
}

// PreferenceBoost adds the vibe and audience boosts whose tags intersect tags.
func PreferenceBoost(tags []string, vibe model.Vibe, audience model.Audience) float64 {
	boost := 0.0
	if b, ok := vibeBoosts[vibe]; ok && anyTag(tags, b.tags) {
		boost += b.boost
	}
	if b, ok := audienceBoosts[audience]; ok && anyTag(tags, b.tags) {
		boost += b.boost
	}
	return clamp01(boost)
}

// BudgetFit favours price levels aligned with the budget tier.
// Unknown price levels get the neutral 0.65.
func BudgetFit(price *int, budget model.Budget) float64 {
	if price == nil {
		return neutralBudget
	}
	p := *price
	switch budget {
	case model.BudgetLow:
		switch {
		case p <= 1:
			return 1.0
		case p == 2:
			return 0.6
		default:
			return 0.25
		}
	case model.BudgetHigh:
		switch {
		case p >= 3:
			return 1.0
		case p == 2:
			return 0.75
		default:
			return 0.45
		}
	default:
		switch p {
		case 1, 2:
			return 1.0
		case 3:
			return 0.6
		default:
			return 0.35
		}
	}
}

func anyTag(tags, want []string) bool {
	for _, t := range tags {
		for _, w := range want {
			if t == w {
				return true
			}
		}
	}
	return false
}
