package feedprobe

import (
	"github.com/google/uuid"

	"github.com/okian/vibefeed/internal/domain/model"
)

// preferenceSets cycles through every enum value at least once without
// exploding the matrix into the full cartesian product.
var preferenceSets = []model.Preferences{
	{Audience: model.AudienceGeneral, Vibe: model.VibeCulture, Mobility: model.MobilityWalk, Budget: model.BudgetMid},
	{Audience: model.AudienceSolo, Vibe: model.VibeFood, Mobility: model.MobilityWalk, Budget: model.BudgetLow},
	{Audience: model.AudienceCouples, Vibe: model.VibeViews, Mobility: model.MobilityCar, Budget: model.BudgetHigh},
	{Audience: model.AudienceFriends, Vibe: model.VibeNightlife, Mobility: model.MobilityBoat, Budget: model.BudgetMid},
	{Audience: model.AudienceFamily, Vibe: model.VibeRelax, Mobility: model.MobilityCar, Budget: model.BudgetLow},
}

// weatherOverrides includes "" so live weather is exercised too.
var weatherOverrides = []string{"", model.WeatherSunny, model.WeatherRain}

// BuildPlan expands cities into probes for every preference set and weather
// override, repeated rounds times. Each probe gets a fresh request id.
func BuildPlan(cities []string, rounds int) []Probe {
	if rounds < 1 {
		rounds = 1
	}
	plan := make([]Probe, 0, rounds*len(cities)*len(preferenceSets)*len(weatherOverrides))
	for r := 0; r < rounds; r++ {
		for _, city := range cities {
			for _, prefs := range preferenceSets {
				for _, wx := range weatherOverrides {
					plan = append(plan, Probe{
						RequestID: uuid.NewString(),
						City:      city,
						Audience:  string(prefs.Audience),
						Vibe:      string(prefs.Vibe),
						Mobility:  string(prefs.Mobility),
						Budget:    string(prefs.Budget),
						Weather:   wx,
					})
				}
			}
		}
	}
	return plan
}
