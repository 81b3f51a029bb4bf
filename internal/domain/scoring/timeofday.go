package scoring

import "time"

const baselineTimeFit = 0.7

type timeRule struct {
	tags  []string
	delta float64
}

type timeBucket struct {
	name  string
	rules []timeRule
}

var (
	morning = timeBucket{name: "morning", rules: []timeRule{
		{tags: []string{"cafe", "bakery", "park"}, delta: 0.25},
		{tags: []string{"bar", "night_club"}, delta: -0.3},
	}}
	lunch = timeBucket{name: "lunch", rules: []timeRule{
		{tags: []string{"restaurant", "meal_takeaway"}, delta: 0.25},
	}}
	afternoon = timeBucket{name: "afternoon", rules: []timeRule{
		{tags: []string{"museum", "tourist_attraction", "park"}, delta: 0.2},
	}}
	evening = timeBucket{name: "evening", rules: []timeRule{
		{tags: []string{"restaurant", "bar"}, delta: 0.25},
	}}
	lateNight = timeBucket{name: "late-night", rules: []timeRule{
		{tags: []string{"bar", "night_club"}, delta: 0.3},
		{tags: []string{"museum", "park"}, delta: -0.3},
	}}
	// 03:00 to 06:00 has no adjustments.
	smallHours = timeBucket{name: "small-hours"}
)

func bucketFor(hour int) timeBucket {
	switch {
	case hour >= 6 && hour < 11:
		return morning
	case hour >= 11 && hour < 15:
		return lunch
	case hour >= 15 && hour < 18:
		return afternoon
	case hour >= 18 && hour < 23:
		return evening
	case hour >= 23 || hour < 3:
		return lateNight
	default:
		return smallHours
	}
}

// DayPart names the bucket that now falls in.
func DayPart(now time.Time) string {
	return bucketFor(now.Hour()).name
}

// TimeOfDayFit starts at 0.7 and applies the bucket's tag adjustments.
// The hour is read in now's location.
func TimeOfDayFit(now time.Time, tags []string) float64 {
	fit := baselineTimeFit
	for _, r := range bucketFor(now.Hour()).rules {
		if anyTag(tags, r.tags) {
			fit += r.delta
		}
	}
	return clamp01(fit)
}
