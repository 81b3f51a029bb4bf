package feedprobe

import (
	"fmt"

	service "github.com/okian/vibefeed/internal/app"
	"github.com/okian/vibefeed/internal/domain/model"
)

// Verify checks a decoded feed against the ranking invariants and returns
// one message per violation.
func Verify(p Probe, feed *service.Feed, sectionLimit int) []string {
	if feed == nil {
		return []string{"empty response"}
	}
	var out []string
	if !feed.OK {
		out = append(out, "ok flag is false")
	}
	if p.RequestID != "" && feed.Context.RequestID != p.RequestID {
		out = append(out, fmt.Sprintf("request id %q not echoed (got %q)", p.RequestID, feed.Context.RequestID))
	}
	if p.City != "" && feed.Context.City.Slug != p.City {
		out = append(out, fmt.Sprintf("city %q answered as %q", p.City, feed.Context.City.Slug))
	}

	sections := map[string][]model.ScoredPlace{
		"featured":   feed.Sections.Featured,
		"hotNow":     feed.Sections.HotNow,
		"laterToday": feed.Sections.LaterToday,
		"evening":    feed.Sections.Evening,
		"rainy":      feed.Sections.Rainy,
	}
	for name, places := range sections {
		out = append(out, verifySection(name, places, sectionLimit)...)
	}
	for _, pl := range feed.Sections.Featured {
		if !pl.IsFeatured {
			out = append(out, fmt.Sprintf("featured: %s is not flagged as featured", pl.PlaceID))
		}
	}
	return out
}

func verifySection(name string, places []model.ScoredPlace, limit int) []string {
	var out []string
	if limit > 0 && len(places) > limit {
		out = append(out, fmt.Sprintf("%s: %d places exceeds limit %d", name, len(places), limit))
	}
	seen := make(map[string]struct{}, len(places))
	for i, pl := range places {
		if pl.Score < 0 || pl.Score > MaxScore {
			out = append(out, fmt.Sprintf("%s: %s score %d out of range", name, pl.PlaceID, pl.Score))
		}
		if pl.LiveVibeIndex < 0 || pl.LiveVibeIndex > MaxScore {
			out = append(out, fmt.Sprintf("%s: %s vibe index %d out of range", name, pl.PlaceID, pl.LiveVibeIndex))
		}
		if pl.LiveVibeState == model.VibeStateClosed && pl.LiveVibeIndex != 0 {
			out = append(out, fmt.Sprintf("%s: %s is closed with vibe index %d", name, pl.PlaceID, pl.LiveVibeIndex))
		}
		if i > 0 && places[i-1].Score < pl.Score {
			out = append(out, fmt.Sprintf("%s: not sorted at position %d", name, i))
		}
		if _, dup := seen[pl.PlaceID]; dup {
			out = append(out, fmt.Sprintf("%s: duplicate place %s", name, pl.PlaceID))
		}
		seen[pl.PlaceID] = struct{}{}
	}
	return out
}
