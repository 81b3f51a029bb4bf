package overpass

import (
	"fmt"
	"sort"
	"strings"
)

// osmFilter selects elements whose key matches one of values.
type osmFilter struct {
	key    string
	values []string
}

func (f osmFilter) selector() string {
	return fmt.Sprintf(`["%s"~"^(%s)$"]`, f.key, strings.Join(f.values, "|"))
}

func (f osmFilter) matches(tags map[string]string) bool {
	v, ok := tags[f.key]
	if !ok {
		return false
	}
	for _, want := range f.values {
		if v == want {
			return true
		}
	}
	return false
}

// categoryFilters maps directory categories onto OpenStreetMap tags.
var categoryFilters = map[string][]osmFilter{
	"tourist_attraction": {{key: "tourism", values: []string{"attraction", "viewpoint"}}, {key: "historic", values: []string{"monument", "ruins", "archaeological_site"}}},
	"museum":             {{key: "tourism", values: []string{"museum"}}},
	"art_gallery":        {{key: "tourism", values: []string{"gallery"}}},
	"natural_feature":    {{key: "natural", values: []string{"peak", "beach", "bay", "cliff", "cave_entrance", "spring"}}},
	"park":               {{key: "leisure", values: []string{"park", "garden"}}},
	"restaurant":         {{key: "amenity", values: []string{"restaurant"}}},
	"cafe":               {{key: "amenity", values: []string{"cafe"}}},
	"bakery":             {{key: "shop", values: []string{"bakery", "pastry"}}},
	"meal_takeaway":      {{key: "amenity", values: []string{"fast_food"}}},
	"bar":                {{key: "amenity", values: []string{"bar", "pub"}}},
	"night_club":         {{key: "amenity", values: []string{"nightclub"}}},
	"church":             {{key: "building", values: []string{"church", "chapel", "cathedral"}}},
	"place_of_worship":   {{key: "amenity", values: []string{"place_of_worship"}}},
	"shopping_mall":      {{key: "shop", values: []string{"mall"}}},
	"library":            {{key: "amenity", values: []string{"library"}}},
	"movie_theater":      {{key: "amenity", values: []string{"cinema"}}},
	"aquarium":           {{key: "tourism", values: []string{"aquarium"}}},
	"zoo":                {{key: "tourism", values: []string{"zoo"}}},
	"amusement_park":     {{key: "tourism", values: []string{"theme_park"}}},
	"spa":                {{key: "leisure", values: []string{"spa"}}, {key: "amenity", values: []string{"spa"}}},
}

// SupportedCategories lists categories the Overpass directory can answer.
func SupportedCategories() []string {
	out := make([]string, 0, len(categoryFilters))
	for k := range categoryFilters {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
