// Package model contains domain models passed between layers.
package model

import (
	"sort"

	"github.com/okian/vibefeed/internal/domain/geo"
)

// DefaultPlaceName is used when the directory returns a record without a name.
const DefaultPlaceName = "Place"

// Candidate is a place fetched from a directory before scoring.
// Optional attributes are nil when the directory did not report them.
type Candidate struct {
	ID          string
	Name        string
	Location    geo.Point
	Tags        []string
	Rating      *float64
	RatingCount *int
	OpenNow     *bool
	PriceLevel  *int
	Vicinity    string
}

// UnionTags returns the sorted union of a and b without duplicates.
func UnionTags(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, t := range list {
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// Float64Ptr, IntPtr and BoolPtr build optional attribute values.
func Float64Ptr(v float64) *float64 { return &v }
func IntPtr(v int) *int             { return &v }
func BoolPtr(v bool) *bool          { return &v }
