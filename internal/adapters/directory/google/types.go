package google

// nearbyResponse is the Places Nearby Search response envelope.
type nearbyResponse struct {
	Results      []placeResult `json:"results"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// placeResult is a single Nearby Search result. Optional numeric fields are
// pointers so that absence is distinguishable from zero.
type placeResult struct {
	PlaceID          string        `json:"place_id"`
	Name             string        `json:"name"`
	Vicinity         string        `json:"vicinity,omitempty"`
	Rating           *float64      `json:"rating,omitempty"`
	UserRatingsTotal *int          `json:"user_ratings_total,omitempty"`
	PriceLevel       *int          `json:"price_level,omitempty"`
	Types            []string      `json:"types,omitempty"`
	Geometry         *geometry     `json:"geometry,omitempty"`
	OpeningHours     *openingHours `json:"opening_hours,omitempty"`
	BusinessStatus   string        `json:"business_status,omitempty"`
}

type geometry struct {
	Location *latLng `json:"location,omitempty"`
}

type latLng struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type openingHours struct {
	OpenNow *bool `json:"open_now,omitempty"`
}
