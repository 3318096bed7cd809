package models

// Stats is the aggregate view over every logged concert.
type Stats struct {
	TotalConcerts int           `json:"totalConcerts"`
	FirstShow     *Concert      `json:"firstShow"`
	LatestShow    *Concert      `json:"latestShow"`
	TopArtists    []ArtistCount `json:"topArtists"`
	TopVenues     []VenueCount  `json:"topVenues"`
	ShowsByYear   []YearCount   `json:"showsByYear"`
	ShowsByCity   []CityCount   `json:"showsByCity"`
}

// ArtistCount is the number of concerts sharing an artist slug.
type ArtistCount struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// VenueCount is the number of concerts held at one venue.
type VenueCount struct {
	Name  string `json:"name"`
	City  string `json:"city"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// YearCount is the number of concerts in one calendar year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// CityCount is the number of concerts in one city.
type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}
