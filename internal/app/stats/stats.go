package stats

import (
	"context"
	"sort"

	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
	"github.com/ryanjpeterson/jimbos-show-log/internal/store"
)

const (
	topArtistsLimit = 5
	topVenuesLimit  = 5
	topCitiesLimit  = 10
)

// Store lists the concerts the stats are computed over.
type Store interface {
	ListConcerts(ctx context.Context, filter store.ConcertFilter) ([]models.Concert, error)
}

// Service computes stats from the current concert list on every call.
type Service interface {
	Compute(ctx context.Context) (models.Stats, error)
}

type service struct {
	store Store
}

// New constructs a stats Service.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Compute(ctx context.Context) (models.Stats, error) {
	if err := ctx.Err(); err != nil {
		return models.Stats{}, err
	}
	concerts, err := s.store.ListConcerts(ctx, store.ConcertFilter{})
	if err != nil {
		return models.Stats{}, err
	}
	return Reduce(concerts), nil
}

type artistGroup struct {
	models.ArtistCount
	firstID int64
}

// Reduce aggregates concerts in a single pass. The result does not depend on
// the order of the input: every ranking has an explicit tie-break.
func Reduce(concerts []models.Concert) models.Stats {
	out := models.Stats{
		TotalConcerts: len(concerts),
		TopArtists:    []models.ArtistCount{},
		TopVenues:     []models.VenueCount{},
		ShowsByYear:   []models.YearCount{},
		ShowsByCity:   []models.CityCount{},
	}
	if len(concerts) == 0 {
		return out
	}

	var first, latest *models.Concert
	artists := map[string]*artistGroup{}
	venues := map[int64]*models.VenueCount{}
	years := map[int]int{}
	cities := map[string]int{}

	for i := range concerts {
		c := &concerts[i]

		if first == nil || earlier(c, first) {
			first = c
		}
		if latest == nil || later(c, latest) {
			latest = c
		}

		if g, ok := artists[c.ArtistSlug]; ok {
			g.Count++
			if c.ID < g.firstID {
				g.firstID = c.ID
				g.Name = c.Artist
			}
		} else {
			artists[c.ArtistSlug] = &artistGroup{
				ArtistCount: models.ArtistCount{Name: c.Artist, Slug: c.ArtistSlug, Count: 1},
				firstID:     c.ID,
			}
		}

		if g, ok := venues[c.VenueID]; ok {
			g.Count++
		} else {
			g := &models.VenueCount{Count: 1}
			if c.Venue != nil {
				g.Name, g.City, g.Slug = c.Venue.Name, c.Venue.City, c.Venue.Slug
			}
			venues[c.VenueID] = g
		}

		years[c.Date.UTC().Year()]++
		if c.Venue != nil && c.Venue.City != "" {
			cities[c.Venue.City]++
		}
	}

	out.FirstShow = clone(first)
	out.LatestShow = clone(latest)

	for _, g := range artists {
		out.TopArtists = append(out.TopArtists, g.ArtistCount)
	}
	sort.Slice(out.TopArtists, func(i, j int) bool {
		a, b := out.TopArtists[i], out.TopArtists[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Slug < b.Slug
	})
	out.TopArtists = limit(out.TopArtists, topArtistsLimit)

	for _, g := range venues {
		out.TopVenues = append(out.TopVenues, *g)
	}
	sort.Slice(out.TopVenues, func(i, j int) bool {
		a, b := out.TopVenues[i], out.TopVenues[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Slug < b.Slug
	})
	out.TopVenues = limit(out.TopVenues, topVenuesLimit)

	for year, n := range years {
		out.ShowsByYear = append(out.ShowsByYear, models.YearCount{Year: year, Count: n})
	}
	sort.Slice(out.ShowsByYear, func(i, j int) bool {
		return out.ShowsByYear[i].Year > out.ShowsByYear[j].Year
	})

	for city, n := range cities {
		out.ShowsByCity = append(out.ShowsByCity, models.CityCount{City: city, Count: n})
	}
	sort.Slice(out.ShowsByCity, func(i, j int) bool {
		a, b := out.ShowsByCity[i], out.ShowsByCity[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.City < b.City
	})
	out.ShowsByCity = limit(out.ShowsByCity, topCitiesLimit)

	return out
}

func earlier(a, b *models.Concert) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.ID < b.ID
}

func later(a, b *models.Concert) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.ID < b.ID
}

func clone(c *models.Concert) *models.Concert {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func limit[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
