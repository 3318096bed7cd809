package venues

import (
	"context"

	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
)

// Store defines persistence operations for venues.
type Store interface {
	CreateVenue(ctx context.Context, rec models.VenueRecord) (models.Venue, error)
	UpsertVenue(ctx context.Context, rec models.VenueRecord) (models.Venue, error)
	ListVenues(ctx context.Context) ([]models.Venue, error)
	GetVenue(ctx context.Context, id int64) (models.Venue, error)
	GetVenueBySlug(ctx context.Context, slug string) (models.Venue, error)
	UpdateVenue(ctx context.Context, id int64, rec models.VenueRecord) (models.Venue, error)
	DeleteVenue(ctx context.Context, id int64) error
}

// Service coordinates venue operations.
type Service interface {
	Create(ctx context.Context, rec models.VenueRecord) (models.Venue, error)
	Upsert(ctx context.Context, rec models.VenueRecord) (models.Venue, error)
	List(ctx context.Context) ([]models.Venue, error)
	Get(ctx context.Context, id int64) (models.Venue, error)
	GetBySlug(ctx context.Context, slug string) (models.Venue, error)
	Update(ctx context.Context, id int64, rec models.VenueRecord) (models.Venue, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store Store
}

// New constructs a venues Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, rec models.VenueRecord) (models.Venue, error) {
	if err := ctx.Err(); err != nil {
		return models.Venue{}, err
	}
	return s.store.CreateVenue(ctx, rec)
}

func (s *service) Upsert(ctx context.Context, rec models.VenueRecord) (models.Venue, error) {
	if err := ctx.Err(); err != nil {
		return models.Venue{}, err
	}
	return s.store.UpsertVenue(ctx, rec)
}

func (s *service) List(ctx context.Context) ([]models.Venue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListVenues(ctx)
}

func (s *service) Get(ctx context.Context, id int64) (models.Venue, error) {
	if err := ctx.Err(); err != nil {
		return models.Venue{}, err
	}
	return s.store.GetVenue(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (models.Venue, error) {
	if err := ctx.Err(); err != nil {
		return models.Venue{}, err
	}
	return s.store.GetVenueBySlug(ctx, slug)
}

func (s *service) Update(ctx context.Context, id int64, rec models.VenueRecord) (models.Venue, error) {
	if err := ctx.Err(); err != nil {
		return models.Venue{}, err
	}
	return s.store.UpdateVenue(ctx, id, rec)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteVenue(ctx, id)
}
