package concerts

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
	"github.com/ryanjpeterson/jimbos-show-log/internal/store"
)

// Store defines persistence operations for concerts.
type Store interface {
	CreateConcert(ctx context.Context, in models.ConcertInput) (models.Concert, error)
	ListConcerts(ctx context.Context, filter store.ConcertFilter) ([]models.Concert, error)
	GetConcert(ctx context.Context, id int64) (models.Concert, error)
	ListConcertsByArtist(ctx context.Context, artistSlug string) ([]models.Concert, error)
	UpdateConcert(ctx context.Context, id int64, in models.ConcertInput) (models.Concert, error)
	DeleteConcert(ctx context.Context, id int64) (models.Concert, error)
}

// Media guards a concert's imageUrl and gallery and removes the stored
// files of a deleted concert.
type Media interface {
	Lock(ctx context.Context, concertID int64) (func(), error)
	ReleaseConcert(c models.Concert) error
}

// Service coordinates concert operations.
type Service interface {
	Create(ctx context.Context, in models.ConcertInput) (models.Concert, error)
	List(ctx context.Context, filter store.ConcertFilter) ([]models.Concert, error)
	Get(ctx context.Context, id int64) (models.Concert, error)
	ListByArtist(ctx context.Context, artistSlug string) ([]models.Concert, error)
	Update(ctx context.Context, id int64, in models.ConcertInput) (models.Concert, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store  Store
	media  Media
	logger zerolog.Logger
}

// New constructs a concerts Service. media may be nil, in which case edits
// are not serialised with uploads and files of deleted concerts stay on disk.
func New(store Store, media Media, logger zerolog.Logger) Service {
	return &service{store: store, media: media, logger: logger}
}

func (s *service) Create(ctx context.Context, in models.ConcertInput) (models.Concert, error) {
	if err := ctx.Err(); err != nil {
		return models.Concert{}, err
	}
	return s.store.CreateConcert(ctx, in)
}

func (s *service) List(ctx context.Context, filter store.ConcertFilter) ([]models.Concert, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListConcerts(ctx, filter)
}

func (s *service) Get(ctx context.Context, id int64) (models.Concert, error) {
	if err := ctx.Err(); err != nil {
		return models.Concert{}, err
	}
	return s.store.GetConcert(ctx, id)
}

func (s *service) ListByArtist(ctx context.Context, artistSlug string) ([]models.Concert, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListConcertsByArtist(ctx, artistSlug)
}

func (s *service) Update(ctx context.Context, id int64, in models.ConcertInput) (models.Concert, error) {
	if err := ctx.Err(); err != nil {
		return models.Concert{}, err
	}
	unlock, err := s.lockMedia(ctx, id)
	if err != nil {
		return models.Concert{}, err
	}
	defer unlock()
	return s.store.UpdateConcert(ctx, id, in)
}

// Delete removes the concert row first; its files are released afterwards
// and a failure there is only logged since the row is already gone.
func (s *service) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock, err := s.lockMedia(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	deleted, err := s.store.DeleteConcert(ctx, id)
	if err != nil {
		return err
	}
	if s.media != nil {
		if err := s.media.ReleaseConcert(deleted); err != nil {
			s.logger.Warn().Err(err).Int64("concert_id", id).Msg("failed to remove media of deleted concert")
		}
	}
	return nil
}

func (s *service) lockMedia(ctx context.Context, id int64) (func(), error) {
	if s.media == nil {
		return func() {}, nil
	}
	return s.media.Lock(ctx, id)
}
