package archive

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
)

// Store runs the transactional import and the snapshot export.
type Store interface {
	Import(ctx context.Context, doc models.ImportDocument) (models.ImportResult, error)
	Export(ctx context.Context) (models.ExportDocument, error)
}

// Service moves the whole log in and out as a single JSON document.
type Service interface {
	Import(ctx context.Context, doc models.ImportDocument) (models.ImportResult, error)
	Export(ctx context.Context) (models.ExportDocument, error)
}

type service struct {
	store  Store
	logger zerolog.Logger
}

// New constructs an archive Service.
func New(store Store, logger zerolog.Logger) Service {
	return &service{store: store, logger: logger}
}

func (s *service) Import(ctx context.Context, doc models.ImportDocument) (models.ImportResult, error) {
	if err := ctx.Err(); err != nil {
		return models.ImportResult{}, err
	}

	start := time.Now()
	result, err := s.store.Import(ctx, doc)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("kind", models.KindName(err)).
			Int("venues", len(doc.Venues)).
			Int("concerts", len(doc.Concerts)).
			Msg("import rolled back")
		return models.ImportResult{}, err
	}

	s.logger.Info().
		Int("imported_venues", result.ImportedVenues).
		Int("imported_concerts", result.ImportedConcerts).
		Dur("duration", time.Since(start)).
		Msg("import committed")
	return result, nil
}

func (s *service) Export(ctx context.Context) (models.ExportDocument, error) {
	if err := ctx.Err(); err != nil {
		return models.ExportDocument{}, err
	}
	return s.store.Export(ctx)
}
