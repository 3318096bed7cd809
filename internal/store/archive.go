package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
	"github.com/ryanjpeterson/jimbos-show-log/internal/slug"
)

// Import upserts every venue of doc and then inserts every concert, all in
// one transaction. The first failing record aborts the whole import and no
// change from either phase is kept.
func (s *Store) Import(ctx context.Context, doc models.ImportDocument) (models.ImportResult, error) {
	if err := doc.Validate(); err != nil {
		return models.ImportResult{}, err
	}

	var result models.ImportResult
	err := s.inTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(tx *sql.Tx) error {
		venueIDs := make(map[string]int64, len(doc.Venues))

		for i, rec := range doc.Venues {
			what := rec.Describe(i)
			venue, err := upsertVenue(ctx, tx, what, rec)
			if err != nil {
				if isUniqueViolation(err) {
					return models.Conflictf("%s: slug collides with a concurrent write", what)
				}
				return err
			}
			venueIDs[venue.Slug] = venue.ID
		}

		for i, rec := range doc.Concerts {
			rec.Normalize()
			what := rec.Describe(i)
			if err := models.ValidateRequired(what, rec); err != nil {
				return err
			}

			venueSlug := slug.Make(rec.VenueName)
			venueID, ok := venueIDs[venueSlug]
			if !ok && venueSlug != "" {
				id, found, err := venueIDBySlug(ctx, tx, venueSlug)
				if err != nil {
					return fmt.Errorf("%s: %w", what, err)
				}
				venueID, ok = id, found
			}
			if !ok {
				return models.NotFoundf("%s: venue %q not found in the import or the store", what, rec.VenueName)
			}
			venueIDs[venueSlug] = venueID

			row, err := newConcertRow(what, rec.Artist, rec.Date, rec.Type, venueID,
				rec.EventName, rec.Setlist, rec.Notes, rec.ImageURL, rec.Gallery)
			if err != nil {
				return err
			}
			if _, err := insertConcert(ctx, tx, row); err != nil {
				switch {
				case isForeignKeyViolation(err):
					return models.NotFoundf("%s: venue %q was removed during the import", what, rec.VenueName)
				case isUniqueViolation(err):
					return models.Conflictf("%s: collides with an existing concert", what)
				}
				return fmt.Errorf("%s: insert concert: %w", what, err)
			}
		}

		result = models.ImportResult{
			ImportedVenues:   len(doc.Venues),
			ImportedConcerts: len(doc.Concerts),
		}
		return nil
	})
	if err != nil {
		return models.ImportResult{}, models.Aborted(err)
	}

	return result, nil
}

// Export returns every venue and concert in import shape, read from a
// single consistent snapshot.
func (s *Store) Export(ctx context.Context) (models.ExportDocument, error) {
	doc := models.ExportDocument{
		Venues:   []models.VenueRecord{},
		Concerts: []models.ConcertRecord{},
	}

	err := s.inTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, func(tx *sql.Tx) error {
		venues, err := listVenues(ctx, tx)
		if err != nil {
			return err
		}
		for _, v := range venues {
			doc.Venues = append(doc.Venues, models.RecordFromVenue(v))
		}

		rows, err := tx.QueryContext(ctx, concertSelect+`
	ORDER BY c.date ASC, c.id ASC`)
		if err != nil {
			return fmt.Errorf("select concerts: %w", err)
		}
		concerts, err := collectConcerts(rows)
		if err != nil {
			return err
		}
		for _, c := range concerts {
			doc.Concerts = append(doc.Concerts, models.RecordFromConcert(c))
		}
		return nil
	})
	if err != nil {
		return models.ExportDocument{}, fmt.Errorf("export: %w", err)
	}

	return doc, nil
}
