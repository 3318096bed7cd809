package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
	"github.com/ryanjpeterson/jimbos-show-log/internal/slug"
)

const venueColumns = `id, name, slug, city, address, latitude, longitude, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVenue(row rowScanner) (models.Venue, error) {
	var v models.Venue
	err := row.Scan(&v.ID, &v.Name, &v.Slug, &v.City, &v.Address, &v.Latitude, &v.Longitude, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// prepareVenue normalises and validates rec and derives its slug.
func prepareVenue(what string, rec *models.VenueRecord) (string, error) {
	rec.Normalize()
	if err := models.ValidateRequired(what, *rec); err != nil {
		return "", err
	}
	venueSlug := slug.Make(rec.Name)
	if venueSlug == "" {
		return "", models.Invalidf("%s: name %q must contain letters or digits", what, rec.Name)
	}
	return venueSlug, nil
}

// UpsertVenue resolves a venue by the slug of its name, updating city,
// address and coordinates in place when it already exists.
func (s *Store) UpsertVenue(ctx context.Context, rec models.VenueRecord) (models.Venue, error) {
	return upsertVenue(ctx, s.db, "venue", rec)
}

func upsertVenue(ctx context.Context, q querier, what string, rec models.VenueRecord) (models.Venue, error) {
	venueSlug, err := prepareVenue(what, &rec)
	if err != nil {
		return models.Venue{}, err
	}

	venue, err := scanVenue(q.QueryRowContext(ctx, `
		INSERT INTO venues (name, slug, city, address, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (slug)
		DO UPDATE SET city = EXCLUDED.city, address = EXCLUDED.address,
		              latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude,
		              updated_at = NOW()
		RETURNING `+venueColumns,
		rec.Name, venueSlug, rec.City, rec.Address, float64(rec.Latitude), float64(rec.Longitude)))
	if err != nil {
		return models.Venue{}, fmt.Errorf("%s: upsert venue: %w", what, err)
	}
	return venue, nil
}

// CreateVenue inserts a new venue. A name whose slug is already taken is a conflict.
func (s *Store) CreateVenue(ctx context.Context, rec models.VenueRecord) (models.Venue, error) {
	venueSlug, err := prepareVenue("venue", &rec)
	if err != nil {
		return models.Venue{}, err
	}

	venue, err := scanVenue(s.db.QueryRowContext(ctx, `
		INSERT INTO venues (name, slug, city, address, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+venueColumns,
		rec.Name, venueSlug, rec.City, rec.Address, float64(rec.Latitude), float64(rec.Longitude)))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Venue{}, models.Conflictf("a venue with slug %q already exists", venueSlug)
		}
		return models.Venue{}, fmt.Errorf("insert venue: %w", err)
	}
	return venue, nil
}

// ListVenues returns every venue ordered by name.
func (s *Store) ListVenues(ctx context.Context) ([]models.Venue, error) {
	return listVenues(ctx, s.db)
}

func listVenues(ctx context.Context, q querier) ([]models.Venue, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+venueColumns+`
		FROM venues
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select venues: %w", err)
	}
	defer rows.Close()

	venues := []models.Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate venues: %w", err)
	}
	return venues, nil
}

func venueIDBySlug(ctx context.Context, q querier, venueSlug string) (int64, bool, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM venues WHERE slug = $1`, venueSlug).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup venue %q: %w", venueSlug, err)
	}
	return id, true, nil
}

// GetVenue retrieves a single venue by ID.
func (s *Store) GetVenue(ctx context.Context, id int64) (models.Venue, error) {
	v, err := scanVenue(s.db.QueryRowContext(ctx, `
		SELECT `+venueColumns+`
		FROM venues
		WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Venue{}, models.NotFoundf("venue %d not found", id)
	}
	if err != nil {
		return models.Venue{}, fmt.Errorf("select venue: %w", err)
	}
	return v, nil
}

// GetVenueBySlug retrieves a venue together with its concerts, newest first.
func (s *Store) GetVenueBySlug(ctx context.Context, venueSlug string) (models.Venue, error) {
	v, err := scanVenue(s.db.QueryRowContext(ctx, `
		SELECT `+venueColumns+`
		FROM venues
		WHERE slug = $1
	`, venueSlug))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Venue{}, models.NotFoundf("venue %q not found", venueSlug)
	}
	if err != nil {
		return models.Venue{}, fmt.Errorf("select venue: %w", err)
	}

	concerts, err := s.ListConcertsByVenue(ctx, v.ID)
	if err != nil {
		return models.Venue{}, err
	}
	v.Concerts = concerts
	return v, nil
}

// UpdateVenue replaces a venue's fields and re-derives its slug from the name.
func (s *Store) UpdateVenue(ctx context.Context, id int64, rec models.VenueRecord) (models.Venue, error) {
	venueSlug, err := prepareVenue("venue", &rec)
	if err != nil {
		return models.Venue{}, err
	}

	v, err := scanVenue(s.db.QueryRowContext(ctx, `
		UPDATE venues
		SET name = $1, slug = $2, city = $3, address = $4,
		    latitude = $5, longitude = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING `+venueColumns,
		rec.Name, venueSlug, rec.City, rec.Address, float64(rec.Latitude), float64(rec.Longitude), id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Venue{}, models.NotFoundf("venue %d not found", id)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return models.Venue{}, models.Conflictf("a venue with slug %q already exists", venueSlug)
		}
		return models.Venue{}, fmt.Errorf("update venue: %w", err)
	}
	return v, nil
}

// DeleteVenue removes a venue. Venues still referenced by concerts are kept.
func (s *Store) DeleteVenue(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.InUsef("venue %d still has concerts and cannot be deleted", id)
		}
		return fmt.Errorf("delete venue: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete venue: %w", err)
	}
	if rows == 0 {
		return models.NotFoundf("venue %d not found", id)
	}
	return nil
}
