package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
	"github.com/ryanjpeterson/jimbos-show-log/internal/slug"
)

const concertSelect = `
	SELECT
		c.id, c.date, c.artist, c.artist_slug, c.venue_id, c.type,
		c.event_name, c.setlist, c.notes, c.image_url, c.gallery,
		c.created_at, c.updated_at,
		v.id, v.name, v.slug, v.city, v.address, v.latitude, v.longitude,
		v.created_at, v.updated_at
	FROM concerts c
	INNER JOIN venues v ON c.venue_id = v.id`

// ConcertFilter narrows ListConcerts. Zero values match everything.
type ConcertFilter struct {
	Query string
	Year  int
	City  string
}

// concertRow holds a validated concert ready to be written.
type concertRow struct {
	date       time.Time
	artist     string
	artistSlug string
	venueID    int64
	kind       models.ConcertType
	eventName  *string
	setlist    *string
	notes      *string
	imageURL   *string
	gallery    []byte
}

func newConcertRow(what, artist, rawDate, rawType string, venueID int64, eventName, setlist, notes, imageURL *string, gallery []string) (concertRow, error) {
	date, err := models.ParseDate(rawDate)
	if err != nil {
		return concertRow{}, models.Invalidf("%s: %v", what, err)
	}
	artistSlug := slug.Make(artist)
	if artistSlug == "" {
		return concertRow{}, models.Invalidf("%s: artist %q must contain letters or digits", what, artist)
	}
	if gallery == nil {
		gallery = []string{}
	}
	galleryJSON, err := json.Marshal(gallery)
	if err != nil {
		return concertRow{}, fmt.Errorf("%s: marshal gallery: %w", what, err)
	}

	return concertRow{
		date:       date,
		artist:     artist,
		artistSlug: artistSlug,
		venueID:    venueID,
		kind:       models.ParseConcertType(rawType),
		eventName:  eventName,
		setlist:    setlist,
		notes:      notes,
		imageURL:   imageURL,
		gallery:    galleryJSON,
	}, nil
}

func prepareConcertInput(in models.ConcertInput) (concertRow, error) {
	in.Normalize()
	if err := models.ValidateRequired("concert", in); err != nil {
		return concertRow{}, err
	}
	return newConcertRow("concert", in.Artist, in.Date, in.Type, in.VenueID,
		in.EventName, in.Setlist, in.Notes, in.ImageURL, in.Gallery)
}

func insertConcert(ctx context.Context, q querier, row concertRow) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO concerts (date, artist, artist_slug, venue_id, type,
		                      event_name, setlist, notes, image_url, gallery)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb)
		RETURNING id
	`, row.date, row.artist, row.artistSlug, row.venueID, string(row.kind),
		row.eventName, row.setlist, row.notes, row.imageURL, string(row.gallery)).Scan(&id)
	return id, err
}

func scanConcert(row rowScanner) (models.Concert, error) {
	var (
		c         models.Concert
		v         models.Venue
		kind      string
		eventName sql.NullString
		setlist   sql.NullString
		notes     sql.NullString
		imageURL  sql.NullString
		gallery   []byte
	)

	if err := row.Scan(
		&c.ID, &c.Date, &c.Artist, &c.ArtistSlug, &c.VenueID, &kind,
		&eventName, &setlist, &notes, &imageURL, &gallery,
		&c.CreatedAt, &c.UpdatedAt,
		&v.ID, &v.Name, &v.Slug, &v.City, &v.Address, &v.Latitude, &v.Longitude,
		&v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		return models.Concert{}, err
	}

	c.Date = models.StartOfDay(c.Date)
	c.Type = models.ParseConcertType(kind)
	c.EventName = nullStringPtr(eventName)
	c.Setlist = nullStringPtr(setlist)
	c.Notes = nullStringPtr(notes)
	c.ImageURL = nullStringPtr(imageURL)
	c.Gallery = []string{}
	if len(gallery) > 0 {
		if err := json.Unmarshal(gallery, &c.Gallery); err != nil {
			return models.Concert{}, fmt.Errorf("decode gallery: %w", err)
		}
	}
	c.Venue = &v

	return c, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func collectConcerts(rows *sql.Rows) ([]models.Concert, error) {
	defer rows.Close()

	concerts := []models.Concert{}
	for rows.Next() {
		c, err := scanConcert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan concert: %w", err)
		}
		concerts = append(concerts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate concerts: %w", err)
	}
	return concerts, nil
}

// ListConcerts returns concerts with their venues, newest first.
func (s *Store) ListConcerts(ctx context.Context, filter ConcertFilter) ([]models.Concert, error) {
	query := concertSelect + `
	WHERE 1 = 1`
	args := []any{}
	argPos := 1

	if term := strings.TrimSpace(filter.Query); term != "" {
		query += fmt.Sprintf(` AND (LOWER(c.artist) LIKE $%[1]d
			OR LOWER(v.name) LIKE $%[1]d
			OR LOWER(v.city) LIKE $%[1]d
			OR LOWER(COALESCE(c.event_name, '')) LIKE $%[1]d
			OR LOWER(COALESCE(c.notes, '')) LIKE $%[1]d)`, argPos)
		args = append(args, "%"+strings.ToLower(term)+"%")
		argPos++
	}

	if filter.Year > 0 {
		query += fmt.Sprintf(" AND EXTRACT(YEAR FROM c.date) = $%d", argPos)
		args = append(args, filter.Year)
		argPos++
	}

	if city := strings.TrimSpace(filter.City); city != "" {
		query += fmt.Sprintf(" AND v.city = $%d", argPos)
		args = append(args, city)
	}

	query += `
	ORDER BY c.date DESC, c.id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select concerts: %w", err)
	}
	return collectConcerts(rows)
}

// GetConcert retrieves a single concert by ID with venue details.
func (s *Store) GetConcert(ctx context.Context, id int64) (models.Concert, error) {
	c, err := scanConcert(s.db.QueryRowContext(ctx, concertSelect+`
	WHERE c.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Concert{}, models.NotFoundf("concert %d not found", id)
	}
	if err != nil {
		return models.Concert{}, fmt.Errorf("select concert: %w", err)
	}
	return c, nil
}

// ListConcertsByArtist returns every concert sharing an artist slug.
func (s *Store) ListConcertsByArtist(ctx context.Context, artistSlug string) ([]models.Concert, error) {
	rows, err := s.db.QueryContext(ctx, concertSelect+`
	WHERE c.artist_slug = $1
	ORDER BY c.date DESC, c.id DESC`, artistSlug)
	if err != nil {
		return nil, fmt.Errorf("select concerts by artist: %w", err)
	}
	return collectConcerts(rows)
}

// ListConcertsByVenue returns all concerts at a specific venue.
func (s *Store) ListConcertsByVenue(ctx context.Context, venueID int64) ([]models.Concert, error) {
	rows, err := s.db.QueryContext(ctx, concertSelect+`
	WHERE c.venue_id = $1
	ORDER BY c.date DESC, c.id DESC`, venueID)
	if err != nil {
		return nil, fmt.Errorf("select concerts by venue: %w", err)
	}
	return collectConcerts(rows)
}

// CreateConcert adds a new concert at an existing venue.
func (s *Store) CreateConcert(ctx context.Context, in models.ConcertInput) (models.Concert, error) {
	row, err := prepareConcertInput(in)
	if err != nil {
		return models.Concert{}, err
	}

	id, err := insertConcert(ctx, s.db, row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Concert{}, models.NotFoundf("venue %d not found", row.venueID)
		}
		return models.Concert{}, fmt.Errorf("insert concert: %w", err)
	}

	return s.GetConcert(ctx, id)
}

// UpdateConcert replaces every editable field of a concert and re-derives
// its artist slug.
func (s *Store) UpdateConcert(ctx context.Context, id int64, in models.ConcertInput) (models.Concert, error) {
	row, err := prepareConcertInput(in)
	if err != nil {
		return models.Concert{}, err
	}

	var updatedID int64
	err = s.db.QueryRowContext(ctx, `
		UPDATE concerts
		SET date = $1, artist = $2, artist_slug = $3, venue_id = $4, type = $5,
		    event_name = $6, setlist = $7, notes = $8, image_url = $9,
		    gallery = $10::jsonb, updated_at = NOW()
		WHERE id = $11
		RETURNING id
	`, row.date, row.artist, row.artistSlug, row.venueID, string(row.kind),
		row.eventName, row.setlist, row.notes, row.imageURL, string(row.gallery), id).Scan(&updatedID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Concert{}, models.NotFoundf("concert %d not found", id)
	}
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Concert{}, models.NotFoundf("venue %d not found", row.venueID)
		}
		return models.Concert{}, fmt.Errorf("update concert: %w", err)
	}

	return s.GetConcert(ctx, updatedID)
}

// SetConcertMedia replaces the primary image and gallery of a concert.
func (s *Store) SetConcertMedia(ctx context.Context, id int64, imageURL *string, gallery []string) error {
	if gallery == nil {
		gallery = []string{}
	}
	galleryJSON, err := json.Marshal(gallery)
	if err != nil {
		return fmt.Errorf("marshal gallery: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE concerts
		SET image_url = $1, gallery = $2::jsonb, updated_at = NOW()
		WHERE id = $3
	`, imageURL, string(galleryJSON), id)
	if err != nil {
		return fmt.Errorf("update concert media: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update concert media: %w", err)
	}
	if rows == 0 {
		return models.NotFoundf("concert %d not found", id)
	}
	return nil
}

// DeleteConcert removes a concert and returns it so callers can release its media.
func (s *Store) DeleteConcert(ctx context.Context, id int64) (models.Concert, error) {
	var (
		c        models.Concert
		imageURL sql.NullString
		gallery  []byte
	)

	err := s.db.QueryRowContext(ctx, `
		DELETE FROM concerts
		WHERE id = $1
		RETURNING id, date, artist, artist_slug, venue_id, image_url, gallery
	`, id).Scan(&c.ID, &c.Date, &c.Artist, &c.ArtistSlug, &c.VenueID, &imageURL, &gallery)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Concert{}, models.NotFoundf("concert %d not found", id)
	}
	if err != nil {
		return models.Concert{}, fmt.Errorf("delete concert: %w", err)
	}

	c.Date = models.StartOfDay(c.Date)
	c.ImageURL = nullStringPtr(imageURL)
	c.Gallery = []string{}
	if len(gallery) > 0 {
		if err := json.Unmarshal(gallery, &c.Gallery); err != nil {
			return models.Concert{}, fmt.Errorf("decode gallery: %w", err)
		}
	}
	return c, nil
}
