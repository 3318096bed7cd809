package models

import (
	"strings"
	"time"
)

// ConcertType distinguishes single-bill shows from festivals.
type ConcertType string

const (
	ConcertTypeConcert  ConcertType = "concert"
	ConcertTypeFestival ConcertType = "festival"
)

// ParseConcertType coerces anything other than the literal "festival" to a concert.
func ParseConcertType(raw string) ConcertType {
	if raw == string(ConcertTypeFestival) {
		return ConcertTypeFestival
	}
	return ConcertTypeConcert
}

// DateLayout is the calendar-date format used by import and export documents.
const DateLayout = "2006-01-02"

// Concert is a single attended show.
type Concert struct {
	ID         int64       `json:"id"`
	Date       time.Time   `json:"date"`
	Artist     string      `json:"artist"`
	ArtistSlug string      `json:"artistSlug"`
	VenueID    int64       `json:"venueId"`
	Type       ConcertType `json:"type"`
	EventName  *string     `json:"eventName"`
	Setlist    *string     `json:"setlist"`
	Notes      *string     `json:"notes"`
	ImageURL   *string     `json:"imageUrl"`
	Gallery    []string    `json:"gallery"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`

	// Populated via JOIN queries.
	Venue *Venue `json:"venue,omitempty"`
}

// MediaCount is the number of media assets already attached to the concert.
func (c Concert) MediaCount() int {
	n := len(c.Gallery)
	if c.ImageURL != nil && *c.ImageURL != "" {
		n++
	}
	return n
}

// ConcertInput is the create/edit payload of the concert API.
type ConcertInput struct {
	Date      string   `json:"date" validate:"required"`
	Artist    string   `json:"artist" validate:"required"`
	VenueID   int64    `json:"venueId" validate:"required"`
	Type      string   `json:"type"`
	EventName *string  `json:"eventName"`
	Setlist   *string  `json:"setlist"`
	Notes     *string  `json:"notes"`
	ImageURL  *string  `json:"imageUrl"`
	Gallery   []string `json:"gallery"`
}

// Normalize trims text fields and drops empty optional values.
func (in *ConcertInput) Normalize() {
	in.Date = strings.TrimSpace(in.Date)
	in.Artist = strings.TrimSpace(in.Artist)
	in.EventName = trimOptional(in.EventName)
	in.Setlist = trimOptional(in.Setlist)
	in.Notes = trimOptional(in.Notes)
	in.ImageURL = trimOptional(in.ImageURL)
	in.Gallery = compactGallery(in.Gallery)
}

// ConcertRecord is the import/export shape of a concert. The venue is
// referenced by name rather than id so documents survive a database rebuild.
type ConcertRecord struct {
	Artist    string   `json:"artist" validate:"required"`
	Date      string   `json:"date" validate:"required"`
	VenueName string   `json:"venueName" validate:"required"`
	Type      string   `json:"type"`
	EventName *string  `json:"eventName"`
	Setlist   *string  `json:"setlist"`
	Notes     *string  `json:"notes"`
	ImageURL  *string  `json:"imageUrl"`
	Gallery   []string `json:"gallery"`
}

// Normalize trims text fields and drops empty optional values.
func (r *ConcertRecord) Normalize() {
	r.Artist = strings.TrimSpace(r.Artist)
	r.Date = strings.TrimSpace(r.Date)
	r.VenueName = strings.TrimSpace(r.VenueName)
	r.EventName = trimOptional(r.EventName)
	r.Setlist = trimOptional(r.Setlist)
	r.Notes = trimOptional(r.Notes)
	r.ImageURL = trimOptional(r.ImageURL)
	r.Gallery = compactGallery(r.Gallery)
}

// RecordFromConcert flattens a stored concert and its venue into the export shape.
func RecordFromConcert(c Concert) ConcertRecord {
	rec := ConcertRecord{
		Artist:    c.Artist,
		Date:      c.Date.UTC().Format(DateLayout),
		Type:      string(c.Type),
		EventName: c.EventName,
		Setlist:   c.Setlist,
		Notes:     c.Notes,
		ImageURL:  c.ImageURL,
		Gallery:   c.Gallery,
	}
	if rec.Gallery == nil {
		rec.Gallery = []string{}
	}
	if c.Venue != nil {
		rec.VenueName = c.Venue.Name
	}
	return rec
}

// ParseDate reads a calendar date either as YYYY-MM-DD or as an RFC 3339
// timestamp and returns the start of that day in UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, Invalidf("date %q must be YYYY-MM-DD or RFC 3339", raw)
	}
	return StartOfDay(t), nil
}

// StartOfDay truncates t to midnight UTC of its UTC calendar day.
func StartOfDay(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func compactGallery(in []string) []string {
	out := make([]string, 0, len(in))
	for _, entry := range in {
		if entry = strings.TrimSpace(entry); entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
