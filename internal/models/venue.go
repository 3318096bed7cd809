package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Venue is a place where concerts happen. Slug is derived from Name on every write.
type Venue struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	City      string    `json:"city"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Populated only by the venue detail lookup.
	Concerts []Concert `json:"concerts,omitempty"`
}

// VenueRecord is the import/export and create/edit shape of a venue.
type VenueRecord struct {
	Name      string     `json:"name" validate:"required"`
	City      string     `json:"city" validate:"required"`
	Address   string     `json:"address"`
	Latitude  Coordinate `json:"latitude"`
	Longitude Coordinate `json:"longitude"`
}

// Normalize trims surrounding whitespace from the text fields.
func (r *VenueRecord) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.City = strings.TrimSpace(r.City)
	r.Address = strings.TrimSpace(r.Address)
}

// RecordFromVenue flattens a stored venue into its export shape.
func RecordFromVenue(v Venue) VenueRecord {
	return VenueRecord{
		Name:      v.Name,
		City:      v.City,
		Address:   v.Address,
		Latitude:  Coordinate(v.Latitude),
		Longitude: Coordinate(v.Longitude),
	}
}

// Coordinate is a latitude or longitude that accepts JSON numbers as well as
// numeric strings. null, "" and a missing field all decode to 0.
type Coordinate float64

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*c = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("coordinate %q is not numeric", s)
		}
		*c = Coordinate(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("coordinate %s is not numeric", string(data))
	}
	*c = Coordinate(f)
	return nil
}
