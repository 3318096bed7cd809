package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
)

func TestUpsertVenueUsesSingleConditionalInsert(t *testing.T) {
	s, mock, _ := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO venues .* ON CONFLICT \(slug\) DO UPDATE SET city = EXCLUDED.city`).
		WithArgs("The Fillmore", "the-fillmore", "San Francisco", "1805 Geary Blvd", 37.78, -122.43).
		WillReturnRows(fillmoreRow())

	v, err := s.UpsertVenue(context.Background(), models.VenueRecord{
		Name:      "  The Fillmore ",
		City:      "San Francisco",
		Address:   "1805 Geary Blvd",
		Latitude:  37.78,
		Longitude: -122.43,
	})
	if err != nil {
		t.Fatalf("UpsertVenue error: %v", err)
	}
	if v.ID != 1 || v.Slug != "the-fillmore" {
		t.Fatalf("unexpected venue: %#v", v)
	}
	expectationsMet(t, mock)
}

func TestUpsertVenueValidation(t *testing.T) {
	tests := []struct {
		name string
		rec  models.VenueRecord
	}{
		{"missing name", models.VenueRecord{City: "Oakland"}},
		{"missing city", models.VenueRecord{Name: "Fox Theater"}},
		{"blank city", models.VenueRecord{Name: "Fox Theater", City: "   "}},
		{"unsluggable name", models.VenueRecord{Name: "???", City: "Oakland"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			s, mock, _ := newMockStore(t)
			_, err := s.UpsertVenue(context.Background(), tc.rec)
			if !errors.Is(err, models.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			expectationsMet(t, mock)
		})
	}
}

func TestCreateVenueConflict(t *testing.T) {
	s, mock, _ := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO venues`).
		WithArgs("The Fillmore", "the-fillmore", "San Francisco", "", 0.0, 0.0).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	_, err := s.CreateVenue(context.Background(), models.VenueRecord{Name: "The Fillmore", City: "San Francisco"})
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestDeleteVenueWithConcertsIsRejected(t *testing.T) {
	s, mock, _ := newMockStore(t)

	mock.ExpectExec(`DELETE FROM venues WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})

	err := s.DeleteVenue(context.Background(), 1)
	if !errors.Is(err, models.ErrReferentialIntegrity) {
		t.Fatalf("expected referential integrity error, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestDeleteVenueNotFound(t *testing.T) {
	s, mock, _ := newMockStore(t)

	mock.ExpectExec(`DELETE FROM venues WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeleteVenue(context.Background(), 99)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestUpdateVenueRederivesSlug(t *testing.T) {
	s, mock, _ := newMockStore(t)

	mock.ExpectQuery(`UPDATE venues`).
		WithArgs("The Warfield", "the-warfield", "San Francisco", "", 0.0, 0.0, int64(3)).
		WillReturnRows(sqlmock.NewRows(venueCols).
			AddRow(int64(3), "The Warfield", "the-warfield", "San Francisco", "", 0.0, 0.0, fixedTime, fixedTime))

	v, err := s.UpdateVenue(context.Background(), 3, models.VenueRecord{Name: "The Warfield", City: "San Francisco"})
	if err != nil {
		t.Fatalf("UpdateVenue error: %v", err)
	}
	if v.Slug != "the-warfield" {
		t.Fatalf("expected slug the-warfield, got %q", v.Slug)
	}
	expectationsMet(t, mock)
}

func TestGetVenueBySlugIncludesConcerts(t *testing.T) {
	s, mock, _ := newMockStore(t)

	mock.ExpectQuery(`FROM venues\s+WHERE slug = \$1`).
		WithArgs("the-fillmore").
		WillReturnRows(fillmoreRow())
	mock.ExpectQuery(`WHERE c.venue_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(radioheadConcertRows())

	v, err := s.GetVenueBySlug(context.Background(), "the-fillmore")
	if err != nil {
		t.Fatalf("GetVenueBySlug error: %v", err)
	}
	if len(v.Concerts) != 1 || v.Concerts[0].Artist != "Radiohead" {
		t.Fatalf("unexpected concerts: %#v", v.Concerts)
	}
	expectationsMet(t, mock)
}
