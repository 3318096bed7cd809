package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
)

const (
	upsertVenuePattern   = `INSERT INTO venues .* ON CONFLICT \(slug\)`
	insertConcertPattern = `INSERT INTO concerts`
	lookupVenuePattern   = `SELECT id FROM venues WHERE slug = \$1`
)

func fillmoreImport() models.ImportDocument {
	return models.ImportDocument{
		Venues: []models.VenueRecord{{Name: "The Fillmore", City: "San Francisco"}},
		Concerts: []models.ConcertRecord{{
			Artist:    "Radiohead",
			Date:      "2016-03-15",
			VenueName: "The Fillmore",
		}},
	}
}

func expectFillmoreImport(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectQuery(upsertVenuePattern).
		WithArgs("The Fillmore", "the-fillmore", "San Francisco", "", 0.0, 0.0).
		WillReturnRows(fillmoreRow())
	mock.ExpectQuery(insertConcertPattern).
		WithArgs(sqlmock.AnyArg(), "Radiohead", "radiohead", int64(1), "concert", nil, nil, nil, nil, `[]`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
	mock.ExpectCommit()
}

func TestImportCommitsVenuesAndConcerts(t *testing.T) {
	s, mock, _ := newMockStore(t)
	expectFillmoreImport(mock)

	result, err := s.Import(context.Background(), fillmoreImport())
	if err != nil {
		t.Fatalf("Import error: %v", err)
	}
	if result.ImportedVenues != 1 || result.ImportedConcerts != 1 {
		t.Fatalf("unexpected result: %#v", result)
	}
	expectationsMet(t, mock)
}

func TestImportTwiceReusesVenueRow(t *testing.T) {
	s, mock, _ := newMockStore(t)

	// The venue statement is the same conditional insert both times, so the
	// second run resolves to the existing row instead of adding one.
	expectFillmoreImport(mock)
	mock.ExpectBegin()
	mock.ExpectQuery(upsertVenuePattern).
		WithArgs("The Fillmore", "the-fillmore", "San Francisco", "", 0.0, 0.0).
		WillReturnRows(fillmoreRow())
	mock.ExpectQuery(insertConcertPattern).
		WithArgs(sqlmock.AnyArg(), "Radiohead", "radiohead", int64(1), "concert", nil, nil, nil, nil, `[]`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectCommit()

	for i := 0; i < 2; i++ {
		if _, err := s.Import(context.Background(), fillmoreImport()); err != nil {
			t.Fatalf("Import #%d error: %v", i+1, err)
		}
	}
	expectationsMet(t, mock)
}

func TestImportResolvesVenueAlreadyInStore(t *testing.T) {
	s, mock, _ := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lookupVenuePattern).
		WithArgs("the-fillmore").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(insertConcertPattern).
		WithArgs(sqlmock.AnyArg(), "Radiohead", "radiohead", int64(1), "concert", nil, nil, nil, nil, `[]`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
	mock.ExpectCommit()

	doc := fillmoreImport()
	doc.Venues = []models.VenueRecord{}
	result, err := s.Import(context.Background(), doc)
	if err != nil {
		t.Fatalf("Import error: %v", err)
	}
	if result.ImportedVenues != 0 || result.ImportedConcerts != 1 {
		t.Fatalf("unexpected result: %#v", result)
	}
	expectationsMet(t, mock)
}

func TestImportUnknownVenueRollsBackEverything(t *testing.T) {
	s, mock, _ := newMockStore(t)

	doc := fillmoreImport()
	doc.Concerts = append(doc.Concerts, models.ConcertRecord{
		Artist:    "Radiohead",
		Date:      "2016-03-16",
		VenueName: "Nonexistent Hall",
	})

	mock.ExpectBegin()
	mock.ExpectQuery(upsertVenuePattern).WillReturnRows(fillmoreRow())
	mock.ExpectQuery(insertConcertPattern).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
	mock.ExpectQuery(lookupVenuePattern).
		WithArgs("nonexistent-hall").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := s.Import(context.Background(), doc)
	if !errors.Is(err, models.ErrTransactionAborted) {
		t.Fatalf("expected aborted transaction, got %v", err)
	}
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not found as the cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "Nonexistent Hall") || !strings.Contains(err.Error(), "concert #2") {
		t.Fatalf("expected error to name the venue and record, got %q", err.Error())
	}
	expectationsMet(t, mock)
}

func TestImportMissingFieldRollsBack(t *testing.T) {
	s, mock, _ := newMockStore(t)

	doc := fillmoreImport()
	doc.Concerts[0].Date = ""

	mock.ExpectBegin()
	mock.ExpectQuery(upsertVenuePattern).WillReturnRows(fillmoreRow())
	mock.ExpectRollback()

	_, err := s.Import(context.Background(), doc)
	if !errors.Is(err, models.ErrValidation) || !errors.Is(err, models.ErrTransactionAborted) {
		t.Fatalf("expected aborted validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "date") {
		t.Fatalf("expected error to name the missing field, got %q", err.Error())
	}
	expectationsMet(t, mock)
}

func TestImportInvalidVenueRollsBack(t *testing.T) {
	s, mock, _ := newMockStore(t)

	doc := fillmoreImport()
	doc.Venues = append(doc.Venues, models.VenueRecord{Name: "Fox Theater"})

	mock.ExpectBegin()
	mock.ExpectQuery(upsertVenuePattern).WillReturnRows(fillmoreRow())
	mock.ExpectRollback()

	_, err := s.Import(context.Background(), doc)
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), `venue #2 ("Fox Theater")`) {
		t.Fatalf("expected error to name the record, got %q", err.Error())
	}
	expectationsMet(t, mock)
}

func TestImportRejectsMissingLists(t *testing.T) {
	s, mock, _ := newMockStore(t)

	_, err := s.Import(context.Background(), models.ImportDocument{Venues: []models.VenueRecord{}})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if errors.Is(err, models.ErrTransactionAborted) {
		t.Fatalf("document shape errors are raised before any transaction: %v", err)
	}
	expectationsMet(t, mock)
}

func TestExportReadsSnapshotInImportShape(t *testing.T) {
	s, mock, _ := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM venues ORDER BY name ASC, id ASC`).WillReturnRows(fillmoreRow())
	mock.ExpectQuery(`ORDER BY c.date ASC, c.id ASC`).WillReturnRows(
		sqlmock.NewRows(concertCols).
			AddRow(int64(10), time.Date(2016, time.March, 15, 0, 0, 0, 0, time.UTC), "Radiohead", "radiohead", int64(1), "festival",
				"Outside Lands", nil, nil, nil, []byte(`[]`),
				fixedTime, fixedTime,
				int64(1), "The Fillmore", "the-fillmore", "San Francisco", "", 37.78, -122.43, fixedTime, fixedTime))
	mock.ExpectCommit()

	doc, err := s.Export(context.Background())
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if len(doc.Venues) != 1 || doc.Venues[0].Name != "The Fillmore" || doc.Venues[0].City != "San Francisco" {
		t.Fatalf("unexpected venues: %#v", doc.Venues)
	}
	if len(doc.Concerts) != 1 {
		t.Fatalf("expected 1 concert, got %d", len(doc.Concerts))
	}
	got := doc.Concerts[0]
	if got.Date != "2016-03-15" || got.VenueName != "The Fillmore" || got.Type != "festival" {
		t.Fatalf("unexpected concert record: %#v", got)
	}
	if got.Gallery == nil || len(got.Gallery) != 0 {
		t.Fatalf("expected empty gallery array, got %#v", got.Gallery)
	}
	if got.EventName == nil || *got.EventName != "Outside Lands" {
		t.Fatalf("expected event name to be exported, got %v", got.EventName)
	}
	expectationsMet(t, mock)
}

func TestExportEmptyStore(t *testing.T) {
	s, mock, _ := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM venues`).WillReturnRows(sqlmock.NewRows(venueCols))
	mock.ExpectQuery(`ORDER BY c.date ASC`).WillReturnRows(sqlmock.NewRows(concertCols))
	mock.ExpectCommit()

	doc, err := s.Export(context.Background())
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if doc.Venues == nil || doc.Concerts == nil {
		t.Fatalf("expected empty arrays, got %#v", doc)
	}
	expectationsMet(t, mock)
}
