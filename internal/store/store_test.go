package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var (
	venueCols   = []string{"id", "name", "slug", "city", "address", "latitude", "longitude", "created_at", "updated_at"}
	concertCols = []string{
		"id", "date", "artist", "artist_slug", "venue_id", "type",
		"event_name", "setlist", "notes", "image_url", "gallery",
		"created_at", "updated_at",
		"v_id", "v_name", "v_slug", "v_city", "v_address", "v_latitude", "v_longitude",
		"v_created_at", "v_updated_at",
	}
	fixedTime = time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock, db
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func fillmoreRow() *sqlmock.Rows {
	return sqlmock.NewRows(venueCols).
		AddRow(int64(1), "The Fillmore", "the-fillmore", "San Francisco", "", 37.78, -122.43, fixedTime, fixedTime)
}

func radioheadConcertRows() *sqlmock.Rows {
	return sqlmock.NewRows(concertCols).
		AddRow(int64(10), time.Date(2016, time.March, 15, 0, 0, 0, 0, time.UTC), "Radiohead", "radiohead", int64(1), "concert",
			nil, nil, nil, "/uploads/20160315-radiohead/20160315-radiohead-1.jpg", []byte(`["/uploads/20160315-radiohead/20160315-radiohead-2.jpg"]`),
			fixedTime, fixedTime,
			int64(1), "The Fillmore", "the-fillmore", "San Francisco", "", 37.78, -122.43, fixedTime, fixedTime)
}
