package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
)

func TestExportFilename(t *testing.T) {
	at := time.Date(2024, 7, 4, 23, 30, 0, 0, time.FixedZone("PDT", -7*3600))
	assert.Equal(t, "show-log-20240705.json", exportFilename(at))
}

func TestWriteExportFileIntoDirectory(t *testing.T) {
	dir := t.TempDir()
	doc := models.ExportDocument{
		Venues:   []models.VenueRecord{{Name: "The Fillmore", City: "San Francisco"}},
		Concerts: []models.ConcertRecord{{Artist: "Radiohead", Date: "2016-03-15", VenueName: "The Fillmore", Type: "concert", Gallery: []string{}}},
	}

	require.NoError(t, writeExportFile(dir, doc))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "show-log-"))

	back, err := readImportFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	require.Len(t, back.Concerts, 1)
	assert.Equal(t, "The Fillmore", back.Concerts[0].VenueName)
	assert.Equal(t, "San Francisco", back.Venues[0].City)
}

func TestReadImportFileRequiresArrays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"venues": []}`), 0o644))

	_, err := readImportFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
}
