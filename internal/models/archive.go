package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ImportDocument is the bulk import payload. Both lists must be present.
type ImportDocument struct {
	Venues   []VenueRecord   `json:"venues"`
	Concerts []ConcertRecord `json:"concerts"`
}

// ImportResult reports how many records a successful import processed.
type ImportResult struct {
	ImportedVenues   int `json:"importedVenues"`
	ImportedConcerts int `json:"importedConcerts"`
}

// ExportDocument has exactly the import shape so it can be re-imported as is.
type ExportDocument struct {
	Venues   []VenueRecord   `json:"venues"`
	Concerts []ConcertRecord `json:"concerts"`
}

// DecodeImportDocument reads an import document and checks that both venues
// and concerts are JSON arrays.
func DecodeImportDocument(r io.Reader) (ImportDocument, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return ImportDocument{}, &Error{
			Kind:   ErrValidation,
			Detail: fmt.Sprintf("import document is not a JSON object: %v", err),
			Err:    err,
		}
	}

	var doc ImportDocument
	for _, field := range []string{"venues", "concerts"} {
		value, ok := raw[field]
		if !ok || !isJSONArray(value) {
			return ImportDocument{}, Invalidf("import document field %q must be an array", field)
		}
	}
	if err := json.Unmarshal(raw["venues"], &doc.Venues); err != nil {
		return ImportDocument{}, Invalidf("decode venues: %v", err)
	}
	if err := json.Unmarshal(raw["concerts"], &doc.Concerts); err != nil {
		return ImportDocument{}, Invalidf("decode concerts: %v", err)
	}
	return doc, nil
}

// Validate checks the document-level shape when it was built in code rather than decoded.
func (d ImportDocument) Validate() error {
	if d.Venues == nil {
		return Invalidf("import document field %q must be an array", "venues")
	}
	if d.Concerts == nil {
		return Invalidf("import document field %q must be an array", "concerts")
	}
	return nil
}

func isJSONArray(value json.RawMessage) bool {
	trimmed := bytes.TrimSpace(value)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// Describe names a venue record for error messages.
func (r VenueRecord) Describe(index int) string {
	if r.Name == "" {
		return fmt.Sprintf("venue #%d", index+1)
	}
	return fmt.Sprintf("venue #%d (%q)", index+1, r.Name)
}

// Describe names a concert record for error messages.
func (r ConcertRecord) Describe(index int) string {
	switch {
	case r.Artist != "" && r.Date != "":
		return fmt.Sprintf("concert #%d (%q on %s)", index+1, r.Artist, r.Date)
	case r.Artist != "":
		return fmt.Sprintf("concert #%d (%q)", index+1, r.Artist)
	default:
		return fmt.Sprintf("concert #%d", index+1)
	}
}
