package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
)

const dayLayout = "20060102"

// Placement is where an uploaded asset is stored, relative to the asset root.
type Placement struct {
	Dir  string
	Base string
	N    int
	Ext  string
}

// File is the asset's file name inside Dir.
func (p Placement) File() string {
	return fmt.Sprintf("%s-%d%s", p.Base, p.N, p.Ext)
}

// RelPath joins Dir and File with a forward slash, as used in URLs.
func (p Placement) RelPath() string {
	return p.Dir + "/" + p.File()
}

// Next returns the placement one sequence number further on.
func (p Placement) Next() Placement {
	p.N++
	return p
}

// Allocate names the next asset of c. The directory is YYYYMMDD-<artistSlug>
// (UTC calendar date) and the file is the directory name plus the 1-based
// sequence number existing+1 and the lower-cased extension of originalName.
func Allocate(c models.Concert, existing int, originalName string) (Placement, error) {
	if c.ArtistSlug == "" {
		return Placement{}, models.Invalidf("concert %d has no artist slug", c.ID)
	}
	if c.Date.IsZero() {
		return Placement{}, models.Invalidf("concert %d has no date", c.ID)
	}
	if existing < 0 {
		existing = 0
	}

	base := c.Date.UTC().Format(dayLayout) + "-" + c.ArtistSlug
	return Placement{
		Dir:  base,
		Base: base,
		N:    existing + 1,
		Ext:  strings.ToLower(filepath.Ext(originalName)),
	}, nil
}

// ExistingCount is the number of assets already attached to c.
func ExistingCount(c models.Concert) int {
	return c.MediaCount()
}
