package media

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
)

// maxNameBumps bounds how far Write walks past stale files that already own a name.
const maxNameBumps = 1000

// FileStore keeps assets on local disk under Root and names them by URL
// under BaseURL.
type FileStore struct {
	Root    string
	BaseURL string
}

// NewFileStore returns a FileStore rooted at root. baseURL defaults to /uploads.
func NewFileStore(root, baseURL string) *FileStore {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "/uploads"
	}
	return &FileStore{Root: filepath.Clean(root), BaseURL: baseURL}
}

// URL is the public address of p.
func (s *FileStore) URL(p Placement) string {
	return s.BaseURL + "/" + p.RelPath()
}

// Write stores r at p. The content is staged in a temporary file and then
// linked into place, which fails if the name exists, so two writers can
// never own the same name. On collision the sequence number is bumped and
// the placement actually used is returned.
func (s *FileStore) Write(p Placement, r io.Reader) (Placement, error) {
	dir := filepath.Join(s.Root, p.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Placement{}, fmt.Errorf("create media dir: %w", err)
	}

	tmp := filepath.Join(dir, ".upload-"+uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Placement{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp)

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return Placement{}, fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return Placement{}, fmt.Errorf("close upload: %w", err)
	}

	for i := 0; i < maxNameBumps; i++ {
		err := os.Link(tmp, filepath.Join(dir, p.File()))
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return Placement{}, fmt.Errorf("publish upload: %w", err)
		}
		p = p.Next()
	}
	return Placement{}, models.Conflictf("no free file name left in %s", p.Dir)
}

// PathForURL maps a public URL back to a path under Root. URLs outside
// BaseURL or escaping Root are rejected.
func (s *FileStore) PathForURL(fileURL string) (string, error) {
	rel, ok := strings.CutPrefix(strings.TrimSpace(fileURL), s.BaseURL+"/")
	if !ok || rel == "" {
		return "", models.Invalidf("%q is not a media URL", fileURL)
	}
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", models.Invalidf("%q points outside the media root", fileURL)
	}
	return filepath.Join(s.Root, filepath.FromSlash(rel)), nil
}

// Owns reports whether fileURL names a file managed by this store.
func (s *FileStore) Owns(fileURL string) bool {
	_, err := s.PathForURL(fileURL)
	return err == nil
}

// Remove deletes the file behind fileURL, if it exists, and then its
// directory when that is left empty.
func (s *FileStore) Remove(fileURL string) error {
	path, err := s.PathForURL(fileURL)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove media file: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != s.Root {
		// Only succeeds once the directory is empty.
		_ = os.Remove(dir)
	}
	return nil
}
