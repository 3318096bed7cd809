package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
)

// sniffLen is how much of an upload is inspected to detect its type.
const sniffLen = 3072

// ConcertStore is the persistence the uploader needs.
type ConcertStore interface {
	GetConcert(ctx context.Context, id int64) (models.Concert, error)
	SetConcertMedia(ctx context.Context, id int64, imageURL *string, gallery []string) error
}

// UploadRequest is one uploaded file destined for a concert.
type UploadRequest struct {
	ConcertID   int64
	IsMainImage bool
	Filename    string
	ContentType string
	Body        io.Reader
}

// UploadResult describes the stored asset.
type UploadResult struct {
	URL         string `json:"url"`
	File        string `json:"file"`
	ContentType string `json:"contentType"`
}

// Uploader stores concert media and keeps the concert's imageUrl and
// gallery in step with the files on disk.
type Uploader struct {
	store  ConcertStore
	files  *FileStore
	locks  Locker
	logger zerolog.Logger
}

// NewUploader wires an Uploader. A nil locker falls back to an in-process one.
func NewUploader(store ConcertStore, files *FileStore, locks Locker, logger zerolog.Logger) *Uploader {
	if locks == nil {
		locks = NewLocalLocker()
	}
	return &Uploader{store: store, files: files, locks: locks, logger: logger}
}

// Upload stores req.Body as the next asset of the concert and attaches its
// URL. Counting, writing and attaching happen under the concert's lock.
func (u *Uploader) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	if req.ConcertID <= 0 {
		return UploadResult{}, models.Invalidf("concertId is required")
	}
	if req.Body == nil {
		return UploadResult{}, models.Invalidf("file is required")
	}

	body, contentType, err := sniff(req)
	if err != nil {
		return UploadResult{}, err
	}

	unlock, err := u.locks.Lock(ctx, req.ConcertID)
	if err != nil {
		return UploadResult{}, err
	}
	defer unlock()

	concert, err := u.store.GetConcert(ctx, req.ConcertID)
	if err != nil {
		return UploadResult{}, err
	}

	placement, err := Allocate(concert, ExistingCount(concert), req.Filename)
	if err != nil {
		return UploadResult{}, err
	}
	placement, err = u.files.Write(placement, body)
	if err != nil {
		return UploadResult{}, err
	}
	url := u.files.URL(placement)

	imageURL := concert.ImageURL
	gallery := append([]string{}, concert.Gallery...)
	var replaced string
	if req.IsMainImage {
		if imageURL != nil {
			replaced = *imageURL
		}
		imageURL = &url
	} else {
		gallery = append(gallery, url)
	}

	if err := u.store.SetConcertMedia(ctx, concert.ID, imageURL, gallery); err != nil {
		if rmErr := u.files.Remove(url); rmErr != nil {
			u.logger.Error().Err(rmErr).Str("url", url).Msg("failed to remove orphaned upload")
		}
		return UploadResult{}, err
	}

	if replaced != "" && replaced != url && !slices.Contains(gallery, replaced) && u.files.Owns(replaced) {
		if err := u.files.Remove(replaced); err != nil {
			u.logger.Warn().Err(err).Str("url", replaced).Msg("failed to remove replaced main image")
		}
	}

	u.logger.Info().
		Int64("concert_id", concert.ID).
		Str("url", url).
		Bool("main_image", req.IsMainImage).
		Msg("media uploaded")

	return UploadResult{URL: url, File: placement.File(), ContentType: contentType}, nil
}

// Remove detaches fileURL from the concert when concertID is set and
// deletes the file when it lives under the media root. URLs the file store
// does not manage, such as imported external links, are only detached.
func (u *Uploader) Remove(ctx context.Context, fileURL string, concertID int64) error {
	if strings.TrimSpace(fileURL) == "" {
		return models.Invalidf("fileUrl is required")
	}
	if concertID <= 0 {
		if _, err := u.files.PathForURL(fileURL); err != nil {
			return err
		}
		return u.files.Remove(fileURL)
	}

	unlock, err := u.locks.Lock(ctx, concertID)
	if err != nil {
		return err
	}
	defer unlock()

	concert, err := u.store.GetConcert(ctx, concertID)
	if err != nil {
		return err
	}

	imageURL := concert.ImageURL
	if imageURL != nil && *imageURL == fileURL {
		imageURL = nil
	}
	gallery := make([]string, 0, len(concert.Gallery))
	for _, g := range concert.Gallery {
		if g != fileURL {
			gallery = append(gallery, g)
		}
	}
	if err := u.store.SetConcertMedia(ctx, concertID, imageURL, gallery); err != nil {
		return err
	}

	if !u.files.Owns(fileURL) {
		return nil
	}
	return u.files.Remove(fileURL)
}

// Lock takes the concert's media lock so other writers of imageUrl and
// gallery do not interleave with uploads.
func (u *Uploader) Lock(ctx context.Context, concertID int64) (func(), error) {
	return u.locks.Lock(ctx, concertID)
}

// ReleaseConcert removes every stored file a deleted concert referenced.
// URLs not managed by the file store are left alone.
func (u *Uploader) ReleaseConcert(c models.Concert) error {
	urls := append([]string{}, c.Gallery...)
	if c.ImageURL != nil {
		urls = append(urls, *c.ImageURL)
	}

	var errs []error
	for _, url := range urls {
		if !u.files.Owns(url) {
			continue
		}
		if err := u.files.Remove(url); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// sniff detects the upload's type from its first bytes and rejects anything
// that is neither an image nor a video. The returned reader replays the
// inspected prefix.
func sniff(req UploadRequest) (io.Reader, string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(req.Body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, "", err
	}
	head = head[:n]
	if n == 0 {
		return nil, "", models.Invalidf("file %q is empty", req.Filename)
	}

	contentType := mimetype.Detect(head).String()
	if !isMedia(contentType) {
		// Fall back to the declared type, then the extension, for formats
		// the detector does not know.
		declared := req.ContentType
		if declared == "" {
			declared = mime.TypeByExtension(strings.ToLower(filepath.Ext(req.Filename)))
		}
		if !strings.HasPrefix(contentType, "application/octet-stream") || !isMedia(declared) {
			return nil, "", models.Invalidf("file %q is %s; only images and videos are accepted", req.Filename, contentType)
		}
		contentType = declared
	}

	return io.MultiReader(bytes.NewReader(head), req.Body), contentType, nil
}

func isMedia(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/") || strings.HasPrefix(mediaType, "video/")
}
