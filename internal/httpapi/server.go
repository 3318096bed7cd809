package httpapi

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ryanjpeterson/jimbos-show-log/internal/http/middleware"
	"github.com/ryanjpeterson/jimbos-show-log/internal/media"
	"github.com/ryanjpeterson/jimbos-show-log/internal/models"
	"github.com/ryanjpeterson/jimbos-show-log/internal/store"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// ConcertService coordinates concert-related operations.
type ConcertService interface {
	Create(ctx context.Context, in models.ConcertInput) (models.Concert, error)
	List(ctx context.Context, filter store.ConcertFilter) ([]models.Concert, error)
	Get(ctx context.Context, id int64) (models.Concert, error)
	ListByArtist(ctx context.Context, artistSlug string) ([]models.Concert, error)
	Update(ctx context.Context, id int64, in models.ConcertInput) (models.Concert, error)
	Delete(ctx context.Context, id int64) error
}

// VenueService coordinates venue-related operations.
type VenueService interface {
	Create(ctx context.Context, rec models.VenueRecord) (models.Venue, error)
	List(ctx context.Context) ([]models.Venue, error)
	Get(ctx context.Context, id int64) (models.Venue, error)
	GetBySlug(ctx context.Context, slug string) (models.Venue, error)
	Update(ctx context.Context, id int64, rec models.VenueRecord) (models.Venue, error)
	Delete(ctx context.Context, id int64) error
}

// ArchiveService moves the whole log in and out.
type ArchiveService interface {
	Import(ctx context.Context, doc models.ImportDocument) (models.ImportResult, error)
	Export(ctx context.Context) (models.ExportDocument, error)
}

// StatsService computes the aggregate view.
type StatsService interface {
	Compute(ctx context.Context) (models.Stats, error)
}

// MediaService stores and removes concert media.
type MediaService interface {
	Upload(ctx context.Context, req media.UploadRequest) (media.UploadResult, error)
	Remove(ctx context.Context, fileURL string, concertID int64) error
}

// Options tunes the HTTP surface.
type Options struct {
	// AssetRoot is served read-only under AssetBaseURL when both are set
	// and AssetBaseURL is a path.
	AssetRoot      string
	AssetBaseURL   string
	MaxUploadBytes int64
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users    UserService
	concerts ConcertService
	venues   VenueService
	archive  ArchiveService
	stats    StatsService
	media    MediaService
	tokens   middleware.TokenValidator
	opts     Options
}

// New configures a Server.
func New(
	users UserService,
	concerts ConcertService,
	venues VenueService,
	archive ArchiveService,
	stats StatsService,
	media MediaService,
	tokens middleware.TokenValidator,
	opts Options,
) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 200 << 20
	}
	return &Server{
		users:    users,
		concerts: concerts,
		venues:   venues,
		archive:  archive,
		stats:    stats,
		media:    media,
		tokens:   tokens,
		opts:     opts,
	}
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found", Kind: "not_found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Kind: "validation"})
	})

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// Public reads
	api.HandleFunc("", s.handleListConcerts).Methods(http.MethodGet)
	api.HandleFunc("/", s.handleListConcerts).Methods(http.MethodGet)
	api.HandleFunc("/concerts", s.handleListConcerts).Methods(http.MethodGet)
	api.HandleFunc("/concerts/{id:[0-9]+}", s.handleGetConcert).Methods(http.MethodGet)
	api.HandleFunc("/artists/{slug}", s.handleArtist).Methods(http.MethodGet)
	api.HandleFunc("/venues", s.handleListVenues).Methods(http.MethodGet)
	api.HandleFunc("/venues/id/{id:[0-9]+}", s.handleGetVenue).Methods(http.MethodGet)
	api.HandleFunc("/venues/{slug}", s.handleGetVenueBySlug).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	// Admin writes
	api.Handle("/concerts", s.authed(s.handleCreateConcert)).Methods(http.MethodPost)
	api.Handle("/concerts/{id:[0-9]+}", s.authed(s.handleUpdateConcert)).Methods(http.MethodPut)
	api.Handle("/concerts/{id:[0-9]+}", s.authed(s.handleDeleteConcert)).Methods(http.MethodDelete)
	api.Handle("/venues", s.authed(s.handleCreateVenue)).Methods(http.MethodPost)
	api.Handle("/venues/{id:[0-9]+}", s.authed(s.handleUpdateVenue)).Methods(http.MethodPut)
	api.Handle("/venues/{id:[0-9]+}", s.authed(s.handleDeleteVenue)).Methods(http.MethodDelete)
	api.Handle("/import", s.authed(s.handleImport)).Methods(http.MethodPost)
	api.Handle("/export", s.authed(s.handleExport)).Methods(http.MethodGet)
	api.Handle("/upload", s.authed(s.handleUpload)).Methods(http.MethodPost)
	api.Handle("/upload/delete", s.authed(s.handleDeleteUpload)).Methods(http.MethodPost)

	// Paths used by the admin dashboard before the REST routes existed.
	api.Handle("/create/{type}", s.authed(s.handleLegacyCreate)).Methods(http.MethodPost)
	api.Handle("/edit/{type}/{id:[0-9]+}", s.authed(s.handleLegacyEdit)).Methods(http.MethodPut)
	api.Handle("/delete/{type}/{id:[0-9]+}", s.authed(s.handleLegacyDelete)).Methods(http.MethodDelete)

	if prefix, ok := s.assetPrefix(); ok {
		router.PathPrefix(prefix + "/").Handler(
			http.StripPrefix(prefix, http.FileServer(fileOnlyFS{http.Dir(s.opts.AssetRoot)})),
		).Methods(http.MethodGet, http.MethodHead)
	}

	return router
}

func (s *Server) authed(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(s.tokens)(h)
}

func (s *Server) assetPrefix() (string, bool) {
	base := strings.TrimRight(s.opts.AssetBaseURL, "/")
	if s.opts.AssetRoot == "" || !strings.HasPrefix(base, "/") || base == "" {
		return "", false
	}
	return base, true
}

// fileOnlyFS serves files but refuses directory listings.
type fileOnlyFS struct {
	fs http.FileSystem
}

func (f fileOnlyFS) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
