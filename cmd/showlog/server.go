package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"

	"github.com/ryanjpeterson/jimbos-show-log/internal/app/archive"
	"github.com/ryanjpeterson/jimbos-show-log/internal/app/concerts"
	"github.com/ryanjpeterson/jimbos-show-log/internal/app/stats"
	"github.com/ryanjpeterson/jimbos-show-log/internal/app/users"
	"github.com/ryanjpeterson/jimbos-show-log/internal/app/venues"
	"github.com/ryanjpeterson/jimbos-show-log/internal/auth"
	"github.com/ryanjpeterson/jimbos-show-log/internal/http/middleware"
	"github.com/ryanjpeterson/jimbos-show-log/internal/httpapi"
	"github.com/ryanjpeterson/jimbos-show-log/internal/media"
	"github.com/ryanjpeterson/jimbos-show-log/internal/store"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.cfg.ValidateServer(); err != nil {
				return err
			}
			return serve(cmd.Context(), rt)
		},
	}
}

func serve(ctx context.Context, rt *runtime) error {
	db, err := openDatabase(ctx, rt.cfg.Database.URL, rt.logger)
	if err != nil {
		return err
	}
	defer db.Close()

	locks, closeLocks, err := newLocker(ctx, rt)
	if err != nil {
		return err
	}
	defer closeLocks()

	handler := newHTTPHandler(rt, db, locks)

	server := &http.Server{
		Addr:              rt.cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info().Str("addr", server.Addr).Msg("API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	rt.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	rt.logger.Info().Msg("server exited")
	return nil
}

// newLocker picks the Redis upload lock when REDIS_ADDR is set and the
// in-process lock otherwise.
func newLocker(ctx context.Context, rt *runtime) (media.Locker, func(), error) {
	if !rt.cfg.Redis.Enabled() {
		return media.NewLocalLocker(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     rt.cfg.Redis.Addr,
		Password: rt.cfg.Redis.Password,
		DB:       rt.cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	rt.logger.Info().Str("addr", rt.cfg.Redis.Addr).Msg("using redis upload locks")
	return media.NewRedisLocker(rdb), func() { _ = rdb.Close() }, nil
}

func newHTTPHandler(rt *runtime, db *sql.DB, locks media.Locker) http.Handler {
	cfg := rt.cfg
	dataStore := store.New(db)
	tokens := auth.NewTokenManager(cfg.Security.JWTSecret, auth.DefaultTTL)

	files := media.NewFileStore(cfg.Media.Root, cfg.Media.BaseURL)
	uploader := media.NewUploader(dataStore, files, locks, rt.logger)

	// Base services
	userSvc := users.New(dataStore, tokens)
	venueSvc := venues.New(dataStore)
	archiveSvc := archive.New(dataStore, rt.logger)
	statsSvc := stats.New(dataStore)

	// Concert deletion also releases the concert's media.
	concertSvc := concerts.New(dataStore, uploader, rt.logger)

	api := httpapi.New(userSvc, concertSvc, venueSvc, archiveSvc, statsSvc, uploader, tokens, httpapi.Options{
		AssetRoot:      cfg.Media.Root,
		AssetBaseURL:   cfg.Media.BaseURL,
		MaxUploadBytes: cfg.Media.MaxUploadBytes(),
	}).Routes()

	var handler http.Handler = api
	handler = middleware.Recovery()(handler)
	handler = middleware.RequestLogging(rt.logger)(handler)
	handler = middleware.CORS(cfg.CORS.AllowedOrigins)(handler)
	return handler
}
