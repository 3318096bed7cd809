package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

// pingPolicy bounds how long startup waits for Postgres to accept connections.
type pingPolicy struct {
	timeout    time.Duration
	maxWait    time.Duration
	backoff    time.Duration
	maxBackoff time.Duration
}

var defaultPingPolicy = pingPolicy{
	timeout:    5 * time.Second,
	maxWait:    30 * time.Second,
	backoff:    500 * time.Millisecond,
	maxBackoff: 5 * time.Second,
}

// openDatabase opens the pgx pool behind database/sql and waits for the
// server to answer.
func openDatabase(ctx context.Context, dsn string, logger zerolog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := waitForDatabase(ctx, db, defaultPingPolicy, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// waitForDatabase pings db with exponential backoff until it answers, ctx
// ends, or policy.maxWait has passed.
func waitForDatabase(ctx context.Context, db *sql.DB, policy pingPolicy, logger zerolog.Logger) error {
	deadline := time.Now().Add(policy.maxWait)
	backoff := policy.backoff

	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, policy.timeout)
		err := db.PingContext(pingCtx)
		cancel()
		if err == nil {
			if attempt > 1 {
				logger.Info().Int("attempts", attempt).Msg("database reachable")
			}
			return nil
		}

		if ctx.Err() != nil || time.Now().Add(backoff).After(deadline) {
			return fmt.Errorf("ping database after %d attempts: %w", attempt, err)
		}
		logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", backoff).Msg("database not ready")

		select {
		case <-ctx.Done():
			return fmt.Errorf("ping database: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, policy.maxBackoff)
	}
}
