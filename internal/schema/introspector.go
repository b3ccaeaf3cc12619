package schema

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/askdb/askdb/internal/database"
	"github.com/askdb/askdb/internal/observability"
)

// Introspector fetches a Snapshot over a short-lived connection.
// It holds no state between calls.
type Introspector struct {
	rawURL string
	open   database.Opener
	logger *slog.Logger
}

func NewIntrospector(rawURL string, open database.Opener, logger *slog.Logger) *Introspector {
	if open == nil {
		open = database.NewOpener(database.PoolConfig{MaxOpenConns: 1})
	}
	return &Introspector{rawURL: rawURL, open: open, logger: logger}
}

// Fetch never panics on connection or query failures; every error wraps
// ErrUnavailable, and malformed URLs also wrap database.ErrMalformedConnectionString.
func (i *Introspector) Fetch(ctx context.Context) (Snapshot, error) {
	start := time.Now()
	snapshot, err := i.fetch(ctx)
	if err != nil {
		observability.ObserveSchemaFetch("unavailable", time.Since(start))
		if i.logger != nil {
			i.logger.WarnContext(ctx, "schema introspection failed", slog.Any("error", err))
		}
		return Snapshot{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	observability.ObserveSchemaFetch("ok", time.Since(start))
	if i.logger != nil {
		i.logger.DebugContext(ctx, "schema introspected",
			slog.String("database", snapshot.DatabaseName),
			slog.Int("tables", len(snapshot.Tables)),
			slog.String("duration", time.Since(start).String()),
		)
	}
	return snapshot, nil
}

func (i *Introspector) fetch(ctx context.Context) (Snapshot, error) {
	params, err := database.ParseURL(i.rawURL)
	if err != nil {
		return Snapshot{}, err
	}
	db, err := i.open(ctx, params)
	if err != nil {
		return Snapshot{}, fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = db.Close() }()

	return Load(ctx, db, params.Dialect)
}
