// Package postgres is the native Postgres Loader: pgx-pooled connections,
// raw-protocol COPY bulk loading, and the CDC diff/apply SQL that
// reconciles a staged load into production.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/gowthamrao/medgen-loader/internal/loader"
)

func init() {
	loader.Register("postgres", Connect)
	loader.Register("postgresql", Connect)
}

// Loader is the Postgres-backed implementation of loader.Loader.
type Loader struct {
	pool   *pgxpool.Pool
	logger *logrus.Logger
}

// Connect opens a pooled connection to dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string, logger *logrus.Logger) (loader.Loader, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	l := &Loader{pool: pool, logger: logger}
	if err := l.ensureMetadataTables(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing audit metadata tables: %w", err)
	}
	return l, nil
}

// Close releases the connection pool.
func (l *Loader) Close(ctx context.Context) error {
	l.pool.Close()
	return nil
}

func (l *Loader) debugf(format string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Debugf(format, args...)
	}
}
