package postgres

import (
	"context"
	"fmt"

	"github.com/gowthamrao/medgen-loader/internal/loader"
)

// Cleanup drops spec's staging, backup, and cdc diff tables. Everything is
// IF EXISTS since a table may never have been created (first run has no
// backup table; a full-mode table never gets cdc diff tables).
func (l *Loader) Cleanup(ctx context.Context, spec loader.TableSpec) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	tables := []string{
		spec.StagingTable,
		spec.BackupTable,
		cdcDeletesTable(spec),
		cdcUpdatesTable(spec),
		cdcInsertsTable(spec),
	}
	for _, t := range tables {
		if _, err := conn.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", t)); err != nil {
			return fmt.Errorf("dropping %s: %w", t, err)
		}
	}
	return nil
}
