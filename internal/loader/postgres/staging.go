package postgres

import (
	"context"
	"fmt"
	"io"

	"github.com/gowthamrao/medgen-loader/internal/loader"
)

// InitializeStaging drops and recreates spec's staging table empty.
func (l *Loader) InitializeStaging(ctx context.Context, spec loader.TableSpec) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", spec.StagingTable)); err != nil {
		return fmt.Errorf("dropping staging table %s: %w", spec.StagingTable, err)
	}
	if _, err := conn.Exec(ctx, stagingDDL(spec)); err != nil {
		return fmt.Errorf("creating staging table %s: %w", spec.StagingTable, err)
	}
	return nil
}

// BulkLoad streams rows into spec's staging table over the raw COPY FROM
// STDIN protocol, using the TEXT format with "\N" as the NULL sentinel -
// the same contract the encoder package produces.
func (l *Loader) BulkLoad(ctx context.Context, spec loader.TableSpec, rows io.Reader) (int64, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	copySQL := fmt.Sprintf(
		"COPY %s (%s) FROM STDIN WITH (FORMAT TEXT, NULL '\\N')",
		spec.StagingTable, columnList(spec.Columns),
	)

	tag, err := conn.Conn().PgConn().CopyFrom(ctx, rows, copySQL)
	if err != nil {
		return 0, &loader.ConstraintViolationError{Table: spec.StagingTable, Err: err}
	}
	return tag.RowsAffected(), nil
}

func columnList(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
