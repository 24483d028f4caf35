package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/gowthamrao/medgen-loader/internal/loader"
)

// ApplyChanges commits a full-mode atomic table swap or a delta-mode
// reconciliation transaction, depending on mode.
func (l *Loader) ApplyChanges(ctx context.Context, spec loader.TableSpec, mode loader.Mode) error {
	switch mode {
	case loader.ModeFull:
		return l.applyFull(ctx, spec)
	case loader.ModeDelta:
		return l.applyDelta(ctx, spec)
	default:
		return fmt.Errorf("unknown apply mode %q", mode)
	}
}

// applyFull builds a production-shaped shadow table from the staged rows,
// replicates the live production table's non-primary-key indexes onto it,
// then swaps it in for the live production table under a short
// rename-only transaction: the old table survives as spec.BackupTable
// rather than being dropped outright.
func (l *Loader) applyFull(ctx context.Context, spec loader.TableSpec) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	shadow := spec.Name + "_new"
	shadowSpec := spec
	shadowSpec.Name = shadow

	var productionExists bool
	if err := conn.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", spec.Name).Scan(&productionExists); err != nil {
		return fmt.Errorf("checking %s existence: %w", spec.Name, err)
	}

	var indexDefs []string
	if productionExists {
		indexDefs, err = discoverIndexes(ctx, conn.Conn(), spec.Name)
		if err != nil {
			return err
		}
	}

	if _, err := conn.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", shadow)); err != nil {
		return fmt.Errorf("dropping stale shadow table %s: %w", shadow, err)
	}
	if _, err := conn.Exec(ctx, productionDDL(shadowSpec)); err != nil {
		return fmt.Errorf("creating shadow table %s: %w", shadow, err)
	}

	mapping := spec.ColumnMapping()
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s, is_active, first_seen_at, last_updated_at) SELECT %s, true, NOW(), NOW() FROM %s s",
		shadow, productionColumnList(mapping), stagingSelectList("s", mapping), spec.StagingTable,
	)
	if _, err := conn.Exec(ctx, insertSQL); err != nil {
		return &loader.ConstraintViolationError{Table: shadow, Err: err}
	}

	if len(indexDefs) == 0 {
		if _, err := conn.Exec(ctx, businessKeyIndexDDL(shadowSpec)); err != nil {
			return fmt.Errorf("indexing shadow table %s: %w", shadow, err)
		}
	} else {
		for _, def := range indexDefs {
			if _, err := conn.Exec(ctx, rewriteIndexForShadow(def, shadow)); err != nil {
				return fmt.Errorf("replicating index onto shadow table %s: %w", shadow, err)
			}
		}
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting swap transaction for %s: %w", spec.Name, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", spec.BackupTable)); err != nil {
		return &loader.TransactionError{Op: "dropping prior backup table", Err: err}
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("ALTER TABLE IF EXISTS %s RENAME TO %s", spec.Name, spec.BackupTable)); err != nil {
		return &loader.TransactionError{Op: "renaming production table to backup", Err: err}
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", shadow, spec.Name)); err != nil {
		return &loader.TransactionError{Op: "renaming shadow table into production", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return &loader.TransactionError{Op: "committing swap", Err: err}
	}
	return nil
}

// applyDelta reconciles the diff ExecuteCDC computed into production inside
// a single transaction: matched rows are updated and reactivated, rows
// absent from staging are soft-deleted, and new rows are inserted.
func (l *Loader) applyDelta(ctx context.Context, spec loader.TableSpec) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	var productionExists bool
	if err := conn.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", spec.Name).Scan(&productionExists); err != nil {
		return fmt.Errorf("checking %s existence: %w", spec.Name, err)
	}
	if !productionExists {
		if _, err := conn.Exec(ctx, productionDDL(spec)); err != nil {
			return fmt.Errorf("creating production table %s: %w", spec.Name, err)
		}
		if _, err := conn.Exec(ctx, businessKeyIndexDDL(spec)); err != nil {
			return fmt.Errorf("indexing production table %s: %w", spec.Name, err)
		}
	}

	mapping := spec.ColumnMapping()
	isBusinessKey := make(map[string]bool, len(spec.BusinessKey))
	for _, c := range spec.BusinessKey {
		isBusinessKey[c] = true
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting delta transaction for %s: %w", spec.Name, err)
	}
	defer tx.Rollback(ctx)

	var setClauses []string
	for _, m := range mapping {
		if isBusinessKey[m.Production] {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = u.%s", m.Production, m.Staging))
	}
	updateSQL := fmt.Sprintf(`
UPDATE %s p SET %s, last_updated_at = NOW(), is_active = true
FROM %s u
WHERE p.%s = u.pk`,
		spec.Name, strings.Join(setClauses, ", "), cdcUpdatesTable(spec), spec.PrimaryKey)
	if _, err := tx.Exec(ctx, updateSQL); err != nil {
		return &loader.TransactionError{Op: "applying updates", Err: err}
	}

	deleteSQL := fmt.Sprintf(
		"UPDATE %s SET is_active = false, last_updated_at = NOW() WHERE %s IN (SELECT id FROM %s)",
		spec.Name, spec.PrimaryKey, cdcDeletesTable(spec),
	)
	if _, err := tx.Exec(ctx, deleteSQL); err != nil {
		return &loader.TransactionError{Op: "applying soft deletes", Err: err}
	}

	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s, is_active, first_seen_at, last_updated_at) SELECT %s, true, NOW(), NOW() FROM %s",
		spec.Name, productionColumnList(mapping), stagingSelectList("", mapping), cdcInsertsTable(spec),
	)
	if _, err := tx.Exec(ctx, insertSQL); err != nil {
		return &loader.TransactionError{Op: "applying inserts", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return &loader.TransactionError{Op: "committing delta", Err: err}
	}
	return nil
}

func productionColumnList(mapping []loader.ColumnMap) string {
	cols := make([]string, len(mapping))
	for i, m := range mapping {
		cols[i] = m.Production
	}
	return strings.Join(cols, ", ")
}

// stagingSelectList renders each mapping entry's staging column, optionally
// qualified by alias (pass "" to select bare column names, e.g. from a
// cdc_inserts table with no alias needed).
func stagingSelectList(alias string, mapping []loader.ColumnMap) string {
	cols := make([]string, len(mapping))
	for i, m := range mapping {
		if alias == "" {
			cols[i] = m.Staging
		} else {
			cols[i] = alias + "." + m.Staging
		}
	}
	return strings.Join(cols, ", ")
}
