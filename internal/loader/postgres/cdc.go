package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/gowthamrao/medgen-loader/internal/loader"
)

// ExecuteCDC diffs spec's staging table against its production table by
// business key and a whole-row MD5 hash, recording the result in three
// ordinary tables (cdc_deletes_<name>, cdc_updates_<name>, cdc_inserts_<name>)
// that ApplyChanges consumes. These are plain tables rather than
// session-scoped temp tables because the pool hands ExecuteCDC and
// ApplyChanges unrelated physical connections; Cleanup drops them once a
// table's run is done.
//
// cdc_updates carries a full staging-shaped row alongside the matched
// production pk, so the delta apply can update from it directly without
// rejoining staging. cdc_inserts is deduplicated against cdc_updates on
// every business-key column - a deliberate strengthening over a
// single-column dedup that is only safe for single-column keys.
//
// When production doesn't exist yet (the table's first delta run), every
// staged row is classified as an insert and deletes/updates are skipped
// entirely rather than erroring - applyDelta creates production from this
// run's cdc_inserts.
func (l *Loader) ExecuteCDC(ctx context.Context, spec loader.TableSpec) (loader.CDCResult, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return loader.CDCResult{}, fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	mapping := spec.ColumnMapping()
	bk := spec.BusinessKey

	_, err = conn.Exec(ctx, fmt.Sprintf(`
DROP TABLE IF EXISTS %s, %s, %s;
CREATE TABLE %s (id BIGINT);
CREATE TABLE %s (pk INT, LIKE %s INCLUDING DEFAULTS);
CREATE TABLE %s (LIKE %s INCLUDING DEFAULTS)`,
		cdcDeletesTable(spec), cdcUpdatesTable(spec), cdcInsertsTable(spec),
		cdcDeletesTable(spec),
		cdcUpdatesTable(spec), spec.StagingTable,
		cdcInsertsTable(spec), spec.StagingTable))
	if err != nil {
		return loader.CDCResult{}, fmt.Errorf("preparing cdc tables for %s: %w", spec.Name, err)
	}

	var productionExists bool
	if err := conn.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", spec.Name).Scan(&productionExists); err != nil {
		return loader.CDCResult{}, fmt.Errorf("checking %s existence: %w", spec.Name, err)
	}
	if !productionExists {
		// No production table yet: every staging row is a first-time
		// insert, and there is nothing to delete or update against.
		insertAllSQL := fmt.Sprintf(
			"INSERT INTO %s (%s) SELECT %s FROM %s s",
			cdcInsertsTable(spec), columnList(spec.Columns), qualifiedList("s", spec.Columns), spec.StagingTable,
		)
		insertsTag, err := conn.Exec(ctx, insertAllSQL)
		if err != nil {
			return loader.CDCResult{}, fmt.Errorf("computing inserts for %s: %w", spec.Name, err)
		}
		return loader.CDCResult{Inserts: insertsTag.RowsAffected()}, nil
	}

	bkJoin := joinCondition("p", "s", bk)

	deleteSQL := fmt.Sprintf(`
INSERT INTO %s (id)
SELECT p.%s FROM %s p
WHERE p.is_active = true
AND NOT EXISTS (SELECT 1 FROM %s s WHERE %s)`,
		cdcDeletesTable(spec), spec.PrimaryKey, spec.Name, spec.StagingTable, bkJoin)
	deletesTag, err := conn.Exec(ctx, deleteSQL)
	if err != nil {
		return loader.CDCResult{}, fmt.Errorf("computing deletes for %s: %w", spec.Name, err)
	}

	updateSQL := fmt.Sprintf(`
INSERT INTO %s (pk, %s)
SELECT p.%s, %s FROM %s p
JOIN %s s ON %s
WHERE (p.is_active = true AND MD5(ROW(%s)::TEXT) <> MD5(ROW(%s)::TEXT))
OR p.is_active = false`,
		cdcUpdatesTable(spec), columnList(spec.Columns),
		spec.PrimaryKey, qualifiedList("s", spec.Columns), spec.Name, spec.StagingTable, bkJoin,
		hashExpr("p", mapping), hashExpr("s", mapping))
	updatesTag, err := conn.Exec(ctx, updateSQL)
	if err != nil {
		return loader.CDCResult{}, fmt.Errorf("computing updates for %s: %w", spec.Name, err)
	}

	insertSQL := fmt.Sprintf(`
INSERT INTO %s (%s)
SELECT %s FROM %s s
WHERE NOT EXISTS (
    SELECT 1 FROM %s p WHERE p.is_active = true AND %s
)
AND NOT EXISTS (
    SELECT 1 FROM %s u WHERE %s
)`,
		cdcInsertsTable(spec), columnList(spec.Columns), qualifiedList("s", spec.Columns), spec.StagingTable,
		spec.Name, bkJoin,
		cdcUpdatesTable(spec), joinCondition("u", "s", bk))
	insertsTag, err := conn.Exec(ctx, insertSQL)
	if err != nil {
		return loader.CDCResult{}, fmt.Errorf("computing inserts for %s: %w", spec.Name, err)
	}

	return loader.CDCResult{
		Inserts: insertsTag.RowsAffected(),
		Updates: updatesTag.RowsAffected(),
		Deletes: deletesTag.RowsAffected(),
	}, nil
}

// hashExpr renders the "alias.col1, alias.col2, ..." list of every hashed
// column, which the caller wraps in MD5(ROW(...)::TEXT), skipping raw_record
// so cosmetic re-whitespacing of a source line never causes a spurious update.
func hashExpr(alias string, mapping []loader.ColumnMap) string {
	cols := make([]string, 0, len(mapping))
	for _, m := range mapping {
		if m.Production == "raw_record" {
			continue
		}
		if alias == "p" {
			cols = append(cols, alias+"."+m.Production)
		} else {
			cols = append(cols, alias+"."+m.Staging)
		}
	}
	return strings.Join(cols, ", ")
}

func cdcDeletesTable(spec loader.TableSpec) string { return "cdc_deletes_" + spec.Name }
func cdcUpdatesTable(spec loader.TableSpec) string { return "cdc_updates_" + spec.Name }
func cdcInsertsTable(spec loader.TableSpec) string { return "cdc_inserts_" + spec.Name }

func dataColumns(spec loader.TableSpec) []string {
	cols := make([]string, 0, len(spec.Columns))
	for _, c := range spec.Columns {
		if c == "raw_record" {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

func joinCondition(leftAlias, rightAlias string, keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s.%s = %s.%s", leftAlias, k, rightAlias, k)
	}
	return strings.Join(parts, " AND ")
}

func qualifiedList(alias string, cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s.%s", alias, c)
	}
	return strings.Join(parts, ", ")
}
