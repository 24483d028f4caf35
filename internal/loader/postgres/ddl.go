package postgres

import (
	"fmt"
	"strings"

	"github.com/gowthamrao/medgen-loader/internal/loader"
)

// stagingDDL builds a staging table: every declared column as TEXT, no
// constraints, so malformed upstream data never blocks a bulk load.
func stagingDDL(spec loader.TableSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", spec.StagingTable)
	for i, col := range spec.Columns {
		fmt.Fprintf(&b, "    %s TEXT", col)
		if i < len(spec.Columns)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String()
}

// productionDDL builds the production table: a surrogate serial primary
// key, every production column as TEXT (NOT NULL on business-key columns,
// since those drive the CDC join), plus the soft-delete/reactivation
// bookkeeping columns every production table carries.
func productionDDL(spec loader.TableSpec) string {
	isBusinessKey := make(map[string]bool, len(spec.BusinessKey))
	for _, c := range spec.BusinessKey {
		isBusinessKey[c] = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", spec.Name)
	fmt.Fprintf(&b, "    %s SERIAL PRIMARY KEY,\n", spec.PrimaryKey)
	for _, col := range spec.ProductionColumns() {
		nullability := ""
		if isBusinessKey[col] {
			nullability = " NOT NULL"
		}
		fmt.Fprintf(&b, "    %s TEXT%s,\n", col, nullability)
	}
	b.WriteString("    is_active BOOLEAN NOT NULL DEFAULT TRUE,\n")
	b.WriteString("    first_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),\n")
	b.WriteString("    last_updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()\n")
	b.WriteString(")")
	return b.String()
}

func businessKeyIndexDDL(spec loader.TableSpec) string {
	return fmt.Sprintf(
		"CREATE UNIQUE INDEX %s_business_key_idx ON %s (%s)",
		spec.Name, spec.Name, strings.Join(spec.BusinessKey, ", "),
	)
}

const auditLogDDL = `
CREATE TABLE IF NOT EXISTS etl_audit_log (
    log_id BIGSERIAL PRIMARY KEY,
    run_id TEXT NOT NULL,
    package_version TEXT NOT NULL,
    mode TEXT NOT NULL,
    release_version TEXT,
    source_files JSONB,
    status TEXT NOT NULL,
    records_extracted BIGINT NOT NULL DEFAULT 0,
    records_loaded BIGINT NOT NULL DEFAULT 0,
    error_message TEXT,
    started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    finished_at TIMESTAMPTZ
)`

const runDetailsDDL = `
CREATE TABLE IF NOT EXISTS etl_run_details (
    detail_id BIGSERIAL PRIMARY KEY,
    log_id BIGINT NOT NULL REFERENCES etl_audit_log (log_id),
    table_name TEXT NOT NULL,
    records_extracted BIGINT NOT NULL DEFAULT 0,
    rows_inserted BIGINT NOT NULL DEFAULT 0,
    rows_updated BIGINT NOT NULL DEFAULT 0,
    rows_deleted BIGINT NOT NULL DEFAULT 0,
    recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const runDetailsIndexDDL = `
CREATE INDEX IF NOT EXISTS etl_run_details_log_id_idx ON etl_run_details (log_id)`
