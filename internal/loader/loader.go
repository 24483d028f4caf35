// Package loader defines the native-database loading contract the ETL
// orchestrator drives, and a DSN-scheme factory that selects a concrete
// implementation — mirroring the teacher's adapter-per-dialect registry,
// scoped down to the one capability bundle this pipeline needs.
package loader

import (
	"context"
	"io"
)

// Mode selects how ApplyChanges reconciles staged rows into production.
type Mode string

const (
	// ModeFull atomically swaps a freshly bulk-loaded table in for the
	// existing production table.
	ModeFull Mode = "full"
	// ModeDelta reconciles only the rows that changed since the last run.
	ModeDelta Mode = "delta"
)

// ColumnMap pairs a production column with the staging column that
// populates it. Most tables are an identity mapping; medgen_sources is not
// (its production table carries a renamed subset of MRSAT's staging
// columns), so apply and CDC operations always go through this mapping
// rather than assuming the two column sets line up positionally.
type ColumnMap struct {
	Production string
	Staging    string
}

// TableSpec describes one logical MedGen table: its staging and production
// names, its full data-column list, the natural key the CDC diff keys off
// of, and the surrogate primary key column production carries.
type TableSpec struct {
	Name         string
	StagingTable string
	BackupTable  string
	PrimaryKey   string
	BusinessKey  []string
	Columns      []string
	// Mapping overrides the default identity production<->staging column
	// mapping. Leave nil for tables whose production columns are named and
	// ordered exactly like Columns.
	Mapping    []ColumnMap
	SourceFile string
}

// ColumnMapping returns spec's effective production<->staging column
// mapping: Mapping itself when set, otherwise an identity mapping over
// Columns.
func (s TableSpec) ColumnMapping() []ColumnMap {
	if len(s.Mapping) > 0 {
		return s.Mapping
	}
	m := make([]ColumnMap, len(s.Columns))
	for i, c := range s.Columns {
		m[i] = ColumnMap{Production: c, Staging: c}
	}
	return m
}

// ProductionColumns returns the production column names in mapping order.
func (s TableSpec) ProductionColumns() []string {
	mapping := s.ColumnMapping()
	cols := make([]string, len(mapping))
	for i, m := range mapping {
		cols[i] = m.Production
	}
	return cols
}

// CDCResult summarizes the diff execute_cdc computed between a staging load
// and the current production table.
type CDCResult struct {
	Inserts int64
	Updates int64
	Deletes int64
}

// SourceFile pairs a source filename with the MD5 digest it was
// downloaded and verified against, for audit logging.
type SourceFile struct {
	Name string
	MD5  string
}

// RunDetail is one table's contribution to a run, logged once that table's
// work completes. RecordsExtracted is the row count the bulk load accepted
// into staging, independent of how many of those rows turned out to be
// inserts/updates/deletes once reconciled into production.
type RunDetail struct {
	Table            string
	RecordsExtracted int64
	RowsInserted     int64
	RowsUpdated      int64
	RowsDeleted      int64
}

// Loader is the native bulk-load and change-data-capture contract a
// database dialect must implement. Every method assumes the caller holds a
// live connection acquired via Connect; Close releases it.
type Loader interface {
	Close(ctx context.Context) error

	// InitializeStaging drops and recreates spec's staging table, empty,
	// ready to receive a bulk load.
	InitializeStaging(ctx context.Context, spec TableSpec) error

	// BulkLoad streams rows (COPY TEXT format, one record per line) into
	// spec's staging table and reports the rows accepted.
	BulkLoad(ctx context.Context, spec TableSpec, rows io.Reader) (int64, error)

	// ExecuteCDC compares the staged rows against the current production
	// table by business key and row hash, recording the diff in
	// session-independent delta tables for ApplyChanges to consume.
	ExecuteCDC(ctx context.Context, spec TableSpec) (CDCResult, error)

	// ApplyChanges commits the diff ExecuteCDC computed (delta mode) or
	// swaps the staged table in as production (full mode).
	ApplyChanges(ctx context.Context, spec TableSpec, mode Mode) error

	// Cleanup drops the staging, backup, and delta tables for spec.
	Cleanup(ctx context.Context, spec TableSpec) error

	// LogRunStart records the beginning of a pipeline run and returns its
	// audit log id.
	LogRunStart(ctx context.Context, runID, packageVersion string, mode Mode, releaseVersion string, sourceFiles []SourceFile) (int64, error)

	// LogRunDetail records one table's outcome within a run.
	LogRunDetail(ctx context.Context, logID int64, detail RunDetail) error

	// LogRunFinish closes out a run with its terminal status and the
	// aggregate extracted/loaded row counts across every table processed.
	LogRunFinish(ctx context.Context, logID int64, status string, errMsg string, recordsExtracted, recordsLoaded int64) error
}
