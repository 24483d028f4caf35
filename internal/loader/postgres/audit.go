package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gowthamrao/medgen-loader/internal/loader"
)

func (l *Loader) ensureMetadataTables(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, auditLogDDL+";\n"+runDetailsDDL+";\n"+runDetailsIndexDDL)
	return err
}

// LogRunStart inserts the opening row of a run's audit trail and returns its
// log id, which LogRunDetail and LogRunFinish reference thereafter.
func (l *Loader) LogRunStart(ctx context.Context, runID, packageVersion string, mode loader.Mode, releaseVersion string, sourceFiles []loader.SourceFile) (int64, error) {
	manifest := make(map[string]string, len(sourceFiles))
	for _, f := range sourceFiles {
		manifest[f.Name] = f.MD5
	}
	payload, err := json.Marshal(manifest)
	if err != nil {
		return 0, fmt.Errorf("marshaling source file manifest: %w", err)
	}

	var logID int64
	err = l.pool.QueryRow(ctx, `
INSERT INTO etl_audit_log (run_id, package_version, mode, release_version, source_files, status)
VALUES ($1, $2, $3, $4, $5::jsonb, 'In Progress')
RETURNING log_id`,
		runID, packageVersion, string(mode), releaseVersion, string(payload),
	).Scan(&logID)
	if err != nil {
		return 0, fmt.Errorf("logging run start: %w", err)
	}
	return logID, nil
}

// LogRunDetail records one table's row-level outcome for the run identified
// by logID.
func (l *Loader) LogRunDetail(ctx context.Context, logID int64, detail loader.RunDetail) error {
	_, err := l.pool.Exec(ctx, `
INSERT INTO etl_run_details (log_id, table_name, records_extracted, rows_inserted, rows_updated, rows_deleted)
VALUES ($1, $2, $3, $4, $5, $6)`,
		logID, detail.Table, detail.RecordsExtracted, detail.RowsInserted, detail.RowsUpdated, detail.RowsDeleted,
	)
	if err != nil {
		return fmt.Errorf("logging run detail for %s: %w", detail.Table, err)
	}
	return nil
}

// LogRunFinish closes out the run identified by logID with its terminal
// status, the aggregate extracted/loaded counts across every table
// processed, and, on failure, the error that ended it.
func (l *Loader) LogRunFinish(ctx context.Context, logID int64, status string, errMsg string, recordsExtracted, recordsLoaded int64) error {
	var errParam interface{}
	if errMsg != "" {
		errParam = errMsg
	}
	_, err := l.pool.Exec(ctx, `
UPDATE etl_audit_log
SET status = $2, error_message = $3, records_extracted = $4, records_loaded = $5, finished_at = NOW()
WHERE log_id = $1`,
		logID, status, errParam, recordsExtracted, recordsLoaded,
	)
	if err != nil {
		return fmt.Errorf("logging run finish: %w", err)
	}
	return nil
}
