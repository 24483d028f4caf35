package etl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gowthamrao/medgen-loader/internal/encoder"
	"github.com/gowthamrao/medgen-loader/internal/fetcher"
	"github.com/gowthamrao/medgen-loader/internal/loader"
	"github.com/gowthamrao/medgen-loader/internal/parser"
)

// releaseNotesFile is the well-known file FetchReleaseVersion scans for a
// version marker; MedGen's release directory does not always carry one, in
// which case FetchReleaseVersion degrades to "Unknown" rather than failing.
const releaseNotesFile = "README"

// Config drives one orchestrator run.
type Config struct {
	DownloadDir    string
	DSN            string
	Mode           loader.Mode
	MaxParseErrors int
	NoVerify       bool
	FTPHost        string
	FTPPath        string
	PackageVersion string
	Logger         *logrus.Logger
}

// Summary totals one run's outcome across every configured table.
type Summary struct {
	RecordsExtracted int64
	RecordsLoaded    int64
	RecordsDeleted   int64
}

// Run executes a full pipeline pass: connect, fetch, and for every
// configured table, stage, diff/apply, and clean up, recording an audit
// trail throughout. On a failure while processing the tables it records a
// Failed audit entry — using a fresh database connection, since the working
// one may no longer be usable — and returns the error. Failures before the
// run's audit row is opened (FTP connect, listing, checksum manifest,
// database connect) are returned without any audit entry.
func Run(ctx context.Context, cfg Config) (Summary, error) {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	runID := uuid.NewString()

	if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating download directory: %w", err)
	}

	ftpClient, err := fetcher.Connect(ctx, fetcher.Config{Host: cfg.FTPHost, Path: cfg.FTPPath, Logger: log})
	if err != nil {
		return Summary{}, fmt.Errorf("connecting to ftp source: %w", err)
	}
	defer ftpClient.Close()

	files, err := ftpClient.List(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("listing remote files: %w", err)
	}

	var checksums map[string]string
	if !cfg.NoVerify {
		checksums, err = ftpClient.FetchChecksums(ctx, files)
		if err != nil {
			return Summary{}, fmt.Errorf("fetching checksum manifest: %w", err)
		}
	}

	releaseVersion := ftpClient.FetchReleaseVersion(ctx, releaseNotesFile)

	ld, err := loader.New(ctx, cfg.DSN, log)
	if err != nil {
		return Summary{}, fmt.Errorf("connecting to target database: %w", err)
	}

	tables := Tables()
	sourceFiles := make([]loader.SourceFile, len(tables))
	for i, t := range tables {
		sourceFiles[i] = loader.SourceFile{Name: t.Spec.SourceFile, MD5: checksums[t.Spec.SourceFile]}
	}

	logID, err := ld.LogRunStart(ctx, runID, cfg.PackageVersion, cfg.Mode, releaseVersion, sourceFiles)
	if err != nil {
		_ = ld.Close(ctx)
		return Summary{}, fmt.Errorf("recording run start: %w", err)
	}

	summary, runErr := runTables(ctx, cfg, log, ld, ftpClient, checksums, logID, tables)
	if runErr != nil {
		log.WithError(runErr).Error("pipeline run failed")
		finishErr := recordFailure(ctx, cfg, log, logID, runErr, summary)
		if finishErr != nil {
			log.WithError(finishErr).Error("failed to record terminal failure in audit log")
		}
		_ = ld.Close(ctx)
		return summary, runErr
	}

	if err := ld.LogRunFinish(ctx, logID, "Succeeded", "", summary.RecordsExtracted, summary.RecordsLoaded); err != nil {
		_ = ld.Close(ctx)
		return summary, fmt.Errorf("recording run finish: %w", err)
	}
	return summary, ld.Close(ctx)
}

func runTables(ctx context.Context, cfg Config, log *logrus.Logger, ld loader.Loader, ftpClient *fetcher.Client, checksums map[string]string, logID int64, tables []TableConfig) (Summary, error) {
	var summary Summary

	for _, t := range tables {
		log.Infof("processing %s", t.Spec.Name)

		localPath, err := ftpClient.Download(ctx, t.Spec.SourceFile, cfg.DownloadDir, checksums, cfg.NoVerify)
		if err != nil {
			return summary, fmt.Errorf("downloading %s: %w", t.Spec.SourceFile, err)
		}

		if err := ld.InitializeStaging(ctx, t.Spec); err != nil {
			return summary, fmt.Errorf("initializing staging for %s: %w", t.Spec.Name, err)
		}

		detail, err := loadTable(ctx, cfg, ld, t, localPath)
		if err != nil {
			return summary, err
		}

		if err := ld.LogRunDetail(ctx, logID, detail); err != nil {
			return summary, fmt.Errorf("recording run detail for %s: %w", t.Spec.Name, err)
		}
		if err := ld.Cleanup(ctx, t.Spec); err != nil {
			return summary, fmt.Errorf("cleaning up %s: %w", t.Spec.Name, err)
		}

		summary.RecordsExtracted += detail.RecordsExtracted
		summary.RecordsLoaded += detail.RowsInserted + detail.RowsUpdated
		summary.RecordsDeleted += detail.RowsDeleted
	}
	return summary, nil
}

func loadTable(ctx context.Context, cfg Config, ld loader.Loader, t TableConfig, localPath string) (loader.RunDetail, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return loader.RunDetail{}, fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer f.Close()

	next, errFn, err := t.NewReader(f, filepath.Base(localPath), parser.Options{MaxErrors: cfg.MaxParseErrors, Logger: cfg.Logger})
	if err != nil {
		return loader.RunDetail{}, fmt.Errorf("opening parser for %s: %w", t.Spec.SourceFile, err)
	}

	rowsLoaded, err := ld.BulkLoad(ctx, t.Spec, encoder.NewRowReader(next))
	if err != nil {
		return loader.RunDetail{}, fmt.Errorf("bulk loading %s: %w", t.Spec.Name, err)
	}
	if parseErr := errFn(); parseErr != nil {
		return loader.RunDetail{}, fmt.Errorf("parsing %s: %w", t.Spec.SourceFile, parseErr)
	}

	detail := loader.RunDetail{Table: t.Spec.Name, RecordsExtracted: rowsLoaded}

	switch cfg.Mode {
	case loader.ModeFull:
		if err := ld.ApplyChanges(ctx, t.Spec, loader.ModeFull); err != nil {
			return loader.RunDetail{}, fmt.Errorf("applying full load for %s: %w", t.Spec.Name, err)
		}
		detail.RowsInserted = rowsLoaded
	case loader.ModeDelta:
		cdcResult, err := ld.ExecuteCDC(ctx, t.Spec)
		if err != nil {
			return loader.RunDetail{}, fmt.Errorf("computing delta for %s: %w", t.Spec.Name, err)
		}
		if err := ld.ApplyChanges(ctx, t.Spec, loader.ModeDelta); err != nil {
			return loader.RunDetail{}, fmt.Errorf("applying delta for %s: %w", t.Spec.Name, err)
		}
		detail.RowsInserted = cdcResult.Inserts
		detail.RowsUpdated = cdcResult.Updates
		detail.RowsDeleted = cdcResult.Deletes
	default:
		return loader.RunDetail{}, fmt.Errorf("unknown mode %q", cfg.Mode)
	}

	return detail, nil
}

// recordFailure writes the terminal Failed audit row using a brand new
// database connection, since the connection a mid-run failure occurred on
// may no longer be usable. summary carries whatever totals accumulated
// across the tables that completed before the failure.
func recordFailure(ctx context.Context, cfg Config, log *logrus.Logger, logID int64, runErr error, summary Summary) error {
	ld, err := loader.New(ctx, cfg.DSN, log)
	if err != nil {
		return fmt.Errorf("reconnecting to record failure: %w", err)
	}
	defer ld.Close(ctx)

	msg := fmt.Sprintf("%v\n%s", runErr, debug.Stack())
	return ld.LogRunFinish(ctx, logID, "Failed", strings.TrimSpace(msg), summary.RecordsExtracted, summary.RecordsLoaded)
}
