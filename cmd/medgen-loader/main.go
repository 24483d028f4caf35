// Command medgen-loader downloads the NCBI MedGen release files over FTP
// and loads them into a Postgres warehouse, either as a full atomic
// replace or as an incremental delta against the currently active rows.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gowthamrao/medgen-loader/internal/config"
	"github.com/gowthamrao/medgen-loader/internal/etl"
	"github.com/gowthamrao/medgen-loader/internal/logging"

	_ "github.com/gowthamrao/medgen-loader/internal/loader/postgres"
)

// packageVersion identifies this build in the audit log, bumped on release.
const packageVersion = "0.1.0"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "medgen-loader:", err)
		return 1
	}

	log := logging.New(cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := etl.Run(ctx, etl.Config{
		DownloadDir:    cfg.DownloadDir,
		DSN:            cfg.DSN,
		Mode:           cfg.Mode,
		MaxParseErrors: cfg.MaxParseErrors,
		NoVerify:       cfg.NoVerify,
		FTPHost:        cfg.FTPHost,
		FTPPath:        cfg.FTPPath,
		PackageVersion: packageVersion,
		Logger:         log,
	})
	if err != nil {
		log.WithError(err).Error("medgen-loader run failed")
		return 1
	}

	log.WithFields(map[string]interface{}{
		"records_extracted": summary.RecordsExtracted,
		"records_loaded":    summary.RecordsLoaded,
		"records_deleted":   summary.RecordsDeleted,
	}).Info("medgen-loader run succeeded")
	return 0
}
