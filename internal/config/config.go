// Package config assembles the command-line flags and environment
// variables the loader needs into a single validated Config value, in the
// same stdlib flag style the teacher's own CLI entry point uses.
package config

import (
	"errors"
	"flag"
	"os"

	"github.com/gowthamrao/medgen-loader/internal/loader"
)

// ErrMissingDSN is returned when neither --db-dsn nor MEDGEN_DB_DSN supplies
// a connection string.
var ErrMissingDSN = errors.New("no database DSN provided: pass --db-dsn or set MEDGEN_DB_DSN")

// Config holds every flag/environment value the orchestrator needs.
type Config struct {
	DownloadDir    string
	DSN            string
	Mode           loader.Mode
	MaxParseErrors int
	NoVerify       bool
	FTPHost        string
	FTPPath        string
	LogFormat      string
}

// Parse reads args (typically os.Args[1:]) and the process environment into
// a validated Config.
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("medgen-loader", flag.ContinueOnError)

	downloadDir := fs.String("download-dir", ".", "local directory to download MedGen source files into")
	dbDSN := fs.String("db-dsn", "", "target database connection string (falls back to MEDGEN_DB_DSN)")
	mode := fs.String("mode", "full", "load mode: full or delta")
	maxParseErrors := fs.Int("max-parse-errors", 100, "maximum malformed lines tolerated per source file before aborting")
	noVerify := fs.Bool("no-verify", false, "skip checksum manifest fetch and verification")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	dsn := *dbDSN
	if dsn == "" {
		dsn = os.Getenv("MEDGEN_DB_DSN")
	}
	if dsn == "" {
		return Config{}, ErrMissingDSN
	}

	m := loader.Mode(*mode)
	if m != loader.ModeFull && m != loader.ModeDelta {
		return Config{}, errors.New("--mode must be \"full\" or \"delta\"")
	}

	return Config{
		DownloadDir:    *downloadDir,
		DSN:            dsn,
		Mode:           m,
		MaxParseErrors: *maxParseErrors,
		NoVerify:       *noVerify,
		FTPHost:        os.Getenv("MEDGEN_FTP_HOST"),
		FTPPath:        os.Getenv("MEDGEN_FTP_PATH"),
		LogFormat:      os.Getenv("LOG_FORMAT"),
	}, nil
}
