package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gowthamrao/medgen-loader/internal/loader"
)

func TestParse_DSNFromFlag(t *testing.T) {
	os.Unsetenv("MEDGEN_DB_DSN")
	cfg, err := Parse([]string{"--db-dsn", "postgres://u:p@localhost/db"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost/db", cfg.DSN)
	assert.Equal(t, loader.ModeFull, cfg.Mode)
	assert.Equal(t, ".", cfg.DownloadDir)
	assert.Equal(t, 100, cfg.MaxParseErrors)
	assert.False(t, cfg.NoVerify)
}

func TestParse_DSNFromEnvironment(t *testing.T) {
	t.Setenv("MEDGEN_DB_DSN", "postgres://env/db")
	cfg, err := Parse([]string{})
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/db", cfg.DSN)
}

func TestParse_MissingDSN(t *testing.T) {
	os.Unsetenv("MEDGEN_DB_DSN")
	_, err := Parse([]string{})
	assert.ErrorIs(t, err, ErrMissingDSN)
}

func TestParse_InvalidMode(t *testing.T) {
	t.Setenv("MEDGEN_DB_DSN", "postgres://env/db")
	_, err := Parse([]string{"--mode", "bogus"})
	assert.Error(t, err)
}

func TestParse_DeltaModeAndNoVerify(t *testing.T) {
	cfg, err := Parse([]string{"--db-dsn", "postgres://x/y", "--mode", "delta", "--no-verify"})
	require.NoError(t, err)
	assert.Equal(t, loader.ModeDelta, cfg.Mode)
	assert.True(t, cfg.NoVerify)
}
