//go:build integration

package postgres_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/gowthamrao/medgen-loader/internal/loader"
	pg "github.com/gowthamrao/medgen-loader/internal/loader/postgres"
)

func startContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("medgen"),
		tcpostgres.WithUsername("medgen"),
		tcpostgres.WithPassword("medgen"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func testSpec() loader.TableSpec {
	return loader.TableSpec{
		Name:         "mrsty",
		StagingTable: "stg_mrsty",
		BackupTable:  "mrsty_backup",
		PrimaryKey:   "id",
		BusinessKey:  []string{"cui", "tui"},
		Columns:      []string{"cui", "tui", "stn", "sty", "atui", "cvf", "raw_record"},
	}
}

// TestFullLoadThenDeltaReconciliation exercises the full end-to-end cycle:
// an initial full load, followed by a delta run that inserts a new row,
// updates an existing one, and soft-deletes one that disappeared upstream.
func TestFullLoadThenDeltaReconciliation(t *testing.T) {
	dsn := startContainer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	ld, err := pg.Connect(ctx, dsn, nil)
	require.NoError(t, err)
	defer ld.Close(ctx)

	spec := testSpec()

	// --- full load ---
	require.NoError(t, ld.InitializeStaging(ctx, spec))
	initial := "C1\tT1\tA1\tOne\t\\N\t\\N\tC1|T1|A1|One||\n" +
		"C2\tT2\tA2\tTwo\t\\N\t\\N\tC2|T2|A2|Two||\n"
	n, err := ld.BulkLoad(ctx, spec, strings.NewReader(initial))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	require.NoError(t, ld.ApplyChanges(ctx, spec, loader.ModeFull))
	require.NoError(t, ld.Cleanup(ctx, spec))

	// --- delta load: C1 changes, C2 disappears, C3 is new ---
	require.NoError(t, ld.InitializeStaging(ctx, spec))
	delta := "C1\tT1\tA1\tOne Updated\t\\N\t\\N\tC1|T1|A1|One Updated||\n" +
		"C3\tT3\tA3\tThree\t\\N\t\\N\tC3|T3|A3|Three||\n"
	n, err = ld.BulkLoad(ctx, spec, strings.NewReader(delta))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	result, err := ld.ExecuteCDC(ctx, spec)
	require.NoError(t, err)
	require.EqualValues(t, 1, result.Inserts)
	require.EqualValues(t, 1, result.Updates)
	require.EqualValues(t, 1, result.Deletes)

	require.NoError(t, ld.ApplyChanges(ctx, spec, loader.ModeDelta))
	require.NoError(t, ld.Cleanup(ctx, spec))
}

// TestExecuteCDC_FirstRunWithNoProductionTable exercises a delta run against
// a table that has never been loaded before: every staged row must surface
// as an insert rather than ExecuteCDC erroring outright.
func TestExecuteCDC_FirstRunWithNoProductionTable(t *testing.T) {
	dsn := startContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ld, err := pg.Connect(ctx, dsn, nil)
	require.NoError(t, err)
	defer ld.Close(ctx)

	spec := testSpec()
	require.NoError(t, ld.InitializeStaging(ctx, spec))
	rows := "C1\tT1\tA1\tOne\t\\N\t\\N\tC1|T1|A1|One||\n"
	_, err = ld.BulkLoad(ctx, spec, strings.NewReader(rows))
	require.NoError(t, err)

	result, err := ld.ExecuteCDC(ctx, spec)
	require.NoError(t, err)
	require.EqualValues(t, 1, result.Inserts)
	require.Zero(t, result.Updates)
	require.Zero(t, result.Deletes)

	require.NoError(t, ld.ApplyChanges(ctx, spec, loader.ModeDelta))
	require.NoError(t, ld.Cleanup(ctx, spec))
}

func TestAuditLogLifecycle(t *testing.T) {
	dsn := startContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ld, err := pg.Connect(ctx, dsn, nil)
	require.NoError(t, err)
	defer ld.Close(ctx)

	logID, err := ld.LogRunStart(ctx, "run-1", "0.1.0", loader.ModeFull, "2025-09", []loader.SourceFile{
		{Name: "MRCONSO.RRF", MD5: "abc123"},
	})
	require.NoError(t, err)
	require.NotZero(t, logID)

	require.NoError(t, ld.LogRunDetail(ctx, logID, loader.RunDetail{Table: "mrsty", RecordsExtracted: 2, RowsInserted: 2}))
	require.NoError(t, ld.LogRunFinish(ctx, logID, "Succeeded", "", 2, 2))
}
