package etl

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gowthamrao/medgen-loader/internal/loader"
)

type fakeLoader struct {
	bulkLoadRows  int64
	cdcResult     loader.CDCResult
	applyModes    []loader.Mode
	appliedSpecs  []string
	bulkLoadErr   error
	cdcErr        error
	applyErr      error
}

func (f *fakeLoader) Close(ctx context.Context) error { return nil }

func (f *fakeLoader) InitializeStaging(ctx context.Context, spec loader.TableSpec) error {
	return nil
}

func (f *fakeLoader) BulkLoad(ctx context.Context, spec loader.TableSpec, rows io.Reader) (int64, error) {
	if f.bulkLoadErr != nil {
		return 0, f.bulkLoadErr
	}
	n, err := io.Copy(io.Discard, rows)
	if err != nil {
		return 0, err
	}
	_ = n
	return f.bulkLoadRows, nil
}

func (f *fakeLoader) ExecuteCDC(ctx context.Context, spec loader.TableSpec) (loader.CDCResult, error) {
	return f.cdcResult, f.cdcErr
}

func (f *fakeLoader) ApplyChanges(ctx context.Context, spec loader.TableSpec, mode loader.Mode) error {
	f.applyModes = append(f.applyModes, mode)
	f.appliedSpecs = append(f.appliedSpecs, spec.Name)
	return f.applyErr
}

func (f *fakeLoader) Cleanup(ctx context.Context, spec loader.TableSpec) error { return nil }

func (f *fakeLoader) LogRunStart(ctx context.Context, runID, packageVersion string, mode loader.Mode, releaseVersion string, sourceFiles []loader.SourceFile) (int64, error) {
	return 1, nil
}

func (f *fakeLoader) LogRunDetail(ctx context.Context, logID int64, detail loader.RunDetail) error {
	return nil
}

func (f *fakeLoader) LogRunFinish(ctx context.Context, logID int64, status string, errMsg string, recordsExtracted, recordsLoaded int64) error {
	return nil
}

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTable_FullMode_ReportsRowsLoadedAsInserted(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "MRSTY.RRF", "C1|T1|A1|Organic Chemical||\n")

	tables := Tables()
	var mrsty TableConfig
	for _, tc := range tables {
		if tc.Spec.Name == "medgen_semantic_types" {
			mrsty = tc
		}
	}
	require.NotEmpty(t, mrsty.Spec.Name)

	fl := &fakeLoader{bulkLoadRows: 1}
	detail, err := loadTable(context.Background(), Config{Mode: loader.ModeFull}, fl, mrsty, path)
	require.NoError(t, err)
	assert.EqualValues(t, 1, detail.RecordsExtracted)
	assert.EqualValues(t, 1, detail.RowsInserted)
	assert.EqualValues(t, 0, detail.RowsUpdated)
	assert.Equal(t, []loader.Mode{loader.ModeFull}, fl.applyModes)
}

func TestLoadTable_DeltaMode_ReportsCDCCounts(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "MRSTY.RRF", "C1|T1|A1|Organic Chemical||\n")

	tables := Tables()
	var mrsty TableConfig
	for _, tc := range tables {
		if tc.Spec.Name == "medgen_semantic_types" {
			mrsty = tc
		}
	}

	fl := &fakeLoader{bulkLoadRows: 5, cdcResult: loader.CDCResult{Inserts: 2, Updates: 3, Deletes: 1}}
	detail, err := loadTable(context.Background(), Config{Mode: loader.ModeDelta}, fl, mrsty, path)
	require.NoError(t, err)
	assert.EqualValues(t, 5, detail.RecordsExtracted)
	assert.EqualValues(t, 2, detail.RowsInserted)
	assert.EqualValues(t, 3, detail.RowsUpdated)
	assert.EqualValues(t, 1, detail.RowsDeleted)
}

func TestLoadTable_ParseBudgetExceeded_Fails(t *testing.T) {
	dir := t.TempDir()
	// five malformed rows with a max-errors budget of zero.
	path := writeTempFile(t, dir, "MRSTY.RRF", "bad\nbad\n")

	tables := Tables()
	var mrsty TableConfig
	for _, tc := range tables {
		if tc.Spec.Name == "medgen_semantic_types" {
			mrsty = tc
		}
	}

	fl := &fakeLoader{bulkLoadRows: 0}
	_, err := loadTable(context.Background(), Config{Mode: loader.ModeFull, MaxParseErrors: 1}, fl, mrsty, path)
	require.Error(t, err)
}
