package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gowthamrao/medgen-loader/internal/loader"
)

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

func TestStagingDDL_AllColumnsAreText(t *testing.T) {
	ddl := stagingDDL(testSpec())
	assert.Contains(t, ddl, "CREATE TABLE stg_mrsty (")
	assert.Contains(t, ddl, "cui TEXT")
	assert.Contains(t, ddl, "raw_record TEXT")
	assert.NotContains(t, ddl, "NOT NULL")
}

func TestProductionDDL_BusinessKeyColumnsAreNotNull(t *testing.T) {
	ddl := productionDDL(testSpec())
	assert.Contains(t, ddl, "id SERIAL PRIMARY KEY")
	assert.Contains(t, ddl, "cui TEXT NOT NULL")
	assert.Contains(t, ddl, "tui TEXT NOT NULL")
	assert.Contains(t, ddl, "stn TEXT,")
	assert.Contains(t, ddl, "is_active BOOLEAN NOT NULL DEFAULT TRUE")
}

func TestBusinessKeyIndexDDL(t *testing.T) {
	ddl := businessKeyIndexDDL(testSpec())
	assert.Equal(t, "CREATE UNIQUE INDEX mrsty_business_key_idx ON mrsty (cui, tui)", ddl)
}

func TestDataColumns_ExcludesRawRecord(t *testing.T) {
	cols := dataColumns(testSpec())
	assert.Equal(t, []string{"cui", "tui", "stn", "sty", "atui", "cvf"}, cols)
}

func TestJoinCondition(t *testing.T) {
	got := joinCondition("p", "s", []string{"cui", "tui"})
	assert.Equal(t, "p.cui = s.cui AND p.tui = s.tui", got)
}

func TestCdcTableNames(t *testing.T) {
	spec := testSpec()
	assert.Equal(t, "cdc_deletes_mrsty", cdcDeletesTable(spec))
	assert.Equal(t, "cdc_updates_mrsty", cdcUpdatesTable(spec))
	assert.Equal(t, "cdc_inserts_mrsty", cdcInsertsTable(spec))
}
