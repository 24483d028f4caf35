package encoder

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gowthamrao/medgen-loader/internal/model"
)

func TestEncodeValue_Null(t *testing.T) {
	assert.Equal(t, `\N`, EncodeValue(nil))
}

func TestEncodeValue_EscapesSpecialCharacters(t *testing.T) {
	v := "a\tb\nc\\d"
	assert.Equal(t, `a\tb\nc\\d`, EncodeValue(&v))
}

func TestEncodeRow_MrstyRecord(t *testing.T) {
	rec := model.MrstyRecord{CUI: "C1", TUI: "T109", STN: "A1", STY: "Organic Chemical", RawRecord: "C1|T109|A1|Organic Chemical||"}
	line := EncodeRow(rec)
	assert.Equal(t, "C1\tT109\tA1\tOrganic Chemical\t\\N\t\\N\tC1|T109|A1|Organic Chemical||\n", line)
}

func TestEncodeRow_ScrubsTabsAndNewlinesInRawRecord(t *testing.T) {
	rec := model.MedgenHpoMappingRecord{
		CUI:       "C1",
		SDUI:      "HP:0000001",
		RawRecord: "C1\tHP:0000001\tAll\tAll\tHPO\t\n",
	}
	line := EncodeRow(rec)
	assert.Equal(t, "C1\tHP:0000001\t\\N\t\\N\t\\N\t\\N\tC1 HP:0000001 All All HPO  \n", line)
}

func TestColumnNames_MatchesEncodeOrder(t *testing.T) {
	rec := model.MrstyRecord{CUI: "C1", TUI: "T109"}
	names := ColumnNames(rec)
	assert.Equal(t, []string{"cui", "tui", "stn", "sty", "atui", "cvf", "raw_record"}, names)
}

func TestRowReader_StreamsMultipleRecords(t *testing.T) {
	recs := []model.Record{
		model.MrstyRecord{CUI: "C1", TUI: "T1"},
		model.MrstyRecord{CUI: "C2", TUI: "T2"},
	}
	i := 0
	r := NewRowReader(func() (model.Record, bool) {
		if i >= len(recs) {
			return nil, false
		}
		rec := recs[i]
		i++
		return rec, true
	})

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), "C1\tT1\t")
	assert.Contains(t, string(data), "C2\tT2\t")
}
