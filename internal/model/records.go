// Package model defines the typed record shapes produced by the parser for
// each MedGen source file, and the column-ordered view of those records that
// the encoder, staging DDL, and CDC engine all key off of.
package model

// Field pairs a database column name with its value. Value is nil when the
// column is NULL; a non-nil pointer to an empty string is a genuine empty
// string, distinct from NULL.
type Field struct {
	Name  string
	Value *string
}

// Record is implemented by every parsed row type. Columns returns every
// column in declared schema order, raw_record last.
type Record interface {
	Columns() []Field
}

func str(s string) *string {
	return &s
}

func opt(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// MrconsoRecord is one row of MRCONSO.RRF: concept names and sources.
type MrconsoRecord struct {
	CUI       string
	LAT       string
	TS        string
	LUI       string
	STT       string
	SUI       string
	ISPREF    string
	AUI       string
	SAUI      string
	SCUI      string
	SDUI      string
	SAB       string
	TTY       string
	Code      string
	RecordStr string
	SRL       string
	Suppress  string
	CVF       string
	RawRecord string
}

// MrconsoSchema lists MRCONSO.RRF's columns in file order (raw_record excluded).
var MrconsoSchema = []string{
	"cui", "lat", "ts", "lui", "stt", "sui", "ispref", "aui", "saui",
	"scui", "sdui", "sab", "tty", "code", "record_str", "srl", "suppress", "cvf",
}

func (r MrconsoRecord) Columns() []Field {
	return []Field{
		{"cui", str(r.CUI)}, {"lat", str(r.LAT)}, {"ts", str(r.TS)},
		{"lui", str(r.LUI)}, {"stt", str(r.STT)}, {"sui", str(r.SUI)},
		{"ispref", str(r.ISPREF)}, {"aui", str(r.AUI)}, {"saui", opt(r.SAUI)},
		{"scui", opt(r.SCUI)}, {"sdui", opt(r.SDUI)}, {"sab", str(r.SAB)},
		{"tty", str(r.TTY)}, {"code", str(r.Code)}, {"record_str", str(r.RecordStr)},
		{"srl", str(r.SRL)}, {"suppress", str(r.Suppress)}, {"cvf", opt(r.CVF)},
		{"raw_record", str(r.RawRecord)},
	}
}

// MedgenNameRecord is one row of NAMES.RRF.gz: a concept's preferred/alternate name.
type MedgenNameRecord struct {
	CUI       string
	Name      string
	Source    string
	Suppress  string
	RawRecord string
}

// MedgenNameSchema lists NAMES.RRF.gz's columns in header order (raw_record excluded).
var MedgenNameSchema = []string{"cui", "name", "source", "suppress"}

func (r MedgenNameRecord) Columns() []Field {
	return []Field{
		{"cui", str(r.CUI)}, {"name", str(r.Name)}, {"source", str(r.Source)},
		{"suppress", str(r.Suppress)}, {"raw_record", str(r.RawRecord)},
	}
}

// MrrelRecord is one row of MRREL.RRF: a relationship between two concepts.
type MrrelRecord struct {
	CUI1      string
	AUI1      string
	Stype1    string
	Rel       string
	CUI2      string
	AUI2      string
	Stype2    string
	Rela      string
	RUI       string
	SRUI      string
	SAB       string
	SL        string
	RG        string
	Dir       string
	Suppress  string
	CVF       string
	RawRecord string
}

// MrrelSchema lists MRREL.RRF's columns in file order (raw_record excluded).
var MrrelSchema = []string{
	"cui1", "aui1", "stype1", "rel", "cui2", "aui2", "stype2", "rela",
	"rui", "srui", "sab", "sl", "rg", "dir", "suppress", "cvf",
}

func (r MrrelRecord) Columns() []Field {
	return []Field{
		{"cui1", str(r.CUI1)}, {"aui1", opt(r.AUI1)}, {"stype1", str(r.Stype1)},
		{"rel", str(r.Rel)}, {"cui2", str(r.CUI2)}, {"aui2", opt(r.AUI2)},
		{"stype2", str(r.Stype2)}, {"rela", opt(r.Rela)}, {"rui", opt(r.RUI)},
		{"srui", opt(r.SRUI)}, {"sab", str(r.SAB)}, {"sl", opt(r.SL)},
		{"rg", opt(r.RG)}, {"dir", opt(r.Dir)}, {"suppress", str(r.Suppress)},
		{"cvf", opt(r.CVF)}, {"raw_record", str(r.RawRecord)},
	}
}

// MrstyRecord is one row of MRSTY.RRF: a concept's semantic type assignment.
type MrstyRecord struct {
	CUI       string
	TUI       string
	STN       string
	STY       string
	ATUI      string
	CVF       string
	RawRecord string
}

// MrstySchema lists MRSTY.RRF's columns in file order (raw_record excluded).
var MrstySchema = []string{"cui", "tui", "stn", "sty", "atui", "cvf"}

func (r MrstyRecord) Columns() []Field {
	return []Field{
		{"cui", str(r.CUI)}, {"tui", str(r.TUI)}, {"stn", str(r.STN)},
		{"sty", str(r.STY)}, {"atui", opt(r.ATUI)}, {"cvf", opt(r.CVF)},
		{"raw_record", str(r.RawRecord)},
	}
}

// MrsatRecord is one row of MRSAT.RRF: a free-text attribute on a concept or atom.
type MrsatRecord struct {
	CUI       string
	LUI       string
	SUI       string
	Metaui    string
	Stype     string
	Code      string
	ATUI      string
	SATUI     string
	ATN       string
	SAB       string
	ATV       string
	Suppress  string
	CVF       string
	RawRecord string
}

// MrsatSchema lists MRSAT.RRF's columns in file order (raw_record excluded).
var MrsatSchema = []string{
	"cui", "lui", "sui", "metaui", "stype", "code", "atui", "satui",
	"atn", "sab", "atv", "suppress", "cvf",
}

func (r MrsatRecord) Columns() []Field {
	return []Field{
		{"cui", str(r.CUI)}, {"lui", opt(r.LUI)}, {"sui", opt(r.SUI)},
		{"metaui", opt(r.Metaui)}, {"stype", str(r.Stype)}, {"code", opt(r.Code)},
		{"atui", str(r.ATUI)}, {"satui", opt(r.SATUI)}, {"atn", str(r.ATN)},
		{"sab", str(r.SAB)}, {"atv", opt(r.ATV)}, {"suppress", str(r.Suppress)},
		{"cvf", opt(r.CVF)}, {"raw_record", str(r.RawRecord)},
	}
}

// MedgenHpoMappingRecord is one row of MedGen_HPO_Mapping.txt.gz: a CUI's
// cross-reference to an HPO or OMIM identifier.
type MedgenHpoMappingRecord struct {
	CUI          string
	SDUI         string
	HpoStr       string
	MedgenStr    string
	MedgenStrSab string
	STY          string
	RawRecord    string
}

// MedgenHpoMappingSchema lists the mapping file's columns in file order (raw_record excluded).
var MedgenHpoMappingSchema = []string{
	"cui", "sdui", "hpo_str", "medgen_str", "medgen_str_sab", "sty",
}

func (r MedgenHpoMappingRecord) Columns() []Field {
	return []Field{
		{"cui", str(r.CUI)}, {"sdui", str(r.SDUI)}, {"hpo_str", opt(r.HpoStr)},
		{"medgen_str", opt(r.MedgenStr)}, {"medgen_str_sab", opt(r.MedgenStrSab)},
		{"sty", opt(r.STY)}, {"raw_record", str(r.RawRecord)},
	}
}
