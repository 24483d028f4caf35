package parser

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"

	"github.com/gowthamrao/medgen-loader/internal/model"
)

// Options configures a single file's parse run.
type Options struct {
	MaxErrors int
	Logger    *logrus.Logger
}

func (o Options) maxErrors() int {
	if o.MaxErrors <= 0 {
		return 100
	}
	return o.MaxErrors
}

// ParseMrconso streams MRCONSO.RRF (plain pipe-delimited text, CUI|LAT|...).
func ParseMrconso(r io.Reader, file string, opts Options) *Stream[model.MrconsoRecord] {
	return newStream(r, file, model.MrconsoSchema, '|', true, opts.maxErrors(), opts.Logger,
		func(f map[string]string, raw string) model.MrconsoRecord {
			return model.MrconsoRecord{
				CUI: f["cui"], LAT: f["lat"], TS: f["ts"], LUI: f["lui"], STT: f["stt"],
				SUI: f["sui"], ISPREF: f["ispref"], AUI: f["aui"], SAUI: f["saui"],
				SCUI: f["scui"], SDUI: f["sdui"], SAB: f["sab"], TTY: f["tty"], Code: f["code"],
				RecordStr: f["record_str"], SRL: f["srl"], Suppress: f["suppress"], CVF: f["cvf"],
				RawRecord: raw,
			}
		})
}

// ParseMrrel streams MRREL.RRF (plain pipe-delimited text, CUI1|AUI1|...).
func ParseMrrel(r io.Reader, file string, opts Options) *Stream[model.MrrelRecord] {
	return newStream(r, file, model.MrrelSchema, '|', true, opts.maxErrors(), opts.Logger,
		func(f map[string]string, raw string) model.MrrelRecord {
			return model.MrrelRecord{
				CUI1: f["cui1"], AUI1: f["aui1"], Stype1: f["stype1"], Rel: f["rel"],
				CUI2: f["cui2"], AUI2: f["aui2"], Stype2: f["stype2"], Rela: f["rela"],
				RUI: f["rui"], SRUI: f["srui"], SAB: f["sab"], SL: f["sl"], RG: f["rg"],
				Dir: f["dir"], Suppress: f["suppress"], CVF: f["cvf"],
				RawRecord: raw,
			}
		})
}

// ParseMrsty streams MRSTY.RRF (plain pipe-delimited text, CUI|TUI|...).
func ParseMrsty(r io.Reader, file string, opts Options) *Stream[model.MrstyRecord] {
	return newStream(r, file, model.MrstySchema, '|', true, opts.maxErrors(), opts.Logger,
		func(f map[string]string, raw string) model.MrstyRecord {
			return model.MrstyRecord{
				CUI: f["cui"], TUI: f["tui"], STN: f["stn"], STY: f["sty"],
				ATUI: f["atui"], CVF: f["cvf"], RawRecord: raw,
			}
		})
}

// ParseMrsat streams MRSAT.RRF (plain pipe-delimited text, CUI|LUI|...).
func ParseMrsat(r io.Reader, file string, opts Options) *Stream[model.MrsatRecord] {
	return newStream(r, file, model.MrsatSchema, '|', true, opts.maxErrors(), opts.Logger,
		func(f map[string]string, raw string) model.MrsatRecord {
			return model.MrsatRecord{
				CUI: f["cui"], LUI: f["lui"], SUI: f["sui"], Metaui: f["metaui"],
				Stype: f["stype"], Code: f["code"], ATUI: f["atui"], SATUI: f["satui"],
				ATN: f["atn"], SAB: f["sab"], ATV: f["atv"], Suppress: f["suppress"],
				CVF: f["cvf"], RawRecord: raw,
			}
		})
}

// ParseNames streams NAMES.RRF.gz: gzip-compressed, header-driven, pipe-delimited.
// The header line is authoritative for column order — MedGen has shuffled this
// file's column order across releases — so the schema used to key each row is
// read from the header rather than assumed from MedgenNameSchema.
func ParseNames(r io.Reader, file string, opts Options) (*Stream[model.MedgenNameRecord], error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(gz)
	headerLine, err := br.ReadString('\n')
	if err != nil && headerLine == "" {
		return nil, err
	}
	headerLine = strings.TrimRight(headerLine, "\r\n")
	headerLine = strings.TrimPrefix(headerLine, "#")
	header := strings.Split(headerLine, "|")
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.ToLower(h))
	}

	s := newStream(br, file, header, '|', true, opts.maxErrors(), opts.Logger,
		func(f map[string]string, raw string) model.MedgenNameRecord {
			return model.MedgenNameRecord{
				CUI: f["cui"], Name: f["name"], Source: f["source"], Suppress: f["suppress"],
				RawRecord: raw,
			}
		})
	return s, nil
}

var hpoHeaderPrefix = regexp.MustCompile(`(?i)^#?(cui)(\t|$)`)

// ParseHpoMapping streams MedGen_HPO_Mapping.txt.gz: gzip-compressed,
// tab-delimited, with an OPTIONAL leading header row. When the first line
// does not look like a header it is replayed as the first data record.
func ParseHpoMapping(r io.Reader, file string, opts Options) (*Stream[model.MedgenHpoMappingRecord], error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(gz)

	s := newStream(br, file, model.MedgenHpoMappingSchema, '\t', false, opts.maxErrors(), opts.Logger,
		func(f map[string]string, raw string) model.MedgenHpoMappingRecord {
			return model.MedgenHpoMappingRecord{
				CUI: f["cui"], SDUI: f["sdui"], HpoStr: f["hpo_str"], MedgenStr: f["medgen_str"],
				MedgenStrSab: f["medgen_str_sab"], STY: f["sty"], RawRecord: raw,
			}
		})

	first, err := br.ReadString('\n')
	if err != nil && first == "" {
		return nil, err
	}
	firstLine := strings.TrimRight(first, "\r\n")
	if !hpoHeaderPrefix.MatchString(strings.ToLower(firstLine)) {
		s.pending = &firstLine
	}
	return s, nil
}
