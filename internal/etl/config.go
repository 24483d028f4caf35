// Package etl wires the fetcher, parser, encoder, and loader packages into
// the per-table and whole-run pipelines described for the MedGen dataset.
package etl

import (
	"io"

	"github.com/gowthamrao/medgen-loader/internal/encoder"
	"github.com/gowthamrao/medgen-loader/internal/loader"
	"github.com/gowthamrao/medgen-loader/internal/model"
	"github.com/gowthamrao/medgen-loader/internal/parser"
)

// StreamAdapter opens file's parse stream and returns it as an
// encoder.NextFunc together with a function to retrieve the stream's
// terminal error once exhausted.
type StreamAdapter func(r io.Reader, file string, opts parser.Options) (next encoder.NextFunc, errFn func() error, err error)

// TableConfig is one entry of the static per-release table list: which
// source file feeds it, how to parse that file, and the staging/production
// shape the loader operates against.
type TableConfig struct {
	Spec      loader.TableSpec
	NewReader StreamAdapter
}

func adaptStream[T model.Record](s *parser.Stream[T]) (encoder.NextFunc, func() error) {
	next := func() (model.Record, bool) {
		if !s.Next() {
			return nil, false
		}
		return s.Record(), true
	}
	return next, s.Err
}

func mrconsoAdapter(r io.Reader, file string, opts parser.Options) (encoder.NextFunc, func() error, error) {
	next, errFn := adaptStream(parser.ParseMrconso(r, file, opts))
	return next, errFn, nil
}

func mrrelAdapter(r io.Reader, file string, opts parser.Options) (encoder.NextFunc, func() error, error) {
	next, errFn := adaptStream(parser.ParseMrrel(r, file, opts))
	return next, errFn, nil
}

func mrstyAdapter(r io.Reader, file string, opts parser.Options) (encoder.NextFunc, func() error, error) {
	next, errFn := adaptStream(parser.ParseMrsty(r, file, opts))
	return next, errFn, nil
}

func mrsatAdapter(r io.Reader, file string, opts parser.Options) (encoder.NextFunc, func() error, error) {
	next, errFn := adaptStream(parser.ParseMrsat(r, file, opts))
	return next, errFn, nil
}

func namesAdapter(r io.Reader, file string, opts parser.Options) (encoder.NextFunc, func() error, error) {
	s, err := parser.ParseNames(r, file, opts)
	if err != nil {
		return nil, nil, err
	}
	next, errFn := adaptStream(s)
	return next, errFn, nil
}

func hpoMappingAdapter(r io.Reader, file string, opts parser.Options) (encoder.NextFunc, func() error, error) {
	s, err := parser.ParseHpoMapping(r, file, opts)
	if err != nil {
		return nil, nil, err
	}
	next, errFn := adaptStream(s)
	return next, errFn, nil
}

// Tables returns the fixed list of logical MedGen tables this pipeline
// loads, in the order they are processed each run.
func Tables() []TableConfig {
	return []TableConfig{
		{
			Spec: loader.TableSpec{
				Name:         "medgen_concepts",
				StagingTable: "staging_medgen_concepts",
				BackupTable:  "medgen_concepts_old",
				PrimaryKey:   "concept_id",
				BusinessKey:  []string{"aui"},
				Columns:      append(append([]string{}, model.MrconsoSchema...), "raw_record"),
				SourceFile:   "MRCONSO.RRF",
			},
			NewReader: mrconsoAdapter,
		},
		{
			Spec: loader.TableSpec{
				Name:         "medgen_semantic_types",
				StagingTable: "staging_medgen_semantic_types",
				BackupTable:  "medgen_semantic_types_old",
				PrimaryKey:   "semantic_type_id",
				BusinessKey:  []string{"atui"},
				Columns:      append(append([]string{}, model.MrstySchema...), "raw_record"),
				SourceFile:   "MRSTY.RRF",
			},
			NewReader: mrstyAdapter,
		},
		{
			Spec: loader.TableSpec{
				Name:         "medgen_relationships",
				StagingTable: "staging_medgen_relationships",
				BackupTable:  "medgen_relationships_old",
				PrimaryKey:   "relationship_id",
				BusinessKey:  []string{"rui"},
				Columns:      append(append([]string{}, model.MrrelSchema...), "raw_record"),
				SourceFile:   "MRREL.RRF",
			},
			NewReader: mrrelAdapter,
		},
		{
			// medgen_sources carries a renamed subset of MRSAT's staging
			// columns; the business key (atui) is kept under its staging
			// name on production too, since the CDC join and dedup logic
			// depend on both sides agreeing on a business-key column name.
			Spec: loader.TableSpec{
				Name:         "medgen_sources",
				StagingTable: "staging_medgen_sources",
				BackupTable:  "medgen_sources_old",
				PrimaryKey:   "source_id",
				BusinessKey:  []string{"atui"},
				Columns:      append(append([]string{}, model.MrsatSchema...), "raw_record"),
				Mapping: []loader.ColumnMap{
					{Production: "cui", Staging: "cui"},
					{Production: "atui", Staging: "atui"},
					{Production: "source_abbreviation", Staging: "sab"},
					{Production: "attribute_name", Staging: "atn"},
					{Production: "attribute_value", Staging: "atv"},
					{Production: "raw_record", Staging: "raw_record"},
				},
				SourceFile: "MRSAT.RRF",
			},
			NewReader: mrsatAdapter,
		},
		{
			Spec: loader.TableSpec{
				Name:         "medgen_names",
				StagingTable: "staging_medgen_names",
				BackupTable:  "medgen_names_old",
				PrimaryKey:   "name_id",
				BusinessKey:  []string{"name"},
				Columns:      append(append([]string{}, model.MedgenNameSchema...), "raw_record"),
				SourceFile:   "NAMES.RRF.gz",
			},
			NewReader: namesAdapter,
		},
		{
			Spec: loader.TableSpec{
				Name:         "medgen_hpo_mapping",
				StagingTable: "staging_medgen_hpo_mapping",
				BackupTable:  "medgen_hpo_mapping_old",
				PrimaryKey:   "hpo_mapping_id",
				BusinessKey:  []string{"sdui"},
				Columns:      append(append([]string{}, model.MedgenHpoMappingSchema...), "raw_record"),
				SourceFile:   "MedGen_HPO_Mapping.txt.gz",
			},
			NewReader: hpoMappingAdapter,
		},
	}
}
