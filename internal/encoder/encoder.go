// Package encoder renders model.Record values as the TEXT-format rows a
// Postgres COPY FROM STDIN stream expects: tab-separated columns, "\N" for
// NULL, LF-terminated, with literal tabs/backslashes/newlines inside a value
// escaped so they can't be mistaken for the format's own delimiters.
package encoder

import (
	"strings"

	"github.com/gowthamrao/medgen-loader/internal/model"
)

var copyReplacer = strings.NewReplacer(
	"\\", "\\\\",
	"\t", "\\t",
	"\n", "\\n",
	"\r", "\\r",
)

// EncodeValue renders a single column value in COPY TEXT format: the literal
// "\N" for NULL, otherwise the value with tab/newline/backslash escaped.
func EncodeValue(v *string) string {
	if v == nil {
		return `\N`
	}
	return copyReplacer.Replace(*v)
}

var rawRecordScrubber = strings.NewReplacer("\t", " ", "\n", " ")

// scrubRawRecord collapses any tab or newline inside a raw_record value to a
// single space. raw_record preserves the upstream line for audit purposes,
// but for a tab-delimited source file the line itself contains the column
// delimiter; left alone that delimiter would round-trip through COPY's own
// escaping, so it is normalized away at the source rather than escaped.
func scrubRawRecord(v *string) *string {
	if v == nil {
		return nil
	}
	scrubbed := rawRecordScrubber.Replace(*v)
	return &scrubbed
}

// EncodeRow renders every column of a record as one COPY line, including its
// trailing newline.
func EncodeRow(r model.Record) string {
	cols := r.Columns()
	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteByte('\t')
		}
		v := c.Value
		if c.Name == "raw_record" {
			v = scrubRawRecord(v)
		}
		b.WriteString(EncodeValue(v))
	}
	b.WriteByte('\n')
	return b.String()
}

// ColumnNames returns the column names of r in the same order EncodeRow
// writes their values, for building the matching COPY statement.
func ColumnNames(r model.Record) []string {
	cols := r.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
