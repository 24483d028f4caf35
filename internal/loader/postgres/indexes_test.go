package postgres

import "testing"

func TestRewriteIndexForShadow_PlainIndex(t *testing.T) {
	in := "CREATE INDEX medgen_concepts_cui_idx ON medgen_concepts USING btree (cui)"
	want := "CREATE INDEX medgen_concepts_cui_idx_new ON medgen_concepts_new USING btree (cui)"
	if got := rewriteIndexForShadow(in, "medgen_concepts_new"); got != want {
		t.Errorf("rewriteIndexForShadow() = %q, want %q", got, want)
	}
}

func TestRewriteIndexForShadow_UniqueIndex(t *testing.T) {
	in := "CREATE UNIQUE INDEX medgen_sources_bk_idx ON medgen_sources USING btree (cui, atui)"
	want := "CREATE UNIQUE INDEX medgen_sources_bk_idx_new ON medgen_sources_new USING btree (cui, atui)"
	if got := rewriteIndexForShadow(in, "medgen_sources_new"); got != want {
		t.Errorf("rewriteIndexForShadow() = %q, want %q", got, want)
	}
}

func TestRewriteIndexForShadow_UnrecognizedDefinitionPassesThrough(t *testing.T) {
	in := "not a create index statement"
	if got := rewriteIndexForShadow(in, "whatever_new"); got != in {
		t.Errorf("rewriteIndexForShadow() = %q, want unchanged %q", got, in)
	}
}
