package postgres

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
)

// discoverIndexes returns the live, non-primary-key index definitions on
// table, exactly as the server would report them via pg_indexes.
func discoverIndexes(ctx context.Context, conn *pgx.Conn, table string) ([]string, error) {
	rows, err := conn.Query(ctx, `
SELECT i.indexdef
FROM pg_indexes i
WHERE i.tablename = $1
AND i.indexname NOT IN (
    SELECT c.conname FROM pg_constraint c
    WHERE c.conrelid = to_regclass($1)::oid AND c.contype = 'p'
)`, table)
	if err != nil {
		return nil, fmt.Errorf("discovering indexes on %s: %w", table, err)
	}
	defer rows.Close()

	var defs []string
	for rows.Next() {
		var def string
		if err := rows.Scan(&def); err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

var indexNamePattern = regexp.MustCompile(`(?i)^(CREATE (?:UNIQUE )?INDEX )(\S+)( ON )(\S+)(.*)$`)

// rewriteIndexForShadow retargets an index definition discovered against
// prod onto prod's shadow table, renaming the index itself so it can
// coexist with the still-live original until the swap transaction runs.
func rewriteIndexForShadow(indexDef, shadowTable string) string {
	m := indexNamePattern.FindStringSubmatch(indexDef)
	if m == nil {
		return indexDef
	}
	// m[1]=CREATE [UNIQUE ]INDEX , m[2]=name, m[3]=" ON ", m[4]=table, m[5]=rest
	return m[1] + m[2] + "_new" + m[3] + shadowTable + m[5]
}
