package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 500

// quoteIdent quotes a possibly schema-qualified identifier for driver.
func quoteIdent(driver, name string) string {
	q := `"`
	if driver == "mysql" {
		q = "`"
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = q + strings.ReplaceAll(p, q, q+q) + q
	}
	return strings.Join(parts, ".")
}

// InsertRows inserts rows in batches of batchSize inside one transaction.
// Any failed batch rolls back the whole load.
func InsertRows(ctx context.Context, db *sql.DB, driver, table string, columns []string, rows [][]any, batchSize int) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, eris.New("db: insert: no columns specified")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(driver, c)
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", quoteIdent(driver, table), strings.Join(quoted, ", "))
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "db: insert: begin tx")
	}
	defer tx.Rollback()

	var total int64
	for start := 0; start < len(rows); start += batchSize {
		batch := rows[start:min(start+batchSize, len(rows))]

		var b strings.Builder
		b.WriteString(prefix)
		args := make([]any, 0, len(batch)*len(columns))
		for i, row := range batch {
			if len(row) != len(columns) {
				return 0, eris.Errorf("db: insert: row %d has %d values, want %d", start+i+1, len(row), len(columns))
			}
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(tuple)
			args = append(args, row...)
		}

		res, err := tx.ExecContext(ctx, b.String(), args...)
		if err != nil {
			return 0, eris.Wrapf(err, "db: insert into %s (rows %d-%d)", table, start+1, start+len(batch))
		}
		n, err := res.RowsAffected()
		if err != nil {
			n = int64(len(batch))
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "db: insert: commit")
	}
	return total, nil
}
