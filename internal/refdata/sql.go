package refdata

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLSource implements Source over database/sql. It serves the MySQL
// ("mysql") and SQLite ("sqlite") drivers.
type SQLSource struct {
	name string
	db   *sql.DB
}

// OpenSQL opens and pings a database/sql connection.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLSource, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, eris.Wrapf(err, "refdata: open %s", driver)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, eris.Wrapf(err, "refdata: ping %s", driver)
	}
	return &SQLSource{name: driver, db: db}, nil
}

// NewSQLSource wraps an existing handle.
func NewSQLSource(name string, db *sql.DB) *SQLSource {
	return &SQLSource{name: name, db: db}
}

// Name implements Source.
func (s *SQLSource) Name() string { return s.name }

// DB exposes the underlying handle for callers that also write.
func (s *SQLSource) DB() *sql.DB { return s.db }

// Query implements Source.
func (s *SQLSource) Query(ctx context.Context, query string, columns []string) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrapf(err, "refdata: %s query", s.name)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrapf(err, "refdata: %s columns", s.name)
	}

	var out [][]string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, eris.Wrapf(err, "refdata: %s scan", s.name)
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = v.String
		}
		out = append(out, fitRow(row, len(columns)))
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "refdata: %s rows", s.name)
	}
	return out, nil
}

// Close implements Source.
func (s *SQLSource) Close() error {
	return s.db.Close()
}
