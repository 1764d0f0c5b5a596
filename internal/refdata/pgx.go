package refdata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// PgxPool is the subset of *pgxpool.Pool used here. pgxmock pools satisfy it.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PgxSource implements Source for PostgreSQL deployments.
type PgxSource struct {
	pool PgxPool
}

// OpenPgx connects a pgx pool and pings it.
func OpenPgx(ctx context.Context, dsn string) (*PgxSource, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, eris.Wrap(err, "refdata: parse postgres dsn")
	}
	cfg.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "refdata: connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "refdata: ping postgres")
	}
	return &PgxSource{pool: pool}, nil
}

// NewPgxSource wraps an existing pool.
func NewPgxSource(pool PgxPool) *PgxSource {
	return &PgxSource{pool: pool}
}

// Name implements Source.
func (s *PgxSource) Name() string { return "postgres" }

// Query implements Source.
func (s *PgxSource) Query(ctx context.Context, query string, columns []string) ([][]string, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "refdata: postgres query")
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, eris.Wrap(err, "refdata: postgres values")
		}
		row := make([]string, len(vals))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
			case string:
				row[i] = x
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, fitRow(row, len(columns)))
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "refdata: postgres rows")
	}
	return out, nil
}

// Close implements Source.
func (s *PgxSource) Close() error {
	s.pool.Close()
	return nil
}
