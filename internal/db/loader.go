package db

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Loader runs load tasks against one database. PostgreSQL loads go
// through Pool with COPY; other drivers use batched INSERTs on DB.
type Loader struct {
	Driver    string
	DB        *sql.DB
	Pool      Pool
	BatchSize int
}

// TaskResult is the outcome of one task.
type TaskResult struct {
	Task Task
	Rows int64
	Err  error
}

// RunTask loads a single task.
func (l *Loader) RunTask(ctx context.Context, t Task) (int64, error) {
	rows, err := ReadRows(t.File, t.Columns)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		zap.L().Warn("db: no data rows", zap.String("file", t.File))
		return 0, nil
	}

	switch {
	case l.Driver == "postgres" || l.Driver == "pgx":
		if l.Pool == nil {
			return 0, eris.New("db: postgres load needs a pool")
		}
		return CopyFrom(ctx, l.Pool, t.Table, t.Columns, rows)
	case l.DB != nil:
		return InsertRows(ctx, l.DB, l.Driver, t.Table, t.Columns, rows, l.BatchSize)
	default:
		return 0, eris.Errorf("db: no connection for driver %q", l.Driver)
	}
}

// Run executes every task of the plan in order. A failed task is logged
// and the next task still runs.
func (l *Loader) Run(ctx context.Context, p *Plan) []TaskResult {
	results := make([]TaskResult, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		n, err := l.RunTask(ctx, t)
		results = append(results, TaskResult{Task: t, Rows: n, Err: err})
		if err != nil {
			zap.L().Error("db: load task failed",
				zap.String("file", t.File),
				zap.String("table", t.Table),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("db: load task done",
			zap.String("file", t.File),
			zap.String("table", t.Table),
			zap.Int64("rows", n),
		)
	}
	return results
}

// Failed counts the results with an error.
func Failed(results []TaskResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
