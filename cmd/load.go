package main

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/county-imes/imes-migrate/internal/db"
)

var loadFlags struct {
	plan    string
	file    string
	table   string
	columns []string
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Bulk-load CSV exports into the IMES store",
	Long:  "Loads CSV files into store tables, either one file given by flags or every task of a YAML load plan. PostgreSQL targets use COPY; MySQL and SQLite use batched INSERTs.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		override(&cfg.Load.Plan, loadFlags.plan)
		if err := cfg.Validate("load"); err != nil {
			return err
		}

		plan, err := loadPlan()
		if err != nil {
			return err
		}

		loader, closeFn, err := openLoader(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		results := loader.Run(ctx, plan)
		var total int64
		for _, r := range results {
			total += r.Rows
		}
		failed := db.Failed(results)

		zap.L().Info("load complete",
			zap.Int("tasks", len(results)),
			zap.Int("failed", failed),
			zap.Int64("rows", total),
		)
		if failed > 0 {
			return eris.Errorf("load: %d of %d tasks failed", failed, len(results))
		}
		return nil
	},
}

func loadPlan() (*db.Plan, error) {
	if loadFlags.file != "" {
		if loadFlags.table == "" || len(loadFlags.columns) == 0 {
			return nil, eris.New("load: --file needs --table and --columns")
		}
		return &db.Plan{Tasks: []db.Task{{
			File:    loadFlags.file,
			Table:   loadFlags.table,
			Columns: loadFlags.columns,
		}}}, nil
	}
	if cfg.Load.Plan == "" {
		return nil, eris.New("load: a plan (--plan or load.plan) or --file is required")
	}
	return db.LoadPlan(cfg.Load.Plan)
}

func openLoader(ctx context.Context) (*db.Loader, func(), error) {
	l := &db.Loader{Driver: cfg.Store.Driver, BatchSize: cfg.Load.BatchSize}

	switch cfg.Store.Driver {
	case "postgres", "pgx":
		pool, err := pgxpool.New(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, eris.Wrap(err, "load: connect")
		}
		l.Pool = pool
		return l, pool.Close, nil
	case "mysql", "sqlite":
		conn, err := sql.Open(cfg.Store.Driver, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, eris.Wrap(err, "load: open database")
		}
		if err := conn.PingContext(ctx); err != nil {
			_ = conn.Close()
			return nil, nil, eris.Wrap(err, "load: connect")
		}
		l.DB = conn
		return l, func() { _ = conn.Close() }, nil
	default:
		return nil, nil, eris.Errorf("load: unsupported store driver: %s", cfg.Store.Driver)
	}
}

func init() {
	f := loadCmd.Flags()
	f.StringVar(&loadFlags.plan, "plan", "", "YAML load plan (overrides load.plan)")
	f.StringVar(&loadFlags.file, "file", "", "single CSV file to load")
	f.StringVar(&loadFlags.table, "table", "", "target table for --file")
	f.StringSliceVar(&loadFlags.columns, "columns", nil, "CSV columns to load for --file, in order")
	rootCmd.AddCommand(loadCmd)
}
