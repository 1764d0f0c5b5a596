package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/county-imes/imes-migrate/internal/config"
	"github.com/county-imes/imes-migrate/internal/mapping"
	"github.com/county-imes/imes-migrate/internal/match"
	"github.com/county-imes/imes-migrate/internal/refdata"
)

func openSource(ctx context.Context, driver, dsn string) (refdata.Source, error) {
	switch driver {
	case "postgres", "pgx":
		src, err := refdata.OpenPgx(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return src, nil
	case "mysql", "sqlite":
		src, err := refdata.OpenSQL(ctx, driver, dsn)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", driver)
	}
}

// sourceOpeners lists the configured data sources in fallback order: the
// primary DSN, each fallback DSN, then the containerized client.
func sourceOpeners(sc config.StoreConfig) []refdata.Opener {
	var openers []refdata.Opener
	direct := func(name, driver, dsn string) {
		if dsn == "" {
			return
		}
		openers = append(openers, refdata.Opener{
			Name: name,
			Open: func(ctx context.Context) (refdata.Source, error) {
				return openSource(ctx, driver, dsn)
			},
		})
	}

	direct("primary", sc.Driver, sc.DatabaseURL)
	for i, fb := range sc.Fallbacks {
		driver := fb.Driver
		if driver == "" {
			driver = sc.Driver
		}
		direct(fmt.Sprintf("fallback-%d", i+1), driver, fb.DatabaseURL)
	}

	if sc.Exec.Enabled {
		opts := refdata.ExecOptions{
			Runtime:    sc.Exec.Runtime,
			Containers: sc.Exec.Containers,
			Image:      sc.Exec.Image,
			Client:     sc.Exec.Client,
			Database:   sc.Exec.Database,
		}
		for _, c := range sc.Exec.Credentials {
			opts.Credentials = append(opts.Credentials, refdata.Credential{
				User:        c.User,
				Password:    c.Password,
				PasswordEnv: c.PasswordEnv,
			})
		}
		openers = append(openers, refdata.Opener{
			Name: "exec",
			Open: func(ctx context.Context) (refdata.Source, error) {
				src, err := refdata.OpenExec(ctx, opts)
				if err != nil {
					return nil, err
				}
				return src, nil
			},
		})
	}
	return openers
}

func referenceTables(sc config.StoreConfig) refdata.Tables {
	t := refdata.DefaultTables
	if sc.Tables.Departments != "" {
		t.Departments = sc.Tables.Departments
	}
	if sc.Tables.Subcounties != "" {
		t.Subcounties = sc.Tables.Subcounties
	}
	if sc.Tables.Wards != "" {
		t.Wards = sc.Tables.Wards
	}
	return t
}

// loadReferences connects to the first answering source and loads the
// reference tables. With no source every match resolves to unknown.
func loadReferences(ctx context.Context) *refdata.References {
	tables := referenceTables(cfg.Store)

	src, err := refdata.OpenFirst(ctx, sourceOpeners(cfg.Store))
	if err != nil {
		zap.L().Warn("no reference data source, continuing without matching", zap.Error(err))
		return refdata.Load(ctx, nil, tables)
	}
	defer src.Close()

	return refdata.Load(ctx, src, tables)
}

func departmentMatcher(refs *refdata.References) *match.DepartmentMatcher {
	return match.NewDepartmentMatcher(refs.Departments, cfg.Match.DepartmentAliases, cfg.Match.RejectWords)
}

// requireFile fails when path is set but does not name a readable file.
func requireFile(kind, path string) error {
	if path == "" {
		return eris.Errorf("%s path is required", kind)
	}
	info, err := os.Stat(path)
	if err != nil {
		return eris.Wrapf(err, "%s not found", kind)
	}
	if info.IsDir() {
		return eris.Errorf("%s %s is a directory", kind, path)
	}
	return nil
}

func override(dst *string, flag string) {
	if strings.TrimSpace(flag) != "" {
		*dst = flag
	}
}

func summaryCandidates(refs *refdata.References) map[string]*match.Candidates {
	return map[string]*match.Candidates{
		mapping.FieldDepartment: refs.Departments,
		mapping.FieldSubcounty:  refs.Subcounties,
		mapping.FieldWard:       refs.Wards,
	}
}
