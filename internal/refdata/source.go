// Package refdata loads the department, subcounty and ward reference tables
// from the IMES store through a single query interface.
package refdata

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Source runs a read-only query and returns its rows as text. columns
// names the expected result columns in order; sources use it to size rows
// and to recognise header lines in text output. NULL values become "".
type Source interface {
	Name() string
	Query(ctx context.Context, query string, columns []string) ([][]string, error)
	Close() error
}

// Opener lazily connects one source of a fallback chain.
type Opener struct {
	Name string
	Open func(ctx context.Context) (Source, error)
}

// OpenFirst tries each opener in order and returns the first source that
// connects. Failures are logged; the error reports every attempt when none
// succeeds.
func OpenFirst(ctx context.Context, openers []Opener) (Source, error) {
	if len(openers) == 0 {
		return nil, eris.New("refdata: no data sources configured")
	}

	var failed []string
	for _, o := range openers {
		src, err := o.Open(ctx)
		if err != nil {
			zap.L().Warn("refdata: source unavailable",
				zap.String("source", o.Name),
				zap.Error(err),
			)
			failed = append(failed, o.Name+": "+err.Error())
			continue
		}
		zap.L().Info("refdata: connected", zap.String("source", src.Name()))
		return src, nil
	}
	return nil, eris.Errorf("refdata: all sources failed (%s)", strings.Join(failed, "; "))
}

// fitRow pads or truncates a row to width.
func fitRow(row []string, width int) []string {
	if width <= 0 || len(row) == width {
		return row
	}
	if len(row) > width {
		return row[:width]
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
