package refdata

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/county-imes/imes-migrate/internal/match"
)

// Tables names the reference tables in the store.
type Tables struct {
	Departments string
	Subcounties string
	Wards       string
}

// DefaultTables are the IMES table names.
var DefaultTables = Tables{
	Departments: "kemri_departments",
	Subcounties: "kemri_subcounties",
	Wards:       "kemri_wards",
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// References holds the reference data for one run. It is built once and
// only read afterwards.
type References struct {
	Departments *match.Candidates
	match.Locations

	// Source names the data source that answered, or "" when none did.
	Source string
}

// Empty reports whether nothing was loaded.
func (r *References) Empty() bool {
	return r.Departments.Len() == 0 && r.Locations.Empty()
}

// EmptyReferences returns references that resolve every label to Unknown.
func EmptyReferences() *References {
	return &References{
		Departments: match.NewCandidates(),
		Locations: match.Locations{
			Subcounties:   match.NewCandidates(),
			Wards:         match.NewCandidates(),
			WardSubcounty: map[string]string{},
		},
	}
}

// DepartmentsQuery returns the query for active departments.
func DepartmentsQuery(t Tables) string {
	return fmt.Sprintf("SELECT name FROM %s WHERE voided = 0 OR voided IS NULL", t.Departments)
}

// SubcountiesQuery returns the query for active subcounties.
func SubcountiesQuery(t Tables) string {
	return fmt.Sprintf("SELECT name FROM %s WHERE voided = 0 OR voided IS NULL", t.Subcounties)
}

// WardsQuery returns the query for active wards with their subcounty name.
// Wards without a subcounty are kept with an empty relation.
func WardsQuery(t Tables) string {
	return fmt.Sprintf(`SELECT w.name AS ward_name, s.name AS subcounty_name
FROM %s w
LEFT JOIN %s s ON w.subcountyId = s.subcountyId
WHERE (w.voided = 0 OR w.voided IS NULL)
  AND (s.voided = 0 OR s.voided IS NULL)`, t.Wards, t.Subcounties)
}

func (t Tables) validate() error {
	for _, name := range []string{t.Departments, t.Subcounties, t.Wards} {
		if !identRe.MatchString(name) {
			return eris.Errorf("refdata: invalid table name %q", name)
		}
	}
	return nil
}

// Load fetches the three reference tables from src. A nil source, invalid
// table names or a failed query leave the affected candidates empty so
// that matching degrades to Unknown instead of aborting the run.
func Load(ctx context.Context, src Source, t Tables) *References {
	refs := EmptyReferences()
	if src == nil {
		zap.L().Warn("refdata: no data source, all matches will be unknown")
		return refs
	}
	refs.Source = src.Name()

	if err := t.validate(); err != nil {
		zap.L().Warn("refdata: skipping reference load", zap.Error(err))
		return refs
	}

	if rows, err := src.Query(ctx, DepartmentsQuery(t), []string{"name"}); err != nil {
		zap.L().Warn("refdata: load departments", zap.String("source", src.Name()), zap.Error(err))
	} else {
		refs.Departments = match.NewCandidates(column(rows, 0)...)
	}

	if rows, err := src.Query(ctx, SubcountiesQuery(t), []string{"name"}); err != nil {
		zap.L().Warn("refdata: load subcounties", zap.String("source", src.Name()), zap.Error(err))
	} else {
		refs.Subcounties = match.NewCandidates(column(rows, 0)...)
	}

	if rows, err := src.Query(ctx, WardsQuery(t), []string{"ward_name", "subcounty_name"}); err != nil {
		zap.L().Warn("refdata: load wards", zap.String("source", src.Name()), zap.Error(err))
	} else {
		refs.Wards = match.NewCandidates(column(rows, 0)...)
		for _, row := range rows {
			if len(row) > 1 && row[0] != "" && row[1] != "" {
				refs.WardSubcounty[row[0]] = row[1]
			}
		}
	}

	zap.L().Info("refdata: references loaded",
		zap.String("source", src.Name()),
		zap.Int("departments", refs.Departments.Len()),
		zap.Int("subcounties", refs.Subcounties.Len()),
		zap.Int("wards", refs.Wards.Len()),
		zap.Int("ward_subcounty", len(refs.WardSubcounty)),
	)
	return refs
}

func column(rows [][]string, i int) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if i < len(r) {
			out = append(out, r[i])
		}
	}
	return out
}
