// Package mapping assembles output rows from extracted sheet rows, the
// resolved reference entities and generated reference codes.
package mapping

import (
	"go.uber.org/zap"

	"github.com/county-imes/imes-migrate/internal/export"
	"github.com/county-imes/imes-migrate/internal/match"
	"github.com/county-imes/imes-migrate/internal/refcode"
	"github.com/county-imes/imes-migrate/internal/refdata"
	"github.com/county-imes/imes-migrate/internal/sheet"
)

// ADP output columns added to the template's.
const (
	ColDepartment   = "Department"
	ColProgram      = "Program"
	ColProjectRef   = "Project_ref"
	ColSubcounty    = "Subcounty"
	ColWard         = "ward"
	ColDBDepartment = "db_department"
)

// ADPColumns are the canonical ADP output columns. Template columns come
// first; these are appended when the template lacks them.
var ADPColumns = []string{
	ColDepartment,
	ColProgram,
	sheet.ColProjectName,
	sheet.ColDescription,
	sheet.ColGreenEconomy,
	sheet.ColEstimatedCost,
	sheet.ColSourceOfFunds,
	sheet.ColTimeFrame,
	sheet.ColTargets,
	ColProjectRef,
	ColSubcounty,
	ColWard,
	ColDBDepartment,
}

// ADP assembles ADP mapping rows.
type ADP struct {
	Refs        *refdata.References
	Departments *match.DepartmentMatcher
	Codes       refcode.Generator
	Summary     *Summary

	table *export.Table
}

// NewADP returns an assembler writing columns in template order.
func NewADP(refs *refdata.References, depts *match.DepartmentMatcher, codes refcode.Generator, template []string, summary *Summary) *ADP {
	return &ADP{
		Refs:        refs,
		Departments: depts,
		Codes:       codes,
		Summary:     summary,
		table:       export.NewTable(export.OrderColumns(template, ADPColumns), nil),
	}
}

// Table returns the rows assembled so far.
func (a *ADP) Table() *export.Table { return a.table }

// AddSheet assembles every row of one extracted sheet and returns the
// number of rows added. Reference code numbering restarts per sheet.
func (a *ADP) AddSheet(s *sheet.ADPSheet) int {
	var counter refcode.Counter

	dept := a.Departments.Match(s.Banner.Department)
	if dept == match.Unknown && s.Banner.Program != "" {
		dept = a.Departments.Match(s.Banner.Program)
	}

	for _, src := range s.Rows {
		row := make(map[string]any, len(a.table.Columns))
		for _, c := range a.table.Columns {
			row[c] = ""
		}
		row[ColDepartment] = s.Banner.Department
		row[ColProgram] = s.Banner.Program
		for name, v := range src.Fields {
			row[name] = v
		}

		project := src.ProjectName()
		row[ColProjectRef] = a.Codes.Make(project, s.Banner.Program, src.Fields[sheet.ColTimeFrame], counter.Next())

		loc := a.Locate(project, src.Fields[sheet.ColDescription])
		row[ColSubcounty] = loc.Subcounty
		row[ColWard] = loc.Ward
		row[ColDBDepartment] = dept

		if a.Summary != nil {
			a.Summary.Record(FieldSubcounty, project, loc.Subcounty)
			a.Summary.Record(FieldWard, project, loc.Ward)
			a.Summary.Record(FieldDepartment, s.Banner.Department, dept)
		}
		a.table.Append(row)
	}

	zap.L().Info("mapping: adp sheet assembled",
		zap.String("sheet", s.Name),
		zap.String("department", s.Banner.Department),
		zap.String("db_department", dept),
		zap.Int("rows", len(s.Rows)),
	)
	return len(s.Rows)
}

// Locate resolves a project's location from its name, then fills whatever
// is still unknown from the description.
func (a *ADP) Locate(project, description string) match.Location {
	loc := a.Refs.Locate(project)
	if loc.Known() || description == "" {
		return loc
	}
	loc = loc.Merge(a.Refs.Locate(description))
	if loc.Subcounty == match.Unknown {
		if sc, ok := a.Refs.SubcountyOf(loc.Ward); ok {
			loc.Subcounty = sc
		}
	}
	return loc
}
