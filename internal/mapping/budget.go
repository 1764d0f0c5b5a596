package mapping

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/county-imes/imes-migrate/internal/export"
	"github.com/county-imes/imes-migrate/internal/match"
	"github.com/county-imes/imes-migrate/internal/refdata"
	"github.com/county-imes/imes-migrate/internal/sheet"
)

// Budget output formats.
const (
	FormatImport  = "import"
	FormatMapping = "mapping"
)

// ImportColumns is the budget import layout.
var ImportColumns = []string{
	"S/N", "Budget", "Project Name", "Amount", "ward", "subcounty",
	"fin_year", "db_department", "original_ward", "original_department",
}

// MappingColumns is the budget mapping layout. db_subcounty.1 repeats
// db_subcounty.
var MappingColumns = []string{
	"BudgetName", "Department", "db_department", "Project Name", "ward",
	"Amount", "db_subcounty", "db_ward", "db_subcounty.1",
}

var importWidths = map[string]float64{
	"S/N": 8, "Budget": 30, "Project Name": 60, "Amount": 15, "ward": 25,
	"subcounty": 30, "fin_year": 15, "db_department": 50,
	"original_ward": 30, "original_department": 50,
}

var mappingWidths = map[string]float64{
	"BudgetName": 30, "Department": 50, "db_department": 50,
	"Project Name": 60, "ward": 25, "Amount": 15, "db_subcounty": 30,
	"db_ward": 30, "db_subcounty.1": 30,
}

// Budget assembles budget rows in the import or mapping layout.
type Budget struct {
	Refs        *refdata.References
	Departments *match.DepartmentMatcher
	Format      string
	BudgetName  string
	FinYear     string
	Summary     *Summary

	table *export.Table
}

// NewBudget returns an assembler for format. Template columns, when given,
// lead the output order.
func NewBudget(refs *refdata.References, depts *match.DepartmentMatcher, format, budgetName, finYear string, template []string, summary *Summary) (*Budget, error) {
	var cols []string
	var widths map[string]float64
	switch format {
	case FormatImport:
		cols, widths = ImportColumns, importWidths
	case FormatMapping:
		cols, widths = MappingColumns, mappingWidths
	default:
		return nil, eris.Errorf("mapping: unknown budget format %q", format)
	}
	return &Budget{
		Refs:        refs,
		Departments: depts,
		Format:      format,
		BudgetName:  budgetName,
		FinYear:     finYear,
		Summary:     summary,
		table:       export.NewTable(export.OrderColumns(template, cols), widths),
	}, nil
}

// Table returns the rows assembled so far.
func (b *Budget) Table() *export.Table { return b.table }

// AddSheet assembles every line of one extracted sheet and returns the
// number of rows added.
func (b *Budget) AddSheet(s *sheet.BudgetSheet) int {
	dept := b.Departments.Match(s.Department)
	for _, r := range s.Rows {
		loc := b.Refs.Resolve(r.Ward)

		var row map[string]any
		if b.Format == FormatImport {
			row = map[string]any{
				"S/N":                 r.SNo,
				"Budget":              b.BudgetName,
				"Project Name":        r.Project,
				"Amount":              r.Amount,
				"ward":                loc.Ward,
				"subcounty":           loc.Subcounty,
				"fin_year":            b.FinYear,
				"db_department":       dept,
				"original_ward":       r.Ward,
				"original_department": r.Department,
			}
		} else {
			row = map[string]any{
				"BudgetName":     b.BudgetName,
				"Department":     r.Department,
				"db_department":  dept,
				"Project Name":   r.Project,
				"ward":           r.Ward,
				"Amount":         r.Amount,
				"db_subcounty":   loc.Subcounty,
				"db_ward":        loc.Ward,
				"db_subcounty.1": loc.Subcounty,
			}
		}

		if b.Summary != nil {
			b.Summary.Record(FieldWard, r.Ward, loc.Ward)
			b.Summary.Record(FieldSubcounty, "", loc.Subcounty)
			b.Summary.Record(FieldDepartment, r.Department, dept)
		}
		b.table.Append(row)
	}

	zap.L().Info("mapping: budget sheet assembled",
		zap.String("sheet", s.Name),
		zap.String("department", s.Department),
		zap.String("db_department", dept),
		zap.Int("rows", len(s.Rows)),
	)
	return len(s.Rows)
}
