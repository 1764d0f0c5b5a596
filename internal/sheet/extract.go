package sheet

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// maxBlankRun is the number of consecutive blank rows that ends a table
// once data has been seen.
const maxBlankRun = 2

// DataRows returns the indexes of the rows below header that hold data.
// Blank rows before the first data row are skipped, a single blank row
// inside the table is tolerated and two consecutive blank rows end it.
// Rows whose key column is empty are skipped.
func DataRows(s *Sheet, header, key int) []int {
	var out []int
	seen := false
	blanks := 0
	for r := header + 1; r < len(s.Rows); r++ {
		if s.Blank(r) {
			if seen {
				blanks++
				if blanks >= maxBlankRun {
					break
				}
			}
			continue
		}
		seen = true
		blanks = 0
		if s.Cell(r, key) == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ADPRow is one project row of an ADP sheet, keyed by template column.
type ADPRow struct {
	Line   int    // 1-based source row
	First  string // first cell, the row key
	Fields map[string]string
}

// ProjectName returns the mapped project cell, else the first cell.
func (r ADPRow) ProjectName() string {
	if v := r.Fields[ColProjectName]; v != "" {
		return v
	}
	return r.First
}

// ADPSheet is the extracted content of one ADP sheet.
type ADPSheet struct {
	Name    string
	Banner  Banner
	Columns map[string]int
	Rows    []ADPRow
}

// ExtractADP finds the ADP header, banner and project rows of s. It
// reports false when the sheet has no ADP header.
func ExtractADP(s *Sheet) (*ADPSheet, bool) {
	header := FindHeader(s, LayoutADP)
	if header < 0 {
		return nil, false
	}

	out := &ADPSheet{
		Name:    s.Name,
		Banner:  ReadBanner(s, header),
		Columns: ADPColumns(s.Rows[header]),
	}
	for _, r := range DataRows(s, header, 0) {
		row := ADPRow{Line: r + 1, First: s.Cell(r, 0), Fields: make(map[string]string, len(out.Columns))}
		for name, c := range out.Columns {
			row.Fields[name] = s.Cell(r, c)
		}
		out.Rows = append(out.Rows, row)
	}
	return out, true
}

// BudgetRow is one budget line.
type BudgetRow struct {
	Line       int // 1-based source row
	SNo        string
	Project    string
	Ward       string
	Amount     float64
	Department string
}

// BudgetSheet is the extracted content of one budget sheet.
type BudgetSheet struct {
	Name       string
	Department string
	Columns    BudgetColumns
	Rows       []BudgetRow
}

var budgetHeaderWords = map[string]bool{
	"s/no": true, "sno": true, "project": true, "project name": true,
	"ward": true, "amount": true, "nan": true,
}

// BudgetExtractor walks budget sheets in workbook order. A sheet without
// a department banner inherits the department of the previous sheet.
type BudgetExtractor struct {
	department string
}

// Extract returns the budget lines of s. It reports false when no
// department is known yet for the sheet.
func (e *BudgetExtractor) Extract(s *Sheet) (*BudgetSheet, bool) {
	header := FindHeader(s, LayoutBudget)
	banner := ReadBanner(s, -1)
	if header >= 0 {
		banner = ReadBanner(s, header+1)
	}
	if banner.Department != "" {
		e.department = banner.Department
	}
	if e.department == "" {
		zap.L().Warn("sheet: no department found and none to inherit, skipping",
			zap.String("sheet", s.Name),
		)
		return nil, false
	}

	var headerCells []string
	if header >= 0 {
		headerCells = s.Rows[header]
	}
	cols := DetectBudgetColumns(headerCells, s.Width())
	out := &BudgetSheet{Name: s.Name, Department: e.department, Columns: cols}

	for _, r := range DataRows(s, header, cols.Project) {
		project := s.Cell(r, cols.Project)
		if budgetHeaderWords[strings.ToLower(project)] {
			continue
		}
		amount, ok := ParseAmount(s.Cell(r, cols.Amount))
		if !ok {
			zap.L().Warn("sheet: skipping row with non-numeric amount",
				zap.String("sheet", s.Name),
				zap.Int("row", r+1),
				zap.String("amount", s.Cell(r, cols.Amount)),
			)
			continue
		}
		out.Rows = append(out.Rows, BudgetRow{
			Line:       r + 1,
			SNo:        s.Cell(r, cols.SNo),
			Project:    project,
			Ward:       s.Cell(r, cols.Ward),
			Amount:     amount,
			Department: e.department,
		})
	}
	return out, true
}

var currencyRe = regexp.MustCompile(`(?i)^\s*(?:kes|ksh)\.?\s*`)

// ParseAmount parses a money cell. Thousands separators and a leading
// currency code are ignored; an empty cell is 0.
func ParseAmount(v string) (float64, bool) {
	v = currencyRe.ReplaceAllString(v, "")
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if v == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
