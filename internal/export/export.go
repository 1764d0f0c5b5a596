// Package export writes mapping tables as styled XLSX workbooks or CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	sheetName      = "Sheet1"
	widthPadding   = 2
	maxColumnWidth = 100
)

// Table is an ordered set of columns and rows. Cell values are strings or
// numbers; missing cells are written empty.
type Table struct {
	Columns []string
	Rows    []map[string]any
	// Widths presets column widths in characters. Longer content widens
	// the column.
	Widths map[string]float64
}

// NewTable returns an empty table with the given columns.
func NewTable(columns []string, widths map[string]float64) *Table {
	return &Table{Columns: columns, Widths: widths}
}

// Append adds one row.
func (t *Table) Append(row map[string]any) {
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Column returns the values of one column as text.
func (t *Table) Column(name string) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = Text(r[name])
	}
	return out
}

// OrderColumns returns the template columns followed by any canonical
// columns the template lacks. Duplicates keep their first position.
func OrderColumns(template, canonical []string) []string {
	seen := make(map[string]bool, len(template)+len(canonical))
	out := make([]string, 0, len(template)+len(canonical))
	for _, group := range [][]string{template, canonical} {
		for _, c := range group {
			if c == "" || seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Text formats a cell value for CSV output and width measurement.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

// ColumnWidth returns the display width of a column: the preset width or
// the header length, widened to the longest value, plus padding, capped at
// maxColumnWidth.
func (t *Table) ColumnWidth(name string) float64 {
	base, ok := t.Widths[name]
	if !ok {
		base = float64(utf8.RuneCountInString(name))
	}
	for _, r := range t.Rows {
		base = max(base, float64(utf8.RuneCountInString(Text(r[name]))))
	}
	return min(base+widthPadding, maxColumnWidth)
}

// Write writes t to path as .xlsx or .csv depending on the extension.
func Write(path string, t *Table) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "export: create output directory")
		}
	}

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		err = WriteXLSX(path, t)
	case ".csv":
		err = WriteCSV(path, t)
	default:
		return eris.Errorf("export: unsupported output format %q", filepath.Ext(path))
	}
	if err != nil {
		return err
	}

	zap.L().Info("export: wrote output",
		zap.String("path", path),
		zap.Int("rows", t.Len()),
		zap.Int("columns", len(t.Columns)),
	)
	return nil
}

// WriteXLSX writes t with a bold, centered, wrapped header row, wrapped
// top-aligned body cells, sized columns and a frozen header.
func WriteXLSX(path string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "top", WrapText: true},
	})
	if err != nil {
		return eris.Wrap(err, "export: header style")
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return eris.Wrap(err, "export: body style")
	}

	for i, name := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return eris.Wrap(err, "export: header cell")
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return eris.Wrap(err, "export: set header")
		}
	}

	for r, row := range t.Rows {
		values := make([]any, len(t.Columns))
		for i, name := range t.Columns {
			if v, ok := row[name]; ok && v != nil {
				values[i] = v
			} else {
				values[i] = ""
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return eris.Wrap(err, "export: row cell")
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return eris.Wrapf(err, "export: write row %d", r+2)
		}
	}

	if len(t.Columns) > 0 {
		last, err := excelize.ColumnNumberToName(len(t.Columns))
		if err != nil {
			return eris.Wrap(err, "export: last column")
		}
		if err := f.SetCellStyle(sheetName, "A1", last+"1", headerStyle); err != nil {
			return eris.Wrap(err, "export: style header")
		}
		if len(t.Rows) > 0 {
			end := fmt.Sprintf("%s%d", last, len(t.Rows)+1)
			if err := f.SetCellStyle(sheetName, "A2", end, bodyStyle); err != nil {
				return eris.Wrap(err, "export: style body")
			}
		}
		for i, name := range t.Columns {
			col, _ := excelize.ColumnNumberToName(i + 1)
			if err := f.SetColWidth(sheetName, col, col, t.ColumnWidth(name)); err != nil {
				return eris.Wrap(err, "export: column width")
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return eris.Wrap(err, "export: freeze header")
	}

	if err := f.SaveAs(path); err != nil {
		return eris.Wrap(err, "export: save xlsx")
	}
	return nil
}

// WriteCSV writes t as a headered CSV file.
func WriteCSV(path string, t *Table) error {
	file, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create csv")
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(t.Columns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, name := range t.Columns {
			record[i] = Text(row[name])
		}
		if err := w.Write(record); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return file.Close()
}
