// Package sheet reads loosely structured ADP and budget workbooks: it opens
// .xlsx, .xls and .csv files as named cell grids, finds the header row,
// maps columns by header keywords and walks the data rows.
package sheet

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Sheet is one named cell grid. Rows may be ragged or nil.
type Sheet struct {
	Name string
	Rows [][]string
}

// Cell returns the trimmed value at row r, column c, or "" when out of range.
func (s *Sheet) Cell(r, c int) string {
	if r < 0 || r >= len(s.Rows) || c < 0 || c >= len(s.Rows[r]) {
		return ""
	}
	return strings.TrimSpace(s.Rows[r][c])
}

// Blank reports whether every cell of row r is empty.
func (s *Sheet) Blank(r int) bool {
	if r < 0 || r >= len(s.Rows) {
		return true
	}
	for _, v := range s.Rows[r] {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Open reads every sheet of the workbook at path. The reader is chosen by
// file extension.
func Open(path string) ([]Sheet, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, eris.Wrapf(err, "sheet: open %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path)
	case ".xls":
		return ReadXLS(path)
	case ".csv":
		return ReadCSV(path)
	default:
		return nil, eris.Errorf("sheet: unsupported workbook format %q", filepath.Ext(path))
	}
}

// ReadXLSX reads all sheets of an Office Open XML workbook.
func ReadXLSX(path string) ([]Sheet, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: open xlsx")
	}

	sheets := make([]Sheet, 0, len(f.Sheets))
	for _, sh := range f.Sheets {
		s := Sheet{Name: sh.Name, Rows: make([][]string, 0, len(sh.Rows))}
		for _, row := range sh.Rows {
			s.Rows = append(s.Rows, rowToStrings(row))
		}
		sheets = append(sheets, s)
	}
	return sheets, nil
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		if cell != nil {
			cells[j] = cell.String()
		}
	}
	return cells
}

// ReadXLS reads all sheets of a legacy BIFF workbook.
func ReadXLS(path string) ([]Sheet, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, eris.Wrap(err, "sheet: open xls")
	}

	var sheets []Sheet
	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		s := Sheet{Name: ws.Name}
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := ws.Row(r)
			if row == nil {
				s.Rows = append(s.Rows, nil)
				continue
			}
			var cells []string
			for c := 0; c <= row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			s.Rows = append(s.Rows, trimTrailing(cells))
		}
		sheets = append(sheets, s)
	}
	return sheets, nil
}

func trimTrailing(cells []string) []string {
	n := len(cells)
	for n > 0 && strings.TrimSpace(cells[n-1]) == "" {
		n--
	}
	return cells[:n]
}

// ReadCSV reads a CSV file as a single sheet named after the file.
func ReadCSV(path string) ([]Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: read csv")
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s := Sheet{Name: name}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "sheet: csv read row")
		}
		s.Rows = append(s.Rows, record)
	}
	return []Sheet{s}, nil
}

// TemplateColumns returns the header cells of the first non-blank row of
// the first sheet of the template workbook at path.
func TemplateColumns(path string) ([]string, error) {
	sheets, err := Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: template")
	}
	if len(sheets) == 0 {
		return nil, eris.Errorf("sheet: template %s has no sheets", path)
	}

	s := &sheets[0]
	for r := range s.Rows {
		if s.Blank(r) {
			continue
		}
		var cols []string
		for _, v := range s.Rows[r] {
			if v = strings.TrimSpace(v); v != "" {
				cols = append(cols, v)
			}
		}
		return cols, nil
	}
	return nil, eris.Errorf("sheet: template %s has no header row", path)
}
