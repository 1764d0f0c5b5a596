package db

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Task loads one CSV file into one table. Columns are taken from the CSV
// header by name, in this order.
type Task struct {
	File    string   `yaml:"file"`
	Table   string   `yaml:"table"`
	Columns []string `yaml:"columns"`
}

// Plan is an ordered list of load tasks.
type Plan struct {
	Tasks []Task `yaml:"tasks"`
}

// LoadPlan reads a YAML load plan. Relative task files resolve against the
// plan's directory.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "db: read load plan")
	}

	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, eris.Wrap(err, "db: parse load plan")
	}
	if len(p.Tasks) == 0 {
		return nil, eris.Errorf("db: load plan %s has no tasks", path)
	}

	dir := filepath.Dir(path)
	for i, t := range p.Tasks {
		if t.File == "" || t.Table == "" || len(t.Columns) == 0 {
			return nil, eris.Errorf("db: load plan task %d needs file, table and columns", i+1)
		}
		if !filepath.IsAbs(t.File) {
			p.Tasks[i].File = filepath.Join(dir, t.File)
		}
	}
	return &p, nil
}

// ReadRows reads a headered CSV file and projects the named columns in
// order. Empty cells become NULL. A column missing from the header is an
// error.
func ReadRows(path string, columns []string) ([][]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "db: open csv")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // allow variable fields

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "db: read csv header")
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	pos := make([]int, len(columns))
	for i, c := range columns {
		j, ok := index[c]
		if !ok {
			return nil, eris.Errorf("db: column %q not in %s", c, filepath.Base(path))
		}
		pos[i] = j
	}

	var rows [][]any
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "db: read csv row")
		}
		row := make([]any, len(columns))
		for i, j := range pos {
			if j < len(record) && record[j] != "" {
				row[i] = record[j]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
