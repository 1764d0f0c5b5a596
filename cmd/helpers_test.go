//go:build !integration

package main

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/county-imes/imes-migrate/internal/config"
)

const storeSchema = `
CREATE TABLE kemri_departments (departmentId INTEGER PRIMARY KEY, name TEXT, voided INTEGER);
CREATE TABLE kemri_subcounties (subcountyId INTEGER PRIMARY KEY, name TEXT, voided INTEGER);
CREATE TABLE kemri_wards (wardId INTEGER PRIMARY KEY, name TEXT, subcountyId INTEGER, voided INTEGER);

INSERT INTO kemri_departments VALUES
	(1, 'Water, Environment, Natural Resources and Climate Change', 0),
	(2, 'Health and Sanitation', 0),
	(3, 'City of Kisumu', 0);
INSERT INTO kemri_subcounties VALUES (7, 'KISUMU CENTRAL', 0), (8, 'KISUMU EAST', 0);
INSERT INTO kemri_wards VALUES (100, 'KONDELE', 7, 0), (101, 'KAJULU', 8, 0), (102, 'NYALENDA ''A''', 7, 0);
`

// newTestStore writes a SQLite store with the reference tables and returns
// its path.
func newTestStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "imes.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(storeSchema)
	require.NoError(t, err)
	return path
}

// testConfig returns a config pointing at store with the containerized
// client disabled.
func testConfig(store string) *config.Config {
	return &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: store,
			Tables: config.TablesConfig{
				Departments: "kemri_departments",
				Subcounties: "kemri_subcounties",
				Wards:       "kemri_wards",
			},
		},
		Match: config.MatchConfig{
			DepartmentAliases: map[string]string{"city": "city of kisumu"},
			RejectWords:       []string{"municipality", "assembly"},
			SuggestThreshold:  0.85,
		},
		Load: config.LoadConfig{BatchSize: 2},
	}
}

type testSheet struct {
	name string
	rows [][]string
}

func writeWorkbook(t *testing.T, name string, sheets ...testSheet) string {
	t.Helper()
	f := xlsx.NewFile()
	for _, ts := range sheets {
		sh, err := f.AddSheet(ts.name)
		require.NoError(t, err)
		for _, cells := range ts.rows {
			row := sh.AddRow()
			for _, v := range cells {
				row.AddCell().SetString(v)
			}
		}
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.Save(path))
	return path
}
