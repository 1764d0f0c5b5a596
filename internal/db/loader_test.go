package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
CREATE TABLE kemri_contractors (contractorId INTEGER PRIMARY KEY, companyName TEXT NOT NULL, email TEXT, voided INTEGER);
CREATE TABLE kemri_contractor_users (userId INTEGER, contractorId INTEGER);
`)
	require.NoError(t, err)
	return db
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestReadRows_ProjectsByHeader(t *testing.T) {
	path := writeFile(t, t.TempDir(), "contractors.csv",
		"\ufeffemail,contractorId,companyName,extra\n"+
			"a@example.com,1,Acme Builders,x\n"+
			",2,Lakeside Works\n")

	rows, err := ReadRows(path, []string{"contractorId", "companyName", "email"})
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{"1", "Acme Builders", "a@example.com"},
		{"2", "Lakeside Works", nil},
	}, rows)
}

func TestReadRows_MissingColumn(t *testing.T) {
	path := writeFile(t, t.TempDir(), "contractors.csv", "contractorId\n1\n")
	_, err := ReadRows(path, []string{"contractorId", "companyName"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "companyName" not in contractors.csv`)
}

func TestReadRows_EmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.csv", "")
	rows, err := ReadRows(path, []string{"a"})
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestInsertRows_Batches(t *testing.T) {
	db := openSQLite(t)
	rows := [][]any{
		{1, "Acme Builders", nil, 0},
		{2, "Lakeside Works", "l@example.com", 0},
		{3, "Kano Plains Ltd", nil, 1},
	}

	n, err := InsertRows(context.Background(), db, "sqlite", "kemri_contractors",
		[]string{"contractorId", "companyName", "email", "voided"}, rows, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, 3, count(t, db, "kemri_contractors"))

	var email sql.NullString
	require.NoError(t, db.QueryRow("SELECT email FROM kemri_contractors WHERE contractorId = 1").Scan(&email))
	assert.False(t, email.Valid)
}

func TestInsertRows_RollsBackOnFailure(t *testing.T) {
	db := openSQLite(t)
	rows := [][]any{
		{1, "Acme Builders"},
		{2, nil},
	}

	_, err := InsertRows(context.Background(), db, "sqlite", "kemri_contractors",
		[]string{"contractorId", "companyName"}, rows, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db: insert into kemri_contractors (rows 2-2)")
	assert.Equal(t, 0, count(t, db, "kemri_contractors"))
}

func TestInsertRows_RowWidthMismatch(t *testing.T) {
	db := openSQLite(t)
	_, err := InsertRows(context.Background(), db, "sqlite", "kemri_contractors",
		[]string{"contractorId", "companyName"}, [][]any{{1}}, 10)
	require.Error(t, err)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`kemri_users`", quoteIdent("mysql", "kemri_users"))
	assert.Equal(t, "`imes`.`kemri_users`", quoteIdent("mysql", "imes.kemri_users"))
	assert.Equal(t, `"kemri_users"`, quoteIdent("sqlite", "kemri_users"))
	assert.Equal(t, `"odd""name"`, quoteIdent("sqlite", `odd"name`))
}

func TestLoadPlan(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plan.yaml", `
tasks:
  - file: kemri_contractors.csv
    table: kemri_contractors
    columns: [contractorId, companyName]
  - file: /abs/kemri_contractor_users.csv
    table: kemri_contractor_users
    columns: [userId, contractorId]
`)

	p, err := LoadPlan(path)
	require.NoError(t, err)
	require.Len(t, p.Tasks, 2)
	assert.Equal(t, filepath.Join(dir, "kemri_contractors.csv"), p.Tasks[0].File)
	assert.Equal(t, "/abs/kemri_contractor_users.csv", p.Tasks[1].File)
	assert.Equal(t, []string{"userId", "contractorId"}, p.Tasks[1].Columns)
}

func TestLoadPlan_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadPlan(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	_, err = LoadPlan(writeFile(t, dir, "empty.yaml", "tasks: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no tasks")

	_, err = LoadPlan(writeFile(t, dir, "partial.yaml", "tasks:\n  - file: a.csv\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task 1 needs file, table and columns")

	_, err = LoadPlan(writeFile(t, dir, "broken.yaml", "tasks: [\n"))
	require.Error(t, err)
}

func TestLoader_RunContinuesAfterFailure(t *testing.T) {
	db := openSQLite(t)
	dir := t.TempDir()
	writeFile(t, dir, "kemri_contractors.csv", "contractorId,companyName\n1,Acme Builders\n2,Lakeside Works\n")
	writeFile(t, dir, "kemri_contractor_users.csv", "userId,contractorId\n10,1\n")

	plan := &Plan{Tasks: []Task{
		{File: filepath.Join(dir, "missing.csv"), Table: "kemri_users", Columns: []string{"userId"}},
		{File: filepath.Join(dir, "kemri_contractors.csv"), Table: "kemri_contractors", Columns: []string{"contractorId", "companyName"}},
		{File: filepath.Join(dir, "kemri_contractor_users.csv"), Table: "kemri_contractor_users", Columns: []string{"userId", "contractorId"}},
	}}

	l := &Loader{Driver: "sqlite", DB: db, BatchSize: 500}
	results := l.Run(context.Background(), plan)
	require.Len(t, results, 3)
	assert.Error(t, results[0].Err)
	assert.Equal(t, int64(2), results[1].Rows)
	assert.Equal(t, int64(1), results[2].Rows)
	assert.Equal(t, 1, Failed(results))
	assert.Equal(t, 2, count(t, db, "kemri_contractors"))
}

func TestLoader_PostgresUsesCopy(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	path := writeFile(t, t.TempDir(), "kemri_contractor_users.csv", "userId,contractorId\n10,1\n11,1\n")
	mock.ExpectCopyFrom(pgx.Identifier{"kemri_contractor_users"}, []string{"userId", "contractorId"}).WillReturnResult(2)

	l := &Loader{Driver: "postgres", Pool: mock}
	n, err := l.RunTask(context.Background(), Task{File: path, Table: "kemri_contractor_users", Columns: []string{"userId", "contractorId"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_NoConnection(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.csv", "a\n1\n")

	_, err := (&Loader{Driver: "postgres"}).RunTask(context.Background(), Task{File: path, Table: "t", Columns: []string{"a"}})
	require.Error(t, err)

	_, err = (&Loader{Driver: "mysql"}).RunTask(context.Background(), Task{File: path, Table: "t", Columns: []string{"a"}})
	require.Error(t, err)
}
