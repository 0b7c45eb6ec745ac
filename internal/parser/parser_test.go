package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chahine-tech/rowstore/internal/ast"
)

func TestParseSelect(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		wantErr bool
	}{
		{name: "simple select", sql: `SELECT a, b FROM t`},
		{name: "select star", sql: `SELECT * FROM t`},
		{name: "select with where", sql: `SELECT a FROM t WHERE a > 1`},
		{name: "select with join", sql: `SELECT a FROM t1 JOIN t2 ON t1.id = t2.id`},
		{name: "select with left outer join", sql: `SELECT a FROM t1 LEFT OUTER JOIN t2 ON t1.id = t2.id`},
		{name: "select with group by having", sql: `SELECT a, COUNT(*) FROM t GROUP BY a HAVING COUNT(*) > 1`},
		{name: "select with order by limit offset", sql: `SELECT a FROM t ORDER BY a DESC LIMIT 10 OFFSET 5`},
		{name: "select with mysql limit shorthand", sql: `SELECT a FROM t LIMIT 5, 10`},
		{name: "missing from table name", sql: `SELECT a FROM`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, err := ParseStatements(tt.sql)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, stmts, 1)
			_, ok := stmts[0].(*ast.SelectStmt)
			assert.True(t, ok)
		})
	}
}

func TestParseLimitShorthandIsOffsetThenLimit(t *testing.T) {
	stmts, err := ParseStatements(`SELECT a FROM t LIMIT 5, 10`)
	require.NoError(t, err)
	sel := stmts[0].(*ast.SelectStmt)
	require.NotNil(t, sel.Limit)
	assert.Equal(t, 5, sel.Limit.Offset)
	assert.Equal(t, 10, sel.Limit.Limit)
}

func TestParseInsert(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{name: "values tuple", sql: `INSERT INTO t (a, b) VALUES (1, 'x')`},
		{name: "multi-row values", sql: `INSERT INTO t (a) VALUES (1), (2), (3)`},
		{name: "default values", sql: `INSERT INTO t DEFAULT VALUES`},
		{name: "or replace", sql: `INSERT OR REPLACE INTO t (a) VALUES (1)`},
		{name: "insert select", sql: `INSERT INTO t (a) SELECT a FROM u`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, err := ParseStatements(tt.sql)
			require.NoError(t, err)
			require.Len(t, stmts, 1)
			_, ok := stmts[0].(*ast.InsertStmt)
			assert.True(t, ok)
		})
	}
}

func TestParseInsertOrReplaceAction(t *testing.T) {
	stmts, err := ParseStatements(`INSERT OR REPLACE INTO t (a) VALUES (1)`)
	require.NoError(t, err)
	ins := stmts[0].(*ast.InsertStmt)
	assert.Equal(t, ast.ConflictReplace, ins.Action)
}

func TestParseUpdateDelete(t *testing.T) {
	stmts, err := ParseStatements(`UPDATE t SET a = 1, b = 2 WHERE id = 1; DELETE FROM t WHERE id = 2`)
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	upd, ok := stmts[0].(*ast.UpdateStmt)
	require.True(t, ok)
	assert.Len(t, upd.Set, 2)

	del, ok := stmts[1].(*ast.DeleteStmt)
	require.True(t, ok)
	assert.NotNil(t, del.Where)
}

func TestParseCreateTable(t *testing.T) {
	sql := `CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		age INTEGER DEFAULT 0,
		CHECK (age >= 0)
	)`
	stmts, err := ParseStatements(sql)
	require.NoError(t, err)
	ct, ok := stmts[0].(*ast.CreateTableStmt)
	require.True(t, ok)
	assert.True(t, ct.IfNotExists)
	assert.Len(t, ct.Columns, 3)
	assert.True(t, ct.Columns[0].IsPrimaryKey)
	assert.True(t, ct.Columns[0].AutoIncrement)
}

func TestParseConflictActionWordIsCaseInsensitive(t *testing.T) {
	for _, word := range []string{"abort", "ABORT", "Abort"} {
		stmts, err := ParseStatements(`INSERT OR ` + word + ` INTO t (a) VALUES (1)`)
		require.NoError(t, err)
		ins := stmts[0].(*ast.InsertStmt)
		assert.Equal(t, ast.ConflictAbort, ins.Action)
	}
}

func TestParseTransactionStatements(t *testing.T) {
	stmts, err := ParseStatements(`BEGIN; COMMIT;`)
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	begin := stmts[0].(*ast.TransactionStmt)
	assert.Equal(t, ast.TxnBegin, begin.Kind)
	commit := stmts[1].(*ast.TransactionStmt)
	assert.Equal(t, ast.TxnCommit, commit.Kind)
}

func TestParseRollbackToSavepoint(t *testing.T) {
	stmts, err := ParseStatements(`ROLLBACK TO SAVEPOINT sp1`)
	require.NoError(t, err)
	rb := stmts[0].(*ast.TransactionStmt)
	assert.Equal(t, "sp1", rb.ToSavepoint)
}

func TestParseExpressionPrecedence(t *testing.T) {
	stmts, err := ParseStatements(`SELECT a FROM t WHERE a = 1 AND b = 2 OR c = 3`)
	require.NoError(t, err)
	sel := stmts[0].(*ast.SelectStmt)
	bin, ok := sel.Where.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "OR", bin.Op)
}

func TestParseCaseRequiresElse(t *testing.T) {
	_, err := ParseStatements(`SELECT CASE WHEN a = 1 THEN 'x' END FROM t`)
	assert.Error(t, err)
}
