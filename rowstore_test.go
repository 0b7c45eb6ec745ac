package rowstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chahine-tech/rowstore/internal/ast"
)

func TestEngineExecuteAndQuery(t *testing.T) {
	e := New(nil)
	_, err := e.Execute(`CREATE TABLE t (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT)`)
	require.NoError(t, err)

	_, err = e.Execute(`INSERT INTO t (name) VALUES (?)`, ast.Text("alice"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.LastInsertedRowID())

	rows, err := e.Query(`SELECT name FROM t WHERE id = ?`, ast.Int(1))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ast.Text("alice"), rows[0]["name"])
}

func TestEngineQueryRejectsNonFinalSelect(t *testing.T) {
	e := New(nil)
	_, err := e.Execute(`CREATE TABLE t (id INTEGER)`)
	require.NoError(t, err)
	_, err = e.Query(`SELECT * FROM t; INSERT INTO t (id) VALUES (1)`)
	assert.Error(t, err)
}

func TestEngineExecuteRejectsSelect(t *testing.T) {
	e := New(nil)
	_, err := e.Execute(`CREATE TABLE t (id INTEGER)`)
	require.NoError(t, err)
	_, err = e.Execute(`SELECT * FROM t`)
	assert.Error(t, err)
}

func TestEngineHasTable(t *testing.T) {
	e := New(nil)
	assert.False(t, e.HasTable("t"))
	_, err := e.Execute(`CREATE TABLE t (id INTEGER)`)
	require.NoError(t, err)
	assert.True(t, e.HasTable("t"))
}
