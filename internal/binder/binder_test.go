package binder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chahine-tech/rowstore/internal/ast"
	"github.com/Chahine-tech/rowstore/internal/execerr"
)

func TestBindSubstitutesPlaceholders(t *testing.T) {
	got, err := Bind("SELECT * FROM t WHERE a = ? AND b = ?", []ast.Value{ast.Int(1), ast.Text("x")})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = 1 AND b = 'x'", got)
}

func TestBindIgnoresPlaceholdersInsideStringLiterals(t *testing.T) {
	got, err := Bind("SELECT '?' FROM t WHERE a = ?", []ast.Value{ast.Int(7)})
	require.NoError(t, err)
	assert.Equal(t, "SELECT '?' FROM t WHERE a = 7", got)
}

func TestBindHandlesDoubledQuoteEscapes(t *testing.T) {
	got, err := Bind("SELECT 'it''s ?' FROM t WHERE a = ?", []ast.Value{ast.Int(1)})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 'it''s ?' FROM t WHERE a = 1", got)
}

func TestBindEscapesSingleQuotesInTextParam(t *testing.T) {
	got, err := Bind("SELECT * FROM t WHERE a = ?", []ast.Value{ast.Text("it's")})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE a = 'it''s'", got)
}

func TestBindTooFewParamsErrors(t *testing.T) {
	_, err := Bind("SELECT * FROM t WHERE a = ? AND b = ?", []ast.Value{ast.Int(1)})
	require.Error(t, err)
	execErr, ok := err.(*execerr.Error)
	require.True(t, ok)
	assert.Equal(t, execerr.UnevenParameters, execErr.Kind)
}

func TestBindTooManyParamsErrors(t *testing.T) {
	_, err := Bind("SELECT * FROM t WHERE a = ?", []ast.Value{ast.Int(1), ast.Int(2)})
	require.Error(t, err)
}

func TestBindBlobParamIsBase64Encoded(t *testing.T) {
	got, err := Bind("SELECT ?", []ast.Value{ast.BlobVal([]byte("hi"))})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 'aGk='", got)
}
