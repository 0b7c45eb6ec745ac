package eval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chahine-tech/rowstore/internal/ast"
)

func call(name string, args ...ast.Expr) ast.Expr {
	return &ast.FuncCall{Name: name, Args: args}
}

func TestEvalScalarTrimFamily(t *testing.T) {
	got, err := evalScalar("TRIM", []ast.Value{ast.Text("  hi  ")})
	require.NoError(t, err)
	assert.Equal(t, ast.Text("hi"), got)

	got, err = evalScalar("LTRIM", []ast.Value{ast.Text("xxhixx"), ast.Text("x")})
	require.NoError(t, err)
	assert.Equal(t, ast.Text("hixx"), got)

	got, err = evalScalar("RTRIM", []ast.Value{ast.Text("xxhixx"), ast.Text("x")})
	require.NoError(t, err)
	assert.Equal(t, ast.Text("xxhi"), got)
}

func TestEvalScalarUpperLower(t *testing.T) {
	got, err := evalScalar("UPPER", []ast.Value{ast.Text("shout")})
	require.NoError(t, err)
	assert.Equal(t, ast.Text("SHOUT"), got)

	got, err = evalScalar("LOWER", []ast.Value{ast.Text("WHISPER")})
	require.NoError(t, err)
	assert.Equal(t, ast.Text("whisper"), got)
}

func TestEvalScalarLength(t *testing.T) {
	got, err := evalScalar("LENGTH", []ast.Value{ast.Text("hello")})
	require.NoError(t, err)
	assert.Equal(t, ast.Int(5), got)

	got, err = evalScalar("LENGTH", []ast.Value{ast.BlobVal([]byte("abc"))})
	require.NoError(t, err)
	assert.Equal(t, ast.Int(3), got)
}

func TestEvalScalarSubstr(t *testing.T) {
	tests := []struct {
		name string
		args []ast.Value
		want ast.Value
	}{
		{"basic 1-indexed", []ast.Value{ast.Text("hello world"), ast.Int(1), ast.Int(5)}, ast.Text("hello")},
		{"offset mid-string", []ast.Value{ast.Text("hello world"), ast.Int(7)}, ast.Text("world")},
		{"negative start from end", []ast.Value{ast.Text("hello"), ast.Int(-3)}, ast.Text("llo")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalScalar("SUBSTR", tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalScalarInstr(t *testing.T) {
	got, err := evalScalar("INSTR", []ast.Value{ast.Text("hello world"), ast.Text("world")})
	require.NoError(t, err)
	assert.Equal(t, ast.Int(7), got)

	got, err = evalScalar("INSTR", []ast.Value{ast.Text("hello"), ast.Text("xyz")})
	require.NoError(t, err)
	assert.Equal(t, ast.Int(0), got)
}

func TestEvalScalarReplace(t *testing.T) {
	got, err := evalScalar("REPLACE", []ast.Value{ast.Text("foo bar foo"), ast.Text("foo"), ast.Text("baz")})
	require.NoError(t, err)
	assert.Equal(t, ast.Text("baz bar baz"), got)
}

func TestEvalScalarAbs(t *testing.T) {
	got, err := evalScalar("ABS", []ast.Value{ast.Int(-5)})
	require.NoError(t, err)
	assert.Equal(t, ast.Int(5), got)

	got, err = evalScalar("ABS", []ast.Value{ast.Real(-2.5)})
	require.NoError(t, err)
	assert.Equal(t, ast.Real(2.5), got)
}

func TestEvalScalarRound(t *testing.T) {
	got, err := evalScalar("ROUND", []ast.Value{ast.Real(3.14159), ast.Int(2)})
	require.NoError(t, err)
	assert.Equal(t, ast.Real(3.14), got)

	got, err = evalScalar("ROUND", []ast.Value{ast.Real(3.6)})
	require.NoError(t, err)
	assert.Equal(t, ast.Real(4), got)
}

func TestEvalScalarCoalesceIfnullNullif(t *testing.T) {
	got, err := evalScalar("COALESCE", []ast.Value{ast.Null(), ast.Null(), ast.Int(7)})
	require.NoError(t, err)
	assert.Equal(t, ast.Int(7), got)

	got, err = evalScalar("IFNULL", []ast.Value{ast.Null(), ast.Text("fallback")})
	require.NoError(t, err)
	assert.Equal(t, ast.Text("fallback"), got)

	got, err = evalScalar("NULLIF", []ast.Value{ast.Int(5), ast.Int(5)})
	require.NoError(t, err)
	assert.True(t, got.IsNull())

	got, err = evalScalar("NULLIF", []ast.Value{ast.Int(5), ast.Int(6)})
	require.NoError(t, err)
	assert.Equal(t, ast.Int(5), got)
}

func TestEvalScalarNullPropagation(t *testing.T) {
	got, err := evalScalar("UPPER", []ast.Value{ast.Null()})
	require.NoError(t, err)
	assert.True(t, got.IsNull())
}

func TestEvalScalarDateFamily(t *testing.T) {
	fixed := ast.Date(time.Date(2024, 3, 15, 13, 45, 30, 0, time.UTC))

	got, err := evalScalar("DATE", []ast.Value{fixed})
	require.NoError(t, err)
	assert.Equal(t, ast.Text("2024-03-15"), got)

	got, err = evalScalar("TIME", []ast.Value{fixed})
	require.NoError(t, err)
	assert.Equal(t, ast.Text("13:45:30"), got)

	got, err = evalScalar("DATETIME", []ast.Value{fixed})
	require.NoError(t, err)
	assert.Equal(t, ast.Text("2024-03-15 13:45:30"), got)
}

func TestEvalScalarStrftime(t *testing.T) {
	fixed := ast.Date(time.Date(2024, 3, 15, 13, 45, 30, 0, time.UTC))
	got, err := evalScalar("STRFTIME", []ast.Value{ast.Text("%Y-%m-%d %H:%M:%S"), fixed})
	require.NoError(t, err)
	assert.Equal(t, ast.Text("2024-03-15 13:45:30"), got)
}

func TestEvalScalarJuliandayIsMonotonic(t *testing.T) {
	earlier := ast.Date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	later := ast.Date(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	earlierJD, err := evalScalar("JULIANDAY", []ast.Value{earlier})
	require.NoError(t, err)
	laterJD, err := evalScalar("JULIANDAY", []ast.Value{later})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, laterJD.R-earlierJD.R, 1e-9)
}

func TestEvalScalarCompare(t *testing.T) {
	got, err := evalScalar("COMPARE", []ast.Value{ast.Int(1), ast.Int(2)})
	require.NoError(t, err)
	assert.Equal(t, ast.Int(-1), got)
}

func TestEvalScalarUnknownFunctionErrors(t *testing.T) {
	_, err := evalScalar("NOT_A_REAL_FUNCTION", []ast.Value{ast.Int(1)})
	assert.Error(t, err)
}

func TestEvalFuncCallThroughTree(t *testing.T) {
	expr := call("UPPER", lit(ast.Text("hi")))
	got, err := Eval(NewContext(), expr, nil)
	require.NoError(t, err)
	assert.Equal(t, ast.Text("HI"), got)
}

func TestEvalFuncCallSubstrThroughTree(t *testing.T) {
	expr := call("SUBSTR", lit(ast.Text("hello world")), lit(ast.Int(1)), lit(ast.Int(5)))
	got, err := Eval(NewContext(), expr, nil)
	require.NoError(t, err)
	assert.Equal(t, ast.Text("hello"), got)
}
