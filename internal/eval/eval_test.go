package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chahine-tech/rowstore/internal/ast"
)

func lit(v ast.Value) ast.Expr { return &ast.Literal{Value: v} }

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		name string
		expr ast.Expr
		want ast.Value
	}{
		{
			name: "integer addition",
			expr: &ast.Binary{Op: "+", L: lit(ast.Int(2)), R: lit(ast.Int(3))},
			want: ast.Int(5),
		},
		{
			name: "text concatenation via plus",
			expr: &ast.Binary{Op: "+", L: lit(ast.Text("foo")), R: lit(ast.Text("bar"))},
			want: ast.Text("foobar"),
		},
		{
			name: "real division",
			expr: &ast.Binary{Op: "/", L: lit(ast.Real(9)), R: lit(ast.Real(2))},
			want: ast.Real(4.5),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(NewContext(), tt.expr, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalDivisionByZeroReturnsLiteralText(t *testing.T) {
	got, err := Eval(NewContext(), &ast.Binary{Op: "/", L: lit(ast.Int(1)), R: lit(ast.Int(0))}, nil)
	require.NoError(t, err)
	assert.Equal(t, ast.Text("Error: division by zero."), got)
}

func TestEvalComparisonAndLogic(t *testing.T) {
	expr := &ast.Binary{
		Op: "AND",
		L:  &ast.Binary{Op: ">", L: lit(ast.Int(2)), R: lit(ast.Int(1))},
		R:  &ast.Binary{Op: "=", L: lit(ast.Text("a")), R: lit(ast.Text("a"))},
	}
	got, err := Eval(NewContext(), expr, nil)
	require.NoError(t, err)
	assert.Equal(t, ast.Bool(true), got)
}

func TestEvalLike(t *testing.T) {
	tests := []struct {
		pattern string
		text    string
		want    bool
	}{
		{"f%", "foobar", true},
		{"f_o", "foo", true},
		{"f_o", "fooo", false},
		{"BAR", "bar", true}, // LIKE is case-insensitive
	}
	for _, tt := range tests {
		got, err := Eval(NewContext(), &ast.Binary{Op: "LIKE", L: lit(ast.Text(tt.text)), R: lit(ast.Text(tt.pattern))}, nil)
		require.NoError(t, err)
		assert.Equal(t, ast.Bool(tt.want), got, "pattern=%q text=%q", tt.pattern, tt.text)
	}
}

func TestEvalBetween(t *testing.T) {
	got, err := Eval(NewContext(), &ast.Between{X: lit(ast.Int(5)), Low: lit(ast.Int(1)), High: lit(ast.Int(10))}, nil)
	require.NoError(t, err)
	assert.Equal(t, ast.Bool(true), got)
}

func TestEvalIn(t *testing.T) {
	expr := &ast.In{X: lit(ast.Int(2)), List: []ast.Expr{lit(ast.Int(1)), lit(ast.Int(2)), lit(ast.Int(3))}}
	got, err := Eval(NewContext(), expr, nil)
	require.NoError(t, err)
	assert.Equal(t, ast.Bool(true), got)
}

func TestEvalCaseSearched(t *testing.T) {
	expr := &ast.Case{
		Whens: []*ast.When{
			{Cond: &ast.Binary{Op: "=", L: lit(ast.Int(1)), R: lit(ast.Int(2))}, Then: lit(ast.Text("no"))},
		},
		Else: lit(ast.Text("yes")),
	}
	got, err := Eval(NewContext(), expr, nil)
	require.NoError(t, err)
	assert.Equal(t, ast.Text("yes"), got)
}

func TestEvalCaseCompareForm(t *testing.T) {
	expr := &ast.Case{
		Compare: lit(ast.Int(2)),
		Whens: []*ast.When{
			{Cond: lit(ast.Int(1)), Then: lit(ast.Text("one"))},
			{Cond: lit(ast.Int(2)), Then: lit(ast.Text("two"))},
		},
		Else: lit(ast.Text("other")),
	}
	got, err := Eval(NewContext(), expr, nil)
	require.NoError(t, err)
	assert.Equal(t, ast.Text("two"), got)
}

func TestEvalCastCoercion(t *testing.T) {
	tests := []struct {
		name string
		v    ast.Value
		typ  ast.ColumnType
		want ast.Value
	}{
		{"text to integer", ast.Text("42"), ast.ColInteger, ast.Int(42)},
		{"integer to text", ast.Int(7), ast.ColText, ast.Text("7")},
		{"text true to bool", ast.Text("true"), ast.ColBool, ast.Bool(true)},
		{"integer to real", ast.Int(3), ast.ColReal, ast.Real(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(NewContext(), &ast.Cast{X: lit(tt.v), Type: tt.typ}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalColumnLookupQualifiedThenBare(t *testing.T) {
	row := ast.Record{"t.a": ast.Int(1), "a": ast.Int(2)}
	got, err := Eval(NewContext(), &ast.ColumnRef{Table: "t", Column: "a"}, row)
	require.NoError(t, err)
	assert.Equal(t, ast.Int(1), got)

	got, err = Eval(NewContext(), &ast.ColumnRef{Column: "a"}, row)
	require.NoError(t, err)
	assert.Equal(t, ast.Int(2), got)
}

func TestAggregateAccumulationIsPerContext(t *testing.T) {
	rows := []ast.Record{{"a": ast.Int(1)}, {"a": ast.Int(2)}, {"a": ast.Int(3)}}
	countExpr := &ast.FuncCall{Name: "COUNT", Args: []ast.Expr{&ast.Star{}}}
	sumExpr := &ast.FuncCall{Name: "SUM", Args: []ast.Expr{&ast.ColumnRef{Column: "a"}}}

	ctx := NewContext()
	ctx.Accumulating = true
	for _, row := range rows {
		_, err := Eval(ctx, countExpr, row)
		require.NoError(t, err)
		_, err = Eval(ctx, sumExpr, row)
		require.NoError(t, err)
	}
	ctx.Accumulating = false

	count, err := Eval(ctx, countExpr, nil)
	require.NoError(t, err)
	assert.Equal(t, ast.Int(3), count)

	sum, err := Eval(ctx, sumExpr, nil)
	require.NoError(t, err)
	assert.Equal(t, ast.Int(6), sum)

	// A second, independent context must start from zero: accumulation
	// state lives on eval.Context, never process-wide (spec's Open
	// Question decision recorded in DESIGN.md).
	ctx2 := NewContext()
	ctx2.Accumulating = true
	_, err = Eval(ctx2, countExpr, rows[0])
	require.NoError(t, err)
	ctx2.Accumulating = false
	count2, err := Eval(ctx2, countExpr, nil)
	require.NoError(t, err)
	assert.Equal(t, ast.Int(1), count2)
}

func TestContainsAggregate(t *testing.T) {
	assert.True(t, ContainsAggregate(&ast.FuncCall{Name: "COUNT", Args: []ast.Expr{&ast.Star{}}}))
	assert.False(t, ContainsAggregate(&ast.FuncCall{Name: "UPPER", Args: []ast.Expr{lit(ast.Text("x"))}}))
	assert.True(t, ContainsAggregate(&ast.Binary{Op: "+", L: &ast.FuncCall{Name: "SUM", Args: []ast.Expr{lit(ast.Int(1))}}, R: lit(ast.Int(1))}))
}
