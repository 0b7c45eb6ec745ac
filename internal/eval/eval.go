package eval

import (
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Chahine-tech/rowstore/internal/ast"
	"github.com/Chahine-tech/rowstore/internal/execerr"
)

// divByZero is the text spec §4.5 requires binary arithmetic division
// by zero to surface.
const divByZero = "Error: division by zero."

// Eval walks expr against row under ctx and returns its value
// (spec §4.5). During pass 1 (ctx.Accumulating), the return value of
// an aggregate call is meaningless; only its accumulator is updated.
func Eval(ctx *Context, expr ast.Expr, row ast.Record) (ast.Value, error) {
	switch n := expr.(type) {
	case *ast.Literal:
		return n.Value, nil
	case *ast.ColumnRef:
		return lookupColumn(row, n)
	case *ast.Group:
		return Eval(ctx, n.X, row)
	case *ast.Unary:
		return evalUnary(ctx, n, row)
	case *ast.Binary:
		return evalBinary(ctx, n, row)
	case *ast.IsNullTest:
		v, err := Eval(ctx, n.X, row)
		if err != nil {
			return ast.Value{}, err
		}
		result := v.IsNull()
		if n.Negate {
			result = !result
		}
		return ast.Bool(result), nil
	case *ast.Between:
		return evalBetween(ctx, n, row)
	case *ast.In:
		return evalIn(ctx, n, row)
	case *ast.FuncCall:
		return evalFuncCall(ctx, n, row)
	case *ast.Case:
		return evalCase(ctx, n, row)
	case *ast.Cast:
		v, err := Eval(ctx, n.X, row)
		if err != nil {
			return ast.Value{}, err
		}
		return castValue(v, n.Type)
	case *ast.Collate:
		// Collation implementations are a non-goal; COLLATE evaluates
		// exactly like its operand (spec §1/§9).
		return Eval(ctx, n.X, row)
	case *ast.Star:
		return ast.Value{}, execerr.New(execerr.SyntaxError, "'*' cannot be evaluated as a value")
	default:
		return ast.Value{}, execerr.New(execerr.SyntaxError, "cannot evaluate expression of type %T", expr)
	}
}

// lookupColumn resolves a (possibly qualified) column reference against
// row: qualified `alias.col` first, then the bare column name
// (spec §4.5).
func lookupColumn(row ast.Record, ref *ast.ColumnRef) (ast.Value, error) {
	if ref.Table != "" {
		if v, ok := row[ref.Table+"."+ref.Column]; ok {
			return v, nil
		}
	}
	if v, ok := row[ref.Column]; ok {
		return v, nil
	}
	return ast.Value{}, execerr.OnColumn(execerr.UnknownColumn, "", ref.Column,
		"unknown column %q", ref.Column)
}

func evalUnary(ctx *Context, n *ast.Unary, row ast.Record) (ast.Value, error) {
	v, err := Eval(ctx, n.X, row)
	if err != nil {
		return ast.Value{}, err
	}
	switch n.Op {
	case "+":
		return v, nil
	case "-":
		switch v.Tag {
		case ast.TagInteger:
			return ast.Int(-v.I), nil
		case ast.TagReal:
			return ast.Real(-v.R), nil
		case ast.TagNull:
			return ast.Null(), nil
		default:
			return ast.Value{}, execerr.New(execerr.SyntaxError, "cannot negate a %s value", v.Tag)
		}
	case "NOT":
		b, err := asBool(v)
		if err != nil {
			return ast.Value{}, err
		}
		return ast.Bool(!b), nil
	default:
		return ast.Value{}, execerr.New(execerr.SyntaxError, "unknown unary operator %q", n.Op)
	}
}

func asBool(v ast.Value) (bool, error) {
	if v.Tag == ast.TagBool {
		return v.B, nil
	}
	if v.Tag == ast.TagNull {
		return false, nil
	}
	return false, execerr.New(execerr.SyntaxError, "expected a boolean, got %s", v.Tag)
}

func evalBinary(ctx *Context, n *ast.Binary, row ast.Record) (ast.Value, error) {
	switch n.Op {
	case "AND":
		l, err := Eval(ctx, n.L, row)
		if err != nil {
			return ast.Value{}, err
		}
		lb, err := asBool(l)
		if err != nil {
			return ast.Value{}, err
		}
		if !lb {
			return ast.Bool(false), nil
		}
		r, err := Eval(ctx, n.R, row)
		if err != nil {
			return ast.Value{}, err
		}
		rb, err := asBool(r)
		if err != nil {
			return ast.Value{}, err
		}
		return ast.Bool(rb), nil
	case "OR":
		l, err := Eval(ctx, n.L, row)
		if err != nil {
			return ast.Value{}, err
		}
		lb, err := asBool(l)
		if err != nil {
			return ast.Value{}, err
		}
		if lb {
			return ast.Bool(true), nil
		}
		r, err := Eval(ctx, n.R, row)
		if err != nil {
			return ast.Value{}, err
		}
		rb, err := asBool(r)
		if err != nil {
			return ast.Value{}, err
		}
		return ast.Bool(rb), nil
	}

	l, err := Eval(ctx, n.L, row)
	if err != nil {
		return ast.Value{}, err
	}
	r, err := Eval(ctx, n.R, row)
	if err != nil {
		return ast.Value{}, err
	}

	switch n.Op {
	case "+", "-", "*", "/":
		return evalArithmetic(n.Op, l, r)
	case "=", "!=", "<", ">", "<=", ">=":
		return evalComparison(n.Op, l, r)
	case "LIKE", "GLOB", "REGEXP", "MATCH":
		return evalTextPredicate(n.Op, l, r, n.Negate)
	default:
		return ast.Value{}, execerr.New(execerr.SyntaxError, "unknown binary operator %q", n.Op)
	}
}

func evalArithmetic(op string, l, r ast.Value) (ast.Value, error) {
	if op == "+" && (l.Tag == ast.TagText || r.Tag == ast.TagText) {
		return ast.Text(l.String() + r.String()), nil
	}
	if l.IsNull() || r.IsNull() {
		return ast.Null(), nil
	}
	if !l.IsNumeric() || !r.IsNumeric() {
		return ast.Value{}, execerr.New(execerr.SyntaxError,
			"arithmetic requires matching numeric tags, got %s and %s", l.Tag, r.Tag)
	}
	if l.Tag != r.Tag {
		return ast.Value{}, execerr.New(execerr.SyntaxError,
			"arithmetic requires matching numeric tags, got %s and %s", l.Tag, r.Tag)
	}
	if l.Tag == ast.TagInteger {
		switch op {
		case "+":
			return ast.Int(l.I + r.I), nil
		case "-":
			return ast.Int(l.I - r.I), nil
		case "*":
			return ast.Int(l.I * r.I), nil
		case "/":
			if r.I == 0 {
				return ast.Text(divByZero), nil
			}
			return ast.Int(l.I / r.I), nil
		}
	}
	switch op {
	case "+":
		return ast.Real(l.R + r.R), nil
	case "-":
		return ast.Real(l.R - r.R), nil
	case "*":
		return ast.Real(l.R * r.R), nil
	case "/":
		if r.R == 0 {
			return ast.Text(divByZero), nil
		}
		return ast.Real(l.R / r.R), nil
	}
	return ast.Value{}, execerr.New(execerr.SyntaxError, "unreachable arithmetic operator %q", op)
}

func evalComparison(op string, l, r ast.Value) (ast.Value, error) {
	if l.IsNull() || r.IsNull() {
		switch op {
		case "=", "!=":
			return ast.Bool(false), nil
		default:
			return ast.Null(), nil
		}
	}
	if l.Tag != r.Tag && !(l.IsNumeric() && r.IsNumeric()) {
		return ast.Value{}, execerr.New(execerr.SyntaxError,
			"comparison requires matching tags, got %s and %s", l.Tag, r.Tag)
	}
	cmp, err := compareValues(l, r)
	if err != nil {
		return ast.Value{}, err
	}
	switch op {
	case "=":
		return ast.Bool(cmp == 0), nil
	case "!=":
		return ast.Bool(cmp != 0), nil
	case "<":
		return ast.Bool(cmp < 0), nil
	case ">":
		return ast.Bool(cmp > 0), nil
	case "<=":
		return ast.Bool(cmp <= 0), nil
	case ">=":
		return ast.Bool(cmp >= 0), nil
	default:
		return ast.Value{}, execerr.New(execerr.SyntaxError, "unknown comparison operator %q", op)
	}
}

// compareValues orders two non-null values of orderable type, returning
// a negative, zero, or positive int (spec §4.5's "ordering operators
// require orderable types").
func compareValues(l, r ast.Value) (int, error) {
	switch {
	case l.IsNumeric() && r.IsNumeric():
		lf, rf := numericFloat(l), numericFloat(r)
		switch {
		case lf < rf:
			return -1, nil
		case lf > rf:
			return 1, nil
		default:
			return 0, nil
		}
	case l.Tag == ast.TagText && r.Tag == ast.TagText:
		return strings.Compare(l.S, r.S), nil
	case l.Tag == ast.TagBool && r.Tag == ast.TagBool:
		if l.B == r.B {
			return 0, nil
		}
		if !l.B {
			return -1, nil
		}
		return 1, nil
	case l.Tag == ast.TagDate && r.Tag == ast.TagDate:
		switch {
		case l.T.Before(r.T):
			return -1, nil
		case l.T.After(r.T):
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, execerr.New(execerr.SyntaxError, "values of type %s are not orderable", l.Tag)
	}
}

// Compare orders two non-null, tag-compatible values, returning a
// negative, zero, or positive int. Exposed for callers outside this
// package that need the same ordering rule ORDER BY uses (spec §4.7).
func Compare(a, b ast.Value) (int, error) {
	return compareValues(a, b)
}

func numericFloat(v ast.Value) float64 {
	if v.Tag == ast.TagInteger {
		return float64(v.I)
	}
	return v.R
}

func evalTextPredicate(op string, l, r ast.Value, negate bool) (ast.Value, error) {
	if l.IsNull() || r.IsNull() {
		return ast.Null(), nil
	}
	if l.Tag != ast.TagText || r.Tag != ast.TagText {
		return ast.Value{}, execerr.New(execerr.SyntaxError,
			"%s requires text operands, got %s and %s", op, l.Tag, r.Tag)
	}
	var matched bool
	var err error
	switch op {
	case "LIKE":
		matched = likeMatch(r.S, l.S)
	case "GLOB":
		matched, err = path.Match(r.S, l.S)
		if err != nil {
			return ast.Value{}, execerr.New(execerr.SyntaxError, "malformed GLOB pattern %q", r.S)
		}
	case "REGEXP", "MATCH":
		re, rerr := regexp.Compile(r.S)
		if rerr != nil {
			return ast.Value{}, execerr.New(execerr.SyntaxError, "malformed regular expression %q", r.S)
		}
		matched = re.MatchString(l.S)
	}
	if err != nil {
		return ast.Value{}, err
	}
	if negate {
		matched = !matched
	}
	return ast.Bool(matched), nil
}

// likeMatch implements SQL LIKE with `%` (any run) and `_` (any one
// character) wildcards, case-insensitively as SQLite does for ASCII.
func likeMatch(pattern, text string) bool {
	var re strings.Builder
	re.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '%':
			re.WriteString(".*")
		case '_':
			re.WriteString(".")
		default:
			re.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	re.WriteString("$")
	matched, err := regexp.MatchString(re.String(), text)
	return err == nil && matched
}

func evalBetween(ctx *Context, n *ast.Between, row ast.Record) (ast.Value, error) {
	x, err := Eval(ctx, n.X, row)
	if err != nil {
		return ast.Value{}, err
	}
	low, err := Eval(ctx, n.Low, row)
	if err != nil {
		return ast.Value{}, err
	}
	high, err := Eval(ctx, n.High, row)
	if err != nil {
		return ast.Value{}, err
	}
	loCmp, err := evalComparison("<=", low, x)
	if err != nil {
		return ast.Value{}, err
	}
	hiCmp, err := evalComparison("<=", x, high)
	if err != nil {
		return ast.Value{}, err
	}
	result := loCmp.Tag == ast.TagBool && loCmp.B && hiCmp.Tag == ast.TagBool && hiCmp.B
	if n.Negate {
		result = !result
	}
	return ast.Bool(result), nil
}

func evalIn(ctx *Context, n *ast.In, row ast.Record) (ast.Value, error) {
	x, err := Eval(ctx, n.X, row)
	if err != nil {
		return ast.Value{}, err
	}
	found := false
	for _, item := range n.List {
		v, err := Eval(ctx, item, row)
		if err != nil {
			return ast.Value{}, err
		}
		if x.Tag == v.Tag {
			cmp, err := compareValues(x, v)
			if err == nil && cmp == 0 {
				found = true
				break
			}
		}
	}
	if n.Negate {
		found = !found
	}
	return ast.Bool(found), nil
}

func evalCase(ctx *Context, n *ast.Case, row ast.Record) (ast.Value, error) {
	var compareVal ast.Value
	hasCompare := n.Compare != nil
	if hasCompare {
		v, err := Eval(ctx, n.Compare, row)
		if err != nil {
			return ast.Value{}, err
		}
		compareVal = v
	}
	for _, w := range n.Whens {
		if hasCompare {
			v, err := Eval(ctx, w.Cond, row)
			if err != nil {
				return ast.Value{}, err
			}
			if v.Tag != compareVal.Tag {
				continue
			}
			cmp, err := compareValues(compareVal, v)
			if err != nil || cmp != 0 {
				continue
			}
		} else {
			v, err := Eval(ctx, w.Cond, row)
			if err != nil {
				return ast.Value{}, err
			}
			b, err := asBool(v)
			if err != nil {
				return ast.Value{}, err
			}
			if !b {
				continue
			}
		}
		return Eval(ctx, w.Then, row)
	}
	return Eval(ctx, n.Else, row)
}

// castValue coerces v to typ (spec §4.5).
func castValue(v ast.Value, typ ast.ColumnType) (ast.Value, error) {
	if v.IsNull() {
		return ast.Null(), nil
	}
	switch typ {
	case ast.ColInteger:
		switch v.Tag {
		case ast.TagInteger:
			return v, nil
		case ast.TagReal:
			return ast.Int(int64(v.R)), nil
		case ast.TagBool:
			return ast.Int(boolToInt(v.B)), nil
		case ast.TagText:
			i, err := strconv.ParseInt(strings.TrimSpace(v.S), 10, 64)
			if err != nil {
				f, ferr := strconv.ParseFloat(strings.TrimSpace(v.S), 64)
				if ferr != nil {
					return ast.Value{}, execerr.New(execerr.SyntaxError, "cannot cast %q to Integer", v.S)
				}
				return ast.Int(int64(f)), nil
			}
			return ast.Int(i), nil
		}
	case ast.ColReal:
		switch v.Tag {
		case ast.TagReal:
			return v, nil
		case ast.TagInteger:
			return ast.Real(float64(v.I)), nil
		case ast.TagBool:
			return ast.Real(float64(boolToInt(v.B))), nil
		case ast.TagText:
			f, err := strconv.ParseFloat(strings.TrimSpace(v.S), 64)
			if err != nil {
				return ast.Value{}, execerr.New(execerr.SyntaxError, "cannot cast %q to Real", v.S)
			}
			return ast.Real(f), nil
		}
	case ast.ColText:
		return ast.Text(v.String()), nil
	case ast.ColBool:
		switch v.Tag {
		case ast.TagBool:
			return v, nil
		case ast.TagInteger:
			return ast.Bool(v.I != 0), nil
		case ast.TagReal:
			return ast.Bool(v.R != 0), nil
		case ast.TagText:
			switch strings.ToLower(strings.TrimSpace(v.S)) {
			case "true", "on", "yes", "1":
				return ast.Bool(true), nil
			default:
				return ast.Bool(false), nil
			}
		}
	case ast.ColBlob:
		if v.Tag == ast.TagBlob {
			return v, nil
		}
		return ast.BlobVal([]byte(v.String())), nil
	case ast.ColDate:
		if v.Tag == ast.TagDate {
			return v, nil
		}
		if v.Tag == ast.TagText {
			t, err := time.Parse(time.RFC3339, v.S)
			if err != nil {
				return ast.Value{}, execerr.New(execerr.SyntaxError, "cannot cast %q to Date", v.S)
			}
			return ast.Date(t), nil
		}
	}
	return ast.Value{}, execerr.New(execerr.SyntaxError, "cannot cast a %s value to %s", v.Tag, typ)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
