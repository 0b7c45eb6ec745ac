package eval

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/Chahine-tech/rowstore/internal/ast"
	"github.com/Chahine-tech/rowstore/internal/execerr"
)

func evalFuncCall(ctx *Context, n *ast.FuncCall, row ast.Record) (ast.Value, error) {
	if isAggregateCall(n) {
		return evalAggregate(ctx, n, row)
	}
	args := make([]ast.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := Eval(ctx, a, row)
		if err != nil {
			return ast.Value{}, err
		}
		args[i] = v
	}
	return evalScalar(n.Name, args)
}

// evalAggregate runs one aggregate call under ctx (spec §4.5's two-pass
// protocol). During accumulate it updates the call's accumulator and
// returns a meaningless value; during report it returns the
// accumulated result.
func evalAggregate(ctx *Context, n *ast.FuncCall, row ast.Record) (ast.Value, error) {
	acc := ctx.accumulatorFor(n)
	acc.kind = n.Name

	if ctx.Accumulating {
		if n.Name == "COUNT" && len(n.Args) == 1 {
			if _, isStar := n.Args[0].(*ast.Star); isStar {
				acc.count++
				return ast.Null(), nil
			}
		}
		if len(n.Args) != 1 {
			return ast.Null(), execerr.New(execerr.SyntaxError, "%s takes exactly one argument", n.Name)
		}
		v, err := Eval(ctx, n.Args[0], row)
		if err != nil {
			return ast.Value{}, err
		}
		if v.IsNull() {
			return ast.Null(), nil
		}
		acc.count++
		if v.IsNumeric() {
			f := numericFloat(v)
			acc.sum += f
			if v.Tag != ast.TagInteger {
				acc.sumIsInt = false
			}
		}
		if !acc.haveMinMax {
			acc.min, acc.max = v, v
			acc.haveMinMax = true
		} else {
			if cmp, err := compareValues(v, acc.min); err == nil && cmp < 0 {
				acc.min = v
			}
			if cmp, err := compareValues(v, acc.max); err == nil && cmp > 0 {
				acc.max = v
			}
		}
		return ast.Null(), nil
	}

	switch n.Name {
	case "COUNT":
		return ast.Int(acc.count), nil
	case "SUM":
		if acc.count == 0 {
			return ast.Null(), nil
		}
		if acc.sumIsInt {
			return ast.Int(int64(acc.sum)), nil
		}
		return ast.Real(acc.sum), nil
	case "AVG":
		if acc.count == 0 {
			return ast.Null(), nil
		}
		return ast.Real(acc.sum / float64(acc.count)), nil
	case "MIN":
		if !acc.haveMinMax {
			return ast.Null(), nil
		}
		return acc.min, nil
	case "MAX":
		if !acc.haveMinMax {
			return ast.Null(), nil
		}
		return acc.max, nil
	default:
		return ast.Value{}, execerr.New(execerr.SyntaxError, "unknown aggregate function %q", n.Name)
	}
}

// evalScalar dispatches a non-aggregate function call by name
// (spec §4.2/§4.5).
func evalScalar(name string, args []ast.Value) (ast.Value, error) {
	switch name {
	case "LTRIM":
		return textArg1(args, strings.TrimLeft, " \t\n\r")
	case "RTRIM":
		return textArg1(args, strings.TrimRight, " \t\n\r")
	case "TRIM":
		return textArg1(args, strings.Trim, " \t\n\r")
	case "UPPER":
		return mapText(args, strings.ToUpper)
	case "LOWER":
		return mapText(args, strings.ToLower)
	case "LENGTH":
		if len(args) != 1 {
			return ast.Value{}, execerr.New(execerr.SyntaxError, "LENGTH takes exactly one argument")
		}
		if args[0].IsNull() {
			return ast.Null(), nil
		}
		switch args[0].Tag {
		case ast.TagText:
			return ast.Int(int64(len([]rune(args[0].S)))), nil
		case ast.TagBlob:
			return ast.Int(int64(len(args[0].Blob))), nil
		default:
			return ast.Int(int64(len([]rune(args[0].String())))), nil
		}
	case "SUBSTR":
		return evalSubstr(args)
	case "INSTR":
		return evalInstr(args)
	case "REPLACE":
		return evalReplace(args)
	case "ABS":
		return evalAbs(args)
	case "ROUND":
		return evalRound(args)
	case "RANDOM":
		return ast.Int(rand.Int63()), nil
	case "COALESCE":
		return evalCoalesce(args)
	case "IFNULL":
		if len(args) != 2 {
			return ast.Value{}, execerr.New(execerr.SyntaxError, "IFNULL takes exactly two arguments")
		}
		return evalCoalesce(args)
	case "NULLIF":
		if len(args) != 2 {
			return ast.Value{}, execerr.New(execerr.SyntaxError, "NULLIF takes exactly two arguments")
		}
		if args[0].Tag == args[1].Tag {
			if cmp, err := compareValues(args[0], args[1]); err == nil && cmp == 0 {
				return ast.Null(), nil
			}
		}
		return args[0], nil
	case "DATE", "TIME", "DATETIME":
		return evalDateFamily(name, args)
	case "NOW":
		return ast.Text(time.Now().UTC().Format(time.RFC3339)), nil
	case "JULIANDAY":
		return evalJulianday(args)
	case "STRFTIME":
		return evalStrftime(args)
	case "LAST_INSERT_ROWID":
		// Always evaluates to 0: the evaluator has no access to the
		// last inserted row id, and the store does not substitute it
		// (DataStore.LastInsertedRowID reports it instead).
		return ast.Int(0), nil
	case "COMPARE":
		if len(args) != 2 {
			return ast.Value{}, execerr.New(execerr.SyntaxError, "COMPARE takes exactly two arguments")
		}
		cmp, err := compareValues(args[0], args[1])
		if err != nil {
			return ast.Value{}, err
		}
		return ast.Int(int64(cmp)), nil
	default:
		return ast.Value{}, execerr.New(execerr.SyntaxError, "unknown function %q", name)
	}
}

func textArg1(args []ast.Value, trim func(string, string) string, cutset string) (ast.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return ast.Value{}, execerr.New(execerr.SyntaxError, "expected one or two arguments")
	}
	if args[0].IsNull() {
		return ast.Null(), nil
	}
	if args[0].Tag != ast.TagText {
		return ast.Value{}, execerr.New(execerr.SyntaxError, "expected a text argument, got %s", args[0].Tag)
	}
	if len(args) == 2 {
		if args[1].Tag != ast.TagText {
			return ast.Value{}, execerr.New(execerr.SyntaxError, "expected a text cutset argument, got %s", args[1].Tag)
		}
		cutset = args[1].S
	}
	return ast.Text(trim(args[0].S, cutset)), nil
}

func mapText(args []ast.Value, f func(string) string) (ast.Value, error) {
	if len(args) != 1 {
		return ast.Value{}, execerr.New(execerr.SyntaxError, "expected exactly one argument")
	}
	if args[0].IsNull() {
		return ast.Null(), nil
	}
	if args[0].Tag != ast.TagText {
		return ast.Value{}, execerr.New(execerr.SyntaxError, "expected a text argument, got %s", args[0].Tag)
	}
	return ast.Text(f(args[0].S)), nil
}

func evalSubstr(args []ast.Value) (ast.Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return ast.Value{}, execerr.New(execerr.SyntaxError, "SUBSTR takes two or three arguments")
	}
	if args[0].IsNull() {
		return ast.Null(), nil
	}
	if args[0].Tag != ast.TagText || !args[1].IsNumeric() {
		return ast.Value{}, execerr.New(execerr.SyntaxError, "SUBSTR expects (text, integer[, integer])")
	}
	runes := []rune(args[0].S)
	start := int(numericFloat(args[1]))
	if start > 0 {
		start--
	} else if start < 0 {
		start = len(runes) + start
		if start < 0 {
			start = 0
		}
	}
	length := len(runes) - start
	if len(args) == 3 {
		if !args[2].IsNumeric() {
			return ast.Value{}, execerr.New(execerr.SyntaxError, "SUBSTR length must be numeric")
		}
		length = int(numericFloat(args[2]))
	}
	if start < 0 || start >= len(runes) || length <= 0 {
		return ast.Text(""), nil
	}
	end := start + length
	if end > len(runes) {
		end = len(runes)
	}
	return ast.Text(string(runes[start:end])), nil
}

func evalInstr(args []ast.Value) (ast.Value, error) {
	if len(args) != 2 {
		return ast.Value{}, execerr.New(execerr.SyntaxError, "INSTR takes exactly two arguments")
	}
	if args[0].IsNull() || args[1].IsNull() {
		return ast.Null(), nil
	}
	if args[0].Tag != ast.TagText || args[1].Tag != ast.TagText {
		return ast.Value{}, execerr.New(execerr.SyntaxError, "INSTR expects (text, text)")
	}
	idx := strings.Index(args[0].S, args[1].S)
	if idx < 0 {
		return ast.Int(0), nil
	}
	return ast.Int(int64(len([]rune(args[0].S[:idx]))) + 1), nil
}

func evalReplace(args []ast.Value) (ast.Value, error) {
	if len(args) != 3 {
		return ast.Value{}, execerr.New(execerr.SyntaxError, "REPLACE takes exactly three arguments")
	}
	for _, a := range args {
		if a.Tag != ast.TagText {
			return ast.Value{}, execerr.New(execerr.SyntaxError, "REPLACE expects text arguments")
		}
	}
	return ast.Text(strings.ReplaceAll(args[0].S, args[1].S, args[2].S)), nil
}

func evalAbs(args []ast.Value) (ast.Value, error) {
	if len(args) != 1 {
		return ast.Value{}, execerr.New(execerr.SyntaxError, "ABS takes exactly one argument")
	}
	if args[0].IsNull() {
		return ast.Null(), nil
	}
	switch args[0].Tag {
	case ast.TagInteger:
		v := args[0].I
		if v < 0 {
			v = -v
		}
		return ast.Int(v), nil
	case ast.TagReal:
		return ast.Real(math.Abs(args[0].R)), nil
	default:
		return ast.Value{}, execerr.New(execerr.SyntaxError, "ABS expects a numeric argument, got %s", args[0].Tag)
	}
}

func evalRound(args []ast.Value) (ast.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return ast.Value{}, execerr.New(execerr.SyntaxError, "ROUND takes one or two arguments")
	}
	if args[0].IsNull() {
		return ast.Null(), nil
	}
	if !args[0].IsNumeric() {
		return ast.Value{}, execerr.New(execerr.SyntaxError, "ROUND expects a numeric argument, got %s", args[0].Tag)
	}
	precision := 0
	if len(args) == 2 {
		if !args[1].IsNumeric() {
			return ast.Value{}, execerr.New(execerr.SyntaxError, "ROUND precision must be numeric")
		}
		precision = int(numericFloat(args[1]))
	}
	mult := math.Pow(10, float64(precision))
	return ast.Real(math.Round(numericFloat(args[0])*mult) / mult), nil
}

func evalCoalesce(args []ast.Value) (ast.Value, error) {
	for _, a := range args {
		if !a.IsNull() {
			return a, nil
		}
	}
	return ast.Null(), nil
}

func evalDateFamily(name string, args []ast.Value) (ast.Value, error) {
	t, err := resolveTimeArg(args)
	if err != nil {
		return ast.Value{}, err
	}
	switch name {
	case "DATE":
		return ast.Text(t.Format("2006-01-02")), nil
	case "TIME":
		return ast.Text(t.Format("15:04:05")), nil
	default:
		return ast.Text(t.Format("2006-01-02 15:04:05")), nil
	}
}

func resolveTimeArg(args []ast.Value) (time.Time, error) {
	if len(args) == 0 {
		return time.Now().UTC(), nil
	}
	v := args[0]
	switch v.Tag {
	case ast.TagDate:
		return v.T, nil
	case ast.TagText:
		if v.S == "now" {
			return time.Now().UTC(), nil
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, v.S); err == nil {
				return t, nil
			}
		}
		return time.Time{}, execerr.New(execerr.SyntaxError, "cannot parse %q as a date", v.S)
	default:
		return time.Time{}, execerr.New(execerr.SyntaxError, "expected a date/text argument, got %s", v.Tag)
	}
}

func evalJulianday(args []ast.Value) (ast.Value, error) {
	t, err := resolveTimeArg(args)
	if err != nil {
		return ast.Value{}, err
	}
	const julianUnixEpoch = 2440587.5
	return ast.Real(julianUnixEpoch + float64(t.Unix())/86400.0), nil
}

func evalStrftime(args []ast.Value) (ast.Value, error) {
	if len(args) < 1 {
		return ast.Value{}, execerr.New(execerr.SyntaxError, "STRFTIME requires a format argument")
	}
	if args[0].Tag != ast.TagText {
		return ast.Value{}, execerr.New(execerr.SyntaxError, "STRFTIME format must be text")
	}
	t, err := resolveTimeArg(args[1:])
	if err != nil {
		return ast.Value{}, err
	}
	return ast.Text(strftime(args[0].S, t)), nil
}

// strftime renders a small, practical subset of C strftime verbs
// (spec §4.2 lists STRFTIME among the supported scalar functions
// without prescribing full libc coverage).
func strftime(format string, t time.Time) string {
	var out strings.Builder
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' || i+1 >= len(runes) {
			out.WriteRune(runes[i])
			continue
		}
		i++
		switch runes[i] {
		case 'Y':
			out.WriteString(strconv.Itoa(t.Year()))
		case 'm':
			out.WriteString(t.Format("01"))
		case 'd':
			out.WriteString(t.Format("02"))
		case 'H':
			out.WriteString(t.Format("15"))
		case 'M':
			out.WriteString(t.Format("04"))
		case 'S':
			out.WriteString(t.Format("05"))
		case '%':
			out.WriteByte('%')
		default:
			out.WriteByte('%')
			out.WriteRune(runes[i])
		}
	}
	return out.String()
}
