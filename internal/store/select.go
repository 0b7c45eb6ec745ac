package store

import (
	"fmt"
	"sort"

	"github.com/Chahine-tech/rowstore/internal/ast"
	"github.com/Chahine-tech/rowstore/internal/eval"
	"github.com/Chahine-tech/rowstore/internal/execerr"
)

// execSelect runs the full SELECT pipeline (spec §4.7): accumulate
// source rows across the join tree, promote aggregates into an
// implicit GROUP BY, run the two evaluation passes, group, order, and
// apply limit/offset.
func (d *DataStore) execSelect(s *ast.SelectStmt) (ast.RecordSet, error) {
	trace := newTrace(s)
	defer func() { d.Traces = append(d.Traces, trace) }()

	source, err := d.accumulateSource(s.From, trace)
	if err != nil {
		return nil, err
	}

	groupBy := s.GroupBy
	hasAgg := exprListHasAggregate(s.Columns) || eval.ContainsAggregate(s.Where) || eval.ContainsAggregate(s.Having)
	if hasAgg && len(groupBy) == 0 {
		// Aggregate promotion (spec §4.7 step 2): without an explicit
		// GROUP BY, every result row folds into a single group.
		groupBy = nil
	}

	needsAccumulatePass := hasAgg

	var included ast.RecordSet
	ctx := eval.NewContext()
	if needsAccumulatePass {
		ctx.Accumulating = true
		for _, row := range source {
			if s.Where != nil {
				ok, err := evalBoolRequired(ctx, s.Where, row)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
			}
			for _, col := range s.Columns {
				if col.Expr != nil {
					if _, err := eval.Eval(ctx, col.Expr, row); err != nil {
						return nil, err
					}
				}
			}
			included = append(included, row)
		}
		ctx.Accumulating = false
	} else {
		for _, row := range source {
			if s.Where != nil {
				ok, err := evalBoolRequired(ctx, s.Where, row)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
			}
			included = append(included, row)
		}
	}
	trace.Steps = append(trace.Steps, fmt.Sprintf("filter: %d rows matched WHERE", len(included)))

	var result ast.RecordSet
	for _, row := range included {
		rec, err := materializeResultRow(ctx, s.Columns, row)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}

	if len(groupBy) > 0 {
		result, err = groupRows(ctx, groupBy, s.Columns, included, s.Having)
		if err != nil {
			return nil, err
		}
	} else if hasAgg {
		// A single implicit group over every included row (COUNT(*)
		// over an empty table still returns one row with count 0).
		rec, err := materializeResultRow(ctx, s.Columns, firstOrEmpty(included))
		if err != nil {
			return nil, err
		}
		result = ast.RecordSet{rec}
	}

	if len(s.OrderBy) > 0 {
		if err := orderRows(ctx, s.OrderBy, result); err != nil {
			return nil, err
		}
	}

	if s.Limit != nil {
		result = applyLimitOffset(result, s.Limit)
	}

	trace.Steps = append(trace.Steps, fmt.Sprintf("produced %d result rows", len(result)))
	return result, nil
}

func firstOrEmpty(rows ast.RecordSet) ast.Record {
	if len(rows) == 0 {
		return ast.Record{}
	}
	return rows[0]
}

func evalBoolRequired(ctx *eval.Context, expr ast.Expr, row ast.Record) (bool, error) {
	v, err := eval.Eval(ctx, expr, row)
	if err != nil {
		return false, err
	}
	if v.Tag == ast.TagNull {
		return false, nil
	}
	if v.Tag != ast.TagBool {
		return false, execerr.New(execerr.SyntaxError, "WHERE/HAVING expression must evaluate to a boolean")
	}
	return v.B, nil
}

func exprListHasAggregate(cols []*ast.ResultColumn) bool {
	for _, c := range cols {
		if c.Expr != nil && eval.ContainsAggregate(c.Expr) {
			return true
		}
	}
	return false
}

// materializeResultRow builds one output record for row under the
// result-column list (spec §4.7 step 4): `*` expands to every bare and
// qualified column, `table.*` to every column qualified by that table.
func materializeResultRow(ctx *eval.Context, cols []*ast.ResultColumn, row ast.Record) (ast.Record, error) {
	out := make(ast.Record)
	synth := 0
	for _, col := range cols {
		if col.Star {
			if col.StarTable == "" {
				for k, v := range row {
					out[k] = v
				}
			} else {
				prefix := col.StarTable + "."
				for k, v := range row {
					if len(k) > len(prefix) && k[:len(prefix)] == prefix {
						out[k] = v
					}
				}
			}
			continue
		}
		synth++
		v, err := eval.Eval(ctx, col.Expr, row)
		if err != nil {
			return nil, err
		}
		name := col.Alias
		if name == "" {
			if cr, ok := col.Expr.(*ast.ColumnRef); ok {
				name = cr.Column
			} else {
				name = fmt.Sprintf("Col%d", synth)
			}
		}
		out[name] = v
	}
	return out, nil
}

// resultColumnOrder derives the positional column order of a SELECT's
// output for consumers that map it by position rather than by name
// (INSERT ... SELECT's destination mapping, CREATE TABLE ... AS SELECT's
// schema): the authored result-column list, the same way
// materializeResultRow names each column, when every entry names a
// column explicitly. A `*`/`table.*` wildcard can only be expanded once
// a row exists, so that case falls back to a sorted snapshot of the
// sample row's bare (unqualified) keys — the same stable-sort
// derivation cmd/rowsql/main.go uses to print a Record deterministically,
// never a bare range over the map itself (ast.Record's iteration order
// is randomized per run).
func resultColumnOrder(cols []*ast.ResultColumn, sample ast.Record) []string {
	names := make([]string, 0, len(cols))
	synth := 0
	for _, c := range cols {
		if c.Star {
			return bareColumnSetSorted(sample)
		}
		synth++
		name := c.Alias
		if name == "" {
			if cr, ok := c.Expr.(*ast.ColumnRef); ok {
				name = cr.Column
			} else {
				name = fmt.Sprintf("Col%d", synth)
			}
		}
		names = append(names, name)
	}
	return names
}

func bareColumnSetSorted(row ast.Record) []string {
	set := bareColumnSet(ast.RecordSet{row})
	names := make([]string, 0, len(set))
	for k := range set {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func groupRows(ctx *eval.Context, groupBy []ast.Expr, cols []*ast.ResultColumn, rows ast.RecordSet, having ast.Expr) (ast.RecordSet, error) {
	type group struct {
		key  string
		rows ast.RecordSet
	}
	order := []string{}
	groups := map[string]*group{}

	for _, row := range rows {
		var keyParts []string
		for _, g := range groupBy {
			v, err := eval.Eval(ctx, g, row)
			if err != nil {
				return nil, err
			}
			keyParts = append(keyParts, v.String())
		}
		key := fmt.Sprint(keyParts)
		g, ok := groups[key]
		if !ok {
			g = &group{key: key}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, row)
	}

	var out ast.RecordSet
	for _, key := range order {
		g := groups[key]
		gctx := eval.NewContext()
		gctx.Accumulating = true
		for _, row := range g.rows {
			for _, col := range cols {
				if col.Expr != nil {
					if _, err := eval.Eval(gctx, col.Expr, row); err != nil {
						return nil, err
					}
				}
			}
			if having != nil {
				if _, err := eval.Eval(gctx, having, row); err != nil {
					return nil, err
				}
			}
		}
		gctx.Accumulating = false

		representative := firstOrEmpty(g.rows)
		if having != nil {
			ok, err := evalBoolRequired(gctx, having, representative)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		rec, err := materializeResultRow(gctx, cols, representative)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func orderRows(ctx *eval.Context, terms []*ast.OrderByTerm, rows ast.RecordSet) error {
	var sortErr error
	sort.SliceStable(rows, func(i, j int) bool {
		for _, term := range terms {
			vi, err := eval.Eval(ctx, term.Expr, rows[i])
			if err != nil {
				sortErr = err
				return false
			}
			vj, err := eval.Eval(ctx, term.Expr, rows[j])
			if err != nil {
				sortErr = err
				return false
			}
			cmp, err := orderCompare(vi, vj)
			if err != nil {
				sortErr = err
				return false
			}
			if cmp == 0 {
				continue
			}
			if term.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return sortErr
}

// orderCompare compares two values for ORDER BY, treating Null as
// sorting before every non-null value so ties above resolve by the
// declared column order (spec §4.7/§8's stability property).
func orderCompare(a, b ast.Value) (int, error) {
	if a.IsNull() && b.IsNull() {
		return 0, nil
	}
	if a.IsNull() {
		return -1, nil
	}
	if b.IsNull() {
		return 1, nil
	}
	return eval.Compare(a, b)
}

func applyLimitOffset(rows ast.RecordSet, lim *ast.LimitClause) ast.RecordSet {
	start := 0
	if lim.Offset >= 0 {
		start = lim.Offset
	}
	if start > len(rows) {
		return ast.RecordSet{}
	}
	rows = rows[start:]
	if lim.Limit >= 0 && lim.Limit < len(rows) {
		rows = rows[:lim.Limit]
	}
	return rows
}
