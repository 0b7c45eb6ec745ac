package store

import (
	"github.com/Chahine-tech/rowstore/internal/ast"
	"github.com/Chahine-tech/rowstore/internal/eval"
	"github.com/Chahine-tech/rowstore/internal/execerr"
)

// accumulateSource walks the join tree left-to-right and returns the
// accumulated row set (spec §4.7 step 1). Every column is exposed
// under its fully qualified `alias.col` name in addition to its bare
// name so unqualified references into the parent resolve naturally
// (spec §9's "Joined column naming").
func (d *DataStore) accumulateSource(node *ast.FromNode, trace *Trace) (ast.RecordSet, error) {
	if node == nil {
		return ast.RecordSet{{}}, nil
	}
	if node.Table != nil {
		t, ok := d.tables[node.Table.Name]
		if !ok {
			return nil, execerr.OnTable(execerr.UnknownTable, node.Table.Name,
				"table %q does not exist", node.Table.Name)
		}
		trace.Steps = append(trace.Steps, "scan "+node.Table.Name)
		alias := node.Table.AliasOrName()
		out := make(ast.RecordSet, len(t.Rows))
		for i, row := range t.Rows {
			out[i] = qualify(row, alias)
		}
		return out, nil
	}

	left, err := d.accumulateSource(node.Left, trace)
	if err != nil {
		return nil, err
	}
	right, err := d.accumulateSource(node.Right, trace)
	if err != nil {
		return nil, err
	}

	// Right is always a leaf table reference: the grammar only ever
	// builds join trees left-deep (internal/parser/select.go's
	// parseFromList), so its schema is known even when right itself
	// has zero rows to sample a shape from.
	var rightShape ast.Record
	if node.Right != nil && node.Right.Table != nil {
		rightShape = d.shapeOf(node.Right.Table)
	}

	switch node.JoinType {
	case ast.JoinCross:
		trace.Steps = append(trace.Steps, "cross join")
		return crossJoin(left, right), nil
	case ast.JoinNatural:
		using := commonColumnNames(left, right)
		if len(using) == 0 {
			trace.Steps = append(trace.Steps, "natural join degraded to cross join (no common columns)")
			return crossJoin(left, right), nil
		}
		trace.Steps = append(trace.Steps, "natural join")
		return usingJoin(left, right, using, false, rightShape), nil
	case ast.JoinInner:
		if len(node.Using) > 0 {
			trace.Steps = append(trace.Steps, "inner join using columns")
			return usingJoin(left, right, node.Using, false, rightShape), nil
		}
		trace.Steps = append(trace.Steps, "inner join on expression")
		return onJoin(left, right, node.On, false, rightShape)
	case ast.JoinLeft:
		if len(node.Using) > 0 {
			trace.Steps = append(trace.Steps, "left outer join using columns")
			return usingJoin(left, right, node.Using, true, rightShape), nil
		}
		trace.Steps = append(trace.Steps, "left outer join on expression")
		return onJoin(left, right, node.On, true, rightShape)
	default:
		return crossJoin(left, right), nil
	}
}

// shapeOf returns an all-Null record carrying every bare and
// alias-qualified column name ref's table would expose, for padding
// the unmatched side of a LEFT OUTER JOIN even when that table has no
// rows to sample a shape from.
func (d *DataStore) shapeOf(ref *ast.TableRef) ast.Record {
	t, ok := d.tables[ref.Name]
	if !ok {
		return ast.Record{}
	}
	alias := ref.AliasOrName()
	out := make(ast.Record, len(t.Schema.Columns)*2)
	for _, col := range t.Schema.Columns {
		out[col.Name] = ast.Null()
		out[alias+"."+col.Name] = ast.Null()
	}
	return out
}

// qualify returns a copy of row with every key also present under
// "alias.key".
func qualify(row ast.Record, alias string) ast.Record {
	out := make(ast.Record, len(row)*2)
	for k, v := range row {
		out[k] = v
		out[alias+"."+k] = v
	}
	return out
}

func crossJoin(left, right ast.RecordSet) ast.RecordSet {
	out := make(ast.RecordSet, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			out = append(out, mergeRows(l, r))
		}
	}
	if len(right) == 0 {
		for _, l := range left {
			out = append(out, mergeRows(l, nil))
		}
	}
	return out
}

func mergeRows(l, r ast.Record) ast.Record {
	out := make(ast.Record, len(l)+len(r))
	for k, v := range l {
		out[k] = v
	}
	for k, v := range r {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}

// commonColumnNames computes the bare-column-name intersection of left
// and right for NATURAL JOIN derivation (spec §4.7). Qualified keys
// (those containing '.') are ignored.
func commonColumnNames(left, right ast.RecordSet) []string {
	leftCols := bareColumnSet(left)
	rightCols := bareColumnSet(right)
	var common []string
	for c := range leftCols {
		if rightCols[c] {
			common = append(common, c)
		}
	}
	return common
}

func bareColumnSet(rows ast.RecordSet) map[string]bool {
	set := map[string]bool{}
	if len(rows) == 0 {
		return set
	}
	for k := range rows[0] {
		if !containsDot(k) {
			set[k] = true
		}
	}
	return set
}

func containsDot(s string) bool {
	for _, c := range s {
		if c == '.' {
			return true
		}
	}
	return false
}

func usingJoin(left, right ast.RecordSet, cols []string, outer bool, rightShape ast.Record) ast.RecordSet {
	out := ast.RecordSet{}
	for _, l := range left {
		matched := false
		for _, r := range right {
			if usingColumnsEqual(l, r, cols) {
				out = append(out, mergeRows(l, r))
				matched = true
			}
		}
		if outer && !matched {
			out = append(out, mergeRows(l, rightShape))
		}
	}
	return out
}

func usingColumnsEqual(l, r ast.Record, cols []string) bool {
	for _, c := range cols {
		if !valuesEqual(l[c], r[c]) {
			return false
		}
	}
	return true
}

func onJoin(left, right ast.RecordSet, on ast.Expr, outer bool, rightShape ast.Record) (ast.RecordSet, error) {
	out := ast.RecordSet{}
	ctx := eval.NewContext()
	for _, l := range left {
		matched := false
		for _, r := range right {
			merged := mergeRows(l, r)
			var ok bool
			if on != nil {
				v, err := eval.Eval(ctx, on, merged)
				if err != nil {
					return nil, err
				}
				if v.Tag != ast.TagBool {
					return nil, execerr.New(execerr.SyntaxError, "JOIN ... ON must evaluate to a boolean")
				}
				ok = v.B
			} else {
				ok = true
			}
			if ok {
				out = append(out, merged)
				matched = true
			}
		}
		if outer && !matched {
			out = append(out, mergeRows(l, rightShape))
		}
	}
	return out, nil
}
