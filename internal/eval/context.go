// Package eval walks an ast.Expr tree against a row context and
// produces a Value (spec §4.5). Dispatch is a single type switch over
// the concrete node types in package ast, in the spirit of the pack's
// visitor-style AST walks, rather than a method on each node.
package eval

import "github.com/Chahine-tech/rowstore/internal/ast"

// Context threads the per-evaluation aggregate state through one
// SELECT's accumulate/report passes (spec §5, §9's "Aggregate global
// flag" design note: the specification requires a per-evaluation
// context rather than a process-global switch, so SELECT invocations
// stay re-entrant).
type Context struct {
	// Accumulating is true during pass 1 (accumulate); false during
	// pass 2 (report).
	Accumulating bool

	accumulators map[ast.Expr]*accumulator
}

// NewContext returns a fresh, empty evaluation context.
func NewContext() *Context {
	return &Context{accumulators: make(map[ast.Expr]*accumulator)}
}

// accumulator holds one aggregate call's running state, keyed by the
// identity of its FuncCall node in the tree (spec §4.5: "keyed by its
// identity in the tree").
type accumulator struct {
	kind    string
	count   int64
	sum     float64
	sumIsInt bool
	min, max ast.Value
	haveMinMax bool
}

func (c *Context) accumulatorFor(node ast.Expr) *accumulator {
	a, ok := c.accumulators[node]
	if !ok {
		a = &accumulator{sumIsInt: true}
		c.accumulators[node] = a
	}
	return a
}

// ContainsAggregate reports whether expr contains any aggregate
// function call, used to decide whether pass 1 is needed at all
// (spec §4.5: "skips directly to pass 2" when no expression
// contains an aggregate).
func ContainsAggregate(expr ast.Expr) bool {
	if expr == nil {
		return false
	}
	switch n := expr.(type) {
	case *ast.FuncCall:
		if isAggregateCall(n) {
			return true
		}
		for _, a := range n.Args {
			if ContainsAggregate(a) {
				return true
			}
		}
		return false
	case *ast.Unary:
		return ContainsAggregate(n.X)
	case *ast.Binary:
		return ContainsAggregate(n.L) || ContainsAggregate(n.R)
	case *ast.Group:
		return ContainsAggregate(n.X)
	case *ast.IsNullTest:
		return ContainsAggregate(n.X)
	case *ast.Between:
		return ContainsAggregate(n.X) || ContainsAggregate(n.Low) || ContainsAggregate(n.High)
	case *ast.In:
		if ContainsAggregate(n.X) {
			return true
		}
		for _, e := range n.List {
			if ContainsAggregate(e) {
				return true
			}
		}
		return false
	case *ast.Case:
		if ContainsAggregate(n.Compare) {
			return true
		}
		for _, w := range n.Whens {
			if ContainsAggregate(w.Cond) || ContainsAggregate(w.Then) {
				return true
			}
		}
		return ContainsAggregate(n.Else)
	case *ast.Cast:
		return ContainsAggregate(n.X)
	case *ast.Collate:
		return ContainsAggregate(n.X)
	default:
		return false
	}
}

func isAggregateCall(f *ast.FuncCall) bool {
	switch f.Name {
	case "COUNT", "SUM", "AVG", "MIN", "MAX":
		return true
	default:
		return false
	}
}
