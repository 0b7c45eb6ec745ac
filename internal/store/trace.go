package store

import "github.com/Chahine-tech/rowstore/internal/ast"

// Trace is a record of one SELECT's actual execution steps, adapted
// from the teacher's static cost-estimation plan tree (pkg/plan) into
// a flat log of what the engine actually did: no cost model applies to
// an in-memory table scan, so each step is just a description appended
// as execSelect's pipeline runs.
type Trace struct {
	Query string
	Steps []string
}

// newTrace starts a Trace for s. The query text itself isn't retained
// on the AST, so Query records the table(s) touched instead.
func newTrace(s *ast.SelectStmt) *Trace {
	return &Trace{Query: describeFrom(s.From)}
}

func describeFrom(node *ast.FromNode) string {
	if node == nil {
		return "<none>"
	}
	if node.Table != nil {
		return node.Table.Name
	}
	return describeFrom(node.Left) + " " + string(node.JoinType) + " JOIN " + describeFrom(node.Right)
}
