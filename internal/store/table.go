// Package store implements the in-memory execution engine (spec §4.6-§4.9):
// table storage with schema and constraint enforcement, the SELECT
// pipeline, INSERT/UPDATE/DELETE with conflict policies, DDL, and
// snapshot-based transactions.
package store

import (
	"github.com/Chahine-tech/rowstore/internal/ast"
	"github.com/Chahine-tech/rowstore/internal/eval"
	"github.com/Chahine-tech/rowstore/internal/execerr"
)

// TableStore is one table's schema plus its rows, held in memory
// (spec §3).
type TableStore struct {
	Schema *ast.TableSchema
	Rows   ast.RecordSet
}

// NewTableStore returns an empty store for schema.
func NewTableStore(schema *ast.TableSchema) *TableStore {
	return &TableStore{Schema: schema}
}

// Clone deep-copies t, for snapshot transactions (spec §4.9/§9).
func (t *TableStore) Clone() *TableStore {
	rows := make(ast.RecordSet, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.Clone()
	}
	return &TableStore{Schema: t.Schema, Rows: rows}
}

// LastPrimaryKeyValue returns the primary key of the last row, or the
// zero Value if the table has no primary key or no rows (spec §3).
func (t *TableStore) LastPrimaryKeyValue() ast.Value {
	pk := t.Schema.PrimaryKeyColumn()
	if pk == nil || len(t.Rows) == 0 {
		return ast.Value{}
	}
	return t.Rows[len(t.Rows)-1][pk.Name]
}

// NextAutoIncrementingID returns one more than the maximum integer
// primary key currently stored, or zero if the key isn't auto-increment
// (spec §3).
func (t *TableStore) NextAutoIncrementingID() int64 {
	pk := t.Schema.PrimaryKeyColumn()
	if pk == nil || !pk.AutoIncrement {
		return 0
	}
	var max int64
	for _, r := range t.Rows {
		if v, ok := r[pk.Name]; ok && v.Tag == ast.TagInteger && v.I > max {
			max = v.I
		}
	}
	return max + 1
}

// HasRow reports whether any row's primary key equals pkValue
// (spec §4.6).
func (t *TableStore) HasRow(pkValue ast.Value) bool {
	pk := t.Schema.PrimaryKeyColumn()
	if pk == nil {
		return false
	}
	for _, r := range t.Rows {
		if valuesEqual(r[pk.Name], pkValue) {
			return true
		}
	}
	return false
}

func valuesEqual(a, b ast.Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case ast.TagInteger:
		return a.I == b.I
	case ast.TagReal:
		return a.R == b.R
	case ast.TagText:
		return a.S == b.S
	case ast.TagBool:
		return a.B == b.B
	case ast.TagNull:
		return true
	default:
		return false
	}
}

// ValidateRecord runs every column's check expression against record
// and returns the first failure, or nil (spec §4.6).
func (t *TableStore) ValidateRecord(record ast.Record) error {
	for _, col := range t.Schema.Columns {
		if col.CheckExpression == nil {
			continue
		}
		v, err := eval.Eval(eval.NewContext(), col.CheckExpression, record)
		if err != nil {
			return err
		}
		if v.Tag != ast.TagBool || !v.B {
			return execerr.OnColumn(execerr.FailedCheckConstraint, t.Schema.Name, col.Name,
				"check constraint on column %q failed", col.Name)
		}
	}
	return nil
}

// findUniqueConflict returns the index of an existing row that
// collides with record on the primary key or any unique column, or -1.
func (t *TableStore) findUniqueConflict(record ast.Record) int {
	for _, col := range t.Schema.Columns {
		if !col.IsPrimaryKey && !col.IsKeyUnique {
			continue
		}
		v, ok := record[col.Name]
		if !ok || v.IsNull() {
			continue
		}
		for i, r := range t.Rows {
			if valuesEqual(r[col.Name], v) {
				return i
			}
		}
	}
	return -1
}

// InsertRow validates and inserts record, applying auto-increment and
// conflict-action handling (spec §4.6). Returns the row index inserted
// or replaced into, or -1 if the row was silently dropped (IGNORE).
func (t *TableStore) InsertRow(record ast.Record, action ast.ConflictAction) (int, error) {
	for name := range record {
		if !t.Schema.HasColumn(name) {
			return -1, execerr.OnColumn(execerr.UnknownColumn, t.Schema.Name, name,
				"unknown column %q in table %q", name, t.Schema.Name)
		}
	}

	candidate := record.Clone()
	if pk := t.Schema.PrimaryKeyColumn(); pk != nil && pk.AutoIncrement {
		if v, ok := candidate[pk.Name]; !ok || v.IsNull() {
			candidate[pk.Name] = ast.Int(t.NextAutoIncrementingID())
		}
	}
	for _, col := range t.Schema.Columns {
		if _, ok := candidate[col.Name]; !ok {
			if col.DefaultValue != nil {
				v, err := eval.Eval(eval.NewContext(), col.DefaultValue, nil)
				if err != nil {
					return -1, err
				}
				candidate[col.Name] = v
			} else if !col.AllowsNull {
				candidate[col.Name] = ast.Text("")
			} else {
				candidate[col.Name] = ast.Null()
			}
		}
	}

	if err := t.ValidateRecord(candidate); err != nil {
		return -1, err
	}

	if idx := t.findUniqueConflict(candidate); idx >= 0 {
		switch action {
		case ast.ConflictReplace:
			t.Rows[idx] = candidate
			return idx, nil
		case ast.ConflictIgnore:
			return -1, nil
		default:
			// ABORT, ROLLBACK, FAIL, and the unspecified default all
			// surface an error here; the caller (execInsert) decides
			// whether ConflictRollback also unwinds an open transaction.
			return -1, execerr.OnTable(execerr.DuplicateRecord, t.Schema.Name,
				"duplicate record violates a unique constraint on table %q", t.Schema.Name)
		}
	}

	t.Rows = append(t.Rows, candidate)
	return len(t.Rows) - 1, nil
}

// FindRows returns every row whose values at cols equal the
// corresponding values in matching, preserving row order (spec §4.6).
func (t *TableStore) FindRows(matching ast.Record, cols []string) ast.RecordSet {
	var out ast.RecordSet
	for _, r := range t.Rows {
		ok := true
		for _, c := range cols {
			if !valuesEqual(r[c], matching[c]) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}

// FindRow returns the first row matching as FindRows does, or nil.
func (t *TableStore) FindRow(matching ast.Record, cols []string) ast.Record {
	rows := t.FindRows(matching, cols)
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}
