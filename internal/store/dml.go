package store

import (
	"github.com/Chahine-tech/rowstore/internal/ast"
	"github.com/Chahine-tech/rowstore/internal/eval"
	"github.com/Chahine-tech/rowstore/internal/execerr"
)

// execInsert runs one INSERT statement (spec §4.8). The returned int32
// is the last inserted integer row id: the row count of the table
// after insert, minus one (spec §6).
func (d *DataStore) execInsert(s *ast.InsertStmt) (int32, error) {
	t, ok := d.tables[s.Table]
	if !ok {
		return -1, execerr.OnTable(execerr.UnknownTable, s.Table, "table %q does not exist", s.Table)
	}

	var records ast.RecordSet
	switch {
	case s.DefaultValues:
		records = ast.RecordSet{ast.Record{}}
	case s.Select != nil:
		rows, err := d.execSelect(s.Select)
		if err != nil {
			return -1, err
		}
		records = mapInsertSourceRows(rows, s.Columns, s.Select.Columns, t.Schema)
	default:
		for _, tuple := range s.Values {
			rec, err := buildInsertRecord(s.Columns, tuple, t.Schema)
			if err != nil {
				return -1, err
			}
			records = append(records, rec)
		}
	}

	d.tableLastInsertedInto = s.Table
	for _, rec := range records {
		if _, err := t.InsertRow(rec, s.Action); err != nil {
			if s.Action == ast.ConflictRollback {
				return -1, d.rollbackAndSurface(err)
			}
			return -1, err
		}
	}

	pk := t.LastPrimaryKeyValue()
	if pk.Tag == ast.TagInteger {
		d.lastInsertedRowID = pk.I
	}
	return int32(len(t.Rows) - 1), nil
}

// buildInsertRecord evaluates one VALUES tuple into a Record keyed by
// either the explicit column list or the schema's declared columns in
// order (spec §4.3/§4.8).
func buildInsertRecord(columns []string, tuple []ast.Expr, schema *ast.TableSchema) (ast.Record, error) {
	names := columns
	if len(names) == 0 {
		names = schema.ColumnNames()
	}
	if len(names) != len(tuple) {
		return nil, execerr.OnTable(execerr.InvalidRecord, schema.Name,
			"expected %d values, got %d", len(names), len(tuple))
	}
	rec := make(ast.Record, len(names))
	ctx := eval.NewContext()
	for i, name := range names {
		v, err := eval.Eval(ctx, tuple[i], nil)
		if err != nil {
			return nil, err
		}
		rec[name] = v
	}
	return rec, nil
}

// mapInsertSourceRows maps SELECT-sourced rows into destination
// records: by the given column list when present, else by key equality
// with the destination schema (spec §4.8). The explicit-column-list
// case maps positionally against the SELECT's own authored column
// order (resultColumnOrder), never by ranging over a source row's
// ast.Record directly: Record is a map, and Go randomizes map iteration
// order per run.
func mapInsertSourceRows(rows ast.RecordSet, columns []string, selectCols []*ast.ResultColumn, schema *ast.TableSchema) ast.RecordSet {
	out := make(ast.RecordSet, 0, len(rows))
	if len(columns) > 0 {
		srcOrder := resultColumnOrder(selectCols, firstOrEmpty(rows))
		for _, row := range rows {
			rec := make(ast.Record, len(columns))
			for i, destName := range columns {
				if i >= len(srcOrder) {
					break
				}
				rec[destName] = row[srcOrder[i]]
			}
			out = append(out, rec)
		}
		return out
	}
	for _, row := range rows {
		rec := make(ast.Record)
		for name, v := range row {
			if schema.HasColumn(name) {
				rec[name] = v
			}
		}
		out = append(out, rec)
	}
	return out
}

// execUpdate runs one UPDATE statement (spec §4.8). Returns the number
// of rows modified.
//
// Candidates are computed in a first pass over the original rows, then
// applied in a second pass, so a REPLACE conflict (which removes the
// colliding row) never corrupts the index we're still scanning by.
func (d *DataStore) execUpdate(s *ast.UpdateStmt) (int32, error) {
	t, ok := d.tables[s.Table]
	if !ok {
		return -1, execerr.OnTable(execerr.UnknownTable, s.Table, "table %q does not exist", s.Table)
	}

	type planned struct {
		index     int
		candidate ast.Record
	}
	var toUpdate []planned
	toDelete := make(map[int]bool)

	for i, row := range t.Rows {
		if s.Where != nil {
			match, err := eval.Eval(eval.NewContext(), s.Where, row)
			if err != nil {
				return -1, err
			}
			if match.Tag != ast.TagBool || !match.B {
				continue
			}
		}

		candidate := row.Clone()
		ctx := eval.NewContext()
		for _, assign := range s.Set {
			v, err := eval.Eval(ctx, assign.Value, row)
			if err != nil {
				return -1, err
			}
			candidate[assign.Column] = v
		}

		if err := t.ValidateRecord(candidate); err != nil {
			switch s.Action {
			case ast.ConflictIgnore:
				continue
			case ast.ConflictAbort:
				return int32(len(toUpdate)), err
			case ast.ConflictRollback:
				return -1, d.rollbackAndSurface(err)
			default:
				return -1, err
			}
		}

		if conflictIdx := t.findUniqueConflict(candidate); conflictIdx >= 0 && conflictIdx != i {
			switch s.Action {
			case ast.ConflictReplace:
				toDelete[conflictIdx] = true
			case ast.ConflictIgnore:
				continue
			case ast.ConflictRollback:
				return -1, d.rollbackAndSurface(execerr.OnTable(execerr.DuplicateRecord, t.Schema.Name,
					"update violates a unique constraint on table %q", t.Schema.Name))
			default:
				return -1, execerr.OnTable(execerr.DuplicateRecord, t.Schema.Name,
					"update violates a unique constraint on table %q", t.Schema.Name)
			}
		}

		toUpdate = append(toUpdate, planned{index: i, candidate: candidate})
	}

	for _, p := range toUpdate {
		t.Rows[p.index] = p.candidate
	}
	if len(toDelete) > 0 {
		kept := t.Rows[:0:0]
		for i, r := range t.Rows {
			if !toDelete[i] {
				kept = append(kept, r)
			}
		}
		t.Rows = kept
	}

	modified := int32(len(toUpdate))
	d.tableRowsLastModified = int64(modified)
	return modified, nil
}

// execDelete runs one DELETE statement (spec §4.8): without WHERE,
// clears all rows; with WHERE, removes matching rows scanning in
// reverse index order so earlier indices stay valid as later ones are
// removed.
func (d *DataStore) execDelete(s *ast.DeleteStmt) (int32, error) {
	t, ok := d.tables[s.Table]
	if !ok {
		return -1, execerr.OnTable(execerr.UnknownTable, s.Table, "table %q does not exist", s.Table)
	}

	if s.Where == nil {
		count := int32(len(t.Rows))
		t.Rows = nil
		d.tableRowsLastModified = int64(count)
		return count, nil
	}

	var deleted int32
	for i := len(t.Rows) - 1; i >= 0; i-- {
		match, err := eval.Eval(eval.NewContext(), s.Where, t.Rows[i])
		if err != nil {
			return -1, err
		}
		if match.Tag == ast.TagBool && match.B {
			t.Rows = append(t.Rows[:i], t.Rows[i+1:]...)
			deleted++
		}
	}
	d.tableRowsLastModified = int64(deleted)
	return deleted, nil
}
