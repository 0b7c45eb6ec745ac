package store

import (
	"github.com/Chahine-tech/rowstore/internal/ast"
	"github.com/Chahine-tech/rowstore/internal/eval"
	"github.com/Chahine-tech/rowstore/internal/execerr"
)

// DataStore is the full in-memory database (spec §3): tables plus
// transactional state. Mutated only by Execute/Query.
type DataStore struct {
	tables map[string]*TableStore

	transactionSnapshot map[string]*TableStore
	openTransactionCount int

	tableLastInsertedInto string
	lastInsertedRowID      int64
	tableRowsLastModified  int64

	// Traces records the pipeline steps of every SELECT executed so
	// far, one Trace per SELECT, for introspection (adapted from the
	// teacher's pkg/plan;
	// see store.Trace).
	Traces []*Trace
}

// New returns an empty DataStore.
func New() *DataStore {
	return &DataStore{tables: make(map[string]*TableStore)}
}

// HasTable reports whether name is a known table (spec §6).
func (d *DataStore) HasTable(name string) bool {
	_, ok := d.tables[name]
	return ok
}

// Table returns the named table store, or nil.
func (d *DataStore) Table(name string) *TableStore {
	return d.tables[name]
}

// TableNames returns every table name, in no particular order
// (spec §6's "tables iteration").
func (d *DataStore) TableNames() []string {
	out := make([]string, 0, len(d.tables))
	for name := range d.tables {
		out = append(out, name)
	}
	return out
}

// LastInsertedRowID is the last auto-assigned or supplied integer
// primary key from the most recent INSERT (spec §6).
func (d *DataStore) LastInsertedRowID() int64 { return d.lastInsertedRowID }

// NumberOfRecordsChanged is the row count affected by the most recent
// UPDATE or DELETE (spec §6).
func (d *DataStore) NumberOfRecordsChanged() int64 { return d.tableRowsLastModified }

// IsTransactionOpen reports whether a BEGIN is currently outstanding
// (spec §6/§4.9).
func (d *DataStore) IsTransactionOpen() bool { return d.openTransactionCount > 0 }

// Execute runs one non-SELECT statement and returns its status
// (spec §6): for INSERT, the row count of the table after insert minus
// one; for DELETE/UPDATE, rows modified; otherwise 1 on success.
func (d *DataStore) Execute(stmt ast.Stmt) (int32, error) {
	switch s := stmt.(type) {
	case *ast.CreateTableStmt:
		return 1, d.execCreateTable(s)
	case *ast.AlterTableStmt:
		return 1, d.execAlterTable(s)
	case *ast.DropStmt:
		return 1, d.execDrop(s)
	case *ast.InsertStmt:
		return d.execInsert(s)
	case *ast.UpdateStmt:
		return d.execUpdate(s)
	case *ast.DeleteStmt:
		return d.execDelete(s)
	case *ast.TransactionStmt:
		return 1, d.execTransaction(s)
	case *ast.CreateIndexStmt, *ast.CreateViewStmt, *ast.CreateTriggerStmt:
		return -1, execerr.New(execerr.UnsupportedCommand, "indexes, views, and triggers are not supported")
	case *ast.SelectStmt:
		return -1, execerr.New(execerr.InvalidCommand, "use Query for SELECT statements")
	default:
		return -1, execerr.New(execerr.InvalidCommand, "unsupported statement type %T", stmt)
	}
}

// Query runs every statement in stmts, each of which must be a SELECT:
// any other statement fails with invalidCommand. The last SELECT's
// result set is returned.
func (d *DataStore) Query(stmts []ast.Stmt) (ast.RecordSet, error) {
	var result ast.RecordSet
	for _, stmt := range stmts {
		sel, ok := stmt.(*ast.SelectStmt)
		if !ok {
			return nil, execerr.New(execerr.InvalidCommand, "Query accepts only SELECT statements")
		}
		rs, err := d.execSelect(sel)
		if err != nil {
			return nil, err
		}
		result = rs
	}
	if result == nil {
		return nil, execerr.New(execerr.NoRowsReturned, "no SELECT statement produced a result set")
	}
	return result, nil
}

// --- DDL ---

func (d *DataStore) execCreateTable(s *ast.CreateTableStmt) error {
	if _, exists := d.tables[s.Name]; exists {
		if s.IfNotExists {
			return nil
		}
		return execerr.OnTable(execerr.DuplicateTable, s.Name, "table %q already exists", s.Name)
	}

	for _, col := range s.Columns {
		if col.CollateName != "" || col.References != nil {
			return execerr.OnColumn(execerr.UnsupportedCommand, s.Name, col.Name,
				"COLLATE and REFERENCES column constraints are not supported")
		}
	}
	for _, tc := range s.Constraints {
		if tc.ForeignKey != nil {
			return execerr.OnTable(execerr.UnsupportedCommand, s.Name,
				"FOREIGN KEY table constraints are not supported")
		}
	}

	if s.AsSelect != nil {
		rows, err := d.execSelect(s.AsSelect)
		if err != nil {
			return err
		}
		schema := &ast.TableSchema{Name: s.Name}
		for i, col := range resultColumnOrder(s.AsSelect.Columns, firstOrEmpty(rows)) {
			schema.Columns = append(schema.Columns, &ast.ColumnSchema{ID: i, Name: col, Type: ast.ColNone, AllowsNull: true})
		}
		ts := NewTableStore(schema)
		ts.Rows = rows
		d.tables[s.Name] = ts
		return nil
	}

	// Table-level CHECK constraints are folded into the first column's
	// check expression (AND-ed with any column CHECK it already has), so
	// ValidateRecord enforces them and a failure names that column.
	for _, tc := range s.Constraints {
		if tc.Kind != "CHECK" || tc.Check == nil || len(s.Columns) == 0 {
			continue
		}
		first := s.Columns[0]
		if first.CheckExpression == nil {
			first.CheckExpression = tc.Check
		} else {
			first.CheckExpression = &ast.Binary{Op: "AND", L: first.CheckExpression, R: tc.Check}
		}
	}
	schema := &ast.TableSchema{Name: s.Name, Columns: s.Columns}
	d.tables[s.Name] = NewTableStore(schema)
	return nil
}

func (d *DataStore) execAlterTable(s *ast.AlterTableStmt) error {
	t, ok := d.tables[s.Name]
	if !ok {
		return execerr.OnTable(execerr.UnknownTable, s.Name, "table %q does not exist", s.Name)
	}
	if s.RenameTo != "" {
		delete(d.tables, s.Name)
		t.Schema.Name = s.RenameTo
		d.tables[s.RenameTo] = t
		return nil
	}
	if s.AddColumn != nil {
		if s.AddColumn.IsPrimaryKey || s.AddColumn.IsKeyUnique {
			return execerr.OnColumn(execerr.UnsupportedCommand, s.Name, s.AddColumn.Name,
				"ADD COLUMN cannot introduce a PRIMARY KEY or UNIQUE constraint")
		}
		s.AddColumn.ID = len(t.Schema.Columns)
		t.Schema.Columns = append(t.Schema.Columns, s.AddColumn)
		for i, r := range t.Rows {
			if _, ok := r[s.AddColumn.Name]; !ok {
				if s.AddColumn.DefaultValue != nil {
					v, err := eval.Eval(eval.NewContext(), s.AddColumn.DefaultValue, nil)
					if err != nil {
						return err
					}
					r[s.AddColumn.Name] = v
				} else {
					r[s.AddColumn.Name] = ast.Null()
				}
				t.Rows[i] = r
			}
		}
		return nil
	}
	return execerr.OnTable(execerr.InvalidCommand, s.Name, "ALTER TABLE requires RENAME TO or ADD COLUMN")
}

func (d *DataStore) execDrop(s *ast.DropStmt) error {
	if s.Kind != "TABLE" {
		return execerr.New(execerr.UnsupportedCommand, "DROP %s is not supported", s.Kind)
	}
	if _, ok := d.tables[s.Name]; !ok {
		if s.IfExists {
			return nil
		}
		return execerr.OnTable(execerr.UnknownTable, s.Name, "table %q does not exist", s.Name)
	}
	delete(d.tables, s.Name)
	return nil
}

// --- Transactions ---

func (d *DataStore) execTransaction(s *ast.TransactionStmt) error {
	switch s.Kind {
	case ast.TxnBegin:
		if d.openTransactionCount > 0 {
			d.openTransactionCount++
			return nil
		}
		snapshot := make(map[string]*TableStore, len(d.tables))
		for name, t := range d.tables {
			snapshot[name] = t.Clone()
		}
		d.transactionSnapshot = snapshot
		d.openTransactionCount = 1
		return nil
	case ast.TxnCommit:
		if d.openTransactionCount > 0 {
			d.openTransactionCount--
		}
		if d.openTransactionCount == 0 {
			d.transactionSnapshot = nil
		}
		return nil
	case ast.TxnRollback:
		if s.ToSavepoint != "" {
			return execerr.New(execerr.UnsupportedCommand, "named savepoints are not supported")
		}
		if d.transactionSnapshot != nil {
			d.tables = d.transactionSnapshot
			d.transactionSnapshot = nil
		}
		d.openTransactionCount = 0
		return nil
	case ast.TxnSavepoint, ast.TxnReleaseSavept:
		return execerr.New(execerr.UnsupportedCommand, "named savepoints are not supported")
	default:
		return execerr.New(execerr.InvalidCommand, "unknown transaction statement")
	}
}

// rollbackAndSurface rolls back whatever transaction is currently open
// (used by the OR ROLLBACK conflict action) before returning err
// (spec §7's error policy).
func (d *DataStore) rollbackAndSurface(err error) error {
	if d.openTransactionCount > 0 && d.transactionSnapshot != nil {
		d.tables = d.transactionSnapshot
		d.transactionSnapshot = nil
		d.openTransactionCount = 0
	}
	return err
}
