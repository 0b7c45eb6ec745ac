// Package rowstore is the embedded, in-memory SQL engine's façade: it
// wires the binder, parser, and store packages together behind the
// small surface spec.md §6 describes (Execute/Query plus the session
// introspection methods), in the teacher's style of exposing one thin
// entry point in front of several internal packages.
package rowstore

import (
	"go.uber.org/zap"

	"github.com/Chahine-tech/rowstore/internal/ast"
	"github.com/Chahine-tech/rowstore/internal/binder"
	"github.com/Chahine-tech/rowstore/internal/config"
	"github.com/Chahine-tech/rowstore/internal/parser"
	"github.com/Chahine-tech/rowstore/internal/store"
)

// Engine is one in-memory database session (spec §3).
type Engine struct {
	data *store.DataStore
	log  *zap.Logger
}

// New returns an empty Engine. A nil logger falls back to zap.NewNop,
// matching the teacher's practice of never requiring a caller to wire
// logging just to use the library.
func New(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{data: store.New(), log: log}
}

// Seed registers every table in seed, for pre-loading a schema before
// any statement runs (spec §9's config-driven seeding, internal/config).
func (e *Engine) Seed(seed *config.Seed) error {
	schemas, err := seed.TableSchemas()
	if err != nil {
		return err
	}
	for _, schema := range schemas {
		if _, err := e.data.Execute(&ast.CreateTableStmt{Name: schema.Name, Columns: schema.Columns}); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs every `;`-separated statement in sql against the
// session, substituting params for `?` placeholders (spec §4.4), and
// returns the status code of the last non-SELECT statement (spec §6).
// It rejects any SELECT statement; use Query for that.
func (e *Engine) Execute(sql string, params ...ast.Value) (int32, error) {
	bound, err := binder.Bind(sql, params)
	if err != nil {
		return -1, err
	}
	stmts, err := parser.ParseStatements(bound)
	if err != nil {
		return -1, err
	}
	var status int32
	for _, stmt := range stmts {
		status, err = e.data.Execute(stmt)
		if err != nil {
			e.log.Debug("statement failed", zap.Error(err))
			return -1, err
		}
	}
	return status, nil
}

// Query runs every `;`-separated statement in sql, each of which must
// be a SELECT, and returns the last one's result set (spec §6).
func (e *Engine) Query(sql string, params ...ast.Value) (ast.RecordSet, error) {
	bound, err := binder.Bind(sql, params)
	if err != nil {
		return nil, err
	}
	stmts, err := parser.ParseStatements(bound)
	if err != nil {
		return nil, err
	}
	rows, err := e.data.Query(stmts)
	if err != nil {
		e.log.Debug("query failed", zap.Error(err))
		return nil, err
	}
	return rows, nil
}

// HasTable reports whether name is a known table (spec §6).
func (e *Engine) HasTable(name string) bool { return e.data.HasTable(name) }

// TableNames returns every known table name (spec §6).
func (e *Engine) TableNames() []string { return e.data.TableNames() }

// LastInsertedRowID returns the most recent INSERT's integer primary
// key (spec §6).
func (e *Engine) LastInsertedRowID() int64 { return e.data.LastInsertedRowID() }

// NumberOfRecordsChanged returns the row count affected by the most
// recent UPDATE or DELETE (spec §6).
func (e *Engine) NumberOfRecordsChanged() int64 { return e.data.NumberOfRecordsChanged() }

// IsTransactionOpen reports whether a BEGIN is currently outstanding
// (spec §6).
func (e *Engine) IsTransactionOpen() bool { return e.data.IsTransactionOpen() }

// Traces returns the pipeline trace of every SELECT executed so far
// (store.Trace, adapted from the teacher's pkg/plan).
func (e *Engine) Traces() []*store.Trace { return e.data.Traces }
