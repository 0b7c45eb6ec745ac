package ast

// Stmt is one parsed SQL statement, the instruction tree spec §3
// describes. Instructions own their expression trees; they carry no
// shared state and are plain values.
type Stmt interface {
	stmtNode()
}

// ConflictAction is the policy applied on a constraint violation
// (spec §3, GLOSSARY: "Conflict action").
type ConflictAction string

const (
	ConflictNone     ConflictAction = ""
	ConflictRollback ConflictAction = "ROLLBACK"
	ConflictAbort    ConflictAction = "ABORT"
	ConflictFail     ConflictAction = "FAIL"
	ConflictIgnore   ConflictAction = "IGNORE"
	ConflictReplace  ConflictAction = "REPLACE"
)

// TableConstraint is a table-level constraint collected separately from
// column definitions (spec §4.3): PRIMARY KEY(cols), UNIQUE(cols),
// CHECK(expr), FOREIGN KEY(cols) REFERENCES ....
type TableConstraint struct {
	Kind       string // "PRIMARY KEY", "UNIQUE", "CHECK", "FOREIGN KEY"
	Columns    []string
	Check      Expr
	ForeignKey *ForeignKey
	Conflict   ConflictAction
}

// CreateTableStmt is `CREATE TABLE [IF NOT EXISTS] name (...)` or
// `CREATE TABLE name AS SELECT ...` (spec §4.3/§4.9).
type CreateTableStmt struct {
	Name        string
	IfNotExists bool
	Columns     []*ColumnSchema
	Constraints []*TableConstraint
	AsSelect    *SelectStmt
}

func (*CreateTableStmt) stmtNode() {}

// AlterTableStmt is `ALTER TABLE name RENAME TO new` or
// `ALTER TABLE name ADD COLUMN col_def` (spec §4.3/§4.9).
type AlterTableStmt struct {
	Name      string
	RenameTo  string
	AddColumn *ColumnSchema
}

func (*AlterTableStmt) stmtNode() {}

// DropStmt is `DROP {INDEX|TABLE|TRIGGER|VIEW} [IF EXISTS] name`
// (spec §4.3/§4.9).
type DropStmt struct {
	Kind     string // TABLE, INDEX, VIEW, TRIGGER
	IfExists bool
	Name     string
}

func (*DropStmt) stmtNode() {}

// CreateIndexStmt, CreateViewStmt, CreateTriggerStmt are parsed (so the
// grammar accepts them, spec §3) but rejected at execution with
// unsupportedCommand.
type CreateIndexStmt struct{ Name, Table string }
type CreateViewStmt struct{ Name string }
type CreateTriggerStmt struct{ Name string }

func (*CreateIndexStmt) stmtNode()   {}
func (*CreateViewStmt) stmtNode()    {}
func (*CreateTriggerStmt) stmtNode() {}

// InsertStmt is `INSERT [OR action] INTO table [(cols)] VALUES (...), ...`
// or `... SELECT ...` or `... DEFAULT VALUES` (spec §4.3/§4.8).
type InsertStmt struct {
	Table         string
	Columns       []string
	Values        [][]Expr // one slice per VALUES tuple
	Select        *SelectStmt
	DefaultValues bool
	Action        ConflictAction
}

func (*InsertStmt) stmtNode() {}

// Assignment is one `col = expr` in an UPDATE's SET list (spec §4.3).
type Assignment struct {
	Column string
	Value  Expr
}

// UpdateStmt is `UPDATE [OR action] table SET ... [WHERE ...]`
// (spec §4.3/§4.8).
type UpdateStmt struct {
	Table  string
	Set    []*Assignment
	Where  Expr
	Action ConflictAction
}

func (*UpdateStmt) stmtNode() {}

// DeleteStmt is `DELETE FROM table [WHERE ...]` (spec §4.3/§4.8).
type DeleteStmt struct {
	Table string
	Where Expr
}

func (*DeleteStmt) stmtNode() {}

// JoinType names the join operator connecting two FromNodes (spec §2/§4.7).
type JoinType string

const (
	JoinNone    JoinType = "" // leaf: no join, just a table reference
	JoinNatural JoinType = "NATURAL"
	JoinInner   JoinType = "INNER"
	JoinLeft    JoinType = "LEFT OUTER"
	JoinCross   JoinType = "CROSS"
)

// TableRef names one FROM-list table with its optional alias
// (spec §4.3).
type TableRef struct {
	Name  string
	Alias string
}

// AliasOrName returns Alias if set, else Name: the key the source's
// columns are exposed under in the accumulated record (spec §4.7).
func (t *TableRef) AliasOrName() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// FromNode is the parser's join-tree representation (spec §4.3, §9's
// "Joined column naming"): either a leaf table reference, or a join of
// a Left sub-tree with a Right leaf, chained left-to-right so every
// sub-join's child is itself a (possibly trivial) join.
type FromNode struct {
	Table *TableRef // set when this is a leaf

	JoinType JoinType // set when this is a join node
	Left     *FromNode
	Right    *FromNode
	On       Expr
	Using    []string
}

// ResultColumn is one entry in a SELECT's result-column list
// (spec §4.3/§4.7): an expression with an optional alias, or the `*`
// / `table.*` wildcard.
type ResultColumn struct {
	Expr      Expr
	Alias     string
	Star      bool
	StarTable string // non-empty for `table.*`
}

// OrderByTerm is one `expr [ASC|DESC] [COLLATE name]` clause
// (spec §4.3).
type OrderByTerm struct {
	Expr    Expr
	Desc    bool
	Collate string
}

// LimitClause is `LIMIT n [OFFSET m]` or `LIMIT m, n` (spec §4.3);
// negative values disable the respective bound (spec §4.7).
type LimitClause struct {
	Limit  int
	Offset int
}

// SelectStmt is a full SELECT (spec §4.3/§4.7).
type SelectStmt struct {
	Distinct bool
	Columns  []*ResultColumn
	From     *FromNode
	Where    Expr
	GroupBy  []Expr
	Having   Expr
	OrderBy  []*OrderByTerm
	Limit    *LimitClause
}

func (*SelectStmt) stmtNode() {}

// TransactionKind names one of the transaction statements (spec §4.3/§4.9).
type TransactionKind string

const (
	TxnBegin          TransactionKind = "BEGIN"
	TxnCommit         TransactionKind = "COMMIT"
	TxnRollback       TransactionKind = "ROLLBACK"
	TxnSavepoint      TransactionKind = "SAVEPOINT"
	TxnReleaseSavept  TransactionKind = "RELEASE"
)

// TransactionStmt is `BEGIN|COMMIT|END|ROLLBACK|SAVEPOINT|RELEASE ...`
// (spec §4.3/§4.9). Named savepoints parse (so the grammar accepts
// them) but are rejected at execution (spec §4.9, non-goals §1).
type TransactionStmt struct {
	Kind        TransactionKind
	Mode        string // DEFERRED, IMMEDIATE, EXCLUSIVE (BEGIN only)
	Name        string // SAVEPOINT / RELEASE name
	ToSavepoint string // ROLLBACK TO SAVEPOINT name
}

func (*TransactionStmt) stmtNode() {}
