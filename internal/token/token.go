// Package token defines the lexical tokens of the engine's SQL dialect:
// the keyword table, the function-name table, and the Token type the
// lexer emits and the parser consumes.
package token

import "strings"

// Type tags a single token.
type Type int

const (
	ILLEGAL Type = iota
	EOF

	IDENT  // bare identifier or double-quoted identifier
	STRING // 'single quoted', including the surrounding quotes
	NUMBER // 123, 123.45
	PARAM  // ?

	// Punctuation and operators.
	SEMICOLON // ;
	COMMA     // ,
	LPAREN    // (
	RPAREN    // )
	DOT       // .
	ASTERISK  // *
	SLASH     // /
	PLUS      // +
	MINUS     // -
	ASSIGN    // =
	NEQ       // != or <>
	LT        // <
	GT        // >
	LTE       // <=
	GTE       // >=

	keywordStart
	SELECT
	FROM
	WHERE
	JOIN
	NATURAL
	LEFT
	OUTER
	INNER
	CROSS
	ON
	USING
	GROUP
	BY
	HAVING
	ORDER
	ASC
	DESC
	LIMIT
	OFFSET
	INSERT
	INTO
	VALUES
	DEFAULT
	UPDATE
	SET
	DELETE
	CREATE
	TABLE
	ALTER
	RENAME
	ADD
	COLUMN
	DROP
	IF
	EXISTS
	NOT
	NULL
	UNIQUE
	PRIMARY
	KEY
	AUTOINCREMENT
	CHECK
	COLLATE
	REFERENCES
	FOREIGN
	BEGIN
	COMMIT
	END
	ROLLBACK
	SAVEPOINT
	RELEASE
	TRANSACTION
	DEFERRED
	IMMEDIATE
	EXCLUSIVE
	TO
	CAST
	AS
	CASE
	WHEN
	THEN
	ELSE
	BETWEEN
	AND
	OR
	IN
	IS
	LIKE
	GLOB
	REGEXP
	MATCH
	ISNULL
	NOTNULL
	DISTINCT
	ALL
	INDEX
	VIEW
	TRIGGER
	OR_REPLACE // pseudo, never lexed, kept for completeness of enum
	keywordEnd
)

// keywords maps the upper-cased spelling of a reserved word to its Type.
// Lookup is case-insensitive; stored identifiers keep whatever case the
// source used.
var keywords = map[string]Type{
	"SELECT": SELECT, "FROM": FROM, "WHERE": WHERE, "JOIN": JOIN,
	"NATURAL": NATURAL, "LEFT": LEFT, "OUTER": OUTER, "INNER": INNER,
	"CROSS": CROSS, "ON": ON, "USING": USING, "GROUP": GROUP, "BY": BY,
	"HAVING": HAVING, "ORDER": ORDER, "ASC": ASC, "DESC": DESC,
	"LIMIT": LIMIT, "OFFSET": OFFSET, "INSERT": INSERT, "INTO": INTO,
	"VALUES": VALUES, "DEFAULT": DEFAULT, "UPDATE": UPDATE, "SET": SET,
	"DELETE": DELETE, "CREATE": CREATE, "TABLE": TABLE, "ALTER": ALTER,
	"RENAME": RENAME, "ADD": ADD, "COLUMN": COLUMN, "DROP": DROP,
	"IF": IF, "EXISTS": EXISTS, "NOT": NOT, "NULL": NULL,
	"UNIQUE": UNIQUE, "PRIMARY": PRIMARY, "KEY": KEY,
	"AUTOINCREMENT": AUTOINCREMENT, "CHECK": CHECK, "COLLATE": COLLATE,
	"REFERENCES": REFERENCES, "FOREIGN": FOREIGN, "BEGIN": BEGIN,
	"COMMIT": COMMIT, "END": END, "ROLLBACK": ROLLBACK,
	"SAVEPOINT": SAVEPOINT, "RELEASE": RELEASE, "TRANSACTION": TRANSACTION,
	"DEFERRED": DEFERRED, "IMMEDIATE": IMMEDIATE, "EXCLUSIVE": EXCLUSIVE,
	"TO": TO, "CAST": CAST, "AS": AS, "CASE": CASE, "WHEN": WHEN,
	"THEN": THEN, "ELSE": ELSE, "BETWEEN": BETWEEN, "AND": AND, "OR": OR,
	"IN": IN, "IS": IS, "LIKE": LIKE, "GLOB": GLOB, "REGEXP": REGEXP,
	"MATCH": MATCH, "ISNULL": ISNULL, "NOTNULL": NOTNULL,
	"DISTINCT": DISTINCT, "ALL": ALL, "INDEX": INDEX, "VIEW": VIEW,
	"TRIGGER": TRIGGER,
}

var names = map[Type]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", IDENT: "IDENT", STRING: "STRING",
	NUMBER: "NUMBER", PARAM: "PARAM", SEMICOLON: ";", COMMA: ",",
	LPAREN: "(", RPAREN: ")", DOT: ".", ASTERISK: "*", SLASH: "/",
	PLUS: "+", MINUS: "-", ASSIGN: "=", NEQ: "!=", LT: "<", GT: ">",
	LTE: "<=", GTE: ">=",
}

func init() {
	for k, v := range keywords {
		names[v] = k
	}
}

func (t Type) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// IsKeyword reports whether t is one of the reserved words above.
func (t Type) IsKeyword() bool { return t > keywordStart && t < keywordEnd }

// Lookup resolves an identifier's upper-cased spelling to a keyword Type,
// or IDENT if it is not reserved.
func Lookup(ident string) Type {
	if tok, ok := keywords[strings.ToUpper(ident)]; ok {
		return tok
	}
	return IDENT
}

// AggregateFunctions and ScalarFunctions tag identifiers used as function
// names (§4.2). Lookup is case-insensitive; the parser consults these only
// when it has already seen IDENT '('.
var AggregateFunctions = map[string]bool{
	"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true,
}

var ScalarFunctions = map[string]bool{
	"LTRIM": true, "TRIM": true, "RTRIM": true, "INSTR": true,
	"REPLACE": true, "UPPER": true, "LOWER": true, "LENGTH": true,
	"SUBSTR": true, "ABS": true, "ROUND": true, "RANDOM": true,
	"DATE": true, "TIME": true, "DATETIME": true, "JULIANDAY": true,
	"STRFTIME": true, "NOW": true, "COALESCE": true, "IFNULL": true,
	"NULLIF": true, "LAST_INSERT_ROWID": true, "COMPARE": true,
}

// IsFunctionName reports whether ident (case-insensitively) names a known
// scalar or aggregate function.
func IsFunctionName(ident string) bool {
	u := strings.ToUpper(ident)
	return AggregateFunctions[u] || ScalarFunctions[u]
}

// IsAggregateName reports whether ident (case-insensitively) names one of
// the five aggregate functions.
func IsAggregateName(ident string) bool {
	return AggregateFunctions[strings.ToUpper(ident)]
}

// Token is one lexical unit produced by the lexer.
type Token struct {
	Type    Type
	Literal string
	Line    int
	Column  int
}
