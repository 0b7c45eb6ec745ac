// Package execerr defines the execution error taxonomy (spec §7): the
// failures the store and evaluator can raise once a statement has
// already parsed successfully.
package execerr

import "fmt"

// Kind tags one of the execution failure categories named in spec §4.6-§4.9/§7.
type Kind string

const (
	UnsupportedCommand    Kind = "unsupportedCommand"
	InvalidCommand        Kind = "invalidCommand"
	DuplicateTable        Kind = "duplicateTable"
	UnknownTable          Kind = "unknownTable"
	UnknownColumn         Kind = "unknownColumn"
	DuplicateRecord       Kind = "duplicateRecord"
	InvalidRecord         Kind = "invalidRecord"
	FailedCheckConstraint Kind = "failedCheckConstraint"
	SyntaxError           Kind = "syntaxError"
	NoRowsReturned        Kind = "noRowsReturned"
	UnevenParameters      Kind = "unevenNumberOfParameters"
)

// Error is one execution failure.
type Error struct {
	Kind    Kind
	Message string
	Table   string
	Column  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// New builds an Error of the given Kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// OnTable builds an Error of the given Kind naming the offending table.
func OnTable(kind Kind, table, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Table: table}
}

// OnColumn builds an Error of the given Kind naming the offending table and column.
func OnColumn(kind Kind, table, column, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Table: table, Column: column}
}
