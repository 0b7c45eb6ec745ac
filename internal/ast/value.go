// Package ast holds the data model spec §3 describes: the tagged Value
// sum, Record/RecordSet, table/column schema, and the expression and
// instruction trees the parser builds and the evaluator and store walk.
//
// Mirrors the teacher's ast.go layout (marker interfaces, one struct per
// node kind) but the node shapes themselves are rebuilt for an executor
// rather than a static analyzer: every node here either evaluates to a
// Value or is dispatched by the store.
package ast

import (
	"fmt"
	"time"
)

// Tag names the runtime type of a Value (spec §3).
type Tag int

const (
	TagNull Tag = iota
	TagInteger
	TagReal
	TagText
	TagBool
	TagBlob
	TagDate
)

func (t Tag) String() string {
	switch t {
	case TagNull:
		return "Null"
	case TagInteger:
		return "Integer"
	case TagReal:
		return "Real"
	case TagText:
		return "Text"
	case TagBool:
		return "Bool"
	case TagBlob:
		return "Blob"
	case TagDate:
		return "Date"
	default:
		return "Unknown"
	}
}

// Value is the tagged sum every column, literal, and evaluated
// expression carries (spec §3). Only the field matching Tag is
// meaningful.
type Value struct {
	Tag  Tag
	I    int64
	R    float64
	S    string
	B    bool
	Blob []byte
	T    time.Time
}

func Null() Value                { return Value{Tag: TagNull} }
func Int(i int64) Value          { return Value{Tag: TagInteger, I: i} }
func Real(r float64) Value       { return Value{Tag: TagReal, R: r} }
func Text(s string) Value        { return Value{Tag: TagText, S: s} }
func Bool(b bool) Value          { return Value{Tag: TagBool, B: b} }
func BlobVal(b []byte) Value     { return Value{Tag: TagBlob, Blob: b} }
func Date(t time.Time) Value     { return Value{Tag: TagDate, T: t} }

func (v Value) IsNull() bool { return v.Tag == TagNull }

func (v Value) IsNumeric() bool { return v.Tag == TagInteger || v.Tag == TagReal }

// CanonicalText renders v the way parameter binding (spec §4.4) writes a
// non-string, non-blob value into SQL text.
func (v Value) CanonicalText() string {
	switch v.Tag {
	case TagNull:
		return "NULL"
	case TagInteger:
		return fmt.Sprintf("%d", v.I)
	case TagReal:
		return fmt.Sprintf("%g", v.R)
	case TagBool:
		if v.B {
			return "1"
		}
		return "0"
	case TagDate:
		return v.T.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v.S)
	}
}

// String renders v for display (row printing, CLI output); distinct from
// CanonicalText which is specifically SQL-text rendering.
func (v Value) String() string {
	switch v.Tag {
	case TagNull:
		return ""
	case TagText:
		return v.S
	case TagBlob:
		return fmt.Sprintf("x'%x'", v.Blob)
	default:
		return v.CanonicalText()
	}
}
