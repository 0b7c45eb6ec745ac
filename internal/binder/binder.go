// Package binder substitutes `?` parameter placeholders into SQL text
// before it reaches the tokenizer (spec §4.4). Binding happens ahead of
// lexing rather than during it so the parser never needs to know a
// statement was parameterized.
package binder

import (
	"encoding/base64"
	"strings"

	"github.com/Chahine-tech/rowstore/internal/ast"
	"github.com/Chahine-tech/rowstore/internal/execerr"
)

// Bind replaces each `?` placeholder in sql with the next value from
// params, in textual form, and returns the resulting concrete SQL
// string. Placeholders inside single-quoted string literals are left
// untouched (spec §4.4). The number of placeholders outside string
// literals must equal len(params), or Bind returns unevenNumberOfParameters.
func Bind(sql string, params []ast.Value) (string, error) {
	var out strings.Builder
	paramIdx := 0
	inString := false

	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case inString:
			out.WriteRune(c)
			if c == '\'' {
				// A doubled '' inside a string is an escaped quote, not
				// the closing quote; consume both and stay in-string.
				if i+1 < len(runes) && runes[i+1] == '\'' {
					out.WriteRune(runes[i+1])
					i++
					continue
				}
				inString = false
			}
		case c == '\'':
			inString = true
			out.WriteRune(c)
		case c == '?':
			if paramIdx >= len(params) {
				return "", execerr.New(execerr.UnevenParameters,
					"not enough parameters for placeholders in statement")
			}
			out.WriteString(renderParam(params[paramIdx]))
			paramIdx++
		default:
			out.WriteRune(c)
		}
	}

	if paramIdx != len(params) {
		return "", execerr.New(execerr.UnevenParameters,
			"expected %d parameters, got %d", paramIdx, len(params))
	}
	return out.String(), nil
}

// renderParam renders one bound value the way it must appear spliced
// into SQL text (spec §4.4): strings single-quoted with embedded quotes
// doubled, blobs base64-encoded and quoted, everything else by its
// canonical text form.
func renderParam(v ast.Value) string {
	switch v.Tag {
	case ast.TagText:
		return "'" + strings.ReplaceAll(v.S, "'", "''") + "'"
	case ast.TagBlob:
		return "'" + base64.StdEncoding.EncodeToString(v.Blob) + "'"
	default:
		return v.CanonicalText()
	}
}
