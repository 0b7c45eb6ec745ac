package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chahine-tech/rowstore/internal/token"
)

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestScanKeywordsAreCaseInsensitive(t *testing.T) {
	toks, err := Scan("select * from t where id = 1")
	require.NoError(t, err)
	assert.Equal(t, []token.Type{
		token.SELECT, token.ASTERISK, token.FROM, token.IDENT,
		token.WHERE, token.IDENT, token.ASSIGN, token.NUMBER, token.EOF,
	}, types(toks))
}

func TestScanStringLiteralKeepsQuotes(t *testing.T) {
	toks, err := Scan("'hello'")
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, token.STRING, toks[0].Type)
	assert.Equal(t, "'hello'", toks[0].Literal)
}

func TestScanEmptyStringLiteralUsesSentinel(t *testing.T) {
	toks, err := Scan("''")
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, EmptyString, toks[0].Literal)
}

func TestScanDoubledSingleQuoteIsEscapedApostrophe(t *testing.T) {
	toks, err := Scan("'it''s'")
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, "'it's'", toks[0].Literal)
}

func TestScanUnterminatedStringErrors(t *testing.T) {
	_, err := Scan("'unterminated")
	require.Error(t, err)
	lexErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, "mismatchedSingleQuotes", lexErr.Kind)
}

func TestScanQuotedIdentifier(t *testing.T) {
	toks, err := Scan(`"my col" + 1`)
	require.NoError(t, err)
	assert.Equal(t, token.IDENT, toks[0].Type)
	assert.Equal(t, "my col", toks[0].Literal)
}

func TestScanUnterminatedQuotedIdentifierErrors(t *testing.T) {
	_, err := Scan(`"unterminated`)
	require.Error(t, err)
	lexErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, "mismatchedDoubleQuotes", lexErr.Kind)
}

func TestScanNumberIntegerAndReal(t *testing.T) {
	toks, err := Scan("123 45.67")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "123", toks[0].Literal)
	assert.Equal(t, "45.67", toks[1].Literal)
}

func TestScanSkipsLineAndBlockComments(t *testing.T) {
	toks, err := Scan("SELECT 1 -- trailing comment\n/* block\ncomment */ FROM t")
	require.NoError(t, err)
	assert.Equal(t, []token.Type{
		token.SELECT, token.NUMBER, token.FROM, token.IDENT, token.EOF,
	}, types(toks))
}

func TestScanMultiCharOperators(t *testing.T) {
	toks, err := Scan("a <= b >= c != d <> e")
	require.NoError(t, err)
	assert.Equal(t, []token.Type{
		token.IDENT, token.LTE, token.IDENT, token.GTE, token.IDENT,
		token.NEQ, token.IDENT, token.NEQ, token.IDENT, token.EOF,
	}, types(toks))
}

func TestScanParamPlaceholder(t *testing.T) {
	toks, err := Scan("a = ?")
	require.NoError(t, err)
	assert.Equal(t, token.PARAM, toks[2].Type)
	assert.Equal(t, "?", toks[2].Literal)
}

func TestScanIllegalCharacter(t *testing.T) {
	toks, err := Scan("a @ b")
	require.NoError(t, err)
	assert.Equal(t, token.ILLEGAL, toks[1].Type)
	assert.Equal(t, "@", toks[1].Literal)
}

func TestScanIdentifierThatIsAReservedKeyword(t *testing.T) {
	toks, err := Scan("SELECT FROM")
	require.NoError(t, err)
	assert.Equal(t, token.SELECT, toks[0].Type)
	assert.Equal(t, token.FROM, toks[1].Type)
}
