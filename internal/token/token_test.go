package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, SELECT, Lookup("select"))
	assert.Equal(t, SELECT, Lookup("SELECT"))
	assert.Equal(t, SELECT, Lookup("SeLeCt"))
}

func TestLookupReturnsIdentForNonKeyword(t *testing.T) {
	assert.Equal(t, IDENT, Lookup("customer_id"))
}

func TestIsKeyword(t *testing.T) {
	assert.True(t, SELECT.IsKeyword())
	assert.True(t, TRIGGER.IsKeyword())
	assert.False(t, IDENT.IsKeyword())
	assert.False(t, EOF.IsKeyword())
}

func TestTypeStringRoundTripsKeywords(t *testing.T) {
	assert.Equal(t, "SELECT", SELECT.String())
	assert.Equal(t, "FROM", FROM.String())
}

func TestTypeStringForPunctuation(t *testing.T) {
	assert.Equal(t, ";", SEMICOLON.String())
	assert.Equal(t, "<=", LTE.String())
}

func TestIsFunctionNameCoversAggregateAndScalar(t *testing.T) {
	assert.True(t, IsFunctionName("count"))
	assert.True(t, IsFunctionName("SUM"))
	assert.True(t, IsFunctionName("substr"))
	assert.True(t, IsFunctionName("Coalesce"))
	assert.False(t, IsFunctionName("not_a_function"))
}

func TestIsAggregateName(t *testing.T) {
	assert.True(t, IsAggregateName("avg"))
	assert.False(t, IsAggregateName("upper"))
}
