package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chahine-tech/rowstore/internal/ast"
)

func TestLoadSeedYAML(t *testing.T) {
	data := []byte(`
tables:
  - name: users
    columns:
      - name: id
        type: integer
        primary_key: true
        auto_increment: true
      - name: email
        type: text
        nullable: false
        unique: true
`)
	seed, err := Load(data)
	require.NoError(t, err)
	require.Len(t, seed.Tables, 1)

	schemas, err := seed.TableSchemas()
	require.NoError(t, err)
	require.Len(t, schemas, 1)

	schema := schemas[0]
	assert.Equal(t, "users", schema.Name)
	require.Len(t, schema.Columns, 2)
	assert.Equal(t, ast.ColInteger, schema.Columns[0].Type)
	assert.True(t, schema.Columns[0].IsPrimaryKey)
	assert.True(t, schema.Columns[0].AutoIncrement)
	assert.Equal(t, ast.ColText, schema.Columns[1].Type)
	assert.True(t, schema.Columns[1].IsKeyUnique)
}

func TestLoadSeedRejectsUnknownType(t *testing.T) {
	data := []byte(`
tables:
  - name: t
    columns:
      - name: c
        type: nonsense
`)
	seed, err := Load(data)
	require.NoError(t, err)
	_, err = seed.TableSchemas()
	assert.Error(t, err)
}
