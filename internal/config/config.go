// Package config loads initial table schemas from a YAML seed file
// before a CLI session starts, the same job the teacher's
// pkg/schema/loader.go did for JSON/YAML schema documents, now
// producing ast.TableSchema values the store package can register
// directly instead of the teacher's own descriptive Schema type.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Chahine-tech/rowstore/internal/ast"
)

// columnSeed is one column entry in a seed file.
type columnSeed struct {
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	Nullable      bool   `yaml:"nullable,omitempty"`
	PrimaryKey    bool   `yaml:"primary_key,omitempty"`
	Unique        bool   `yaml:"unique,omitempty"`
	AutoIncrement bool   `yaml:"auto_increment,omitempty"`
}

// tableSeed is one table entry in a seed file.
type tableSeed struct {
	Name    string       `yaml:"name"`
	Columns []columnSeed `yaml:"columns"`
}

// Seed is the top-level shape of a YAML seed file: a named list of
// tables to create before any statement runs.
type Seed struct {
	Tables []tableSeed `yaml:"tables"`
}

// LoadFile reads and parses a YAML seed file at path.
func LoadFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file %q: %w", path, err)
	}
	return Load(data)
}

// Load parses YAML seed data.
func Load(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed YAML: %w", err)
	}
	return &seed, nil
}

// columnTypes maps a seed file's lowercase type name to the engine's
// column type tag (spec §3's Value tags).
var columnTypes = map[string]ast.ColumnType{
	"integer": ast.ColInteger,
	"int":     ast.ColInteger,
	"real":    ast.ColReal,
	"float":   ast.ColReal,
	"text":    ast.ColText,
	"string":  ast.ColText,
	"blob":    ast.ColBlob,
	"bool":    ast.ColBool,
	"boolean": ast.ColBool,
	"date":    ast.ColDate,
}

// TableSchemas converts a loaded Seed into the ast.TableSchema values
// the store registers at startup, in declaration order.
func (s *Seed) TableSchemas() ([]*ast.TableSchema, error) {
	out := make([]*ast.TableSchema, 0, len(s.Tables))
	for _, t := range s.Tables {
		schema := &ast.TableSchema{Name: t.Name}
		for i, c := range t.Columns {
			colType, ok := columnTypes[lower(c.Type)]
			if !ok {
				return nil, fmt.Errorf("table %q column %q: unknown type %q", t.Name, c.Name, c.Type)
			}
			schema.Columns = append(schema.Columns, &ast.ColumnSchema{
				ID:            i,
				Name:          c.Name,
				Type:          colType,
				AllowsNull:    c.Nullable,
				IsPrimaryKey:  c.PrimaryKey,
				IsKeyUnique:   c.Unique,
				AutoIncrement: c.AutoIncrement,
			})
		}
		out = append(out, schema)
	}
	return out, nil
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
