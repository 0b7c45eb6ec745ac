package parser

import (
	"strings"

	"github.com/Chahine-tech/rowstore/internal/ast"
	"github.com/Chahine-tech/rowstore/internal/parseerr"
	"github.com/Chahine-tech/rowstore/internal/token"
)

// parseCreate dispatches CREATE TABLE/INDEX/VIEW/TRIGGER (spec §4.3).
// INDEX/VIEW/TRIGGER parse into minimal nodes; the store rejects them at
// execution (spec §3/§4.9).
func (p *Parser) parseCreate() (ast.Stmt, error) {
	p.nextToken() // consume CREATE
	switch p.curToken.Type {
	case token.TABLE:
		return p.parseCreateTable()
	case token.UNIQUE:
		p.nextToken()
		if _, err := p.expect(token.INDEX); err != nil {
			return nil, err
		}
		return p.parseCreateIndexTail()
	case token.INDEX:
		p.nextToken()
		return p.parseCreateIndexTail()
	case token.VIEW:
		p.nextToken()
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		p.skipToStatementEnd()
		return &ast.CreateViewStmt{Name: name}, nil
	case token.TRIGGER:
		p.nextToken()
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		p.skipToStatementEnd()
		return &ast.CreateTriggerStmt{Name: name}, nil
	default:
		return nil, p.unexpected("TABLE, INDEX, VIEW, or TRIGGER")
	}
}

func (p *Parser) parseCreateIndexTail() (ast.Stmt, error) {
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ON); err != nil {
		return nil, err
	}
	table, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	p.skipToStatementEnd()
	return &ast.CreateIndexStmt{Name: name, Table: table}, nil
}

// skipToStatementEnd discards tokens up to (not including) the
// terminating `;` or EOF, used for statements whose grammar this
// parser accepts but does not fully model (spec §3's "parsed but
// rejected" CreateIndex/View/Trigger).
func (p *Parser) skipToStatementEnd() {
	depth := 0
	for !p.curIs(token.EOF) {
		switch p.curToken.Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
		case token.SEMICOLON:
			if depth <= 0 {
				return
			}
		}
		p.nextToken()
	}
}

func (p *Parser) parseCreateTable() (*ast.CreateTableStmt, error) {
	p.nextToken() // consume TABLE
	stmt := &ast.CreateTableStmt{}

	if p.curIs(token.IF) {
		p.nextToken()
		if _, err := p.expect(token.NOT); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.EXISTS); err != nil {
			return nil, err
		}
		stmt.IfNotExists = true
	}

	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	stmt.Name = name

	if p.curIs(token.AS) {
		p.nextToken()
		sel, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		stmt.AsSelect = sel
		return stmt, nil
	}

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	id := 0
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		if p.curIs(token.PRIMARY) || p.curIs(token.FOREIGN) || p.curIs(token.UNIQUE) || p.curIs(token.CHECK) {
			tc, err := p.parseTableConstraint()
			if err != nil {
				return nil, err
			}
			stmt.Constraints = append(stmt.Constraints, tc)
		} else {
			col, err := p.parseColumnDefinition(id)
			if err != nil {
				return nil, err
			}
			id++
			stmt.Columns = append(stmt.Columns, col)
		}
		if p.curIs(token.COMMA) {
			p.nextToken()
		} else if !p.curIs(token.RPAREN) {
			return nil, p.unexpected("',' or ')'")
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseColumnDefinition(id int) (*ast.ColumnSchema, error) {
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	col := &ast.ColumnSchema{ID: id, Name: name, AllowsNull: true, Type: ast.ColNone}

	if p.curIs(token.IDENT) {
		typ, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		col.Type = typ
	}

	for p.curIs(token.PRIMARY) || p.curIs(token.NOT) || p.curIs(token.UNIQUE) ||
		p.curIs(token.CHECK) || p.curIs(token.DEFAULT) || p.curIs(token.COLLATE) ||
		p.curIs(token.REFERENCES) {
		switch p.curToken.Type {
		case token.PRIMARY:
			p.nextToken()
			if _, err := p.expect(token.KEY); err != nil {
				return nil, err
			}
			col.IsPrimaryKey = true
			col.IsKeyUnique = true
			col.AllowsNull = false
			if p.curIs(token.ASC) || p.curIs(token.DESC) {
				p.nextToken()
			}
			if p.curIs(token.AUTOINCREMENT) {
				p.nextToken()
				col.AutoIncrement = true
			}
			if action, ok, err := p.parseOnConflict(); err != nil {
				return nil, err
			} else if ok {
				col.OnConflict = action
			}
		case token.NOT:
			p.nextToken()
			if _, err := p.expect(token.NULL); err != nil {
				return nil, err
			}
			col.AllowsNull = false
		case token.UNIQUE:
			p.nextToken()
			col.IsKeyUnique = true
			if action, ok, err := p.parseOnConflict(); err != nil {
				return nil, err
			} else if ok {
				col.OnConflict = action
			}
		case token.CHECK:
			p.nextToken()
			if _, err := p.expect(token.LPAREN); err != nil {
				return nil, err
			}
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			col.CheckExpression = expr
		case token.DEFAULT:
			p.nextToken()
			expr, err := p.parseDefaultValue()
			if err != nil {
				return nil, err
			}
			col.DefaultValue = expr
		case token.COLLATE:
			p.nextToken()
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			col.CollateName = name
		case token.REFERENCES:
			fk, err := p.parseReferencesClause(name)
			if err != nil {
				return nil, err
			}
			col.References = fk
		}
	}
	return col, nil
}

// parseDefaultValue parses a DEFAULT value, which may be a parenthesized
// expression or a bare literal/unary expression (spec §4.3).
func (p *Parser) parseDefaultValue() (ast.Expr, error) {
	if p.curIs(token.LPAREN) {
		p.nextToken()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	}
	return p.parseUnary()
}

func (p *Parser) parseOnConflict() (ast.ConflictAction, bool, error) {
	if !p.curIs(token.ON) {
		return ast.ConflictNone, false, nil
	}
	p.nextToken()
	if _, err := p.expect(token.IDENT); err != nil { // CONFLICT is not a reserved word here
		return ast.ConflictNone, false, err
	}
	action, err := p.parseConflictActionWord()
	if err != nil {
		return ast.ConflictNone, false, err
	}
	return action, true, nil
}

func (p *Parser) parseConflictActionWord() (ast.ConflictAction, error) {
	switch p.curToken.Type {
	case token.ROLLBACK:
		p.nextToken()
		return ast.ConflictRollback, nil
	case token.IDENT:
		word := strings.ToUpper(p.curToken.Literal)
		p.nextToken()
		switch word {
		case "ABORT":
			return ast.ConflictAbort, nil
		case "FAIL":
			return ast.ConflictFail, nil
		case "IGNORE":
			return ast.ConflictIgnore, nil
		case "REPLACE":
			return ast.ConflictReplace, nil
		}
		return ast.ConflictNone, parseerr.New(parseerr.InvalidKeyword, "unknown conflict action %q", word)
	default:
		return ast.ConflictNone, p.unexpected("a conflict action")
	}
}

func (p *Parser) parseReferencesClause(fromColumn string) (*ast.ForeignKey, error) {
	p.nextToken() // consume REFERENCES
	table, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	fk := &ast.ForeignKey{Columns: []string{fromColumn}, RefTable: table}
	if p.curIs(token.LPAREN) {
		p.nextToken()
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		fk.RefColumns = cols
	}
	return fk, nil
}

func (p *Parser) parseTableConstraint() (*ast.TableConstraint, error) {
	tc := &ast.TableConstraint{}
	switch p.curToken.Type {
	case token.PRIMARY:
		p.nextToken()
		if _, err := p.expect(token.KEY); err != nil {
			return nil, err
		}
		tc.Kind = "PRIMARY KEY"
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		tc.Columns = cols
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	case token.UNIQUE:
		p.nextToken()
		tc.Kind = "UNIQUE"
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		tc.Columns = cols
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	case token.CHECK:
		p.nextToken()
		tc.Kind = "CHECK"
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		tc.Check = expr
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	case token.FOREIGN:
		p.nextToken()
		if _, err := p.expect(token.KEY); err != nil {
			return nil, err
		}
		tc.Kind = "FOREIGN KEY"
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.REFERENCES); err != nil {
			return nil, err
		}
		refTable, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		fk := &ast.ForeignKey{Columns: cols, RefTable: refTable}
		if p.curIs(token.LPAREN) {
			p.nextToken()
			refCols, err := p.parseIdentList()
			if err != nil {
				return nil, err
			}
			fk.RefColumns = refCols
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
		}
		tc.ForeignKey = fk
	default:
		return nil, p.unexpected("a table constraint")
	}
	if action, ok, err := p.parseOnConflict(); err != nil {
		return nil, err
	} else if ok {
		tc.Conflict = action
	}
	return tc, nil
}

// parseAlter parses ALTER TABLE RENAME TO / ADD COLUMN (spec §4.3).
func (p *Parser) parseAlter() (*ast.AlterTableStmt, error) {
	p.nextToken() // consume ALTER
	if _, err := p.expect(token.TABLE); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	stmt := &ast.AlterTableStmt{Name: name}

	switch p.curToken.Type {
	case token.RENAME:
		p.nextToken()
		if _, err := p.expect(token.TO); err != nil {
			return nil, err
		}
		newName, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		stmt.RenameTo = newName
	case token.ADD:
		p.nextToken()
		if p.curIs(token.COLUMN) {
			p.nextToken()
		}
		col, err := p.parseColumnDefinition(0)
		if err != nil {
			return nil, err
		}
		stmt.AddColumn = col
	default:
		return nil, p.unexpected("RENAME or ADD")
	}
	return stmt, nil
}

// parseDrop parses `DROP {INDEX|TABLE|TRIGGER|VIEW} [IF EXISTS] name`
// (spec §4.3).
func (p *Parser) parseDrop() (*ast.DropStmt, error) {
	p.nextToken() // consume DROP
	stmt := &ast.DropStmt{}
	switch p.curToken.Type {
	case token.TABLE:
		stmt.Kind = "TABLE"
	case token.INDEX:
		stmt.Kind = "INDEX"
	case token.VIEW:
		stmt.Kind = "VIEW"
	case token.TRIGGER:
		stmt.Kind = "TRIGGER"
	default:
		return nil, p.unexpected("INDEX, TABLE, TRIGGER, or VIEW")
	}
	p.nextToken()

	if p.curIs(token.IF) {
		p.nextToken()
		if _, err := p.expect(token.EXISTS); err != nil {
			return nil, err
		}
		stmt.IfExists = true
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	stmt.Name = name
	return stmt, nil
}
