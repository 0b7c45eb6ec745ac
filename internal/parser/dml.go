package parser

import (
	"github.com/Chahine-tech/rowstore/internal/ast"
	"github.com/Chahine-tech/rowstore/internal/token"
)

// parseInsertAction parses the optional `OR action` following INSERT or
// UPDATE (spec §4.3/§4.8).
func (p *Parser) parseInsertAction() (ast.ConflictAction, error) {
	if !p.curIs(token.OR) {
		return ast.ConflictNone, nil
	}
	p.nextToken()
	return p.parseConflictActionWord()
}

// parseInsert parses INSERT [OR action] INTO table [(cols)]
// VALUES (...), ... | SELECT ... | DEFAULT VALUES (spec §4.3/§4.8,
// and the multi-row VALUES extension noted in the Open Questions).
func (p *Parser) parseInsert() (*ast.InsertStmt, error) {
	p.nextToken() // consume INSERT
	action, err := p.parseInsertAction()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.INTO); err != nil {
		return nil, err
	}
	table, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	stmt := &ast.InsertStmt{Table: table, Action: action}

	if p.curIs(token.LPAREN) {
		p.nextToken()
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		stmt.Columns = cols
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	}

	switch p.curToken.Type {
	case token.DEFAULT:
		p.nextToken()
		if _, err := p.expect(token.VALUES); err != nil {
			return nil, err
		}
		stmt.DefaultValues = true
	case token.VALUES:
		p.nextToken()
		for {
			if _, err := p.expect(token.LPAREN); err != nil {
				return nil, err
			}
			row, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			stmt.Values = append(stmt.Values, row)
			if p.curIs(token.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
	case token.SELECT:
		sel, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		stmt.Select = sel
	default:
		return nil, p.unexpected("VALUES, SELECT, or DEFAULT VALUES")
	}
	return stmt, nil
}

// parseUpdate parses UPDATE [OR action] table SET col=expr, ...
// [WHERE expr] (spec §4.3/§4.8).
func (p *Parser) parseUpdate() (*ast.UpdateStmt, error) {
	p.nextToken() // consume UPDATE
	action, err := p.parseInsertAction()
	if err != nil {
		return nil, err
	}
	table, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	stmt := &ast.UpdateStmt{Table: table, Action: action}

	if _, err := p.expect(token.SET); err != nil {
		return nil, err
	}
	for {
		col, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.ASSIGN); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Set = append(stmt.Set, &ast.Assignment{Column: col, Value: val})
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if p.curIs(token.WHERE) {
		p.nextToken()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}

// parseDelete parses DELETE FROM table [WHERE expr] (spec §4.3/§4.8).
func (p *Parser) parseDelete() (*ast.DeleteStmt, error) {
	p.nextToken() // consume DELETE
	if _, err := p.expect(token.FROM); err != nil {
		return nil, err
	}
	table, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	stmt := &ast.DeleteStmt{Table: table}

	if p.curIs(token.WHERE) {
		p.nextToken()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}
