package parser

import (
	"github.com/Chahine-tech/rowstore/internal/ast"
	"github.com/Chahine-tech/rowstore/internal/parseerr"
	"github.com/Chahine-tech/rowstore/internal/token"
)

// parseSelect parses a full SELECT statement (spec §4.3).
func (p *Parser) parseSelect() (*ast.SelectStmt, error) {
	stmt := &ast.SelectStmt{}
	p.nextToken() // consume SELECT

	if p.curIs(token.DISTINCT) {
		stmt.Distinct = true
		p.nextToken()
	} else if p.curIs(token.ALL) {
		p.nextToken()
	}

	cols, err := p.parseResultColumns()
	if err != nil {
		return nil, err
	}
	stmt.Columns = cols

	if p.curIs(token.FROM) {
		p.nextToken()
		from, err := p.parseFromList()
		if err != nil {
			return nil, err
		}
		stmt.From = from
	}

	if p.curIs(token.WHERE) {
		p.nextToken()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.curIs(token.GROUP) {
		p.nextToken()
		if _, err := p.expect(token.BY); err != nil {
			return nil, err
		}
		group, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		stmt.GroupBy = group
		if p.curIs(token.HAVING) {
			p.nextToken()
			having, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			stmt.Having = having
		}
	}

	if p.curIs(token.ORDER) {
		p.nextToken()
		if _, err := p.expect(token.BY); err != nil {
			return nil, err
		}
		order, err := p.parseOrderByList()
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = order
	}

	if p.curIs(token.LIMIT) {
		limit, err := p.parseLimitClause()
		if err != nil {
			return nil, err
		}
		stmt.Limit = limit
	}

	return stmt, nil
}

func (p *Parser) parseResultColumns() ([]*ast.ResultColumn, error) {
	var out []*ast.ResultColumn
	for {
		col, err := p.parseResultColumn()
		if err != nil {
			return nil, err
		}
		out = append(out, col)
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return out, nil
}

func (p *Parser) parseResultColumn() (*ast.ResultColumn, error) {
	if p.curIs(token.ASTERISK) {
		p.nextToken()
		return &ast.ResultColumn{Star: true}, nil
	}
	if p.curIs(token.IDENT) && p.peekIs(token.DOT) {
		table := p.curToken.Literal
		save := *p
		p.nextToken() // table
		p.nextToken() // dot
		if p.curIs(token.ASTERISK) {
			p.nextToken()
			return &ast.ResultColumn{Star: true, StarTable: table}, nil
		}
		*p = save
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	col := &ast.ResultColumn{Expr: expr}
	if p.curIs(token.AS) {
		p.nextToken()
		alias, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		col.Alias = alias
	} else if p.curIs(token.IDENT) {
		col.Alias = p.curToken.Literal
		p.nextToken()
	}
	return col, nil
}

func (p *Parser) parseFromList() (*ast.FromNode, error) {
	left, err := p.parseTableRefNode()
	if err != nil {
		return nil, err
	}
	for {
		if p.curIs(token.COMMA) {
			// Comma-separated FROM list is an implicit CROSS JOIN chain.
			p.nextToken()
			right, err := p.parseTableRefNode()
			if err != nil {
				return nil, err
			}
			left = &ast.FromNode{JoinType: ast.JoinCross, Left: left, Right: right}
			continue
		}
		joinType, ok, err := p.parseJoinKeyword()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		right, err := p.parseTableRefNode()
		if err != nil {
			return nil, err
		}
		node := &ast.FromNode{JoinType: joinType, Left: left, Right: right}
		if p.curIs(token.ON) {
			p.nextToken()
			on, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			node.On = on
		} else if p.curIs(token.USING) {
			p.nextToken()
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
			node.Using = cols
		}
		left = node
	}
	return left, nil
}

// parseJoinKeyword consumes a join-introducing keyword sequence and
// reports which JoinType it names (spec §4.3). Returns ok=false and
// consumes nothing if the current token doesn't start a join.
func (p *Parser) parseJoinKeyword() (ast.JoinType, bool, error) {
	switch p.curToken.Type {
	case token.JOIN:
		p.nextToken()
		return ast.JoinInner, true, nil
	case token.INNER:
		p.nextToken()
		if _, err := p.expect(token.JOIN); err != nil {
			return "", false, err
		}
		return ast.JoinInner, true, nil
	case token.CROSS:
		p.nextToken()
		if _, err := p.expect(token.JOIN); err != nil {
			return "", false, err
		}
		return ast.JoinCross, true, nil
	case token.NATURAL:
		p.nextToken()
		if p.curIs(token.LEFT) {
			p.nextToken()
			if p.curIs(token.OUTER) {
				p.nextToken()
			}
		}
		if _, err := p.expect(token.JOIN); err != nil {
			return "", false, err
		}
		return ast.JoinNatural, true, nil
	case token.LEFT:
		p.nextToken()
		if p.curIs(token.OUTER) {
			p.nextToken()
		}
		if _, err := p.expect(token.JOIN); err != nil {
			return "", false, err
		}
		return ast.JoinLeft, true, nil
	default:
		return "", false, nil
	}
}

func (p *Parser) parseTableRefNode() (*ast.FromNode, error) {
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	ref := &ast.TableRef{Name: name}
	if p.curIs(token.AS) {
		p.nextToken()
		alias, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		ref.Alias = alias
	} else if p.curIs(token.IDENT) {
		ref.Alias = p.curToken.Literal
		p.nextToken()
	}
	return &ast.FromNode{Table: ref}, nil
}

func (p *Parser) parseIdentList() ([]string, error) {
	var out []string
	for {
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		out = append(out, name)
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return out, nil
}

func (p *Parser) parseOrderByList() ([]*ast.OrderByTerm, error) {
	var out []*ast.OrderByTerm
	for {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		term := &ast.OrderByTerm{Expr: expr}
		if p.curIs(token.ASC) {
			p.nextToken()
		} else if p.curIs(token.DESC) {
			term.Desc = true
			p.nextToken()
		}
		if p.curIs(token.COLLATE) {
			p.nextToken()
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			term.Collate = name
		}
		out = append(out, term)
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return out, nil
}

// parseLimitClause handles both `LIMIT n [OFFSET m]` and the
// comma-separated MySQL/SQLite shorthand `LIMIT m, n` (spec §4.3).
func (p *Parser) parseLimitClause() (*ast.LimitClause, error) {
	p.nextToken() // consume LIMIT
	first, err := p.expectIntLiteral()
	if err != nil {
		return nil, err
	}
	lc := &ast.LimitClause{Limit: first, Offset: -1}
	if p.curIs(token.COMMA) {
		p.nextToken()
		second, err := p.expectIntLiteral()
		if err != nil {
			return nil, err
		}
		lc.Offset = first
		lc.Limit = second
		return lc, nil
	}
	if p.curIs(token.OFFSET) {
		p.nextToken()
		off, err := p.expectIntLiteral()
		if err != nil {
			return nil, err
		}
		lc.Offset = off
	}
	return lc, nil
}

func (p *Parser) expectIntLiteral() (int, error) {
	if !p.curIs(token.NUMBER) {
		return 0, parseerr.At(parseerr.ExpectedIntValue, p.curToken.Line, p.curToken.Column,
			"expected an integer, got %s(%q)", p.curToken.Type, p.curToken.Literal)
	}
	v, err := literalFromNumber(p.curToken.Literal)
	if err != nil {
		return 0, err
	}
	p.nextToken()
	if v.Tag != ast.TagInteger {
		return 0, parseerr.New(parseerr.ExpectedIntValue, "expected an integer literal")
	}
	return int(v.I), nil
}
