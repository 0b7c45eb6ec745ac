// Package parser is a predictive recursive-descent parser (spec §4.3)
// that consumes the lexer's token queue and builds one ast.Stmt per SQL
// statement. It keeps the teacher's curToken/peekToken/nextToken/
// expect cursor idiom and fmt.Errorf-flavored messages, rebuilt
// against spec.md's grammar rather than the teacher's multi-dialect one.
package parser

import (
	"strconv"
	"strings"

	"github.com/Chahine-tech/rowstore/internal/ast"
	"github.com/Chahine-tech/rowstore/internal/lexer"
	"github.com/Chahine-tech/rowstore/internal/parseerr"
	"github.com/Chahine-tech/rowstore/internal/token"
)

// Parser walks a pre-tokenized SQL string and produces instructions.
type Parser struct {
	toks []token.Token
	pos  int

	curToken  token.Token
	peekToken token.Token
}

// New tokenizes sql and returns a Parser positioned at the first
// statement. Parameter placeholders must already have been substituted
// (spec §4.4) before sql reaches here.
func New(sql string) (*Parser, error) {
	toks, err := lexer.Scan(sql)
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	p.nextToken()
	p.nextToken()
	return p, nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pos < len(p.toks) {
		p.peekToken = p.toks[p.pos]
		p.pos++
	} else {
		p.peekToken = token.Token{Type: token.EOF}
	}
}

func (p *Parser) curIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peekToken.Type == t }

// expect asserts the current token's type, consumes it, and returns its
// literal; otherwise it reports malformedSQLCommand.
func (p *Parser) expect(t token.Type) (string, error) {
	if !p.curIs(t) {
		return "", parseerr.At(parseerr.MalformedCommand, p.curToken.Line, p.curToken.Column,
			"expected %s, got %s(%q)", t, p.curToken.Type, p.curToken.Literal)
	}
	lit := p.curToken.Literal
	p.nextToken()
	return lit, nil
}

func (p *Parser) unexpected(what string) error {
	return parseerr.At(parseerr.MalformedCommand, p.curToken.Line, p.curToken.Column,
		"expected %s, got %s(%q)", what, p.curToken.Type, p.curToken.Literal)
}

// ParseStatements parses every `;`-separated statement in the input
// (spec §4.3).
func ParseStatements(sql string) ([]ast.Stmt, error) {
	p, err := New(sql)
	if err != nil {
		return nil, err
	}
	return p.ParseStatements()
}

// ParseStatements parses every `;`-separated statement from p's token
// stream.
func (p *Parser) ParseStatements() ([]ast.Stmt, error) {
	var out []ast.Stmt
	for p.curIs(token.SEMICOLON) {
		p.nextToken()
	}
	for !p.curIs(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
		for p.curIs(token.SEMICOLON) {
			p.nextToken()
		}
	}
	return out, nil
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.curToken.Type {
	case token.SELECT:
		return p.parseSelect()
	case token.INSERT:
		return p.parseInsert()
	case token.UPDATE:
		return p.parseUpdate()
	case token.DELETE:
		return p.parseDelete()
	case token.CREATE:
		return p.parseCreate()
	case token.ALTER:
		return p.parseAlter()
	case token.DROP:
		return p.parseDrop()
	case token.BEGIN:
		return p.parseBegin()
	case token.COMMIT, token.END:
		return p.parseCommit()
	case token.ROLLBACK:
		return p.parseRollback()
	case token.SAVEPOINT:
		return p.parseSavepoint()
	case token.RELEASE:
		return p.parseReleaseSavepoint()
	default:
		return nil, parseerr.At(parseerr.UnknownKeyword, p.curToken.Line, p.curToken.Column,
			"unexpected token %s(%q) at start of statement", p.curToken.Type, p.curToken.Literal)
	}
}

// --- expression parsing: Pratt-style, tight to loose (spec §4.3) ---

func (p *Parser) parseExpr() (ast.Expr, error) { return p.parseOr() }

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.OR) {
		p.nextToken()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: "OR", L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parsePredicate()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.AND) {
		p.nextToken()
		right, err := p.parsePredicate()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: "AND", L: left, R: right}
	}
	return left, nil
}

// parsePredicate layers IS [NOT] NULL, ISNULL, NOTNULL, [NOT] IN,
// [NOT] LIKE/GLOB/REGEXP/MATCH, [NOT] BETWEEN, and COLLATE onto a
// comparison-level expression (spec §4.3).
func (p *Parser) parsePredicate() (ast.Expr, error) {
	x, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.curIs(token.IS):
			p.nextToken()
			neg := false
			if p.curIs(token.NOT) {
				neg = true
				p.nextToken()
			}
			if _, err := p.expect(token.NULL); err != nil {
				return nil, err
			}
			x = &ast.IsNullTest{X: x, Negate: neg}
		case p.curIs(token.ISNULL):
			p.nextToken()
			x = &ast.IsNullTest{X: x}
		case p.curIs(token.NOTNULL):
			p.nextToken()
			x = &ast.IsNullTest{X: x, Negate: true}
		case p.curIs(token.IN):
			var err error
			x, err = p.parseInSuffix(x, false)
			if err != nil {
				return nil, err
			}
		case p.isTextPredicate(p.curToken.Type):
			var err error
			x, err = p.parseTextPredicateSuffix(x, false)
			if err != nil {
				return nil, err
			}
		case p.curIs(token.BETWEEN):
			var err error
			x, err = p.parseBetweenSuffix(x, false)
			if err != nil {
				return nil, err
			}
		case p.curIs(token.NOT) && p.peekIsPredicateStart():
			p.nextToken() // consume NOT
			var err error
			switch p.curToken.Type {
			case token.IN:
				x, err = p.parseInSuffix(x, true)
			case token.BETWEEN:
				x, err = p.parseBetweenSuffix(x, true)
			default:
				x, err = p.parseTextPredicateSuffix(x, true)
			}
			if err != nil {
				return nil, err
			}
		case p.curIs(token.COLLATE):
			p.nextToken()
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			x = &ast.Collate{X: x, Name: name}
		default:
			return x, nil
		}
	}
}

func (p *Parser) isTextPredicate(t token.Type) bool {
	return t == token.LIKE || t == token.GLOB || t == token.REGEXP || t == token.MATCH
}

func (p *Parser) peekIsPredicateStart() bool {
	return p.peekToken.Type == token.IN || p.peekToken.Type == token.BETWEEN || p.isTextPredicate(p.peekToken.Type)
}

func (p *Parser) parseInSuffix(x ast.Expr, neg bool) (ast.Expr, error) {
	p.nextToken() // consume IN
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	list, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.In{X: x, List: list, Negate: neg}, nil
}

func (p *Parser) parseTextPredicateSuffix(x ast.Expr, neg bool) (ast.Expr, error) {
	op := p.curToken.Type.String()
	p.nextToken()
	rhs, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &ast.Binary{Op: op, L: x, R: rhs, Negate: neg}, nil
}

func (p *Parser) parseBetweenSuffix(x ast.Expr, neg bool) (ast.Expr, error) {
	p.nextToken() // consume BETWEEN
	low, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.AND); err != nil {
		return nil, err
	}
	high, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &ast.Between{X: x, Low: low, High: high, Negate: neg}, nil
}

var comparisonOps = map[token.Type]string{
	token.ASSIGN: "=", token.NEQ: "!=", token.LT: "<",
	token.GT: ">", token.LTE: "<=", token.GTE: ">=",
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if op, ok := comparisonOps[p.curToken.Type]; ok {
		p.nextToken()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Op: op, L: left, R: right}, nil
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.PLUS) || p.curIs(token.MINUS) {
		op := "+"
		if p.curIs(token.MINUS) {
			op = "-"
		}
		p.nextToken()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.ASTERISK) || p.curIs(token.SLASH) {
		op := "*"
		if p.curIs(token.SLASH) {
			op = "/"
		}
		p.nextToken()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.curToken.Type {
	case token.PLUS:
		p.nextToken()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: "+", X: x}, nil
	case token.MINUS:
		p.nextToken()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: "-", X: x}, nil
	case token.NOT:
		p.nextToken()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: "NOT", X: x}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch p.curToken.Type {
	case token.CAST:
		return p.parseCast()
	case token.CASE:
		return p.parseCaseExpr()
	case token.LPAREN:
		p.nextToken()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.Group{X: x}, nil
	case token.STRING:
		v := literalFromString(p.curToken.Literal)
		p.nextToken()
		return &ast.Literal{Value: v}, nil
	case token.NUMBER:
		v, err := literalFromNumber(p.curToken.Literal)
		if err != nil {
			return nil, err
		}
		p.nextToken()
		return &ast.Literal{Value: v}, nil
	case token.NULL:
		p.nextToken()
		return &ast.Literal{Value: ast.Null()}, nil
	case token.PARAM:
		p.nextToken()
		return &ast.Literal{Value: ast.Null()}, nil
	case token.ASTERISK:
		p.nextToken()
		return &ast.Star{}, nil
	case token.IDENT:
		name := p.curToken.Literal
		if p.peekIs(token.LPAREN) {
			return p.parseFunctionCall(name)
		}
		p.nextToken()
		if p.curIs(token.DOT) {
			p.nextToken()
			if p.curIs(token.ASTERISK) {
				p.nextToken()
				return &ast.Star{}, nil
			}
			col, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			return &ast.ColumnRef{Table: name, Column: col}, nil
		}
		return &ast.ColumnRef{Column: name}, nil
	default:
		return nil, p.unexpected("an expression")
	}
}

func (p *Parser) parseFunctionCall(name string) (ast.Expr, error) {
	p.nextToken() // consume function name
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expr
	if p.curIs(token.ASTERISK) {
		p.nextToken()
		args = append(args, &ast.Star{})
	} else if !p.curIs(token.RPAREN) {
		// DISTINCT inside an aggregate argument list is accepted and
		// ignored at the parse layer; the store treats every aggregate
		// as operating over all matching rows (spec's non-goal list
		// excludes DISTINCT aggregate semantics from the core grammar).
		if p.curIs(token.DISTINCT) {
			p.nextToken()
		}
		list, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		args = list
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if !token.IsFunctionName(name) {
		return nil, parseerr.New(parseerr.UnknownFunctioName, "unknown function name %q", name)
	}
	return &ast.FuncCall{Name: strings.ToUpper(name), Args: args}, nil
}

func (p *Parser) parseExprList() ([]ast.Expr, error) {
	var out []ast.Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return out, nil
}

func (p *Parser) parseCast() (ast.Expr, error) {
	p.nextToken() // consume CAST
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.AS); err != nil {
		return nil, err
	}
	typ, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.Cast{X: x, Type: typ}, nil
}

func (p *Parser) parseTypeName() (ast.ColumnType, error) {
	name, err := p.expect(token.IDENT)
	if err != nil {
		return "", err
	}
	if p.curIs(token.LPAREN) {
		// Skip a length/precision specifier, e.g. VARCHAR(255).
		p.nextToken()
		for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
			p.nextToken()
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return "", err
		}
	}
	return normalizeColumnType(name), nil
}

func normalizeColumnType(name string) ast.ColumnType {
	switch strings.ToUpper(name) {
	case "INT", "INTEGER":
		return ast.ColInteger
	case "REAL", "FLOAT", "DOUBLE", "NUMERIC", "DECIMAL":
		return ast.ColReal
	case "TEXT", "VARCHAR", "CHAR", "CHARACTER", "STRING":
		return ast.ColText
	case "BLOB":
		return ast.ColBlob
	case "DATE", "DATETIME", "TIMESTAMP":
		return ast.ColDate
	case "BOOL", "BOOLEAN":
		return ast.ColBool
	case "COLOR":
		return ast.ColColor
	case "NULL":
		return ast.ColNull
	default:
		return ast.ColNone
	}
}

func (p *Parser) parseCaseExpr() (ast.Expr, error) {
	p.nextToken() // consume CASE
	c := &ast.Case{}
	if !p.curIs(token.WHEN) {
		compare, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Compare = compare
	}
	for p.curIs(token.WHEN) {
		p.nextToken()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.THEN); err != nil {
			return nil, err
		}
		then, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Whens = append(c.Whens, &ast.When{Cond: cond, Then: then})
	}
	if len(c.Whens) == 0 {
		return nil, parseerr.New(parseerr.MalformedCommand, "CASE requires at least one WHEN clause")
	}
	if _, err := p.expect(token.ELSE); err != nil {
		return nil, parseerr.New(parseerr.MalformedCommand, "CASE requires a mandatory ELSE clause")
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	c.Else = els
	if _, err := p.expect(token.END); err != nil {
		return nil, err
	}
	return c, nil
}

func literalFromString(lit string) ast.Value {
	if lit == lexer.EmptyString {
		return ast.Text("")
	}
	return ast.Text(lit[1 : len(lit)-1])
}

func literalFromNumber(lit string) (ast.Value, error) {
	if strings.Contains(lit, ".") {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return ast.Value{}, parseerr.New(parseerr.ExpectedIntValue, "malformed number %q", lit)
		}
		return ast.Real(f), nil
	}
	i, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return ast.Value{}, parseerr.New(parseerr.ExpectedIntValue, "malformed integer %q", lit)
	}
	return ast.Int(i), nil
}
