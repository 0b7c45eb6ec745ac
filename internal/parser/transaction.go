package parser

import (
	"github.com/Chahine-tech/rowstore/internal/ast"
	"github.com/Chahine-tech/rowstore/internal/token"
)

// parseBegin parses BEGIN [DEFERRED|IMMEDIATE|EXCLUSIVE] [TRANSACTION]
// (spec §4.3/§4.9). Nested BEGINs are a store-level concern (coalesced
// to the outermost transaction); the parser just records the mode.
func (p *Parser) parseBegin() (*ast.TransactionStmt, error) {
	p.nextToken() // consume BEGIN
	stmt := &ast.TransactionStmt{Kind: ast.TxnBegin}
	switch p.curToken.Type {
	case token.DEFERRED:
		stmt.Mode = "DEFERRED"
		p.nextToken()
	case token.IMMEDIATE:
		stmt.Mode = "IMMEDIATE"
		p.nextToken()
	case token.EXCLUSIVE:
		stmt.Mode = "EXCLUSIVE"
		p.nextToken()
	}
	if p.curIs(token.TRANSACTION) {
		p.nextToken()
	}
	return stmt, nil
}

// parseCommit parses COMMIT|END [TRANSACTION] (spec §4.3/§4.9).
func (p *Parser) parseCommit() (*ast.TransactionStmt, error) {
	p.nextToken() // consume COMMIT or END
	if p.curIs(token.TRANSACTION) {
		p.nextToken()
	}
	return &ast.TransactionStmt{Kind: ast.TxnCommit}, nil
}

// parseRollback parses ROLLBACK [TRANSACTION] [TO [SAVEPOINT] name]
// (spec §4.3/§4.9).
func (p *Parser) parseRollback() (*ast.TransactionStmt, error) {
	p.nextToken() // consume ROLLBACK
	if p.curIs(token.TRANSACTION) {
		p.nextToken()
	}
	stmt := &ast.TransactionStmt{Kind: ast.TxnRollback}
	if p.curIs(token.TO) {
		p.nextToken()
		if p.curIs(token.SAVEPOINT) {
			p.nextToken()
		}
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		stmt.ToSavepoint = name
	}
	return stmt, nil
}

// parseSavepoint parses SAVEPOINT name (spec §4.3/§4.9; named savepoints
// are rejected at execution since nested transactions are a non-goal).
func (p *Parser) parseSavepoint() (*ast.TransactionStmt, error) {
	p.nextToken() // consume SAVEPOINT
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	return &ast.TransactionStmt{Kind: ast.TxnSavepoint, Name: name}, nil
}

// parseReleaseSavepoint parses RELEASE [SAVEPOINT] name (spec §4.3/§4.9).
func (p *Parser) parseReleaseSavepoint() (*ast.TransactionStmt, error) {
	p.nextToken() // consume RELEASE
	if p.curIs(token.SAVEPOINT) {
		p.nextToken()
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	return &ast.TransactionStmt{Kind: ast.TxnReleaseSavept, Name: name}, nil
}
