// Package parser implements the recursive-descent parser. It pulls tokens
// one at a time from a TokenSource and builds an *ast.Block for the whole
// program.
package parser

import (
	"fmt"
	"strconv"

	"github.com/hackhud/simplesyntax/pkg/ast"
	"github.com/hackhud/simplesyntax/pkg/diagnostics"
	"github.com/hackhud/simplesyntax/pkg/lexer"
)

// TokenSource supplies tokens on demand. After the end of input it must keep
// returning EOF.
type TokenSource interface {
	NextToken() (lexer.Token, error)
}

// ParseError wraps a diagnostic for parse errors. Token is the offending
// token.
type ParseError struct {
	Diag  diagnostics.Diagnostic
	Token lexer.Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s (offset %d): %s", e.Token.Pos, e.Token.Pos.Offset, e.Diag.Message)
}

// Diagnostic implements diagnostics.Diagnoser.
func (e *ParseError) Diagnostic() diagnostics.Diagnostic {
	return e.Diag
}

// Parser holds a single token of lookahead.
type Parser struct {
	src    TokenSource
	cur    lexer.Token
	primed bool
}

// New creates a parser reading from src.
func New(src TokenSource) *Parser {
	return &Parser{src: src}
}

// Parse tokenizes source lazily and parses it into a program block.
func Parse(source, filename string) (*ast.Block, error) {
	return New(lexer.New(source, filename)).ParseProgram()
}

// ParseProgram parses declarations until EOF. Parsing stops at the first
// error; lexer errors are returned unchanged.
func (p *Parser) ParseProgram() (*ast.Block, error) {
	if !p.primed {
		if err := p.advance(); err != nil {
			return nil, err
		}
		p.primed = true
	}

	block := &ast.Block{Pos: p.cur.Pos}
	for p.cur.Type != lexer.TokEOF {
		stmt, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	return block, nil
}

func (p *Parser) advance() error {
	tok, err := p.src.NextToken()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) check(typ lexer.TokenType) bool {
	return p.cur.Type == typ
}

// expect consumes the current token if it has type typ and returns it.
// context completes the message, as in "expected ';' after declaration".
func (p *Parser) expect(typ lexer.TokenType, context string) (lexer.Token, error) {
	tok := p.cur
	if tok.Type != typ {
		msg := fmt.Sprintf("expected %s", typ)
		if context != "" {
			msg += " " + context
		}
		return tok, p.errorAt(tok, fmt.Sprintf("%s, got %s", msg, tok), "")
	}
	if err := p.advance(); err != nil {
		return tok, err
	}
	return tok, nil
}

func (p *Parser) errorAt(tok lexer.Token, msg, hint string) error {
	pos := tok.Pos
	return &ParseError{
		Diag:  diagnostics.MakeDiag(diagnostics.EParse, msg, &pos, hint),
		Token: tok,
	}
}

// --- Statements ---

func (p *Parser) parseDeclaration() (ast.Stmt, error) {
	if !p.check(lexer.TokInt) {
		return p.parseStatement()
	}
	start := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.TokIdent, "after 'int'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokSemi, "after declaration"); err != nil {
		return nil, err
	}
	return &ast.VarDecl{Pos: start.Pos, Name: name.Text}, nil
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	switch p.cur.Type {
	case lexer.TokLBrace:
		return p.parseBlock()
	case lexer.TokIf:
		return p.parseIf()
	case lexer.TokWhile:
		return p.parseWhile()
	case lexer.TokPrint:
		return p.parsePrint()
	default:
		return p.parseExprOrAssign()
	}
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	start, err := p.expect(lexer.TokLBrace, "")
	if err != nil {
		return nil, err
	}
	block := &ast.Block{Pos: start.Pos}
	for !p.check(lexer.TokRBrace) && !p.check(lexer.TokEOF) {
		stmt, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	if _, err := p.expect(lexer.TokRBrace, "to close block"); err != nil {
		return nil, err
	}
	return block, nil
}

// parseCondition parses "(" expression ")" after if/while.
func (p *Parser) parseCondition(keyword string) (ast.Expr, error) {
	if _, err := p.expect(lexer.TokLParen, "after '"+keyword+"'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokRParen, "after condition"); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	start := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition("if")
	if err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Pos: start.Pos, Cond: cond, Then: then}
	if p.check(lexer.TokElse) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if stmt.Else, err = p.parseStatement(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	start := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition("while")
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Pos: start.Pos, Cond: cond, Body: body}, nil
}

func (p *Parser) parsePrint() (ast.Stmt, error) {
	start := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokLParen, "after 'print'"); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokRParen, "after print argument"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokSemi, "after print statement"); err != nil {
		return nil, err
	}
	return &ast.PrintStmt{Pos: start.Pos, Value: value}, nil
}

// parseExprOrAssign parses a full expression first. Only a bare variable
// reference followed by '=' becomes an assignment; any other target falls
// through to the ';' check and fails there.
func (p *Parser) parseExprOrAssign() (ast.Stmt, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if ref, ok := expr.(*ast.VarRef); ok && p.check(lexer.TokAssign) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokSemi, "after assignment"); err != nil {
			return nil, err
		}
		return &ast.AssignStmt{Pos: ref.Pos, Name: ref.Name, Value: value}, nil
	}

	if p.check(lexer.TokAssign) {
		_, err := p.expect(lexer.TokSemi, "after expression")
		return nil, withHint(err, "only a variable name can be assigned to")
	}
	if _, err := p.expect(lexer.TokSemi, "after expression"); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Pos: expr.NodePos(), Expr: expr}, nil
}

func withHint(err error, hint string) error {
	if pe, ok := err.(*ParseError); ok {
		pe.Diag.Hint = hint
	}
	return err
}

// --- Expressions ---

var binaryOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.TokOr:     ast.OpOr,
	lexer.TokAnd:    ast.OpAnd,
	lexer.TokEqEq:   ast.OpEqEq,
	lexer.TokBangEq: ast.OpNeq,
	lexer.TokLt:     ast.OpLt,
	lexer.TokGt:     ast.OpGt,
	lexer.TokLtEq:   ast.OpLtEq,
	lexer.TokGtEq:   ast.OpGtEq,
	lexer.TokPlus:   ast.OpAdd,
	lexer.TokMinus:  ast.OpSub,
	lexer.TokStar:   ast.OpMul,
	lexer.TokSlash:  ast.OpDiv,
}

func (p *Parser) parseExpression() (ast.Expr, error) {
	return p.parseOr()
}

// leftAssoc parses operand (op operand)* and folds the result to the left.
func (p *Parser) leftAssoc(operand func() (ast.Expr, error), ops ...lexer.TokenType) (ast.Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for _, typ := range ops {
			if p.check(typ) {
				matched = true
				break
			}
		}
		if !matched {
			return left, nil
		}
		opTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{
			Pos:   left.NodePos(),
			OpPos: opTok.Pos,
			Op:    binaryOps[opTok.Type],
			Left:  left,
			Right: right,
		}
	}
}

func (p *Parser) parseOr() (ast.Expr, error) {
	return p.leftAssoc(p.parseAnd, lexer.TokOr)
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	return p.leftAssoc(p.parseEquality, lexer.TokAnd)
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	return p.leftAssoc(p.parseComparison, lexer.TokEqEq, lexer.TokBangEq)
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	return p.leftAssoc(p.parseTerm, lexer.TokLt, lexer.TokGt, lexer.TokLtEq, lexer.TokGtEq)
}

func (p *Parser) parseTerm() (ast.Expr, error) {
	return p.leftAssoc(p.parseFactor, lexer.TokPlus, lexer.TokMinus)
}

func (p *Parser) parseFactor() (ast.Expr, error) {
	return p.leftAssoc(p.parseUnary, lexer.TokStar, lexer.TokSlash)
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if !p.check(lexer.TokMinus) {
		return p.parsePrimary()
	}
	start := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ast.UnaryExpr{Pos: start.Pos, Op: ast.OpNeg, Operand: operand}, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur
	switch tok.Type {
	case lexer.TokNumber:
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, p.errorAt(tok, fmt.Sprintf("integer literal %s out of range", tok.Text), "integers are 64-bit signed")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.IntLiteral{Pos: tok.Pos, Value: n}, nil

	case lexer.TokIdent:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.VarRef{Pos: tok.Pos, Name: tok.Text}, nil

	case lexer.TokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokRParen, "after expression"); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, p.errorAt(tok, fmt.Sprintf("expected expression, got %s", tok), "")
	}
}
