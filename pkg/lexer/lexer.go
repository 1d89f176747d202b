// Package lexer implements the tokenizer. Tokens are produced on demand by
// Lexer.NextToken.
package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/hackhud/simplesyntax/pkg/ast"
	"github.com/hackhud/simplesyntax/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Operators and punctuation
	TokPlus   TokenType = iota // +
	TokMinus                   // -
	TokStar                    // *
	TokSlash                   // /
	TokLParen                  // (
	TokRParen                  // )
	TokLBrace                  // {
	TokRBrace                  // }
	TokSemi                    // ;
	TokComma                   // ,
	TokLt                      // <
	TokGt                      // >
	TokLtEq                    // <=
	TokGtEq                    // >=
	TokEqEq                    // ==
	TokBangEq                  // !=
	TokAssign                  // =

	// Literals and identifiers
	TokNumber
	TokIdent

	// Keywords
	TokInt
	TokIf
	TokElse
	TokWhile
	TokPrint
	TokAnd
	TokOr

	// Special
	TokEOF
)

var tokenNames = [...]string{
	TokPlus:   "'+'",
	TokMinus:  "'-'",
	TokStar:   "'*'",
	TokSlash:  "'/'",
	TokLParen: "'('",
	TokRParen: "')'",
	TokLBrace: "'{'",
	TokRBrace: "'}'",
	TokSemi:   "';'",
	TokComma:  "','",
	TokLt:     "'<'",
	TokGt:     "'>'",
	TokLtEq:   "'<='",
	TokGtEq:   "'>='",
	TokEqEq:   "'=='",
	TokBangEq: "'!='",
	TokAssign: "'='",
	TokNumber: "number",
	TokIdent:  "identifier",
	TokInt:    "'int'",
	TokIf:     "'if'",
	TokElse:   "'else'",
	TokWhile:  "'while'",
	TokPrint:  "'print'",
	TokAnd:    "'and'",
	TokOr:     "'or'",
	TokEOF:    "end of file",
}

// String returns the name used for the token type in error messages.
func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// IsKeyword reports whether t is a reserved word.
func (t TokenType) IsKeyword() bool {
	return t >= TokInt && t <= TokOr
}

// Token represents a single lexer token.
type Token struct {
	Type TokenType
	Text string
	Pos  ast.Pos
}

func (t Token) String() string {
	switch t.Type {
	case TokEOF:
		return "end of file"
	case TokNumber, TokIdent:
		return fmt.Sprintf("%s '%s'", t.Type, t.Text)
	default:
		return t.Type.String()
	}
}

var keywords = map[string]TokenType{
	"int":   TokInt,
	"if":    TokIf,
	"else":  TokElse,
	"while": TokWhile,
	"print": TokPrint,
	"and":   TokAnd,
	"or":    TokOr,
}

// LexError wraps a diagnostic for lex errors.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %s: %s", e.Diag.Pos, e.Diag.Message)
}

// Diagnostic implements diagnostics.Diagnoser.
func (e *LexError) Diagnostic() diagnostics.Diagnostic {
	return e.Diag
}

// Lexer produces tokens from source text one at a time. Once the end of
// input is reached every further call returns an EOF token at the same
// position.
type Lexer struct {
	source   string
	filename string
	pos      int
	line     int
	col      int
}

// New creates a lexer over source. filename is only used in positions.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.source)
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekAt(offset int) byte {
	p := l.pos + offset
	if p >= len(l.source) {
		return 0
	}
	return l.source[p]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) position() ast.Pos {
	return ast.Pos{File: l.filename, Offset: l.pos, Line: l.line, Col: l.col}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEnd() {
		ch := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f' || ch == '\v':
			l.advance()
		case ch == '/' && l.peekAt(1) == '/':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func (l *Lexer) lexError(pos ast.Pos, msg string) error {
	return &LexError{Diag: diagnostics.MakeDiag(diagnostics.ELex, msg, &pos, "")}
}

func (l *Lexer) scanNumber(start ast.Pos) Token {
	for !l.atEnd() && isDigit(l.peek()) {
		l.advance()
	}
	return Token{Type: TokNumber, Text: l.source[start.Offset:l.pos], Pos: start}
}

func (l *Lexer) scanIdentOrKeyword(start ast.Pos) Token {
	for !l.atEnd() {
		r, _ := utf8.DecodeRuneInString(l.source[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.advance()
	}
	text := l.source[start.Offset:l.pos]
	if typ, ok := keywords[text]; ok {
		return Token{Type: typ, Text: text, Pos: start}
	}
	return Token{Type: TokIdent, Text: text, Pos: start}
}

// NextToken returns the next token in the input.
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespaceAndComments()

	start := l.position()
	if l.atEnd() {
		return Token{Type: TokEOF, Text: "", Pos: start}, nil
	}

	single := func(typ TokenType) (Token, error) {
		l.advance()
		return Token{Type: typ, Text: l.source[start.Offset:l.pos], Pos: start}, nil
	}
	// withEq returns eqTyp when the current character is followed by '='.
	withEq := func(typ, eqTyp TokenType) (Token, error) {
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return Token{Type: eqTyp, Text: l.source[start.Offset:l.pos], Pos: start}, nil
		}
		return Token{Type: typ, Text: l.source[start.Offset:l.pos], Pos: start}, nil
	}

	ch := l.peek()
	switch ch {
	case '+':
		return single(TokPlus)
	case '-':
		return single(TokMinus)
	case '*':
		return single(TokStar)
	case '/':
		return single(TokSlash)
	case '(':
		return single(TokLParen)
	case ')':
		return single(TokRParen)
	case '{':
		return single(TokLBrace)
	case '}':
		return single(TokRBrace)
	case ';':
		return single(TokSemi)
	case ',':
		return single(TokComma)
	case '<':
		return withEq(TokLt, TokLtEq)
	case '>':
		return withEq(TokGt, TokGtEq)
	case '=':
		return withEq(TokAssign, TokEqEq)
	case '!':
		if l.peekAt(1) == '=' {
			l.advance()
			l.advance()
			return Token{Type: TokBangEq, Text: "!=", Pos: start}, nil
		}
		return Token{}, l.lexError(start, "unexpected character '!'")
	}

	if isDigit(ch) {
		return l.scanNumber(start), nil
	}

	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	if r == utf8.RuneError && size == 1 {
		return Token{}, l.lexError(start, "invalid UTF-8 byte in source")
	}
	if isIdentStart(r) {
		return l.scanIdentOrKeyword(start), nil
	}

	return Token{}, l.lexError(start, fmt.Sprintf("unexpected character %q", r))
}

// Tokenize breaks source code into a slice of tokens ending with EOF.
func Tokenize(source, filename string) ([]Token, error) {
	l := New(source, filename)
	var tokens []Token

	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens, nil
}
