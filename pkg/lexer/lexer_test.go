package lexer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackhud/simplesyntax/pkg/diagnostics"
)

// helper to tokenize and fail on error
func mustTokenize(t *testing.T, source string) []Token {
	t.Helper()
	tokens, err := Tokenize(source, "test.ssi")
	require.NoError(t, err)
	return tokens
}

// helper that strips the trailing EOF for easier assertions
func mustTokenizeNoEOF(t *testing.T, source string) []Token {
	t.Helper()
	tokens := mustTokenize(t, source)
	require.NotEmpty(t, tokens)
	require.Equal(t, TokEOF, tokens[len(tokens)-1].Type, "last token is not EOF")
	return tokens[:len(tokens)-1]
}

func types(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func TestEmptyInput(t *testing.T) {
	tokens := mustTokenize(t, "")
	require.Len(t, tokens, 1)
	assert.Equal(t, TokEOF, tokens[0].Type)
	assert.Equal(t, 0, tokens[0].Pos.Offset)
}

func TestEOFIsSticky(t *testing.T) {
	l := New("x", "test.ssi")
	tok, err := l.NextToken()
	require.NoError(t, err)
	assert.Equal(t, TokIdent, tok.Type)

	for i := 0; i < 3; i++ {
		tok, err = l.NextToken()
		require.NoError(t, err)
		assert.Equal(t, TokEOF, tok.Type)
		assert.Equal(t, 1, tok.Pos.Offset)
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		keyword  string
		expected TokenType
	}{
		{"int", TokInt},
		{"if", TokIf},
		{"else", TokElse},
		{"while", TokWhile},
		{"print", TokPrint},
		{"and", TokAnd},
		{"or", TokOr},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, tt.keyword)
			require.Len(t, tokens, 1)
			assert.Equal(t, tt.expected, tokens[0].Type)
			assert.Equal(t, tt.keyword, tokens[0].Text)
			assert.True(t, tokens[0].Type.IsKeyword())
		})
	}
}

func TestKeywordVsIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"int", TokInt},
		{"integer", TokIdent},
		{"if", TokIf},
		{"iffy", TokIdent},
		{"print", TokPrint},
		{"printer", TokIdent},
		{"or", TokOr},
		{"order", TokIdent},
		{"android", TokIdent},
		{"whiles", TokIdent},
		{"true", TokIdent},
		{"false", TokIdent},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, tt.input)
			require.Len(t, tokens, 1)
			assert.Equal(t, tt.expected, tokens[0].Type)
		})
	}
}

func TestIdentifiers(t *testing.T) {
	for _, input := range []string{"x", "foo", "myVar", "_private", "name123", "_", "__init__", "a1b2c3", "größe"} {
		t.Run(input, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, input)
			require.Len(t, tokens, 1)
			assert.Equal(t, TokIdent, tokens[0].Type)
			assert.Equal(t, input, tokens[0].Text)
		})
	}
}

func TestNumbers(t *testing.T) {
	for _, input := range []string{"0", "7", "42", "007", "9223372036854775808"} {
		t.Run(input, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, input)
			require.Len(t, tokens, 1)
			assert.Equal(t, TokNumber, tokens[0].Type)
			assert.Equal(t, input, tokens[0].Text)
		})
	}
}

func TestOperatorsAndPunctuation(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "+ - * / ( ) { } ; , < > <= >= == != =")
	assert.Equal(t, []TokenType{
		TokPlus, TokMinus, TokStar, TokSlash, TokLParen, TokRParen, TokLBrace, TokRBrace,
		TokSemi, TokComma, TokLt, TokGt, TokLtEq, TokGtEq, TokEqEq, TokBangEq, TokAssign,
	}, types(tokens))
	for _, tok := range tokens {
		assert.NotEmpty(t, tok.Text)
	}
}

func TestAdjacentOperators(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "x<=-1==y")
	assert.Equal(t, []TokenType{TokIdent, TokLtEq, TokMinus, TokNumber, TokEqEq, TokIdent}, types(tokens))
}

func TestPositions(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "int x;\n  x = 10;")
	require.Len(t, tokens, 7)

	assert.Equal(t, 0, tokens[0].Pos.Offset)
	assert.Equal(t, 4, tokens[1].Pos.Offset)
	assert.Equal(t, 5, tokens[2].Pos.Offset)

	x := tokens[3]
	assert.Equal(t, "x", x.Text)
	assert.Equal(t, 9, x.Pos.Offset)
	assert.Equal(t, 2, x.Pos.Line)
	assert.Equal(t, 3, x.Pos.Col)
	assert.Equal(t, "test.ssi", x.Pos.File)

	ten := tokens[5]
	assert.Equal(t, "10", ten.Text)
	assert.Equal(t, 13, ten.Pos.Offset)
}

func TestComments(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "// header\nint x; // trailing\n// last")
	assert.Equal(t, []TokenType{TokInt, TokIdent, TokSemi}, types(tokens))
}

func TestSlashIsNotComment(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "a / b")
	assert.Equal(t, []TokenType{TokIdent, TokSlash, TokIdent}, types(tokens))
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		offset int
	}{
		{"bang alone", "x = !y;", 4},
		{"at sign", "int @;", 4},
		{"string quote", `print("x");`, 6},
		{"dot", "1.5", 1},
		{"invalid utf8", "x \xff", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input, "test.ssi")
			require.Error(t, err)

			var lexErr *LexError
			require.True(t, errors.As(err, &lexErr), "expected *LexError, got %T", err)
			assert.Equal(t, diagnostics.ELex, lexErr.Diag.Code)
			require.NotNil(t, lexErr.Diag.Pos)
			assert.Equal(t, tt.offset, lexErr.Diag.Pos.Offset)
		})
	}
}

func TestLexErrorIsReportedLazily(t *testing.T) {
	l := New("int x; @", "test.ssi")
	for i := 0; i < 3; i++ {
		_, err := l.NextToken()
		require.NoError(t, err)
	}
	_, err := l.NextToken()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected character '@'")
}

func TestTokenString(t *testing.T) {
	assert.Equal(t, "';'", Token{Type: TokSemi, Text: ";"}.String())
	assert.Equal(t, "identifier 'x'", Token{Type: TokIdent, Text: "x"}.String())
	assert.Equal(t, "end of file", Token{Type: TokEOF}.String())
	assert.Equal(t, "token(99)", TokenType(99).String())
}
