package lexer

import (
	"testing"
)

// FuzzTokenize feeds random inputs to the lexer to catch panics.
// Invalid input must come back as an error, and the token stream must
// always end with EOF.
func FuzzTokenize(f *testing.F) {
	seeds := []string{
		// Keywords
		`int if else while print and or`,
		// Literals
		`42 0 007 9223372036854775808`,
		// Operators
		`+ - * / < > >= <= == != =`,
		// Delimiters
		`{ } ( ) ; ,`,
		// Identifiers
		`x foo bar_baz myVar _`,
		// Comments
		`// this is a comment`,
		"int x; // trailing\nprint x;",
		// Edge cases
		``,
		`   `,
		"\t\n\r",
		`!`,
		`!!=`,
		`@#$^&`,
		"\xff\xfe",
		`//`,
		`/ /`,
		`größe = 1;`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		tokens, err := Tokenize(input, "fuzz.ssi")
		if err != nil {
			if _, ok := err.(*LexError); !ok {
				t.Fatalf("Tokenize(%q) returned %T, want *LexError", input, err)
			}
			return
		}
		if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokEOF {
			t.Fatalf("Tokenize(%q) did not end with EOF", input)
		}
		for i := 1; i < len(tokens); i++ {
			if tokens[i].Pos.Offset < tokens[i-1].Pos.Offset {
				t.Fatalf("Tokenize(%q): offsets went backwards at token %d", input, i)
			}
		}
	})
}
