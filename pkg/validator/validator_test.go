package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackhud/simplesyntax/pkg/diagnostics"
	"github.com/hackhud/simplesyntax/pkg/parser"
	"github.com/hackhud/simplesyntax/pkg/validator"
)

// mustValidate fails the test on parse errors so cases focus on the
// validator.
func mustValidate(t *testing.T, source string) []diagnostics.Diagnostic {
	t.Helper()
	prog, err := parser.Parse(source, "test.ssi")
	require.NoError(t, err)
	return validator.Validate(prog)
}

func codes(diags []diagnostics.Diagnostic) []string {
	var out []string
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestCleanPrograms(t *testing.T) {
	programs := []string{
		"",
		"int x; x = 1; print(x);",
		"int x; int y; x = 1; y = 10; while (x < y) { print(x); x = x + 1; } if (x == y) { print(999); } else { print(0); }",
		"int b; b = 1 < 2; if (b) print(1);",
		"int x; print(-x / 2);",
		"print((1 < 2) and (2 > 1));",
	}
	for _, src := range programs {
		assert.Empty(t, mustValidate(t, src), "program %q", src)
	}
}

func TestWarnings(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{"use before declaration", "print(x); int x;", []string{diagnostics.WUndeclared}},
		{"assign before declaration", "x = 1;", []string{diagnostics.WUndeclared}},
		{"redeclaration", "int x; { int x; }", []string{diagnostics.WRedeclared}},
		{"declaration in loop", "int i; while (i < 2) { int j; i = i + 1; }", []string{diagnostics.WDeclInLoop}},
		{"int if condition", "if (1) print(1);", []string{diagnostics.WCondNotBool}},
		{"int while condition", "int x; while (x + 1) x = 0;", []string{diagnostics.WCondNotBool}},
		{"bool arithmetic", "print((1 < 2) + 1);", []string{diagnostics.WBadOperand}},
		{"int logic", "print(1 and (1 < 2));", []string{diagnostics.WBadOperand}},
		{"bool equality", "print((1 < 2) == (2 < 3));", []string{diagnostics.WBadOperand}},
		{"negated bool", "print(-(1 < 2));", []string{diagnostics.WBadOperand}},
		{"constant zero divisor", "print(4 / -0);", []string{diagnostics.WDivZero}},
		{
			"several findings in source order",
			"if (y) print(1 / 0); int y; int y;",
			[]string{diagnostics.WUndeclared, diagnostics.WDivZero, diagnostics.WRedeclared},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codes(mustValidate(t, tt.source)))
		})
	}
}

func TestWarningPositions(t *testing.T) {
	diags := mustValidate(t, "int x;\nint x;\nprint(x / 0);")
	require.Len(t, diags, 2)

	assert.Equal(t, 2, diags[0].Pos.Line)
	assert.Equal(t, 1, diags[0].Pos.Col)
	assert.Equal(t, "variable 'x' is already declared at test.ssi:1:1", diags[0].Message)

	assert.Equal(t, 3, diags[1].Pos.Line)
	assert.Equal(t, 9, diags[1].Pos.Col, "points at the operator")
}

func TestUndeclaredHint(t *testing.T) {
	diags := mustValidate(t, "count = 1;")
	require.Len(t, diags, 1)
	assert.Equal(t, "declare it first with 'int count;'", diags[0].Hint)
	assert.True(t, diagnostics.IsWarning(diags[0].Code))
}
