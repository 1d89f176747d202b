package formatter_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackhud/simplesyntax/pkg/ast"
	"github.com/hackhud/simplesyntax/pkg/evaluator"
	"github.com/hackhud/simplesyntax/pkg/formatter"
	"github.com/hackhud/simplesyntax/pkg/parser"
)

func mustFormat(t *testing.T, source string) string {
	t.Helper()
	prog, err := parser.Parse(source, "test.ssi")
	require.NoError(t, err)
	return formatter.Format(prog)
}

func TestFormatStatements(t *testing.T) {
	got := mustFormat(t, `int   x;x=1;
while(x<3){print( x );x=x+1;}
if (x==3) print(1); else {print(0);}
{}
x;`)
	want := `int x;
x = 1;
while (x < 3) {
  print(x);
  x = x + 1;
}
if (x == 3) print(1); else {
  print(0);
}
{}
x;
`
	assert.Equal(t, want, got)
}

func TestFormatNestedIndentation(t *testing.T) {
	got := mustFormat(t, "while (a) { if (b) { print(1); } else { { print(2); } } }")
	want := `while (a) {
  if (b) {
    print(1);
  } else {
    {
      print(2);
    }
  }
}
`
	assert.Equal(t, want, got)
}

func TestFormatEmptyProgram(t *testing.T) {
	assert.Equal(t, "", mustFormat(t, "// nothing here\n"))
}

func TestFormatParentheses(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"print((1 + 2) * 3);", "print((1 + 2) * 3);\n"},
		{"print(1 + (2 * 3));", "print(1 + 2 * 3);\n"},
		{"print((a - b) - c);", "print(a - b - c);\n"},
		{"print(a - (b - c));", "print(a - (b - c));\n"},
		{"print(a / (b * c));", "print(a / (b * c));\n"},
		{"print((a or b) and c);", "print((a or b) and c);\n"},
		{"print(a or (b and c));", "print(a or b and c);\n"},
		{"print(-(-5));", "print(-(-5));\n"},
		{"print(-(a + b));", "print(-(a + b));\n"},
		{"print(-a * b);", "print(-a * b);\n"},
		{"print(((x)));", "print(x);\n"},
		{"(x) = 1;", "x = 1;\n"},
		{"print((a < b) == (c < d));", "print(a < b == c < d);\n"},
		{"print(a == (b == c));", "print(a == (b == c));\n"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, mustFormat(t, tt.input))
		})
	}
}

func TestFormatDanglingElse(t *testing.T) {
	// The outer if owns the else, so the inner if must be braced.
	prog := &ast.Block{Statements: []ast.Stmt{
		&ast.IfStmt{
			Cond: &ast.VarRef{Name: "a"},
			Then: &ast.IfStmt{
				Cond: &ast.VarRef{Name: "b"},
				Then: &ast.PrintStmt{Value: &ast.IntLiteral{Value: 1}},
			},
			Else: &ast.PrintStmt{Value: &ast.IntLiteral{Value: 2}},
		},
	}}
	out := formatter.Format(prog)
	assert.Equal(t, "if (a) {\n  if (b) print(1);\n} else print(2);\n", out)

	reparsed, err := parser.Parse(out, "test.ssi")
	require.NoError(t, err)
	outer := reparsed.Statements[0].(*ast.IfStmt)
	assert.NotNil(t, outer.Else)
}

func TestFormatBuiltTrees(t *testing.T) {
	prog := &ast.Block{Statements: []ast.Stmt{
		&ast.PrintStmt{Value: &ast.BoolLiteral{Value: true}},
		&ast.PrintStmt{Value: &ast.BoolLiteral{Value: false}},
		&ast.PrintStmt{Value: &ast.BinaryExpr{
			Op:    ast.OpSub,
			Left:  &ast.IntLiteral{Value: 1},
			Right: &ast.IntLiteral{Value: -2},
		}},
		&ast.PrintStmt{Value: &ast.IntLiteral{Value: math.MinInt64}},
	}}
	out := formatter.Format(prog)
	assert.Equal(t, "print((0 == 0));\nprint((0 != 0));\nprint(1 - (-2));\nprint((-9223372036854775807 - 1));\n", out)

	// The printed program evaluates to the same values.
	reparsed, err := parser.Parse(out, "test.ssi")
	require.NoError(t, err)
	res, err := evaluator.Execute(reparsed, evaluator.ExecOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"true", "false", "3", "-9223372036854775808"}, res.Output)
}

func TestFormatRoundTrip(t *testing.T) {
	programs := []string{
		`int x; x = 1; int y; y = 10; while (x < y) { print(x); x = x + 1; } if (x == y) { print(999); } else { print(0); }`,
		`int a; a = -(3 - -4) * (2 + 1) / 5; print(a);`,
		`if (1 < 2 and (2 < 3 or 3 < 4)) if (0 == 0) print(1); else while (0 != 0) {}`,
		`{ { int deep; } } print(deep);`,
	}
	for _, src := range programs {
		t.Run(src, func(t *testing.T) {
			first := mustFormat(t, src)
			second := mustFormat(t, first)
			assert.Equal(t, first, second, "formatting is not stable")

			orig, err := parser.Parse(src, "a.ssi")
			require.NoError(t, err)
			again, err := parser.Parse(first, "b.ssi")
			require.NoError(t, err)
			if diff := cmp.Diff(orig, again, cmpopts.IgnoreTypes(ast.Pos{})); diff != "" {
				t.Errorf("tree changed by formatting (-orig +formatted):\n%s", diff)
			}
		})
	}
}

func TestHasComments(t *testing.T) {
	assert.True(t, formatter.HasComments("int x; // note"))
	assert.True(t, formatter.HasComments("// header\nint x;"))
	assert.False(t, formatter.HasComments("print(4 / 2);"))
}
