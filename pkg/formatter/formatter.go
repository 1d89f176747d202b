// Package formatter prints a program tree back to canonical source.
package formatter

import (
	"math"
	"strconv"
	"strings"

	"github.com/hackhud/simplesyntax/pkg/ast"
)

const indent = "  "

// Precedence table for binary operators (higher = tighter binding).
var precedence = map[ast.BinaryOp]int{
	ast.OpOr: 1, ast.OpAnd: 2,
	ast.OpEqEq: 3, ast.OpNeq: 3,
	ast.OpLt: 4, ast.OpGt: 4, ast.OpLtEq: 4, ast.OpGtEq: 4,
	ast.OpAdd: 5, ast.OpSub: 5,
	ast.OpMul: 6, ast.OpDiv: 6,
}

func needsParens(child ast.Expr, parentOp ast.BinaryOp, isRight bool) bool {
	bin, ok := child.(*ast.BinaryExpr)
	if !ok {
		return false
	}
	childPrec := precedence[bin.Op]
	parentPrec := precedence[parentOp]
	if childPrec < parentPrec {
		return true
	}
	// All levels are left-associative, so an equal-precedence right operand
	// keeps its grouping only with parens.
	return childPrec == parentPrec && isRight
}

// Format pretty-prints a program. Every top-level statement goes on its own
// line; the root block itself gets no braces.
func Format(program *ast.Block) string {
	if len(program.Statements) == 0 {
		return ""
	}
	lines := make([]string, len(program.Statements))
	for i, s := range program.Statements {
		lines[i] = formatStmt(s, 0)
	}
	return strings.Join(lines, "\n") + "\n"
}

// HasComments reports whether source contains a // comment. The formatter
// works on the tree, so comments do not survive formatting.
func HasComments(source string) bool {
	return strings.Contains(source, "//")
}

// formatStmt renders s indented to depth.
func formatStmt(s ast.Stmt, depth int) string {
	return strings.Repeat(indent, depth) + formatInline(s, depth)
}

// formatInline renders s without leading indentation. Nested lines are
// indented relative to depth.
func formatInline(s ast.Stmt, depth int) string {
	switch st := s.(type) {
	case *ast.Block:
		return formatBlock(st, depth)
	case *ast.VarDecl:
		return "int " + st.Name + ";"
	case *ast.AssignStmt:
		return st.Name + " = " + formatExpr(st.Value) + ";"
	case *ast.IfStmt:
		then := st.Then
		if st.Else != nil && endsWithOpenIf(then) {
			// Without braces the else would bind to the inner if.
			then = &ast.Block{Pos: then.NodePos(), Statements: []ast.Stmt{then}}
		}
		out := "if (" + formatExpr(st.Cond) + ") " + formatInline(then, depth)
		if st.Else != nil {
			out += " else " + formatInline(st.Else, depth)
		}
		return out
	case *ast.WhileStmt:
		return "while (" + formatExpr(st.Cond) + ") " + formatInline(st.Body, depth)
	case *ast.PrintStmt:
		return "print(" + formatExpr(st.Value) + ");"
	case *ast.ExprStmt:
		return formatExpr(st.Expr) + ";"
	}
	return ""
}

func formatBlock(b *ast.Block, depth int) string {
	if len(b.Statements) == 0 {
		return "{}"
	}
	lines := make([]string, 0, len(b.Statements)+2)
	lines = append(lines, "{")
	for _, s := range b.Statements {
		lines = append(lines, formatStmt(s, depth+1))
	}
	lines = append(lines, strings.Repeat(indent, depth)+"}")
	return strings.Join(lines, "\n")
}

// endsWithOpenIf reports whether s, printed without braces, ends in an if
// that has no else.
func endsWithOpenIf(s ast.Stmt) bool {
	switch st := s.(type) {
	case *ast.IfStmt:
		if st.Else == nil {
			return true
		}
		return endsWithOpenIf(st.Else)
	case *ast.WhileStmt:
		return endsWithOpenIf(st.Body)
	}
	return false
}

func formatExpr(e ast.Expr) string {
	switch ex := e.(type) {
	case *ast.IntLiteral:
		return formatInt(ex.Value)

	case *ast.BoolLiteral:
		// There is no boolean literal syntax.
		if ex.Value {
			return "(0 == 0)"
		}
		return "(0 != 0)"

	case *ast.VarRef:
		return ex.Name

	case *ast.UnaryExpr:
		operand := formatExpr(ex.Operand)
		switch ex.Operand.(type) {
		case *ast.BinaryExpr, *ast.UnaryExpr:
			operand = "(" + operand + ")"
		}
		return string(ex.Op) + wrapNegative(ex.Operand, operand)

	case *ast.BinaryExpr:
		left := wrapNegative(ex.Left, formatExpr(ex.Left))
		if needsParens(ex.Left, ex.Op, false) {
			left = "(" + left + ")"
		}
		right := wrapNegative(ex.Right, formatExpr(ex.Right))
		if needsParens(ex.Right, ex.Op, true) {
			right = "(" + right + ")"
		}
		return left + " " + string(ex.Op) + " " + right
	}
	return ""
}

// formatInt renders an integer literal. The parser only produces
// non-negative literals; negative ones come from trees built directly and
// are written as an expression that evaluates to the same value.
func formatInt(v int64) string {
	if v == math.MinInt64 {
		return "(-9223372036854775807 - 1)"
	}
	return strconv.FormatInt(v, 10)
}

// wrapNegative parenthesises a negative literal used as an operand.
func wrapNegative(e ast.Expr, text string) string {
	if lit, ok := e.(*ast.IntLiteral); ok && lit.Value < 0 && lit.Value != math.MinInt64 {
		return "(" + text + ")"
	}
	return text
}
