// Package validator finds likely runtime faults without executing a program.
// Its findings are warnings: the checks follow the program text, not the
// execution order, so a program with warnings may still run cleanly.
package validator

import (
	"fmt"

	"github.com/hackhud/simplesyntax/pkg/ast"
	"github.com/hackhud/simplesyntax/pkg/diagnostics"
)

// staticType is the type of an expression when it can be known without
// running the program.
type staticType int

const (
	unknown staticType = iota
	typeInt
	typeBool
)

func (t staticType) String() string {
	switch t {
	case typeInt:
		return "int"
	case typeBool:
		return "bool"
	}
	return "unknown"
}

type validator struct {
	diags     []diagnostics.Diagnostic
	declared  map[string]ast.Pos // first declaration of each name
	loopDepth int
}

// Validate checks program and returns its warnings in source order.
func Validate(program *ast.Block) []diagnostics.Diagnostic {
	v := &validator{declared: make(map[string]ast.Pos)}
	v.validateStmt(program)
	return v.diags
}

func (v *validator) addDiag(code, msg string, pos ast.Pos, hint string) {
	v.diags = append(v.diags, diagnostics.MakeDiag(code, msg, &pos, hint))
}

func (v *validator) validateStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		for _, child := range s.Statements {
			v.validateStmt(child)
		}

	case *ast.VarDecl:
		if first, ok := v.declared[s.Name]; ok {
			v.addDiag(diagnostics.WRedeclared,
				fmt.Sprintf("variable '%s' is already declared at %s", s.Name, first),
				s.Pos, "")
		} else {
			v.declared[s.Name] = s.Pos
		}
		if v.loopDepth > 0 {
			v.addDiag(diagnostics.WDeclInLoop,
				fmt.Sprintf("declaration of '%s' in a loop body fails on the second iteration", s.Name),
				s.Pos, "move the declaration before the loop")
		}

	case *ast.AssignStmt:
		v.checkDeclared(s.Name, s.Pos)
		v.typeOf(s.Value)

	case *ast.IfStmt:
		v.checkCondition("if", s.Cond)
		v.validateStmt(s.Then)
		if s.Else != nil {
			v.validateStmt(s.Else)
		}

	case *ast.WhileStmt:
		v.checkCondition("while", s.Cond)
		v.loopDepth++
		v.validateStmt(s.Body)
		v.loopDepth--

	case *ast.PrintStmt:
		v.typeOf(s.Value)

	case *ast.ExprStmt:
		v.typeOf(s.Expr)
	}
}

func (v *validator) checkDeclared(name string, pos ast.Pos) {
	if _, ok := v.declared[name]; !ok {
		v.addDiag(diagnostics.WUndeclared,
			fmt.Sprintf("variable '%s' is used before any declaration", name),
			pos, fmt.Sprintf("declare it first with 'int %s;'", name))
	}
}

func (v *validator) checkCondition(keyword string, cond ast.Expr) {
	if t := v.typeOf(cond); t == typeInt {
		v.addDiag(diagnostics.WCondNotBool,
			fmt.Sprintf("%s condition is an int expression", keyword),
			cond.NodePos(), "compare the value explicitly, for example x != 0")
	}
}

// typeOf validates expr and returns its static type. Variables may change
// type at run time, so references are unknown.
func (v *validator) typeOf(expr ast.Expr) staticType {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return typeInt
	case *ast.BoolLiteral:
		return typeBool
	case *ast.VarRef:
		v.checkDeclared(e.Name, e.Pos)
		return unknown
	case *ast.UnaryExpr:
		t := v.typeOf(e.Operand)
		if t == typeBool {
			v.badOperand(string(e.Op), e.Pos, t)
		}
		return typeInt
	case *ast.BinaryExpr:
		return v.binaryType(e)
	}
	return unknown
}

func (v *validator) binaryType(e *ast.BinaryExpr) staticType {
	left := v.typeOf(e.Left)
	right := v.typeOf(e.Right)

	switch e.Op {
	case ast.OpAnd, ast.OpOr:
		v.requireOperands(e, typeBool, left, right)
		return typeBool
	case ast.OpLt, ast.OpGt, ast.OpLtEq, ast.OpGtEq, ast.OpEqEq, ast.OpNeq:
		v.requireOperands(e, typeInt, left, right)
		return typeBool
	case ast.OpDiv:
		if isZero(e.Right) {
			v.addDiag(diagnostics.WDivZero, "division by constant zero", e.OpPos, "")
		}
	}
	v.requireOperands(e, typeInt, left, right)
	return typeInt
}

func (v *validator) requireOperands(e *ast.BinaryExpr, want staticType, operands ...staticType) {
	for _, t := range operands {
		if t != unknown && t != want {
			v.badOperand(string(e.Op), e.OpPos, t)
			return
		}
	}
}

func (v *validator) badOperand(op string, pos ast.Pos, t staticType) {
	v.addDiag(diagnostics.WBadOperand, fmt.Sprintf("operator '%s' does not accept %s operands", op, t), pos, "")
}

func isZero(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return e.Value == 0
	case *ast.UnaryExpr:
		return isZero(e.Operand)
	}
	return false
}
