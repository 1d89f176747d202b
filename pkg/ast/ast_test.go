package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hackhud/simplesyntax/pkg/ast"
)

func TestNodeKinds(t *testing.T) {
	nodes := []ast.Node{
		&ast.IntLiteral{Value: 42},
		&ast.BoolLiteral{Value: true},
		&ast.VarRef{Name: "x"},
		&ast.BinaryExpr{Op: ast.OpAdd},
		&ast.UnaryExpr{Op: ast.OpNeg},
		&ast.Block{},
		&ast.VarDecl{Name: "x"},
		&ast.AssignStmt{Name: "x"},
		&ast.IfStmt{},
		&ast.WhileStmt{},
		&ast.PrintStmt{},
		&ast.ExprStmt{},
	}

	expected := []string{
		"IntLiteral", "BoolLiteral", "VarRef", "BinaryExpr", "UnaryExpr",
		"Block", "VarDecl", "AssignStmt", "IfStmt", "WhileStmt", "PrintStmt", "ExprStmt",
	}

	for i, node := range nodes {
		assert.Equal(t, expected[i], node.Kind(), "node %d", i)
	}
}

func TestPosString(t *testing.T) {
	assert.Equal(t, "prog.ssi:3:5", ast.Pos{File: "prog.ssi", Offset: 20, Line: 3, Col: 5}.String())
	assert.Equal(t, "1:1", ast.Pos{Line: 1, Col: 1}.String())
}
