// Package ast defines the node types produced by the parser.
package ast

import "fmt"

// Pos is a source location. Offset is the byte offset from the start of the
// source; Line and Col are 1-based and only used for display.
type Pos struct {
	File   string `json:"file,omitempty"`
	Offset int    `json:"offset"`
	Line   int    `json:"line"`
	Col    int    `json:"col"`
}

func (p Pos) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodePos() Pos
}

// BinaryOp represents a binary operator.
type BinaryOp string

const (
	OpAdd  BinaryOp = "+"
	OpSub  BinaryOp = "-"
	OpMul  BinaryOp = "*"
	OpDiv  BinaryOp = "/"
	OpLt   BinaryOp = "<"
	OpGt   BinaryOp = ">"
	OpLtEq BinaryOp = "<="
	OpGtEq BinaryOp = ">="
	OpEqEq BinaryOp = "=="
	OpNeq  BinaryOp = "!="
	OpAnd  BinaryOp = "and"
	OpOr   BinaryOp = "or"
)

// UnaryOp represents a unary operator.
type UnaryOp string

const (
	OpNeg UnaryOp = "-"
)

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Expressions ---

type IntLiteral struct {
	Pos   Pos
	Value int64
}

func (n *IntLiteral) Kind() string { return "IntLiteral" }
func (n *IntLiteral) NodePos() Pos { return n.Pos }
func (n *IntLiteral) exprNode()    {}

// BoolLiteral has no surface syntax; it exists so that programs built
// directly as trees can carry boolean constants.
type BoolLiteral struct {
	Pos   Pos
	Value bool
}

func (n *BoolLiteral) Kind() string { return "BoolLiteral" }
func (n *BoolLiteral) NodePos() Pos { return n.Pos }
func (n *BoolLiteral) exprNode()    {}

type VarRef struct {
	Pos  Pos
	Name string
}

func (n *VarRef) Kind() string { return "VarRef" }
func (n *VarRef) NodePos() Pos { return n.Pos }
func (n *VarRef) exprNode()    {}

// BinaryExpr starts at its left operand; OpPos locates the operator.
type BinaryExpr struct {
	Pos   Pos
	OpPos Pos
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) Kind() string { return "BinaryExpr" }
func (n *BinaryExpr) NodePos() Pos { return n.Pos }
func (n *BinaryExpr) exprNode()    {}

type UnaryExpr struct {
	Pos     Pos
	Op      UnaryOp
	Operand Expr
}

func (n *UnaryExpr) Kind() string { return "UnaryExpr" }
func (n *UnaryExpr) NodePos() Pos { return n.Pos }
func (n *UnaryExpr) exprNode()    {}

// --- Statements ---

// Block is a sequence of statements. It does not open a scope.
type Block struct {
	Pos        Pos
	Statements []Stmt
}

func (n *Block) Kind() string { return "Block" }
func (n *Block) NodePos() Pos { return n.Pos }
func (n *Block) stmtNode()    {}

type VarDecl struct {
	Pos  Pos
	Name string
}

func (n *VarDecl) Kind() string { return "VarDecl" }
func (n *VarDecl) NodePos() Pos { return n.Pos }
func (n *VarDecl) stmtNode()    {}

type AssignStmt struct {
	Pos   Pos
	Name  string
	Value Expr
}

func (n *AssignStmt) Kind() string { return "AssignStmt" }
func (n *AssignStmt) NodePos() Pos { return n.Pos }
func (n *AssignStmt) stmtNode()    {}

type IfStmt struct {
	Pos  Pos
	Cond Expr
	Then Stmt
	Else Stmt // nil when absent
}

func (n *IfStmt) Kind() string { return "IfStmt" }
func (n *IfStmt) NodePos() Pos { return n.Pos }
func (n *IfStmt) stmtNode()    {}

type WhileStmt struct {
	Pos  Pos
	Cond Expr
	Body Stmt
}

func (n *WhileStmt) Kind() string { return "WhileStmt" }
func (n *WhileStmt) NodePos() Pos { return n.Pos }
func (n *WhileStmt) stmtNode()    {}

type PrintStmt struct {
	Pos   Pos
	Value Expr
}

func (n *PrintStmt) Kind() string { return "PrintStmt" }
func (n *PrintStmt) NodePos() Pos { return n.Pos }
func (n *PrintStmt) stmtNode()    {}

type ExprStmt struct {
	Pos  Pos
	Expr Expr
}

func (n *ExprStmt) Kind() string { return "ExprStmt" }
func (n *ExprStmt) NodePos() Pos { return n.Pos }
func (n *ExprStmt) stmtNode()    {}
