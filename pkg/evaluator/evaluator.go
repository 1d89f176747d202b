package evaluator

import (
	"fmt"
	"io"
	"time"

	"github.com/hackhud/simplesyntax/pkg/ast"
	"github.com/hackhud/simplesyntax/pkg/diagnostics"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart  TraceEventType = "run_start"
	TraceRunEnd    TraceEventType = "run_end"
	TraceStmtStart TraceEventType = "stmt_start"
	TraceStmtEnd   TraceEventType = "stmt_end"
	TracePrint     TraceEventType = "print"
	TraceAssign    TraceEventType = "assign"
	TraceWhileIter TraceEventType = "while_iter"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string         `json:"ts"`
	RunID     string         `json:"runId"`
	Event     TraceEventType `json:"event"`
	Pos       *ast.Pos       `json:"pos,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// ExecOptions configures program execution.
type ExecOptions struct {
	// Stdout receives one line per executed print. Nil discards output.
	Stdout io.Writer
	Trace  func(event TraceEvent)
	RunID  string
}

// ExecResult holds the result of a program execution.
type ExecResult struct {
	// Output holds the printed renderings in execution order.
	Output []string
	// Env is the environment after the last executed statement.
	Env Snapshot
}

// RuntimeError represents a fault raised while executing a program. Name is
// set for variable faults and Op for operator faults.
type RuntimeError struct {
	Code    string
	Message string
	Name    string
	Op      string
	Pos     *ast.Pos
	Hint    string
}

func (e *RuntimeError) Error() string {
	if e.Pos != nil {
		return fmt.Sprintf("%s at %s: %s", diagnostics.KindName(e.Code), e.Pos, e.Message)
	}
	return fmt.Sprintf("%s: %s", diagnostics.KindName(e.Code), e.Message)
}

// Diagnostic implements diagnostics.Diagnoser.
func (e *RuntimeError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, e.Pos, e.Hint)
}

func posPtr(p ast.Pos) *ast.Pos {
	return &p
}

// Interpreter executes blocks against one environment. Successive calls to
// Exec share declarations, which is what an interactive session needs;
// Execute uses a fresh Interpreter per run.
type Interpreter struct {
	opts   ExecOptions
	env    *Env
	output []string
}

// NewInterpreter creates an interpreter with an empty environment.
func NewInterpreter(opts ExecOptions) *Interpreter {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	return &Interpreter{opts: opts, env: NewEnv()}
}

// Execute runs a program from an empty environment and returns the result.
// On a fault the returned result holds the output produced before it.
func Execute(program *ast.Block, opts ExecOptions) (*ExecResult, error) {
	return NewInterpreter(opts).Exec(program)
}

// Env returns the live environment.
func (in *Interpreter) Env() *Env {
	return in.env
}

// Output returns everything printed since the interpreter was created or
// last reset.
func (in *Interpreter) Output() []string {
	return in.output
}

// Reset discards all declarations and collected output.
func (in *Interpreter) Reset() {
	in.env = NewEnv()
	in.output = nil
}

// Exec executes block. ExecResult.Output only holds what this call printed.
func (in *Interpreter) Exec(block *ast.Block) (*ExecResult, error) {
	ev := &evaluator{in: in}
	start := time.Now()

	if ev.tracing() {
		ev.emit(TraceRunStart, block.Pos, map[string]any{"statements": len(block.Statements)})
	}

	err := ev.execBlock(block)

	if ev.tracing() {
		data := map[string]any{
			"ok":         err == nil,
			"prints":     len(ev.output),
			"durationMs": time.Since(start).Milliseconds(),
		}
		if err != nil {
			data["error"] = diagnostics.FromError(err).Code
		}
		ev.emit(TraceRunEnd, block.Pos, data)
	}

	return &ExecResult{Output: ev.output, Env: in.env.Snapshot()}, err
}

// evaluator holds the state of a single Exec call.
type evaluator struct {
	in     *Interpreter
	output []string
}

func (ev *evaluator) tracing() bool {
	return ev.in.opts.Trace != nil
}

// emit sends one trace event. Callers check tracing first so that untraced
// runs build no event data.
func (ev *evaluator) emit(event TraceEventType, pos ast.Pos, data map[string]any) {
	if !ev.tracing() {
		return
	}
	ev.in.opts.Trace(TraceEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RunID:     ev.in.opts.RunID,
		Event:     event,
		Pos:       &pos,
		Data:      data,
	})
}

// --- Statements ---

func (ev *evaluator) execBlock(block *ast.Block) error {
	for _, stmt := range block.Statements {
		if err := ev.execStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (ev *evaluator) execStmt(stmt ast.Stmt) error {
	pos := stmt.NodePos()
	if ev.tracing() {
		ev.emit(TraceStmtStart, pos, map[string]any{"kind": stmt.Kind()})
	}

	var err error
	switch s := stmt.(type) {
	case *ast.Block:
		err = ev.execBlock(s)
	case *ast.VarDecl:
		err = ev.execVarDecl(s)
	case *ast.AssignStmt:
		err = ev.execAssign(s)
	case *ast.IfStmt:
		err = ev.execIf(s)
	case *ast.WhileStmt:
		err = ev.execWhile(s)
	case *ast.PrintStmt:
		err = ev.execPrint(s)
	case *ast.ExprStmt:
		_, err = ev.evalExpr(s.Expr)
	default:
		err = &RuntimeError{
			Code:    diagnostics.EInternal,
			Message: fmt.Sprintf("unknown statement kind %s", stmt.Kind()),
			Pos:     posPtr(pos),
		}
	}
	if err != nil {
		return err
	}

	if ev.tracing() {
		ev.emit(TraceStmtEnd, pos, nil)
	}
	return nil
}

func (ev *evaluator) execVarDecl(s *ast.VarDecl) error {
	if !ev.in.env.Declare(s.Name) {
		return &RuntimeError{
			Code:    diagnostics.EDupDecl,
			Message: fmt.Sprintf("variable '%s' is already declared", s.Name),
			Name:    s.Name,
			Pos:     posPtr(s.Pos),
			Hint:    "all variables share one namespace; blocks do not open a new scope",
		}
	}
	return nil
}

func (ev *evaluator) execAssign(s *ast.AssignStmt) error {
	// The name is checked before the right-hand side runs.
	if !ev.in.env.IsDeclared(s.Name) {
		return undeclared(s.Name, s.Pos)
	}
	val, err := ev.evalExpr(s.Value)
	if err != nil {
		return err
	}
	ev.in.env.Set(s.Name, val)
	if ev.tracing() {
		ev.emit(TraceAssign, s.Pos, map[string]any{"name": s.Name, "value": val})
	}
	return nil
}

func (ev *evaluator) condition(keyword string, cond ast.Expr) (bool, error) {
	val, err := ev.evalExpr(cond)
	if err != nil {
		return false, err
	}
	b, ok := val.(BoolValue)
	if !ok {
		return false, &RuntimeError{
			Code:    diagnostics.ETypeMismatch,
			Message: fmt.Sprintf("%s condition must be bool, got %s", keyword, val.TypeName()),
			Pos:     posPtr(cond.NodePos()),
			Hint:    "compare the value explicitly, for example x != 0",
		}
	}
	return b.Value, nil
}

func (ev *evaluator) execIf(s *ast.IfStmt) error {
	ok, err := ev.condition("if", s.Cond)
	if err != nil {
		return err
	}
	if ok {
		return ev.execStmt(s.Then)
	}
	if s.Else != nil {
		return ev.execStmt(s.Else)
	}
	return nil
}

func (ev *evaluator) execWhile(s *ast.WhileStmt) error {
	for iteration := 1; ; iteration++ {
		ok, err := ev.condition("while", s.Cond)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if ev.tracing() {
			ev.emit(TraceWhileIter, s.Pos, map[string]any{"iteration": iteration})
		}
		if err := ev.execStmt(s.Body); err != nil {
			return err
		}
	}
}

func (ev *evaluator) execPrint(s *ast.PrintStmt) error {
	val, err := ev.evalExpr(s.Value)
	if err != nil {
		return err
	}
	text := val.String()
	ev.output = append(ev.output, text)
	ev.in.output = append(ev.in.output, text)
	if ev.tracing() {
		ev.emit(TracePrint, s.Pos, map[string]any{"value": val})
	}

	if _, err := io.WriteString(ev.in.opts.Stdout, text+"\n"); err != nil {
		return &RuntimeError{
			Code:    diagnostics.EIO,
			Message: fmt.Sprintf("writing output: %v", err),
			Pos:     posPtr(s.Pos),
		}
	}
	return nil
}

// --- Expressions ---

func (ev *evaluator) evalExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return NewInt(e.Value), nil

	case *ast.BoolLiteral:
		return NewBool(e.Value), nil

	case *ast.VarRef:
		val, ok := ev.in.env.Get(e.Name)
		if !ok {
			return nil, undeclared(e.Name, e.Pos)
		}
		return val, nil

	case *ast.UnaryExpr:
		operand, err := ev.evalExpr(e.Operand)
		if err != nil {
			return nil, err
		}
		return evalUnary(e, operand)

	case *ast.BinaryExpr:
		left, err := ev.evalExpr(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := ev.evalExpr(e.Right)
		if err != nil {
			return nil, err
		}
		return evalBinary(e, left, right)
	}

	pos := expr.NodePos()
	return nil, &RuntimeError{
		Code:    diagnostics.EInternal,
		Message: fmt.Sprintf("unknown expression kind %s", expr.Kind()),
		Pos:     &pos,
	}
}

func undeclared(name string, pos ast.Pos) error {
	return &RuntimeError{
		Code:    diagnostics.EUndeclared,
		Message: fmt.Sprintf("variable '%s' is not declared", name),
		Name:    name,
		Pos:     &pos,
		Hint:    fmt.Sprintf("declare it first with 'int %s;'", name),
	}
}

func unsupported(op string, pos ast.Pos, operands ...Value) error {
	msg := fmt.Sprintf("operator '%s' is not defined for %s", op, operands[0].TypeName())
	if len(operands) == 2 {
		msg = fmt.Sprintf("operator '%s' is not defined for %s and %s", op, operands[0].TypeName(), operands[1].TypeName())
	}
	return &RuntimeError{
		Code:    diagnostics.EUnsupportedOp,
		Message: msg,
		Op:      op,
		Pos:     &pos,
	}
}

func evalUnary(e *ast.UnaryExpr, operand Value) (Value, error) {
	if e.Op == ast.OpNeg {
		if n, ok := operand.(IntValue); ok {
			return NewInt(-n.Value), nil
		}
	}
	return nil, unsupported(string(e.Op), e.Pos, operand)
}

func evalBinary(e *ast.BinaryExpr, left, right Value) (Value, error) {
	switch e.Op {
	case ast.OpAnd, ast.OpOr:
		l, lok := left.(BoolValue)
		r, rok := right.(BoolValue)
		if !lok || !rok {
			return nil, unsupported(string(e.Op), e.OpPos, left, right)
		}
		if e.Op == ast.OpAnd {
			return NewBool(l.Value && r.Value), nil
		}
		return NewBool(l.Value || r.Value), nil
	}

	l, lok := left.(IntValue)
	r, rok := right.(IntValue)
	if !lok || !rok {
		return nil, unsupported(string(e.Op), e.OpPos, left, right)
	}
	a, b := l.Value, r.Value

	switch e.Op {
	case ast.OpAdd:
		return NewInt(a + b), nil
	case ast.OpSub:
		return NewInt(a - b), nil
	case ast.OpMul:
		return NewInt(a * b), nil
	case ast.OpDiv:
		if b == 0 {
			return nil, &RuntimeError{
				Code:    diagnostics.EDivZero,
				Message: fmt.Sprintf("division of %d by zero", a),
				Op:      string(e.Op),
				Pos:     posPtr(e.OpPos),
			}
		}
		// Go's integer division truncates toward zero and MinInt64 / -1
		// wraps instead of trapping.
		return NewInt(a / b), nil
	case ast.OpLt:
		return NewBool(a < b), nil
	case ast.OpGt:
		return NewBool(a > b), nil
	case ast.OpLtEq:
		return NewBool(a <= b), nil
	case ast.OpGtEq:
		return NewBool(a >= b), nil
	case ast.OpEqEq:
		return NewBool(a == b), nil
	case ast.OpNeq:
		return NewBool(a != b), nil
	}
	return nil, unsupported(string(e.Op), e.OpPos, left, right)
}
