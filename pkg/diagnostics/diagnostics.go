// Package diagnostics defines the error codes and diagnostic records shared by
// the lexer, parser and evaluator.
package diagnostics

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/hackhud/simplesyntax/pkg/ast"
)

// Diagnostic code constants.
const (
	ELex           = "E_LEX"
	EParse         = "E_PARSE"
	EDupDecl       = "E_DUP_DECL"
	EUndeclared    = "E_UNDECLARED"
	ETypeMismatch  = "E_TYPE_MISMATCH"
	EUnsupportedOp = "E_UNSUPPORTED_OP"
	EDivZero       = "E_DIV_ZERO"
	EIO            = "E_IO"
	EInternal      = "E_INTERNAL"
)

// Warning codes. They are reported by the validator and never stop a run.
const (
	WUndeclared  = "W_UNDECLARED"
	WRedeclared  = "W_REDECLARED"
	WDeclInLoop  = "W_DECL_IN_LOOP"
	WCondNotBool = "W_COND_NOT_BOOL"
	WBadOperand  = "W_BAD_OPERAND"
	WDivZero     = "W_DIV_ZERO"
)

var kindNames = map[string]string{
	ELex:           "LexError",
	EParse:         "ParseError",
	EDupDecl:       "DuplicateDeclaration",
	EUndeclared:    "UndeclaredVariable",
	ETypeMismatch:  "TypeMismatch",
	EUnsupportedOp: "UnsupportedOperation",
	EDivZero:       "DivisionByZero",
	EIO:            "IOError",
	EInternal:      "InternalError",
	WUndeclared:    "PossiblyUndeclared",
	WRedeclared:    "Redeclaration",
	WDeclInLoop:    "DeclarationInLoop",
	WCondNotBool:   "NonBoolCondition",
	WBadOperand:    "OperandTypeMismatch",
	WDivZero:       "ConstantDivisionByZero",
}

// KindName returns the human readable error kind for a code.
func KindName(code string) string {
	if name, ok := kindNames[code]; ok {
		return name
	}
	return code
}

// IsRuntimeFault reports whether code is raised during evaluation rather
// than while reading the program.
func IsRuntimeFault(code string) bool {
	switch code {
	case EDupDecl, EUndeclared, ETypeMismatch, EUnsupportedOp, EDivZero:
		return true
	}
	return false
}

// IsWarning reports whether code is a validator warning.
func IsWarning(code string) bool {
	return strings.HasPrefix(code, "W_")
}

// Diagnostic represents a lex, parse or runtime diagnostic.
type Diagnostic struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Pos     *ast.Pos `json:"pos,omitempty"`
	Hint    string   `json:"hint,omitempty"`
}

// Diagnoser is implemented by errors that can describe themselves as a
// Diagnostic.
type Diagnoser interface {
	Diagnostic() Diagnostic
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, pos *ast.Pos, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Pos:     pos,
		Hint:    hint,
	}
}

// FromError converts err into a Diagnostic. Errors that do not carry one are
// reported as internal errors.
func FromError(err error) Diagnostic {
	var d Diagnoser
	if errors.As(err, &d) {
		return d.Diagnostic()
	}
	return MakeDiag(EInternal, err.Error(), nil, "")
}

var (
	errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	warnLabel  = color.New(color.FgYellow, color.Bold).SprintFunc()
	arrow      = color.New(color.FgBlue, color.Bold).SprintFunc()
	hintLabel  = color.New(color.FgCyan).SprintFunc()
)

// FormatDiagnostic formats a single diagnostic for display. When pretty is
// false the diagnostic is rendered as a JSON object.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Pos != nil {
		loc = fmt.Sprintf("%s (offset %d)", d.Pos, d.Pos.Offset)
	}
	label := errorLabel("error")
	if IsWarning(d.Code) {
		label = warnLabel("warning")
	}
	out := fmt.Sprintf("%s[%s]: %s: %s\n  %s %s", label, d.Code, KindName(d.Code), d.Message, arrow("-->"), loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  %s %s", hintLabel("hint:"), d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
