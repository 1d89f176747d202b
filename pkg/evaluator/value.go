// Package evaluator implements the tree-walking interpreter.
package evaluator

import "strconv"

// Value is the interface for all runtime values.
// The sealed marker method restricts implementations to this package.
type Value interface {
	value() // sealed marker

	// String renders the value the way print emits it.
	String() string
	// TypeName is used in error messages.
	TypeName() string
}

// IntValue is a 64-bit signed integer. Arithmetic wraps on overflow.
type IntValue struct {
	Value int64
}

func (IntValue) value() {}

func (v IntValue) String() string { return strconv.FormatInt(v.Value, 10) }

func (IntValue) TypeName() string { return "int" }

// BoolValue is a boolean.
type BoolValue struct {
	Value bool
}

func (BoolValue) value() {}

func (v BoolValue) String() string { return strconv.FormatBool(v.Value) }

func (BoolValue) TypeName() string { return "bool" }

// NewInt creates an integer value.
func NewInt(n int64) Value {
	return IntValue{Value: n}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return BoolValue{Value: b}
}

// Zero is the value a freshly declared variable holds.
var Zero Value = IntValue{Value: 0}
