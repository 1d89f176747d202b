package evaluator

import (
	"sort"

	mapset "github.com/deckarep/golang-set"
)

// Env is the single flat namespace of a run. Blocks do not open scopes, so
// a variable declared anywhere is visible everywhere after its declaration.
type Env struct {
	values   map[string]Value
	declared mapset.Set
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{
		values:   make(map[string]Value),
		declared: mapset.NewSet(),
	}
}

// Declare adds name with the initial value Zero. It returns false and leaves
// the environment untouched if name was already declared.
func (e *Env) Declare(name string) bool {
	if !e.declared.Add(name) {
		return false
	}
	e.values[name] = Zero
	return true
}

// IsDeclared reports whether name has been declared.
func (e *Env) IsDeclared(name string) bool {
	return e.declared.Contains(name)
}

// Get looks up a variable by name.
func (e *Env) Get(name string) (Value, bool) {
	if !e.IsDeclared(name) {
		return nil, false
	}
	return e.values[name], true
}

// Set rebinds a declared variable. It returns false if name is undeclared.
func (e *Env) Set(name string, val Value) bool {
	if !e.IsDeclared(name) {
		return false
	}
	e.values[name] = val
	return true
}

// Len returns the number of declared variables.
func (e *Env) Len() int {
	return e.declared.Cardinality()
}

// Names returns the declared names in sorted order.
func (e *Env) Names() []string {
	names := make([]string, 0, e.Len())
	for _, n := range e.declared.ToSlice() {
		names = append(names, n.(string))
	}
	sort.Strings(names)
	return names
}

// Snapshot copies the current bindings, sorted by name.
func (e *Env) Snapshot() Snapshot {
	names := e.Names()
	snap := make(Snapshot, len(names))
	for i, n := range names {
		snap[i] = Binding{Name: n, Value: e.values[n]}
	}
	return snap
}
