package interpret

import (
	"fmt"

	"golox/ast"
)

// Environment is one link in the chain of lexical scopes. A closure
// shares its defining environment rather than copying it, so the chain
// is a shared, back-referenced structure, not a tree owned top-down.
type Environment struct {
	enclosing *Environment
	values    map[string]interface{}
}

// NewEnvironment returns a new environment parented
// to the given enclosing one
func NewEnvironment(enclosing *Environment) *Environment {
	return &Environment{enclosing: enclosing}
}

// Define introduces a new binding in this scope, shadowing
// any outer binding of the same name
func (e *Environment) Define(name string, value interface{}) {
	if e.values == nil {
		e.values = make(map[string]interface{})
	}
	e.values[name] = value
}

// Get looks up a binding, walking the full chain to the global scope
func (e *Environment) Get(name ast.Token) (interface{}, error) {
	if val, ok := e.values[name.Lexeme]; ok {
		return val, nil
	}
	if e.enclosing != nil {
		return e.enclosing.Get(name)
	}
	return nil, &RuntimeError{Token: name, Message: fmt.Sprintf("Undefined variable '%s'.", name.Lexeme)}
}

// Assign mutates an existing binding, walking the chain to
// the global scope. Assigning to an undefined name is an error.
func (e *Environment) Assign(name ast.Token, value interface{}) error {
	if _, ok := e.values[name.Lexeme]; ok {
		e.values[name.Lexeme] = value
		return nil
	}
	if e.enclosing != nil {
		return e.enclosing.Assign(name, value)
	}
	return &RuntimeError{Token: name, Message: fmt.Sprintf("Undefined variable '%s'.", name.Lexeme)}
}

// GetAt returns the binding exactly distance links up the chain. The
// resolver guarantees the binding exists at that depth.
func (e *Environment) GetAt(distance int, name string) interface{} {
	return e.ancestor(distance).values[name]
}

// AssignAt mutates the binding exactly distance links up the chain
func (e *Environment) AssignAt(distance int, name ast.Token, value interface{}) {
	e.ancestor(distance).Define(name.Lexeme, value)
}

func (e *Environment) ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.enclosing
	}
	return env
}
