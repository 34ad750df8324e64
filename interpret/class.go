package interpret

import (
	"fmt"

	"golox/ast"
)

// Class is a user-declared class. Immutable after construction: the
// method table is captured when the class declaration executes.
type Class struct {
	name       string
	superclass *Class
	methods    map[string]*Function
}

// Arity returns the arity of the class's constructor
func (c *Class) Arity() int {
	if initializer, ok := c.findMethod("init"); ok {
		return initializer.Arity()
	}
	return 0
}

// Call constructs a new instance of the class. If the class or an
// ancestor declares an init method, it runs bound to the new instance;
// the call evaluates to the instance regardless of init's body.
func (c *Class) Call(in *Interpreter, args []interface{}) (interface{}, error) {
	instance := &Instance{class: c}
	if initializer, ok := c.findMethod("init"); ok {
		if _, err := initializer.bind(instance).Call(in, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// findMethod looks up a method on the class, walking up the
// superclass chain
func (c *Class) findMethod(name string) (*Function, bool) {
	if method, ok := c.methods[name]; ok {
		return method, true
	}
	if c.superclass != nil {
		return c.superclass.findMethod(name)
	}
	return nil, false
}

func (c *Class) String() string {
	return c.name
}

// Instance is an instance of a class: a mutable field map plus a
// back-reference to the class for method lookup.
type Instance struct {
	class  *Class
	fields map[string]interface{}
}

// Get returns the field or method with the given name. Fields shadow
// methods; a method hit produces a BoundMethod on this instance.
func (i *Instance) Get(name ast.Token) (interface{}, error) {
	if val, ok := i.fields[name.Lexeme]; ok {
		return val, nil
	}

	if method, ok := i.class.findMethod(name.Lexeme); ok {
		return method.bind(i), nil
	}

	return nil, &RuntimeError{Token: name, Message: fmt.Sprintf("Undefined property '%s'.", name.Lexeme)}
}

// Set writes a field on the instance. Fields always live on the
// instance itself, never on the class hierarchy.
func (i *Instance) Set(name ast.Token, value interface{}) {
	if i.fields == nil {
		i.fields = make(map[string]interface{})
	}
	i.fields[name.Lexeme] = value
}

func (i *Instance) String() string {
	return i.class.name + " instance"
}
