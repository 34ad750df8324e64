package interpret

import "golox/ast"

// Callable is anything a call expression may invoke: user functions,
// bound methods, classes, and native functions.
type Callable interface {
	Arity() int
	Call(in *Interpreter, args []interface{}) (interface{}, error)
}

// Function is a user-declared function: its declaration plus the
// environment captured at the point of declaration. Functions declared
// in the same scope share that one environment.
type Function struct {
	declaration   *ast.FunctionStmt
	closure       *Environment
	isInitializer bool
}

func (f *Function) Arity() int {
	return len(f.declaration.Params)
}

// Call binds the arguments in a fresh environment parented to the
// function's closure (not the caller's environment) and executes the
// body. A return signal from the body yields the call result; an
// initializer always yields the instance.
func (f *Function) Call(in *Interpreter, args []interface{}) (interface{}, error) {
	env := NewEnvironment(f.closure)
	for i, param := range f.declaration.Params {
		env.Define(param.Lexeme, args[i])
	}

	c, err := in.executeBlock(f.declaration.Body, env)
	if err != nil {
		return nil, err
	}

	if f.isInitializer {
		return f.closure.GetAt(0, "this"), nil
	}
	if c.kind == completionReturn {
		return c.value, nil
	}
	return nil, nil
}

// bind pairs the function with a receiving instance, supplying
// `this` for the resulting calls
func (f *Function) bind(receiver *Instance) *BoundMethod {
	return &BoundMethod{fn: f, receiver: receiver}
}

func (f *Function) String() string {
	return "<fn " + f.declaration.Name.Lexeme + ">"
}

// BoundMethod is a method looked up on a specific instance. It is
// produced lazily by property access and carries the receiver that
// `this` resolves to during the call.
type BoundMethod struct {
	fn       *Function
	receiver *Instance
}

func (b *BoundMethod) Arity() int {
	return b.fn.Arity()
}

func (b *BoundMethod) Call(in *Interpreter, args []interface{}) (interface{}, error) {
	env := NewEnvironment(b.fn.closure)
	env.Define("this", b.receiver)
	bound := &Function{declaration: b.fn.declaration, closure: env, isInitializer: b.fn.isInitializer}
	return bound.Call(in, args)
}

func (b *BoundMethod) String() string {
	return b.fn.String()
}
