package interpret

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"golox/ast"
)

// RuntimeError is a fatal evaluation error. The first one halts the
// run, unwinding through the recursive evaluator via ordinary error
// returns.
type RuntimeError struct {
	Token   ast.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[line %d] %s", e.Token.Line, e.Message)
}

// completionKind tags how a statement finished. Break, continue, and
// return propagate as values through statement execution; they are
// never implemented with panics.
type completionKind uint8

const (
	completionNormal completionKind = iota
	completionBreak
	completionContinue
	completionReturn
)

// completion is the outcome of executing one statement. value carries
// the operand of a return signal.
type completion struct {
	kind  completionKind
	value interface{}
}

// Interpreter holds the globals, the current execution environment,
// and the resolver's side table for a program to be executed.
type Interpreter struct {
	// current execution environment
	environment *Environment
	// global variables
	globals *Environment
	// standard output
	stdOut io.Writer
	// locals records the lexical scope depth the resolver computed for
	// each variable-denoting node, keyed by node identity. Nodes are
	// never copied after parsing, so the pointer is a stable key.
	locals map[ast.Expr]int
}

// NewInterpreter sets up a new interpreter with its global environment
func NewInterpreter(stdOut io.Writer) *Interpreter {
	globals := NewEnvironment(nil)
	defineNatives(globals)

	return &Interpreter{
		globals:     globals,
		environment: globals,
		stdOut:      stdOut,
		locals:      make(map[ast.Expr]int),
	}
}

// Resolve records the scope depth of a variable access. Called by the
// resolver before any evaluation; the depth is fixed for the lifetime
// of the program and reused on every evaluation of the node.
func (in *Interpreter) Resolve(expr ast.Expr, depth int) {
	in.locals[expr] = depth
}

// Depth reports the recorded scope depth of a variable access, if any.
// Accesses with no recorded depth are globals.
func (in *Interpreter) Depth(expr ast.Expr) (int, bool) {
	depth, ok := in.locals[expr]
	return depth, ok
}

// Interpret executes a list of statements within the interpreter's
// environment. It returns the first runtime error, or nil.
func (in *Interpreter) Interpret(stmts []ast.Stmt) error {
	for _, statement := range stmts {
		c, err := in.execute(statement)
		if err != nil {
			return err
		}
		if c.kind != completionNormal {
			// the resolver rejects top-level return/break/continue
			panic(fmt.Sprintf("interpret: unhandled control signal %d at top level", c.kind))
		}
	}
	return nil
}

func (in *Interpreter) execute(stmt ast.Stmt) (completion, error) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		return in.executeBlock(s.Statements, NewEnvironment(in.environment))

	case *ast.BreakStmt:
		return completion{kind: completionBreak}, nil

	case *ast.ClassStmt:
		return completion{}, in.executeClass(s)

	case *ast.ContinueStmt:
		return completion{kind: completionContinue}, nil

	case *ast.ExpressionStmt:
		_, err := in.evaluate(s.Expr)
		return completion{}, err

	case *ast.FunctionStmt:
		fn := &Function{declaration: s, closure: in.environment}
		in.environment.Define(s.Name.Lexeme, fn)
		return completion{}, nil

	case *ast.IfStmt:
		cond, err := in.evaluate(s.Condition)
		if err != nil {
			return completion{}, err
		}
		if isTruthy(cond) {
			return in.execute(s.ThenBranch)
		}
		if s.ElseBranch != nil {
			return in.execute(s.ElseBranch)
		}
		return completion{}, nil

	case *ast.PrintStmt:
		value, err := in.evaluate(s.Expr)
		if err != nil {
			return completion{}, err
		}
		_, _ = in.stdOut.Write([]byte(Stringify(value) + "\n"))
		return completion{}, nil

	case *ast.ReturnStmt:
		var value interface{}
		if s.Value != nil {
			var err error
			if value, err = in.evaluate(s.Value); err != nil {
				return completion{}, err
			}
		}
		return completion{kind: completionReturn, value: value}, nil

	case *ast.VarStmt:
		var value interface{}
		if s.Initializer != nil {
			var err error
			if value, err = in.evaluate(s.Initializer); err != nil {
				return completion{}, err
			}
		}
		in.environment.Define(s.Name.Lexeme, value)
		return completion{}, nil

	case *ast.WhileStmt:
		return in.executeWhile(s)
	}

	panic(fmt.Sprintf("interpret: unknown statement %T", stmt))
}

// executeWhile runs a while loop, catching break and continue signals
// from the body. The increment (present only on desugared for loops)
// runs after a normal body completion and after a continue, but not
// after a break or return: continue cannot bypass the increment.
func (in *Interpreter) executeWhile(stmt *ast.WhileStmt) (completion, error) {
	for {
		cond, err := in.evaluate(stmt.Condition)
		if err != nil {
			return completion{}, err
		}
		if !isTruthy(cond) {
			return completion{}, nil
		}

		c, err := in.execute(stmt.Body)
		if err != nil {
			return completion{}, err
		}
		switch c.kind {
		case completionBreak:
			return completion{}, nil
		case completionReturn:
			return c, nil
		}

		if stmt.Increment != nil {
			if _, err := in.evaluate(stmt.Increment); err != nil {
				return completion{}, err
			}
		}
	}
}

func (in *Interpreter) executeClass(stmt *ast.ClassStmt) error {
	var superclass *Class
	if stmt.Superclass != nil {
		value, err := in.evaluate(stmt.Superclass)
		if err != nil {
			return err
		}
		var ok bool
		if superclass, ok = value.(*Class); !ok {
			return &RuntimeError{Token: stmt.Superclass.Name, Message: "Superclass must be a class."}
		}
	}

	in.environment.Define(stmt.Name.Lexeme, nil)

	if superclass != nil {
		in.environment = NewEnvironment(in.environment)
		in.environment.Define("super", superclass)
	}

	// every method closes over the class's defining environment;
	// `this` is bound per lookup, not per class
	methods := make(map[string]*Function, len(stmt.Methods))
	for _, method := range stmt.Methods {
		methods[method.Name.Lexeme] = &Function{
			declaration:   method,
			closure:       in.environment,
			isInitializer: method.Name.Lexeme == "init",
		}
	}

	class := &Class{name: stmt.Name.Lexeme, methods: methods, superclass: superclass}

	if superclass != nil {
		in.environment = in.environment.enclosing
	}

	return in.environment.Assign(stmt.Name, class)
}

// executeBlock executes statements in the given environment, restoring
// the previous environment on exit (including early exit via a
// control signal).
func (in *Interpreter) executeBlock(statements []ast.Stmt, env *Environment) (completion, error) {
	previous := in.environment
	defer func() {
		in.environment = previous
	}()

	in.environment = env
	for _, statement := range statements {
		c, err := in.execute(statement)
		if err != nil {
			return completion{}, err
		}
		if c.kind != completionNormal {
			return c, nil
		}
	}
	return completion{}, nil
}

func (in *Interpreter) evaluate(expr ast.Expr) (interface{}, error) {
	switch e := expr.(type) {
	case *ast.AssignExpr:
		value, err := in.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		if distance, ok := in.locals[expr]; ok {
			in.environment.AssignAt(distance, e.Name, value)
		} else if err := in.globals.Assign(e.Name, value); err != nil {
			return nil, err
		}
		return value, nil

	case *ast.BinaryExpr:
		return in.evaluateBinary(e)

	case *ast.CallExpr:
		return in.evaluateCall(e)

	case *ast.GetExpr:
		object, err := in.evaluate(e.Object)
		if err != nil {
			return nil, err
		}
		instance, ok := object.(*Instance)
		if !ok {
			return nil, &RuntimeError{Token: e.Name, Message: "Only instances have properties."}
		}
		return instance.Get(e.Name)

	case *ast.GroupingExpr:
		return in.evaluate(e.Expression)

	case *ast.LiteralExpr:
		return e.Value, nil

	case *ast.LogicalExpr:
		left, err := in.evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		// short-circuit to the actual operand value, not a boolean
		if e.Operator.TokenType == ast.TokenOr {
			if isTruthy(left) {
				return left, nil
			}
		} else if !isTruthy(left) {
			return left, nil
		}
		return in.evaluate(e.Right)

	case *ast.SetExpr:
		object, err := in.evaluate(e.Object)
		if err != nil {
			return nil, err
		}
		instance, ok := object.(*Instance)
		if !ok {
			return nil, &RuntimeError{Token: e.Name, Message: "Only instances have fields."}
		}
		value, err := in.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		instance.Set(e.Name, value)
		return value, nil

	case *ast.SuperExpr:
		return in.evaluateSuper(e)

	case *ast.ThisExpr:
		return in.lookupVariable(e.Keyword, expr)

	case *ast.UnaryExpr:
		right, err := in.evaluate(e.Right)
		if err != nil {
			return nil, err
		}
		switch e.Operator.TokenType {
		case ast.TokenBang:
			return !isTruthy(right), nil
		case ast.TokenMinus:
			n, ok := right.(float64)
			if !ok {
				return nil, &RuntimeError{Token: e.Operator, Message: "Operand must be a number."}
			}
			return -n, nil
		}

	case *ast.VariableExpr:
		return in.lookupVariable(e.Name, expr)
	}

	panic(fmt.Sprintf("interpret: unknown expression %T", expr))
}

// lookupVariable returns the value of a variable. A resolved access
// walks exactly the recorded number of environment links; an
// unresolved one is global.
func (in *Interpreter) lookupVariable(name ast.Token, expr ast.Expr) (interface{}, error) {
	if distance, ok := in.locals[expr]; ok {
		return in.environment.GetAt(distance, name.Lexeme), nil
	}
	return in.globals.Get(name)
}

func (in *Interpreter) evaluateBinary(expr *ast.BinaryExpr) (interface{}, error) {
	left, err := in.evaluate(expr.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.evaluate(expr.Right)
	if err != nil {
		return nil, err
	}

	switch expr.Operator.TokenType {
	case ast.TokenPlus:
		if l, ok := left.(float64); ok {
			if r, ok := right.(float64); ok {
				return l + r, nil
			}
		}
		if l, ok := left.(string); ok {
			if r, ok := right.(string); ok {
				return l + r, nil
			}
		}
		return nil, &RuntimeError{Token: expr.Operator, Message: "Operands must be two numbers or two strings."}
	case ast.TokenMinus:
		l, r, err := checkNumberOperands(expr.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return l - r, nil
	case ast.TokenSlash:
		// IEEE-754 division: dividing by zero yields an infinity or
		// NaN, not an error
		l, r, err := checkNumberOperands(expr.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return l / r, nil
	case ast.TokenStar:
		l, r, err := checkNumberOperands(expr.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return l * r, nil
	case ast.TokenGreater:
		l, r, err := checkNumberOperands(expr.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return l > r, nil
	case ast.TokenGreaterEqual:
		l, r, err := checkNumberOperands(expr.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return l >= r, nil
	case ast.TokenLess:
		l, r, err := checkNumberOperands(expr.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return l < r, nil
	case ast.TokenLessEqual:
		l, r, err := checkNumberOperands(expr.Operator, left, right)
		if err != nil {
			return nil, err
		}
		return l <= r, nil
	case ast.TokenEqualEqual:
		return isEqual(left, right), nil
	case ast.TokenBangEqual:
		return !isEqual(left, right), nil
	}
	return nil, nil
}

func (in *Interpreter) evaluateCall(expr *ast.CallExpr) (interface{}, error) {
	callee, err := in.evaluate(expr.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]interface{}, len(expr.Arguments))
	for i, arg := range expr.Arguments {
		if args[i], err = in.evaluate(arg); err != nil {
			return nil, err
		}
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, &RuntimeError{Token: expr.Paren, Message: "Can only call functions and classes."}
	}

	if len(args) != fn.Arity() {
		return nil, &RuntimeError{
			Token:   expr.Paren,
			Message: fmt.Sprintf("Expected %d arguments but got %d.", fn.Arity(), len(args)),
		}
	}

	result, err := fn.Call(in, args)
	if err != nil {
		// native functions report errors without token context
		var rerr *RuntimeError
		if !errors.As(err, &rerr) {
			err = &RuntimeError{Token: expr.Paren, Message: err.Error()}
		}
		return nil, err
	}
	return result, nil
}

// evaluateSuper resolves super.method through the statically enclosing
// class's superclass, not the receiver's dynamic class. The resolver
// recorded the depth of the `super` binding; `this` lives one scope
// closer to the method body.
func (in *Interpreter) evaluateSuper(expr *ast.SuperExpr) (interface{}, error) {
	distance := in.locals[ast.Expr(expr)]
	superclass := in.environment.GetAt(distance, "super").(*Class)
	object := in.environment.GetAt(distance-1, "this").(*Instance)

	method, ok := superclass.findMethod(expr.Method.Lexeme)
	if !ok {
		return nil, &RuntimeError{Token: expr.Method, Message: fmt.Sprintf("Undefined property '%s'.", expr.Method.Lexeme)}
	}
	return method.bind(object), nil
}

// isTruthy reports the truthiness of a value: nil and false are falsy,
// everything else (including 0 and "") is truthy
func isTruthy(value interface{}) bool {
	if value == nil {
		return false
	}
	if b, ok := value.(bool); ok {
		return b
	}
	return true
}

// isEqual compares two values: nil equals only nil, values of
// different kinds are never equal, and same-kind values compare by
// underlying value (functions, classes, and instances by identity).
func isEqual(left, right interface{}) bool {
	if left == nil && right == nil {
		return true
	}
	if left == nil || right == nil {
		return false
	}

	switch l := left.(type) {
	case float64:
		r, ok := right.(float64)
		return ok && l == r
	case string:
		r, ok := right.(string)
		return ok && l == r
	case bool:
		r, ok := right.(bool)
		return ok && l == r
	}
	return left == right
}

func checkNumberOperands(operator ast.Token, left, right interface{}) (float64, float64, error) {
	l, lok := left.(float64)
	r, rok := right.(float64)
	if !lok || !rok {
		return 0, 0, &RuntimeError{Token: operator, Message: "Operands must be numbers."}
	}
	return l, r, nil
}

// Stringify converts a value to its display form. Integral numbers
// print without a trailing ".0"; strings print verbatim.
func Stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}
