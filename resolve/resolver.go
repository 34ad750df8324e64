package resolve

import (
	"fmt"

	"golox/ast"
	"golox/interpret"
)

// Error is a static resolution error: a structural rule violated at a
// particular token. Errors are accumulated across the whole tree.
type Error struct {
	Token   ast.Token
	Message string
}

func (e Error) Error() string {
	var where string
	if e.Token.TokenType == ast.TokenEof {
		where = " at end"
	} else {
		where = " at '" + e.Token.Lexeme + "'"
	}
	return fmt.Sprintf("[line %d] Error%s: %s", e.Token.Line, where, e.Message)
}

type functionType int

const (
	functionTypeNone functionType = iota
	functionTypeFunction
	functionTypeMethod
	functionTypeInitializer
)

type classType int

const (
	classTypeNone classType = iota
	classTypeClass
	classTypeSubClass
)

// scope maps the local variable names declared in the current scope to
// whether their initializer has finished resolving. A name declared
// but not yet defined is mid-initializer and may not be read.
type scope map[string]bool

type scopes []scope

func (s *scopes) peek() scope {
	return (*s)[len(*s)-1]
}

func (s *scopes) push(sc scope) {
	*s = append(*s, sc)
}

func (s *scopes) pop() {
	*s = (*s)[:len(*s)-1]
}

// Resolver is the static pass over the parsed tree. It simulates the
// lexical scope nesting the interpreter will create at run time, using
// only names, and reports the scope depth of every local variable
// access to the interpreter. It also validates the structural rules on
// return, break, continue, this, and super placement.
type Resolver struct {
	// the program Interpreter, which keeps the depth side table
	interpreter *interpret.Interpreter
	// scopes is a stack of scope-s mirroring block/function/class nesting
	scopes scopes
	// currentFunction is the functionType of the current enclosing
	// function, used to reject return statements outside a function
	// and value returns inside an initializer
	currentFunction functionType
	// the classType of the current enclosing class, used to reject
	// "this" and "super" outside a class
	currentClass classType
	// loopDepth counts enclosing loops, used to reject break and
	// continue outside a loop body
	loopDepth int
	errs      []Error
}

// NewResolver returns a new Resolver reporting depths
// to the given interpreter
func NewResolver(interpreter *interpret.Interpreter) *Resolver {
	return &Resolver{interpreter: interpreter}
}

// Resolve resolves all the local variables in a list of statements and
// returns every static error found
func (r *Resolver) Resolve(statements []ast.Stmt) []Error {
	r.resolveStmts(statements)
	return r.errs
}

func (r *Resolver) resolveStmts(statements []ast.Stmt) {
	for _, statement := range statements {
		r.resolveStmt(statement)
	}
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		r.beginScope()
		r.resolveStmts(s.Statements)
		r.endScope()

	case *ast.BreakStmt:
		if r.loopDepth == 0 {
			r.error(s.Keyword, "Can't use 'break' outside of a loop.")
		}

	case *ast.ClassStmt:
		r.resolveClass(s)

	case *ast.ContinueStmt:
		if r.loopDepth == 0 {
			r.error(s.Keyword, "Can't use 'continue' outside of a loop.")
		}

	case *ast.ExpressionStmt:
		r.resolveExpr(s.Expr)

	case *ast.FunctionStmt:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, functionTypeFunction)

	case *ast.IfStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.ThenBranch)
		if s.ElseBranch != nil {
			r.resolveStmt(s.ElseBranch)
		}

	case *ast.PrintStmt:
		r.resolveExpr(s.Expr)

	case *ast.ReturnStmt:
		if r.currentFunction == functionTypeNone {
			r.error(s.Keyword, "Can't return from top-level code.")
		}
		if s.Value != nil {
			if r.currentFunction == functionTypeInitializer {
				r.error(s.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpr(s.Value)
		}

	case *ast.VarStmt:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.define(s.Name)

	case *ast.WhileStmt:
		r.resolveExpr(s.Condition)
		r.loopDepth++
		r.resolveStmt(s.Body)
		if s.Increment != nil {
			r.resolveExpr(s.Increment)
		}
		r.loopDepth--

	default:
		panic(fmt.Sprintf("resolve: unknown statement %T", stmt))
	}
}

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.AssignExpr:
		r.resolveExpr(e.Value)
		r.resolveLocal(expr, e.Name)

	case *ast.BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.CallExpr:
		r.resolveExpr(e.Callee)
		for _, argument := range e.Arguments {
			r.resolveExpr(argument)
		}

	case *ast.GetExpr:
		r.resolveExpr(e.Object)

	case *ast.GroupingExpr:
		r.resolveExpr(e.Expression)

	case *ast.LiteralExpr:

	case *ast.LogicalExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.SetExpr:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)

	case *ast.SuperExpr:
		if r.currentClass == classTypeNone {
			r.error(e.Keyword, "Can't use 'super' outside of a class.")
		} else if r.currentClass != classTypeSubClass {
			r.error(e.Keyword, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(expr, e.Keyword)

	case *ast.ThisExpr:
		if r.currentClass == classTypeNone {
			r.error(e.Keyword, "Can't use 'this' outside of a class.")
		}
		r.resolveLocal(expr, e.Keyword)

	case *ast.UnaryExpr:
		r.resolveExpr(e.Right)

	case *ast.VariableExpr:
		if len(r.scopes) > 0 {
			if defined, declared := r.scopes.peek()[e.Name.Lexeme]; declared && !defined {
				r.error(e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(expr, e.Name)

	default:
		panic(fmt.Sprintf("resolve: unknown expression %T", expr))
	}
}

func (r *Resolver) resolveClass(stmt *ast.ClassStmt) {
	enclosingClass := r.currentClass
	defer func() { r.currentClass = enclosingClass }()

	r.currentClass = classTypeClass

	r.declare(stmt.Name)
	r.define(stmt.Name)

	if stmt.Superclass != nil && stmt.Name.Lexeme == stmt.Superclass.Name.Lexeme {
		r.error(stmt.Superclass.Name, "A class can't inherit from itself.")
	}

	if stmt.Superclass != nil {
		r.currentClass = classTypeSubClass
		r.resolveExpr(stmt.Superclass)

		// methods of a subclass resolve inside an extra scope
		// holding "super"
		r.beginScope()
		defer r.endScope()
		r.scopes.peek()["super"] = true
	}

	r.beginScope()
	r.scopes.peek()["this"] = true

	for _, method := range stmt.Methods {
		declaration := functionTypeMethod
		if method.Name.Lexeme == "init" {
			declaration = functionTypeInitializer
		}
		r.resolveFunction(method, declaration)
	}

	r.endScope()
}

// resolveFunction resolves a function statement. It begins a new scope
// for the parameters and resolves the body within it. The loop depth
// resets: a break in the body can't target a loop outside the function.
func (r *Resolver) resolveFunction(function *ast.FunctionStmt, fnType functionType) {
	enclosingFunction := r.currentFunction
	enclosingLoopDepth := r.loopDepth
	r.currentFunction = fnType
	r.loopDepth = 0
	defer func() {
		r.currentFunction = enclosingFunction
		r.loopDepth = enclosingLoopDepth
	}()

	r.beginScope()
	for _, param := range function.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(function.Body)
	r.endScope()
}

func (r *Resolver) beginScope() {
	r.scopes.push(make(scope))
}

func (r *Resolver) endScope() {
	r.scopes.pop()
}

// declare a variable name within the current scope. Redeclaring a name
// in the same local scope is an error.
func (r *Resolver) declare(name ast.Token) {
	// the global scope is not tracked
	if len(r.scopes) == 0 {
		return
	}

	sc := r.scopes.peek()
	if _, ok := sc[name.Lexeme]; ok {
		r.error(name, "Already a variable with this name in this scope.")
	}
	sc[name.Lexeme] = false
}

// define marks a variable's initializer as finished
func (r *Resolver) define(name ast.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes.peek()[name.Lexeme] = true
}

// resolveLocal records the depth of a variable access: the number of
// scopes between the access and the scope declaring the name. A name
// found in no enclosing scope is left unresolved and looked up in the
// global environment at run time.
func (r *Resolver) resolveLocal(expr ast.Expr, name ast.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.interpreter.Resolve(expr, len(r.scopes)-1-i)
			return
		}
	}
}

func (r *Resolver) error(token ast.Token, message string) {
	r.errs = append(r.errs, Error{Token: token, Message: message})
}
