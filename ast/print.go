package ast

import (
	"fmt"
	"strings"
)

// Printer renders nodes as S-expressions, mainly for parser tests
// and debugging.
type Printer struct{}

// Print returns a string representation of an Expr node
func (p Printer) Print(expr Expr) string {
	switch e := expr.(type) {
	case *AssignExpr:
		return p.parenthesize("= "+e.Name.Lexeme, e.Value)
	case *BinaryExpr:
		return p.parenthesize(e.Operator.Lexeme, e.Left, e.Right)
	case *CallExpr:
		return p.parenthesize("call", append([]Expr{e.Callee}, e.Arguments...)...)
	case *GetExpr:
		return p.parenthesize("get "+e.Name.Lexeme, e.Object)
	case *GroupingExpr:
		return p.parenthesize("group", e.Expression)
	case *LiteralExpr:
		if e.Value == nil {
			return "nil"
		}
		if s, ok := e.Value.(string); ok {
			return fmt.Sprintf("%q", s)
		}
		return fmt.Sprint(e.Value)
	case *LogicalExpr:
		return p.parenthesize(e.Operator.Lexeme, e.Left, e.Right)
	case *SetExpr:
		return p.parenthesize("set "+e.Name.Lexeme, e.Object, e.Value)
	case *SuperExpr:
		return "(super " + e.Method.Lexeme + ")"
	case *ThisExpr:
		return "this"
	case *UnaryExpr:
		return p.parenthesize(e.Operator.Lexeme, e.Right)
	case *VariableExpr:
		return e.Name.Lexeme
	}
	panic(fmt.Sprintf("ast: unknown expression %T", expr))
}

// PrintStmts returns a space-joined string representation of a
// statement list
func (p Printer) PrintStmts(stmts []Stmt) string {
	parts := make([]string, len(stmts))
	for i, stmt := range stmts {
		parts[i] = p.printStmt(stmt)
	}
	return strings.Join(parts, " ")
}

func (p Printer) printStmt(stmt Stmt) string {
	switch s := stmt.(type) {
	case *BlockStmt:
		return "(block " + p.PrintStmts(s.Statements) + ")"
	case *BreakStmt:
		return "(break)"
	case *ClassStmt:
		str := "(class " + s.Name.Lexeme
		if s.Superclass != nil {
			str += " < " + s.Superclass.Name.Lexeme
		}
		for _, method := range s.Methods {
			str += " " + p.printStmt(method)
		}
		return str + ")"
	case *ContinueStmt:
		return "(continue)"
	case *ExpressionStmt:
		return "(expr " + p.Print(s.Expr) + ")"
	case *FunctionStmt:
		str := "(fun " + s.Name.Lexeme + " ("
		for i, param := range s.Params {
			if i > 0 {
				str += " "
			}
			str += param.Lexeme
		}
		return str + ") " + p.PrintStmts(s.Body) + ")"
	case *IfStmt:
		str := "(if " + p.Print(s.Condition) + " " + p.printStmt(s.ThenBranch)
		if s.ElseBranch != nil {
			str += " " + p.printStmt(s.ElseBranch)
		}
		return str + ")"
	case *PrintStmt:
		return "(print " + p.Print(s.Expr) + ")"
	case *ReturnStmt:
		if s.Value == nil {
			return "(return)"
		}
		return "(return " + p.Print(s.Value) + ")"
	case *VarStmt:
		if s.Initializer == nil {
			return "(var " + s.Name.Lexeme + ")"
		}
		return "(var " + s.Name.Lexeme + " " + p.Print(s.Initializer) + ")"
	case *WhileStmt:
		str := "(while " + p.Print(s.Condition) + " " + p.printStmt(s.Body)
		if s.Increment != nil {
			str += " " + p.Print(s.Increment)
		}
		return str + ")"
	}
	panic(fmt.Sprintf("ast: unknown statement %T", stmt))
}

func (p Printer) parenthesize(name string, exprs ...Expr) string {
	var str string

	str += "(" + name
	for _, expr := range exprs {
		str += " " + p.Print(expr)
	}
	str += ")"

	return str
}
