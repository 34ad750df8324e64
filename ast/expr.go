package ast

// Expr is an expression node. The set of expression kinds is closed:
// the resolver and interpreter dispatch over it with exhaustive type
// switches. Nodes are always handled as pointers and never copied after
// parsing, so a node's pointer doubles as its identity in the
// resolver's side table.
type Expr interface {
	exprNode()
}

type AssignExpr struct {
	Name  Token
	Value Expr
}

type BinaryExpr struct {
	Left     Expr
	Operator Token
	Right    Expr
}

type CallExpr struct {
	Callee    Expr
	Paren     Token
	Arguments []Expr
}

type GetExpr struct {
	Object Expr
	Name   Token
}

type GroupingExpr struct {
	Expression Expr
}

type LiteralExpr struct {
	Value interface{}
}

type LogicalExpr struct {
	Left     Expr
	Operator Token
	Right    Expr
}

type SetExpr struct {
	Object Expr
	Name   Token
	Value  Expr
}

type SuperExpr struct {
	Keyword Token
	Method  Token
}

type ThisExpr struct {
	Keyword Token
}

type UnaryExpr struct {
	Operator Token
	Right    Expr
}

type VariableExpr struct {
	Name Token
}

func (*AssignExpr) exprNode()   {}
func (*BinaryExpr) exprNode()   {}
func (*CallExpr) exprNode()     {}
func (*GetExpr) exprNode()      {}
func (*GroupingExpr) exprNode() {}
func (*LiteralExpr) exprNode()  {}
func (*LogicalExpr) exprNode()  {}
func (*SetExpr) exprNode()      {}
func (*SuperExpr) exprNode()    {}
func (*ThisExpr) exprNode()     {}
func (*UnaryExpr) exprNode()    {}
func (*VariableExpr) exprNode() {}
