package ast

// Stmt is a statement or declaration node.
type Stmt interface {
	stmtNode()
}

type BlockStmt struct {
	Statements []Stmt
}

type BreakStmt struct {
	Keyword Token
}

type ClassStmt struct {
	Name       Token
	Superclass *VariableExpr
	Methods    []*FunctionStmt
}

type ContinueStmt struct {
	Keyword Token
}

type ExpressionStmt struct {
	Expr Expr
}

type FunctionStmt struct {
	Name   Token
	Params []Token
	Body   []Stmt
}

type IfStmt struct {
	Condition  Expr
	ThenBranch Stmt
	ElseBranch Stmt
}

type PrintStmt struct {
	Expr Expr
}

type ReturnStmt struct {
	Keyword Token
	Value   Expr
}

type VarStmt struct {
	Name        Token
	Initializer Expr
}

// WhileStmt is a while loop. Increment is nil for a source-level while;
// the parser's for-loop desugaring fills it in so that continue still
// runs the increment before the next condition check.
type WhileStmt struct {
	Condition Expr
	Body      Stmt
	Increment Expr
}

func (*BlockStmt) stmtNode()      {}
func (*BreakStmt) stmtNode()      {}
func (*ClassStmt) stmtNode()      {}
func (*ContinueStmt) stmtNode()   {}
func (*ExpressionStmt) stmtNode() {}
func (*FunctionStmt) stmtNode()   {}
func (*IfStmt) stmtNode()         {}
func (*PrintStmt) stmtNode()      {}
func (*ReturnStmt) stmtNode()     {}
func (*VarStmt) stmtNode()        {}
func (*WhileStmt) stmtNode()      {}
