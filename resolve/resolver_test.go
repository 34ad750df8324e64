package resolve

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golox/ast"
	"golox/interpret"
	"golox/parse"
	"golox/scan"
)

func resolveSource(t *testing.T, source string) []Error {
	t.Helper()
	tokens, scanErrs := scan.NewScanner(source).ScanTokens()
	require.Empty(t, scanErrs)
	stmts, parseErrs := parse.NewParser(tokens).Parse()
	require.Empty(t, parseErrs)
	return NewResolver(interpret.NewInterpreter(io.Discard)).Resolve(stmts)
}

func TestResolveValidPrograms(t *testing.T) {
	sources := []string{
		"var a = 1; { var a = a + 1; print a; }",
		"fun f() { return 1; } print f();",
		"while (true) { break; }",
		"for (var i = 0; i < 3; i = i + 1) { continue; }",
		"class A { init() { this.x = 1; return; } get() { return this.x; } }",
		"class A { f() {} } class B < A { f() { return super.f(); } }",
		"fun outer() { var x = 1; fun inner() { return x; } return inner; }",
	}

	for _, source := range sources {
		assert.Empty(t, resolveSource(t, source), "source: %s", source)
	}
}

func TestResolveStaticErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
	}{
		{
			"return at top level",
			"return 1;",
			"Can't return from top-level code.",
		},
		{
			"value return from initializer",
			"class A { init() { return 1; } }",
			"Can't return a value from an initializer.",
		},
		{
			"break outside loop",
			"break;",
			"Can't use 'break' outside of a loop.",
		},
		{
			"continue outside loop",
			"continue;",
			"Can't use 'continue' outside of a loop.",
		},
		{
			"break in function does not see enclosing loop",
			"while (true) { fun f() { break; } }",
			"Can't use 'break' outside of a loop.",
		},
		{
			"this outside class",
			"print this;",
			"Can't use 'this' outside of a class.",
		},
		{
			"this in plain function",
			"fun f() { return this; }",
			"Can't use 'this' outside of a class.",
		},
		{
			"super outside class",
			"print super.f();",
			"Can't use 'super' outside of a class.",
		},
		{
			"super without superclass",
			"class A { f() { return super.f(); } }",
			"Can't use 'super' in a class with no superclass.",
		},
		{
			"variable read in its own initializer",
			"{ var a = a; }",
			"Can't read local variable in its own initializer.",
		},
		{
			"redeclaration in the same scope",
			"fun f() { var a = 1; var a = 2; }",
			"Already a variable with this name in this scope.",
		},
		{
			"class inheriting from itself",
			"class A < A {}",
			"A class can't inherit from itself.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := resolveSource(t, tt.source)
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.message, errs[0].Message)
		})
	}
}

func TestResolveAccumulatesErrors(t *testing.T) {
	errs := resolveSource(t, "return 1;\nbreak;\nprint this;")
	assert.Len(t, errs, 3)
}

func TestResolveDepths(t *testing.T) {
	// the same name at different source positions resolves to
	// different depths
	source := `
var a = "global";
{
  var a = "outer";
  {
    print a;
    {
      print a;
    }
  }
}
`
	tokens, scanErrs := scan.NewScanner(source).ScanTokens()
	require.Empty(t, scanErrs)
	stmts, parseErrs := parse.NewParser(tokens).Parse()
	require.Empty(t, parseErrs)

	in := interpret.NewInterpreter(io.Discard)
	depths := map[int]int{} // source line -> depth
	r := NewResolver(in)
	errs := r.Resolve(stmts)
	require.Empty(t, errs)

	collectPrintDepths(t, in, stmts, depths)
	assert.Equal(t, map[int]int{6: 1, 8: 2}, depths)
}

func collectPrintDepths(t *testing.T, in *interpret.Interpreter, stmts []ast.Stmt, depths map[int]int) {
	t.Helper()
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.BlockStmt:
			collectPrintDepths(t, in, s.Statements, depths)
		case *ast.PrintStmt:
			v, ok := s.Expr.(*ast.VariableExpr)
			require.True(t, ok)
			depth, ok := in.Depth(v)
			require.True(t, ok)
			depths[v.Name.Line] = depth
		}
	}
}
