package interpret_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golox/interpret"
	"golox/parse"
	"golox/resolve"
	"golox/scan"
)

// run executes source through the full pipeline and returns what the
// program printed, along with any runtime error.
func run(t *testing.T, source string) (string, error) {
	t.Helper()

	tokens, scanErrs := scan.NewScanner(source).ScanTokens()
	require.Empty(t, scanErrs)
	stmts, parseErrs := parse.NewParser(tokens).Parse()
	require.Empty(t, parseErrs)

	var out bytes.Buffer
	in := interpret.NewInterpreter(&out)
	require.Empty(t, resolve.NewResolver(in).Resolve(stmts))

	err := in.Interpret(stmts)
	return out.String(), err
}

func TestInterpretExpressions(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"arithmetic precedence",
			"print 1 + 2 * 3;",
			"7\n",
		},
		{
			"number formatting drops the trailing zero",
			"print 10; print 0.5; print 2.50; print -0.25;",
			"10\n0.5\n2.5\n-0.25\n",
		},
		{
			"division by zero follows IEEE-754",
			"print 1 / 0; print -1 / 0; print 0 / 0;",
			"+Inf\n-Inf\nNaN\n",
		},
		{
			"string concatenation",
			`print "foo" + "bar";`,
			"foobar\n",
		},
		{
			"unary operators",
			"print -(-3); print !nil; print !0;",
			"3\ntrue\nfalse\n",
		},
		{
			"only nil and false are falsy",
			`if (0) print "zero"; if ("") print "empty"; if (nil) print "nil";`,
			"zero\nempty\n",
		},
		{
			"logical operators return their operands",
			`print nil or "fallback"; print 1 and 2; print false and 3; print "x" or 2;`,
			"fallback\n2\nfalse\nx\n",
		},
		{
			"equality",
			`print 1 == 1; print 1 == "1"; print nil == nil; print nil == false; print "a" != "b";`,
			"true\nfalse\ntrue\nfalse\ntrue\n",
		},
		{
			"comparison",
			"print 1 < 2; print 2 <= 2; print 3 > 4; print 4 >= 4;",
			"true\ntrue\nfalse\ntrue\n",
		},
		{
			"grouping overrides precedence",
			"print (1 + 2) * 3;",
			"9\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInterpretRuntimeErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"mixed operand addition",
			`print 1 + "a";`,
			"[line 1] Operands must be two numbers or two strings.",
		},
		{
			"string comparison",
			`print "a" < "b";`,
			"[line 1] Operands must be numbers.",
		},
		{
			"negating a string",
			`print -"a";`,
			"[line 1] Operand must be a number.",
		},
		{
			"undefined variable",
			"print q;",
			"[line 1] Undefined variable 'q'.",
		},
		{
			"undefined assignment target",
			"q = 1;",
			"[line 1] Undefined variable 'q'.",
		},
		{
			"calling a non-callable",
			`"not a function"();`,
			"[line 1] Can only call functions and classes.",
		},
		{
			"arity mismatch",
			"fun f(a) {}\nf(1, 2);",
			"[line 2] Expected 1 arguments but got 2.",
		},
		{
			"property access on a non-instance",
			"var a = 1;\nprint a.field;",
			"[line 2] Only instances have properties.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.source)
			require.Error(t, err)
			assert.EqualError(t, err, tt.want)
			assert.Empty(t, out)
		})
	}
}

func TestInterpretHaltsOnFirstError(t *testing.T) {
	out, err := run(t, "print 1;\nprint q;\nprint 2;")
	assert.EqualError(t, err, "[line 2] Undefined variable 'q'.")
	assert.Equal(t, "1\n", out)
}

func TestNatives(t *testing.T) {
	t.Run("type names", func(t *testing.T) {
		out, err := run(t, `
print type(nil);
print type(true);
print type(1);
print type("s");
print type(clock);
class A {}
print type(A);
print type(A());
fun f() {}
print type(f);
`)
		require.NoError(t, err)
		assert.Equal(t, "nil\nboolean\nnumber\nstring\nfunction\nclass\ninstance\nfunction\n", out)
	})

	t.Run("round", func(t *testing.T) {
		out, err := run(t, "print round(2.4); print round(2.5); print round(-2.5);")
		require.NoError(t, err)
		assert.Equal(t, "2\n3\n-3\n", out)
	})

	t.Run("round rejects non-numbers", func(t *testing.T) {
		_, err := run(t, `round("x");`)
		assert.EqualError(t, err, "[line 1] Argument to 'round' must be a number.")
	})

	t.Run("randint stays in range", func(t *testing.T) {
		out, err := run(t, "var n = randint(1, 3);\nprint n >= 1 and n <= 3;")
		require.NoError(t, err)
		assert.Equal(t, "true\n", out)
	})

	t.Run("randint rejects an empty range", func(t *testing.T) {
		_, err := run(t, "randint(2, 1);")
		assert.EqualError(t, err, "[line 1] Empty 'randint' range [2, 1].")
	})

	t.Run("rand is in the unit interval", func(t *testing.T) {
		out, err := run(t, "var r = rand();\nprint r >= 0 and r < 1;")
		require.NoError(t, err)
		assert.Equal(t, "true\n", out)
	})

	t.Run("clock returns a number", func(t *testing.T) {
		out, err := run(t, "print type(clock());")
		require.NoError(t, err)
		assert.Equal(t, "number\n", out)
	})
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "nil", interpret.Stringify(nil))
	assert.Equal(t, "true", interpret.Stringify(true))
	assert.Equal(t, "3.5", interpret.Stringify(3.5))
	assert.Equal(t, "42", interpret.Stringify(42.0))
	assert.Equal(t, "hi", interpret.Stringify("hi"))
}

func TestStringifyCallables(t *testing.T) {
	out, err := run(t, `
fun add(a, b) { return a + b; }
class Counter {}
print add;
print Counter;
print Counter();
print clock;
`)
	require.NoError(t, err)
	assert.Equal(t, "<fn add>\nCounter\nCounter instance\n<native fn clock>\n", out)
}
