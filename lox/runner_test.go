package lox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPrograms(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"block scoping",
			`
var a = "global a";
{
  var a = "outer a";
  {
    var a = "inner a";
    print a;
  }
  print a;
}
print a;
`,
			"inner a\nouter a\nglobal a\n",
		},
		{
			"closures capture the defining scope",
			`
var a = "global";
{
  fun show() { print a; }
  show();
  var a = "block";
  show();
}
`,
			"global\nglobal\n",
		},
		{
			"counters are independent",
			`
fun makeCounter() {
  var i = 0;
  fun count() {
    i = i + 1;
    return i;
  }
  return count;
}
var a = makeCounter();
var b = makeCounter();
print a();
print a();
print b();
`,
			"1\n2\n1\n",
		},
		{
			"recursion",
			`
fun fib(n) {
  if (n < 2) return n;
  return fib(n - 1) + fib(n - 2);
}
print fib(10);
`,
			"55\n",
		},
		{
			"while with break",
			`
var i = 0;
while (true) {
  i = i + 1;
  if (i == 3) break;
}
print i;
`,
			"3\n",
		},
		{
			"continue still runs the for increment",
			`
for (var i = 0; i < 3; i = i + 1) {
  if (i == 1) continue;
  print i;
}
`,
			"0\n2\n",
		},
		{
			"break leaves only the innermost loop",
			`
var s = "";
for (var i = 0; i < 2; i = i + 1) {
  for (var j = 0; j < 5; j = j + 1) {
    if (j == 1) break;
    s = s + "x";
  }
}
print s;
`,
			"xx\n",
		},
		{
			"return unwinds through nested loops",
			`
fun firstOver(limit) {
  for (var i = 0; ; i = i + 1) {
    if (i > limit) return i;
  }
}
print firstOver(4);
`,
			"5\n",
		},
		{
			"class with initializer",
			`
class Point {
  init(x, y) {
    this.x = x;
    this.y = y;
  }
}
var p = Point(1, 2);
print p.x + p.y;
`,
			"3\n",
		},
		{
			"bare return in an initializer yields the instance",
			`
class Guard {
  init(ok) {
    if (!ok) return;
    this.ready = true;
  }
}
print type(Guard(false));
`,
			"instance\n",
		},
		{
			"methods bind this",
			`
class Person {
  init(name) { this.name = name; }
  sayName() { print this.name; }
}
var m = Person("Jane").sayName;
m();
`,
			"Jane\n",
		},
		{
			"inherited methods",
			`
class A {
  greet() { return "hello from A"; }
}
class B < A {}
print B().greet();
`,
			"hello from A\n",
		},
		{
			"overridden methods dispatch on the dynamic class",
			`
class A { m() { return "A"; } }
class B < A { m() { return "B"; } }
fun call(obj) { return obj.m(); }
print call(A());
print call(B());
`,
			"A\nB\n",
		},
		{
			"super resolves past the overriding class",
			`
class A {
  method() { print "A method"; }
}
class B < A {
  method() { print "B method"; }
  test() { super.method(); }
}
class C < B {}
C().test();
`,
			"A method\n",
		},
		{
			"super call combined with the override",
			`
class A { m() { return "A.m"; } }
class B < A { m() { return "via " + super.m(); } }
print B().m();
`,
			"via A.m\n",
		},
		{
			"fields are per instance",
			`
class Box {}
var a = Box();
var b = Box();
a.v = 1;
b.v = 2;
print a.v;
print b.v;
`,
			"1\n2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			outcome := NewRunner(&out).Run(tt.source)

			require.Equal(t, ClassOK, outcome.Class)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRunClassifications(t *testing.T) {
	t.Run("parse error", func(t *testing.T) {
		var out bytes.Buffer
		outcome := NewRunner(&out).Run("var 1 = 2;")

		assert.Equal(t, ClassStaticError, outcome.Class)
		require.NotEmpty(t, outcome.StaticErrors)
		assert.Contains(t, outcome.StaticErrors[0].Error(), "Expect variable name.")
		assert.Empty(t, out.String())
	})

	t.Run("scan and parse errors surface together", func(t *testing.T) {
		outcome := NewRunner(&bytes.Buffer{}).Run("print @;")

		assert.Equal(t, ClassStaticError, outcome.Class)
		require.Len(t, outcome.StaticErrors, 2)
		assert.Contains(t, outcome.StaticErrors[0].Error(), "Unexpected character.")
		assert.Contains(t, outcome.StaticErrors[1].Error(), "Expect expression.")
	})

	t.Run("resolution error", func(t *testing.T) {
		outcome := NewRunner(&bytes.Buffer{}).Run("break;")

		assert.Equal(t, ClassStaticError, outcome.Class)
		require.Len(t, outcome.StaticErrors, 1)
		assert.Contains(t, outcome.StaticErrors[0].Error(), "Can't use 'break' outside of a loop.")
	})

	t.Run("runtime error keeps earlier output", func(t *testing.T) {
		var out bytes.Buffer
		outcome := NewRunner(&out).Run("print 1;\nprint missing;\nprint 2;")

		assert.Equal(t, ClassRuntimeError, outcome.Class)
		assert.EqualError(t, outcome.RuntimeError, "[line 2] Undefined variable 'missing'.")
		assert.Equal(t, "1\n", out.String())
	})

	t.Run("undefined property halts the run", func(t *testing.T) {
		var out bytes.Buffer
		outcome := NewRunner(&out).Run("class A {}\nprint A().missing;")

		assert.Equal(t, ClassRuntimeError, outcome.Class)
		assert.EqualError(t, outcome.RuntimeError, "[line 2] Undefined property 'missing'.")
	})
}

func TestRunnerStatePersists(t *testing.T) {
	var out bytes.Buffer
	runner := NewRunner(&out)

	require.Equal(t, ClassOK, runner.Run("var a = 1;").Class)
	require.Equal(t, ClassOK, runner.Run("fun next() { a = a + 1; return a; }").Class)
	require.Equal(t, ClassOK, runner.Run("print next(); print next();").Class)
	assert.Equal(t, "2\n3\n", out.String())

	// a failed run leaves earlier state intact
	assert.Equal(t, ClassStaticError, runner.Run("continue;").Class)
	assert.Equal(t, ClassRuntimeError, runner.Run("print nope;").Class)
	require.Equal(t, ClassOK, runner.Run("print a;").Class)
	assert.Equal(t, "2\n3\n3\n", out.String())
}
