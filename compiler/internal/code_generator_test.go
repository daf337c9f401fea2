package internal

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run checks content and runs it with input as standard input. It returns what the program
// wrote, the register listing included.
func run(t *testing.T, content string, input string) (string, *Interpreter, error) {
	table, program, err := buildTable(t, content)
	require.Nil(t, err, content)
	out := &bytes.Buffer{}
	opts := &Options{Out: out, In: strings.NewReader(input), NoWarnings: true, Code: true}
	checker := NewTypeChecker(table, opts)
	require.Nil(t, checker.Check(program), content)
	interpreter := NewInterpreter(table, opts)
	err = interpreter.Run(program)
	return out.String(), interpreter, err
}

func registerValue(t *testing.T, interpreter *Interpreter, name string) Value {
	register := interpreter.Registers().Lookup(name)
	require.NotNil(t, register, name)
	return register.Value()
}

func TestInterpreter_Registers(t *testing.T) {
	out, interpreter, err := run(t, "int x; x = 3; int y; y = x + 2;", "")
	require.Nil(t, err)
	assert.Equal(t, "Name: x = 3 at 0\nName: y = 5 at 1\n", out)
	assert.Equal(t, 3, registerValue(t, interpreter, "x").Int)
	assert.Equal(t, 5, registerValue(t, interpreter, "y").Int)

	out, interpreter, err = run(t, "int f(int a) { return a+1; } int x; x = f(4);", "")
	require.Nil(t, err)
	assert.Equal(t, "Name: x = 5 at 0\nName: f = 5 at 1\nName: a = 4 at 2\n", out)
	assert.Equal(t, 5, registerValue(t, interpreter, "x").Int)
}

func TestInterpreter_Arithmetic(t *testing.T) {
	testData := []struct {
		content string
		name    string
		value   Value
	}{
		{content: "int r; r = 10 - 4 - 3;", name: "r", value: intValue(9)},
		{content: "int r; r = 2 * 3 + 4;", name: "r", value: intValue(14)},
		{content: "int r; r = (2 * 3) + 4;", name: "r", value: intValue(10)},
		{content: "int r; r = 7 / 2;", name: "r", value: intValue(3)},
		{content: "double d; d = 7 / 2;", name: "d", value: realValue(3.5)},
		{content: "int i; i = 7 / 2.0;", name: "i", value: intValue(3)},
		{content: "int i; i = (int) 3.9 + 1;", name: "i", value: intValue(4)},
		{content: "double h; h = (double) 7 / 2;", name: "h", value: realValue(3.5)},
		{content: "char c; c = 'a' + 1;", name: "c", value: charValue('b')},
		{content: "char c; c = 127 + 1;", name: "c", value: charValue(-128)},
		{content: "int r; r = 2147483647; r = r + 1;", name: "r", value: intValue(-2147483648)},
		{content: "int r; r = 65536 * 65536;", name: "r", value: intValue(0)},
		{content: "int r; r = 4294967297;", name: "r", value: intValue(1)},
		{content: "int r; double d; d = 3e10; r = d;", name: "r", value: intValue(-64771072)},
		{content: "int a; a = -3;", name: "a", value: intValue(-3)},
		{content: "int a; int b; a = 4; b = -a * 2;", name: "b", value: intValue(-8)},
		{content: "double d = 1.5; int i = 2; d = d * i;", name: "d", value: realValue(3)},
		{content: "int a; a = 3 > 2;", name: "a", value: intValue(1)},
		{content: "int a; a = 2.5 > 2;", name: "a", value: intValue(1)},
		{content: "int a; a = 1 && 0 || 1;", name: "a", value: intValue(1)},
		{content: "int a; int b; int c; a = b = c = 7;", name: "a", value: intValue(7)},
		{content: "double d; d = 1.0 / 0.0 > 1;", name: "d", value: realValue(1)},
	}
	for _, data := range testData {
		_, interpreter, err := run(t, data.content, "")
		require.Nil(t, err, data.content)
		assert.Equal(t, data.value, registerValue(t, interpreter, data.name), data.content)
	}
}

func TestInterpreter_Output(t *testing.T) {
	testData := []struct {
		content string
		input   string
		output  string
	}{
		{
			content: `int fact(int n) {
	if (n <= 1) return 1;
	return n * fact(n - 1);
}
int main() {
	int i;
	for (i = 1; i <= 5; i = i + 1) {
		put_i(fact(i));
	}
	return 0;
}`,
			output: "1\n2\n6\n24\n120\n",
		},
		{content: "int i; i = 0; while (1) { i = i + 1; if (i == 3) break; } put_i(i);", output: "3\n"},
		{content: "int i; for (i = 0; i < 10; i = i + 1) if (i == 4) break; put_i(i);", output: "4\n"},
		{content: "int a; a = 0; if (a != 0 && 10 / a > 1) put_i(1); else put_i(2);", output: "2\n"},
		{content: "int a; a = 0; if (a == 0 || 10 / a > 1) put_i(1); else put_i(2);", output: "1\n"},
		{content: "int a; a = -3; put_i(-a); put_i(!a); put_i(!0);", output: "3\n0\n1\n"},
		{content: "double d; d = 2.5; put_i(d > 2); put_d(d);", output: "1\n2.500000\n"},
		{content: "put_c('x'); put_c('a' + 2);", output: "x\nc\n"},
		{content: "int v[3]; int i; for (i = 0; i < 3; i = i + 1) v[i] = i * i; put_i(v[2]);", output: "4\n"},
		{content: "char s[10]; s = \"hi\"; put_s(s); put_s(\"there\");", output: "hi\nthere\n"},
		{content: "char t[] = \"abc\"; put_s(t);", output: "abc\n"},
		{content: "char s[10]; char t[10]; s = \"copy\"; t = s; put_s(t);", output: "copy\n"},
		{
			content: `void fill(int v[], int n) {
	int i;
	for (i = 0; i < n; i = i + 1) v[i] = 7;
	return;
}
int w[3];
fill(w, 3);
put_i(w[1]);`,
			output: "7\n",
		},
		{
			content: "struct point { int x; double y; } p, q; p.x = 1; p.y = 2.5; q = p; put_i(q.x); put_d(q.y);",
			output:  "1\n2.500000\n",
		},
		{
			content: `struct point { int x; };
int getx(struct point p) {
	p.x = p.x + 1;
	return p.x;
}
struct point a;
a.x = 4;
put_i(getx(a));
put_i(a.x);`,
			output: "5\n4\n",
		},
		{content: "struct point { int x; } ps[2]; ps[1].x = 9; put_i(ps[1].x);", output: "9\n"},
		{content: "int g; int main() { g = 4; put_i(g); return 0; } g = g + 1; put_i(g);", output: "4\n5\n"},
		{content: "void p() { put_i(1); return; } put_i(2);", output: "2\n"},
		{content: "int a; a = 1; { int a; a = 2; put_i(a); } put_i(a);", output: "2\n1\n"},
		{content: "int n; n = 3; int v[n + 1]; v[3] = 8; put_i(v[3]);", output: "8\n"},
		{content: "int f(int a) { if (a > 0) return 1; } put_i(f(0));", output: "0\n"},
		{
			content: "int i; double d; char c; char s[20]; i = get_i(); d = get_d(); c = get_c(); get_c(); get_s(s); put_i(i); put_d(d); put_c(c); put_s(s);",
			input:   "42\n3.5\nz\nhello world\n",
			output:  "42\n3.500000\nz\nhello world\n",
		},
		{content: "int i; i = get_i(); put_i(i + 1);", input: "41", output: "42\n"},
	}
	for _, data := range testData {
		out, _, err := run(t, data.content, data.input)
		require.Nil(t, err, data.content)
		assert.True(t, strings.HasPrefix(out, data.output), "%s: %q", data.content, out)
	}
}

func TestInterpreter_Listing(t *testing.T) {
	out, _, err := run(t, "int v[3]; v[1] = 2; char c; c = 'a'; double d; d = 0.5;", "")
	require.Nil(t, err)
	assert.Equal(t, "Name: v = [0 2 0] at 0\nName: c = 'a' at 3\nName: d = 0.500000 at 4\n", out)

	out, _, err = run(t, "struct point { int x; int y; } p; p.y = 3;", "")
	require.Nil(t, err)
	assert.Equal(t, "Name: p.x = 0 at 0\nName: p.y = 3 at 1\n", out)
}

func TestInterpreter_DeclarationsReuseRegisters(t *testing.T) {
	out, interpreter, err := run(t, "int i; for (i = 0; i < 3; i = i + 1) { int k; k = k + i; }", "")
	require.Nil(t, err)
	assert.Len(t, interpreter.Registers().Registers(), 2)
	assert.Contains(t, out, "Name: k = 2 at 1")

	out, interpreter, err = run(t, "int k; for (k = 0; k < 3; k = k + 1) { int w[k + 1]; w[k] = k + 5; put_i(w[k]); }", "")
	require.Nil(t, err)
	assert.True(t, strings.HasPrefix(out, "5\n6\n7\n"), out)
	assert.Len(t, interpreter.Registers().Registers(), 4)
	assert.Len(t, interpreter.Registers().Lookup("w").Values, 3)

	_, interpreter, err = run(t, "int k; for (k = 0; k < 3; k = k + 1) { int w[2 * 2]; w[k] = k; }", "")
	require.Nil(t, err)
	assert.Len(t, interpreter.Registers().Registers(), 2)
}

func TestInterpreter_Break(t *testing.T) {
	testData := []struct {
		content string
		output  string
	}{
		{content: "int f() { int i; i = 1; if (i) { break; } return 3; } int x; x = f(); put_i(x);", output: "3\n"},
		{content: "break; put_i(1);", output: "1\n"},
		{content: "int i; i = 0; { break; i = 2; } put_i(i);", output: "2\n"},
		{
			content: `int f() {
	int i;
	int n;
	n = 0;
	for (i = 0; i < 3; i = i + 1) {
		while (1) { break; }
		n = n + 1;
	}
	return n;
}
put_i(f());`,
			output: "3\n",
		},
		{
			content: "int g() { break; return 4; } int i; for (i = 0; i < 2; i = i + 1) put_i(g());",
			output:  "4\n4\n",
		},
	}
	for _, data := range testData {
		out, _, err := run(t, data.content, "")
		require.Nil(t, err, data.content)
		assert.True(t, strings.HasPrefix(out, data.output), "%s: %q", data.content, out)
	}
}

func TestInterpreter_NestedStructs(t *testing.T) {
	content := `struct inner { int x; char c; };
struct outer { struct inner p; int n; };
struct inner s, t;
struct outer q, r;
s.x = 7;
s.c = 'k';
r.p = s;
r.n = 2;
q = r;
t = q.p;
put_i(t.x);
put_c(t.c);
put_i(q.n);`
	out, interpreter, err := run(t, content, "")
	require.Nil(t, err)
	assert.True(t, strings.HasPrefix(out, "7\nk\n2\n"), out)
	assert.Equal(t, intValue(7), registerValue(t, interpreter, "q.p.x"))
	assert.Equal(t, charValue('k'), registerValue(t, interpreter, "q.p.c"))
}

func TestInterpreter_Seconds(t *testing.T) {
	_, interpreter, err := run(t, "double t; t = seconds();", "")
	require.Nil(t, err)
	assert.GreaterOrEqual(t, registerValue(t, interpreter, "t").Real, 0.0)
}

func TestInterpreter_Errors(t *testing.T) {
	testData := []struct {
		content string
		input   string
		target  error
		msg     string
	}{
		{content: "int a; a = 1 / 0;", target: ErrRuntime, msg: "division by zero at line 1"},
		{content: "int v[2]; v[2] = 1;", target: ErrRuntime, msg: "index 2 out of range of vector v with 2 elements"},
		{content: "int v[2]; int a; a = v[-1];", target: ErrRuntime, msg: "index -1 out of range"},
		{content: "int i; i = get_i();", target: ErrRuntime, msg: "no input left for get_i"},
		{content: "char c; c = get_c();", target: ErrRuntime, msg: "no input left for get_c"},
		{content: "int i; i = get_i();", input: "forty\n", target: ErrRuntime, msg: "\"forty\" is not an integer"},
		{content: "double d; d = get_d();", input: "x\n", target: ErrRuntime, msg: "\"x\" is not a double"},
		{content: "int n; n = 0 - 1; int v[n];", target: ErrRuntime, msg: "negative size -1 of vector v"},
		{content: "int f(int n) { return f(n + 1); } f(0);", target: ErrRuntime, msg: "too many nested calls of f"},
		{content: "struct s { int x; } a; struct s f() { return a; } struct s b; b = f();", target: ErrOpcodeNotFound,
			msg: "OP CODE NOT FOUND! O_STORE for type STRUCT"},
	}
	for _, data := range testData {
		_, _, err := run(t, data.content, data.input)
		require.NotNil(t, err, data.content)
		assert.True(t, errors.Is(err, data.target), data.content)
		assert.Contains(t, err.Error(), data.msg, data.content)
	}
}

func TestInterpreter_Opcodes(t *testing.T) {
	testData := []struct {
		op   Opcode
		tp   VarType
		name string
	}{
		{op: StoreOpcode, tp: IntVariableType, name: "O_STORE_I"},
		{op: LoadOpcode, tp: CharVariableType, name: "O_LOAD_C"},
		{op: ModifyOpcode, tp: DoubleVariableType, name: "O_MODIFY_D"},
		{op: DivOpcode, tp: IntVariableType, name: "O_DIV_I"},
		{op: LoadFunctionOpcode, tp: VoidVariableType, name: "O_LOAD_F"},
		{op: HaltOpcode, tp: StructVariableType, name: "O_HALT"},
	}
	for _, data := range testData {
		name, err := data.op.typed(data.tp, 1)
		require.Nil(t, err)
		assert.Equal(t, data.name, name)
	}
	_, err := AddOpcode.typed(StructVariableType, 3)
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrOpcodeNotFound))
	assert.Equal(t, "OP CODE NOT FOUND! O_ADD for type STRUCT at line 3", err.Error())
}

func TestInterpreter_Tracing(t *testing.T) {
	teardown := traceToTest(t)
	defer teardown()
	table, program, err := buildTable(t, "int f(int a) { return a+1; } int x; x = f(4);")
	require.Nil(t, err)
	out := &bytes.Buffer{}
	opts := &Options{Out: out, Debug: true, Code: true}
	require.Nil(t, NewTypeChecker(table, opts).Check(program))
	require.Nil(t, NewInterpreter(table, opts).Run(program))
	assert.Contains(t, out.String(), "Name: x = 5 at 0")
}
