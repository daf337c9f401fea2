package internal

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, content string) (*Program, error) {
	tokenizer := &Tokenizer{}
	tokens, err := tokenizer.Tokenize(strings.NewReader(content))
	require.Nil(t, err, content)
	parser := &Parser{}
	return parser.Parse(tokens)
}

func mustParse(t *testing.T, content string) *Program {
	program, err := parse(t, content)
	require.Nil(t, err, content)
	return program
}

func TestParser_Parse(t *testing.T) {
	testData := []struct {
		content    string
		statements int
	}{
		{content: "int a;", statements: 1},
		{content: "int a, *b, c[10], d = 3;", statements: 1},
		{content: "char s[] = \"hello\";", statements: 1},
		{content: "double v[2 + 3];", statements: 1},
		{content: "int x; x = 3; int y; y = x + 2;", statements: 4},
		{content: "struct point { int x; int y; double w[3]; } p, q[2];", statements: 1},
		{content: "struct point { int x; }; struct point p;", statements: 2},
		{content: "int f(int a) { return a+1; } int x; x = f(4);", statements: 3},
		{content: "void g(int a[], char *s, int h(), double d[10]) { return; }", statements: 1},
		{content: "struct point *make(struct point p) { return p; }", statements: 1},
		{content: "int main() { int i; for (i = 0; i < 10; i = i + 1) { if (i == 5) break; } return 0; }",
			statements: 1},
		{content: "int i; for (int j = 0; ; ) { break; }", statements: 2},
		{content: "for (;;) break;", statements: 1},
		{content: "int a; while (a < 3 && !(a == 1) || a != 2) a = a + 1;", statements: 2},
		{content: "int a; if (a) { a = 1; } else if (a > 1) a = 2; else { a = 3; }", statements: 2},
		{content: "int a, b; a = b = 3;", statements: 2},
		{content: "int v[3]; v[0] = v[1] = -v[2];", statements: 2},
		{content: "struct p { int x[2]; } s; s.x[1] = 3;", statements: 2},
		{content: "int a; double d; d = (double) a / 2; a = (int) -d;", statements: 4},
		{content: "int a; a + 1; a < 2; -a; (a);", statements: 5},
		{content: "put_i(1); put_s(\"hi\");", statements: 2},
		{content: "int a; { int b; { int c; } }", statements: 2},
		{content: "int a; a = ((a + 1) * (2));", statements: 2},
		{content: "", statements: 0},
	}
	for _, data := range testData {
		program := mustParse(t, data.content)
		assert.Len(t, program.Statements, data.statements, data.content)
	}
}

func TestParser_Errors(t *testing.T) {
	testData := []string{
		"int ;",
		"int a",
		"x = ;",
		"a b;",
		"}",
		"break",
		"int f() { int g() { return 1; } }",
		"int f(int a)",
		"struct S { int a = 1; };",
		"struct S { int a; }",
		"for (i = 0; i < 3; i = i + 1 { }",
		"while a < 3 a = 1;",
		"if (x > 0 { y = 1; }",
		"int v[3;",
		"f(1, 2;",
		"void a;",
		"x = (int y);",
		"q.p.x = 1;",
		"put_i(q.p.x);",
	}
	for _, content := range testData {
		_, err := parse(t, content)
		assert.NotNil(t, err, content)
		assert.True(t, errors.Is(err, ErrSyntax), content)
	}
}

func TestParser_ParenthesesBalance(t *testing.T) {
	tokenizer := &Tokenizer{}
	tokens, err := tokenizer.Tokenize(strings.NewReader("int x, y; if (x > 0) { y = 1; }"))
	require.Nil(t, err)
	parser := &Parser{}
	_, err = parser.Parse(tokens)
	assert.Nil(t, err)
	assert.Equal(t, 0, parser.openParentheses)

	testData := []string{
		"if (x > 0 { y = 1; }",
		"x = (a + b;",
		"x = a + b);",
		"x = ((a);",
		"f((a);",
	}
	for _, content := range testData {
		_, err = parse(t, content)
		assert.True(t, errors.Is(err, ErrSyntax), content)
	}
	_, err = parse(t, "x = a + b);")
	assert.Contains(t, err.Error(), "parentheses closed or opened incorrectly at line 1")
}

func TestParser_ErrorLine(t *testing.T) {
	_, err := parse(t, "int a;\nint b;\na = ;")
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "at line 3")
}

func TestParser_Choose(t *testing.T) {
	testData := []struct {
		content  string
		category StatementCategory
	}{
		{content: "int a;", category: DeclarationCategory},
		{content: "int *a;", category: DeclarationCategory},
		{content: "int f();", category: FunctionPrototypeCategory},
		{content: "double *f(int a) {}", category: FunctionPrototypeCategory},
		{content: "void f() {}", category: FunctionPrototypeCategory},
		{content: "struct s { int a; };", category: StructDeclarationCategory},
		{content: "struct s a;", category: DeclarationCategory},
		{content: "struct s f() {}", category: FunctionPrototypeCategory},
		{content: "struct s *f() {}", category: FunctionPrototypeCategory},
		{content: "f(a, (b));", category: CallCategory},
		{content: "f(a) + 1;", category: ExpressionCategory},
		{content: "a = 1;", category: AssignmentCategory},
		{content: "a[i + 1] = 1;", category: AssignmentCategory},
		{content: "a.b = 1;", category: AssignmentCategory},
		{content: "a[1].b[2] = 1;", category: AssignmentCategory},
		{content: "a == 1;", category: ConditionCategory},
		{content: "!a;", category: ConditionCategory},
		{content: "a && b;", category: ConditionCategory},
		{content: "a + 1;", category: ExpressionCategory},
		{content: "(int) a;", category: ExpressionCategory},
		{content: "-a;", category: ExpressionCategory},
		{content: "3;", category: ExpressionCategory},
		{content: "return a;", category: ReturnCategory},
		{content: "while (a) {}", category: WhileCategory},
		{content: "for (;;) {}", category: ForCategory},
		{content: "break;", category: BreakCategory},
		{content: "if (a) {}", category: IfCategory},
		{content: "else", category: UnknownCategory},
	}
	tokenizer := &Tokenizer{}
	parser := &Parser{}
	for _, data := range testData {
		tokenizer.Reset()
		parser.reset()
		tokens, err := tokenizer.Tokenize(strings.NewReader(data.content))
		require.Nil(t, err)
		parser.currentTokens = tokens
		assert.Equal(t, data.category, parser.choose(), data.content)
	}
}

func TestParser_ExpressionsFoldRight(t *testing.T) {
	program := mustParse(t, "a - b * c + d;")
	require.Len(t, program.Statements, 1)
	stm := program.Statements[0]
	require.Equal(t, ExpressionStatementTP, stm.StatementTP)
	expr := stm.Statement.(*ExpressionAst)
	var names []string
	var ops []string
	for expr != nil {
		names = append(names, expr.LeftExpr.(*ExpressionTerm).Value.(*VariableAst).VarName)
		if expr.Op == nil {
			break
		}
		ops = append(ops, expr.Op.Name)
		expr = expr.RightExpr.(*ExpressionAst)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, names)
	assert.Equal(t, []string{"-", "*", "+"}, ops)
}

func TestParser_LogicalChainsLeft(t *testing.T) {
	program := mustParse(t, "a < b && c > d || e == f;")
	stm := program.Statements[0]
	require.Equal(t, ConditionStatementTP, stm.StatementTP)
	expr := stm.Statement.(*ExpressionAst)
	assert.Equal(t, OrOpTP, expr.Op.Op)
	left := expr.LeftExpr.(*ExpressionAst)
	assert.Equal(t, AndOpTP, left.Op.Op)
	assert.Equal(t, LessOpTP, left.LeftExpr.(*ExpressionAst).Op.Op)
	assert.Equal(t, EqualOpTp, expr.RightExpr.(*ExpressionAst).Op.Op)
}

func TestParser_ChainedAssign(t *testing.T) {
	program := mustParse(t, "a = b[1] = c.d = 1;")
	assign := program.Statements[0].Statement.(*AssignStatementAst)
	require.Len(t, assign.Targets, 3)
	assert.Equal(t, "a", assign.Targets[0].String())
	assert.Equal(t, "b[]", assign.Targets[1].String())
	assert.Equal(t, "c.d", assign.Targets[2].String())
}

func TestParser_TypeCastAndNegation(t *testing.T) {
	program := mustParse(t, "x = (double) y; x = -(int) y; x = (struct s) y;")
	cast := program.Statements[0].Statement.(*AssignStatementAst).Value.LeftExpr.(*ExpressionTerm)
	require.NotNil(t, cast.Cast)
	assert.Equal(t, DoubleType, *cast.Cast)
	assert.Equal(t, VarNameExpressionTermType, cast.Type)

	negation := program.Statements[1].Statement.(*AssignStatementAst).Value.LeftExpr.(*ExpressionTerm)
	assert.Equal(t, &NegationOpAst, negation.UnaryOp)
	require.Equal(t, SubExpressionTermType, negation.Type)
	inner := negation.Value.(*ExpressionAst).LeftExpr.(*ExpressionTerm)
	assert.Equal(t, IntType, *inner.Cast)

	structCast := program.Statements[2].Statement.(*AssignStatementAst).Value.LeftExpr.(*ExpressionTerm)
	assert.Equal(t, VariableType{TP: StructVariableType, Name: "s"}, *structCast.Cast)
}

func TestParser_Declarators(t *testing.T) {
	program := mustParse(t, "int a, *b, c[10], d[n + 1], e[] = 3;")
	declare := program.Statements[0].Statement.(*VarDeclareAst)
	require.Len(t, declare.Declarators, 5)
	assert.True(t, declare.Declarators[1].IsPointer)
	c := declare.Declarators[2]
	assert.True(t, c.IsVector)
	assert.Equal(t, 1, c.Size)
	assert.Equal(t, 10, c.Length)
	d := declare.Declarators[3]
	assert.Equal(t, 3, d.Size)
	assert.Equal(t, 0, d.Length)
	assert.NotNil(t, d.SizeExpr)
	e := declare.Declarators[4]
	assert.Equal(t, 0, e.Size)
	assert.NotNil(t, e.Init)
}

func TestParser_ForParts(t *testing.T) {
	program := mustParse(t, "for (i = 0; i < 3; i = i + 1) x = i; for (;;) break;")
	full := program.Statements[0].Statement.(*ForStatementAst)
	assert.NotNil(t, full.Init)
	assert.NotNil(t, full.Condition)
	assert.NotNil(t, full.Step)
	assert.Equal(t, AssignStatementTP, full.Body.StatementTP)
	empty := program.Statements[1].Statement.(*ForStatementAst)
	assert.Nil(t, empty.Init)
	assert.Nil(t, empty.Condition)
	assert.Nil(t, empty.Step)
	assert.Equal(t, BreakStatementTP, empty.Body.StatementTP)
}

func TestParser_LeftRecursion(t *testing.T) {
	testData := []struct {
		content string
		ok      bool
	}{
		{content: "int f(int a) { return f(a) || a; }", ok: false},
		{content: "int f(int a) { if (f(a - 1) && a) return 1; return 0; }", ok: false},
		{content: "int f(int a) { return a || f(a); }", ok: true},
		{content: "int f(int a) { return f(a - 1) + 1; }", ok: true},
		{content: "int g(int a) { return a; } int f(int a) { return g(a) || a; }", ok: true},
	}
	for _, data := range testData {
		_, err := parse(t, data.content)
		if data.ok {
			assert.Nil(t, err, data.content)
			continue
		}
		require.NotNil(t, err, data.content)
		assert.True(t, errors.Is(err, ErrSyntax))
		assert.Contains(t, err.Error(), "left recursion found in function f")
	}
}

func TestParser_StatementLines(t *testing.T) {
	program := mustParse(t, "int a;\n\na = 1;\nif (a)\n  a = 2;")
	require.Len(t, program.Statements, 3)
	assert.Equal(t, 1, program.Statements[0].Line)
	assert.Equal(t, 3, program.Statements[1].Line)
	assert.Equal(t, 4, program.Statements[2].Line)
	ifStm := program.Statements[2].Statement.(*IfStatementAst)
	assert.Equal(t, 5, ifStm.IfBody.Line)
}
