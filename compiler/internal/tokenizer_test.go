package internal

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, content string) []*Token {
	tokenizer := &Tokenizer{}
	tokens, err := tokenizer.Tokenize(strings.NewReader(content))
	require.Nil(t, err, content)
	return tokens
}

func TestTokenizer_TrimSpace(t *testing.T) {
	testData := []struct {
		content     string
		expectedPos int
	}{
		{content: "   	hello", expectedPos: 4},
		{content: " \r\n", expectedPos: 3},
		{content: "hello", expectedPos: 0},
	}
	tokenizer := &Tokenizer{}
	for _, data := range testData {
		tokenizer.currentPos = 0
		tokenizer.trimSpace([]byte(data.content))
		assert.Equal(t, data.expectedPos, tokenizer.currentPos, data.content)
	}
}

func TestTokenizer_hasRemainCharacters(t *testing.T) {
	tokenizer := &Tokenizer{}
	tokenizer.currentPos = 0
	assert.True(t, tokenizer.hasRemainCharacters([]byte("b")))
	tokenizer.currentPos = 1
	assert.False(t, tokenizer.hasRemainCharacters([]byte("b")))
}

func TestTokenizer_Numbers(t *testing.T) {
	testData := []struct {
		content string
		tp      TokenType
		value   interface{}
	}{
		{content: "123", tp: IntegerTP, value: 123},
		{content: "0x1A", tp: IntegerTP, value: 26},
		{content: "0XfF", tp: IntegerTP, value: 255},
		{content: "017", tp: IntegerTP, value: 15},
		{content: "0", tp: IntegerTP, value: 0},
		{content: "3.14", tp: RealTP, value: 3.14},
		{content: ".5", tp: RealTP, value: 0.5},
		{content: "2e3", tp: RealTP, value: 2000.0},
		{content: "2E-2", tp: RealTP, value: 0.02},
		{content: "1.5e+1", tp: RealTP, value: 15.0},
	}
	for _, data := range testData {
		tokens := tokenize(t, data.content)
		require.Len(t, tokens, 2, data.content)
		assert.Equal(t, data.tp, tokens[0].Type(), data.content)
		if data.tp == RealTP {
			assert.InDelta(t, data.value, tokens[0].Value(), 1e-12, data.content)
			continue
		}
		assert.Equal(t, data.value, tokens[0].Value(), data.content)
	}
}

func TestTokenizer_Keywords(t *testing.T) {
	testData := []struct {
		content string
		tp      TokenType
	}{
		{content: "int", tp: IntTP},
		{content: "integer", tp: IdentifierTP},
		{content: "in", tp: IdentifierTP},
		{content: "double", tp: DoubleTP},
		{content: "doubles", tp: IdentifierTP},
		{content: "char", tp: CharTP},
		{content: "struct", tp: StructTP},
		{content: "while", tp: WhileTP},
		{content: "_while", tp: IdentifierTP},
		{content: "break", tp: BreakTP},
		{content: "else", tp: ElseTP},
		{content: "void", tp: VoidTP},
		{content: "return1", tp: IdentifierTP},
	}
	for _, data := range testData {
		tokens := tokenize(t, data.content)
		assert.Equal(t, data.tp, tokens[0].Type(), data.content)
	}
}

func TestTokenizer_Symbols(t *testing.T) {
	tokens := tokenize(t, "{ } ( ) [ ] . , ; + - * / ! = < > == != <= >= && ||")
	expected := []TokenType{
		LeftBraceTP, RightBraceTP, LeftParentThesesTP, RightParentThesesTP, LeftSquareBracketTP,
		RightSquareBracketTP, DotTP, CommaTP, SemiColonTP, AddTP, MinusTP, MultiplyTP, DivideTP, NotTP, AssignTP,
		LessTP, GreaterTP, EqualTP, NotEqualTP, LessEqualTP, GreaterEqualTP, AndTP, OrTP, EndTP,
	}
	require.Len(t, tokens, len(expected))
	for i, tp := range expected {
		assert.Equal(t, tp, tokens[i].Type(), i)
	}
}

func TestTokenizer_CharactersAndStrings(t *testing.T) {
	tokens := tokenize(t, `'\n' 'a' '\'' "a\tb" "say \"hi\""`)
	require.Len(t, tokens, 6)
	assert.Equal(t, CharacterTP, tokens[0].Type())
	assert.Equal(t, int('\n'), tokens[0].Value())
	assert.Equal(t, int('a'), tokens[1].Value())
	assert.Equal(t, int('\''), tokens[2].Value())
	assert.Equal(t, StringTP, tokens[3].Type())
	assert.Equal(t, "a\tb", tokens[3].Value())
	assert.Len(t, tokens[3].Value(), 3)
	assert.Equal(t, `say "hi"`, tokens[4].Value())
}

func TestTokenizer_Comments(t *testing.T) {
	content := `int a; // a comment
/* a comment
   on two lines */ int b;
int /* inline */ c;
`
	tokens := tokenize(t, content)
	var words []string
	var lines []int
	for _, token := range tokens {
		if token.Type() == IdentifierTP {
			words = append(words, token.content)
			lines = append(lines, token.Line())
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, words)
	assert.Equal(t, []int{1, 3, 4}, lines)
}

func TestTokenizer_End(t *testing.T) {
	tokens := tokenize(t, "int a;\nend\nthis is ignored @ #")
	require.Len(t, tokens, 4)
	assert.Equal(t, EndTP, tokens[3].Type())
	tokens = tokenize(t, "int a;")
	assert.Equal(t, EndTP, tokens[len(tokens)-1].Type())
}

func TestTokenizer_Errors(t *testing.T) {
	testData := []string{
		"int a @ b;",
		"a & b",
		"a | b",
		"'ab'",
		"'a",
		`"unterminated`,
		"019",
		"0x",
		"1.",
		"2e",
		"/* never closed",
		"a # b",
		"99999999999999999999",
		"0x1ffffffffffffffff",
		"0xffffffffffffffff",
		"01777777777777777777777",
	}
	for _, content := range testData {
		tokenizer := &Tokenizer{}
		_, err := tokenizer.Tokenize(strings.NewReader(content))
		assert.NotNil(t, err, content)
		assert.True(t, errors.Is(err, ErrLexical), content)
	}
}

func TestTokenizer_NumberLimits(t *testing.T) {
	testData := []struct {
		content string
		value   int
	}{
		{content: "0x7fffffffffffffff", value: math.MaxInt},
		{content: "0777777777777777777777", value: math.MaxInt},
		{content: "9223372036854775807", value: math.MaxInt},
	}
	for _, data := range testData {
		tokens := tokenize(t, data.content)
		assert.Equal(t, IntegerTP, tokens[0].Type(), data.content)
		assert.Equal(t, data.value, tokens[0].Value(), data.content)
	}
	_, err := (&Tokenizer{}).Tokenize(strings.NewReader("int a;\na = 0x10000000000000000;"))
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrLexical))
	assert.Contains(t, err.Error(), "incorrect hexadecimal constant")
	assert.Contains(t, err.Error(), "at line 2")
}

func TestTokenizer_ErrorLine(t *testing.T) {
	tokenizer := &Tokenizer{}
	_, err := tokenizer.Tokenize(strings.NewReader("int a;\nint b;\nint $c;"))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "at line 3")
}

func TestTokenizer_Reset(t *testing.T) {
	teardown := traceToTest(t)
	defer teardown()
	tokenizer := &Tokenizer{}
	first, err := tokenizer.Tokenize(strings.NewReader("int a;"))
	require.Nil(t, err)
	tokenizer.Reset()
	second, err := tokenizer.Tokenize(strings.NewReader("int a;"))
	require.Nil(t, err)
	assert.Equal(t, len(first), len(second))
}
