package internal

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xiaobogaga/minic/util"
)

// A simple Tokenizer for minic.

// minic has those elements:
// * KeyWord: break, char, double, else, for, if, int, return, struct, void, while, end.
// * Symbol: {, }, (, ), [, ], ., ,, ;, +, -, *, /, !, =, <, >, ==, !=, <=, >=, &&, ||.
// * Constant: integer (decimal, 0octal, 0xhex), real (1.5, 2e3, 2E-2), character ('a', '\n'), string ("xxx").
// * Identifier: letters, digits, underscore, not starting with a digit.
// * Comment: /**/, //.

type TokenType int

const (
	IdentifierTP         TokenType = iota // varA
	BreakTP                               // break
	CharTP                                // char
	DoubleTP                              // double
	ElseTP                                // else
	ForTP                                 // for
	IfTP                                  // if
	IntTP                                 // int
	ReturnTP                              // return
	StructTP                              // struct
	VoidTP                                // void
	WhileTP                               // while
	EndTP                                 // end, also the sentinel closing every token list
	IntegerTP                             // 1010, 017, 0x1A
	RealTP                                // 3.14, 2e3
	CharacterTP                           // 'a'
	StringTP                              // "xxx"
	CommaTP                               // ,
	SemiColonTP                           // ;
	LeftParentThesesTP                    // (
	RightParentThesesTP                   // )
	LeftSquareBracketTP                   // [
	RightSquareBracketTP                  // ]
	LeftBraceTP                           // {
	RightBraceTP                          // }
	AddTP                                 // +
	MinusTP                               // -
	MultiplyTP                            // *
	DivideTP                              // /
	DotTP                                 // .
	AndTP                                 // &&
	OrTP                                  // ||
	NotTP                                 // !
	AssignTP                              // =
	EqualTP                               // ==
	NotEqualTP                            // !=
	LessTP                                // <
	LessEqualTP                           // <=
	GreaterTP                             // >
	GreaterEqualTP                        // >=
)

// keyWordTokenTPMap is the mapping from identifier to the corresponding TokenTP.
// The lookup is on the whole word, so a word like integer never matches int.
var keyWordTokenTPMap = map[string]TokenType{
	"break":  BreakTP,
	"char":   CharTP,
	"double": DoubleTP,
	"else":   ElseTP,
	"for":    ForTP,
	"if":     IfTP,
	"int":    IntTP,
	"return": ReturnTP,
	"struct": StructTP,
	"void":   VoidTP,
	"while":  WhileTP,
	"end":    EndTP,
}

// simpleSymbolTokenTPMap is the mapping from simple identifier to the corresponding TokenTP.
// There are some symbols which are very easy to distinguish, so we put those together.
var simpleSymbolTokenTPMap = map[string]TokenType{
	"{": LeftBraceTP,
	"}": RightBraceTP,
	"(": LeftParentThesesTP,
	")": RightParentThesesTP,
	"[": LeftSquareBracketTP,
	"]": RightSquareBracketTP,
	".": DotTP,
	",": CommaTP,
	";": SemiColonTP,
	"+": AddTP,
	"-": MinusTP,
	"*": MultiplyTP,
}

// doubleSymbolTokenTPMap holds the symbols which need one character of look ahead.
var doubleSymbolTokenTPMap = map[string]TokenType{
	"==": EqualTP,
	"!=": NotEqualTP,
	"<=": LessEqualTP,
	">=": GreaterEqualTP,
	"&&": AndTP,
	"||": OrTP,
	"=":  AssignTP,
	"!":  NotTP,
	"<":  LessTP,
	">":  GreaterTP,
}

var tokenTPNames = map[TokenType]string{
	IdentifierTP: "identifier",
	IntegerTP:    "integer constant",
	RealTP:       "real constant",
	CharacterTP:  "character constant",
	StringTP:     "string constant",
}

func init() {
	for word, tp := range keyWordTokenTPMap {
		tokenTPNames[tp] = word
	}
	for symbol, tp := range simpleSymbolTokenTPMap {
		tokenTPNames[tp] = symbol
	}
	for symbol, tp := range doubleSymbolTokenTPMap {
		tokenTPNames[tp] = symbol
	}
	tokenTPNames[DivideTP] = "/"
}

func (tp TokenType) String() string {
	return tokenTPNames[tp]
}

type Token struct {
	content   string
	intValue  int
	realValue float64
	line      int
	tp        TokenType
}

func (t *Token) Line() int {
	return t.line
}

func (t *Token) Type() TokenType {
	return t.tp
}

// Value returns the payload of the token: the text for identifiers and strings,
// the integer value for integer and character constants, the float value for real constants.
func (t *Token) Value() interface{} {
	switch t.tp {
	case IdentifierTP, StringTP:
		return t.content
	case IntegerTP, CharacterTP:
		return t.intValue
	case RealTP:
		return t.realValue
	}
	return nil
}

func (t *Token) String() string {
	switch t.tp {
	case IdentifierTP:
		return "identifier:" + t.content
	case IntegerTP:
		return "integer:" + strconv.Itoa(t.intValue)
	case RealTP:
		return "real:" + strconv.FormatFloat(t.realValue, 'g', -1, 64)
	case CharacterTP:
		return "character:" + strconv.QuoteRune(rune(t.intValue))
	case StringTP:
		return "string:" + strconv.Quote(t.content)
	}
	return t.tp.String()
}

type Tokenizer struct {
	currentPos  int
	currentLine int
	tokens      []*Token
	finished    bool
}

// getNextToken returns the next token from line. where Token is the returned token.
func (tokenizer *Tokenizer) getNextToken(line []byte) (*Token, error) {
	tokenizer.trimSpace(line)
	if !tokenizer.hasRemainCharacters(line) {
		return nil, nil
	}
	switch line[tokenizer.currentPos] {
	case '{', '}', '(', ')', '[', ']', ',', ';', '+', '-', '*':
		return tokenizer.tokenSimpleSymbol(line)
	case '=', '!', '<', '>', '&', '|':
		return tokenizer.tokenDoubleSymbol(line)
	case '.':
		return tokenizer.tokenDotOrNumber(line)
	case '/':
		return tokenizer.tokenCommentOrDivide(line)
	case '\'':
		return tokenizer.tokenCharacter(line)
	case '"':
		return tokenizer.tokenString(line)
	case '1', '2', '3', '4', '5', '6', '7', '8', '9', '0':
		return tokenizer.tokenNumber(line)
	default:
		return tokenizer.toKeywordOrIdentifier(line)
	}
}

// trimSpace will step forward through line and skip space, tab, carriage-return and newline.
func (tokenizer *Tokenizer) trimSpace(line []byte) {
	for tokenizer.currentPos < len(line) {
		switch line[tokenizer.currentPos] {
		case ' ', '\t', '\r', '\n':
			tokenizer.currentPos++
			continue
		}
		break
	}
}

func (tokenizer *Tokenizer) hasRemainCharacters(line []byte) bool {
	return tokenizer.currentPos < len(line)
}

func (tokenizer *Tokenizer) makeToken(tp TokenType, content string) *Token {
	return &Token{
		content: content,
		line:    tokenizer.currentLine,
		tp:      tp,
	}
}

func (tokenizer *Tokenizer) tokenSimpleSymbol(line []byte) (*Token, error) {
	symbol := string(line[tokenizer.currentPos])
	tokenizer.currentPos++
	return tokenizer.makeToken(simpleSymbolTokenTPMap[symbol], symbol), nil
}

func (tokenizer *Tokenizer) tokenDoubleSymbol(line []byte) (*Token, error) {
	if tokenizer.currentPos+1 < len(line) {
		symbol := string(line[tokenizer.currentPos : tokenizer.currentPos+2])
		tp, ok := doubleSymbolTokenTPMap[symbol]
		if ok {
			tokenizer.currentPos += 2
			return tokenizer.makeToken(tp, symbol), nil
		}
	}
	symbol := string(line[tokenizer.currentPos])
	tp, ok := doubleSymbolTokenTPMap[symbol]
	if !ok {
		// & and | only exist doubled.
		return nil, tokenizer.makeError(symbol, tokenizer.currentLine, "invalid character")
	}
	tokenizer.currentPos++
	return tokenizer.makeToken(tp, symbol), nil
}

func (tokenizer *Tokenizer) tokenDotOrNumber(line []byte) (*Token, error) {
	if tokenizer.currentPos+1 < len(line) && util.IsNumber(line[tokenizer.currentPos+1]) {
		return tokenizer.tokenNumber(line)
	}
	tokenizer.currentPos++
	return tokenizer.makeToken(DotTP, "."), nil
}

func (tokenizer *Tokenizer) tokenCommentOrDivide(line []byte) (*Token, error) {
	// If / is not followed by * or /, then it's not a comment.
	if len(line[tokenizer.currentPos:]) == 1 || (line[tokenizer.currentPos+1] != '/' && line[tokenizer.currentPos+1] != '*') {
		tokenizer.currentPos++
		return tokenizer.makeToken(DivideTP, "/"), nil
	}
	switch line[tokenizer.currentPos+1] {
	case '/':
		tokenizer.currentPos = len(line)
		return &Token{tp: singleLineCommentTP, line: tokenizer.currentLine}, nil
	default:
		tokenizer.currentPos += 2
		return &Token{tp: multipleLineOpenCommentTP, line: tokenizer.currentLine}, nil
	}
}

// Comments never reach the token list, these two kinds only exist inside the tokenizer.
const (
	singleLineCommentTP TokenType = -1 - iota
	multipleLineOpenCommentTP
)

// 'c' or '\e'
func (tokenizer *Tokenizer) tokenCharacter(line []byte) (*Token, error) {
	startPos := tokenizer.currentPos
	tokenizer.currentPos++
	if tokenizer.currentPos >= len(line) || line[tokenizer.currentPos] == '\n' {
		return nil, tokenizer.makeError(string(line[startPos:]), tokenizer.currentLine, "incorrect character format")
	}
	value := line[tokenizer.currentPos]
	if value == '\\' {
		tokenizer.currentPos++
		if tokenizer.currentPos >= len(line) {
			return nil, tokenizer.makeError(string(line[startPos:]), tokenizer.currentLine, "incorrect character format")
		}
		value = util.EscapeChar(line[tokenizer.currentPos])
	}
	tokenizer.currentPos++
	if tokenizer.currentPos >= len(line) || line[tokenizer.currentPos] != '\'' {
		return nil, tokenizer.makeError(string(line[startPos:]), tokenizer.currentLine, "incorrect character format")
	}
	tokenizer.currentPos++
	token := tokenizer.makeToken(CharacterTP, string(line[startPos:tokenizer.currentPos]))
	token.intValue = int(value)
	return token, nil
}

func (tokenizer *Tokenizer) tokenString(line []byte) (*Token, error) {
	// Looking forward through line to find a closing quote which is not escaped.
	startPos := tokenizer.currentPos
	tokenizer.currentPos++
	foundClosingQuote := false
	for tokenizer.currentPos < len(line) {
		if line[tokenizer.currentPos] == '\\' {
			tokenizer.currentPos += 2
			continue
		}
		if line[tokenizer.currentPos] == '"' {
			tokenizer.currentPos++
			foundClosingQuote = true
			break
		}
		tokenizer.currentPos++
	}
	// If cannot find an closing quote, then string format is not correct.
	if !foundClosingQuote {
		return nil, tokenizer.makeError(string(line[startPos:]), tokenizer.currentLine, "incorrect string format")
	}
	return tokenizer.makeToken(StringTP, util.Unescape(line[startPos+1:tokenizer.currentPos-1])), nil
}

func (tokenizer *Tokenizer) tokenNumber(line []byte) (*Token, error) {
	startPos := tokenizer.currentPos
	if line[startPos] == '0' && startPos+1 < len(line) {
		next := line[startPos+1]
		switch {
		case next == 'x' || next == 'X':
			return tokenizer.tokenHexNumber(line)
		case util.IsNumber(next):
			return tokenizer.tokenOctalNumber(line)
		}
	}
	return tokenizer.tokenDecimalOrRealNumber(line)
}

func (tokenizer *Tokenizer) tokenHexNumber(line []byte) (*Token, error) {
	startPos := tokenizer.currentPos
	tokenizer.currentPos += 2
	for tokenizer.hasRemainCharacters(line) && util.IsHexNumber(line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	lexeme := string(line[startPos:tokenizer.currentPos])
	// Out of range constants fail like decimal ones do.
	value, err := strconv.ParseInt(lexeme[2:], 16, 0)
	if err != nil {
		return nil, tokenizer.makeError(lexeme, tokenizer.currentLine, "incorrect hexadecimal constant")
	}
	token := tokenizer.makeToken(IntegerTP, lexeme)
	token.intValue = int(value)
	return token, nil
}

func (tokenizer *Tokenizer) tokenOctalNumber(line []byte) (*Token, error) {
	startPos := tokenizer.currentPos
	tokenizer.currentPos++
	for tokenizer.hasRemainCharacters(line) && util.IsNumber(line[tokenizer.currentPos]) {
		if !util.IsOctalNumber(line[tokenizer.currentPos]) {
			return nil, tokenizer.makeError(string(line[startPos:tokenizer.currentPos+1]), tokenizer.currentLine,
				"incorrect octal constant")
		}
		tokenizer.currentPos++
	}
	lexeme := string(line[startPos:tokenizer.currentPos])
	value, err := strconv.ParseInt(lexeme, 8, 0)
	if err != nil {
		return nil, tokenizer.makeError(lexeme, tokenizer.currentLine, "incorrect octal constant")
	}
	token := tokenizer.makeToken(IntegerTP, lexeme)
	token.intValue = int(value)
	return token, nil
}

// tokenDecimalOrRealNumber accepts digits, '.', e/E and a sign right after e/E, then
// classifies the lexeme by what it contains.
func (tokenizer *Tokenizer) tokenDecimalOrRealNumber(line []byte) (*Token, error) {
	startPos := tokenizer.currentPos
	for tokenizer.hasRemainCharacters(line) {
		b := line[tokenizer.currentPos]
		switch {
		case util.IsNumber(b):
			tokenizer.currentPos++
			continue
		case b == '.':
			if tokenizer.currentPos+1 >= len(line) || !util.IsNumber(line[tokenizer.currentPos+1]) {
				return nil, tokenizer.makeError(string(line[startPos:tokenizer.currentPos+1]), tokenizer.currentLine,
					"a digit must follow '.' in a real constant")
			}
			tokenizer.currentPos++
			continue
		case b == 'e' || b == 'E':
			tokenizer.currentPos++
			if tokenizer.hasRemainCharacters(line) && (line[tokenizer.currentPos] == '+' || line[tokenizer.currentPos] == '-') {
				tokenizer.currentPos++
			}
			if !tokenizer.hasRemainCharacters(line) || !util.IsNumber(line[tokenizer.currentPos]) {
				return nil, tokenizer.makeError(string(line[startPos:tokenizer.currentPos]), tokenizer.currentLine,
					"missing exponent in real constant")
			}
			continue
		}
		break
	}
	lexeme := string(line[startPos:tokenizer.currentPos])
	if strings.ContainsAny(lexeme, "eE") {
		return tokenizer.tokenExponentNumber(lexeme)
	}
	if strings.Contains(lexeme, ".") {
		value, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return nil, tokenizer.makeError(lexeme, tokenizer.currentLine, "incorrect real constant")
		}
		token := tokenizer.makeToken(RealTP, lexeme)
		token.realValue = value
		return token, nil
	}
	value, err := strconv.Atoi(lexeme)
	if err != nil {
		return nil, tokenizer.makeError(lexeme, tokenizer.currentLine, "incorrect integer constant")
	}
	token := tokenizer.makeToken(IntegerTP, lexeme)
	token.intValue = value
	return token, nil
}

// tokenExponentNumber splits 2E-2 into the coefficient 2 and the exponent 2 and
// divides by the power of ten when the sign is negative.
func (tokenizer *Tokenizer) tokenExponentNumber(lexeme string) (*Token, error) {
	pos := strings.IndexAny(lexeme, "eE")
	if strings.ContainsAny(lexeme[pos+1:], ".eE") {
		return nil, tokenizer.makeError(lexeme, tokenizer.currentLine, "incorrect real constant")
	}
	coefficient, err := strconv.ParseFloat(lexeme[:pos], 64)
	if err != nil {
		return nil, tokenizer.makeError(lexeme, tokenizer.currentLine, "incorrect real constant")
	}
	exponentStr := lexeme[pos+1:]
	negative := false
	switch exponentStr[0] {
	case '-':
		negative = true
		exponentStr = exponentStr[1:]
	case '+':
		exponentStr = exponentStr[1:]
	}
	exponent, err := strconv.Atoi(exponentStr)
	if err != nil {
		return nil, tokenizer.makeError(lexeme, tokenizer.currentLine, "incorrect real constant")
	}
	value := coefficient * math.Pow10(exponent)
	if negative {
		value = coefficient / math.Pow10(exponent)
	}
	token := tokenizer.makeToken(RealTP, lexeme)
	token.realValue = value
	return token, nil
}

func (tokenizer *Tokenizer) toKeywordOrIdentifier(line []byte) (*Token, error) {
	if !util.IsLetterOrUnderscore(line[tokenizer.currentPos]) {
		return nil, tokenizer.makeError(string(line[tokenizer.currentPos]), tokenizer.currentLine, "invalid character")
	}
	// Look forward to find a continuous characters.
	startPos := tokenizer.currentPos
	for tokenizer.currentPos < len(line) {
		if util.IsLetterOrUnderscoreOrNumber(line[tokenizer.currentPos]) {
			tokenizer.currentPos++
			continue
		}
		break
	}
	word := string(line[startPos:tokenizer.currentPos])
	keyWordTP, isKeyWord := keyWordTokenTPMap[word]
	if isKeyWord {
		return tokenizer.makeToken(keyWordTP, word), nil
	}
	return tokenizer.makeToken(IdentifierTP, word), nil
}

func (tokenizer *Tokenizer) makeError(near string, line int, msg string) error {
	return fmt.Errorf("%w: tokenizer error near %s at line %d, msg: %s", ErrLexical, strings.TrimSpace(near), line, msg)
}

// Tokenize accepts a source `rd` and tokenizes its content according to minic rules.
// The returned list always ends with exactly one EndTP token.
func (tokenizer *Tokenizer) Tokenize(rd io.Reader) (tokens []*Token, err error) {
	bfReader := bufio.NewReader(rd)
	tokenizer.currentLine = 0
	for !tokenizer.finished {
		tokenizer.currentLine++
		tokenizer.currentPos = 0
		line, readErr := bfReader.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, readErr
		}
		for tokenizer.currentPos < len(line) && !tokenizer.finished {
			match, err := tokenizer.parseLine(line)
			if err != nil {
				return nil, err
			}
			line, err = tokenizer.lookForwardForMatchingMultipleLineComment(bfReader, line, !match)
			if err != nil {
				return nil, err
			}
		}
		if readErr == io.EOF {
			break
		}
	}
	tokenizer.tokens = append(tokenizer.tokens, tokenizer.makeToken(EndTP, "end"))
	syntaxT().Debugf("tokenizer: %d tokens over %d lines", len(tokenizer.tokens), tokenizer.currentLine)
	return tokenizer.tokens, nil
}

// parseLine returns false when the line ends inside an open multiple line comment.
func (tokenizer *Tokenizer) parseLine(line []byte) (bool, error) {
	for {
		token, err := tokenizer.getNextToken(line)
		if err != nil {
			return true, err
		}
		if token == nil {
			return true, nil
		}
		switch token.tp {
		case multipleLineOpenCommentTP:
			match := tokenizer.lookForwardForMatchingMultipleLineCommentAtCurrentLine(line)
			if !match {
				return false, nil
			}
			continue
		case singleLineCommentTP:
			return true, nil
		case EndTP:
			tokenizer.finished = true
			return true, nil
		default:
			tokenizer.tokens = append(tokenizer.tokens, token)
		}
	}
}

func (tokenizer *Tokenizer) lookForwardForMatchingMultipleLineComment(bfReader *bufio.Reader, line []byte, needFindMatch bool) ([]byte, error) {
	if !needFindMatch {
		return line, nil
	}
	var err error
	startLine := tokenizer.currentLine
	for {
		match := tokenizer.lookForwardForMatchingMultipleLineCommentAtCurrentLine(line)
		if match {
			return line, nil
		}
		// If cannot find the matching closing multiple line comment at current line.
		// We skip to next line to find.
		line, err = bfReader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if len(line) == 0 {
			return nil, tokenizer.makeError("/*", startLine, "unterminated comment")
		}
		tokenizer.currentLine++
		tokenizer.currentPos = 0
	}
}

func (tokenizer *Tokenizer) lookForwardForMatchingMultipleLineCommentAtCurrentLine(line []byte) bool {
	for tokenizer.currentPos < len(line) {
		// If it's */
		if tokenizer.currentPos < len(line)-1 && line[tokenizer.currentPos] == '*' &&
			line[tokenizer.currentPos+1] == '/' {
			tokenizer.currentPos += 2
			return true
		}
		// Otherwise we look forward.
		tokenizer.currentPos++
	}
	return false
}

func (tokenizer *Tokenizer) Reset() {
	tokenizer.currentPos, tokenizer.currentLine = 0, 0
	tokenizer.tokens, tokenizer.finished = nil, false
}
