package internal

import (
	"fmt"
)

type Parser struct {
	currentTokenPos int
	currentTokens   []*Token
	// Grouping parentheses opened and not yet closed in the current statement.
	openParentheses int
	// Brace depth, functions can only be defined at depth 0.
	blockDepth int
}

// Parse parses tokens, which must end with the EndTP sentinel, into a Program.
func (parser *Parser) Parse(tokens []*Token) (*Program, error) {
	parser.reset()
	parser.currentTokens = tokens
	program := &Program{}
	for parser.hasRemainTokens() {
		stm, err := parser.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, stm)
	}
	err := parser.checkLeftRecursion()
	if err != nil {
		return nil, err
	}
	syntaxT().Debugf("parser: %d top level statements", len(program.Statements))
	return program, nil
}

func (parser *Parser) reset() {
	parser.currentTokenPos, parser.currentTokens = 0, nil
	parser.openParentheses, parser.blockDepth = 0, 0
}

func (parser *Parser) getCurrentToken() (*Token, error) {
	if parser.currentTokenPos >= len(parser.currentTokens) {
		return nil, fmt.Errorf("%w: unexpected token ends", ErrSyntax)
	}
	return parser.currentTokens[parser.currentTokenPos], nil
}

// tokenAt never fails, positions past the end return the end sentinel.
func (parser *Parser) tokenAt(pos int) *Token {
	if pos < 0 {
		pos = 0
	}
	if pos >= len(parser.currentTokens) {
		if len(parser.currentTokens) == 0 {
			return &Token{tp: EndTP}
		}
		return parser.currentTokens[len(parser.currentTokens)-1]
	}
	return parser.currentTokens[pos]
}

func (parser *Parser) stepForward() {
	parser.currentTokenPos++
}

func (parser *Parser) hasRemainTokens() bool {
	return parser.currentTokenPos < len(parser.currentTokens) &&
		parser.currentTokens[parser.currentTokenPos].tp != EndTP
}

func (parser *Parser) expectTokens(expectedTokenTPs ...TokenType) bool {
	for _, tokenType := range expectedTokenTPs {
		_, ok := parser.expectToken(tokenType, true)
		if !ok {
			return false
		}
	}
	return true
}

func (parser *Parser) expectToken(expectedTokenTp TokenType, walk bool) (*Token, bool) {
	if parser.currentTokenPos >= len(parser.currentTokens) || parser.currentTokens[parser.currentTokenPos].tp !=
		expectedTokenTp {
		return nil, false
	}
	token := parser.currentTokens[parser.currentTokenPos]
	if walk {
		parser.currentTokenPos++
	}
	return token, true
}

func (parser *Parser) makeError(useCurrentPos bool) error {
	currentPos := parser.currentTokenPos
	if !useCurrentPos {
		currentPos--
	}
	if currentPos < 0 || currentPos >= len(parser.currentTokens) {
		return fmt.Errorf("%w: unexpected token ends", ErrSyntax)
	}
	currentToken := parser.currentTokens[currentPos]
	return fmt.Errorf("%w near %s at line %d", ErrSyntax, currentToken.content, currentToken.line)
}

// makeExpectError reports the token at the cursor and the construct which should have been there.
func (parser *Parser) makeExpectError(expected string) error {
	currentToken := parser.tokenAt(parser.currentTokenPos)
	return fmt.Errorf("%w near %s at line %d, expected %s", ErrSyntax, currentToken.content, currentToken.line, expected)
}

func (parser *Parser) makeBalanceError(line int) error {
	return fmt.Errorf("%w: parentheses closed or opened incorrectly at line %d", ErrSyntax, line)
}

// matchingParentheses returns the position of the ')' closing the '(' at pos.
// When there is none, the position of the end sentinel is returned.
func (parser *Parser) matchingParentheses(pos int) int {
	return parser.matchingClose(pos, LeftParentThesesTP, RightParentThesesTP)
}

func (parser *Parser) matchingClose(pos int, open, close TokenType) int {
	depth := 0
	for ; pos < len(parser.currentTokens); pos++ {
		switch parser.currentTokens[pos].tp {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return pos
			}
		case EndTP:
			return pos
		}
	}
	return len(parser.currentTokens) - 1
}

// isFuncDeclarationName reports whether the identifier at pos names a function being defined,
// that is it follows a type at the top level and precedes '('.
func (parser *Parser) isFuncDeclarationName(pos int) bool {
	if parser.tokenAt(pos+1).tp != LeftParentThesesTP || pos == 0 {
		return false
	}
	prev := parser.tokenAt(pos - 1)
	if prev.tp == MultiplyTP && pos > 1 {
		pos--
		prev = parser.tokenAt(pos - 1)
	}
	switch prev.tp {
	case IntTP, DoubleTP, CharTP, VoidTP:
		return true
	case IdentifierTP:
		return pos > 1 && parser.tokenAt(pos-2).tp == StructTP
	}
	return false
}

// checkLeftRecursion looks for a function calling itself with the call directly followed
// by && or ||, like: int f(int a) { return f(a) || a; }
func (parser *Parser) checkLeftRecursion() error {
	currentFunc := ""
	depth := 0
	for pos := 0; pos < len(parser.currentTokens); pos++ {
		token := parser.currentTokens[pos]
		switch token.tp {
		case LeftBraceTP:
			depth++
		case RightBraceTP:
			depth--
		case IdentifierTP:
			if depth == 0 && parser.isFuncDeclarationName(pos) {
				currentFunc = token.content
				continue
			}
			if token.content != currentFunc || parser.tokenAt(pos+1).tp != LeftParentThesesTP {
				continue
			}
			end := parser.matchingParentheses(pos + 1)
			next := parser.tokenAt(end + 1)
			if next.tp == AndTP || next.tp == OrTP {
				return fmt.Errorf("%w: left recursion found in function %s at line %d", ErrSyntax, currentFunc,
					token.line)
			}
			pos = end
		}
	}
	return nil
}
