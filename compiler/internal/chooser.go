package internal

// StatementCategory is the kind of statement starting at the cursor, decided by looking
// ahead without consuming anything.
type StatementCategory int

const (
	UnknownCategory StatementCategory = iota
	DeclarationCategory
	CallCategory
	AssignmentCategory
	ReturnCategory
	WhileCategory
	ForCategory
	BreakCategory
	IfCategory
	ConditionCategory
	ExpressionCategory
	StructDeclarationCategory
	FunctionPrototypeCategory
)

var statementCategoryNames = []string{
	"unknown", "declaration", "call", "assignment", "return", "while", "for", "break", "if",
	"condition", "expression", "struct declaration", "function prototype",
}

func (c StatementCategory) String() string {
	return statementCategoryNames[c]
}

func (parser *Parser) choose() StatementCategory {
	pos := parser.currentTokenPos
	token := parser.tokenAt(pos)
	switch token.tp {
	case IntTP, DoubleTP, CharTP:
		if parser.isFuncDeclarationAt(pos + 1) {
			return FunctionPrototypeCategory
		}
		return DeclarationCategory
	case VoidTP:
		return FunctionPrototypeCategory
	case StructTP:
		// struct Name { ... }
		if parser.tokenAt(pos+2).tp == LeftBraceTP {
			return StructDeclarationCategory
		}
		if parser.isFuncDeclarationAt(pos + 2) {
			return FunctionPrototypeCategory
		}
		return DeclarationCategory
	case ReturnTP:
		return ReturnCategory
	case WhileTP:
		return WhileCategory
	case ForTP:
		return ForCategory
	case BreakTP:
		return BreakCategory
	case IfTP:
		return IfCategory
	case IdentifierTP:
		if parser.tokenAt(pos+1).tp == LeftParentThesesTP {
			end := parser.matchingParentheses(pos + 1)
			if parser.tokenAt(end+1).tp == SemiColonTP {
				return CallCategory
			}
		} else if parser.isAssignment(pos) {
			return AssignmentCategory
		}
		return parser.chooseExpression(pos)
	// A leading typecast starts an expression too.
	case IntegerTP, RealTP, CharacterTP, StringTP, LeftParentThesesTP, NotTP, MinusTP:
		return parser.chooseExpression(pos)
	}
	return UnknownCategory
}

// [*] name (
func (parser *Parser) isFuncDeclarationAt(pos int) bool {
	if parser.tokenAt(pos).tp == MultiplyTP {
		pos++
	}
	return parser.tokenAt(pos).tp == IdentifierTP && parser.tokenAt(pos+1).tp == LeftParentThesesTP
}

// isAssignment reports whether pos starts name[index].field[index] =
func (parser *Parser) isAssignment(pos int) bool {
	if parser.tokenAt(pos).tp != IdentifierTP {
		return false
	}
	pos++
	if parser.tokenAt(pos).tp == LeftSquareBracketTP {
		pos = parser.matchingClose(pos, LeftSquareBracketTP, RightSquareBracketTP) + 1
	}
	if parser.tokenAt(pos).tp == DotTP && parser.tokenAt(pos+1).tp == IdentifierTP {
		pos += 2
		if parser.tokenAt(pos).tp == LeftSquareBracketTP {
			pos = parser.matchingClose(pos, LeftSquareBracketTP, RightSquareBracketTP) + 1
		}
	}
	return parser.tokenAt(pos).tp == AssignTP
}

// chooseExpression scans up to the statement terminator for a comparison or logical operator.
func (parser *Parser) chooseExpression(pos int) StatementCategory {
	for ; pos < len(parser.currentTokens); pos++ {
		switch parser.currentTokens[pos].tp {
		case SemiColonTP, LeftBraceTP, RightBraceTP, EndTP:
			return ExpressionCategory
		case EqualTP, NotEqualTP, LessTP, LessEqualTP, GreaterTP, GreaterEqualTP, AndTP, OrTP, NotTP:
			return ConditionCategory
		}
	}
	return ExpressionCategory
}
