package internal

// Expressions have no operator precedence. Arithmetic is folded to the right:
// a - b * c + d is a - (b * (c + d)). A comparison joins two arithmetic expressions and
// && and || chain comparisons from left to right.

func buildExpressionsTree(ops []*OpAst, exprTerms []*ExpressionTerm) *ExpressionAst {
	if len(ops) == 0 {
		return &ExpressionAst{LeftExpr: exprTerms[0]}
	}
	return &ExpressionAst{
		LeftExpr:  exprTerms[0],
		Op:        ops[0],
		RightExpr: buildExpressionsTree(ops[1:], exprTerms[1:]),
	}
}

// condition := comparison { (&& | ||) comparison }
func (parser *Parser) parseCondition() (*ExpressionAst, error) {
	left, err := parser.parseComparison()
	if err != nil {
		return nil, err
	}
	for parser.matchOp(isLogicalOp) {
		op := parser.parseOpAst()
		right, err := parser.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ExpressionAst{LeftExpr: left, Op: op, RightExpr: right}
	}
	return left, nil
}

// comparison := arithmetic [ (== | != | < | <= | > | >=) arithmetic ]
func (parser *Parser) parseComparison() (*ExpressionAst, error) {
	left, err := parser.parseArithmetic()
	if err != nil {
		return nil, err
	}
	if !parser.matchOp(isComparisonOp) {
		return left, nil
	}
	op := parser.parseOpAst()
	right, err := parser.parseArithmetic()
	if err != nil {
		return nil, err
	}
	return &ExpressionAst{LeftExpr: left, Op: op, RightExpr: right}, nil
}

// arithmetic := term { (+ | - | * | /) term }
func (parser *Parser) parseArithmetic() (*ExpressionAst, error) {
	leftExprTerm, err := parser.parseExpressionTerm()
	if err != nil {
		return nil, err
	}
	var ops []*OpAst
	exprTerms := []*ExpressionTerm{leftExprTerm}
	for parser.matchOp(isArithmeticOp) {
		op := parser.parseOpAst()
		exprTerm, err := parser.parseExpressionTerm()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		exprTerms = append(exprTerms, exprTerm)
	}
	return buildExpressionsTree(ops, exprTerms), nil
}

func (parser *Parser) parseExpressionTerm() (expr *ExpressionTerm, err error) {
	if !parser.hasRemainTokens() {
		return nil, parser.makeExpectError("expression")
	}
	token, _ := parser.getCurrentToken()
	switch token.tp {
	case IntegerTP, RealTP, CharacterTP, StringTP:
		expr = parser.parseConstantExpressionTerm()
	// When it's identifier, it can be a SubRoutine call or
	// VarName expression like: i, v[i], s.x
	case IdentifierTP:
		expr, err = parser.parseSubRoutineCallExpressionOrVarExpressionTerm()
	case LeftParentThesesTP:
		if parser.isTypeCast() {
			expr, err = parser.parseTypeCastExpressionTerm()
		} else {
			expr, err = parser.parseSubExpressionTerm()
		}
	// An unary operation for negative.
	case MinusTP, NotTP:
		expr, err = parser.parseNegationExpressionTerm()
	default:
		err = parser.makeExpectError("expression")
	}
	return
}

func (parser *Parser) parseConstantExpressionTerm() *ExpressionTerm {
	token := parser.currentTokens[parser.currentTokenPos]
	term := &ExpressionTerm{Line: token.line}
	switch token.tp {
	case IntegerTP:
		term.Type, term.Value = IntegerConstantTermType, token.intValue
	case RealTP:
		term.Type, term.Value = RealConstantTermType, token.realValue
	case CharacterTP:
		term.Type, term.Value = CharacterConstantTermType, token.intValue
	case StringTP:
		term.Type, term.Value = StringConstantTermType, token.content
	}
	parser.stepForward()
	return term
}

func (parser *Parser) parseSubRoutineCallExpressionOrVarExpressionTerm() (*ExpressionTerm, error) {
	token, _ := parser.getCurrentToken()
	if parser.tokenAt(parser.currentTokenPos+1).tp == LeftParentThesesTP {
		callAst, err := parser.parseFuncCall()
		if err != nil {
			return nil, err
		}
		return &ExpressionTerm{Type: SubRoutineCallTermType, Value: callAst, Line: token.line}, nil
	}
	variable, err := parser.parseVariable()
	if err != nil {
		return nil, err
	}
	expr := &ExpressionTerm{Type: VarNameExpressionTermType, Value: variable, Line: token.line}
	switch {
	case variable.FieldName != "":
		expr.Type = FieldAccessExpressionTermType
	case variable.ArrayIndex != nil:
		expr.Type = ArrayIndexExpressionTermType
	}
	return expr, nil
}

// name [ '[' expression ']' ] [ . field [ '[' expression ']' ] ]
func (parser *Parser) parseVariable() (*VariableAst, error) {
	nameToken, match := parser.expectToken(IdentifierTP, true)
	if !match {
		return nil, parser.makeExpectError("identifier")
	}
	variable := &VariableAst{VarName: nameToken.content, Line: nameToken.line}
	var err error
	if parser.expectTokens(LeftSquareBracketTP) {
		variable.ArrayIndex, err = parser.parseArrayIndexExpression()
		if err != nil {
			return nil, err
		}
	}
	if !parser.expectTokens(DotTP) {
		return variable, nil
	}
	fieldToken, match := parser.expectToken(IdentifierTP, true)
	if !match {
		return nil, parser.makeExpectError("field name")
	}
	variable.FieldName = fieldToken.content
	if parser.expectTokens(LeftSquareBracketTP) {
		variable.FieldIndex, err = parser.parseArrayIndexExpression()
		if err != nil {
			return nil, err
		}
	}
	return variable, nil
}

// expression ], the '[' is already consumed.
func (parser *Parser) parseArrayIndexExpression() (*ExpressionAst, error) {
	expr, err := parser.parseArithmetic()
	if err != nil {
		return nil, err
	}
	_, match := parser.expectToken(RightSquareBracketTP, true)
	if !match {
		return nil, parser.makeExpectError("]")
	}
	return expr, nil
}

// A grouping '(' increases the parentheses counter and its ')' decreases it.
// A missing ')' is left to the balance check at the end of the statement.
func (parser *Parser) parseSubExpressionTerm() (*ExpressionTerm, error) {
	token, _ := parser.expectToken(LeftParentThesesTP, true)
	parser.openParentheses++
	expr, err := parser.parseCondition()
	if err != nil {
		return nil, err
	}
	if parser.expectTokens(RightParentThesesTP) {
		parser.openParentheses--
	}
	return &ExpressionTerm{
		Type:  SubExpressionTermType,
		Value: expr,
		Line:  token.line,
	}, nil
}

// ( int|double|char|struct name )
func (parser *Parser) isTypeCast() bool {
	pos := parser.currentTokenPos + 1
	switch parser.tokenAt(pos).tp {
	case IntTP, DoubleTP, CharTP:
		return parser.tokenAt(pos+1).tp == RightParentThesesTP
	case StructTP:
		return parser.tokenAt(pos+1).tp == IdentifierTP && parser.tokenAt(pos+2).tp == RightParentThesesTP
	}
	return false
}

func (parser *Parser) parseTypeCastExpressionTerm() (*ExpressionTerm, error) {
	parser.stepForward()
	castTP, err := parser.parseVariableType(false)
	if err != nil {
		return nil, err
	}
	parser.stepForward()
	term, err := parser.parseExpressionTerm()
	if err != nil {
		return nil, err
	}
	term = wrapDecoratedTerm(term)
	term.Cast = &castTP
	return term, nil
}

// Note: for expession, 5 + -2, our compiler won't generate error, same as c.
func (parser *Parser) parseNegationExpressionTerm() (*ExpressionTerm, error) {
	token, _ := parser.getCurrentToken()
	op := &NegationOpAst
	if token.tp == NotTP {
		op = &BoolNegationOpAst
	}
	parser.stepForward()
	exprTerm, err := parser.parseExpressionTerm()
	if err != nil {
		return nil, err
	}
	exprTerm = wrapDecoratedTerm(exprTerm)
	exprTerm.UnaryOp = op
	return exprTerm, nil
}

// wrapDecoratedTerm moves a term already carrying a unary operator or a cast into a
// sub expression, so the next decoration applies on top of it.
func wrapDecoratedTerm(term *ExpressionTerm) *ExpressionTerm {
	if term.UnaryOp == nil && term.Cast == nil {
		return term
	}
	return &ExpressionTerm{
		Type:  SubExpressionTermType,
		Value: &ExpressionAst{LeftExpr: term},
		Line:  term.Line,
	}
}

func (parser *Parser) parseOpAst() *OpAst {
	var op *OpAst
	token := parser.currentTokens[parser.currentTokenPos]
	switch token.tp {
	case AddTP:
		op = &AddOpAst
	case MinusTP:
		op = &MinusOpAst
	case MultiplyTP:
		op = &MultipleOpAst
	case DivideTP:
		op = &DivideOpAst
	case AndTP:
		op = &AndOpAst
	case OrTP:
		op = &OrOpAst
	case GreaterTP:
		op = &GreatOpAst
	case GreaterEqualTP:
		op = &GreatEqualOpAst
	case LessTP:
		op = &LessOpAst
	case LessEqualTP:
		op = &LessEqualOpAst
	case EqualTP:
		op = &EqualOpAst
	case NotEqualTP:
		op = &NotEqualOpAst
	}
	parser.stepForward()
	return op
}

func (parser *Parser) matchOp(accept func(TokenType) bool) bool {
	if !parser.hasRemainTokens() {
		return false
	}
	token, _ := parser.getCurrentToken()
	return accept(token.tp)
}

func isArithmeticOp(tp TokenType) bool {
	switch tp {
	case AddTP, MinusTP, MultiplyTP, DivideTP:
		return true
	}
	return false
}

func isComparisonOp(tp TokenType) bool {
	switch tp {
	case EqualTP, NotEqualTP, LessTP, LessEqualTP, GreaterTP, GreaterEqualTP:
		return true
	}
	return false
}

func isLogicalOp(tp TokenType) bool {
	return tp == AndTP || tp == OrTP
}
