package internal

func (parser *Parser) parseStatement() (stm *StatementAst, err error) {
	token, err := parser.getCurrentToken()
	if err != nil {
		return nil, err
	}
	if token.tp == LeftBraceTP {
		stm, err = parser.parseBlockStatement()
	} else {
		category := parser.choose()
		syntaxT().Debugf("parser: line %d starts a %s statement", token.line, category)
		switch category {
		case DeclarationCategory:
			stm, err = parser.parseVarDeclareStatement()
		case CallCategory:
			stm, err = parser.parseCallStatement()
		case AssignmentCategory:
			stm, err = parser.parseAssignStatement()
		case ReturnCategory:
			stm, err = parser.parseReturnStatement()
		case WhileCategory:
			stm, err = parser.parseWhileStatement()
		case ForCategory:
			stm, err = parser.parseForStatement()
		case BreakCategory:
			stm, err = parser.parseBreakStatement()
		case IfCategory:
			stm, err = parser.parseIfStatement()
		case ConditionCategory:
			stm, err = parser.parseExpressionStatement(ConditionStatementTP)
		case ExpressionCategory:
			stm, err = parser.parseExpressionStatement(ExpressionStatementTP)
		case StructDeclarationCategory:
			stm, err = parser.parseStructDeclareStatement()
		case FunctionPrototypeCategory:
			stm, err = parser.parseFuncDeclareStatement()
		default:
			err = parser.makeError(true)
		}
	}
	if err != nil {
		return nil, err
	}
	if parser.openParentheses != 0 {
		return nil, parser.makeBalanceError(token.line)
	}
	stm.Line = token.line
	return stm, nil
}

// parseStatementEnd consumes the ';' closing a statement. Stray ')' in front of it
// are consumed too and leave the parentheses counter negative.
func (parser *Parser) parseStatementEnd() error {
	for {
		_, match := parser.expectToken(RightParentThesesTP, true)
		if !match {
			break
		}
		parser.openParentheses--
	}
	_, match := parser.expectToken(SemiColonTP, true)
	if !match {
		return parser.makeExpectError(";")
	}
	return nil
}

//	{
//	   statements
//	}
func (parser *Parser) parseBlock() (*BlockAst, error) {
	_, match := parser.expectToken(LeftBraceTP, true)
	if !match {
		return nil, parser.makeExpectError("{")
	}
	parser.blockDepth++
	block := &BlockAst{}
	for parser.hasRemainTokens() {
		_, match = parser.expectToken(RightBraceTP, false)
		if match {
			break
		}
		stm, err := parser.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stm)
	}
	_, match = parser.expectToken(RightBraceTP, true)
	if !match {
		return nil, parser.makeExpectError("}")
	}
	parser.blockDepth--
	return block, nil
}

func (parser *Parser) parseBlockStatement() (*StatementAst, error) {
	block, err := parser.parseBlock()
	if err != nil {
		return nil, err
	}
	return &StatementAst{StatementTP: BlockStatementTP, Statement: block}, nil
}

// int|double|char|void|struct name
func (parser *Parser) parseVariableType(allowVoid bool) (v VariableType, err error) {
	token, err := parser.getCurrentToken()
	if err != nil {
		return v, err
	}
	switch token.tp {
	case IntTP:
		v = IntType
	case DoubleTP:
		v = DoubleType
	case CharTP:
		v = CharType
	case VoidTP:
		if !allowVoid {
			return v, parser.makeError(true)
		}
		v = VoidType
	case StructTP:
		parser.stepForward()
		nameToken, match := parser.expectToken(IdentifierTP, false)
		if !match {
			return v, parser.makeExpectError("struct name")
		}
		v = VariableType{TP: StructVariableType, Name: nameToken.content}
	default:
		return v, parser.makeExpectError("type")
	}
	parser.stepForward()
	return v, nil
}

// int a, *b, c[10], d = 3;
func (parser *Parser) parseVarDeclareStatement() (*StatementAst, error) {
	ast, err := parser.parseVarDeclare()
	if err != nil {
		return nil, err
	}
	err = parser.parseStatementEnd()
	if err != nil {
		return nil, err
	}
	return &StatementAst{StatementTP: VariableDeclareStatementTP, Statement: ast}, nil
}

func (parser *Parser) parseVarDeclare() (*VarDeclareAst, error) {
	varType, err := parser.parseVariableType(false)
	if err != nil {
		return nil, err
	}
	ast := &VarDeclareAst{VarType: varType}
	for {
		declarator, err := parser.parseDeclarator(true)
		if err != nil {
			return nil, err
		}
		ast.Declarators = append(ast.Declarators, declarator)
		_, match := parser.expectToken(CommaTP, true)
		if !match {
			break
		}
	}
	return ast, nil
}

// [*] name [ '[' [size] ']' ] [ = expression ]
func (parser *Parser) parseDeclarator(allowInit bool) (*DeclaratorAst, error) {
	declarator := &DeclaratorAst{}
	_, declarator.IsPointer = parser.expectToken(MultiplyTP, true)
	nameToken, match := parser.expectToken(IdentifierTP, true)
	if !match {
		return nil, parser.makeExpectError("identifier")
	}
	declarator.Name, declarator.Line = nameToken.content, nameToken.line
	_, match = parser.expectToken(LeftSquareBracketTP, true)
	if match {
		declarator.IsVector = true
		size, length, sizeExpr, err := parser.parseVectorSize()
		if err != nil {
			return nil, err
		}
		declarator.Size, declarator.Length, declarator.SizeExpr = size, length, sizeExpr
	}
	_, match = parser.expectToken(AssignTP, false)
	if !match {
		return declarator, nil
	}
	if !allowInit {
		return nil, parser.makeError(true)
	}
	parser.stepForward()
	init, err := parser.parseCondition()
	if err != nil {
		return nil, err
	}
	declarator.Init = init
	return declarator, nil
}

// parseVectorSize parses the bracket contents after '[' up to and including ']'. It returns
// the number of tokens inside and the constant length when there is a single integer.
func (parser *Parser) parseVectorSize() (size int, length int, sizeExpr *ExpressionAst, err error) {
	startPos := parser.currentTokenPos
	_, match := parser.expectToken(RightSquareBracketTP, true)
	if match {
		return 0, 0, nil, nil
	}
	sizeExpr, err = parser.parseArithmetic()
	if err != nil {
		return 0, 0, nil, err
	}
	size = parser.currentTokenPos - startPos
	first := parser.tokenAt(startPos)
	if size == 1 && first.tp == IntegerTP {
		length = first.intValue
	}
	_, match = parser.expectToken(RightSquareBracketTP, true)
	if !match {
		return 0, 0, nil, parser.makeExpectError("]")
	}
	return size, length, sizeExpr, nil
}

// struct Name { fields } [instances];
func (parser *Parser) parseStructDeclareStatement() (*StatementAst, error) {
	structToken, _ := parser.expectToken(StructTP, true)
	nameToken, match := parser.expectToken(IdentifierTP, true)
	if !match {
		return nil, parser.makeExpectError("struct name")
	}
	_, match = parser.expectToken(LeftBraceTP, true)
	if !match {
		return nil, parser.makeExpectError("{")
	}
	ast := &StructDeclareAst{Name: nameToken.content, Line: structToken.line}
	for parser.hasRemainTokens() {
		_, match = parser.expectToken(RightBraceTP, false)
		if match {
			break
		}
		field, err := parser.parseVarDeclare()
		if err != nil {
			return nil, err
		}
		for _, declarator := range field.Declarators {
			if declarator.Init != nil {
				return nil, parser.makeExpectError("field without initializer")
			}
		}
		err = parser.parseStatementEnd()
		if err != nil {
			return nil, err
		}
		ast.Fields = append(ast.Fields, field)
	}
	_, match = parser.expectToken(RightBraceTP, true)
	if !match {
		return nil, parser.makeExpectError("}")
	}
	_, match = parser.expectToken(IdentifierTP, false)
	for match {
		instance, err := parser.parseDeclarator(false)
		if err != nil {
			return nil, err
		}
		ast.Instances = append(ast.Instances, instance)
		_, match = parser.expectToken(CommaTP, true)
	}
	err := parser.parseStatementEnd()
	if err != nil {
		return nil, err
	}
	return &StatementAst{StatementTP: StructDeclareStatementTP, Statement: ast}, nil
}

// type [*] name(params) { body }
func (parser *Parser) parseFuncDeclareStatement() (*StatementAst, error) {
	if parser.blockDepth > 0 {
		return nil, parser.makeExpectError("statement, functions can only be defined at the top level")
	}
	returnTP, err := parser.parseVariableType(true)
	if err != nil {
		return nil, err
	}
	parser.expectToken(MultiplyTP, true)
	nameToken, match := parser.expectToken(IdentifierTP, true)
	if !match {
		return nil, parser.makeExpectError("function name")
	}
	_, match = parser.expectToken(LeftParentThesesTP, true)
	if !match {
		return nil, parser.makeExpectError("(")
	}
	params, err := parser.parseFuncParamList()
	if err != nil {
		return nil, err
	}
	body, err := parser.parseBlock()
	if err != nil {
		return nil, err
	}
	return &StatementAst{
		StatementTP: FuncDeclareStatementTP,
		Statement: &FuncDeclareAst{
			FuncName: nameToken.content,
			ReturnTP: returnTP,
			Params:   params,
			Body:     body,
			Line:     nameToken.line,
		},
	}, nil
}

// ( [param {, param}] ), the '(' is already consumed.
func (parser *Parser) parseFuncParamList() (params []*FuncParamAst, err error) {
	_, match := parser.expectToken(RightParentThesesTP, true)
	if match {
		return nil, nil
	}
	for {
		param, err := parser.parseFuncParam()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		_, match = parser.expectToken(CommaTP, true)
		if !match {
			break
		}
	}
	_, match = parser.expectToken(RightParentThesesTP, true)
	if !match {
		return nil, parser.makeExpectError(")")
	}
	return params, nil
}

// type [*] name [()] [ '[' [int] ']' ]
func (parser *Parser) parseFuncParam() (*FuncParamAst, error) {
	paramTP, err := parser.parseVariableType(false)
	if err != nil {
		return nil, err
	}
	param := &FuncParamAst{ParamTP: paramTP}
	_, param.IsPointer = parser.expectToken(MultiplyTP, true)
	nameToken, match := parser.expectToken(IdentifierTP, true)
	if !match {
		return nil, parser.makeExpectError("parameter name")
	}
	param.ParamName, param.Line = nameToken.content, nameToken.line
	if parser.expectTokens(LeftParentThesesTP) {
		if !parser.expectTokens(RightParentThesesTP) {
			return nil, parser.makeExpectError(")")
		}
		param.IsFunc = true
	}
	_, match = parser.expectToken(LeftSquareBracketTP, true)
	if !match {
		return param, nil
	}
	param.IsVector = true
	sizeToken, match := parser.expectToken(IntegerTP, true)
	if match {
		param.Size = sizeToken.intValue
	}
	_, match = parser.expectToken(RightSquareBracketTP, true)
	if !match {
		return nil, parser.makeExpectError("]")
	}
	return param, nil
}

// name(params);
func (parser *Parser) parseCallStatement() (*StatementAst, error) {
	call, err := parser.parseFuncCall()
	if err != nil {
		return nil, err
	}
	err = parser.parseStatementEnd()
	if err != nil {
		return nil, err
	}
	return &StatementAst{StatementTP: CallStatementTP, Statement: call}, nil
}

func (parser *Parser) parseFuncCall() (*CallAst, error) {
	nameToken, match := parser.expectToken(IdentifierTP, true)
	if !match {
		return nil, parser.makeExpectError("function name")
	}
	_, match = parser.expectToken(LeftParentThesesTP, true)
	if !match {
		return nil, parser.makeExpectError("(")
	}
	call := &CallAst{FuncName: nameToken.content, Line: nameToken.line}
	_, match = parser.expectToken(RightParentThesesTP, true)
	if match {
		return call, nil
	}
	for {
		param, err := parser.parseCondition()
		if err != nil {
			return nil, err
		}
		call.Params = append(call.Params, param)
		_, match = parser.expectToken(CommaTP, true)
		if !match {
			break
		}
	}
	_, match = parser.expectToken(RightParentThesesTP, true)
	if !match {
		return nil, parser.makeExpectError(")")
	}
	return call, nil
}

// a = b = expression;
func (parser *Parser) parseAssignStatement() (*StatementAst, error) {
	assign, err := parser.parseAssign()
	if err != nil {
		return nil, err
	}
	err = parser.parseStatementEnd()
	if err != nil {
		return nil, err
	}
	return &StatementAst{StatementTP: AssignStatementTP, Statement: assign}, nil
}

func (parser *Parser) parseAssign() (*AssignStatementAst, error) {
	assign := &AssignStatementAst{}
	for {
		target, err := parser.parseVariable()
		if err != nil {
			return nil, err
		}
		if !parser.expectTokens(AssignTP) {
			return nil, parser.makeExpectError("=")
		}
		assign.Targets = append(assign.Targets, target)
		if !parser.isAssignment(parser.currentTokenPos) {
			break
		}
	}
	value, err := parser.parseCondition()
	if err != nil {
		return nil, err
	}
	assign.Value = value
	return assign, nil
}

func (parser *Parser) parseReturnStatement() (*StatementAst, error) {
	_, match := parser.expectToken(ReturnTP, true)
	if !match {
		return nil, parser.makeError(false)
	}
	ast := &ReturnStatementAst{}
	// If no expressions.
	_, match = parser.expectToken(SemiColonTP, true)
	if match {
		return &StatementAst{StatementTP: ReturnStatementTP, Statement: ast}, nil
	}
	expression, err := parser.parseCondition()
	if err != nil {
		return nil, err
	}
	ast.Return = expression
	err = parser.parseStatementEnd()
	if err != nil {
		return nil, err
	}
	return &StatementAst{StatementTP: ReturnStatementTP, Statement: ast}, nil
}

func (parser *Parser) parseBreakStatement() (*StatementAst, error) {
	if !parser.expectTokens(BreakTP) {
		return nil, parser.makeError(true)
	}
	if !parser.expectTokens(SemiColonTP) {
		return nil, parser.makeExpectError(";")
	}
	return &StatementAst{StatementTP: BreakStatementTP}, nil
}

// parseGuard parses the parenthesized condition of if and while. These parentheses are
// structural and do not count for the parentheses balance.
func (parser *Parser) parseGuard() (*ExpressionAst, error) {
	if !parser.expectTokens(LeftParentThesesTP) {
		return nil, parser.makeExpectError("(")
	}
	condition, err := parser.parseCondition()
	if err != nil {
		return nil, err
	}
	if !parser.expectTokens(RightParentThesesTP) {
		return nil, parser.makeExpectError(")")
	}
	return condition, nil
}

// if (condition) statement [else statement]
func (parser *Parser) parseIfStatement() (*StatementAst, error) {
	parser.stepForward()
	condition, err := parser.parseGuard()
	if err != nil {
		return nil, err
	}
	ifBody, err := parser.parseStatement()
	if err != nil {
		return nil, err
	}
	ast := &IfStatementAst{Condition: condition, IfBody: ifBody}
	if parser.expectTokens(ElseTP) {
		ast.ElseBody, err = parser.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return &StatementAst{StatementTP: IfStatementTP, Statement: ast}, nil
}

// while (condition) statement
func (parser *Parser) parseWhileStatement() (*StatementAst, error) {
	parser.stepForward()
	condition, err := parser.parseGuard()
	if err != nil {
		return nil, err
	}
	body, err := parser.parseStatement()
	if err != nil {
		return nil, err
	}
	return &StatementAst{
		StatementTP: WhileStatementTP,
		Statement:   &WhileStatementAst{Condition: condition, Body: body},
	}, nil
}

// for (init; condition; step) statement
func (parser *Parser) parseForStatement() (*StatementAst, error) {
	parser.stepForward()
	if !parser.expectTokens(LeftParentThesesTP) {
		return nil, parser.makeExpectError("(")
	}
	ast := &ForStatementAst{}
	var err error
	switch {
	case parser.expectTokens(SemiColonTP):
	case parser.choose() == DeclarationCategory:
		ast.Init, err = parser.parseVarDeclareStatement()
	default:
		ast.Init, err = parser.parseAssignStatement()
	}
	if err != nil {
		return nil, err
	}
	if parser.openParentheses != 0 {
		return nil, parser.makeBalanceError(parser.tokenAt(parser.currentTokenPos).line)
	}
	_, match := parser.expectToken(SemiColonTP, false)
	if !match {
		ast.Condition, err = parser.parseCondition()
		if err != nil {
			return nil, err
		}
	}
	if !parser.expectTokens(SemiColonTP) {
		return nil, parser.makeExpectError(";")
	}
	_, match = parser.expectToken(RightParentThesesTP, false)
	if !match {
		ast.Step, err = parser.parseAssign()
		if err != nil {
			return nil, err
		}
	}
	if !parser.expectTokens(RightParentThesesTP) {
		return nil, parser.makeExpectError(")")
	}
	ast.Body, err = parser.parseStatement()
	if err != nil {
		return nil, err
	}
	return &StatementAst{StatementTP: ForStatementTP, Statement: ast}, nil
}

func (parser *Parser) parseExpressionStatement(tp StatementType) (*StatementAst, error) {
	expression, err := parser.parseCondition()
	if err != nil {
		return nil, err
	}
	err = parser.parseStatementEnd()
	if err != nil {
		return nil, err
	}
	return &StatementAst{StatementTP: tp, Statement: expression}, nil
}
