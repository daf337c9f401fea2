package internal

// In this file, we defined all ast of minic according to its grammar.
// A minic file is a flat list of statements: declarations, function definitions and plain
// statements may all appear at the top level.

type Program struct {
	Statements []*StatementAst
}

type VariableType struct {
	TP VarType
	// Only set for struct types.
	Name string
}

func (t VariableType) String() string {
	switch t.TP {
	case IntVariableType:
		return "INTEGER"
	case DoubleVariableType:
		return "DOUBLE"
	case CharVariableType:
		return "CHAR"
	case StructVariableType:
		return "STRUCT"
	case VoidVariableType:
		return "VOID"
	}
	return ""
}

func (t VariableType) IsNumeric() bool {
	return t.TP == IntVariableType || t.TP == DoubleVariableType || t.TP == CharVariableType
}

type VarType int

const (
	IntVariableType VarType = iota
	DoubleVariableType
	CharVariableType
	StructVariableType
	VoidVariableType // This only be used for functions.
)

var (
	IntType    = VariableType{TP: IntVariableType}
	DoubleType = VariableType{TP: DoubleVariableType}
	CharType   = VariableType{TP: CharVariableType}
	VoidType   = VariableType{TP: VoidVariableType}
)

type StatementAst struct {
	StatementTP StatementType
	Statement   interface{}
	Line        int
}

type StatementType int

const (
	VariableDeclareStatementTP StatementType = iota
	StructDeclareStatementTP
	FuncDeclareStatementTP
	CallStatementTP
	AssignStatementTP
	ReturnStatementTP
	WhileStatementTP
	ForStatementTP
	BreakStatementTP
	IfStatementTP
	// A bare comparison or logical expression used as a statement, the value is *ExpressionAst
	ConditionStatementTP
	// A bare arithmetic expression used as a statement, the value is *ExpressionAst
	ExpressionStatementTP
	BlockStatementTP
)

// int a, b[10], c = 3;
type VarDeclareAst struct {
	VarType     VariableType
	Declarators []*DeclaratorAst
}

type DeclaratorAst struct {
	Name      string
	Line      int
	IsPointer bool
	IsVector  bool
	// Number of tokens between the brackets.
	Size int
	// Element count when the brackets hold a single integer constant, 0 otherwise.
	Length   int
	SizeExpr *ExpressionAst
	Init     *ExpressionAst
}

// struct Name { fields; } instances;
type StructDeclareAst struct {
	Name      string
	Fields    []*VarDeclareAst
	Instances []*DeclaratorAst
	Line      int
}

type FuncDeclareAst struct {
	FuncName string
	ReturnTP VariableType
	Params   []*FuncParamAst
	Body     *BlockAst
	Line     int
}

// type [*] name [()] [[size]]
type FuncParamAst struct {
	ParamName string
	ParamTP   VariableType
	IsPointer bool
	IsFunc    bool
	IsVector  bool
	Size      int
	Line      int
}

type BlockAst struct {
	Statements []*StatementAst
}

// a = b = expression;
type AssignStatementAst struct {
	Targets []*VariableAst
	Value   *ExpressionAst
}

type VariableAst struct {
	VarName string
	// If this variable is a vector reference, ArrayIndex locates the element.
	ArrayIndex *ExpressionAst
	// For struct instances, name.field
	FieldName string
	// For vector fields, name.field[index]
	FieldIndex *ExpressionAst
	Line       int
}

func (v *VariableAst) String() string {
	ret := v.VarName
	if v.ArrayIndex != nil {
		ret += "[]"
	}
	if v.FieldName != "" {
		ret += "." + v.FieldName
	}
	if v.FieldIndex != nil {
		ret += "[]"
	}
	return ret
}

type IfStatementAst struct {
	Condition *ExpressionAst
	IfBody    *StatementAst
	ElseBody  *StatementAst
}

type WhileStatementAst struct {
	Condition *ExpressionAst
	Body      *StatementAst
}

// for (init; condition; step) body, every part except body may be omitted.
type ForStatementAst struct {
	Init      *StatementAst
	Condition *ExpressionAst
	Step      *AssignStatementAst
	Body      *StatementAst
}

type ReturnStatementAst struct {
	Return *ExpressionAst
}

type CallAst struct {
	FuncName string
	Params   []*ExpressionAst
	Line     int
}

type ExpressionAst struct {
	// Can be ExpressionAst or ExpressionTerm
	LeftExpr interface{}
	Op       *OpAst
	// Can be ExpressionAst or ExpressionTerm
	RightExpr interface{}
	TP        *VariableType
}

type ExpressionTerm struct {
	UnaryOp *OpAst
	// (int) term
	Cast  *VariableType
	Type  ExpressionTermType
	Value interface{}
	Line  int
}

type ExpressionTermType int

const (
	// For constant value, the value in expression term is the value, for example:
	// * For 5, value is 5
	// * For 'a', value is 97
	// * For 2.5, value is 2.5
	// * For "hello", value is "hello"
	IntegerConstantTermType ExpressionTermType = iota
	RealConstantTermType
	CharacterConstantTermType
	StringConstantTermType
	// For varName, vector[index], name.field, the value is *VariableAst
	VarNameExpressionTermType
	ArrayIndexExpressionTermType
	FieldAccessExpressionTermType
	// For subRoutineCallExpression, value is *CallAst
	SubRoutineCallTermType
	// For (subExpression), value is *ExpressionAst
	SubExpressionTermType
)

type OpAst struct {
	OpTP OpType
	Op   OpCode
	Name string
}

var (
	AddOpAst          = OpAst{OpTP: BinaryOPTP, Op: AddOpTP, Name: "+"}
	MinusOpAst        = OpAst{OpTP: BinaryOPTP, Op: MinusOpTP, Name: "-"}
	MultipleOpAst     = OpAst{OpTP: BinaryOPTP, Op: MultipleOpTP, Name: "*"}
	DivideOpAst       = OpAst{OpTP: BinaryOPTP, Op: DivideOpTP, Name: "/"}
	AndOpAst          = OpAst{OpTP: BinaryOPTP, Op: AndOpTP, Name: "&&"}
	OrOpAst           = OpAst{OpTP: BinaryOPTP, Op: OrOpTP, Name: "||"}
	LessOpAst         = OpAst{OpTP: BinaryOPTP, Op: LessOpTP, Name: "<"}
	LessEqualOpAst    = OpAst{OpTP: BinaryOPTP, Op: LessEqualOpTP, Name: "<="}
	GreatOpAst        = OpAst{OpTP: BinaryOPTP, Op: GreaterOpTP, Name: ">"}
	GreatEqualOpAst   = OpAst{OpTP: BinaryOPTP, Op: GreaterEqualOpTP, Name: ">="}
	EqualOpAst        = OpAst{OpTP: BinaryOPTP, Op: EqualOpTp, Name: "=="}
	NotEqualOpAst     = OpAst{OpTP: BinaryOPTP, Op: NotEqualOpTP, Name: "!="}
	NegationOpAst     = OpAst{OpTP: UnaryOPTP, Op: NegationOpTP, Name: "-"}
	BoolNegationOpAst = OpAst{OpTP: UnaryOPTP, Op: BooleanNegationOpTP, Name: "!"}
)

func (op OpAst) String() string {
	return op.Name
}

func (op OpAst) IsArithmetic() bool {
	return op.Op <= DivideOpTP
}

func (op OpAst) IsLogical() bool {
	return op.Op == AndOpTP || op.Op == OrOpTP
}

type OpType int

const (
	UnaryOPTP OpType = iota
	BinaryOPTP
)

type OpCode int

const (
	AddOpTP OpCode = iota
	MinusOpTP
	MultipleOpTP
	DivideOpTP
	AndOpTP
	OrOpTP
	LessOpTP
	LessEqualOpTP
	GreaterOpTP
	GreaterEqualOpTP
	EqualOpTp
	NotEqualOpTP

	// Unary Op
	NegationOpTP
	BooleanNegationOpTP
)
