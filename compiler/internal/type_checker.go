package internal

import (
	"fmt"
)

type TypeChecker struct {
	table    *SymbolTable
	opts     *Options
	Warnings int
}

func NewTypeChecker(table *SymbolTable, opts *Options) *TypeChecker {
	return &TypeChecker{table: table, opts: opts}
}

// operand is the class and type of one leaf of a flattened expression.
type operand struct {
	name  string
	class SymbolClass
	tp    VariableType
}

// Check runs two sweeps over program: every call against the signature of the called
// function, then every assignment and initializer against its left side.
func (checker *TypeChecker) Check(program *Program) error {
	checker.Warnings = 0
	err := forEachStatement(program.Statements, checker.checkStatementCalls)
	if err != nil {
		return err
	}
	return forEachStatement(program.Statements, checker.checkStatementAssigns)
}

// forEachStatement calls fn on every statement of stms, nested ones included, in source order.
func forEachStatement(stms []*StatementAst, fn func(*StatementAst) error) error {
	for _, stm := range stms {
		err := forEachStatement0(stm, fn)
		if err != nil {
			return err
		}
	}
	return nil
}

func forEachStatement0(stm *StatementAst, fn func(*StatementAst) error) error {
	if stm == nil {
		return nil
	}
	err := fn(stm)
	if err != nil {
		return err
	}
	switch stm.StatementTP {
	case FuncDeclareStatementTP:
		return forEachStatement(stm.Statement.(*FuncDeclareAst).Body.Statements, fn)
	case BlockStatementTP:
		return forEachStatement(stm.Statement.(*BlockAst).Statements, fn)
	case IfStatementTP:
		ifStm := stm.Statement.(*IfStatementAst)
		err = forEachStatement0(ifStm.IfBody, fn)
		if err != nil {
			return err
		}
		return forEachStatement0(ifStm.ElseBody, fn)
	case WhileStatementTP:
		return forEachStatement0(stm.Statement.(*WhileStatementAst).Body, fn)
	case ForStatementTP:
		forStm := stm.Statement.(*ForStatementAst)
		err = forEachStatement0(forStm.Init, fn)
		if err != nil {
			return err
		}
		return forEachStatement0(forStm.Body, fn)
	}
	return nil
}

// statementExpressions returns the expressions directly owned by stm.
func statementExpressions(stm *StatementAst) (exprs []*ExpressionAst) {
	switch stm.StatementTP {
	case VariableDeclareStatementTP:
		for _, declarator := range stm.Statement.(*VarDeclareAst).Declarators {
			exprs = append(exprs, declarator.Init)
		}
	case CallStatementTP:
		exprs = append(exprs, &ExpressionAst{LeftExpr: &ExpressionTerm{
			Type:  SubRoutineCallTermType,
			Value: stm.Statement.(*CallAst),
			Line:  stm.Line,
		}})
	case AssignStatementTP:
		exprs = append(exprs, assignExpressions(stm.Statement.(*AssignStatementAst))...)
	case ReturnStatementTP:
		exprs = append(exprs, stm.Statement.(*ReturnStatementAst).Return)
	case WhileStatementTP:
		exprs = append(exprs, stm.Statement.(*WhileStatementAst).Condition)
	case ForStatementTP:
		forStm := stm.Statement.(*ForStatementAst)
		exprs = append(exprs, forStm.Condition)
		if forStm.Step != nil {
			exprs = append(exprs, assignExpressions(forStm.Step)...)
		}
	case IfStatementTP:
		exprs = append(exprs, stm.Statement.(*IfStatementAst).Condition)
	case ConditionStatementTP, ExpressionStatementTP:
		exprs = append(exprs, stm.Statement.(*ExpressionAst))
	}
	return
}

func assignExpressions(assign *AssignStatementAst) (exprs []*ExpressionAst) {
	for _, target := range assign.Targets {
		exprs = append(exprs, target.ArrayIndex, target.FieldIndex)
	}
	return append(exprs, assign.Value)
}

// forEachCall calls fn on every call inside expr, outer calls before the calls in their arguments.
func forEachCall(expr interface{}, fn func(*CallAst) error) error {
	switch e := expr.(type) {
	case *ExpressionAst:
		if e == nil {
			return nil
		}
		err := forEachCall(e.LeftExpr, fn)
		if err != nil {
			return err
		}
		return forEachCall(e.RightExpr, fn)
	case *ExpressionTerm:
		switch e.Type {
		case SubRoutineCallTermType:
			call := e.Value.(*CallAst)
			err := fn(call)
			if err != nil {
				return err
			}
			for _, param := range call.Params {
				err = forEachCall(param, fn)
				if err != nil {
					return err
				}
			}
		case SubExpressionTermType:
			return forEachCall(e.Value.(*ExpressionAst), fn)
		case VarNameExpressionTermType, ArrayIndexExpressionTermType, FieldAccessExpressionTermType:
			variable := e.Value.(*VariableAst)
			err := forEachCall(variable.ArrayIndex, fn)
			if err != nil {
				return err
			}
			return forEachCall(variable.FieldIndex, fn)
		}
	}
	return nil
}

func (checker *TypeChecker) checkStatementCalls(stm *StatementAst) error {
	for _, expr := range statementExpressions(stm) {
		err := forEachCall(expr, checker.checkCall)
		if err != nil {
			return err
		}
	}
	return nil
}

func (checker *TypeChecker) checkCall(call *CallAst) error {
	fnSymbol := checker.table.Function(call.FuncName)
	if fnSymbol == nil {
		return fmt.Errorf("%w: Error at line %d: %s is not a function", ErrIncompatible, call.Line, call.FuncName)
	}
	coreT().Debugf("Function: %s", fnSymbol.Name)
	for i, arg := range fnSymbol.Args {
		coreT().Debugf("arg[%d] = %s ~ %s of type %s", i, arg.Name, arg.Class, arg.Type)
	}
	if len(call.Params) != len(fnSymbol.Args) {
		return fmt.Errorf("%w: Error at line %d: function %s expects %d arguments, called with %d", ErrIncompatible,
			call.Line, call.FuncName, len(fnSymbol.Args), len(call.Params))
	}
	for i, param := range call.Params {
		arg := fnSymbol.Args[i]
		operands, err := checker.flattenExpression(param, call.Line)
		if err != nil {
			return err
		}
		left := operand{name: arg.Name, class: arg.Class, tp: arg.Type}
		tp, err := checker.checkOperands(left, operands, call.Line)
		if err != nil {
			return err
		}
		param.TP = &tp
	}
	return nil
}

func (checker *TypeChecker) checkStatementAssigns(stm *StatementAst) error {
	switch stm.StatementTP {
	case VariableDeclareStatementTP:
		declare := stm.Statement.(*VarDeclareAst)
		for _, declarator := range declare.Declarators {
			if declarator.Init == nil {
				continue
			}
			class := VariableClass
			if declarator.IsVector {
				class = VectorClass
			}
			left := operand{name: declarator.Name, class: class, tp: declare.VarType}
			err := checker.checkAssign(left, declarator.Init, declarator.Line)
			if err != nil {
				return err
			}
		}
	case AssignStatementTP:
		return checker.checkAssignStatement(stm.Statement.(*AssignStatementAst), stm.Line)
	case ForStatementTP:
		step := stm.Statement.(*ForStatementAst).Step
		if step != nil {
			return checker.checkAssignStatement(step, stm.Line)
		}
	}
	return nil
}

// In a = b = expression, both a and b are checked against expression.
func (checker *TypeChecker) checkAssignStatement(assign *AssignStatementAst, line int) error {
	for _, target := range assign.Targets {
		left, err := checker.variableOperand(target, line)
		if err != nil {
			return err
		}
		err = checker.checkAssign(left, assign.Value, target.Line)
		if err != nil {
			return err
		}
	}
	return nil
}

func (checker *TypeChecker) checkAssign(left operand, value *ExpressionAst, line int) error {
	if left.tp.TP == StructVariableType {
		coreT().Debugf("line: %d ~ left operand: %s -> %s-%s", line, left.name, left.tp, left.tp.Name)
	} else {
		coreT().Debugf("line: %d ~ left operand: %s -> %s", line, left.name, left.tp)
	}
	operands, err := checker.flattenExpression(value, line)
	if err != nil {
		return err
	}
	tp, err := checker.checkOperands(left, operands, line)
	if err != nil {
		return err
	}
	value.TP = &tp
	return nil
}

// checkOperands checks every right operand against left and returns the type of the whole
// expression: the type of left, or int when some operand needed a conversion.
func (checker *TypeChecker) checkOperands(left operand, operands []operand, line int) (VariableType, error) {
	converted := false
	for _, right := range operands {
		coreT().Debugf("right operand: %s of type %s", right.class, right.tp)
		if !compatibleClasses(left.class, right.class) {
			return left.tp, fmt.Errorf("%w: Error at line %d: Incompatible left argument '%s' with right argument '%s'",
				ErrIncompatible, line, left.class, right.class)
		}
		conv, err := checker.compatibleTypes(left.tp, right.tp, line)
		if err != nil {
			return left.tp, err
		}
		converted = converted || conv
	}
	if converted {
		return IntType, nil
	}
	return left.tp, nil
}

func compatibleClasses(left, right SymbolClass) bool {
	if right == FunctionClass {
		return true
	}
	if left == FunctionClass {
		return false
	}
	return left.IsVector() == right.IsVector()
}

// compatibleTypes reports whether right had to be converted to left.
func (checker *TypeChecker) compatibleTypes(left, right VariableType, line int) (bool, error) {
	switch {
	case left.TP == StructVariableType && right.TP == StructVariableType:
		if left.Name != right.Name {
			return false, fmt.Errorf("%w: Error at line %d: type of left operand 'STRUCT %s' is different from type of right operand 'STRUCT %s'",
				ErrIncompatible, line, left.Name, right.Name)
		}
		return false, nil
	case left.TP == VoidVariableType || left.TP == StructVariableType:
		return false, fmt.Errorf("%w: Unexpected type error at line %d", ErrIncompatible, line)
	case !right.IsNumeric():
		return false, fmt.Errorf("%w: Impossible to implicitly convert types at line %d", ErrIncompatible, line)
	case left.TP == right.TP:
		return false, nil
	}
	checker.Warnings++
	if !checker.opts.NoWarnings {
		fmt.Fprintf(checker.opts.out(), "Warning at line %d: Implicit conversion from '%s' to '%s'\n", line, right, left)
	}
	return true, nil
}

// variableOperand resolves name, name[index], name.field and name.field[index].
func (checker *TypeChecker) variableOperand(variable *VariableAst, line int) (operand, error) {
	sym := checker.table.Resolve(variable.VarName, variable.Line)
	if sym == nil {
		return operand{}, fmt.Errorf("%w: %s is not declared in the current scope: line %d", ErrUndeclaredSymbol,
			variable.VarName, line)
	}
	ret := operand{name: variable.String(), class: sym.Class, tp: sym.Type}
	if variable.ArrayIndex != nil {
		if !sym.Class.IsVector() {
			return ret, fmt.Errorf("%w: Error at line %d: %s is not a vector", ErrIncompatible, line, sym.Name)
		}
		ret.class = VariableClass
	}
	if variable.FieldName == "" {
		return ret, nil
	}
	if sym.Type.TP != StructVariableType {
		return ret, fmt.Errorf("%w: Error at line %d: %s is not a struct", ErrIncompatible, line, sym.Name)
	}
	field := checker.table.StructField(sym.Type.Name, variable.FieldName)
	if field == nil {
		return ret, fmt.Errorf("%w: %s is not a field of struct %s: line %d", ErrUndeclaredSymbol,
			variable.FieldName, sym.Type.Name, line)
	}
	ret.class, ret.tp = field.Class, field.Type
	if variable.FieldIndex != nil {
		if !field.Class.IsVector() {
			return ret, fmt.Errorf("%w: Error at line %d: %s is not a vector", ErrIncompatible, line, field.Name)
		}
		ret.class = VariableClass
	}
	return ret, nil
}

// flattenExpression lists the operands of an arithmetic expression. A comparison or a logical
// expression is a single int operand.
func (checker *TypeChecker) flattenExpression(expr *ExpressionAst, line int) ([]operand, error) {
	if expr.Op != nil && !expr.Op.IsArithmetic() {
		return []operand{{name: expr.Op.Name, class: VariableClass, tp: IntType}}, nil
	}
	left, err := checker.flattenTerm(expr.LeftExpr, line)
	if err != nil || expr.RightExpr == nil {
		return left, err
	}
	right, err := checker.flattenTerm(expr.RightExpr, line)
	if err != nil {
		return nil, err
	}
	return append(left, right...), nil
}

func (checker *TypeChecker) flattenTerm(expr interface{}, line int) ([]operand, error) {
	if e, ok := expr.(*ExpressionAst); ok {
		return checker.flattenExpression(e, line)
	}
	term := expr.(*ExpressionTerm)
	var operands []operand
	switch term.Type {
	case IntegerConstantTermType:
		operands = []operand{{name: "integer constant", class: VariableClass, tp: IntType}}
	case RealConstantTermType:
		operands = []operand{{name: "real constant", class: VariableClass, tp: DoubleType}}
	case CharacterConstantTermType:
		operands = []operand{{name: "character constant", class: VariableClass, tp: CharType}}
	case StringConstantTermType:
		operands = []operand{{name: "string constant", class: VectorClass, tp: CharType}}
	case VarNameExpressionTermType, ArrayIndexExpressionTermType, FieldAccessExpressionTermType:
		ret, err := checker.variableOperand(term.Value.(*VariableAst), term.Line)
		if err != nil {
			return nil, err
		}
		operands = []operand{ret}
	case SubRoutineCallTermType:
		call := term.Value.(*CallAst)
		fnSymbol := checker.table.Function(call.FuncName)
		if fnSymbol == nil {
			return nil, fmt.Errorf("%w: Error at line %d: %s is not a function", ErrIncompatible, call.Line,
				call.FuncName)
		}
		operands = []operand{{name: call.FuncName, class: FunctionClass, tp: fnSymbol.Type}}
	case SubExpressionTermType:
		var err error
		operands, err = checker.flattenExpression(term.Value.(*ExpressionAst), line)
		if err != nil {
			return nil, err
		}
	}
	if term.UnaryOp != nil && term.UnaryOp.Op == BooleanNegationOpTP {
		operands = []operand{{name: "!", class: VariableClass, tp: IntType}}
	}
	if term.Cast != nil {
		class := VariableClass
		if len(operands) == 1 {
			class = operands[0].class
		}
		operands = []operand{{name: "(" + term.Cast.String() + ")", class: class, tp: *term.Cast}}
	}
	return operands, nil
}
