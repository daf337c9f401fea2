package internal

import (
	"bufio"
	"fmt"
	"maps"
	"time"

	"github.com/npillmayer/schuko/tracing"
)

// The interpreter executes a checked program directly over its statement tree. Every value
// lives in a register of the register store, a function call runs in its own frame and
// names a frame does not hold are looked up in the global frame.

// Calls nested deeper than this abort the run.
const maxCallDepth = 10000

type Interpreter struct {
	table   *SymbolTable
	opts    *Options
	store   *RegisterStore
	globals *frame
	input   *bufio.Reader
	start   time.Time
	depth   int
}

func NewInterpreter(table *SymbolTable, opts *Options) *Interpreter {
	return &Interpreter{
		table:   table,
		opts:    opts,
		store:   &RegisterStore{},
		globals: newFrame("", IntType),
	}
}

func (interpreter *Interpreter) Registers() *RegisterStore {
	return interpreter.store
}

// Run executes the top level statements of program in order. Function declarations are
// skipped except main, which runs where it is declared. The register listing is written to
// the output once the program halts.
func (interpreter *Interpreter) Run(program *Program) error {
	interpreter.start = time.Now()
	globals := interpreter.globals
	for _, stm := range program.Statements {
		if globals.returned {
			break
		}
		if stm.StatementTP == FuncDeclareStatementTP {
			fn := stm.Statement.(*FuncDeclareAst)
			if fn.FuncName != "main" {
				continue
			}
			_, err := interpreter.invoke(fn, nil, globals, fn.Line)
			if err != nil {
				return err
			}
			continue
		}
		err := interpreter.execStatement(stm, globals)
		if err != nil {
			return err
		}
	}
	interpreterT().Debugf("%s", HaltOpcode)
	fmt.Fprint(interpreter.opts.out(), interpreter.store)
	if interpreter.opts.Debug {
		tracing.With(interpreterT()).Dump("registers", interpreter.store.registers)
	}
	return nil
}

func (interpreter *Interpreter) execStatements(stms []*StatementAst, f *frame) error {
	for _, stm := range stms {
		if f.returned || f.breaking {
			return nil
		}
		err := interpreter.execStatement(stm, f)
		if err != nil {
			return err
		}
	}
	return nil
}

func (interpreter *Interpreter) execStatement(stm *StatementAst, f *frame) (err error) {
	if stm == nil {
		return nil
	}
	switch stm.StatementTP {
	case VariableDeclareStatementTP:
		declare := stm.Statement.(*VarDeclareAst)
		for _, declarator := range declare.Declarators {
			err = interpreter.declare(declarator, declare.VarType, f)
			if err != nil {
				return
			}
		}
	case StructDeclareStatementTP:
		structDeclare := stm.Statement.(*StructDeclareAst)
		tp := VariableType{TP: StructVariableType, Name: structDeclare.Name}
		for _, instance := range structDeclare.Instances {
			err = interpreter.declare(instance, tp, f)
			if err != nil {
				return
			}
		}
	case CallStatementTP:
		_, err = interpreter.call(stm.Statement.(*CallAst), f)
	case AssignStatementTP:
		err = interpreter.assign(stm.Statement.(*AssignStatementAst), f, stm.Line)
	case ReturnStatementTP:
		err = interpreter.execReturn(stm.Statement.(*ReturnStatementAst), f)
	case BreakStatementTP:
		// break outside a loop does nothing.
		f.breaking = f.loops > 0
	case IfStatementTP:
		err = interpreter.execIf(stm.Statement.(*IfStatementAst), f)
	case WhileStatementTP:
		err = interpreter.execWhile(stm.Statement.(*WhileStatementAst), f)
	case ForStatementTP:
		err = interpreter.execFor(stm.Statement.(*ForStatementAst), f, stm.Line)
	case ConditionStatementTP, ExpressionStatementTP:
		expr := stm.Statement.(*ExpressionAst)
		_, err = interpreter.evalExpression(expr, interpreter.naturalType(expr, f), f)
	case BlockStatementTP:
		// Names declared inside the block are not visible after it.
		registers, structs := maps.Clone(f.registers), maps.Clone(f.structs)
		err = interpreter.execStatements(stm.Statement.(*BlockAst).Statements, f)
		f.registers, f.structs = registers, structs
	}
	return
}

func (interpreter *Interpreter) execReturn(ret *ReturnStatementAst, f *frame) error {
	if ret.Return != nil {
		tp := f.returnTP.TP
		if !f.returnTP.IsNumeric() {
			tp = interpreter.naturalType(ret.Return, f)
		}
		value, err := interpreter.evalExpression(ret.Return, tp, f)
		if err != nil {
			return err
		}
		f.returnValue = value
	}
	f.returned = true
	return nil
}

func (interpreter *Interpreter) execIf(ifStm *IfStatementAst, f *frame) error {
	ok, err := interpreter.evalTruth(ifStm.Condition, f)
	if err != nil {
		return err
	}
	if ok {
		return interpreter.execStatement(ifStm.IfBody, f)
	}
	return interpreter.execStatement(ifStm.ElseBody, f)
}

func (interpreter *Interpreter) execWhile(loop *WhileStatementAst, f *frame) error {
	f.loops++
	defer func() { f.loops-- }()
	for {
		ok, err := interpreter.evalTruth(loop.Condition, f)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		err = interpreter.execStatement(loop.Body, f)
		if err != nil {
			return err
		}
		if leaveLoop(f) {
			return nil
		}
	}
}

func (interpreter *Interpreter) execFor(loop *ForStatementAst, f *frame, line int) error {
	err := interpreter.execStatement(loop.Init, f)
	if err != nil {
		return err
	}
	f.loops++
	defer func() { f.loops-- }()
	for {
		if loop.Condition != nil {
			ok, err := interpreter.evalTruth(loop.Condition, f)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}
		err = interpreter.execStatement(loop.Body, f)
		if err != nil {
			return err
		}
		if leaveLoop(f) {
			return nil
		}
		if loop.Step != nil {
			err = interpreter.assign(loop.Step, f, line)
			if err != nil {
				return err
			}
		}
	}
}

func leaveLoop(f *frame) bool {
	if f.breaking {
		f.breaking = false
		return true
	}
	return f.returned
}

// declare creates the registers of declarator, or resets them when the declaration runs
// again with the same length, and stores its initial value.
func (interpreter *Interpreter) declare(declarator *DeclaratorAst, tp VariableType, f *frame) error {
	length := 0
	if declarator.IsVector {
		var err error
		length, err = interpreter.vectorLength(declarator, f)
		if err != nil {
			return err
		}
	}
	decl, ok := f.declared[declarator]
	if ok && decl.length == length {
		for _, register := range decl.registers {
			register.reset()
		}
	} else {
		decl = &declaration{registers: interpreter.allocDeclarator(declarator, tp, length), length: length}
		f.declared[declarator] = decl
	}
	regs := decl.registers
	maps.Copy(f.registers, regs)
	if tp.TP == StructVariableType {
		f.structs[declarator.Name] = tp.Name
		if declarator.Init == nil {
			return nil
		}
		return interpreter.copyStructFrom(declarator.Name, f, declarator.Init, f, declarator.Line)
	}
	delete(f.structs, declarator.Name)
	register := regs[declarator.Name]
	if declarator.IsVector {
		if declarator.Init == nil {
			return nil
		}
		return interpreter.assignVector(register, declarator.Init, f, declarator.Line)
	}
	value := zeroValue(tp.TP)
	if declarator.Init != nil {
		var err error
		value, err = interpreter.evalExpression(declarator.Init, tp.TP, f)
		if err != nil {
			return err
		}
	}
	return interpreter.write(StoreOpcode, location{register: register}, value, declarator.Line)
}

// A struct variable has one register per field, named var.field. Element i of a vector of
// structs has the registers var[i].field.
func (interpreter *Interpreter) allocDeclarator(declarator *DeclaratorAst, tp VariableType,
	length int) map[string]*Register {
	regs := map[string]*Register{}
	switch {
	case tp.TP != StructVariableType:
		regs[declarator.Name] = interpreter.store.alloc(declarator.Name, tp, declarator.IsVector, length)
	case declarator.IsVector:
		for i := 0; i < length; i++ {
			interpreter.expandStruct(fmt.Sprintf("%s[%d]", declarator.Name, i), tp.Name, regs)
		}
	default:
		interpreter.expandStruct(declarator.Name, tp.Name, regs)
	}
	return regs
}

func (interpreter *Interpreter) expandStruct(prefix string, structName string, regs map[string]*Register) {
	for _, field := range interpreter.table.StructFields(structName) {
		name := prefix + "." + field.Name
		if field.Type.TP == StructVariableType {
			interpreter.expandStruct(name, field.Type.Name, regs)
			continue
		}
		regs[name] = interpreter.store.alloc(name, field.Type, field.Class.IsVector(), field.Length)
	}
}

// vectorLength is the constant size of the declaration, its evaluated size expression, or
// the length of its string initializer plus the terminating null.
func (interpreter *Interpreter) vectorLength(declarator *DeclaratorAst, f *frame) (int, error) {
	if declarator.Length > 0 {
		return declarator.Length, nil
	}
	if declarator.SizeExpr != nil {
		size, err := interpreter.evalIndex(declarator.SizeExpr, f)
		if err != nil {
			return 0, err
		}
		if size < 0 {
			return 0, fmt.Errorf("%w: negative size %d of vector %s at line %d", ErrRuntime, size,
				declarator.Name, declarator.Line)
		}
		return size, nil
	}
	if term := plainTerm(declarator.Init); term != nil && term.Type == StringConstantTermType {
		return len(term.Value.(string)) + 1, nil
	}
	return 0, nil
}

// assign evaluates the value once and stores it from the rightmost target to the leftmost.
func (interpreter *Interpreter) assign(assign *AssignStatementAst, f *frame, line int) error {
	last := assign.Targets[len(assign.Targets)-1]
	if interpreter.isStructValue(last, f) {
		return interpreter.assignStruct(assign, f, line)
	}
	loc, err := interpreter.locate(last, f)
	if err != nil {
		return err
	}
	if loc.whole {
		err = interpreter.assignVector(loc.register, assign.Value, f, line)
	} else {
		var value Value
		value, err = interpreter.evalExpression(assign.Value, loc.register.TP.TP, f)
		if err != nil {
			return err
		}
		err = interpreter.write(ModifyOpcode, loc, value, line)
	}
	if err != nil {
		return err
	}
	for i := len(assign.Targets) - 2; i >= 0; i-- {
		target, err := interpreter.locate(assign.Targets[i], f)
		if err != nil {
			return err
		}
		err = interpreter.copyLocation(target, loc, line)
		if err != nil {
			return err
		}
		loc = target
	}
	return nil
}

func (interpreter *Interpreter) assignStruct(assign *AssignStatementAst, f *frame, line int) error {
	last := assign.Targets[len(assign.Targets)-1]
	prefix, structName, err := interpreter.structPrefix(last, f)
	if err != nil {
		return err
	}
	err = interpreter.copyStructFrom(prefix, f, assign.Value, f, line)
	if err != nil {
		return err
	}
	for i := len(assign.Targets) - 2; i >= 0; i-- {
		target := assign.Targets[i]
		if !interpreter.isStructValue(target, f) {
			return fmt.Errorf("%w %s of STRUCT %s into %s at line %d", ErrOpcodeNotFound, ModifyOpcode, structName,
				target, line)
		}
		dst, _, err := interpreter.structPrefix(target, f)
		if err != nil {
			return err
		}
		err = interpreter.copyStruct(dst, f, prefix, f, structName, line)
		if err != nil {
			return err
		}
		prefix = dst
	}
	return nil
}

// assignVector fills the vector from a string constant or from another vector.
func (interpreter *Interpreter) assignVector(register *Register, value *ExpressionAst, f *frame, line int) error {
	if term := plainTerm(value); term != nil {
		switch term.Type {
		case StringConstantTermType:
			return interpreter.fillString(register, term.Value.(string), line)
		case VarNameExpressionTermType, FieldAccessExpressionTermType:
			src, err := interpreter.locate(term.Value.(*VariableAst), f)
			if err != nil {
				return err
			}
			if src.whole {
				return interpreter.copyRegister(register, src.register, line)
			}
		}
	}
	return fmt.Errorf("%w %s of a scalar into vector %s at line %d", ErrOpcodeNotFound, ModifyOpcode,
		register.Name, line)
}

// fillString writes content into the vector followed by a null character, as far as the
// vector is long enough.
func (interpreter *Interpreter) fillString(register *Register, content string, line int) error {
	for i := 0; i < len(register.Values) && i <= len(content); i++ {
		c := 0
		if i < len(content) {
			c = int(content[i])
		}
		err := interpreter.write(ModifyOpcode, location{register: register, index: i}, charValue(c), line)
		if err != nil {
			return err
		}
	}
	return nil
}

func (interpreter *Interpreter) copyRegister(dst, src *Register, line int) error {
	for i := 0; i < len(dst.Values) && i < len(src.Values); i++ {
		value, err := interpreter.load(location{register: src, index: i}, line)
		if err != nil {
			return err
		}
		err = interpreter.write(ModifyOpcode, location{register: dst, index: i}, value, line)
		if err != nil {
			return err
		}
	}
	return nil
}

func (interpreter *Interpreter) copyLocation(dst, src location, line int) error {
	if dst.whole && src.whole {
		return interpreter.copyRegister(dst.register, src.register, line)
	}
	if dst.whole || src.whole {
		return fmt.Errorf("%w %s of %s into %s at line %d", ErrOpcodeNotFound, ModifyOpcode, src, dst, line)
	}
	value, err := interpreter.load(src, line)
	if err != nil {
		return err
	}
	return interpreter.write(ModifyOpcode, dst, value, line)
}

// copyStructFrom copies the struct value named by value into the registers below dstPrefix.
func (interpreter *Interpreter) copyStructFrom(dstPrefix string, dst *frame, value *ExpressionAst, src *frame,
	line int) error {
	term := plainTerm(value)
	if term == nil || !isVariableTerm(term) || !interpreter.isStructValue(term.Value.(*VariableAst), src) {
		return fmt.Errorf("%w %s for type STRUCT at line %d", ErrOpcodeNotFound, StoreOpcode, line)
	}
	srcPrefix, structName, err := interpreter.structPrefix(term.Value.(*VariableAst), src)
	if err != nil {
		return err
	}
	return interpreter.copyStruct(dstPrefix, dst, srcPrefix, src, structName, line)
}

func (interpreter *Interpreter) copyStruct(dstPrefix string, dst *frame, srcPrefix string, src *frame,
	structName string, line int) error {
	for _, field := range interpreter.table.StructFields(structName) {
		dstName, srcName := dstPrefix+"."+field.Name, srcPrefix+"."+field.Name
		if field.Type.TP == StructVariableType {
			err := interpreter.copyStruct(dstName, dst, srcName, src, field.Type.Name, line)
			if err != nil {
				return err
			}
			continue
		}
		dstRegister, err := interpreter.mustRegister(dstName, dst, line)
		if err != nil {
			return err
		}
		srcRegister, err := interpreter.mustRegister(srcName, src, line)
		if err != nil {
			return err
		}
		err = interpreter.copyRegister(dstRegister, srcRegister, line)
		if err != nil {
			return err
		}
	}
	return nil
}

// call runs a builtin or a user function and returns its value.
func (interpreter *Interpreter) call(call *CallAst, f *frame) (Value, error) {
	fn := interpreter.table.Function(call.FuncName)
	if fn == nil {
		return Value{}, fmt.Errorf("%w: %s is not a function at line %d", ErrRuntime, call.FuncName, call.Line)
	}
	if fn.IsBuiltin() {
		return interpreter.callBuiltin(call, f)
	}
	return interpreter.invoke(fn.funcAst, call.Params, f, call.Line)
}

// invoke creates the return register of fn, binds args in a new frame and runs the body of fn.
func (interpreter *Interpreter) invoke(fn *FuncDeclareAst, args []*ExpressionAst, caller *frame,
	line int) (Value, error) {
	interpreterT().Debugf("%s %s", LoadFunctionOpcode, fn.FuncName)
	if interpreter.depth >= maxCallDepth {
		return Value{}, fmt.Errorf("%w: too many nested calls of %s at line %d", ErrRuntime, fn.FuncName, line)
	}
	var ret *Register
	if fn.ReturnTP.IsNumeric() {
		ret = interpreter.store.alloc(fn.FuncName, fn.ReturnTP, false, 0)
	}
	callee := newFrame(fn.FuncName, fn.ReturnTP)
	for i, param := range fn.Params {
		var arg *ExpressionAst
		if i < len(args) {
			arg = args[i]
		}
		err := interpreter.bind(param, arg, caller, callee, line)
		if err != nil {
			return Value{}, err
		}
	}
	interpreter.depth++
	err := interpreter.execStatements(fn.Body.Statements, callee)
	interpreter.depth--
	if err != nil {
		return Value{}, err
	}
	if ret == nil {
		return callee.returnValue, nil
	}
	value := zeroValue(fn.ReturnTP.TP)
	if callee.returned {
		value = callee.returnValue
	}
	err = interpreter.write(StoreOpcode, location{register: ret}, value, line)
	if err != nil {
		return Value{}, err
	}
	return ret.Value(), nil
}

// bind passes scalars and structs by value, vectors share the storage of the caller.
func (interpreter *Interpreter) bind(param *FuncParamAst, arg *ExpressionAst, caller, callee *frame, line int) error {
	switch {
	case param.IsFunc:
		return nil
	case param.ParamTP.TP == StructVariableType:
		return interpreter.bindStruct(param, arg, caller, callee, line)
	case param.IsVector:
		return interpreter.bindVector(param, arg, caller, callee, line)
	}
	value := zeroValue(param.ParamTP.TP)
	if arg != nil {
		var err error
		value, err = interpreter.evalExpression(arg, param.ParamTP.TP, caller)
		if err != nil {
			return err
		}
	}
	register := interpreter.store.alloc(param.ParamName, param.ParamTP, false, 0)
	callee.registers[param.ParamName] = register
	return interpreter.write(StoreOpcode, location{register: register}, value, line)
}

func (interpreter *Interpreter) bindVector(param *FuncParamAst, arg *ExpressionAst, caller, callee *frame,
	line int) error {
	if arg == nil {
		callee.registers[param.ParamName] = interpreter.store.alloc(param.ParamName, param.ParamTP, true, param.Size)
		return nil
	}
	if term := plainTerm(arg); term != nil {
		switch term.Type {
		case StringConstantTermType:
			content := term.Value.(string)
			register := interpreter.store.alloc(param.ParamName, param.ParamTP, true, len(content)+1)
			callee.registers[param.ParamName] = register
			return interpreter.fillString(register, content, line)
		case VarNameExpressionTermType, FieldAccessExpressionTermType:
			loc, err := interpreter.locate(term.Value.(*VariableAst), caller)
			if err != nil {
				return err
			}
			if loc.whole {
				callee.registers[param.ParamName] = loc.register
				return nil
			}
		}
	}
	return fmt.Errorf("%w: argument %s of %s is not a vector at line %d", ErrRuntime, param.ParamName,
		callee.funcName, line)
}

func (interpreter *Interpreter) bindStruct(param *FuncParamAst, arg *ExpressionAst, caller, callee *frame,
	line int) error {
	if param.IsVector {
		return fmt.Errorf("%w %s for vector of STRUCT %s at line %d", ErrOpcodeNotFound, StoreOpcode,
			param.ParamTP.Name, line)
	}
	regs := map[string]*Register{}
	interpreter.expandStruct(param.ParamName, param.ParamTP.Name, regs)
	maps.Copy(callee.registers, regs)
	callee.structs[param.ParamName] = param.ParamTP.Name
	if arg == nil {
		return nil
	}
	return interpreter.copyStructFrom(param.ParamName, callee, arg, caller, line)
}

// location is one element of a register, or a whole vector.
type location struct {
	register *Register
	index    int
	whole    bool
}

func (loc location) String() string {
	if loc.register.IsVector && !loc.whole {
		return fmt.Sprintf("%s[%d]", loc.register.Name, loc.index)
	}
	return loc.register.Name
}

// register returns the register visible as name in f.
func (interpreter *Interpreter) register(name string, f *frame) *Register {
	if register, ok := f.registers[name]; ok {
		return register
	}
	return interpreter.globals.registers[name]
}

func (interpreter *Interpreter) mustRegister(name string, f *frame, line int) (*Register, error) {
	register := interpreter.register(name, f)
	if register == nil {
		return nil, fmt.Errorf("%w: %s has no register at line %d", ErrRuntime, name, line)
	}
	return register, nil
}

// structOf returns the struct name of the struct variable visible as name in f.
func (interpreter *Interpreter) structOf(name string, f *frame) (string, bool) {
	if structName, ok := f.structs[name]; ok {
		return structName, true
	}
	if _, ok := f.registers[name]; ok {
		return "", false
	}
	structName, ok := interpreter.globals.structs[name]
	return structName, ok
}

// isStructValue reports whether variable denotes a whole struct: s, v[i] of a vector of structs
// or a struct typed field.
func (interpreter *Interpreter) isStructValue(variable *VariableAst, f *frame) bool {
	structName, ok := interpreter.structOf(variable.VarName, f)
	if !ok {
		return false
	}
	if variable.FieldName == "" {
		return true
	}
	field := interpreter.table.StructField(structName, variable.FieldName)
	return field != nil && field.Type.TP == StructVariableType && variable.FieldIndex == nil
}

// structPrefix returns the register name prefix and the struct name of a struct value.
func (interpreter *Interpreter) structPrefix(variable *VariableAst, f *frame) (string, string, error) {
	prefix := variable.VarName
	structName, _ := interpreter.structOf(prefix, f)
	if variable.ArrayIndex != nil {
		index, err := interpreter.evalIndex(variable.ArrayIndex, f)
		if err != nil {
			return "", "", err
		}
		prefix = fmt.Sprintf("%s[%d]", prefix, index)
	}
	if variable.FieldName != "" {
		prefix += "." + variable.FieldName
		structName = interpreter.table.StructField(structName, variable.FieldName).Type.Name
	}
	return prefix, structName, nil
}

// locate evaluates the indexes of variable and returns the element it denotes.
func (interpreter *Interpreter) locate(variable *VariableAst, f *frame) (location, error) {
	name := variable.VarName
	index, indexed := 0, false
	if variable.ArrayIndex != nil {
		i, err := interpreter.evalIndex(variable.ArrayIndex, f)
		if err != nil {
			return location{}, err
		}
		index, indexed = i, true
	}
	if variable.FieldName != "" {
		if indexed {
			name = fmt.Sprintf("%s[%d].%s", name, index, variable.FieldName)
		} else {
			name += "." + variable.FieldName
		}
		index, indexed = 0, false
		if variable.FieldIndex != nil {
			i, err := interpreter.evalIndex(variable.FieldIndex, f)
			if err != nil {
				return location{}, err
			}
			index, indexed = i, true
		}
	}
	register, err := interpreter.mustRegister(name, f, variable.Line)
	if err != nil {
		return location{}, err
	}
	if !register.IsVector {
		return location{register: register}, nil
	}
	return location{register: register, index: index, whole: !indexed}, nil
}

func (interpreter *Interpreter) load(loc location, line int) (Value, error) {
	if loc.whole {
		return Value{}, fmt.Errorf("%w %s for vector %s at line %d", ErrOpcodeNotFound, LoadOpcode,
			loc.register.Name, line)
	}
	name, err := LoadOpcode.typed(loc.register.TP.TP, line)
	if err != nil {
		return Value{}, err
	}
	elem, err := loc.register.element(loc.index, line)
	if err != nil {
		return Value{}, err
	}
	interpreterT().Debugf("%s %s = %s", name, loc, *elem)
	return *elem, nil
}

// write runs a store or a modify opcode, value is converted to the type of the register.
func (interpreter *Interpreter) write(op Opcode, loc location, value Value, line int) error {
	name, err := op.typed(loc.register.TP.TP, line)
	if err != nil {
		return err
	}
	elem, err := loc.register.element(loc.index, line)
	if err != nil {
		return err
	}
	*elem = value.Convert(loc.register.TP.TP)
	interpreterT().Debugf("%s %s at %d <- %s", name, loc, loc.register.Offset+loc.index, *elem)
	return nil
}

func (interpreter *Interpreter) evalIndex(expr *ExpressionAst, f *frame) (int, error) {
	value, err := interpreter.evalExpression(expr, IntVariableType, f)
	if err != nil {
		return 0, err
	}
	return value.Int, nil
}

func (interpreter *Interpreter) evalTruth(expr interface{}, f *frame) (bool, error) {
	value, err := interpreter.evalOperand(expr, interpreter.naturalType(expr, f), f)
	if err != nil {
		return false, err
	}
	return value.IsTrue(), nil
}

// evalExpression evaluates arithmetic in type tp. The operands of a comparison are evaluated
// in their own type, the result of a comparison or a logical operator is 0 or 1.
func (interpreter *Interpreter) evalExpression(expr *ExpressionAst, tp VarType, f *frame) (Value, error) {
	if expr.Op == nil {
		return interpreter.evalOperand(expr.LeftExpr, tp, f)
	}
	if expr.Op.IsLogical() {
		value, err := interpreter.evalLogical(expr, f)
		return value.Convert(tp), err
	}
	if !expr.Op.IsArithmetic() {
		operandTP := promote(interpreter.naturalType(expr.LeftExpr, f), interpreter.naturalType(expr.RightExpr, f))
		left, err := interpreter.evalOperand(expr.LeftExpr, operandTP, f)
		if err != nil {
			return Value{}, err
		}
		right, err := interpreter.evalOperand(expr.RightExpr, operandTP, f)
		if err != nil {
			return Value{}, err
		}
		return compare(expr.Op, left, right).Convert(tp), nil
	}
	left, err := interpreter.evalOperand(expr.LeftExpr, tp, f)
	if err != nil {
		return Value{}, err
	}
	right, err := interpreter.evalOperand(expr.RightExpr, tp, f)
	if err != nil {
		return Value{}, err
	}
	return arithmetic(arithmeticOpcode(expr.Op), tp, left, right, operandLine(expr))
}

// && and || stop at the first operand deciding the result.
func (interpreter *Interpreter) evalLogical(expr *ExpressionAst, f *frame) (Value, error) {
	left, err := interpreter.evalTruth(expr.LeftExpr, f)
	if err != nil {
		return Value{}, err
	}
	if expr.Op.Op == AndOpTP && !left {
		return boolValue(false), nil
	}
	if expr.Op.Op == OrOpTP && left {
		return boolValue(true), nil
	}
	right, err := interpreter.evalTruth(expr.RightExpr, f)
	if err != nil {
		return Value{}, err
	}
	return boolValue(right), nil
}

func (interpreter *Interpreter) evalOperand(expr interface{}, tp VarType, f *frame) (Value, error) {
	switch e := expr.(type) {
	case *ExpressionAst:
		return interpreter.evalExpression(e, tp, f)
	case *ExpressionTerm:
		return interpreter.evalTerm(e, tp, f)
	}
	return Value{}, fmt.Errorf("%w: unknown operand %T", ErrRuntime, expr)
}

func (interpreter *Interpreter) evalTerm(term *ExpressionTerm, tp VarType, f *frame) (Value, error) {
	baseTP := tp
	if term.Cast != nil || (term.UnaryOp != nil && term.UnaryOp.Op == BooleanNegationOpTP) {
		baseTP = interpreter.termType(term, f)
	}
	value, err := interpreter.evalBaseTerm(term, baseTP, f)
	if err != nil {
		return Value{}, err
	}
	if term.UnaryOp != nil {
		switch term.UnaryOp.Op {
		case NegationOpTP:
			value, err = arithmetic(SubOpcode, tp, zeroValue(tp), value, term.Line)
			if err != nil {
				return Value{}, err
			}
		case BooleanNegationOpTP:
			value = boolValue(!value.IsTrue())
		}
	}
	if term.Cast != nil {
		if !term.Cast.IsNumeric() {
			return Value{}, fmt.Errorf("%w %s for cast to %s %s at line %d", ErrOpcodeNotFound, LoadOpcode,
				term.Cast, term.Cast.Name, term.Line)
		}
		value = value.Convert(term.Cast.TP)
	}
	return value.Convert(tp), nil
}

func (interpreter *Interpreter) evalBaseTerm(term *ExpressionTerm, tp VarType, f *frame) (Value, error) {
	switch term.Type {
	case IntegerConstantTermType:
		return intValue(term.Value.(int)), nil
	case RealConstantTermType:
		return realValue(term.Value.(float64)), nil
	case CharacterConstantTermType:
		return charValue(term.Value.(int)), nil
	case StringConstantTermType:
		return Value{}, fmt.Errorf("%w %s for string \"%s\" at line %d", ErrOpcodeNotFound, LoadOpcode,
			term.Value, term.Line)
	case VarNameExpressionTermType, ArrayIndexExpressionTermType, FieldAccessExpressionTermType:
		variable := term.Value.(*VariableAst)
		if interpreter.isStructValue(variable, f) {
			return Value{}, fmt.Errorf("%w %s for type STRUCT at line %d", ErrOpcodeNotFound, LoadOpcode, term.Line)
		}
		loc, err := interpreter.locate(variable, f)
		if err != nil {
			return Value{}, err
		}
		return interpreter.load(loc, term.Line)
	case SubRoutineCallTermType:
		return interpreter.call(term.Value.(*CallAst), f)
	case SubExpressionTermType:
		return interpreter.evalExpression(term.Value.(*ExpressionAst), tp, f)
	}
	return Value{}, fmt.Errorf("%w: unknown term at line %d", ErrRuntime, term.Line)
}

// naturalType is the type expr has on its own: double when a double takes part in the
// arithmetic, int for comparisons and logical operators.
func (interpreter *Interpreter) naturalType(expr interface{}, f *frame) VarType {
	switch e := expr.(type) {
	case *ExpressionAst:
		if e.Op == nil {
			return interpreter.naturalType(e.LeftExpr, f)
		}
		if !e.Op.IsArithmetic() {
			return IntVariableType
		}
		return promote(interpreter.naturalType(e.LeftExpr, f), interpreter.naturalType(e.RightExpr, f))
	case *ExpressionTerm:
		if e.Cast != nil {
			return e.Cast.TP
		}
		if e.UnaryOp != nil && e.UnaryOp.Op == BooleanNegationOpTP {
			return IntVariableType
		}
		return interpreter.termType(e, f)
	}
	return IntVariableType
}

// termType ignores the unary operator and the cast of term.
func (interpreter *Interpreter) termType(term *ExpressionTerm, f *frame) VarType {
	switch term.Type {
	case RealConstantTermType:
		return DoubleVariableType
	case CharacterConstantTermType, StringConstantTermType:
		return CharVariableType
	case VarNameExpressionTermType, ArrayIndexExpressionTermType, FieldAccessExpressionTermType:
		return interpreter.variableType(term.Value.(*VariableAst), f)
	case SubRoutineCallTermType:
		if fn := interpreter.table.Function(term.Value.(*CallAst).FuncName); fn != nil {
			return fn.Type.TP
		}
	case SubExpressionTermType:
		return interpreter.naturalType(term.Value.(*ExpressionAst), f)
	}
	return IntVariableType
}

func (interpreter *Interpreter) variableType(variable *VariableAst, f *frame) VarType {
	if structName, ok := interpreter.structOf(variable.VarName, f); ok {
		if variable.FieldName == "" {
			return StructVariableType
		}
		if field := interpreter.table.StructField(structName, variable.FieldName); field != nil {
			return field.Type.TP
		}
		return IntVariableType
	}
	if register := interpreter.register(variable.VarName, f); register != nil {
		return register.TP.TP
	}
	return IntVariableType
}

// plainTerm returns the term expr consists of, when it has no operator, cast or unary operator.
func plainTerm(expr *ExpressionAst) *ExpressionTerm {
	if expr == nil || expr.Op != nil {
		return nil
	}
	term, ok := expr.LeftExpr.(*ExpressionTerm)
	if !ok || term.Cast != nil || term.UnaryOp != nil {
		return nil
	}
	return term
}

func isVariableTerm(term *ExpressionTerm) bool {
	switch term.Type {
	case VarNameExpressionTermType, ArrayIndexExpressionTermType, FieldAccessExpressionTermType:
		return true
	}
	return false
}

func operandLine(expr interface{}) int {
	switch e := expr.(type) {
	case *ExpressionAst:
		return operandLine(e.LeftExpr)
	case *ExpressionTerm:
		return e.Line
	}
	return 0
}
